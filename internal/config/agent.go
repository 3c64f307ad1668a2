package config

import (
	"os"
	"sync"
	"time"
)

// AgentConfig points at the personal-agent provider and its OAuth client.
type AgentConfig struct {
	BaseURL        string
	ClientID       string
	ClientSecret   string
	RequestTimeout time.Duration
}

var (
	agentConfig *AgentConfig
	agentOnce   sync.Once
)

func LoadAgentConfig() *AgentConfig {
	agentOnce.Do(func() {
		agentConfig = &AgentConfig{
			BaseURL:        os.Getenv("AGENT_API_BASE_URL"),
			ClientID:       os.Getenv("AGENT_CLIENT_ID"),
			ClientSecret:   os.Getenv("AGENT_CLIENT_SECRET"),
			RequestTimeout: durationEnv("AGENT_REQUEST_TIMEOUT", 2*time.Minute),
		}
	})
	return agentConfig
}
