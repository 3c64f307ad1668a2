package config

import (
	"os"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

type AppConfig struct {
	Name                   string
	Env                    string
	Port                   string
	BaseURL                string
	LLMProvider            string
	EmbeddingSweepInterval time.Duration
}

var (
	appConfig *AppConfig
	appOnce   sync.Once
)

func LoadAppConfig() *AppConfig {
	appOnce.Do(func() {
		env := os.Getenv("APP_ENV")
		if env == "" {
			env = "development"
			logrus.Warnf("Warning: APP_ENV not set, defaulting to %s", env)
		}
		port := os.Getenv("APP_PORT")
		if port == "" {
			port = ":8080"
		}
		provider := os.Getenv("LLM_PROVIDER")
		if provider == "" {
			provider = "openrouter"
		}
		appConfig = &AppConfig{
			Name:                   os.Getenv("APP_NAME"),
			Env:                    env,
			Port:                   port,
			BaseURL:                os.Getenv("APP_URL"),
			LLMProvider:            provider,
			EmbeddingSweepInterval: durationEnv("EMBEDDING_SWEEP_INTERVAL", 10*time.Minute),
		}
	})
	return appConfig
}

func (c *AppConfig) IsProduction() bool {
	return c.Env == "production"
}

func durationEnv(key string, fallback time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		logrus.Warnf("Warning: invalid %s=%q, defaulting to %s", key, raw, fallback)
		return fallback
	}
	return d
}
