package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fadilmartias/persona-match/internal/config"
	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"
)

// CompletionOptions tune a single generic-model request.
type CompletionOptions struct {
	Temperature float32
	MaxTokens   int
}

// LLMServiceInterface is the shared, non-personalized language model.
type LLMServiceInterface interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string, opts CompletionOptions) (string, error)
}

// OpenRouterService talks to any OpenAI-compatible chat completions endpoint.
type OpenRouterService struct {
	client *resty.Client
	model  string
}

func NewOpenRouterService(cfg *config.OpenRouterConfig) *OpenRouterService {
	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetAuthToken(cfg.APIKey).
		SetHeader("Content-Type", "application/json").
		SetTimeout(2 * time.Minute)
	return &OpenRouterService{client: client, model: cfg.Model}
}

func (s *OpenRouterService) Complete(ctx context.Context, systemPrompt, userPrompt string, opts CompletionOptions) (string, error) {
	if strings.TrimSpace(userPrompt) == "" {
		return "", errors.New("prompt cannot be empty")
	}

	payload := map[string]any{
		"model": s.model,
		"messages": []map[string]string{
			{"role": "system", "content": systemPrompt},
			{"role": "user", "content": userPrompt},
		},
		"temperature": opts.Temperature,
	}
	if opts.MaxTokens > 0 {
		payload["max_tokens"] = opts.MaxTokens
	}

	resp, err := s.client.R().
		SetContext(ctx).
		SetBody(payload).
		Post("/chat/completions")
	if err != nil {
		return "", fmt.Errorf("completion request failed: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("completion request failed: status %d: %s", resp.StatusCode(), truncate(resp.String(), 512))
	}

	text := gjson.Get(resp.String(), "choices.0.message.content").String()
	if strings.TrimSpace(text) == "" {
		return "", errors.New("no response from LLM")
	}
	return text, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
