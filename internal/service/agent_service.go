package service

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fadilmartias/persona-match/internal/config"
	"github.com/fadilmartias/persona-match/internal/model"
	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
)

const (
	agentChatPath    = "/api/secondme/chat/stream"
	agentActPath     = "/api/secondme/act/stream"
	agentTagsPath    = "/api/secondme/user/shades"
	agentTokenPath   = "/api/oauth/token/code"
	tokenRefreshSkew = 5 * time.Minute
)

var ErrNoAgentCredentials = errors.New("user has no personal agent credentials")

// ChatOptions carries the optional per-round state of a conversation.
type ChatOptions struct {
	ContinuationToken string
	PersonaPrompt     string
}

type ChatResult struct {
	Answer            string
	ContinuationToken string
}

type AgentServiceInterface interface {
	Chat(ctx context.Context, userID, message string, opts ChatOptions) (*ChatResult, error)
	Act(ctx context.Context, userID, message, outputSchema string) (string, error)
	FetchInterestTags(ctx context.Context, userID string) []json.RawMessage
}

// CredentialStore is the slice of the user store the agent client needs to
// read and rotate tokens.
type CredentialStore interface {
	FindByID(ctx context.Context, id string) (*model.User, error)
	UpdateTokens(ctx context.Context, id, accessToken, refreshToken string, expiresAt time.Time) error
}

type AgentService struct {
	client *resty.Client
	cfg    *config.AgentConfig
	users  CredentialStore
	now    func() time.Time
}

func NewAgentService(cfg *config.AgentConfig, users CredentialStore) *AgentService {
	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.RequestTimeout)
	return &AgentService{client: client, cfg: cfg, users: users, now: time.Now}
}

func (s *AgentService) Chat(ctx context.Context, userID, message string, opts ChatOptions) (*ChatResult, error) {
	token, err := s.validAccessToken(ctx, userID)
	if err != nil {
		return nil, err
	}

	body := map[string]string{"message": message}
	if opts.ContinuationToken != "" {
		body["sessionId"] = opts.ContinuationToken
	}
	if opts.PersonaPrompt != "" {
		body["systemPrompt"] = opts.PersonaPrompt
	}

	content, sessionID, err := s.stream(ctx, token, agentChatPath, body)
	if err != nil {
		return nil, fmt.Errorf("chat API failed: %w", err)
	}
	return &ChatResult{Answer: content, ContinuationToken: sessionID}, nil
}

func (s *AgentService) Act(ctx context.Context, userID, message, outputSchema string) (string, error) {
	token, err := s.validAccessToken(ctx, userID)
	if err != nil {
		return "", err
	}

	content, _, err := s.stream(ctx, token, agentActPath, map[string]string{
		"message":       message,
		"actionControl": outputSchema,
	})
	if err != nil {
		return "", fmt.Errorf("act API failed: %w", err)
	}
	return content, nil
}

// FetchInterestTags never fails: any error yields an empty list.
func (s *AgentService) FetchInterestTags(ctx context.Context, userID string) []json.RawMessage {
	token, err := s.validAccessToken(ctx, userID)
	if err != nil {
		logrus.WithField("user_id", userID).Warnf("interest tags: %v", err)
		return nil
	}

	resp, err := s.client.R().
		SetContext(ctx).
		SetAuthToken(token).
		Get(agentTagsPath)
	if err != nil || resp.IsError() {
		logrus.WithField("user_id", userID).Warnf("interest tags request failed: %v", describe(resp, err))
		return nil
	}

	result := gjson.ParseBytes(resp.Body())
	if result.Get("code").Int() != 0 {
		return nil
	}
	shades := result.Get("data.shades")
	if !shades.IsArray() {
		return nil
	}
	var tags []json.RawMessage
	for _, item := range shades.Array() {
		tags = append(tags, json.RawMessage(item.Raw))
	}
	return tags
}

func (s *AgentService) stream(ctx context.Context, token, path string, body any) (string, string, error) {
	resp, err := s.client.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetHeader("Accept", "text/event-stream").
		SetBody(body).
		SetDoNotParseResponse(true).
		Post(path)
	if err != nil {
		return "", "", err
	}
	raw := resp.RawBody()
	defer func() {
		_, _ = io.Copy(io.Discard, raw)
		_ = raw.Close()
	}()

	if resp.IsError() {
		msg, _ := io.ReadAll(io.LimitReader(raw, 1024))
		return "", "", fmt.Errorf("status %d: %s", resp.StatusCode(), strings.TrimSpace(string(msg)))
	}
	return collectSSE(raw)
}

// collectSSE concatenates delta content from a server-sent event stream and
// remembers the last session id it saw.
func collectSSE(r io.Reader) (string, string, error) {
	var content strings.Builder
	var sessionID string

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		data := strings.TrimSpace(strings.TrimPrefix(line, "data: "))
		if data == "[DONE]" || !gjson.Valid(data) {
			continue
		}
		if id := gjson.Get(data, "sessionId").String(); id != "" {
			sessionID = id
		}
		content.WriteString(gjson.Get(data, "choices.0.delta.content").String())
	}
	if err := scanner.Err(); err != nil {
		return "", "", fmt.Errorf("read event stream: %w", err)
	}
	return content.String(), sessionID, nil
}

func (s *AgentService) validAccessToken(ctx context.Context, userID string) (string, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("load credentials: %w", err)
	}
	if user.AccessToken == "" {
		return "", ErrNoAgentCredentials
	}
	if user.TokenExpiresAt.After(s.now().Add(tokenRefreshSkew)) {
		return user.AccessToken, nil
	}

	resp, err := s.client.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"grant_type":    "refresh_token",
			"refresh_token": user.RefreshToken,
			"client_id":     s.cfg.ClientID,
			"client_secret": s.cfg.ClientSecret,
		}).
		Post(agentTokenPath)
	if err != nil || resp.IsError() {
		return "", fmt.Errorf("token refresh failed: %s", describe(resp, err))
	}

	result := gjson.ParseBytes(resp.Body())
	if result.Get("code").Int() != 0 {
		return "", fmt.Errorf("token refresh failed: code %d", result.Get("code").Int())
	}
	access := result.Get("data.accessToken").String()
	refresh := result.Get("data.refreshToken").String()
	expiresAt := s.now().Add(time.Duration(result.Get("data.expiresIn").Int()) * time.Second)
	if access == "" {
		return "", errors.New("token refresh failed: empty access token")
	}

	if err := s.users.UpdateTokens(ctx, userID, access, refresh, expiresAt); err != nil {
		return "", fmt.Errorf("persist refreshed token: %w", err)
	}
	return access, nil
}

func describe(resp *resty.Response, err error) string {
	if err != nil {
		return err.Error()
	}
	if resp == nil {
		return "no response"
	}
	return fmt.Sprintf("status %d", resp.StatusCode())
}
