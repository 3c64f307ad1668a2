package matching

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/fadilmartias/persona-match/internal/model"
	"github.com/fadilmartias/persona-match/internal/service"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type chatCall struct {
	userID  string
	message string
	opts    service.ChatOptions
}

type fakeAgent struct {
	mu        sync.Mutex
	answers   []string
	tokens    []string
	chatErrAt int
	actReply  string
	actErr    error
	tags      []json.RawMessage

	chats     []chatCall
	actUser   string
	actPrompt string
	tagCalls  []string
}

func (f *fakeAgent) Chat(_ context.Context, userID, message string, opts service.ChatOptions) (*service.ChatResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := len(f.chats)
	f.chats = append(f.chats, chatCall{userID: userID, message: message, opts: opts})
	if f.chatErrAt > 0 && i+1 == f.chatErrAt {
		return nil, errors.New("upstream timeout")
	}
	res := &service.ChatResult{Answer: "answer"}
	if i < len(f.answers) {
		res.Answer = f.answers[i]
	}
	if i < len(f.tokens) {
		res.ContinuationToken = f.tokens[i]
	}
	return res, nil
}

func (f *fakeAgent) Act(_ context.Context, userID, message, _ string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.actUser = userID
	f.actPrompt = message
	return f.actReply, f.actErr
}

func (f *fakeAgent) FetchInterestTags(_ context.Context, userID string) []json.RawMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tagCalls = append(f.tagCalls, userID)
	return f.tags
}

type fakeCache struct {
	saved map[string]datatypes.JSON
}

func (f *fakeCache) SaveInterestTags(_ context.Context, id string, tags datatypes.JSON) error {
	if f.saved == nil {
		f.saved = map[string]datatypes.JSON{}
	}
	f.saved[id] = tags
	return nil
}

type fakeLLM struct {
	reply  string
	err    error
	calls  int
	prompt string
}

func (f *fakeLLM) Complete(_ context.Context, _, userPrompt string, _ service.CompletionOptions) (string, error) {
	f.calls++
	f.prompt = userPrompt
	return f.reply, f.err
}

func agentUser(name, tags string) *model.User {
	u := &model.User{ID: uuid.New(), IdentityKey: "ext-" + name, Name: name, AccessToken: "token-" + name}
	if tags != "" {
		u.InterestTags = datatypes.JSON(tags)
	}
	return u
}

func guestUser(name string) *model.User {
	return &model.User{ID: uuid.New(), IdentityKey: model.GuestPrefix + name, Name: name}
}

const validReport = `{
  "totalScore": 82,
  "dimensions": {
    "career": {"score": 85, "label": "Career Direction", "reason": "Both build products."},
    "industry": {"score": 78, "label": "Industry Insight", "reason": "Shared interest in AI."},
    "workStyle": {"score": 80, "label": "Work Style", "reason": "Both move fast."},
    "values": {"score": 84, "label": "Values", "reason": "Both value honesty."}
  },
  "summary": "A strong builder pairing.",
  "recommendation": "Start with a small side project together."
}`
