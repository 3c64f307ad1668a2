package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/fadilmartias/persona-match/internal/matching"
	"github.com/fadilmartias/persona-match/internal/model"
	"github.com/fadilmartias/persona-match/internal/repository"
	"github.com/fadilmartias/persona-match/internal/service"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type testEnv struct {
	db       *gorm.DB
	users    *repository.UserRepository
	matches  *repository.MatchRepository
	launcher *recordingLauncher
}

func newEnv(t *testing.T) *testEnv {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.User{}, &model.Match{}))
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	return &testEnv{
		db:       db,
		users:    repository.NewUserRepository(db),
		matches:  repository.NewMatchRepository(db),
		launcher: &recordingLauncher{},
	}
}

func (e *testEnv) member(t *testing.T, name string) *model.User {
	t.Helper()
	u := &model.User{
		IdentityKey:  "ext-" + name,
		Name:         name,
		AccessToken:  "token-" + name,
		InterestTags: datatypes.JSON(`["` + name + `-tag"]`),
	}
	require.NoError(t, e.users.Create(context.Background(), u))
	return u
}

func (e *testEnv) guest(t *testing.T, name string) *model.User {
	t.Helper()
	u := &model.User{IdentityKey: model.GuestPrefix + name, Name: name}
	require.NoError(t, e.users.Create(context.Background(), u))
	return u
}

func (e *testEnv) reload(t *testing.T, id string) *model.Match {
	t.Helper()
	m, err := e.matches.FindByID(context.Background(), id)
	require.NoError(t, err)
	return m
}

// recordingLauncher holds tasks until runAll, so tests control when the
// pipeline executes.
type recordingLauncher struct {
	mu    sync.Mutex
	names []string
	tasks []func(context.Context)
}

func (l *recordingLauncher) Launch(name string, task func(ctx context.Context)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.names = append(l.names, name)
	l.tasks = append(l.tasks, task)
}

func (l *recordingLauncher) count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.tasks)
}

func (l *recordingLauncher) runAll() {
	l.mu.Lock()
	tasks := l.tasks
	l.tasks = nil
	l.mu.Unlock()
	for _, task := range tasks {
		task(context.Background())
	}
}

type spyStrategy struct {
	name    string
	outcome *matching.Outcome
	err     error
	panics  bool
	calls   int
}

func (s *spyStrategy) Name() string { return s.name }

func (s *spyStrategy) Run(context.Context, *model.User, *model.User) (*matching.Outcome, error) {
	s.calls++
	if s.panics {
		panic("strategy exploded")
	}
	if s.err != nil {
		return nil, s.err
	}
	if s.outcome != nil {
		return s.outcome, nil
	}
	return &matching.Outcome{Report: matching.NeutralReport(), ChatLog: matching.PlaceholderTranscript()}, nil
}

type stubAgent struct {
	mu       sync.Mutex
	actReply string
	actErr   error
	tags     []json.RawMessage
	chats    int
	acts     int
}

func (a *stubAgent) Chat(context.Context, string, string, service.ChatOptions) (*service.ChatResult, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.chats++
	return &service.ChatResult{Answer: fmt.Sprintf("answer %d", a.chats), ContinuationToken: "session-1"}, nil
}

func (a *stubAgent) Act(context.Context, string, string, string) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.acts++
	return a.actReply, a.actErr
}

func (a *stubAgent) FetchInterestTags(context.Context, string) []json.RawMessage {
	return a.tags
}

type stubLLM struct {
	reply string
	calls int
}

func (l *stubLLM) Complete(context.Context, string, string, service.CompletionOptions) (string, error) {
	l.calls++
	return l.reply, nil
}

type stubEmbedder struct {
	failFor string
	texts   []string
}

func (e *stubEmbedder) GenerateEmbedding(_ context.Context, text string) ([]float32, error) {
	if e.failFor != "" && text == e.failFor {
		return nil, errors.New("quota exceeded")
	}
	e.texts = append(e.texts, text)
	return make([]float32, service.EmbeddingDimensions), nil
}

type stubTokens struct{}

func (stubTokens) GenerateToken(userID string) (string, error) { return "token-for-" + userID, nil }

const goodReport = `{"totalScore": 88, "dimensions": {
	"career": {"score": 90, "label": "Career Direction", "reason": "aligned"},
	"industry": {"score": 85, "label": "Industry Insight", "reason": "aligned"},
	"workStyle": {"score": 86, "label": "Work Style", "reason": "aligned"},
	"values": {"score": 91, "label": "Values", "reason": "aligned"}},
	"summary": "Great fit.", "recommendation": "Meet up."}`
