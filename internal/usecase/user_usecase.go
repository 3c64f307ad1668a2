package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/fadilmartias/persona-match/internal/dto"
	"github.com/fadilmartias/persona-match/internal/matching"
	"github.com/fadilmartias/persona-match/internal/model"
	"github.com/fadilmartias/persona-match/internal/personality"
	"github.com/fadilmartias/persona-match/internal/response"
	"github.com/fadilmartias/persona-match/internal/service"
	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
)

const (
	maxNicknameLength  = 20
	embeddingBatchSize = 50
	defaultSimilarTopK = 10
	maxSimilarTopK     = 50
)

type UserUsecase struct {
	users    UserStore
	matches  MatchStore
	tokens   TokenIssuer
	embedder service.EmbeddingServiceInterface
	now      func() time.Time
}

// NewUserUsecase builds the user usecase. embedder may be nil, which disables
// embedding backfill.
func NewUserUsecase(users UserStore, matches MatchStore, tokens TokenIssuer, embedder service.EmbeddingServiceInterface) *UserUsecase {
	return &UserUsecase{users: users, matches: matches, tokens: tokens, embedder: embedder, now: time.Now}
}

// RegisterGuest creates a user without external credentials and signs them in.
func (uc *UserUsecase) RegisterGuest(ctx context.Context, req dto.RegisterGuestRequest) (*dto.SessionResponse, error) {
	nickname := strings.TrimSpace(req.Nickname)
	if nickname == "" {
		return nil, fmt.Errorf("%w: nickname is required", ErrInvalidInput)
	}
	if utf8.RuneCountInString(nickname) > maxNicknameLength {
		return nil, fmt.Errorf("%w: nickname must be at most %d characters", ErrInvalidInput, maxNicknameLength)
	}

	user := &model.User{
		IdentityKey:    guestIdentityKey(uc.now()),
		Name:           nickname,
		TokenExpiresAt: time.Unix(0, 0).UTC(),
	}

	key := personality.Key(req.PersonalityType)
	if key != "" && !personality.IsValid(key) {
		return nil, fmt.Errorf("%w: unknown personality type %q", ErrInvalidInput, req.PersonalityType)
	}
	if req.PersonalityScores != nil {
		encoded, err := json.Marshal(req.PersonalityScores)
		if err != nil {
			return nil, err
		}
		user.PersonalityScores = datatypes.JSON(encoded)
		if key == "" {
			key = personality.Classify(*req.PersonalityScores)
		}
	}
	user.PersonalityType = string(key)

	if err := uc.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create guest: %w", err)
	}
	token, err := uc.tokens.GenerateToken(user.ID.String())
	if err != nil {
		return nil, err
	}
	return &dto.SessionResponse{User: userView(user), Token: token}, nil
}

func guestIdentityKey(now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:6]
	return fmt.Sprintf("%s%d_%s", model.GuestPrefix, now.UnixMilli(), suffix)
}

func (uc *UserUsecase) Me(ctx context.Context, userID string) (*dto.UserView, error) {
	user, err := loadCaller(ctx, uc.users, userID)
	if err != nil {
		return nil, err
	}
	view := userView(user)
	return &view, nil
}

// ListUsers lists everyone but the caller. Users the caller has a completed
// match with come first, best score first; the rest keep their order.
func (uc *UserUsecase) ListUsers(ctx context.Context, userID string, page, pageSize int) ([]dto.DirectoryEntry, *response.Pagination, error) {
	me, err := loadCaller(ctx, uc.users, userID)
	if err != nil {
		return nil, nil, err
	}

	users, err := uc.users.ListOthers(ctx, me.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("list users: %w", err)
	}
	completed, err := uc.matches.ListForUser(ctx, me.ID, model.MatchStatusCompleted)
	if err != nil {
		return nil, nil, fmt.Errorf("list matches: %w", err)
	}

	best := make(map[uuid.UUID]model.Match)
	for _, m := range completed {
		other, ok := m.OtherUserID(me.ID)
		if !ok {
			continue
		}
		if cur, seen := best[other]; !seen || m.Score > cur.Score {
			best[other] = m
		}
	}

	entries := make([]dto.DirectoryEntry, len(users))
	for i := range users {
		entries[i] = directoryEntry(&users[i])
		if m, ok := best[users[i].ID]; ok {
			score, id := m.Score, m.ID.String()
			entries[i].MatchScore = &score
			entries[i].MatchID = &id
		}
	}
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i].MatchScore, entries[j].MatchScore
		switch {
		case a != nil && b != nil:
			return *a > *b
		case a != nil:
			return true
		default:
			return false
		}
	})

	pagination := response.NewPagination(page, pageSize, int64(len(entries)))
	if pagination.From == 0 {
		return []dto.DirectoryEntry{}, pagination, nil
	}
	return entries[pagination.From-1 : pagination.To], pagination, nil
}

// Similar returns the users closest to the caller by interest embedding. It is
// empty until the caller has been embedded.
func (uc *UserUsecase) Similar(ctx context.Context, userID string, limit int) ([]dto.DirectoryEntry, error) {
	me, err := loadCaller(ctx, uc.users, userID)
	if err != nil {
		return nil, err
	}
	if me.InterestEmbedding == nil {
		return []dto.DirectoryEntry{}, nil
	}
	if limit <= 0 {
		limit = defaultSimilarTopK
	}
	if limit > maxSimilarTopK {
		limit = maxSimilarTopK
	}

	users, err := uc.users.SearchSimilar(ctx, me.ID, *me.InterestEmbedding, limit)
	if err != nil {
		return nil, fmt.Errorf("search similar users: %w", err)
	}
	out := make([]dto.DirectoryEntry, len(users))
	for i := range users {
		out[i] = directoryEntry(&users[i])
	}
	return out, nil
}

// BackfillEmbeddings embeds the cached interest tags of users that have none
// yet. A failing user is logged and skipped.
func (uc *UserUsecase) BackfillEmbeddings(ctx context.Context) (int, error) {
	if uc.embedder == nil {
		return 0, nil
	}
	users, err := uc.users.ListMissingEmbedding(ctx, embeddingBatchSize)
	if err != nil {
		return 0, fmt.Errorf("list users missing embeddings: %w", err)
	}

	done := 0
	for i := range users {
		u := &users[i]
		tags := matching.NormalizeTags(u.InterestTags)
		if len(tags) == 0 {
			if err := uc.users.MarkEmbeddingSkipped(ctx, u.ID); err != nil {
				logrus.WithField("user_id", u.ID.String()).Warnf("mark embedding skipped: %v", err)
			}
			continue
		}
		vec, err := uc.embedder.GenerateEmbedding(ctx, strings.Join(tags, ", "))
		if err != nil {
			logrus.WithField("user_id", u.ID.String()).Warnf("embed interest tags: %v", err)
			continue
		}
		if err := uc.users.UpdateEmbedding(ctx, u.ID, pgvector.NewVector(vec)); err != nil {
			logrus.WithField("user_id", u.ID.String()).Warnf("save embedding: %v", err)
			continue
		}
		done++
	}
	return done, nil
}
