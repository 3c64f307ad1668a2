package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/fadilmartias/persona-match/internal/model"
	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// UserStore is the user half of the profile store.
type UserStore interface {
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, id string) (*model.User, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]model.User, error)
	ListOthers(ctx context.Context, exclude uuid.UUID) ([]model.User, error)
	SaveInterestTags(ctx context.Context, id string, tags datatypes.JSON) error
	UpdatePersonality(ctx context.Context, id string, personalityType string, scores datatypes.JSON) error
	ListMissingEmbedding(ctx context.Context, limit int) ([]model.User, error)
	UpdateEmbedding(ctx context.Context, id uuid.UUID, embedding pgvector.Vector) error
	MarkEmbeddingSkipped(ctx context.Context, id uuid.UUID) error
	SearchSimilar(ctx context.Context, exclude uuid.UUID, embedding pgvector.Vector, topK int) ([]model.User, error)
}

// MatchStore is the match half of the profile store.
type MatchStore interface {
	Create(ctx context.Context, match *model.Match) error
	FindByID(ctx context.Context, id string) (*model.Match, error)
	FindActiveBetween(ctx context.Context, a, b uuid.UUID) (*model.Match, error)
	Finish(ctx context.Context, id uuid.UUID, status model.MatchStatus, score int, report, chatLog datatypes.JSON) error
	ListForUser(ctx context.Context, userID uuid.UUID, status ...model.MatchStatus) ([]model.Match, error)
}

// TaskLauncher runs work detached from the calling request.
type TaskLauncher interface {
	Launch(name string, task func(ctx context.Context))
}

// TokenIssuer mints session tokens for newly registered users.
type TokenIssuer interface {
	GenerateToken(userID string) (string, error)
}

// loadCaller resolves the session's user. A session for a user that no longer
// exists counts as unauthenticated.
func loadCaller(ctx context.Context, users UserStore, userID string) (*model.User, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}
	user, err := users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnauthenticated
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	return user, nil
}
