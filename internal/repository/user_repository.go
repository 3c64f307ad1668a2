package repository

import (
	"context"
	"time"

	"github.com/fadilmartias/persona-match/internal/model"
	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db}
}

func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

// FindByID treats a malformed id the same as a missing row.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, gorm.ErrRecordNotFound
	}
	var user model.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", uid).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]model.User, error) {
	var users []model.User
	if len(ids) == 0 {
		return users, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error
	return users, err
}

// ListOthers returns every user except the caller, oldest first.
func (r *UserRepository) ListOthers(ctx context.Context, exclude uuid.UUID) ([]model.User, error) {
	var users []model.User
	err := r.db.WithContext(ctx).
		Where("id <> ?", exclude).
		Order("created_at ASC").
		Find(&users).Error
	return users, err
}

// SaveInterestTags overwrites the cached tag list and makes the user eligible
// for embedding again. Concurrent writers race last-writer-wins, which is
// harmless since both write the same upstream list.
func (r *UserRepository) SaveInterestTags(ctx context.Context, id string, tags datatypes.JSON) error {
	return r.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", id).
		Updates(map[string]any{"interest_tags": tags, "embedding_skipped": false}).Error
}

func (r *UserRepository) UpdateTokens(ctx context.Context, id, accessToken, refreshToken string, expiresAt time.Time) error {
	return r.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"access_token":     accessToken,
			"refresh_token":    refreshToken,
			"token_expires_at": expiresAt,
		}).Error
}

func (r *UserRepository) UpdatePersonality(ctx context.Context, id string, personalityType string, scores datatypes.JSON) error {
	return r.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"personality_type":   personalityType,
			"personality_scores": scores,
		}).Error
}

func (r *UserRepository) ListMissingEmbedding(ctx context.Context, limit int) ([]model.User, error) {
	var users []model.User
	err := r.db.WithContext(ctx).
		Where("interest_tags IS NOT NULL AND interest_embedding IS NULL AND embedding_skipped = ?", false).
		Order("updated_at ASC").
		Limit(limit).
		Find(&users).Error
	return users, err
}

// MarkEmbeddingSkipped takes a user out of the backfill until its tags change.
func (r *UserRepository) MarkEmbeddingSkipped(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", id).
		Update("embedding_skipped", true).Error
}

func (r *UserRepository) UpdateEmbedding(ctx context.Context, id uuid.UUID, embedding pgvector.Vector) error {
	return r.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", id).
		Update("interest_embedding", embedding).Error
}

// SearchSimilar ranks other users by euclidean distance between interest embeddings.
func (r *UserRepository) SearchSimilar(ctx context.Context, exclude uuid.UUID, embedding pgvector.Vector, topK int) ([]model.User, error) {
	var users []model.User
	err := r.db.WithContext(ctx).Raw(`
        SELECT *
        FROM users
        WHERE id <> ? AND interest_embedding IS NOT NULL
        ORDER BY interest_embedding <-> ?
        LIMIT ?
    `, exclude, embedding, topK).Scan(&users).Error
	return users, err
}
