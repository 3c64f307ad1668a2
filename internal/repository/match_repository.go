package repository

import (
	"context"
	"errors"

	"github.com/fadilmartias/persona-match/internal/model"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ErrMatchFinalized is returned when a terminal write targets a match that
// already left the processing state.
var ErrMatchFinalized = errors.New("match already finalized")

type MatchRepository struct {
	db *gorm.DB
}

func NewMatchRepository(db *gorm.DB) *MatchRepository {
	return &MatchRepository{db}
}

func (r *MatchRepository) Create(ctx context.Context, match *model.Match) error {
	return r.db.WithContext(ctx).Create(match).Error
}

func (r *MatchRepository) FindByID(ctx context.Context, id string) (*model.Match, error) {
	mid, err := uuid.Parse(id)
	if err != nil {
		return nil, gorm.ErrRecordNotFound
	}
	var match model.Match
	if err := r.db.WithContext(ctx).First(&match, "id = ?", mid).Error; err != nil {
		return nil, err
	}
	return &match, nil
}

// FindActiveBetween returns the newest processing or completed match for the
// unordered pair {a, b}, whoever initiated it.
func (r *MatchRepository) FindActiveBetween(ctx context.Context, a, b uuid.UUID) (*model.Match, error) {
	var match model.Match
	err := r.db.WithContext(ctx).
		Where("(user_a_id = ? AND user_b_id = ?) OR (user_a_id = ? AND user_b_id = ?)", a, b, b, a).
		Where("status IN ?", []model.MatchStatus{model.MatchStatusProcessing, model.MatchStatusCompleted}).
		Order("created_at DESC").
		First(&match).Error
	if err != nil {
		return nil, err
	}
	return &match, nil
}

// Finish performs the single processing -> terminal transition. chatLog is
// left untouched when nil.
func (r *MatchRepository) Finish(ctx context.Context, id uuid.UUID, status model.MatchStatus, score int, report, chatLog datatypes.JSON) error {
	if !status.IsTerminal() {
		return errors.New("finish requires a terminal status")
	}
	updates := map[string]any{
		"status": status,
		"score":  score,
		"report": report,
	}
	if chatLog != nil {
		updates["chat_log"] = chatLog
	}

	res := r.db.WithContext(ctx).Model(&model.Match{}).
		Where("id = ? AND status = ?", id, model.MatchStatusProcessing).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrMatchFinalized
	}
	return nil
}

// ListForUser returns matches where the user is on either side, newest first.
func (r *MatchRepository) ListForUser(ctx context.Context, userID uuid.UUID, status ...model.MatchStatus) ([]model.Match, error) {
	var matches []model.Match
	q := r.db.WithContext(ctx).
		Where("(user_a_id = ? OR user_b_id = ?)", userID, userID)
	if len(status) > 0 {
		q = q.Where("status IN ?", status)
	}
	err := q.Order("created_at DESC").Find(&matches).Error
	return matches, err
}
