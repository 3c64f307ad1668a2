package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"runtime/debug"

	"github.com/fadilmartias/persona-match/internal/dto"
	"github.com/fadilmartias/persona-match/internal/matching"
	"github.com/fadilmartias/persona-match/internal/model"
	"github.com/fadilmartias/persona-match/internal/repository"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type MatchUsecase struct {
	users      UserStore
	matches    MatchStore
	strategies matching.Selector
	launcher   TaskLauncher
	inflight   singleflight.Group
}

func NewMatchUsecase(users UserStore, matches MatchStore, strategies matching.Selector, launcher TaskLauncher) *MatchUsecase {
	return &MatchUsecase{users: users, matches: matches, strategies: strategies, launcher: launcher}
}

// StartMatch returns the active match for the pair if there is one, otherwise
// records a new processing match and launches the pipeline without waiting.
func (uc *MatchUsecase) StartMatch(ctx context.Context, initiatorID, targetID string) (*dto.StartMatchResponse, error) {
	if initiatorID == "" {
		return nil, ErrUnauthenticated
	}
	initiator, err := uc.users.FindByID(ctx, initiatorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnauthenticated
		}
		return nil, fmt.Errorf("load initiator: %w", err)
	}
	if targetID == "" {
		return nil, fmt.Errorf("%w: target user is required", ErrInvalidInput)
	}
	target, err := uc.users.FindByID(ctx, targetID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("load target: %w", err)
	}
	if initiator.ID == target.ID {
		return nil, ErrSelfMatch
	}

	// Concurrent requests for the same pair share one lookup-or-create.
	v, err, _ := uc.inflight.Do(pairKey(initiator.ID, target.ID), func() (any, error) {
		return uc.startOrReuse(ctx, initiator.ID, target.ID)
	})
	if err != nil {
		return nil, err
	}
	return v.(*dto.StartMatchResponse), nil
}

func (uc *MatchUsecase) startOrReuse(ctx context.Context, a, b uuid.UUID) (*dto.StartMatchResponse, error) {
	existing, err := uc.matches.FindActiveBetween(ctx, a, b)
	if err == nil {
		return &dto.StartMatchResponse{MatchID: existing.ID.String(), Status: string(existing.Status)}, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("look up existing match: %w", err)
	}

	match := &model.Match{
		UserAID: a,
		UserBID: b,
		Status:  model.MatchStatusProcessing,
		Report:  datatypes.JSON("{}"),
		ChatLog: datatypes.JSON("[]"),
	}
	if err := uc.matches.Create(ctx, match); err != nil {
		return nil, fmt.Errorf("create match: %w", err)
	}

	matchID, userA, userB := match.ID, a.String(), b.String()
	uc.launcher.Launch("match:"+matchID.String(), func(ctx context.Context) {
		uc.Run(ctx, matchID, userA, userB)
	})
	logrus.WithFields(logrus.Fields{"match_id": matchID.String(), "user_id": userA}).Info("match started")

	return &dto.StartMatchResponse{MatchID: matchID.String(), Status: string(model.MatchStatusProcessing)}, nil
}

func pairKey(a, b uuid.UUID) string {
	x, y := a.String(), b.String()
	if y < x {
		x, y = y, x
	}
	return x + ":" + y
}

// Run drives one match to its terminal state. It never returns an error:
// every failure, including a panic, ends as a failed match record.
func (uc *MatchUsecase) Run(ctx context.Context, matchID uuid.UUID, userAID, userBID string) {
	log := logrus.WithField("match_id", matchID.String())

	outcome, strategy, err := uc.execute(ctx, userAID, userBID)
	if err == nil {
		var report, chatLog []byte
		if report, err = json.Marshal(outcome.Report); err == nil {
			chatLog, err = json.Marshal(outcome.ChatLog)
		}
		if err == nil {
			uc.finish(ctx, log.WithField("strategy", strategy), matchID, model.MatchStatusCompleted,
				outcome.Report.TotalScore, report, chatLog)
			return
		}
	}

	log.WithField("strategy", strategy).Errorf("match failed: %v", err)
	payload, _ := json.Marshal(map[string]string{"error": err.Error()})
	uc.finish(ctx, log, matchID, model.MatchStatusFailed, 0, payload, nil)
}

func (uc *MatchUsecase) execute(ctx context.Context, userAID, userBID string) (outcome *matching.Outcome, strategy string, err error) {
	defer func() {
		if r := recover(); r != nil {
			logrus.Errorf("match pipeline panicked: %v\n%s", r, debug.Stack())
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	a, err := uc.users.FindByID(ctx, userAID)
	if err != nil {
		return nil, "", fmt.Errorf("load user A: %w", err)
	}
	b, err := uc.users.FindByID(ctx, userBID)
	if err != nil {
		return nil, "", fmt.Errorf("load user B: %w", err)
	}

	s := uc.strategies.Select(a, b)
	outcome, err = s.Run(ctx, a, b)
	return outcome, s.Name(), err
}

func (uc *MatchUsecase) finish(ctx context.Context, log *logrus.Entry, id uuid.UUID, status model.MatchStatus, score int, report, chatLog []byte) {
	var chat datatypes.JSON
	if chatLog != nil {
		chat = datatypes.JSON(chatLog)
	}
	err := uc.matches.Finish(ctx, id, status, score, datatypes.JSON(report), chat)
	switch {
	case errors.Is(err, repository.ErrMatchFinalized):
		log.Warn("match already finalized, dropping result")
	case err != nil:
		log.Errorf("persist match result: %v", err)
	default:
		log.WithFields(logrus.Fields{"status": status, "score": score}).Info("match finished")
	}
}

// GetMatch is the polling read. Only the two participants may see a match.
func (uc *MatchUsecase) GetMatch(ctx context.Context, callerID, matchID string) (*dto.MatchView, error) {
	if callerID == "" {
		return nil, ErrUnauthenticated
	}
	caller, err := uuid.Parse(callerID)
	if err != nil {
		return nil, ErrUnauthenticated
	}

	match, err := uc.matches.FindByID(ctx, matchID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("load match: %w", err)
	}
	if !match.HasUser(caller) {
		return nil, ErrForbidden
	}

	users, err := uc.users.FindByIDs(ctx, []uuid.UUID{match.UserAID, match.UserBID})
	if err != nil {
		return nil, fmt.Errorf("load participants: %w", err)
	}
	byID := make(map[uuid.UUID]*model.User, len(users))
	for i := range users {
		byID[users[i].ID] = &users[i]
	}

	return &dto.MatchView{
		ID:        match.ID,
		Status:    string(match.Status),
		Score:     match.Score,
		Report:    rawOr(match.Report, "{}"),
		ChatLog:   rawOr(match.ChatLog, "[]"),
		CreatedAt: match.CreatedAt,
		UserA:     participantView(byID[match.UserAID]),
		UserB:     participantView(byID[match.UserBID]),
	}, nil
}

// ListMatches returns the caller's matches from either side, newest first.
func (uc *MatchUsecase) ListMatches(ctx context.Context, callerID string) ([]dto.MatchSummary, error) {
	caller, err := uuid.Parse(callerID)
	if err != nil {
		return nil, ErrUnauthenticated
	}
	matches, err := uc.matches.ListForUser(ctx, caller)
	if err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}

	partnerIDs := make([]uuid.UUID, 0, len(matches))
	for i := range matches {
		other, _ := matches[i].OtherUserID(caller)
		partnerIDs = append(partnerIDs, other)
	}
	partners, err := uc.users.FindByIDs(ctx, partnerIDs)
	if err != nil {
		return nil, fmt.Errorf("load partners: %w", err)
	}
	byID := make(map[uuid.UUID]*model.User, len(partners))
	for i := range partners {
		byID[partners[i].ID] = &partners[i]
	}

	out := make([]dto.MatchSummary, 0, len(matches))
	for i, m := range matches {
		out = append(out, dto.MatchSummary{
			ID:            m.ID,
			Status:        string(m.Status),
			Score:         m.Score,
			InitiatedByMe: m.UserAID == caller,
			Partner:       participantView(byID[partnerIDs[i]]),
			CreatedAt:     m.CreatedAt,
		})
	}
	return out, nil
}
