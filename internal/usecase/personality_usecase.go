package usecase

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/fadilmartias/persona-match/internal/dto"
	"github.com/fadilmartias/persona-match/internal/matching"
	"github.com/fadilmartias/persona-match/internal/personality"
	"github.com/fadilmartias/persona-match/internal/service"
	"github.com/fadilmartias/persona-match/internal/util"
	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
	"gorm.io/datatypes"
)

const scoresInstruction = `Output only a valid JSON object, with no explanatory text.
Structure:
{
  "career": number (0-100),
  "industry": number (0-100),
  "workStyle": number (0-100),
  "values": number (0-100)
}
From the user's interest tags and personal traits, rate them on four dimensions:
- career: how clear and driven their career direction is; high means a clear goal
- industry: depth of understanding of their industry; high means deep insight and a broad view
- workStyle: fast-paced and innovative (high) versus steady and deliberate (low)
- values: how much they value teamwork, social impact and relationships; high means these matter a lot`

// fallbackScores is used when the agent's answer cannot be read as scores.
var fallbackScores = personality.Scores{Career: 60, Industry: 60, WorkStyle: 55, Values: 60}

type PersonalityUsecase struct {
	users UserStore
	agent service.AgentServiceInterface
}

func NewPersonalityUsecase(users UserStore, agent service.AgentServiceInterface) *PersonalityUsecase {
	return &PersonalityUsecase{users: users, agent: agent}
}

// Generate derives the caller's archetype from their personal agent. A user
// who already has one gets it back unchanged.
func (uc *PersonalityUsecase) Generate(ctx context.Context, userID string) (*dto.PersonalityResponse, error) {
	user, err := loadCaller(ctx, uc.users, userID)
	if err != nil {
		return nil, err
	}
	if user.PersonalityType != "" {
		if scores := decodeScores(user.PersonalityScores); scores != nil {
			return personalityResponse(personality.Key(user.PersonalityType), *scores), nil
		}
	}
	if user.IsGuest() {
		return nil, fmt.Errorf("%w: guests have no personal agent, take the quiz instead", ErrInvalidInput)
	}

	if !user.HasInterestTags() {
		if tags := uc.agent.FetchInterestTags(ctx, userID); len(tags) > 0 {
			if encoded, err := json.Marshal(tags); err == nil {
				user.InterestTags = datatypes.JSON(encoded)
				if err := uc.users.SaveInterestTags(ctx, userID, user.InterestTags); err != nil {
					logrus.WithField("user_id", userID).Warnf("cache interest tags: %v", err)
				}
			}
		}
	}

	prompt := fmt.Sprintf("## User\nName: %s\nInterest tags: %s\n\nRate this user's professional traits from the information above.",
		user.Name, matching.FormatTags(user.InterestTags))
	raw, err := uc.agent.Act(ctx, userID, prompt, scoresInstruction)
	if err != nil {
		return nil, fmt.Errorf("infer personality: %w", err)
	}

	scores, ok := parseScores(raw)
	if !ok {
		logrus.WithField("user_id", userID).Warn("unusable personality scores from agent, using defaults")
		scores = fallbackScores
	}
	return uc.save(ctx, userID, scores)
}

// SubmitQuiz scores quiz answers, clamps them to 0-100 and classifies the caller.
func (uc *PersonalityUsecase) SubmitQuiz(ctx context.Context, userID string, answers []int) (*dto.PersonalityResponse, error) {
	if _, err := loadCaller(ctx, uc.users, userID); err != nil {
		return nil, err
	}
	if len(answers) == 0 {
		return nil, fmt.Errorf("%w: at least one answer is required", ErrInvalidInput)
	}
	return uc.save(ctx, userID, personality.ScoreQuiz(answers))
}

func (uc *PersonalityUsecase) save(ctx context.Context, userID string, scores personality.Scores) (*dto.PersonalityResponse, error) {
	key := personality.Classify(scores)
	encoded, err := json.Marshal(scores)
	if err != nil {
		return nil, err
	}
	if err := uc.users.UpdatePersonality(ctx, userID, string(key), datatypes.JSON(encoded)); err != nil {
		return nil, fmt.Errorf("save personality: %w", err)
	}
	return personalityResponse(key, scores), nil
}

// parseScores requires all four dimensions to be numbers. Values are kept as returned.
func parseScores(raw string) (personality.Scores, bool) {
	obj, ok := util.ExtractJSONObject(raw)
	if !ok || !gjson.Valid(obj) {
		return personality.Scores{}, false
	}
	r := gjson.Parse(obj)
	fields := []string{"career", "industry", "workStyle", "values"}
	vals := make([]float64, len(fields))
	for i, f := range fields {
		v := r.Get(f)
		if v.Type != gjson.Number {
			return personality.Scores{}, false
		}
		vals[i] = v.Float()
	}
	return personality.Scores{Career: vals[0], Industry: vals[1], WorkStyle: vals[2], Values: vals[3]}, true
}

func personalityResponse(key personality.Key, scores personality.Scores) *dto.PersonalityResponse {
	return &dto.PersonalityResponse{
		PersonalityType: string(key),
		Scores:          scores,
		Archetype:       archetypeView(key),
	}
}
