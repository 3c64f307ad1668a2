package matching

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fadilmartias/persona-match/internal/model"
	"github.com/fadilmartias/persona-match/internal/service"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
)

const (
	personaPrompt = "Someone wants to get to know you through conversation. Answer from your real personality, " +
		"experience and preferences, naturally and sincerely. Keep each answer under 100 words."

	followUpTemplate = "The other person just said: %q\n\n" +
		"First respond to what they said in one or two sentences, then move naturally to the next topic: %s"

	reportInstruction = `Output only a valid JSON object, with no explanatory text.
Structure:
{
  "totalScore": number (integer 0-100),
  "dimensions": {
    "career": { "score": number (0-100), "label": "Career Direction", "reason": "one-sentence reason" },
    "industry": { "score": number (0-100), "label": "Industry Insight", "reason": "one-sentence reason" },
    "workStyle": { "score": number (0-100), "label": "Work Style", "reason": "one-sentence reason" },
    "values": { "score": number (0-100), "label": "Values", "reason": "one-sentence reason" }
  },
  "summary": "match summary in under 30 words",
  "recommendation": "one-sentence recommendation"
}
Rate how well user A and user B fit professionally across career direction, industry insight, work style and values. totalScore is the overall rating of the four dimensions.`
)

// TagCache persists interest tags fetched on demand.
type TagCache interface {
	SaveInterestTags(ctx context.Context, id string, tags datatypes.JSON) error
}

// PersonalAgentStrategy interviews user B's personal agent and asks user A's
// agent to score the transcript.
type PersonalAgentStrategy struct {
	agent service.AgentServiceInterface
	cache TagCache
}

func NewPersonalAgentStrategy(agent service.AgentServiceInterface, cache TagCache) *PersonalAgentStrategy {
	return &PersonalAgentStrategy{agent: agent, cache: cache}
}

func (s *PersonalAgentStrategy) Name() string { return "personal_agent" }

func (s *PersonalAgentStrategy) Run(ctx context.Context, a, b *model.User) (*Outcome, error) {
	s.ensureTags(ctx, a)
	s.ensureTags(ctx, b)

	chatLog, err := s.interview(ctx, b)
	if err != nil {
		return nil, err
	}

	raw, err := s.agent.Act(ctx, a.ID.String(), evaluationPrompt(a, b, chatLog), reportInstruction)
	if err != nil {
		return nil, fmt.Errorf("evaluate match: %w", err)
	}

	report, err := ParseReport(raw)
	if err != nil {
		logrus.WithField("user_id", a.ID.String()).Warnf("unusable report from agent, using neutral report: %v", err)
		report = NeutralReport()
	}
	return &Outcome{Report: report, ChatLog: chatLog}, nil
}

// ensureTags fills an empty tag cache. Failures leave the cache empty.
// Two matches sharing a user may both write here; the values are equivalent.
func (s *PersonalAgentStrategy) ensureTags(ctx context.Context, u *model.User) {
	if u.HasInterestTags() {
		return
	}
	tags := s.agent.FetchInterestTags(ctx, u.ID.String())
	if len(tags) == 0 {
		return
	}
	encoded, err := json.Marshal(tags)
	if err != nil {
		return
	}
	u.InterestTags = datatypes.JSON(encoded)
	if err := s.cache.SaveInterestTags(ctx, u.ID.String(), u.InterestTags); err != nil {
		logrus.WithField("user_id", u.ID.String()).Warnf("cache interest tags: %v", err)
	}
}

// interview runs the rounds strictly in order; each round needs the previous
// answer and continuation token.
func (s *PersonalAgentStrategy) interview(ctx context.Context, b *model.User) ([]ChatRound, error) {
	chatLog := make([]ChatRound, 0, len(Questions))
	var continuation string

	for i, question := range Questions {
		prompt := question
		opts := service.ChatOptions{ContinuationToken: continuation}
		if i == 0 {
			opts.PersonaPrompt = personaPrompt
		} else {
			prompt = fmt.Sprintf(followUpTemplate, chatLog[i-1].Answer, question)
		}

		res, err := s.agent.Chat(ctx, b.ID.String(), prompt, opts)
		if err != nil {
			return nil, fmt.Errorf("round %d: %w", i+1, err)
		}
		if res.ContinuationToken != "" {
			continuation = res.ContinuationToken
		}

		answer := strings.TrimSpace(res.Answer)
		if answer == "" {
			answer = PlaceholderAnswer
		}
		chatLog = append(chatLog, ChatRound{Question: question, Answer: answer})
	}
	return chatLog, nil
}

func evaluationPrompt(a, b *model.User, chatLog []ChatRound) string {
	var sb strings.Builder
	sb.WriteString("## User A\n")
	fmt.Fprintf(&sb, "Name: %s\nInterest tags: %s\n\n", displayName(a), FormatTags(a.InterestTags))
	sb.WriteString("## User B conversation\n")
	fmt.Fprintf(&sb, "Name: %s\nInterest tags: %s\n\n", displayName(b), FormatTags(b.InterestTags))
	sb.WriteString(formatTranscript(chatLog))
	sb.WriteString("\n\nRate how well user A and user B fit professionally based on the information above.")
	return sb.String()
}

func formatTranscript(chatLog []ChatRound) string {
	parts := make([]string, len(chatLog))
	for i, r := range chatLog {
		parts[i] = fmt.Sprintf("Question %d: %s\nAnswer: %s", i+1, r.Question, r.Answer)
	}
	return strings.Join(parts, "\n\n")
}

func displayName(u *model.User) string {
	if u.Name == "" {
		return "unknown"
	}
	return u.Name
}
