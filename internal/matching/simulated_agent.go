package matching

import (
	"context"
	"fmt"
	"strings"

	"github.com/fadilmartias/persona-match/internal/model"
	"github.com/fadilmartias/persona-match/internal/personality"
	"github.com/fadilmartias/persona-match/internal/service"
	"github.com/fadilmartias/persona-match/internal/util"
	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
)

const simulationSystemPrompt = "You are a matchmaking simulator. You role-play a person in a short interview " +
	"and then rate how well two people would work together. Reply with a single JSON object and nothing else."

var simulationOptions = service.CompletionOptions{Temperature: 0.8, MaxTokens: 2000}

// SimulatedAgentStrategy asks the generic model to voice user B and score the
// pair in one call. Used whenever a participant has no personal agent.
type SimulatedAgentStrategy struct {
	llm service.LLMServiceInterface
}

func NewSimulatedAgentStrategy(llm service.LLMServiceInterface) *SimulatedAgentStrategy {
	return &SimulatedAgentStrategy{llm: llm}
}

func (s *SimulatedAgentStrategy) Name() string { return "simulated_agent" }

func (s *SimulatedAgentStrategy) Run(ctx context.Context, a, b *model.User) (*Outcome, error) {
	raw, err := s.llm.Complete(ctx, simulationSystemPrompt, simulationPrompt(a, b), simulationOptions)
	if err != nil {
		return nil, fmt.Errorf("simulate match: %w", err)
	}
	return parseSimulation(raw), nil
}

// parseSimulation never fails. The transcript and the report fall back
// independently when their part of the response is unusable.
func parseSimulation(raw string) *Outcome {
	out := &Outcome{ChatLog: PlaceholderTranscript(), Report: NeutralReport()}

	obj, ok := util.ExtractJSONObject(util.StripCodeFence(raw))
	if !ok || !gjson.Valid(obj) {
		logrus.Warn("simulation output is not JSON, using fallback transcript and report")
		return out
	}
	root := gjson.Parse(obj)

	if chatLog, ok := simulatedTranscript(root.Get("chatLog")); ok {
		out.ChatLog = chatLog
	} else {
		logrus.Warn("simulation chatLog unusable, using placeholder transcript")
	}

	if report, err := reportFrom(root.Get("report")); err == nil {
		out.Report = report
	} else {
		logrus.Warnf("simulation report unusable, using neutral report: %v", err)
	}
	return out
}

// simulatedTranscript keeps the model's answers but always records the
// canonical questions.
func simulatedTranscript(node gjson.Result) ([]ChatRound, bool) {
	if !node.IsArray() {
		return nil, false
	}
	items := node.Array()
	if len(items) != len(Questions) {
		return nil, false
	}
	chatLog := make([]ChatRound, len(Questions))
	for i, item := range items {
		answer := item.Get("answer")
		if answer.Type != gjson.String || strings.TrimSpace(answer.String()) == "" {
			return nil, false
		}
		chatLog[i] = ChatRound{Question: Questions[i], Answer: strings.TrimSpace(answer.String())}
	}
	return chatLog, true
}

func simulationPrompt(a, b *model.User) string {
	var sb strings.Builder
	sb.WriteString("## User A\n")
	writePersona(&sb, a)
	sb.WriteString("\n## User B\n")
	writePersona(&sb, b)

	sb.WriteString("\n## Task\n")
	sb.WriteString("1. Play user B and answer each of these questions in their voice, under 100 words each:\n")
	for i, q := range Questions {
		fmt.Fprintf(&sb, "   Q%d: %s\n", i+1, q)
	}
	sb.WriteString("2. Rate how well user A and user B fit professionally.\n\n")
	sb.WriteString("Respond with this JSON structure:\n")
	sb.WriteString(`{"chatLog": [{"question": "...", "answer": "..."}, ... four entries ...], "report": <report>}`)
	sb.WriteString("\n\nwhere <report> follows these rules:\n")
	sb.WriteString(reportInstruction)
	return sb.String()
}

func writePersona(sb *strings.Builder, u *model.User) {
	fmt.Fprintf(sb, "Name: %s\n", displayName(u))
	if arch, ok := personality.Lookup(personality.Key(u.PersonalityType)); ok {
		fmt.Fprintf(sb, "Personality: %s (%q), traits: %s\n", arch.Name, arch.Quote, strings.Join(arch.Traits, ", "))
	} else {
		sb.WriteString("Personality: unknown\n")
	}
	fmt.Fprintf(sb, "Interest tags: %s\n", FormatTags(u.InterestTags))
}
