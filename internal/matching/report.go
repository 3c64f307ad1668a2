// Package matching runs the AI-to-AI dialogue between two users and turns it
// into a scored compatibility report.
package matching

import (
	"errors"
	"fmt"
	"math"

	"github.com/fadilmartias/persona-match/internal/util"
	"github.com/tidwall/gjson"
)

type Dimension struct {
	Score  int    `json:"score"`
	Label  string `json:"label"`
	Reason string `json:"reason"`
}

type Dimensions struct {
	Career    Dimension `json:"career"`
	Industry  Dimension `json:"industry"`
	WorkStyle Dimension `json:"workStyle"`
	Values    Dimension `json:"values"`
}

// Report is the wire shape consumed by the report page. Field names are fixed.
type Report struct {
	TotalScore     int        `json:"totalScore"`
	Dimensions     Dimensions `json:"dimensions"`
	Summary        string     `json:"summary"`
	Recommendation string     `json:"recommendation"`
}

type ChatRound struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Outcome is what a strategy hands back to the orchestrator.
type Outcome struct {
	Report  Report
	ChatLog []ChatRound
}

var (
	ErrNoJSONObject = errors.New("no JSON object in model output")
	ErrInvalidJSON  = errors.New("model output is not valid JSON")
)

const (
	LabelCareer    = "Career Direction"
	LabelIndustry  = "Industry Insight"
	LabelWorkStyle = "Work Style"
	LabelValues    = "Values"
)

// NeutralReport substitutes for structured output that could not be parsed.
func NeutralReport() Report {
	const reason = "Not enough information for a precise assessment."
	return Report{
		TotalScore: 70,
		Dimensions: Dimensions{
			Career:    Dimension{Score: 70, Label: LabelCareer, Reason: reason},
			Industry:  Dimension{Score: 70, Label: LabelIndustry, Reason: reason},
			WorkStyle: Dimension{Score: 70, Label: LabelWorkStyle, Reason: reason},
			Values:    Dimension{Score: 70, Label: LabelValues, Reason: reason},
		},
		Summary:        "Initial match complete; a follow-up conversation is recommended.",
		Recommendation: "You share some common traits and are worth getting to know.",
	}
}

// ParseReport pulls the first balanced object out of raw and reads it as a Report.
func ParseReport(raw string) (Report, error) {
	obj, ok := util.ExtractJSONObject(raw)
	if !ok {
		return Report{}, ErrNoJSONObject
	}
	if !gjson.Valid(obj) {
		return Report{}, ErrInvalidJSON
	}
	return reportFrom(gjson.Parse(obj))
}

func reportFrom(r gjson.Result) (Report, error) {
	if !r.IsObject() {
		return Report{}, errors.New("report is not an object")
	}
	total, err := scoreField(r, "totalScore")
	if err != nil {
		return Report{}, err
	}

	var rep Report
	rep.TotalScore = total
	dims := []struct {
		key string
		dst *Dimension
	}{
		{"career", &rep.Dimensions.Career},
		{"industry", &rep.Dimensions.Industry},
		{"workStyle", &rep.Dimensions.WorkStyle},
		{"values", &rep.Dimensions.Values},
	}
	for _, d := range dims {
		node := r.Get("dimensions." + d.key)
		if !node.IsObject() {
			return Report{}, fmt.Errorf("missing dimension %q", d.key)
		}
		score, err := scoreField(node, "score")
		if err != nil {
			return Report{}, fmt.Errorf("dimension %q: %w", d.key, err)
		}
		label, err := stringField(node, "label")
		if err != nil {
			return Report{}, fmt.Errorf("dimension %q: %w", d.key, err)
		}
		reason, err := stringField(node, "reason")
		if err != nil {
			return Report{}, fmt.Errorf("dimension %q: %w", d.key, err)
		}
		*d.dst = Dimension{Score: score, Label: label, Reason: reason}
	}

	if rep.Summary, err = stringField(r, "summary"); err != nil {
		return Report{}, err
	}
	if rep.Recommendation, err = stringField(r, "recommendation"); err != nil {
		return Report{}, err
	}
	return rep, nil
}

// scoreField reads a numeric field, rounding and clamping it to 0-100.
func scoreField(r gjson.Result, path string) (int, error) {
	v := r.Get(path)
	if v.Type != gjson.Number {
		return 0, fmt.Errorf("field %q must be a number", path)
	}
	score := int(math.Round(v.Float()))
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return score, nil
}

func stringField(r gjson.Result, path string) (string, error) {
	v := r.Get(path)
	if v.Type != gjson.String {
		return "", fmt.Errorf("field %q must be a string", path)
	}
	return v.String(), nil
}

// Validate checks the invariants of a persisted report.
func (r Report) Validate() error {
	if r.TotalScore < 0 || r.TotalScore > 100 {
		return fmt.Errorf("totalScore %d out of range", r.TotalScore)
	}
	for name, d := range map[string]Dimension{
		"career": r.Dimensions.Career, "industry": r.Dimensions.Industry,
		"workStyle": r.Dimensions.WorkStyle, "values": r.Dimensions.Values,
	} {
		if d.Score < 0 || d.Score > 100 {
			return fmt.Errorf("%s score %d out of range", name, d.Score)
		}
		if d.Label == "" || d.Reason == "" {
			return fmt.Errorf("%s label and reason are required", name)
		}
	}
	if r.Summary == "" || r.Recommendation == "" {
		return errors.New("summary and recommendation are required")
	}
	return nil
}
