package matching

import (
	"context"

	"github.com/fadilmartias/persona-match/internal/model"
)

// Strategy produces the dialogue transcript and report for one pair of users.
// An error aborts the match; malformed model output is not an error.
type Strategy interface {
	Name() string
	Run(ctx context.Context, a, b *model.User) (*Outcome, error)
}

// UsesSimulation reports whether the pair must go through the generic model.
// A single guest routes the whole match.
func UsesSimulation(a, b *model.User) bool {
	return a.IsGuest() || b.IsGuest()
}

// Selector picks between the two strategies with UsesSimulation.
type Selector struct {
	Personal  Strategy
	Simulated Strategy
}

func (s Selector) Select(a, b *model.User) Strategy {
	if UsesSimulation(a, b) {
		return s.Simulated
	}
	return s.Personal
}
