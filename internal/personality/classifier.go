package personality

type predicate func(Scores) bool

func atLeast(dim func(Scores) float64, threshold float64) predicate {
	return func(s Scores) bool { return dim(s) >= threshold }
}

// leads holds when dimension a exceeds dimension b by more than margin.
func leads(a, b func(Scores) float64, margin float64) predicate {
	return func(s Scores) bool { return a(s)-b(s) > margin }
}

func career(s Scores) float64    { return s.Career }
func industry(s Scores) float64  { return s.Industry }
func workStyle(s Scores) float64 { return s.WorkStyle }
func values(s Scores) float64    { return s.Values }

type rule struct {
	archetype  Key
	predicates []predicate
}

// rules are evaluated in full. Ties on predicate count go to the earlier entry.
// Every rule carries at least one margin predicate, so a vector whose spread is
// 10 or less falls through to Default no matter how high it sits.
var rules = []rule{
	{BrightMoon, []predicate{atLeast(career, 65), atLeast(industry, 65), leads(career, workStyle, 10)}},
	{Spark, []predicate{atLeast(career, 65), atLeast(workStyle, 65), leads(workStyle, values, 10)}},
	{DeepSea, []predicate{atLeast(industry, 65), leads(industry, career, 10), leads(industry, workStyle, 10), leads(industry, values, 10)}},
	{Lightning, []predicate{atLeast(workStyle, 65), leads(workStyle, career, 10), leads(workStyle, industry, 10)}},
	{Bedrock, []predicate{atLeast(values, 65), leads(career, workStyle, 10), leads(values, workStyle, 10)}},
	{SpringBreeze, []predicate{atLeast(values, 65), atLeast(industry, 60), leads(values, workStyle, 10)}},
	{WarmSun, []predicate{atLeast(values, 65), leads(values, career, 10)}},
	{Spark, []predicate{atLeast(career, 65), leads(career, industry, 10)}},
}

// Classify picks the fully matching rule with the most predicates.
func Classify(s Scores) Key {
	best := Default
	bestCount := 0
	for _, r := range rules {
		held := 0
		for _, p := range r.predicates {
			if p(s) {
				held++
			}
		}
		if held != len(r.predicates) {
			continue
		}
		if held > bestCount {
			best = r.archetype
			bestCount = held
		}
	}
	return best
}
