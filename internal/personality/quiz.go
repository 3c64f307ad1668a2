package personality

// QuizQuestion carries the per-option score deltas of one quiz question.
type QuizQuestion struct {
	ID       int
	Question string
	Options  []Scores
}

const quizBase = 50

var QuizQuestions = []QuizQuestion{
	{1, "Monday morning, the alarm goes off. First thought?", []Scores{
		{Industry: 12}, {Career: 12}, {WorkStyle: 12}, {Values: 12},
	}},
	{2, "In a team brainstorm you are usually the one who...", []Scores{
		{WorkStyle: 12, Career: 5}, {Industry: 12}, {Career: 12, Industry: 5}, {Values: 12},
	}},
	{3, "When are you most energized at work?", []Scores{
		{Industry: 12}, {WorkStyle: 12, Career: 5}, {Values: 12}, {Career: 12, Industry: 5},
	}},
	{4, "Pick a superpower to use at work.", []Scores{
		{Values: 12, Industry: 5}, {Industry: 12}, {WorkStyle: 12}, {Career: 12, Industry: 5},
	}},
	{5, "A colleague mentions a concept you have never heard of. You...", []Scores{
		{Industry: 12}, {Career: 12}, {WorkStyle: 12, Industry: 5}, {Values: 12},
	}},
	{6, "Friday 3pm and your work is done. You...", []Scores{
		{Industry: 12}, {Values: 12, Career: 5}, {WorkStyle: 12}, {Career: 12},
	}},
	{7, "What do you most want to hear in your year-end review?", []Scores{
		{Industry: 12}, {Values: 12}, {WorkStyle: 12, Career: 5}, {Career: 12, Industry: 5},
	}},
	{8, "If the team were a band, you would be...", []Scores{
		{WorkStyle: 12, Values: 5}, {Values: 12}, {Industry: 12}, {Career: 12},
	}},
}

// ScoreQuiz aggregates answers (option index per question, in order) on top of
// a base of 50. Unknown questions and out-of-range options are skipped. Each
// dimension is clamped to [0,100] here; Classify itself never clamps.
func ScoreQuiz(answers []int) Scores {
	s := Scores{Career: quizBase, Industry: quizBase, WorkStyle: quizBase, Values: quizBase}
	for qi, opt := range answers {
		if qi >= len(QuizQuestions) {
			break
		}
		options := QuizQuestions[qi].Options
		if opt < 0 || opt >= len(options) {
			continue
		}
		d := options[opt]
		s.Career += d.Career
		s.Industry += d.Industry
		s.WorkStyle += d.WorkStyle
		s.Values += d.Values
	}
	return s.Clamp()
}

func (s Scores) Clamp() Scores {
	return Scores{
		Career:    clamp(s.Career),
		Industry:  clamp(s.Industry),
		WorkStyle: clamp(s.WorkStyle),
		Values:    clamp(s.Values),
	}
}

func clamp(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 100:
		return 100
	}
	return v
}
