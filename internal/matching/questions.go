package matching

// Questions are asked in this order in every match.
var Questions = [4]string{
	"Hi! I'd love to learn about your career direction. What are you working on now, and where do you want your career to go?",
	"What is your take on your industry? Which trends or changes are you following lately?",
	"Tell me about your work style. Do you prefer working independently or collaborating, and is your pace fast or steady?",
	"What workplace values matter most to you, and what does your ideal collaborator look like?",
}

// PlaceholderAnswer fills any round the agent or model left empty.
const PlaceholderAnswer = "I'd rather talk this through in person; let's pick it up in our next conversation."

// PlaceholderTranscript pairs every canonical question with the placeholder answer.
func PlaceholderTranscript() []ChatRound {
	log := make([]ChatRound, len(Questions))
	for i, q := range Questions {
		log[i] = ChatRound{Question: q, Answer: PlaceholderAnswer}
	}
	return log
}
