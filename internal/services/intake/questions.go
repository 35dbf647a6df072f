package intake

// questionBank drives the guided intake chat. At most maxQuestions of
// these are asked before the profile is extracted.
var questionBank = []string{
	"What are your main hobbies or interests?",
	"How would you describe your communication style?",
	"What do you value most in a relationship?",
	"Are there any absolute dealbreakers for you?",
	"How do you typically spend your weekends?",
	"What are your long-term life goals?",
	"Do you prefer quiet nights in or social outings?",
	"How important is physical fitness in your life?",
	"What's your approach to work-life balance?",
	"How do you handle conflicts or disagreements?",
}

const (
	maxQuestions = 8
	greeting     = "Hi! I'm here to help you find your perfect match. Let's start: "
)
