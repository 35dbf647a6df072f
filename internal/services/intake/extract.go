package intake

import (
	"fmt"
	"strings"

	"github.com/RithvikReddySiddenki/ChainedTogether/internal/domain/model"
)

type keywordRule struct {
	tag      string
	triggers []string
}

var (
	interestRules = []keywordRule{
		{"reading", []string{"read"}},
		{"fitness", []string{"gym", "fitness"}},
		{"cooking", []string{"cook"}},
		{"travel", []string{"travel"}},
		{"music", []string{"music"}},
		{"art", []string{"art"}},
		{"technology", []string{"tech", "code"}},
		{"outdoors", []string{"outdoor", "hike"}},
	}
	valueRules = []keywordRule{
		{"honesty", []string{"honest", "truth"}},
		{"loyalty", []string{"loyal"}},
		{"family", []string{"family"}},
		{"ambition", []string{"ambition", "career"}},
		{"kindness", []string{"kind", "compassion"}},
	}
	dealbreakerRules = []keywordRule{
		{"smoking", []string{"smoke", "smoking"}},
		{"dishonesty", []string{"dishonest", "lie"}},
	}
	lifestyleRules = []keywordRule{
		{"active", []string{"active", "exercise"}},
		{"introverted", []string{"introvert", "quiet"}},
		{"social", []string{"social", "outgoing"}},
	}
)

// extractAnswers derives structured answers from the user's chat
// replies with keyword heuristics. Deliberately coarse: it only has to
// produce a usable seed profile when the model is unreachable.
func extractAnswers(userReplies []string) model.Answers {
	text := strings.ToLower(strings.Join(userReplies, " "))

	answers := model.Answers{
		Interests:    applyRules(text, interestRules),
		Values:       applyRules(text, valueRules),
		Dealbreakers: applyRules(text, dealbreakerRules),
		Lifestyle:    applyRules(text, lifestyleRules),
	}

	answers.CommunicationStyle = "balanced"
	if containsAny(text, "direct", "straightforward") {
		answers.CommunicationStyle = "direct"
	} else if containsAny(text, "gentle", "diplomatic") {
		answers.CommunicationStyle = "diplomatic"
	}

	answers.Goals = "seeking meaningful connection"
	if containsAny(text, "marriage", "long-term") {
		answers.Goals = "long-term commitment"
	} else if containsAny(text, "casual", "take it slow") {
		answers.Goals = "taking things slow"
	}

	if len(answers.Interests) == 0 {
		answers.Interests = []string{"general conversation"}
	}
	if len(answers.Values) == 0 {
		answers.Values = []string{"respect", "communication"}
	}
	if len(answers.Dealbreakers) == 0 {
		answers.Dealbreakers = []string{"none specified"}
	}
	if len(answers.Lifestyle) == 0 {
		answers.Lifestyle = []string{"flexible"}
	}

	return answers
}

func summarize(answers model.Answers) []string {
	return []string{
		fmt.Sprintf("Interests: %s", strings.Join(answers.Interests, ", ")),
		fmt.Sprintf("Values: %s", strings.Join(answers.Values, ", ")),
		fmt.Sprintf("Communication style: %s", answers.CommunicationStyle),
		fmt.Sprintf("Dealbreakers: %s", strings.Join(answers.Dealbreakers, ", ")),
		fmt.Sprintf("Lifestyle: %s", strings.Join(answers.Lifestyle, ", ")),
		fmt.Sprintf("Relationship goals: %s", answers.Goals),
	}
}

func applyRules(text string, rules []keywordRule) []string {
	var out []string
	for _, rule := range rules {
		if containsAny(text, rule.triggers...) {
			out = append(out, rule.tag)
		}
	}
	return out
}

func containsAny(text string, needles ...string) bool {
	for _, n := range needles {
		if strings.Contains(text, n) {
			return true
		}
	}
	return false
}
