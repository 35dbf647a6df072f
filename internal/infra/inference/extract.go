package inference

import (
	"errors"
	"regexp"
	"strings"
)

var (
	ErrNoJSON         = errors.New("no JSON found in model output")
	ErrUnbalancedJSON = errors.New("unbalanced JSON in model output")

	fenceRe = regexp.MustCompile("(?i)```(?:json)?\\s*")
)

// ExtractJSON returns the first balanced JSON object or array in raw,
// after stripping markdown code fences. Models frequently wrap their
// payload in prose or fences, so plain json.Unmarshal on the full text
// is not enough.
func ExtractJSON(raw string) (string, error) {
	stripped := fenceRe.ReplaceAllString(raw, "")
	stripped = strings.ReplaceAll(stripped, "```", "")

	start := strings.IndexAny(stripped, "{[")
	if start == -1 {
		return "", ErrNoJSON
	}

	open := stripped[start]
	var close byte = '}'
	if open == '[' {
		close = ']'
	}

	depth := 0
	for i := start; i < len(stripped); i++ {
		switch stripped[i] {
		case open:
			depth++
		case close:
			depth--
		}
		if depth == 0 {
			return stripped[start : i+1], nil
		}
	}

	return "", ErrUnbalancedJSON
}
