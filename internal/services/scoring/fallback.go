package scoring

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/RithvikReddySiddenki/ChainedTogether/internal/domain/model"
	"github.com/RithvikReddySiddenki/ChainedTogether/internal/domain/rules"
)

var stopWords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "and": {}, "or": {}, "but": {}, "in": {},
	"on": {}, "at": {}, "to": {}, "for": {}, "of": {}, "with": {}, "by": {},
	"is": {}, "am": {}, "are": {}, "was": {}, "were": {}, "be": {}, "been": {},
	"being": {}, "i": {}, "me": {}, "my": {}, "we": {}, "our": {}, "you": {},
	"your": {}, "it": {}, "its": {}, "they": {}, "them": {}, "their": {},
	"this": {}, "that": {}, "who": {}, "which": {}, "what": {},
	"looking": {}, "love": {}, "like": {}, "just": {}, "really": {},
	"very": {}, "so": {}, "too": {},
}

// fallbackScorePair scores a pair without the network. Profiles with
// embeddings are compared by cosine similarity; otherwise the bios are
// compared by stop-word-filtered Jaccard overlap. A low or zero score
// is a valid outcome, never an error.
func (s *Service) fallbackScorePair(a, b model.Profile) PairScore {
	if len(a.Embedding) > 0 && len(a.Embedding) == len(b.Embedding) {
		score := rules.ClampScore(cosineSimilarity(a.Embedding, b.Embedding))
		return PairScore{Score: score, Reasons: tagOverlapReasons(a, b)}
	}

	wordsA := tokenSet(card(a).Bio)
	wordsB := tokenSet(card(b).Bio)

	var shared []string
	for w := range wordsA {
		if _, ok := wordsB[w]; ok {
			shared = append(shared, w)
		}
	}
	sort.Strings(shared)

	union := len(wordsA) + len(wordsB) - len(shared)
	var jaccard float64
	if union > 0 {
		jaccard = float64(len(shared)) / float64(union)
	}

	var reasons []string
	if len(shared) > 0 {
		if len(shared) > 3 {
			shared = shared[:3]
		}
		reasons = append(reasons, "Shared themes: "+strings.Join(shared, ", "))
	}
	reasons = append(reasons, "Fallback heuristic (AI unavailable)")

	return PairScore{Score: rules.ClampScore(jaccard), Reasons: reasons}
}

func (s *Service) fallbackRank(user model.Profile, candidates []model.Profile, k int) []RankedCandidate {
	scored := make([]RankedCandidate, 0, len(candidates))
	for _, c := range candidates {
		pair := s.fallbackScorePair(user, c)
		scored = append(scored, RankedCandidate{
			Wallet:  strings.ToLower(c.WalletAddress),
			Score:   pair.Score,
			Reasons: pair.Reasons,
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	if len(scored) > k {
		scored = scored[:k]
	}

	return scored
}

func cosineSimilarity(a, b []float64) float64 {
	var dot, magA, magB float64
	for i := range a {
		dot += a[i] * b[i]
		magA += a[i] * a[i]
		magB += b[i] * b[i]
	}
	if magA == 0 || magB == 0 {
		return 0
	}
	return dot / (math.Sqrt(magA) * math.Sqrt(magB))
}

func tagOverlapReasons(a, b model.Profile) []string {
	var reasons []string
	if shared := intersect(a.Answers.Interests, b.Answers.Interests); len(shared) > 0 {
		reasons = append(reasons, fmt.Sprintf("Shared interests: %s", strings.Join(shared, ", ")))
	}
	if shared := intersect(a.Answers.Values, b.Answers.Values); len(shared) > 0 {
		reasons = append(reasons, fmt.Sprintf("Shared values: %s", strings.Join(shared, ", ")))
	}
	if len(reasons) == 0 {
		reasons = append(reasons, "Profile similarity")
	}
	return reasons
}

func intersect(a, b []string) []string {
	set := make(map[string]struct{}, len(a))
	for _, v := range a {
		set[strings.ToLower(strings.TrimSpace(v))] = struct{}{}
	}

	var out []string
	seen := make(map[string]struct{})
	for _, v := range b {
		key := strings.ToLower(strings.TrimSpace(v))
		if key == "" {
			continue
		}
		if _, ok := set[key]; !ok {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, key)
	}
	sort.Strings(out)
	return out
}

func tokenSet(text string) map[string]struct{} {
	var cleaned strings.Builder
	for _, c := range strings.ToLower(text) {
		switch {
		case c >= 'a' && c <= 'z', c >= '0' && c <= '9':
			cleaned.WriteRune(c)
		default:
			cleaned.WriteRune(' ')
		}
	}

	out := make(map[string]struct{})
	for _, w := range strings.Fields(cleaned.String()) {
		if len(w) <= 2 {
			continue
		}
		if _, stop := stopWords[w]; stop {
			continue
		}
		out[w] = struct{}{}
	}
	return out
}
