package scoring

import (
	"context"
	"fmt"
	"math"
	"strings"

	"go.uber.org/zap"

	"github.com/RithvikReddySiddenki/ChainedTogether/internal/domain/model"
	"github.com/RithvikReddySiddenki/ChainedTogether/internal/domain/rules"
)

const (
	defaultCandidateCap = 30
	maxPairReasons      = 5
	maxRankReasons      = 4
)

// Card is the only profile view the model ever sees: wallet for
// identification, name and bio for matching. Structured answers stay
// server side.
type Card struct {
	Wallet string
	Name   string
	Bio    string
}

type PairScore struct {
	Score   float64
	Reasons []string
}

type RankedCandidate struct {
	Wallet  string
	Score   float64
	Reasons []string
}

type Inference interface {
	InferJSON(ctx context.Context, systemPrompt, userPrompt string, target any) error
}

type Service struct {
	infer        Inference
	log          *zap.Logger
	candidateCap int
}

type Dependencies struct {
	Inference Inference
	Logger    *zap.Logger
}

type Config struct {
	CandidateCap int
}

func NewService(deps Dependencies, cfg Config) *Service {
	if cfg.CandidateCap <= 0 {
		cfg.CandidateCap = defaultCandidateCap
	}
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return &Service{
		infer:        deps.Inference,
		log:          log,
		candidateCap: cfg.CandidateCap,
	}
}

// ScorePair scores a pair through the model, falling back to the
// deterministic heuristic on any inference failure. It never returns
// an error: a pair always gets a score.
func (s *Service) ScorePair(ctx context.Context, a, b model.Profile) PairScore {
	if s.infer == nil {
		return s.fallbackScorePair(a, b)
	}

	var raw struct {
		Score   float64  `json:"score"`
		Reasons []string `json:"reasons"`
	}
	err := s.infer.InferJSON(ctx, scorePairSystemPrompt, scorePairUserPrompt(card(a), card(b)), &raw)
	if err != nil {
		s.log.Warn("pair scoring inference failed, using fallback",
			zap.String("user_a", a.WalletAddress),
			zap.String("user_b", b.WalletAddress),
			zap.Error(err),
		)
		return s.fallbackScorePair(a, b)
	}

	reasons := trimReasons(raw.Reasons, maxPairReasons)
	if len(reasons) == 0 {
		reasons = []string{"AI-scored compatibility"}
	}

	return PairScore{
		Score:   normalize(raw.Score),
		Reasons: reasons,
	}
}

// RankCandidates ranks up to candidateCap candidates against the user
// and returns the top k, best first.
func (s *Service) RankCandidates(ctx context.Context, user model.Profile, candidates []model.Profile, k int) []RankedCandidate {
	if len(candidates) == 0 || k <= 0 {
		return nil
	}
	if len(candidates) > s.candidateCap {
		candidates = candidates[:s.candidateCap]
	}
	if k > len(candidates) {
		k = len(candidates)
	}

	if s.infer == nil {
		return s.fallbackRank(user, candidates, k)
	}

	cards := make([]Card, 0, len(candidates))
	for _, c := range candidates {
		cards = append(cards, card(c))
	}

	var raw struct {
		Rankings []struct {
			Wallet  string   `json:"wallet"`
			Score   float64  `json:"score"`
			Reasons []string `json:"reasons"`
		} `json:"rankings"`
	}
	err := s.infer.InferJSON(ctx, rankCandidatesSystemPrompt, rankCandidatesUserPrompt(card(user), cards, k), &raw)
	if err != nil {
		s.log.Warn("candidate ranking inference failed, using fallback",
			zap.String("user", user.WalletAddress),
			zap.Int("candidates", len(candidates)),
			zap.Error(err),
		)
		return s.fallbackRank(user, candidates, k)
	}
	if len(raw.Rankings) == 0 {
		return s.fallbackRank(user, candidates, k)
	}

	known := make(map[string]struct{}, len(candidates))
	for _, c := range candidates {
		known[strings.ToLower(c.WalletAddress)] = struct{}{}
	}

	out := make([]RankedCandidate, 0, k)
	for _, r := range raw.Rankings {
		wallet := strings.ToLower(strings.TrimSpace(r.Wallet))
		if _, ok := known[wallet]; !ok {
			continue
		}
		reasons := trimReasons(r.Reasons, maxRankReasons)
		if len(reasons) == 0 {
			reasons = []string{"AI-ranked"}
		}
		out = append(out, RankedCandidate{
			Wallet:  wallet,
			Score:   normalize(r.Score),
			Reasons: reasons,
		})
		if len(out) == k {
			break
		}
	}
	if len(out) == 0 {
		return s.fallbackRank(user, candidates, k)
	}

	return out
}

func card(p model.Profile) Card {
	bio := strings.TrimSpace(p.Bio)
	if bio == "" {
		bio = fmt.Sprintf("%s is looking for meaningful connections.", displayName(p))
	}
	return Card{
		Wallet: strings.ToLower(p.WalletAddress),
		Name:   displayName(p),
		Bio:    bio,
	}
}

func displayName(p model.Profile) string {
	if strings.TrimSpace(p.Name) != "" {
		return p.Name
	}
	return "Anonymous"
}

// normalize maps a raw 0-100 model score into the internal [0, 0.99]
// range.
func normalize(raw float64) float64 {
	if math.IsNaN(raw) || math.IsInf(raw, 0) {
		raw = 50
	}
	raw = math.Round(raw)
	if raw < 0 {
		raw = 0
	}
	if raw > 100 {
		raw = 100
	}
	return rules.ClampScore(raw / 100)
}

func trimReasons(reasons []string, max int) []string {
	out := make([]string, 0, max)
	for _, r := range reasons {
		r = strings.TrimSpace(r)
		if r == "" {
			continue
		}
		out = append(out, r)
		if len(out) == max {
			break
		}
	}
	return out
}
