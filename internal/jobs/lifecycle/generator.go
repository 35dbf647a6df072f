package lifecycle

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/RithvikReddySiddenki/ChainedTogether/internal/domain/model"
	"github.com/RithvikReddySiddenki/ChainedTogether/internal/domain/rules"
	pgrepo "github.com/RithvikReddySiddenki/ChainedTogether/internal/repo/postgres"
	"github.com/RithvikReddySiddenki/ChainedTogether/internal/services/scoring"
)

const overscanFactor = 2

type QueueStore interface {
	CountUnconsumed(ctx context.Context) (int, error)
	Insert(ctx context.Context, entry model.QueueEntry) (int64, error)
	ListUnconsumedPairHashes(ctx context.Context) ([]string, error)
}

type PairHashSource interface {
	ListPairHashes(ctx context.Context) ([]string, error)
}

type ProfileSource interface {
	ListAll(ctx context.Context) ([]model.Profile, error)
}

type PairScorer interface {
	ScorePair(ctx context.Context, a, b model.Profile) scoring.PairScore
	RankCandidates(ctx context.Context, user model.Profile, candidates []model.Profile, k int) []scoring.RankedCandidate
}

// Generator keeps the match queue topped up with scored candidate
// pairs. A pass is all-or-nothing up to the insert step: any failure
// while assembling state aborts without partial writes.
type Generator struct {
	queue       QueueStore
	proposals   PairHashSource
	profiles    ProfileSource
	scorer      PairScorer
	minDepth    int
	targetDepth int
	log         *zap.Logger
	now         func() time.Time
	rand        *rand.Rand
}

type GeneratorConfig struct {
	MinDepth    int
	TargetDepth int
}

func NewGenerator(queue QueueStore, proposals PairHashSource, profiles ProfileSource, scorer PairScorer, cfg GeneratorConfig, logger *zap.Logger) *Generator {
	if cfg.MinDepth <= 0 {
		cfg.MinDepth = 50
	}
	if cfg.TargetDepth < cfg.MinDepth {
		cfg.TargetDepth = cfg.MinDepth + 25
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Generator{
		queue:       queue,
		proposals:   proposals,
		profiles:    profiles,
		scorer:      scorer,
		minDepth:    cfg.MinDepth,
		targetDepth: cfg.TargetDepth,
		log:         logger,
		now:         time.Now,
		rand:        rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (g *Generator) Run(ctx context.Context) error {
	depth, err := g.queue.CountUnconsumed(ctx)
	if err != nil {
		return fmt.Errorf("count queue depth: %w", err)
	}
	if depth >= g.minDepth {
		return nil
	}
	needed := g.targetDepth - depth

	pool, err := g.profiles.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("load candidate pool: %w", err)
	}
	if len(pool) < 2 {
		g.log.Info("queue refill skipped, not enough profiles", zap.Int("profiles", len(pool)))
		return nil
	}

	existing, err := g.existingPairKeys(ctx)
	if err != nil {
		return err
	}

	candidates := g.pickCandidatePairs(ctx, pool, existing, needed*overscanFactor)
	if len(candidates) == 0 {
		g.log.Info("queue refill found no new pairs", zap.Int("depth", depth))
		return nil
	}

	inserted := 0
	for _, pair := range candidates {
		if inserted >= needed {
			break
		}

		score := g.scorer.ScorePair(ctx, pair.a, pair.b)
		userA, userB := rules.SortPair(pair.a.WalletAddress, pair.b.WalletAddress)
		entry := model.QueueEntry{
			UserA:    userA,
			UserB:    userB,
			PairHash: pair.hash,
			Score:    score.Score,
			Reasons:  score.Reasons,
		}

		if _, err := g.queue.Insert(ctx, entry); err != nil {
			if pgrepo.IsUniqueViolation(err) {
				continue
			}
			g.log.Warn("queue insert failed",
				zap.String("pair_hash", pair.hash),
				zap.Error(err),
			)
			continue
		}
		inserted++
	}

	g.log.Info("queue refill completed",
		zap.Int("depth_before", depth),
		zap.Int("needed", needed),
		zap.Int("inserted", inserted),
	)
	return nil
}

func (g *Generator) existingPairKeys(ctx context.Context) (map[string]struct{}, error) {
	proposalHashes, err := g.proposals.ListPairHashes(ctx)
	if err != nil {
		return nil, fmt.Errorf("load proposal pair hashes: %w", err)
	}
	queueHashes, err := g.queue.ListUnconsumedPairHashes(ctx)
	if err != nil {
		return nil, fmt.Errorf("load queue pair hashes: %w", err)
	}

	existing := make(map[string]struct{}, len(proposalHashes)+len(queueHashes))
	for _, h := range proposalHashes {
		existing[h] = struct{}{}
	}
	for _, h := range queueHashes {
		existing[h] = struct{}{}
	}
	return existing, nil
}

type candidatePair struct {
	a    model.Profile
	b    model.Profile
	hash string
}

// pickCandidatePairs walks the pool in shuffled order and, for each
// user, asks the scorer to rank the rest of the pool. The top-ranked
// matches per user become candidate pairs, skipping any pair already
// queued or proposed.
func (g *Generator) pickCandidatePairs(ctx context.Context, pool []model.Profile, existing map[string]struct{}, limit int) []candidatePair {
	if limit <= 0 || len(pool) < 2 {
		return nil
	}

	byWallet := make(map[string]model.Profile, len(pool))
	for _, p := range pool {
		byWallet[strings.ToLower(p.WalletAddress)] = p
	}

	// A pair can surface from both of its endpoints, so rank a little
	// deeper per user than an even split of the limit would need.
	perUser := 2*limit/len(pool) + 1

	order := g.rand.Perm(len(pool))
	seen := make(map[string]struct{})
	var out []candidatePair

	for _, idx := range order {
		if len(out) >= limit {
			break
		}

		user := pool[idx]
		others := make([]model.Profile, 0, len(pool)-1)
		for _, jdx := range order {
			if jdx != idx {
				others = append(others, pool[jdx])
			}
		}

		for _, ranked := range g.scorer.RankCandidates(ctx, user, others, perUser) {
			match, ok := byWallet[strings.ToLower(ranked.Wallet)]
			if !ok {
				continue
			}
			hash, err := rules.PairKey(user.WalletAddress, match.WalletAddress)
			if err != nil {
				continue
			}
			if _, ok := existing[hash]; ok {
				continue
			}
			if _, ok := seen[hash]; ok {
				continue
			}
			seen[hash] = struct{}{}
			out = append(out, candidatePair{a: user, b: match, hash: hash})
			if len(out) >= limit {
				break
			}
		}
	}

	return out
}
