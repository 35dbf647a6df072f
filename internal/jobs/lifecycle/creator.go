package lifecycle

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"github.com/RithvikReddySiddenki/ChainedTogether/internal/domain/enums"
	"github.com/RithvikReddySiddenki/ChainedTogether/internal/domain/model"
	"github.com/RithvikReddySiddenki/ChainedTogether/internal/infra/snapshot"
	pgrepo "github.com/RithvikReddySiddenki/ChainedTogether/internal/repo/postgres"
)

type ProposalWriter interface {
	CountByStatus(ctx context.Context, status enums.ProposalStatus) (int, error)
	Create(ctx context.Context, p model.Proposal) (int64, error)
	SetSnapshotID(ctx context.Context, proposalID int64, snapshotID string) error
}

type QueueConsumer interface {
	PullUnconsumed(ctx context.Context, limit int) ([]model.QueueEntry, error)
	MarkConsumed(ctx context.Context, id int64, at time.Time) error
}

type VoterWriter interface {
	AssignVoters(ctx context.Context, proposalID int64, voters []string, at time.Time) error
}

type VoterPool interface {
	ListAddressesExcluding(ctx context.Context, exclude []string) ([]string, error)
}

type ProposalRelay interface {
	Enabled() bool
	CreateProposal(ctx context.Context, in snapshot.ProposalInput) (string, error)
}

// ProposalCreator promotes the best queued pairs into voting
// proposals and assigns their jury.
type ProposalCreator struct {
	proposals   ProposalWriter
	queue       QueueConsumer
	voters      VoterWriter
	pool        VoterPool
	relay       ProposalRelay
	activeMin   int
	activeMax   int
	votingFor   time.Duration
	jurySize    int
	threshold   int
	log         *zap.Logger
	now         func() time.Time
	rand        *rand.Rand
}

type CreatorConfig struct {
	ActiveVotingMin    int
	ActiveVotingTarget int
	VotingDuration     time.Duration
	VotersPerProposal  int
	ApprovalThreshold  int
}

func NewProposalCreator(proposals ProposalWriter, queue QueueConsumer, voters VoterWriter, pool VoterPool, relay ProposalRelay, cfg CreatorConfig, logger *zap.Logger) *ProposalCreator {
	if cfg.ActiveVotingMin <= 0 {
		cfg.ActiveVotingMin = 10
	}
	if cfg.ActiveVotingTarget < cfg.ActiveVotingMin {
		cfg.ActiveVotingTarget = cfg.ActiveVotingMin + 2
	}
	if cfg.VotingDuration <= 0 {
		cfg.VotingDuration = 10 * time.Minute
	}
	if cfg.VotersPerProposal <= 0 {
		cfg.VotersPerProposal = 10
	}
	if cfg.ApprovalThreshold <= 0 {
		cfg.ApprovalThreshold = 5
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &ProposalCreator{
		proposals: proposals,
		queue:     queue,
		voters:    voters,
		pool:      pool,
		relay:     relay,
		activeMin: cfg.ActiveVotingMin,
		activeMax: cfg.ActiveVotingTarget,
		votingFor: cfg.VotingDuration,
		jurySize:  cfg.VotersPerProposal,
		threshold: cfg.ApprovalThreshold,
		log:       logger,
		now:       time.Now,
		rand:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *ProposalCreator) Run(ctx context.Context) error {
	active, err := c.proposals.CountByStatus(ctx, enums.ProposalStatusVoting)
	if err != nil {
		return fmt.Errorf("count active proposals: %w", err)
	}
	if active >= c.activeMin {
		return nil
	}

	need := c.activeMax - active
	entries, err := c.queue.PullUnconsumed(ctx, need)
	if err != nil {
		return fmt.Errorf("pull queue entries: %w", err)
	}
	if len(entries) == 0 {
		c.log.Info("no queue entries available for proposals", zap.Int("active", active))
		return nil
	}

	created := 0
	for _, entry := range entries {
		if err := c.promote(ctx, entry); err != nil {
			c.log.Warn("failed to promote queue entry",
				zap.Int64("queue_id", entry.ID),
				zap.String("pair_hash", entry.PairHash),
				zap.Error(err),
			)
			continue
		}
		created++
	}

	c.log.Info("proposal creation completed",
		zap.Int("active_before", active),
		zap.Int("created", created),
	)
	return nil
}

func (c *ProposalCreator) promote(ctx context.Context, entry model.QueueEntry) error {
	now := c.now().UTC()
	proposal := model.Proposal{
		UserA:             entry.UserA,
		UserB:             entry.UserB,
		PairHash:          entry.PairHash,
		Score:             entry.Score,
		Reasons:           entry.Reasons,
		ApprovalThreshold: c.threshold,
		VotingStartedAt:   now,
		VotingExpiresAt:   now.Add(c.votingFor),
	}

	proposalID, err := c.proposals.Create(ctx, proposal)
	if err != nil {
		if pgrepo.IsUniqueViolation(err) {
			// A proposal for this pair already exists, retire the
			// queue entry so it is not retried forever.
			if markErr := c.queue.MarkConsumed(ctx, entry.ID, now); markErr != nil {
				return fmt.Errorf("consume duplicate entry: %w", markErr)
			}
			return nil
		}
		return fmt.Errorf("create proposal: %w", err)
	}

	jury, err := c.selectJury(ctx, entry.UserA, entry.UserB)
	if err != nil {
		return fmt.Errorf("select jury: %w", err)
	}
	if len(jury) < c.jurySize {
		c.log.Warn("voter pool smaller than jury size",
			zap.Int64("proposal_id", proposalID),
			zap.Int("assigned", len(jury)),
			zap.Int("wanted", c.jurySize),
		)
	}
	if err := c.voters.AssignVoters(ctx, proposalID, jury, now); err != nil {
		return fmt.Errorf("assign voters: %w", err)
	}

	if err := c.queue.MarkConsumed(ctx, entry.ID, now); err != nil {
		return fmt.Errorf("consume queue entry: %w", err)
	}

	c.relayProposal(ctx, proposalID, entry)
	return nil
}

func (c *ProposalCreator) selectJury(ctx context.Context, userA, userB string) ([]string, error) {
	eligible, err := c.pool.ListAddressesExcluding(ctx, []string{userA, userB})
	if err != nil {
		return nil, err
	}

	c.rand.Shuffle(len(eligible), func(i, j int) {
		eligible[i], eligible[j] = eligible[j], eligible[i]
	})
	if len(eligible) > c.jurySize {
		eligible = eligible[:c.jurySize]
	}
	return eligible, nil
}

// relayProposal mirrors the proposal to the snapshot hub, best effort.
func (c *ProposalCreator) relayProposal(ctx context.Context, proposalID int64, entry model.QueueEntry) {
	if c.relay == nil || !c.relay.Enabled() {
		return
	}

	snapshotID, err := c.relay.CreateProposal(ctx, snapshot.ProposalInput{
		Proposer: entry.UserA,
		Title:    fmt.Sprintf("Match proposal #%d", proposalID),
		Body:     fmt.Sprintf("Vote on pairing %s with %s", entry.UserA, entry.UserB),
		Duration: c.votingFor,
	})
	if err != nil {
		c.log.Warn("snapshot proposal relay failed",
			zap.Int64("proposal_id", proposalID),
			zap.Error(err),
		)
		return
	}
	if snapshotID == "" {
		return
	}

	if err := c.proposals.SetSnapshotID(ctx, proposalID, snapshotID); err != nil {
		c.log.Warn("failed to record snapshot proposal id",
			zap.Int64("proposal_id", proposalID),
			zap.Error(err),
		)
	}
}
