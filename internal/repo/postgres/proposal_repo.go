package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/RithvikReddySiddenki/ChainedTogether/internal/domain/enums"
	"github.com/RithvikReddySiddenki/ChainedTogether/internal/domain/model"
)

var (
	ErrProposalNotFound  = errors.New("proposal not found")
	ErrProposalNotVoting = errors.New("proposal is not open for voting")
	ErrVoteDuplicate     = errors.New("vote already cast")
)

type ProposalRepo struct {
	pool *pgxpool.Pool
}

func NewProposalRepo(pool *pgxpool.Pool) *ProposalRepo {
	return &ProposalRepo{pool: pool}
}

const proposalColumns = `
id, user_a_address, user_b_address, pair_hash, ai_compatibility_score,
compatibility_reasons, status, yes_votes, no_votes, total_votes_cast,
approval_threshold, voting_started_at, voting_expires_at, finalized_at,
snapshot_proposal_id
`

func scanProposal(row pgx.Row) (model.Proposal, error) {
	var p model.Proposal
	err := row.Scan(
		&p.ID,
		&p.UserA,
		&p.UserB,
		&p.PairHash,
		&p.Score,
		&p.Reasons,
		&p.Status,
		&p.YesVotes,
		&p.NoVotes,
		&p.TotalVotesCast,
		&p.ApprovalThreshold,
		&p.VotingStartedAt,
		&p.VotingExpiresAt,
		&p.FinalizedAt,
		&p.SnapshotProposalID,
	)
	return p, err
}

// Create opens a new voting-stage proposal. A concurrent proposal for
// the same pair surfaces as a unique violation on pair_hash.
func (r *ProposalRepo) Create(ctx context.Context, p model.Proposal) (int64, error) {
	if p.UserA == "" || p.UserB == "" || p.PairHash == "" {
		return 0, fmt.Errorf("invalid proposal payload")
	}
	if r.pool == nil {
		return 0, fmt.Errorf("postgres pool is nil")
	}

	var id int64
	err := r.pool.QueryRow(ctx, `
INSERT INTO match_proposals (
	user_a_address,
	user_b_address,
	pair_hash,
	ai_compatibility_score,
	compatibility_reasons,
	status,
	approval_threshold,
	voting_started_at,
	voting_expires_at,
	snapshot_proposal_id
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
RETURNING id
`,
		p.UserA,
		p.UserB,
		p.PairHash,
		p.Score,
		p.Reasons,
		enums.ProposalStatusVoting,
		p.ApprovalThreshold,
		p.VotingStartedAt.UTC(),
		p.VotingExpiresAt.UTC(),
		p.SnapshotProposalID,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert proposal: %w", err)
	}

	return id, nil
}

func (r *ProposalRepo) GetByID(ctx context.Context, id int64) (model.Proposal, error) {
	if r.pool == nil {
		return model.Proposal{}, fmt.Errorf("postgres pool is nil")
	}

	p, err := scanProposal(r.pool.QueryRow(ctx, `
SELECT `+proposalColumns+`
FROM match_proposals
WHERE id = $1
`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Proposal{}, ErrProposalNotFound
	}
	if err != nil {
		return model.Proposal{}, fmt.Errorf("get proposal: %w", err)
	}

	return p, nil
}

func (r *ProposalRepo) CountByStatus(ctx context.Context, status enums.ProposalStatus) (int, error) {
	if r.pool == nil {
		return 0, fmt.Errorf("postgres pool is nil")
	}

	var count int
	err := r.pool.QueryRow(ctx, `
SELECT COUNT(*)
FROM match_proposals
WHERE status = $1
`, status).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count proposals by status: %w", err)
	}

	return count, nil
}

func (r *ProposalRepo) CountApprovedSince(ctx context.Context, since time.Time) (int, error) {
	if r.pool == nil {
		return 0, fmt.Errorf("postgres pool is nil")
	}

	var count int
	err := r.pool.QueryRow(ctx, `
SELECT COUNT(*)
FROM match_proposals
WHERE status = $1 AND finalized_at >= $2
`, enums.ProposalStatusApproved, since.UTC()).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count approved proposals: %w", err)
	}

	return count, nil
}

// ListExpiredVoting returns proposals still marked voting whose window
// has already closed.
func (r *ProposalRepo) ListExpiredVoting(ctx context.Context, now time.Time, limit int) ([]model.Proposal, error) {
	if limit <= 0 {
		limit = 100
	}
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}

	rows, err := r.pool.Query(ctx, `
SELECT `+proposalColumns+`
FROM match_proposals
WHERE status = $1 AND voting_expires_at <= $2
ORDER BY voting_expires_at ASC
LIMIT $3
`, enums.ProposalStatusVoting, now.UTC(), limit)
	if err != nil {
		return nil, fmt.Errorf("list expired proposals: %w", err)
	}
	defer rows.Close()

	return collectProposals(rows)
}

// ListPairHashes returns the pair hashes of every proposal ever
// created. Generation uses it to avoid re-proposing a pair.
func (r *ProposalRepo) ListPairHashes(ctx context.Context) ([]string, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}

	rows, err := r.pool.Query(ctx, `
SELECT pair_hash
FROM match_proposals
`)
	if err != nil {
		return nil, fmt.Errorf("list proposal pair hashes: %w", err)
	}
	defer rows.Close()

	var hashes []string
	for rows.Next() {
		var hash string
		if err := rows.Scan(&hash); err != nil {
			return nil, fmt.Errorf("scan proposal pair hash: %w", err)
		}
		hashes = append(hashes, hash)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate proposal pair hashes: %w", rows.Err())
	}

	return hashes, nil
}

// ListVotingForVoter returns open proposals the voter is assigned to
// and has not yet voted on.
func (r *ProposalRepo) ListVotingForVoter(ctx context.Context, voter string, now time.Time) ([]model.Proposal, error) {
	if voter == "" {
		return nil, fmt.Errorf("empty voter address")
	}
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}

	rows, err := r.pool.Query(ctx, `
SELECT `+proposalColumns+`
FROM match_proposals p
JOIN voter_assignments a ON a.proposal_id = p.id
WHERE a.voter_address = $1
  AND p.status = $2
  AND p.voting_expires_at > $3
  AND NOT EXISTS (
	SELECT 1 FROM match_votes v
	WHERE v.proposal_id = p.id AND v.voter_address = $1
  )
ORDER BY p.voting_expires_at ASC
`, voter, enums.ProposalStatusVoting, now.UTC())
	if err != nil {
		return nil, fmt.Errorf("list proposals for voter: %w", err)
	}
	defer rows.Close()

	return collectProposals(rows)
}

// CastVote records a single vote and bumps the matching tally in one
// transaction. The counter update is guarded by status and expiry so a
// late or already-finalized proposal never gains votes.
func (r *ProposalRepo) CastVote(ctx context.Context, proposalID int64, voter string, choice bool, now time.Time) error {
	if proposalID <= 0 || voter == "" {
		return fmt.Errorf("invalid vote payload")
	}

	return WithTx(ctx, r.pool, func(ctx context.Context, tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
INSERT INTO match_votes (proposal_id, voter_address, choice, created_at)
VALUES ($1, $2, $3, $4)
`, proposalID, voter, choice, now.UTC())
		if IsUniqueViolation(err) {
			return ErrVoteDuplicate
		}
		if err != nil {
			return fmt.Errorf("insert vote: %w", err)
		}

		column := "no_votes"
		if choice {
			column = "yes_votes"
		}

		result, err := tx.Exec(ctx, `
UPDATE match_proposals
SET `+column+` = `+column+` + 1,
    total_votes_cast = total_votes_cast + 1
WHERE id = $1 AND status = $2 AND voting_expires_at > $3
`, proposalID, enums.ProposalStatusVoting, now.UTC())
		if err != nil {
			return fmt.Errorf("increment vote tally: %w", err)
		}
		if result.RowsAffected() == 0 {
			return ErrProposalNotVoting
		}

		return nil
	})
}

// Finalize moves a voting proposal into a terminal status and, on
// approval, unlocks the conversation in the same transaction. Returns
// ErrProposalNotVoting when another worker finalized it first.
func (r *ProposalRepo) Finalize(ctx context.Context, proposalID int64, status enums.ProposalStatus, now time.Time) error {
	if proposalID <= 0 {
		return fmt.Errorf("invalid proposal id")
	}
	if !status.Terminal() {
		return fmt.Errorf("finalize to non-terminal status %q", status)
	}

	return WithTx(ctx, r.pool, func(ctx context.Context, tx pgx.Tx) error {
		var (
			userA string
			userB string
		)
		err := tx.QueryRow(ctx, `
UPDATE match_proposals
SET status = $2, finalized_at = $3
WHERE id = $1 AND status = $4
RETURNING user_a_address, user_b_address
`, proposalID, status, now.UTC(), enums.ProposalStatusVoting).Scan(&userA, &userB)
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrProposalNotVoting
		}
		if err != nil {
			return fmt.Errorf("finalize proposal: %w", err)
		}

		if status != enums.ProposalStatusApproved {
			return nil
		}

		_, err = tx.Exec(ctx, `
INSERT INTO conversations (proposal_id, user_a_address, user_b_address, created_at)
VALUES ($1, $2, $3, $4)
ON CONFLICT (proposal_id) DO NOTHING
`, proposalID, userA, userB, now.UTC())
		if err != nil {
			return fmt.Errorf("insert conversation: %w", err)
		}

		return nil
	})
}

func (r *ProposalRepo) SetSnapshotID(ctx context.Context, proposalID int64, snapshotID string) error {
	if proposalID <= 0 || snapshotID == "" {
		return fmt.Errorf("invalid snapshot link payload")
	}
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}

	_, err := r.pool.Exec(ctx, `
UPDATE match_proposals
SET snapshot_proposal_id = $2
WHERE id = $1
`, proposalID, snapshotID)
	if err != nil {
		return fmt.Errorf("set snapshot proposal id: %w", err)
	}

	return nil
}

func collectProposals(rows pgx.Rows) ([]model.Proposal, error) {
	var items []model.Proposal
	for rows.Next() {
		p, err := scanProposal(rows)
		if err != nil {
			return nil, fmt.Errorf("scan proposal: %w", err)
		}
		items = append(items, p)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate proposals: %w", rows.Err())
	}

	return items, nil
}
