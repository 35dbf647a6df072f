package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type VoterRepo struct {
	pool *pgxpool.Pool
}

func NewVoterRepo(pool *pgxpool.Pool) *VoterRepo {
	return &VoterRepo{pool: pool}
}

// AssignVoters links the selected jury to a proposal. Duplicates are
// ignored so a retried creator run stays idempotent.
func (r *VoterRepo) AssignVoters(ctx context.Context, proposalID int64, voters []string, at time.Time) error {
	if proposalID <= 0 {
		return fmt.Errorf("invalid proposal id")
	}
	if len(voters) == 0 {
		return nil
	}
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}

	for _, voter := range voters {
		if voter == "" {
			continue
		}
		_, err := r.pool.Exec(ctx, `
INSERT INTO voter_assignments (proposal_id, voter_address, created_at)
VALUES ($1, $2, $3)
ON CONFLICT (proposal_id, voter_address) DO NOTHING
`, proposalID, voter, at.UTC())
		if err != nil {
			return fmt.Errorf("assign voter: %w", err)
		}
	}

	return nil
}

func (r *VoterRepo) IsAssigned(ctx context.Context, proposalID int64, voter string) (bool, error) {
	if proposalID <= 0 || voter == "" {
		return false, fmt.Errorf("invalid assignment lookup")
	}
	if r.pool == nil {
		return false, fmt.Errorf("postgres pool is nil")
	}

	var assigned bool
	err := r.pool.QueryRow(ctx, `
SELECT EXISTS (
	SELECT 1 FROM voter_assignments
	WHERE proposal_id = $1 AND voter_address = $2
)
`, proposalID, voter).Scan(&assigned)
	if err != nil {
		return false, fmt.Errorf("check voter assignment: %w", err)
	}

	return assigned, nil
}
