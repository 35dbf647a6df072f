package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/RithvikReddySiddenki/ChainedTogether/internal/domain/model"
)

var ErrProfileNotFound = errors.New("profile not found")

type ProfileRepo struct {
	pool *pgxpool.Pool
}

func NewProfileRepo(pool *pgxpool.Pool) *ProfileRepo {
	return &ProfileRepo{pool: pool}
}

func (r *ProfileRepo) Upsert(ctx context.Context, p model.Profile) error {
	address := strings.ToLower(strings.TrimSpace(p.WalletAddress))
	if address == "" {
		return fmt.Errorf("invalid profile payload")
	}
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}

	answers, err := json.Marshal(p.Answers)
	if err != nil {
		return fmt.Errorf("marshal profile answers: %w", err)
	}

	_, err = r.pool.Exec(ctx, `
INSERT INTO profiles (
	wallet_address,
	name,
	bio,
	age,
	location,
	image_url,
	answers,
	embedding,
	created_at,
	updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
ON CONFLICT (wallet_address) DO UPDATE SET
	name = EXCLUDED.name,
	bio = EXCLUDED.bio,
	age = EXCLUDED.age,
	location = EXCLUDED.location,
	image_url = EXCLUDED.image_url,
	answers = EXCLUDED.answers,
	embedding = EXCLUDED.embedding,
	updated_at = NOW()
`, address, p.Name, p.Bio, p.Age, p.Location, p.ImageURL, answers, p.Embedding)
	if err != nil {
		return fmt.Errorf("upsert profile: %w", err)
	}

	return nil
}

func (r *ProfileRepo) GetByAddress(ctx context.Context, address string) (model.Profile, error) {
	address = strings.ToLower(strings.TrimSpace(address))
	if address == "" {
		return model.Profile{}, fmt.Errorf("invalid wallet address")
	}
	if r.pool == nil {
		return model.Profile{}, fmt.Errorf("postgres pool is nil")
	}

	row := r.pool.QueryRow(ctx, `
SELECT wallet_address, name, bio, age, location, image_url, answers, embedding, created_at, updated_at
FROM profiles
WHERE wallet_address = $1
`, address)

	p, err := scanProfile(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Profile{}, ErrProfileNotFound
		}
		return model.Profile{}, fmt.Errorf("get profile: %w", err)
	}

	return p, nil
}

// ListAll returns the full candidate pool. Generation re-fetches this
// on every pass instead of caching it.
func (r *ProfileRepo) ListAll(ctx context.Context) ([]model.Profile, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}

	rows, err := r.pool.Query(ctx, `
SELECT wallet_address, name, bio, age, location, image_url, answers, embedding, created_at, updated_at
FROM profiles
ORDER BY created_at ASC
`)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	defer rows.Close()

	var items []model.Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("scan profile: %w", err)
		}
		items = append(items, p)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate profiles: %w", rows.Err())
	}

	return items, nil
}

// ListAddressesExcluding returns every wallet address except the given
// ones. Used for voter sampling.
func (r *ProfileRepo) ListAddressesExcluding(ctx context.Context, exclude []string) ([]string, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}

	normalized := make([]string, 0, len(exclude))
	for _, addr := range exclude {
		addr = strings.ToLower(strings.TrimSpace(addr))
		if addr != "" {
			normalized = append(normalized, addr)
		}
	}

	rows, err := r.pool.Query(ctx, `
SELECT wallet_address
FROM profiles
WHERE NOT (wallet_address = ANY($1))
`, normalized)
	if err != nil {
		return nil, fmt.Errorf("list eligible voters: %w", err)
	}
	defer rows.Close()

	var addresses []string
	for rows.Next() {
		var addr string
		if err := rows.Scan(&addr); err != nil {
			return nil, fmt.Errorf("scan voter address: %w", err)
		}
		addresses = append(addresses, addr)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate voter addresses: %w", rows.Err())
	}

	return addresses, nil
}

func (r *ProfileRepo) SetImageURL(ctx context.Context, address, imageURL string) error {
	address = strings.ToLower(strings.TrimSpace(address))
	if address == "" || strings.TrimSpace(imageURL) == "" {
		return fmt.Errorf("invalid image payload")
	}
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}

	result, err := r.pool.Exec(ctx, `
UPDATE profiles
SET image_url = $2, updated_at = NOW()
WHERE wallet_address = $1
`, address, imageURL)
	if err != nil {
		return fmt.Errorf("set profile image: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrProfileNotFound
	}

	return nil
}

func scanProfile(row pgx.Row) (model.Profile, error) {
	var (
		p       model.Profile
		answers []byte
	)
	if err := row.Scan(
		&p.WalletAddress,
		&p.Name,
		&p.Bio,
		&p.Age,
		&p.Location,
		&p.ImageURL,
		&answers,
		&p.Embedding,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		return model.Profile{}, err
	}

	if len(answers) > 0 {
		if err := json.Unmarshal(answers, &p.Answers); err != nil {
			return model.Profile{}, fmt.Errorf("unmarshal profile answers: %w", err)
		}
	}

	return p, nil
}
