package repo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"server/internal/domain"
)

// EligibilityRepositoryPG implements domain.EligibilityRepository using PostgreSQL.
type EligibilityRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewEligibilityRepository creates a new eligibility history repo.
func NewEligibilityRepository(pool *pgxpool.Pool) *EligibilityRepositoryPG {
	return &EligibilityRepositoryPG{pool: pool}
}

// Save persists one eligibility check outcome.
func (r *EligibilityRepositoryPG) Save(ctx context.Context, check *domain.EligibilityCheck) (*domain.EligibilityCheck, error) {
	row := r.pool.QueryRow(ctx, `
INSERT INTO eligibility_history (user_id, eligible, reason)
VALUES ($1, $2, $3)
RETURNING id, user_id, eligible, reason, check_date;
`, check.UserID, check.Eligible, check.Reason)

	var ec domain.EligibilityCheck
	if err := row.Scan(&ec.ID, &ec.UserID, &ec.Eligible, &ec.Reason, &ec.CheckDate); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &ec, nil
}

// ListByUserID returns a user's eligibility history, newest first.
func (r *EligibilityRepositoryPG) ListByUserID(ctx context.Context, userID int) ([]domain.EligibilityCheck, error) {
	rows, err := r.pool.Query(ctx, `
SELECT id, user_id, eligible, reason, check_date
FROM eligibility_history
WHERE user_id = $1
ORDER BY check_date DESC;
`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.EligibilityCheck
	for rows.Next() {
		var ec domain.EligibilityCheck
		if err := rows.Scan(&ec.ID, &ec.UserID, &ec.Eligible, &ec.Reason, &ec.CheckDate); err != nil {
			return nil, err
		}
		items = append(items, ec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

var _ domain.EligibilityRepository = (*EligibilityRepositoryPG)(nil)
