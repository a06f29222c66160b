package repo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"server/internal/domain"
)

// DonationRepositoryPG implements domain.DonationRepository using PostgreSQL.
// The ledger-facing columns are only ever touched through conditional
// single-row updates.
type DonationRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewDonationRepository creates a new donation repo.
func NewDonationRepository(pool *pgxpool.Pool) *DonationRepositoryPG {
	return &DonationRepositoryPG{pool: pool}
}

const donationColumns = `d.id, d.donor_id, d.blood_group, d.units, d.hospital_id, h.name, d.donation_date, d.ledger_ref, d.verified`

// Create inserts a new donation row.
func (r *DonationRepositoryPG) Create(ctx context.Context, donation *domain.Donation) (*domain.Donation, error) {
	row := r.pool.QueryRow(ctx, `
WITH inserted AS (
	INSERT INTO donations (donor_id, blood_group, units, hospital_id)
	VALUES ($1, $2, $3, $4)
	RETURNING *
)
SELECT `+donationColumns+`
FROM inserted d
JOIN hospitals h ON h.id = d.hospital_id;
`, donation.DonorID, donation.BloodGroup, donation.Units, donation.HospitalID)
	return scanDonation(row)
}

// GetByID fetches a donation by primary key.
func (r *DonationRepositoryPG) GetByID(ctx context.Context, id int) (*domain.Donation, error) {
	row := r.pool.QueryRow(ctx, `
SELECT `+donationColumns+`
FROM donations d
JOIN hospitals h ON h.id = d.hospital_id
WHERE d.id = $1;
`, id)
	return scanDonation(row)
}

// ListAll returns every donation, newest first.
func (r *DonationRepositoryPG) ListAll(ctx context.Context) ([]domain.Donation, error) {
	rows, err := r.pool.Query(ctx, `
SELECT `+donationColumns+`
FROM donations d
JOIN hospitals h ON h.id = d.hospital_id
ORDER BY d.donation_date DESC;
`)
	if err != nil {
		return nil, err
	}
	return collectDonations(rows)
}

// ListByDonorID returns a donor's own donations, newest first.
func (r *DonationRepositoryPG) ListByDonorID(ctx context.Context, donorID int) ([]domain.Donation, error) {
	rows, err := r.pool.Query(ctx, `
SELECT `+donationColumns+`
FROM donations d
JOIN hospitals h ON h.id = d.hospital_id
WHERE d.donor_id = $1
ORDER BY d.donation_date DESC;
`, donorID)
	if err != nil {
		return nil, err
	}
	return collectDonations(rows)
}

// ClaimLedgerRef sets the ledger reference iff the row has none. The
// RowsAffected count is the whole point: zero means another writer got there
// first and the caller must not submit to the ledger.
func (r *DonationRepositoryPG) ClaimLedgerRef(ctx context.Context, id int, ref string) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
UPDATE donations SET ledger_ref = $2 WHERE id = $1 AND ledger_ref IS NULL;
`, id, ref)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// ReplaceLedgerRef swaps a pending claim token for the real receipt.
func (r *DonationRepositoryPG) ReplaceLedgerRef(ctx context.Context, id int, oldRef, newRef string) error {
	tag, err := r.pool.Exec(ctx, `
UPDATE donations SET ledger_ref = $3 WHERE id = $1 AND ledger_ref = $2;
`, id, oldRef, newRef)
	if err != nil {
		return err
	}
	if tag.RowsAffected() != 1 {
		return domain.ErrNotFound
	}
	return nil
}

// ClearLedgerRef releases a claim after a failed ledger submission.
func (r *DonationRepositoryPG) ClearLedgerRef(ctx context.Context, id int, ref string) error {
	_, err := r.pool.Exec(ctx, `
UPDATE donations SET ledger_ref = NULL WHERE id = $1 AND ledger_ref = $2;
`, id, ref)
	return err
}

// MarkVerified flips the verified flag, guarded on a ledger reference being
// present so the verified-implies-recorded invariant holds in the database
// itself.
func (r *DonationRepositoryPG) MarkVerified(ctx context.Context, id int) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
UPDATE donations SET verified = TRUE WHERE id = $1 AND ledger_ref IS NOT NULL;
`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func scanDonation(row pgx.Row) (*domain.Donation, error) {
	var d domain.Donation
	err := row.Scan(&d.ID, &d.DonorID, &d.BloodGroup, &d.Units, &d.HospitalID, &d.HospitalName, &d.DonationDate, &d.LedgerRef, &d.Verified)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &d, nil
}

func collectDonations(rows pgx.Rows) ([]domain.Donation, error) {
	defer rows.Close()
	var items []domain.Donation
	for rows.Next() {
		var d domain.Donation
		if err := rows.Scan(&d.ID, &d.DonorID, &d.BloodGroup, &d.Units, &d.HospitalID, &d.HospitalName, &d.DonationDate, &d.LedgerRef, &d.Verified); err != nil {
			return nil, err
		}
		items = append(items, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

var _ domain.DonationRepository = (*DonationRepositoryPG)(nil)
