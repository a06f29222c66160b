package repo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"server/internal/domain"
)

// RequestRepositoryPG implements domain.RequestRepository using PostgreSQL.
type RequestRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewRequestRepository creates a new blood request repo.
func NewRequestRepository(pool *pgxpool.Pool) *RequestRepositoryPG {
	return &RequestRepositoryPG{pool: pool}
}

const requestColumns = `id, patient_id, patient_name, patient_age, blood_group, units, hospital, location, required_date, urgency, reason, contact_number, status, created_at, updated_at`

// Create inserts a new blood request with Pending status.
func (r *RequestRepositoryPG) Create(ctx context.Context, req *domain.BloodRequest) (*domain.BloodRequest, error) {
	row := r.pool.QueryRow(ctx, `
INSERT INTO blood_requests (patient_id, patient_name, patient_age, blood_group, units, hospital, location, required_date, urgency, reason, contact_number)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
RETURNING `+requestColumns+`;
`, req.PatientID, req.PatientName, req.PatientAge, req.BloodGroup, req.Units, req.Hospital, req.Location, req.RequiredDate, req.Urgency, req.Reason, req.ContactNumber)
	return scanRequest(row)
}

// ListAll returns every blood request, newest first.
func (r *RequestRepositoryPG) ListAll(ctx context.Context) ([]domain.BloodRequest, error) {
	rows, err := r.pool.Query(ctx, `
SELECT `+requestColumns+`
FROM blood_requests
ORDER BY created_at DESC;
`)
	if err != nil {
		return nil, err
	}
	return collectRequests(rows)
}

// ListByPatientID returns the requests made by one patient, newest first.
func (r *RequestRepositoryPG) ListByPatientID(ctx context.Context, patientID int) ([]domain.BloodRequest, error) {
	rows, err := r.pool.Query(ctx, `
SELECT `+requestColumns+`
FROM blood_requests
WHERE patient_id = $1
ORDER BY created_at DESC;
`, patientID)
	if err != nil {
		return nil, err
	}
	return collectRequests(rows)
}

// UpdateStatus moves a request to the given status.
func (r *RequestRepositoryPG) UpdateStatus(ctx context.Context, id int, status domain.RequestStatus) (*domain.BloodRequest, error) {
	row := r.pool.QueryRow(ctx, `
UPDATE blood_requests
SET status = $2, updated_at = NOW()
WHERE id = $1
RETURNING `+requestColumns+`;
`, id, status)
	return scanRequest(row)
}

func scanRequest(row pgx.Row) (*domain.BloodRequest, error) {
	var br domain.BloodRequest
	err := row.Scan(&br.ID, &br.PatientID, &br.PatientName, &br.PatientAge, &br.BloodGroup, &br.Units, &br.Hospital, &br.Location, &br.RequiredDate, &br.Urgency, &br.Reason, &br.ContactNumber, &br.Status, &br.CreatedAt, &br.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &br, nil
}

func collectRequests(rows pgx.Rows) ([]domain.BloodRequest, error) {
	defer rows.Close()
	var items []domain.BloodRequest
	for rows.Next() {
		var br domain.BloodRequest
		if err := rows.Scan(&br.ID, &br.PatientID, &br.PatientName, &br.PatientAge, &br.BloodGroup, &br.Units, &br.Hospital, &br.Location, &br.RequiredDate, &br.Urgency, &br.Reason, &br.ContactNumber, &br.Status, &br.CreatedAt, &br.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, br)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

var _ domain.RequestRepository = (*RequestRepositoryPG)(nil)
