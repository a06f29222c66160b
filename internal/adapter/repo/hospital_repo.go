package repo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"server/internal/domain"
)

// HospitalRepositoryPG implements domain.HospitalRepository using PostgreSQL.
type HospitalRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewHospitalRepository creates a new hospital repo.
func NewHospitalRepository(pool *pgxpool.Pool) *HospitalRepositoryPG {
	return &HospitalRepositoryPG{pool: pool}
}

const hospitalColumns = `id, name, address, latitude, longitude, phone, email, created_at`

// List returns every registered hospital.
func (r *HospitalRepositoryPG) List(ctx context.Context) ([]domain.Hospital, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+hospitalColumns+` FROM hospitals ORDER BY name;`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.Hospital
	for rows.Next() {
		var h domain.Hospital
		if err := rows.Scan(&h.ID, &h.Name, &h.Address, &h.Latitude, &h.Longitude, &h.Phone, &h.Email, &h.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, h)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// GetByID fetches a hospital by primary key.
func (r *HospitalRepositoryPG) GetByID(ctx context.Context, id int) (*domain.Hospital, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+hospitalColumns+` FROM hospitals WHERE id = $1`, id)
	return scanHospital(row)
}

// Create inserts a new hospital.
func (r *HospitalRepositoryPG) Create(ctx context.Context, hospital *domain.Hospital) (*domain.Hospital, error) {
	row := r.pool.QueryRow(ctx, `
INSERT INTO hospitals (name, address, latitude, longitude, phone, email)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING `+hospitalColumns+`;
`, hospital.Name, hospital.Address, hospital.Latitude, hospital.Longitude, hospital.Phone, hospital.Email)
	return scanHospital(row)
}

func scanHospital(row pgx.Row) (*domain.Hospital, error) {
	var h domain.Hospital
	err := row.Scan(&h.ID, &h.Name, &h.Address, &h.Latitude, &h.Longitude, &h.Phone, &h.Email, &h.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &h, nil
}

var _ domain.HospitalRepository = (*HospitalRepositoryPG)(nil)
