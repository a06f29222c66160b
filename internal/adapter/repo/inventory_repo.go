package repo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"server/internal/domain"
)

// InventoryRepositoryPG implements domain.InventoryRepository using PostgreSQL.
type InventoryRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewInventoryRepository creates a new inventory repo.
func NewInventoryRepository(pool *pgxpool.Pool) *InventoryRepositoryPG {
	return &InventoryRepositoryPG{pool: pool}
}

const inventoryColumns = `id, blood_group, units, expiry_date, hospital_id, created_at, updated_at`

// List returns all inventory items ordered by blood group then expiry.
func (r *InventoryRepositoryPG) List(ctx context.Context) ([]domain.InventoryItem, error) {
	rows, err := r.pool.Query(ctx, `
SELECT `+inventoryColumns+`
FROM blood_inventory
ORDER BY blood_group, expiry_date;
`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.InventoryItem
	for rows.Next() {
		var it domain.InventoryItem
		if err := rows.Scan(&it.ID, &it.BloodGroup, &it.Units, &it.ExpiryDate, &it.HospitalID, &it.CreatedAt, &it.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// Create inserts a new inventory item.
func (r *InventoryRepositoryPG) Create(ctx context.Context, item *domain.InventoryItem) (*domain.InventoryItem, error) {
	row := r.pool.QueryRow(ctx, `
INSERT INTO blood_inventory (blood_group, units, expiry_date, hospital_id)
VALUES ($1, $2, $3, $4)
RETURNING `+inventoryColumns+`;
`, item.BloodGroup, item.Units, item.ExpiryDate, item.HospitalID)
	return scanInventory(row)
}

// Update replaces the mutable fields of an inventory item.
func (r *InventoryRepositoryPG) Update(ctx context.Context, item *domain.InventoryItem) (*domain.InventoryItem, error) {
	row := r.pool.QueryRow(ctx, `
UPDATE blood_inventory
SET blood_group = $2, units = $3, expiry_date = $4, hospital_id = $5, updated_at = NOW()
WHERE id = $1
RETURNING `+inventoryColumns+`;
`, item.ID, item.BloodGroup, item.Units, item.ExpiryDate, item.HospitalID)
	return scanInventory(row)
}

// Delete removes an inventory item.
func (r *InventoryRepositoryPG) Delete(ctx context.Context, id int) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM blood_inventory WHERE id = $1;`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanInventory(row pgx.Row) (*domain.InventoryItem, error) {
	var it domain.InventoryItem
	err := row.Scan(&it.ID, &it.BloodGroup, &it.Units, &it.ExpiryDate, &it.HospitalID, &it.CreatedAt, &it.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &it, nil
}

var _ domain.InventoryRepository = (*InventoryRepositoryPG)(nil)
