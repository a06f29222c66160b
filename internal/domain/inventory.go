package domain

import "time"

// InventoryItem tracks units of a blood group held by a hospital.
type InventoryItem struct {
	ID         int
	BloodGroup BloodGroup
	Units      int
	ExpiryDate time.Time
	HospitalID int
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
