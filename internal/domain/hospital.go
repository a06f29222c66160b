package domain

import "time"

// Hospital is a registered blood bank or hospital facility.
type Hospital struct {
	ID        int
	Name      string
	Address   string
	Latitude  float64
	Longitude float64
	Phone     string
	Email     string
	CreatedAt time.Time
}
