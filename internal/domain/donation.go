package domain

import "time"

// Donation is a recorded blood donation. Rows are created by donors and
// never deleted; the ledger-facing fields are mutated only by the recording
// and verification workflows.
//
// LedgerRef is nil until the donation has been accepted by the external
// ledger. Verified never becomes true while LedgerRef is nil.
type Donation struct {
	ID           int
	DonorID      int
	BloodGroup   BloodGroup
	Units        int
	HospitalID   int
	HospitalName string
	DonationDate time.Time
	LedgerRef    *string
	Verified     bool
}

// Recorded reports whether the donation has been submitted to the ledger.
func (d *Donation) Recorded() bool {
	return d.LedgerRef != nil && *d.LedgerRef != ""
}
