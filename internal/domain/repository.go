package domain

import "context"

// UserRepository defines access methods for user accounts.
type UserRepository interface {
	Create(ctx context.Context, user *User) (*User, error)
	GetByID(ctx context.Context, id int) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
}

// DonationRepository handles persistence for blood donations.
//
// ClaimLedgerRef and MarkVerified are single-row conditional updates: they
// succeed at most once per donation and report false when the guard did not
// hold, so concurrent workflow invocations cannot produce lost updates or
// duplicate ledger submissions.
type DonationRepository interface {
	Create(ctx context.Context, donation *Donation) (*Donation, error)
	GetByID(ctx context.Context, id int) (*Donation, error)
	ListAll(ctx context.Context) ([]Donation, error)
	ListByDonorID(ctx context.Context, donorID int) ([]Donation, error)
	// ClaimLedgerRef sets the ledger reference only when none is set yet.
	ClaimLedgerRef(ctx context.Context, id int, ref string) (bool, error)
	// ReplaceLedgerRef swaps the reference only when the current value matches
	// oldRef. Used to exchange a pending claim token for the real receipt.
	ReplaceLedgerRef(ctx context.Context, id int, oldRef, newRef string) error
	// ClearLedgerRef releases a claim made by ClaimLedgerRef. Used when the
	// ledger submission fails after the local claim succeeded.
	ClearLedgerRef(ctx context.Context, id int, ref string) error
	// MarkVerified flips the verified flag only when a ledger reference exists.
	MarkVerified(ctx context.Context, id int) (bool, error)
}

// InventoryRepository handles persistence for blood inventory items.
type InventoryRepository interface {
	List(ctx context.Context) ([]InventoryItem, error)
	Create(ctx context.Context, item *InventoryItem) (*InventoryItem, error)
	Update(ctx context.Context, item *InventoryItem) (*InventoryItem, error)
	Delete(ctx context.Context, id int) error
}

// RequestRepository handles persistence for blood requests.
type RequestRepository interface {
	Create(ctx context.Context, req *BloodRequest) (*BloodRequest, error)
	ListAll(ctx context.Context) ([]BloodRequest, error)
	ListByPatientID(ctx context.Context, patientID int) ([]BloodRequest, error)
	UpdateStatus(ctx context.Context, id int, status RequestStatus) (*BloodRequest, error)
}

// HospitalRepository handles persistence for hospitals.
type HospitalRepository interface {
	List(ctx context.Context) ([]Hospital, error)
	GetByID(ctx context.Context, id int) (*Hospital, error)
	Create(ctx context.Context, hospital *Hospital) (*Hospital, error)
}

// EligibilityRepository persists eligibility quiz outcomes.
type EligibilityRepository interface {
	Save(ctx context.Context, check *EligibilityCheck) (*EligibilityCheck, error)
	ListByUserID(ctx context.Context, userID int) ([]EligibilityCheck, error)
}
