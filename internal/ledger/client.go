// Package ledger abstracts the append-only donation ledger. The application
// never talks to the chain directly; it goes through Client, which classifies
// every failure as either transient (ErrUnavailable) or structural
// (ErrRejected) so workflows can decide whether a retry is safe.
package ledger

import (
	"context"
	"errors"
	"time"

	"server/internal/domain"
)

var (
	// ErrUnavailable is a transient failure reaching the ledger (network,
	// timeout). Retryable, but a submission retry must re-query first: the
	// ledger may have accepted the record even though the response was lost.
	ErrUnavailable = errors.New("ledger unavailable")
	// ErrRejected means the ledger declined the submission for a structural
	// reason (malformed payload, underfunded transaction). Not retryable.
	ErrRejected = errors.New("ledger rejected submission")
	// ErrNotFound means no record exists for the queried donation.
	ErrNotFound = errors.New("ledger record not found")
)

// Record is an entry on the append-only ledger. Immutable once accepted,
// except for the Verified flag which a privileged party can flip through a
// separate transaction.
type Record struct {
	DonationID int               `json:"donationId"`
	DonorRef   string            `json:"donorRef"`
	DonorID    int               `json:"donorId"`
	BloodGroup domain.BloodGroup `json:"bloodGroup"`
	Units      int               `json:"units"`
	Timestamp  int64             `json:"timestamp"`
	Hospital   string            `json:"hospital"`
	Verified   bool              `json:"verified"`
	TxRef      string            `json:"txRef"`
}

// Stats is the advisory aggregate view exposed by the ledger. Not used for
// consistency decisions.
type Stats struct {
	TotalDonations int                       `json:"totalDonations"`
	TotalUnits     int                       `json:"totalUnits"`
	PerBloodGroup  map[domain.BloodGroup]int `json:"perBloodGroup"`
}

// SubmitInput carries the donation fields written to the ledger.
type SubmitInput struct {
	DonationID int
	DonorRef   string
	DonorID    int
	BloodGroup domain.BloodGroup
	Units      int
	Timestamp  time.Time
	Hospital   string
}

// Client is the submission/query surface of the external ledger. Reads are
// keyed by donation ID (the contract stores one record per donation); the
// returned transaction reference is an opaque receipt.
type Client interface {
	Submit(ctx context.Context, in SubmitInput) (txRef string, err error)
	MarkVerified(ctx context.Context, donationID int, actingRef string) (txRef string, err error)
	Fetch(ctx context.Context, donationID int) (*Record, error)
	Stats(ctx context.Context) (*Stats, error)
}
