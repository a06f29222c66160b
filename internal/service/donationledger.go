// Package service holds the workflows that sit between the HTTP handlers and
// the repositories. The donation ledger workflows own every transition of a
// donation's ledger-facing state; handlers never touch the ledger client or
// the conditional row updates directly.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"server/internal/domain"
	"server/internal/ledger"
)

// CompareField names a donation field checked during verification.
// The donation ID is always compared and is not listed here.
type CompareField string

const (
	CompareBloodGroup CompareField = "blood_group"
	CompareUnits      CompareField = "units"
	CompareHospital   CompareField = "hospital"
)

// DefaultCompareFields matches the historical behavior: identity plus blood
// group only. Units and hospital can be opted in through configuration.
var DefaultCompareFields = []CompareField{CompareBloodGroup}

// ParseCompareFields parses a comma-separated field list from configuration.
// An empty input yields DefaultCompareFields.
func ParseCompareFields(s string) ([]CompareField, error) {
	if strings.TrimSpace(s) == "" {
		return DefaultCompareFields, nil
	}
	var fields []CompareField
	for _, part := range strings.Split(s, ",") {
		switch f := CompareField(strings.TrimSpace(part)); f {
		case CompareBloodGroup, CompareUnits, CompareHospital:
			fields = append(fields, f)
		default:
			return nil, fmt.Errorf("unknown compare field %q", part)
		}
	}
	return fields, nil
}

// Verification reason codes. A failed comparison is a reportable outcome,
// not an error.
const (
	ReasonNotRecorded   = "not_recorded"
	ReasonRecordMissing = "record_missing"
	ReasonMismatch      = "mismatch"
)

// VerifyOutcome is the result of comparing a donation row against its ledger
// record.
type VerifyOutcome struct {
	Verified bool           `json:"verified"`
	Reason   string         `json:"reason,omitempty"`
	Record   *ledger.Record `json:"ledgerRecord,omitempty"`
}

// DonationLedger orchestrates the dual-write between the donation store and
// the append-only ledger, and the later reconciliation of the two.
type DonationLedger struct {
	donations domain.DonationRepository
	chain     ledger.Client
	compare   []CompareField
	logger    zerolog.Logger
}

// NewDonationLedger wires the workflow against a donation store and a ledger
// client. compareFields may be nil to use DefaultCompareFields.
func NewDonationLedger(donations domain.DonationRepository, chain ledger.Client, compareFields []CompareField, logger zerolog.Logger) *DonationLedger {
	if len(compareFields) == 0 {
		compareFields = DefaultCompareFields
	}
	return &DonationLedger{
		donations: donations,
		chain:     chain,
		compare:   compareFields,
		logger:    logger,
	}
}

// pendingPrefix marks a row whose ledger submission is in flight. The claim
// serializes concurrent recording attempts for the same donation before
// anything is sent to the ledger.
const pendingPrefix = "pending:"

// Record moves a donation from "known only locally" to "also known to the
// ledger". Donor-only, and only for the donation's own donor.
//
// The row is claimed with a pending token before the ledger submission, so
// two racing calls cannot both submit. If the ledger already holds a record
// for the donation (a previous attempt timed out after the chain accepted
// it), its receipt is adopted instead of resubmitting.
func (dl *DonationLedger) Record(ctx context.Context, actor domain.Identity, donationID int) (*domain.Donation, error) {
	d, err := dl.donations.GetByID(ctx, donationID)
	if err != nil {
		return nil, err
	}
	if !actor.Is(domain.RoleDonor) || actor.UserID != d.DonorID {
		return nil, domain.ErrForbidden
	}
	if d.Recorded() {
		return nil, domain.ErrAlreadyRecorded
	}

	// Timeout ambiguity guard: a lost response does not mean a lost record.
	rec, err := dl.chain.Fetch(ctx, d.ID)
	switch {
	case err == nil:
		return dl.adoptReceipt(ctx, d, rec.TxRef)
	case errors.Is(err, ledger.ErrNotFound):
		// Nothing on the ledger yet, safe to submit.
	default:
		return nil, err
	}

	token := pendingPrefix + uuid.NewString()
	claimed, err := dl.donations.ClaimLedgerRef(ctx, d.ID, token)
	if err != nil {
		return nil, err
	}
	if !claimed {
		return nil, domain.ErrAlreadyRecorded
	}

	txRef, err := dl.chain.Submit(ctx, ledger.SubmitInput{
		DonationID: d.ID,
		DonorRef:   actor.WalletRef,
		DonorID:    d.DonorID,
		BloodGroup: d.BloodGroup,
		Units:      d.Units,
		Timestamp:  d.DonationDate,
		Hospital:   d.HospitalName,
	})
	if err != nil {
		if clearErr := dl.donations.ClearLedgerRef(ctx, d.ID, token); clearErr != nil {
			dl.logger.Error().Err(clearErr).Int("donation_id", d.ID).Msg("failed to release pending ledger claim")
		}
		return nil, err
	}

	if err := dl.donations.ReplaceLedgerRef(ctx, d.ID, token, txRef); err != nil {
		return nil, err
	}
	dl.logger.Info().Int("donation_id", d.ID).Str("tx_ref", txRef).Msg("donation recorded on ledger")

	d.LedgerRef = &txRef
	return d, nil
}

// adoptReceipt persists an existing ledger receipt onto an unrecorded row.
func (dl *DonationLedger) adoptReceipt(ctx context.Context, d *domain.Donation, txRef string) (*domain.Donation, error) {
	claimed, err := dl.donations.ClaimLedgerRef(ctx, d.ID, txRef)
	if err != nil {
		return nil, err
	}
	if !claimed {
		return nil, domain.ErrAlreadyRecorded
	}
	dl.logger.Info().Int("donation_id", d.ID).Str("tx_ref", txRef).Msg("adopted existing ledger record")
	d.LedgerRef = &txRef
	return d, nil
}

// Verify is the read-only reconciliation: fetch both views and compare.
// It never mutates state, whatever the outcome.
func (dl *DonationLedger) Verify(ctx context.Context, donationID int) (*VerifyOutcome, error) {
	d, err := dl.donations.GetByID(ctx, donationID)
	if err != nil {
		return nil, err
	}
	if !d.Recorded() {
		return &VerifyOutcome{Verified: false, Reason: ReasonNotRecorded}, nil
	}

	rec, err := dl.chain.Fetch(ctx, d.ID)
	if errors.Is(err, ledger.ErrNotFound) {
		return &VerifyOutcome{Verified: false, Reason: ReasonRecordMissing}, nil
	}
	if err != nil {
		return nil, err
	}

	if !dl.matches(d, rec) {
		return &VerifyOutcome{Verified: false, Reason: ReasonMismatch, Record: rec}, nil
	}
	return &VerifyOutcome{Verified: true, Record: rec}, nil
}

func (dl *DonationLedger) matches(d *domain.Donation, rec *ledger.Record) bool {
	if rec.DonationID != d.ID {
		return false
	}
	for _, f := range dl.compare {
		switch f {
		case CompareBloodGroup:
			if rec.BloodGroup != d.BloodGroup {
				return false
			}
		case CompareUnits:
			if rec.Units != d.Units {
				return false
			}
		case CompareHospital:
			if rec.Hospital != d.HospitalName {
				return false
			}
		}
	}
	return true
}

// Commit is the privileged verify-and-commit: admin/hospital only. The
// read-only comparison must pass before the ledger record is marked verified;
// a mismatch is returned as a plain outcome and nothing is written anywhere.
func (dl *DonationLedger) Commit(ctx context.Context, actor domain.Identity, donationID int) (*VerifyOutcome, error) {
	if !actor.Is(domain.RoleAdmin, domain.RoleHospital) {
		return nil, domain.ErrForbidden
	}

	out, err := dl.Verify(ctx, donationID)
	if err != nil {
		return nil, err
	}
	if !out.Verified {
		return out, nil
	}

	if _, err := dl.chain.MarkVerified(ctx, donationID, actor.WalletRef); err != nil {
		return nil, err
	}
	if _, err := dl.donations.MarkVerified(ctx, donationID); err != nil {
		return nil, err
	}
	dl.logger.Info().Int("donation_id", donationID).Int("actor_id", actor.UserID).Msg("donation verified and committed")

	if out.Record != nil {
		out.Record.Verified = true
	}
	return out, nil
}

// Stats proxies the ledger's advisory aggregate counters.
func (dl *DonationLedger) Stats(ctx context.Context) (*ledger.Stats, error) {
	return dl.chain.Stats(ctx)
}
