package ledger

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"server/internal/domain"
)

// Memory is an in-process ledger used in development (LEDGER_MODE=memory)
// and tests. It keeps the contract's semantics: one record per donation ID,
// records are append-only, only the verified flag can change.
type Memory struct {
	mu      sync.Mutex
	records map[int]*Record
}

// NewMemory creates an empty in-process ledger.
func NewMemory() *Memory {
	return &Memory{records: make(map[int]*Record)}
}

func (m *Memory) Submit(_ context.Context, in SubmitInput) (string, error) {
	if in.Units <= 0 {
		return "", fmt.Errorf("%w: units must be positive", ErrRejected)
	}
	if _, err := domain.ParseBloodGroup(string(in.BloodGroup)); err != nil {
		return "", fmt.Errorf("%w: %v", ErrRejected, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.records[in.DonationID]; ok {
		// The contract overwrites nothing: resubmission returns the original receipt.
		return existing.TxRef, nil
	}
	txRef := "0x" + uuid.NewString()
	m.records[in.DonationID] = &Record{
		DonationID: in.DonationID,
		DonorRef:   in.DonorRef,
		DonorID:    in.DonorID,
		BloodGroup: in.BloodGroup,
		Units:      in.Units,
		Timestamp:  in.Timestamp.Unix(),
		Hospital:   in.Hospital,
		TxRef:      txRef,
	}
	return txRef, nil
}

func (m *Memory) MarkVerified(_ context.Context, donationID int, _ string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[donationID]
	if !ok {
		return "", ErrNotFound
	}
	rec.Verified = true
	return "0x" + uuid.NewString(), nil
}

func (m *Memory) Fetch(_ context.Context, donationID int) (*Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[donationID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *rec
	return &cp, nil
}

func (m *Memory) Stats(_ context.Context) (*Stats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stats := &Stats{PerBloodGroup: make(map[domain.BloodGroup]int)}
	for _, rec := range m.records {
		stats.TotalDonations++
		stats.TotalUnits += rec.Units
		stats.PerBloodGroup[rec.BloodGroup] += rec.Units
	}
	return stats, nil
}

var _ Client = (*Memory)(nil)
