package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"server/internal/domain"
)

func TestMemorySubmitIsIdempotentPerDonation(t *testing.T) {
	m := NewMemory()
	in := SubmitInput{DonationID: 42, DonorID: 7, BloodGroup: domain.BloodGroupOPos, Units: 2, Timestamp: time.Now()}

	first, err := m.Submit(context.Background(), in)
	require.NoError(t, err)

	second, err := m.Submit(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, first, second, "resubmission returns the original receipt")

	stats, err := m.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalDonations)
}

func TestMemoryRejectsInvalidSubmissions(t *testing.T) {
	m := NewMemory()

	_, err := m.Submit(context.Background(), SubmitInput{DonationID: 1, BloodGroup: domain.BloodGroupOPos, Units: 0})
	require.ErrorIs(t, err, ErrRejected)

	_, err = m.Submit(context.Background(), SubmitInput{DonationID: 1, BloodGroup: "Z+", Units: 1})
	require.ErrorIs(t, err, ErrRejected)
}

func TestMemoryFetchAndVerify(t *testing.T) {
	m := NewMemory()

	_, err := m.Fetch(context.Background(), 42)
	require.ErrorIs(t, err, ErrNotFound)
	_, err = m.MarkVerified(context.Background(), 42, "0xadmin")
	require.ErrorIs(t, err, ErrNotFound)

	_, err = m.Submit(context.Background(), SubmitInput{DonationID: 42, BloodGroup: domain.BloodGroupOPos, Units: 2, Timestamp: time.Now()})
	require.NoError(t, err)

	rec, err := m.Fetch(context.Background(), 42)
	require.NoError(t, err)
	assert.False(t, rec.Verified)

	_, err = m.MarkVerified(context.Background(), 42, "0xadmin")
	require.NoError(t, err)

	rec, err = m.Fetch(context.Background(), 42)
	require.NoError(t, err)
	assert.True(t, rec.Verified)
}
