package ledger

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"server/internal/domain"
)

func newTestGateway(t *testing.T, handler http.Handler) (*Gateway, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	gw, err := NewGateway(GatewayOptions{
		BaseURL: srv.URL,
		APIKey:  "test-key",
		Timeout: 2 * time.Second,
		Logger:  zerolog.Nop(),
	})
	require.NoError(t, err)
	return gw, srv
}

func TestGatewaySubmit(t *testing.T) {
	var seen submitBody
	var idemKey, auth string
	gw, _ := newTestGateway(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/donations", r.URL.Path)
		idemKey = r.Header.Get("Idempotency-Key")
		auth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&seen))
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"txRef": "0xabc"})
	}))

	ts := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	ref, err := gw.Submit(context.Background(), SubmitInput{
		DonationID: 42,
		DonorRef:   "0xdonor",
		DonorID:    7,
		BloodGroup: domain.BloodGroupOPos,
		Units:      2,
		Timestamp:  ts,
		Hospital:   "Central Blood Bank",
	})
	require.NoError(t, err)
	assert.Equal(t, "0xabc", ref)
	assert.NotEmpty(t, idemKey)
	assert.Equal(t, "Bearer test-key", auth)
	assert.Equal(t, 42, seen.DonationID)
	assert.Equal(t, domain.BloodGroupOPos, seen.BloodGroup)
	assert.Equal(t, ts.Unix(), seen.Timestamp)
}

func TestGatewayErrorClassification(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   error
	}{
		{"bad request is rejected", http.StatusBadRequest, ErrRejected},
		{"conflict is rejected", http.StatusConflict, ErrRejected},
		{"server error is transient", http.StatusInternalServerError, ErrUnavailable},
		{"bad gateway is transient", http.StatusBadGateway, ErrUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw, _ := newTestGateway(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				json.NewEncoder(w).Encode(map[string]string{"message": "nope"})
			}))
			_, err := gw.Submit(context.Background(), SubmitInput{DonationID: 1, Units: 1, BloodGroup: domain.BloodGroupOPos, Timestamp: time.Now()})
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestGatewayUnreachableIsUnavailable(t *testing.T) {
	gw, srv := newTestGateway(t, http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close()

	_, err := gw.Submit(context.Background(), SubmitInput{DonationID: 1, Units: 1, BloodGroup: domain.BloodGroupOPos, Timestamp: time.Now()})
	require.ErrorIs(t, err, ErrUnavailable)

	_, err = gw.Fetch(context.Background(), 1)
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestGatewayFetch(t *testing.T) {
	gw, _ := newTestGateway(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/donations/42":
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(Record{
				DonationID: 42,
				BloodGroup: domain.BloodGroupOPos,
				Units:      2,
				TxRef:      "0xabc",
			})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))

	rec, err := gw.Fetch(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, 42, rec.DonationID)
	assert.Equal(t, "0xabc", rec.TxRef)

	_, err = gw.Fetch(context.Background(), 99)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestGatewayMarkVerified(t *testing.T) {
	gw, _ := newTestGateway(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/donations/42/verify", r.URL.Path)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "0xadmin", body["from"])
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"txRef": "0xverify"})
	}))

	ref, err := gw.MarkVerified(context.Background(), 42, "0xadmin")
	require.NoError(t, err)
	assert.Equal(t, "0xverify", ref)
}

func TestGatewayStats(t *testing.T) {
	gw, _ := newTestGateway(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/stats", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(Stats{
			TotalDonations: 3,
			TotalUnits:     7,
			PerBloodGroup:  map[domain.BloodGroup]int{domain.BloodGroupOPos: 7},
		})
	}))

	stats, err := gw.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalDonations)
	assert.Equal(t, 7, stats.PerBloodGroup[domain.BloodGroupOPos])
}
