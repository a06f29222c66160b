package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"server/internal/domain"
	"server/internal/http/handlers"
	"server/internal/infra"
	"server/internal/ledger"
	"server/internal/service"
)

type fakeUsers struct {
	mu    sync.Mutex
	users map[string]*domain.User
}

func (f *fakeUsers) Create(_ context.Context, u *domain.User) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u.ID = len(f.users) + 1
	f.users[u.Email] = u
	return u, nil
}

func (f *fakeUsers) GetByID(_ context.Context, id int) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[email]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return u, nil
}

type fakeDonations struct {
	mu   sync.Mutex
	rows map[int]*domain.Donation
}

func (f *fakeDonations) Create(_ context.Context, d *domain.Donation) (*domain.Donation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d.ID = len(f.rows) + 1
	d.DonationDate = time.Now()
	d.HospitalName = "Central Blood Bank"
	cp := *d
	f.rows[d.ID] = &cp
	return d, nil
}

func (f *fakeDonations) GetByID(_ context.Context, id int) (*domain.Donation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.rows[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *d
	return &cp, nil
}

func (f *fakeDonations) ListAll(_ context.Context) ([]domain.Donation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.Donation, 0, len(f.rows))
	for _, d := range f.rows {
		out = append(out, *d)
	}
	return out, nil
}

func (f *fakeDonations) ListByDonorID(_ context.Context, donorID int) ([]domain.Donation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Donation
	for _, d := range f.rows {
		if d.DonorID == donorID {
			out = append(out, *d)
		}
	}
	return out, nil
}

func (f *fakeDonations) ClaimLedgerRef(_ context.Context, id int, ref string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.rows[id]
	if !ok || d.LedgerRef != nil {
		return false, nil
	}
	d.LedgerRef = &ref
	return true, nil
}

func (f *fakeDonations) ReplaceLedgerRef(_ context.Context, id int, oldRef, newRef string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.rows[id]
	if !ok || d.LedgerRef == nil || *d.LedgerRef != oldRef {
		return domain.ErrNotFound
	}
	d.LedgerRef = &newRef
	return nil
}

func (f *fakeDonations) ClearLedgerRef(_ context.Context, id int, ref string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if d, ok := f.rows[id]; ok && d.LedgerRef != nil && *d.LedgerRef == ref {
		d.LedgerRef = nil
	}
	return nil
}

func (f *fakeDonations) MarkVerified(_ context.Context, id int) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.rows[id]
	if !ok || d.LedgerRef == nil {
		return false, nil
	}
	d.Verified = true
	return true, nil
}

type fakeHospitals struct {
	rows []domain.Hospital
}

func (f *fakeHospitals) List(context.Context) ([]domain.Hospital, error) {
	return f.rows, nil
}

func (f *fakeHospitals) GetByID(_ context.Context, id int) (*domain.Hospital, error) {
	for i := range f.rows {
		if f.rows[i].ID == id {
			return &f.rows[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeHospitals) Create(_ context.Context, h *domain.Hospital) (*domain.Hospital, error) {
	h.ID = len(f.rows) + 1
	f.rows = append(f.rows, *h)
	return h, nil
}

type fakeEligibility struct {
	checks []domain.EligibilityCheck
}

func (f *fakeEligibility) Save(_ context.Context, c *domain.EligibilityCheck) (*domain.EligibilityCheck, error) {
	c.ID = len(f.checks) + 1
	f.checks = append(f.checks, *c)
	return c, nil
}

func (f *fakeEligibility) ListByUserID(_ context.Context, userID int) ([]domain.EligibilityCheck, error) {
	var out []domain.EligibilityCheck
	for _, c := range f.checks {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	return out, nil
}

type testEnv struct {
	router      http.Handler
	eligibility *fakeEligibility
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger := zerolog.Nop()
	users := &fakeUsers{users: make(map[string]*domain.User)}
	donations := &fakeDonations{rows: make(map[int]*domain.Donation)}
	hospitals := &fakeHospitals{rows: []domain.Hospital{
		{ID: 1, Name: "Central Blood Bank", Address: "1 Main St", Latitude: 52.52, Longitude: 13.405},
		{ID: 2, Name: "Far Clinic", Address: "99 Remote Rd", Latitude: 48.14, Longitude: 11.58},
	}}
	eligibility := &fakeEligibility{}

	app := &handlers.App{
		Logger:      logger,
		Auth:        service.NewAuth(users, "test-secret", time.Hour),
		Ledger:      service.NewDonationLedger(donations, ledger.NewMemory(), nil, logger),
		Eligibility: service.NewEligibility(eligibility),
		Donations:   donations,
		Hospitals:   hospitals,
	}
	cfg := &infra.Config{
		JWTSecret:       "test-secret",
		CORSOrigins:     []string{"http://localhost:5173"},
		RateLimitPerMin: 1000,
	}
	return &testEnv{
		router:      NewRouter(app, cfg, logger),
		eligibility: eligibility,
	}
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.RemoteAddr = "10.0.0.1:1234"
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v), "body: %s", rec.Body.String())
	return v
}

func (e *testEnv) register(t *testing.T, email, role, wallet string) string {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/api/auth/register", "", map[string]any{
		"name":          "Test " + role,
		"email":         email,
		"password":      "long-enough-password",
		"age":           30,
		"bloodGroup":    "O+",
		"role":          role,
		"walletAddress": wallet,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[map[string]any](t, rec)["token"].(string)
}

func TestHealthz(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/api/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthenticatedRoutesRejectAnonymous(t *testing.T) {
	env := newTestEnv(t)
	for _, route := range []struct{ method, path string }{
		{http.MethodGet, "/api/auth/me"},
		{http.MethodGet, "/api/blood-donations"},
		{http.MethodPost, "/api/ledger/donations/1/record"},
		{http.MethodGet, "/api/ledger/donations/1/verify"},
		{http.MethodPost, "/api/ledger/donations/1/verify"},
	} {
		rec := env.do(t, route.method, route.path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "%s %s", route.method, route.path)
	}
}

func TestRegisterLoginMe(t *testing.T) {
	env := newTestEnv(t)
	token := env.register(t, "donor@example.com", "donor", "0xdonor")

	rec := env.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "donor@example.com", "password": "long-enough-password",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/auth/me", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	me := decode[map[string]any](t, rec)
	assert.Equal(t, "donor@example.com", me["email"])

	rec = env.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "donor@example.com", "password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestDonationLedgerFlow(t *testing.T) {
	env := newTestEnv(t)
	donor := env.register(t, "donor@example.com", "donor", "0xdonor")
	admin := env.register(t, "admin@example.com", "admin", "0xadmin")

	// Donor creates a donation row.
	rec := env.do(t, http.MethodPost, "/api/blood-donations", donor, map[string]any{
		"bloodGroup": "O+", "units": 2, "hospitalId": 1,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[map[string]any](t, rec)
	assert.Equal(t, float64(1), created["id"])
	assert.Nil(t, created["ledgerRef"])

	// Verify before recording reports not_recorded.
	rec = env.do(t, http.MethodGet, "/api/ledger/donations/1/verify", donor, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	out := decode[map[string]any](t, rec)
	assert.Equal(t, false, out["verified"])
	assert.Equal(t, "not_recorded", out["reason"])

	// Admin cannot record someone else's donation.
	rec = env.do(t, http.MethodPost, "/api/ledger/donations/1/record", admin, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// Donor records it.
	rec = env.do(t, http.MethodPost, "/api/ledger/donations/1/record", donor, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	recorded := decode[map[string]any](t, rec)
	assert.NotEmpty(t, recorded["ledgerRef"])
	assert.Equal(t, false, recorded["verified"])

	// A second record attempt conflicts.
	rec = env.do(t, http.MethodPost, "/api/ledger/donations/1/record", donor, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "already_recorded", decode[map[string]any](t, rec)["error"])

	// Read-only verification now passes and does not commit.
	rec = env.do(t, http.MethodGet, "/api/ledger/donations/1/verify", donor, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decode[map[string]any](t, rec)["verified"])

	rec = env.do(t, http.MethodGet, "/api/blood-donations", donor, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[[]map[string]any](t, rec)
	require.Len(t, list, 1)
	assert.Equal(t, false, list[0]["verified"])

	// The donor cannot commit; the admin can.
	rec = env.do(t, http.MethodPost, "/api/ledger/donations/1/verify", donor, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/ledger/donations/1/verify", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, true, decode[map[string]any](t, rec)["verified"])

	rec = env.do(t, http.MethodGet, "/api/blood-donations", donor, nil)
	list = decode[[]map[string]any](t, rec)
	require.Len(t, list, 1)
	assert.Equal(t, true, list[0]["verified"])

	// Ledger stats is public and reflects the recorded donation.
	rec = env.do(t, http.MethodGet, "/api/ledger/stats", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	stats := decode[map[string]any](t, rec)
	assert.Equal(t, float64(1), stats["totalDonations"])
}

func TestLedgerUnknownDonation(t *testing.T) {
	env := newTestEnv(t)
	donor := env.register(t, "donor@example.com", "donor", "0xdonor")

	rec := env.do(t, http.MethodPost, "/api/ledger/donations/99/record", donor, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/ledger/donations/abc/record", donor, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDonationsCreateValidation(t *testing.T) {
	env := newTestEnv(t)
	donor := env.register(t, "donor@example.com", "donor", "0xdonor")
	patient := env.register(t, "patient@example.com", "patient", "")

	rec := env.do(t, http.MethodPost, "/api/blood-donations", patient, map[string]any{
		"bloodGroup": "O+", "units": 1, "hospitalId": 1,
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/blood-donations", donor, map[string]any{
		"bloodGroup": "Z+", "units": 1, "hospitalId": 1,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/blood-donations", donor, map[string]any{
		"bloodGroup": "O+", "units": 1, "hospitalId": 99,
	})
	assert.Equal(t, http.StatusNotFound, rec.Code, "unknown hospital")
}

func TestHospitalsNearby(t *testing.T) {
	env := newTestEnv(t)

	// Berlin coordinates: only the Berlin hospital is within 50km.
	rec := env.do(t, http.MethodGet, "/api/hospitals/nearby?lat=52.52&lng=13.405&radius=50", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	nearby := decode[[]map[string]any](t, rec)
	require.Len(t, nearby, 1)
	assert.Equal(t, "Central Blood Bank", nearby[0]["name"])

	rec = env.do(t, http.MethodGet, "/api/hospitals/nearby?lat=52.52&lng=not-a-number", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// No coordinates and no GeoIP database configured.
	rec = env.do(t, http.MethodGet, "/api/hospitals/nearby", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestEligibilityCheckAnonymousAndAuthenticated(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/eligibility-check", "", map[string]any{
		"age": 30, "weight": 70,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decode[map[string]any](t, rec)["eligible"])
	assert.Empty(t, env.eligibility.checks, "anonymous checks are not persisted")

	donor := env.register(t, "donor@example.com", "donor", "0xdonor")
	rec = env.do(t, http.MethodPost, "/api/eligibility-check", donor, map[string]any{
		"age": 17, "weight": 70,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, decode[map[string]any](t, rec)["eligible"])
	require.Len(t, env.eligibility.checks, 1)

	rec = env.do(t, http.MethodGet, "/api/eligibility-history", donor, nil)
	require.Equal(t, http.StatusOK, rec.Code)
}
