package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"server/internal/domain"
	"server/internal/infra/geoip"
	"server/internal/ledger"
	"server/internal/middleware"
	"server/internal/service"
)

// Pinger is what the health probe needs from the database pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

// App is the handler container. Every route handler hangs off it.
type App struct {
	Logger      zerolog.Logger
	DB          Pinger
	Auth        *service.Auth
	Ledger      *service.DonationLedger
	Eligibility *service.Eligibility
	Donations   domain.DonationRepository
	Inventory   domain.InventoryRepository
	Requests    domain.RequestRepository
	Hospitals   domain.HospitalRepository
	GeoIP       geoip.LocationResolver
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, errCode, message string) {
	a.json(w, code, map[string]string{"error": errCode, "message": message})
}

// fail maps domain and ledger errors onto HTTP responses. No raw client
// error ever reaches the caller unclassified.
func (a *App) fail(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, ledger.ErrNotFound):
		a.error(w, http.StatusNotFound, "not_found", "resource not found")
	case errors.Is(err, domain.ErrForbidden):
		a.error(w, http.StatusForbidden, "forbidden", "access denied")
	case errors.Is(err, domain.ErrInvalidInput):
		a.error(w, http.StatusBadRequest, "bad_request", err.Error())
	case errors.Is(err, domain.ErrEmailTaken):
		a.error(w, http.StatusConflict, "email_taken", "email already registered")
	case errors.Is(err, domain.ErrAlreadyRecorded):
		a.error(w, http.StatusConflict, "already_recorded", "donation already recorded on ledger")
	case errors.Is(err, ledger.ErrUnavailable):
		a.error(w, http.StatusServiceUnavailable, "ledger_unavailable", "ledger is unreachable, try again later")
	case errors.Is(err, ledger.ErrRejected):
		a.error(w, http.StatusBadGateway, "ledger_rejected", "ledger rejected the submission")
	default:
		a.Logger.Error().Err(err).Msg("unhandled request error")
		a.error(w, http.StatusInternalServerError, "internal", "internal server error")
	}
}

// identity returns the authenticated caller or writes a 401.
func (a *App) identity(w http.ResponseWriter, r *http.Request) (domain.Identity, bool) {
	id, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		a.error(w, http.StatusUnauthorized, "unauthorized", "authentication required")
	}
	return id, ok
}
