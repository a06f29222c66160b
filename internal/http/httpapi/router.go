package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"server/internal/http/handlers"
	"server/internal/infra"
	mw "server/internal/middleware"
)

// NewRouter wires all routes and middleware.
func NewRouter(app *handlers.App, cfg *infra.Config, logger zerolog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(
		mw.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		mw.Logger(logger),
		mw.CORS(cfg.CORSOrigins),
		mw.RateLimit(cfg.RateLimitPerMin),
	)

	r.Get("/api/healthz", app.Health)

	// Public
	r.Post("/api/auth/register", app.Register)
	r.Post("/api/auth/login", app.Login)
	r.Get("/api/blood-inventory", app.InventoryList)
	r.Get("/api/hospitals", app.HospitalsList)
	r.Get("/api/hospitals/nearby", app.HospitalsNearby)
	r.Get("/api/ledger/stats", app.LedgerStats)

	// Anonymous eligibility checks are allowed; outcomes are saved only for
	// authenticated callers.
	r.With(mw.OptionalAuthJWT(cfg.JWTSecret)).Post("/api/eligibility-check", app.EligibilityCheck)

	// Authenticated
	r.Group(func(r chi.Router) {
		r.Use(mw.AuthJWT(cfg.JWTSecret))

		r.Get("/api/auth/me", app.Me)
		r.Post("/api/auth/logout", app.Logout)

		r.Get("/api/blood-donations", app.DonationsList)
		r.Post("/api/blood-donations", app.DonationsCreate)

		r.Get("/api/blood-requests", app.RequestsList)
		r.Post("/api/blood-requests", app.RequestsCreate)
		r.Put("/api/blood-requests/{id}", app.RequestsUpdateStatus)

		r.Post("/api/blood-inventory", app.InventoryCreate)
		r.Put("/api/blood-inventory/{id}", app.InventoryUpdate)
		r.Delete("/api/blood-inventory/{id}", app.InventoryDelete)

		r.Post("/api/hospitals", app.HospitalsCreate)

		r.Get("/api/eligibility-history", app.EligibilityHistory)

		r.Post("/api/ledger/donations/{id}/record", app.LedgerRecord)
		r.Get("/api/ledger/donations/{id}/verify", app.LedgerVerify)
		r.Post("/api/ledger/donations/{id}/verify", app.LedgerCommit)
	})

	return r
}
