package handlers

import (
	"net/http"
)

// Health is the liveness and readiness probe. When a database pool is
// attached it doubles as a readiness check; ledger reachability is
// deliberately not probed, the service stays up while the ledger is down.
func (a *App) Health(w http.ResponseWriter, r *http.Request) {
	if a.DB != nil {
		if err := a.DB.Ping(r.Context()); err != nil {
			a.Logger.Error().Err(err).Msg("health check: database unreachable")
			a.error(w, http.StatusServiceUnavailable, "db_unavailable", "database is unreachable")
			return
		}
	}
	a.json(w, http.StatusOK, map[string]string{"status": "ok"})
}
