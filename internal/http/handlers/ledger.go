package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

// LedgerRecord submits a donation to the append-only ledger and persists the
// resulting transaction reference. Donor-only; only the donation's own donor
// may record it.
func (a *App) LedgerRecord(w http.ResponseWriter, r *http.Request) {
	id, ok := a.identity(w, r)
	if !ok {
		return
	}
	donationID, ok := a.donationID(w, r)
	if !ok {
		return
	}

	donation, err := a.Ledger.Record(r.Context(), id, donationID)
	if err != nil {
		a.fail(w, err)
		return
	}
	a.json(w, http.StatusOK, viewDonation(donation))
}

// LedgerVerify is the read-only reconciliation of a donation row against its
// ledger record. A failed comparison is reported as verified:false, not an
// error.
func (a *App) LedgerVerify(w http.ResponseWriter, r *http.Request) {
	if _, ok := a.identity(w, r); !ok {
		return
	}
	donationID, ok := a.donationID(w, r)
	if !ok {
		return
	}

	outcome, err := a.Ledger.Verify(r.Context(), donationID)
	if err != nil {
		a.fail(w, err)
		return
	}
	a.json(w, http.StatusOK, outcome)
}

// LedgerCommit is the privileged verify-and-commit: it marks the ledger
// record verified and flips the row's flag, but only when the read-only
// comparison passes.
func (a *App) LedgerCommit(w http.ResponseWriter, r *http.Request) {
	id, ok := a.identity(w, r)
	if !ok {
		return
	}
	donationID, ok := a.donationID(w, r)
	if !ok {
		return
	}

	outcome, err := a.Ledger.Commit(r.Context(), id, donationID)
	if err != nil {
		a.fail(w, err)
		return
	}
	a.json(w, http.StatusOK, outcome)
}

// LedgerStats returns the ledger's advisory aggregate counters.
func (a *App) LedgerStats(w http.ResponseWriter, r *http.Request) {
	stats, err := a.Ledger.Stats(r.Context())
	if err != nil {
		a.fail(w, err)
		return
	}
	a.json(w, http.StatusOK, stats)
}

func (a *App) donationID(w http.ResponseWriter, r *http.Request) (int, bool) {
	donationID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || donationID <= 0 {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid donation id")
		return 0, false
	}
	return donationID, true
}
