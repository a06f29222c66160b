package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"server/internal/middleware"
	"server/internal/service"
)

// EligibilityCheck evaluates the donor screening rules. Works anonymously;
// outcomes are persisted only for authenticated callers.
func (a *App) EligibilityCheck(w http.ResponseWriter, r *http.Request) {
	var req service.EligibilityInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}

	userID := 0
	if id, ok := middleware.IdentityFrom(r.Context()); ok {
		userID = id.UserID
	}

	eligible, reason, err := a.Eligibility.Check(r.Context(), userID, req)
	if err != nil {
		a.fail(w, err)
		return
	}
	a.json(w, http.StatusOK, map[string]any{"eligible": eligible, "reason": reason})
}

type eligibilityCheckView struct {
	ID        int       `json:"id"`
	Eligible  bool      `json:"eligible"`
	Reason    string    `json:"reason,omitempty"`
	CheckDate time.Time `json:"checkDate"`
}

// EligibilityHistory returns the caller's saved eligibility checks.
func (a *App) EligibilityHistory(w http.ResponseWriter, r *http.Request) {
	id, ok := a.identity(w, r)
	if !ok {
		return
	}
	items, err := a.Eligibility.History(r.Context(), id.UserID)
	if err != nil {
		a.fail(w, err)
		return
	}
	views := make([]eligibilityCheckView, 0, len(items))
	for _, c := range items {
		views = append(views, eligibilityCheckView{ID: c.ID, Eligible: c.Eligible, Reason: c.Reason, CheckDate: c.CheckDate})
	}
	a.json(w, http.StatusOK, views)
}
