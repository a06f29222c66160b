package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"server/internal/domain"
)

type requestView struct {
	ID            int                  `json:"id"`
	PatientID     int                  `json:"patientId"`
	PatientName   string               `json:"patientName"`
	PatientAge    int                  `json:"patientAge"`
	BloodGroup    domain.BloodGroup    `json:"bloodGroup"`
	Units         int                  `json:"units"`
	Hospital      string               `json:"hospital"`
	Location      string               `json:"location"`
	RequiredDate  time.Time            `json:"requiredDate"`
	Urgency       domain.UrgencyLevel  `json:"urgency"`
	Reason        string               `json:"reason,omitempty"`
	ContactNumber string               `json:"contactNumber,omitempty"`
	Status        domain.RequestStatus `json:"status"`
	CreatedAt     time.Time            `json:"createdAt"`
}

func viewRequest(br *domain.BloodRequest) requestView {
	return requestView{
		ID:            br.ID,
		PatientID:     br.PatientID,
		PatientName:   br.PatientName,
		PatientAge:    br.PatientAge,
		BloodGroup:    br.BloodGroup,
		Units:         br.Units,
		Hospital:      br.Hospital,
		Location:      br.Location,
		RequiredDate:  br.RequiredDate,
		Urgency:       br.Urgency,
		Reason:        br.Reason,
		ContactNumber: br.ContactNumber,
		Status:        br.Status,
		CreatedAt:     br.CreatedAt,
	}
}

// RequestsList returns all blood requests for admins and the caller's own
// requests otherwise.
func (a *App) RequestsList(w http.ResponseWriter, r *http.Request) {
	id, ok := a.identity(w, r)
	if !ok {
		return
	}

	var (
		items []domain.BloodRequest
		err   error
	)
	if id.Is(domain.RoleAdmin) {
		items, err = a.Requests.ListAll(r.Context())
	} else {
		items, err = a.Requests.ListByPatientID(r.Context(), id.UserID)
	}
	if err != nil {
		a.fail(w, err)
		return
	}
	views := make([]requestView, 0, len(items))
	for i := range items {
		views = append(views, viewRequest(&items[i]))
	}
	a.json(w, http.StatusOK, views)
}

// RequestsCreate files a new blood request on behalf of the caller.
func (a *App) RequestsCreate(w http.ResponseWriter, r *http.Request) {
	id, ok := a.identity(w, r)
	if !ok {
		return
	}

	var req struct {
		PatientName   string    `json:"patientName"`
		PatientAge    int       `json:"patientAge"`
		BloodGroup    string    `json:"bloodGroup"`
		Units         int       `json:"units"`
		Hospital      string    `json:"hospital"`
		Location      string    `json:"location"`
		RequiredDate  time.Time `json:"requiredDate"`
		Urgency       string    `json:"urgency"`
		Reason        string    `json:"reason"`
		ContactNumber string    `json:"contactNumber"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	group, err := domain.ParseBloodGroup(req.BloodGroup)
	if err != nil {
		a.fail(w, err)
		return
	}
	urgency, ok := domain.ParseUrgency(req.Urgency)
	if !ok {
		a.error(w, http.StatusBadRequest, "bad_request", "unknown urgency level")
		return
	}
	if req.Units <= 0 {
		a.error(w, http.StatusBadRequest, "bad_request", "units must be positive")
		return
	}

	created, err := a.Requests.Create(r.Context(), &domain.BloodRequest{
		PatientID:     id.UserID,
		PatientName:   req.PatientName,
		PatientAge:    req.PatientAge,
		BloodGroup:    group,
		Units:         req.Units,
		Hospital:      req.Hospital,
		Location:      req.Location,
		RequiredDate:  req.RequiredDate,
		Urgency:       urgency,
		Reason:        req.Reason,
		ContactNumber: req.ContactNumber,
	})
	if err != nil {
		a.fail(w, err)
		return
	}
	a.json(w, http.StatusCreated, viewRequest(created))
}

// RequestsUpdateStatus approves or denies a request. Admin only.
func (a *App) RequestsUpdateStatus(w http.ResponseWriter, r *http.Request) {
	if !a.requireAdmin(w, r) {
		return
	}
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid request id")
		return
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	status, ok := domain.ParseRequestStatus(req.Status)
	if !ok {
		a.error(w, http.StatusBadRequest, "bad_request", "unknown request status")
		return
	}

	updated, err := a.Requests.UpdateStatus(r.Context(), id, status)
	if err != nil {
		a.fail(w, err)
		return
	}
	a.json(w, http.StatusOK, viewRequest(updated))
}
