package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"server/internal/domain"
)

type donationView struct {
	ID           int               `json:"id"`
	DonorID      int               `json:"donorId"`
	BloodGroup   domain.BloodGroup `json:"bloodGroup"`
	Units        int               `json:"units"`
	HospitalID   int               `json:"hospitalId"`
	HospitalName string            `json:"hospitalName"`
	DonationDate time.Time         `json:"donationDate"`
	LedgerRef    *string           `json:"ledgerRef"`
	Verified     bool              `json:"verified"`
}

func viewDonation(d *domain.Donation) donationView {
	return donationView{
		ID:           d.ID,
		DonorID:      d.DonorID,
		BloodGroup:   d.BloodGroup,
		Units:        d.Units,
		HospitalID:   d.HospitalID,
		HospitalName: d.HospitalName,
		DonationDate: d.DonationDate,
		LedgerRef:    d.LedgerRef,
		Verified:     d.Verified,
	}
}

// DonationsList returns all donations for admins and the caller's own
// donations for donors. Patients have none.
func (a *App) DonationsList(w http.ResponseWriter, r *http.Request) {
	id, ok := a.identity(w, r)
	if !ok {
		return
	}

	var (
		items []domain.Donation
		err   error
	)
	switch {
	case id.Is(domain.RoleAdmin, domain.RoleHospital):
		items, err = a.Donations.ListAll(r.Context())
	case id.Is(domain.RoleDonor):
		items, err = a.Donations.ListByDonorID(r.Context(), id.UserID)
	default:
		items = nil
	}
	if err != nil {
		a.fail(w, err)
		return
	}

	views := make([]donationView, 0, len(items))
	for i := range items {
		views = append(views, viewDonation(&items[i]))
	}
	a.json(w, http.StatusOK, views)
}

// DonationsCreate records a new donation row for the calling donor.
func (a *App) DonationsCreate(w http.ResponseWriter, r *http.Request) {
	id, ok := a.identity(w, r)
	if !ok {
		return
	}
	if !id.Is(domain.RoleDonor) {
		a.error(w, http.StatusForbidden, "forbidden", "donor access required")
		return
	}

	var req struct {
		BloodGroup string `json:"bloodGroup"`
		Units      int    `json:"units"`
		HospitalID int    `json:"hospitalId"`
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
	if req.Units <= 0 {
		a.error(w, http.StatusBadRequest, "bad_request", "units must be positive")
		return
	}
	if _, err := a.Hospitals.GetByID(r.Context(), req.HospitalID); err != nil {
		a.fail(w, err)
		return
	}

	donation, err := a.Donations.Create(r.Context(), &domain.Donation{
		DonorID:    id.UserID,
		BloodGroup: group,
		Units:      req.Units,
		HospitalID: req.HospitalID,
	})
	if err != nil {
		a.fail(w, err)
		return
	}
	a.json(w, http.StatusCreated, viewDonation(donation))
}
