package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"server/internal/domain"
)

type inventoryPayload struct {
	BloodGroup string    `json:"bloodGroup"`
	Units      int       `json:"units"`
	ExpiryDate time.Time `json:"expiryDate"`
	HospitalID int       `json:"hospitalId"`
}

func (p *inventoryPayload) toItem() (*domain.InventoryItem, error) {
	group, err := domain.ParseBloodGroup(p.BloodGroup)
	if err != nil {
		return nil, err
	}
	return &domain.InventoryItem{
		BloodGroup: group,
		Units:      p.Units,
		ExpiryDate: p.ExpiryDate,
		HospitalID: p.HospitalID,
	}, nil
}

type inventoryView struct {
	ID         int               `json:"id"`
	BloodGroup domain.BloodGroup `json:"bloodGroup"`
	Units      int               `json:"units"`
	ExpiryDate time.Time         `json:"expiryDate"`
	HospitalID int               `json:"hospitalId"`
	UpdatedAt  time.Time         `json:"updatedAt"`
}

func viewInventory(i *domain.InventoryItem) inventoryView {
	return inventoryView{
		ID:         i.ID,
		BloodGroup: i.BloodGroup,
		Units:      i.Units,
		ExpiryDate: i.ExpiryDate,
		HospitalID: i.HospitalID,
		UpdatedAt:  i.UpdatedAt,
	}
}

// InventoryList returns the current blood inventory. Public.
func (a *App) InventoryList(w http.ResponseWriter, r *http.Request) {
	items, err := a.Inventory.List(r.Context())
	if err != nil {
		a.fail(w, err)
		return
	}
	views := make([]inventoryView, 0, len(items))
	for i := range items {
		views = append(views, viewInventory(&items[i]))
	}
	a.json(w, http.StatusOK, views)
}

// InventoryCreate adds a new inventory item. Admin only.
func (a *App) InventoryCreate(w http.ResponseWriter, r *http.Request) {
	if !a.requireAdmin(w, r) {
		return
	}
	var req inventoryPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	item, err := req.toItem()
	if err != nil {
		a.fail(w, err)
		return
	}
	created, err := a.Inventory.Create(r.Context(), item)
	if err != nil {
		a.fail(w, err)
		return
	}
	a.json(w, http.StatusCreated, viewInventory(created))
}

// InventoryUpdate replaces an inventory item's fields. Admin only.
func (a *App) InventoryUpdate(w http.ResponseWriter, r *http.Request) {
	if !a.requireAdmin(w, r) {
		return
	}
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid inventory id")
		return
	}
	var req inventoryPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	item, err := req.toItem()
	if err != nil {
		a.fail(w, err)
		return
	}
	item.ID = id
	updated, err := a.Inventory.Update(r.Context(), item)
	if err != nil {
		a.fail(w, err)
		return
	}
	a.json(w, http.StatusOK, viewInventory(updated))
}

// InventoryDelete removes an inventory item. Admin only.
func (a *App) InventoryDelete(w http.ResponseWriter, r *http.Request) {
	if !a.requireAdmin(w, r) {
		return
	}
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid inventory id")
		return
	}
	if err := a.Inventory.Delete(r.Context(), id); err != nil {
		a.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *App) requireAdmin(w http.ResponseWriter, r *http.Request) bool {
	id, ok := a.identity(w, r)
	if !ok {
		return false
	}
	if !id.Is(domain.RoleAdmin) {
		a.error(w, http.StatusForbidden, "forbidden", "admin access required")
		return false
	}
	return true
}
