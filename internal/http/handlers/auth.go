package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"server/internal/domain"
	"server/internal/service"
)

type userView struct {
	ID            int               `json:"id"`
	Name          string            `json:"name"`
	Email         string            `json:"email"`
	Age           int               `json:"age"`
	BloodGroup    domain.BloodGroup `json:"bloodGroup"`
	Role          domain.Role       `json:"role"`
	Address       string            `json:"address,omitempty"`
	Phone         string            `json:"phone,omitempty"`
	WalletAddress string            `json:"walletAddress,omitempty"`
	CreatedAt     time.Time         `json:"createdAt"`
}

func viewUser(u *domain.User) userView {
	return userView{
		ID:            u.ID,
		Name:          u.Name,
		Email:         u.Email,
		Age:           u.Age,
		BloodGroup:    u.BloodGroup,
		Role:          u.Role,
		Address:       u.Address,
		Phone:         u.Phone,
		WalletAddress: u.WalletAddress,
		CreatedAt:     u.CreatedAt,
	}
}

// Register creates an account and returns it with a bearer token.
func (a *App) Register(w http.ResponseWriter, r *http.Request) {
	var req service.RegisterInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	user, token, err := a.Auth.Register(r.Context(), req)
	if err != nil {
		a.fail(w, err)
		return
	}
	a.json(w, http.StatusCreated, map[string]any{"user": viewUser(user), "token": token})
}

// Login checks credentials and returns the account with a bearer token.
func (a *App) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	user, token, err := a.Auth.Login(r.Context(), req.Email, req.Password)
	if errors.Is(err, domain.ErrForbidden) {
		// Do not distinguish unknown email from a wrong password.
		a.error(w, http.StatusUnauthorized, "invalid_credentials", "invalid email or password")
		return
	}
	if err != nil {
		a.fail(w, err)
		return
	}
	a.json(w, http.StatusOK, map[string]any{"user": viewUser(user), "token": token})
}

// Logout acknowledges a sign-out. Tokens are stateless, so the client
// discards the token; nothing is revoked server-side.
func (a *App) Logout(w http.ResponseWriter, r *http.Request) {
	if _, ok := a.identity(w, r); !ok {
		return
	}
	a.json(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Me returns the authenticated caller's account.
func (a *App) Me(w http.ResponseWriter, r *http.Request) {
	id, ok := a.identity(w, r)
	if !ok {
		return
	}
	user, err := a.Auth.GetUser(r.Context(), id.UserID)
	if err != nil {
		a.fail(w, err)
		return
	}
	a.json(w, http.StatusOK, viewUser(user))
}
