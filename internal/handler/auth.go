package handler

import (
	"encoding/json"
	"net/http"

	"github.com/openkart/storefront/internal/domain/user"
)

type signupRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Phone    string `json:"phone"`
}

type authResponse struct {
	Token string       `json:"token"`
	User  userResponse `json:"user"`
}

type userResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Phone    string `json:"phone"`
	IsAdmin  bool   `json:"is_admin"`
}

func toUserResponse(u *user.User) userResponse {
	return userResponse{ID: u.ID, Username: u.Username, Phone: u.Phone, IsAdmin: u.IsAdmin}
}

func (h *Handler) signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	u, err := h.users.Signup(r.Context(), user.SignupRequest{
		Username: req.Username,
		Password: req.Password,
		Phone:    req.Phone,
	})
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	h.issueToken(w, r, u, http.StatusCreated)
}

type loginRequest struct {
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	u, err := h.users.Login(r.Context(), req.Phone, req.Password)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	h.issueToken(w, r, u, http.StatusOK)
}

func (h *Handler) adminLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	u, err := h.users.AdminLogin(r.Context(), req.Phone, req.Password)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	h.issueToken(w, r, u, http.StatusOK)
}

func (h *Handler) issueToken(w http.ResponseWriter, r *http.Request, u *user.User, status int) {
	token, err := h.tokens.Sign(u)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	writeJSON(w, status, authResponse{Token: token, User: toUserResponse(u)})
}
