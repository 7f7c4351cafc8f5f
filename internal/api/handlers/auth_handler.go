package handlers

import (
	"net/http"

	"github.com/athujoshi24/legendary-panel/internal/api/middleware"
	"github.com/athujoshi24/legendary-panel/internal/api/types"
	"github.com/athujoshi24/legendary-panel/internal/metrics"
	"github.com/athujoshi24/legendary-panel/internal/services"
	"github.com/athujoshi24/legendary-panel/pkg/validation"
)

type AuthHandler struct {
	auth     services.AuthService
	metrics  metrics.Recorder
	validate *validation.Validator
}

func NewAuthHandler(auth services.AuthService, rec metrics.Recorder) *AuthHandler {
	return &AuthHandler{auth: auth, metrics: rec, validate: validation.New()}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req types.RegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, r, err)
		return
	}

	u, err := h.auth.CreateUser(r.Context(), req.Email, req.Password, services.UserFields{Name: req.Name})
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.metrics.RecordCreated("users")

	writeJSON(w, http.StatusCreated, types.APIResponse{Success: true, Data: types.NewUserResponse(u)})
}

// Token exchanges an email and password for a bearer token.
func (h *AuthHandler) Token(w http.ResponseWriter, r *http.Request) {
	var req types.TokenRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, r, err)
		return
	}

	u, err := h.auth.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		h.metrics.RecordAuthFailure("password")
		writeError(w, r, err)
		return
	}
	token, ttl, err := h.auth.IssueToken(u)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, types.APIResponse{
		Success: true,
		Data: types.TokenResponse{
			AccessToken: token,
			TokenType:   "Bearer",
			ExpiresIn:   int64(ttl.Seconds()),
		},
	})
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, types.APIResponse{Success: true, Data: types.NewUserResponse(middleware.GetUser(r.Context()))})
}

func (h *AuthHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	var req types.ProfileUpdateRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	u, err := h.auth.UpdateProfile(r.Context(), middleware.GetUserID(r.Context()), &services.UpdateProfileInput{
		Name:     req.Name,
		Password: req.Password,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, types.APIResponse{Success: true, Data: types.NewUserResponse(u)})
}
