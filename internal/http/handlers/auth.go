package handlers

import (
	"net/http"
	"time"

	"jobboard/internal/app"
	"jobboard/internal/domain/user"
	"jobboard/internal/http/response"
)

type AuthHandler struct {
	auth *app.AuthService
}

func NewAuthHandler(auth *app.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

type authResponse struct {
	Message   string     `json:"message"`
	Token     string     `json:"token"`
	ExpiresAt string     `json:"expires_at"`
	User      *user.User `json:"user"`
}

type meResponse struct {
	User *user.User `json:"user"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req app.RegisterInput
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, err)
		return
	}
	result, err := h.auth.Register(r.Context(), req)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusCreated, newAuthResponse("User registered successfully", result))
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req app.LoginInput
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, err)
		return
	}
	result, err := h.auth.Login(r.Context(), req)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, newAuthResponse("Login successful", result))
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	actor, err := identity(r)
	if err != nil {
		response.Error(w, err)
		return
	}
	account, err := h.auth.Me(r.Context(), actor)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, meResponse{User: account})
}

func newAuthResponse(message string, result *app.AuthResult) authResponse {
	return authResponse{
		Message:   message,
		Token:     result.Token,
		ExpiresAt: result.ExpiresAt.UTC().Format(time.RFC3339),
		User:      result.User,
	}
}
