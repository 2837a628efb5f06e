package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"modernnotes/internal/auth"
	"modernnotes/internal/model"

	"go.uber.org/zap"
)

type AuthHandler struct {
	Sessions *auth.Provider
	Log      *zap.Logger
}

type registerReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Username string `json:"username"`
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionDTO struct {
	User        model.User `json:"user"`
	AccessToken string     `json:"access_token"`
	ExpiresAt   time.Time  `json:"expires_at"`
}

func toSessionDTO(s *auth.Session) sessionDTO {
	return sessionDTO{User: s.User, AccessToken: s.AccessToken, ExpiresAt: s.ExpiresAt}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}

	s, err := h.Sessions.Register(r.Context(), auth.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		Username: req.Username,
	})
	if err != nil {
		writeError(w, h.Log, "register", err)
		return
	}
	writeJSON(w, http.StatusCreated, toSessionDTO(s))
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}

	s, err := h.Sessions.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, h.Log, "login", err)
		return
	}
	writeJSON(w, http.StatusOK, toSessionDTO(s))
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.Sessions.SignOut(r.Context()); err != nil {
		writeError(w, h.Log, "logout", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	s, err := h.Sessions.Refresh(r.Context())
	if err != nil {
		writeError(w, h.Log, "refresh", err)
		return
	}
	writeJSON(w, http.StatusOK, toSessionDTO(s))
}
