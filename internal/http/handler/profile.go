package handler

import (
	"net/http"

	"modernnotes/internal/http/middleware"
	"modernnotes/internal/state"
)

type ProfileHandler struct {
	State *state.Container
}

// Home is the landing view: a welcome for visitors, pointers for a signed-in user.
func (h *ProfileHandler) Home(w http.ResponseWriter, r *http.Request) {
	u, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusOK, map[string]any{
			"title":    "Welcome to ModernNotes",
			"message":  "Please login or register to start creating notes.",
			"login":    "/auth/login",
			"register": "/auth/register",
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"user":  u,
		"notes": "/notes",
		"new":   "POST /notes",
	})
}

func (h *ProfileHandler) Profile(w http.ResponseWriter, r *http.Request) {
	u, _ := middleware.UserFromContext(r.Context())
	writeJSON(w, http.StatusOK, u)
}

func (h *ProfileHandler) Preferences(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"dark_mode": h.State.DarkMode()})
}

func (h *ProfileHandler) ToggleDarkMode(w http.ResponseWriter, r *http.Request) {
	h.State.ToggleDarkMode()
	writeJSON(w, http.StatusOK, map[string]any{"dark_mode": h.State.DarkMode()})
}
