package handler

import (
	"net/http"
	"strings"

	"modernnotes/internal/http/middleware"
	"modernnotes/internal/model"
	"modernnotes/internal/note"
	"modernnotes/internal/state"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type NoteReadHandler struct {
	Repo  *note.Repository
	State *state.Container
	Log   *zap.Logger
}

// List refreshes the loaded notes and filters them locally by ?q= and ?tag=.
// With ?cached=true the last loaded list is filtered without a fetch.
func (h *NoteReadHandler) List(w http.ResponseWriter, r *http.Request) {
	qs := r.URL.Query()

	if strings.ToLower(qs.Get("cached")) != "true" {
		if err := h.Repo.Load(r.Context()); err != nil {
			writeError(w, h.Log, "list notes", err)
			return
		}
	}

	out := note.Filter(h.State.Notes(), note.Query{
		Text:  qs.Get("q"),
		TagID: strings.TrimSpace(qs.Get("tag")),
	})
	writeJSON(w, http.StatusOK, out)
}

// Get shows one note. Any failure sends the caller back to the list.
// Without a valid token only public notes are visible.
func (h *NoteReadHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	get := h.Repo.GetPublic
	if _, ok := middleware.UserFromContext(r.Context()); ok {
		get = h.Repo.Get
	}
	n, err := get(r.Context(), id)
	if err != nil {
		h.Log.Info("note unavailable", zap.String("note_id", id), zap.Error(err))
		http.Redirect(w, r, "/notes", http.StatusSeeOther)
		return
	}
	writeJSON(w, http.StatusOK, n)
}

func (h *NoteReadHandler) Tags(w http.ResponseWriter, r *http.Request) {
	tags := h.State.Tags()
	if tags == nil {
		tags = []model.Tag{}
	}
	writeJSON(w, http.StatusOK, tags)
}
