package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"modernnotes/internal/errs"
	"modernnotes/internal/note"
	"modernnotes/internal/render"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type NoteHandler struct {
	Repo *note.Repository
	Log  *zap.Logger
}

type saveNoteReq struct {
	Title    string   `json:"title"`
	Content  string   `json:"content"`
	IsPublic bool     `json:"is_public"`
	Tags     []string `json:"tags"`
}

type saveNoteResp struct {
	ID      string `json:"id"`
	Status  string `json:"status"`
	Step    string `json:"step,omitempty"`
	Warning string `json:"warning,omitempty"`
}

func (h *NoteHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req saveNoteReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}

	res, err := h.Repo.Save(r.Context(), note.SaveInput{
		Title:    req.Title,
		Content:  req.Content,
		IsPublic: req.IsPublic,
		Tags:     req.Tags,
	})
	var partial *note.PartialSaveError
	switch {
	case errors.As(err, &partial):
		// the note exists; tell the caller its tags did not all stick
		w.Header().Set("Location", "/notes/"+res.NoteID)
		writeJSON(w, http.StatusCreated, saveNoteResp{
			ID:      res.NoteID,
			Status:  res.Status.String(),
			Step:    res.Step,
			Warning: "note saved but tags incomplete",
		})
		return
	case err != nil:
		writeError(w, h.Log, "create note", err)
		return
	}

	w.Header().Set("Location", "/notes/"+res.NoteID)
	writeJSON(w, http.StatusCreated, saveNoteResp{ID: res.NoteID, Status: res.Status.String()})
}

func (h *NoteHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req saveNoteReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}

	res, err := h.Repo.Save(r.Context(), note.SaveInput{
		ID:       id,
		Title:    req.Title,
		Content:  req.Content,
		IsPublic: req.IsPublic,
	})
	if err != nil {
		writeError(w, h.Log, "update note", err)
		return
	}
	writeJSON(w, http.StatusOK, saveNoteResp{ID: res.NoteID, Status: res.Status.String()})
}

// Delete needs ?confirm=true; the confirmation prompt lives with the caller.
func (h *NoteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if strings.ToLower(r.URL.Query().Get("confirm")) != "true" {
		writeError(w, h.Log, "delete note", errs.ErrConfirmRequired)
		return
	}

	if err := h.Repo.Delete(r.Context(), id); err != nil {
		writeError(w, h.Log, "delete note", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type previewReq struct {
	Content string `json:"content"`
}

func (h *NoteHandler) Preview(w http.ResponseWriter, r *http.Request) {
	var req previewReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	html, err := render.Markdown(req.Content)
	if err != nil {
		h.Log.Warn("render preview", zap.Error(err))
		http.Error(w, "cannot render preview", http.StatusUnprocessableEntity)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"html": html})
}
