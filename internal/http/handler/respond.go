package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"modernnotes/internal/errs"

	"go.uber.org/zap"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps the error taxonomy onto status codes. Remote failures are
// logged here and shown as a generic message.
func writeError(w http.ResponseWriter, log *zap.Logger, op string, err error) {
	var ve *errs.ValidationError
	switch {
	case errors.As(err, &ve):
		http.Error(w, ve.Msg, http.StatusBadRequest)
	case errors.Is(err, errs.ErrNoSession), errors.Is(err, errs.ErrUnauthorized):
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	case errors.Is(err, errs.ErrNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	case errors.Is(err, errs.ErrAlreadyExists):
		http.Error(w, "already exists", http.StatusConflict)
	case errors.Is(err, errs.ErrConfirmRequired):
		http.Error(w, "confirmation required", http.StatusPreconditionRequired)
	default:
		log.Error(op+" failed", zap.Error(err))
		http.Error(w, "something went wrong, please try again", http.StatusBadGateway)
	}
}
