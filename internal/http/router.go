package http

import (
	"net/http"

	"modernnotes/internal/auth"
	"modernnotes/internal/config"
	"modernnotes/internal/http/handler"
	mw "modernnotes/internal/http/middleware"
	"modernnotes/internal/note"
	"modernnotes/internal/state"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

type Deps struct {
	Sessions *auth.Provider
	State    *state.Container
	Notes    *note.Repository
	Log      *zap.Logger
}

func NewRouter(cfg config.Config, d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(mw.Logger(d.Log))
	r.Use(mw.Recoverer(d.Log))

	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(mw.CORS(cfg.CORSAllowedOrigins, cfg.CORSAllowCredentials))
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	requireSession := mw.RequireSession(d.Sessions)
	optionalSession := mw.OptionalSession(d.Sessions)

	ph := &handler.ProfileHandler{State: d.State}
	r.With(optionalSession).Get("/", ph.Home)
	r.Get("/preferences", ph.Preferences)
	r.Post("/preferences/dark-mode", ph.ToggleDarkMode)

	ah := &handler.AuthHandler{Sessions: d.Sessions, Log: d.Log}
	r.Post("/auth/register", ah.Register)
	r.Post("/auth/login", ah.Login)
	r.With(requireSession).Post("/auth/logout", ah.Logout)
	r.With(requireSession).Post("/auth/refresh", ah.Refresh)

	r.With(requireSession).Get("/profile", ph.Profile)

	noteH := &handler.NoteHandler{Repo: d.Notes, Log: d.Log}
	noteRead := &handler.NoteReadHandler{Repo: d.Notes, State: d.State, Log: d.Log}

	r.Post("/preview", noteH.Preview)

	r.Route("/notes", func(r chi.Router) {
		// public notes are readable without a session
		r.With(optionalSession).Get("/{id}", noteRead.Get)

		r.Group(func(r chi.Router) {
			r.Use(requireSession)

			r.Get("/", noteRead.List)
			r.Post("/", noteH.Create)
			r.Put("/{id}", noteH.Update)
			r.Delete("/{id}", noteH.Delete)
		})
	})

	r.With(requireSession).Get("/tags", noteRead.Tags)

	return r
}
