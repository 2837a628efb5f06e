package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"modernnotes/internal/auth"
	"modernnotes/internal/config"
	"modernnotes/internal/db/dbtest"
	"modernnotes/internal/model"
	"modernnotes/internal/note"
	"modernnotes/internal/state"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const testSecret = "test-secret"

type app struct {
	t       *testing.T
	handler http.Handler
	state   *state.Container
	token   string
}

func newApp(t *testing.T) *app {
	t.Helper()
	gdb := dbtest.Open(t)
	log := zaptest.NewLogger(t)

	sessions := auth.NewProvider(gdb, auth.NewJWT(testSecret), time.Hour, log)
	st := state.New()
	stop := st.TrackSession(sessions, log)
	t.Cleanup(stop)

	repo := note.NewRepository(&note.GormStore{DB: gdb}, st, log)
	h := NewRouter(config.Config{}, Deps{Sessions: sessions, State: st, Notes: repo, Log: log})
	return &app{t: t, handler: h, state: st}
}

func (a *app) do(method, path string, body any) *httptest.ResponseRecorder {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if a.token != "" {
		req.Header.Set("Authorization", "Bearer "+a.token)
	}
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

// useSession keeps the access token from an auth response for later requests.
func (a *app) useSession(rec *httptest.ResponseRecorder) {
	a.t.Helper()
	a.token = decode[map[string]any](a.t, rec)["access_token"].(string)
	require.NotEmpty(a.t, a.token)
}

func (a *app) register(email string) {
	a.t.Helper()
	rec := a.do(http.MethodPost, "/auth/register", map[string]string{"email": email, "password": "password1"})
	require.Equal(a.t, http.StatusCreated, rec.Code, rec.Body.String())
	a.useSession(rec)
}

func TestRouter_Health(t *testing.T) {
	a := newApp(t)
	rec := a.do(http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "ok", rec.Body.String())
}

func TestRouter_RequiresSession(t *testing.T) {
	a := newApp(t)
	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/notes"},
		{http.MethodPost, "/notes"},
		{http.MethodPut, "/notes/x"},
		{http.MethodDelete, "/notes/x?confirm=true"},
		{http.MethodGet, "/profile"},
		{http.MethodGet, "/tags"},
		{http.MethodPost, "/auth/logout"},
		{http.MethodPost, "/auth/refresh"},
	} {
		rec := a.do(tc.method, tc.path, map[string]string{"title": "x"})
		require.Equal(t, http.StatusUnauthorized, rec.Code, "%s %s", tc.method, tc.path)
	}

	rec := a.do(http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "Welcome to ModernNotes")
}

func TestRouter_AuthFlow(t *testing.T) {
	a := newApp(t)

	rec := a.do(http.MethodPost, "/auth/register", map[string]string{"email": "a@example.com", "password": "short"})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = a.do(http.MethodPost, "/auth/register", map[string]string{"email": "a@example.com", "password": "password1", "username": "alice"})
	require.Equal(t, http.StatusCreated, rec.Code)
	body := rec.Body.String()
	require.Contains(t, body, "access_token")
	require.NotContains(t, body, "password_hash")
	require.NotNil(t, a.state.User())
	a.useSession(rec)

	rec = a.do(http.MethodPost, "/auth/register", map[string]string{"email": "a@example.com", "password": "password1"})
	require.Equal(t, http.StatusConflict, rec.Code)

	rec = a.do(http.MethodGet, "/profile", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	u := decode[model.User](t, rec)
	require.Equal(t, "a@example.com", u.Email)
	require.Equal(t, "alice", *u.Username)

	rec = a.do(http.MethodPost, "/auth/refresh", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = a.do(http.MethodPost, "/auth/logout", nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Nil(t, a.state.User())

	rec = a.do(http.MethodPost, "/auth/refresh", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = a.do(http.MethodPost, "/auth/login", map[string]string{"email": "a@example.com", "password": "nope-nope"})
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = a.do(http.MethodPost, "/auth/login", map[string]string{"email": "A@example.com", "password": "password1"})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "a@example.com", a.state.User().Email)
	a.useSession(rec)

	rec = a.do(http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	home := decode[map[string]any](t, rec)
	require.Equal(t, "POST /notes", home["new"])
}

func TestRouter_RejectsMissingAndForeignTokens(t *testing.T) {
	a := newApp(t)
	a.register("a@example.com")

	rec := a.do(http.MethodPost, "/notes", map[string]any{"title": "mine"})
	require.Equal(t, http.StatusCreated, rec.Code)
	priv := decode[map[string]string](t, rec)["id"]
	owner := a.token

	foreign, _, err := auth.NewJWT(testSecret).Sign("someone-else", "x@example.com", time.Hour)
	require.NoError(t, err)
	forged, _, err := auth.NewJWT("other-secret").Sign(a.state.User().ID, "a@example.com", time.Hour)
	require.NoError(t, err)

	for _, token := range []string{"", "garbage", foreign, forged} {
		a.token = token

		rec = a.do(http.MethodPost, "/notes", map[string]any{"title": "injected"})
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		rec = a.do(http.MethodGet, "/notes", nil)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		rec = a.do(http.MethodPost, "/auth/logout", nil)
		require.Equal(t, http.StatusUnauthorized, rec.Code)

		rec = a.do(http.MethodGet, "/notes/"+priv, nil)
		require.Equal(t, http.StatusSeeOther, rec.Code)

		rec = a.do(http.MethodGet, "/", nil)
		require.Contains(t, rec.Body.String(), "Welcome to ModernNotes")
	}
	require.NotNil(t, a.state.User())

	a.token = owner
	rec = a.do(http.MethodGet, "/notes", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	notes := decode[[]model.Note](t, rec)
	require.Len(t, notes, 1)
	require.Equal(t, "mine", notes[0].Title)

	rec = a.do(http.MethodGet, "/notes/"+priv, nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_SearchKeepsSurroundingSpaces(t *testing.T) {
	a := newApp(t)
	a.register("a@example.com")

	for _, title := range []string{"buy milk", "milkshake"} {
		rec := a.do(http.MethodPost, "/notes", map[string]any{"title": title})
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec := a.do(http.MethodGet, "/notes?q="+url.QueryEscape(" milk"), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	notes := decode[[]model.Note](t, rec)
	require.Len(t, notes, 1)
	require.Equal(t, "buy milk", notes[0].Title)
}

func TestRouter_LoginIgnoresUnknownFields(t *testing.T) {
	a := newApp(t)
	a.register("a@example.com")
	require.Equal(t, http.StatusNoContent, a.do(http.MethodPost, "/auth/logout", nil).Code)

	rec := a.do(http.MethodPost, "/auth/login", map[string]string{
		"email": "a@example.com", "password": "password1", "username": "mallory",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Nil(t, a.state.User().Username)
}

func TestRouter_NoteLifecycle(t *testing.T) {
	a := newApp(t)
	a.register("a@example.com")

	rec := a.do(http.MethodPost, "/notes", map[string]any{"title": "  ", "content": "x"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "Title is required")

	rec = a.do(http.MethodPost, "/notes", map[string]any{
		"title": "Groceries", "content": "milk, eggs", "tags": []string{"home"},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[map[string]string](t, rec)
	id := created["id"]
	require.NotEmpty(t, id)
	require.Equal(t, "saved", created["status"])
	require.Equal(t, "/notes/"+id, rec.Header().Get("Location"))

	rec = a.do(http.MethodGet, "/notes", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	notes := decode[[]model.Note](t, rec)
	require.Len(t, notes, 1)
	require.Equal(t, "Groceries", notes[0].Title)
	require.Len(t, notes[0].Tags, 1)
	require.Equal(t, "home", notes[0].Tags[0].Name)
	tagID := notes[0].Tags[0].ID

	rec = a.do(http.MethodGet, "/tags", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, decode[[]model.Tag](t, rec), 1)

	rec = a.do(http.MethodGet, "/notes?cached=true&q=EGGS&tag="+tagID, nil)
	require.Len(t, decode[[]model.Note](t, rec), 1)
	rec = a.do(http.MethodGet, "/notes?cached=true&q=bread", nil)
	require.Empty(t, decode[[]model.Note](t, rec))

	rec = a.do(http.MethodPut, "/notes/"+id, map[string]any{"title": "Groceries v2", "content": "milk", "is_public": true})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = a.do(http.MethodGet, "/notes/"+id, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[model.Note](t, rec)
	require.Equal(t, "Groceries v2", got.Title)
	require.True(t, got.IsPublic)
	require.Len(t, got.Tags, 1)

	rec = a.do(http.MethodDelete, "/notes/"+id, nil)
	require.Equal(t, http.StatusPreconditionRequired, rec.Code)

	rec = a.do(http.MethodDelete, "/notes/"+id+"?confirm=true", nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Empty(t, a.state.Notes())

	rec = a.do(http.MethodDelete, "/notes/"+id+"?confirm=true", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = a.do(http.MethodGet, "/notes", nil)
	require.Empty(t, decode[[]model.Note](t, rec))
}

func TestRouter_PublicNoteAndRedirect(t *testing.T) {
	a := newApp(t)
	a.register("owner@example.com")

	rec := a.do(http.MethodPost, "/notes", map[string]any{"title": "shared", "is_public": true})
	require.Equal(t, http.StatusCreated, rec.Code)
	pub := decode[map[string]string](t, rec)["id"]

	rec = a.do(http.MethodPost, "/notes", map[string]any{"title": "secret"})
	require.Equal(t, http.StatusCreated, rec.Code)
	priv := decode[map[string]string](t, rec)["id"]

	require.Equal(t, http.StatusNoContent, a.do(http.MethodPost, "/auth/logout", nil).Code)

	rec = a.do(http.MethodGet, "/notes/"+pub, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "shared", decode[model.Note](t, rec).Title)

	rec = a.do(http.MethodGet, "/notes/"+priv, nil)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/notes", rec.Header().Get("Location"))

	rec = a.do(http.MethodGet, "/notes/does-not-exist", nil)
	require.Equal(t, http.StatusSeeOther, rec.Code)

	// another user cannot edit or delete the owner's note
	a.register("other@example.com")
	rec = a.do(http.MethodPut, "/notes/"+pub, map[string]any{"title": "mine"})
	require.Equal(t, http.StatusNotFound, rec.Code)
	rec = a.do(http.MethodDelete, "/notes/"+pub+"?confirm=true", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	rec = a.do(http.MethodGet, "/notes", nil)
	require.Empty(t, decode[[]model.Note](t, rec))
}

func TestRouter_PreferencesAndPreview(t *testing.T) {
	a := newApp(t)

	rec := a.do(http.MethodGet, "/preferences", nil)
	require.Equal(t, false, decode[map[string]bool](t, rec)["dark_mode"])

	rec = a.do(http.MethodPost, "/preferences/dark-mode", nil)
	require.Equal(t, true, decode[map[string]bool](t, rec)["dark_mode"])
	rec = a.do(http.MethodPost, "/preferences/dark-mode", nil)
	require.Equal(t, false, decode[map[string]bool](t, rec)["dark_mode"])

	rec = a.do(http.MethodPost, "/preview", map[string]string{"content": "# Hi"})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, decode[map[string]string](t, rec)["html"], "<h1>Hi</h1>")
}
