package note

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"modernnotes/internal/errs"
	"modernnotes/internal/model"
	"modernnotes/internal/state"

	"go.uber.org/zap"
)

// Repository turns view intents into Data Store calls for the signed-in user
// held in the state container. Calls are not serialised: two saves or deletes
// against the same note race at the store and the last one wins.
type Repository struct {
	store Store
	state *state.Container
	log   *zap.Logger
	now   func() time.Time
}

func NewRepository(store Store, st *state.Container, log *zap.Logger) *Repository {
	return &Repository{store: store, state: st, log: log, now: time.Now}
}

func (r *Repository) owner() (string, error) {
	u := r.state.User()
	if u == nil {
		return "", errs.ErrNoSession
	}
	return u.ID, nil
}

// List fetches the user's notes with their tags, most recently updated first.
func (r *Repository) List(ctx context.Context) ([]model.Note, error) {
	uid, err := r.owner()
	if err != nil {
		return nil, err
	}
	notes, err := r.store.ListNotes(ctx, uid)
	if err != nil {
		return nil, errs.Remote("list notes", err)
	}
	return notes, nil
}

// Load refreshes the notes and tags held in the state container. On failure
// the previously loaded notes and tags are left as they were.
func (r *Repository) Load(ctx context.Context) error {
	uid, err := r.owner()
	if err != nil {
		return err
	}

	r.state.SetLoading(true)
	defer r.state.SetLoading(false)

	notes, err := r.List(ctx)
	if err != nil {
		r.log.Warn("fetch notes failed", zap.String("user_id", uid), zap.Error(err))
		return err
	}
	tags, err := r.store.ListTags(ctx, uid)
	if err != nil {
		r.log.Warn("fetch tags failed", zap.String("user_id", uid), zap.Error(err))
		return errs.Remote("list tags", err)
	}

	r.state.SetNotes(notes)
	r.state.SetTags(tags)
	return nil
}

// Get fetches one note by id. Visibility is decided by the store: the owner
// sees the note, anyone sees a public note. No session is required.
func (r *Repository) Get(ctx context.Context, id string) (*model.Note, error) {
	var uid string
	if u := r.state.User(); u != nil {
		uid = u.ID
	}
	return r.get(ctx, uid, id)
}

// GetPublic fetches a note as an anonymous viewer.
func (r *Repository) GetPublic(ctx context.Context, id string) (*model.Note, error) {
	return r.get(ctx, "", id)
}

func (r *Repository) get(ctx context.Context, viewerID, id string) (*model.Note, error) {
	n, err := r.store.GetNote(ctx, viewerID, id)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return nil, errs.ErrNotFound
		}
		return nil, errs.Remote("get note", err)
	}
	return n, nil
}

// Delete removes the note and drops it from the loaded list.
func (r *Repository) Delete(ctx context.Context, id string) error {
	uid, err := r.owner()
	if err != nil {
		return err
	}
	if err := r.store.DeleteNote(ctx, uid, id); err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return errs.ErrNotFound
		}
		return errs.Remote("delete note", err)
	}

	loaded := r.state.Notes()
	kept := make([]model.Note, 0, len(loaded))
	for _, n := range loaded {
		if n.ID != id {
			kept = append(kept, n)
		}
	}
	r.state.SetNotes(kept)
	return nil
}

type SaveInput struct {
	ID       string // empty creates a new note
	Title    string
	Content  string
	IsPublic bool
	Tags     []string // only applied on create
}

type SaveStatus int

const (
	StatusSaved SaveStatus = iota
	// StatusPartial means the note row is committed but its tags are incomplete.
	StatusPartial
)

func (s SaveStatus) String() string {
	switch s {
	case StatusSaved:
		return "saved"
	case StatusPartial:
		return "partial"
	default:
		return fmt.Sprintf("SaveStatus(%d)", int(s))
	}
}

// Tag reconciliation steps, in order.
const (
	StepFindTags    = "find-tags"
	StepInsertTags  = "insert-tags"
	StepResolveTags = "resolve-tags"
	StepLinkTags    = "link-tags"
)

type SaveResult struct {
	NoteID string
	Status SaveStatus
	Step   string // failed step when Status is StatusPartial
}

// PartialSaveError reports a note that was written while tag reconciliation
// stopped at Step. Nothing already written is rolled back.
type PartialSaveError struct {
	NoteID string
	Step   string
	Err    error
}

func (e *PartialSaveError) Error() string {
	return fmt.Sprintf("note %s saved but tags incomplete (%s): %v", e.NoteID, e.Step, e.Err)
}

func (e *PartialSaveError) Unwrap() error { return e.Err }

// Save creates a note when in.ID is empty and otherwise replaces the title,
// content and visibility of an existing one. Tags are reconciled on create
// only; editing tags of an existing note is not supported.
//
// A blank title fails with a ValidationError before any store call. A failed
// create or update returns a RemoteError and a zero result. A failure during
// tag reconciliation returns StatusPartial with a *PartialSaveError.
func (r *Repository) Save(ctx context.Context, in SaveInput) (SaveResult, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return SaveResult{}, &errs.ValidationError{Field: "title", Msg: "Title is required"}
	}
	uid, err := r.owner()
	if err != nil {
		return SaveResult{}, err
	}
	now := r.now().UTC()

	if in.ID != "" {
		if err := r.store.UpdateNote(ctx, uid, in.ID, NoteUpdate{
			Title:     in.Title,
			Content:   in.Content,
			IsPublic:  in.IsPublic,
			UpdatedAt: now,
		}); err != nil {
			if errors.Is(err, errs.ErrNotFound) {
				return SaveResult{}, errs.ErrNotFound
			}
			return SaveResult{}, errs.Remote("update note", err)
		}
		return SaveResult{NoteID: in.ID, Status: StatusSaved}, nil
	}

	n := &model.Note{
		UserID:    uid,
		Title:     in.Title,
		Content:   in.Content,
		IsPublic:  in.IsPublic,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := r.store.InsertNote(ctx, n); err != nil {
		return SaveResult{}, errs.Remote("insert note", err)
	}

	names := NormalizeTagNames(in.Tags)
	if len(names) == 0 {
		return SaveResult{NoteID: n.ID, Status: StatusSaved}, nil
	}

	if step, err := r.reconcileTags(ctx, uid, n.ID, names, now); err != nil {
		r.log.Warn("tag reconciliation incomplete",
			zap.String("note_id", n.ID),
			zap.String("step", step),
			zap.Error(err),
		)
		return SaveResult{NoteID: n.ID, Status: StatusPartial, Step: step},
			&PartialSaveError{NoteID: n.ID, Step: step, Err: errs.Remote(step, err)}
	}
	return SaveResult{NoteID: n.ID, Status: StatusSaved}, nil
}

// reconcileTags maps names to the user's tag ids, creating missing tags, and
// links every resolved tag to the note. It returns the step that failed.
func (r *Repository) reconcileTags(ctx context.Context, uid, noteID string, names []string, now time.Time) (string, error) {
	existing, err := r.store.FindTags(ctx, uid, names)
	if err != nil {
		return StepFindTags, err
	}

	have := make(map[string]struct{}, len(existing))
	for _, t := range existing {
		have[t.Name] = struct{}{}
	}
	var missing []model.Tag
	for _, name := range names {
		if _, ok := have[name]; !ok {
			missing = append(missing, model.Tag{UserID: uid, Name: name, CreatedAt: now})
		}
	}
	if len(missing) > 0 {
		if err := r.store.InsertTags(ctx, missing); err != nil {
			return StepInsertTags, err
		}
	}

	all, err := r.store.FindTags(ctx, uid, names)
	if err != nil {
		return StepResolveTags, err
	}

	links := make([]model.NoteTag, 0, len(all))
	for _, t := range all {
		links = append(links, model.NoteTag{NoteID: noteID, TagID: t.ID})
	}
	if err := r.store.LinkTags(ctx, links); err != nil {
		return StepLinkTags, err
	}
	return "", nil
}
