package note

import (
	"context"
	"errors"
	"time"

	"modernnotes/internal/errs"
	"modernnotes/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Store is the Data Store contract the repository runs against. Owned
// operations are scoped to the owner id they are given.
type Store interface {
	ListNotes(ctx context.Context, ownerID string) ([]model.Note, error)
	GetNote(ctx context.Context, callerID, noteID string) (*model.Note, error)
	InsertNote(ctx context.Context, n *model.Note) error
	UpdateNote(ctx context.Context, ownerID, noteID string, upd NoteUpdate) error
	DeleteNote(ctx context.Context, ownerID, noteID string) error

	ListTags(ctx context.Context, ownerID string) ([]model.Tag, error)
	FindTags(ctx context.Context, ownerID string, names []string) ([]model.Tag, error)
	InsertTags(ctx context.Context, tags []model.Tag) error
	LinkTags(ctx context.Context, links []model.NoteTag) error
}

// NoteUpdate is a full replace of the editable note fields.
type NoteUpdate struct {
	Title     string
	Content   string
	IsPublic  bool
	UpdatedAt time.Time
}

// GormStore implements Store on a relational database. Every owned query
// carries a user_id predicate, which stands in for row-level security.
type GormStore struct {
	DB *gorm.DB
}

var _ Store = (*GormStore)(nil)

func (s *GormStore) ListNotes(ctx context.Context, ownerID string) ([]model.Note, error) {
	var rows []model.Note
	if err := s.DB.WithContext(ctx).
		Where("user_id = ?", ownerID).
		Order("updated_at desc").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	if err := s.attachTags(ctx, rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// GetNote returns the note when the caller owns it or it is public.
// Anything else is reported as not found.
func (s *GormStore) GetNote(ctx context.Context, callerID, noteID string) (*model.Note, error) {
	q := s.DB.WithContext(ctx).Where("id = ?", noteID)
	if callerID == "" {
		q = q.Where("is_public = ?", true)
	} else {
		q = q.Where("(user_id = ? OR is_public = ?)", callerID, true)
	}

	var n model.Note
	if err := q.First(&n).Error; err != nil {
		return nil, translate(err)
	}

	rows := []model.Note{n}
	if err := s.attachTags(ctx, rows); err != nil {
		return nil, err
	}
	return &rows[0], nil
}

func (s *GormStore) InsertNote(ctx context.Context, n *model.Note) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	return translate(s.DB.WithContext(ctx).Create(n).Error)
}

func (s *GormStore) UpdateNote(ctx context.Context, ownerID, noteID string, upd NoteUpdate) error {
	res := s.DB.WithContext(ctx).Model(&model.Note{}).
		Where("id = ? AND user_id = ?", noteID, ownerID).
		Updates(map[string]any{
			"title":      upd.Title,
			"content":    upd.Content,
			"is_public":  upd.IsPublic,
			"updated_at": upd.UpdatedAt,
		})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// DeleteNote removes the note and its tag links together.
func (s *GormStore) DeleteNote(ctx context.Context, ownerID, noteID string) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ? AND user_id = ?", noteID, ownerID).Delete(&model.Note{})
		if res.Error != nil {
			return translate(res.Error)
		}
		if res.RowsAffected == 0 {
			return errs.ErrNotFound
		}
		return tx.Where("note_id = ?", noteID).Delete(&model.NoteTag{}).Error
	})
}

func (s *GormStore) ListTags(ctx context.Context, ownerID string) ([]model.Tag, error) {
	var tags []model.Tag
	err := s.DB.WithContext(ctx).
		Where("user_id = ?", ownerID).
		Order("name asc").
		Find(&tags).Error
	return tags, err
}

// FindTags matches names exactly (case-sensitive) within the owner's tags.
func (s *GormStore) FindTags(ctx context.Context, ownerID string, names []string) ([]model.Tag, error) {
	if len(names) == 0 {
		return nil, nil
	}
	var tags []model.Tag
	err := s.DB.WithContext(ctx).
		Where("user_id = ? AND name IN ?", ownerID, names).
		Order("name asc").
		Find(&tags).Error
	return tags, err
}

func (s *GormStore) InsertTags(ctx context.Context, tags []model.Tag) error {
	if len(tags) == 0 {
		return nil
	}
	for i := range tags {
		if tags[i].ID == "" {
			tags[i].ID = uuid.NewString()
		}
	}
	return translate(s.DB.WithContext(ctx).Create(&tags).Error)
}

func (s *GormStore) LinkTags(ctx context.Context, links []model.NoteTag) error {
	if len(links) == 0 {
		return nil
	}
	return translate(s.DB.WithContext(ctx).Create(&links).Error)
}

type noteTagRow struct {
	NoteID string
	TagID  string
	Name   string
}

// attachTags fills Tags on each note from the join table, ordered by name.
func (s *GormStore) attachTags(ctx context.Context, notes []model.Note) error {
	if len(notes) == 0 {
		return nil
	}
	ids := make([]string, len(notes))
	for i, n := range notes {
		ids[i] = n.ID
	}

	var rows []noteTagRow
	if err := s.DB.WithContext(ctx).
		Table("note_tags").
		Select("note_tags.note_id, tags.id as tag_id, tags.name").
		Joins("join tags on tags.id = note_tags.tag_id").
		Where("note_tags.note_id IN ?", ids).
		Order("tags.name asc").
		Scan(&rows).Error; err != nil {
		return err
	}

	byNote := map[string][]model.Tag{}
	for _, r := range rows {
		byNote[r.NoteID] = append(byNote[r.NoteID], model.Tag{ID: r.TagID, Name: r.Name})
	}
	for i := range notes {
		notes[i].Tags = byNote[notes[i].ID]
		if notes[i].Tags == nil {
			notes[i].Tags = []model.Tag{}
		}
	}
	return nil
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return errs.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return errs.ErrAlreadyExists
	default:
		return err
	}
}
