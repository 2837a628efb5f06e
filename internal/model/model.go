// Package model contains the records shared by the store, the session provider and the views.
package model

import "time"

// User is issued by the session provider on registration and read-only elsewhere.
type User struct {
	ID           string    `gorm:"primaryKey;type:uuid" json:"id"`
	Email        string    `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"not null" json:"-"`
	Username     *string   `gorm:"type:text" json:"username"`
	AvatarURL    *string   `gorm:"type:text" json:"avatar_url"`
	CreatedAt    time.Time `gorm:"not null" json:"created_at"`
}

// Note is owned by exclusively one user. Tags are loaded by join and never written through Note.
type Note struct {
	ID        string    `gorm:"primaryKey;type:uuid" json:"id"`
	UserID    string    `gorm:"type:uuid;index;not null" json:"user_id"`
	Title     string    `gorm:"type:text;not null" json:"title"`
	Content   string    `gorm:"type:text;not null;default:''" json:"content"`
	IsPublic  bool      `gorm:"not null;default:false" json:"is_public"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`

	Tags []Tag `gorm:"-" json:"tags"`
}

// HasTag reports whether the note is linked to the tag with the given id.
func (n Note) HasTag(tagID string) bool {
	for _, t := range n.Tags {
		if t.ID == tagID {
			return true
		}
	}
	return false
}

// Tag names are unique per user. Tags are created lazily and never updated.
type Tag struct {
	ID        string    `gorm:"primaryKey;type:uuid" json:"id"`
	UserID    string    `gorm:"type:uuid;not null" json:"-"`
	Name      string    `gorm:"type:text;not null" json:"name"`
	CreatedAt time.Time `gorm:"not null" json:"-"`
}

// NoteTag is the join row linking one note to one tag.
type NoteTag struct {
	NoteID string `gorm:"primaryKey;type:uuid"`
	TagID  string `gorm:"primaryKey;type:uuid"`
}
