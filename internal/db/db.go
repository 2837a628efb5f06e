package db

import (
	"fmt"

	"modernnotes/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Config is shared with the test store so both translate driver errors the same way.
func Config() *gorm.Config {
	return &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	}
}

func Connect(dsn string) (*gorm.DB, error) {
	gdb, err := gorm.Open(postgres.Open(dsn), Config())
	if err != nil {
		return nil, err
	}
	return gdb, nil
}

func AutoMigrateAndIndexes(gdb *gorm.DB) error {
	if err := gdb.AutoMigrate(
		&model.User{},
		&model.Note{},
		&model.Tag{},
		&model.NoteTag{},
	); err != nil {
		return err
	}

	stmts := []string{
		// tag names are unique per user
		`create unique index if not exists uq_tags_user_name on tags(user_id, name);`,
		// list view: owner filter + most recent first
		`create index if not exists idx_notes_user_updated on notes(user_id, updated_at desc);`,
		`create index if not exists idx_note_tags_tag on note_tags(tag_id);`,
	}
	for _, s := range stmts {
		if err := gdb.Exec(s).Error; err != nil {
			return fmt.Errorf("index exec failed: %w (sql=%s)", err, s)
		}
	}

	return nil
}
