// Package store persists conversation transcripts. The same store works
// against a local SQLite file or a networked MySQL server; the backend is
// chosen by configuration and the behavior is identical either way.
package store

import (
	"context"
	"fmt"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/orthovaidhya/vaidhya/backend/internal/config"
	"github.com/orthovaidhya/vaidhya/backend/internal/model/transcript"
)

// Transcript is an append-only log of user and bot turns.
type Transcript struct {
	db *gorm.DB
}

// Open connects to the configured backend and migrates the schema.
func Open(cfg config.DBConfig) (*Transcript, error) {
	var dialector gorm.Dialector
	switch cfg.Backend {
	case config.BackendMySQL:
		dialector = mysql.Open(cfg.DSN)
	case config.BackendSQLite, "":
		dialector = sqlite.Open(cfg.Path)
	default:
		return nil, fmt.Errorf("store: unknown backend %q", cfg.Backend)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("store: connect %s: %w", cfg.Backend, err)
	}
	return New(db)
}

// New wraps an existing connection, migrating the transcript table.
func New(db *gorm.DB) (*Transcript, error) {
	if err := db.AutoMigrate(&transcript.Entry{}); err != nil {
		return nil, fmt.Errorf("store: auto-migrate: %w", err)
	}
	return &Transcript{db: db}, nil
}

// Append records one turn for the session.
func (t *Transcript) Append(ctx context.Context, sessionID, sender, message string) error {
	entry := transcript.Entry{
		SessionID: sessionID,
		Sender:    sender,
		Message:   message,
		Timestamp: time.Now().UTC(),
	}
	if err := t.db.WithContext(ctx).Create(&entry).Error; err != nil {
		return fmt.Errorf("store: append %s turn for %s: %w", sender, sessionID, err)
	}
	return nil
}

// BySession returns the session's turns in the order they were recorded.
func (t *Transcript) BySession(ctx context.Context, sessionID string) ([]transcript.Entry, error) {
	var entries []transcript.Entry
	err := t.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("id").
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("store: load transcript for %s: %w", sessionID, err)
	}
	return entries, nil
}
