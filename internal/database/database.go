package database

import (
	"context"

	"github.com/NikitaDmitryuk/telegram-tiktok-bot/internal/logutils"
)

// HistoryStore keeps the download history per chat.
type HistoryStore interface {
	StartDownload(ctx context.Context, d *Download) error
	FinishDownload(ctx context.Context, id string, c Completion) error
	RecentDownloads(ctx context.Context, chatID int64, limit int) ([]Download, error)
	Close() error
}

// NewDatabase opens the SQLite history at path. An empty path disables history.
func NewDatabase(path string) (HistoryStore, error) {
	if path == "" {
		logutils.Log.Info("Download history disabled")
		return NoopStore{}, nil
	}

	database := NewSQLiteDatabase()
	if err := database.Init(path); err != nil {
		logutils.Log.WithError(err).Error("Failed to initialize the database")
		return nil, err
	}

	logutils.Log.WithField("path", path).Info("Database initialized successfully")
	return database, nil
}

// NoopStore is used when history is disabled.
type NoopStore struct{}

func (NoopStore) StartDownload(context.Context, *Download) error { return nil }

func (NoopStore) FinishDownload(context.Context, string, Completion) error {
	return nil
}

func (NoopStore) RecentDownloads(context.Context, int64, int) ([]Download, error) { return nil, nil }

func (NoopStore) Close() error { return nil }
