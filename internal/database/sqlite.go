package database

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/NikitaDmitryuk/telegram-tiktok-bot/internal/utils"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var ErrDownloadNotFound = errors.New("download not found")

type SQLiteDatabase struct {
	db *gorm.DB
}

func NewSQLiteDatabase() *SQLiteDatabase {
	return &SQLiteDatabase{}
}

func (s *SQLiteDatabase) Init(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := utils.EnsureDir(dir); err != nil {
			return err
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	s.db = db

	if err := s.runMigrations(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

func (s *SQLiteDatabase) runMigrations() error {
	if err := s.db.AutoMigrate(&Download{}); err != nil {
		return fmt.Errorf("auto migration failed: %w", err)
	}
	return nil
}

func (s *SQLiteDatabase) StartDownload(ctx context.Context, d *Download) error {
	if d.Status == "" {
		d.Status = StatusPending
	}
	if err := s.db.WithContext(ctx).Create(d).Error; err != nil {
		return fmt.Errorf("failed to record download: %w", err)
	}
	return nil
}

func (s *SQLiteDatabase) FinishDownload(ctx context.Context, id string, c Completion) error {
	updates := map[string]any{
		"status":      c.Status,
		"reason":      c.Reason,
		"size_bytes":  c.SizeBytes,
		"finished_at": c.FinishedAt,
	}
	if c.VideoID != "" {
		updates["video_id"] = c.VideoID
	}
	res := s.db.WithContext(ctx).Model(&Download{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return fmt.Errorf("failed to update download: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", ErrDownloadNotFound, id)
	}
	return nil
}

func (s *SQLiteDatabase) RecentDownloads(ctx context.Context, chatID int64, limit int) ([]Download, error) {
	var downloads []Download
	err := s.db.WithContext(ctx).
		Where("chat_id = ?", chatID).
		Order("created_at DESC").
		Limit(limit).
		Find(&downloads).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list downloads: %w", err)
	}
	return downloads, nil
}

func (s *SQLiteDatabase) Close() error {
	if s.db == nil {
		return nil
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
