package database

import "time"

type DownloadStatus string

const (
	StatusPending  DownloadStatus = "pending"
	StatusUploaded DownloadStatus = "uploaded"
	StatusFailed   DownloadStatus = "failed"
)

// Completion is the final state of a download. An empty VideoID keeps the stored one.
type Completion struct {
	Status     DownloadStatus
	Reason     string
	VideoID    string
	SizeBytes  int64
	FinishedAt time.Time
}

// Download is the stored outcome of one download request.
type Download struct {
	ID         string         `gorm:"primaryKey;size:36"`
	ChatID     int64          `gorm:"index:idx_downloads_chat_created,priority:1;not null"`
	URL        string         `gorm:"not null"`
	VideoID    string         `gorm:"size:64"`
	Status     DownloadStatus `gorm:"size:16;not null;default:pending"`
	Reason     string
	SizeBytes  int64
	CreatedAt  time.Time `gorm:"index:idx_downloads_chat_created,priority:2"`
	FinishedAt *time.Time
}
