package testutils

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/NikitaDmitryuk/telegram-tiktok-bot/internal/database"
)

// MemoryHistory implements database.HistoryStore in memory.
type MemoryHistory struct {
	mu        sync.Mutex
	downloads map[string]*database.Download

	// StartError, if set, is returned by StartDownload.
	StartError error
}

func NewMemoryHistory() *MemoryHistory {
	return &MemoryHistory{downloads: make(map[string]*database.Download)}
}

func (h *MemoryHistory) StartDownload(_ context.Context, d *database.Download) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.StartError != nil {
		return h.StartError
	}
	if d.Status == "" {
		d.Status = database.StatusPending
	}
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now()
	}
	stored := *d
	h.downloads[d.ID] = &stored
	return nil
}

func (h *MemoryHistory) FinishDownload(_ context.Context, id string, c database.Completion) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	d, ok := h.downloads[id]
	if !ok {
		return database.ErrDownloadNotFound
	}
	d.Status = c.Status
	d.Reason = c.Reason
	d.SizeBytes = c.SizeBytes
	if c.VideoID != "" {
		d.VideoID = c.VideoID
	}
	finishedAt := c.FinishedAt
	d.FinishedAt = &finishedAt
	return nil
}

func (h *MemoryHistory) RecentDownloads(_ context.Context, chatID int64, limit int) ([]database.Download, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	var result []database.Download
	for _, d := range h.downloads {
		if d.ChatID == chatID {
			result = append(result, *d)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (*MemoryHistory) Close() error { return nil }

// All returns every stored download.
func (h *MemoryHistory) All() []database.Download {
	h.mu.Lock()
	defer h.mu.Unlock()
	result := make([]database.Download, 0, len(h.downloads))
	for _, d := range h.downloads {
		result = append(result, *d)
	}
	return result
}
