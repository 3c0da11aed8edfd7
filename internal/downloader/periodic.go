package downloader

import (
	"context"
	"time"

	"github.com/NikitaDmitryuk/telegram-tiktok-bot/internal/logutils"
)

type Updater interface {
	RunUpdate(ctx context.Context)
}

// StartPeriodicUpdater keeps the fetch backend up to date until ctx is done.
// A non-positive interval disables it.
func StartPeriodicUpdater(ctx context.Context, interval time.Duration, u Updater) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	logutils.Log.WithField("interval", interval).Info("Starting periodic yt-dlp updater")

	for {
		select {
		case <-ctx.Done():
			logutils.Log.Info("Stopping periodic yt-dlp updater")
			return
		case <-ticker.C:
			u.RunUpdate(ctx)
		}
	}
}
