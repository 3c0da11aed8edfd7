package downloads

import (
	"context"
	"errors"

	"github.com/NikitaDmitryuk/telegram-tiktok-bot/internal/database"
	"github.com/NikitaDmitryuk/telegram-tiktok-bot/internal/logutils"
	"github.com/NikitaDmitryuk/telegram-tiktok-bot/internal/pkg/metrics"
	"github.com/NikitaDmitryuk/telegram-tiktok-bot/internal/utils"
)

func (o *Orchestrator) recordStart(ctx context.Context, req Request) {
	err := o.history.StartDownload(ctx, &database.Download{
		ID:        req.ID,
		ChatID:    req.ChatID,
		URL:       req.URL,
		VideoID:   req.Match.ID,
		CreatedAt: o.now(),
	})
	if err != nil {
		logutils.Request(req.ID, req.ChatID).WithError(err).Warn("Failed to record download")
	}
}

// recordFinish uses a fresh context so that the outcome is stored even after shutdown began.
func (o *Orchestrator) recordFinish(req Request, out Outcome) {
	status := database.StatusUploaded
	reason := ""
	if out.State == Failed {
		status = database.StatusFailed
		reason = out.Reason
	}

	err := o.history.FinishDownload(context.Background(), req.ID, database.Completion{
		Status:     status,
		Reason:     reason,
		VideoID:    out.VideoID,
		SizeBytes:  out.Size,
		FinishedAt: o.now(),
	})
	if err != nil && !errors.Is(err, database.ErrDownloadNotFound) {
		logutils.Request(req.ID, req.ChatID).WithError(err).Warn("Failed to update download record")
	}
}

func outcomeLabel(err error) string {
	switch {
	case errors.Is(err, utils.ErrFileTooLarge):
		return metrics.OutcomeTooLarge
	case errors.Is(err, utils.ErrUploadFailed):
		return metrics.OutcomeUploadError
	default:
		return metrics.OutcomeFetchFailed
	}
}
