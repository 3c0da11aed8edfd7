package video

import (
	"context"
	"os/exec"
	"strings"
	"time"

	"github.com/NikitaDmitryuk/telegram-tiktok-bot/internal/logutils"
)

const updateTimeout = 3 * time.Minute

// RunUpdate asks yt-dlp to update itself. Failures are logged and ignored.
func (y *YtDlp) RunUpdate(ctx context.Context) {
	updateCtx, cancel := context.WithTimeout(ctx, updateTimeout)
	defer cancel()

	output, err := exec.CommandContext(updateCtx, y.binary, "-U").CombinedOutput()
	out := strings.TrimSpace(string(output))

	if err != nil {
		if updateCtx.Err() != nil {
			logutils.Log.WithError(err).Warn("yt-dlp update timed out or was canceled")
			return
		}
		logutils.Log.WithError(err).WithFields(map[string]any{
			"output": out,
			"binary": y.binary,
		}).Warn("yt-dlp update failed")
		return
	}

	logutils.Log.WithFields(map[string]any{
		"binary": y.binary,
		"output": out,
	}).Info("yt-dlp update check completed successfully")
}
