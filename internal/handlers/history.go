package handlers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/NikitaDmitryuk/telegram-tiktok-bot/internal/database"
	"github.com/NikitaDmitryuk/telegram-tiktok-bot/internal/lang"
	"github.com/NikitaDmitryuk/telegram-tiktok-bot/internal/logutils"
	"github.com/dustin/go-humanize"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const historyLimit = 10

func (r *Router) handleHistory(ctx context.Context, msg *tgbotapi.Message) {
	if _, disabled := r.app.History.(database.NoopStore); disabled {
		r.reply(msg, lang.GetMessage(lang.HistoryUnavailable))
		return
	}

	records, err := r.app.History.RecentDownloads(ctx, msg.Chat.ID, historyLimit)
	if err != nil {
		logutils.Log.WithError(err).WithField("chat_id", msg.Chat.ID).Error("Failed to load download history")
		r.reply(msg, lang.GetMessage(lang.HistoryUnavailable))
		return
	}
	if len(records) == 0 {
		r.reply(msg, lang.GetMessage(lang.HistoryEmpty))
		return
	}

	r.reply(msg, FormatHistory(records, time.Now()))
}

// FormatHistory renders records, newest first, one per line.
func FormatHistory(records []database.Download, now time.Time) string {
	var b strings.Builder
	b.WriteString(lang.GetMessage(lang.HistoryHeader))
	for _, d := range records {
		b.WriteString("\n")
		b.WriteString(formatRecord(d, now))
	}
	return b.String()
}

func formatRecord(d database.Download, now time.Time) string {
	when := humanize.RelTime(d.CreatedAt, now, "ago", "from now")
	switch d.Status {
	case database.StatusUploaded:
		return fmt.Sprintf("✅ %s · %s · %s", when, humanize.Bytes(uint64(d.SizeBytes)), d.URL)
	case database.StatusFailed:
		return fmt.Sprintf("❌ %s · %s · %s", when, d.URL, d.Reason)
	default:
		return fmt.Sprintf("⏳ %s · %s", when, d.URL)
	}
}
