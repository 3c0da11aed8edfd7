package handlers

import (
	"context"
	"strings"
	"sync"

	"github.com/NikitaDmitryuk/telegram-tiktok-bot/internal/app"
	"github.com/NikitaDmitryuk/telegram-tiktok-bot/internal/classifier"
	"github.com/NikitaDmitryuk/telegram-tiktok-bot/internal/handlers/downloads"
	"github.com/NikitaDmitryuk/telegram-tiktok-bot/internal/lang"
	"github.com/NikitaDmitryuk/telegram-tiktok-bot/internal/logutils"
	"github.com/NikitaDmitryuk/telegram-tiktok-bot/internal/pkg/metrics"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
)

// Router dispatches Telegram updates. Each update is handled in its own goroutine;
// downloads of the same chat run one after another.
type Router struct {
	app   *app.App
	locks *chatLocks
	wg    sync.WaitGroup
	newID func() string
}

func NewRouter(a *app.App) *Router {
	return &Router{
		app:   a.WithDefaults(),
		locks: newChatLocks(),
		newID: uuid.NewString,
	}
}

// Serve handles updates until ctx is done or the channel is closed, then waits for
// in-flight requests.
func (r *Router) Serve(ctx context.Context, updates <-chan tgbotapi.Update) {
	defer r.wg.Wait()

	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			r.wg.Add(1)
			go func() {
				defer r.wg.Done()
				r.HandleUpdate(ctx, &update)
			}()
		}
	}
}

// Wait blocks until every dispatched update has been handled.
func (r *Router) Wait() {
	r.wg.Wait()
}

func (r *Router) HandleUpdate(ctx context.Context, update *tgbotapi.Update) {
	if update.Message == nil {
		return
	}
	defer func() {
		if p := recover(); p != nil {
			logutils.Log.WithField("panic", p).Error("Update handler panicked")
		}
	}()

	LoggingMiddleware(update)

	if update.Message.IsCommand() {
		r.handleCommand(ctx, update.Message)
		return
	}
	r.handleMessage(ctx, update.Message)
}

func (r *Router) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	switch strings.ToLower(msg.Command()) {
	case "start":
		r.reply(msg, lang.GetMessage(lang.StartCommand))
	case "download":
		r.handleDownloadCommand(ctx, msg)
	case "history":
		r.handleHistory(ctx, msg)
	default:
		logutils.Log.WithField("command", msg.Command()).Debug("Unknown command")
		r.reply(msg, lang.GetMessage(lang.StartCommand))
	}
}

func (r *Router) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	match, ok := classifier.Classify(msg.Text)
	if !ok {
		r.app.Metrics.RecordRequest(metrics.OutcomeNoMatch)
		r.reply(msg, lang.GetMessage(lang.SendTikTokURL))
		return
	}
	r.download(ctx, msg, match, "")
}

// handleDownloadCommand accepts "/download <url> [name]". Without a URL it explains
// that links can be sent directly.
func (r *Router) handleDownloadCommand(ctx context.Context, msg *tgbotapi.Message) {
	args := strings.Fields(msg.CommandArguments())
	if len(args) == 0 {
		r.reply(msg, lang.GetMessage(lang.DownloadCommand))
		return
	}
	match, ok := classifier.Classify(args[0])
	if !ok {
		r.reply(msg, lang.GetMessage(lang.DownloadCommand))
		return
	}
	r.download(ctx, msg, match, strings.Join(args[1:], " "))
}

func (r *Router) download(ctx context.Context, msg *tgbotapi.Message, match classifier.Match, customName string) {
	chatID := msg.Chat.ID
	if !r.app.Limiter.Allow(chatID) {
		logutils.Log.WithField("chat_id", chatID).Info("Rate limit exceeded")
		r.app.Metrics.RecordRequest(metrics.OutcomeRateLimited)
		r.reply(msg, lang.GetMessage(lang.RateLimited))
		return
	}

	req := downloads.Request{
		ID:         r.newID(),
		ChatID:     chatID,
		MessageID:  msg.MessageID,
		CustomName: customName,
	}
	log := logutils.Request(req.ID, chatID)

	resolved, err := r.app.Resolver.Resolve(ctx, match)
	if err != nil {
		log.WithError(err).WithField("url", match.URL).Debug("Shortlink not resolved, using it as is")
	}
	req.Match = resolved
	req.URL = resolved.URL
	log.WithFields(map[string]any{
		"url":      req.URL,
		"kind":     resolved.Kind,
		"video_id": resolved.ID,
	}).Info("TikTok URL received")

	unlock := r.locks.Lock(chatID)
	defer unlock()

	if ctx.Err() != nil {
		log.Debug("Shutting down, dropping queued request")
		return
	}
	r.app.Downloads.Handle(ctx, req)
}

func (r *Router) reply(msg *tgbotapi.Message, text string) {
	if _, err := r.app.Bot.ReplyText(msg.Chat.ID, msg.MessageID, text); err != nil {
		logutils.Log.WithError(err).WithField("chat_id", msg.Chat.ID).Warn("Failed to reply")
	}
}
