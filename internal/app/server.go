package app

import (
	"context"
	"errors"

	"github.com/NikitaDmitryuk/telegram-tiktok-bot/internal/downloader"
	"github.com/NikitaDmitryuk/telegram-tiktok-bot/internal/logutils"
	"github.com/NikitaDmitryuk/telegram-tiktok-bot/internal/pkg/metrics"
	"github.com/NikitaDmitryuk/telegram-tiktok-bot/internal/ratelimit"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/sync/errgroup"
)

var ErrUpdatesClosed = errors.New("telegram update stream closed")

// UpdateHandler consumes the update stream until ctx is done or the stream ends.
type UpdateHandler interface {
	Serve(ctx context.Context, updates <-chan tgbotapi.Update)
}

// Run processes updates until ctx is canceled, then shuts everything down.
func (rt *Runtime) Run(ctx context.Context, handler UpdateHandler) error {
	cfg := rt.App.Config
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		handler.Serve(gctx, rt.Bot.Updates())
		logutils.Log.Info("Stopped processing updates")
		if gctx.Err() == nil {
			return ErrUpdatesClosed
		}
		return nil
	})

	if cfg.MetricsEnabled() {
		srv := rt.App.Metrics.NewServer(gctx, cfg.MetricsAddr)
		g.Go(func() error {
			return metrics.Serve(gctx, srv, cfg.ShutdownTimeout)
		})
	}

	if limiter, ok := rt.App.Limiter.(*ratelimit.ChatLimiter); ok {
		g.Go(func() error {
			limiter.RunCleanup(gctx)
			return nil
		})
	}

	if cfg.YtDlpUpdateInterval > 0 {
		g.Go(func() error {
			downloader.StartPeriodicUpdater(gctx, cfg.YtDlpUpdateInterval, rt.YtDlp)
			return nil
		})
	}

	logutils.Log.Info("TikTok bot started successfully")

	runErr := g.Wait()
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		logutils.Log.WithError(runErr).Error("Bot stopped with an error")
	}
	return errors.Join(runErr, rt.Shutdown.Shutdown())
}
