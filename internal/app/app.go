package app

import (
	"context"

	"github.com/NikitaDmitryuk/telegram-tiktok-bot/internal/bot"
	"github.com/NikitaDmitryuk/telegram-tiktok-bot/internal/config"
	"github.com/NikitaDmitryuk/telegram-tiktok-bot/internal/database"
	"github.com/NikitaDmitryuk/telegram-tiktok-bot/internal/handlers/downloads"
	"github.com/NikitaDmitryuk/telegram-tiktok-bot/internal/pkg/metrics"
	"github.com/NikitaDmitryuk/telegram-tiktok-bot/internal/ratelimit"
	"github.com/NikitaDmitryuk/telegram-tiktok-bot/internal/resolver"
)

// Downloader runs the download pipeline of one request.
type Downloader interface {
	Handle(ctx context.Context, req downloads.Request) downloads.Outcome
}

// App holds the components shared by the update handlers.
type App struct {
	Bot       bot.Service
	Config    *config.Config
	Downloads Downloader
	Resolver  resolver.Resolver
	Limiter   ratelimit.Limiter
	History   database.HistoryStore
	Metrics   *metrics.Metrics
}

// WithDefaults fills the optional components with no-op implementations.
func (a *App) WithDefaults() *App {
	if a.Resolver == nil {
		a.Resolver = resolver.NoopResolver{}
	}
	if a.Limiter == nil {
		a.Limiter = ratelimit.NoOpLimiter{}
	}
	if a.History == nil {
		a.History = database.NoopStore{}
	}
	return a
}
