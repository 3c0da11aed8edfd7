package app

import (
	"context"

	"github.com/NikitaDmitryuk/telegram-tiktok-bot/internal/bot"
	"github.com/NikitaDmitryuk/telegram-tiktok-bot/internal/config"
	"github.com/NikitaDmitryuk/telegram-tiktok-bot/internal/database"
	"github.com/NikitaDmitryuk/telegram-tiktok-bot/internal/downloader"
	"github.com/NikitaDmitryuk/telegram-tiktok-bot/internal/downloader/video"
	"github.com/NikitaDmitryuk/telegram-tiktok-bot/internal/filemanager"
	"github.com/NikitaDmitryuk/telegram-tiktok-bot/internal/handlers/downloads"
	"github.com/NikitaDmitryuk/telegram-tiktok-bot/internal/logutils"
	"github.com/NikitaDmitryuk/telegram-tiktok-bot/internal/pkg/metrics"
	"github.com/NikitaDmitryuk/telegram-tiktok-bot/internal/ratelimit"
	"github.com/NikitaDmitryuk/telegram-tiktok-bot/internal/resolver"
	"github.com/NikitaDmitryuk/telegram-tiktok-bot/internal/shutdown"
)

// Runtime is the App together with the long-running pieces main has to drive.
type Runtime struct {
	App      *App
	Bot      *bot.Bot
	YtDlp    *video.YtDlp
	Shutdown *shutdown.Manager
}

// Initialize builds every component from cfg. A missing yt-dlp binary is fatal.
func Initialize(ctx context.Context, cfg *config.Config) (*Runtime, error) {
	binary, err := video.LookPath(cfg.YtDlpPath)
	if err != nil {
		return nil, err
	}
	ytdlp := video.NewYtDlp(binary)
	if version, versionErr := ytdlp.Version(ctx); versionErr == nil {
		logutils.Log.WithField("version", version).Info("yt-dlp found")
	}

	if removed, sweepErr := filemanager.Sweep(cfg.DownloadDir, filemanager.DefaultMaxAge); sweepErr != nil {
		logutils.Log.WithError(sweepErr).Warn("Failed to clean the download directory")
	} else if removed > 0 {
		logutils.Log.WithField("removed", removed).Info("Removed stale downloads")
	}

	history, err := database.NewDatabase(cfg.HistoryDBPath)
	if err != nil {
		return nil, err
	}

	botInstance, err := bot.NewBot(bot.Options{
		Token: cfg.BotToken,
		Debug: cfg.BotDebug,
		Upload: bot.UploadTimeouts{
			Connect: cfg.UploadConnectTimeout,
			Read:    cfg.UploadReadTimeout,
			Write:   cfg.UploadWriteTimeout,
		},
	})
	if err != nil {
		_ = history.Close()
		return nil, err
	}

	m := metrics.New()
	fetcher := downloader.NewFetcher(ytdlp, fetcherConfig(cfg))
	orchestrator := downloads.NewOrchestrator(botInstance, fetcher, history, m, downloads.Config{
		MaxFileSize:   cfg.MaxFileSizeBytes(),
		MaxConcurrent: int64(cfg.MaxConcurrentDownloads),
	})

	var shortlinks resolver.Resolver = resolver.NoopResolver{}
	if cfg.ResolveShortlinks {
		shortlinks = resolver.NewShortlinkResolver(downloader.DefaultHeaders())
	}

	manager := shutdown.NewManager(cfg.ShutdownTimeout)
	manager.Register(shutdown.Func("telegram-updates", func(context.Context) error {
		botInstance.StopReceivingUpdates()
		return nil
	}))
	manager.Register(shutdown.Closer("history", history))

	logutils.Log.WithFields(map[string]any{
		"download_dir":   cfg.DownloadDir,
		"max_concurrent": cfg.MaxConcurrentDownloads,
		"max_file_size":  cfg.MaxFileSizeMB,
	}).Info("Components initialized")

	return &Runtime{
		App: &App{
			Bot:       botInstance,
			Config:    cfg,
			Downloads: orchestrator,
			Resolver:  shortlinks,
			Limiter:   ratelimit.New(cfg.RateLimitRequests, cfg.RateLimitWindow),
			History:   history,
			Metrics:   m,
		},
		Bot:      botInstance,
		YtDlp:    ytdlp,
		Shutdown: manager,
	}, nil
}

func fetcherConfig(cfg *config.Config) downloader.Config {
	return downloader.Config{
		Dir:        cfg.DownloadDir,
		CookieFile: cfg.CookiesFile,
		Retries: video.Retries{
			Request:   cfg.RetriesRequest,
			Fragment:  cfg.RetriesFragment,
			Extractor: cfg.RetriesExtractor,
		},
	}
}
