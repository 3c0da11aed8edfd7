package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/NikitaDmitryuk/telegram-tiktok-bot/internal/app"
	tmsconfig "github.com/NikitaDmitryuk/telegram-tiktok-bot/internal/config"
	"github.com/NikitaDmitryuk/telegram-tiktok-bot/internal/handlers"
	"github.com/NikitaDmitryuk/telegram-tiktok-bot/internal/lang"
	"github.com/NikitaDmitryuk/telegram-tiktok-bot/internal/logutils"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	config, err := tmsconfig.NewConfig()
	if err != nil {
		logutils.Log.WithError(err).Error("Failed to initialize configuration")
		os.Exit(1)
	}

	logutils.InitLogger(config.LogLevel, config.LogFormat)
	logutils.Log.WithFields(map[string]any{
		"version":    Version,
		"build_time": BuildTime,
	}).Info("Starting TikTok bot")

	lang.SetupLang(config.Lang)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rt, err := app.Initialize(ctx, config)
	if err != nil {
		logutils.Log.WithError(err).Error("Initialization failed")
		os.Exit(1)
	}

	if config.YtDlpUpdateInterval > 0 {
		rt.YtDlp.RunUpdate(ctx)
	}

	router := handlers.NewRouter(rt.App)
	if err := rt.Run(ctx, router); err != nil && !errors.Is(err, context.Canceled) {
		logutils.Log.WithError(err).Error("TikTok bot stopped with errors")
		os.Exit(1)
	}

	logutils.Log.Info("TikTok bot shutdown complete")
}
