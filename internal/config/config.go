package config

import (
	"errors"
	"io/fs"
	"time"

	"github.com/NikitaDmitryuk/telegram-tiktok-bot/internal/logutils"
	"github.com/NikitaDmitryuk/telegram-tiktok-bot/internal/utils"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	DefaultMaxFileSizeMB          = 50
	DefaultMaxConcurrentDownloads = 3
)

type Config struct {
	BotToken  string `envconfig:"BOT_TOKEN"`
	BotDebug  bool   `envconfig:"BOT_DEBUG" default:"false"`
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"text"`
	Lang      string `envconfig:"BOT_LANG" default:"en"`

	DownloadDir            string `envconfig:"DOWNLOAD_DIR" default:"downloads"`
	CookiesFile            string `envconfig:"COOKIES_FILE" default:"cookies.txt"`
	YtDlpPath              string `envconfig:"YTDLP_PATH" default:"yt-dlp"`
	MaxFileSizeMB          int    `envconfig:"MAX_FILE_SIZE_MB" default:"50"`
	MaxConcurrentDownloads int    `envconfig:"MAX_CONCURRENT_DOWNLOADS" default:"3"`
	RetriesRequest         int    `envconfig:"RETRIES_REQUEST" default:"10"`
	RetriesFragment        int    `envconfig:"RETRIES_FRAGMENT" default:"10"`
	RetriesExtractor       int    `envconfig:"RETRIES_EXTRACTOR" default:"3"`

	YtDlpUpdateInterval time.Duration `envconfig:"YTDLP_UPDATE_INTERVAL" default:"0"`

	UploadConnectTimeout time.Duration `envconfig:"UPLOAD_CONNECT_TIMEOUT" default:"30s"`
	UploadReadTimeout    time.Duration `envconfig:"UPLOAD_READ_TIMEOUT" default:"120s"`
	UploadWriteTimeout   time.Duration `envconfig:"UPLOAD_WRITE_TIMEOUT" default:"120s"`

	RateLimitRequests int           `envconfig:"RATE_LIMIT_REQUESTS" default:"5"`
	RateLimitWindow   time.Duration `envconfig:"RATE_LIMIT_WINDOW" default:"1m"`

	HistoryDBPath     string        `envconfig:"HISTORY_DB_PATH" default:"history.db"`
	ResolveShortlinks bool          `envconfig:"RESOLVE_SHORTLINKS" default:"true"`
	MetricsAddr       string        `envconfig:"METRICS_ADDR"`
	ShutdownTimeout   time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"30s"`
}

// MaxFileSizeBytes is the upload limit in bytes.
func (c *Config) MaxFileSizeBytes() int64 {
	return int64(c.MaxFileSizeMB) * utils.MiB
}

func (c *Config) MetricsEnabled() bool {
	return c.MetricsAddr != ""
}

// NewConfig loads an optional .env file and then the process environment.
func NewConfig() (*Config, error) {
	return Load(".env")
}

func Load(envFiles ...string) (*Config, error) {
	for _, file := range envFiles {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			logutils.Log.WithError(err).WithField("file", file).Warn("Failed to load env file")
		}
	}

	config := &Config{}
	if err := envconfig.Process("", config); err != nil {
		return nil, utils.WrapError(utils.ErrConfigurationError, "failed to parse environment", map[string]any{
			"error": err.Error(),
		})
	}

	if err := config.validate(); err != nil {
		logutils.Log.WithError(err).Error("Configuration validation failed")
		return nil, utils.WrapError(err, "configuration validation failed", map[string]any{
			"download_dir": config.DownloadDir,
		})
	}

	logutils.Log.Info("Configuration loaded successfully")
	return config, nil
}
