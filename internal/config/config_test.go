package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/NikitaDmitryuk/telegram-tiktok-bot/internal/logutils"
	"github.com/NikitaDmitryuk/telegram-tiktok-bot/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testToken = "123456:test-token"

func TestMain(m *testing.M) {
	logutils.InitLogger("error")
	os.Exit(m.Run())
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("BOT_TOKEN", testToken)
	t.Setenv("BOT_LANG", "")
	os.Unsetenv("BOT_LANG")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, testToken, cfg.BotToken)
	assert.Equal(t, "en", cfg.Lang)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, "downloads", cfg.DownloadDir)
	assert.Equal(t, "cookies.txt", cfg.CookiesFile)
	assert.Equal(t, "yt-dlp", cfg.YtDlpPath)
	assert.Equal(t, DefaultMaxFileSizeMB, cfg.MaxFileSizeMB)
	assert.Equal(t, int64(50*utils.MiB), cfg.MaxFileSizeBytes())
	assert.Equal(t, DefaultMaxConcurrentDownloads, cfg.MaxConcurrentDownloads)
	assert.Equal(t, 10, cfg.RetriesRequest)
	assert.Equal(t, 10, cfg.RetriesFragment)
	assert.Equal(t, 3, cfg.RetriesExtractor)
	assert.Equal(t, 30*time.Second, cfg.UploadConnectTimeout)
	assert.Equal(t, 120*time.Second, cfg.UploadReadTimeout)
	assert.Equal(t, 120*time.Second, cfg.UploadWriteTimeout)
	assert.Equal(t, 5, cfg.RateLimitRequests)
	assert.Equal(t, time.Minute, cfg.RateLimitWindow)
	assert.Equal(t, "history.db", cfg.HistoryDBPath)
	assert.True(t, cfg.ResolveShortlinks)
	assert.False(t, cfg.MetricsEnabled())
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Zero(t, cfg.YtDlpUpdateInterval)
}

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name          string
		env           map[string]string
		expectError   bool
		errorContains string
	}{
		{
			name:        "Valid configuration",
			env:         map[string]string{"BOT_TOKEN": testToken},
			expectError: false,
		},
		{
			name:          "Missing bot token",
			env:           map[string]string{"BOT_TOKEN": ""},
			expectError:   true,
			errorContains: "configuration validation failed",
		},
		{
			name:          "Malformed bot token",
			env:           map[string]string{"BOT_TOKEN": "not-a-token"},
			expectError:   true,
			errorContains: "missing or invalid required environment variables",
		},
		{
			name:          "Zero concurrent downloads",
			env:           map[string]string{"BOT_TOKEN": testToken, "MAX_CONCURRENT_DOWNLOADS": "0"},
			expectError:   true,
			errorContains: "invalid settings",
		},
		{
			name:          "Unknown log format",
			env:           map[string]string{"BOT_TOKEN": testToken, "LOG_FORMAT": "xml"},
			expectError:   true,
			errorContains: "invalid settings",
		},
		{
			name:          "Negative retries",
			env:           map[string]string{"BOT_TOKEN": testToken, "RETRIES_FRAGMENT": "-1"},
			expectError:   true,
			errorContains: "invalid settings",
		},
		{
			name:          "Unparsable duration",
			env:           map[string]string{"BOT_TOKEN": testToken, "UPLOAD_READ_TIMEOUT": "soon"},
			expectError:   true,
			errorContains: "failed to parse environment",
		},
		{
			name:        "Rate limiting disabled ignores window",
			env:         map[string]string{"BOT_TOKEN": testToken, "RATE_LIMIT_REQUESTS": "0", "RATE_LIMIT_WINDOW": "0s"},
			expectError: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for key, value := range tt.env {
				t.Setenv(key, value)
			}

			cfg, err := Load()
			if tt.expectError {
				require.Error(t, err)
				assert.ErrorIs(t, err, utils.ErrConfigurationError)
				assert.Contains(t, err.Error(), tt.errorContains)
				assert.Nil(t, cfg)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, cfg)
		})
	}
}

func TestLoadReadsEnvFile(t *testing.T) {
	t.Setenv("BOT_TOKEN", "")
	os.Unsetenv("BOT_TOKEN")
	t.Setenv("DOWNLOAD_DIR", "downloads")
	os.Unsetenv("DOWNLOAD_DIR")

	envFile := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("BOT_TOKEN=42:from-file\nDOWNLOAD_DIR=/tmp/tiktok\n"), 0o600))

	cfg, err := Load(envFile)
	require.NoError(t, err)
	assert.Equal(t, "42:from-file", cfg.BotToken)
	assert.Equal(t, "/tmp/tiktok", cfg.DownloadDir)
}

func TestLoadMissingEnvFileIsIgnored(t *testing.T) {
	t.Setenv("BOT_TOKEN", testToken)

	_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	assert.NoError(t, err)
}

func TestLanguageIgnoresHostLocale(t *testing.T) {
	t.Setenv("BOT_TOKEN", testToken)
	t.Setenv("LANG", "ru_RU.UTF-8")
	t.Setenv("BOT_LANG", "")
	os.Unsetenv("BOT_LANG")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "en", cfg.Lang)

	t.Setenv("BOT_LANG", "ru")
	cfg, err = Load()
	require.NoError(t, err)
	assert.Equal(t, "ru", cfg.Lang)
}
