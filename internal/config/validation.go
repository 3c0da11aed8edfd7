package config

import (
	"github.com/NikitaDmitryuk/telegram-tiktok-bot/internal/pkg/validation"
	"github.com/NikitaDmitryuk/telegram-tiktok-bot/internal/utils"
)

func (c *Config) validate() error {
	if err := c.validateRequiredFields(); err != nil {
		return err
	}
	return c.validateSettings()
}

func (c *Config) validateRequiredFields() error {
	v := validation.NewConfigValidator().ValidateBotToken(c.BotToken)
	v.ValidateRequired(c.DownloadDir, "DOWNLOAD_DIR").
		ValidateRequired(c.YtDlpPath, "YTDLP_PATH")

	if v.HasErrors() {
		return utils.WrapError(utils.ErrConfigurationError, "missing or invalid required environment variables", map[string]any{
			"fields": v.Fields(),
			"errors": v.Err().Error(),
		})
	}
	return nil
}

func (c *Config) validateSettings() error {
	v := validation.NewConfigValidator().
		ValidateLogLevel(c.LogLevel).
		ValidateLogFormat(c.LogFormat)

	v.ValidatePositive(c.MaxFileSizeMB, "MAX_FILE_SIZE_MB").
		ValidatePositive(c.MaxConcurrentDownloads, "MAX_CONCURRENT_DOWNLOADS").
		ValidateNonNegative(c.RetriesRequest, "RETRIES_REQUEST").
		ValidateNonNegative(c.RetriesFragment, "RETRIES_FRAGMENT").
		ValidateNonNegative(c.RetriesExtractor, "RETRIES_EXTRACTOR").
		ValidatePositiveDuration(c.UploadConnectTimeout, "UPLOAD_CONNECT_TIMEOUT").
		ValidatePositiveDuration(c.UploadReadTimeout, "UPLOAD_READ_TIMEOUT").
		ValidatePositiveDuration(c.UploadWriteTimeout, "UPLOAD_WRITE_TIMEOUT").
		ValidatePositiveDuration(c.ShutdownTimeout, "SHUTDOWN_TIMEOUT").
		ValidateConditional(c.RateLimitRequests > 0, func(v *validation.Validator) *validation.Validator {
			return v.ValidatePositiveDuration(c.RateLimitWindow, "RATE_LIMIT_WINDOW")
		}).
		ValidateConditional(c.YtDlpUpdateInterval != 0, func(v *validation.Validator) *validation.Validator {
			return v.ValidatePositiveDuration(c.YtDlpUpdateInterval, "YTDLP_UPDATE_INTERVAL")
		})

	if v.HasErrors() {
		return utils.WrapError(utils.ErrConfigurationError, "invalid settings", map[string]any{
			"fields": v.Fields(),
			"errors": v.Err().Error(),
		})
	}
	return nil
}
