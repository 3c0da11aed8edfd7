package lang

type MessageID string

const (
	StartCommand    MessageID = "start_command"
	DownloadCommand MessageID = "download_command"
	SendTikTokURL   MessageID = "send_tiktok_url"
	RateLimited     MessageID = "rate_limited"

	StatusStarting    MessageID = "status_starting"
	StatusDownloading MessageID = "status_downloading"
	StatusUploading   MessageID = "status_uploading"
	VideoCaption      MessageID = "video_caption"

	ErrorPrefix        MessageID = "error_prefix"
	DownloadNoFile     MessageID = "download_no_file"
	UnexpectedError    MessageID = "unexpected_error"
	StatusSendFailed   MessageID = "status_send_failed"
	HistoryEmpty       MessageID = "history_empty"
	HistoryHeader      MessageID = "history_header"
	HistoryUnavailable MessageID = "history_unavailable"
)

var messages = map[MessageID]map[string]string{
	StartCommand: {
		"en": "Hello! Send me TikTok links to download them.",
		"ru": "Привет! Отправьте мне ссылку на TikTok, и я скачаю видео.",
	},
	DownloadCommand: {
		"en": "Just send me the TikTok URL directly!",
		"ru": "Просто отправьте мне ссылку на TikTok!",
	},
	SendTikTokURL: {
		"en": "Send a TikTok URL",
		"ru": "Отправьте ссылку на TikTok",
	},
	RateLimited: {
		"en": "⏳ Too many requests, please wait a moment.",
		"ru": "⏳ Слишком много запросов, подождите немного.",
	},
	StatusStarting: {
		"en": "⬇️ Starting download...",
		"ru": "⬇️ Начинаю загрузку...",
	},
	StatusDownloading: {
		"en": "⏳ Downloading video...",
		"ru": "⏳ Скачиваю видео...",
	},
	StatusUploading: {
		"en": "📤 Uploading to Telegram...",
		"ru": "📤 Отправляю в Telegram...",
	},
	VideoCaption: {
		"en": "Here's your TikTok video! 🎬",
		"ru": "Ваше видео из TikTok! 🎬",
	},
	ErrorPrefix: {
		"en": "❌ %s",
		"ru": "❌ %s",
	},
	DownloadNoFile: {
		"en": "Download failed - no file created",
		"ru": "Ошибка загрузки - файл не создан",
	},
	UnexpectedError: {
		"en": "Unexpected error, please try again later",
		"ru": "Непредвиденная ошибка, попробуйте позже",
	},
	StatusSendFailed: {
		"en": "❌ Download failed: could not start the download",
		"ru": "❌ Ошибка загрузки: не удалось начать загрузку",
	},
	HistoryEmpty: {
		"en": "No downloads yet.",
		"ru": "Загрузок пока нет.",
	},
	HistoryHeader: {
		"en": "Your last downloads:",
		"ru": "Ваши последние загрузки:",
	},
	HistoryUnavailable: {
		"en": "History is not available right now.",
		"ru": "История сейчас недоступна.",
	},
}
