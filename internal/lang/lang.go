package lang

import (
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/NikitaDmitryuk/telegram-tiktok-bot/internal/logutils"
)

const DefaultLang = "en"

var lang atomic.Value

func init() {
	lang.Store(DefaultLang)
}

// SetupLang selects the message language. Unknown codes fall back to English.
func SetupLang(code string) {
	code = strings.ToLower(strings.TrimSpace(code))
	if i := strings.IndexAny(code, "_-."); i > 0 {
		code = code[:i]
	}
	if !Supported(code) {
		logutils.Log.WithField("lang", code).Warn("Unsupported language, falling back to English")
		code = DefaultLang
	}
	lang.Store(code)
}

func Current() string {
	return lang.Load().(string)
}

func Supported(code string) bool {
	_, ok := messages[StartCommand][code]
	return ok
}

func GetMessage(id MessageID, args ...any) string {
	if m, ok := messages[id]; ok {
		if msg, ok := m[Current()]; ok {
			return format(msg, args)
		}
		if msg, ok := m[DefaultLang]; ok {
			return format(msg, args)
		}
	}
	logutils.Log.WithField("message_id", id).Error("Message not found")
	return "Message not found"
}

func format(msg string, args []any) string {
	if len(args) == 0 {
		return msg
	}
	return fmt.Sprintf(msg, args...)
}
