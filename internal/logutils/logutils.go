package logutils

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Log is the process-wide logger. It is usable before InitLogger is called.
var Log = newLogger(logrus.InfoLevel, "text")

func newLogger(level logrus.Level, format string) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stdout)
	l.SetLevel(level)
	if strings.EqualFold(format, "json") {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return l
}

// InitLogger replaces Log with a logger at the given level ("debug", "info", "warn", "error").
// An optional format of "json" switches to structured JSON output.
func InitLogger(level string, format ...string) {
	f := "text"
	if len(format) > 0 {
		f = format[0]
	}

	parsed, err := logrus.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		Log = newLogger(logrus.InfoLevel, f)
		Log.WithField("level", level).Warn("Invalid log level, defaulting to 'info'")
		return
	}

	Log = newLogger(parsed, f)
	Log.Debugf("Log level set to %s", parsed)
}

// Request returns an entry carrying the standard per-request fields.
func Request(requestID string, chatID int64) *logrus.Entry {
	return Log.WithFields(logrus.Fields{
		"request_id": requestID,
		"chat_id":    chatID,
	})
}
