package handlers

import (
	"github.com/NikitaDmitryuk/telegram-tiktok-bot/internal/logutils"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"
)

func LoggingMiddleware(update *tgbotapi.Update) {
	if update.Message == nil {
		return
	}
	fields := logrus.Fields{
		"chat_id": update.Message.Chat.ID,
		"text":    update.Message.Text,
	}
	if update.Message.From != nil {
		fields["username"] = update.Message.From.UserName
	}
	logutils.Log.WithFields(fields).Info("Received a new message")
}
