package bot

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/NikitaDmitryuk/telegram-tiktok-bot/internal/logutils"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const updatesTimeout = 60

// Service is the chat transport used by the handlers.
type Service interface {
	SendMessage(chatID int64, text string) (int, error)
	ReplyText(chatID int64, replyTo int, text string) (int, error)
	EditMessage(chatID int64, messageID int, text string) error
	DeleteMessage(chatID int64, messageID int) error
	ReplyVideo(chatID int64, replyTo int, path, caption string) error
}

type UploadTimeouts struct {
	Connect time.Duration
	Read    time.Duration
	Write   time.Duration
}

type Options struct {
	Token  string
	Debug  bool
	Upload UploadTimeouts
}

// Bot talks to the Telegram Bot API. Uploads go through a separate client with
// their own timeouts.
type Bot struct {
	Api    *tgbotapi.BotAPI
	upload *tgbotapi.BotAPI
}

var _ Service = (*Bot)(nil)

func NewBot(opts Options) (*Bot, error) {
	return newBot(opts, tgbotapi.APIEndpoint)
}

func newBot(opts Options, endpoint string) (*Bot, error) {
	api, err := tgbotapi.NewBotAPIWithClient(opts.Token, endpoint, &http.Client{})
	if err != nil {
		logutils.Log.WithError(err).Error("Error creating bot")
		return nil, fmt.Errorf("error creating bot: %w", err)
	}
	api.Debug = opts.Debug

	upload, err := tgbotapi.NewBotAPIWithClient(opts.Token, endpoint, NewUploadClient(opts.Upload))
	if err != nil {
		logutils.Log.WithError(err).Error("Error creating upload client")
		return nil, fmt.Errorf("error creating upload client: %w", err)
	}
	upload.Debug = opts.Debug

	logutils.Log.Infof("Authorized on account %s", api.Self.UserName)
	return &Bot{Api: api, upload: upload}, nil
}

// Updates starts long polling.
func (b *Bot) Updates() tgbotapi.UpdatesChannel {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = updatesTimeout
	return b.Api.GetUpdatesChan(u)
}

func (b *Bot) StopReceivingUpdates() {
	b.Api.StopReceivingUpdates()
}

func (b *Bot) SendMessage(chatID int64, text string) (int, error) {
	return b.ReplyText(chatID, 0, text)
}

func (b *Bot) ReplyText(chatID int64, replyTo int, text string) (int, error) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyToMessageID = replyTo
	sent, err := b.Api.Send(msg)
	if err != nil {
		logutils.Log.WithError(err).WithField("chat_id", chatID).Errorf("Message not sent: %s", text)
		return 0, err
	}
	return sent.MessageID, nil
}

func (b *Bot) EditMessage(chatID int64, messageID int, text string) error {
	_, err := b.Api.Send(tgbotapi.NewEditMessageText(chatID, messageID, text))
	if err != nil && isNotModified(err) {
		return nil
	}
	return err
}

func (b *Bot) DeleteMessage(chatID int64, messageID int) error {
	_, err := b.Api.Request(tgbotapi.NewDeleteMessage(chatID, messageID))
	return err
}

// ReplyVideo uploads a local file as a streamable video.
func (b *Bot) ReplyVideo(chatID int64, replyTo int, path, caption string) error {
	video := tgbotapi.NewVideo(chatID, tgbotapi.FilePath(path))
	video.Caption = caption
	video.SupportsStreaming = true
	video.ReplyToMessageID = replyTo

	if _, err := b.upload.Send(video); err != nil {
		logutils.Log.WithError(err).WithField("chat_id", chatID).Error("Video upload failed")
		return redactTransportError(err)
	}
	return nil
}

// redactTransportError drops the request URL, which embeds the bot token, from
// errors returned by the HTTP client.
func redactTransportError(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return urlErr.Err
	}
	return err
}

func isNotModified(err error) bool {
	return strings.Contains(err.Error(), "message is not modified")
}

// NewUploadClient returns an HTTP client whose connections give up after the
// connect timeout, or when a single read or write stalls for longer than its timeout.
func NewUploadClient(t UploadTimeouts) *http.Client {
	return &http.Client{
		Transport: newUploadTransport(t),
	}
}
