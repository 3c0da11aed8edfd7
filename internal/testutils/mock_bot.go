package testutils

import (
	"sync"

	"github.com/NikitaDmitryuk/telegram-tiktok-bot/internal/utils"
)

// MockMessage captures a single text message sent by MockBot.
type MockMessage struct {
	ChatID    int64
	MessageID int
	ReplyTo   int
	Text      string
}

// MockEdit captures a single edit of a message.
type MockEdit struct {
	ChatID    int64
	MessageID int
	Text      string
}

// MockVideo captures a single uploaded video.
type MockVideo struct {
	ChatID    int64
	ReplyTo   int
	Path      string
	Caption   string
	FileFound bool
	Size      int64
}

// MockBot implements bot.Service for testing. It is safe for concurrent use.
type MockBot struct {
	mu sync.Mutex

	SentMessages    []MockMessage
	Edits           []MockEdit
	DeletedMessages []int
	Videos          []MockVideo

	// Errors returned by the corresponding calls when set.
	SendMessageError error
	EditError        error
	DeleteError      error
	ReplyVideoError  error

	nextID int
}

func (m *MockBot) SendMessage(chatID int64, text string) (int, error) {
	return m.ReplyText(chatID, 0, text)
}

func (m *MockBot) ReplyText(chatID int64, replyTo int, text string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.SendMessageError != nil {
		return 0, m.SendMessageError
	}
	m.nextID++
	m.SentMessages = append(m.SentMessages, MockMessage{
		ChatID:    chatID,
		MessageID: m.nextID,
		ReplyTo:   replyTo,
		Text:      text,
	})
	return m.nextID, nil
}

func (m *MockBot) EditMessage(chatID int64, messageID int, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.EditError != nil {
		return m.EditError
	}
	m.Edits = append(m.Edits, MockEdit{ChatID: chatID, MessageID: messageID, Text: text})
	return nil
}

func (m *MockBot) DeleteMessage(_ int64, messageID int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.DeleteError != nil {
		return m.DeleteError
	}
	m.DeletedMessages = append(m.DeletedMessages, messageID)
	return nil
}

// ReplyVideo records whether the file was on disk at upload time.
func (m *MockBot) ReplyVideo(chatID int64, replyTo int, path, caption string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ReplyVideoError != nil {
		return m.ReplyVideoError
	}
	size, _ := utils.FileSize(path)
	m.Videos = append(m.Videos, MockVideo{
		ChatID:    chatID,
		ReplyTo:   replyTo,
		Path:      path,
		Caption:   caption,
		FileFound: utils.FileExists(path),
		Size:      size,
	})
	return nil
}

// GetLastMessage returns the most recently sent message, or nil if none.
func (m *MockBot) GetLastMessage() *MockMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.SentMessages) == 0 {
		return nil
	}
	msg := m.SentMessages[len(m.SentMessages)-1]
	return &msg
}

// EditTexts returns the texts of all edits in order.
func (m *MockBot) EditTexts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	texts := make([]string, 0, len(m.Edits))
	for _, e := range m.Edits {
		texts = append(texts, e.Text)
	}
	return texts
}

// MessageTexts returns the texts of all sent messages in order.
func (m *MockBot) MessageTexts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	texts := make([]string, 0, len(m.SentMessages))
	for _, msg := range m.SentMessages {
		texts = append(texts, msg.Text)
	}
	return texts
}

func (m *MockBot) VideoCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Videos)
}

// ClearMessages resets everything captured so far.
func (m *MockBot) ClearMessages() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SentMessages = nil
	m.Edits = nil
	m.DeletedMessages = nil
	m.Videos = nil
}
