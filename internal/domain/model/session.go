package model

import (
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Session holds the state of one update-handling cycle. It is created by
// intake, mutated by the dispatcher and read by senders; it is never shared
// between cycles.
type Session struct {
	ChatID           string
	LastReceivedText string
	Update           *tgbotapi.Update
}

// NewSession builds a session for the chat the update came from.
func NewSession(update *tgbotapi.Update) *Session {
	s := &Session{Update: update}
	if update != nil && update.Message != nil && update.Message.Chat != nil {
		s.ChatID = strconv.FormatInt(update.Message.Chat.ID, 10)
	}
	return s
}

// ResolveChatID returns override when set, otherwise the session chat.
func (s *Session) ResolveChatID(override string) string {
	if override != "" {
		return override
	}
	if s == nil {
		return ""
	}
	return s.ChatID
}

// Text returns the message text of the update, if any.
func (s *Session) Text() string {
	if s == nil || s.Update == nil || s.Update.Message == nil {
		return ""
	}
	return s.Update.Message.Text
}
