// File: internal/domain/ports/adapter/telegram.go
package adapter

import (
	"context"

	"tgbot-adapter/internal/domain/model"
)

// MessageSender sends a text message to chatID, or to the session chat when
// chatID is empty.
type MessageSender interface {
	SendMessage(ctx context.Context, sess *model.Session, text string, chatID string) (model.Response, error)
}

// CommandDispatcher routes one inbound text for a session.
type CommandDispatcher interface {
	Dispatch(ctx context.Context, sess *model.Session, text string) (model.Outcome, error)
}
