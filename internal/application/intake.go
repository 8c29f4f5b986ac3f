package application

import (
	"encoding/json"
	"fmt"
	"io"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"tgbot-adapter/internal/domain"
)

// MaxUpdateBytes bounds a single inbound update read from a stream.
const MaxUpdateBytes = 1 << 20

// DecodeUpdate parses one Telegram update. It requires message.chat.id and a
// non-empty message.text; anything else is reported as domain.ErrDecode.
func DecodeUpdate(raw []byte) (*tgbotapi.Update, error) {
	var up tgbotapi.Update
	if err := json.Unmarshal(raw, &up); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrDecode, err)
	}
	switch {
	case up.Message == nil:
		return nil, fmt.Errorf("%w: missing message", domain.ErrDecode)
	case up.Message.Chat == nil || up.Message.Chat.ID == 0:
		return nil, fmt.Errorf("%w: missing message.chat.id", domain.ErrDecode)
	case up.Message.Text == "":
		return nil, fmt.Errorf("%w: missing message.text", domain.ErrDecode)
	}
	return &up, nil
}

// ReadUpdate reads and decodes one update from r.
func ReadUpdate(r io.Reader) (*tgbotapi.Update, error) {
	raw, err := io.ReadAll(io.LimitReader(r, MaxUpdateBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read update: %w", err)
	}
	if len(raw) > MaxUpdateBytes {
		return nil, fmt.Errorf("%w: update larger than %d bytes", domain.ErrDecode, MaxUpdateBytes)
	}
	return DecodeUpdate(raw)
}
