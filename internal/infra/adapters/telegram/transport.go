package telegram

import (
	"errors"
	"net/http"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"tgbot-adapter/internal/config"
	"tgbot-adapter/internal/domain"
)

// Transport issues one Bot API call: POST <endpoint>/<method> with the given
// fields, multipart when files are attached. *tgbotapi.BotAPI satisfies it.
type Transport interface {
	MakeRequest(endpoint string, params tgbotapi.Params) (*tgbotapi.APIResponse, error)
	UploadFiles(endpoint string, params tgbotapi.Params, files []tgbotapi.RequestFile) (*tgbotapi.APIResponse, error)
}

var _ Transport = (*tgbotapi.BotAPI)(nil)

// NewTransport builds a tgbotapi client for cfg without calling getMe, so
// construction never touches the network.
func NewTransport(cfg *config.BotConfig) (*tgbotapi.BotAPI, error) {
	if cfg == nil {
		return nil, errors.New("bot config is nil")
	}
	if cfg.Token == "" {
		return nil, domain.ErrEmptyToken
	}
	endpoint := cfg.APIEndpoint
	if endpoint == "" {
		endpoint = config.DefaultAPIEndpoint
	}

	bot := &tgbotapi.BotAPI{
		Token:  cfg.Token,
		Buffer: 100,
		Client: &http.Client{Timeout: cfg.Timeout},
	}
	bot.SetAPIEndpoint(endpoint)
	return bot, nil
}
