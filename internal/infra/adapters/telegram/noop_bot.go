package telegram

import (
	"encoding/json"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

var _ Transport = (*NoopTransport)(nil)

// NoopTransport implements Transport for local/dev runs.
// It logs requests instead of calling Telegram and always answers {"ok":true,"result":true}.
type NoopTransport struct {
	log *zerolog.Logger
}

func NewNoopTransport(logger *zerolog.Logger) *NoopTransport {
	return &NoopTransport{log: logger}
}

func (t *NoopTransport) MakeRequest(endpoint string, params tgbotapi.Params) (*tgbotapi.APIResponse, error) {
	t.log.Info().Str("method", endpoint).Interface("params", params).Msg("[noop-telegram] request")
	return okResponse(), nil
}

func (t *NoopTransport) UploadFiles(endpoint string, params tgbotapi.Params, files []tgbotapi.RequestFile) (*tgbotapi.APIResponse, error) {
	names := make([]string, 0, len(files))
	for _, f := range files {
		names = append(names, f.Name)
	}
	t.log.Info().Str("method", endpoint).Interface("params", params).Strs("files", names).Msg("[noop-telegram] upload")
	return okResponse(), nil
}

func okResponse() *tgbotapi.APIResponse {
	return &tgbotapi.APIResponse{Ok: true, Result: json.RawMessage("true")}
}
