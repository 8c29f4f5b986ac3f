package telegram

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"tgbot-adapter/internal/config"
	"tgbot-adapter/internal/domain"
	"tgbot-adapter/internal/domain/model"
	"tgbot-adapter/internal/domain/ports/adapter"
	"tgbot-adapter/internal/infra/logging"
	"tgbot-adapter/internal/infra/metrics"
)

var _ adapter.MessageSender = (*Client)(nil)

// Client is the single outbound path to the Bot API. Every payload kind is
// built into a field set here and submitted through the Transport once.
// Client keeps no per-chat state and is safe for concurrent use.
type Client struct {
	transport Transport
	token     string
	endpoint  string
	parseMode string
	log       *zerolog.Logger
}

func NewClient(transport Transport, cfg *config.BotConfig, logger *zerolog.Logger) (*Client, error) {
	if transport == nil {
		return nil, domain.ErrNilTransport
	}
	if cfg == nil {
		return nil, errors.New("bot config is nil")
	}
	if logger == nil {
		logger = logging.Nop()
	}
	endpoint := cfg.APIEndpoint
	if endpoint == "" {
		endpoint = config.DefaultAPIEndpoint
	}
	return &Client{
		transport: transport,
		token:     cfg.Token,
		endpoint:  endpoint,
		parseMode: cfg.ParseMode,
		log:       logger,
	}, nil
}

// ParseMode is the parse mode SendMessage applies.
func (c *Client) ParseMode() string { return c.parseMode }

// BaseURL is the method-less endpoint for this bot, e.g. https://api.telegram.org/bot<token>/.
func (c *Client) BaseURL() string {
	return fmt.Sprintf(c.endpoint, c.token, "")
}

// Send builds the request for p and submits it. Chat-bearing payloads go to
// chatID when it is non-empty, otherwise to the session chat.
//
// A decoded platform envelope is returned as-is, including {"ok": false}
// replies. Only failures to complete the call produce a *domain.RequestError.
func (c *Client) Send(ctx context.Context, sess *model.Session, p model.OutboundPayload, chatID string) (model.Response, error) {
	if p == nil {
		return nil, errors.New("telegram: nil payload")
	}
	method := p.Method()

	target := ""
	if p.NeedsChat() {
		target = sess.ResolveChatID(chatID)
		if target == "" {
			return nil, fmt.Errorf("telegram %s: %w", method, domain.ErrMissingChatID)
		}
	}

	params, files, err := buildRequest(p, target)
	if err != nil {
		return nil, &domain.RequestError{Method: method, Err: err}
	}
	if err := ctx.Err(); err != nil {
		return nil, &domain.RequestError{Method: method, Err: err}
	}

	l := logging.With(ctx, c.log).With().
		Str("request_id", ulid.Make().String()).
		Str("method", method).
		Str("target_chat", target).
		Logger()
	defer logging.TraceDuration(&l, "Client.Send")()

	start := time.Now()
	var apiResp *tgbotapi.APIResponse
	if len(files) > 0 {
		apiResp, err = c.transport.UploadFiles(method, params, files)
	} else {
		apiResp, err = c.transport.MakeRequest(method, params)
	}
	elapsed := time.Since(start).Milliseconds()

	resp, err := normalize(method, apiResp, c.scrub(err))
	if err != nil {
		metrics.ObserveAPIRequest(method, "failed", elapsed)
		l.Error().Err(err).Int64("latency_ms", elapsed).Msg("telegram request failed")
		return nil, err
	}
	if !resp.OK() {
		metrics.ObserveAPIRequest(method, "not_ok", elapsed)
		l.Warn().Interface("description", resp["description"]).Int64("latency_ms", elapsed).Msg("telegram replied not ok")
		return resp, nil
	}
	metrics.ObserveAPIRequest(method, "ok", elapsed)
	l.Debug().Int64("latency_ms", elapsed).Msg("telegram request done")
	return resp, nil
}

func buildRequest(p model.OutboundPayload, chatID string) (tgbotapi.Params, []tgbotapi.RequestFile, error) {
	params := tgbotapi.Params{}
	switch v := p.(type) {
	case model.TextMessage:
		params["chat_id"] = chatID
		params["text"] = v.Text
		params.AddNonEmpty("parse_mode", v.ParseMode)
		return params, nil, nil
	case model.Photo:
		return uploadRequest(params, chatID, "photo", v.Path, v.Caption)
	case model.Document:
		return uploadRequest(params, chatID, "document", v.Path, v.Caption)
	case model.WebhookSet:
		params["url"] = v.URL
		params.AddNonEmpty("secret_token", v.SecretToken)
		return params, nil, nil
	case model.WebhookDelete, model.UpdatesQuery:
		return params, nil, nil
	default:
		return nil, nil, fmt.Errorf("unsupported payload %T", p)
	}
}

func uploadRequest(params tgbotapi.Params, chatID, field, path, caption string) (tgbotapi.Params, []tgbotapi.RequestFile, error) {
	if path == "" {
		return nil, nil, fmt.Errorf("%s: empty file path", field)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: resolve %q: %w", field, path, err)
	}
	params["chat_id"] = chatID
	params.AddNonEmpty("caption", caption)
	files := []tgbotapi.RequestFile{{Name: field, Data: tgbotapi.FilePath(abs)}}
	return params, files, nil
}

const redactedToken = "<redacted>"

// scrub removes the bot token from transport errors. net/http reports
// failures as *url.Error carrying the full request URL, token included.
func (c *Client) scrub(err error) error {
	if err == nil || c.token == "" {
		return err
	}
	var apiErr *tgbotapi.Error
	if errors.As(err, &apiErr) {
		return err
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) && err == error(urlErr) {
		cp := *urlErr
		cp.URL = strings.ReplaceAll(cp.URL, c.token, redactedToken)
		if !strings.Contains(cp.Error(), c.token) {
			return &cp
		}
	}
	if !strings.Contains(err.Error(), c.token) {
		return err
	}
	return &scrubbedError{msg: strings.ReplaceAll(err.Error(), c.token, redactedToken), err: err}
}

// scrubbedError keeps the cause for errors.Is/As but never prints it.
type scrubbedError struct {
	msg string
	err error
}

func (e *scrubbedError) Error() string { return e.msg }
func (e *scrubbedError) Unwrap() error { return e.err }

// normalize turns the transport result into a decoded envelope. tgbotapi
// reports {"ok": false} replies as *tgbotapi.Error next to the decoded
// response; those are platform answers, not transport failures.
func normalize(method string, apiResp *tgbotapi.APIResponse, err error) (model.Response, error) {
	if err != nil {
		var apiErr *tgbotapi.Error
		if !errors.As(err, &apiErr) || apiResp == nil {
			return nil, &domain.RequestError{Method: method, Err: err}
		}
	}
	if apiResp == nil {
		return nil, &domain.RequestError{Method: method, Err: errors.New("empty response")}
	}

	raw, err := json.Marshal(apiResp)
	if err != nil {
		return nil, &domain.RequestError{Method: method, Err: fmt.Errorf("encode response: %w", err)}
	}
	var resp model.Response
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, &domain.RequestError{Method: method, Err: fmt.Errorf("decode response: %w", err)}
	}
	return resp, nil
}

// SendMessage sends text with the configured parse mode.
func (c *Client) SendMessage(ctx context.Context, sess *model.Session, text string, chatID string) (model.Response, error) {
	return c.Send(ctx, sess, model.TextMessage{Text: text, ParseMode: c.parseMode}, chatID)
}

func (c *Client) SendPhoto(ctx context.Context, sess *model.Session, path, caption, chatID string) (model.Response, error) {
	return c.Send(ctx, sess, model.Photo{Path: path, Caption: caption}, chatID)
}

func (c *Client) SendDocument(ctx context.Context, sess *model.Session, path, caption, chatID string) (model.Response, error) {
	return c.Send(ctx, sess, model.Document{Path: path, Caption: caption}, chatID)
}

func (c *Client) SetWebhook(ctx context.Context, url, secretToken string) (model.Response, error) {
	return c.Send(ctx, nil, model.WebhookSet{URL: url, SecretToken: secretToken}, "")
}

func (c *Client) DeleteWebhook(ctx context.Context) (model.Response, error) {
	return c.Send(ctx, nil, model.WebhookDelete{}, "")
}

func (c *Client) GetUpdates(ctx context.Context) (model.Response, error) {
	return c.Send(ctx, nil, model.UpdatesQuery{}, "")
}
