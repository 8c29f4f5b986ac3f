package telegram

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"

	"github.com/rs/zerolog"

	"tgbot-adapter/internal/domain/model"
	"tgbot-adapter/internal/domain/ports/adapter"
	"tgbot-adapter/internal/infra/i18n"
	"tgbot-adapter/internal/infra/logging"
	"tgbot-adapter/internal/infra/metrics"
)

const commandMarker = "/"

var _ adapter.CommandDispatcher = (*Dispatcher)(nil)

type commandHandler func(ctx context.Context, sess *model.Session) (model.Response, error)

// Dispatcher classifies inbound text and routes commands to a fixed table of
// handlers. It holds no per-chat state.
type Dispatcher struct {
	sender     adapter.MessageSender
	translator *i18n.Translator
	log        *zerolog.Logger
	routes     map[string]commandHandler
	escapeHTML bool
}

type parseModer interface {
	ParseMode() string
}

func NewDispatcher(sender adapter.MessageSender, translator *i18n.Translator, logger *zerolog.Logger) (*Dispatcher, error) {
	if sender == nil {
		return nil, errors.New("message sender is nil")
	}
	if translator == nil {
		return nil, errors.New("translator is nil")
	}
	if logger == nil {
		logger = logging.Nop()
	}
	d := &Dispatcher{sender: sender, translator: translator, log: logger}
	d.routes = d.commandRoutes()
	if pm, ok := sender.(parseModer); ok {
		d.escapeHTML = strings.EqualFold(pm.ParseMode(), "HTML")
	}
	return d, nil
}

// commandRoutes defines all available bot commands and their handlers.
func (d *Dispatcher) commandRoutes() map[string]commandHandler {
	return map[string]commandHandler{
		"start": d.handleStartCommand,
		"help":  d.handleHelpCommand,
	}
}

// Commands lists the registered command names.
func (d *Dispatcher) Commands() []string {
	names := make([]string, 0, len(d.routes))
	for name := range d.routes {
		names = append(names, name)
	}
	return names
}

// Dispatch routes text for sess. Plain text is stored as the session's last
// received text. A command clears it, then runs its handler, is answered with
// an "unknown command" notice, or is dropped when the name is too long.
// Only a handler's own error is returned.
func (d *Dispatcher) Dispatch(ctx context.Context, sess *model.Session, text string) (model.Outcome, error) {
	if sess == nil {
		return model.Outcome{}, errors.New("dispatch: nil session")
	}
	l := logging.With(ctx, d.log)

	if !strings.HasPrefix(text, commandMarker) {
		sess.LastReceivedText = text
		metrics.IncCommand("", model.OutcomePlainText.String())
		return model.PlainText(), nil
	}

	sess.LastReceivedText = ""
	name := strings.TrimPrefix(text, commandMarker)

	if len(name) > model.MaxCommandLength {
		metrics.IncCommand("", model.OutcomeRejected.String())
		l.Debug().Int("name_len", len(name)).Msg("command name too long, ignored")
		return model.Rejected(model.RejectTooLong), nil
	}

	handler, ok := d.routes[name]
	if !ok {
		metrics.IncCommand("unknown", model.OutcomeUnrecognized.String())
		shown := name
		if d.escapeHTML {
			shown = html.EscapeString(name)
		}
		if _, err := d.sender.SendMessage(ctx, sess, d.translator.T("unknown_command", shown), ""); err != nil {
			l.Warn().Err(err).Msg("failed to send unknown command notice")
		}
		return model.Unrecognized(name), nil
	}

	metrics.IncCommand(name, model.OutcomeHandled.String())
	resp, err := handler(ctx, sess)
	if err != nil {
		return model.Handled(name, resp), fmt.Errorf("/%s: %w", name, err)
	}
	return model.Handled(name, resp), nil
}

// handleStartCommand greets the user and shows the help text. The three
// messages are sent independently; a failed one does not stop the rest.
func (d *Dispatcher) handleStartCommand(ctx context.Context, sess *model.Session) (model.Response, error) {
	for _, key := range []string{"greeting", "help_message", "help_reminder"} {
		if _, err := d.sender.SendMessage(ctx, sess, d.translator.T(key), ""); err != nil {
			logging.With(ctx, d.log).Warn().Err(err).Str("text_key", key).Msg("start: send failed")
		}
	}
	return nil, nil
}

// handleHelpCommand sends the help text.
func (d *Dispatcher) handleHelpCommand(ctx context.Context, sess *model.Session) (model.Response, error) {
	return d.sender.SendMessage(ctx, sess, d.translator.T("help_message"), "")
}
