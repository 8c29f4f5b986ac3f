package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"tgbot-adapter/internal/domain/model"
	"tgbot-adapter/internal/domain/ports/adapter"
	"tgbot-adapter/internal/infra/logging"
)

// Options configures NewBotFacade.
type Options struct {
	// EagerIntake runs one update cycle from Input during construction.
	EagerIntake bool
	// Input is read when EagerIntake is set; defaults to os.Stdin.
	Input io.Reader
}

// BotFacade runs update cycles: intake, then dispatch. Each cycle gets its
// own Session; the facade itself carries no per-chat state besides the
// result of an eager intake.
type BotFacade struct {
	dispatcher adapter.CommandDispatcher
	log        *zerolog.Logger

	current *model.Session
	outcome model.Outcome
}

func NewBotFacade(ctx context.Context, opts Options, dispatcher adapter.CommandDispatcher, logger *zerolog.Logger) (*BotFacade, error) {
	if dispatcher == nil {
		return nil, errors.New("command dispatcher is nil")
	}
	if logger == nil {
		logger = logging.Nop()
	}
	b := &BotFacade{dispatcher: dispatcher, log: logger}

	if opts.EagerIntake {
		in := opts.Input
		if in == nil {
			in = os.Stdin
		}
		sess, out, err := b.Intake(ctx, in)
		if sess == nil {
			return nil, fmt.Errorf("eager intake: %w", err)
		}
		// a failed send inside a handler is already logged by Dispatch
		b.current, b.outcome = sess, out
	}
	return b, nil
}

// Current returns the session produced by eager intake, or nil.
func (b *BotFacade) Current() *model.Session { return b.current }

// CurrentOutcome returns how the eager-intake text was routed.
func (b *BotFacade) CurrentOutcome() model.Outcome { return b.outcome }

// Decode parses raw into a fresh session. It does not dispatch.
func (b *BotFacade) Decode(raw []byte) (*model.Session, error) {
	up, err := DecodeUpdate(raw)
	if err != nil {
		return nil, err
	}
	return model.NewSession(up), nil
}

// Dispatch routes the session's message text. A trace id is attached to ctx
// when the caller has not set one.
func (b *BotFacade) Dispatch(ctx context.Context, sess *model.Session) (model.Outcome, error) {
	if sess == nil {
		return model.Outcome{}, errors.New("dispatch: nil session")
	}
	if logging.TraceID(ctx) == "" {
		ctx = logging.WithTraceID(ctx, uuid.NewString())
	}
	ctx = logging.WithChatID(ctx, sess.ChatID)

	out, err := b.dispatcher.Dispatch(ctx, sess, sess.Text())
	l := logging.With(ctx, b.log)
	if err != nil {
		l.Error().Err(err).Str("outcome", out.Kind.String()).Str("command", out.Command).Msg("update handling failed")
		return out, err
	}
	l.Debug().Str("outcome", out.Kind.String()).Str("command", out.Command).Msg("update handled")
	return out, nil
}

// HandleUpdate runs one full cycle for raw.
func (b *BotFacade) HandleUpdate(ctx context.Context, raw []byte) (*model.Session, model.Outcome, error) {
	sess, err := b.Decode(raw)
	if err != nil {
		return nil, model.Outcome{}, err
	}
	out, err := b.Dispatch(ctx, sess)
	return sess, out, err
}

// Intake reads one update from r and runs its cycle.
func (b *BotFacade) Intake(ctx context.Context, r io.Reader) (*model.Session, model.Outcome, error) {
	up, err := ReadUpdate(r)
	if err != nil {
		return nil, model.Outcome{}, err
	}
	sess := model.NewSession(up)
	out, err := b.Dispatch(ctx, sess)
	return sess, out, err
}
