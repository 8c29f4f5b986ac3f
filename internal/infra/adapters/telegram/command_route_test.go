//go:build !integration

package telegram

import (
	"context"
	"errors"
	"sort"
	"strings"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"tgbot-adapter/internal/config"
	"tgbot-adapter/internal/domain/model"
	"tgbot-adapter/internal/infra/logging"
)

func newTestDispatcher(t *testing.T) (*Dispatcher, *fakeTransport) {
	t.Helper()
	tr := &fakeTransport{}
	d, err := NewDispatcher(newTestClient(t, tr), newTestTranslator(t), logging.Nop())
	if err != nil {
		t.Fatalf("NewDispatcher failed: %v", err)
	}
	return d, tr
}

func sentTexts(calls []recordedCall) []string {
	out := make([]string, 0, len(calls))
	for _, c := range calls {
		out = append(out, c.Params["text"])
	}
	return out
}

func TestDispatchPlainText(t *testing.T) {
	d, tr := newTestDispatcher(t)
	sess := &model.Session{ChatID: "42", LastReceivedText: "older"}

	for _, text := range []string{"hello there", "", " /not-a-command", "*Yeah"} {
		out, err := d.Dispatch(context.Background(), sess, text)
		if err != nil {
			t.Fatalf("Dispatch(%q) failed: %v", text, err)
		}
		if out.Kind != model.OutcomePlainText {
			t.Errorf("Dispatch(%q): expected PlainText, got %s", text, out.Kind)
		}
		if sess.LastReceivedText != text {
			t.Errorf("expected last received text %q, got %q", text, sess.LastReceivedText)
		}
	}
	if n := len(tr.Calls()); n != 0 {
		t.Errorf("expected no sends for plain text, got %d", n)
	}
}

func TestDispatchUnknownCommand(t *testing.T) {
	d, tr := newTestDispatcher(t)
	sess := &model.Session{ChatID: "42", LastReceivedText: "before"}

	out, err := d.Dispatch(context.Background(), sess, "/weather")
	if err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}
	if out.Kind != model.OutcomeUnrecognized || out.Command != "weather" {
		t.Errorf("expected Unrecognized(weather), got %+v", out)
	}
	if sess.LastReceivedText != "" {
		t.Errorf("expected last received text to be cleared, got %q", sess.LastReceivedText)
	}
	calls := tr.Calls()
	if len(calls) != 1 {
		t.Fatalf("expected exactly one send, got %d", len(calls))
	}
	if calls[0].Params["text"] != "Unknown command: weather" || calls[0].Params["chat_id"] != "42" {
		t.Errorf("unexpected notice %+v", calls[0].Params)
	}
}

func TestDispatchUnknownCommandEscapesMarkup(t *testing.T) {
	t.Run("should escape the name under HTML parse mode", func(t *testing.T) {
		d, tr := newTestDispatcher(t)
		out, err := d.Dispatch(context.Background(), &model.Session{ChatID: "42"}, "/a<b&c")
		if err != nil {
			t.Fatalf("Dispatch failed: %v", err)
		}
		if out.Command != "a<b&c" {
			t.Errorf("expected the raw name in the outcome, got %q", out.Command)
		}
		if got := tr.Calls()[0].Params["text"]; got != "Unknown command: a&lt;b&amp;c" {
			t.Errorf("unexpected notice %q", got)
		}
	})

	t.Run("should send the name verbatim without a parse mode", func(t *testing.T) {
		tr := &fakeTransport{}
		c, err := NewClient(tr, &config.BotConfig{Token: "123:abc"}, logging.Nop())
		if err != nil {
			t.Fatalf("NewClient failed: %v", err)
		}
		d, err := NewDispatcher(c, newTestTranslator(t), logging.Nop())
		if err != nil {
			t.Fatalf("NewDispatcher failed: %v", err)
		}
		if _, err := d.Dispatch(context.Background(), &model.Session{ChatID: "42"}, "/a<b"); err != nil {
			t.Fatalf("Dispatch failed: %v", err)
		}
		if got := tr.Calls()[0].Params["text"]; got != "Unknown command: a<b" {
			t.Errorf("unexpected notice %q", got)
		}
	})
}

func TestDispatchStripsOneMarker(t *testing.T) {
	d, tr := newTestDispatcher(t)
	sess := &model.Session{ChatID: "42"}

	out, err := d.Dispatch(context.Background(), sess, "//start")
	if err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}
	if out.Kind != model.OutcomeUnrecognized || out.Command != "/start" {
		t.Errorf("expected Unrecognized(/start), got %+v", out)
	}
	if got := tr.Calls()[0].Params["text"]; got != "Unknown command: /start" {
		t.Errorf("unexpected notice %q", got)
	}

	out, _ = d.Dispatch(context.Background(), sess, "/")
	if out.Kind != model.OutcomeUnrecognized || out.Command != "" {
		t.Errorf("expected Unrecognized(\"\") for a bare marker, got %+v", out)
	}
}

func TestDispatchLengthGuard(t *testing.T) {
	t.Run("should reject names over the limit without sending", func(t *testing.T) {
		d, tr := newTestDispatcher(t)
		sess := &model.Session{ChatID: "42", LastReceivedText: "before"}

		out, err := d.Dispatch(context.Background(), sess, "/"+strings.Repeat("a", 101))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if out.Kind != model.OutcomeRejected || out.Reason != model.RejectTooLong {
			t.Errorf("expected Rejected(TooLong), got %+v", out)
		}
		if sess.LastReceivedText != "" {
			t.Errorf("expected last received text to be cleared, got %q", sess.LastReceivedText)
		}
		if n := len(tr.Calls()); n != 0 {
			t.Errorf("expected zero sends, got %d", n)
		}
	})

	t.Run("should still route a name of exactly the limit", func(t *testing.T) {
		d, tr := newTestDispatcher(t)
		name := strings.Repeat("b", 100)
		out, _ := d.Dispatch(context.Background(), &model.Session{ChatID: "42"}, "/"+name)
		if out.Kind != model.OutcomeUnrecognized || out.Command != name {
			t.Errorf("expected Unrecognized, got %+v", out)
		}
		if n := len(tr.Calls()); n != 1 {
			t.Errorf("expected one notice, got %d", n)
		}
	})
}

func TestDispatchStart(t *testing.T) {
	d, tr := newTestDispatcher(t)
	sess := &model.Session{ChatID: "42", LastReceivedText: "before"}

	out, err := d.Dispatch(context.Background(), sess, "/start")
	if err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}
	if out.Kind != model.OutcomeHandled || out.Command != "start" {
		t.Errorf("expected Handled(start), got %+v", out)
	}
	if sess.LastReceivedText != "" {
		t.Errorf("expected last received text to be cleared, got %q", sess.LastReceivedText)
	}

	texts := sentTexts(tr.Calls())
	if len(texts) != 3 {
		t.Fatalf("expected three sends, got %d", len(texts))
	}
	tl := newTestTranslator(t)
	want := []string{tl.T("greeting"), tl.T("help_message"), tl.T("help_reminder")}
	for i := range want {
		if texts[i] != want[i] {
			t.Errorf("send %d: wanted %q, got %q", i, want[i], texts[i])
		}
	}
	if !strings.Contains(texts[2], "/help") {
		t.Errorf("expected reminder to mention /help, got %q", texts[2])
	}
}

func TestDispatchStartContinuesAfterFailure(t *testing.T) {
	d, tr := newTestDispatcher(t)
	tr.push(nil, errors.New("network down"))

	out, err := d.Dispatch(context.Background(), &model.Session{ChatID: "42"}, "/start")
	if err != nil {
		t.Fatalf("expected start to swallow send failures, got %v", err)
	}
	if out.Kind != model.OutcomeHandled {
		t.Errorf("expected Handled, got %s", out.Kind)
	}
	if n := len(tr.Calls()); n != 3 {
		t.Errorf("expected all three sends to be attempted, got %d", n)
	}
}

func TestDispatchHelp(t *testing.T) {
	t.Run("should return the send response", func(t *testing.T) {
		d, tr := newTestDispatcher(t)
		out, err := d.Dispatch(context.Background(), &model.Session{ChatID: "42"}, "/help")
		if err != nil {
			t.Fatalf("Dispatch failed: %v", err)
		}
		if out.Kind != model.OutcomeHandled || out.Command != "help" {
			t.Errorf("expected Handled(help), got %+v", out)
		}
		if !out.Response.OK() {
			t.Errorf("expected the send response in the outcome, got %v", out.Response)
		}
		calls := tr.Calls()
		if len(calls) != 1 || !strings.Contains(calls[0].Params["text"], "<pre>") {
			t.Errorf("expected one help message, got %+v", calls)
		}
		if calls[0].Params["parse_mode"] != "HTML" {
			t.Errorf("expected HTML parse mode, got %q", calls[0].Params["parse_mode"])
		}
	})

	t.Run("should surface the send error", func(t *testing.T) {
		d, tr := newTestDispatcher(t)
		tr.push(nil, errors.New("timeout"))
		out, err := d.Dispatch(context.Background(), &model.Session{ChatID: "42"}, "/help")
		if err == nil {
			t.Fatal("expected an error from /help")
		}
		if out.Kind != model.OutcomeHandled {
			t.Errorf("expected Handled, got %s", out.Kind)
		}
	})

	t.Run("should pass a not-ok envelope through", func(t *testing.T) {
		d, tr := newTestDispatcher(t)
		tr.push(&tgbotapi.APIResponse{Ok: false, Description: "Forbidden"}, &tgbotapi.Error{Message: "Forbidden"})
		out, err := d.Dispatch(context.Background(), &model.Session{ChatID: "42"}, "/help")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if out.Response.OK() || out.Response["description"] != "Forbidden" {
			t.Errorf("unexpected response %v", out.Response)
		}
	})
}

func TestDispatchUnknownNoticeFailureIsSwallowed(t *testing.T) {
	d, tr := newTestDispatcher(t)
	tr.push(nil, errors.New("network down"))

	out, err := d.Dispatch(context.Background(), &model.Session{ChatID: "42"}, "/nope")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if out.Kind != model.OutcomeUnrecognized {
		t.Errorf("expected Unrecognized, got %s", out.Kind)
	}
}

func TestCommandsAreClosed(t *testing.T) {
	d, _ := newTestDispatcher(t)
	names := d.Commands()
	sort.Strings(names)
	if strings.Join(names, ",") != "help,start" {
		t.Errorf("unexpected command table %v", names)
	}

	if _, err := d.Dispatch(context.Background(), nil, "/start"); err == nil {
		t.Error("expected error for nil session")
	}
}
