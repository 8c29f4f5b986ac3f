//go:build !integration

package telegram

import (
	"encoding/json"
	"sync"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"tgbot-adapter/internal/config"
	"tgbot-adapter/internal/infra/i18n"
	"tgbot-adapter/internal/infra/logging"
)

// recordedCall is one request seen by fakeTransport.
type recordedCall struct {
	Method string
	Params tgbotapi.Params
	Files  []tgbotapi.RequestFile
}

// fakeTransport records every call and answers from a queue of canned
// results; when the queue is empty it answers {"ok":true,"result":true}.
type fakeTransport struct {
	mu      sync.Mutex
	calls   []recordedCall
	results []fakeResult
}

type fakeResult struct {
	resp *tgbotapi.APIResponse
	err  error
}

func (f *fakeTransport) push(resp *tgbotapi.APIResponse, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.results = append(f.results, fakeResult{resp: resp, err: err})
}

func (f *fakeTransport) record(method string, params tgbotapi.Params, files []tgbotapi.RequestFile) (*tgbotapi.APIResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := tgbotapi.Params{}
	for k, v := range params {
		cp[k] = v
	}
	f.calls = append(f.calls, recordedCall{Method: method, Params: cp, Files: files})
	if len(f.results) == 0 {
		return &tgbotapi.APIResponse{Ok: true, Result: json.RawMessage("true")}, nil
	}
	r := f.results[0]
	f.results = f.results[1:]
	return r.resp, r.err
}

func (f *fakeTransport) MakeRequest(endpoint string, params tgbotapi.Params) (*tgbotapi.APIResponse, error) {
	return f.record(endpoint, params, nil)
}

func (f *fakeTransport) UploadFiles(endpoint string, params tgbotapi.Params, files []tgbotapi.RequestFile) (*tgbotapi.APIResponse, error) {
	return f.record(endpoint, params, files)
}

func (f *fakeTransport) Calls() []recordedCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]recordedCall, len(f.calls))
	copy(out, f.calls)
	return out
}

func newTestClient(t *testing.T, tr Transport) *Client {
	t.Helper()
	c, err := NewClient(tr, &config.BotConfig{Token: "123:abc", ParseMode: "HTML"}, logging.Nop())
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	return c
}

func newTestTranslator(t *testing.T) *i18n.Translator {
	t.Helper()
	tr, err := i18n.NewTranslator(i18n.LocalesFS, "en")
	if err != nil {
		t.Fatalf("NewTranslator failed: %v", err)
	}
	return tr
}
