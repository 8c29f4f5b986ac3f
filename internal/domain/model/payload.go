package model

// Bot API method names.
const (
	MethodSendMessage   = "sendMessage"
	MethodSendPhoto     = "sendPhoto"
	MethodSendDocument  = "sendDocument"
	MethodSetWebhook    = "setWebhook"
	MethodDeleteWebhook = "deleteWebhook"
	MethodGetUpdates    = "getUpdates"
)

// OutboundPayload is one of TextMessage, Photo, Document, WebhookSet,
// WebhookDelete or UpdatesQuery.
type OutboundPayload interface {
	// Method is the Bot API operation the payload is sent to.
	Method() string
	// NeedsChat reports whether the request targets a chat.
	NeedsChat() bool

	outbound()
}

type TextMessage struct {
	Text      string
	ParseMode string // "" sends plain text
}

// Photo uploads the local file at Path.
type Photo struct {
	Path    string
	Caption string
}

// Document uploads the local file at Path.
type Document struct {
	Path    string
	Caption string
}

type WebhookSet struct {
	URL         string
	SecretToken string
}

type WebhookDelete struct{}

type UpdatesQuery struct{}

func (TextMessage) Method() string   { return MethodSendMessage }
func (Photo) Method() string         { return MethodSendPhoto }
func (Document) Method() string      { return MethodSendDocument }
func (WebhookSet) Method() string    { return MethodSetWebhook }
func (WebhookDelete) Method() string { return MethodDeleteWebhook }
func (UpdatesQuery) Method() string  { return MethodGetUpdates }

func (TextMessage) NeedsChat() bool   { return true }
func (Photo) NeedsChat() bool         { return true }
func (Document) NeedsChat() bool      { return true }
func (WebhookSet) NeedsChat() bool    { return false }
func (WebhookDelete) NeedsChat() bool { return false }
func (UpdatesQuery) NeedsChat() bool  { return false }

func (TextMessage) outbound()   {}
func (Photo) outbound()         {}
func (Document) outbound()      {}
func (WebhookSet) outbound()    {}
func (WebhookDelete) outbound() {}
func (UpdatesQuery) outbound()  {}

// Response is the decoded Bot API envelope, e.g. {"ok": true, "result": {...}}.
type Response map[string]any

// OK reports the envelope's "ok" flag.
func (r Response) OK() bool {
	ok, _ := r["ok"].(bool)
	return ok
}
