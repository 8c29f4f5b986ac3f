package domain

import (
	"errors"
	"fmt"
)

var (
	// Intake and request errors
	ErrDecode        = errors.New("malformed update")
	ErrMissingChatID = errors.New("no chat id to send to")
	ErrEmptyToken    = errors.New("bot token is empty")
	ErrNilTransport  = errors.New("transport is nil")
	ErrQueueFull     = errors.New("worker queue full")
)

// RequestError is returned when an outbound call to the Bot API could not be
// completed: network failure, unreadable response, or a missing local file.
type RequestError struct {
	Method string
	Err    error
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("telegram %s: %v", e.Method, e.Err)
}

func (e *RequestError) Unwrap() error { return e.Err }
