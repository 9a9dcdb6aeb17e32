package messaging

import (
	"context"
	"errors"
)

// Endpoint addresses a chat: an end user's session or the operator channel.
type Endpoint string

func (e Endpoint) String() string { return string(e) }

// Format selects how the transport interprets a message body.
type Format string

const (
	FormatPlain    Format = ""
	FormatMarkdown Format = "Markdown"
)

// Action is a selectable button. Data travels back verbatim in an action event.
type Action struct {
	Label string
	Data  string
}

// Transport is the outbound capability of the chat platform. Send methods
// return the platform's identifier for the message that was created.
type Transport interface {
	SendText(ctx context.Context, to Endpoint, body string, format Format) (int, error)
	SendVisual(ctx context.Context, to Endpoint, contentRef, caption string) (int, error)
	SendActions(ctx context.Context, to Endpoint, body string, format Format, rows [][]Action) (int, error)
	Acknowledge(ctx context.Context, eventID string, text string) error
}

var (
	ErrInvalidEndpoint = errors.New("invalid_endpoint")
	ErrSendFailed      = errors.New("send_failed")
)
