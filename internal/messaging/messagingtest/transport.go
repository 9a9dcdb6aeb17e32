// Package messagingtest provides an in-memory messaging.Transport for tests.
package messagingtest

import (
	"context"
	"errors"
	"sync"

	"github.com/smallbiznis/orderrelay/internal/messaging"
)

type SendKind string

const (
	SendText    SendKind = "text"
	SendVisual  SendKind = "visual"
	SendActions SendKind = "actions"
)

// Sent is one message that reached the fake platform.
type Sent struct {
	ID         int
	Kind       SendKind
	To         messaging.Endpoint
	Body       string
	ContentRef string
	Format     messaging.Format
	Rows       [][]messaging.Action
}

type Ack struct {
	EventID string
	Text    string
}

// ErrRejected is returned for sends refused by Fail.
var ErrRejected = errors.New("rejected by fake transport")

// Transport records every send. Message ids are assigned per endpoint and
// start at 1000, the way chat platforms number messages per chat. A failed
// send does not consume an id.
type Transport struct {
	// Fail, when set, rejects matching sends with ErrRejected.
	Fail func(s Sent) bool

	mu     sync.Mutex
	nextID map[messaging.Endpoint]int
	sent   []Sent
	acks   []Ack
}

func New() *Transport {
	return &Transport{nextID: make(map[messaging.Endpoint]int)}
}

func (t *Transport) SendText(_ context.Context, to messaging.Endpoint, body string, format messaging.Format) (int, error) {
	return t.record(Sent{Kind: SendText, To: to, Body: body, Format: format})
}

func (t *Transport) SendVisual(_ context.Context, to messaging.Endpoint, contentRef, caption string) (int, error) {
	return t.record(Sent{Kind: SendVisual, To: to, Body: caption, ContentRef: contentRef})
}

func (t *Transport) SendActions(_ context.Context, to messaging.Endpoint, body string, format messaging.Format, rows [][]messaging.Action) (int, error) {
	return t.record(Sent{Kind: SendActions, To: to, Body: body, Format: format, Rows: rows})
}

func (t *Transport) Acknowledge(_ context.Context, eventID string, text string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.acks = append(t.acks, Ack{EventID: eventID, Text: text})
	return nil
}

func (t *Transport) record(s Sent) (int, error) {
	if s.To == "" {
		return 0, messaging.ErrInvalidEndpoint
	}
	if t.Fail != nil && t.Fail(s) {
		return 0, ErrRejected
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.nextID == nil {
		t.nextID = make(map[messaging.Endpoint]int)
	}
	id, ok := t.nextID[s.To]
	if !ok {
		id = 1000
	}
	t.nextID[s.To] = id + 1
	s.ID = id
	t.sent = append(t.sent, s)
	return id, nil
}

// Sent returns every successful send in order.
func (t *Transport) Sent() []Sent {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]Sent(nil), t.sent...)
}

// SentTo returns the successful sends addressed to one endpoint.
func (t *Transport) SentTo(to messaging.Endpoint) []Sent {
	t.mu.Lock()
	defer t.mu.Unlock()
	var out []Sent
	for _, s := range t.sent {
		if s.To == to {
			out = append(out, s)
		}
	}
	return out
}

func (t *Transport) Acks() []Ack {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]Ack(nil), t.acks...)
}

var _ messaging.Transport = (*Transport)(nil)
