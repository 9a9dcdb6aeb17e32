// Package correlation maps end-user chats to the operator notifications sent
// on their behalf, so an operator reply can be routed back without naming a
// destination.
//
// The operator channel is one shared stream. A reply carries only the id of
// the message being replied to, so the table keeps a reverse index from
// notification message id to chat and falls back to message-id adjacency when
// the operator replies to a message that was never linked.
package correlation

import (
	"errors"
	"sync"

	"github.com/hashicorp/golang-lru/v2/simplelru"
	"github.com/smallbiznis/orderrelay/internal/messaging"
)

const (
	DefaultTolerance = 2
	DefaultCapacity  = 10_000
)

// Match reports how ResolveByReply found its answer.
type Match string

const (
	MatchNone      Match = "none"
	MatchExact     Match = "exact"
	MatchProximity Match = "proximity"
)

type Options struct {
	// Tolerance is the largest message-id distance accepted by the proximity fallback.
	Tolerance int
	// Capacity bounds each index; the least recently used entry is evicted first.
	Capacity int
}

// Table is safe for concurrent use. All state lives behind mu and no method
// performs I/O.
type Table struct {
	mu        sync.Mutex
	forward   *simplelru.LRU[messaging.Endpoint, int]
	reverse   *simplelru.LRU[int, messaging.Endpoint]
	tolerance int
}

func New(opts Options) (*Table, error) {
	if opts.Capacity <= 0 {
		return nil, errors.New("correlation capacity must be positive")
	}
	if opts.Tolerance < 0 {
		return nil, errors.New("correlation tolerance cannot be negative")
	}
	forward, err := simplelru.NewLRU[messaging.Endpoint, int](opts.Capacity, nil)
	if err != nil {
		return nil, err
	}
	reverse, err := simplelru.NewLRU[int, messaging.Endpoint](opts.Capacity, nil)
	if err != nil {
		return nil, err
	}
	return &Table{
		forward:   forward,
		reverse:   reverse,
		tolerance: opts.Tolerance,
	}, nil
}

// Link points endpoint at messageID (replacing any previous pointer) and
// records messageID -> endpoint. Earlier reverse entries for the same
// endpoint stay until capacity evicts them.
func (t *Table) Link(endpoint messaging.Endpoint, messageID int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.forward.Add(endpoint, messageID)
	t.reverse.Add(messageID, endpoint)
}

// LinkFollowUp records messageID -> endpoint for a message sent after the
// endpoint's notification. The forward pointer is left alone.
func (t *Table) LinkFollowUp(endpoint messaging.Endpoint, messageID int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.reverse.Add(messageID, endpoint)
}

// ResolveDirect returns the latest notification linked to endpoint.
func (t *Table) ResolveDirect(endpoint messaging.Endpoint) (int, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.forward.Get(endpoint)
}

// ResolveByReply finds the chat behind repliedTo. An exact reverse hit wins.
// Otherwise every entry within the tolerance is a candidate: a notification
// sent before repliedTo beats one sent after it (follow-ups land after their
// notification), then the smaller distance wins. Message ids are unique, so
// the ordering never ties.
func (t *Table) ResolveByReply(repliedTo int) (messaging.Endpoint, Match) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if endpoint, ok := t.reverse.Get(repliedTo); ok {
		return endpoint, MatchExact
	}

	var (
		bestID    int
		found     bool
		bestAfter bool
		bestDist  int
	)
	for _, id := range t.reverse.Keys() {
		dist := id - repliedTo
		after := dist > 0
		if dist < 0 {
			dist = -dist
		}
		if dist > t.tolerance {
			continue
		}
		if found && !better(after, dist, bestAfter, bestDist) {
			continue
		}
		bestID, bestAfter, bestDist, found = id, after, dist, true
	}
	if !found {
		return "", MatchNone
	}

	endpoint, _ := t.reverse.Get(bestID)
	return endpoint, MatchProximity
}

func better(after bool, dist int, bestAfter bool, bestDist int) bool {
	if after != bestAfter {
		return !after
	}
	return dist < bestDist
}

// Len returns the number of reverse entries currently held.
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.reverse.Len()
}
