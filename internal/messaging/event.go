package messaging

// EventKind classifies inbound traffic.
type EventKind string

const (
	EventStart         EventKind = "start"
	EventText          EventKind = "text"
	EventAction        EventKind = "action"
	EventOperatorReply EventKind = "operator_reply"
)

// Sender is the profile the platform attaches to an inbound event.
type Sender struct {
	FirstName string
	LastName  string
	Username  string
}

// Event is one inbound update.
//
// Payload holds the start argument, the text body, the action data, or the
// operator's reply body depending on Kind. ID is the platform's identifier
// for acknowledging actions; RepliedTo is only set for operator replies.
type Event struct {
	ID        string
	Kind      EventKind
	Origin    Endpoint
	From      Sender
	Payload   string
	RepliedTo int
}
