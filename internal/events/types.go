package events

import "time"

// ProtocolVersion is the wire protocol version spoken over the daemon
// socket. Bump it when Message gains or loses fields in a breaking way.
const ProtocolVersion = 1

// EventType indicates what kind of change occurred
type EventType string

const (
	// EventBacklogChanged signals that backlog data for a project was
	// mutated and listeners should refresh.
	EventBacklogChanged EventType = "backlog_changed"
	// EventSecurityAlert signals an isolation violation or conflict was
	// recorded in the audit log. Never batched; sent immediately.
	EventSecurityAlert EventType = "security_alert"
	EventPing          EventType = "ping"
	EventPong          EventType = "pong"
)

// Event represents a backlog change notification
type Event struct {
	Type          EventType
	ProjectID     int64     // For filtering - which project was modified; 0 = unscoped
	CorrelationID string    // Set by the publisher so a change can be traced to its origin
	Timestamp     time.Time // When the event occurred
	SequenceID    int64     // Monotonically increasing sequence number for ordering
}

// SubscribeMessage is sent by clients to subscribe to specific project updates
type SubscribeMessage struct {
	ProjectID int64 // 0 = all projects, >0 = specific project
}

// Message wraps events and control messages for wire protocol
type Message struct {
	Version   int               // ProtocolVersion of the sender
	Type      string            // "event", "subscribe", "ping", "pong"
	Event     *Event            `json:",omitempty"`
	Subscribe *SubscribeMessage `json:",omitempty"`
}
