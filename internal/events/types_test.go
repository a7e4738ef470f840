package events

import (
	"encoding/json"
	"testing"
	"time"
)

// ============================================================================
// Constants Tests
// ============================================================================

func TestProtocolVersion(t *testing.T) {
	if ProtocolVersion != 1 {
		t.Errorf("Expected ProtocolVersion to be 1, got %d", ProtocolVersion)
	}
}

func TestEventTypes(t *testing.T) {
	tests := []struct {
		eventType EventType
		expected  string
	}{
		{EventBacklogChanged, "backlog_changed"},
		{EventSecurityAlert, "security_alert"},
		{EventPing, "ping"},
		{EventPong, "pong"},
	}

	for _, tt := range tests {
		if string(tt.eventType) != tt.expected {
			t.Errorf("Expected %s, got %s", tt.expected, string(tt.eventType))
		}
	}
}

// ============================================================================
// Struct Tests
// ============================================================================

func TestEvent_Creation(t *testing.T) {
	now := time.Now()
	event := Event{
		Type:          EventBacklogChanged,
		ProjectID:     42,
		CorrelationID: "a7b9c1d3",
		Timestamp:     now,
		SequenceID:    123,
	}

	if event.Type != EventBacklogChanged {
		t.Errorf("Expected type %s, got %s", EventBacklogChanged, event.Type)
	}
	if event.ProjectID != 42 {
		t.Errorf("Expected ProjectID 42, got %d", event.ProjectID)
	}
	if event.CorrelationID != "a7b9c1d3" {
		t.Errorf("Expected CorrelationID a7b9c1d3, got %s", event.CorrelationID)
	}
	if !event.Timestamp.Equal(now) {
		t.Errorf("Expected timestamp %v, got %v", now, event.Timestamp)
	}
	if event.SequenceID != 123 {
		t.Errorf("Expected SequenceID 123, got %d", event.SequenceID)
	}
}

func TestSubscribeMessage_Creation(t *testing.T) {
	// Test specific project subscription
	msg := SubscribeMessage{ProjectID: 5}
	if msg.ProjectID != 5 {
		t.Errorf("Expected ProjectID 5, got %d", msg.ProjectID)
	}

	// Test all projects subscription
	allMsg := SubscribeMessage{ProjectID: 0}
	if allMsg.ProjectID != 0 {
		t.Errorf("Expected ProjectID 0 (all projects), got %d", allMsg.ProjectID)
	}
}

func TestMessage_EventMessage(t *testing.T) {
	event := &Event{
		Type:      EventBacklogChanged,
		ProjectID: 10,
	}

	msg := Message{
		Version: ProtocolVersion,
		Type:    "event",
		Event:   event,
	}

	if msg.Version != ProtocolVersion {
		t.Errorf("Expected version %d, got %d", ProtocolVersion, msg.Version)
	}
	if msg.Type != "event" {
		t.Errorf("Expected type 'event', got '%s'", msg.Type)
	}
	if msg.Event == nil {
		t.Fatal("Expected Event to be set, got nil")
	}
	if msg.Event.ProjectID != 10 {
		t.Errorf("Expected Event ProjectID 10, got %d", msg.Event.ProjectID)
	}
	if msg.Subscribe != nil {
		t.Error("Expected Subscribe to be nil")
	}
}

func TestMessage_SubscribeMessage(t *testing.T) {
	subscribe := &SubscribeMessage{ProjectID: 7}

	msg := Message{
		Version:   ProtocolVersion,
		Type:      "subscribe",
		Subscribe: subscribe,
	}

	if msg.Version != ProtocolVersion {
		t.Errorf("Expected version %d, got %d", ProtocolVersion, msg.Version)
	}
	if msg.Type != "subscribe" {
		t.Errorf("Expected type 'subscribe', got '%s'", msg.Type)
	}
	if msg.Subscribe == nil {
		t.Fatal("Expected Subscribe to be set, got nil")
	}
	if msg.Subscribe.ProjectID != 7 {
		t.Errorf("Expected Subscribe ProjectID 7, got %d", msg.Subscribe.ProjectID)
	}
	if msg.Event != nil {
		t.Error("Expected Event to be nil")
	}
}

func TestMessage_PingPong(t *testing.T) {
	// Test ping message
	pingMsg := Message{
		Version: ProtocolVersion,
		Type:    "ping",
	}
	if pingMsg.Type != "ping" {
		t.Errorf("Expected type 'ping', got '%s'", pingMsg.Type)
	}

	// Test pong message
	pongMsg := Message{
		Version: ProtocolVersion,
		Type:    "pong",
	}
	if pongMsg.Type != "pong" {
		t.Errorf("Expected type 'pong', got '%s'", pongMsg.Type)
	}
}

// ============================================================================
// Wire Format Tests
// ============================================================================

func TestMessage_WireRoundTrip(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Second)
	original := Message{
		Version: ProtocolVersion,
		Type:    "event",
		Event: &Event{
			Type:          EventSecurityAlert,
			ProjectID:     3,
			CorrelationID: "evt-001",
			Timestamp:     now,
			SequenceID:    9,
		},
	}

	data, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("Failed to marshal message: %v", err)
	}

	var decoded Message
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Failed to unmarshal message: %v", err)
	}

	if decoded.Version != ProtocolVersion {
		t.Errorf("Expected version %d, got %d", ProtocolVersion, decoded.Version)
	}
	if decoded.Event == nil {
		t.Fatal("Expected Event after round trip, got nil")
	}
	if decoded.Event.Type != EventSecurityAlert {
		t.Errorf("Expected security alert, got %s", decoded.Event.Type)
	}
	if decoded.Event.CorrelationID != "evt-001" {
		t.Errorf("Expected correlation ID to survive, got %q", decoded.Event.CorrelationID)
	}
	if !decoded.Event.Timestamp.Equal(now) {
		t.Errorf("Expected timestamp %v, got %v", now, decoded.Event.Timestamp)
	}
	if decoded.Subscribe != nil {
		t.Error("Expected Subscribe to stay nil through round trip")
	}
}

func TestMessage_OmitsEmptySections(t *testing.T) {
	msg := Message{
		Version: ProtocolVersion,
		Type:    "ping",
	}

	data, err := json.Marshal(msg)
	if err != nil {
		t.Fatalf("Failed to marshal ping: %v", err)
	}

	// Control messages should not carry empty Event/Subscribe sections
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("Failed to unmarshal raw: %v", err)
	}
	if _, ok := raw["Event"]; ok {
		t.Error("Expected Event to be omitted from ping message")
	}
	if _, ok := raw["Subscribe"]; ok {
		t.Error("Expected Subscribe to be omitted from ping message")
	}
}
