package events

import (
	"testing"
)

// TestEventPublisherNilCheck verifies that nil checks work correctly with the interface
func TestEventPublisherNilCheck(t *testing.T) {
	var publisher EventPublisher

	// Should be nil
	if publisher != nil {
		t.Error("Expected nil EventPublisher to be nil")
	}

	// Test with nil concrete type
	var client *Client
	publisher = client

	// An interface holding a typed nil pointer does not compare equal to nil,
	// which is why callers check the concrete value before assigning.
	if publisher == nil {
		t.Error("Interface holding nil pointer should not equal nil")
	}
}

// TestEventPublisherImplementation verifies Client implements EventPublisher
func TestEventPublisherImplementation(t *testing.T) {
	// This will fail to compile if Client doesn't implement EventPublisher
	var _ EventPublisher = (*Client)(nil)
	t.Log("Client correctly implements EventPublisher interface")
}
