package app

import (
	"github.com/mfigueroa/backlog/internal/events"
)

// Option is a functional option for configuring App initialization
type Option func(*appConfig)

// appConfig holds the configuration for App initialization
type appConfig struct {
	eventClient events.EventPublisher
}

// WithEventPublisher sets the event publisher for the application.
// Without one, every service runs with change notification disabled.
func WithEventPublisher(ec events.EventPublisher) Option {
	return func(cfg *appConfig) {
		cfg.eventClient = ec
	}
}
