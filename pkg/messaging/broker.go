package messaging

import (
	"context"
)

// Channels carrying appointment lifecycle events.
const (
	ChannelAppointmentCreated  = "appointment.created"
	ChannelAppointmentAnswered = "appointment.answered"
)

// Broker defines the interface for message brokers
type Broker interface {
	Publish(ctx context.Context, channel string, message interface{}) error
	Subscribe(ctx context.Context, channel string) (<-chan []byte, error)
	Close() error
}
