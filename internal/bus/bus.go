// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package bus fans signal events out to in-process observers such as the
// event stream of the HTTP API.
package bus

import "context"

// TopicSignals carries engine.Event values.
const TopicSignals = "signals"

// Message is an opaque bus payload.
type Message = any

// Bus is a topic-based publish/subscribe transport.
type Bus interface {
	Publish(ctx context.Context, topic string, msg Message) error
	Subscribe(ctx context.Context, topic string) (Subscriber, error)
}

// Subscriber receives messages on C until closed.
type Subscriber interface {
	C() <-chan Message
	Close() error
}
