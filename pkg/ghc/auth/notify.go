package auth

import "fmt"

// LoginCompleteEvent is the name of the notification sent once per login
// attempt.
const LoginCompleteEvent = "github-login-complete"

// Notifier delivers login notifications to the surrounding application.
type Notifier interface {
	Emit(event string, payload LoginEvent) error
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(event string, payload LoginEvent) error

func (f NotifierFunc) Emit(event string, payload LoginEvent) error {
	return f(event, payload)
}

// ChannelNotifier is a single-consumer sink for one named event. Emit
// blocks until the buffer has room, so every delivered event is received
// exactly once by whoever reads Events.
type ChannelNotifier struct {
	event string
	ch    chan LoginEvent
}

// NewChannelNotifier creates a sink for event with the given buffer size.
// A buffer of at least one per concurrent login keeps the background poll
// from blocking on a slow consumer.
func NewChannelNotifier(event string, buffer int) *ChannelNotifier {
	if buffer < 1 {
		buffer = 1
	}
	return &ChannelNotifier{event: event, ch: make(chan LoginEvent, buffer)}
}

func (n *ChannelNotifier) Emit(event string, payload LoginEvent) error {
	if event != n.event {
		return fmt.Errorf("notifier for %q cannot deliver %q", n.event, event)
	}
	n.ch <- payload
	return nil
}

// Events is the receive side of the sink.
func (n *ChannelNotifier) Events() <-chan LoginEvent {
	return n.ch
}
