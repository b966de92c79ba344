package sink

import (
	"context"
	"log/slog"
	"time"

	"interchat/domain/event"
)

// Conn buffers events for a single live connection. The transport's write
// pump drains Events; Consume never blocks longer than the delivery
// timeout, so one slow client cannot stall a room broadcast. Delivery is
// at-most-once: an event that cannot be buffered in time is dropped.
type Conn struct {
	Events chan event.DomainEvent

	log             *slog.Logger
	deliveryTimeout time.Duration
}

func NewConn(log *slog.Logger, bufferSize int, deliveryTimeout time.Duration) *Conn {
	return &Conn{
		Events:          make(chan event.DomainEvent, bufferSize),
		log:             log,
		deliveryTimeout: deliveryTimeout,
	}
}

// Consume is called by the relay fanout. It hands the event to the
// connection's write pump through the buffered channel.
func (s *Conn) Consume(ctx context.Context, e event.DomainEvent) error {
	select {
	case s.Events <- e:
		return nil
	default:
	}

	timer := time.NewTimer(s.deliveryTimeout)
	defer timer.Stop()

	select {
	case s.Events <- e:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		s.log.Warn("connection buffer full, dropping event", "room", e.RoomID())
		return nil
	}
}
