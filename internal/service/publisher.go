package service

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/iliyamo/travel-booking/internal/queue"
)

// EventPublisher delivers lifecycle events.  *queue.Publisher is the
// production implementation.
type EventPublisher interface {
	Publish(ctx context.Context, ev queue.BookingEvent) error
}

// NopPublisher drops every event.  The CLI and tests use it.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, queue.BookingEvent) error { return nil }

const publishTimeout = 5 * time.Second

// emit publishes ev after a commit.  Delivery failures are logged and never
// reach the caller: the transition has already happened.
func emit(ctx context.Context, pub EventPublisher, log logrus.FieldLogger, ev queue.BookingEvent) {
	if pub == nil {
		return
	}
	ev.OccurredAt = time.Now().UTC().Format(time.RFC3339)
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := pub.Publish(ctx, ev); err != nil {
		log.WithFields(logrus.Fields{"type": ev.Type, "booking_id": ev.BookingID}).WithError(err).Warn("event not published")
	}
}
