package queue

import (
    "context"
    "encoding/json"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"
    "github.com/sirupsen/logrus"
)

// dialTimeout bounds connection setup so an unreachable broker cannot
// stall the request that triggered the event.
const dialTimeout = 2 * time.Second

// Publisher sends BookingEvents to the EventsQueue.  It dials the broker
// per publish; event volume is one message per committed transition.
type Publisher struct {
    url string
    log logrus.FieldLogger
}

// NewPublisher returns a Publisher for the broker at url.
func NewPublisher(url string, log logrus.FieldLogger) *Publisher {
    return &Publisher{url: url, log: log.WithField("component", "publisher")}
}

// Publish marshals ev and routes it to the durable events queue.  Errors
// are logged and returned so the caller can choose to ignore them.
func (p *Publisher) Publish(ctx context.Context, ev BookingEvent) error {
    conn, err := amqp.DialConfig(p.url, amqp.Config{Dial: amqp.DefaultDial(dialTimeout)})
    if err != nil {
        p.log.WithError(err).Warn("dial failed")
        return err
    }
    defer func() { _ = conn.Close() }()

    ch, err := conn.Channel()
    if err != nil {
        p.log.WithError(err).Warn("channel open failed")
        return err
    }
    defer func() { _ = ch.Close() }()

    // Durable so messages survive broker restarts.
    if _, err := ch.QueueDeclare(EventsQueue, true, false, false, false, nil); err != nil {
        p.log.WithError(err).Warn("queue declare failed")
        return err
    }

    body, err := json.Marshal(ev)
    if err != nil {
        return err
    }

    pub := amqp.Publishing{
        ContentType:  "application/json",
        DeliveryMode: amqp.Persistent,
        Timestamp:    time.Now().UTC(),
        Type:         string(ev.Type),
        Body:         body,
    }
    if err := ch.PublishWithContext(ctx, "", EventsQueue, false, false, pub); err != nil {
        p.log.WithFields(logrus.Fields{"type": ev.Type, "booking_id": ev.BookingID}).WithError(err).Warn("publish failed")
        return err
    }
    return nil
}
