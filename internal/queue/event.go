// Package queue defines the lifecycle events exchanged over RabbitMQ, the
// publisher used by the services and the audit consumer that records them.
package queue

import (
    "fmt"
    "strings"
)

// EventsQueue is the durable queue every booking and payment event is
// routed to.
const EventsQueue = "booking.events"

// EventType names a lifecycle transition.
type EventType string

const (
    BookingCreated          EventType = "booking.created"
    BookingCancelled        EventType = "booking.cancelled"
    BookingConfirmed        EventType = "booking.confirmed"
    BookingStatusOverridden EventType = "booking.status_overridden"
    PaymentProcessed        EventType = "payment.processed"
    PaymentStatusOverridden EventType = "payment.status_overridden"
)

// BookingEvent is published after a transition has been committed.  It
// carries enough for downstream consumers to log or notify without
// reading the primary database.  Fields that do not apply to a given
// type are left empty.
type BookingEvent struct {
    Type         EventType `json:"type"`
    BookingID    string    `json:"booking_id"`
    CustomerID   uint64    `json:"customer_id,omitempty"`
    PaymentID    string    `json:"payment_id,omitempty"`
    Status       string    `json:"status,omitempty"`
    AmountCents  int64     `json:"amount_cents,omitempty"`
    RefundIssued bool      `json:"refund_issued,omitempty"`
    Reason       string    `json:"reason,omitempty"`
    OccurredAt   string    `json:"occurred_at"`
}

// AuditLine renders the event as a single human-friendly log line,
// terminated by a newline.
func (ev BookingEvent) AuditLine() string {
    var sb strings.Builder
    fmt.Fprintf(&sb, "[%s] %s | booking_id=%s", ev.OccurredAt, ev.Type, ev.BookingID)
    if ev.CustomerID != 0 {
        fmt.Fprintf(&sb, " | customer_id=%d", ev.CustomerID)
    }
    if ev.PaymentID != "" {
        fmt.Fprintf(&sb, " | payment_id=%s", ev.PaymentID)
    }
    if ev.Status != "" {
        fmt.Fprintf(&sb, " | status=%s", ev.Status)
    }
    if ev.AmountCents != 0 {
        fmt.Fprintf(&sb, " | amount=%d cents", ev.AmountCents)
    }
    if ev.Type == BookingCancelled {
        fmt.Fprintf(&sb, " | refund_issued=%t", ev.RefundIssued)
    }
    if ev.Reason != "" {
        fmt.Fprintf(&sb, " | reason=%q", ev.Reason)
    }
    sb.WriteByte('\n')
    return sb.String()
}
