package model

import "time"

// PaymentStatus is the lifecycle state of a payment.
type PaymentStatus string

const (
    PaymentPending   PaymentStatus = "pending"
    PaymentCompleted PaymentStatus = "completed"
    PaymentFailed    PaymentStatus = "failed"
    PaymentRefunded  PaymentStatus = "refunded"
)

// Valid reports whether s is one of the known payment statuses.
func (s PaymentStatus) Valid() bool {
    switch s {
    case PaymentPending, PaymentCompleted, PaymentFailed, PaymentRefunded:
        return true
    }
    return false
}

// PaymentMethod is how the customer pays.
type PaymentMethod string

const (
    MethodCreditCard   PaymentMethod = "credit_card"
    MethodDebitCard    PaymentMethod = "debit_card"
    MethodPayPal       PaymentMethod = "paypal"
    MethodBankTransfer PaymentMethod = "bank_transfer"
)

// Valid reports whether m is an accepted payment method.
func (m PaymentMethod) Valid() bool {
    switch m {
    case MethodCreditCard, MethodDebitCard, MethodPayPal, MethodBankTransfer:
        return true
    }
    return false
}

// Payment settles a booking.  There is at most one payment per booking;
// rows are updated in place and never deleted.
type Payment struct {
    ID            string        `json:"id"`             // payments.id
    BookingID     string        `json:"booking_id"`     // payments.booking_id (unique)
    AmountCents   int64         `json:"amount_cents"`   // payments.amount_cents
    Method        PaymentMethod `json:"method"`         // payments.method
    Status        PaymentStatus `json:"status"`         // payments.status
    TransactionID *string       `json:"transaction_id"` // payments.transaction_id (nullable)
    CreatedAt     time.Time     `json:"created_at"`     // payments.created_at
    UpdatedAt     time.Time     `json:"updated_at"`     // payments.updated_at
}
