package service

import (
	"errors"
	"fmt"
)

// Kind classifies a failure so the request layer can pick a status code
// without knowing every individual code.
type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindConflict
	KindValidation
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindValidation:
		return "validation"
	default:
		return "internal"
	}
}

// Error is a typed failure of a booking or payment operation.  Two errors
// are equal under errors.Is when their codes match, so callers compare
// against the exported sentinels even when the message was customised.
type Error struct {
	Kind Kind
	Code string
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Msg, e.Err)
	}
	return e.Code + ": " + e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// withMsg returns a copy of e carrying a more specific message.
func (e *Error) withMsg(format string, args ...any) *Error {
	c := *e
	c.Msg = fmt.Sprintf(format, args...)
	return &c
}

var (
	ErrNotFound         = &Error{Kind: KindNotFound, Code: "NOT_FOUND", Msg: "booking not found"}
	ErrCatalogNotFound  = &Error{Kind: KindNotFound, Code: "CATALOG_NOT_FOUND", Msg: "catalog not found"}
	ErrCustomerNotFound = &Error{Kind: KindNotFound, Code: "CUSTOMER_NOT_FOUND", Msg: "customer not found"}
	ErrPaymentNotFound  = &Error{Kind: KindNotFound, Code: "PAYMENT_NOT_FOUND", Msg: "payment not found"}

	ErrInvalidDateRange = &Error{Kind: KindValidation, Code: "INVALID_DATE_RANGE", Msg: "check-out must be after check-in"}
	ErrDateInPast       = &Error{Kind: KindValidation, Code: "DATE_IN_PAST", Msg: "check-in date is in the past"}
	ErrNoItemsSpecified = &Error{Kind: KindValidation, Code: "NO_ITEMS_SPECIFIED", Msg: "at least one hotel, transport or food item is required"}
	ErrItemNotFound     = &Error{Kind: KindValidation, Code: "ITEM_NOT_FOUND", Msg: "referenced item does not exist"}
	ErrInvalidStatus    = &Error{Kind: KindValidation, Code: "INVALID_STATUS", Msg: "invalid status"}
	ErrInvalidMethod    = &Error{Kind: KindValidation, Code: "INVALID_METHOD", Msg: "invalid payment method"}
	ErrNoPayableItems   = &Error{Kind: KindValidation, Code: "NO_PAYABLE_ITEMS", Msg: "booking has no items to pay for"}
	ErrQuantityTooLarge = &Error{Kind: KindValidation, Code: "QUANTITY_TOO_LARGE", Msg: "item quantity is too large"}
	ErrStayTooLong      = &Error{Kind: KindValidation, Code: "STAY_TOO_LONG", Msg: "stay is too long"}
	ErrAmountTooLarge   = &Error{Kind: KindValidation, Code: "AMOUNT_TOO_LARGE", Msg: "booking total is too large"}

	ErrAlreadyCancelled = &Error{Kind: KindConflict, Code: "ALREADY_CANCELLED", Msg: "booking is already cancelled"}
	ErrCancelledBooking = &Error{Kind: KindConflict, Code: "CANCELLED_BOOKING", Msg: "booking is cancelled"}
	ErrPaymentExists    = &Error{Kind: KindConflict, Code: "PAYMENT_EXISTS", Msg: "booking already has a payment"}
	ErrNotPending       = &Error{Kind: KindConflict, Code: "NOT_PENDING", Msg: "payment is not pending"}
)

// internal wraps a storage or infrastructure failure.
func internal(msg string, err error) error {
	return &Error{Kind: KindInternal, Code: "INTERNAL", Msg: msg, Err: err}
}

// KindOf returns the kind of a service error, or KindInternal for any
// other error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// CodeOf returns the machine code of err, "INTERNAL" if it is untyped.
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return "INTERNAL"
}
