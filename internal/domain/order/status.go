package order

import (
	"bot-for-order/internal/pkg/errs"
)

type Status string

const (
	StatusPending                Status = "pending"
	StatusAwaitingPaymentDetails Status = "AWAITING_PAYMENT_DETAILS"
	StatusAwaitingPayment        Status = "AWAITING_PAYMENT"
	StatusPaymentUnderReview     Status = "PAYMENT_UNDER_REVIEW"
	StatusPaidConfirmed          Status = "PAID_CONFIRMED"
	StatusPaid                   Status = "paid"
	StatusFulfillment            Status = "fulfillment"
	StatusShipped                Status = "shipped"
	StatusDelivered              Status = "delivered"
	StatusCanceled               Status = "canceled"
)

var (
	ErrIllegalTransition = errs.Conflict("ILLEGAL_TRANSITION", "illegal order status transition")
	ErrUnknownStatus     = errs.Validation("UNKNOWN_STATUS", "unknown order status")
)

var transitions = map[Status][]Status{
	StatusPending:                {StatusPaid, StatusCanceled, StatusAwaitingPaymentDetails, StatusAwaitingPayment},
	StatusAwaitingPaymentDetails: {StatusAwaitingPayment, StatusCanceled},
	StatusAwaitingPayment:        {StatusPaymentUnderReview, StatusCanceled},
	StatusPaymentUnderReview:     {StatusPaidConfirmed, StatusAwaitingPayment, StatusAwaitingPaymentDetails, StatusCanceled},
	StatusPaidConfirmed:          {StatusFulfillment, StatusCanceled},
	StatusPaid:                   {StatusFulfillment, StatusCanceled},
	StatusFulfillment:            {StatusShipped, StatusCanceled},
	StatusShipped:                {StatusDelivered, StatusCanceled},
	StatusDelivered:              {},
	StatusCanceled:               {},
}

// AllStatuses lists every known status in declaration order.
func AllStatuses() []Status {
	return []Status{
		StatusPending,
		StatusAwaitingPaymentDetails,
		StatusAwaitingPayment,
		StatusPaymentUnderReview,
		StatusPaidConfirmed,
		StatusPaid,
		StatusFulfillment,
		StatusShipped,
		StatusDelivered,
		StatusCanceled,
	}
}

func (s Status) String() string {
	return string(s)
}

func (s Status) IsValid() bool {
	_, ok := transitions[s]
	return ok
}

func (s Status) IsTerminal() bool {
	next, ok := transitions[s]
	return ok && len(next) == 0
}

func IsAllowed(from, to Status) bool {
	for _, candidate := range transitions[from] {
		if candidate == to {
			return true
		}
	}
	return false
}

func RequireAllowed(from, to Status) error {
	if !IsAllowed(from, to) {
		return errs.Wrapf(ErrIllegalTransition, "%s -> %s", from, to)
	}
	return nil
}

// IsPaidOrLater reports whether payment for the order has already been settled.
func (s Status) IsPaidOrLater() bool {
	switch s {
	case StatusPaidConfirmed, StatusPaid, StatusFulfillment, StatusShipped, StatusDelivered:
		return true
	default:
		return false
	}
}

func (s Status) IsAwaitingPayment() bool {
	return s == StatusAwaitingPayment || s == StatusAwaitingPaymentDetails
}
