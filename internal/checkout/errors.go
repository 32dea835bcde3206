package checkout

import (
	"errors"
	"storefront_back_end/internal/customers"
)

var (
	ErrMissingIdentity         = customers.ErrMissingIdentity
	ErrMalformedLineItems      = errors.New("malformed line items")
	ErrTransactionFailure      = errors.New("order transaction failed")
	ErrUpstreamUnavailable     = errors.New("payment processor unavailable")
	ErrMissingPaymentReference = errors.New("checkout session has no payment reference")
)

// Outcome is the result of handling one event when no error occurred.
type Outcome int

const (
	OutcomeIgnored Outcome = iota
	OutcomeCreated
	OutcomeDuplicate
)

func (o Outcome) String() string {
	switch o {
	case OutcomeCreated:
		return "created"
	case OutcomeDuplicate:
		return "duplicate"
	default:
		return "ignored"
	}
}
