package service

import (
	"errors"

	"product-storefront/internal/storefront"
)

// Outcome is the terminal state of one orchestrated request.
type Outcome string

const (
	OutcomeReady    Outcome = "ready"
	OutcomeNotFound Outcome = "not_found"
	OutcomeRedirect Outcome = "redirect"
	OutcomeRejected Outcome = "rejected"
	OutcomeFailed   Outcome = "upstream_error"
)

type Result struct {
	Outcome Outcome

	View     storefront.ProductView
	Product  storefront.Product
	Products []storefront.Product
	Filter   string

	Location string

	// Payload echoes the submitted input back on OutcomeRejected.
	Payload any
	Errors  []string

	Err error
}

func redirect(location string) Result {
	return Result{Outcome: OutcomeRedirect, Location: location}
}

// failure classifies a terminal error: a missing anchor is NotFound,
// anything else is fatal for the request.
func failure(err error) Result {
	if errors.Is(err, storefront.ErrNotFound) {
		return Result{Outcome: OutcomeNotFound, Err: err}
	}
	return Result{Outcome: OutcomeFailed, Err: err}
}
