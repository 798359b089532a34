// Package payments abstracts the hosted-checkout payment provider.
package payments

import (
	"context"

	"go-storefront/models"
)

// Provider creates hosted checkout sessions and reads them back once the
// customer has paid.
type Provider interface {
	// Name returns the provider name used in error messages and logs.
	Name() string

	// CreateCheckoutSession opens a hosted checkout for items and returns
	// its session id.
	CreateCheckoutSession(ctx context.Context, items []models.CartItem) (string, error)

	// RetrieveSession returns a session expanded with its line items and
	// payment intent.
	RetrieveSession(ctx context.Context, sessionID string) (*models.CheckoutSession, error)
}

// Error is a failure reported by the provider. Message is the provider's
// own description.
type Error struct {
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}
