package models

// Payment intent states reported by the provider.
const (
	PaymentIntentSucceeded = "succeeded"
)

// CheckoutLineItem is a purchased line as reported by the payment provider.
type CheckoutLineItem struct {
	ProductID string
	Quantity  int64
}

// PaymentIntent is the provider-side payment attempt behind a session.
type PaymentIntent struct {
	ID     string
	Status string
}

// CheckoutSession is a completed hosted checkout, expanded with its line
// items and payment intent.
type CheckoutSession struct {
	ID            string
	AmountTotal   int64 // minor units
	CustomerEmail string
	LineItems     []CheckoutLineItem
	PaymentIntent *PaymentIntent
}
