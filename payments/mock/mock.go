// Package mock provides an in-process payment provider for development and
// tests. Every checkout is paid immediately.
package mock

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"go-storefront/models"
	"go-storefront/payments"
	"go-storefront/utils"
)

// DefaultCustomerEmail is attached to sessions created through checkout.
const DefaultCustomerEmail = "customer@example.com"

// Provider keeps sessions in memory.
type Provider struct {
	mu       sync.Mutex
	sessions map[string]*models.CheckoutSession
	email    string
}

// NewProvider creates an empty mock provider.
func NewProvider() *Provider {
	return &Provider{
		sessions: make(map[string]*models.CheckoutSession),
		email:    DefaultCustomerEmail,
	}
}

func (p *Provider) Name() string {
	return "mock"
}

// CreateCheckoutSession records a paid session for items.
func (p *Provider) CreateCheckoutSession(_ context.Context, items []models.CartItem) (string, error) {
	sess := &models.CheckoutSession{
		ID:            "cs_mock_" + uuid.NewString(),
		CustomerEmail: p.email,
		PaymentIntent: &models.PaymentIntent{
			ID:     "pi_mock_" + uuid.NewString(),
			Status: models.PaymentIntentSucceeded,
		},
	}
	for _, item := range items {
		sess.AmountTotal += utils.ToMinorUnits(item.Price) * item.Quantity
		sess.LineItems = append(sess.LineItems, models.CheckoutLineItem{
			ProductID: item.Name,
			Quantity:  item.Quantity,
		})
	}

	p.Put(sess)
	return sess.ID, nil
}

// RetrieveSession returns a copy of a stored session.
func (p *Provider) RetrieveSession(_ context.Context, sessionID string) (*models.CheckoutSession, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	sess, ok := p.sessions[sessionID]
	if !ok {
		return nil, &payments.Error{Message: fmt.Sprintf("No such checkout.session: '%s'", sessionID)}
	}
	out := *sess
	out.LineItems = append([]models.CheckoutLineItem(nil), sess.LineItems...)
	if sess.PaymentIntent != nil {
		intent := *sess.PaymentIntent
		out.PaymentIntent = &intent
	}
	return &out, nil
}

// Put stores or replaces a session.
func (p *Provider) Put(sess *models.CheckoutSession) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sessions[sess.ID] = sess
}

// SetIntentStatus changes the payment intent status of a stored session.
func (p *Provider) SetIntentStatus(sessionID, status string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if sess, ok := p.sessions[sessionID]; ok && sess.PaymentIntent != nil {
		sess.PaymentIntent.Status = status
	}
}
