package payments

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v76"

	"go-storefront/models"
)

type fakeSessions struct {
	created *stripe.CheckoutSessionParams
	getID   string
	expand  []*string
	session *stripe.CheckoutSession
	err     error
}

func (f *fakeSessions) New(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	f.created = params
	if f.err != nil {
		return nil, f.err
	}
	return &stripe.CheckoutSession{ID: "cs_test_1"}, nil
}

func (f *fakeSessions) Get(id string, params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	f.getID = id
	f.expand = params.Expand
	if f.err != nil {
		return nil, f.err
	}
	return f.session, nil
}

func newTestStripe(f *fakeSessions) *Stripe {
	return newStripe(f, StripeConfig{
		SuccessURL: "https://shop.test/success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:  "https://shop.test/cancel",
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestStripe_CreateCheckoutSession(t *testing.T) {
	f := &fakeSessions{}
	p := newTestStripe(f)

	id, err := p.CreateCheckoutSession(context.Background(), []models.CartItem{
		{Name: "Dress", Image: "https://img.test/dress.png", Price: 19.99, Quantity: 2},
	})
	require.NoError(t, err)
	assert.Equal(t, "cs_test_1", id)

	params := f.created
	require.NotNil(t, params)
	assert.Equal(t, "payment", *params.Mode)
	assert.Equal(t, "https://shop.test/cancel", *params.CancelURL)
	require.Len(t, params.LineItems, 1)

	li := params.LineItems[0]
	assert.Equal(t, int64(2), *li.Quantity)
	assert.Equal(t, int64(1999), *li.PriceData.UnitAmount)
	assert.Equal(t, "usd", *li.PriceData.Currency)
	assert.Equal(t, "Dress", *li.PriceData.ProductData.Name)
	require.Len(t, li.PriceData.ProductData.Images, 1)
	assert.Equal(t, "https://img.test/dress.png", *li.PriceData.ProductData.Images[0])
}

func TestStripe_RetrieveSession(t *testing.T) {
	f := &fakeSessions{session: &stripe.CheckoutSession{
		ID:              "cs_test_1",
		AmountTotal:     1999,
		CustomerDetails: &stripe.CheckoutSessionCustomerDetails{Email: "a@b.com"},
		LineItems: &stripe.LineItemList{Data: []*stripe.LineItem{
			{Quantity: 1, Price: &stripe.Price{Product: &stripe.Product{ID: "prod_1"}}},
		}},
		PaymentIntent: &stripe.PaymentIntent{ID: "pi_1", Status: stripe.PaymentIntentStatusSucceeded},
	}}
	p := newTestStripe(f)

	sess, err := p.RetrieveSession(context.Background(), "cs_test_1")
	require.NoError(t, err)

	assert.Equal(t, "cs_test_1", f.getID)
	require.Len(t, f.expand, 2)
	assert.Equal(t, "line_items", *f.expand[0])
	assert.Equal(t, "payment_intent", *f.expand[1])

	assert.Equal(t, int64(1999), sess.AmountTotal)
	assert.Equal(t, "a@b.com", sess.CustomerEmail)
	assert.Equal(t, []models.CheckoutLineItem{{ProductID: "prod_1", Quantity: 1}}, sess.LineItems)
	require.NotNil(t, sess.PaymentIntent)
	assert.Equal(t, "pi_1", sess.PaymentIntent.ID)
	assert.Equal(t, models.PaymentIntentSucceeded, sess.PaymentIntent.Status)
}

func TestStripe_RetrieveSession_NoIntent(t *testing.T) {
	p := newTestStripe(&fakeSessions{session: &stripe.CheckoutSession{ID: "cs_open", CustomerEmail: "c@d.com"}})

	sess, err := p.RetrieveSession(context.Background(), "cs_open")
	require.NoError(t, err)
	assert.Nil(t, sess.PaymentIntent)
	assert.Equal(t, "c@d.com", sess.CustomerEmail)
}

func TestStripe_ProviderErrorMessage(t *testing.T) {
	p := newTestStripe(&fakeSessions{err: &stripe.Error{Msg: "No such checkout.session: cs_missing"}})

	_, err := p.RetrieveSession(context.Background(), "cs_missing")
	require.Error(t, err)

	var providerErr *Error
	require.True(t, errors.As(err, &providerErr))
	assert.Equal(t, "No such checkout.session: cs_missing", providerErr.Message)
}

func TestStripe_UnknownSessionsDoNotOpenBreaker(t *testing.T) {
	f := &fakeSessions{err: &stripe.Error{HTTPStatusCode: 404, Msg: "No such checkout.session: 'cs_bogus'"}}
	p := newTestStripe(f)

	for i := 0; i < 5; i++ {
		_, err := p.RetrieveSession(context.Background(), "cs_bogus")
		require.Error(t, err)
		assert.NotErrorIs(t, err, gobreaker.ErrOpenState)
	}

	f.err = nil
	f.session = &stripe.CheckoutSession{
		ID:            "cs_paid",
		CustomerEmail: "a@b.com",
		PaymentIntent: &stripe.PaymentIntent{ID: "pi_paid", Status: stripe.PaymentIntentStatusSucceeded},
	}
	sess, err := p.RetrieveSession(context.Background(), "cs_paid")
	require.NoError(t, err)
	assert.Equal(t, "pi_paid", sess.PaymentIntent.ID)

	id, err := p.CreateCheckoutSession(context.Background(), []models.CartItem{{Name: "Dress", Price: 10, Quantity: 1}})
	require.NoError(t, err)
	assert.Equal(t, "cs_test_1", id)
}

func TestStripe_ServerErrorsOpenBreaker(t *testing.T) {
	f := &fakeSessions{err: &stripe.Error{HTTPStatusCode: 503, Msg: "service unavailable"}}
	p := newTestStripe(f)

	for i := 0; i < 5; i++ {
		_, err := p.RetrieveSession(context.Background(), "cs_1")
		require.Error(t, err)
	}

	f.err = nil
	f.session = &stripe.CheckoutSession{ID: "cs_1"}
	_, err := p.RetrieveSession(context.Background(), "cs_1")
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
}
