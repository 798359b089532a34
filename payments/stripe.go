package payments

import (
	"context"
	"errors"
	"log/slog"

	"github.com/sony/gobreaker/v2"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"

	"go-storefront/models"
	"go-storefront/utils"
)

// sessionAPI is the part of the Stripe checkout session client in use.
type sessionAPI interface {
	New(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
	Get(id string, params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
}

// StripeConfig holds the checkout settings.
type StripeConfig struct {
	SecretKey  string
	SuccessURL string
	CancelURL  string
	Currency   string
}

// Stripe is a Provider backed by Stripe Checkout.
type Stripe struct {
	sessions sessionAPI
	cfg      StripeConfig
	breaker  *gobreaker.CircuitBreaker[*stripe.CheckoutSession]
}

// NewStripe creates a Stripe provider.
func NewStripe(cfg StripeConfig, logger *slog.Logger) *Stripe {
	sc := client.New(cfg.SecretKey, nil)
	return newStripe(sc.CheckoutSessions, cfg, logger)
}

func newStripe(sessions sessionAPI, cfg StripeConfig, logger *slog.Logger) *Stripe {
	if cfg.Currency == "" {
		cfg.Currency = string(stripe.CurrencyUSD)
	}
	return &Stripe{
		sessions: sessions,
		cfg:      cfg,
		breaker:  utils.NewBreaker[*stripe.CheckoutSession]("stripe", logger, isClientError),
	}
}

func (s *Stripe) Name() string {
	return "stripe"
}

func (s *Stripe) CreateCheckoutSession(ctx context.Context, items []models.CartItem) (string, error) {
	params := s.checkoutParams(items)
	params.Context = ctx

	sess, err := s.breaker.Execute(func() (*stripe.CheckoutSession, error) {
		return s.sessions.New(params)
	})
	if err != nil {
		return "", wrapStripeError(err)
	}
	return sess.ID, nil
}

func (s *Stripe) checkoutParams(items []models.CartItem) *stripe.CheckoutSessionParams {
	lineItems := make([]*stripe.CheckoutSessionLineItemParams, 0, len(items))
	for _, item := range items {
		productData := &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
			Name: stripe.String(item.Name),
		}
		if item.Image != "" {
			productData.Images = stripe.StringSlice([]string{item.Image})
		}
		lineItems = append(lineItems, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:    stripe.String(s.cfg.Currency),
				ProductData: productData,
				UnitAmount:  stripe.Int64(utils.ToMinorUnits(item.Price)),
			},
			Quantity: stripe.Int64(item.Quantity),
		})
	}

	return &stripe.CheckoutSessionParams{
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems:          lineItems,
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:         stripe.String(s.cfg.SuccessURL),
		CancelURL:          stripe.String(s.cfg.CancelURL),
	}
}

func (s *Stripe) RetrieveSession(ctx context.Context, sessionID string) (*models.CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx
	params.AddExpand("line_items")
	params.AddExpand("payment_intent")

	sess, err := s.breaker.Execute(func() (*stripe.CheckoutSession, error) {
		return s.sessions.Get(sessionID, params)
	})
	if err != nil {
		return nil, wrapStripeError(err)
	}
	return toCheckoutSession(sess), nil
}

func toCheckoutSession(sess *stripe.CheckoutSession) *models.CheckoutSession {
	out := &models.CheckoutSession{
		ID:          sess.ID,
		AmountTotal: sess.AmountTotal,
	}

	switch {
	case sess.CustomerDetails != nil && sess.CustomerDetails.Email != "":
		out.CustomerEmail = sess.CustomerDetails.Email
	default:
		out.CustomerEmail = sess.CustomerEmail
	}

	if sess.LineItems != nil {
		for _, li := range sess.LineItems.Data {
			item := models.CheckoutLineItem{Quantity: li.Quantity}
			if li.Price != nil && li.Price.Product != nil {
				item.ProductID = li.Price.Product.ID
			}
			out.LineItems = append(out.LineItems, item)
		}
	}

	if sess.PaymentIntent != nil && sess.PaymentIntent.ID != "" {
		out.PaymentIntent = &models.PaymentIntent{
			ID:     sess.PaymentIntent.ID,
			Status: string(sess.PaymentIntent.Status),
		}
	}
	return out
}

// isClientError reports whether Stripe rejected the request itself (4xx),
// such as an unknown session id.
func isClientError(err error) bool {
	var stripeErr *stripe.Error
	return errors.As(err, &stripeErr) && stripeErr.HTTPStatusCode >= 400 && stripeErr.HTTPStatusCode < 500
}

func wrapStripeError(err error) error {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) && stripeErr.Msg != "" {
		return &Error{Message: stripeErr.Msg, Err: err}
	}
	return &Error{Message: err.Error(), Err: err}
}
