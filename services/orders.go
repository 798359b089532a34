package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"go-storefront/apperrors"
	"go-storefront/events"
	"go-storefront/models"
	"go-storefront/payments"
	"go-storefront/utils"
)

// CheckoutInput is the cart submitted for hosted checkout.
type CheckoutInput struct {
	Products []models.CartItem `json:"products" validate:"required,min=1,dive"`
}

// UpdateStatusInput is an admin status change.
type UpdateStatusInput struct {
	Status string `json:"status" validate:"required,oneof=pending processing shipped delivered cancelled failed"`
}

// OrderService opens checkouts and turns confirmed checkout sessions into
// orders, at most one per payment intent.
type OrderService struct {
	orders    OrderStore
	payments  payments.Provider
	publisher Publisher
	mailer    OrderMailer
	topic     string
	logger    *slog.Logger
	now       func() time.Time

	mailTimeout time.Duration
}

// defaultMailTimeout bounds the confirmation e-mail sent once an order is stored.
const defaultMailTimeout = 2 * time.Second

// NewOrderService creates an OrderService. publisher and mailer may be nil.
func NewOrderService(orders OrderStore, provider payments.Provider, publisher Publisher, mailer OrderMailer, topic string, logger *slog.Logger) *OrderService {
	return &OrderService{
		orders:    orders,
		payments:  provider,
		publisher: publisher,
		mailer:    mailer,
		topic:     topic,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },

		mailTimeout: defaultMailTimeout,
	}
}

// CreateCheckoutSession opens a hosted checkout for the cart and returns
// the provider's session id.
func (s *OrderService) CreateCheckoutSession(ctx context.Context, input CheckoutInput) (string, error) {
	if err := utils.Validate(input); err != nil {
		return "", err
	}
	id, err := s.payments.CreateCheckoutSession(ctx, input.Products)
	if err != nil {
		return "", apperrors.Upstream(s.payments.Name(), err)
	}
	return id, nil
}

// statusForIntent maps a payment intent state to the order status recorded
// by reconciliation.
func statusForIntent(intentStatus string) string {
	if intentStatus == models.PaymentIntentSucceeded {
		return models.OrderStatusPending
	}
	return models.OrderStatusFailed
}

// ConfirmPayment reconciles a checkout session. The first confirmation of a
// payment intent creates the order; later ones only refresh its status.
func (s *OrderService) ConfirmPayment(ctx context.Context, sessionID string) (*models.Order, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, apperrors.Validation("session_id is required")
	}

	sess, err := s.payments.RetrieveSession(ctx, sessionID)
	if err != nil {
		ordersReconciled.WithLabelValues("upstream_error").Inc()
		return nil, apperrors.Upstream(s.payments.Name(), err)
	}
	if err := checkSession(sess); err != nil {
		ordersReconciled.WithLabelValues("invalid_session").Inc()
		return nil, apperrors.Upstream(s.payments.Name(), err)
	}

	transactionID := sess.PaymentIntent.ID
	status := statusForIntent(sess.PaymentIntent.Status)

	existing, err := s.orders.FindByTransactionID(ctx, transactionID)
	switch {
	case err == nil:
		return s.refreshStatus(ctx, existing, status)
	case !apperrors.IsNotFound(err):
		ordersReconciled.WithLabelValues("error").Inc()
		return nil, err
	}

	now := s.now()
	order := &models.Order{
		OrderID:   transactionID,
		Products:  make([]models.OrderItem, 0, len(sess.LineItems)),
		Amount:    utils.AmountFromMinor(sess.AmountTotal),
		Email:     sess.CustomerEmail,
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, li := range sess.LineItems {
		order.Products = append(order.Products, models.OrderItem{ProductID: li.ProductID, Quantity: li.Quantity})
	}

	if err := s.orders.Create(ctx, order); err != nil {
		if !apperrors.IsConflict(err) {
			ordersReconciled.WithLabelValues("error").Inc()
			return nil, err
		}
		// A concurrent confirmation of the same intent won the insert.
		winner, err := s.orders.FindByTransactionID(ctx, transactionID)
		if err != nil {
			ordersReconciled.WithLabelValues("error").Inc()
			return nil, err
		}
		return s.refreshStatus(ctx, winner, status)
	}

	ordersReconciled.WithLabelValues("created").Inc()
	s.logger.InfoContext(ctx, "order reconciled",
		slog.String("order_id", order.ID.Hex()),
		slog.String("transaction_id", transactionID),
		slog.String("status", status),
		slog.Float64("amount", order.Amount),
		slog.Bool("created", true),
	)

	publish(ctx, s.publisher, s.logger, s.topic, events.OrderCreated, transactionID, "order", order)
	if s.mailer != nil {
		mailCtx, cancel := context.WithTimeout(ctx, s.mailTimeout)
		err := s.mailer.SendOrderConfirmationEmail(mailCtx, order)
		cancel()
		if err != nil {
			s.logger.WarnContext(ctx, "failed to send order confirmation",
				slog.String("transaction_id", transactionID),
				slog.String("error", err.Error()),
			)
		}
	}
	return order, nil
}

func checkSession(sess *models.CheckoutSession) error {
	switch {
	case sess == nil:
		return errors.New("empty checkout session")
	case sess.PaymentIntent == nil || sess.PaymentIntent.ID == "":
		return errors.New("checkout session has no payment intent")
	case sess.CustomerEmail == "":
		return errors.New("checkout session has no customer email")
	}
	return nil
}

func (s *OrderService) refreshStatus(ctx context.Context, existing *models.Order, status string) (*models.Order, error) {
	order, err := s.orders.UpdateStatus(ctx, existing.ID, status)
	if err != nil {
		ordersReconciled.WithLabelValues("error").Inc()
		return nil, err
	}
	ordersReconciled.WithLabelValues("updated").Inc()
	s.logger.InfoContext(ctx, "order reconciled",
		slog.String("order_id", order.ID.Hex()),
		slog.String("transaction_id", order.OrderID),
		slog.String("status", status),
		slog.Bool("created", false),
	)
	return order, nil
}

// OrdersByEmail returns the orders placed with email, newest first.
func (s *OrderService) OrdersByEmail(ctx context.Context, email string) ([]models.Order, error) {
	if strings.TrimSpace(email) == "" {
		return nil, apperrors.Validation("Email is required")
	}
	orders, err := s.orders.ListByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return nil, apperrors.NotFound("No orders available for this email")
	}
	return orders, nil
}

// Get returns one order.
func (s *OrderService) Get(ctx context.Context, idHex string) (*models.Order, error) {
	id, err := parseID(idHex, "order")
	if err != nil {
		return nil, err
	}
	return s.orders.FindByID(ctx, id)
}

// List returns every order, newest first.
func (s *OrderService) List(ctx context.Context) ([]models.Order, error) {
	return s.orders.List(ctx)
}

// UpdateStatus sets an order's status to one of the known statuses.
func (s *OrderService) UpdateStatus(ctx context.Context, idHex string, input UpdateStatusInput) (*models.Order, error) {
	if err := utils.Validate(input); err != nil {
		return nil, err
	}
	id, err := parseID(idHex, "order")
	if err != nil {
		return nil, err
	}
	order, err := s.orders.UpdateStatus(ctx, id, input.Status)
	if err != nil {
		return nil, err
	}

	publish(ctx, s.publisher, s.logger, s.topic, events.OrderStatusUpdated, order.OrderID, "order", map[string]string{
		"id":     order.ID.Hex(),
		"status": order.Status,
	})
	return order, nil
}

// Delete removes an order and returns it.
func (s *OrderService) Delete(ctx context.Context, idHex string) (*models.Order, error) {
	id, err := parseID(idHex, "order")
	if err != nil {
		return nil, err
	}
	order, err := s.orders.Delete(ctx, id)
	if err != nil {
		return nil, err
	}

	publish(ctx, s.publisher, s.logger, s.topic, events.OrderDeleted, order.OrderID, "order", map[string]string{
		"id": order.ID.Hex(),
	})
	return order, nil
}
