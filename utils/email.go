// utils/email.go
package utils

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/keighl/postmark"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"go-storefront/models"
)

// MailConfig selects and configures the e-mail transport.
type MailConfig struct {
	Provider      string // "postmark", "sendgrid" or "" for log-only
	PostmarkToken string
	SendgridKey   string
	Sender        string
}

type mailTransport interface {
	send(ctx context.Context, from, to, subject, html string) error
}

// EmailService sends transactional e-mails through the configured provider.
type EmailService struct {
	transport mailTransport
	from      string
	logger    *slog.Logger
}

// NewEmailService initializes and returns a new EmailService instance
func NewEmailService(cfg MailConfig, logger *slog.Logger) (*EmailService, error) {
	var t mailTransport
	switch cfg.Provider {
	case "postmark":
		if cfg.PostmarkToken == "" {
			return nil, fmt.Errorf("POSTMARK_API_TOKEN is not set")
		}
		t = &postmarkTransport{client: postmark.NewClient(cfg.PostmarkToken, "")}
	case "sendgrid":
		if cfg.SendgridKey == "" {
			return nil, fmt.Errorf("SENDGRID_API_KEY is not set")
		}
		t = &sendgridTransport{client: sendgrid.NewSendClient(cfg.SendgridKey)}
	case "":
		t = &logTransport{logger: logger}
	default:
		return nil, fmt.Errorf("unknown mail provider %q", cfg.Provider)
	}
	return &EmailService{transport: t, from: cfg.Sender, logger: logger}, nil
}

// SendEmail sends an HTML email to the specified recipient
func (es *EmailService) SendEmail(ctx context.Context, toEmail, subject, htmlContent string) error {
	if err := es.transport.send(ctx, es.from, toEmail, subject, htmlContent); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	es.logger.DebugContext(ctx, "email sent", slog.String("to", toEmail), slog.String("subject", subject))
	return nil
}

// SendOrderConfirmationEmail sends an order confirmation email to the purchaser
func (es *EmailService) SendOrderConfirmationEmail(ctx context.Context, order *models.Order) error {
	var items strings.Builder
	for _, p := range order.Products {
		fmt.Fprintf(&items, "<li>%s &times; %d</li>", p.ProductID, p.Quantity)
	}
	htmlContent := fmt.Sprintf(
		"<strong>Dear Customer,</strong><br><br>Thank you for your purchase! Your order (ID: %s) has been received.<br><ul>%s</ul>Total Amount: <strong>$%s</strong><br>Status: <strong>%s</strong><br><br>Thank you for shopping with us!",
		order.OrderID,
		items.String(),
		FormatAmount(order.Amount),
		order.Status,
	)
	return es.SendEmail(ctx, order.Email, "Order Confirmation", htmlContent)
}

type postmarkTransport struct {
	client *postmark.Client
}

// send gives up when ctx is done. The postmark client takes no context, so
// the request itself keeps running in the background until it returns.
func (t *postmarkTransport) send(ctx context.Context, from, to, subject, html string) error {
	return sendWithContext(ctx, func() error {
		_, err := t.client.SendEmail(postmark.Email{
			From:     from,
			To:       to,
			Subject:  subject,
			HtmlBody: html,
			TextBody: html,
		})
		return err
	})
}

func sendWithContext(ctx context.Context, send func() error) error {
	done := make(chan error, 1)
	go func() { done <- send() }()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

type sendgridTransport struct {
	client *sendgrid.Client
}

func (t *sendgridTransport) send(ctx context.Context, from, to, subject, html string) error {
	msg := mail.NewSingleEmail(mail.NewEmail("", from), subject, mail.NewEmail("", to), html, html)
	resp, err := t.client.SendWithContext(ctx, msg)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("sendgrid: status %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}

// logTransport only records the e-mail; used when no provider is configured.
type logTransport struct {
	logger *slog.Logger
}

func (t *logTransport) send(ctx context.Context, _, to, subject, _ string) error {
	t.logger.InfoContext(ctx, "email delivery disabled, skipping",
		slog.String("to", to),
		slog.String("subject", subject),
	)
	return nil
}
