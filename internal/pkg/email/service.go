// internal/pkg/email/service.go
package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-backend/internal/config"
)

// EmailService sends transactional email through the configured provider
type EmailService struct {
	config    config.EmailConfig
	client    *http.Client
	logger    *logrus.Logger
	endpoints providerEndpoints
	templates *template.Template
}

type providerEndpoints struct {
	resend   string
	sendgrid string
}

// NewEmailService creates a new email service
func NewEmailService(cfg config.EmailConfig, logger *logrus.Logger) *EmailService {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}

	return &EmailService{
		config: cfg,
		client: &http.Client{Timeout: timeout},
		logger: logger,
		endpoints: providerEndpoints{
			resend:   "https://api.resend.com/emails",
			sendgrid: "https://api.sendgrid.com/v3/mail/send",
		},
		templates: template.Must(template.New("emails").Funcs(template.FuncMap{
			"money": FormatCents,
		}).Parse(orderConfirmationTemplate)),
	}
}

// SendEmail sends an email using the configured provider
func (s *EmailService) SendEmail(ctx context.Context, email *Email) error {
	if len(email.To) == 0 {
		return fmt.Errorf("email has no recipients")
	}

	var err error
	switch s.config.Provider {
	case "smtp":
		err = s.sendSMTPEmail(ctx, email)
	case "resend":
		err = s.sendResendEmail(ctx, email)
	case "sendgrid":
		err = s.sendSendGridEmail(ctx, email)
	default:
		err = fmt.Errorf("unsupported email provider: %s", s.config.Provider)
	}
	if err != nil {
		return err
	}

	s.logger.WithFields(logrus.Fields{
		"provider": s.config.Provider,
		"type":     email.Type,
	}).Info("Email sent")
	return nil
}

// SendOrderConfirmation renders and sends the order confirmation email
func (s *EmailService) SendOrderConfirmation(ctx context.Context, data OrderConfirmationData) error {
	if data.CustomerEmail == "" {
		return fmt.Errorf("order %s has no customer email", data.CustomerFacingID)
	}

	html, err := s.RenderOrderConfirmation(data)
	if err != nil {
		return err
	}

	return s.SendEmail(ctx, &Email{
		To:          []string{data.CustomerEmail},
		Subject:     fmt.Sprintf("Order Confirmation - %s", data.CustomerFacingID),
		HTMLContent: html,
		Type:        EmailTypeOrderConfirmation,
	})
}

// RenderOrderConfirmation renders the order confirmation body
func (s *EmailService) RenderOrderConfirmation(data OrderConfirmationData) (string, error) {
	if data.Year == 0 {
		data.Year = time.Now().Year()
	}

	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, "order_confirmation", data); err != nil {
		return "", fmt.Errorf("failed to render order confirmation template: %w", err)
	}
	return buf.String(), nil
}

func (s *EmailService) fromAddress() string {
	if s.config.FromName != "" {
		return fmt.Sprintf("%s <%s>", s.config.FromName, s.config.FromEmail)
	}
	return s.config.FromEmail
}

const orderConfirmationTemplate = `{{define "order_confirmation"}}<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>{{.StoreName}} - Order {{.CustomerFacingID}}</title>
</head>
<body style="font-family: Arial, sans-serif; margin: 0; padding: 20px; background-color: #f4f4f4;">
    <div style="max-width: 600px; margin: 0 auto; background-color: white; padding: 20px; border-radius: 8px;">
        <h1 style="color: #333;">Thank you for your order!</h1>
        {{if .CustomerName}}<p>Hello {{.CustomerName}},</p>{{end}}
        <p>We are processing it now. Here are the details:</p>
        <p><strong>Order ID:</strong> {{.CustomerFacingID}}</p>
        <table style="width: 100%; border-collapse: collapse;">
            <thead>
                <tr>
                    <th align="left">Product</th>
                    <th align="right">Quantity</th>
                    <th align="left">Includes</th>
                    <th align="right">Price</th>
                    <th align="right">Total</th>
                </tr>
            </thead>
            <tbody>
                {{range .Items}}<tr>
                    <td>{{.Name}}</td>
                    <td align="right">{{.Quantity}}</td>
                    <td>{{.Includes}}</td>
                    <td align="right">{{money .UnitPrice}}</td>
                    <td align="right">{{money .LineTotal}}</td>
                </tr>
                {{end}}
            </tbody>
        </table>
        <p><strong>Subtotal:</strong> {{money .Subtotal}}</p>
        <p><strong>Shipping Fee:</strong> {{money .ShippingFee}}</p>
        <p><strong>Total:</strong> {{money .Total}}</p>
        <hr>
        <p style="font-size: 12px; color: #666;">
            Questions? Contact {{.SupportEmail}}.<br>
            &copy; {{.Year}} {{.StoreName}}. All rights reserved.
        </p>
    </div>
</body>
</html>{{end}}`
