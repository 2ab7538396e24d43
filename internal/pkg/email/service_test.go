package email

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/pkg/logger"
)

func sampleConfirmation() OrderConfirmationData {
	return OrderConfirmationData{
		StoreName:        "Green Shop",
		SupportEmail:     "help@example.com",
		CustomerEmail:    "shopper@example.com",
		CustomerName:     "Sam <b>",
		CustomerFacingID: "ORDER-A1B2C3",
		Items: []OrderLine{
			{Name: "Fern", Includes: "Pot", Quantity: 2, UnitPrice: 500, LineTotal: 1000},
		},
		Subtotal:    1000,
		ShippingFee: 500,
		Total:       1500,
		Year:        2026,
	}
}

func TestFormatCents(t *testing.T) {
	assert.Equal(t, "$0.00", FormatCents(0))
	assert.Equal(t, "$5.07", FormatCents(507))
	assert.Equal(t, "$1234.50", FormatCents(123450))
	assert.Equal(t, "-$0.99", FormatCents(-99))
}

func TestRenderOrderConfirmation(t *testing.T) {
	svc := NewEmailService(config.EmailConfig{Provider: "resend"}, logger.Discard())

	html, err := svc.RenderOrderConfirmation(sampleConfirmation())
	require.NoError(t, err)

	assert.Contains(t, html, "Thank you for your order!")
	assert.Contains(t, html, "ORDER-A1B2C3")
	assert.Contains(t, html, "Fern")
	assert.Contains(t, html, "$10.00")
	assert.Contains(t, html, "$5.00")
	assert.Contains(t, html, "$15.00")
	assert.Contains(t, html, "Sam &lt;b&gt;")
	assert.NotContains(t, html, "Sam <b>")
}

func TestSendOrderConfirmation_Resend(t *testing.T) {
	var got ResendEmailRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer re_key", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	svc := NewEmailService(config.EmailConfig{
		Provider:  "resend",
		APIKey:    "re_key",
		FromEmail: "orders@example.com",
		FromName:  "Green Shop",
	}, logger.Discard())
	svc.endpoints.resend = srv.URL

	require.NoError(t, svc.SendOrderConfirmation(context.Background(), sampleConfirmation()))

	assert.Equal(t, []string{"shopper@example.com"}, got.To)
	assert.Equal(t, "Green Shop <orders@example.com>", got.From)
	assert.Equal(t, "Order Confirmation - ORDER-A1B2C3", got.Subject)
	assert.True(t, strings.Contains(got.HTML, "ORDER-A1B2C3"))
}

func TestSendEmail_SendGridRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"errors":[{"message":"bad key"}]}`))
	}))
	defer srv.Close()

	svc := NewEmailService(config.EmailConfig{Provider: "sendgrid", APIKey: "sg_key", FromEmail: "orders@example.com"}, logger.Discard())
	svc.endpoints.sendgrid = srv.URL

	err := svc.SendOrderConfirmation(context.Background(), sampleConfirmation())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 401")
}

func TestSendEmail_Validation(t *testing.T) {
	svc := NewEmailService(config.EmailConfig{Provider: "carrier-pigeon"}, logger.Discard())

	assert.Error(t, svc.SendEmail(context.Background(), &Email{}))
	assert.Error(t, svc.SendEmail(context.Background(), &Email{To: []string{"a@example.com"}}))

	data := sampleConfirmation()
	data.CustomerEmail = ""
	assert.Error(t, svc.SendOrderConfirmation(context.Background(), data))
}

func TestBuildMIMEMessage(t *testing.T) {
	svc := NewEmailService(config.EmailConfig{FromEmail: "orders@example.com", ReplyTo: "help@example.com"}, logger.Discard())

	msg := string(svc.buildMIMEMessage(&Email{To: []string{"a@example.com", "b@example.com"}, Subject: "Hi", HTMLContent: "<p>x</p>"}))

	assert.Contains(t, msg, "To: a@example.com, b@example.com\r\n")
	assert.Contains(t, msg, "Reply-To: help@example.com\r\n")
	assert.True(t, strings.HasSuffix(msg, "\r\n\r\n<p>x</p>"))
}
