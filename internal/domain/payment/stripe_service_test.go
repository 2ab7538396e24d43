package payment

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/client"
	"github.com/stripe/stripe-go/v81/webhook"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/pkg/apperror"
	"github.com/your-org/storefront-backend/internal/pkg/logger"
)

const testWebhookSecret = "whsec_test_secret"

func newTestService(t *testing.T, handler http.HandlerFunc) *StripeService {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	backend := stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
		URL:               stripe.String(srv.URL),
		HTTPClient:        srv.Client(),
		MaxNetworkRetries: stripe.Int64(0),
		LeveledLogger:     &stripe.LeveledLogger{Level: stripe.LevelNull},
	})
	api := client.New("sk_test_123", &stripe.Backends{API: backend, Connect: backend, Uploads: backend})

	return newStripeService(api, config.StripeConfig{
		WebhookSecret:    testWebhookSecret,
		BreakerThreshold: 2,
		BreakerTimeout:   time.Minute,
	}, logger.Discard())
}

func TestCreateCheckoutSession_SendsParams(t *testing.T) {
	var form map[string]string
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/checkout/sessions", r.URL.Path)
		assert.NoError(t, r.ParseForm())
		form = map[string]string{}
		for k := range r.PostForm {
			form[k] = r.PostForm.Get(k)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"cs_test_1","object":"checkout.session","url":"https://checkout.example/cs_test_1"}`))
	})

	sess, err := svc.CreateCheckoutSession(context.Background(), SessionParams{
		CustomerID:   "cus_1",
		LineItems:    []LineItem{{PriceReference: "price_a", Quantity: 2}},
		ShippingRate: "shr_1",
		SuccessURL:   "https://shop.example/checkout_result?success=true&session_id={CHECKOUT_SESSION_ID}",
		CancelURL:    "https://shop.example/cart",
		Metadata:     map[string]string{"cart_id": "C1"},
	})
	require.NoError(t, err)
	assert.Equal(t, "cs_test_1", sess.ID)
	assert.Equal(t, "https://checkout.example/cs_test_1", sess.URL)

	assert.Equal(t, "cus_1", form["customer"])
	assert.Equal(t, "payment", form["mode"])
	assert.Equal(t, "price_a", form["line_items[0][price]"])
	assert.Equal(t, "2", form["line_items[0][quantity]"])
	assert.Equal(t, "shr_1", form["shipping_options[0][shipping_rate]"])
	assert.Equal(t, "true", form["allow_promotion_codes"])
	assert.Equal(t, "C1", form["metadata[cart_id]"])
}

func TestFindCustomerByEmail_NoMatch(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/customers", r.URL.Path)
		assert.Equal(t, "shopper@example.com", r.URL.Query().Get("email"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"object":"list","data":[],"has_more":false,"url":"/v1/customers"}`))
	})

	c, err := svc.FindCustomerByEmail(context.Background(), "shopper@example.com")
	require.NoError(t, err)
	assert.Nil(t, c)
}

func TestFindCustomerByEmail_FirstMatch(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"object":"list","data":[{"id":"cus_9","object":"customer","email":"shopper@example.com"}],"has_more":false,"url":"/v1/customers"}`))
	})

	c, err := svc.FindCustomerByEmail(context.Background(), "shopper@example.com")
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Equal(t, "cus_9", c.ID)
}

func TestGatewayFailures_OpenBreaker(t *testing.T) {
	var calls int32
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"type":"api_error","message":"boom"}}`))
	})
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := svc.CreateCheckoutSession(ctx, SessionParams{CustomerID: "cus_1"})
		assert.Equal(t, apperror.KindGatewayUnavailable, apperror.KindOf(err))
	}

	_, err := svc.CreateCheckoutSession(ctx, SessionParams{CustomerID: "cus_1"})
	assert.Equal(t, apperror.KindGatewayUnavailable, apperror.KindOf(err))
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls), "open breaker must short-circuit")
}

func TestGatewayClientError_DoesNotTripBreaker(t *testing.T) {
	var calls int32
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"type":"invalid_request_error","message":"No such price"}}`))
	})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := svc.CreateCheckoutSession(ctx, SessionParams{CustomerID: "cus_1"})
		assert.Equal(t, apperror.KindInvalidRequest, apperror.KindOf(err))
	}
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

const completedEvent = `{
  "id": "evt_1",
  "object": "event",
  "type": "checkout.session.completed",
  "data": {
    "object": {
      "id": "cs_test_1",
      "object": "checkout.session",
      "amount_total": 1500,
      "currency": "usd",
      "customer_details": {
        "email": "shopper@example.com",
        "name": "Sam Shopper",
        "phone": "+15550001",
        "address": {"line1": "1 Main St", "city": "Springfield", "postal_code": "12345", "country": "US"}
      },
      "metadata": {"cart_id": "C1", "shipping_fee": "5.00"}
    }
  }
}`

func sign(payload, secret string) string {
	return webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   []byte(payload),
		Secret:    secret,
		Timestamp: time.Now(),
	}).Header
}

func TestVerifyEvent_DecodesCompletedSession(t *testing.T) {
	event, err := verifyEvent([]byte(completedEvent), sign(completedEvent, testWebhookSecret), testWebhookSecret)
	require.NoError(t, err)

	assert.Equal(t, "evt_1", event.ID)
	assert.Equal(t, EventCheckoutSessionCompleted, event.Type)
	require.NotNil(t, event.Session)
	assert.Equal(t, "cs_test_1", event.Session.ID)
	assert.Equal(t, int64(1500), event.Session.AmountTotal)
	assert.Equal(t, "shopper@example.com", event.Session.CustomerEmail)
	assert.Equal(t, "+15550001", event.Session.CustomerPhone)
	assert.Equal(t, "Springfield", event.Session.Address.City)
	assert.Equal(t, "C1", event.Session.Metadata["cart_id"])
	assert.JSONEq(t, completedEvent, string(event.Raw))
}

func TestVerifyEvent_RejectsBadSignature(t *testing.T) {
	_, err := verifyEvent([]byte(completedEvent), sign(completedEvent, "whsec_other"), testWebhookSecret)
	assert.Equal(t, apperror.KindInvalidSignature, apperror.KindOf(err))

	_, err = verifyEvent([]byte(completedEvent), "", testWebhookSecret)
	assert.Equal(t, apperror.KindInvalidSignature, apperror.KindOf(err))
}

func TestVerifyEvent_RejectsTamperedPayload(t *testing.T) {
	header := sign(completedEvent, testWebhookSecret)
	tampered := []byte(completedEvent[:len(completedEvent)-1] + " }")

	_, err := verifyEvent(tampered, header, testWebhookSecret)
	assert.Equal(t, apperror.KindInvalidSignature, apperror.KindOf(err))
}

func TestVerifyEvent_OtherTypesCarryNoSession(t *testing.T) {
	payload := `{"id":"evt_2","object":"event","type":"payment_intent.created","data":{"object":{"id":"pi_1","object":"payment_intent"}}}`

	event, err := verifyEvent([]byte(payload), sign(payload, testWebhookSecret), testWebhookSecret)
	require.NoError(t, err)
	assert.Equal(t, "payment_intent.created", event.Type)
	assert.Nil(t, event.Session)
}
