package checkout

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/storefront-backend/internal/domain/payment"
	"github.com/your-org/storefront-backend/internal/pkg/apperror"
	"github.com/your-org/storefront-backend/internal/pkg/logger"
)

type fakeGateway struct {
	existing      *payment.Customer
	findErr       error
	created       []payment.NewCustomer
	sessions      []payment.SessionParams
	sessionErr    error
	customerCalls int
}

func (g *fakeGateway) FindCustomerByEmail(ctx context.Context, email string) (*payment.Customer, error) {
	g.customerCalls++
	return g.existing, g.findErr
}

func (g *fakeGateway) CreateCustomer(ctx context.Context, in payment.NewCustomer) (*payment.Customer, error) {
	g.created = append(g.created, in)
	return &payment.Customer{ID: "cus_new", Email: in.Email}, nil
}

func (g *fakeGateway) CreateCheckoutSession(ctx context.Context, in payment.SessionParams) (*payment.Session, error) {
	if g.sessionErr != nil {
		return nil, g.sessionErr
	}
	g.sessions = append(g.sessions, in)
	return &payment.Session{ID: "cs_1", URL: "https://pay.example/cs_1"}, nil
}

type fakeCatalog map[uint]string

func (c fakeCatalog) LookupPriceReferences(ctx context.Context, ids []uint) (map[uint]string, error) {
	out := map[uint]string{}
	for _, id := range ids {
		if ref, ok := c[id]; ok {
			out[id] = ref
		}
	}
	return out, nil
}

func sampleRequest() *SessionRequest {
	return &SessionRequest{
		CheckoutItems: []CheckoutItem{{ProductID: 1, Quantity: 2}},
		ShippingRate:  "shr_standard",
		DeliveryOptions: DeliveryOptions{
			AddressLine1: "1 Main St",
			City:         "Springfield",
			PostalCode:   "12345",
			Country:      "US",
			ShippingFee:  500,
		},
		UserMetadata:  CustomerInfo{Email: "shopper@example.com", Name: "Sam"},
		OrderMetadata: map[string]string{MetaShippingMethod: "standard", MetaComment: "leave at door", MetaCartID: "spoofed"},
	}
}

func TestCreateSession_BuildsSessionWithCorrelation(t *testing.T) {
	gw := &fakeGateway{}
	svc := NewService(gw, fakeCatalog{1: "price_1"}, "https://shop.example/", logger.Discard())

	owner := uint(12)
	result, err := svc.CreateSession(context.Background(), "C1", &owner, sampleRequest(), "")
	require.NoError(t, err)

	assert.Equal(t, "cs_1", result.SessionID)
	assert.Equal(t, "https://pay.example/cs_1", result.URL)
	assert.Equal(t, int64(500), result.DeliveryOptions.ShippingFee)

	require.Len(t, gw.sessions, 1)
	params := gw.sessions[0]
	assert.Equal(t, "cus_new", params.CustomerID)
	assert.Equal(t, []payment.LineItem{{PriceReference: "price_1", Quantity: 2}}, params.LineItems)
	assert.Equal(t, "https://shop.example/checkout_result?success=true&session_id={CHECKOUT_SESSION_ID}", params.SuccessURL)
	assert.Equal(t, "https://shop.example/cart", params.CancelURL)

	assert.Equal(t, "C1", params.Metadata[MetaCartID])
	assert.Equal(t, "12", params.Metadata[MetaUserID])
	assert.Equal(t, "true", params.Metadata[MetaAuthenticated])
	assert.Equal(t, "500", params.Metadata[MetaShippingFee])
	assert.Equal(t, "standard", params.Metadata[MetaShippingMethod])
	assert.Equal(t, "leave at door", params.Metadata[MetaComment])

	require.Len(t, gw.created, 1)
	assert.Equal(t, "Springfield", gw.created[0].Address.City)
}

func TestCreateSession_ReusesExistingCustomer(t *testing.T) {
	gw := &fakeGateway{existing: &payment.Customer{ID: "cus_old", Email: "shopper@example.com"}}
	svc := NewService(gw, fakeCatalog{1: "price_1"}, "https://shop.example", logger.Discard())

	_, err := svc.CreateSession(context.Background(), "C1", nil, sampleRequest(), "https://other.example")
	require.NoError(t, err)

	assert.Empty(t, gw.created)
	require.Len(t, gw.sessions, 1)
	assert.Equal(t, "cus_old", gw.sessions[0].CustomerID)
	assert.Equal(t, "https://other.example/cart", gw.sessions[0].CancelURL)
	assert.Equal(t, "false", gw.sessions[0].Metadata[MetaAuthenticated])
	_, hasUser := gw.sessions[0].Metadata[MetaUserID]
	assert.False(t, hasUser)
}

func TestCreateSession_MissingPriceFailsWholeBuild(t *testing.T) {
	gw := &fakeGateway{}
	svc := NewService(gw, fakeCatalog{1: "price_1"}, "https://shop.example", logger.Discard())

	req := sampleRequest()
	req.CheckoutItems = append(req.CheckoutItems, CheckoutItem{ProductID: 2, Quantity: 1})

	_, err := svc.CreateSession(context.Background(), "C1", nil, req, "")
	require.Error(t, err)
	assert.Equal(t, apperror.KindPriceResolutionFailed, apperror.KindOf(err))
	assert.Equal(t, 422, apperror.HTTPStatus(err))
	assert.Empty(t, gw.sessions)
	assert.Zero(t, gw.customerCalls, "no gateway traffic before prices resolve")
}

func TestCreateSession_RequiresCart(t *testing.T) {
	svc := NewService(&fakeGateway{}, fakeCatalog{}, "", logger.Discard())

	_, err := svc.CreateSession(context.Background(), "", nil, sampleRequest(), "")
	assert.Equal(t, apperror.KindInvalidIdentity, apperror.KindOf(err))
}

func TestCreateSession_PropagatesGatewayFailure(t *testing.T) {
	gw := &fakeGateway{sessionErr: apperror.Wrap(apperror.KindGatewayUnavailable, "payment.create_session", errors.New("timeout"))}
	svc := NewService(gw, fakeCatalog{1: "price_1"}, "https://shop.example", logger.Discard())

	_, err := svc.CreateSession(context.Background(), "C1", nil, sampleRequest(), "")
	assert.Equal(t, apperror.KindGatewayUnavailable, apperror.KindOf(err))
	assert.Equal(t, 502, apperror.HTTPStatus(err))
}

func TestBuildMetadata_RejectsOversizedValues(t *testing.T) {
	req := sampleRequest()
	long := make([]byte, maxMetadataValueLen+1)
	for i := range long {
		long[i] = 'x'
	}
	req.OrderMetadata[MetaComment] = string(long)

	_, err := buildMetadata("C1", nil, req)
	assert.Equal(t, apperror.KindInvalidRequest, apperror.KindOf(err))
}
