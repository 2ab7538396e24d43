// internal/domain/payment/types.go
package payment

// EventCheckoutSessionCompleted is the only event type that triggers fulfillment
const EventCheckoutSessionCompleted = "checkout.session.completed"

// Address is a postal address as exchanged with the gateway
type Address struct {
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	State      string `json:"state,omitempty"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

// Customer is a gateway-side customer record
type Customer struct {
	ID    string
	Email string
}

// NewCustomer describes a customer to create
type NewCustomer struct {
	Email   string
	Name    string
	Address Address
}

// LineItem is one priced line of a checkout session
type LineItem struct {
	PriceReference string
	Quantity       int64
}

// SessionParams describes a hosted checkout session to open
type SessionParams struct {
	CustomerID   string
	LineItems    []LineItem
	ShippingRate string
	SuccessURL   string
	CancelURL    string
	Metadata     map[string]string
}

// Session is an opened checkout session
type Session struct {
	ID  string
	URL string
}

// CompletedSession is the part of a completed checkout session that fulfillment reads
type CompletedSession struct {
	ID            string
	AmountTotal   int64
	Currency      string
	CustomerEmail string
	CustomerName  string
	CustomerPhone string
	Address       Address
	Metadata      map[string]string
}

// Event is a verified gateway webhook event
type Event struct {
	ID      string
	Type    string
	Session *CompletedSession // set for checkout.session.completed only
	Raw     []byte
}
