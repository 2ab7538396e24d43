// internal/pkg/email/types.go
package email

import (
	"fmt"
)

// EmailType represents the type of email being sent
type EmailType string

const (
	EmailTypeOrderConfirmation EmailType = "order_confirmation"
	EmailTypeDeliveryCheck     EmailType = "delivery_check"
)

// Email represents an email message
type Email struct {
	To          []string  `json:"to"`
	Subject     string    `json:"subject"`
	HTMLContent string    `json:"html_content"`
	Type        EmailType `json:"type"`
}

// OrderConfirmationData contains data for the order confirmation email
type OrderConfirmationData struct {
	StoreName        string
	SupportEmail     string
	CustomerEmail    string
	CustomerName     string
	CustomerFacingID string
	Items            []OrderLine
	Subtotal         int64 // cents
	ShippingFee      int64
	Total            int64
	Year             int
}

// OrderLine represents an item in the order
type OrderLine struct {
	Name      string
	Includes  string
	Quantity  int
	UnitPrice int64 // cents
	LineTotal int64
}

// FormatCents renders an amount in cents as dollars
func FormatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s$%d.%02d", sign, cents/100, cents%100)
}
