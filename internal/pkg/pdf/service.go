// internal/pkg/pdf/service.go
package pdf

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"time"

	"github.com/SebastiaanKlippert/go-wkhtmltopdf"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/order"
	"github.com/your-org/storefront-backend/internal/pkg/email"
)

// Service handles PDF generation
type Service struct {
	store    config.CheckoutConfig
	template *template.Template
}

// NewService creates a new PDF service
func NewService(cfg config.CheckoutConfig) *Service {
	return &Service{
		store: cfg,
		template: template.Must(template.New("invoice").Funcs(template.FuncMap{
			"money": email.FormatCents,
		}).Parse(invoiceTemplate)),
	}
}

// InvoiceData represents the data passed to the invoice template
type InvoiceData struct {
	InvoiceNumber string
	InvoiceDate   string
	StoreName     string
	SupportEmail  string
	Order         *order.Order
	Subtotal      int64
}

// RenderHTML renders the invoice page for an order
func (s *Service) RenderHTML(o *order.Order) (string, error) {
	data := InvoiceData{
		InvoiceNumber: fmt.Sprintf("INV-%s", o.CustomerFacingID),
		InvoiceDate:   o.CreatedAt.Format("January 2, 2006"),
		StoreName:     s.store.StoreName,
		SupportEmail:  s.store.SupportEmail,
		Order:         o,
		Subtotal:      o.Subtotal(),
	}
	if o.CreatedAt.IsZero() {
		data.InvoiceDate = time.Now().Format("January 2, 2006")
	}

	var buf bytes.Buffer
	if err := s.template.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}
	return buf.String(), nil
}

// GenerateInvoice generates a PDF invoice for an order
func (s *Service) GenerateInvoice(ctx context.Context, o *order.Order) ([]byte, error) {
	html, err := s.RenderHTML(o)
	if err != nil {
		return nil, fmt.Errorf("failed to generate HTML: %w", err)
	}

	pdfg, err := wkhtmltopdf.NewPDFGenerator()
	if err != nil {
		return nil, fmt.Errorf("failed to create PDF generator: %w", err)
	}

	pdfg.Dpi.Set(300)
	pdfg.Orientation.Set(wkhtmltopdf.OrientationPortrait)
	pdfg.PageSize.Set(wkhtmltopdf.PageSizeA4)

	page := wkhtmltopdf.NewPageReader(bytes.NewReader([]byte(html)))
	page.FooterRight.Set("[page]")
	page.FooterFontSize.Set(9)
	pdfg.AddPage(page)

	if err := pdfg.CreateContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to create PDF: %w", err)
	}
	return pdfg.Bytes(), nil
}

const invoiceTemplate = `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Invoice {{.InvoiceNumber}}</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 0; padding: 20px; color: #333; }
        .header { border-bottom: 2px solid #eee; padding-bottom: 20px; margin-bottom: 30px; }
        .title { font-size: 28px; font-weight: bold; color: #2f6b3a; }
        table.items { width: 100%; border-collapse: collapse; margin-bottom: 20px; }
        table.items th { background: #f8f9fa; text-align: left; padding: 10px; border-bottom: 2px solid #dee2e6; }
        table.items td { padding: 10px; border-bottom: 1px solid #eee; }
        .num { text-align: right; }
        .totals { width: 300px; margin-left: auto; }
        .totals td { padding: 4px 0; }
        .grand { font-weight: bold; font-size: 16px; border-top: 2px solid #333; }
        .footer { margin-top: 40px; font-size: 12px; color: #666; }
    </style>
</head>
<body>
    <div class="header">
        <div class="title">{{.StoreName}}</div>
        <div>Invoice {{.InvoiceNumber}} &middot; {{.InvoiceDate}}</div>
        <div>Order {{.Order.CustomerFacingID}}</div>
    </div>

    <div>
        <strong>Bill to</strong><br>
        {{.Order.CustomerName}}<br>
        {{with .Order.DeliveryAddress}}
        {{.Line1}}{{if .Line2}}, {{.Line2}}{{end}}<br>
        {{.City}}{{if .State}}, {{.State}}{{end}} {{.PostalCode}}<br>
        {{.Country}}
        {{end}}
    </div>

    <table class="items">
        <thead>
            <tr><th>Product</th><th class="num">Quantity</th><th class="num">Price</th><th class="num">Total</th></tr>
        </thead>
        <tbody>
            {{range .Order.Items}}
            <tr>
                <td>{{.Name}}{{if .Includes}}<br><small>{{.Includes}}</small>{{end}}</td>
                <td class="num">{{.Quantity}}</td>
                <td class="num">{{money .UnitPrice}}</td>
                <td class="num">{{money .Price}}</td>
            </tr>
            {{end}}
        </tbody>
    </table>

    <table class="totals">
        <tr><td>Subtotal</td><td class="num">{{money .Subtotal}}</td></tr>
        <tr><td>Shipping Fee</td><td class="num">{{money .Order.ShippingFee}}</td></tr>
        <tr class="grand"><td>Total</td><td class="num">{{money .Order.TotalPrice}}</td></tr>
    </table>

    <div class="footer">Questions about this invoice? Contact {{.SupportEmail}}.</div>
</body>
</html>`
