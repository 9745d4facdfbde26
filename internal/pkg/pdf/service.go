// internal/pkg/pdf/service.go
package pdf

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"github.com/SebastiaanKlippert/go-wkhtmltopdf"
	"github.com/your-org/evermore-storefront/internal/config"
	"github.com/your-org/evermore-storefront/internal/domain/order"
)

// Service renders order receipts as PDF
type Service struct {
	config *config.Config
	tmpl   *template.Template
	render func(html []byte) ([]byte, error)
}

// NewService creates a new PDF service backed by wkhtmltopdf
func NewService(cfg *config.Config) *Service {
	return &Service{
		config: cfg,
		tmpl:   template.Must(template.New("receipt").Parse(receiptTemplate)),
		render: renderWithWkhtmltopdf,
	}
}

// ReceiptData is the data passed to the receipt template
type ReceiptData struct {
	ReceiptNumber string
	IssuedAt      string
	Order         *order.Order
	Company       CompanyInfo
}

// CompanyInfo represents company information
type CompanyInfo struct {
	Name    string
	Address string
	Email   string
	Website string
}

// GenerateReceipt renders the receipt of a placed order
func (s *Service) GenerateReceipt(o *order.Order) (*bytes.Buffer, error) {
	html, err := s.GenerateHTML(o)
	if err != nil {
		return nil, err
	}

	content, err := s.render(html)
	if err != nil {
		return nil, err
	}

	return bytes.NewBuffer(content), nil
}

// GenerateHTML renders the receipt template for o
func (s *Service) GenerateHTML(o *order.Order) ([]byte, error) {
	data := ReceiptData{
		ReceiptNumber: fmt.Sprintf("RCT-%s", o.OrderNumber),
		IssuedAt:      o.CreatedAt.Format("January 2, 2006"),
		Order:         o,
		Company: CompanyInfo{
			Name:    s.config.App.CompanyName,
			Address: s.config.App.CompanyAddress,
			Email:   s.config.App.CompanyEmail,
			Website: s.config.App.CompanyWebsite,
		},
	}
	if o.CreatedAt.IsZero() {
		data.IssuedAt = time.Now().Format("January 2, 2006")
	}

	var buf bytes.Buffer
	if err := s.tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to execute template: %w", err)
	}

	return buf.Bytes(), nil
}

func renderWithWkhtmltopdf(html []byte) ([]byte, error) {
	pdfg, err := wkhtmltopdf.NewPDFGenerator()
	if err != nil {
		return nil, fmt.Errorf("failed to create PDF generator: %w", err)
	}

	pdfg.Dpi.Set(300)
	pdfg.Orientation.Set(wkhtmltopdf.OrientationPortrait)
	pdfg.PageSize.Set(wkhtmltopdf.PageSizeA4)

	page := wkhtmltopdf.NewPageReader(bytes.NewReader(html))
	page.FooterRight.Set("[page]")
	page.FooterFontSize.Set(9)
	page.Zoom.Set(0.95)
	pdfg.AddPage(page)

	if err := pdfg.Create(); err != nil {
		return nil, fmt.Errorf("failed to create PDF: %w", err)
	}

	return pdfg.Bytes(), nil
}

const receiptTemplate = `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Receipt {{.ReceiptNumber}}</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 0; padding: 20px; color: #333; }
        .header { border-bottom: 2px solid #eee; padding-bottom: 20px; margin-bottom: 30px; }
        .title { font-size: 28px; font-weight: bold; color: #1f2937; }
        .section-title { font-size: 16px; font-weight: bold; margin: 20px 0 10px; color: #374151; }
        .items { width: 100%; border-collapse: collapse; margin-bottom: 30px; }
        .items th, .items td { border: 1px solid #ddd; padding: 10px 8px; text-align: left; }
        .items th { background-color: #f8f9fa; }
        .num { text-align: right; }
        .totals { width: 300px; margin-left: auto; border-collapse: collapse; }
        .totals td { padding: 6px 8px; }
        .grand td { font-weight: bold; border-top: 2px solid #333; }
        .footer { margin-top: 40px; font-size: 12px; color: #6b7280; text-align: center; }
    </style>
</head>
<body>
    <div class="header">
        <div class="title">{{.Company.Name}}</div>
        <div>{{.Company.Address}}</div>
        <div>{{.Company.Email}} · {{.Company.Website}}</div>
    </div>

    <div class="section-title">Receipt {{.ReceiptNumber}}</div>
    <div>Order: {{.Order.OrderNumber}}</div>
    <div>Date: {{.IssuedAt}}</div>
    <div>Payment: {{.Order.PaymentMethod}} ({{.Order.PaymentStatus}})</div>

    <div class="section-title">Ship to</div>
    {{with .Order.ShippingAddress}}
    <div>{{.FullName}}</div>
    <div>{{.Address}}</div>
    <div>{{.City}}, {{.State}} {{.PostalCode}}</div>
    <div>{{.Country}}</div>
    <div>{{.Phone}}</div>
    {{end}}

    <div class="section-title">Items</div>
    <table class="items">
        <thead>
            <tr><th>Product</th><th>Variant</th><th class="num">Qty</th><th class="num">Price</th><th class="num">Total</th></tr>
        </thead>
        <tbody>
        {{range .Order.Items}}
            <tr>
                <td>{{.Name}}</td>
                <td>{{.SelectedColor}}{{if and .SelectedColor .SelectedSize}} / {{end}}{{.SelectedSize}}</td>
                <td class="num">{{.Quantity}}</td>
                <td class="num">{{.Price.StringFixed 2}}</td>
                <td class="num">{{.TotalPrice.StringFixed 2}}</td>
            </tr>
        {{end}}
        </tbody>
    </table>

    <table class="totals">
        <tr><td>Subtotal</td><td class="num">{{.Order.SubtotalAmount.StringFixed 2}} {{.Order.Currency}}</td></tr>
        <tr><td>Shipping</td><td class="num">{{if .Order.ShippingAmount.IsZero}}Free{{else}}{{.Order.ShippingAmount.StringFixed 2}} {{.Order.Currency}}{{end}}</td></tr>
        {{if .Order.DiscountPercent}}<tr><td>Discount ({{.Order.DiscountCode}}, {{.Order.DiscountPercent}}%)</td><td class="num">-{{.Order.DiscountAmount.StringFixed 2}} {{.Order.Currency}}</td></tr>{{end}}
        {{if not .Order.TaxAmount.IsZero}}<tr><td>Tax</td><td class="num">{{.Order.TaxAmount.StringFixed 2}} {{.Order.Currency}}</td></tr>{{end}}
        <tr class="grand"><td>Total</td><td class="num">{{.Order.TotalAmount.StringFixed 2}} {{.Order.Currency}}</td></tr>
    </table>

    <div class="footer">Thank you for shopping with {{.Company.Name}}.</div>
</body>
</html>
`
