package render

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/smallbiznis/facturo/internal/invoice/domain"
	"github.com/smallbiznis/facturo/internal/invoice/totals"
)

const invoiceHTMLTemplate = `<!doctype html>
<html lang="en">
<head>
  <meta charset="utf-8" />
  <title>Invoice {{.Invoice.InvoiceNumber}}</title>
  <style>
    * { box-sizing: border-box; }
    body {
      margin: 0;
      padding: 40px;
      font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, Helvetica, Arial, sans-serif;
      color: #1a1f36;
      background: #f7f9fc;
    }
    .invoice-card {
      background: #ffffff;
      max-width: 760px;
      margin: 0 auto;
      padding: 56px;
      box-shadow: 0 2px 5px rgba(0,0,0,0.04);
      border-radius: 4px;
    }
    .header { display: flex; justify-content: space-between; margin-bottom: 36px; }
    .header h1 { margin: 0; font-size: 24px; font-weight: 700; }
    .badge {
      align-self: flex-start;
      padding: 4px 10px;
      border-radius: 999px;
      font-size: 12px;
      font-weight: 600;
      text-transform: uppercase;
      background: #e3e8ee;
      color: #3c4257;
    }
    .badge-overdue { background: #fde2e1; color: #b3093c; }
    .badge-pending { background: #d7f7c2; color: #05690d; }
    .label {
      font-size: 11px;
      text-transform: uppercase;
      color: #8792a2;
      margin-bottom: 6px;
      font-weight: 600;
      letter-spacing: 0.3px;
    }
    .value { font-size: 14px; line-height: 1.5; }
    .meta-grid { display: flex; justify-content: space-between; margin-bottom: 36px; gap: 24px; }
    .col { flex: 1; }
    table { width: 100%; border-collapse: collapse; margin-bottom: 28px; }
    th {
      text-align: left;
      text-transform: uppercase;
      font-size: 11px;
      color: #8792a2;
      border-bottom: 1px solid #e3e8ee;
      padding: 10px 0;
      font-weight: 600;
    }
    td {
      padding: 14px 0;
      border-bottom: 1px solid #e3e8ee;
      font-size: 14px;
      vertical-align: top;
    }
    .td-right { text-align: right; }
    .item-title { font-weight: 600; margin-bottom: 2px; }
    .item-sub { font-size: 12px; color: #697386; }
    .totals { display: flex; flex-direction: column; align-items: flex-end; }
    .total-row { display: flex; justify-content: space-between; width: 260px; padding: 5px 0; font-size: 14px; }
    .total-label { color: #697386; }
    .total-final {
      border-top: 1px solid #e3e8ee;
      margin-top: 8px;
      padding-top: 10px;
      font-weight: 700;
      font-size: 16px;
    }
    .footer { margin-top: 48px; font-size: 12px; color: #8792a2; border-top: 1px solid #e3e8ee; padding-top: 18px; }
    @media print { body { background: #ffffff; padding: 0; } .invoice-card { box-shadow: none; } }
  </style>
</head>
<body>
  <div class="invoice-card">
    <div class="header">
      <div>
        <h1>Invoice</h1>
        <div class="label" style="margin-top: 12px;">Invoice number</div>
        <div class="value">{{.Invoice.InvoiceNumber}}</div>
      </div>
      <span class="badge badge-{{.Status}}">{{.Status}}</span>
    </div>

    <div class="meta-grid">
      <div class="col">
        <div class="label">Bill to</div>
        <div class="value">
          <strong>{{.Invoice.CustomerName}}</strong><br>
          {{if .Invoice.CustomerEmail}}{{.Invoice.CustomerEmail}}<br>{{end}}
          {{if .Invoice.BillToAddress}}{{.Invoice.BillToAddress}}<br>{{end}}
          {{if .BillToLine}}{{.BillToLine}}<br>{{end}}
          {{if .Invoice.BillToCountry}}{{.Invoice.BillToCountry}}{{end}}
        </div>
      </div>
      {{if .Invoice.ShipToAddress}}
      <div class="col">
        <div class="label">Ship to</div>
        <div class="value">
          {{.Invoice.ShipToAddress}}<br>
          {{if .ShipToLine}}{{.ShipToLine}}<br>{{end}}
          {{if .Invoice.ShipToCountry}}{{.Invoice.ShipToCountry}}{{end}}
        </div>
      </div>
      {{end}}
      <div class="col" style="flex: 0 0 180px;">
        <div class="label">Invoice date</div>
        <div class="value">{{formatDate .Invoice.InvoiceDate}}</div>
        <div class="label" style="margin-top: 14px;">Due date</div>
        <div class="value">{{formatDate .Invoice.DueDate}}</div>
        {{if .Invoice.SaleAgent}}
        <div class="label" style="margin-top: 14px;">Sale agent</div>
        <div class="value">{{.Invoice.SaleAgent}}</div>
        {{end}}
      </div>
    </div>

    <table>
      <thead>
        <tr>
          <th style="width: 44%;">Item</th>
          <th class="td-right">Qty</th>
          <th class="td-right">Rate</th>
          <th class="td-right">Tax</th>
          <th class="td-right">Amount</th>
        </tr>
      </thead>
      <tbody>
        {{range .Invoice.LineItems}}
        <tr>
          <td>
            <div class="item-title">{{.Name}}</div>
            {{if .Description}}<div class="item-sub">{{.Description}}</div>{{end}}
          </td>
          <td class="td-right">{{formatNumber .Quantity}} {{.Unit}}</td>
          <td class="td-right">{{formatMoney (coerce .Rate) $.Invoice.Currency}}</td>
          <td class="td-right">{{formatNumber .TaxRate}}%</td>
          <td class="td-right" style="font-weight: 500;">{{formatMoney .Amount $.Invoice.Currency}}</td>
        </tr>
        {{end}}
      </tbody>
    </table>

    <div class="totals">
      <div class="total-row">
        <span class="total-label">Subtotal</span>
        <span>{{formatMoney .Invoice.Subtotal .Invoice.Currency}}</span>
      </div>
      {{if ne .Invoice.DiscountAmount 0.0}}
      <div class="total-row">
        <span class="total-label">Discount</span>
        <span>-{{formatMoney .Invoice.DiscountAmount .Invoice.Currency}}</span>
      </div>
      {{end}}
      <div class="total-row">
        <span class="total-label">Tax</span>
        <span>{{formatMoney .Invoice.TaxAmount .Invoice.Currency}}</span>
      </div>
      {{if ne .Invoice.Adjustment 0.0}}
      <div class="total-row">
        <span class="total-label">Adjustment</span>
        <span>{{formatMoney .Invoice.Adjustment .Invoice.Currency}}</span>
      </div>
      {{end}}
      <div class="total-row total-final">
        <span>Total</span>
        <span>{{formatMoney .Invoice.Total .Invoice.Currency}}</span>
      </div>
    </div>

    {{if or .Invoice.ClientNote .Invoice.Terms}}
    <div class="footer">
      {{if .Invoice.ClientNote}}{{.Invoice.ClientNote}}{{end}}
      {{if .Invoice.Terms}}<br><br>{{.Invoice.Terms}}{{end}}
    </div>
    {{end}}
  </div>
</body>
</html>
`

// RenderInput feeds the printable invoice view from persisted fields.
type RenderInput struct {
	Invoice domain.Invoice
	Status  domain.InvoiceStatus
}

// BillToLine joins the city/state/zip portion of the billing address.
func (in RenderInput) BillToLine() string {
	return cityLine(in.Invoice.BillToCity, in.Invoice.BillToState, in.Invoice.BillToZipCode)
}

// ShipToLine joins the city/state/zip portion of the shipping address.
func (in RenderInput) ShipToLine() string {
	return cityLine(in.Invoice.ShipToCity, in.Invoice.ShipToState, in.Invoice.ShipToZipCode)
}

type Renderer interface {
	RenderHTML(input RenderInput) (string, error)
}

type HTMLRenderer struct {
	tpl *template.Template
}

func NewRenderer() Renderer {
	funcs := template.FuncMap{
		"formatMoney":  formatMoney,
		"formatDate":   formatDate,
		"formatNumber": formatNumber,
		"coerce":       totals.Coerce,
	}
	return &HTMLRenderer{
		tpl: template.Must(template.New("invoice").Funcs(funcs).Parse(invoiceHTMLTemplate)),
	}
}

func (r *HTMLRenderer) RenderHTML(input RenderInput) (string, error) {
	var buf bytes.Buffer
	if err := r.tpl.Execute(&buf, input); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func formatMoney(amount float64, currency string) string {
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if currency == "" {
		currency = "USD"
	}
	return fmt.Sprintf("%s %.2f", currency, amount)
}

func formatDate(value *time.Time) string {
	if value == nil || value.IsZero() {
		return "-"
	}
	return value.UTC().Format("2006-01-02")
}

func formatNumber(value any) string {
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.2f", totals.Coerce(value)), "0"), ".")
}

func cityLine(city, state, zip string) string {
	parts := make([]string, 0, 3)
	for _, p := range []string{city, state, zip} {
		if strings.TrimSpace(p) != "" {
			parts = append(parts, strings.TrimSpace(p))
		}
	}
	return strings.Join(parts, ", ")
}
