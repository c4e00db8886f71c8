package pdf

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/gosimple/slug"
	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/props"
	invoicedomain "github.com/smallbiznis/facturo/internal/invoice/domain"
	"github.com/smallbiznis/facturo/internal/invoice/totals"
)

// Provider renders invoice documents.
type Provider interface {
	GenerateInvoice(ctx context.Context, view invoicedomain.InvoiceView) (io.Reader, error)
}

type MarotoProvider struct{}

func New() Provider {
	return &MarotoProvider{}
}

// Filename derives a stable download name from the invoice number.
func Filename(view invoicedomain.InvoiceView) string {
	name := slug.Make(view.InvoiceNumber)
	if name == "" {
		name = "invoice"
	}
	return name + ".pdf"
}

func (p *MarotoProvider) GenerateInvoice(ctx context.Context, view invoicedomain.InvoiceView) (io.Reader, error) {
	_ = ctx

	cfg := config.NewBuilder().
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
		}).
		Build()

	m := maroto.New(cfg)

	m.AddRow(14,
		text.NewCol(8, "Invoice", props.Text{
			Size:  20,
			Style: fontstyle.Bold,
			Align: align.Left,
		}),
		text.NewCol(4, strings.ToUpper(string(view.Status)), props.Text{
			Size:  11,
			Style: fontstyle.Bold,
			Align: align.Right,
		}),
	)

	m.AddRow(18,
		col.New(6).Add(
			text.New("Invoice number: "+view.InvoiceNumber, props.Text{Top: 0, Size: 9}),
			text.New("Invoice date: "+formatDate(view.InvoiceDate), props.Text{Top: 5, Size: 9}),
			text.New("Due date: "+formatDate(view.DueDate), props.Text{Top: 10, Size: 9}),
		),
		col.New(6),
	)

	m.AddRow(34,
		col.New(6).Add(
			text.New("Bill to", props.Text{Style: fontstyle.Bold, Size: 9}),
			text.New(view.CustomerName, props.Text{Top: 5, Size: 9}),
			text.New(view.CustomerEmail, props.Text{Top: 10, Size: 9}),
			text.New(addressLine(view.BillToAddress, view.BillToCity, view.BillToState, view.BillToZipCode, view.BillToCountry), props.Text{Top: 15, Size: 9}),
		),
		col.New(6).Add(
			text.New("Ship to", props.Text{Style: fontstyle.Bold, Size: 9}),
			text.New(addressLine(view.ShipToAddress, view.ShipToCity, view.ShipToState, view.ShipToZipCode, view.ShipToCountry), props.Text{Top: 5, Size: 9}),
		),
	)

	m.AddRow(10,
		text.NewCol(5, "Item", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(2, "Qty", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(2, "Rate", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(1, "Tax", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(2, "Amount", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
	)

	for _, item := range view.LineItems {
		label := item.Name
		if item.Description != "" {
			label += " - " + item.Description
		}
		m.AddRow(12,
			text.NewCol(5, label, props.Text{Size: 9}),
			text.NewCol(2, formatQuantity(item.Quantity, item.Unit), props.Text{Size: 9, Align: align.Right}),
			text.NewCol(2, money(totals.Coerce(item.Rate), view.Currency), props.Text{Size: 9, Align: align.Right}),
			text.NewCol(1, fmt.Sprintf("%g%%", totals.Coerce(item.TaxRate)), props.Text{Size: 9, Align: align.Right}),
			text.NewCol(2, money(item.Amount(), view.Currency), props.Text{Size: 9, Align: align.Right}),
		)
	}

	m.AddRow(8,
		col.New(7),
		text.NewCol(3, "Subtotal", props.Text{Size: 9}),
		text.NewCol(2, money(view.Subtotal, view.Currency), props.Text{Size: 9, Align: align.Right}),
	)
	if view.DiscountAmount != 0 {
		m.AddRow(8,
			col.New(7),
			text.NewCol(3, "Discount", props.Text{Size: 9}),
			text.NewCol(2, "-"+money(view.DiscountAmount, view.Currency), props.Text{Size: 9, Align: align.Right}),
		)
	}
	m.AddRow(8,
		col.New(7),
		text.NewCol(3, "Tax", props.Text{Size: 9}),
		text.NewCol(2, money(view.TaxAmount, view.Currency), props.Text{Size: 9, Align: align.Right}),
	)
	if view.Adjustment != 0 {
		m.AddRow(8,
			col.New(7),
			text.NewCol(3, "Adjustment", props.Text{Size: 9}),
			text.NewCol(2, money(view.Adjustment, view.Currency), props.Text{Size: 9, Align: align.Right}),
		)
	}
	m.AddRow(10,
		col.New(7),
		text.NewCol(3, "Total", props.Text{Style: fontstyle.Bold, Size: 10}),
		text.NewCol(2, money(view.Total, view.Currency), props.Text{Style: fontstyle.Bold, Size: 10, Align: align.Right}),
	)

	if view.ClientNote != "" {
		m.AddRow(16, text.NewCol(12, view.ClientNote, props.Text{Size: 8, Top: 6}))
	}
	if view.Terms != "" {
		m.AddRow(16, text.NewCol(12, view.Terms, props.Text{Size: 8, Top: 2}))
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, err
	}

	return bytes.NewReader(doc.GetBytes()), nil
}

func money(amount float64, currency string) string {
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

func formatQuantity(quantity any, unit string) string {
	q := strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.2f", totals.Coerce(quantity)), "0"), ".")
	if strings.TrimSpace(unit) == "" {
		return q
	}
	return q + " " + strings.TrimSpace(unit)
}

func addressLine(parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			kept = append(kept, strings.TrimSpace(p))
		}
	}
	return strings.Join(kept, ", ")
}
