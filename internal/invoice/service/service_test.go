package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/facturo/internal/config"
	"github.com/smallbiznis/facturo/internal/invoice/domain"
	"github.com/smallbiznis/facturo/internal/invoice/render"
	"github.com/smallbiznis/facturo/internal/invoice/repository"
	"github.com/smallbiznis/facturo/internal/invoice/totals"
	"github.com/smallbiznis/facturo/pkg/db"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestService(t *testing.T) domain.Service {
	t.Helper()

	dbConn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, dbConn.AutoMigrate(&domain.Invoice{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	settings, err := config.NewInvoicingConfigHolder()
	require.NoError(t, err)

	return New(Params{
		DB:       dbConn,
		Log:      zap.NewNop(),
		GenID:    node,
		Repo:     repository.Provide(),
		Settings: settings,
		Renderer: render.NewRenderer(),
	})
}

func daysFromNow(days int) *time.Time {
	ts := time.Now().UTC().AddDate(0, 0, days)
	return &ts
}

func TestCreateRecomputesTotals(t *testing.T) {
	svc := newTestService(t)

	created, err := svc.Create(context.Background(), domain.InvoiceInput{
		CustomerName: "Acme Corp",
		DiscountType: totals.DiscountPercent,
		// Loosely typed values arrive as strings from the form.
		DiscountValue: "10",
		Adjustment:    "-5",
		LineItems: []totals.LineItem{
			{Name: "Consulting", Quantity: 2, Unit: "Hour", Rate: 100, TaxRate: 10},
		},
	})
	require.NoError(t, err)

	require.Equal(t, 200.0, created.Subtotal)
	require.Equal(t, 20.0, created.DiscountAmount)
	require.Equal(t, 20.0, created.TaxAmount)
	require.Equal(t, 195.0, created.Total)
}

func TestCreateGeneratesInvoiceNumber(t *testing.T) {
	svc := newTestService(t)

	first, err := svc.Create(context.Background(), domain.InvoiceInput{CustomerName: "Acme Corp"})
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(first.InvoiceNumber, "INV-"), first.InvoiceNumber)
	require.True(t, strings.HasSuffix(first.InvoiceNumber, "-000001"), first.InvoiceNumber)

	second, err := svc.Create(context.Background(), domain.InvoiceInput{CustomerName: "Acme Corp"})
	require.NoError(t, err)
	require.True(t, strings.HasSuffix(second.InvoiceNumber, "-000002"), second.InvoiceNumber)
}

func TestCreateRejectsDuplicateExplicitNumber(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Create(context.Background(), domain.InvoiceInput{
		CustomerName:  "Acme Corp",
		InvoiceNumber: "INV-CUSTOM-1",
	})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), domain.InvoiceInput{
		CustomerName:  "Other Co",
		InvoiceNumber: "INV-CUSTOM-1",
	})
	require.ErrorIs(t, err, domain.ErrDuplicateNumber)
}

func TestCreateValidation(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Create(context.Background(), domain.InvoiceInput{CustomerName: "  "})
	require.ErrorIs(t, err, domain.ErrInvalidCustomerName)

	_, err = svc.Create(context.Background(), domain.InvoiceInput{
		CustomerName: "Acme Corp",
		DiscountType: "bogus",
	})
	require.ErrorIs(t, err, domain.ErrInvalidDiscountType)

	_, err = svc.Create(context.Background(), domain.InvoiceInput{
		CustomerName: "Acme Corp",
		LineItems:    []totals.LineItem{{Name: "  "}},
	})
	require.ErrorIs(t, err, domain.ErrInvalidLineItem)
}

func TestStatusDerivation(t *testing.T) {
	svc := newTestService(t)

	draft, err := svc.Create(context.Background(), domain.InvoiceInput{CustomerName: "Acme Corp"})
	require.NoError(t, err)
	require.Equal(t, domain.InvoiceStatusDraft, draft.Status)

	pending, err := svc.Create(context.Background(), domain.InvoiceInput{
		CustomerName: "Acme Corp",
		DueDate:      daysFromNow(14),
	})
	require.NoError(t, err)
	require.Equal(t, domain.InvoiceStatusPending, pending.Status)

	overdue, err := svc.Create(context.Background(), domain.InvoiceInput{
		CustomerName: "Acme Corp",
		DueDate:      daysFromNow(-3),
	})
	require.NoError(t, err)
	require.Equal(t, domain.InvoiceStatusOverdue, overdue.Status)

	muted, err := svc.Create(context.Background(), domain.InvoiceInput{
		CustomerName:            "Acme Corp",
		DueDate:                 daysFromNow(-3),
		PreventOverdueReminders: true,
	})
	require.NoError(t, err)
	require.Equal(t, domain.InvoiceStatusPending, muted.Status)
}

func TestUpdateIgnoresClientTotals(t *testing.T) {
	svc := newTestService(t)

	created, err := svc.Create(context.Background(), domain.InvoiceInput{
		CustomerName: "Acme Corp",
		LineItems: []totals.LineItem{
			{Name: "Widget", Quantity: 1, Unit: "Unit", Rate: 50, TaxRate: 0},
		},
	})
	require.NoError(t, err)
	require.Equal(t, 50.0, created.Total)

	updated, err := svc.Update(context.Background(), created.ID.String(), domain.InvoiceInput{
		CustomerName: "Acme Corp",
		LineItems: []totals.LineItem{
			{Name: "Widget", Quantity: 3, Unit: "Unit", Rate: 50, TaxRate: 0},
		},
	})
	require.NoError(t, err)
	require.Equal(t, 150.0, updated.Subtotal)
	require.Equal(t, 150.0, updated.Total)
	require.Equal(t, created.InvoiceNumber, updated.InvoiceNumber)

	got, err := svc.GetByID(context.Background(), created.ID.String())
	require.NoError(t, err)
	require.Equal(t, 150.0, got.Total)
}

func TestListFiltersByStatus(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Create(context.Background(), domain.InvoiceInput{CustomerName: "Draft Co"})
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), domain.InvoiceInput{
		CustomerName: "Pending Co",
		DueDate:      daysFromNow(7),
	})
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), domain.InvoiceInput{
		CustomerName: "Overdue Co",
		DueDate:      daysFromNow(-7),
	})
	require.NoError(t, err)

	all, err := svc.List(context.Background(), domain.ListInvoiceRequest{})
	require.NoError(t, err)
	require.Len(t, all.Invoices, 3)

	overdue, err := svc.List(context.Background(), domain.ListInvoiceRequest{Status: "overdue"})
	require.NoError(t, err)
	require.Len(t, overdue.Invoices, 1)
	require.Equal(t, "Overdue Co", overdue.Invoices[0].CustomerName)

	drafts, err := svc.List(context.Background(), domain.ListInvoiceRequest{Status: "draft"})
	require.NoError(t, err)
	require.Len(t, drafts.Invoices, 1)
	require.Equal(t, "Draft Co", drafts.Invoices[0].CustomerName)
}

func TestDelete(t *testing.T) {
	svc := newTestService(t)

	created, err := svc.Create(context.Background(), domain.InvoiceInput{CustomerName: "Acme Corp"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), created.ID.String()))
	require.ErrorIs(t, svc.Delete(context.Background(), created.ID.String()), domain.ErrNotFound)

	_, err = svc.GetByID(context.Background(), created.ID.String())
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRenderHTML(t *testing.T) {
	svc := newTestService(t)

	created, err := svc.Create(context.Background(), domain.InvoiceInput{
		CustomerName:  "Acme Corp",
		CustomerEmail: "billing@acme.test",
		DueDate:       daysFromNow(14),
		LineItems: []totals.LineItem{
			{Name: "Consulting", Description: "March retainer", Quantity: 2, Unit: "Hour", Rate: 100, TaxRate: 10},
		},
	})
	require.NoError(t, err)

	html, err := svc.RenderHTML(context.Background(), created.ID.String())
	require.NoError(t, err)
	require.Contains(t, html, created.InvoiceNumber)
	require.Contains(t, html, "Acme Corp")
	require.Contains(t, html, "Consulting")
	require.Contains(t, html, "USD 220.00")
}

func TestStats(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Create(context.Background(), domain.InvoiceInput{CustomerName: "Draft Co"})
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), domain.InvoiceInput{
		CustomerName: "Pending Co",
		DueDate:      daysFromNow(7),
		LineItems:    []totals.LineItem{{Name: "A", Quantity: 1, Unit: "Unit", Rate: 100}},
	})
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), domain.InvoiceInput{
		CustomerName: "Overdue Co",
		DueDate:      daysFromNow(-7),
		LineItems:    []totals.LineItem{{Name: "B", Quantity: 1, Unit: "Unit", Rate: 50}},
	})
	require.NoError(t, err)

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(3), stats.InvoiceCount)
	require.Equal(t, int64(1), stats.DraftCount)
	require.Equal(t, int64(1), stats.PendingCount)
	require.Equal(t, int64(1), stats.OverdueCount)
	require.Equal(t, 150.0, stats.OutstandingTotal)
}
