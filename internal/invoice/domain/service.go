package domain

import (
	"context"
	"errors"
	"time"

	"github.com/smallbiznis/facturo/internal/invoice/totals"
	"github.com/smallbiznis/facturo/pkg/db/pagination"
)

// InvoiceInput carries client-submitted invoice fields. Discount value
// and adjustment are loosely typed the same way line-item numerics are;
// any totals the client sends are discarded and recomputed.
type InvoiceInput struct {
	CustomerID    string `json:"customerId"`
	CustomerName  string `json:"customerName"`
	CustomerEmail string `json:"customerEmail"`

	BillToAddress string `json:"billToAddress"`
	BillToCity    string `json:"billToCity"`
	BillToState   string `json:"billToState"`
	BillToZipCode string `json:"billToZipCode"`
	BillToCountry string `json:"billToCountry"`

	ShipToAddress string `json:"shipToAddress"`
	ShipToCity    string `json:"shipToCity"`
	ShipToState   string `json:"shipToState"`
	ShipToZipCode string `json:"shipToZipCode"`
	ShipToCountry string `json:"shipToCountry"`

	InvoiceNumber           string     `json:"invoiceNumber"`
	InvoiceDate             *time.Time `json:"invoiceDate"`
	DueDate                 *time.Time `json:"dueDate"`
	PreventOverdueReminders bool       `json:"preventOverdueReminders"`

	Tags         []string `json:"tags"`
	PaymentModes []string `json:"paymentModes"`

	Currency        string `json:"currency"`
	SaleAgent       string `json:"saleAgent"`
	IsRecurring     bool   `json:"isRecurring"`
	DiscountType    string `json:"discountType"`
	DiscountValue   any    `json:"discountValue"`
	Adjustment      any    `json:"adjustment"`
	AdminNote       string `json:"adminNote"`
	QuantityDisplay string `json:"quantityDisplay"`

	LineItems []totals.LineItem `json:"lineItems"`

	ClientNote string `json:"clientNote"`
	Terms      string `json:"terms"`
}

type ListInvoiceRequest struct {
	PageToken   string
	PageSize    int32
	Status      string
	Currency    string
	Search      string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

type ListInvoiceFilter struct {
	Status      InvoiceStatus
	Now         time.Time
	Currency    string
	Search      string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// InvoiceView is an invoice plus its derived status.
type InvoiceView struct {
	Invoice
	Status InvoiceStatus `json:"status"`
}

type ListInvoiceResponse struct {
	pagination.PageInfo
	Invoices []InvoiceView `json:"invoices"`
}

// Stats summarizes the invoice book for the dashboard.
type Stats struct {
	InvoiceCount     int64   `json:"invoiceCount"`
	PendingCount     int64   `json:"pendingCount"`
	OverdueCount     int64   `json:"overdueCount"`
	DraftCount       int64   `json:"draftCount"`
	OutstandingTotal float64 `json:"outstandingTotal"`
}

type Service interface {
	Create(ctx context.Context, input InvoiceInput) (InvoiceView, error)
	List(ctx context.Context, req ListInvoiceRequest) (ListInvoiceResponse, error)
	GetByID(ctx context.Context, id string) (InvoiceView, error)
	Update(ctx context.Context, id string, input InvoiceInput) (InvoiceView, error)
	Delete(ctx context.Context, id string) error
	RenderHTML(ctx context.Context, id string) (string, error)
	Stats(ctx context.Context) (Stats, error)
}

var (
	ErrInvalidCustomerName = errors.New("invalid_customer_name")
	ErrInvalidLineItem     = errors.New("invalid_line_item")
	ErrInvalidDiscountType = errors.New("invalid_discount_type")
	ErrInvalidID           = errors.New("invalid_id")
	ErrNotFound            = errors.New("not_found")
	ErrDuplicateNumber     = errors.New("duplicate_invoice_number")
)
