// Package domain contains persistence models for invoicing.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/facturo/internal/invoice/totals"
	"gorm.io/datatypes"
)

// InvoiceStatus represents derived invoice lifecycle states. Status is
// never stored; it is recomputed from the due date on every read.
type InvoiceStatus string

const (
	InvoiceStatusDraft   InvoiceStatus = "draft"
	InvoiceStatusPending InvoiceStatus = "pending"
	InvoiceStatusOverdue InvoiceStatus = "overdue"
)

// Invoice represents a persisted invoice record. Line items live as an
// ordered JSON array; the totals snapshot is recomputed server-side on
// every create and update.
type Invoice struct {
	ID         snowflake.ID  `gorm:"primaryKey" json:"id"`
	CustomerID *snowflake.ID `gorm:"column:customer_id;index" json:"customerId,omitempty"`

	CustomerName  string `gorm:"column:customer_name;not null" json:"customerName"`
	CustomerEmail string `gorm:"column:customer_email" json:"customerEmail,omitempty"`

	BillToAddress string `gorm:"column:bill_to_address" json:"billToAddress,omitempty"`
	BillToCity    string `gorm:"column:bill_to_city" json:"billToCity,omitempty"`
	BillToState   string `gorm:"column:bill_to_state" json:"billToState,omitempty"`
	BillToZipCode string `gorm:"column:bill_to_zip_code" json:"billToZipCode,omitempty"`
	BillToCountry string `gorm:"column:bill_to_country" json:"billToCountry,omitempty"`

	ShipToAddress string `gorm:"column:ship_to_address" json:"shipToAddress,omitempty"`
	ShipToCity    string `gorm:"column:ship_to_city" json:"shipToCity,omitempty"`
	ShipToState   string `gorm:"column:ship_to_state" json:"shipToState,omitempty"`
	ShipToZipCode string `gorm:"column:ship_to_zip_code" json:"shipToZipCode,omitempty"`
	ShipToCountry string `gorm:"column:ship_to_country" json:"shipToCountry,omitempty"`

	InvoiceNumber           string     `gorm:"column:invoice_number;not null;uniqueIndex" json:"invoiceNumber"`
	InvoiceDate             *time.Time `gorm:"column:invoice_date" json:"invoiceDate,omitempty"`
	DueDate                 *time.Time `gorm:"column:due_date" json:"dueDate,omitempty"`
	PreventOverdueReminders bool       `gorm:"column:prevent_overdue_reminders" json:"preventOverdueReminders"`

	Tags         datatypes.JSONSlice[string] `gorm:"column:tags" json:"tags"`
	PaymentModes datatypes.JSONSlice[string] `gorm:"column:payment_modes" json:"paymentModes"`

	Currency        string  `gorm:"column:currency" json:"currency,omitempty"`
	SaleAgent       string  `gorm:"column:sale_agent" json:"saleAgent,omitempty"`
	IsRecurring     bool    `gorm:"column:is_recurring" json:"isRecurring"`
	DiscountType    string  `gorm:"column:discount_type" json:"discountType,omitempty"`
	DiscountValue   float64 `gorm:"column:discount_value" json:"discountValue"`
	Adjustment      float64 `gorm:"column:adjustment" json:"adjustment"`
	AdminNote       string  `gorm:"column:admin_note" json:"adminNote,omitempty"`
	QuantityDisplay string  `gorm:"column:quantity_display" json:"quantityDisplay,omitempty"`

	LineItems datatypes.JSONSlice[totals.LineItem] `gorm:"column:line_items" json:"lineItems"`

	ClientNote string `gorm:"column:client_note" json:"clientNote,omitempty"`
	Terms      string `gorm:"column:terms" json:"terms,omitempty"`

	Subtotal       float64 `gorm:"column:subtotal;not null;default:0" json:"subtotal"`
	DiscountAmount float64 `gorm:"column:discount_amount;not null;default:0" json:"discountAmount"`
	TaxAmount      float64 `gorm:"column:tax_amount;not null;default:0" json:"taxAmount"`
	Total          float64 `gorm:"column:total;not null;default:0" json:"total"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updatedAt"`
}

// TableName sets the database table name.
func (Invoice) TableName() string { return "invoices" }

// Status derives the lifecycle state at the given instant: draft
// without a usable due date, overdue once the due date passes unless
// reminders are suppressed, pending otherwise.
func (i Invoice) Status(now time.Time) InvoiceStatus {
	if i.DueDate == nil || i.DueDate.IsZero() {
		return InvoiceStatusDraft
	}
	if i.DueDate.Before(now) && !i.PreventOverdueReminders {
		return InvoiceStatusOverdue
	}
	return InvoiceStatusPending
}
