package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

type Customer struct {
	ID              snowflake.ID `gorm:"primaryKey" json:"id"`
	Company         string       `gorm:"column:company;not null" json:"company"`
	VATNumber       string       `gorm:"column:vat_number" json:"vatNumber,omitempty"`
	Phone           string       `gorm:"column:phone" json:"phone,omitempty"`
	Website         string       `gorm:"column:website" json:"website,omitempty"`
	Group           string       `gorm:"column:customer_group" json:"group,omitempty"`
	Currency        string       `gorm:"column:currency" json:"currency,omitempty"`
	DefaultLanguage string       `gorm:"column:default_language" json:"defaultLanguage,omitempty"`

	Address string `gorm:"column:address" json:"address,omitempty"`
	City    string `gorm:"column:city" json:"city,omitempty"`
	State   string `gorm:"column:state" json:"state,omitempty"`
	ZipCode string `gorm:"column:zip_code" json:"zipCode,omitempty"`
	Country string `gorm:"column:country" json:"country,omitempty"`

	BillingAddress     string `gorm:"column:billing_address" json:"billingAddress,omitempty"`
	BillingCity        string `gorm:"column:billing_city" json:"billingCity,omitempty"`
	BillingState       string `gorm:"column:billing_state" json:"billingState,omitempty"`
	BillingZipCode     string `gorm:"column:billing_zip_code" json:"billingZipCode,omitempty"`
	BillingCountry     string `gorm:"column:billing_country" json:"billingCountry,omitempty"`
	SameAsCustomerInfo bool   `gorm:"column:same_as_customer_info" json:"sameAsCustomerInfo"`

	ShippingAddress    string `gorm:"column:shipping_address" json:"shippingAddress,omitempty"`
	ShippingCity       string `gorm:"column:shipping_city" json:"shippingCity,omitempty"`
	ShippingState      string `gorm:"column:shipping_state" json:"shippingState,omitempty"`
	ShippingZipCode    string `gorm:"column:shipping_zip_code" json:"shippingZipCode,omitempty"`
	ShippingCountry    string `gorm:"column:shipping_country" json:"shippingCountry,omitempty"`
	CopyBillingAddress bool   `gorm:"column:copy_billing_address" json:"copyBillingAddress"`

	Metadata  datatypes.JSONMap `gorm:"type:jsonb;not null;default:'{}'" json:"metadata,omitempty"`
	CreatedAt time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updatedAt"`
}

// TableName sets the database table name.
func (Customer) TableName() string { return "customers" }
