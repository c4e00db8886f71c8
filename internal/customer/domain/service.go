package domain

import (
	"context"
	"errors"
	"time"

	"github.com/smallbiznis/facturo/pkg/db/pagination"
)

type CustomerInput struct {
	Company         string `json:"company"`
	VATNumber       string `json:"vatNumber"`
	Phone           string `json:"phone"`
	Website         string `json:"website"`
	Group           string `json:"group"`
	Currency        string `json:"currency"`
	DefaultLanguage string `json:"defaultLanguage"`

	Address string `json:"address"`
	City    string `json:"city"`
	State   string `json:"state"`
	ZipCode string `json:"zipCode"`
	Country string `json:"country"`

	BillingAddress     string `json:"billingAddress"`
	BillingCity        string `json:"billingCity"`
	BillingState       string `json:"billingState"`
	BillingZipCode     string `json:"billingZipCode"`
	BillingCountry     string `json:"billingCountry"`
	SameAsCustomerInfo bool   `json:"sameAsCustomerInfo"`

	ShippingAddress    string `json:"shippingAddress"`
	ShippingCity       string `json:"shippingCity"`
	ShippingState      string `json:"shippingState"`
	ShippingZipCode    string `json:"shippingZipCode"`
	ShippingCountry    string `json:"shippingCountry"`
	CopyBillingAddress bool   `json:"copyBillingAddress"`
}

type ListCustomerRequest struct {
	PageToken   string
	PageSize    int32
	Company     string
	Currency    string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

type ListCustomerFilter struct {
	Company     string
	Currency    string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

type ListCustomerResponse struct {
	pagination.PageInfo
	Customers []Customer `json:"customers"`
}

type Service interface {
	Create(ctx context.Context, input CustomerInput) (Customer, error)
	List(ctx context.Context, req ListCustomerRequest) (ListCustomerResponse, error)
	GetByID(ctx context.Context, id string) (Customer, error)
	Update(ctx context.Context, id string, input CustomerInput) (Customer, error)
	Delete(ctx context.Context, id string) error
}

var (
	ErrInvalidCompany = errors.New("invalid_company")
	ErrInvalidID      = errors.New("invalid_id")
	ErrNotFound       = errors.New("not_found")
)
