package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/facturo/internal/customer/domain"
	"github.com/smallbiznis/facturo/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("customer.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, input domain.CustomerInput) (domain.Customer, error) {
	if strings.TrimSpace(input.Company) == "" {
		return domain.Customer{}, domain.ErrInvalidCompany
	}

	now := time.Now().UTC()
	customer := domain.Customer{
		ID:        s.genID.Generate(),
		Metadata:  datatypes.JSONMap{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	applyInput(&customer, input)

	if err := s.repo.Insert(ctx, s.db, &customer); err != nil {
		return domain.Customer{}, err
	}

	return customer, nil
}

func (s *Service) List(ctx context.Context, req domain.ListCustomerRequest) (domain.ListCustomerResponse, error) {
	filter := domain.ListCustomerFilter{
		Company:     strings.TrimSpace(req.Company),
		Currency:    strings.TrimSpace(req.Currency),
		CreatedFrom: req.CreatedFrom,
		CreatedTo:   req.CreatedTo,
	}

	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = pagination.DefaultPageSize
	}

	items, err := s.repo.List(ctx, s.db, filter, pagination.Pagination{
		PageToken: req.PageToken,
		PageSize:  int(pageSize),
	})
	if err != nil {
		return domain.ListCustomerResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, pageSize, func(customer *domain.Customer) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        customer.ID.String(),
			CreatedAt: customer.CreatedAt.Format(time.RFC3339Nano),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if pageInfo != nil && pageInfo.HasMore && len(items) > int(pageSize) {
		items = items[:pageSize]
	}

	customers := make([]domain.Customer, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		customers = append(customers, *item)
	}

	resp := domain.ListCustomerResponse{Customers: customers}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}

	return resp, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.Customer, error) {
	parsed, err := s.parseID(id)
	if err != nil {
		return domain.Customer{}, err
	}

	item, err := s.repo.FindByID(ctx, s.db, parsed)
	if err != nil {
		return domain.Customer{}, err
	}
	if item == nil {
		return domain.Customer{}, domain.ErrNotFound
	}

	return *item, nil
}

func (s *Service) Update(ctx context.Context, id string, input domain.CustomerInput) (domain.Customer, error) {
	parsed, err := s.parseID(id)
	if err != nil {
		return domain.Customer{}, err
	}
	if strings.TrimSpace(input.Company) == "" {
		return domain.Customer{}, domain.ErrInvalidCompany
	}

	existing, err := s.repo.FindByID(ctx, s.db, parsed)
	if err != nil {
		return domain.Customer{}, err
	}
	if existing == nil {
		return domain.Customer{}, domain.ErrNotFound
	}

	applyInput(existing, input)
	existing.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, s.db, existing); err != nil {
		return domain.Customer{}, err
	}

	return *existing, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	parsed, err := s.parseID(id)
	if err != nil {
		return err
	}

	affected, err := s.repo.Delete(ctx, s.db, parsed)
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *Service) parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}

func applyInput(customer *domain.Customer, input domain.CustomerInput) {
	customer.Company = strings.TrimSpace(input.Company)
	customer.VATNumber = strings.TrimSpace(input.VATNumber)
	customer.Phone = strings.TrimSpace(input.Phone)
	customer.Website = strings.TrimSpace(input.Website)
	customer.Group = strings.TrimSpace(input.Group)
	customer.Currency = strings.TrimSpace(input.Currency)
	customer.DefaultLanguage = strings.TrimSpace(input.DefaultLanguage)

	customer.Address = strings.TrimSpace(input.Address)
	customer.City = strings.TrimSpace(input.City)
	customer.State = strings.TrimSpace(input.State)
	customer.ZipCode = strings.TrimSpace(input.ZipCode)
	customer.Country = strings.TrimSpace(input.Country)

	customer.BillingAddress = strings.TrimSpace(input.BillingAddress)
	customer.BillingCity = strings.TrimSpace(input.BillingCity)
	customer.BillingState = strings.TrimSpace(input.BillingState)
	customer.BillingZipCode = strings.TrimSpace(input.BillingZipCode)
	customer.BillingCountry = strings.TrimSpace(input.BillingCountry)
	customer.SameAsCustomerInfo = input.SameAsCustomerInfo
	if input.SameAsCustomerInfo {
		customer.BillingAddress = customer.Address
		customer.BillingCity = customer.City
		customer.BillingState = customer.State
		customer.BillingZipCode = customer.ZipCode
		customer.BillingCountry = customer.Country
	}

	customer.ShippingAddress = strings.TrimSpace(input.ShippingAddress)
	customer.ShippingCity = strings.TrimSpace(input.ShippingCity)
	customer.ShippingState = strings.TrimSpace(input.ShippingState)
	customer.ShippingZipCode = strings.TrimSpace(input.ShippingZipCode)
	customer.ShippingCountry = strings.TrimSpace(input.ShippingCountry)
	customer.CopyBillingAddress = input.CopyBillingAddress
	if input.CopyBillingAddress {
		customer.ShippingAddress = customer.BillingAddress
		customer.ShippingCity = customer.BillingCity
		customer.ShippingState = customer.BillingState
		customer.ShippingZipCode = customer.BillingZipCode
		customer.ShippingCountry = customer.BillingCountry
	}
}
