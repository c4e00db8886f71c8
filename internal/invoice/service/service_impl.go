package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/facturo/internal/config"
	"github.com/smallbiznis/facturo/internal/invoice/domain"
	"github.com/smallbiznis/facturo/internal/invoice/format"
	"github.com/smallbiznis/facturo/internal/invoice/render"
	"github.com/smallbiznis/facturo/internal/invoice/totals"
	"github.com/smallbiznis/facturo/pkg/db"
	"github.com/smallbiznis/facturo/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Invoice numbers derive from a per-day sequence; generation retries a
// few times when a concurrent create claims the same number.
const numberGenerationAttempts = 5

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Repo     domain.Repository
	Settings *config.InvoicingConfigHolder
	Renderer render.Renderer
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	repo     domain.Repository
	settings *config.InvoicingConfigHolder
	renderer render.Renderer
}

func New(p Params) domain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("invoice.service"),
		genID:    p.GenID,
		repo:     p.Repo,
		settings: p.Settings,
		renderer: p.Renderer,
	}
}

func (s *Service) Create(ctx context.Context, input domain.InvoiceInput) (domain.InvoiceView, error) {
	if err := validateInput(input); err != nil {
		return domain.InvoiceView{}, err
	}

	now := time.Now().UTC()
	invoice := domain.Invoice{
		ID:        s.genID.Generate(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.applyInput(&invoice, input); err != nil {
		return domain.InvoiceView{}, err
	}

	explicitNumber := strings.TrimSpace(input.InvoiceNumber) != ""
	if !explicitNumber {
		number, err := s.nextInvoiceNumber(ctx, now, 0)
		if err != nil {
			return domain.InvoiceView{}, err
		}
		invoice.InvoiceNumber = number
	}

	for attempt := 0; ; attempt++ {
		err := s.repo.Insert(ctx, s.db, &invoice)
		if err == nil {
			break
		}
		if !db.IsDuplicateKeyErr(err) {
			return domain.InvoiceView{}, err
		}
		if explicitNumber || attempt >= numberGenerationAttempts {
			return domain.InvoiceView{}, domain.ErrDuplicateNumber
		}
		number, genErr := s.nextInvoiceNumber(ctx, now, int64(attempt+1))
		if genErr != nil {
			return domain.InvoiceView{}, genErr
		}
		invoice.InvoiceNumber = number
	}

	s.log.Info("invoice created",
		zap.String("invoice_id", invoice.ID.String()),
		zap.String("invoice_number", invoice.InvoiceNumber),
	)
	return s.view(invoice), nil
}

func (s *Service) List(ctx context.Context, req domain.ListInvoiceRequest) (domain.ListInvoiceResponse, error) {
	filter := domain.ListInvoiceFilter{
		Status:      domain.InvoiceStatus(strings.ToLower(strings.TrimSpace(req.Status))),
		Now:         time.Now().UTC(),
		Currency:    strings.TrimSpace(req.Currency),
		Search:      strings.TrimSpace(req.Search),
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
		return domain.ListInvoiceResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, pageSize, func(invoice *domain.Invoice) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        invoice.ID.String(),
			CreatedAt: invoice.CreatedAt.Format(time.RFC3339Nano),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if pageInfo != nil && pageInfo.HasMore && len(items) > int(pageSize) {
		items = items[:pageSize]
	}

	views := make([]domain.InvoiceView, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		views = append(views, s.view(*item))
	}

	resp := domain.ListInvoiceResponse{Invoices: views}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}

	return resp, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.InvoiceView, error) {
	invoice, err := s.find(ctx, id)
	if err != nil {
		return domain.InvoiceView{}, err
	}
	return s.view(*invoice), nil
}

func (s *Service) Update(ctx context.Context, id string, input domain.InvoiceInput) (domain.InvoiceView, error) {
	if err := validateInput(input); err != nil {
		return domain.InvoiceView{}, err
	}

	invoice, err := s.find(ctx, id)
	if err != nil {
		return domain.InvoiceView{}, err
	}

	number := invoice.InvoiceNumber
	if err := s.applyInput(invoice, input); err != nil {
		return domain.InvoiceView{}, err
	}
	if strings.TrimSpace(input.InvoiceNumber) == "" {
		invoice.InvoiceNumber = number
	}
	invoice.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, s.db, invoice); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return domain.InvoiceView{}, domain.ErrDuplicateNumber
		}
		return domain.InvoiceView{}, err
	}

	return s.view(*invoice), nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	parsed, err := parseID(id)
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

func (s *Service) RenderHTML(ctx context.Context, id string) (string, error) {
	invoice, err := s.find(ctx, id)
	if err != nil {
		return "", err
	}

	return s.renderer.RenderHTML(render.RenderInput{
		Invoice: *invoice,
		Status:  invoice.Status(time.Now().UTC()),
	})
}

func (s *Service) Stats(ctx context.Context) (domain.Stats, error) {
	facts, err := s.repo.StatusFacts(ctx, s.db)
	if err != nil {
		return domain.Stats{}, err
	}

	now := time.Now().UTC()
	stats := domain.Stats{InvoiceCount: int64(len(facts))}
	for _, fact := range facts {
		probe := domain.Invoice{
			DueDate:                 fact.DueDate,
			PreventOverdueReminders: fact.PreventOverdueReminders,
		}
		switch probe.Status(now) {
		case domain.InvoiceStatusDraft:
			stats.DraftCount++
		case domain.InvoiceStatusOverdue:
			stats.OverdueCount++
			stats.OutstandingTotal += fact.Total
		default:
			stats.PendingCount++
			stats.OutstandingTotal += fact.Total
		}
	}
	return stats, nil
}

func (s *Service) find(ctx context.Context, id string) (*domain.Invoice, error) {
	parsed, err := parseID(id)
	if err != nil {
		return nil, err
	}

	invoice, err := s.repo.FindByID(ctx, s.db, parsed)
	if err != nil {
		return nil, err
	}
	if invoice == nil {
		return nil, domain.ErrNotFound
	}
	return invoice, nil
}

func (s *Service) view(invoice domain.Invoice) domain.InvoiceView {
	return domain.InvoiceView{
		Invoice: invoice,
		Status:  invoice.Status(time.Now().UTC()),
	}
}

// applyInput replaces mutable fields and recomputes the totals snapshot.
// Client-submitted totals are never read.
func (s *Service) applyInput(invoice *domain.Invoice, input domain.InvoiceInput) error {
	settings := s.settings.Get()

	if trimmed := strings.TrimSpace(input.CustomerID); trimmed != "" {
		customerID, err := snowflake.ParseString(trimmed)
		if err != nil {
			return domain.ErrInvalidID
		}
		invoice.CustomerID = &customerID
	} else {
		invoice.CustomerID = nil
	}

	invoice.CustomerName = strings.TrimSpace(input.CustomerName)
	invoice.CustomerEmail = strings.TrimSpace(input.CustomerEmail)

	invoice.BillToAddress = strings.TrimSpace(input.BillToAddress)
	invoice.BillToCity = strings.TrimSpace(input.BillToCity)
	invoice.BillToState = strings.TrimSpace(input.BillToState)
	invoice.BillToZipCode = strings.TrimSpace(input.BillToZipCode)
	invoice.BillToCountry = strings.TrimSpace(input.BillToCountry)

	invoice.ShipToAddress = strings.TrimSpace(input.ShipToAddress)
	invoice.ShipToCity = strings.TrimSpace(input.ShipToCity)
	invoice.ShipToState = strings.TrimSpace(input.ShipToState)
	invoice.ShipToZipCode = strings.TrimSpace(input.ShipToZipCode)
	invoice.ShipToCountry = strings.TrimSpace(input.ShipToCountry)

	invoice.InvoiceNumber = strings.TrimSpace(input.InvoiceNumber)
	invoice.InvoiceDate = input.InvoiceDate
	invoice.DueDate = input.DueDate
	invoice.PreventOverdueReminders = input.PreventOverdueReminders

	invoice.Tags = datatypes.NewJSONSlice(emptyIfNil(input.Tags))
	invoice.PaymentModes = datatypes.NewJSONSlice(emptyIfNil(input.PaymentModes))

	invoice.Currency = strings.TrimSpace(input.Currency)
	if invoice.Currency == "" {
		invoice.Currency = settings.DefaultCurrency
	}
	invoice.SaleAgent = strings.TrimSpace(input.SaleAgent)
	invoice.IsRecurring = input.IsRecurring

	discountType := strings.TrimSpace(input.DiscountType)
	if discountType == "" {
		discountType = totals.DiscountFixed
	}
	invoice.DiscountType = discountType
	invoice.DiscountValue = totals.Coerce(input.DiscountValue)
	invoice.Adjustment = totals.Coerce(input.Adjustment)
	invoice.AdminNote = strings.TrimSpace(input.AdminNote)
	invoice.QuantityDisplay = strings.TrimSpace(input.QuantityDisplay)

	items := input.LineItems
	if items == nil {
		items = []totals.LineItem{}
	}
	invoice.LineItems = datatypes.NewJSONSlice(items)

	invoice.ClientNote = strings.TrimSpace(input.ClientNote)
	invoice.Terms = strings.TrimSpace(input.Terms)

	computed := totals.Compute(items, discountType, input.DiscountValue, input.Adjustment)
	invoice.Subtotal = computed.Subtotal
	invoice.DiscountAmount = computed.DiscountAmount
	invoice.TaxAmount = computed.TaxAmount
	invoice.Total = computed.GrandTotal

	return nil
}

func (s *Service) nextInvoiceNumber(ctx context.Context, now time.Time, bump int64) (string, error) {
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	count, err := s.repo.CountCreatedBetween(ctx, s.db, dayStart, dayStart.Add(24*time.Hour))
	if err != nil {
		return "", err
	}

	template := s.settings.Get().NumberTemplate
	if strings.TrimSpace(template) == "" {
		template = format.DefaultNumberTemplate
	}
	return format.Number(template, now, count+1+bump)
}

func validateInput(input domain.InvoiceInput) error {
	if strings.TrimSpace(input.CustomerName) == "" {
		return domain.ErrInvalidCustomerName
	}
	switch strings.TrimSpace(input.DiscountType) {
	case "", totals.DiscountPercent, totals.DiscountFixed:
	default:
		return domain.ErrInvalidDiscountType
	}
	for _, item := range input.LineItems {
		if strings.TrimSpace(item.Name) == "" {
			return domain.ErrInvalidLineItem
		}
	}
	return nil
}

func parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}

func emptyIfNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
