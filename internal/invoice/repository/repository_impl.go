package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/facturo/internal/invoice/domain"
	"github.com/smallbiznis/facturo/pkg/db/option"
	"github.com/smallbiznis/facturo/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, invoice *domain.Invoice) error {
	return db.WithContext(ctx).Create(invoice).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Invoice, error) {
	var invoice domain.Invoice
	err := db.WithContext(ctx).Where("id = ?", id).First(&invoice).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListInvoiceFilter, page pagination.Pagination) ([]*domain.Invoice, error) {
	var invoices []*domain.Invoice
	stmt := db.WithContext(ctx).Model(&domain.Invoice{})
	stmt = applyStatusFilter(stmt, filter)
	if filter.Currency != "" {
		stmt = stmt.Where("currency = ?", filter.Currency)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		stmt = stmt.Where("invoice_number LIKE ? OR customer_name LIKE ?", pattern, pattern)
	}
	if filter.CreatedFrom != nil {
		stmt = stmt.Where("created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		stmt = stmt.Where("created_at <= ?", *filter.CreatedTo)
	}
	stmt = option.ApplyPagination(page).Apply(stmt)
	err := stmt.
		Order("created_at desc, id desc").
		Find(&invoices).Error
	if err != nil {
		return nil, err
	}
	return invoices, nil
}

func applyStatusFilter(stmt *gorm.DB, filter domain.ListInvoiceFilter) *gorm.DB {
	switch filter.Status {
	case domain.InvoiceStatusDraft:
		return stmt.Where("due_date IS NULL")
	case domain.InvoiceStatusOverdue:
		return stmt.Where("due_date IS NOT NULL AND due_date < ? AND prevent_overdue_reminders = ?", filter.Now, false)
	case domain.InvoiceStatusPending:
		return stmt.Where("due_date IS NOT NULL AND (due_date >= ? OR prevent_overdue_reminders = ?)", filter.Now, true)
	default:
		return stmt
	}
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, invoice *domain.Invoice) error {
	return db.WithContext(ctx).
		Model(&domain.Invoice{}).
		Where("id = ?", invoice.ID).
		Select("*").
		Omit("id", "created_at").
		Updates(invoice).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) (int64, error) {
	tx := db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Invoice{})
	return tx.RowsAffected, tx.Error
}

func (r *repo) Count(ctx context.Context, db *gorm.DB) (int64, error) {
	var count int64
	err := db.WithContext(ctx).Model(&domain.Invoice{}).Count(&count).Error
	return count, err
}

func (r *repo) CountCreatedBetween(ctx context.Context, db *gorm.DB, from, to time.Time) (int64, error) {
	var count int64
	err := db.WithContext(ctx).
		Model(&domain.Invoice{}).
		Where("created_at >= ? AND created_at < ?", from, to).
		Count(&count).Error
	return count, err
}

func (r *repo) StatusFacts(ctx context.Context, db *gorm.DB) ([]domain.StatusFact, error) {
	var facts []domain.StatusFact
	err := db.WithContext(ctx).
		Model(&domain.Invoice{}).
		Select("due_date, prevent_overdue_reminders, total").
		Scan(&facts).Error
	if err != nil {
		return nil, err
	}
	return facts, nil
}
