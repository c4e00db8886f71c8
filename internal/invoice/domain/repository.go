package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/facturo/pkg/db/pagination"
	"gorm.io/gorm"
)

// StatusFact is the minimal projection needed to derive status counts.
type StatusFact struct {
	DueDate                 *time.Time
	PreventOverdueReminders bool
	Total                   float64
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, invoice *Invoice) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Invoice, error)
	List(ctx context.Context, db *gorm.DB, filter ListInvoiceFilter, page pagination.Pagination) ([]*Invoice, error)
	Update(ctx context.Context, db *gorm.DB, invoice *Invoice) error
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) (int64, error)
	Count(ctx context.Context, db *gorm.DB) (int64, error)
	CountCreatedBetween(ctx context.Context, db *gorm.DB, from, to time.Time) (int64, error)
	StatusFacts(ctx context.Context, db *gorm.DB) ([]StatusFact, error)
}
