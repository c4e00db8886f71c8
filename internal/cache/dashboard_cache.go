package cache

import (
	"time"

	invoicedomain "github.com/smallbiznis/facturo/internal/invoice/domain"
)

const defaultOverviewTTL = 30 * time.Second

// Overview is the aggregate snapshot shown on the dashboard.
type Overview struct {
	CustomerCount int64               `json:"customerCount"`
	Invoices      invoicedomain.Stats `json:"invoices"`
}

// DashboardCache keeps the latest overview so repeated dashboard loads
// do not re-run the aggregate queries.
type DashboardCache interface {
	GetOverview() (Overview, bool)
	SetOverview(overview Overview)
	Invalidate()
}

type dashboardCache struct {
	overview Cache[string, Overview]
	ttl      time.Duration
}

func NewDashboardCache() DashboardCache {
	return &dashboardCache{
		overview: NewTTLCache[string, Overview](),
		ttl:      defaultOverviewTTL,
	}
}

func (c *dashboardCache) GetOverview() (Overview, bool) {
	return c.overview.Get("overview")
}

func (c *dashboardCache) SetOverview(overview Overview) {
	c.overview.Set("overview", overview, c.ttl)
}

func (c *dashboardCache) Invalidate() {
	c.overview.Delete("overview")
}
