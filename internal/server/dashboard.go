package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/facturo/internal/cache"
	customerdomain "github.com/smallbiznis/facturo/internal/customer/domain"
)

func (s *Server) GetDashboard(c *gin.Context) {
	if overview, ok := s.dashboardCache.GetOverview(); ok {
		c.JSON(http.StatusOK, gin.H{"data": overview})
		return
	}

	var customerCount int64
	if err := s.db.WithContext(c.Request.Context()).
		Model(&customerdomain.Customer{}).
		Count(&customerCount).Error; err != nil {
		AbortWithError(c, err)
		return
	}

	stats, err := s.invoiceSvc.Stats(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	overview := cache.Overview{
		CustomerCount: customerCount,
		Invoices:      stats,
	}
	s.dashboardCache.SetOverview(overview)

	c.JSON(http.StatusOK, gin.H{"data": overview})
}

// GetInvoicingSettings returns the current invoicing defaults so the
// invoice form can prefill currency and due date.
func (s *Server) GetInvoicingSettings(c *gin.Context) {
	cfg := s.invoiceSettings.Get()
	c.JSON(http.StatusOK, gin.H{"data": gin.H{
		"numberTemplate":  cfg.NumberTemplate,
		"defaultCurrency": cfg.DefaultCurrency,
		"defaultDueDays":  cfg.DefaultDueDays,
	}})
}
