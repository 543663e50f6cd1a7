package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// GetFinancialSummary returns collected/expected totals, hosts excluded.
func (h *Handler) GetFinancialSummary(c *gin.Context) {
	summary, err := h.reports().FinancialSummary(c.Request.Context())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// GetDailyPayments lists payments of ?date=YYYY-MM-DD (today by default).
func (h *Handler) GetDailyPayments(c *gin.Context) {
	report, err := h.reports().PaymentsOfDay(c.Request.Context(), strings.TrimSpace(c.Query("date")))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}
