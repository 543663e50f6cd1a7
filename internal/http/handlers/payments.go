package handlers

import (
	"net/http"

	"caravan/internal/domain/models"

	"github.com/gin-gonic/gin"
)

// RegisterReservationPayment appends a payment and returns the new balance.
func (h *Handler) RegisterReservationPayment(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var in models.PaymentInput
	if !BindJSONOrError(c, &in) {
		return
	}
	receipt, err := h.payments(c).RegisterReservationPayment(c.Request.Context(), id, in)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, receipt)
}

func (h *Handler) ListReservationPayments(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	items, err := h.payments(c).ListReservationPayments(c.Request.Context(), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *Handler) RegisterPackagePayment(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var in models.PaymentInput
	if !BindJSONOrError(c, &in) {
		return
	}
	receipt, err := h.payments(c).RegisterPackagePayment(c.Request.Context(), id, in)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, receipt)
}
