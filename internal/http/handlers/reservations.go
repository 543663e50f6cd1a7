package handlers

import (
	"net/http"
	"strings"

	"caravan/internal/repositories"
	"caravan/internal/services"

	"github.com/gin-gonic/gin"
)

func (h *Handler) ListReservations(c *gin.Context) {
	f := repositories.ReservationFilter{
		Status:      strings.TrimSpace(c.Query("status")),
		Search:      strings.TrimSpace(c.Query("q")),
		ExcludeHost: c.Query("exclude_host") == "1",
	}
	items, err := h.reservations(c).List(c.Request.Context(), f)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *Handler) GetReservation(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	detail, err := h.reservations(c).Get(c.Request.Context(), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

func (h *Handler) UpdateReservation(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var upd repositories.ReservationUpdate
	if !BindJSONOrError(c, &upd) {
		return
	}
	res, err := h.reservations(c).Update(c.Request.Context(), id, upd)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) DeleteReservation(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.reservations(c).Delete(c.Request.Context(), id); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) CancelReservation(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	res, err := h.booking(c).Cancel(c.Request.Context(), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// ReconcileReservation recomputes one reservation's flags and totals.
func (h *Handler) ReconcileReservation(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	plan, err := h.reconciler(c).ReconcileReservation(c.Request.Context(), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, plan)
}

// ReconcileAll sweeps every reservation; a concurrent sweep answers 409.
func (h *Handler) ReconcileAll(c *gin.Context) {
	report, err := h.reconciler(c).ReconcileAll(c.Request.Context())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *Handler) ReservationTicket(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	pdf, filename, err := h.docs(c).GenerateTicket(c.Request.Context(), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	sendPDF(c, pdf, filename, c.Query("download") == "1")
}

func (h *Handler) ReservationReceipt(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	pdf, filename, err := h.docs(c).GenerateReceipt(c.Request.Context(), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	sendPDF(c, pdf, filename, c.Query("download") == "1")
}

// ReservationWhatsApp returns a wa.me link with the reservation summary.
func (h *Handler) ReservationWhatsApp(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	detail, err := h.reservations(c).Get(c.Request.Context(), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	msg := services.ConfirmationMessage(h.deps.Pricing.TripName, detail.Reservation)
	c.JSON(http.StatusOK, gin.H{"url": services.WhatsAppLink(detail.ResponsiblePhone, msg)})
}
