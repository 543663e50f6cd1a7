package handlers

import (
	"net/http"

	"caravan/internal/services"

	"github.com/gin-gonic/gin"
)

func (h *Handler) ListPackages(c *gin.Context) {
	items, err := h.packages(c).List(c.Request.Context(), c.Query("code"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *Handler) GetPackage(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	p, err := h.packages(c).Get(c.Request.Context(), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) CreatePackage(c *gin.Context) {
	var in services.PackageInput
	if !BindJSONOrError(c, &in) {
		return
	}
	p, err := h.packages(c).Create(c.Request.Context(), in)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h *Handler) UpdatePackage(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var in services.PackageInput
	if !BindJSONOrError(c, &in) {
		return
	}
	p, err := h.packages(c).Update(c.Request.Context(), id, in)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) DeletePackage(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.packages(c).Delete(c.Request.Context(), id); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) ListTicketOrders(c *gin.Context) {
	items, err := h.packages(c).ListTickets(c.Request.Context(), c.Query("code"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *Handler) CreateTicketOrder(c *gin.Context) {
	var in services.TicketOrderInput
	if !BindJSONOrError(c, &in) {
		return
	}
	t, err := h.packages(c).CreateTicket(c.Request.Context(), in)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, t)
}

func (h *Handler) UpdateTicketOrder(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var in services.TicketOrderInput
	if !BindJSONOrError(c, &in) {
		return
	}
	t, err := h.packages(c).UpdateTicket(c.Request.Context(), id, in)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (h *Handler) DeleteTicketOrder(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.packages(c).DeleteTicket(c.Request.Context(), id); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
