package handlers

import (
	"net/http"

	"caravan/internal/services"

	"github.com/gin-gonic/gin"
)

func (h *Handler) ListTourGroups(c *gin.Context) {
	items, err := h.tourGroups(c).List(c.Request.Context())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *Handler) GetTourGroup(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	g, err := h.tourGroups(c).Get(c.Request.Context(), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, g)
}

func (h *Handler) CreateTourGroup(c *gin.Context) {
	var in services.TourGroupInput
	if !BindJSONOrError(c, &in) {
		return
	}
	g, err := h.tourGroups(c).Create(c.Request.Context(), in)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, g)
}

func (h *Handler) UpdateTourGroup(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var in services.TourGroupInput
	if !BindJSONOrError(c, &in) {
		return
	}
	g, err := h.tourGroups(c).Update(c.Request.Context(), id, in)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, g)
}

func (h *Handler) DeleteTourGroup(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.tourGroups(c).Delete(c.Request.Context(), id); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type memberRequest struct {
	PassengerID *int64 `json:"passenger_id"`
}

func (h *Handler) AddTourGroupMember(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req memberRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	if req.PassengerID == nil || *req.PassengerID <= 0 {
		respondError(c, http.StatusBadRequest, "invalid_passenger_id", "passenger_id es obligatorio", nil)
		return
	}
	m, err := h.tourGroups(c).AddMember(c.Request.Context(), id, *req.PassengerID)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, m)
}

func (h *Handler) RemoveTourGroupMember(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	pid, ok := paramID(c, "passenger_id")
	if !ok {
		return
	}
	if err := h.tourGroups(c).RemoveMember(c.Request.Context(), id, pid); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// SetTourGroupCaptain sets the captain; a null passenger_id clears it.
func (h *Handler) SetTourGroupCaptain(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req memberRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	if err := h.tourGroups(c).SetCaptain(c.Request.Context(), id, req.PassengerID); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"captain_id": req.PassengerID})
}
