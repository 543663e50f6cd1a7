package handlers

import (
	"net/http"
	"strconv"

	"caravan/internal/domain/models"

	"github.com/gin-gonic/gin"
)

// GetPassengers lists all passengers, or those of ?reservation_id=.
func (h *Handler) GetPassengers(c *gin.Context) {
	var reservationID int64
	if raw := c.Query("reservation_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			respondError(c, http.StatusBadRequest, "invalid_reservation_id", "reservation_id inválido", nil)
			return
		}
		reservationID = id
	}
	items, err := h.passengers(c).List(c.Request.Context(), reservationID)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *Handler) GetPassenger(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	p, err := h.passengers(c).Get(c.Request.Context(), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

type createPassengerRequest struct {
	ReservationID int64 `json:"reservation_id"`
	models.PassengerInput
}

func (h *Handler) CreatePassenger(c *gin.Context) {
	var req createPassengerRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	if req.ReservationID <= 0 {
		respondError(c, http.StatusBadRequest, "invalid_reservation_id", "reservation_id es obligatorio", nil)
		return
	}
	p, err := h.passengers(c).Create(c.Request.Context(), req.ReservationID, req.PassengerInput)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h *Handler) UpdatePassenger(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var in models.PassengerInput
	if !BindJSONOrError(c, &in) {
		return
	}
	p, err := h.passengers(c).Update(c.Request.Context(), id, in)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) DeletePassenger(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.passengers(c).Delete(c.Request.Context(), id); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) SeatMap(c *gin.Context) {
	m, err := h.passengers(c).SeatMap(c.Request.Context())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

func (h *Handler) UnassignedPassengers(c *gin.Context) {
	items, err := h.tourGroups(c).Unassigned(c.Request.Context())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}
