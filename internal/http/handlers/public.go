package handlers

import (
	"net/http"
	"strconv"

	"caravan/internal/domain"
	"caravan/internal/domain/models"
	"caravan/internal/services"

	"github.com/gin-gonic/gin"
)

// BookingSteps returns the steps of the booking flow for a party.
func (h *Handler) BookingSteps(c *gin.Context) {
	adults, err1 := strconv.Atoi(c.DefaultQuery("adults", "1"))
	children, err2 := strconv.Atoi(c.DefaultQuery("children", "0"))
	if err1 != nil || err2 != nil {
		respondError(c, http.StatusBadRequest, "invalid_party", "adultos y niños deben ser números", nil)
		return
	}
	steps, err := h.booking(c).Steps(adults, children)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	resp := gin.H{"steps": steps}
	if current := c.Query("current"); current != "" {
		resp["next"] = domain.NextStep(steps, domain.BookingStep(current))
	}
	c.JSON(http.StatusOK, resp)
}

// CreateReservation stores a reservation from the public booking flow.
func (h *Handler) CreateReservation(c *gin.Context) {
	var req services.CreateReservationRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	// host reservations are only created from the admin panel
	req.IsHost = false
	conf, err := h.booking(c).CreateReservation(c.Request.Context(), req)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, conf)
}

// LookupReservation lets a traveller see their reservation by code and access code.
func (h *Handler) LookupReservation(c *gin.Context) {
	detail, err := h.booking(c).Lookup(c.Request.Context(), c.Param("code"), accessCode(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

type replacePassengersRequest struct {
	AccessCode string                  `json:"access_code"`
	Passengers []models.PassengerInput `json:"passengers"`
}

// ReplacePassengers swaps the passenger list of a reservation in one transaction.
func (h *Handler) ReplacePassengers(c *gin.Context) {
	var req replacePassengersRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	if req.AccessCode == "" {
		req.AccessCode = accessCode(c)
	}
	detail, err := h.booking(c).ReplacePassengers(c.Request.Context(), c.Param("code"), req.AccessCode, req.Passengers)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

// PublicTicket returns the boarding ticket PDF of a reservation.
func (h *Handler) PublicTicket(c *gin.Context) {
	detail, err := h.booking(c).Lookup(c.Request.Context(), c.Param("code"), accessCode(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	pdf, filename, err := h.docs(c).TicketFor(detail)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	sendPDF(c, pdf, filename, c.Query("download") == "1")
}

// PublicSeatMap lists taken seat numbers without passenger data.
func (h *Handler) PublicSeatMap(c *gin.Context) {
	m, err := h.passengers(c).SeatMap(c.Request.Context())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	seats := make([]string, 0, len(m.Occupied))
	for _, o := range m.Occupied {
		seats = append(seats, o.SeatNumber)
	}
	c.JSON(http.StatusOK, gin.H{"capacity": m.Capacity, "free": m.Free, "occupied": seats})
}

func accessCode(c *gin.Context) string {
	if v := c.Query("access_code"); v != "" {
		return v
	}
	return c.GetHeader("X-Access-Code")
}
