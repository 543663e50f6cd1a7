package handlers

import (
	"database/sql"
	"net/http"
	"strconv"
	"time"

	intconfig "caravan/internal/config"
	"caravan/internal/events"
	"caravan/internal/http/middleware"
	"caravan/internal/lock"
	"caravan/internal/services"

	"github.com/gin-gonic/gin"
)

// Deps are the shared dependencies of every handler.
type Deps struct {
	DB        *sql.DB
	Pricing   intconfig.Pricing
	Events    events.Publisher
	Locker    *lock.Locker
	JWTSecret []byte
	JWTTTL    time.Duration
	PublicURL string
}

// Handler builds request-scoped services from Deps.
type Handler struct {
	deps Deps
}

func New(deps Deps) *Handler {
	if deps.Events == nil {
		deps.Events = events.LogPublisher{}
	}
	return &Handler{deps: deps}
}

func (h *Handler) db() *sql.DB {
	if h.deps.DB != nil {
		return h.deps.DB
	}
	return intconfig.DB
}

func (h *Handler) booking(c *gin.Context) services.BookingService {
	return services.BookingService{
		DB:        h.db(),
		Pricing:   h.deps.Pricing,
		Events:    h.deps.Events,
		RequestID: middleware.GetRequestID(c),
		PublicURL: h.deps.PublicURL,
	}
}

func (h *Handler) reservations(c *gin.Context) services.ReservationService {
	return services.ReservationService{DB: h.db(), RequestID: middleware.GetRequestID(c)}
}

func (h *Handler) passengers(c *gin.Context) services.PassengerService {
	return services.PassengerService{DB: h.db(), Pricing: h.deps.Pricing, RequestID: middleware.GetRequestID(c)}
}

func (h *Handler) payments(c *gin.Context) services.PaymentService {
	return services.PaymentService{
		DB:        h.db(),
		Pricing:   h.deps.Pricing,
		Events:    h.deps.Events,
		RequestID: middleware.GetRequestID(c),
	}
}

func (h *Handler) reconciler(c *gin.Context) services.ReconcileService {
	return services.ReconcileService{
		DB:        h.db(),
		UnitPrice: h.deps.Pricing.UnitPrice,
		Locker:    h.deps.Locker,
		Events:    h.deps.Events,
		RequestID: middleware.GetRequestID(c),
	}
}

func (h *Handler) tourGroups(c *gin.Context) services.TourGroupService {
	return services.TourGroupService{DB: h.db(), RequestID: middleware.GetRequestID(c)}
}

func (h *Handler) packages(c *gin.Context) services.PackageService {
	return services.PackageService{DB: h.db(), RequestID: middleware.GetRequestID(c)}
}

func (h *Handler) reports() services.ReportsService {
	return services.ReportsService{DB: h.db()}
}

func (h *Handler) docs(c *gin.Context) services.DocsService {
	return services.DocsService{DB: h.db(), Pricing: h.deps.Pricing, RequestID: middleware.GetRequestID(c)}
}

// Auth exposes the auth service; the router hands it to RequireAdmin.
func (h *Handler) Auth() services.AuthService {
	return services.AuthService{DB: h.db(), Secret: h.deps.JWTSecret, TTL: h.deps.JWTTTL}
}

func (h *Handler) auth(c *gin.Context) services.AuthService {
	s := h.Auth()
	s.RequestID = middleware.GetRequestID(c)
	return s
}

// paramID parses a positive int64 path parameter, answering 400 otherwise.
func paramID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		respondError(c, http.StatusBadRequest, "invalid_"+name, name+" inválido", nil)
		return 0, false
	}
	return id, true
}

func sendPDF(c *gin.Context, data []byte, filename string, download bool) {
	disposition := "inline"
	if download {
		disposition = "attachment"
	}
	c.Header("Content-Disposition", disposition+`; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", data)
}
