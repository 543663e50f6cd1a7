package api

import (
	stdhttp "net/http"

	intconfig "caravan/internal/config"
	h "caravan/internal/http/handlers"
	"caravan/internal/http/middleware"
	"caravan/internal/observability"
	"caravan/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func NewRouter(env intconfig.Env, deps h.Deps) *gin.Engine {
	observability.RegisterMetrics()

	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Logger(), gin.Recovery(), middleware.CORS(env.CORSAllowedOrigins))

	if err := r.SetTrustedProxies(nil); err != nil {
		utils.LogError("", "http", "trusted_proxies", err)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(stdhttp.StatusNotFound, gin.H{
			"error":  "ruta no encontrada",
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
		})
	})

	hd := h.New(deps)

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	{
		api.GET("/health", h.Health)
		api.GET("/db-check", hd.DBCheck)
		api.GET("/routes", h.Routes)

		api.POST("/auth/login", hd.Login)

		// Public booking flow and self-service
		public := api.Group("/public")
		public.GET("/steps", hd.BookingSteps)
		public.GET("/seats", hd.PublicSeatMap)
		public.POST("/reservations", hd.CreateReservation)
		public.GET("/reservations/:code", hd.LookupReservation)
		public.PUT("/reservations/:code/passengers", hd.ReplacePassengers)
		public.GET("/reservations/:code/ticket", hd.PublicTicket)

		admin := api.Group("/admin", middleware.RequireAdmin(hd.Auth()))
		mountAdmin(admin, hd)
	}

	h.SetRouter(r)
	return r
}

func mountAdmin(g *gin.RouterGroup, hd *h.Handler) {
	g.GET("/me", hd.Me)

	emails := g.Group("/emails")
	emails.GET("", hd.ListAdminEmails)
	emails.POST("", hd.AllowAdminEmail)
	emails.DELETE("/:email", hd.RevokeAdminEmail)

	reservations := g.Group("/reservations")
	reservations.GET("", hd.ListReservations)
	reservations.POST("/reconcile", hd.ReconcileAll)
	reservations.GET("/:id", hd.GetReservation)
	reservations.PUT("/:id", hd.UpdateReservation)
	reservations.DELETE("/:id", hd.DeleteReservation)
	reservations.POST("/:id/cancel", hd.CancelReservation)
	reservations.POST("/:id/reconcile", hd.ReconcileReservation)
	reservations.GET("/:id/payments", hd.ListReservationPayments)
	reservations.POST("/:id/payments", hd.RegisterReservationPayment)
	reservations.GET("/:id/ticket", hd.ReservationTicket)
	reservations.GET("/:id/receipt", hd.ReservationReceipt)
	reservations.GET("/:id/whatsapp", hd.ReservationWhatsApp)

	passengers := g.Group("/passengers")
	passengers.GET("", hd.GetPassengers)
	passengers.GET("/unassigned", hd.UnassignedPassengers)
	passengers.GET("/:id", hd.GetPassenger)
	passengers.POST("", hd.CreatePassenger)
	passengers.PUT("/:id", hd.UpdatePassenger)
	passengers.DELETE("/:id", hd.DeletePassenger)
	g.GET("/seats", hd.SeatMap)

	groups := g.Group("/tour-groups")
	groups.GET("", hd.ListTourGroups)
	groups.POST("", hd.CreateTourGroup)
	groups.GET("/:id", hd.GetTourGroup)
	groups.PUT("/:id", hd.UpdateTourGroup)
	groups.DELETE("/:id", hd.DeleteTourGroup)
	groups.POST("/:id/members", hd.AddTourGroupMember)
	groups.DELETE("/:id/members/:passenger_id", hd.RemoveTourGroupMember)
	groups.PUT("/:id/captain", hd.SetTourGroupCaptain)

	packages := g.Group("/packages")
	packages.GET("", hd.ListPackages)
	packages.POST("", hd.CreatePackage)
	packages.GET("/:id", hd.GetPackage)
	packages.PUT("/:id", hd.UpdatePackage)
	packages.DELETE("/:id", hd.DeletePackage)
	packages.POST("/:id/payments", hd.RegisterPackagePayment)

	tickets := g.Group("/ticket-orders")
	tickets.GET("", hd.ListTicketOrders)
	tickets.POST("", hd.CreateTicketOrder)
	tickets.PUT("/:id", hd.UpdateTicketOrder)
	tickets.DELETE("/:id", hd.DeleteTicketOrder)

	reports := g.Group("/reports")
	reports.GET("/summary", hd.GetFinancialSummary)
	reports.GET("/payments", hd.GetDailyPayments)
}
