package handlers

import (
	"net/http"
	"sync"

	intconfig "caravan/internal/config"

	"github.com/gin-gonic/gin"
)

var (
	routerMu sync.RWMutex
	router   *gin.Engine
)

// SetRouter stores the active gin engine for later inspection (e.g., /api/routes).
func SetRouter(r *gin.Engine) {
	routerMu.Lock()
	defer routerMu.Unlock()
	router = r
}

func Health(c *gin.Context) {
	dbStatus := "ok"
	if err := intconfig.PingDB(c.Request.Context()); err != nil {
		dbStatus = "sin conexión"
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "servicio en línea", "db": dbStatus})
}

func (h *Handler) DBCheck(c *gin.Context) {
	db := h.db()
	if db == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "base de datos no conectada"})
		return
	}
	var count int
	if err := db.QueryRowContext(c.Request.Context(), "SELECT COUNT(*) FROM reservations").Scan(&count); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "fallo la consulta a la base de datos: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "conexión a la base de datos OK", "reservations": count})
}

func Routes(c *gin.Context) {
	routerMu.RLock()
	r := router
	routerMu.RUnlock()
	if r == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "router no disponible"})
		return
	}

	routes := r.Routes()
	out := make([]gin.H, 0, len(routes))
	for _, rt := range routes {
		out = append(out, gin.H{
			"method": rt.Method,
			"path":   rt.Path,
		})
	}
	c.JSON(http.StatusOK, gin.H{"routes": out})
}
