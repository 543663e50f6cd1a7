package middleware

import (
	"context"
	"net/http"
	"strings"

	"caravan/internal/domain"
	"caravan/internal/utils"

	"github.com/gin-gonic/gin"
)

const adminKey = "admin"

// Authorizer validates a bearer token and returns the admin behind it.
type Authorizer interface {
	Authorize(ctx context.Context, token string) (domain.RequestContext, error)
}

// RequireAdmin rejects requests without a valid token for an allow-listed email.
func RequireAdmin(auth Authorizer) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			abortUnauthorized(c, "falta el token de acceso")
			return
		}
		admin, err := auth.Authorize(c.Request.Context(), token)
		if err != nil {
			if !domain.IsUnauthorized(err) {
				utils.LogError(GetRequestID(c), "auth", "authorize", err)
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"error":      "error interno",
					"code":       "internal_error",
					"request_id": GetRequestID(c),
				})
				return
			}
			abortUnauthorized(c, err.Error())
			return
		}
		c.Set(adminKey, admin)
		c.Next()
	}
}

// GetAdmin returns the admin stored by RequireAdmin.
func GetAdmin(c *gin.Context) (domain.RequestContext, bool) {
	if c == nil {
		return domain.RequestContext{}, false
	}
	v, ok := c.Get(adminKey)
	if !ok {
		return domain.RequestContext{}, false
	}
	admin, ok := v.(domain.RequestContext)
	return admin, ok
}

func bearerToken(header string) string {
	header = strings.TrimSpace(header)
	if len(header) < 7 || !strings.EqualFold(header[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(header[7:])
}

func abortUnauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error":      msg,
		"code":       "unauthorized",
		"request_id": GetRequestID(c),
	})
}
