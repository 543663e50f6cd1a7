package handlers

import (
	"net/http"

	"caravan/internal/http/middleware"

	"github.com/gin-gonic/gin"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	res, err := h.auth(c).Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// Me returns the admin behind the current token.
func (h *Handler) Me(c *gin.Context) {
	admin, _ := middleware.GetAdmin(c)
	c.JSON(http.StatusOK, admin)
}

func (h *Handler) ListAdminEmails(c *gin.Context) {
	emails, err := h.auth(c).AllowedEmails(c.Request.Context())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"emails": emails})
}

type adminEmailRequest struct {
	Email string `json:"email"`
}

func (h *Handler) AllowAdminEmail(c *gin.Context) {
	var req adminEmailRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	if err := h.auth(c).AllowEmail(c.Request.Context(), req.Email); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"email": req.Email})
}

func (h *Handler) RevokeAdminEmail(c *gin.Context) {
	admin, _ := middleware.GetAdmin(c)
	if err := h.auth(c).RevokeEmail(c.Request.Context(), admin, c.Param("email")); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
