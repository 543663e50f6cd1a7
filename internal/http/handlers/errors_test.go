package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"caravan/internal/domain"
)

func TestRespondDomainErrorStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cases := []struct {
		err  error
		want int
	}{
		{domain.ValidationError{Field: "amount", Msg: "debe ser mayor a cero"}, http.StatusBadRequest},
		{domain.UnauthorizedError{}, http.StatusUnauthorized},
		{fmt.Errorf("cargar: %w", domain.NotFoundError{Resource: "reservación"}), http.StatusNotFound},
		{domain.ConflictError{Resource: "asiento"}, http.StatusConflict},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
		RespondDomainError(c, tc.err)
		assert.Equal(t, tc.want, w.Code, tc.err.Error())
	}
}

func TestInternalErrorsHideDetails(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	RespondDomainError(c, errors.New("dial tcp 10.0.0.1:3306: refused"))
	assert.NotContains(t, w.Body.String(), "10.0.0.1")
}
