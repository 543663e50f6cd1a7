package api

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	intconfig "caravan/internal/config"
	h "caravan/internal/http/handlers"
	"caravan/internal/services"
)

var (
	testSecret = []byte("router-test-secret")
	fixedTime  = time.Date(2025, 4, 10, 9, 30, 0, 0, time.UTC)
	resCols    = []string{
		"id", "code", "access_code", "responsible_name", "responsible_phone", "congregation",
		"seats_total", "seats_payable", "total_amount", "deposit_required", "amount_paid",
		"status", "payment_method", "is_host", "created_at",
	}
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestRouter(t *testing.T) (*gin.Engine, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return newRouterWithDB(db), mock
}

func newRouterWithDB(db *sql.DB) *gin.Engine {
	env := intconfig.Env{Pricing: intconfig.Pricing{UnitPrice: 1800, SeatCapacity: 40}}
	return NewRouter(env, h.Deps{
		DB:        db,
		Pricing:   env.Pricing,
		JWTSecret: testSecret,
		JWTTTL:    time.Hour,
	})
}

func adminToken(t *testing.T) string {
	t.Helper()
	claims := services.AdminClaims{
		UserID: 1,
		Email:  "admin@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testSecret)
	require.NoError(t, err)
	return token
}

func expectAllowList(mock sqlmock.Sqlmock, n int) {
	mock.ExpectQuery(`FROM admin_emails WHERE email=\?`).WithArgs("admin@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(n))
}

func do(r *gin.Engine, method, path, body, token string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHealthAndRequestID(t *testing.T) {
	r, _ := newTestRouter(t)
	w := do(r, http.MethodGet, "/api/health", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestUnknownRouteIs404(t *testing.T) {
	r, _ := newTestRouter(t)
	w := do(r, http.MethodGet, "/api/nothing-here", "", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAdminRoutesRequireToken(t *testing.T) {
	r, mock := newTestRouter(t)
	w := do(r, http.MethodGet, "/api/admin/reservations", "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(r, http.MethodGet, "/api/admin/reservations", "", "not-a-jwt")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAdminTokenOutsideAllowListIsRejected(t *testing.T) {
	r, mock := newTestRouter(t)
	expectAllowList(mock, 0)

	w := do(r, http.MethodGet, "/api/admin/reservations", "", adminToken(t))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAdminSummaryExcludesHosts(t *testing.T) {
	r, mock := newTestRouter(t)
	expectAllowList(mock, 1)
	mock.ExpectQuery(`FROM reservations ORDER BY created_at DESC`).
		WillReturnRows(sqlmock.NewRows(resCols).
			AddRow(1, "VJ-ABC234", "KEY234", "Ana", "5512345678", "Centro", 2, 2, 3600, 1800, 1800, "anticipo_pagado", "efectivo", false, fixedTime).
			AddRow(2, "VJ-HOST22", "HOST22", "Anfitrión", "5587654321", "Centro", 3, 3, 5400, 2700, 0, "pendiente", "efectivo", true, fixedTime))

	w := do(r, http.MethodGet, "/api/admin/reports/summary", "", adminToken(t))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var got struct {
		TotalExpected  int64 `json:"total_expected"`
		TotalCollected int64 `json:"total_collected"`
		HostsExcluded  int   `json:"hosts_excluded"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, int64(3600), got.TotalExpected)
	assert.Equal(t, int64(1800), got.TotalCollected)
	assert.Equal(t, 1, got.HostsExcluded)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAdminBadIDIs400(t *testing.T) {
	r, mock := newTestRouter(t)
	expectAllowList(mock, 1)

	w := do(r, http.MethodGet, "/api/admin/reservations/abc", "", adminToken(t))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPublicCreateReservationValidation(t *testing.T) {
	r, mock := newTestRouter(t)
	body := `{"responsible_name":"Ana","responsible_phone":"123","congregation":"Centro","passengers":[{"name":"Ana"}]}`

	w := do(r, http.MethodPost, "/api/public/reservations", body, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "validation_error")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPublicCreateReservationEmptyBody(t *testing.T) {
	r, _ := newTestRouter(t)
	w := do(r, http.MethodPost, "/api/public/reservations", "", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPublicLookupHidesWrongAccessCode(t *testing.T) {
	r, mock := newTestRouter(t)
	mock.ExpectQuery(`FROM reservations WHERE code=\?`).WithArgs("VJ-ABC234").
		WillReturnRows(sqlmock.NewRows(resCols).
			AddRow(1, "VJ-ABC234", "KEY234", "Ana", "5512345678", "Centro", 2, 2, 3600, 1800, 0, "pendiente", "efectivo", false, fixedTime))

	w := do(r, http.MethodGet, "/api/public/reservations/vj-abc234?access_code=WRONG1", "", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPublicStepsSkipPassengersForSingleAdult(t *testing.T) {
	r, _ := newTestRouter(t)
	w := do(r, http.MethodGet, "/api/public/steps?adults=1&children=0", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), `"passengers"`)

	w = do(r, http.MethodGet, "/api/public/steps?adults=x", "", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPublicStepsReportsNextStep(t *testing.T) {
	r, _ := newTestRouter(t)
	w := do(r, http.MethodGet, "/api/public/steps?adults=2&children=0&current=seats", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"next":"passengers"`)

	w = do(r, http.MethodGet, "/api/public/steps?adults=1&children=0&current=seats", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"next":"summary"`)

	w = do(r, http.MethodGet, "/api/public/steps?adults=2", "", "")
	assert.NotContains(t, w.Body.String(), `"next"`)
}

func TestMetricsEndpoint(t *testing.T) {
	r, _ := newTestRouter(t)
	do(r, http.MethodGet, "/api/health", "", "")
	w := do(r, http.MethodGet, "/metrics", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
}
