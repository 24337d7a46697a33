package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/table-reservation/internal/handler"
	"github.com/iliyamo/table-reservation/internal/repository"
	"github.com/iliyamo/table-reservation/internal/reservation"
)

func newEcho() *echo.Echo {
	engine := reservation.New(repository.NewMemoryStore(), nil, nil, reservation.Config{})
	rh := handler.NewReservationHandler(engine)
	ch := handler.NewCatalogHandler(engine)
	e := echo.New()
	RegisterRoutes(e)
	RegisterPublic(e, ch, rh)
	RegisterBookings(e, rh, ch)
	return e
}

func TestRoutesRegistered(t *testing.T) {
	e := newEcho()
	have := map[string]bool{}
	for _, r := range e.Routes() {
		have[r.Method+" "+r.Path] = true
	}
	for _, want := range []string{
		"GET /healthz",
		"GET /metrics",
		"GET /v1/restaurants",
		"GET /v1/restaurants/nearby",
		"GET /v1/restaurants/:id",
		"GET /v1/restaurants/:id/availability",
		"GET /v1/restaurants/:id/feedback",
		"GET /v1/areas/:area/centroid",
		"GET /v1/users/:id/feedback",
		"GET /v1/amenities",
		"GET /v1/cuisines",
		"POST /v1/bookings",
		"DELETE /v1/bookings/:id",
		"POST /v1/bookings/:id/feedback",
	} {
		assert.True(t, have[want], want)
	}
}

func TestHealthAndMetrics(t *testing.T) {
	e := newEcho()

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true,"data":{"status":"ok"}}`, rec.Body.String())

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestNearbyNotShadowedByID(t *testing.T) {
	e := newEcho()
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/restaurants/nearby", nil))
	// reaches the nearby handler, which rejects the missing base
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "missing_params")
}
