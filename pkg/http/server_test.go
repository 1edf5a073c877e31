package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type routes struct{}

func (routes) RegisterRoutes(e *echo.Echo) {
	e.GET("/ok", func(c echo.Context) error { return SuccessResponse(c, map[string]int{"n": 1}) })
	e.GET("/boom", func(c echo.Context) error { panic("boom") })
	e.GET("/conflict", func(c echo.Context) error { return AppErrorResponse(c, ConflictError("busy")) })
}

func serve(s *Server, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.Echo().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestServerEnvelopeAndRecovery(t *testing.T) {
	s := NewServer(routes{}, nil)

	rec := serve(s, "/ok")
	require.Equal(t, http.StatusOK, rec.Code)
	var body APIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, http.StatusOK, body.Status)

	rec = serve(s, "/boom")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	rec = serve(s, "/conflict")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "ERR_CONFLICT")
}

func TestServerMetricsPath(t *testing.T) {
	s := NewServer(routes{}, nil)
	serve(s, "/ok")
	rec := serve(s, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "sentipull_http_requests_total")

	off := NewServer(routes{}, nil, WithMetricsPath(""))
	assert.Equal(t, http.StatusNotFound, serve(off, "/metrics").Code)
}
