package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func corsEcho(cfg CORSConfig) *echo.Echo {
	e := echo.New()
	e.Use(CORS(cfg))
	e.GET("/api/data", func(c echo.Context) error { return c.String(http.StatusOK, "rows") })
	e.POST("/api/refresh", func(c echo.Context) error { return c.String(http.StatusAccepted, "queued") })
	return e
}

func do(e *echo.Echo, method, target string, hdr map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestCORSPreflight(t *testing.T) {
	e := corsEcho(DashboardCORS())

	tests := []struct {
		name       string
		reqMethod  string
		wantStatus int
		wantAllow  string
	}{
		{"post allowed", http.MethodPost, http.StatusNoContent, "GET, POST"},
		{"get allowed", http.MethodGet, http.StatusNoContent, "GET, POST"},
		{"delete rejected", http.MethodDelete, http.StatusForbidden, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(e, http.MethodOptions, "/api/refresh", map[string]string{
				echo.HeaderOrigin:                     "http://localhost:3000",
				echo.HeaderAccessControlRequestMethod: tt.reqMethod,
			})
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantAllow, rec.Header().Get(echo.HeaderAccessControlAllowMethods))
			assert.Empty(t, rec.Body.String())
		})
	}

	rec := do(e, http.MethodOptions, "/api/data", map[string]string{
		echo.HeaderOrigin:                     "http://localhost:3000",
		echo.HeaderAccessControlRequestMethod: http.MethodGet,
	})
	assert.Equal(t, "*", rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
	assert.Equal(t, "600", rec.Header().Get(echo.HeaderAccessControlMaxAge))
	assert.Contains(t, rec.Header().Get(echo.HeaderAccessControlAllowHeaders), echo.HeaderContentType)
}

func TestCORSSimpleRequestReachesRoute(t *testing.T) {
	e := corsEcho(DashboardCORS())

	rec := do(e, http.MethodGet, "/api/data", map[string]string{echo.HeaderOrigin: "http://localhost:3000"})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "rows", rec.Body.String())
	assert.Equal(t, "*", rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
	assert.Equal(t, echo.HeaderOrigin, rec.Header().Get(echo.HeaderVary))
	// Allow-Methods only accompanies preflights.
	assert.Empty(t, rec.Header().Get(echo.HeaderAccessControlAllowMethods))

	rec = do(e, http.MethodGet, "/api/data", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
	assert.Empty(t, rec.Header().Get(echo.HeaderVary))
}

func TestCORSOriginAllowList(t *testing.T) {
	cfg := DashboardCORS()
	cfg.AllowOrigins = []string{"https://dash.example.com"}
	e := corsEcho(cfg)

	rec := do(e, http.MethodGet, "/api/data", map[string]string{echo.HeaderOrigin: "https://DASH.example.com"})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "https://DASH.example.com", rec.Header().Get(echo.HeaderAccessControlAllowOrigin))

	rec = do(e, http.MethodGet, "/api/data", map[string]string{echo.HeaderOrigin: "https://evil.example.com"})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get(echo.HeaderAccessControlAllowOrigin))

	rec = do(e, http.MethodOptions, "/api/refresh", map[string]string{
		echo.HeaderOrigin:                     "https://evil.example.com",
		echo.HeaderAccessControlRequestMethod: http.MethodPost,
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
