package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type listRequest struct {
	Limit int    `query:"limit" default:"50" validate:"gte=1,lte=1000"`
	Sort  string `query:"sort" default:"score" validate:"oneof=score ticker"`
}

type symbolRequest struct {
	Ticker string `param:"ticker" validate:"required,max=6"`
}

func queryContext(target string) echo.Context {
	e := echo.New()
	return e.NewContext(httptest.NewRequest(http.MethodGet, target, nil), httptest.NewRecorder())
}

func TestReadAndValidateRequestDefaults(t *testing.T) {
	req := &listRequest{}
	assert.Nil(t, ReadAndValidateRequest(queryContext("/api/data"), req))
	assert.Equal(t, 50, req.Limit)
	assert.Equal(t, "score", req.Sort)

	req = &listRequest{}
	assert.Nil(t, ReadAndValidateRequest(queryContext("/api/data?limit=7&sort=ticker"), req))
	assert.Equal(t, 7, req.Limit)
	assert.Equal(t, "ticker", req.Sort)
}

func TestReadAndValidateRequestErrors(t *testing.T) {
	tests := []struct {
		name    string
		target  string
		code    string
		field   string
		message string
	}{
		{"above range", "/api/data?limit=5000", "ERR_LTE", "limit", "limit must be at most 1000"},
		{"below range", "/api/data?limit=-3", "ERR_GTE", "limit", "limit must be at least 1"},
		{"bad option", "/api/data?sort=name", "ERR_ONEOF", "sort", "sort must be one of: score, ticker"},
		{"not a number", "/api/data?limit=abc", "ERR_BIND", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := ReadAndValidateRequest(queryContext(tt.target), &listRequest{})
			require.Len(t, errs, 1)
			assert.Equal(t, tt.code, errs[0].Code)
			assert.Equal(t, tt.field, errs[0].Field)
			if tt.message != "" {
				assert.Equal(t, tt.message, errs[0].Message)
			} else {
				assert.NotEmpty(t, errs[0].Message)
			}
		})
	}
}

func TestReadAndValidateRequestPathParam(t *testing.T) {
	e := echo.New()
	var errs []ValidationError
	e.GET("/api/ticker/:ticker", func(c echo.Context) error {
		errs = ReadAndValidateRequest(c, &symbolRequest{})
		return c.NoContent(http.StatusNoContent)
	})
	e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/ticker/TOOLONGX", nil))

	require.Len(t, errs, 1)
	assert.Equal(t, "ticker", errs[0].Field)
	assert.Equal(t, "ticker must be at most 6 characters", errs[0].Message)
	assert.Equal(t, "6", errs[0].Params["max"])
	assert.Equal(t, "TOOLONGX", errs[0].Params["got"])
}
