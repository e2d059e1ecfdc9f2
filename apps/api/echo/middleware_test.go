package echoapi

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Prajjwal2051/Viewly-sub002/core"
	testutil "github.com/Prajjwal2051/Viewly-sub002/tests"
)

func TestMetricsMiddleware(t *testing.T) {
	conf := testutil.Config(t)
	var accessLog bytes.Buffer
	s := &Server{deps: ServerDeps{AccessLog: zerolog.New(&accessLog)}}
	m := newMetrics()

	app := echo.New()
	app.HTTPErrorHandler = newAppHTTPErrorHandler(testutil.Logger(conf), nil, func() {})
	app.Use(s.requestLogger())
	app.Use(middleware.Recover())
	app.Use(m.middleware())
	app.GET("/videos/:id", func(ctx echo.Context) error {
		return core.NewNotFoundError("video not found")
	})
	app.GET("/boom", func(ctx echo.Context) error {
		panic("boom")
	})
	app.GET("/ok", func(ctx echo.Context) error {
		return respond(ctx, http.StatusOK, nil, "ok")
	})

	tests := []struct {
		path     string
		wantCode int
	}{
		{path: "/videos/42", wantCode: http.StatusNotFound},
		{path: "/boom", wantCode: http.StatusInternalServerError},
		{path: "/ok", wantCode: http.StatusOK},
		{path: "/nowhere", wantCode: http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			app.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))
			assert.Equal(t, tt.wantCode, rec.Code)
		})
	}

	rec := httptest.NewRecorder()
	promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `viewly_http_requests_total{code="404",method="GET",route="/videos/:id"} 1`)
	assert.Contains(t, body, `viewly_http_requests_total{code="500",method="GET",route="/boom"} 1`)
	assert.Contains(t, body, `viewly_http_requests_total{code="200",method="GET",route="/ok"} 1`)
	assert.Contains(t, body, `code="404",method="GET"`)

	// the handler errors reach the access log
	logs := accessLog.String()
	assert.Contains(t, logs, `"level":"warn"`)
	assert.Contains(t, logs, "video not found")
	assert.Contains(t, logs, `"status":404`)
	assert.Contains(t, logs, `"status":500`)
}

func TestErrorStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{err: core.NewNotFoundError("nope"), want: http.StatusNotFound},
		{err: core.NewPermissionError("nope"), want: http.StatusForbidden},
		{err: core.NewConflictError("nope"), want: http.StatusConflict},
		{err: core.NewAuthError("nope"), want: http.StatusUnauthorized},
		{err: core.NewValidationError(nil), want: http.StatusBadRequest},
		{err: errPayloadTooLarge, want: http.StatusRequestEntityTooLarge},
		{err: &http.MaxBytesError{Limit: 1}, want: http.StatusRequestEntityTooLarge},
		{err: echo.ErrMethodNotAllowed, want: http.StatusMethodNotAllowed},
		{err: assert.AnError, want: http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, errorStatus(tt.err), tt.err.Error())
	}
}
