package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestLog(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		method        string
		path          string
		status        int
		providedReqID string
		wantLogFields []string
		wantNoLog     bool
	}{
		{
			name:   "logs request with generated ID",
			method: http.MethodGet,
			path:   "/api/v1/results",
			status: http.StatusOK,
			wantLogFields: []string{
				"level=INFO",
				"method=GET",
				"path=/api/v1/results",
				"status=200",
				"duration_ms=",
				"request_id=",
			},
		},
		{
			name:          "keeps provided request ID",
			method:        http.MethodPost,
			path:          "/api/v1/runs",
			status:        http.StatusCreated,
			providedReqID: "custom-req-id-123",
			wantLogFields: []string{"status=201", "request_id=custom-req-id-123"},
		},
		{
			name:          "server errors log at warn",
			method:        http.MethodPost,
			path:          "/api/v1/resolve",
			status:        http.StatusServiceUnavailable,
			wantLogFields: []string{"level=WARN", "status=503"},
		},
		{
			name:      "healthy probes are below info",
			method:    http.MethodGet,
			path:      "/healthz",
			status:    http.StatusOK,
			wantNoLog: true,
		},
		{
			name:          "failing probes are logged",
			method:        http.MethodGet,
			path:          "/readyz",
			status:        http.StatusServiceUnavailable,
			wantLogFields: []string{"path=/readyz", "status=503"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			logger := slog.New(slog.NewTextHandler(&buf, nil))

			e := echo.New()
			req := httptest.NewRequest(tt.method, tt.path, http.NoBody)
			if tt.providedReqID != "" {
				req.Header.Set(requestIDHeader, tt.providedReqID)
			}
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			handler := RequestLog(logger)(func(c echo.Context) error {
				return c.NoContent(tt.status)
			})

			require.NoError(t, handler(c))

			if tt.wantNoLog {
				assert.Empty(t, buf.String())
			}
			for _, field := range tt.wantLogFields {
				assert.Contains(t, buf.String(), field)
			}

			respID := rec.Header().Get(requestIDHeader)
			assert.NotEmpty(t, respID)
			assert.Equal(t, respID, RequestID(c))
			if tt.providedReqID != "" {
				assert.Equal(t, tt.providedReqID, respID)
			}
		})
	}
}

func TestRequestLog_HandlerErrorIsRendered(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/api/v1/targets/x", http.NoBody), rec)

	err := RequestLog(slog.New(slog.NewTextHandler(&buf, nil)))(func(_ echo.Context) error {
		return echo.NewHTTPError(http.StatusNotFound, "target not found")
	})(c)

	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, buf.String(), "status=404")
}

func TestRequestID_Unset(t *testing.T) {
	t.Parallel()

	c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/", http.NoBody), httptest.NewRecorder())
	assert.Empty(t, RequestID(c))
}
