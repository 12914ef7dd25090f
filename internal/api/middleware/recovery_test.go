package middleware

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecovery(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		handler    echo.HandlerFunc
		wantStatus int
		wantLog    []string
	}{
		{
			name: "no panic passes through",
			handler: func(c echo.Context) error {
				return c.String(http.StatusOK, "ok")
			},
			wantStatus: http.StatusOK,
		},
		{
			name: "panic with string",
			handler: func(_ echo.Context) error {
				panic("nil offer in pool")
			},
			wantStatus: http.StatusInternalServerError,
			wantLog:    []string{"panic recovered", "nil offer in pool", "path=/api/v1/resolve", "request_id=req-7"},
		},
		{
			name: "panic with error",
			handler: func(_ echo.Context) error {
				panic(errors.New("index out of range"))
			},
			wantStatus: http.StatusInternalServerError,
			wantLog:    []string{"index out of range", "stack="},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			logger := slog.New(slog.NewTextHandler(&buf, nil))

			e := echo.New()
			req := httptest.NewRequest(http.MethodPost, "/api/v1/resolve", http.NoBody)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)
			c.Set(requestIDKey, "req-7")

			err := Recovery(logger)(tt.handler)(c)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, rec.Code)

			if len(tt.wantLog) == 0 {
				assert.Empty(t, buf.String())
				return
			}
			assert.Contains(t, rec.Body.String(), "internal server error")
			for _, want := range tt.wantLog {
				assert.Contains(t, buf.String(), want)
			}
		})
	}
}

func TestRecovery_AbortHandlerIsRepanicked(t *testing.T) {
	t.Parallel()

	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/report", http.NoBody), httptest.NewRecorder())

	handler := Recovery(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))(func(_ echo.Context) error {
		panic(http.ErrAbortHandler)
	})

	assert.PanicsWithValue(t, http.ErrAbortHandler, func() { _ = handler(c) })
}
