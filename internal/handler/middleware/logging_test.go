//go:build unit

package middleware_test

import (
	"bytes"
	"log/slog"
	"net/http"
	stdhttptest "net/http/httptest"
	"testing"

	"bot-for-order/internal/handler/middleware"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLoggedRouter(buf *bytes.Buffer) *gin.Engine {
	gin.SetMode(gin.TestMode)
	logger := slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	r := gin.New()
	r.Use(middleware.RequestLogger(logger))
	r.GET("/orders/:id", func(c *gin.Context) {
		c.String(http.StatusOK, middleware.GetRequestID(c))
	})
	return r
}

func TestRequestLogger(t *testing.T) {
	t.Run("success: keeps an incoming request id", func(t *testing.T) {
		var buf bytes.Buffer
		r := newLoggedRouter(&buf)

		req := stdhttptest.NewRequest(http.MethodGet, "/orders/ord-1", nil)
		req.Header.Set(middleware.RequestIDHeader, "bot-42")
		rec := stdhttptest.NewRecorder()
		r.ServeHTTP(rec, req)

		assert.Equal(t, "bot-42", rec.Header().Get(middleware.RequestIDHeader))
		assert.Equal(t, "bot-42", rec.Body.String())
		assert.Contains(t, buf.String(), `"order_id":"ord-1"`)
		assert.Contains(t, buf.String(), `"status_code":200`)
	})

	t.Run("success: generates a request id when absent", func(t *testing.T) {
		var buf bytes.Buffer
		r := newLoggedRouter(&buf)

		rec := stdhttptest.NewRecorder()
		r.ServeHTTP(rec, stdhttptest.NewRequest(http.MethodGet, "/orders/ord-1", nil))

		_, err := uuid.Parse(rec.Header().Get(middleware.RequestIDHeader))
		require.NoError(t, err)
		assert.Equal(t, rec.Header().Get(middleware.RequestIDHeader), rec.Body.String())
	})
}
