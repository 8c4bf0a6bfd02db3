package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"strings"

	"bot-for-order/internal/domain/idempotency"
	"bot-for-order/internal/handler/httperr"
	"bot-for-order/internal/pkg/errs"
	"bot-for-order/internal/usecase/commands"

	"github.com/gin-gonic/gin"
)

const (
	IdempotencyKeyHeader = "Idempotency-Key"
	ReplayedHeader       = "Idempotent-Replayed"

	maxClientKeyLength = 128
)

// BodyLimits caps the request bodies buffered for hashing, in bytes.
type BodyLimits struct {
	JSON   int64
	Upload int64
}

type IdempotencyMiddleware struct {
	svc    commands.IdempotencyService
	limits BodyLimits
}

func NewIdempotencyMiddleware(svc commands.IdempotencyService, limits BodyLimits) *IdempotencyMiddleware {
	return &IdempotencyMiddleware{svc: svc, limits: limits}
}

// Require protects the rest of the chain with the caller's Idempotency-Key.
// Must run after RequireAuth. Only 2xx responses are stored for replay.
func (m *IdempotencyMiddleware) Require(scope string) gin.HandlerFunc {
	return m.require(scope, m.limits.JSON)
}

// RequireUpload is Require for multipart routes.
func (m *IdempotencyMiddleware) RequireUpload(scope string) gin.HandlerFunc {
	return m.require(scope, m.limits.Upload)
}

func (m *IdempotencyMiddleware) require(scope string, maxBody int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		clientKey := strings.TrimSpace(c.GetHeader(IdempotencyKeyHeader))
		if clientKey == "" || len(clientKey) > maxClientKeyLength {
			httperr.AbortWithAppError(c, errs.ErrIdempotencyKeyRequired)
			return
		}
		actor, ok := GetActor(c)
		if !ok {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": gin.H{"message": "Internal server error"},
			})
			c.Abort()
			return
		}

		if maxBody > 0 {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBody)
		}
		body, err := c.GetRawData()
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errs.As(err, &tooLarge) {
				httperr.AbortWithError(c, http.StatusRequestEntityTooLarge, err, "Request body too large", gin.H{"limit_bytes": tooLarge.Limit})
				return
			}
			httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request body", nil)
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(body))

		key := idempotency.Key{
			MerchantID: actor.MerchantID,
			UserID:     actor.ID,
			Scope:      scope,
			ClientKey:  clientKey,
		}

		outcome, err := m.svc.Execute(c.Request.Context(), key, RequestHash(c.Request, body), func(context.Context) (idempotency.Response, error) {
			capture := &captureWriter{ResponseWriter: c.Writer}
			c.Writer = capture
			defer func() { c.Writer = capture.ResponseWriter }()

			c.Next()

			return idempotency.Response{Status: capture.Status(), Body: capture.body.Bytes()}, nil
		})
		if err != nil {
			httperr.AbortWithAppError(c, err)
			return
		}
		if outcome.IsReplay() {
			c.Header(ReplayedHeader, "true")
			c.Data(outcome.Response.Status, gin.MIMEJSON, outcome.Response.Body)
			c.Abort()
		}
	}
}

// RequestHash fingerprints method, path and body so a key reused for a
// different request is detected.
func RequestHash(r *http.Request, body []byte) string {
	h := sha256.New()
	h.Write([]byte(r.Method))
	h.Write([]byte{'\n'})
	h.Write([]byte(r.URL.Path))
	h.Write([]byte{'\n'})
	h.Write(body)
	return hex.EncodeToString(h.Sum(nil))
}

type captureWriter struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (w *captureWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *captureWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}
