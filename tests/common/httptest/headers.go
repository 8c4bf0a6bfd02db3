//go:build unit || e2e

package httptest

import (
	"net/http/httptest"
	"testing"

	"bot-for-order/internal/handler/middleware"

	"github.com/stretchr/testify/assert"
)

// AssertReplayed checks whether the response was served from a stored idempotency record.
func AssertReplayed(t *testing.T, w *httptest.ResponseRecorder, replayed bool) {
	t.Helper()
	if replayed {
		assert.Equal(t, "true", w.Header().Get(middleware.ReplayedHeader), "expected a replayed response")
		return
	}
	assert.Empty(t, w.Header().Get(middleware.ReplayedHeader), "expected a fresh response")
}
