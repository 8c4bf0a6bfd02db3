//go:build unit

package errs_test

import (
	"net/http"
	"testing"

	"bot-for-order/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errSample = errs.Conflict("SAMPLE_CONFLICT", "sample conflict")

func TestClassify(t *testing.T) {
	testCases := []struct {
		name   string
		err    error
		code   string
		status int
	}{
		{name: "sentinel", err: errSample, code: "SAMPLE_CONFLICT", status: http.StatusConflict},
		{name: "wrapped", err: errs.Wrap(errSample, "order ord-1"), code: "SAMPLE_CONFLICT", status: http.StatusConflict},
		{name: "wrapped twice", err: errs.Wrapf(errs.Wrap(errs.ErrLockTimeout, "a"), "b %d", 1), code: "LOCK_TIMEOUT", status: http.StatusServiceUnavailable},
		{name: "marked", err: errs.Mark(errs.New("pool closed"), errs.ErrStoreUnavailable), code: "STORE_UNAVAILABLE", status: http.StatusServiceUnavailable},
		{name: "forbidden", err: errs.ErrForbidden, code: "FORBIDDEN", status: http.StatusForbidden},
		{name: "validation", err: errs.ErrIdempotencyKeyRequired, code: "IDEMPOTENCY_KEY_REQUIRED", status: http.StatusBadRequest},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			app := errs.Classify(tc.err)
			require.NotNil(t, app)
			assert.Equal(t, tc.code, app.Code)
			assert.Equal(t, tc.status, app.Status())
		})
	}

	assert.Nil(t, errs.Classify(nil))
	assert.Nil(t, errs.Classify(errs.New("plain")))
}

func TestAppError_Retryable(t *testing.T) {
	assert.True(t, errs.Classify(errs.ErrLockTimeout).Retryable())
	assert.False(t, errs.Classify(errSample).Retryable())
}

func TestWrap_KeepsIdentity(t *testing.T) {
	err := errs.Wrapf(errSample, "order %s", "ord-1")
	assert.True(t, errs.Is(err, errSample))
	assert.False(t, errs.Is(err, errs.ErrForbidden))
	assert.Contains(t, err.Error(), "order ord-1")
	assert.NotEmpty(t, errs.ExtractStackLines(err, 5))
}
