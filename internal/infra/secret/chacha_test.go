//go:build unit

package secret_test

import (
	"testing"

	"bot-for-order/internal/infra/secret"
	"bot-for-order/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA="

func TestEncryptor_RoundTrip(t *testing.T) {
	enc, err := secret.NewEncryptor(testKey)
	require.NoError(t, err)

	sealed, err := enc.Encrypt("Pay {amount} to card 4242, order {order}")
	require.NoError(t, err)
	assert.NotContains(t, sealed, "4242")

	plain, err := enc.Decrypt(sealed)
	require.NoError(t, err)
	assert.Equal(t, "Pay {amount} to card 4242, order {order}", plain)
}

func TestEncryptor_Decrypt_Corrupt(t *testing.T) {
	enc, err := secret.NewEncryptor(testKey)
	require.NoError(t, err)

	sealed, err := enc.Encrypt("hello")
	require.NoError(t, err)

	testCases := []struct {
		name  string
		input string
	}{
		{name: "not base64", input: "%%%"},
		{name: "too short", input: "AAAA"},
		{name: "tampered", input: sealed[:len(sealed)-4] + "AAAA"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := enc.Decrypt(tc.input)
			require.Error(t, err)
			assert.True(t, errs.Is(err, secret.ErrCiphertext))
		})
	}
}

func TestNewEncryptor_BadKey(t *testing.T) {
	_, err := secret.NewEncryptor("c2hvcnQ=")
	assert.Error(t, err)
}
