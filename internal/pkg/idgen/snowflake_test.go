//go:build unit

package idgen_test

import (
	"testing"

	"bot-for-order/internal/pkg/idgen"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnowflake_NextOrderID(t *testing.T) {
	gen, err := idgen.NewSnowflake(1)
	require.NoError(t, err)

	seen := make(map[string]struct{}, 1000)
	for range 1000 {
		id := gen.NextOrderID()
		_, dup := seen[id]
		require.False(t, dup, "duplicate id %s", id)
		seen[id] = struct{}{}
	}
	assert.Len(t, seen, 1000)
}

func TestNewSnowflake_InvalidNode(t *testing.T) {
	_, err := idgen.NewSnowflake(1 << 20)
	assert.Error(t, err)
}
