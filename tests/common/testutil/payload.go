//go:build unit || e2e

package testutil

import (
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/require"
)

type Mutation func(map[string]any)

// Payload renders a request DTO as a JSON object so a test can break single fields.
func Payload(t *testing.T, dto any, muts ...Mutation) map[string]any {
	t.Helper()
	b, err := json.Marshal(dto)
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(b, &m))
	for _, mut := range muts {
		mut(m)
	}
	return m
}

func Set(key string, value any) Mutation {
	return func(m map[string]any) { m[key] = value }
}

func Drop(key string) Mutation {
	return func(m map[string]any) { delete(m, key) }
}
