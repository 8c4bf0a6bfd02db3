//go:build unit

package botapi_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"bot-for-order/internal/infra/botapi"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_SendMessage(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/botsecret/sendMessage", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := botapi.NewClient(srv.URL, "secret", time.Second)
	require.NoError(t, c.SendMessage(context.Background(), 77, "hello"))

	assert.Equal(t, float64(77), got["chat_id"])
	assert.Equal(t, "hello", got["text"])
}

func TestClient_SendMessage_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "chat not found", http.StatusBadRequest)
	}))
	defer srv.Close()

	c := botapi.NewClient(srv.URL, "secret", time.Second)
	err := c.SendMessage(context.Background(), 1, "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "400")
}
