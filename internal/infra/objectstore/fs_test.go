//go:build unit

package objectstore_test

import (
	"context"
	"net/url"
	"os"
	"strings"
	"testing"
	"time"

	"bot-for-order/internal/infra/objectstore"
	"bot-for-order/internal/pkg/errs"
	"bot-for-order/internal/pkg/jwt"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStorage(t *testing.T) *objectstore.FSStorage {
	t.Helper()
	s, err := objectstore.NewFSStorage(t.TempDir(), "http://files.local/files/", jwt.NewService("presign", time.Hour))
	require.NoError(t, err)
	return s
}

func TestFSStorage_PutAndPresign(t *testing.T) {
	s := newStorage(t)
	key := "claims/1/abc/0-receipt.png"

	require.NoError(t, s.Put(context.Background(), key, []byte("png"), "image/png", 3))

	link, err := s.PresignGet(key, time.Minute)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(link, "http://files.local/files/"+key+"?token="))

	u, err := url.Parse(link)
	require.NoError(t, err)
	path, err := s.Open(key, u.Query().Get("token"))
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "png", string(data))
}

func TestFSStorage_Delete(t *testing.T) {
	s := newStorage(t)
	ctx := context.Background()
	key := "claims/1/abc/0-receipt.png"
	require.NoError(t, s.Put(ctx, key, []byte("png"), "image/png", 3))

	link, err := s.PresignGet(key, time.Minute)
	require.NoError(t, err)
	u, err := url.Parse(link)
	require.NoError(t, err)
	path, err := s.Open(key, u.Query().Get("token"))
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, key))
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	// deleting again is not an error
	require.NoError(t, s.Delete(ctx, key))
	assert.True(t, errs.Is(s.Delete(ctx, "../escape"), objectstore.ErrInvalidKey))
}

func TestFSStorage_Rejects(t *testing.T) {
	s := newStorage(t)

	t.Run("path traversal", func(t *testing.T) {
		err := s.Put(context.Background(), "../escape", []byte("x"), "text/plain", 1)
		assert.True(t, errs.Is(err, objectstore.ErrInvalidKey))
	})

	t.Run("token for another key", func(t *testing.T) {
		link, err := s.PresignGet("a/b", time.Minute)
		require.NoError(t, err)
		u, err := url.Parse(link)
		require.NoError(t, err)

		_, err = s.Open("a/c", u.Query().Get("token"))
		assert.True(t, errs.Is(err, errs.ErrForbidden))
	})

	t.Run("size mismatch", func(t *testing.T) {
		err := s.Put(context.Background(), "a/b", []byte("xy"), "text/plain", 1)
		assert.Error(t, err)
	})
}
