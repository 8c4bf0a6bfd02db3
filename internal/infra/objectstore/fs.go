package objectstore

import (
	"context"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"bot-for-order/internal/pkg/errs"
	"bot-for-order/internal/pkg/jwt"
)

var ErrInvalidKey = errs.Validation("INVALID_OBJECT_KEY", "invalid object key")

// FSStorage stores objects under a directory and hands out signed download URLs
// served by the files handler.
type FSStorage struct {
	dir     string
	baseURL string
	signer  *jwt.Service
}

func NewFSStorage(dir, baseURL string, signer *jwt.Service) (*FSStorage, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, errs.Wrap(err, "failed to create storage dir")
	}
	return &FSStorage{dir: dir, baseURL: strings.TrimRight(baseURL, "/"), signer: signer}, nil
}

func (s *FSStorage) Put(ctx context.Context, key string, data []byte, _ string, size int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := s.path(key)
	if err != nil {
		return err
	}
	if int64(len(data)) != size {
		return errs.Newf("object %s: size %d does not match payload %d", key, size, len(data))
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return errs.Wrap(err, "failed to create object dir")
	}
	if err := os.WriteFile(path, data, 0o640); err != nil {
		return errs.Wrapf(err, "failed to write object %s", key)
	}
	return nil
}

func (s *FSStorage) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errs.Is(err, fs.ErrNotExist) {
		return errs.Wrapf(err, "failed to delete object %s", key)
	}
	return nil
}

func (s *FSStorage) PresignGet(key string, ttl time.Duration) (string, error) {
	if _, err := s.path(key); err != nil {
		return "", err
	}
	token, err := s.signer.GenerateFileToken(key, ttl)
	if err != nil {
		return "", errs.Wrap(err, "failed to sign object url")
	}
	return s.baseURL + "/" + key + "?token=" + url.QueryEscape(token), nil
}

// Open verifies the download token and returns the object's local path.
func (s *FSStorage) Open(key, token string) (string, error) {
	path, err := s.path(key)
	if err != nil {
		return "", err
	}
	if err := s.signer.ValidateFileToken(token, key); err != nil {
		return "", errs.Wrap(errs.ErrForbidden, err.Error())
	}
	return path, nil
}

func (s *FSStorage) path(key string) (string, error) {
	clean := filepath.Clean("/" + key)
	if key == "" || clean == "/" || strings.Contains(key, "..") {
		return "", errs.Wrapf(ErrInvalidKey, "key %q", key)
	}
	return filepath.Join(s.dir, filepath.FromSlash(clean)), nil
}
