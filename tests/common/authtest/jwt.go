//go:build unit || e2e

package authtest

import (
	"testing"
	"time"

	"bot-for-order/internal/domain/user"
	"bot-for-order/internal/pkg/config"
	"bot-for-order/internal/pkg/jwt"

	"github.com/stretchr/testify/require"
)

type JWTHelper struct {
	cfg config.JWTConfig
}

func NewJWTHelper(cfg config.JWTConfig) *JWTHelper {
	return &JWTHelper{cfg: cfg}
}

func (h *JWTHelper) GenerateToken(t *testing.T, actor user.Actor) string {
	t.Helper()
	service := jwt.NewService(h.cfg.Secret, h.cfg.Duration)
	token, err := service.GenerateToken(actor)
	require.NoError(t, err)
	return token
}

func (h *JWTHelper) CreateExpiredToken(t *testing.T, actor user.Actor) string {
	t.Helper()
	service := jwt.NewService(h.cfg.Secret, time.Millisecond)
	token, err := service.GenerateToken(actor)
	require.NoError(t, err)
	time.Sleep(10 * time.Millisecond)
	return token
}
