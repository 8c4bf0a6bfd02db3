//go:build unit

package middleware_test

import (
	"net/http"
	"testing"
	"time"

	"bot-for-order/internal/domain/user"
	"bot-for-order/internal/handler/middleware"
	"bot-for-order/internal/pkg/config"
	"bot-for-order/internal/pkg/cookie"
	"bot-for-order/internal/pkg/jwt"
	"bot-for-order/tests/common/authtest"
	"bot-for-order/tests/common/builder"
	"bot-for-order/tests/common/httptest"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthRouter(cfg config.JWTConfig) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	auth := middleware.NewAuthMiddleware(jwt.NewService(cfg.Secret, cfg.Duration))

	whoami := func(c *gin.Context) {
		actor, ok := middleware.GetActor(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": actor.ID, "role": actor.Role, "merchant_id": actor.MerchantID})
	}
	r.GET("/me", auth.RequireAuth(), whoami)
	r.GET("/admin/me", auth.RequireAuth(), auth.RequireAdmin(), whoami)
	r.GET("/misconfigured", auth.RequireAdmin(), whoami)
	return r
}

func TestAuthMiddleware(t *testing.T) {
	cfg := config.NewTestConfig().JWT
	router := newAuthRouter(cfg)
	tokens := authtest.NewJWTHelper(cfg)

	t.Run("success: buyer token resolves the actor", func(t *testing.T) {
		rec := httptest.PerformRequest(t, router, http.MethodGet, "/me", nil, tokens.GenerateToken(t, builder.Buyer()))

		var body struct {
			ID   int64  `json:"id"`
			Role string `json:"role"`
		}
		httptest.AssertSuccessResponse(t, rec, http.StatusOK, &body)
		assert.Equal(t, builder.DefaultBuyerID, body.ID)
		assert.Equal(t, "buyer", body.Role)
	})

	t.Run("success: admin passes RequireAdmin", func(t *testing.T) {
		rec := httptest.PerformRequest(t, router, http.MethodGet, "/admin/me", nil, tokens.GenerateToken(t, builder.Admin()))

		var body struct {
			MerchantID string `json:"merchant_id"`
		}
		httptest.AssertSuccessResponse(t, rec, http.StatusOK, &body)
		assert.Equal(t, builder.DefaultMerchantID, body.MerchantID)
	})

	t.Run("success: access token cookie is accepted without a header", func(t *testing.T) {
		rec := httptest.PerformRequestWithHeaders(t, router, http.MethodGet, "/me", nil, "", map[string]string{
			"Cookie": cookie.AccessTokenCookieName + "=" + tokens.GenerateToken(t, builder.Buyer()),
		})
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("error: buyer is forbidden on admin routes", func(t *testing.T) {
		rec := httptest.PerformRequest(t, router, http.MethodGet, "/admin/me", nil, tokens.GenerateToken(t, builder.Buyer()))
		httptest.AssertErrorCode(t, rec, http.StatusForbidden, "FORBIDDEN")
	})

	t.Run("error: admin token without merchant is forbidden", func(t *testing.T) {
		orphan := user.Actor{ID: 7, Role: user.RoleAdmin}
		rec := httptest.PerformRequest(t, router, http.MethodGet, "/me", nil, tokens.GenerateToken(t, orphan))
		httptest.AssertErrorCode(t, rec, http.StatusForbidden, "FORBIDDEN")
	})

	unauthorized := []struct {
		name  string
		token func(t *testing.T) string
		msg   string
	}{
		{name: "missing token", token: func(*testing.T) string { return "" }, msg: "Access token required"},
		{name: "garbage token", token: func(*testing.T) string { return "not-a-jwt" }, msg: "Invalid or expired token"},
		{name: "expired token", token: func(t *testing.T) string { return tokens.CreateExpiredToken(t, builder.Buyer()) }, msg: "Invalid or expired token"},
		{name: "foreign signature", token: func(t *testing.T) string {
			other := authtest.NewJWTHelper(config.JWTConfig{Secret: "other-secret", Duration: time.Hour})
			return other.GenerateToken(t, builder.Buyer())
		}, msg: "Invalid or expired token"},
	}
	for _, tc := range unauthorized {
		t.Run("error: "+tc.name, func(t *testing.T) {
			rec := httptest.PerformRequest(t, router, http.MethodGet, "/me", nil, tc.token(t))
			httptest.AssertErrorResponse(t, rec, http.StatusUnauthorized, tc.msg)
		})
	}

	t.Run("error: RequireAdmin without RequireAuth is a server error", func(t *testing.T) {
		rec := httptest.PerformRequest(t, router, http.MethodGet, "/misconfigured", nil, "")
		require.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}
