package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"bot-for-order/internal/domain/user"
	"bot-for-order/internal/handler/httperr"
	"bot-for-order/internal/pkg/cookie"
	"bot-for-order/internal/pkg/errs"
	"bot-for-order/internal/pkg/jwt"

	"github.com/gin-gonic/gin"
)

// TokenValidator parses an access token into its claims.
type TokenValidator interface {
	ValidateToken(token string) (*jwt.Claims, error)
}

type AuthMiddleware struct {
	tokenValidator TokenValidator
}

const ctxActorKey = "actor"

func NewAuthMiddleware(tokenValidator TokenValidator) *AuthMiddleware {
	return &AuthMiddleware{
		tokenValidator: tokenValidator,
	}
}

func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := accessToken(c)
		if token == "" {
			abortUnauthorized(c, "Access token required")
			return
		}

		claims, err := m.tokenValidator.ValidateToken(token)
		if err != nil {
			slog.Warn("Token validation failed in auth middleware", "error", err.Error())
			abortUnauthorized(c, "Invalid or expired token")
			return
		}

		role, err := user.NewRole(claims.Role)
		if err != nil {
			abortUnauthorized(c, "Invalid or expired token")
			return
		}
		actor, err := user.NewActor(claims.UserID, role, claims.MerchantID)
		if err != nil {
			httperr.AbortWithAppError(c, err)
			return
		}

		c.Set(ctxActorKey, actor)
		c.Next()
	}
}

// RequireAdmin must run after RequireAuth.
func (m *AuthMiddleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := GetActor(c)
		if !ok {
			// Unexpected error: should be used after RequireAuth()
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": gin.H{"message": "Internal server error"},
			})
			c.Abort()
			return
		}
		if !actor.IsAdmin() {
			httperr.AbortWithAppError(c, errs.Wrap(errs.ErrForbidden, "admin role required"))
			return
		}
		c.Next()
	}
}

func GetActor(c *gin.Context) (user.Actor, bool) {
	v, exists := c.Get(ctxActorKey)
	if !exists {
		return user.Actor{}, false
	}
	actor, ok := v.(user.Actor)
	return actor, ok
}

// SetActor is used by tests that bypass token parsing.
func SetActor(c *gin.Context, actor user.Actor) {
	c.Set(ctxActorKey, actor)
}

// accessToken prefers the Authorization header and falls back to the cookie.
func accessToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" && strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimSpace(authHeader[len("Bearer "):])
	}
	return cookie.GetAccessToken(c)
}

func abortUnauthorized(c *gin.Context, msg string) {
	c.JSON(http.StatusUnauthorized, gin.H{
		"error": gin.H{"message": msg},
	})
	c.Abort()
}
