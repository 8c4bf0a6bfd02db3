//go:build unit

package api_test

import (
	"net/http"
	"time"

	"bot-for-order/internal/domain/order"
	"bot-for-order/internal/handler/middleware"
	"bot-for-order/tests/common/builder"

	"github.com/gin-gonic/gin"
)

const (
	buyerToken = "buyer-token"
	adminToken = "admin-token"
)

// fakeAuth maps the two test tokens to actors without parsing JWTs.
func fakeAuth(c *gin.Context) {
	switch c.GetHeader("Authorization") {
	case "Bearer " + buyerToken:
		middleware.SetActor(c, builder.Buyer())
	case "Bearer " + adminToken:
		middleware.SetActor(c, builder.Admin())
	default:
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": gin.H{"message": "Unauthorized"}})
		return
	}
	c.Next()
}

func newRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

func domainOrder(b *builder.OrderBuilder) *order.Order {
	o, _ := b.BuildDomain()
	return &o
}

func unix(t time.Time) int64 {
	return t.Unix()
}
