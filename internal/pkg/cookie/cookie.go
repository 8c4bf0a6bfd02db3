package cookie

import (
	"github.com/gin-gonic/gin"
)

// AccessTokenCookieName is read by browser clients that cannot set headers,
// such as attachment links opened from the web app.
const AccessTokenCookieName = "access_token"

func GetAccessToken(c *gin.Context) string {
	token, _ := c.Cookie(AccessTokenCookieName)
	return token
}
