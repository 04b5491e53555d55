package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	resp "gestao-marketplace/internal/transport/http/response"
)

const KeyUserID = "userId"

// TokenVerifier 返回 token 的 subject（用户 ID）
type TokenVerifier interface {
	Verify(token string) (string, error)
}

func AuthJWT(v TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		ah := c.GetHeader("Authorization")
		if len(ah) < 7 || !strings.EqualFold(ah[:7], "Bearer ") {
			resp.Abort(c, http.StatusUnauthorized, "missing token")
			return
		}
		sub, err := v.Verify(strings.TrimSpace(ah[7:]))
		if err != nil {
			resp.Abort(c, http.StatusUnauthorized, "invalid token")
			return
		}
		c.Set(KeyUserID, sub)
		c.Next()
	}
}

// UserID 鉴权通过后的当前用户
func UserID(c *gin.Context) string { return c.GetString(KeyUserID) }
