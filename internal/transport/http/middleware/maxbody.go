package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	resp "gestao-marketplace/internal/transport/http/response"
)

// MaxBodyBytes 整个请求体的硬上限；超出后读 body 会报 *http.MaxBytesError，由 handler 转成 413
func MaxBodyBytes(n int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > n {
			c.Header("Connection", "close")
			resp.Abort(c, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, n)
		c.Next()
	}
}
