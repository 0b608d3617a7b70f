package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"research-approval/backend/pkg/response"
)

// BodyLimit 请求体大小限制
// Content-Length 已超限时直接 413；未声明长度的请求由 MaxBytesReader 截断，绑定失败走 400
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if maxBytes <= 0 {
			c.Next()
			return
		}
		if c.Request.ContentLength > maxBytes {
			response.Error(c, http.StatusRequestEntityTooLarge, 10005, "请求体过大")
			c.Abort()
			return
		}
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}
		c.Next()
	}
}
