package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"research-approval/backend/pkg/response"
)

// MustGetUserID 从 Gin 上下文中安全提取 user_id。
// 如果 JWT 中间件未正确注入 user_id，返回 false 并写入 401 响应。
// 调用方应在 ok=false 时直接 return。
func MustGetUserID(c *gin.Context) (string, bool) {
	return mustGetString(c, "user_id")
}

// MustGetRole 从 Gin 上下文中安全提取 role。
func MustGetRole(c *gin.Context) (string, bool) {
	return mustGetString(c, "role")
}

func mustGetString(c *gin.Context, key string) (string, bool) {
	v, exists := c.Get(key)
	if !exists {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	return s, true
}

// chapterParam 解析路径中的章节号，非数字时写入 400
// 范围校验交给 service，以便返回统一的 InvalidChapterNumber
func chapterParam(c *gin.Context) (int, bool) {
	n, err := strconv.Atoi(c.Param("chapter"))
	if err != nil {
		response.BadRequest(c, 22005, "章节号必须在 1-5 之间")
		return 0, false
	}
	return n, true
}
