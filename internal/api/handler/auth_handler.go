package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"research-approval/backend/pkg/response"
)

// TokenRevoker Token 吊销（Redis 黑名单）
type TokenRevoker interface {
	RevokeToken(ctx context.Context, jti string, ttl time.Duration) error
}

// AuthHandler 认证模块 HTTP 处理器
// 登录由外部身份系统负责，这里只提供当前 Token 的吊销
type AuthHandler struct {
	revoker TokenRevoker
}

// NewAuthHandler 创建 AuthHandler
func NewAuthHandler(revoker TokenRevoker) *AuthHandler {
	return &AuthHandler{revoker: revoker}
}

// Revoke 吊销当前 Access Token
// POST /api/v1/auth/revoke
func (h *AuthHandler) Revoke(c *gin.Context) {
	if h.revoker == nil {
		response.Error(c, http.StatusServiceUnavailable, 10005, "Token 吊销不可用")
		return
	}

	jti := c.GetString("token_jti")
	exp, ok := c.Get("token_exp")
	if jti == "" || !ok {
		response.Unauthorized(c, 10002, "未认证")
		return
	}

	ttl := time.Until(exp.(time.Time))
	if ttl <= 0 {
		response.OK(c, nil)
		return
	}

	if err := h.revoker.RevokeToken(c.Request.Context(), jti, ttl); err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, nil)
}
