package handler

import (
	"time"

	"github.com/gin-gonic/gin"
)

// ── 上下文取值辅助 ──
// 以下键由 JWTAuth 中间件写入，路由保证先经过认证，取不到即编程错误

// MustGetUserID 获取当前登录用户 ID
func MustGetUserID(c *gin.Context) string {
	return c.GetString("user_id")
}

// MustGetRole 获取当前登录用户角色
func MustGetRole(c *gin.Context) string {
	return c.GetString("role")
}

// GetTokenJTI 获取当前 Access Token 的 JTI（注销时加黑名单用）
func GetTokenJTI(c *gin.Context) string {
	return c.GetString("token_jti")
}

// GetTokenExpiry 获取当前 Access Token 的过期时间
func GetTokenExpiry(c *gin.Context) time.Time {
	if v, ok := c.Get("token_exp"); ok {
		if t, ok := v.(time.Time); ok {
			return t
		}
	}
	return time.Time{}
}
