package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"timecard/backend/config"
	"timecard/backend/internal/dto"
	"timecard/backend/internal/service"
	"timecard/backend/pkg/response"
)

const refreshCookieName = "refresh_token"

// AuthHandler 认证接口处理器
type AuthHandler struct {
	authSvc service.AuthService
	cfg     *config.Config // 测试中可为 nil，Cookie 写入降级为默认参数
}

// NewAuthHandler 创建 AuthHandler 实例
func NewAuthHandler(authSvc service.AuthService, cfg *config.Config) *AuthHandler {
	return &AuthHandler{authSvc: authSvc, cfg: cfg}
}

// Login 登录
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, CodeInvalidParams, "请求参数错误")
		return
	}

	token, err := h.authSvc.Login(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			response.Unauthorized(c, CodeInvalidCredentials, err.Error())
			return
		}
		response.InternalError(c)
		return
	}

	// Refresh Token 走 HttpOnly Cookie，响应体中不再返回
	h.setRefreshCookie(c, token.RefreshToken, req.RememberMe)
	token.RefreshToken = ""

	response.OK(c, token)
}

// Refresh 刷新 Token（优先读 Cookie，其次读请求体）
// POST /api/v1/auth/refresh
func (h *AuthHandler) Refresh(c *gin.Context) {
	refreshToken, err := c.Cookie(refreshCookieName)
	if err != nil || refreshToken == "" {
		var req dto.RefreshTokenRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.RefreshToken == "" {
			response.Unauthorized(c, CodeRefreshTokenInvalid, "缺少 refresh token")
			return
		}
		refreshToken = req.RefreshToken
	}

	token, err := h.authSvc.RefreshToken(c.Request.Context(), refreshToken)
	if err != nil {
		if errors.Is(err, service.ErrRefreshTokenInvalid) {
			h.clearRefreshCookie(c)
			response.Unauthorized(c, CodeRefreshTokenInvalid, err.Error())
			return
		}
		response.InternalError(c)
		return
	}

	h.setRefreshCookie(c, token.RefreshToken, false)
	token.RefreshToken = ""

	response.OK(c, token)
}

// Logout 注销
// POST /api/v1/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	refreshToken, _ := c.Cookie(refreshCookieName)

	if err := h.authSvc.Logout(c.Request.Context(), GetTokenJTI(c), GetTokenExpiry(c), refreshToken); err != nil {
		response.InternalError(c)
		return
	}

	h.clearRefreshCookie(c)
	response.OK(c, nil)
}

// Me 获取当前登录用户信息
// GET /api/v1/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.authSvc.GetCurrentUser(c.Request.Context(), MustGetUserID(c))
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			response.NotFound(c, CodeUserNotFound, err.Error())
			return
		}
		response.InternalError(c)
		return
	}
	response.OK(c, user)
}

// ChangePassword 修改密码
// POST /api/v1/auth/password
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req dto.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, CodeInvalidParams, "请求参数错误")
		return
	}

	err := h.authSvc.ChangePassword(c.Request.Context(), MustGetUserID(c), &req)
	switch {
	case err == nil:
		response.OK(c, nil)
	case errors.Is(err, service.ErrWeakPassword):
		response.BadRequest(c, CodeWeakPassword, err.Error())
	case errors.Is(err, service.ErrWrongOldPassword):
		response.BadRequest(c, CodeWrongOldPassword, err.Error())
	case errors.Is(err, service.ErrUserNotFound):
		response.NotFound(c, CodeUserNotFound, err.Error())
	default:
		response.InternalError(c)
	}
}

// ── Cookie 辅助 ──

func (h *AuthHandler) setRefreshCookie(c *gin.Context, token string, rememberMe bool) {
	maxAge := 24 * 3600
	secure := false
	domain := ""
	sameSite := http.SameSiteLaxMode

	if h.cfg != nil {
		ttl := h.cfg.Auth.RefreshTokenTTLDefault
		if rememberMe {
			ttl = h.cfg.Auth.RefreshTokenTTLRemember
		}
		maxAge = int(ttl.Seconds())
		secure = h.cfg.Auth.Cookie.Secure
		domain = h.cfg.Auth.Cookie.Domain
		if h.cfg.Auth.Cookie.SameSite == "Strict" {
			sameSite = http.SameSiteStrictMode
		}
	}

	c.SetSameSite(sameSite)
	c.SetCookie(refreshCookieName, token, maxAge, "/api/v1/auth", domain, secure, true)
}

func (h *AuthHandler) clearRefreshCookie(c *gin.Context) {
	domain := ""
	secure := false
	if h.cfg != nil {
		domain = h.cfg.Auth.Cookie.Domain
		secure = h.cfg.Auth.Cookie.Secure
	}
	c.SetCookie(refreshCookieName, "", -1, "/api/v1/auth", domain, secure, true)
}
