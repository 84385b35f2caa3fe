package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"timecard/backend/config"
	"timecard/backend/internal/api/handler"
	"timecard/backend/internal/api/middleware"
	"timecard/backend/internal/model"
	"timecard/backend/pkg/jwt"
	"timecard/backend/pkg/redis"
)

// Setup 初始化并返回 Gin 路由引擎
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(1 << 20)) // 1MB

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 认证模块（无需认证；登录接口加速率限制防爆破）
		auth := v1.Group("/auth")
		{
			auth.POST("/login", middleware.RateLimit(rdb, 10, time.Minute), h.Auth.Login)
			auth.POST("/refresh", h.Auth.Refresh)
		}

		// 需要认证的路由
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, rdb, logger))
		{
			// 认证模块（需要认证）
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.GET("/auth/me", h.Auth.Me)
			authorized.POST("/auth/password", h.Auth.ChangePassword)

			// 考勤模块
			attendance := authorized.Group("/attendance")
			{
				attendance.POST("/clock-in", h.Attendance.ClockIn)
				attendance.POST("/clock-out", h.Attendance.ClockOut)
				attendance.GET("/status", h.Attendance.Status)
				attendance.GET("/me", h.Attendance.MyRecords)
				attendance.GET("", middleware.RoleAuth(model.RoleAdmin), h.Attendance.List)
				attendance.GET("/compliance", middleware.RoleAuth(model.RoleAdmin), h.Attendance.Compliance)
				attendance.PUT("/:id", middleware.RoleAuth(model.RoleAdmin), h.Attendance.Update)
				attendance.DELETE("/:id", middleware.RoleAuth(model.RoleAdmin), h.Attendance.Delete)
			}

			// 用户模块（管理员专用）
			users := authorized.Group("/users", middleware.RoleAuth(model.RoleAdmin))
			{
				users.GET("", h.User.List)
				users.GET("/:id", h.User.Get)
				users.POST("", h.User.Create)
				users.PUT("/:id", h.User.Update)
				users.DELETE("/:id", h.User.Delete)
				users.PUT("/:id/role", h.User.AssignRole)
				users.POST("/:id/reset-password", h.User.ResetPassword)
			}

			// 部门模块（查询开放，写操作管理员专用）
			departments := authorized.Group("/departments")
			{
				departments.GET("", h.Department.List)
				departments.GET("/:id", h.Department.Get)
				departments.POST("", middleware.RoleAuth(model.RoleAdmin), h.Department.Create)
				departments.PUT("/:id", middleware.RoleAuth(model.RoleAdmin), h.Department.Update)
				departments.DELETE("/:id", middleware.RoleAuth(model.RoleAdmin), h.Department.Delete)
			}

			// 导出模块（管理员专用）
			export := authorized.Group("/export", middleware.RoleAuth(model.RoleAdmin))
			{
				export.GET("/excel", h.Export.Excel)
				export.GET("/csv", h.Export.CSV)
				export.GET("/calendar", h.Export.Calendar)
			}
		}
	}

	return r
}
