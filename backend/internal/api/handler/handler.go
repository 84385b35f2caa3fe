package handler

import (
	"timecard/backend/config"
	"timecard/backend/internal/service"
)

// ── 业务错误码 ──
// 1xx 通用 / 11x 认证 / 12x 用户与部门 / 13x 考勤 / 14x 导出

const (
	CodeInvalidParams = 10001

	CodeInvalidCredentials  = 11001
	CodeTokenInvalid        = 11002
	CodeRefreshTokenInvalid = 11003
	CodeWrongOldPassword    = 11004
	CodeWeakPassword        = 11005
	CodePermissionDenied    = 11006

	CodeUserNotFound     = 12001
	CodeEmployeeNoExists = 12002
	CodeEmailExists      = 12003

	CodeDepartmentNotFound   = 12101
	CodeDepartmentHasMembers = 12102

	CodeAlreadyClockedIn = 13001
	CodeNoOpenSession    = 13002
	CodeSessionNotFound  = 13003
	CodeInvalidTimeRange = 13004

	CodeExportNoData = 14001
)

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Auth       *AuthHandler
	User       *UserHandler
	Department *DepartmentHandler
	Attendance *AttendanceHandler
	Export     *ExportHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(cfg *config.Config, svc *service.Service) *Handler {
	return &Handler{
		Auth:       NewAuthHandler(svc.Auth, cfg),
		User:       NewUserHandler(svc.User),
		Department: NewDepartmentHandler(svc.Department),
		Attendance: NewAttendanceHandler(svc.Attendance),
		Export:     NewExportHandler(svc.Export),
	}
}
