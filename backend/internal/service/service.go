package service

import (
	"go.uber.org/zap"

	"timecard/backend/config"
	"timecard/backend/internal/repository"
	"timecard/backend/pkg/jwt"
	"timecard/backend/pkg/redis"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Auth       AuthService
	User       UserService
	Department DepartmentService
	Attendance AttendanceService
	Export     ExportService
}

// NewService 创建 Service 聚合
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	rdb *redis.Client,
	logger *zap.Logger,
) *Service {
	return &Service{
		Auth:       NewAuthService(cfg, repo, jwtMgr, rdb, logger),
		User:       NewUserService(repo, logger),
		Department: NewDepartmentService(repo, logger),
		Attendance: NewAttendanceService(cfg, repo, logger),
		Export:     NewExportService(cfg, repo, logger),
	}
}
