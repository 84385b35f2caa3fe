package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"timecard/backend/internal/model"
)

// AttendanceFilter 考勤记录查询条件（管理端审计）
type AttendanceFilter struct {
	UserID       string
	DepartmentID string
	From         time.Time
	To           time.Time
	Offset       int
	Limit        int
}

// AttendanceRepository 考勤记录数据访问接口
type AttendanceRepository interface {
	Create(ctx context.Context, session *model.AttendanceSession) error
	GetByID(ctx context.Context, id string) (*model.AttendanceSession, error)
	// GetOpenByUser 查询某用户在 [dayStart, dayEnd) 内未签退的记录
	GetOpenByUser(ctx context.Context, userID string, dayStart, dayEnd time.Time) (*model.AttendanceSession, error)
	// ListByUser 查询某用户签到时间晚于 since 的全部记录（含未签退）
	ListByUser(ctx context.Context, userID string, since time.Time) ([]model.AttendanceSession, error)
	// SetLogout 写入签退时间；autoClosed 标记系统补签退
	SetLogout(ctx context.Context, sessionID string, logout time.Time, autoClosed bool) error
	Update(ctx context.Context, session *model.AttendanceSession) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter AttendanceFilter) ([]model.AttendanceSession, int64, error)
}

// attendanceRepo AttendanceRepository 的 GORM 实现
type attendanceRepo struct {
	db *gorm.DB
}

// NewAttendanceRepo 创建 AttendanceRepository 实例
func NewAttendanceRepo(db *gorm.DB) AttendanceRepository {
	return &attendanceRepo{db: db}
}

func (r *attendanceRepo) Create(ctx context.Context, session *model.AttendanceSession) error {
	return r.db.WithContext(ctx).Create(session).Error
}

func (r *attendanceRepo) GetByID(ctx context.Context, id string) (*model.AttendanceSession, error) {
	var session model.AttendanceSession
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("session_id = ?", id).
		First(&session).Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *attendanceRepo) GetOpenByUser(ctx context.Context, userID string, dayStart, dayEnd time.Time) (*model.AttendanceSession, error) {
	var session model.AttendanceSession
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND logout_time IS NULL AND login_time >= ? AND login_time < ?", userID, dayStart, dayEnd).
		Order("login_time ASC").
		First(&session).Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *attendanceRepo) ListByUser(ctx context.Context, userID string, since time.Time) ([]model.AttendanceSession, error) {
	var sessions []model.AttendanceSession
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND login_time > ?", userID, since).
		Order("login_time DESC").
		Find(&sessions).Error
	return sessions, err
}

func (r *attendanceRepo) SetLogout(ctx context.Context, sessionID string, logout time.Time, autoClosed bool) error {
	return r.db.WithContext(ctx).
		Model(&model.AttendanceSession{}).
		Where("session_id = ?", sessionID).
		Updates(map[string]interface{}{
			"logout_time": logout,
			"auto_closed": autoClosed,
		}).Error
}

func (r *attendanceRepo) Update(ctx context.Context, session *model.AttendanceSession) error {
	return r.db.WithContext(ctx).Save(session).Error
}

func (r *attendanceRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Where("session_id = ?", id).
		Delete(&model.AttendanceSession{}).Error
}

func (r *attendanceRepo) List(ctx context.Context, filter AttendanceFilter) ([]model.AttendanceSession, int64, error) {
	var sessions []model.AttendanceSession
	var total int64

	db := r.db.WithContext(ctx).Model(&model.AttendanceSession{})

	if filter.UserID != "" {
		db = db.Where("user_id = ?", filter.UserID)
	}
	if filter.DepartmentID != "" {
		db = db.Where("user_id IN (?)",
			r.db.Model(&model.User{}).Select("user_id").Where("department_id = ?", filter.DepartmentID))
	}
	if !filter.From.IsZero() {
		db = db.Where("login_time >= ?", filter.From)
	}
	if !filter.To.IsZero() {
		db = db.Where("login_time < ?", filter.To)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Preload("User").Preload("User.Department").
		Offset(filter.Offset).Limit(filter.Limit).
		Order("login_time DESC").
		Find(&sessions).Error; err != nil {
		return nil, 0, err
	}

	return sessions, total, nil
}
