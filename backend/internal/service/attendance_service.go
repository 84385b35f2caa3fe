package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"timecard/backend/config"
	"timecard/backend/internal/dto"
	"timecard/backend/internal/engine"
	"timecard/backend/internal/model"
	"timecard/backend/internal/repository"
)

// ── 考勤模块业务错误 ──

var (
	ErrAlreadyClockedIn = errors.New("今日已签到且未签退")
	ErrNoOpenSession    = errors.New("当前没有进行中的考勤记录")
	ErrSessionNotFound  = errors.New("考勤记录不存在")
	ErrInvalidTimeRange = errors.New("签退时间不能早于签到时间")
)

// AttendanceService 考勤业务接口
type AttendanceService interface {
	// ClockIn 签到：同一用户当天至多一条进行中记录
	ClockIn(ctx context.Context, userID string) (*dto.SessionResponse, error)
	// ClockOut 签退当天的进行中记录
	ClockOut(ctx context.Context, userID string) (*dto.SessionResponse, error)
	GetStatus(ctx context.Context, userID string) (*dto.ClockStatusResponse, error)
	// GetMyRecords 查询本人保留期内的考勤记录（规整 + 状态判定）
	GetMyRecords(ctx context.Context, userID string) (*dto.MyAttendanceResponse, error)
	// List 管理端审计查询
	List(ctx context.Context, req *dto.AttendanceListRequest) ([]dto.SessionResponse, int64, error)
	UpdateSession(ctx context.Context, id string, req *dto.UpdateSessionRequest) (*dto.SessionResponse, error)
	DeleteSession(ctx context.Context, id string) error
	// ComplianceReport 对指定用户（为空则全量窗口内用户）做合规检查
	ComplianceReport(ctx context.Context, userID string) (*dto.ComplianceReportResponse, error)
}

type attendanceService struct {
	cfg    *config.Config
	repo   *repository.Repository
	logger *zap.Logger
}

// NewAttendanceService 创建 AttendanceService 实例
func NewAttendanceService(cfg *config.Config, repo *repository.Repository, logger *zap.Logger) AttendanceService {
	return &attendanceService{cfg: cfg, repo: repo, logger: logger}
}

// officeHours 从配置构造判定参数
func (s *attendanceService) officeHours() engine.OfficeHoursConfig {
	a := s.cfg.Attendance
	return engine.OfficeHoursConfig{
		StartHour:             a.StartHour,
		EndHour:               a.EndHour,
		GracePeriodMinutes:    a.GracePeriodMinutes,
		EarlyEntryLeadMinutes: a.EarlyEntryLeadMinutes,
		ExitGraceMinutes:      a.ExitGraceMinutes,
	}
}

func (s *attendanceService) policy() engine.CompliancePolicy {
	a := s.cfg.Attendance
	return engine.CompliancePolicy{
		WindowDays:          a.ComplianceWindowDays,
		LateThreshold:       a.LateThreshold,
		EarlyLeaveThreshold: a.EarlyLeaveThreshold,
	}
}

func (s *attendanceService) ClockIn(ctx context.Context, userID string) (*dto.SessionResponse, error) {
	now := time.Now()
	dayStart, dayEnd := dayBounds(now)

	// 1. 当天已有进行中记录则拒绝
	if _, err := s.repo.Attendance.GetOpenByUser(ctx, userID, dayStart, dayEnd); err == nil {
		return nil, ErrAlreadyClockedIn
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询进行中记录失败", zap.Error(err))
		return nil, err
	}

	// 2. 创建记录；并发签到由数据库部分唯一索引兜底
	session := &model.AttendanceSession{
		UserID:    userID,
		LoginTime: now,
	}
	if err := s.repo.Attendance.Create(ctx, session); err != nil {
		s.logger.Error("创建考勤记录失败", zap.Error(err))
		return nil, err
	}

	s.logger.Info("签到成功",
		zap.String("user_id", userID),
		zap.String("session_id", session.SessionID))

	resp := s.toSessionResponse(session)
	return &resp, nil
}

func (s *attendanceService) ClockOut(ctx context.Context, userID string) (*dto.SessionResponse, error) {
	now := time.Now()
	dayStart, dayEnd := dayBounds(now)

	session, err := s.repo.Attendance.GetOpenByUser(ctx, userID, dayStart, dayEnd)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoOpenSession
		}
		s.logger.Error("查询进行中记录失败", zap.Error(err))
		return nil, err
	}

	if err := s.repo.Attendance.SetLogout(ctx, session.SessionID, now, false); err != nil {
		s.logger.Error("写入签退时间失败", zap.Error(err))
		return nil, err
	}
	session.LogoutTime = &now

	s.logger.Info("签退成功",
		zap.String("user_id", userID),
		zap.String("session_id", session.SessionID))

	resp := s.toSessionResponse(session)
	return &resp, nil
}

func (s *attendanceService) GetStatus(ctx context.Context, userID string) (*dto.ClockStatusResponse, error) {
	dayStart, dayEnd := dayBounds(time.Now())

	session, err := s.repo.Attendance.GetOpenByUser(ctx, userID, dayStart, dayEnd)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &dto.ClockStatusResponse{ClockedIn: false}, nil
		}
		return nil, err
	}

	resp := s.toSessionResponse(session)
	return &dto.ClockStatusResponse{ClockedIn: true, Session: &resp}, nil
}

func (s *attendanceService) GetMyRecords(ctx context.Context, userID string) (*dto.MyAttendanceResponse, error) {
	now := time.Now()
	retention := s.cfg.Attendance.RetentionDays

	// 多取一天，保留期边界由引擎裁决
	since := now.AddDate(0, 0, -(retention + 1))
	raw, err := s.repo.Attendance.ListByUser(ctx, userID, since)
	if err != nil {
		s.logger.Error("查询考勤记录失败", zap.Error(err))
		return nil, err
	}

	result := engine.Normalize(raw, now, retention)

	// 补签退修正写回存储，失败不阻断展示
	for i := range result.Corrections {
		c := &result.Corrections[i]
		if c.LogoutTime == nil {
			continue
		}
		if err := s.repo.Attendance.SetLogout(ctx, c.SessionID, *c.LogoutTime, true); err != nil {
			s.logger.Warn("补签退写回失败",
				zap.String("session_id", c.SessionID),
				zap.Error(err))
		}
	}

	resp := &dto.MyAttendanceResponse{
		Sessions:        make([]dto.SessionResponse, 0, len(result.Sessions)),
		ActiveSessionID: result.ActiveSessionIDs[userID],
	}
	for i := range result.Sessions {
		resp.Sessions = append(resp.Sessions, s.toSessionResponse(&result.Sessions[i]))
	}
	for _, a := range result.Anomalies {
		resp.Anomalies = append(resp.Anomalies, dto.AnomalyResponse{
			Kind:      string(a.Kind),
			SessionID: a.SessionID,
			Message:   a.Message,
		})
	}
	return resp, nil
}

func (s *attendanceService) List(ctx context.Context, req *dto.AttendanceListRequest) ([]dto.SessionResponse, int64, error) {
	filter := repository.AttendanceFilter{
		UserID:       req.UserID,
		DepartmentID: req.DepartmentID,
		Offset:       req.GetOffset(),
		Limit:        req.GetPageSize(),
	}
	if req.From != "" {
		t, err := time.Parse(time.RFC3339, req.From)
		if err != nil {
			return nil, 0, ErrInvalidTimeRange
		}
		filter.From = t
	}
	if req.To != "" {
		t, err := time.Parse(time.RFC3339, req.To)
		if err != nil {
			return nil, 0, ErrInvalidTimeRange
		}
		filter.To = t
	}

	sessions, total, err := s.repo.Attendance.List(ctx, filter)
	if err != nil {
		s.logger.Error("查询考勤列表失败", zap.Error(err))
		return nil, 0, err
	}

	resp := make([]dto.SessionResponse, 0, len(sessions))
	for i := range sessions {
		resp = append(resp, s.toSessionResponse(&sessions[i]))
	}
	return resp, total, nil
}

func (s *attendanceService) UpdateSession(ctx context.Context, id string, req *dto.UpdateSessionRequest) (*dto.SessionResponse, error) {
	session, err := s.repo.Attendance.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}

	if req.LoginTime != nil {
		t, err := time.Parse(time.RFC3339, *req.LoginTime)
		if err != nil {
			return nil, ErrInvalidTimeRange
		}
		session.LoginTime = t
	}
	if req.LogoutTime != nil {
		t, err := time.Parse(time.RFC3339, *req.LogoutTime)
		if err != nil {
			return nil, ErrInvalidTimeRange
		}
		session.LogoutTime = &t
	}

	// 管理员修正不得引入时序颠倒
	if session.LogoutTime != nil && session.LogoutTime.Before(session.LoginTime) {
		return nil, ErrInvalidTimeRange
	}

	if err := s.repo.Attendance.Update(ctx, session); err != nil {
		s.logger.Error("更新考勤记录失败", zap.Error(err))
		return nil, err
	}

	resp := s.toSessionResponse(session)
	return &resp, nil
}

func (s *attendanceService) DeleteSession(ctx context.Context, id string) error {
	if _, err := s.repo.Attendance.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSessionNotFound
		}
		return err
	}
	if err := s.repo.Attendance.Delete(ctx, id); err != nil {
		s.logger.Error("删除考勤记录失败", zap.Error(err))
		return err
	}
	return nil
}

func (s *attendanceService) ComplianceReport(ctx context.Context, userID string) (*dto.ComplianceReportResponse, error) {
	now := time.Now()
	windowStart := now.AddDate(0, 0, -s.cfg.Attendance.ComplianceWindowDays)

	filter := repository.AttendanceFilter{
		UserID: userID,
		From:   windowStart,
		Limit:  10000, // 窗口内全量
	}
	sessions, _, err := s.repo.Attendance.List(ctx, filter)
	if err != nil {
		s.logger.Error("查询合规窗口记录失败", zap.Error(err))
		return nil, err
	}

	// 按用户分组后逐个评估
	byUser := make(map[string][]model.AttendanceSession)
	names := make(map[string]string)
	for i := range sessions {
		sess := sessions[i]
		byUser[sess.UserID] = append(byUser[sess.UserID], sess)
		if sess.User != nil {
			names[sess.UserID] = sess.User.Name
		}
	}

	report := &dto.ComplianceReportResponse{
		Warnings: make([]dto.ComplianceWarningResponse, 0),
	}
	for uid, userSessions := range byUser {
		warnings := engine.Evaluate(userSessions, now, s.officeHours(), s.policy())
		for _, w := range warnings {
			report.Warnings = append(report.Warnings, dto.ComplianceWarningResponse{
				SubjectID:   w.SubjectID,
				SubjectName: names[uid],
				Kind:        string(w.Kind),
				Message:     w.Message,
				WindowStart: w.WindowStart.Format(time.RFC3339),
				WindowEnd:   w.WindowEnd.Format(time.RFC3339),
			})
		}
	}
	return report, nil
}

// ── 辅助函数 ──

// dayBounds 返回 t 所在日的 [0点, 次日0点)
func dayBounds(t time.Time) (time.Time, time.Time) {
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return start, start.AddDate(0, 0, 1)
}

// toSessionResponse 构造带状态标签的响应
func (s *attendanceService) toSessionResponse(session *model.AttendanceSession) dto.SessionResponse {
	cls := engine.Classify(*session, s.officeHours())

	resp := dto.SessionResponse{
		ID:              session.SessionID,
		UserID:          session.UserID,
		LoginTime:       session.LoginTime.Format(time.RFC3339),
		AutoClosed:      session.AutoClosed,
		Tags:            make([]string, 0, len(cls.Tags)),
		TagLabels:       make([]string, 0, len(cls.Tags)),
		InvalidOrdering: cls.InvalidOrdering,
	}
	if session.LogoutTime != nil {
		resp.LogoutTime = session.LogoutTime.Format(time.RFC3339)
	}
	if session.User != nil {
		resp.UserName = session.User.Name
		resp.EmployeeNo = session.User.EmployeeNo
		if session.User.Department != nil {
			resp.DepartmentName = session.User.Department.Name
		}
	}
	for _, tag := range cls.Tags {
		resp.Tags = append(resp.Tags, string(tag))
		resp.TagLabels = append(resp.TagLabels, tag.Label())
	}
	return resp
}
