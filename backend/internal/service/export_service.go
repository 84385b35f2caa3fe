package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"timecard/backend/config"
	"timecard/backend/internal/dto"
	"timecard/backend/internal/engine"
	"timecard/backend/internal/model"
	"timecard/backend/internal/repository"
)

// ── 导出模块业务错误 ──

var ErrExportNoData = errors.New("筛选条件下没有可导出的记录")

// 单次导出记录数上限
const exportMaxRows = 50000

// ExportService 考勤记录导出业务接口
type ExportService interface {
	// ExportExcel 导出 xlsx 报表
	ExportExcel(ctx context.Context, req *dto.ExportRequest) (*bytes.Buffer, string, error)
	// ExportCSV 导出 UTF-8 BOM 编码 CSV（Excel 中文兼容）
	ExportCSV(ctx context.Context, req *dto.ExportRequest) (*bytes.Buffer, string, error)
	// ExportCalendar 导出 iCalendar 日历（每条记录一个事件）
	ExportCalendar(ctx context.Context, req *dto.ExportRequest) (*bytes.Buffer, string, error)
}

type exportService struct {
	cfg    *config.Config
	repo   *repository.Repository
	logger *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(cfg *config.Config, repo *repository.Repository, logger *zap.Logger) ExportService {
	return &exportService{cfg: cfg, repo: repo, logger: logger}
}

// fetch 按筛选条件查询待导出记录
func (s *exportService) fetch(ctx context.Context, req *dto.ExportRequest) ([]model.AttendanceSession, error) {
	filter := repository.AttendanceFilter{
		UserID:       req.UserID,
		DepartmentID: req.DepartmentID,
		Limit:        exportMaxRows,
	}
	if req.From != "" {
		t, err := time.Parse(time.RFC3339, req.From)
		if err != nil {
			return nil, ErrInvalidTimeRange
		}
		filter.From = t
	}
	if req.To != "" {
		t, err := time.Parse(time.RFC3339, req.To)
		if err != nil {
			return nil, ErrInvalidTimeRange
		}
		filter.To = t
	}

	sessions, _, err := s.repo.Attendance.List(ctx, filter)
	if err != nil {
		s.logger.Error("查询导出记录失败", zap.Error(err))
		return nil, err
	}
	if len(sessions) == 0 {
		return nil, ErrExportNoData
	}
	return sessions, nil
}

func (s *exportService) officeHours() engine.OfficeHoursConfig {
	a := s.cfg.Attendance
	return engine.OfficeHoursConfig{
		StartHour:             a.StartHour,
		EndHour:               a.EndHour,
		GracePeriodMinutes:    a.GracePeriodMinutes,
		EarlyEntryLeadMinutes: a.EarlyEntryLeadMinutes,
		ExitGraceMinutes:      a.ExitGraceMinutes,
	}
}

// exportHeaders 报表列头（Excel 与 CSV 共用）
var exportHeaders = []string{"姓名", "工号", "部门", "签到时间", "签退时间", "状态", "系统补签退"}

// row 单条记录的展示行
func (s *exportService) row(session *model.AttendanceSession) []string {
	cls := engine.Classify(*session, s.officeHours())

	labels := make([]string, 0, len(cls.Tags))
	for _, tag := range cls.Tags {
		labels = append(labels, tag.Label())
	}

	var name, employeeNo, deptName string
	if session.User != nil {
		name = session.User.Name
		employeeNo = session.User.EmployeeNo
		if session.User.Department != nil {
			deptName = session.User.Department.Name
		}
	}

	logout := ""
	if session.LogoutTime != nil {
		logout = session.LogoutTime.Format("2006-01-02 15:04:05")
	}

	autoClosed := "否"
	if session.AutoClosed {
		autoClosed = "是"
	}

	return []string{
		name,
		employeeNo,
		deptName,
		session.LoginTime.Format("2006-01-02 15:04:05"),
		logout,
		strings.Join(labels, " / "),
		autoClosed,
	}
}

func (s *exportService) ExportExcel(ctx context.Context, req *dto.ExportRequest) (*bytes.Buffer, string, error) {
	sessions, err := s.fetch(ctx, req)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			s.logger.Warn("关闭 Excel 文件失败", zap.Error(err))
		}
	}()

	const sheet = "考勤记录"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, "", err
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, "", err
	}

	// 表头加粗
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	if err != nil {
		return nil, "", err
	}

	for col, h := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return nil, "", err
		}
		if err := f.SetCellStyle(sheet, cell, cell, headerStyle); err != nil {
			return nil, "", err
		}
	}

	for i := range sessions {
		values := s.row(&sessions[i])
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, i+2)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return nil, "", err
			}
		}
	}

	if err := f.SetColWidth(sheet, "A", "G", 20); err != nil {
		return nil, "", err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		s.logger.Error("写出 Excel 失败", zap.Error(err))
		return nil, "", err
	}

	filename := fmt.Sprintf("attendance_%s.xlsx", time.Now().Format("20060102_150405"))
	return buf, filename, nil
}

func (s *exportService) ExportCSV(ctx context.Context, req *dto.ExportRequest) (*bytes.Buffer, string, error) {
	sessions, err := s.fetch(ctx, req)
	if err != nil {
		return nil, "", err
	}

	var buf bytes.Buffer
	// UTF-8 BOM，避免 Excel 打开中文乱码
	buf.Write([]byte{0xEF, 0xBB, 0xBF})

	w := csv.NewWriter(&buf)
	if err := w.Write(exportHeaders); err != nil {
		return nil, "", err
	}
	for i := range sessions {
		if err := w.Write(s.row(&sessions[i])); err != nil {
			return nil, "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		s.logger.Error("写出 CSV 失败", zap.Error(err))
		return nil, "", err
	}

	filename := fmt.Sprintf("attendance_%s.csv", time.Now().Format("20060102_150405"))
	return &buf, filename, nil
}

func (s *exportService) ExportCalendar(ctx context.Context, req *dto.ExportRequest) (*bytes.Buffer, string, error) {
	sessions, err := s.fetch(ctx, req)
	if err != nil {
		return nil, "", err
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//timecard//attendance//CN")

	for i := range sessions {
		session := &sessions[i]
		cls := engine.Classify(*session, s.officeHours())

		labels := make([]string, 0, len(cls.Tags))
		for _, tag := range cls.Tags {
			labels = append(labels, tag.Label())
		}

		summary := "考勤"
		if session.User != nil {
			summary = fmt.Sprintf("考勤 - %s", session.User.Name)
		}

		event := cal.AddEvent(session.SessionID)
		event.SetCreatedTime(session.CreatedAt)
		event.SetDtStampTime(session.CreatedAt)
		event.SetStartAt(session.LoginTime)
		if session.LogoutTime != nil {
			event.SetEndAt(*session.LogoutTime)
		} else {
			// 进行中记录按签到时刻的零时长事件导出
			event.SetEndAt(session.LoginTime)
		}
		event.SetSummary(summary)
		event.SetDescription(strings.Join(labels, " / "))
	}

	var buf bytes.Buffer
	if err := cal.SerializeTo(&buf); err != nil {
		s.logger.Error("写出日历失败", zap.Error(err))
		return nil, "", err
	}

	filename := fmt.Sprintf("attendance_%s.ics", time.Now().Format("20060102_150405"))
	return &buf, filename, nil
}
