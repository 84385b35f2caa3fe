package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"timecard/backend/internal/dto"
	"timecard/backend/internal/service"
	"timecard/backend/pkg/response"
)

// AttendanceHandler 考勤接口处理器
type AttendanceHandler struct {
	attendanceSvc service.AttendanceService
}

// NewAttendanceHandler 创建 AttendanceHandler 实例
func NewAttendanceHandler(attendanceSvc service.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{attendanceSvc: attendanceSvc}
}

// ClockIn 签到
// POST /api/v1/attendance/clock-in
func (h *AttendanceHandler) ClockIn(c *gin.Context) {
	session, err := h.attendanceSvc.ClockIn(c.Request.Context(), MustGetUserID(c))
	switch {
	case err == nil:
		response.Created(c, session)
	case errors.Is(err, service.ErrAlreadyClockedIn):
		response.Error(c, http.StatusConflict, CodeAlreadyClockedIn, err.Error())
	default:
		response.InternalError(c)
	}
}

// ClockOut 签退
// POST /api/v1/attendance/clock-out
func (h *AttendanceHandler) ClockOut(c *gin.Context) {
	session, err := h.attendanceSvc.ClockOut(c.Request.Context(), MustGetUserID(c))
	switch {
	case err == nil:
		response.OK(c, session)
	case errors.Is(err, service.ErrNoOpenSession):
		response.Error(c, http.StatusConflict, CodeNoOpenSession, err.Error())
	default:
		response.InternalError(c)
	}
}

// Status 当前打卡状态
// GET /api/v1/attendance/status
func (h *AttendanceHandler) Status(c *gin.Context) {
	status, err := h.attendanceSvc.GetStatus(c.Request.Context(), MustGetUserID(c))
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, status)
}

// MyRecords 我的考勤记录
// GET /api/v1/attendance/me
func (h *AttendanceHandler) MyRecords(c *gin.Context) {
	records, err := h.attendanceSvc.GetMyRecords(c.Request.Context(), MustGetUserID(c))
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, records)
}

// List 管理端考勤审计
// GET /api/v1/attendance
func (h *AttendanceHandler) List(c *gin.Context) {
	var req dto.AttendanceListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, CodeInvalidParams, "请求参数错误")
		return
	}

	sessions, total, err := h.attendanceSvc.List(c.Request.Context(), &req)
	switch {
	case err == nil:
		response.OKPage(c, sessions, total, req.GetPage(), req.GetPageSize())
	case errors.Is(err, service.ErrInvalidTimeRange):
		response.BadRequest(c, CodeInvalidTimeRange, "时间参数格式错误")
	default:
		response.InternalError(c)
	}
}

// Update 管理端修正考勤记录
// PUT /api/v1/attendance/:id
func (h *AttendanceHandler) Update(c *gin.Context) {
	var req dto.UpdateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, CodeInvalidParams, "请求参数错误")
		return
	}

	session, err := h.attendanceSvc.UpdateSession(c.Request.Context(), c.Param("id"), &req)
	switch {
	case err == nil:
		response.OK(c, session)
	case errors.Is(err, service.ErrSessionNotFound):
		response.NotFound(c, CodeSessionNotFound, err.Error())
	case errors.Is(err, service.ErrInvalidTimeRange):
		response.BadRequest(c, CodeInvalidTimeRange, err.Error())
	default:
		response.InternalError(c)
	}
}

// Delete 管理端删除考勤记录
// DELETE /api/v1/attendance/:id
func (h *AttendanceHandler) Delete(c *gin.Context) {
	err := h.attendanceSvc.DeleteSession(c.Request.Context(), c.Param("id"))
	switch {
	case err == nil:
		response.OK(c, nil)
	case errors.Is(err, service.ErrSessionNotFound):
		response.NotFound(c, CodeSessionNotFound, err.Error())
	default:
		response.InternalError(c)
	}
}

// Compliance 合规检查报告
// GET /api/v1/attendance/compliance
func (h *AttendanceHandler) Compliance(c *gin.Context) {
	report, err := h.attendanceSvc.ComplianceReport(c.Request.Context(), c.Query("user_id"))
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, report)
}
