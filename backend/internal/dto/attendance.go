package dto

// ── 考勤模块 DTO ──

// SessionResponse 单条考勤记录响应
// Tags 为状态标签机器码，TagLabels 为对应展示文案，顺序一一对应
type SessionResponse struct {
	ID              string   `json:"id"`
	UserID          string   `json:"user_id"`
	UserName        string   `json:"user_name,omitempty"`
	EmployeeNo      string   `json:"employee_no,omitempty"`
	DepartmentName  string   `json:"department_name,omitempty"`
	LoginTime       string   `json:"login_time"`
	LogoutTime      string   `json:"logout_time,omitempty"`
	AutoClosed      bool     `json:"auto_closed"`
	Tags            []string `json:"tags"`
	TagLabels       []string `json:"tag_labels"`
	InvalidOrdering bool     `json:"invalid_ordering,omitempty"`
}

// ClockStatusResponse 当前打卡状态响应
type ClockStatusResponse struct {
	ClockedIn bool             `json:"clocked_in"`
	Session   *SessionResponse `json:"session,omitempty"`
}

// MyAttendanceResponse 我的考勤记录响应
type MyAttendanceResponse struct {
	Sessions        []SessionResponse `json:"sessions"`
	ActiveSessionID string            `json:"active_session_id,omitempty"`
	Anomalies       []AnomalyResponse `json:"anomalies,omitempty"`
}

// AnomalyResponse 数据异常响应
type AnomalyResponse struct {
	Kind      string `json:"kind"`
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

// AttendanceListRequest 管理端考勤审计查询参数
type AttendanceListRequest struct {
	PaginationRequest
	UserID       string `form:"user_id"       binding:"omitempty,uuid"`
	DepartmentID string `form:"department_id" binding:"omitempty,uuid"`
	From         string `form:"from"          binding:"omitempty"` // RFC3339
	To           string `form:"to"            binding:"omitempty"` // RFC3339
}

// UpdateSessionRequest 管理端修正考勤记录请求（RFC3339 时间）
type UpdateSessionRequest struct {
	LoginTime  *string `json:"login_time"  binding:"omitempty"`
	LogoutTime *string `json:"logout_time" binding:"omitempty"`
}

// ComplianceWarningResponse 合规告警响应
type ComplianceWarningResponse struct {
	SubjectID   string `json:"subject_id"`
	SubjectName string `json:"subject_name,omitempty"`
	Kind        string `json:"kind"`
	Message     string `json:"message"`
	WindowStart string `json:"window_start"`
	WindowEnd   string `json:"window_end"`
}

// ComplianceReportResponse 合规检查报告
type ComplianceReportResponse struct {
	Warnings []ComplianceWarningResponse `json:"warnings"`
}

// ExportRequest 导出查询参数
type ExportRequest struct {
	UserID       string `form:"user_id"       binding:"omitempty,uuid"`
	DepartmentID string `form:"department_id" binding:"omitempty,uuid"`
	From         string `form:"from"          binding:"omitempty"` // RFC3339
	To           string `form:"to"            binding:"omitempty"` // RFC3339
}
