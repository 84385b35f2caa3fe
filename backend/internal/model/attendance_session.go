package model

import "time"

// AttendanceSession 考勤记录表 — 对应 attendance_sessions
// LogoutTime 为 NULL 表示该次考勤仍在进行中（未签退）
type AttendanceSession struct {
	SessionID  string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"session_id"`
	UserID     string     `gorm:"type:uuid;not null;index"                       json:"user_id"`
	LoginTime  time.Time  `gorm:"not null"                                       json:"login_time"`
	LogoutTime *time.Time `json:"logout_time,omitempty"`
	AutoClosed bool       `gorm:"not null;default:false"                         json:"auto_closed"` // 系统补签退标记
	BaseModel

	// 关联
	User *User `gorm:"foreignKey:UserID;references:UserID" json:"user,omitempty"`
}

// TableName 指定表名
func (AttendanceSession) TableName() string { return "attendance_sessions" }

// IsOpen 是否未签退
func (s *AttendanceSession) IsOpen() bool { return s.LogoutTime == nil }
