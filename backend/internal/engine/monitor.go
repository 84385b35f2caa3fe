package engine

import (
	"fmt"
	"time"

	"timecard/backend/internal/model"
)

// ── 合规检查 ──

// WarningKind 合规告警类型
type WarningKind string

const (
	WarningUnclosedSession     WarningKind = "unclosed_session"      // 往日未签退
	WarningExcessiveLateness   WarningKind = "excessive_lateness"    // 频繁迟到
	WarningExcessiveEarlyLeave WarningKind = "excessive_early_leave" // 频繁早退
)

// ComplianceWarning 聚合告警
// 即算即用，不持久化
type ComplianceWarning struct {
	SubjectID   string      `json:"subject_id"`
	Kind        WarningKind `json:"kind"`
	Message     string      `json:"message"`
	WindowStart time.Time   `json:"window_start"`
	WindowEnd   time.Time   `json:"window_end"`
}

// CompliancePolicy 合规检查参数
type CompliancePolicy struct {
	WindowDays          int // 滑动窗口（天）
	LateThreshold       int // 窗口内迟到告警阈值
	EarlyLeaveThreshold int // 窗口内早退告警阈值
}

// DefaultCompliancePolicy 默认：7 天窗口，迟到/早退各 3 次触发
func DefaultCompliancePolicy() CompliancePolicy {
	return CompliancePolicy{WindowDays: 7, LateThreshold: 3, EarlyLeaveThreshold: 3}
}

// Evaluate 对单个用户的考勤记录做合规检查
//
// 独立信号（即使输入未经 Normalize 也成立）：
//   - 往日未签退：签到日早于 asOf 所在日且未签退的记录
//   - 窗口内迟到 / 早退次数达到阈值
//
// 每个命中条件产生一条独立告警，次数写入告警文案。
// 纯函数：结果只取决于输入与 asOf。
func Evaluate(subjectSessions []model.AttendanceSession, asOf time.Time, cfg OfficeHoursConfig, policy CompliancePolicy) []ComplianceWarning {
	if len(subjectSessions) == 0 {
		return nil
	}

	loc := asOf.Location()
	asOfDay := dayOf(asOf, loc)
	windowStart := asOf.AddDate(0, 0, -policy.WindowDays)

	subjectID := subjectSessions[0].UserID

	var unclosed, lateCount, earlyLeaveCount int
	for _, s := range subjectSessions {
		if s.LoginTime.IsZero() {
			continue
		}

		if s.LogoutTime == nil && dayOf(s.LoginTime, loc).Before(asOfDay) {
			unclosed++
		}

		// 滑动窗口：(asOf - WindowDays, asOf]
		if !s.LoginTime.After(windowStart) || s.LoginTime.After(asOf) {
			continue
		}
		cls := Classify(s, cfg)
		if cls.HasTag(TagLate) {
			lateCount++
		}
		if cls.HasTag(TagEarlyLeave) {
			earlyLeaveCount++
		}
	}

	var warnings []ComplianceWarning
	appendWarning := func(kind WarningKind, message string) {
		warnings = append(warnings, ComplianceWarning{
			SubjectID:   subjectID,
			Kind:        kind,
			Message:     message,
			WindowStart: windowStart,
			WindowEnd:   asOf,
		})
	}

	if unclosed > 0 {
		appendWarning(WarningUnclosedSession,
			fmt.Sprintf("存在 %d 条往日未签退的考勤记录", unclosed))
	}
	if lateCount >= policy.LateThreshold {
		appendWarning(WarningExcessiveLateness,
			fmt.Sprintf("近 %d 天迟到 %d 次，已达告警阈值 %d 次", policy.WindowDays, lateCount, policy.LateThreshold))
	}
	if earlyLeaveCount >= policy.EarlyLeaveThreshold {
		appendWarning(WarningExcessiveEarlyLeave,
			fmt.Sprintf("近 %d 天早退 %d 次，已达告警阈值 %d 次", policy.WindowDays, earlyLeaveCount, policy.EarlyLeaveThreshold))
	}

	return warnings
}
