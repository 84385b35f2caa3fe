package engine

import (
	"testing"
	"time"

	"timecard/backend/internal/model"
)

// 在 asOf 前第 daysAgo 天生成一条已签退记录
func sessionDaysAgo(id string, asOf time.Time, daysAgo, loginHour, loginMin, logoutHour, logoutMin int) model.AttendanceSession {
	day := asOf.AddDate(0, 0, -daysAgo)
	login := time.Date(day.Year(), day.Month(), day.Day(), loginHour, loginMin, 0, 0, asOf.Location())
	logout := time.Date(day.Year(), day.Month(), day.Day(), logoutHour, logoutMin, 0, 0, asOf.Location())
	return closedSession(id, "u-1", login, logout)
}

func hasWarning(warnings []ComplianceWarning, kind WarningKind) bool {
	for _, w := range warnings {
		if w.Kind == kind {
			return true
		}
	}
	return false
}

// 场景：7 天内迟到 3 次且无早退 → 恰好一条频繁迟到告警
func TestEvaluate_ExcessiveLateness(t *testing.T) {
	asOf := time.Date(2024, 6, 7, 20, 0, 0, 0, time.Local)
	sessions := []model.AttendanceSession{
		sessionDaysAgo("s-1", asOf, 1, 10, 20, 19, 10), // 迟到
		sessionDaysAgo("s-2", asOf, 2, 10, 5, 19, 5),   // 迟到
		sessionDaysAgo("s-3", asOf, 3, 11, 0, 19, 0),   // 迟到
		sessionDaysAgo("s-4", asOf, 4, 9, 45, 19, 10),  // 正常
	}

	warnings := Evaluate(sessions, asOf, DefaultOfficeHours(), DefaultCompliancePolicy())

	if !hasWarning(warnings, WarningExcessiveLateness) {
		t.Fatal("应产生频繁迟到告警")
	}
	if hasWarning(warnings, WarningExcessiveEarlyLeave) {
		t.Error("无早退不应产生早退告警")
	}
	if hasWarning(warnings, WarningUnclosedSession) {
		t.Error("无未签退不应产生未签退告警")
	}
	if len(warnings) != 1 {
		t.Errorf("期望恰好 1 条告警，实际 %d", len(warnings))
	}

	w := warnings[0]
	if w.SubjectID != "u-1" {
		t.Errorf("期望 SubjectID=u-1，实际 %s", w.SubjectID)
	}
	if !w.WindowEnd.Equal(asOf) {
		t.Errorf("告警窗口终点应为 asOf，实际 %v", w.WindowEnd)
	}
}

func TestEvaluate_BelowThreshold(t *testing.T) {
	asOf := time.Date(2024, 6, 7, 20, 0, 0, 0, time.Local)
	sessions := []model.AttendanceSession{
		sessionDaysAgo("s-1", asOf, 1, 10, 20, 19, 10), // 迟到
		sessionDaysAgo("s-2", asOf, 2, 10, 5, 19, 5),   // 迟到
	}

	warnings := Evaluate(sessions, asOf, DefaultOfficeHours(), DefaultCompliancePolicy())
	if len(warnings) != 0 {
		t.Errorf("未达阈值不应产生告警，实际 %v", warnings)
	}
}

// 窗口外的迟到不计入
func TestEvaluate_WindowExcludesOldSessions(t *testing.T) {
	asOf := time.Date(2024, 6, 30, 20, 0, 0, 0, time.Local)
	sessions := []model.AttendanceSession{
		sessionDaysAgo("s-1", asOf, 1, 10, 20, 19, 10),  // 窗口内迟到
		sessionDaysAgo("s-2", asOf, 2, 10, 5, 19, 5),    // 窗口内迟到
		sessionDaysAgo("s-3", asOf, 10, 11, 0, 19, 0),   // 窗口外迟到
		sessionDaysAgo("s-4", asOf, 15, 10, 30, 19, 10), // 窗口外迟到
	}

	warnings := Evaluate(sessions, asOf, DefaultOfficeHours(), DefaultCompliancePolicy())
	if hasWarning(warnings, WarningExcessiveLateness) {
		t.Error("窗口内仅 2 次迟到，不应产生告警")
	}
}

func TestEvaluate_ExcessiveEarlyLeave(t *testing.T) {
	asOf := time.Date(2024, 6, 7, 20, 0, 0, 0, time.Local)
	sessions := []model.AttendanceSession{
		sessionDaysAgo("s-1", asOf, 1, 9, 45, 17, 0), // 早退
		sessionDaysAgo("s-2", asOf, 2, 9, 45, 18, 0), // 早退
		sessionDaysAgo("s-3", asOf, 3, 9, 45, 16, 30), // 早退
	}

	warnings := Evaluate(sessions, asOf, DefaultOfficeHours(), DefaultCompliancePolicy())
	if !hasWarning(warnings, WarningExcessiveEarlyLeave) {
		t.Fatal("应产生频繁早退告警")
	}
	if hasWarning(warnings, WarningExcessiveLateness) {
		t.Error("不应产生迟到告警")
	}
}

// 往日未签退是独立信号，即使输入未经规整也成立
func TestEvaluate_UnclosedSessions(t *testing.T) {
	asOf := time.Date(2024, 6, 7, 20, 0, 0, 0, time.Local)
	stale1 := openSession("s-1", "u-1", time.Date(2024, 6, 5, 9, 0, 0, 0, time.Local))
	stale2 := openSession("s-2", "u-1", time.Date(2024, 6, 3, 9, 0, 0, 0, time.Local))
	today := openSession("s-3", "u-1", time.Date(2024, 6, 7, 9, 45, 0, 0, time.Local))

	warnings := Evaluate([]model.AttendanceSession{stale1, stale2, today}, asOf, DefaultOfficeHours(), DefaultCompliancePolicy())

	if !hasWarning(warnings, WarningUnclosedSession) {
		t.Fatal("应产生未签退告警")
	}
	for _, w := range warnings {
		if w.Kind == WarningUnclosedSession && w.Message == "" {
			t.Error("告警文案不应为空")
		}
	}
}

// 当天进行中的记录不算往日未签退
func TestEvaluate_TodayOpenSessionNotUnclosed(t *testing.T) {
	asOf := time.Date(2024, 6, 7, 12, 0, 0, 0, time.Local)
	today := openSession("s-1", "u-1", time.Date(2024, 6, 7, 9, 45, 0, 0, time.Local))

	warnings := Evaluate([]model.AttendanceSession{today}, asOf, DefaultOfficeHours(), DefaultCompliancePolicy())
	if hasWarning(warnings, WarningUnclosedSession) {
		t.Error("当天进行中记录不应触发未签退告警")
	}
}

// 多个条件同时命中时各产生一条独立告警
func TestEvaluate_MultipleKinds(t *testing.T) {
	asOf := time.Date(2024, 6, 10, 20, 0, 0, 0, time.Local)
	sessions := []model.AttendanceSession{
		sessionDaysAgo("s-1", asOf, 1, 10, 20, 17, 0), // 迟到 + 早退
		sessionDaysAgo("s-2", asOf, 2, 10, 5, 18, 0),  // 迟到 + 早退
		sessionDaysAgo("s-3", asOf, 3, 11, 0, 16, 0),  // 迟到 + 早退
		openSession("s-4", "u-1", time.Date(2024, 6, 5, 9, 0, 0, 0, time.Local)), // 往日未签退
	}

	warnings := Evaluate(sessions, asOf, DefaultOfficeHours(), DefaultCompliancePolicy())

	for _, kind := range []WarningKind{WarningUnclosedSession, WarningExcessiveLateness, WarningExcessiveEarlyLeave} {
		if !hasWarning(warnings, kind) {
			t.Errorf("缺少告警类型 %s", kind)
		}
	}
}

func TestEvaluate_EmptyInput(t *testing.T) {
	if warnings := Evaluate(nil, time.Now(), DefaultOfficeHours(), DefaultCompliancePolicy()); warnings != nil {
		t.Errorf("空输入应返回 nil，实际 %v", warnings)
	}
}
