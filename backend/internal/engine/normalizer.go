package engine

import (
	"fmt"
	"sort"
	"time"

	"timecard/backend/internal/model"
)

// ── 数据异常 ──

// AnomalyKind 规整/判定过程中发现的数据异常类型
type AnomalyKind string

const (
	// AnomalyMultipleOpenSessions 同一用户当天存在多条未签退记录
	AnomalyMultipleOpenSessions AnomalyKind = "multiple_open_sessions"
	// AnomalyInvalidOrdering 签退时间早于签到时间
	AnomalyInvalidOrdering AnomalyKind = "invalid_time_ordering"
)

// Anomaly 结构化异常描述
// 引擎从不因脏数据返回 error，一律以 Anomaly 上报，由调用方决定拦截、告警或记日志
type Anomaly struct {
	Kind      AnomalyKind `json:"kind"`
	SessionID string      `json:"session_id"`
	SubjectID string      `json:"subject_id"`
	Message   string      `json:"message"`
}

// ── 记录规整 ──

// NormalizedResult 规整结果
type NormalizedResult struct {
	// Sessions 规整后的记录集，按签到时间降序
	Sessions []model.AttendanceSession
	// ActiveSessionIDs 每个用户当天唯一的进行中记录：user_id → session_id
	ActiveSessionIDs map[string]string
	// Corrections 补签退修正后的记录副本，持久化由调用方负责
	Corrections []model.AttendanceSession
	// Anomalies 发现的数据异常
	Anomalies []Anomaly
}

// Normalize 将原始考勤记录规整为可供判定与展示的规范视图
//
// 规则（依序应用）：
//  1. 补签退：未签退且签到日早于 asOf 所在日的记录，签退时间补为签到当日
//     23:59:59.999（员工忘记签退，当日已确定结束）；当天的进行中记录保持开放
//  2. 活动记录判定：补签退后，按签到时间升序稳定排序，每个用户当天第一条
//     未签退记录视为权威活动记录；其余按零时长补签退并作为数据异常上报，
//     不合并也不丢弃，保证规整后每用户当天至多一条未签退记录
//  3. 保留期过滤：签到时间早于 asOf - retentionDays 的记录被剔除（仅读时过滤，
//     不代表删除）；retentionDays <= 0 时不过滤
//
// 纯函数：不读时钟、不做 I/O。补签退产生的修正通过 Corrections 返回，
// 写回存储是调用方的责任。签退早于签到的记录原样透传，由 Classify 标记。
// 日界计算使用 asOf 所在时区。
func Normalize(raw []model.AttendanceSession, asOf time.Time, retentionDays int) NormalizedResult {
	loc := asOf.Location()
	asOfDay := dayOf(asOf, loc)

	sessions := make([]model.AttendanceSession, len(raw))
	copy(sessions, raw)

	// 输入不保证有序；升序稳定排序保证活动记录判定的确定性
	sort.SliceStable(sessions, func(i, j int) bool {
		return sessions[i].LoginTime.Before(sessions[j].LoginTime)
	})

	result := NormalizedResult{
		ActiveSessionIDs: make(map[string]string),
	}

	// 1. 补签退
	for i := range sessions {
		s := &sessions[i]
		if s.LogoutTime != nil || s.LoginTime.IsZero() {
			continue
		}
		if dayOf(s.LoginTime, loc).Before(asOfDay) {
			closed := endOfDay(s.LoginTime, loc)
			s.LogoutTime = &closed
			s.AutoClosed = true
			result.Corrections = append(result.Corrections, *s)
		}
	}

	// 2. 活动记录判定（逐用户，至多一条）
	for i := range sessions {
		s := &sessions[i]
		if s.LogoutTime != nil || s.LoginTime.IsZero() {
			continue
		}
		if !dayOf(s.LoginTime, loc).Equal(asOfDay) {
			continue
		}
		if _, exists := result.ActiveSessionIDs[s.UserID]; !exists {
			result.ActiveSessionIDs[s.UserID] = s.SessionID
			continue
		}
		// 非权威的多余开放记录：按零时长补签退，保留记录并显式上报，不做合并
		closed := s.LoginTime
		s.LogoutTime = &closed
		s.AutoClosed = true
		result.Corrections = append(result.Corrections, *s)
		result.Anomalies = append(result.Anomalies, Anomaly{
			Kind:      AnomalyMultipleOpenSessions,
			SessionID: s.SessionID,
			SubjectID: s.UserID,
			Message:   fmt.Sprintf("用户 %s 当天存在多条未签退记录，以最早签到为准", s.UserID),
		})
	}

	// 3. 保留期过滤
	if retentionDays > 0 {
		horizon := asOf.AddDate(0, 0, -retentionDays)
		kept := sessions[:0]
		for _, s := range sessions {
			if s.LoginTime.After(horizon) {
				kept = append(kept, s)
			}
		}
		sessions = kept
	}

	// 输出按签到时间降序
	sort.SliceStable(sessions, func(i, j int) bool {
		return sessions[i].LoginTime.After(sessions[j].LoginTime)
	})
	result.Sessions = sessions

	return result
}

// dayOf 取时间戳在 loc 时区的日界（当日零点）
func dayOf(t time.Time, loc *time.Location) time.Time {
	tt := t.In(loc)
	return time.Date(tt.Year(), tt.Month(), tt.Day(), 0, 0, 0, 0, loc)
}

// endOfDay 取时间戳在 loc 时区当日的 23:59:59.999
func endOfDay(t time.Time, loc *time.Location) time.Time {
	tt := t.In(loc)
	return time.Date(tt.Year(), tt.Month(), tt.Day(), 23, 59, 59, 999*int(time.Millisecond), loc)
}
