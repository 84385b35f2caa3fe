// Package engine 实现考勤状态评估引擎：记录规整（Normalize）、状态判定（Classify）
// 与合规检查（Evaluate）。三者均为纯函数——不读时钟、不做 I/O、不持有状态，
// "当前时间" 一律由调用方以 asOf 参数注入。
package engine

import (
	"time"

	"timecard/backend/internal/model"
)

// StatusTag 单条考勤记录的状态标签
type StatusTag string

const (
	TagEarlyEntry  StatusTag = "early_entry"  // 早到
	TagGoodEntry   StatusTag = "good_entry"   // 正常签到
	TagLate        StatusTag = "late"         // 迟到
	TagEarlyLeave  StatusTag = "early_leave"  // 早退
	TagGoodExit    StatusTag = "good_exit"    // 正常签退
	TagOvertime    StatusTag = "overtime"     // 加班
	TagInProgress  StatusTag = "in_progress"  // 进行中
	TagInvalidTime StatusTag = "invalid_time" // 签到时间无效
)

// Label 状态标签的展示文案
func (t StatusTag) Label() string {
	switch t {
	case TagEarlyEntry:
		return "早到"
	case TagGoodEntry:
		return "正常签到"
	case TagLate:
		return "迟到"
	case TagEarlyLeave:
		return "早退"
	case TagGoodExit:
		return "正常签退"
	case TagOvertime:
		return "加班"
	case TagInProgress:
		return "进行中"
	case TagInvalidTime:
		return "时间无效"
	default:
		return string(t)
	}
}

// OfficeHoursConfig 办公时间边界
// 判定过程中不可变，由调用方构造传入；所有边界均为独立可调项，
// 上班侧的早到提前量与宽限期是两个互不推导的参数
type OfficeHoursConfig struct {
	StartHour             int // 上班整点（0-23）
	EndHour               int // 下班整点（0-23）
	GracePeriodMinutes    int // 上班宽限（分钟）
	EarlyEntryLeadMinutes int // 早到判定提前量（分钟）
	ExitGraceMinutes      int // 下班宽限（分钟）
}

// DefaultOfficeHours 默认 10:00-19:00 工作制
// 入场边界 09:30/10:00，离场边界 19:00/19:30
func DefaultOfficeHours() OfficeHoursConfig {
	return OfficeHoursConfig{
		StartHour:             10,
		EndHour:               19,
		GracePeriodMinutes:    0,
		EarlyEntryLeadMinutes: 30,
		ExitGraceMinutes:      30,
	}
}

// Classification 单条记录的判定结果
// Tags 至多两个：一个入场侧标签，一个离场侧标签；
// InvalidOrdering 表示签退时间早于签到时间，此时仅保留入场侧标签，
// 调用方须将其作为数据异常呈现，不得据此计算时长
type Classification struct {
	Tags            []StatusTag `json:"tags"`
	InvalidOrdering bool        `json:"invalid_ordering,omitempty"`
}

// HasTag 判定结果是否包含指定标签
func (c Classification) HasTag(tag StatusTag) bool {
	for _, t := range c.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Classify 对单条考勤记录做状态判定
// 纯函数：结果只取决于 (session, cfg)，不读当前时间
func Classify(s model.AttendanceSession, cfg OfficeHoursConfig) Classification {
	// 签到时间缺失或无效：仅返回 InvalidTime，跳过全部后续判定
	if s.LoginTime.IsZero() {
		return Classification{Tags: []StatusTag{TagInvalidTime}}
	}

	var result Classification

	// ── 入场侧判定（签到时间始终存在，必产生恰好一个标签）──
	loginMin := minuteOfDay(s.LoginTime)
	earlyBoundary := cfg.StartHour*60 - cfg.EarlyEntryLeadMinutes
	graceEnd := cfg.StartHour*60 + cfg.GracePeriodMinutes

	switch {
	case loginMin < earlyBoundary:
		result.Tags = append(result.Tags, TagEarlyEntry)
	case loginMin <= graceEnd:
		result.Tags = append(result.Tags, TagGoodEntry)
	default:
		result.Tags = append(result.Tags, TagLate)
	}

	if s.LogoutTime == nil {
		// 未签退：无离场侧标签
		if len(result.Tags) == 0 {
			result.Tags = []StatusTag{TagInProgress}
		}
		return result
	}

	if s.LogoutTime.Before(s.LoginTime) {
		// 签退早于签到：入场标签独立成立，标记异常，不再做离场判定
		result.InvalidOrdering = true
		return result
	}

	// ── 离场侧判定（签退存在且顺序合法，必产生恰好一个标签）──
	logoutMin := minuteOfDay(*s.LogoutTime)
	exitGraceEnd := cfg.EndHour*60 + cfg.ExitGraceMinutes

	switch {
	case logoutMin < cfg.EndHour*60:
		result.Tags = append(result.Tags, TagEarlyLeave)
	case logoutMin <= exitGraceEnd:
		result.Tags = append(result.Tags, TagGoodExit)
	default:
		result.Tags = append(result.Tags, TagOvertime)
	}

	return result
}

// minuteOfDay 取时间戳在其所在时区当日的分钟序号
func minuteOfDay(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}
