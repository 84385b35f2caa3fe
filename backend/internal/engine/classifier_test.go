package engine

import (
	"testing"
	"time"

	"timecard/backend/internal/model"
)

// ── 测试辅助 ──

func at(hour, min int) time.Time {
	return time.Date(2024, 6, 3, hour, min, 0, 0, time.Local)
}

func session(login time.Time, logout *time.Time) model.AttendanceSession {
	return model.AttendanceSession{
		SessionID:  "s-1",
		UserID:     "u-1",
		LoginTime:  login,
		LogoutTime: logout,
	}
}

func ptr(t time.Time) *time.Time { return &t }

// ── 入场侧判定 ──

func TestClassify_EntryBoundaries(t *testing.T) {
	cfg := DefaultOfficeHours()

	tests := []struct {
		name  string
		login time.Time
		want  StatusTag
	}{
		{"0929 早到", at(9, 29), TagEarlyEntry},
		{"0700 早到", at(7, 0), TagEarlyEntry},
		{"0930 边界正常", at(9, 30), TagGoodEntry},
		{"0945 正常", at(9, 45), TagGoodEntry},
		{"1000 边界正常", at(10, 0), TagGoodEntry},
		{"1001 迟到", at(10, 1), TagLate},
		{"1230 迟到", at(12, 30), TagLate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cls := Classify(session(tt.login, nil), cfg)
			if len(cls.Tags) != 1 {
				t.Fatalf("未签退记录应只有一个入场标签，实际 %v", cls.Tags)
			}
			if cls.Tags[0] != tt.want {
				t.Errorf("期望 %s，实际 %s", tt.want, cls.Tags[0])
			}
		})
	}
}

func TestClassify_EntryGracePeriod(t *testing.T) {
	cfg := DefaultOfficeHours()
	cfg.GracePeriodMinutes = 15

	// 宽限内 10:10 为正常签到，宽限外 10:16 为迟到
	if cls := Classify(session(at(10, 10), nil), cfg); !cls.HasTag(TagGoodEntry) {
		t.Errorf("宽限期内应为正常签到，实际 %v", cls.Tags)
	}
	if cls := Classify(session(at(10, 15), nil), cfg); !cls.HasTag(TagGoodEntry) {
		t.Errorf("宽限期边界（含）应为正常签到，实际 %v", cls.Tags)
	}
	if cls := Classify(session(at(10, 16), nil), cfg); !cls.HasTag(TagLate) {
		t.Errorf("超出宽限期应为迟到，实际 %v", cls.Tags)
	}
}

// ── 离场侧判定 ──

func TestClassify_ExitBoundaries(t *testing.T) {
	cfg := DefaultOfficeHours()
	login := at(9, 45)

	tests := []struct {
		name   string
		logout time.Time
		want   StatusTag
	}{
		{"1859 早退", at(18, 59), TagEarlyLeave},
		{"1900 边界正常", at(19, 0), TagGoodExit},
		{"1915 宽限内正常", at(19, 15), TagGoodExit},
		{"1930 边界正常", at(19, 30), TagGoodExit},
		{"1931 加班", at(19, 31), TagOvertime},
		{"2200 加班", at(22, 0), TagOvertime},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cls := Classify(session(login, ptr(tt.logout)), cfg)
			if len(cls.Tags) != 2 {
				t.Fatalf("已签退记录应有入场+离场两个标签，实际 %v", cls.Tags)
			}
			if cls.Tags[1] != tt.want {
				t.Errorf("期望 %s，实际 %s", tt.want, cls.Tags[1])
			}
		})
	}
}

// 场景：10:00-19:00 工作制、上下班宽限均为 0，09:45 签到 19:15 签退
// → 正常签到 + 加班
func TestClassify_Scenario_ZeroGrace(t *testing.T) {
	cfg := OfficeHoursConfig{
		StartHour:             10,
		EndHour:               19,
		GracePeriodMinutes:    0,
		EarlyEntryLeadMinutes: 30,
		ExitGraceMinutes:      0,
	}

	cls := Classify(session(at(9, 45), ptr(at(19, 15))), cfg)
	if !cls.HasTag(TagGoodEntry) || !cls.HasTag(TagOvertime) {
		t.Errorf("期望 [GoodEntry, Overtime]，实际 %v", cls.Tags)
	}
}

// 场景：10:05 签到 18:50 签退 → 迟到 + 早退
func TestClassify_Scenario_LateAndEarlyLeave(t *testing.T) {
	cls := Classify(session(at(10, 5), ptr(at(18, 50))), DefaultOfficeHours())
	if !cls.HasTag(TagLate) || !cls.HasTag(TagEarlyLeave) {
		t.Errorf("期望 [Late, EarlyLeave]，实际 %v", cls.Tags)
	}
}

// 场景：签退早于签到 → 仅入场标签 + 顺序异常标记，不计算时长
func TestClassify_Scenario_InvalidOrdering(t *testing.T) {
	login := time.Date(2024, 1, 10, 10, 0, 0, 0, time.UTC)
	logout := time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)

	cls := Classify(session(login, &logout), DefaultOfficeHours())
	if !cls.InvalidOrdering {
		t.Error("应标记 InvalidOrdering")
	}
	if len(cls.Tags) != 1 || cls.Tags[0] != TagGoodEntry {
		t.Errorf("期望仅保留入场标签 [GoodEntry]，实际 %v", cls.Tags)
	}
}

// ── 无效签到时间 ──

func TestClassify_ZeroLoginTime(t *testing.T) {
	cls := Classify(model.AttendanceSession{SessionID: "s-x", UserID: "u-1"}, DefaultOfficeHours())
	if len(cls.Tags) != 1 || cls.Tags[0] != TagInvalidTime {
		t.Errorf("签到时间缺失应返回恰好 [InvalidTime]，实际 %v", cls.Tags)
	}
	if cls.InvalidOrdering {
		t.Error("签到时间缺失不应标记 InvalidOrdering")
	}
}

// 性质：有效签到时间的判定结果永不为空，且仅当签到无效时返回 [InvalidTime]
func TestClassify_Totality(t *testing.T) {
	cfg := DefaultOfficeHours()
	for hour := 0; hour < 24; hour++ {
		for _, min := range []int{0, 29, 30, 31, 59} {
			cls := Classify(session(at(hour, min), nil), cfg)
			if len(cls.Tags) == 0 {
				t.Fatalf("%02d:%02d 判定结果不应为空", hour, min)
			}
			if cls.HasTag(TagInvalidTime) {
				t.Fatalf("%02d:%02d 有效时间不应返回 InvalidTime", hour, min)
			}
		}
	}
}

// 性质：迟到判定对签到时间单调——越过阈值后更晚签到必然仍是迟到
func TestClassify_LatenessMonotonic(t *testing.T) {
	cfg := DefaultOfficeHours()

	var lateSeen bool
	for min := 0; min < 14*60; min++ {
		login := at(0, 0).Add(time.Duration(min) * time.Minute)
		cls := Classify(session(login, nil), cfg)
		isLate := cls.HasTag(TagLate)
		if lateSeen && !isLate {
			t.Fatalf("%v 之后迟到判定出现回退", login)
		}
		if isLate {
			lateSeen = true
		}
	}
	if !lateSeen {
		t.Fatal("扫描范围内应出现迟到判定")
	}
}

func TestStatusTag_Label(t *testing.T) {
	if TagLate.Label() != "迟到" {
		t.Errorf("期望 迟到，实际 %s", TagLate.Label())
	}
	if TagInvalidTime.Label() != "时间无效" {
		t.Errorf("期望 时间无效，实际 %s", TagInvalidTime.Label())
	}
}
