//go:build integration

package repository_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"timecard/backend/internal/model"
	"timecard/backend/internal/repository"
	pkgerrors "timecard/backend/pkg/errors"
)

// ═══════════════════════════════════════════════════════════
// Test Setup
// ═══════════════════════════════════════════════════════════

var testDB *gorm.DB

func TestMain(m *testing.M) {
	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		dsn = "host=localhost port=5433 user=timecard password=timecard_password dbname=timecard_test sslmode=disable TimeZone=Asia/Shanghai"
	}

	var err error
	testDB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "无法连接测试数据库: %v\n", err)
		os.Exit(1)
	}

	// 自动迁移测试表结构
	err = testDB.AutoMigrate(
		&model.Department{},
		&model.User{},
		&model.AttendanceSession{},
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "AutoMigrate 失败: %v\n", err)
		os.Exit(1)
	}

	os.Exit(m.Run())
}

// setupTestData 创建基础测试数据并返回清理函数
func setupTestData(t *testing.T) (dept *model.Department, user *model.User, cleanup func()) {
	t.Helper()
	ctx := context.Background()

	dept = &model.Department{
		Name: fmt.Sprintf("测试部门-%d", time.Now().UnixNano()),
	}
	if err := testDB.WithContext(ctx).Create(dept).Error; err != nil {
		t.Fatalf("创建部门失败: %v", err)
	}

	user = &model.User{
		Name:         "测试员工",
		EmployeeNo:   fmt.Sprintf("E%d", time.Now().UnixNano()),
		Email:        fmt.Sprintf("test%d@corp.com", time.Now().UnixNano()),
		PasswordHash: "$2a$10$placeholder",
		Role:         model.RoleEmployee,
		DepartmentID: dept.DepartmentID,
	}
	if err := testDB.WithContext(ctx).Create(user).Error; err != nil {
		t.Fatalf("创建用户失败: %v", err)
	}

	cleanup = func() {
		testDB.Unscoped().Where("user_id = ?", user.UserID).Delete(&model.AttendanceSession{})
		testDB.Unscoped().Where("user_id = ?", user.UserID).Delete(&model.User{})
		testDB.Unscoped().Where("department_id = ?", dept.DepartmentID).Delete(&model.Department{})
	}
	return
}

// ═══════════════════════════════════════════════════════════
// Test: User Repository
// ═══════════════════════════════════════════════════════════

func TestUserRepo_OptimisticLock(t *testing.T) {
	_, user, cleanup := setupTestData(t)
	defer cleanup()

	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	fresh, err := repo.User.GetByID(ctx, user.UserID)
	if err != nil {
		t.Fatalf("GetByID 失败: %v", err)
	}

	// 模拟并发：过期的版本号更新应失败
	stale := *fresh
	fresh.Name = "第一次更新"
	if err := repo.User.Update(ctx, fresh); err != nil {
		t.Fatalf("首次 Update 应成功: %v", err)
	}

	stale.Name = "第二次更新"
	err = repo.User.Update(ctx, &stale)
	if !errors.Is(err, pkgerrors.ErrOptimisticLock) {
		t.Errorf("期望 ErrOptimisticLock，实际: %v", err)
	}
}

func TestUserRepo_SoftDelete(t *testing.T) {
	_, user, cleanup := setupTestData(t)
	defer cleanup()

	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	if err := repo.User.Delete(ctx, user.UserID, "admin-1"); err != nil {
		t.Fatalf("Delete 失败: %v", err)
	}

	if _, err := repo.User.GetByID(ctx, user.UserID); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("软删除后 GetByID 应返回 ErrRecordNotFound，实际: %v", err)
	}

	// 数据仍物理存在且记录了操作人
	var raw model.User
	if err := testDB.Unscoped().Where("user_id = ?", user.UserID).First(&raw).Error; err != nil {
		t.Fatalf("软删除记录应物理存在: %v", err)
	}
	if raw.DeletedBy == nil || *raw.DeletedBy != "admin-1" {
		t.Error("软删除应记录 deleted_by")
	}
}

// ═══════════════════════════════════════════════════════════
// Test: Attendance Repository
// ═══════════════════════════════════════════════════════════

func TestAttendanceRepo_OpenSessionLifecycle(t *testing.T) {
	_, user, cleanup := setupTestData(t)
	defer cleanup()

	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	now := time.Now()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)

	session := &model.AttendanceSession{
		UserID:    user.UserID,
		LoginTime: now,
	}
	if err := repo.Attendance.Create(ctx, session); err != nil {
		t.Fatalf("Create 失败: %v", err)
	}

	open, err := repo.Attendance.GetOpenByUser(ctx, user.UserID, dayStart, dayEnd)
	if err != nil {
		t.Fatalf("GetOpenByUser 失败: %v", err)
	}
	if open.SessionID != session.SessionID {
		t.Errorf("期望 SessionID=%s，实际=%s", session.SessionID, open.SessionID)
	}

	logout := now.Add(9 * time.Hour)
	if err := repo.Attendance.SetLogout(ctx, session.SessionID, logout, false); err != nil {
		t.Fatalf("SetLogout 失败: %v", err)
	}

	if _, err := repo.Attendance.GetOpenByUser(ctx, user.UserID, dayStart, dayEnd); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("签退后不应再有进行中记录，实际: %v", err)
	}

	stored, err := repo.Attendance.GetByID(ctx, session.SessionID)
	if err != nil {
		t.Fatalf("GetByID 失败: %v", err)
	}
	if stored.LogoutTime == nil {
		t.Error("签退时间应已持久化")
	}
	if stored.AutoClosed {
		t.Error("正常签退不应标记 AutoClosed")
	}
}

func TestAttendanceRepo_ListByUser(t *testing.T) {
	_, user, cleanup := setupTestData(t)
	defer cleanup()

	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	now := time.Now()
	for _, daysAgo := range []int{1, 3, 100} {
		login := now.AddDate(0, 0, -daysAgo)
		logout := login.Add(8 * time.Hour)
		s := &model.AttendanceSession{
			UserID:     user.UserID,
			LoginTime:  login,
			LogoutTime: &logout,
		}
		if err := repo.Attendance.Create(ctx, s); err != nil {
			t.Fatalf("Create 失败: %v", err)
		}
	}

	// 90 天窗口应排除第三条
	since := now.AddDate(0, 0, -90)
	sessions, err := repo.Attendance.ListByUser(ctx, user.UserID, since)
	if err != nil {
		t.Fatalf("ListByUser 失败: %v", err)
	}
	if len(sessions) != 2 {
		t.Fatalf("期望 2 条记录，实际=%d", len(sessions))
	}
	if sessions[0].LoginTime.Before(sessions[1].LoginTime) {
		t.Error("记录应按签到时间降序")
	}
}

// ═══════════════════════════════════════════════════════════
// Test: Department Repository
// ═══════════════════════════════════════════════════════════

func TestDepartmentRepo_CountMembers(t *testing.T) {
	dept, _, cleanup := setupTestData(t)
	defer cleanup()

	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	count, err := repo.Department.CountMembers(ctx, dept.DepartmentID)
	if err != nil {
		t.Fatalf("CountMembers 失败: %v", err)
	}
	if count != 1 {
		t.Errorf("期望 count=1，实际=%d", count)
	}
}
