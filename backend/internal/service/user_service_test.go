package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"timecard/backend/internal/dto"
	"timecard/backend/internal/model"
)

func setupTestUserService() (UserService, *mockUserRepo, *mockDeptRepo) {
	repo, userRepo, deptRepo, _ := newMockRepository()
	svc := NewUserService(repo, zap.NewNop())
	return svc, userRepo, deptRepo
}

// ── 创建测试 ──

func TestCreateUser_Success(t *testing.T) {
	svc, _, _ := setupTestUserService()

	result, err := svc.Create(context.Background(), &dto.CreateUserRequest{
		Name:         "张三",
		EmployeeNo:   "E2001",
		Email:        "zhangsan@test.com",
		DepartmentID: "valid-dept-id",
	})

	if err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}
	if result.User.EmployeeNo != "E2001" {
		t.Errorf("期望 EmployeeNo=E2001，实际=%s", result.User.EmployeeNo)
	}
	if result.User.Role != model.RoleEmployee {
		t.Errorf("默认角色应为 employee，实际=%s", result.User.Role)
	}
	if len(result.TempPassword) != 12 {
		t.Errorf("临时密码长度应为 12，实际=%d", len(result.TempPassword))
	}
	if !result.User.MustChangePassword {
		t.Error("新账号应强制首次改密")
	}
}

func TestCreateUser_DuplicateEmployeeNo(t *testing.T) {
	svc, userRepo, _ := setupTestUserService()
	createTestUser(userRepo, "E2001", "password123")

	_, err := svc.Create(context.Background(), &dto.CreateUserRequest{
		Name:         "李四",
		EmployeeNo:   "E2001",
		Email:        "lisi@test.com",
		DepartmentID: "valid-dept-id",
	})
	if !errors.Is(err, ErrEmployeeNoExists) {
		t.Errorf("期望 ErrEmployeeNoExists，实际: %v", err)
	}
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	svc, userRepo, _ := setupTestUserService()
	createTestUser(userRepo, "E2001", "password123")

	_, err := svc.Create(context.Background(), &dto.CreateUserRequest{
		Name:         "李四",
		EmployeeNo:   "E2002",
		Email:        "E2001@test.com",
		DepartmentID: "valid-dept-id",
	})
	if !errors.Is(err, ErrEmailExists) {
		t.Errorf("期望 ErrEmailExists，实际: %v", err)
	}
}

func TestCreateUser_DepartmentNotFound(t *testing.T) {
	svc, _, _ := setupTestUserService()

	_, err := svc.Create(context.Background(), &dto.CreateUserRequest{
		Name:         "王五",
		EmployeeNo:   "E2003",
		Email:        "wangwu@test.com",
		DepartmentID: "missing-dept",
	})
	if !errors.Is(err, ErrDepartmentNotFound) {
		t.Errorf("期望 ErrDepartmentNotFound，实际: %v", err)
	}
}

// ── 列表测试 ──

func TestListUsers_FilterByRole(t *testing.T) {
	svc, userRepo, _ := setupTestUserService()
	createTestUser(userRepo, "E2001", "pw")
	admin := createTestUser(userRepo, "E2002", "pw")
	admin.Role = model.RoleAdmin

	users, total, err := svc.List(context.Background(), &dto.UserListRequest{
		Role: model.RoleAdmin,
	})
	if err != nil {
		t.Fatalf("List 应成功: %v", err)
	}
	if total != 1 {
		t.Errorf("期望 total=1，实际=%d", total)
	}
	if len(users) != 1 || users[0].EmployeeNo != "E2002" {
		t.Errorf("期望只返回 E2002，实际=%v", users)
	}
}

func TestListUsers_Keyword(t *testing.T) {
	svc, userRepo, _ := setupTestUserService()
	createTestUser(userRepo, "E2001", "pw")
	createTestUser(userRepo, "F9999", "pw")

	_, total, err := svc.List(context.Background(), &dto.UserListRequest{
		Keyword: "F99",
	})
	if err != nil {
		t.Fatalf("List 应成功: %v", err)
	}
	if total != 1 {
		t.Errorf("期望 total=1，实际=%d", total)
	}
}

// ── 更新测试 ──

func TestUpdateUser_Success(t *testing.T) {
	svc, userRepo, _ := setupTestUserService()
	user := createTestUser(userRepo, "E2001", "pw")

	newName := "新名字"
	result, err := svc.Update(context.Background(), user.UserID, &dto.UpdateUserRequest{
		Name: &newName,
	})
	if err != nil {
		t.Fatalf("Update 应成功: %v", err)
	}
	if result.Name != "新名字" {
		t.Errorf("期望 Name=新名字，实际=%s", result.Name)
	}
}

func TestUpdateUser_NotFound(t *testing.T) {
	svc, _, _ := setupTestUserService()

	newName := "新名字"
	_, err := svc.Update(context.Background(), "missing", &dto.UpdateUserRequest{Name: &newName})
	if !errors.Is(err, ErrUserNotFound) {
		t.Errorf("期望 ErrUserNotFound，实际: %v", err)
	}
}

func TestUpdateUser_DepartmentNotFound(t *testing.T) {
	svc, userRepo, _ := setupTestUserService()
	user := createTestUser(userRepo, "E2001", "pw")

	missing := "missing-dept"
	_, err := svc.Update(context.Background(), user.UserID, &dto.UpdateUserRequest{
		DepartmentID: &missing,
	})
	if !errors.Is(err, ErrDepartmentNotFound) {
		t.Errorf("期望 ErrDepartmentNotFound，实际: %v", err)
	}
}

// ── 角色与密码测试 ──

func TestAssignRole_Success(t *testing.T) {
	svc, userRepo, _ := setupTestUserService()
	user := createTestUser(userRepo, "E2001", "pw")

	err := svc.AssignRole(context.Background(), user.UserID, &dto.AssignRoleRequest{
		Role: model.RoleAdmin,
	})
	if err != nil {
		t.Fatalf("AssignRole 应成功: %v", err)
	}
	if user.Role != model.RoleAdmin {
		t.Errorf("期望 Role=admin，实际=%s", user.Role)
	}
}

func TestResetPassword_Success(t *testing.T) {
	svc, userRepo, _ := setupTestUserService()
	user := createTestUser(userRepo, "E2001", "oldpassword")

	result, err := svc.ResetPassword(context.Background(), user.UserID)
	if err != nil {
		t.Fatalf("ResetPassword 应成功: %v", err)
	}
	if result.TempPassword == "" {
		t.Fatal("临时密码不应为空")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(result.TempPassword)); err != nil {
		t.Error("临时密码应已写入哈希")
	}
	if !user.MustChangePassword {
		t.Error("重置后应强制改密")
	}
}

func TestDeleteUser_NotFound(t *testing.T) {
	svc, _, _ := setupTestUserService()

	err := svc.Delete(context.Background(), "missing", "admin-1")
	if !errors.Is(err, ErrUserNotFound) {
		t.Errorf("期望 ErrUserNotFound，实际: %v", err)
	}
}

// ── 临时密码生成 ──

func TestGenerateTempPassword(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 20; i++ {
		pw, err := generateTempPassword(12)
		if err != nil {
			t.Fatalf("generateTempPassword 应成功: %v", err)
		}
		if len(pw) != 12 {
			t.Errorf("期望长度 12，实际=%d", len(pw))
		}
		if seen[pw] {
			t.Errorf("临时密码重复: %s", pw)
		}
		seen[pw] = true
	}
}
