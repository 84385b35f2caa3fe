package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"

	"timecard/backend/internal/model"
	"timecard/backend/internal/repository"
)

// ── Mock Repositories ──

type mockUserRepo struct {
	users map[string]*model.User // key: user_id
	seq   int
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	if user.UserID == "" {
		m.seq++
		user.UserID = fmt.Sprintf("user-%d", m.seq)
	}
	user.CreatedAt = time.Now()
	m.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByEmployeeNo(_ context.Context, employeeNo string) (*model.User, error) {
	for _, u := range m.users {
		if u.EmployeeNo == employeeNo {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) Update(_ context.Context, user *model.User) error {
	if _, ok := m.users[user.UserID]; !ok {
		return gorm.ErrRecordNotFound
	}
	user.Version++
	m.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) Delete(_ context.Context, id string, _ string) error {
	delete(m.users, id)
	return nil
}

func (m *mockUserRepo) List(_ context.Context, filter repository.UserFilter) ([]model.User, int64, error) {
	var all []model.User
	for _, u := range m.users {
		if filter.DepartmentID != "" && u.DepartmentID != filter.DepartmentID {
			continue
		}
		if filter.Role != "" && u.Role != filter.Role {
			continue
		}
		if filter.Keyword != "" &&
			!strings.Contains(u.Name, filter.Keyword) &&
			!strings.Contains(u.EmployeeNo, filter.Keyword) {
			continue
		}
		all = append(all, *u)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].UserID < all[j].UserID })

	total := int64(len(all))
	if filter.Offset >= len(all) {
		return nil, total, nil
	}
	end := filter.Offset + filter.Limit
	if filter.Limit <= 0 || end > len(all) {
		end = len(all)
	}
	return all[filter.Offset:end], total, nil
}

type mockDeptRepo struct {
	departments  map[string]*model.Department
	memberCounts map[string]int64
}

func newMockDeptRepo() *mockDeptRepo {
	return &mockDeptRepo{
		departments: map[string]*model.Department{
			"valid-dept-id": {DepartmentID: "valid-dept-id", Name: "测试部门"},
		},
		memberCounts: make(map[string]int64),
	}
}

func (m *mockDeptRepo) Create(_ context.Context, dept *model.Department) error {
	if dept.DepartmentID == "" {
		dept.DepartmentID = "dept-" + dept.Name
	}
	dept.CreatedAt = time.Now()
	m.departments[dept.DepartmentID] = dept
	return nil
}

func (m *mockDeptRepo) GetByID(_ context.Context, id string) (*model.Department, error) {
	if d, ok := m.departments[id]; ok {
		return d, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockDeptRepo) List(_ context.Context) ([]model.Department, error) {
	var result []model.Department
	for _, d := range m.departments {
		result = append(result, *d)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (m *mockDeptRepo) Update(_ context.Context, dept *model.Department) error {
	m.departments[dept.DepartmentID] = dept
	return nil
}

func (m *mockDeptRepo) Delete(_ context.Context, id string, _ string) error {
	delete(m.departments, id)
	return nil
}

func (m *mockDeptRepo) CountMembers(_ context.Context, id string) (int64, error) {
	return m.memberCounts[id], nil
}

type mockAttendanceRepo struct {
	sessions map[string]*model.AttendanceSession
	seq      int
}

func newMockAttendanceRepo() *mockAttendanceRepo {
	return &mockAttendanceRepo{sessions: make(map[string]*model.AttendanceSession)}
}

func (m *mockAttendanceRepo) Create(_ context.Context, session *model.AttendanceSession) error {
	if session.SessionID == "" {
		m.seq++
		session.SessionID = fmt.Sprintf("session-%d", m.seq)
	}
	session.CreatedAt = time.Now()
	m.sessions[session.SessionID] = session
	return nil
}

func (m *mockAttendanceRepo) GetByID(_ context.Context, id string) (*model.AttendanceSession, error) {
	if s, ok := m.sessions[id]; ok {
		return s, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAttendanceRepo) GetOpenByUser(_ context.Context, userID string, dayStart, dayEnd time.Time) (*model.AttendanceSession, error) {
	var found *model.AttendanceSession
	for _, s := range m.sessions {
		if s.UserID != userID || s.LogoutTime != nil {
			continue
		}
		if s.LoginTime.Before(dayStart) || !s.LoginTime.Before(dayEnd) {
			continue
		}
		if found == nil || s.LoginTime.Before(found.LoginTime) {
			found = s
		}
	}
	if found == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return found, nil
}

func (m *mockAttendanceRepo) ListByUser(_ context.Context, userID string, since time.Time) ([]model.AttendanceSession, error) {
	var result []model.AttendanceSession
	for _, s := range m.sessions {
		if s.UserID == userID && s.LoginTime.After(since) {
			result = append(result, *s)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].LoginTime.After(result[j].LoginTime) })
	return result, nil
}

func (m *mockAttendanceRepo) SetLogout(_ context.Context, sessionID string, logout time.Time, autoClosed bool) error {
	s, ok := m.sessions[sessionID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	s.LogoutTime = &logout
	s.AutoClosed = autoClosed
	return nil
}

func (m *mockAttendanceRepo) Update(_ context.Context, session *model.AttendanceSession) error {
	if _, ok := m.sessions[session.SessionID]; !ok {
		return gorm.ErrRecordNotFound
	}
	m.sessions[session.SessionID] = session
	return nil
}

func (m *mockAttendanceRepo) Delete(_ context.Context, id string) error {
	delete(m.sessions, id)
	return nil
}

func (m *mockAttendanceRepo) List(_ context.Context, filter repository.AttendanceFilter) ([]model.AttendanceSession, int64, error) {
	var all []model.AttendanceSession
	for _, s := range m.sessions {
		if filter.UserID != "" && s.UserID != filter.UserID {
			continue
		}
		if !filter.From.IsZero() && s.LoginTime.Before(filter.From) {
			continue
		}
		if !filter.To.IsZero() && !s.LoginTime.Before(filter.To) {
			continue
		}
		all = append(all, *s)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].LoginTime.After(all[j].LoginTime) })

	total := int64(len(all))
	if filter.Offset >= len(all) {
		return nil, total, nil
	}
	end := filter.Offset + filter.Limit
	if filter.Limit <= 0 || end > len(all) {
		end = len(all)
	}
	return all[filter.Offset:end], total, nil
}

func newMockRepository() (*repository.Repository, *mockUserRepo, *mockDeptRepo, *mockAttendanceRepo) {
	userRepo := newMockUserRepo()
	deptRepo := newMockDeptRepo()
	attendanceRepo := newMockAttendanceRepo()
	repo := &repository.Repository{
		User:       userRepo,
		Department: deptRepo,
		Attendance: attendanceRepo,
	}
	return repo, userRepo, deptRepo, attendanceRepo
}
