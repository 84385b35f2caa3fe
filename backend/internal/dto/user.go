package dto

// ── 用户模块 DTO ──

// UserListRequest 用户列表查询参数
type UserListRequest struct {
	PaginationRequest
	DepartmentID string `form:"department_id" binding:"omitempty,uuid"`
	Role         string `form:"role"          binding:"omitempty,oneof=admin employee"`
	Keyword      string `form:"keyword"       binding:"omitempty,max=50"`
}

// CreateUserRequest 管理员创建员工账号请求
type CreateUserRequest struct {
	Name         string `json:"name"          binding:"required,min=2,max=50"`
	EmployeeNo   string `json:"employee_no"   binding:"required,max=20"`
	Email        string `json:"email"         binding:"required,email"`
	DepartmentID string `json:"department_id" binding:"required,uuid"`
	Role         string `json:"role"          binding:"omitempty,oneof=admin employee"`
}

// CreateUserResponse 创建账号响应（含初始密码，仅此一次下发）
type CreateUserResponse struct {
	User         UserResponse `json:"user"`
	TempPassword string       `json:"temp_password"`
}

// UpdateUserRequest 更新用户信息请求
type UpdateUserRequest struct {
	Name         *string `json:"name"          binding:"omitempty,min=2,max=50"`
	Email        *string `json:"email"         binding:"omitempty,email"`
	DepartmentID *string `json:"department_id" binding:"omitempty,uuid"`
}

// AssignRoleRequest 分配角色请求
type AssignRoleRequest struct {
	Role string `json:"role" binding:"required,oneof=admin employee"`
}

// ResetPasswordResponse 重置密码响应
type ResetPasswordResponse struct {
	TempPassword string `json:"temp_password"`
}
