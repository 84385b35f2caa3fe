package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"timecard/backend/internal/dto"
	"timecard/backend/internal/service"
	pkgerrors "timecard/backend/pkg/errors"
	"timecard/backend/pkg/response"
)

// UserHandler 用户管理接口处理器（管理员专用）
type UserHandler struct {
	userSvc service.UserService
}

// NewUserHandler 创建 UserHandler 实例
func NewUserHandler(userSvc service.UserService) *UserHandler {
	return &UserHandler{userSvc: userSvc}
}

// Create 创建员工账号
// POST /api/v1/users
func (h *UserHandler) Create(c *gin.Context) {
	var req dto.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, CodeInvalidParams, "请求参数错误")
		return
	}

	resp, err := h.userSvc.Create(c.Request.Context(), &req)
	switch {
	case err == nil:
		response.Created(c, resp)
	case errors.Is(err, service.ErrEmployeeNoExists):
		response.Error(c, http.StatusConflict, CodeEmployeeNoExists, err.Error())
	case errors.Is(err, service.ErrEmailExists):
		response.Error(c, http.StatusConflict, CodeEmailExists, err.Error())
	case errors.Is(err, service.ErrDepartmentNotFound):
		response.BadRequest(c, CodeDepartmentNotFound, err.Error())
	default:
		response.InternalError(c)
	}
}

// Get 查询用户详情
// GET /api/v1/users/:id
func (h *UserHandler) Get(c *gin.Context) {
	user, err := h.userSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			response.NotFound(c, CodeUserNotFound, err.Error())
			return
		}
		response.InternalError(c)
		return
	}
	response.OK(c, user)
}

// List 分页查询用户列表
// GET /api/v1/users
func (h *UserHandler) List(c *gin.Context) {
	var req dto.UserListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, CodeInvalidParams, "请求参数错误")
		return
	}

	users, total, err := h.userSvc.List(c.Request.Context(), &req)
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OKPage(c, users, total, req.GetPage(), req.GetPageSize())
}

// Update 更新用户信息
// PUT /api/v1/users/:id
func (h *UserHandler) Update(c *gin.Context) {
	var req dto.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, CodeInvalidParams, "请求参数错误")
		return
	}

	user, err := h.userSvc.Update(c.Request.Context(), c.Param("id"), &req)
	switch {
	case err == nil:
		response.OK(c, user)
	case errors.Is(err, service.ErrUserNotFound):
		response.NotFound(c, CodeUserNotFound, err.Error())
	case errors.Is(err, service.ErrEmailExists):
		response.Error(c, http.StatusConflict, CodeEmailExists, err.Error())
	case errors.Is(err, service.ErrDepartmentNotFound):
		response.BadRequest(c, CodeDepartmentNotFound, err.Error())
	case errors.Is(err, pkgerrors.ErrOptimisticLock):
		response.Error(c, http.StatusConflict, CodeInvalidParams, "数据已被其他操作修改，请刷新后重试")
	default:
		response.InternalError(c)
	}
}

// Delete 删除用户（软删除）
// DELETE /api/v1/users/:id
func (h *UserHandler) Delete(c *gin.Context) {
	err := h.userSvc.Delete(c.Request.Context(), c.Param("id"), MustGetUserID(c))
	switch {
	case err == nil:
		response.OK(c, nil)
	case errors.Is(err, service.ErrUserNotFound):
		response.NotFound(c, CodeUserNotFound, err.Error())
	default:
		response.InternalError(c)
	}
}

// AssignRole 分配角色
// PUT /api/v1/users/:id/role
func (h *UserHandler) AssignRole(c *gin.Context) {
	var req dto.AssignRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, CodeInvalidParams, "请求参数错误")
		return
	}

	err := h.userSvc.AssignRole(c.Request.Context(), c.Param("id"), &req)
	switch {
	case err == nil:
		response.OK(c, nil)
	case errors.Is(err, service.ErrUserNotFound):
		response.NotFound(c, CodeUserNotFound, err.Error())
	default:
		response.InternalError(c)
	}
}

// ResetPassword 重置用户密码
// POST /api/v1/users/:id/reset-password
func (h *UserHandler) ResetPassword(c *gin.Context) {
	resp, err := h.userSvc.ResetPassword(c.Request.Context(), c.Param("id"))
	switch {
	case err == nil:
		response.OK(c, resp)
	case errors.Is(err, service.ErrUserNotFound):
		response.NotFound(c, CodeUserNotFound, err.Error())
	default:
		response.InternalError(c)
	}
}
