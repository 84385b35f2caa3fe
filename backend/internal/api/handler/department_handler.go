package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"timecard/backend/internal/dto"
	"timecard/backend/internal/service"
	"timecard/backend/pkg/response"
)

// DepartmentHandler 部门管理接口处理器
type DepartmentHandler struct {
	deptSvc service.DepartmentService
}

// NewDepartmentHandler 创建 DepartmentHandler 实例
func NewDepartmentHandler(deptSvc service.DepartmentService) *DepartmentHandler {
	return &DepartmentHandler{deptSvc: deptSvc}
}

// Create 创建部门
// POST /api/v1/departments
func (h *DepartmentHandler) Create(c *gin.Context) {
	var req dto.CreateDepartmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, CodeInvalidParams, "请求参数错误")
		return
	}

	dept, err := h.deptSvc.Create(c.Request.Context(), &req)
	if err != nil {
		response.InternalError(c)
		return
	}
	response.Created(c, dept)
}

// Get 查询部门详情
// GET /api/v1/departments/:id
func (h *DepartmentHandler) Get(c *gin.Context) {
	dept, err := h.deptSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrDepartmentNotFound) {
			response.NotFound(c, CodeDepartmentNotFound, err.Error())
			return
		}
		response.InternalError(c)
		return
	}
	response.OK(c, dept)
}

// List 查询部门列表
// GET /api/v1/departments
func (h *DepartmentHandler) List(c *gin.Context) {
	depts, err := h.deptSvc.List(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, depts)
}

// Update 更新部门
// PUT /api/v1/departments/:id
func (h *DepartmentHandler) Update(c *gin.Context) {
	var req dto.UpdateDepartmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, CodeInvalidParams, "请求参数错误")
		return
	}

	dept, err := h.deptSvc.Update(c.Request.Context(), c.Param("id"), &req)
	switch {
	case err == nil:
		response.OK(c, dept)
	case errors.Is(err, service.ErrDepartmentNotFound):
		response.NotFound(c, CodeDepartmentNotFound, err.Error())
	default:
		response.InternalError(c)
	}
}

// Delete 删除部门（仅限空部门）
// DELETE /api/v1/departments/:id
func (h *DepartmentHandler) Delete(c *gin.Context) {
	err := h.deptSvc.Delete(c.Request.Context(), c.Param("id"), MustGetUserID(c))
	switch {
	case err == nil:
		response.OK(c, nil)
	case errors.Is(err, service.ErrDepartmentNotFound):
		response.NotFound(c, CodeDepartmentNotFound, err.Error())
	case errors.Is(err, service.ErrDepartmentHasMembers):
		response.Error(c, http.StatusConflict, CodeDepartmentHasMembers, err.Error())
	default:
		response.InternalError(c)
	}
}
