package handler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"timecard/backend/internal/dto"
	"timecard/backend/internal/service"
	"timecard/backend/pkg/response"
)

// ExportHandler 导出接口处理器（管理员专用）
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler 创建 ExportHandler 实例
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// Excel 导出 xlsx 报表
// GET /api/v1/export/excel
func (h *ExportHandler) Excel(c *gin.Context) {
	h.export(c, h.exportSvc.ExportExcel,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
}

// CSV 导出 CSV 报表
// GET /api/v1/export/csv
func (h *ExportHandler) CSV(c *gin.Context) {
	h.export(c, h.exportSvc.ExportCSV, "text/csv; charset=utf-8")
}

// Calendar 导出 iCalendar 日历
// GET /api/v1/export/calendar
func (h *ExportHandler) Calendar(c *gin.Context) {
	h.export(c, h.exportSvc.ExportCalendar, "text/calendar; charset=utf-8")
}

type exportFunc func(ctx context.Context, req *dto.ExportRequest) (*bytes.Buffer, string, error)

func (h *ExportHandler) export(c *gin.Context, fn exportFunc, contentType string) {
	var req dto.ExportRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, CodeInvalidParams, "请求参数错误")
		return
	}

	buf, filename, err := fn(c.Request.Context(), &req)
	switch {
	case err == nil:
		c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
		c.Data(http.StatusOK, contentType, buf.Bytes())
	case errors.Is(err, service.ErrExportNoData):
		response.NotFound(c, CodeExportNoData, err.Error())
	case errors.Is(err, service.ErrInvalidTimeRange):
		response.BadRequest(c, CodeInvalidTimeRange, "时间参数格式错误")
	default:
		response.InternalError(c)
	}
}
