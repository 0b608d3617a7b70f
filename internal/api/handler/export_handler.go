package handler

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"research-approval/backend/internal/dto"
	"research-approval/backend/internal/service"
	"research-approval/backend/pkg/response"
)

// ExportHandler 导出模块 HTTP 处理器
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// ExportProgress 导出小组进度
// GET /api/v1/export/progress?college=xxx
func (h *ExportHandler) ExportProgress(c *gin.Context) {
	var req dto.ExportProgressRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.InvalidParams(c, err)
		return
	}

	buf, filename, err := h.exportSvc.ExportProgress(c.Request.Context(), req.College)
	if err != nil {
		handleWorkflowError(c, err)
		return
	}

	// 设置下载响应头
	encodedFilename := url.QueryEscape(filename)
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+encodedFilename)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}
