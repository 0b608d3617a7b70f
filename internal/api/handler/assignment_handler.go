package handler

import (
	"github.com/gin-gonic/gin"

	"research-approval/backend/internal/dto"
	"research-approval/backend/internal/service"
	"research-approval/backend/pkg/response"
)

// AssignmentHandler 评审分配 HTTP 处理器（管理员）
type AssignmentHandler struct {
	assignmentSvc service.AssignmentService
}

// NewAssignmentHandler 创建 AssignmentHandler
func NewAssignmentHandler(assignmentSvc service.AssignmentService) *AssignmentHandler {
	return &AssignmentHandler{assignmentSvc: assignmentSvc}
}

// Assign 分配评审人
// POST /api/v1/submissions/:id/assignments
func (h *AssignmentHandler) Assign(c *gin.Context) {
	adminID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.AssignReviewerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.InvalidParams(c, err)
		return
	}

	a, err := h.assignmentSvc.Assign(c.Request.Context(), c.Param("id"), req.ReviewerID, adminID)
	if err != nil {
		handleWorkflowError(c, err)
		return
	}
	response.Created(c, a)
}

// List 提交的评审组
// GET /api/v1/submissions/:id/assignments
func (h *AssignmentHandler) List(c *gin.Context) {
	list, err := h.assignmentSvc.ListBySubmission(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleWorkflowError(c, err)
		return
	}
	response.OK(c, list)
}

// Deactivate 停用评审人
// DELETE /api/v1/assignments/:id
func (h *AssignmentHandler) Deactivate(c *gin.Context) {
	adminID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	a, err := h.assignmentSvc.Deactivate(c.Request.Context(), c.Param("id"), adminID)
	if err != nil {
		handleWorkflowError(c, err)
		return
	}
	response.OK(c, a)
}
