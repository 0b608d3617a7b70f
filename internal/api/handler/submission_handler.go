package handler

import (
	"github.com/gin-gonic/gin"

	"research-approval/backend/internal/dto"
	"research-approval/backend/internal/service"
	"research-approval/backend/pkg/response"
)

// SubmissionHandler 题目 / 章节提交与评审 HTTP 处理器
type SubmissionHandler struct {
	submissionSvc service.SubmissionService
}

// NewSubmissionHandler 创建 SubmissionHandler
func NewSubmissionHandler(submissionSvc service.SubmissionService) *SubmissionHandler {
	return &SubmissionHandler{submissionSvc: submissionSvc}
}

// CreateTitle 提交题目
// POST /api/v1/groups/:id/titles
func (h *SubmissionHandler) CreateTitle(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.CreateTitleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.InvalidParams(c, err)
		return
	}

	sub, err := h.submissionSvc.CreateTitle(c.Request.Context(), c.Param("id"), userID, &req)
	if err != nil {
		handleWorkflowError(c, err)
		return
	}
	response.Created(c, sub)
}

// SubmitChapter 新建或重新提交章节
// PUT /api/v1/groups/:id/chapters/:chapter
func (h *SubmissionHandler) SubmitChapter(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	chapter, ok := chapterParam(c)
	if !ok {
		return
	}

	var req dto.SubmitChapterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.InvalidParams(c, err)
		return
	}

	sub, err := h.submissionSvc.CreateOrResubmitChapter(c.Request.Context(), c.Param("id"), chapter, userID, &req)
	if err != nil {
		handleWorkflowError(c, err)
		return
	}
	response.OK(c, sub)
}

// ListByGroup 小组全部提交
// GET /api/v1/groups/:id/submissions
func (h *SubmissionHandler) ListByGroup(c *gin.Context) {
	list, err := h.submissionSvc.ListByGroup(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleWorkflowError(c, err)
		return
	}
	response.OK(c, list)
}

// Get 提交详情（含计票）
// GET /api/v1/submissions/:id
func (h *SubmissionHandler) Get(c *gin.Context) {
	sub, err := h.submissionSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleWorkflowError(c, err)
		return
	}
	response.OK(c, sub)
}

// ListReviews 评审意见（含往轮）
// GET /api/v1/submissions/:id/reviews
func (h *SubmissionHandler) ListReviews(c *gin.Context) {
	list, err := h.submissionSvc.ListReviews(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleWorkflowError(c, err)
		return
	}
	response.OK(c, list)
}

// RecordReview 记录评审意见
// PUT /api/v1/submissions/:id/review
func (h *SubmissionHandler) RecordReview(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.RecordReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.InvalidParams(c, err)
		return
	}

	out, err := h.submissionSvc.RecordReview(c.Request.Context(), c.Param("id"), userID, &req)
	if err != nil {
		handleWorkflowError(c, err)
		return
	}
	response.OK(c, out)
}

// Reject 管理员驳回
// POST /api/v1/submissions/:id/reject
func (h *SubmissionHandler) Reject(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.RejectSubmissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.InvalidParams(c, err)
		return
	}

	sub, err := h.submissionSvc.Reject(c.Request.Context(), c.Param("id"), userID, &req)
	if err != nil {
		handleWorkflowError(c, err)
		return
	}
	response.OK(c, sub)
}
