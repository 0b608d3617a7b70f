package handler

import (
	"github.com/gin-gonic/gin"

	"research-approval/backend/internal/dto"
	"research-approval/backend/internal/service"
	"research-approval/backend/pkg/response"
)

// GroupHandler 小组与进度 HTTP 处理器
type GroupHandler struct {
	groupSvc    service.GroupService
	progressSvc service.ProgressionService
}

// NewGroupHandler 创建 GroupHandler
func NewGroupHandler(groupSvc service.GroupService, progressSvc service.ProgressionService) *GroupHandler {
	return &GroupHandler{groupSvc: groupSvc, progressSvc: progressSvc}
}

// Create 学生创建小组（本人为组长）
// POST /api/v1/groups
func (h *GroupHandler) Create(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.CreateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.InvalidParams(c, err)
		return
	}

	group, err := h.groupSvc.Create(c.Request.Context(), userID, &req)
	if err != nil {
		handleWorkflowError(c, err)
		return
	}
	response.Created(c, group)
}

// GetMine 当前学生作为组长的小组
// GET /api/v1/groups/mine
func (h *GroupHandler) GetMine(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	group, err := h.groupSvc.GetByLead(c.Request.Context(), userID)
	if err != nil {
		handleWorkflowError(c, err)
		return
	}
	response.OK(c, group)
}

// Get 小组详情
// GET /api/v1/groups/:id
func (h *GroupHandler) Get(c *gin.Context) {
	group, err := h.groupSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleWorkflowError(c, err)
		return
	}
	response.OK(c, group)
}

// List 小组列表
// GET /api/v1/groups?college=xxx
func (h *GroupHandler) List(c *gin.Context) {
	groups, err := h.groupSvc.List(c.Request.Context(), c.Query("college"))
	if err != nil {
		handleWorkflowError(c, err)
		return
	}
	response.OK(c, groups)
}

// Progress 小组论文进度
// GET /api/v1/groups/:id/progress
func (h *GroupHandler) Progress(c *gin.Context) {
	progress, err := h.progressSvc.GetProgress(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleWorkflowError(c, err)
		return
	}
	response.OK(c, progress)
}

// ChapterAccess 章节是否可提交
// GET /api/v1/groups/:id/chapters/:chapter/access
func (h *GroupHandler) ChapterAccess(c *gin.Context) {
	chapter, ok := chapterParam(c)
	if !ok {
		return
	}

	allowed, err := h.progressSvc.CanAccess(c.Request.Context(), c.Param("id"), chapter)
	if err != nil {
		handleWorkflowError(c, err)
		return
	}
	response.OK(c, gin.H{"chapter": chapter, "accessible": allowed})
}
