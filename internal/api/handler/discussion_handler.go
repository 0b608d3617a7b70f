package handler

import (
	"github.com/gin-gonic/gin"

	"research-approval/backend/internal/dto"
	"research-approval/backend/internal/service"
	"research-approval/backend/pkg/response"
)

// DiscussionHandler 讨论区 HTTP 处理器
type DiscussionHandler struct {
	discussionSvc service.DiscussionService
}

// NewDiscussionHandler 创建 DiscussionHandler
func NewDiscussionHandler(discussionSvc service.DiscussionService) *DiscussionHandler {
	return &DiscussionHandler{discussionSvc: discussionSvc}
}

// Status 讨论区是否已开放
// GET /api/v1/groups/:id/discussion/status
func (h *DiscussionHandler) Status(c *gin.Context) {
	unlocked, err := h.discussionSvc.IsUnlocked(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleWorkflowError(c, err)
		return
	}
	response.OK(c, gin.H{"unlocked": unlocked})
}

// Open 进入讨论区，首次进入时创建
// POST /api/v1/groups/:id/discussion
func (h *DiscussionHandler) Open(c *gin.Context) {
	thread, err := h.discussionSvc.GetOrCreateThread(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleWorkflowError(c, err)
		return
	}
	response.OK(c, thread)
}

// GetThread 讨论区详情
// GET /api/v1/threads/:id
func (h *DiscussionHandler) GetThread(c *gin.Context) {
	thread, err := h.discussionSvc.GetThread(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleWorkflowError(c, err)
		return
	}
	response.OK(c, thread)
}

// PostMessage 发表消息
// POST /api/v1/threads/:id/messages
func (h *DiscussionHandler) PostMessage(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.PostMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.InvalidParams(c, err)
		return
	}

	msg, err := h.discussionSvc.PostMessage(c.Request.Context(), c.Param("id"), userID, &req)
	if err != nil {
		handleWorkflowError(c, err)
		return
	}
	response.Created(c, msg)
}

// ListMessages 消息列表
// GET /api/v1/threads/:id/messages
func (h *DiscussionHandler) ListMessages(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.MessageListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.InvalidParams(c, err)
		return
	}

	list, total, err := h.discussionSvc.ListMessages(c.Request.Context(), c.Param("id"), userID, &req)
	if err != nil {
		handleWorkflowError(c, err)
		return
	}
	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

// AddParticipant 追加成员（管理员）
// POST /api/v1/threads/:id/participants
func (h *DiscussionHandler) AddParticipant(c *gin.Context) {
	var req dto.AddParticipantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.InvalidParams(c, err)
		return
	}

	thread, err := h.discussionSvc.AddParticipant(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		handleWorkflowError(c, err)
		return
	}
	response.OK(c, thread)
}
