package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"research-approval/backend/internal/service"
	"research-approval/backend/internal/workflow"
	"research-approval/backend/pkg/response"
)

// 错误码分段：
//   21xxx 小组 | 22xxx 提交 | 23xxx 评审分配 | 24xxx 讨论区 | 25xxx 并发 | 26xxx 通知 | 27xxx 导出

// handleWorkflowError 把 service 层错误翻译为统一响应
func handleWorkflowError(c *gin.Context, err error) {
	switch workflow.CodeOf(err) {
	case workflow.CodeGroupNotFound:
		response.NotFound(c, 21001, "小组不存在")
	case workflow.CodeGroupExists:
		response.Conflict(c, 21002, "该学生已创建小组")

	case workflow.CodeSubmissionNotFound:
		response.NotFound(c, 22001, "提交不存在")
	case workflow.CodeDuplicateActiveSubmission:
		response.Conflict(c, 22002, "已有审阅中的同类提交")
	case workflow.CodeChapterLocked:
		response.Locked(c, 22003, "章节尚未解锁")
	case workflow.CodeChapterFinalized:
		response.Conflict(c, 22004, "章节已通过或正在审阅，不可重新提交")
	case workflow.CodeInvalidChapterNumber:
		response.BadRequest(c, 22005, "章节号必须在 1-5 之间")
	case workflow.CodeAlreadyTerminal:
		response.Conflict(c, 22006, "该提交本轮审阅已结束")
	case workflow.CodeInvalidDecision:
		response.BadRequest(c, 22007, "评审意见只能是 approve 或 reject")

	case workflow.CodeNotAssigned:
		response.Forbidden(c, 23001, "未被分配为该提交的评审人")
	case workflow.CodeAssignmentNotFound:
		response.NotFound(c, 23002, "评审分配不存在")
	case workflow.CodeAssignmentExists:
		response.Conflict(c, 23003, "该评审人已在评审组中")

	case workflow.CodeDiscussionLocked:
		response.Locked(c, 24001, "第三章通过后才开放讨论区")
	case workflow.CodeThreadNotFound:
		response.NotFound(c, 24002, "讨论区不存在")
	case workflow.CodeNotParticipant:
		response.Forbidden(c, 24003, "不是讨论区成员")
	case workflow.CodeTitleNotApproved:
		response.Locked(c, 24004, "小组尚无已通过的题目")

	case workflow.CodeStorageConflict:
		response.Conflict(c, 25001, "并发写入冲突，请重试")

	default:
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			response.NotFound(c, 21003, "用户不存在")
		case errors.Is(err, service.ErrNotificationNotFound):
			response.NotFound(c, 26001, "通知不存在")
		case errors.Is(err, service.ErrExportNoGroups):
			response.NotFound(c, 27001, "没有可导出的小组")
		default:
			response.InternalError(c)
		}
	}
}
