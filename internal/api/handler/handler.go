package handler

import "research-approval/backend/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Auth         *AuthHandler
	Group        *GroupHandler
	Submission   *SubmissionHandler
	Assignment   *AssignmentHandler
	Discussion   *DiscussionHandler
	Notification *NotificationHandler
	Export       *ExportHandler
}

// NewHandler 创建 Handler 聚合
// revoker 为 nil 时 Token 吊销接口返回 503
func NewHandler(svc *service.Service, revoker TokenRevoker) *Handler {
	return &Handler{
		Auth:         NewAuthHandler(revoker),
		Group:        NewGroupHandler(svc.Group, svc.Progression),
		Submission:   NewSubmissionHandler(svc.Submission),
		Assignment:   NewAssignmentHandler(svc.Assignment),
		Discussion:   NewDiscussionHandler(svc.Discussion),
		Notification: NewNotificationHandler(svc.Notification),
		Export:       NewExportHandler(svc.Export),
	}
}
