package service

import (
	"go.uber.org/zap"

	"research-approval/backend/config"
	"research-approval/backend/internal/repository"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Group        GroupService
	Submission   SubmissionService
	Assignment   AssignmentService
	Progression  ProgressionService
	Discussion   DiscussionService
	Notification NotificationService
	Export       ExportService
}

// NewService 创建 Service 聚合
// notifier 为 nil 时不投递任何通知
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	notifier Notifier,
	logger *zap.Logger,
) *Service {
	dispatch := newDispatcher(notifier, logger)
	return &Service{
		Group:        NewGroupService(repo, logger),
		Submission:   NewSubmissionService(repo, dispatch, cfg.Workflow.CoordinatorIDs, logger),
		Assignment:   NewAssignmentService(repo, dispatch, logger),
		Progression:  NewProgressionService(repo, logger),
		Discussion:   NewDiscussionService(repo, dispatch, logger),
		Notification: NewNotificationService(repo, logger),
		Export:       NewExportService(repo, logger),
	}
}
