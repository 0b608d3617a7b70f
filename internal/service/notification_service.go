package service

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"research-approval/backend/internal/dto"
	"research-approval/backend/internal/model"
	"research-approval/backend/internal/repository"
)

// ── 通知模块业务错误 ──

var ErrNotificationNotFound = errors.New("通知不存在")

// NotificationService 站内通知收件箱
type NotificationService interface {
	ListMine(ctx context.Context, userID string, req *dto.NotificationListRequest) ([]dto.NotificationResponse, int64, error)
	MarkRead(ctx context.Context, userID, notificationID string) error
}

type notificationService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewNotificationService 创建 NotificationService 实例
func NewNotificationService(repo *repository.Repository, logger *zap.Logger) NotificationService {
	return &notificationService{repo: repo, logger: logger}
}

// ────────────────────── ListMine ──────────────────────

func (s *notificationService) ListMine(ctx context.Context, userID string, req *dto.NotificationListRequest) ([]dto.NotificationResponse, int64, error) {
	list, total, err := s.repo.Notification.ListByUser(ctx, userID, req.UnreadOnly, req.Offset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("查询通知列表失败", zap.String("user_id", userID), zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.NotificationResponse, 0, len(list))
	for i := range list {
		result = append(result, toNotificationResponse(&list[i]))
	}
	return result, total, nil
}

// ────────────────────── MarkRead ──────────────────────

func (s *notificationService) MarkRead(ctx context.Context, userID, notificationID string) error {
	ok, err := s.repo.Notification.MarkRead(ctx, notificationID, userID)
	if err != nil {
		s.logger.Error("标记通知已读失败", zap.String("notification_id", notificationID), zap.Error(err))
		return err
	}
	if !ok {
		return ErrNotificationNotFound
	}
	return nil
}

// ── 站内信渠道 ──

// InboxNotifier 把通知写入 notifications 表
type InboxNotifier struct {
	repo repository.NotificationRepository
}

// NewInboxNotifier 创建站内信渠道
func NewInboxNotifier(repo repository.NotificationRepository) *InboxNotifier {
	return &InboxNotifier{repo: repo}
}

type inboxPayload struct {
	ContextType string `json:"context_type"`
	ContextID   string `json:"context_id"`
}

func (n *InboxNotifier) Notify(ctx context.Context, msg Message) error {
	payload, err := json.Marshal(inboxPayload{
		ContextType: string(msg.ContextType),
		ContextID:   msg.ContextID,
	})
	if err != nil {
		return err
	}

	row := &model.Notification{
		NotificationID: uuid.NewString(),
		UserID:         msg.RecipientID,
		Type:           msg.Type,
		Title:          msg.Title,
		Content:        msg.Body,
		Payload:        datatypes.JSON(payload),
	}
	if msg.ContextType != "" {
		ct := string(msg.ContextType)
		row.RelatedType = &ct
	}
	if msg.ContextID != "" {
		id := msg.ContextID
		row.RelatedID = &id
	}
	return n.repo.Create(ctx, row)
}
