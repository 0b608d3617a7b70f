package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"research-approval/backend/internal/workflow"
)

// 通知类型
const (
	NotifyAssignReviewers    = "assign_reviewers"
	NotifyReviewerAssigned   = "reviewer_assigned"
	NotifyChapterSubmitted   = "chapter_submitted"
	NotifyChapterResubmitted = "chapter_resubmitted"
	NotifySubmissionApproved = "submission_approved"
	NotifySubmissionRejected = "submission_rejected"
	NotifyDiscussionMessage  = "discussion_message"
)

// Message 一条待投递的通知
type Message struct {
	RecipientID string
	Type        string
	Title       string
	Body        string
	ContextType workflow.ContextType
	ContextID   string
}

// Notifier 通知投递接口（站内信、邮件等）
// 返回错误只用于记录日志，不影响已提交的流程状态
type Notifier interface {
	Notify(ctx context.Context, msg Message) error
}

// MultiNotifier 依次投递到所有渠道，错误合并返回
type MultiNotifier []Notifier

func (m MultiNotifier) Notify(ctx context.Context, msg Message) error {
	var errs []error
	for _, n := range m {
		if n == nil {
			continue
		}
		if err := n.Notify(ctx, msg); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// NopNotifier 丢弃所有通知
type NopNotifier struct{}

func (NopNotifier) Notify(context.Context, Message) error { return nil }

// dispatcher 事务提交后尽力投递通知，失败只记 Warn
type dispatcher struct {
	notifier Notifier
	logger   *zap.Logger
}

func newDispatcher(n Notifier, logger *zap.Logger) *dispatcher {
	if n == nil {
		n = NopNotifier{}
	}
	return &dispatcher{notifier: n, logger: logger}
}

func (d *dispatcher) send(ctx context.Context, msgs ...Message) {
	for _, msg := range msgs {
		if msg.RecipientID == "" {
			continue
		}
		if err := d.notifier.Notify(ctx, msg); err != nil {
			d.logger.Warn("通知投递失败",
				zap.String("recipient_id", msg.RecipientID),
				zap.String("type", msg.Type),
				zap.String("context_type", string(msg.ContextType)),
				zap.String("context_id", msg.ContextID),
				zap.Error(err),
			)
		}
	}
}
