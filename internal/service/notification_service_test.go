package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"go.uber.org/zap"

	"research-approval/backend/internal/dto"
	"research-approval/backend/internal/workflow"
)

func TestInboxNotifier_PersistsRow(t *testing.T) {
	f := newFixture(t)
	inbox := NewInboxNotifier(f.repo.Notification)

	err := inbox.Notify(context.Background(), Message{
		RecipientID: testLeadID,
		Type:        NotifySubmissionApproved,
		Title:       "题目已通过",
		Body:        "恭喜",
		ContextType: workflow.ContextSubmission,
		ContextID:   "sub-1",
	})
	if err != nil {
		t.Fatalf("Notify 应成功: %v", err)
	}
	if len(f.store.notifications) != 1 {
		t.Fatalf("期望 1 条通知，实际=%d", len(f.store.notifications))
	}

	row := f.store.notifications[0]
	if row.RelatedType == nil || *row.RelatedType != "submission" || row.RelatedID == nil || *row.RelatedID != "sub-1" {
		t.Errorf("关联信息错误: %+v", row)
	}
	var payload map[string]string
	if err := json.Unmarshal(row.Payload, &payload); err != nil {
		t.Fatalf("payload 应为合法 JSON: %v", err)
	}
	if payload["context_id"] != "sub-1" {
		t.Errorf("payload 错误: %v", payload)
	}
}

func TestNotificationService_ListAndMarkRead(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// 站内信作为唯一渠道走完整流程
	svc := NewService(newFixtureConfig(), f.repo, NewInboxNotifier(f.repo.Notification), zap.NewNop())
	sub, err := svc.Submission.CreateTitle(ctx, testGroupID, testLeadID, &dto.CreateTitleRequest{Title: "x"})
	if err != nil {
		t.Fatalf("CreateTitle 应成功: %v", err)
	}
	if _, err := svc.Submission.Reject(ctx, sub.ID, testAdminID, &dto.RejectSubmissionRequest{Reason: "r"}); err != nil {
		t.Fatalf("Reject 应成功: %v", err)
	}

	list, total, err := svc.Notification.ListMine(ctx, testLeadID, &dto.NotificationListRequest{UnreadOnly: true})
	if err != nil {
		t.Fatalf("ListMine 应成功: %v", err)
	}
	if total != 1 || list[0].Type != NotifySubmissionRejected {
		t.Fatalf("组长应收到驳回通知，实际=%+v", list)
	}

	if err := svc.Notification.MarkRead(ctx, testLeadID, list[0].ID); err != nil {
		t.Fatalf("MarkRead 应成功: %v", err)
	}
	_, total, _ = svc.Notification.ListMine(ctx, testLeadID, &dto.NotificationListRequest{UnreadOnly: true})
	if total != 0 {
		t.Errorf("已读后未读数应为 0，实际=%d", total)
	}

	// 不能标记他人的通知
	if err := svc.Notification.MarkRead(ctx, testAdminID, list[0].ID); !errors.Is(err, ErrNotificationNotFound) {
		t.Errorf("期望 ErrNotificationNotFound，实际: %v", err)
	}
}

func TestMultiNotifier_JoinsErrors(t *testing.T) {
	ok := &recordingNotifier{}
	bad := &recordingNotifier{err: errors.New("boom")}

	err := MultiNotifier{bad, nil, ok}.Notify(context.Background(), Message{RecipientID: "u"})
	if err == nil {
		t.Error("应返回失败渠道的错误")
	}
	if len(ok.msgs) != 1 {
		t.Error("一个渠道失败不应影响其他渠道")
	}
}
