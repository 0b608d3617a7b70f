package service

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"research-approval/backend/config"
	"research-approval/backend/internal/dto"
	"research-approval/backend/internal/model"
	"research-approval/backend/internal/repository"
)

// ── 测试辅助 ──

const (
	testGroupID   = "grp-test"
	testLeadID    = "lead-1"
	testAdviserID = "adviser-1"
	testAdminID   = "admin-1"
)

type fixture struct {
	store    *memStore
	repo     *repository.Repository
	tx       *mockTransactor
	notifier *recordingNotifier
	svc      *Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := newMemStore()
	repo, tx := newMockRepository(store)
	notifier := &recordingNotifier{}

	f := &fixture{
		store:    store,
		repo:     repo,
		tx:       tx,
		notifier: notifier,
		svc:      NewService(newFixtureConfig(), repo, notifier, zap.NewNop()),
	}

	users := []model.User{
		{UserID: testLeadID, Name: "组长", Email: "lead@example.edu", Role: "student"},
		{UserID: testAdviserID, Name: "指导教师", Email: "adviser@example.edu", Role: "adviser"},
		{UserID: testAdminID, Name: "管理员", Email: "admin@example.edu", Role: "admin"},
		{UserID: "panel-1", Name: "评审一", Email: "p1@example.edu", Role: "panel"},
		{UserID: "panel-2", Name: "评审二", Email: "p2@example.edu", Role: "panel"},
		{UserID: "panel-3", Name: "评审三", Email: "p3@example.edu", Role: "panel"},
		{UserID: "panel-4", Name: "评审四", Email: "p4@example.edu", Role: "panel"},
		{UserID: "panel-5", Name: "评审五", Email: "p5@example.edu", Role: "panel"},
	}
	for i := range users {
		store.users[users[i].UserID] = &users[i]
	}

	adviser := testAdviserID
	store.groups[testGroupID] = &model.Group{
		GroupID:   testGroupID,
		LeadID:    testLeadID,
		AdviserID: &adviser,
		College:   "工学院",
		Program:   "计算机科学",
		YearLevel: 4,
	}
	return f
}

func newFixtureConfig() *config.Config {
	return &config.Config{Workflow: config.WorkflowConfig{CoordinatorIDs: []string{testAdminID}}}
}

// assign 分配评审人，失败即终止测试
func (f *fixture) assign(t *testing.T, submissionID string, reviewers ...string) {
	t.Helper()
	for _, r := range reviewers {
		if _, err := f.svc.Assignment.Assign(context.Background(), submissionID, r, testAdminID); err != nil {
			t.Fatalf("Assign(%s) 应成功: %v", r, err)
		}
	}
}

// approve 以单名评审人通过提交
func (f *fixture) approve(t *testing.T, submissionID, reviewer string) {
	t.Helper()
	ctx := context.Background()
	if _, err := f.repo.Assignment.GetBySubmissionAndReviewer(ctx, submissionID, reviewer); err != nil {
		f.assign(t, submissionID, reviewer)
	}
	if _, err := f.svc.Submission.RecordReview(ctx, submissionID, reviewer, &dto.RecordReviewRequest{Decision: "approve"}); err != nil {
		t.Fatalf("RecordReview 应成功: %v", err)
	}
}

// approvedTitle 提交并通过题目
func (f *fixture) approvedTitle(t *testing.T) string {
	t.Helper()
	sub, err := f.svc.Submission.CreateTitle(context.Background(), testGroupID, testLeadID, &dto.CreateTitleRequest{Title: "基于图神经网络的课表推荐"})
	if err != nil {
		t.Fatalf("CreateTitle 应成功: %v", err)
	}
	f.approve(t, sub.ID, "panel-1")
	return sub.ID
}

// submitChapter 提交第 n 章
func (f *fixture) submitChapter(t *testing.T, n int) *dto.SubmissionResponse {
	t.Helper()
	sub, err := f.svc.Submission.CreateOrResubmitChapter(context.Background(), testGroupID, n, testLeadID, &dto.SubmitChapterRequest{DocumentRef: "docs/ch.pdf"})
	if err != nil {
		t.Fatalf("提交第%d章应成功: %v", n, err)
	}
	return sub
}

// approvedThrough 通过题目与第 1..n 章
func (f *fixture) approvedThrough(t *testing.T, n int) {
	t.Helper()
	f.approvedTitle(t)
	for i := 1; i <= n; i++ {
		sub := f.submitChapter(t, i)
		f.approve(t, sub.ID, "panel-1")
	}
}
