package service

import (
	"context"
	"errors"
	"testing"

	"research-approval/backend/internal/dto"
	"research-approval/backend/internal/workflow"
)

func TestProgressionService_NoTitle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	ok, err := f.svc.Progression.CanAccess(ctx, testGroupID, 1)
	if err != nil {
		t.Fatalf("CanAccess 应成功: %v", err)
	}
	if ok {
		t.Error("无通过的题目时第1章不可访问")
	}

	p, err := f.svc.Progression.GetProgress(ctx, testGroupID)
	if err != nil {
		t.Fatalf("GetProgress 应成功: %v", err)
	}
	if p.TitleStatus != "none" || p.CurrentChapter != 1 || p.Complete {
		t.Errorf("初始进度错误: %+v", p)
	}
}

func TestProgressionService_SequentialUnlock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.approvedThrough(t, 2)

	current, complete, err := f.svc.Progression.CurrentChapter(ctx, testGroupID)
	if err != nil {
		t.Fatalf("CurrentChapter 应成功: %v", err)
	}
	if current != 3 || complete {
		t.Errorf("期望当前第3章，实际=%d complete=%v", current, complete)
	}

	for n, want := range map[int]bool{1: true, 2: true, 3: true, 4: false, 5: false} {
		ok, _ := f.svc.Progression.CanAccess(ctx, testGroupID, n)
		if ok != want {
			t.Errorf("CanAccess(%d) 期望=%v，实际=%v", n, want, ok)
		}
	}

	accessible, _ := f.svc.Progression.AccessibleChapter(ctx, testGroupID)
	if accessible != 3 {
		t.Errorf("期望可访问第3章，实际=%d", accessible)
	}
}

func TestProgressionService_Complete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.approvedThrough(t, 5)

	_, complete, _ := f.svc.Progression.CurrentChapter(ctx, testGroupID)
	if !complete {
		t.Error("五章全部通过应为 complete")
	}
	accessible, _ := f.svc.Progression.AccessibleChapter(ctx, testGroupID)
	if accessible != workflow.ChapterCount {
		t.Errorf("完成后可访问章节应为 %d，实际=%d", workflow.ChapterCount, accessible)
	}

	p, err := f.svc.Progression.GetProgress(ctx, testGroupID)
	if err != nil {
		t.Fatalf("GetProgress 应成功: %v", err)
	}
	if !p.DiscussionUnlocked || p.TitleStatus != "approved" || len(p.Chapters) != 5 {
		t.Errorf("完成后进度错误: %+v", p)
	}
	for _, ch := range p.Chapters {
		if ch.Status != "approved" {
			t.Errorf("第%d章应为 approved，实际=%s", ch.Chapter, ch.Status)
		}
	}
}

func TestProgressionService_PendingTitleStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, _ = f.svc.Submission.CreateTitle(ctx, testGroupID, testLeadID, &dto.CreateTitleRequest{Title: "x"})

	p, _ := f.svc.Progression.GetProgress(ctx, testGroupID)
	if p.TitleStatus != "pending" {
		t.Errorf("期望 title_status=pending，实际=%s", p.TitleStatus)
	}
}

func TestProgressionService_Errors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.svc.Progression.CanAccess(ctx, testGroupID, 6); !errors.Is(err, workflow.ErrInvalidChapterNumber) {
		t.Errorf("期望 ErrInvalidChapterNumber，实际: %v", err)
	}
	if _, err := f.svc.Progression.GetProgress(ctx, "missing"); !errors.Is(err, workflow.ErrGroupNotFound) {
		t.Errorf("期望 ErrGroupNotFound，实际: %v", err)
	}
}
