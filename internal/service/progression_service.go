package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"research-approval/backend/internal/dto"
	"research-approval/backend/internal/model"
	"research-approval/backend/internal/repository"
	"research-approval/backend/internal/workflow"
)

// ProgressionService 章节逐级解锁查询
type ProgressionService interface {
	// AccessibleChapter 用于跳转的章节号，取值 [1,5]
	AccessibleChapter(ctx context.Context, groupID string) (int, error)
	CanAccess(ctx context.Context, groupID string, chapter int) (bool, error)
	// CurrentChapter 第一个未通过的章节；全部通过时 complete=true
	CurrentChapter(ctx context.Context, groupID string) (chapter int, complete bool, err error)
	GetProgress(ctx context.Context, groupID string) (*dto.ProgressResponse, error)
}

type progressionService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewProgressionService 创建 ProgressionService 实例
func NewProgressionService(repo *repository.Repository, logger *zap.Logger) ProgressionService {
	return &progressionService{repo: repo, logger: logger}
}

// groupSnapshot 小组提交历史，供各模块在同一事务内判定
type groupSnapshot struct {
	history       workflow.History
	approvedTitle *model.Submission
	chapters      map[int]*model.Submission
}

// loadGroup 查询小组，不存在时返回 ErrGroupNotFound
func loadGroup(ctx context.Context, r *repository.Repository, groupID string) (*model.Group, error) {
	group, err := r.Group.GetByID(ctx, groupID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, workflow.ErrGroupNotFound
		}
		return nil, err
	}
	return group, nil
}

// loadSnapshot 装载最近通过的题目与全部章节
func loadSnapshot(ctx context.Context, r *repository.Repository, groupID string) (*groupSnapshot, error) {
	snap := &groupSnapshot{
		history:  workflow.History{Chapters: make(map[int]workflow.Status)},
		chapters: make(map[int]*model.Submission),
	}

	title, err := r.Submission.LatestApprovedTitle(ctx, groupID)
	switch {
	case err == nil:
		snap.approvedTitle = title
		snap.history.TitleApproved = true
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, err
	}

	chapters, err := r.Submission.ListChapters(ctx, groupID)
	if err != nil {
		return nil, err
	}
	for i := range chapters {
		ch := &chapters[i]
		if ch.ChapterNumber == nil {
			continue
		}
		snap.chapters[*ch.ChapterNumber] = ch
		snap.history.Chapters[*ch.ChapterNumber] = workflow.Status(ch.Status)
	}
	return snap, nil
}

func (s *progressionService) history(ctx context.Context, groupID string) (*groupSnapshot, error) {
	if _, err := loadGroup(ctx, s.repo, groupID); err != nil {
		if !errors.Is(err, workflow.ErrGroupNotFound) {
			s.logger.Error("查询小组失败", zap.String("group_id", groupID), zap.Error(err))
		}
		return nil, err
	}
	snap, err := loadSnapshot(ctx, s.repo, groupID)
	if err != nil {
		s.logger.Error("装载提交历史失败", zap.String("group_id", groupID), zap.Error(err))
		return nil, err
	}
	return snap, nil
}

// ────────────────────── AccessibleChapter ──────────────────────

func (s *progressionService) AccessibleChapter(ctx context.Context, groupID string) (int, error) {
	snap, err := s.history(ctx, groupID)
	if err != nil {
		return 0, err
	}
	return snap.history.AccessibleChapter(), nil
}

// ────────────────────── CanAccess ──────────────────────

func (s *progressionService) CanAccess(ctx context.Context, groupID string, chapter int) (bool, error) {
	if !workflow.ValidChapter(chapter) {
		return false, workflow.ErrInvalidChapterNumber
	}
	snap, err := s.history(ctx, groupID)
	if err != nil {
		return false, err
	}
	return snap.history.CanAccess(chapter), nil
}

// ────────────────────── CurrentChapter ──────────────────────

func (s *progressionService) CurrentChapter(ctx context.Context, groupID string) (int, bool, error) {
	snap, err := s.history(ctx, groupID)
	if err != nil {
		return 0, false, err
	}
	chapter, complete := snap.history.CurrentChapter()
	return chapter, complete, nil
}

// ────────────────────── GetProgress ──────────────────────

func (s *progressionService) GetProgress(ctx context.Context, groupID string) (*dto.ProgressResponse, error) {
	snap, err := s.history(ctx, groupID)
	if err != nil {
		return nil, err
	}

	titleStatus, err := s.titleStatus(ctx, groupID, snap)
	if err != nil {
		return nil, err
	}

	resp := buildProgress(groupID, titleStatus, snap)

	thread, err := s.repo.Discussion.GetThreadByGroup(ctx, groupID)
	switch {
	case err == nil:
		resp.DiscussionThreadID = thread.ThreadID
	case !errors.Is(err, gorm.ErrRecordNotFound):
		s.logger.Error("查询讨论区失败", zap.String("group_id", groupID), zap.Error(err))
		return nil, err
	}
	return resp, nil
}

// titleStatus 有通过的题目即为 approved，否则取审阅中，再否则取驳回
func (s *progressionService) titleStatus(ctx context.Context, groupID string, snap *groupSnapshot) (string, error) {
	if snap.approvedTitle != nil {
		return string(workflow.StatusApproved), nil
	}
	_, err := s.repo.Submission.FindPendingTitle(ctx, groupID)
	if err == nil {
		return string(workflow.StatusPending), nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询待审题目失败", zap.String("group_id", groupID), zap.Error(err))
		return "", err
	}
	subs, err := s.repo.Submission.ListByGroup(ctx, groupID)
	if err != nil {
		s.logger.Error("查询提交列表失败", zap.String("group_id", groupID), zap.Error(err))
		return "", err
	}
	for _, sub := range subs {
		if sub.Kind == string(workflow.KindTitle) {
			return string(workflow.StatusRejected), nil
		}
	}
	return "none", nil
}

// buildProgress 由快照生成进度视图，导出报表复用
func buildProgress(groupID, titleStatus string, snap *groupSnapshot) *dto.ProgressResponse {
	current, complete := snap.history.CurrentChapter()
	resp := &dto.ProgressResponse{
		GroupID:            groupID,
		TitleStatus:        titleStatus,
		Chapters:           make([]dto.ChapterProgress, 0, workflow.ChapterCount),
		CurrentChapter:     current,
		AccessibleChapter:  snap.history.AccessibleChapter(),
		Complete:           complete,
		DiscussionUnlocked: snap.history.DiscussionUnlocked(),
	}
	if snap.approvedTitle != nil {
		resp.ApprovedTitleID = snap.approvedTitle.SubmissionID
	}
	for i := 1; i <= workflow.ChapterCount; i++ {
		cp := dto.ChapterProgress{
			Chapter:    i,
			Status:     "not_submitted",
			Accessible: snap.history.CanAccess(i),
		}
		if sub, ok := snap.chapters[i]; ok {
			cp.SubmissionID = sub.SubmissionID
			cp.Status = sub.Status
		}
		resp.Chapters = append(resp.Chapters, cp)
	}
	return resp
}
