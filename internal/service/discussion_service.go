package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"research-approval/backend/internal/dto"
	"research-approval/backend/internal/model"
	"research-approval/backend/internal/repository"
	"research-approval/backend/internal/workflow"
)

// DiscussionService 小组讨论区
//
// 第三章通过后才能创建讨论区；讨论区一经创建即持续可用，
// 即便之后章节状态发生变化也不再关闭。
type DiscussionService interface {
	IsUnlocked(ctx context.Context, groupID string) (bool, error)
	// GetOrCreateThread 幂等：已存在则直接返回，否则创建并写入组长与指导教师两名成员
	// 小组未指定指导教师（或指导教师即组长本人）时只写入组长一名成员
	GetOrCreateThread(ctx context.Context, groupID string) (*dto.ThreadResponse, error)
	GetThread(ctx context.Context, threadID string) (*dto.ThreadResponse, error)
	PostMessage(ctx context.Context, threadID, authorID string, req *dto.PostMessageRequest) (*dto.MessageResponse, error)
	ListMessages(ctx context.Context, threadID, viewerID string, req *dto.MessageListRequest) ([]dto.MessageResponse, int64, error)
	// AddParticipant 追加成员，重复添加为幂等操作
	AddParticipant(ctx context.Context, threadID string, req *dto.AddParticipantRequest) (*dto.ThreadResponse, error)
}

type discussionService struct {
	repo     *repository.Repository
	dispatch *dispatcher
	logger   *zap.Logger
}

// NewDiscussionService 创建 DiscussionService 实例
func NewDiscussionService(repo *repository.Repository, dispatch *dispatcher, logger *zap.Logger) DiscussionService {
	return &discussionService{repo: repo, dispatch: dispatch, logger: logger}
}

// ────────────────────── IsUnlocked ──────────────────────

func (s *discussionService) IsUnlocked(ctx context.Context, groupID string) (bool, error) {
	if _, err := loadGroup(ctx, s.repo, groupID); err != nil {
		return false, s.fail("查询小组失败", err, zap.String("group_id", groupID))
	}
	snap, err := loadSnapshot(ctx, s.repo, groupID)
	if err != nil {
		s.logger.Error("装载提交历史失败", zap.String("group_id", groupID), zap.Error(err))
		return false, err
	}
	return snap.history.DiscussionUnlocked(), nil
}

// ────────────────────── GetOrCreateThread ──────────────────────

func (s *discussionService) GetOrCreateThread(ctx context.Context, groupID string) (*dto.ThreadResponse, error) {
	var (
		thread  *model.DiscussionThread
		created bool
	)

	err := runInTx(ctx, s.repo, s.logger, "get_or_create_thread", func(tx *repository.Repository) error {
		thread, created = nil, false

		group, err := loadGroup(ctx, tx, groupID)
		if err != nil {
			return err
		}

		existing, err := tx.Discussion.GetThreadByGroup(ctx, groupID)
		if err == nil {
			thread = existing
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		snap, err := loadSnapshot(ctx, tx, groupID)
		if err != nil {
			return err
		}
		if !snap.history.DiscussionUnlocked() {
			return workflow.ErrDiscussionLocked
		}
		if snap.approvedTitle == nil {
			return workflow.ErrTitleNotApproved
		}

		candidate := &model.DiscussionThread{
			ThreadID:          uuid.NewString(),
			GroupID:           groupID,
			TitleSubmissionID: snap.approvedTitle.SubmissionID,
		}
		// 唯一约束 (group_id) + ON CONFLICT DO NOTHING：并发创建时只有一方写入
		created, err = tx.Discussion.CreateThreadIfAbsent(ctx, candidate)
		if err != nil {
			return err
		}
		if created {
			if err := tx.Discussion.AddParticipants(ctx, seedParticipants(candidate.ThreadID, group)); err != nil {
				return err
			}
		}

		// 竞争失败的一方读回胜者写入的记录
		thread, err = tx.Discussion.GetThreadByGroup(ctx, groupID)
		return err
	})
	if err != nil {
		return nil, s.fail("获取讨论区失败", err, zap.String("group_id", groupID))
	}

	if created {
		s.logger.Info("讨论区已创建",
			zap.String("thread_id", thread.ThreadID),
			zap.String("group_id", groupID),
		)
	}
	return s.threadWithParticipants(ctx, thread)
}

func seedParticipants(threadID string, group *model.Group) []model.DiscussionParticipant {
	seeds := []model.DiscussionParticipant{{
		ThreadID: threadID,
		UserID:   group.LeadID,
		Role:     workflow.ParticipantLead,
	}}
	if group.AdviserID != nil && *group.AdviserID != group.LeadID {
		seeds = append(seeds, model.DiscussionParticipant{
			ThreadID: threadID,
			UserID:   *group.AdviserID,
			Role:     workflow.ParticipantAdviser,
		})
	}
	return seeds
}

// ────────────────────── GetThread ──────────────────────

func (s *discussionService) GetThread(ctx context.Context, threadID string) (*dto.ThreadResponse, error) {
	thread, err := s.loadThread(ctx, threadID)
	if err != nil {
		return nil, err
	}
	return s.threadWithParticipants(ctx, thread)
}

// ────────────────────── PostMessage ──────────────────────

func (s *discussionService) PostMessage(ctx context.Context, threadID, authorID string, req *dto.PostMessageRequest) (*dto.MessageResponse, error) {
	if _, err := s.loadThread(ctx, threadID); err != nil {
		return nil, err
	}
	if err := s.requireParticipant(ctx, threadID, authorID); err != nil {
		return nil, err
	}

	msg := &model.DiscussionMessage{
		MessageID:     uuid.NewString(),
		ThreadID:      threadID,
		AuthorID:      authorID,
		Body:          req.Body,
		AttachmentRef: req.AttachmentRef,
	}
	if err := s.repo.Discussion.CreateMessage(ctx, msg); err != nil {
		s.logger.Error("发表讨论消息失败", zap.String("thread_id", threadID), zap.Error(err))
		return nil, err
	}

	participants, err := s.repo.Discussion.ListParticipants(ctx, threadID)
	if err != nil {
		s.logger.Warn("查询讨论区成员失败，跳过通知", zap.String("thread_id", threadID), zap.Error(err))
	}
	msgs := make([]Message, 0, len(participants))
	for _, p := range participants {
		if p.UserID == authorID {
			continue
		}
		msgs = append(msgs, Message{
			RecipientID: p.UserID,
			Type:        NotifyDiscussionMessage,
			Title:       "讨论区有新消息",
			Body:        fmt.Sprintf("讨论区有一条新消息：%s", preview(req.Body)),
			ContextType: workflow.ContextDiscussion,
			ContextID:   threadID,
		})
	}
	s.dispatch.send(ctx, msgs...)

	resp := toMessageResponse(msg)
	return &resp, nil
}

// ────────────────────── ListMessages ──────────────────────

func (s *discussionService) ListMessages(ctx context.Context, threadID, viewerID string, req *dto.MessageListRequest) ([]dto.MessageResponse, int64, error) {
	if _, err := s.loadThread(ctx, threadID); err != nil {
		return nil, 0, err
	}
	if err := s.requireParticipant(ctx, threadID, viewerID); err != nil {
		return nil, 0, err
	}

	list, total, err := s.repo.Discussion.ListMessages(ctx, threadID, req.Offset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("查询讨论消息失败", zap.String("thread_id", threadID), zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.MessageResponse, 0, len(list))
	for i := range list {
		result = append(result, toMessageResponse(&list[i]))
	}
	return result, total, nil
}

// ────────────────────── AddParticipant ──────────────────────

func (s *discussionService) AddParticipant(ctx context.Context, threadID string, req *dto.AddParticipantRequest) (*dto.ThreadResponse, error) {
	thread, err := s.loadThread(ctx, threadID)
	if err != nil {
		return nil, err
	}

	if _, err := s.repo.User.GetByID(ctx, req.UserID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("查询用户失败", zap.String("user_id", req.UserID), zap.Error(err))
		return nil, err
	}

	err = s.repo.Discussion.AddParticipants(ctx, []model.DiscussionParticipant{{
		ThreadID: threadID,
		UserID:   req.UserID,
		Role:     req.Role,
	}})
	if err != nil {
		s.logger.Error("添加讨论区成员失败", zap.String("thread_id", threadID), zap.Error(err))
		return nil, err
	}
	return s.threadWithParticipants(ctx, thread)
}

// ── 内部方法 ──

func (s *discussionService) loadThread(ctx context.Context, threadID string) (*model.DiscussionThread, error) {
	thread, err := s.repo.Discussion.GetThread(ctx, threadID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, workflow.ErrThreadNotFound
		}
		s.logger.Error("查询讨论区失败", zap.String("thread_id", threadID), zap.Error(err))
		return nil, err
	}
	return thread, nil
}

func (s *discussionService) requireParticipant(ctx context.Context, threadID, userID string) error {
	ok, err := s.repo.Discussion.IsParticipant(ctx, threadID, userID)
	if err != nil {
		s.logger.Error("查询讨论区成员失败", zap.String("thread_id", threadID), zap.Error(err))
		return err
	}
	if !ok {
		return workflow.ErrNotParticipant
	}
	return nil
}

func (s *discussionService) threadWithParticipants(ctx context.Context, thread *model.DiscussionThread) (*dto.ThreadResponse, error) {
	participants, err := s.repo.Discussion.ListParticipants(ctx, thread.ThreadID)
	if err != nil {
		s.logger.Error("查询讨论区成员失败", zap.String("thread_id", thread.ThreadID), zap.Error(err))
		return nil, err
	}
	thread.Participants = participants
	return toThreadResponse(thread), nil
}

func (s *discussionService) fail(msg string, err error, fields ...zap.Field) error {
	if workflow.CodeOf(err) == "" {
		s.logger.Error(msg, append(fields, zap.Error(err))...)
	}
	return err
}

// preview 截取消息前 50 个字符用于通知
func preview(body string) string {
	r := []rune(body)
	if len(r) <= 50 {
		return body
	}
	return string(r[:50]) + "…"
}
