package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"research-approval/backend/internal/dto"
	"research-approval/backend/internal/model"
	"research-approval/backend/internal/repository"
	"research-approval/backend/internal/workflow"
)

// SubmissionService 题目与章节提交的生命周期
//
// 每个写操作都在单个事务内完成「读状态 → 校验 → 写入」，校验失败时不写任何数据；
// 通知在事务提交后投递，投递失败不影响已提交的状态。
type SubmissionService interface {
	// CreateTitle 提交题目；同组已有审阅中的题目时返回 ErrDuplicateActiveSubmission
	CreateTitle(ctx context.Context, groupID, submittedBy string, req *dto.CreateTitleRequest) (*dto.SubmissionResponse, error)
	// CreateOrResubmitChapter 新建章节，或对被驳回的章节原地重新提交
	CreateOrResubmitChapter(ctx context.Context, groupID string, chapter int, submittedBy string, req *dto.SubmitChapterRequest) (*dto.SubmissionResponse, error)
	// RecordReview 记录（或覆盖）评审意见并重新计票
	RecordReview(ctx context.Context, submissionID, reviewerID string, req *dto.RecordReviewRequest) (*dto.ReviewOutcomeResponse, error)
	// Reject 管理员驳回审阅中的提交
	Reject(ctx context.Context, submissionID, adminID string, req *dto.RejectSubmissionRequest) (*dto.SubmissionResponse, error)
	Get(ctx context.Context, submissionID string) (*dto.SubmissionResponse, error)
	ListByGroup(ctx context.Context, groupID string) ([]dto.SubmissionResponse, error)
	// ListReviews 全部评审意见，含往轮
	ListReviews(ctx context.Context, submissionID string) ([]dto.ReviewResponse, error)
}

type submissionService struct {
	repo         *repository.Repository
	dispatch     *dispatcher
	coordinators []string
	logger       *zap.Logger
	now          func() time.Time
}

// NewSubmissionService 创建 SubmissionService 实例
// coordinators 为接收「请分配评审人」通知的管理员
func NewSubmissionService(repo *repository.Repository, dispatch *dispatcher, coordinators []string, logger *zap.Logger) SubmissionService {
	return &submissionService{
		repo:         repo,
		dispatch:     dispatch,
		coordinators: coordinators,
		logger:       logger,
		now:          time.Now,
	}
}

// ────────────────────── CreateTitle ──────────────────────

func (s *submissionService) CreateTitle(ctx context.Context, groupID, submittedBy string, req *dto.CreateTitleRequest) (*dto.SubmissionResponse, error) {
	var sub *model.Submission

	err := runInTx(ctx, s.repo, s.logger, "create_title", func(tx *repository.Repository) error {
		sub = nil
		if _, err := loadGroup(ctx, tx, groupID); err != nil {
			return err
		}

		_, err := tx.Submission.FindPendingTitle(ctx, groupID)
		if err == nil {
			return workflow.ErrDuplicateActiveSubmission
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		sub = &model.Submission{
			GroupID:     groupID,
			Kind:        string(workflow.KindTitle),
			Title:       req.Title,
			Description: req.Description,
			DocumentRef: req.DocumentRef,
			Status:      string(workflow.StatusPending),
			Cycle:       1,
			SubmittedBy: submittedBy,
		}
		sub.CreatedBy = &submittedBy
		sub.UpdatedBy = &submittedBy
		return tx.Submission.Create(ctx, sub)
	})
	if err != nil {
		return nil, s.fail("提交题目失败", err, zap.String("group_id", groupID))
	}

	s.logger.Info("题目已提交",
		zap.String("submission_id", sub.SubmissionID),
		zap.String("group_id", groupID),
	)

	msgs := make([]Message, 0, len(s.coordinators))
	for _, id := range s.coordinators {
		msgs = append(msgs, Message{
			RecipientID: id,
			Type:        NotifyAssignReviewers,
			Title:       "新题目待分配评审人",
			Body:        fmt.Sprintf("题目「%s」已提交，请为其分配评审人。", sub.Title),
			ContextType: workflow.ContextSubmission,
			ContextID:   sub.SubmissionID,
		})
	}
	s.dispatch.send(ctx, msgs...)

	tally := workflow.Count(0, nil)
	return toSubmissionResponse(sub, &tally), nil
}

// ────────────────────── CreateOrResubmitChapter ──────────────────────

func (s *submissionService) CreateOrResubmitChapter(ctx context.Context, groupID string, chapter int, submittedBy string, req *dto.SubmitChapterRequest) (*dto.SubmissionResponse, error) {
	if !workflow.ValidChapter(chapter) {
		return nil, workflow.ErrInvalidChapterNumber
	}

	var (
		sub         *model.Submission
		group       *model.Group
		resubmitted bool
	)

	err := runInTx(ctx, s.repo, s.logger, "submit_chapter", func(tx *repository.Repository) error {
		sub, resubmitted = nil, false

		var err error
		group, err = loadGroup(ctx, tx, groupID)
		if err != nil {
			return err
		}

		snap, err := loadSnapshot(ctx, tx, groupID)
		if err != nil {
			return err
		}
		if err := snap.history.CheckChapterSubmittable(chapter); err != nil {
			return err
		}

		title := req.Title
		if title == "" {
			title = fmt.Sprintf("第%d章", chapter)
		}
		doc := req.DocumentRef

		// 被驳回的章节：原地重置为 pending，保留 ID 与历史评审
		if existing, ok := snap.chapters[chapter]; ok {
			existing.Title = title
			existing.Description = req.Description
			existing.DocumentRef = &doc
			existing.Status = string(workflow.StatusPending)
			existing.Cycle++
			existing.SubmittedBy = submittedBy
			existing.ApprovedAt = nil
			existing.RejectedAt = nil
			existing.RejectedBy = nil
			existing.RejectReason = ""
			existing.UpdatedBy = &submittedBy
			if err := tx.Submission.Update(ctx, existing); err != nil {
				return err
			}
			sub, resubmitted = existing, true
			return nil
		}

		n := chapter
		sub = &model.Submission{
			GroupID:       groupID,
			Kind:          string(workflow.KindChapter),
			ChapterNumber: &n,
			Title:         title,
			Description:   req.Description,
			DocumentRef:   &doc,
			Status:        string(workflow.StatusPending),
			Cycle:         1,
			SubmittedBy:   submittedBy,
		}
		sub.CreatedBy = &submittedBy
		sub.UpdatedBy = &submittedBy
		return tx.Submission.Create(ctx, sub)
	})
	if err != nil {
		return nil, s.fail("提交章节失败", err, zap.String("group_id", groupID), zap.Int("chapter", chapter))
	}

	s.logger.Info("章节已提交",
		zap.String("submission_id", sub.SubmissionID),
		zap.Int("chapter", chapter),
		zap.Int("cycle", sub.Cycle),
		zap.Bool("resubmitted", resubmitted),
	)

	if group.AdviserID != nil {
		msg := Message{
			RecipientID: *group.AdviserID,
			Type:        NotifyChapterSubmitted,
			Title:       fmt.Sprintf("第%d章已提交", chapter),
			Body:        fmt.Sprintf("小组提交了第%d章「%s」，等待审阅。", chapter, sub.Title),
			ContextType: workflow.ContextSubmission,
			ContextID:   sub.SubmissionID,
		}
		if resubmitted {
			msg.Type = NotifyChapterResubmitted
			msg.Title = fmt.Sprintf("第%d章已重新提交", chapter)
			msg.Body = fmt.Sprintf("小组重新提交了第%d章「%s」（第 %d 轮），等待审阅。", chapter, sub.Title, sub.Cycle)
		}
		s.dispatch.send(ctx, msg)
	}

	tally, err := countTally(ctx, s.repo, sub)
	if err != nil {
		s.logger.Error("计票失败", zap.String("submission_id", sub.SubmissionID), zap.Error(err))
		return toSubmissionResponse(sub, nil), nil
	}
	return toSubmissionResponse(sub, &tally), nil
}

// ────────────────────── RecordReview ──────────────────────

func (s *submissionService) RecordReview(ctx context.Context, submissionID, reviewerID string, req *dto.RecordReviewRequest) (*dto.ReviewOutcomeResponse, error) {
	decision := workflow.Decision(req.Decision)
	if !decision.Valid() {
		return nil, workflow.ErrInvalidDecision
	}

	var (
		sub          *model.Submission
		review       *model.Review
		tally        workflow.Tally
		transitioned bool
		leadID       string
	)

	err := runInTx(ctx, s.repo, s.logger, "record_review", func(tx *repository.Repository) error {
		transitioned, leadID = false, ""

		var err error
		// 行锁串行化同一提交上的并发评审
		sub, err = lockSubmission(ctx, tx, submissionID)
		if err != nil {
			return err
		}

		a, err := tx.Assignment.GetBySubmissionAndReviewer(ctx, submissionID, reviewerID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return workflow.ErrNotAssigned
			}
			return err
		}
		if !a.IsActive {
			return workflow.ErrNotAssigned
		}
		if workflow.Status(sub.Status).Terminal() {
			return workflow.ErrAlreadyTerminal
		}

		now := s.now()
		review = &model.Review{
			SubmissionID: submissionID,
			ReviewerID:   reviewerID,
			Cycle:        sub.Cycle,
			Decision:     string(decision),
			Comments:     req.Comments,
			ReviewedAt:   now,
		}
		review.CreatedBy = &reviewerID
		review.UpdatedBy = &reviewerID
		review.UpdatedAt = now
		if err := tx.Review.Upsert(ctx, review); err != nil {
			return err
		}

		tally, transitioned, err = reaggregate(ctx, tx, sub, reviewerID, now)
		if err != nil {
			return err
		}
		if transitioned {
			leadID, err = groupLead(ctx, tx, sub.GroupID)
		}
		return err
	})
	if err != nil {
		return nil, s.fail("记录评审意见失败", err,
			zap.String("submission_id", submissionID),
			zap.String("reviewer_id", reviewerID),
		)
	}

	s.logger.Info("评审意见已记录",
		zap.String("submission_id", submissionID),
		zap.String("reviewer_id", reviewerID),
		zap.String("decision", string(decision)),
		zap.Int("approvals", tally.Approvals),
		zap.Int("required", tally.Required),
		zap.Bool("transitioned", transitioned),
	)

	if transitioned {
		s.dispatch.send(ctx, approvedMessage(leadID, sub))
	}

	return &dto.ReviewOutcomeResponse{
		Review:       toReviewResponse(review),
		Submission:   *toSubmissionResponse(sub, &tally),
		Transitioned: transitioned,
	}, nil
}

// ────────────────────── Reject ──────────────────────

func (s *submissionService) Reject(ctx context.Context, submissionID, adminID string, req *dto.RejectSubmissionRequest) (*dto.SubmissionResponse, error) {
	var (
		sub    *model.Submission
		leadID string
	)

	err := runInTx(ctx, s.repo, s.logger, "reject_submission", func(tx *repository.Repository) error {
		var err error
		sub, err = lockSubmission(ctx, tx, submissionID)
		if err != nil {
			return err
		}
		if workflow.Status(sub.Status).Terminal() {
			return workflow.ErrAlreadyTerminal
		}

		now := s.now()
		sub.Status = string(workflow.StatusRejected)
		sub.RejectedAt = &now
		sub.RejectedBy = &adminID
		sub.RejectReason = req.Reason
		sub.UpdatedBy = &adminID
		if err := tx.Submission.Update(ctx, sub); err != nil {
			return err
		}

		leadID, err = groupLead(ctx, tx, sub.GroupID)
		return err
	})
	if err != nil {
		return nil, s.fail("驳回提交失败", err, zap.String("submission_id", submissionID))
	}

	s.logger.Info("提交已驳回",
		zap.String("submission_id", submissionID),
		zap.String("admin_id", adminID),
	)

	s.dispatch.send(ctx, Message{
		RecipientID: leadID,
		Type:        NotifySubmissionRejected,
		Title:       fmt.Sprintf("%s已被驳回", describe(sub)),
		Body:        fmt.Sprintf("%s「%s」被驳回：%s", describe(sub), sub.Title, req.Reason),
		ContextType: workflow.ContextSubmission,
		ContextID:   sub.SubmissionID,
	})

	return s.withTally(ctx, sub), nil
}

// ────────────────────── Get / ListByGroup / ListReviews ──────────────────────

func (s *submissionService) Get(ctx context.Context, submissionID string) (*dto.SubmissionResponse, error) {
	sub, err := s.repo.Submission.GetByID(ctx, submissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, workflow.ErrSubmissionNotFound
		}
		s.logger.Error("查询提交失败", zap.String("submission_id", submissionID), zap.Error(err))
		return nil, err
	}
	return s.withTally(ctx, sub), nil
}

func (s *submissionService) ListByGroup(ctx context.Context, groupID string) ([]dto.SubmissionResponse, error) {
	if _, err := loadGroup(ctx, s.repo, groupID); err != nil {
		return nil, s.fail("查询小组失败", err, zap.String("group_id", groupID))
	}

	subs, err := s.repo.Submission.ListByGroup(ctx, groupID)
	if err != nil {
		s.logger.Error("查询提交列表失败", zap.String("group_id", groupID), zap.Error(err))
		return nil, err
	}

	result := make([]dto.SubmissionResponse, 0, len(subs))
	for i := range subs {
		result = append(result, *s.withTally(ctx, &subs[i]))
	}
	return result, nil
}

func (s *submissionService) ListReviews(ctx context.Context, submissionID string) ([]dto.ReviewResponse, error) {
	if _, err := s.repo.Submission.GetByID(ctx, submissionID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, workflow.ErrSubmissionNotFound
		}
		s.logger.Error("查询提交失败", zap.String("submission_id", submissionID), zap.Error(err))
		return nil, err
	}

	reviews, err := s.repo.Review.ListBySubmission(ctx, submissionID)
	if err != nil {
		s.logger.Error("查询评审意见失败", zap.String("submission_id", submissionID), zap.Error(err))
		return nil, err
	}

	result := make([]dto.ReviewResponse, 0, len(reviews))
	for i := range reviews {
		result = append(result, toReviewResponse(&reviews[i]))
	}
	return result, nil
}

// ── 内部方法 ──

func (s *submissionService) withTally(ctx context.Context, sub *model.Submission) *dto.SubmissionResponse {
	tally, err := countTally(ctx, s.repo, sub)
	if err != nil {
		s.logger.Warn("计票失败", zap.String("submission_id", sub.SubmissionID), zap.Error(err))
		return toSubmissionResponse(sub, nil)
	}
	return toSubmissionResponse(sub, &tally)
}

// fail 流程错误原样返回，其余错误记录日志
func (s *submissionService) fail(msg string, err error, fields ...zap.Field) error {
	if workflow.CodeOf(err) == "" {
		s.logger.Error(msg, append(fields, zap.Error(err))...)
	}
	return err
}

// ── 与评审分配共用的辅助函数 ──

func lockSubmission(ctx context.Context, tx *repository.Repository, submissionID string) (*model.Submission, error) {
	sub, err := tx.Submission.GetForUpdate(ctx, submissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, workflow.ErrSubmissionNotFound
		}
		return nil, err
	}
	return sub, nil
}

// countTally 按当前评审组与本轮意见计票
func countTally(ctx context.Context, r *repository.Repository, sub *model.Submission) (workflow.Tally, error) {
	active, err := r.Assignment.CountActive(ctx, sub.SubmissionID)
	if err != nil {
		return workflow.Tally{}, err
	}
	reviews, err := r.Review.ListByCycle(ctx, sub.SubmissionID, sub.Cycle)
	if err != nil {
		return workflow.Tally{}, err
	}
	decisions := make([]workflow.Decision, 0, len(reviews))
	for _, rv := range reviews {
		decisions = append(decisions, workflow.Decision(rv.Decision))
	}
	return workflow.Count(active, decisions), nil
}

// reaggregate 重新计票，满足法定人数时把 pending 提升为 approved
// 调用方须已持有该提交的行锁
// 通过时间只在首次迁移时写入
func reaggregate(ctx context.Context, tx *repository.Repository, sub *model.Submission, actorID string, now time.Time) (workflow.Tally, bool, error) {
	tally, err := countTally(ctx, tx, sub)
	if err != nil {
		return workflow.Tally{}, false, err
	}

	current := workflow.Status(sub.Status)
	next := current
	if current == workflow.StatusPending && tally.Met() {
		next = workflow.StatusApproved
	}
	if next == current {
		return tally, false, nil
	}

	sub.Status = string(next)
	if sub.ApprovedAt == nil {
		sub.ApprovedAt = &now
	}
	if actorID != "" {
		sub.UpdatedBy = &actorID
	}
	if err := tx.Submission.Update(ctx, sub); err != nil {
		return workflow.Tally{}, false, err
	}
	return tally, true, nil
}

func groupLead(ctx context.Context, r *repository.Repository, groupID string) (string, error) {
	group, err := loadGroup(ctx, r, groupID)
	if err != nil {
		return "", err
	}
	return group.LeadID, nil
}

func describe(sub *model.Submission) string {
	if sub.Kind == string(workflow.KindChapter) && sub.ChapterNumber != nil {
		return fmt.Sprintf("第%d章", *sub.ChapterNumber)
	}
	return "题目"
}

func approvedMessage(leadID string, sub *model.Submission) Message {
	return Message{
		RecipientID: leadID,
		Type:        NotifySubmissionApproved,
		Title:       fmt.Sprintf("%s已通过", describe(sub)),
		Body:        fmt.Sprintf("%s「%s」已获评审组通过。", describe(sub), sub.Title),
		ContextType: workflow.ContextSubmission,
		ContextID:   sub.SubmissionID,
	}
}
