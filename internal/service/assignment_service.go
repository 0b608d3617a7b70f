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

// AssignmentService 评审组管理（管理员操作）
// 评审组变化后立即重新计票：法定人数随当前评审组变化
type AssignmentService interface {
	Assign(ctx context.Context, submissionID, reviewerID, adminID string) (*dto.AssignmentResponse, error)
	// Deactivate 停用评审人，保留其已提交的意见；重复停用为幂等操作
	Deactivate(ctx context.Context, assignmentID, adminID string) (*dto.AssignmentResponse, error)
	ListBySubmission(ctx context.Context, submissionID string) ([]dto.AssignmentResponse, error)
}

type assignmentService struct {
	repo     *repository.Repository
	dispatch *dispatcher
	logger   *zap.Logger
	now      func() time.Time
}

// NewAssignmentService 创建 AssignmentService 实例
func NewAssignmentService(repo *repository.Repository, dispatch *dispatcher, logger *zap.Logger) AssignmentService {
	return &assignmentService{repo: repo, dispatch: dispatch, logger: logger, now: time.Now}
}

// ────────────────────── Assign ──────────────────────

func (s *assignmentService) Assign(ctx context.Context, submissionID, reviewerID, adminID string) (*dto.AssignmentResponse, error) {
	var (
		assignment   *model.ReviewerAssignment
		sub          *model.Submission
		transitioned bool
		leadID       string
	)

	err := runInTx(ctx, s.repo, s.logger, "assign_reviewer", func(tx *repository.Repository) error {
		transitioned, leadID = false, ""

		var err error
		sub, err = lockSubmission(ctx, tx, submissionID)
		if err != nil {
			return err
		}

		if _, err := tx.User.GetByID(ctx, reviewerID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return err
		}

		existing, err := tx.Assignment.GetBySubmissionAndReviewer(ctx, submissionID, reviewerID)
		switch {
		case err == nil && existing.IsActive:
			return workflow.ErrAssignmentExists
		case err == nil:
			// 曾被停用的评审人重新加入
			existing.IsActive = true
			existing.DeactivatedAt = nil
			existing.UpdatedBy = &adminID
			if err := tx.Assignment.SetActive(ctx, existing); err != nil {
				return err
			}
			assignment = existing
		case errors.Is(err, gorm.ErrRecordNotFound):
			assignment = &model.ReviewerAssignment{
				SubmissionID: submissionID,
				ReviewerID:   reviewerID,
				IsActive:     true,
			}
			assignment.CreatedBy = &adminID
			assignment.UpdatedBy = &adminID
			if err := tx.Assignment.Create(ctx, assignment); err != nil {
				return err
			}
		default:
			return err
		}

		_, transitioned, err = reaggregate(ctx, tx, sub, adminID, s.now())
		if err != nil {
			return err
		}
		if transitioned {
			leadID, err = groupLead(ctx, tx, sub.GroupID)
		}
		return err
	})
	if err != nil {
		if workflow.CodeOf(err) == "" && !errors.Is(err, ErrUserNotFound) {
			s.logger.Error("分配评审人失败",
				zap.String("submission_id", submissionID),
				zap.String("reviewer_id", reviewerID),
				zap.Error(err),
			)
		}
		return nil, err
	}

	s.logger.Info("评审人已分配",
		zap.String("submission_id", submissionID),
		zap.String("reviewer_id", reviewerID),
		zap.Bool("transitioned", transitioned),
	)

	msgs := []Message{{
		RecipientID: reviewerID,
		Type:        NotifyReviewerAssigned,
		Title:       "您有新的评审任务",
		Body:        fmt.Sprintf("您已被分配评审%s「%s」。", describe(sub), sub.Title),
		ContextType: workflow.ContextSubmission,
		ContextID:   submissionID,
	}}
	if transitioned {
		msgs = append(msgs, approvedMessage(leadID, sub))
	}
	s.dispatch.send(ctx, msgs...)

	return toAssignmentResponse(assignment), nil
}

// ────────────────────── Deactivate ──────────────────────

func (s *assignmentService) Deactivate(ctx context.Context, assignmentID, adminID string) (*dto.AssignmentResponse, error) {
	var (
		assignment   *model.ReviewerAssignment
		sub          *model.Submission
		transitioned bool
		leadID       string
	)

	err := runInTx(ctx, s.repo, s.logger, "deactivate_reviewer", func(tx *repository.Repository) error {
		transitioned, leadID = false, ""

		var err error
		assignment, err = tx.Assignment.GetByID(ctx, assignmentID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return workflow.ErrAssignmentNotFound
			}
			return err
		}
		if !assignment.IsActive {
			return nil
		}

		sub, err = lockSubmission(ctx, tx, assignment.SubmissionID)
		if err != nil {
			return err
		}

		now := s.now()
		assignment.IsActive = false
		assignment.DeactivatedAt = &now
		assignment.UpdatedBy = &adminID
		if err := tx.Assignment.SetActive(ctx, assignment); err != nil {
			return err
		}

		// 评审组缩小后所需通过数可能下降
		_, transitioned, err = reaggregate(ctx, tx, sub, adminID, now)
		if err != nil {
			return err
		}
		if transitioned {
			leadID, err = groupLead(ctx, tx, sub.GroupID)
		}
		return err
	})
	if err != nil {
		if workflow.CodeOf(err) == "" {
			s.logger.Error("停用评审人失败", zap.String("assignment_id", assignmentID), zap.Error(err))
		}
		return nil, err
	}

	if transitioned {
		s.dispatch.send(ctx, approvedMessage(leadID, sub))
	}
	return toAssignmentResponse(assignment), nil
}

// ────────────────────── ListBySubmission ──────────────────────

func (s *assignmentService) ListBySubmission(ctx context.Context, submissionID string) ([]dto.AssignmentResponse, error) {
	if _, err := s.repo.Submission.GetByID(ctx, submissionID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, workflow.ErrSubmissionNotFound
		}
		s.logger.Error("查询提交失败", zap.String("submission_id", submissionID), zap.Error(err))
		return nil, err
	}

	list, err := s.repo.Assignment.ListBySubmission(ctx, submissionID)
	if err != nil {
		s.logger.Error("查询评审分配失败", zap.String("submission_id", submissionID), zap.Error(err))
		return nil, err
	}

	result := make([]dto.AssignmentResponse, 0, len(list))
	for i := range list {
		result = append(result, *toAssignmentResponse(&list[i]))
	}
	return result, nil
}
