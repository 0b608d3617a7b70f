package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"research-approval/backend/internal/model"
	pkgerrors "research-approval/backend/pkg/errors"
)

// SubmissionRepository 提交数据访问接口
type SubmissionRepository interface {
	Create(ctx context.Context, sub *model.Submission) error
	GetByID(ctx context.Context, id string) (*model.Submission, error)
	// GetForUpdate 在事务内对该行加排他锁（SELECT ... FOR UPDATE）
	GetForUpdate(ctx context.Context, id string) (*model.Submission, error)
	// Update 基于 version 的乐观锁更新，失败返回 ErrOptimisticLock
	Update(ctx context.Context, sub *model.Submission) error
	ListByGroup(ctx context.Context, groupID string) ([]model.Submission, error)
	FindPendingTitle(ctx context.Context, groupID string) (*model.Submission, error)
	LatestApprovedTitle(ctx context.Context, groupID string) (*model.Submission, error)
	GetChapter(ctx context.Context, groupID string, chapter int) (*model.Submission, error)
	ListChapters(ctx context.Context, groupID string) ([]model.Submission, error)
}

type submissionRepo struct {
	db *gorm.DB
}

// NewSubmissionRepo 创建 SubmissionRepository 实例
func NewSubmissionRepo(db *gorm.DB) SubmissionRepository {
	return &submissionRepo{db: db}
}

func (r *submissionRepo) Create(ctx context.Context, sub *model.Submission) error {
	return r.db.WithContext(ctx).Create(sub).Error
}

func (r *submissionRepo) GetByID(ctx context.Context, id string) (*model.Submission, error) {
	var sub model.Submission
	err := r.db.WithContext(ctx).
		Where("submission_id = ?", id).
		First(&sub).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *submissionRepo) GetForUpdate(ctx context.Context, id string) (*model.Submission, error) {
	var sub model.Submission
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("submission_id = ?", id).
		First(&sub).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *submissionRepo) Update(ctx context.Context, sub *model.Submission) error {
	oldVersion := sub.Version
	result := r.db.WithContext(ctx).
		Model(&model.Submission{}).
		Where("submission_id = ? AND version = ?", sub.SubmissionID, oldVersion).
		Updates(map[string]interface{}{
			"title":         sub.Title,
			"description":   sub.Description,
			"document_ref":  sub.DocumentRef,
			"status":        sub.Status,
			"cycle":         sub.Cycle,
			"submitted_by":  sub.SubmittedBy,
			"approved_at":   sub.ApprovedAt,
			"rejected_at":   sub.RejectedAt,
			"rejected_by":   sub.RejectedBy,
			"reject_reason": sub.RejectReason,
			"updated_by":    sub.UpdatedBy,
			"updated_at":    gorm.Expr("CURRENT_TIMESTAMP"),
			"version":       oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	sub.Version = oldVersion + 1
	return nil
}

func (r *submissionRepo) ListByGroup(ctx context.Context, groupID string) ([]model.Submission, error) {
	var subs []model.Submission
	err := r.db.WithContext(ctx).
		Where("group_id = ?", groupID).
		Order("kind DESC, chapter_number ASC, created_at ASC").
		Find(&subs).Error
	return subs, err
}

func (r *submissionRepo) FindPendingTitle(ctx context.Context, groupID string) (*model.Submission, error) {
	var sub model.Submission
	err := r.db.WithContext(ctx).
		Where("group_id = ? AND kind = ? AND status = ?", groupID, "title", "pending").
		First(&sub).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *submissionRepo) LatestApprovedTitle(ctx context.Context, groupID string) (*model.Submission, error) {
	var sub model.Submission
	err := r.db.WithContext(ctx).
		Where("group_id = ? AND kind = ? AND status = ?", groupID, "title", "approved").
		Order("approved_at DESC").
		First(&sub).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *submissionRepo) GetChapter(ctx context.Context, groupID string, chapter int) (*model.Submission, error) {
	var sub model.Submission
	err := r.db.WithContext(ctx).
		Where("group_id = ? AND kind = ? AND chapter_number = ?", groupID, "chapter", chapter).
		First(&sub).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *submissionRepo) ListChapters(ctx context.Context, groupID string) ([]model.Submission, error) {
	var subs []model.Submission
	err := r.db.WithContext(ctx).
		Where("group_id = ? AND kind = ?", groupID, "chapter").
		Order("chapter_number ASC").
		Find(&subs).Error
	return subs, err
}
