package repository

import (
	"context"

	"gorm.io/gorm"

	"research-approval/backend/internal/model"
)

// AssignmentRepository 评审分配数据访问接口
type AssignmentRepository interface {
	Create(ctx context.Context, a *model.ReviewerAssignment) error
	GetByID(ctx context.Context, id string) (*model.ReviewerAssignment, error)
	GetBySubmissionAndReviewer(ctx context.Context, submissionID, reviewerID string) (*model.ReviewerAssignment, error)
	ListBySubmission(ctx context.Context, submissionID string) ([]model.ReviewerAssignment, error)
	CountActive(ctx context.Context, submissionID string) (int, error)
	SetActive(ctx context.Context, a *model.ReviewerAssignment) error
}

type assignmentRepo struct {
	db *gorm.DB
}

// NewAssignmentRepo 创建 AssignmentRepository 实例
func NewAssignmentRepo(db *gorm.DB) AssignmentRepository {
	return &assignmentRepo{db: db}
}

func (r *assignmentRepo) Create(ctx context.Context, a *model.ReviewerAssignment) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *assignmentRepo) GetByID(ctx context.Context, id string) (*model.ReviewerAssignment, error) {
	var a model.ReviewerAssignment
	err := r.db.WithContext(ctx).
		Where("assignment_id = ?", id).
		First(&a).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *assignmentRepo) GetBySubmissionAndReviewer(ctx context.Context, submissionID, reviewerID string) (*model.ReviewerAssignment, error) {
	var a model.ReviewerAssignment
	err := r.db.WithContext(ctx).
		Where("submission_id = ? AND reviewer_id = ?", submissionID, reviewerID).
		First(&a).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *assignmentRepo) ListBySubmission(ctx context.Context, submissionID string) ([]model.ReviewerAssignment, error) {
	var list []model.ReviewerAssignment
	err := r.db.WithContext(ctx).
		Preload("Reviewer").
		Where("submission_id = ?", submissionID).
		Order("created_at ASC").
		Find(&list).Error
	return list, err
}

func (r *assignmentRepo) CountActive(ctx context.Context, submissionID string) (int, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&model.ReviewerAssignment{}).
		Where("submission_id = ? AND is_active = ?", submissionID, true).
		Count(&n).Error
	return int(n), err
}

// SetActive 仅更新激活状态相关字段
func (r *assignmentRepo) SetActive(ctx context.Context, a *model.ReviewerAssignment) error {
	return r.db.WithContext(ctx).
		Model(&model.ReviewerAssignment{}).
		Where("assignment_id = ?", a.AssignmentID).
		Updates(map[string]interface{}{
			"is_active":      a.IsActive,
			"deactivated_at": a.DeactivatedAt,
			"updated_by":     a.UpdatedBy,
			"updated_at":     gorm.Expr("CURRENT_TIMESTAMP"),
		}).Error
}
