package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"research-approval/backend/internal/model"
)

// ReviewRepository 评审意见数据访问接口
type ReviewRepository interface {
	// Upsert 同一评审人同一轮次的意见覆盖写入
	Upsert(ctx context.Context, review *model.Review) error
	ListBySubmission(ctx context.Context, submissionID string) ([]model.Review, error)
	ListByCycle(ctx context.Context, submissionID string, cycle int) ([]model.Review, error)
}

type reviewRepo struct {
	db *gorm.DB
}

// NewReviewRepo 创建 ReviewRepository 实例
func NewReviewRepo(db *gorm.DB) ReviewRepository {
	return &reviewRepo{db: db}
}

func (r *reviewRepo) Upsert(ctx context.Context, review *model.Review) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "submission_id"}, {Name: "reviewer_id"}, {Name: "cycle"}},
			DoUpdates: clause.AssignmentColumns([]string{"decision", "comments", "reviewed_at", "updated_by", "updated_at"}),
		}).
		Create(review).Error
}

func (r *reviewRepo) ListBySubmission(ctx context.Context, submissionID string) ([]model.Review, error) {
	var reviews []model.Review
	err := r.db.WithContext(ctx).
		Where("submission_id = ?", submissionID).
		Order("cycle ASC, reviewed_at ASC").
		Find(&reviews).Error
	return reviews, err
}

func (r *reviewRepo) ListByCycle(ctx context.Context, submissionID string, cycle int) ([]model.Review, error) {
	var reviews []model.Review
	err := r.db.WithContext(ctx).
		Where("submission_id = ? AND cycle = ?", submissionID, cycle).
		Find(&reviews).Error
	return reviews, err
}
