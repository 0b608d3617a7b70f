package repository

import (
	"context"

	"gorm.io/gorm"

	"research-approval/backend/internal/model"
)

// GroupRepository 研究小组数据访问接口
type GroupRepository interface {
	Create(ctx context.Context, group *model.Group) error
	GetByID(ctx context.Context, id string) (*model.Group, error)
	GetByLead(ctx context.Context, leadID string) (*model.Group, error)
	List(ctx context.Context, college string) ([]model.Group, error)
}

type groupRepo struct {
	db *gorm.DB
}

// NewGroupRepo 创建 GroupRepository 实例
func NewGroupRepo(db *gorm.DB) GroupRepository {
	return &groupRepo{db: db}
}

func (r *groupRepo) Create(ctx context.Context, group *model.Group) error {
	return r.db.WithContext(ctx).Create(group).Error
}

func (r *groupRepo) GetByID(ctx context.Context, id string) (*model.Group, error) {
	var group model.Group
	err := r.db.WithContext(ctx).
		Preload("Lead").Preload("Adviser").
		Where("group_id = ?", id).
		First(&group).Error
	if err != nil {
		return nil, err
	}
	return &group, nil
}

func (r *groupRepo) GetByLead(ctx context.Context, leadID string) (*model.Group, error) {
	var group model.Group
	err := r.db.WithContext(ctx).
		Where("lead_id = ?", leadID).
		First(&group).Error
	if err != nil {
		return nil, err
	}
	return &group, nil
}

// List college 为空时返回全部小组
func (r *groupRepo) List(ctx context.Context, college string) ([]model.Group, error) {
	var groups []model.Group
	db := r.db.WithContext(ctx).Preload("Lead").Preload("Adviser")
	if college != "" {
		db = db.Where("college = ?", college)
	}
	err := db.Order("college ASC, program ASC, created_at ASC").Find(&groups).Error
	return groups, err
}
