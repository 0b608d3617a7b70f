package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"research-approval/backend/internal/model"
)

// DiscussionRepository 讨论区数据访问接口
type DiscussionRepository interface {
	GetThreadByGroup(ctx context.Context, groupID string) (*model.DiscussionThread, error)
	GetThread(ctx context.Context, threadID string) (*model.DiscussionThread, error)
	// CreateThreadIfAbsent 依赖 group_id 唯一索引；返回 false 表示已被其他事务抢先创建
	CreateThreadIfAbsent(ctx context.Context, thread *model.DiscussionThread) (bool, error)
	AddParticipants(ctx context.Context, participants []model.DiscussionParticipant) error
	IsParticipant(ctx context.Context, threadID, userID string) (bool, error)
	ListParticipants(ctx context.Context, threadID string) ([]model.DiscussionParticipant, error)
	CreateMessage(ctx context.Context, msg *model.DiscussionMessage) error
	ListMessages(ctx context.Context, threadID string, offset, limit int) ([]model.DiscussionMessage, int64, error)
}

type discussionRepo struct {
	db *gorm.DB
}

// NewDiscussionRepo 创建 DiscussionRepository 实例
func NewDiscussionRepo(db *gorm.DB) DiscussionRepository {
	return &discussionRepo{db: db}
}

func (r *discussionRepo) GetThreadByGroup(ctx context.Context, groupID string) (*model.DiscussionThread, error) {
	var thread model.DiscussionThread
	err := r.db.WithContext(ctx).
		Preload("Participants", func(db *gorm.DB) *gorm.DB { return db.Order("joined_at ASC") }).
		Where("group_id = ?", groupID).
		First(&thread).Error
	if err != nil {
		return nil, err
	}
	return &thread, nil
}

func (r *discussionRepo) GetThread(ctx context.Context, threadID string) (*model.DiscussionThread, error) {
	var thread model.DiscussionThread
	err := r.db.WithContext(ctx).
		Preload("Participants", func(db *gorm.DB) *gorm.DB { return db.Order("joined_at ASC") }).
		Where("thread_id = ?", threadID).
		First(&thread).Error
	if err != nil {
		return nil, err
	}
	return &thread, nil
}

func (r *discussionRepo) CreateThreadIfAbsent(ctx context.Context, thread *model.DiscussionThread) (bool, error) {
	result := r.db.WithContext(ctx).
		Omit("Participants").
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "group_id"}},
			DoNothing: true,
		}).
		Create(thread)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *discussionRepo) AddParticipants(ctx context.Context, participants []model.DiscussionParticipant) error {
	if len(participants) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "thread_id"}, {Name: "user_id"}},
			DoNothing: true,
		}).
		Create(&participants).Error
}

func (r *discussionRepo) IsParticipant(ctx context.Context, threadID, userID string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&model.DiscussionParticipant{}).
		Where("thread_id = ? AND user_id = ?", threadID, userID).
		Count(&n).Error
	return n > 0, err
}

func (r *discussionRepo) ListParticipants(ctx context.Context, threadID string) ([]model.DiscussionParticipant, error) {
	var list []model.DiscussionParticipant
	err := r.db.WithContext(ctx).
		Where("thread_id = ?", threadID).
		Order("joined_at ASC").
		Find(&list).Error
	return list, err
}

func (r *discussionRepo) CreateMessage(ctx context.Context, msg *model.DiscussionMessage) error {
	return r.db.WithContext(ctx).Create(msg).Error
}

func (r *discussionRepo) ListMessages(ctx context.Context, threadID string, offset, limit int) ([]model.DiscussionMessage, int64, error) {
	var msgs []model.DiscussionMessage
	var total int64

	db := r.db.WithContext(ctx).Model(&model.DiscussionMessage{}).
		Where("thread_id = ?", threadID)

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := db.Offset(offset).Limit(limit).
		Order("created_at ASC").
		Find(&msgs).Error
	return msgs, total, err
}
