package repository

import (
	"context"

	"gorm.io/gorm"
)

// Transactor 在单个数据库事务中执行 fn
// fn 收到的是绑定到该事务的 Repository；fn 返回错误则整体回滚
type Transactor interface {
	Transaction(ctx context.Context, fn func(tx *Repository) error) error
}

// Repository 所有 Repository 的聚合入口
type Repository struct {
	User         UserRepository
	Group        GroupRepository
	Submission   SubmissionRepository
	Assignment   AssignmentRepository
	Review       ReviewRepository
	Discussion   DiscussionRepository
	Notification NotificationRepository

	Tx Transactor
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		User:         NewUserRepo(db),
		Group:        NewGroupRepo(db),
		Submission:   NewSubmissionRepo(db),
		Assignment:   NewAssignmentRepo(db),
		Review:       NewReviewRepo(db),
		Discussion:   NewDiscussionRepo(db),
		Notification: NewNotificationRepo(db),
		Tx:           &gormTransactor{db: db},
	}
}

type gormTransactor struct {
	db *gorm.DB
}

func (t *gormTransactor) Transaction(ctx context.Context, fn func(tx *Repository) error) error {
	return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepository(tx))
	})
}
