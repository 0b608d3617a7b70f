package service

import (
	"context"

	"go.uber.org/zap"

	"research-approval/backend/internal/repository"
	"research-approval/backend/internal/workflow"
	pkgerrors "research-approval/backend/pkg/errors"
)

// maxTxAttempts 首次执行 + 一次自动重试
const maxTxAttempts = 2

// runInTx 在单个事务内执行 fn
// 乐观锁失败或唯一约束竞争时整体重试一次；再次失败返回 ErrStorageConflict
// fn 可能被执行两次，闭包内对外部变量的写入必须在开头重置
func runInTx(ctx context.Context, repo *repository.Repository, logger *zap.Logger, op string, fn func(tx *repository.Repository) error) error {
	var err error
	for attempt := 1; attempt <= maxTxAttempts; attempt++ {
		err = repo.Tx.Transaction(ctx, fn)
		if err == nil {
			return nil
		}
		if !pkgerrors.IsRetryable(err) {
			return err
		}
		logger.Warn("并发写入冲突",
			zap.String("op", op),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
	}
	return workflow.ErrStorageConflict
}
