package errors

import (
	"errors"

	"gorm.io/gorm"
)

// ErrOptimisticLock 乐观锁冲突：记录已被其他操作修改
var ErrOptimisticLock = errors.New("数据已被其他操作修改，请刷新后重试")

// IsRetryable 判断是否为并发写冲突（乐观锁失败或唯一约束竞争）
// 依赖 gorm.Config.TranslateError 将驱动错误翻译为 gorm.ErrDuplicatedKey
func IsRetryable(err error) bool {
	return errors.Is(err, ErrOptimisticLock) || errors.Is(err, gorm.ErrDuplicatedKey)
}
