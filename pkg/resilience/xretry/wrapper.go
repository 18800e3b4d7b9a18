package xretry

import (
	"time"

	retry "github.com/avast/retry-go/v5"
)

// 下列别名镜像 retry-go 中本包用到的 API，调用方无需直接依赖 retry-go。
type (
	// Option 是 retry-go 的配置选项类型。
	Option = retry.Option

	// DelayContext 提供延迟计算所需的配置值。
	DelayContext = retry.DelayContext
)

var (
	// Attempts 设置总尝试次数（包含首次尝试），0 表示无限重试。
	Attempts = retry.Attempts

	// UntilSucceeded 无限重试直到成功，等同于 Attempts(0)。
	UntilSucceeded = retry.UntilSucceeded

	// DelayType 设置延迟计算函数。
	DelayType = retry.DelayType

	// OnRetry 设置重试回调，回调的 n 从 0 开始。
	OnRetry = retry.OnRetry

	// RetryIf 设置重试条件。
	RetryIf = retry.RetryIf

	// Context 设置上下文。
	Context = retry.Context

	// LastErrorOnly 只返回最后一个错误。
	LastErrorOnly = retry.LastErrorOnly

	// Unrecoverable 将错误标记为不可恢复。
	Unrecoverable = retry.Unrecoverable

	// IsRecoverable 检查错误是否可恢复。
	IsRecoverable = retry.IsRecoverable
)

// delayFrom 将 BackoffPolicy 适配为 retry-go 的延迟函数。
// retry-go v5 中 DelayType 的 n 从 1 开始，与 NextDelay 的 attempt 一致。
func delayFrom(policy BackoffPolicy) Option {
	return DelayType(func(n uint, _ error, _ DelayContext) time.Duration {
		if policy == nil {
			return 0
		}
		return policy.NextDelay(safeUintToInt(n))
	})
}
