package xretry

import (
	"context"
	"time"
)

// RetryPolicy 定义按次数重试的判断策略。
//
// 通过 Retryer 使用时：
//   - MaxAttempts() 设置 retry-go 的 Attempts 上限
//   - ShouldRetry() 在每次失败后被调用
//   - Unrecoverable 错误会在 ShouldRetry 之前被拦截
type RetryPolicy interface {
	// MaxAttempts 返回最大尝试次数（包含首次尝试），0 表示无限重试。
	MaxAttempts() int

	// ShouldRetry 判断第 attempt 次（从 1 开始）失败后是否继续重试。
	ShouldRetry(ctx context.Context, attempt int, err error) bool
}

// BackoffPolicy 定义重试间隔。
type BackoffPolicy interface {
	// NextDelay 返回第 attempt 次（从 1 开始）失败后的等待时间。
	NextDelay(attempt int) time.Duration
}

// Executor 重试执行器接口。
// *Retryer 与 *BudgetRetryer 都实现此接口，调用方可以用它作为参数类型以便替换。
type Executor interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// Clock 提供当前时间，BudgetRetryer 用它度量已用时间。
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock 返回基于 time.Now 的时钟。
func SystemClock() Clock { return systemClock{} }
