package xretry

import (
	"context"
	"errors"
	"fmt"
	"time"

	retry "github.com/avast/retry-go/v5"
)

// DefaultBudget BudgetRetryer 的默认时间预算。
const DefaultBudget = 10 * time.Second

var _ Executor = (*BudgetRetryer)(nil)

// BudgetRetryer 在固定时间预算内反复调用操作，直到成功或预算耗尽。
//
// 已用时间只在失败之后检查，预算是软上限，详见包文档。
// BudgetRetryer 创建后只读，可被多次、并发地调用 Do；每次 Do 独立计时。
type BudgetRetryer struct {
	budget  time.Duration
	backoff BackoffPolicy
	clock   Clock
	onRetry func(attempt int, err error)
}

// BudgetOption BudgetRetryer 配置选项。
type BudgetOption func(*BudgetRetryer)

// WithBudget 设置时间预算，d <= 0 时忽略。
func WithBudget(d time.Duration) BudgetOption {
	return func(r *BudgetRetryer) {
		if d > 0 {
			r.budget = d
		}
	}
}

// WithBudgetBackoff 设置两次调用之间的退避，默认无退避。
func WithBudgetBackoff(p BackoffPolicy) BudgetOption {
	return func(r *BudgetRetryer) {
		if p != nil {
			r.backoff = p
		}
	}
}

// WithClock 替换计时时钟，主要用于测试。
func WithClock(c Clock) BudgetOption {
	return func(r *BudgetRetryer) {
		if c != nil {
			r.clock = c
		}
	}
}

// WithBudgetOnRetry 设置重试回调。attempt 为刚失败的调用序号（从 1 开始），
// 回调返回后才开始下一次调用。
func WithBudgetOnRetry(f func(attempt int, err error)) BudgetOption {
	return func(r *BudgetRetryer) {
		if f != nil {
			r.onRetry = f
		}
	}
}

// NewBudgetRetryer 创建按时间预算重试的执行器。
// 默认预算 DefaultBudget，无退避，使用系统时钟。
func NewBudgetRetryer(opts ...BudgetOption) *BudgetRetryer {
	r := &BudgetRetryer{
		budget:  DefaultBudget,
		backoff: NewNoBackoff(),
		clock:   SystemClock(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Budget 返回时间预算。
func (r *BudgetRetryer) Budget() time.Duration {
	if r == nil {
		return 0
	}
	return r.budget
}

// Do 反复调用 fn 直到成功、遇到终止性错误、预算耗尽或 ctx 结束。
//
// 返回值：
//   - 成功：nil
//   - 终止性错误或预算耗尽：最后一次调用的错误
//   - ctx 结束：同时包装 ctx 的原因与最后一次调用的错误
func (r *BudgetRetryer) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if r == nil {
		return ErrNilRetryer
	}
	if ctx == nil {
		return ErrNilContext
	}
	if fn == nil {
		return ErrNilFunc
	}

	clock := r.clock
	if clock == nil {
		clock = SystemClock()
	}
	budget := r.budget
	if budget <= 0 {
		budget = DefaultBudget
	}

	start := clock.Now()
	var lastErr error

	opts := []Option{
		Context(ctx),
		UntilSucceeded(),
		RetryIf(func(err error) bool {
			if !IsRecoverable(err) || !IsRetryable(err) || ctx.Err() != nil {
				return false
			}
			return clock.Now().Sub(start) < budget
		}),
		delayFrom(r.backoff),
		LastErrorOnly(true),
	}
	if r.onRetry != nil {
		opts = append(opts, OnRetry(func(n uint, err error) {
			r.onRetry(safeUintToInt(n)+1, err)
		}))
	}

	err := retry.New(opts...).Do(func() error {
		lastErr = fn(ctx)
		return lastErr
	})
	if err == nil {
		return nil
	}

	if cause := context.Cause(ctx); cause != nil && lastErr != nil && !errors.Is(lastErr, cause) {
		return fmt.Errorf("xretry: %w (last attempt: %w)", cause, lastErr)
	}
	return err
}

// RetryTimer 以 DefaultBudget 执行 fn，等价于 NewBudgetRetryer().Do(ctx, fn)。
func RetryTimer(ctx context.Context, fn func(ctx context.Context) error) error {
	return NewBudgetRetryer().Do(ctx, fn)
}
