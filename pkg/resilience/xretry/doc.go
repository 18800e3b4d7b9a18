// Package xretry 提供 UI 自动化场景下的重试执行器。
//
// # 两种执行器
//
//   - BudgetRetryer：按时间预算重试。操作失败后立即重新调用，
//     直到成功或预算耗尽。所有交互动作（点击、选择、文本校验）都通过它
//     吸收"元素尚未可交互""元素引用已失效"这类瞬时失败。
//   - Retryer：按次数重试，组合 RetryPolicy 与 BackoffPolicy。
//     用于建立 WebDriver 会话这类需要退避的场景。
//
// 底层均使用 [avast/retry-go/v5] 实现。
//
// # 时间预算语义
//
// BudgetRetryer 只在一次失败的调用之后检查已用时间：
//
//	start := now()
//	for {
//	    err := fn(ctx)
//	    if err == nil { return nil }
//	    if !retryable(err) || now()-start >= budget { return err }
//	}
//
// 因此预算是软上限：最后一次调用可能在截止时刻之前（甚至恰好在截止时刻）
// 开始，并且会完整执行；若该次调用成功，结果为成功。
// 两次调用之间默认没有退避，最坏情况下重试次数只受单次调用耗时约束。
//
// 预算耗尽时返回的是最后一次调用的错误本身，不会合成超时错误，
// 也不会聚合历次错误。
//
// # 错误分类
//
//   - NewTemporaryError(err)：瞬时错误，在预算内继续重试
//   - NewPermanentError(err)：终止性错误，立即返回
//   - 未分类的错误默认视为可重试
//   - Unrecoverable(err)：retry-go 风格的不可恢复错误
//
// # 使用方式
//
//	err := xretry.RetryTimer(ctx, func(ctx context.Context) error {
//	    return clickSomething(ctx)
//	})
//
//	r := xretry.NewBudgetRetryer(
//	    xretry.WithBudget(3*time.Second),
//	    xretry.WithBudgetOnRetry(func(attempt int, err error) { ... }),
//	)
//	err := r.Do(ctx, fn)
//
//	r := xretry.NewRetryer(
//	    xretry.WithRetryPolicy(xretry.NewFixedRetry(3)),
//	    xretry.WithBackoffPolicy(xretry.NewExponentialBackoff()),
//	)
//	err := r.Do(ctx, fn)
//
// [avast/retry-go/v5]: https://github.com/avast/retry-go
package xretry
