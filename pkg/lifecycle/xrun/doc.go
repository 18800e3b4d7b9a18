// Package xrun 基于 [errgroup] 与 context 运行一组有限任务并协调取消。
//
// # 概述
//
//   - Group：并发运行任务，任一失败时取消其余任务，保留取消原因
//   - Run/RunWithOptions：在 Group 之上增加信号监听（默认 SIGINT、SIGTERM），
//     全部任务完成后返回
//
// 命令行运行测试场景的典型用法：
//
//	err := xrun.RunWithOptions(ctx, []xrun.Option{
//	    xrun.WithName("xfluentctl"),
//	    xrun.WithLogger(logger),
//	}, func(ctx context.Context) error {
//	    return runScenario(ctx, "search")
//	})
//	if errors.Is(err, xrun.ErrSignal) {
//	    // 被 Ctrl+C 中断
//	}
//
// # 错误处理
//
// Wait 的返回规则：
//   - 任务返回非 context.Canceled 的错误：返回该错误
//   - 错误是 context.Canceled 且 Group 被主动取消：返回显式原因（如 *SignalError），没有则返回 nil
//   - 错误是 context.Canceled 但 Group 未被取消：该错误来自任务内部，原样返回
//
// 直接使用 NewGroup 时不包含信号处理。
//
// [errgroup]: https://pkg.go.dev/golang.org/x/sync/errgroup
package xrun
