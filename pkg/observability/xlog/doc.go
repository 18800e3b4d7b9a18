// Package xlog 基于 log/slog 的结构化日志库。
//
// # 创建 Logger
//
// Builder 模式配置输出目标、级别、格式与文件轮转（first-error-wins）：
//
//	logger, cleanup, err := xlog.New().
//		SetLevel(xlog.LevelDebug).
//		SetFormat("json").
//		SetRotation("/var/log/xfluent/run.log").
//		SetAttrs(xlog.Driver("headless")).
//		Build()
//	if err != nil {
//		return err
//	}
//	defer cleanup()
//
// 也可以从配置文件的 log 节创建：xlog.FromConfig(cfg).Build()。
//
// # 追踪注入
//
// 默认启用 [EnrichHandler]：context 中有有效的 OpenTelemetry span 时，
// 每条日志自动带上 trace_id、span_id、trace_flags。
//
// # 全局 Logger
//
// [Default]、[SetDefault]、[Debug]、[Info]、[Warn]、[Error] 面向 CLI 等简单场景。
// 库代码（如 xfixture）显式持有 Logger，未配置时使用 [Discard]。
//
// # 便捷属性
//
// [Err]、[Duration]、[Action]、[Locator]、[Value]、[Attempt]、[URL]、[RunID]、[Driver]、[Scenario]。
package xlog
