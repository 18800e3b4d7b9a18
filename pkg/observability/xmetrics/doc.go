// Package xmetrics 提供统一的可观测性接口（metrics + tracing）。
//
// 业务代码只依赖 Observer/Span/Attr 接口；默认实现基于 OpenTelemetry。
//
// # 使用示例
//
//	obs, _ := xmetrics.NewOTelObserver()
//	ctx, span := xmetrics.Start(ctx, obs, xmetrics.SpanOptions{
//		Component: "xfixture",
//		Operation: "click",
//		Attrs:     []xmetrics.Attr{xmetrics.String("locator", loc.String())},
//	})
//	defer func() { span.End(xmetrics.Result{Err: err, Retries: retries}) }()
//
// # 指标命名
//
//   - xfluent.action.total：动作次数
//   - xfluent.action.duration：动作耗时（秒），包含全部重试
//   - xfluent.action.retries：动作内的重试次数
//
// 统一属性：component / operation / status。跨度以 "component.operation" 命名。
package xmetrics
