// Package xfixture 提供浏览器 UI 测试夹具。
//
// Fixture 持有一个 xdriver.Session，每个交互动作由三部分组成：
// 显式等待（元素可见或可点击）、xretry.BudgetRetryer 时间预算内的重试、
// 以及委托给驱动的单个操作。
//
//	f, err := xfixture.New(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer f.Close(ctx)
//
//	err = f.Type(ctx, xdriver.ByID("search_query_top"), "Faded Short Sleeve T-shirts")
//
// # 失败
//
// 预算耗尽时动作返回 *ActionError，包含动作名、定位器、输入值与最后一次尝试的错误；
// VisitURL 返回 *NavigationError。引用失效、元素不可交互等瞬时错误在预算内重试，
// 非法选择器、下拉框中不存在的选项等终止性错误立即返回。
//
// # 观测
//
// 每个动作在 Debug 级别记录开始与完成，每次重试记录 Warn，失败记录 Error；
// 同时通过 xmetrics.Observer 产生名为 "xfixture.<动作>" 的跨度并记录重试次数。
package xfixture
