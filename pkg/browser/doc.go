// Package browser 提供浏览器 UI 自动化相关的子包。
//
// 子包列表：
//   - xdriver: 浏览器会话端口（Session/Element/Locator）及 Selenium WebDriver 适配
//   - xfixture: 测试夹具，带显式等待与时间预算重试的交互动作
//
// 设计原则：
//   - 页面交互通过 Locator 描述，不持有元素引用跨越重试
//   - 瞬时错误与终止性错误显式区分，由 xretry 消费
package browser
