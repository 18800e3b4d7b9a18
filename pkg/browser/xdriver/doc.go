// Package xdriver 定义浏览器会话端口，并提供基于 tebeka/selenium 的 WebDriver 适配。
//
// # 核心类型
//
//   - [Locator]: 元素定位方式与值，如 ByID("search_query_top")
//   - [Session]: 浏览器会话（导航、查找元素、显式等待、退出）
//   - [Element]: 页面元素（点击、输入、读取文本与属性）
//   - [Condition]: 显式等待的判定函数
//
// # 会话创建
//
// [Open] 按 [Config] 选择驱动类型并连接 WebDriver 服务：
//
//	""        默认 Chrome，不附加参数
//	chrome    Chrome，--start-maximized
//	headless  Chrome，--headless --start-maximized
//	firefox   Firefox
//	grid      远程 Grid 上的无头 Chrome
//
// 连接失败按 [xretry.Retryer] 的次数与指数退避重试；未知驱动类型在连接前
// 返回 [ErrUnknownDriver]。
//
// # 错误分类
//
// [Classify] 将 WebDriver 错误映射为 xretry 的瞬时或终止性错误：
//
//	瞬时：stale element reference, element not interactable, element not visible,
//	      element click intercepted, no such element, timeout, 等待超时
//	终止：invalid selector, invalid argument, invalid session id,
//	      session not created, 下拉框中不存在的选项
//
// 未识别的错误原样返回，由 xretry 视为可重试。
package xdriver
