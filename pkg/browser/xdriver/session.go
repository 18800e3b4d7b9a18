package xdriver

//go:generate mockgen -source=session.go -destination=xdrivermock/session_mock.go -package=xdrivermock

import (
	"context"
	"time"
)

// Condition 显式等待的判定函数。
// 返回 (true, nil) 表示条件满足；返回错误会立即结束等待。
type Condition func(s Session) (bool, error)

// Session 浏览器会话。
//
// 一个 Session 对应一个浏览器实例，不保证并发安全，
// 调用方在单个 goroutine 内顺序使用。
type Session interface {
	// Get 导航到 url，等待页面加载完成后返回。
	Get(url string) error

	// CurrentURL 返回当前页面地址。
	CurrentURL() (string, error)

	// FindElement 查找第一个匹配的元素。
	FindElement(loc Locator) (Element, error)

	// FindElements 查找所有匹配的元素，无匹配时返回空切片。
	FindElements(loc Locator) ([]Element, error)

	// Wait 每隔 interval 检查一次 cond，直到条件满足、cond 返回错误、
	// 超过 timeout（返回包装 ErrWaitTimeout 的错误）或 ctx 结束。
	Wait(ctx context.Context, cond Condition, timeout, interval time.Duration) error

	// Quit 关闭浏览器并结束会话。
	Quit() error
}

// Element 页面元素。
type Element interface {
	Click() error
	SendKeys(keys string) error
	Clear() error
	Text() (string, error)
	IsDisplayed() (bool, error)
	IsEnabled() (bool, error)
	IsSelected() (bool, error)

	// MoveTo 将指针移动到相对元素左上角的偏移位置。
	MoveTo(xOffset, yOffset int) error

	GetAttribute(name string) (string, error)
	TagName() (string, error)

	// FindElements 在元素子树中查找所有匹配的元素。
	FindElements(loc Locator) ([]Element, error)
}
