package xfixture

import (
	"errors"
	"fmt"

	"github.com/omeyang/xfluent/pkg/browser/xdriver"
)

var (
	// ErrInvalidConfig 表示夹具配置不合法。
	ErrInvalidConfig = errors.New("xfixture: invalid config")

	// ErrOptionNotFound 表示下拉框中既没有该可见文本也没有该值的选项。
	ErrOptionNotFound = errors.New("xfixture: option not found")

	// ErrTextMismatch 表示元素文本不包含期望文本。
	ErrTextMismatch = errors.New("xfixture: text mismatch")

	// ErrURLMismatch 表示导航后所在地址与请求地址不一致。
	ErrURLMismatch = errors.New("xfixture: url mismatch")

	// ErrClosed 表示夹具已关闭。
	ErrClosed = errors.New("xfixture: fixture closed")
)

// ActionError 表示夹具动作在重试预算内未能完成。
//
// Err 为最后一次尝试的错误，可用 errors.Is / errors.As 检查驱动错误码。
type ActionError struct {
	// Action 动作名，如 click、select。
	Action string
	// Message 面向测试报告的描述。
	Message string
	Locator xdriver.Locator
	Value   string
	Err     error
}

func (e *ActionError) Error() string {
	if e.Err == nil {
		return "xfixture: " + e.Message
	}
	return fmt.Sprintf("xfixture: %s: %v", e.Message, e.Err)
}

func (e *ActionError) Unwrap() error { return e.Err }

// NavigationError 表示导航失败或落地地址与请求地址不一致。
type NavigationError struct {
	Requested string
	// Actual 导航后浏览器所在地址，读取失败时为空。
	Actual string
	Err    error
}

func (e *NavigationError) Error() string {
	msg := fmt.Sprintf("xfixture: the url was opened {%s} but was expecting this url - %s", e.Actual, e.Requested)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *NavigationError) Unwrap() error { return e.Err }
