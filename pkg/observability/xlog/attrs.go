package xlog

import (
	"log/slog"
	"time"
)

// 常用属性 Key。
const (
	KeyError     = "error"
	KeyDuration  = "duration"
	KeyComponent = "component"
	KeyOperation = "operation"

	// KeyAction 夹具动作名，如 click、select。
	KeyAction = "action"

	// KeyLocator 元素定位器，如 "By.Id: search_query_top"。
	KeyLocator = "locator"

	// KeyValue 动作的输入值，如输入文本、下拉选项。
	KeyValue = "value"

	// KeyAttempt 刚失败的尝试序号，从 1 开始。
	KeyAttempt = "attempt"

	// KeyURL 页面地址。
	KeyURL = "url"

	// KeyDriver 驱动类型。
	KeyDriver = "driver"

	// KeyRunID 一次夹具运行的唯一 ID。
	KeyRunID = "run_id"

	// KeyScenario 场景名。
	KeyScenario = "scenario"
)

// Err 创建错误属性，err 为 nil 时返回会被 slog 忽略的空属性。
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String(KeyError, err.Error())
}

// Duration 创建耗时属性，输出 "1.5s" 形式。
func Duration(d time.Duration) slog.Attr {
	return slog.String(KeyDuration, d.String())
}

// Component 创建组件名属性
func Component(name string) slog.Attr {
	return slog.String(KeyComponent, name)
}

// Operation 创建操作名属性
func Operation(name string) slog.Attr {
	return slog.String(KeyOperation, name)
}

// Action 创建动作名属性
func Action(name string) slog.Attr {
	return slog.String(KeyAction, name)
}

// Locator 创建定位器属性，接受任意 fmt.Stringer（如 xdriver.Locator）。
func Locator(loc interface{ String() string }) slog.Attr {
	if loc == nil {
		return slog.Attr{}
	}
	return slog.String(KeyLocator, loc.String())
}

// Value 创建输入值属性
func Value(v string) slog.Attr {
	return slog.String(KeyValue, v)
}

// Attempt 创建尝试序号属性
func Attempt(n int) slog.Attr {
	return slog.Int(KeyAttempt, n)
}

// URL 创建页面地址属性
func URL(u string) slog.Attr {
	return slog.String(KeyURL, u)
}

// RunID 创建运行 ID 属性
func RunID(id string) slog.Attr {
	return slog.String(KeyRunID, id)
}

// Driver 创建驱动类型属性
func Driver(kind string) slog.Attr {
	return slog.String(KeyDriver, kind)
}

// Scenario 创建场景名属性
func Scenario(name string) slog.Attr {
	return slog.String(KeyScenario, name)
}
