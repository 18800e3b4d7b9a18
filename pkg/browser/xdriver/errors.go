package xdriver

import (
	"context"
	"errors"
	"slices"
	"strings"

	"github.com/tebeka/selenium"

	"github.com/omeyang/xfluent/pkg/resilience/xretry"
)

var (
	// ErrUnknownDriver 表示配置了不支持的驱动类型。
	ErrUnknownDriver = errors.New("xdriver: unknown driver")

	// ErrUnknownBackoff 表示配置了不支持的连接退避策略。
	ErrUnknownBackoff = errors.New("xdriver: unknown connect backoff")

	// ErrMissingURL 表示未配置 WebDriver 服务地址。
	ErrMissingURL = errors.New("xdriver: webdriver url required")

	// ErrNilSession 表示传入了 nil 会话。
	ErrNilSession = errors.New("xdriver: nil session")

	// ErrNilElement 表示传入了 nil 元素。
	ErrNilElement = errors.New("xdriver: nil element")

	// ErrNilCondition 表示传入了 nil 等待条件。
	ErrNilCondition = errors.New("xdriver: nil condition")

	// ErrWaitTimeout 表示显式等待在超时前条件未满足。
	ErrWaitTimeout = errors.New("xdriver: wait timed out")

	// ErrNoSuchOption 表示下拉框中没有匹配的选项。
	ErrNoSuchOption = errors.New("xdriver: no such option")

	// ErrNotSelect 表示对非 <select> 元素执行了选项选择。
	ErrNotSelect = errors.New("xdriver: element is not a select")
)

// WebDriver 协议错误码。
const (
	CodeStaleElement        = "stale element reference"
	CodeNotInteractable     = "element not interactable"
	CodeNotVisible          = "element not visible"
	CodeClickIntercepted    = "element click intercepted"
	CodeNoSuchElement       = "no such element"
	CodeTimeout             = "timeout"
	CodeInvalidElementState = "invalid element state"
	CodeInvalidSelector     = "invalid selector"
	CodeInvalidArgument     = "invalid argument"
	CodeInvalidSessionID    = "invalid session id"
	CodeSessionNotCreated   = "session not created"
	CodeUnknownError        = "unknown error"
)

// 旧版驱动只在消息文本中描述失效元素。
const codeStaleElementLegacyMsg = "stale element"

var temporaryCodes = []string{
	CodeStaleElement,
	CodeNotInteractable,
	CodeNotVisible,
	CodeClickIntercepted,
	CodeNoSuchElement,
	CodeTimeout,
}

var permanentCodes = []string{
	CodeInvalidSelector,
	CodeInvalidArgument,
	CodeInvalidSessionID,
	CodeSessionNotCreated,
}

// knownCodes 按匹配优先级排列：较长的码在前，避免 "timeout" 误匹配其他消息。
var knownCodes = []string{
	CodeStaleElement,
	CodeClickIntercepted,
	CodeNotInteractable,
	CodeNotVisible,
	CodeInvalidElementState,
	CodeInvalidSelector,
	CodeInvalidArgument,
	CodeInvalidSessionID,
	CodeSessionNotCreated,
	CodeNoSuchElement,
	CodeTimeout,
}

// NewError 构造 WebDriver 协议错误，主要供测试替身使用。
func NewError(code, message string) error {
	return &selenium.Error{Err: code, Message: message}
}

// Code 返回错误对应的 WebDriver 错误码，无法识别时返回空字符串。
//
// 优先读取错误链上的 *selenium.Error；旧版驱动只返回消息文本，
// 此时按消息内容匹配。
func Code(err error) string {
	if err == nil {
		return ""
	}
	var se *selenium.Error
	if errors.As(err, &se) && se.Err != "" && se.Err != CodeUnknownError {
		return se.Err
	}
	msg := strings.ToLower(err.Error())
	for _, code := range knownCodes {
		if strings.Contains(msg, code) {
			return code
		}
	}
	if strings.Contains(msg, codeStaleElementLegacyMsg) {
		return CodeStaleElement
	}
	return ""
}

// IsNoSuchElement 判断是否为元素不存在错误。
func IsNoSuchElement(err error) bool { return Code(err) == CodeNoSuchElement }

// IsStaleElement 判断是否为元素引用失效错误。
func IsStaleElement(err error) bool { return Code(err) == CodeStaleElement }

// IsInvalidElementState 判断是否为元素状态不允许该操作的错误，如清空只读输入框。
func IsInvalidElementState(err error) bool { return Code(err) == CodeInvalidElementState }

// Classify 将驱动错误包装为 xretry 的瞬时或终止性错误。
//
// 已分类的错误与 context 错误原样返回；未识别的错误原样返回。
func Classify(err error) error {
	if err == nil {
		return nil
	}
	var re xretry.RetryableError
	if errors.As(err, &re) {
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	switch {
	case errors.Is(err, ErrWaitTimeout):
		return xretry.NewTemporaryError(err)
	case errors.Is(err, ErrNoSuchOption), errors.Is(err, ErrNotSelect),
		errors.Is(err, ErrUnknownDriver), errors.Is(err, ErrMissingURL):
		return xretry.NewPermanentError(err)
	}

	switch code := Code(err); {
	case slices.Contains(temporaryCodes, code):
		return xretry.NewTemporaryError(err)
	case slices.Contains(permanentCodes, code):
		return xretry.NewPermanentError(err)
	}
	return err
}
