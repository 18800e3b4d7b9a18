package xretry

import (
	"context"
	"errors"
)

// 执行器参数错误。
var (
	// ErrNilRetryer 表示在 nil 执行器上调用 Do。
	ErrNilRetryer = errors.New("xretry: nil retryer")

	// ErrNilContext 表示传入了 nil context。
	ErrNilContext = errors.New("xretry: nil context")

	// ErrNilFunc 表示传入了 nil 操作函数。
	ErrNilFunc = errors.New("xretry: nil func")
)

// RetryableError 可重试错误接口。
// 实现此接口的错误由 Retryable() 决定是否继续重试。
type RetryableError interface {
	error
	Retryable() bool
}

// PermanentError 终止性错误，不再重试。
type PermanentError struct {
	Err error
}

// NewPermanentError 创建终止性错误。
func NewPermanentError(err error) *PermanentError {
	return &PermanentError{Err: err}
}

func (e *PermanentError) Error() string {
	if e.Err == nil {
		return "permanent error"
	}
	return e.Err.Error()
}

func (e *PermanentError) Unwrap() error { return e.Err }

func (e *PermanentError) Retryable() bool { return false }

// TemporaryError 瞬时错误，例如元素尚未渲染、元素引用失效。
type TemporaryError struct {
	Err error
}

// NewTemporaryError 创建瞬时错误。
func NewTemporaryError(err error) *TemporaryError {
	return &TemporaryError{Err: err}
}

func (e *TemporaryError) Error() string {
	if e.Err == nil {
		return "temporary error"
	}
	return e.Err.Error()
}

func (e *TemporaryError) Unwrap() error { return e.Err }

func (e *TemporaryError) Retryable() bool { return true }

// IsRetryable 检查错误是否可重试。
// 规则：
//   - nil：不需要重试
//   - context.Canceled / context.DeadlineExceeded：不重试
//   - 实现 RetryableError：由 Retryable() 决定（取错误链上最外层的分类）
//   - 其他错误：视为可重试
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var re RetryableError
	if errors.As(err, &re) {
		return re.Retryable()
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	return true
}

// IsPermanent 检查错误是否为终止性错误。
func IsPermanent(err error) bool {
	if err == nil {
		return false
	}
	return !IsRetryable(err)
}
