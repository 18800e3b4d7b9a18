package xdriver

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/omeyang/xfluent/pkg/resilience/xretry"
)

// ElementIsVisible 元素存在且可见。
func ElementIsVisible(loc Locator) Condition {
	return func(s Session) (bool, error) {
		el, err := s.FindElement(loc)
		if err != nil {
			return pending(err)
		}
		ok, err := el.IsDisplayed()
		if err != nil {
			return pending(err)
		}
		return ok, nil
	}
}

// ElementToBeClickable 元素可见且可用。
func ElementToBeClickable(loc Locator) Condition {
	return func(s Session) (bool, error) {
		el, err := s.FindElement(loc)
		if err != nil {
			return pending(err)
		}
		visible, err := el.IsDisplayed()
		if err != nil || !visible {
			return pending(err)
		}
		enabled, err := el.IsEnabled()
		if err != nil {
			return pending(err)
		}
		return enabled, nil
	}
}

// TextToBePresentInElementLocated 元素文本包含 text。
func TextToBePresentInElementLocated(loc Locator, text string) Condition {
	return func(s Session) (bool, error) {
		el, err := s.FindElement(loc)
		if err != nil {
			return pending(err)
		}
		actual, err := el.Text()
		if err != nil {
			return pending(err)
		}
		return strings.Contains(actual, text), nil
	}
}

// pending 瞬时错误视为条件暂未满足，继续轮询；终止性错误结束等待。
func pending(err error) (bool, error) {
	if err == nil {
		return false, nil
	}
	if classified := Classify(err); xretry.IsPermanent(classified) {
		return false, classified
	}
	return false, nil
}

// Poll 以 interval 为间隔检查 cond，供没有原生轮询的 Session 实现使用。
// 语义与 Session.Wait 相同。
func Poll(ctx context.Context, s Session, cond Condition, timeout, interval time.Duration) error {
	if cond == nil {
		return ErrNilCondition
	}
	if interval <= 0 {
		interval = DefaultPollInterval
	}

	start := time.Now()
	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
		// 两个分支同时就绪时 select 随机选择。
		if err := ctx.Err(); err != nil {
			return err
		}

		ok, err := cond(s)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
		if elapsed := time.Since(start); elapsed >= timeout {
			return fmt.Errorf("%w: after %v", ErrWaitTimeout, elapsed)
		}
		timer.Reset(interval)
	}
}
