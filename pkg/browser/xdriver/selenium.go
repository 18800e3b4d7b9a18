package xdriver

import (
	"context"
	"fmt"
	"time"

	"github.com/tebeka/selenium"
)

var (
	_ Session = (*seleniumSession)(nil)
	_ Element = (*seleniumElement)(nil)
)

// seleniumSession 将 selenium.WebDriver 适配为 Session。
type seleniumSession struct {
	wd selenium.WebDriver
}

// NewSession 包装已建立的 WebDriver 会话。
func NewSession(wd selenium.WebDriver) (Session, error) {
	if wd == nil {
		return nil, ErrNilSession
	}
	return &seleniumSession{wd: wd}, nil
}

func (s *seleniumSession) Get(url string) error {
	return s.wd.Get(url)
}

func (s *seleniumSession) CurrentURL() (string, error) {
	return s.wd.CurrentURL()
}

func (s *seleniumSession) FindElement(loc Locator) (Element, error) {
	we, err := s.wd.FindElement(string(loc.By), loc.Value)
	if err != nil {
		return nil, err
	}
	return &seleniumElement{we: we}, nil
}

func (s *seleniumSession) FindElements(loc Locator) ([]Element, error) {
	wes, err := s.wd.FindElements(string(loc.By), loc.Value)
	if err != nil {
		return nil, err
	}
	return wrapElements(wes), nil
}

// Wait 委托 selenium 的轮询实现。ctx 在每次判定前检查，
// 结束时以 ctx 的错误中止轮询。
func (s *seleniumSession) Wait(ctx context.Context, cond Condition, timeout, interval time.Duration) error {
	if cond == nil {
		return ErrNilCondition
	}

	var condErr error
	err := s.wd.WaitWithTimeoutAndInterval(func(selenium.WebDriver) (bool, error) {
		if err := ctx.Err(); err != nil {
			condErr = err
			return false, err
		}
		ok, err := cond(s)
		condErr = err
		return ok, err
	}, timeout, interval)

	switch {
	case err == nil:
		return nil
	case condErr != nil:
		return condErr
	default:
		// 判定从未报错，selenium 返回的只能是超时。
		return fmt.Errorf("%w: %w", ErrWaitTimeout, err)
	}
}

func (s *seleniumSession) Quit() error {
	return s.wd.Quit()
}

// seleniumElement 将 selenium.WebElement 适配为 Element。
type seleniumElement struct {
	we selenium.WebElement
}

func wrapElements(wes []selenium.WebElement) []Element {
	out := make([]Element, 0, len(wes))
	for _, we := range wes {
		out = append(out, &seleniumElement{we: we})
	}
	return out
}

func (e *seleniumElement) Click() error {
	return e.we.Click()
}

func (e *seleniumElement) SendKeys(keys string) error {
	return e.we.SendKeys(keys)
}

func (e *seleniumElement) Clear() error {
	return e.we.Clear()
}

func (e *seleniumElement) Text() (string, error) {
	return e.we.Text()
}

func (e *seleniumElement) IsDisplayed() (bool, error) {
	return e.we.IsDisplayed()
}

func (e *seleniumElement) IsEnabled() (bool, error) {
	return e.we.IsEnabled()
}

func (e *seleniumElement) IsSelected() (bool, error) {
	return e.we.IsSelected()
}

func (e *seleniumElement) MoveTo(xOffset, yOffset int) error {
	return e.we.MoveTo(xOffset, yOffset)
}

func (e *seleniumElement) GetAttribute(name string) (string, error) {
	return e.we.GetAttribute(name)
}

func (e *seleniumElement) TagName() (string, error) {
	return e.we.TagName()
}

func (e *seleniumElement) FindElements(loc Locator) ([]Element, error) {
	wes, err := e.we.FindElements(string(loc.By), loc.Value)
	if err != nil {
		return nil, err
	}
	return wrapElements(wes), nil
}
