package xfixture

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"

	"github.com/omeyang/xfluent/pkg/browser/xdriver"
	"github.com/omeyang/xfluent/pkg/observability/xlog"
	"github.com/omeyang/xfluent/pkg/observability/xmetrics"
	"github.com/omeyang/xfluent/pkg/resilience/xretry"
)

// 动作名，用于日志、跨度与 ActionError.Action。
const (
	ActionVisit       = "visit"
	ActionWaitVisible = "wait_visible"
	ActionMoveTo      = "move_to"
	ActionClick       = "click"
	ActionAppend      = "append"
	ActionClear       = "clear"
	ActionType        = "type"
	ActionVerifyText  = "verify_text"
	ActionSelect      = "select"
)

// action 描述一次夹具动作。
type action struct {
	name    string
	loc     xdriver.Locator
	value   string
	retry   bool
	message func() string
}

func (a action) describe() string {
	if a.message == nil {
		return a.name + " failed"
	}
	return a.message()
}

// perform 在观测跨度内执行 fn。retry 为 true 时 fn 由 BudgetRetryer 反复调用，
// 每次失败前先按驱动错误码分类。失败时返回 *ActionError。
func (f *Fixture) perform(ctx context.Context, a action, fn func(ctx context.Context) error) error {
	if err := f.checkOpen(); err != nil {
		return err
	}

	attrs := []xmetrics.Attr{xmetrics.String(xlog.KeyAction, a.name)}
	if !a.loc.IsZero() {
		attrs = append(attrs, xmetrics.String(xlog.KeyLocator, a.loc.String()))
	}
	if a.value != "" {
		attrs = append(attrs, xmetrics.String(xlog.KeyValue, a.value))
	}
	ctx, span := xmetrics.Start(ctx, f.observer, xmetrics.SpanOptions{
		Component: componentName,
		Operation: a.name,
		Kind:      xmetrics.KindInternal,
		Attrs:     attrs,
	})

	logger := f.logger.With(xlog.Action(a.name))
	if !a.loc.IsZero() {
		logger = logger.With(xlog.Locator(a.loc))
	}
	if a.value != "" {
		logger = logger.With(xlog.Value(a.value))
	}
	logger.Debug(ctx, "action started")

	var (
		retries int
		err     error
	)
	if a.retry {
		r := xretry.NewBudgetRetryer(
			xretry.WithBudget(f.RetryBudget()),
			xretry.WithBudgetOnRetry(func(attempt int, err error) {
				retries++
				logger.Warn(ctx, "action retry", xlog.Attempt(attempt), xlog.Err(err))
			}),
		)
		err = r.Do(ctx, func(ctx context.Context) error {
			return xdriver.Classify(fn(ctx))
		})
	} else {
		err = fn(ctx)
	}

	if err != nil {
		var navErr *NavigationError
		if !errors.As(err, &navErr) {
			err = &ActionError{
				Action:  a.name,
				Message: a.describe(),
				Locator: a.loc,
				Value:   a.value,
				Err:     err,
			}
		}
		logger.Error(ctx, "action failed", xlog.Err(err))
	} else {
		logger.Debug(ctx, "action done")
	}
	span.End(xmetrics.Result{Err: err, Retries: retries})
	return err
}

// VisitURL 打开 rawURL，相对地址按 site.base_url 解析。
//
// 导航失败，或 fixture.strict_navigation 开启时落地地址与请求地址不一致，
// 返回 *NavigationError。比较前两者都经过 normalizeURL。
func (f *Fixture) VisitURL(ctx context.Context, rawURL string) error {
	return f.perform(ctx, action{name: ActionVisit, value: rawURL}, func(context.Context) error {
		target, err := f.resolve(rawURL)
		if err != nil {
			return &NavigationError{Requested: rawURL, Err: err}
		}
		if err := f.session.Get(target); err != nil {
			actual, _ := f.session.CurrentURL()
			return &NavigationError{Requested: target, Actual: actual, Err: err}
		}
		if !f.cfg.Fixture.StrictNavigation {
			return nil
		}
		actual, err := f.session.CurrentURL()
		if err != nil {
			return &NavigationError{Requested: target, Err: err}
		}
		if normalizeURL(actual) != normalizeURL(target) {
			return &NavigationError{Requested: target, Actual: actual, Err: ErrURLMismatch}
		}
		return nil
	})
}

func (f *Fixture) resolve(rawURL string) (string, error) {
	ref, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", err
	}
	if ref.IsAbs() || f.cfg.Site.BaseURL == "" {
		return ref.String(), nil
	}
	base, err := url.Parse(f.cfg.Site.BaseURL)
	if err != nil {
		return "", err
	}
	return base.ResolveReference(ref).String(), nil
}

// defaultPorts 按 scheme 省略的端口。
var defaultPorts = map[string]string{"http": "80", "https": "443"}

// normalizeURL 返回用于比较的地址：scheme 与 host 转小写，去掉默认端口、
// #fragment 与 path 末尾的 "/"。无法解析时只去掉 fragment 与末尾的 "/"。
func normalizeURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		if i := strings.IndexByte(raw, '#'); i >= 0 {
			raw = raw[:i]
		}
		return strings.TrimRight(raw, "/")
	}
	u.Scheme = strings.ToLower(u.Scheme)
	host := strings.ToLower(u.Hostname())
	if port := u.Port(); port != "" && port != defaultPorts[u.Scheme] {
		host = net.JoinHostPort(host, port)
	} else if strings.Contains(host, ":") {
		host = "[" + host + "]"
	}
	u.Host = host
	u.Fragment = ""
	u.RawFragment = ""
	u.Path = strings.TrimRight(u.Path, "/")
	u.RawPath = strings.TrimRight(u.RawPath, "/")
	return u.String()
}

// WaitForElementToBeVisible 等待元素可见并返回它。
func (f *Fixture) WaitForElementToBeVisible(ctx context.Context, loc xdriver.Locator) (xdriver.Element, error) {
	var el xdriver.Element
	err := f.perform(ctx, action{
		name:    ActionWaitVisible,
		loc:     loc,
		message: func() string { return "this element is not visible when it should be - " + loc.String() },
	}, func(ctx context.Context) error {
		var err error
		el, err = f.visible(ctx, loc)
		return err
	})
	if err != nil {
		return nil, err
	}
	return el, nil
}

// MoveToElement 将指针移到元素上。
func (f *Fixture) MoveToElement(ctx context.Context, loc xdriver.Locator) error {
	return f.perform(ctx, action{
		name:    ActionMoveTo,
		loc:     loc,
		message: func() string { return "could not find element to move to it - " + loc.String() },
	}, func(context.Context) error {
		_, err := f.moveTo(loc)
		return err
	})
}

// Click 等待元素可点击，移到元素上并点击，失败时在预算内重试。
func (f *Fixture) Click(ctx context.Context, loc xdriver.Locator) error {
	return f.perform(ctx, action{
		name:    ActionClick,
		loc:     loc,
		retry:   true,
		message: func() string { return "unable to click element - " + loc.String() },
	}, func(ctx context.Context) error {
		return f.click(ctx, loc)
	})
}

// Append 等待元素可见后输入 value，不清空已有内容。
func (f *Fixture) Append(ctx context.Context, loc xdriver.Locator, value string) error {
	return f.perform(ctx, action{
		name:  ActionAppend,
		loc:   loc,
		value: value,
		retry: true,
		message: func() string {
			return fmt.Sprintf("could not append this text {%s} to this - %s", value, loc)
		},
	}, func(ctx context.Context) error {
		return f.appendText(ctx, loc, value)
	})
}

// Clear 等待元素可见后清空内容。元素状态不允许清空时立即失败。
func (f *Fixture) Clear(ctx context.Context, loc xdriver.Locator) error {
	return f.perform(ctx, action{
		name:    ActionClear,
		loc:     loc,
		retry:   true,
		message: func() string { return "could not clear text from this element - " + loc.String() },
	}, func(ctx context.Context) error {
		return f.clear(ctx, loc)
	})
}

// Type 清空后输入 value。元素不允许清空（invalid element state）时只追加输入。
// 重试时重新清空，输入框中不会残留上一次尝试的内容。
func (f *Fixture) Type(ctx context.Context, loc xdriver.Locator, value string) error {
	return f.perform(ctx, action{
		name:  ActionType,
		loc:   loc,
		value: value,
		retry: true,
		message: func() string {
			return fmt.Sprintf("could not enter this text {%s} to this - %s", value, loc)
		},
	}, func(ctx context.Context) error {
		if err := f.clear(ctx, loc); err != nil {
			if !xdriver.IsInvalidElementState(err) {
				return err
			}
			f.logger.Debug(ctx, "element cannot be cleared, appending", xlog.Locator(loc))
		}
		return f.appendText(ctx, loc, value)
	})
}

// VerifyElementTextIsCorrect 校验元素文本包含 text，比较前去掉双方的空格。
// 文本不符时在预算内重试，期间页面可能仍在渲染。
func (f *Fixture) VerifyElementTextIsCorrect(ctx context.Context, loc xdriver.Locator, text string) error {
	var actual string
	want := stripSpaces(text)
	return f.perform(ctx, action{
		name:  ActionVerifyText,
		loc:   loc,
		value: text,
		retry: true,
		message: func() string {
			return fmt.Sprintf("unable to find this text {%s} in this text - %s - %s", text, actual, loc)
		},
	}, func(context.Context) error {
		el, err := f.session.FindElement(loc)
		if err != nil {
			return err
		}
		got, err := el.Text()
		if err != nil {
			return err
		}
		actual = got
		if !strings.Contains(stripSpaces(got), want) {
			return xretry.NewTemporaryError(fmt.Errorf("%w: want %q in %q", ErrTextMismatch, text, got))
		}
		return nil
	})
}

func stripSpaces(s string) string {
	return strings.ReplaceAll(s, " ", "")
}

// Select 在下拉框中选择 option：先点击下拉框，按可见文本选择；
// 没有该文本时按 value 属性选择；两者都不匹配时返回包装 ErrOptionNotFound 的错误，不再重试。
func (f *Fixture) Select(ctx context.Context, loc xdriver.Locator, option string) error {
	return f.perform(ctx, action{
		name:  ActionSelect,
		loc:   loc,
		value: option,
		retry: true,
		message: func() string {
			return fmt.Sprintf("unable to find this value {%s} in dropdown - %s", option, loc)
		},
	}, func(ctx context.Context) error {
		if err := f.click(ctx, loc); err != nil {
			return err
		}

		err := f.selectByText(ctx, loc, option)
		if err == nil || !optionMissing(err) {
			return err
		}
		f.logger.Debug(ctx, "option text not present, selecting by value",
			xlog.Locator(loc), xlog.Value(option))

		el, err := f.visible(ctx, loc)
		if err != nil {
			return err
		}
		if err := xdriver.SelectByValue(el, option); err != nil {
			if errors.Is(err, xdriver.ErrNoSuchOption) {
				return xretry.NewPermanentError(fmt.Errorf("%w: %q in %s", ErrOptionNotFound, option, loc))
			}
			return err
		}
		return nil
	})
}

// selectByText 等待下拉框可见且包含 option 文本后按文本选择。
func (f *Fixture) selectByText(ctx context.Context, loc xdriver.Locator, option string) error {
	el, err := f.visible(ctx, loc)
	if err != nil {
		return err
	}
	if err := f.wait(ctx, xdriver.TextToBePresentInElementLocated(loc, option)); err != nil {
		return err
	}
	return xdriver.SelectByText(el, option)
}

// optionMissing 判断按文本选择的失败是否意味着没有该文本的选项。
func optionMissing(err error) bool {
	return errors.Is(err, xdriver.ErrNoSuchOption) ||
		errors.Is(err, xdriver.ErrWaitTimeout) ||
		xdriver.IsNoSuchElement(err)
}

func (f *Fixture) appendText(ctx context.Context, loc xdriver.Locator, value string) error {
	el, err := f.visible(ctx, loc)
	if err != nil {
		return err
	}
	return el.SendKeys(value)
}

func (f *Fixture) clear(ctx context.Context, loc xdriver.Locator) error {
	el, err := f.visible(ctx, loc)
	if err != nil {
		return err
	}
	if err := el.Clear(); err != nil {
		if xdriver.IsInvalidElementState(err) {
			return xretry.NewPermanentError(err)
		}
		return err
	}
	return nil
}

// visible 等待元素可见后查找它。
func (f *Fixture) visible(ctx context.Context, loc xdriver.Locator) (xdriver.Element, error) {
	if err := f.wait(ctx, xdriver.ElementIsVisible(loc)); err != nil {
		return nil, err
	}
	return f.session.FindElement(loc)
}

func (f *Fixture) moveTo(loc xdriver.Locator) (xdriver.Element, error) {
	el, err := f.session.FindElement(loc)
	if err != nil {
		return nil, err
	}
	if err := el.MoveTo(0, 0); err != nil {
		return nil, err
	}
	return el, nil
}

// click 等待可点击，移到元素上后点击。
func (f *Fixture) click(ctx context.Context, loc xdriver.Locator) error {
	if err := f.wait(ctx, xdriver.ElementToBeClickable(loc)); err != nil {
		return err
	}
	el, err := f.moveTo(loc)
	if err != nil {
		return err
	}
	return el.Click()
}
