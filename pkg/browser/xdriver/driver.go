package xdriver

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/tebeka/selenium"
	"github.com/tebeka/selenium/chrome"
	"github.com/tebeka/selenium/firefox"

	"github.com/omeyang/xfluent/pkg/resilience/xretry"
)

// Kind 驱动类型。
type Kind string

// 支持的驱动类型。
const (
	KindDefault  Kind = ""
	KindChrome   Kind = "chrome"
	KindHeadless Kind = "headless"
	KindFirefox  Kind = "firefox"
	KindGrid     Kind = "grid"
)

// 默认值。
const (
	DefaultSeleniumURL     = "http://127.0.0.1:4444/wd/hub"
	DefaultConnectAttempts = 3
	DefaultConnectDelay    = 500 * time.Millisecond
	DefaultWaitTimeout     = 15 * time.Second
	DefaultPollInterval    = 200 * time.Millisecond
)

// 连接重试的退避策略名，对应 browser.connect_backoff。
const (
	BackoffExponential = "exponential"
	BackoffLinear      = "linear"
	BackoffFixed       = "fixed"
	BackoffNone        = "none"
)

// maxConnectDelay 指数与线性退避的延迟上限。
const maxConnectDelay = 5 * time.Second

// Kinds 返回所有支持的驱动类型。
func Kinds() []Kind {
	return []Kind{KindDefault, KindChrome, KindHeadless, KindFirefox, KindGrid}
}

// ParseKind 解析驱动类型，忽略大小写与首尾空白。
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	switch k {
	case KindDefault, KindChrome, KindHeadless, KindFirefox, KindGrid:
		return k, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownDriver, s)
}

// Headless 判断该类型是否在无界面模式下运行。
func (k Kind) Headless() bool {
	return k == KindHeadless || k == KindGrid
}

// String 返回类型名，默认类型返回 "default"。
func (k Kind) String() string {
	if k == KindDefault {
		return "default"
	}
	return string(k)
}

// Config 浏览器会话配置，对应配置文件的 browser 节。
type Config struct {
	// Driver 驱动类型，见 Kinds。
	Driver string `koanf:"driver" json:"driver"`

	// SeleniumURL 本地 WebDriver 服务地址。
	SeleniumURL string `koanf:"selenium_url" json:"selenium_url"`

	// GridURL Selenium Grid 地址，grid 类型必填。
	GridURL string `koanf:"grid_url" json:"grid_url"`

	// ConnectAttempts 建立会话的最大尝试次数（含首次）。
	ConnectAttempts int `koanf:"connect_attempts" json:"connect_attempts"`

	// ConnectBackoff 连接重试的退避策略：exponential（默认）、linear、fixed、none。
	ConnectBackoff string `koanf:"connect_backoff" json:"connect_backoff"`

	// ConnectDelay 第一次重试前的等待，linear 以它为步长，fixed 每次都等待它。
	ConnectDelay time.Duration `koanf:"connect_delay" json:"connect_delay"`

	// CloseAfterTest 非无头模式下测试结束后是否关闭浏览器。
	CloseAfterTest bool `koanf:"close_after_test" json:"close_after_test"`
}

// DefaultConfig 返回默认配置。
func DefaultConfig() Config {
	return Config{
		SeleniumURL:     DefaultSeleniumURL,
		ConnectAttempts: DefaultConnectAttempts,
		ConnectBackoff:  BackoffExponential,
		ConnectDelay:    DefaultConnectDelay,
		CloseAfterTest:  true,
	}
}

// Kind 返回解析后的驱动类型。
func (c Config) Kind() (Kind, error) {
	return ParseKind(c.Driver)
}

// Validate 校验配置。
func (c Config) Validate() error {
	kind, err := c.Kind()
	if err != nil {
		return err
	}
	if c.endpoint(kind) == "" {
		if kind == KindGrid {
			return fmt.Errorf("%w: grid_url", ErrMissingURL)
		}
		return fmt.Errorf("%w: selenium_url", ErrMissingURL)
	}
	if _, err := c.ConnectBackoffPolicy(); err != nil {
		return err
	}
	return nil
}

// ConnectBackoffPolicy 按 ConnectBackoff 与 ConnectDelay 返回连接重试的退避策略。
// ConnectDelay <= 0 时取 DefaultConnectDelay。
func (c Config) ConnectBackoffPolicy() (xretry.BackoffPolicy, error) {
	delay := c.ConnectDelay
	if delay <= 0 {
		delay = DefaultConnectDelay
	}
	switch strings.ToLower(strings.TrimSpace(c.ConnectBackoff)) {
	case "", BackoffExponential:
		return xretry.NewExponentialBackoff(
			xretry.WithInitialDelay(delay),
			xretry.WithMaxDelay(maxConnectDelay),
		), nil
	case BackoffLinear:
		return xretry.NewLinearBackoff(delay, delay, maxConnectDelay), nil
	case BackoffFixed:
		return xretry.NewFixedBackoff(delay), nil
	case BackoffNone:
		return xretry.NewNoBackoff(), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownBackoff, c.ConnectBackoff)
}

// connectPolicy 只尝试一次时不重试，否则最多尝试 ConnectAttempts 次。
func (c Config) connectPolicy() xretry.RetryPolicy {
	if c.ConnectAttempts <= 1 {
		return xretry.NewNeverRetry()
	}
	return xretry.NewFixedRetry(c.ConnectAttempts)
}

func (c Config) withDefaults() Config {
	if c.SeleniumURL == "" {
		c.SeleniumURL = DefaultSeleniumURL
	}
	if c.ConnectAttempts < 1 {
		c.ConnectAttempts = DefaultConnectAttempts
	}
	return c
}

func (c Config) endpoint(kind Kind) string {
	if kind == KindGrid {
		return c.GridURL
	}
	return c.SeleniumURL
}

// Capabilities 返回驱动类型对应的会话能力。
func Capabilities(kind Kind) (selenium.Capabilities, error) {
	switch kind {
	case KindDefault:
		return selenium.Capabilities{"browserName": "chrome"}, nil
	case KindChrome:
		caps := selenium.Capabilities{"browserName": "chrome"}
		caps.AddChrome(chrome.Capabilities{Args: []string{"--start-maximized"}})
		return caps, nil
	case KindHeadless, KindGrid:
		caps := selenium.Capabilities{"browserName": "chrome"}
		caps.AddChrome(chrome.Capabilities{Args: []string{"--headless", "--start-maximized"}})
		return caps, nil
	case KindFirefox:
		caps := selenium.Capabilities{"browserName": "firefox"}
		caps.AddFirefox(firefox.Capabilities{})
		return caps, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, string(kind))
}

// Dialer 建立 WebDriver 会话，签名与 selenium.NewRemote 一致。
type Dialer func(caps selenium.Capabilities, urlPrefix string) (selenium.WebDriver, error)

type openOptions struct {
	dial    Dialer
	backoff xretry.BackoffPolicy
	onRetry func(attempt int, err error)
}

// OpenOption Open 的配置选项。
type OpenOption func(*openOptions)

// WithDialer 替换建立会话的函数，nil 被忽略。
func WithDialer(d Dialer) OpenOption {
	return func(o *openOptions) {
		if d != nil {
			o.dial = d
		}
	}
}

// WithConnectBackoff 设置连接重试的退避策略，覆盖 Config.ConnectBackoff，nil 被忽略。
func WithConnectBackoff(p xretry.BackoffPolicy) OpenOption {
	return func(o *openOptions) {
		if p != nil {
			o.backoff = p
		}
	}
}

// WithConnectRetryHook 设置连接重试回调。
func WithConnectRetryHook(f func(attempt int, err error)) OpenOption {
	return func(o *openOptions) {
		o.onRetry = f
	}
}

// Open 按配置连接 WebDriver 服务并返回会话。
//
// 配置错误（未知驱动类型、缺少地址）在连接前返回，不重试。
// 连接失败最多尝试 cfg.ConnectAttempts 次，两次之间按 cfg.ConnectBackoff 退避；
// 终止性错误（如 session not created）立即返回。
func Open(ctx context.Context, cfg Config, opts ...OpenOption) (Session, error) {
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	kind, err := cfg.Kind()
	if err != nil {
		return nil, err
	}
	caps, err := Capabilities(kind)
	if err != nil {
		return nil, err
	}

	o := &openOptions{dial: selenium.NewRemote}
	for _, opt := range opts {
		opt(o)
	}
	if o.backoff == nil {
		if o.backoff, err = cfg.ConnectBackoffPolicy(); err != nil {
			return nil, err
		}
	}

	retryer := xretry.NewRetryer(
		xretry.WithRetryPolicy(cfg.connectPolicy()),
		xretry.WithBackoffPolicy(o.backoff),
		xretry.WithOnRetry(o.onRetry),
	)
	endpoint := cfg.endpoint(kind)

	wd, err := xretry.DoWithResult(ctx, retryer, func(context.Context) (selenium.WebDriver, error) {
		wd, err := o.dial(caps, endpoint)
		if err != nil {
			return nil, Classify(err)
		}
		return wd, nil
	})
	if err != nil {
		return nil, fmt.Errorf("xdriver: open %s session at %s: %w", kind, endpoint, err)
	}
	return NewSession(wd)
}
