package xfixture

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/omeyang/xfluent/pkg/browser/xdriver"
	"github.com/omeyang/xfluent/pkg/config/xconf"
	"github.com/omeyang/xfluent/pkg/observability/xlog"
	"github.com/omeyang/xfluent/pkg/resilience/xretry"
)

// DefaultBaseURL 被测站点首页。
const DefaultBaseURL = "http://automationpractice.com/index.php"

// Config 夹具完整配置，对应配置文件的顶层结构。
type Config struct {
	Browser xdriver.Config `koanf:"browser" json:"browser"`
	Fixture Settings       `koanf:"fixture" json:"fixture"`
	Log     xlog.Config    `koanf:"log" json:"log"`
	Site    Site           `koanf:"site" json:"site"`
}

// Settings 夹具动作的时间参数。
type Settings struct {
	// RetryBudget 单个动作的重试时间预算。
	RetryBudget time.Duration `koanf:"retry_budget" json:"retry_budget"`

	// WaitTimeout 显式等待的超时。
	WaitTimeout time.Duration `koanf:"wait_timeout" json:"wait_timeout"`

	// PollInterval 显式等待的轮询间隔。
	PollInterval time.Duration `koanf:"poll_interval" json:"poll_interval"`

	// StrictNavigation 为 true 时 VisitURL 要求落地地址与请求地址一致。
	StrictNavigation bool `koanf:"strict_navigation" json:"strict_navigation"`
}

// Site 被测站点。
type Site struct {
	// BaseURL 首页地址，也是 VisitURL 解析相对路径的基准。
	BaseURL string `koanf:"base_url" json:"base_url"`
}

// DefaultConfig 返回默认配置。
func DefaultConfig() Config {
	return Config{
		Browser: xdriver.DefaultConfig(),
		Fixture: Settings{
			RetryBudget:      xretry.DefaultBudget,
			WaitTimeout:      xdriver.DefaultWaitTimeout,
			PollInterval:     xdriver.DefaultPollInterval,
			StrictNavigation: true,
		},
		Log:  xlog.Config{Level: "info", Format: "text"},
		Site: Site{BaseURL: DefaultBaseURL},
	}
}

// LoadConfig 从文件加载配置，缺失的键取 DefaultConfig 的值。
func LoadConfig(path string, opts ...xconf.Option) (Config, error) {
	c, err := xconf.New(path, opts...)
	if err != nil {
		return Config{}, err
	}
	return decode(c)
}

// ParseConfig 从字节数据解析配置，缺失的键取 DefaultConfig 的值。
func ParseConfig(data []byte, format xconf.Format, opts ...xconf.Option) (Config, error) {
	c, err := xconf.NewFromBytes(data, format, opts...)
	if err != nil {
		return Config{}, err
	}
	return decode(c)
}

func decode(c xconf.Config) (Config, error) {
	cfg := DefaultConfig()
	if err := c.Unmarshal("", &cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate 校验配置，错误同时匹配 ErrInvalidConfig 与具体原因。
func (c Config) Validate() error {
	if err := c.Browser.Validate(); err != nil {
		return fmt.Errorf("%w: browser: %w", ErrInvalidConfig, err)
	}
	if c.Browser.ConnectAttempts < 0 {
		return fmt.Errorf("%w: browser.connect_attempts must not be negative", ErrInvalidConfig)
	}
	if c.Browser.ConnectDelay < 0 {
		return fmt.Errorf("%w: browser.connect_delay must not be negative", ErrInvalidConfig)
	}

	f := c.Fixture
	switch {
	case f.RetryBudget <= 0:
		return fmt.Errorf("%w: fixture.retry_budget must be positive", ErrInvalidConfig)
	case f.WaitTimeout <= 0:
		return fmt.Errorf("%w: fixture.wait_timeout must be positive", ErrInvalidConfig)
	case f.PollInterval <= 0:
		return fmt.Errorf("%w: fixture.poll_interval must be positive", ErrInvalidConfig)
	case f.PollInterval > f.WaitTimeout:
		return fmt.Errorf("%w: fixture.poll_interval %v exceeds wait_timeout %v",
			ErrInvalidConfig, f.PollInterval, f.WaitTimeout)
	}

	if c.Log.Level != "" {
		if _, err := xlog.ParseLevel(c.Log.Level); err != nil {
			return fmt.Errorf("%w: log.level: %w", ErrInvalidConfig, err)
		}
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "text", "json":
	default:
		return fmt.Errorf("%w: log.format %q", ErrInvalidConfig, c.Log.Format)
	}

	if c.Site.BaseURL != "" {
		u, err := url.Parse(c.Site.BaseURL)
		if err != nil {
			return fmt.Errorf("%w: site.base_url: %w", ErrInvalidConfig, err)
		}
		if !u.IsAbs() {
			return fmt.Errorf("%w: site.base_url %q is not absolute", ErrInvalidConfig, c.Site.BaseURL)
		}
	}
	return nil
}

// ShouldCloseBrowserAfterTest 无头与 grid 模式总是关闭浏览器，
// 其他模式取 browser.close_after_test。
func (c Config) ShouldCloseBrowserAfterTest() bool {
	kind, err := c.Browser.Kind()
	if err == nil && kind.Headless() {
		return true
	}
	return c.Browser.CloseAfterTest
}
