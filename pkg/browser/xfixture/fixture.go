package xfixture

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/omeyang/xfluent/pkg/browser/xdriver"
	"github.com/omeyang/xfluent/pkg/observability/xlog"
	"github.com/omeyang/xfluent/pkg/observability/xmetrics"
)

const componentName = "xfixture"

// Fixture 测试夹具，持有一个浏览器会话并提供带重试的交互动作。
//
// Fixture 不是并发安全的：一个测试独占一个 Fixture。
type Fixture struct {
	cfg      Config
	session  xdriver.Session
	logger   xlog.Logger
	observer xmetrics.Observer
	runID    string
	closed   bool
}

type options struct {
	session     xdriver.Session
	logger      xlog.Logger
	observer    xmetrics.Observer
	openOptions []xdriver.OpenOption
}

// Option Fixture 配置选项。
type Option func(*options)

// WithSession 使用已有会话而不连接 WebDriver 服务，nil 被忽略。
func WithSession(s xdriver.Session) Option {
	return func(o *options) {
		if s != nil {
			o.session = s
		}
	}
}

// WithLogger 设置日志记录器，nil 被忽略。默认使用 xlog.Default()。
func WithLogger(l xlog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithObserver 设置观测器，nil 被忽略。默认不观测。
func WithObserver(ob xmetrics.Observer) Option {
	return func(o *options) {
		if ob != nil {
			o.observer = ob
		}
	}
}

// WithOpenOptions 追加连接 WebDriver 服务时的选项。
func WithOpenOptions(opts ...xdriver.OpenOption) Option {
	return func(o *options) {
		o.openOptions = append(o.openOptions, opts...)
	}
}

// New 校验配置并创建夹具。未通过 WithSession 提供会话时按 cfg.Browser 打开浏览器。
func New(ctx context.Context, cfg Config, opts ...Option) (*Fixture, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := &options{observer: xmetrics.NoopObserver{}}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = xlog.Default()
	}

	runID := uuid.NewString()
	logger := o.logger.With(
		xlog.Component(componentName),
		xlog.RunID(runID),
		xlog.Driver(cfg.Browser.Driver),
	)

	session := o.session
	if session == nil {
		ctx, span := xmetrics.Start(ctx, o.observer, xmetrics.SpanOptions{
			Component: componentName,
			Operation: "open",
			Kind:      xmetrics.KindClient,
			Attrs:     []xmetrics.Attr{xmetrics.String("driver", cfg.Browser.Driver)},
		})
		var retries int
		openOpts := append([]xdriver.OpenOption{
			xdriver.WithConnectRetryHook(func(attempt int, err error) {
				retries++
				logger.Warn(ctx, "webdriver connect retry", xlog.Attempt(attempt), xlog.Err(err))
			}),
		}, o.openOptions...)

		s, err := xdriver.Open(ctx, cfg.Browser, openOpts...)
		span.End(xmetrics.Result{Err: err, Retries: retries})
		if err != nil {
			logger.Error(ctx, "open browser session failed", xlog.Err(err))
			return nil, err
		}
		session = s
	}

	logger.Info(ctx, "fixture ready")
	return &Fixture{
		cfg:      cfg,
		session:  session,
		logger:   logger,
		observer: o.observer,
		runID:    runID,
	}, nil
}

// Close 按 ShouldCloseBrowserAfterTest 决定是否退出浏览器。重复调用返回 nil。
func (f *Fixture) Close(ctx context.Context) error {
	if f.closed {
		return nil
	}
	f.closed = true
	if !f.ShouldCloseBrowserAfterTest() {
		f.logger.Info(ctx, "leaving browser open")
		return nil
	}
	if err := f.session.Quit(); err != nil {
		f.logger.Error(ctx, "quit browser failed", xlog.Err(err))
		return err
	}
	f.logger.Debug(ctx, "browser closed")
	return nil
}

// ShouldCloseBrowserAfterTest 见 Config.ShouldCloseBrowserAfterTest。
func (f *Fixture) ShouldCloseBrowserAfterTest() bool {
	return f.cfg.ShouldCloseBrowserAfterTest()
}

// Session 返回底层会话，供页面对象执行夹具未封装的操作。
func (f *Fixture) Session() xdriver.Session { return f.session }

// Config 返回夹具配置。
func (f *Fixture) Config() Config { return f.cfg }

// RunID 返回本次运行的唯一 ID，同时写入每条日志。
func (f *Fixture) RunID() string { return f.runID }

// Logger 返回携带运行 ID 的日志记录器。
func (f *Fixture) Logger() xlog.Logger { return f.logger }

// WaitTimeout 显式等待的超时。
func (f *Fixture) WaitTimeout() time.Duration { return f.cfg.Fixture.WaitTimeout }

// PollInterval 显式等待的轮询间隔。
func (f *Fixture) PollInterval() time.Duration { return f.cfg.Fixture.PollInterval }

// RetryBudget 单个动作的重试预算。
func (f *Fixture) RetryBudget() time.Duration { return f.cfg.Fixture.RetryBudget }

func (f *Fixture) checkOpen() error {
	if f.closed {
		return ErrClosed
	}
	return nil
}

// wait 以夹具的超时与间隔等待 cond。
func (f *Fixture) wait(ctx context.Context, cond xdriver.Condition) error {
	return f.session.Wait(ctx, cond, f.WaitTimeout(), f.PollInterval())
}
