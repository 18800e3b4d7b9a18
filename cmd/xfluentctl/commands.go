package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"sync"
	"text/tabwriter"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/omeyang/xfluent/internal/scenario"
	"github.com/omeyang/xfluent/pkg/browser/xdriver"
	"github.com/omeyang/xfluent/pkg/browser/xfixture"
	"github.com/omeyang/xfluent/pkg/config/xconf"
	"github.com/omeyang/xfluent/pkg/lifecycle/xrun"
	"github.com/omeyang/xfluent/pkg/observability/xlog"
	"github.com/omeyang/xfluent/pkg/observability/xmetrics"
)

// exitError 表示输出已完成，只需设置非零退出码。
type exitError struct {
	code int
}

func (e *exitError) Error() string { return "" }

// usageError 参数错误，退出码 2。
type usageError struct {
	err error
}

func (e *usageError) Error() string { return e.err.Error() }

func (e *usageError) Unwrap() error { return e.err }

// openFunc 按配置打开夹具。
type openFunc func(ctx context.Context, cfg xfixture.Config, opts ...xfixture.Option) (*xfixture.Fixture, error)

func openFixture(ctx context.Context, cfg xfixture.Config, opts ...xfixture.Option) (*xfixture.Fixture, error) {
	return xfixture.New(ctx, cfg, opts...)
}

// runner 持有命令的输出目标与夹具工厂。
type runner struct {
	stdout io.Writer
	stderr io.Writer
	open   openFunc

	mu sync.Mutex
}

// runOptions run 命令的参数。
type runOptions struct {
	configPath string
	driver     string
	timeout    time.Duration
	parallel   bool
	names      []string
}

// createCommands 创建所有子命令。
func createCommands(r *runner) []*cli.Command {
	return []*cli.Command{
		createRunCommand(r),
		createListCommand(r),
		createDriversCommand(r),
		createConfigCommand(r),
	}
}

func createRunCommand(r *runner) *cli.Command {
	return &cli.Command{
		Name:      "run",
		Aliases:   []string{"r"},
		Usage:     "运行测试场景",
		ArgsUsage: "[scenario...]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "配置文件路径",
			},
			&cli.StringFlag{
				Name:    "driver",
				Aliases: []string{"d"},
				Usage:   "驱动类型，覆盖配置文件中的 browser.driver",
			},
			&cli.DurationFlag{
				Name:    "timeout",
				Aliases: []string{"t"},
				Usage:   "整次运行的超时，0 表示不限",
			},
			&cli.BoolFlag{
				Name:    "parallel",
				Aliases: []string{"p"},
				Usage:   "每个场景独立打开浏览器并发运行",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return r.runScenarios(ctx, runOptions{
				configPath: cmd.String("config"),
				driver:     cmd.String("driver"),
				timeout:    cmd.Duration("timeout"),
				parallel:   cmd.Bool("parallel"),
				names:      cmd.Args().Slice(),
			})
		},
	}
}

func createListCommand(r *runner) *cli.Command {
	return &cli.Command{
		Name:    "list",
		Aliases: []string{"ls"},
		Usage:   "列出已登记的场景",
		Action: func(context.Context, *cli.Command) error {
			return r.listScenarios()
		},
	}
}

func createDriversCommand(r *runner) *cli.Command {
	return &cli.Command{
		Name:  "drivers",
		Usage: "列出支持的驱动类型",
		Action: func(context.Context, *cli.Command) error {
			return r.listDrivers()
		},
	}
}

func createConfigCommand(r *runner) *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "配置相关命令",
		Commands: []*cli.Command{
			{
				Name:      "check",
				Usage:     "校验配置文件并打印生效值",
				ArgsUsage: "<file>",
				Action: func(_ context.Context, cmd *cli.Command) error {
					if cmd.Args().Len() != 1 {
						return &usageError{err: errors.New("config check 需要且只接受一个文件参数")}
					}
					return r.checkConfig(cmd.Args().First())
				},
			},
		},
	}
}

// loadConfig 读取配置文件，path 为空时使用默认值；driver 非空时覆盖 browser.driver。
func loadConfig(path, driver string) (xfixture.Config, error) {
	var opts []xconf.Option
	if driver != "" {
		opts = append(opts, xconf.WithOverride("browser.driver", driver))
	}
	if path == "" {
		return xfixture.ParseConfig(nil, xconf.FormatYAML, opts...)
	}
	return xfixture.LoadConfig(path, opts...)
}

// runScenarios 运行选中的场景，逐个打印结果。
// 场景失败不会中断其他场景，全部结束后以退出码 1 汇总。
func (r *runner) runScenarios(ctx context.Context, o runOptions) error {
	selected, err := scenario.Resolve(o.names)
	if err != nil {
		return &usageError{err: err}
	}
	cfg, err := loadConfig(o.configPath, o.driver)
	if err != nil {
		return &usageError{err: err}
	}

	logger, cleanup, err := xlog.FromConfig(cfg.Log).Build()
	if err != nil {
		return &usageError{err: err}
	}
	defer func() { _ = cleanup() }()

	// 使用全局 provider，未安装 SDK 时为 noop。
	observer, err := xmetrics.NewOTelObserver()
	if err != nil {
		return err
	}
	opts := []xfixture.Option{xfixture.WithLogger(logger), xfixture.WithObserver(observer)}

	if o.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}

	var passed, failed int
	record := func(ok bool) {
		r.mu.Lock()
		defer r.mu.Unlock()
		if ok {
			passed++
		} else {
			failed++
		}
	}

	var jobs []func(ctx context.Context) error
	if o.parallel {
		for _, s := range selected {
			jobs = append(jobs, func(ctx context.Context) error {
				record(r.runOne(ctx, cfg, logger, opts, s))
				return nil
			})
		}
	} else {
		jobs = append(jobs, func(ctx context.Context) error {
			for _, s := range selected {
				if ctx.Err() != nil {
					return nil
				}
				record(r.runOne(ctx, cfg, logger, opts, s))
			}
			return nil
		})
	}

	if err := xrun.RunWithOptions(ctx, []xrun.Option{
		xrun.WithName("xfluentctl"),
		xrun.WithLogger(logger),
	}, jobs...); err != nil {
		return err
	}

	r.printf("%d passed, %d failed\n", passed, failed)
	if err := ctx.Err(); err != nil {
		return err
	}
	if failed > 0 {
		return &exitError{code: exitFailure}
	}
	return nil
}

// runOne 打开独立的夹具运行场景 s 并打印结果，返回是否通过。
func (r *runner) runOne(ctx context.Context, cfg xfixture.Config, logger xlog.Logger, opts []xfixture.Option, s scenario.Scenario) bool {
	start := time.Now()
	logger = logger.With(xlog.Scenario(s.Name))

	f, err := r.open(ctx, cfg, slices.Concat(opts, []xfixture.Option{xfixture.WithLogger(logger)})...)
	if err != nil {
		r.printf("FAIL %s: open browser: %v\n", s.Name, err)
		return false
	}
	defer func() {
		if err := f.Close(context.WithoutCancel(ctx)); err != nil {
			logger.Warn(ctx, "close browser failed", xlog.Err(err))
		}
	}()

	if err := s.Run(ctx, f); err != nil {
		logger.Error(ctx, "scenario failed", xlog.Err(err))
		r.printf("FAIL %s (%s): %v\n", s.Name, time.Since(start).Round(time.Millisecond), err)
		return false
	}
	r.printf("PASS %s (%s)\n", s.Name, time.Since(start).Round(time.Millisecond))
	return true
}

func (r *runner) listScenarios() error {
	w := tabwriter.NewWriter(r.stdout, 0, 4, 2, ' ', 0)
	for _, s := range scenario.List() {
		fmt.Fprintf(w, "%s\t%s\n", s.Name, s.Description)
	}
	return w.Flush()
}

func (r *runner) listDrivers() error {
	w := tabwriter.NewWriter(r.stdout, 0, 4, 2, ' ', 0)
	for _, k := range xdriver.Kinds() {
		fmt.Fprintf(w, "%s\theadless=%t\n", k, k.Headless())
	}
	return w.Flush()
}

// checkConfig 加载并校验 path，打印合并默认值后的生效配置。
func (r *runner) checkConfig(path string) error {
	cfg, err := xfixture.LoadConfig(path)
	if err != nil {
		return &usageError{err: err}
	}

	w := tabwriter.NewWriter(r.stdout, 0, 4, 2, ' ', 0)
	for _, kv := range [][2]string{
		{"browser.driver", xdriver.Kind(cfg.Browser.Driver).String()},
		{"browser.selenium_url", cfg.Browser.SeleniumURL},
		{"browser.grid_url", cfg.Browser.GridURL},
		{"browser.connect_attempts", strconv.Itoa(cfg.Browser.ConnectAttempts)},
		{"browser.connect_backoff", cfg.Browser.ConnectBackoff},
		{"browser.connect_delay", cfg.Browser.ConnectDelay.String()},
		{"browser.close_after_test", strconv.FormatBool(cfg.Browser.CloseAfterTest)},
		{"fixture.retry_budget", cfg.Fixture.RetryBudget.String()},
		{"fixture.wait_timeout", cfg.Fixture.WaitTimeout.String()},
		{"fixture.poll_interval", cfg.Fixture.PollInterval.String()},
		{"fixture.strict_navigation", strconv.FormatBool(cfg.Fixture.StrictNavigation)},
		{"log.level", cfg.Log.Level},
		{"log.format", cfg.Log.Format},
		{"log.file", cfg.Log.File},
		{"site.base_url", cfg.Site.BaseURL},
		{"close_browser_after_test", strconv.FormatBool(cfg.ShouldCloseBrowserAfterTest())},
	} {
		fmt.Fprintf(w, "%s\t%s\n", kv[0], kv[1])
	}
	return w.Flush()
}

func (r *runner) printf(format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintf(r.stdout, format, args...)
}
