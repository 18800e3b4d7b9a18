package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/omeyang/xfluent/internal/pages/home"
	"github.com/omeyang/xfluent/pkg/browser/xdriver/xdrivertest"
	"github.com/omeyang/xfluent/pkg/browser/xfixture"
	"github.com/omeyang/xfluent/pkg/observability/xlog"
)

const fastConfig = `
browser:
  driver: headless
fixture:
  retry_budget: 100ms
  wait_timeout: 20ms
  poll_interval: 2ms
log:
  level: error
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "xfluent.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

// newShop 返回包含首页全部元素的模拟会话。
func newShop() *xdrivertest.Session {
	s := xdrivertest.NewSession()
	s.Add(home.SearchField, xdrivertest.NewElement(xdrivertest.WithTag("input")))
	s.Add(home.SearchButton, xdrivertest.NewElement(xdrivertest.WithTag("button")))
	s.Add(home.SearchTextValidation, xdrivertest.NewElement(xdrivertest.WithText(`"FADED SHORT SLEEVE T-SHIRTS"`)))
	s.Add(home.WomenMenu, xdrivertest.NewElement(xdrivertest.WithTag("a")))
	s.Add(home.SortBySelect, xdrivertest.Select(
		xdrivertest.Option("price:asc", "Price: Lowest first"),
		xdrivertest.Option("price:desc", "Price: Highest first"),
		xdrivertest.Option("name:asc", "Product Name: A to Z"),
		xdrivertest.Option("name:desc", "Product Name: Z to A"),
		xdrivertest.Option("reference:asc", "Reference: Lowest first"),
	))
	return s
}

type testRunner struct {
	*runner
	out    *bytes.Buffer
	errOut *bytes.Buffer
	opened atomic.Int32
}

// newTestRunner 创建用模拟会话代替浏览器的 runner，mutate 可修改每个新会话。
func newTestRunner(mutate func(*xdrivertest.Session)) *testRunner {
	tr := &testRunner{out: &bytes.Buffer{}, errOut: &bytes.Buffer{}}
	tr.runner = newRunner(tr.out, tr.errOut)
	tr.open = func(ctx context.Context, cfg xfixture.Config, opts ...xfixture.Option) (*xfixture.Fixture, error) {
		tr.opened.Add(1)
		s := newShop()
		if mutate != nil {
			mutate(s)
		}
		opts = append(opts, xfixture.WithSession(s), xfixture.WithLogger(xlog.Discard()))
		return xfixture.New(ctx, cfg, opts...)
	}
	return tr
}

func TestRunCommand(t *testing.T) {
	cfgPath := writeConfig(t, fastConfig)

	tests := []struct {
		name       string
		args       []string
		mutate     func(*xdrivertest.Session)
		wantCode   int
		wantOut    []string
		wantOpened int32
	}{
		{
			name:       "all_sequential",
			args:       []string{"run", "-c", cfgPath},
			wantCode:   exitOK,
			wantOut:    []string{"PASS search", "PASS sort", "2 passed, 0 failed"},
			wantOpened: 2,
		},
		{
			name:       "all_parallel",
			args:       []string{"run", "-c", cfgPath, "-p", "all"},
			wantCode:   exitOK,
			wantOut:    []string{"PASS search", "PASS sort", "2 passed, 0 failed"},
			wantOpened: 2,
		},
		{
			name:       "single",
			args:       []string{"run", "--config", cfgPath, "search"},
			wantCode:   exitOK,
			wantOut:    []string{"PASS search", "1 passed, 0 failed"},
			wantOpened: 1,
		},
		{
			name:       "scenario_failure",
			args:       []string{"run", "-c", cfgPath, "search", "sort"},
			mutate:     func(s *xdrivertest.Session) { s.Remove(home.SearchTextValidation) },
			wantCode:   exitFailure,
			wantOut:    []string{"FAIL search", "PASS sort", "1 passed, 1 failed"},
			wantOpened: 2,
		},
		{
			name:     "unknown_scenario",
			args:     []string{"run", "-c", cfgPath, "checkout"},
			wantCode: exitUsage,
		},
		{
			name:     "unknown_driver",
			args:     []string{"run", "-c", cfgPath, "-d", "netscape", "search"},
			wantCode: exitUsage,
		},
		{
			name:     "missing_config",
			args:     []string{"run", "-c", filepath.Join(t.TempDir(), "absent.yaml")},
			wantCode: exitUsage,
		},
		{
			name:     "unknown_flag",
			args:     []string{"run", "--bogus"},
			wantCode: exitUsage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := newTestRunner(tt.mutate)
			code := run(context.Background(), append([]string{"xfluentctl"}, tt.args...), tr.runner)
			if code != tt.wantCode {
				t.Fatalf("exit code = %d, want %d\nstdout:\n%s\nstderr:\n%s", code, tt.wantCode, tr.out, tr.errOut)
			}
			for _, want := range tt.wantOut {
				if !strings.Contains(tr.out.String(), want) {
					t.Errorf("stdout missing %q:\n%s", want, tr.out)
				}
			}
			if got := tr.opened.Load(); got != tt.wantOpened {
				t.Errorf("opened %d fixtures, want %d", got, tt.wantOpened)
			}
		})
	}
}

func TestRunCommand_OpenFailure(t *testing.T) {
	cfgPath := writeConfig(t, fastConfig)
	tr := newTestRunner(nil)
	tr.open = func(context.Context, xfixture.Config, ...xfixture.Option) (*xfixture.Fixture, error) {
		return nil, errors.New("connection refused")
	}

	code := run(context.Background(), []string{"xfluentctl", "run", "-c", cfgPath, "search"}, tr.runner)
	if code != exitFailure {
		t.Fatalf("exit code = %d, want %d", code, exitFailure)
	}
	if !strings.Contains(tr.out.String(), "FAIL search: open browser: connection refused") {
		t.Errorf("unexpected output:\n%s", tr.out)
	}
}

func TestRunCommand_CanceledContext(t *testing.T) {
	cfgPath := writeConfig(t, fastConfig)
	tr := newTestRunner(nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	code := run(ctx, []string{"xfluentctl", "run", "-c", cfgPath}, tr.runner)
	if code != exitFailure {
		t.Fatalf("exit code = %d, want %d\n%s", code, exitFailure, tr.errOut)
	}
	if tr.opened.Load() != 0 {
		t.Error("no scenario should run after cancellation")
	}
}

func TestListCommand(t *testing.T) {
	tr := newTestRunner(nil)
	if code := run(context.Background(), []string{"xfluentctl", "list"}, tr.runner); code != exitOK {
		t.Fatalf("exit code = %d", code)
	}
	for _, want := range []string{"search", "sort"} {
		if !strings.Contains(tr.out.String(), want) {
			t.Errorf("list output missing %q:\n%s", want, tr.out)
		}
	}
}

func TestDriversCommand(t *testing.T) {
	tr := newTestRunner(nil)
	if code := run(context.Background(), []string{"xfluentctl", "drivers"}, tr.runner); code != exitOK {
		t.Fatalf("exit code = %d", code)
	}
	out := tr.out.String()
	for _, want := range []string{"default", "chrome", "headless", "firefox", "grid", "headless=true"} {
		if !strings.Contains(out, want) {
			t.Errorf("drivers output missing %q:\n%s", want, out)
		}
	}
}

func TestConfigCheckCommand(t *testing.T) {
	cfgPath := writeConfig(t, fastConfig)

	tests := []struct {
		name     string
		args     []string
		wantCode int
		wantOut  []string
	}{
		{
			name:     "valid",
			args:     []string{"config", "check", cfgPath},
			wantCode: exitOK,
			wantOut: []string{
				"browser.driver",
				"headless",
				"browser.connect_backoff",
				"exponential",
				"browser.connect_delay",
				"500ms",
				"fixture.retry_budget",
				"100ms",
				"site.base_url",
				xfixture.DefaultBaseURL,
			},
		},
		{
			name:     "no_args",
			args:     []string{"config", "check"},
			wantCode: exitUsage,
		},
		{
			name:     "invalid",
			args:     []string{"config", "check", writeConfig(t, "fixture:\n  wait_timeout: -1s\n")},
			wantCode: exitUsage,
		},
		{
			name:     "unknown_backoff",
			args:     []string{"config", "check", writeConfig(t, "browser:\n  connect_backoff: random\n")},
			wantCode: exitUsage,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := newTestRunner(nil)
			code := run(context.Background(), append([]string{"xfluentctl"}, tt.args...), tr.runner)
			if code != tt.wantCode {
				t.Fatalf("exit code = %d, want %d\n%s", code, tt.wantCode, tr.errOut)
			}
			for _, want := range tt.wantOut {
				if !strings.Contains(tr.out.String(), want) {
					t.Errorf("output missing %q:\n%s", want, tr.out)
				}
			}
		})
	}
}

func TestLoadConfig(t *testing.T) {
	cfg, err := loadConfig("", "")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Site.BaseURL != xfixture.DefaultBaseURL {
		t.Errorf("base url = %q", cfg.Site.BaseURL)
	}

	cfg, err = loadConfig("", "firefox")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Browser.Driver != "firefox" {
		t.Errorf("driver = %q, want firefox", cfg.Browser.Driver)
	}
}

func TestUsageError(t *testing.T) {
	inner := errors.New("bad flag")
	err := &usageError{err: inner}
	if err.Error() != "bad flag" {
		t.Errorf("Error() = %q", err.Error())
	}
	if !errors.Is(err, inner) {
		t.Error("usageError should unwrap to inner error")
	}
}

func TestExitError(t *testing.T) {
	err := &exitError{code: 1}
	if err.Error() != "" {
		t.Errorf("Error() = %q, want empty", err.Error())
	}
}

func TestIsCLIUsageError(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{errors.New("flag provided but not defined: -x"), true},
		{errors.New("invalid value \"x\" for flag -t"), true},
		{errors.New("connection refused"), false},
	}
	for _, tt := range tests {
		if got := isCLIUsageError(tt.err); got != tt.want {
			t.Errorf("isCLIUsageError(%q) = %v, want %v", tt.err, got, tt.want)
		}
	}
}
