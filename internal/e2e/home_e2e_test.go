//go:build e2e

package e2e

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/omeyang/xfluent/internal/pages/home"
	"github.com/omeyang/xfluent/pkg/browser/xfixture"
	"github.com/omeyang/xfluent/pkg/config/xconf"
	"github.com/omeyang/xfluent/pkg/observability/xlog"
)

// loadConfig 读取 XFLUENT_CONFIG 指定的配置文件，XFLUENT_DRIVER 覆盖驱动类型。
// 未设置时使用无头 Chrome 与默认 WebDriver 地址。
func loadConfig(t *testing.T) xfixture.Config {
	t.Helper()
	var opts []xconf.Option
	driver := os.Getenv("XFLUENT_DRIVER")
	if driver == "" {
		driver = "headless"
	}
	opts = append(opts, xconf.WithOverride("browser.driver", driver))

	if path := os.Getenv("XFLUENT_CONFIG"); path != "" {
		cfg, err := xfixture.LoadConfig(path, opts...)
		require.NoError(t, err)
		return cfg
	}
	cfg, err := xfixture.ParseConfig(nil, xconf.FormatYAML, opts...)
	require.NoError(t, err)
	return cfg
}

// newFixture 打开浏览器，WebDriver 服务不可达时跳过测试。
func newFixture(t *testing.T) *xfixture.Fixture {
	t.Helper()
	cfg := loadConfig(t)
	cfg.Browser.ConnectAttempts = 1

	logger, cleanup, err := xlog.FromConfig(cfg.Log).Build()
	require.NoError(t, err)
	t.Cleanup(func() { _ = cleanup() })

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	f, err := xfixture.New(ctx, cfg, xfixture.WithLogger(logger))
	if err != nil {
		t.Skipf("webdriver not reachable at %s: %v", cfg.Browser.SeleniumURL, err)
	}
	t.Cleanup(func() { _ = f.Close(context.Background()) })
	return f
}

func TestOpenAndSearchTShirt(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	err := home.Open(ctx, f, true).
		EnterValueInTheSearchField(ctx).
		ClickSearchButton(ctx).
		ValidateSearchText(ctx).
		Err()
	require.NoError(t, err)
}

func TestSelectValuesFromDropDownList(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	err := home.Open(ctx, f, true).
		ClickWomenMenu(ctx).
		ClickSortByButtonAndSelectValueFromDropDown(ctx).
		Err()
	require.NoError(t, err)
}
