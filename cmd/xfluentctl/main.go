// xfluentctl 在真实浏览器中运行已登记的首页测试场景。
//
// 用法:
//
//	xfluentctl <命令> [命令参数]
//
// 命令:
//
//	run [场景...]        运行场景，缺省或 all 表示全部
//	list                 列出已登记的场景
//	drivers              列出支持的驱动类型
//	config check <文件>  校验配置文件并打印生效值
//
// run 选项:
//
//	-c, --config    配置文件路径（yaml/yml/json），缺省使用内置默认值
//	-d, --driver    覆盖 browser.driver
//	-t, --timeout   整次运行的超时，0 表示不限
//	-p, --parallel  每个场景独立打开浏览器并发运行
//
// 退出码:
//
//	0: 全部场景通过
//	1: 至少一个场景失败或无法打开浏览器
//	2: 参数错误（未知场景、未知驱动、配置无效等）
//	130: 被 SIGINT/SIGTERM 中断
//
// 示例:
//
//	xfluentctl run search -d headless
//	xfluentctl run all -c xfluent.yaml -p
//	xfluentctl config check xfluent.yaml
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/omeyang/xfluent/pkg/lifecycle/xrun"
)

// 版本信息（可通过 -ldflags 注入，例如:
//
//	go build -ldflags "-X main.Version=1.0.0 -X main.GitCommit=$(git rev-parse --short HEAD)"
//
// ）。
var (
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

// 退出码。
const (
	exitOK        = 0
	exitFailure   = 1
	exitUsage     = 2
	exitInterrupt = 130
)

func main() {
	os.Exit(run(context.Background(), os.Args, newRunner(os.Stdout, os.Stderr)))
}

// createApp 创建 CLI 应用。
func createApp(r *runner) *cli.Command {
	return &cli.Command{
		Name:      "xfluentctl",
		Usage:     "在浏览器中运行首页测试场景",
		Version:   fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildTime),
		Writer:    r.stdout,
		ErrWriter: r.stderr,
		Commands:  createCommands(r),
		Authors: []any{
			"XFluent Team",
		},
		// 退出码统一由 run() 映射，禁止 urfave/cli 直接调用 os.Exit。
		ExitErrHandler: func(_ context.Context, _ *cli.Command, err error) {
			if _, ok := err.(cli.ExitCoder); ok {
				fmt.Fprintln(r.stderr, err)
			}
		},
	}
}

// run 执行命令并返回退出码。
func run(ctx context.Context, args []string, r *runner) int {
	err := createApp(r).Run(ctx, args)
	if err == nil {
		return exitOK
	}

	var exitErr *exitError
	if errors.As(err, &exitErr) {
		return exitErr.code
	}
	var usageErr *usageError
	if errors.As(err, &usageErr) {
		fmt.Fprintf(r.stderr, "参数错误: %v\n", usageErr)
		return exitUsage
	}
	if errors.Is(err, xrun.ErrSignal) {
		fmt.Fprintf(r.stderr, "已中断: %v\n", err)
		return exitInterrupt
	}
	if isCLIUsageError(err) {
		return exitUsage
	}
	fmt.Fprintf(r.stderr, "错误: %v\n", err)
	return exitFailure
}

// isCLIUsageError 判断错误是否来自 urfave/cli 的参数解析。
func isCLIUsageError(err error) bool {
	if _, ok := err.(cli.ExitCoder); ok {
		return true
	}
	msg := err.Error()
	for _, prefix := range []string{
		"flag provided but not defined",
		"invalid value",
		"flag needs an argument",
		"No help topic",
	} {
		if strings.HasPrefix(msg, prefix) {
			return true
		}
	}
	return false
}

// newRunner 创建使用真实浏览器的 runner。
func newRunner(stdout, stderr io.Writer) *runner {
	return &runner{
		stdout: stdout,
		stderr: stderr,
		open:   openFixture,
	}
}
