package xrun

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/omeyang/xfluent/pkg/observability/xlog"
)

// Group 基于 errgroup + context 并发运行多个任务并协调取消。
//
// 任一任务返回错误或 Cancel 被调用时，所有任务的 context 都会被取消。
//
// Go、GoWithName、Cancel 可并发调用；Wait 只应调用一次。
//
//	g, ctx := xrun.NewGroup(ctx)
//	g.Go(func(ctx context.Context) error {
//	    return runScenario(ctx, "search")
//	})
//	if err := g.Wait(); err != nil {
//	    return err
//	}
type Group struct {
	eg       *errgroup.Group
	ctx      context.Context
	causeCtx context.Context
	cancel   context.CancelCauseFunc
	opts     *groupOptions
}

// NewGroup 创建 Group 与派生的 context。nil ctx 视为 context.Background()。
func NewGroup(ctx context.Context, opts ...Option) (*Group, context.Context) {
	if ctx == nil {
		ctx = context.Background()
	}

	options := defaultOptions()
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(options)
	}

	causeCtx, cancel := context.WithCancelCause(ctx)
	eg, egCtx := errgroup.WithContext(causeCtx)

	return &Group{
		eg:       eg,
		ctx:      egCtx,
		causeCtx: causeCtx,
		cancel:   cancel,
		opts:     options,
	}, egCtx
}

// Go 在新的 goroutine 中执行 fn。fn 返回非 nil 错误时取消其他任务。
func (g *Group) Go(fn func(ctx context.Context) error) {
	g.eg.Go(func() error {
		if fn == nil {
			return ErrNilFunc
		}
		return fn(g.ctx)
	})
}

// GoWithName 与 Go 相同，并在日志中记录任务名与退出原因。
func (g *Group) GoWithName(name string, fn func(ctx context.Context) error) {
	g.eg.Go(func() error {
		if fn == nil {
			return ErrNilFunc
		}
		group := slog.String("group", g.opts.name)
		task := slog.String("task", name)
		g.opts.logger.Debug(g.ctx, "task starting", group, task)

		err := fn(g.ctx)
		if err != nil && !errors.Is(err, context.Canceled) {
			g.opts.logger.Warn(g.ctx, "task exited with error", group, task, xlog.Err(err))
		} else {
			g.opts.logger.Debug(g.ctx, "task stopped", group, task)
		}
		return err
	})
}

// Wait 等待所有任务结束并返回第一个非 nil 错误。
//
// 错误是 context.Canceled 且 Group 被主动取消时，返回 Cancel 设置的原因
// （如 *SignalError），没有原因时返回 nil。
// 即使所有任务都返回 nil，显式的取消原因仍会被返回。
func (g *Group) Wait() error {
	defer g.cancel(nil)

	err := g.eg.Wait()
	g.opts.logger.Debug(g.ctx, "all tasks stopped", slog.String("group", g.opts.name))

	if errors.Is(err, context.Canceled) {
		if g.causeCtx.Err() != nil {
			return g.explicitCause()
		}
		// context.Canceled 来自任务内部，不过滤。
		return err
	}
	if err == nil && g.causeCtx.Err() != nil {
		return g.explicitCause()
	}
	return err
}

func (g *Group) explicitCause() error {
	if cause := context.Cause(g.causeCtx); cause != nil && !errors.Is(cause, context.Canceled) {
		return cause
	}
	return nil
}

// Cancel 取消所有任务，cause 作为 Wait 的返回值；cause 为 nil 时 Wait 返回 nil。
//
// cause 不应包装 context.Canceled，否则会被 Wait 当作普通取消过滤掉。
func (g *Group) Cancel(cause error) {
	g.cancel(cause)
}

// Context 返回 Group 的 context。
func (g *Group) Context() context.Context {
	return g.ctx
}

// Run 并发执行有限任务并监听 DefaultSignals，等价于 RunWithOptions(ctx, nil, jobs...)。
func Run(ctx context.Context, jobs ...func(ctx context.Context) error) error {
	return RunWithOptions(ctx, nil, jobs...)
}

// RunWithOptions 并发执行 jobs，全部完成、任一失败或收到信号时返回。
//
// 返回值：
//   - 全部成功：nil
//   - 任一失败：第一个错误，其余任务的 context 被取消
//   - 收到信号：*SignalError，任务的 context 被取消
func RunWithOptions(ctx context.Context, opts []Option, jobs ...func(ctx context.Context) error) error {
	g, _ := NewGroup(ctx, opts...)

	var pending sync.WaitGroup
	for _, job := range jobs {
		pending.Add(1)
		g.Go(func(ctx context.Context) error {
			defer pending.Done()
			if job == nil {
				return ErrNilFunc
			}
			return job(ctx)
		})
	}

	if !g.opts.noSignalHandler {
		jobsDone := make(chan struct{})
		go func() {
			pending.Wait()
			close(jobsDone)
		}()
		g.Go(func(ctx context.Context) error {
			return g.watchSignals(ctx, jobsDone)
		})
	}

	return g.Wait()
}

// watchSignals 收到信号时以 *SignalError 取消 Group；任务全部结束或 ctx 取消时返回。
func (g *Group) watchSignals(ctx context.Context, jobsDone <-chan struct{}) error {
	signals := g.opts.signals
	// signal.Notify 不带信号时订阅全部信号，空列表取默认值。
	if len(signals) == 0 {
		signals = DefaultSignals()
	}

	testc := testSigChan(ctx)
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, signals...)
	defer signal.Stop(sigCh)

	var sig os.Signal
	select {
	case sig = <-testc:
	case sig = <-sigCh:
	case <-jobsDone:
		return nil
	case <-ctx.Done():
		return nil
	}

	g.opts.logger.Info(ctx, "received signal",
		slog.String("group", g.opts.name),
		slog.String("signal", sig.String()),
	)
	g.cancel(&SignalError{Signal: sig})
	return nil
}
