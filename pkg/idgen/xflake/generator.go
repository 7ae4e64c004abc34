package xflake

import (
	"context"
	"fmt"
	"time"

	"github.com/omeyang/xflake/pkg/ipc/xshm"
	"github.com/omeyang/xflake/pkg/observability/xlog"
	"github.com/omeyang/xflake/pkg/observability/xmetrics"
)

const component = "xflake"

// EnvSharedDir 未通过 WithSharedDir 指定目录时读取的环境变量。
const EnvSharedDir = "XFLAKE_SHARED_DIR"

// contentionLogEvery 锁竞争日志的采样间隔（按尝试序号）。
const contentionLogEvery = 100

// =============================================================================
// Generator
// =============================================================================

// Generator 单机多进程唯一 ID 生成器。
//
// 两个变体的计数器、锁和机器 ID 缓存互相独立。
// Generator 的所有方法都是并发安全的。
type Generator struct {
	store     Store
	ownsStore bool
	clock     func() time.Time
	resolvers [2]*machineResolver
	logger    xlog.Logger
	observer  xmetrics.Observer
}

// NewGenerator 创建生成器。
//
// 未传入 WithStore 时使用共享内存后端，不做任何 I/O，
// 共享状态在首次生成时创建。
func NewGenerator(opts ...Option) (*Generator, error) {
	o := options{clock: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	if o.err != nil {
		return nil, o.err
	}

	g := &Generator{
		clock:    o.clock,
		logger:   o.logger,
		observer: o.observer,
	}
	if g.logger == nil {
		g.logger = xlog.Default()
	}
	if g.observer == nil {
		g.observer = xmetrics.NoopObserver{}
	}
	for _, v := range Variants() {
		sources := o.sources[v.index()]
		if !o.sourcesSet[v.index()] {
			sources = DefaultSources(v)
		}
		g.resolvers[v.index()] = newMachineResolver(v, sources)
	}

	if o.store != nil {
		g.store = o.store
		return g, nil
	}
	dir := o.sharedDir
	if dir == "" {
		dir, _ = lookupEnv(EnvSharedDir)
	}
	shmOpts := []xshm.Option{
		xshm.WithDir(dir),
		xshm.WithContentionHook(g.onContention),
	}
	if o.lockSet {
		shmOpts = append(shmOpts, xshm.WithLockRetry(o.lockAttempts, o.lockInterval))
	}
	store, err := NewSharedMemoryStore(o.tokenKey, shmOpts...)
	if err != nil {
		return nil, err
	}
	g.store = store
	g.ownsStore = true
	return g, nil
}

func (g *Generator) validate() error {
	if g == nil || g.store == nil {
		return ErrNilGenerator
	}
	return nil
}

// Get53 生成 53 位 ID，机器 ID 从来源链解析。
func (g *Generator) Get53() (int64, error) {
	return g.generate(Variant53, -1)
}

// Get53WithMachine 生成 53 位 ID，使用 machineID 作为机器 ID（按 8 位掩码截断）。
// machineID 为负数时等价于 Get53。
func (g *Generator) Get53WithMachine(machineID int64) (int64, error) {
	return g.generate(Variant53, machineID)
}

// Get63 生成 63 位 ID，机器 ID 从来源链解析。
func (g *Generator) Get63() (int64, error) {
	return g.generate(Variant63, -1)
}

// Get63WithMachine 生成 63 位 ID，使用 machineID 作为机器 ID（按 10 位掩码截断）。
// machineID 为负数时等价于 Get63。
func (g *Generator) Get63WithMachine(machineID int64) (int64, error) {
	return g.generate(Variant63, machineID)
}

// Generate 按变体生成 ID。machineID 为负数表示从来源链解析。
func (g *Generator) Generate(v Variant, machineID int64) (int64, error) {
	if !v.Valid() {
		return 0, wrapGeneration(fmt.Errorf("%w: %d", ErrInvalidVariant, int(v)))
	}
	return g.generate(v, machineID)
}

// MachineID 返回变体解析并缓存的机器 ID。
func (g *Generator) MachineID(v Variant) (uint64, error) {
	if err := g.validate(); err != nil {
		return 0, err
	}
	if !v.Valid() {
		return 0, fmt.Errorf("%w: %d", ErrInvalidVariant, int(v))
	}
	return g.resolvers[v.index()].resolve()
}

// Snapshot 在持锁状态下读取变体的计数器。后端未实现 Inspector 时返回 ErrUnsupportedStore。
func (g *Generator) Snapshot(ctx context.Context, v Variant) (xshm.Counter, error) {
	if err := g.validate(); err != nil {
		return xshm.Counter{}, err
	}
	inspector, ok := g.store.(Inspector)
	if !ok {
		return xshm.Counter{}, ErrUnsupportedStore
	}
	return inspector.Snapshot(ctx, v)
}

// DestroySharedState 清零并移除两个变体的共享计数器与锁。
//
// 已不存在的状态不视为错误，可重复调用。用于测试与重置，
// 不应与正常生成并发执行。
func (g *Generator) DestroySharedState() error {
	if err := g.validate(); err != nil {
		return err
	}
	ctx, span := xmetrics.Start(context.Background(), g.observer, xmetrics.SpanOptions{
		Component: component,
		Operation: "destroy",
	})
	err := g.store.Destroy(ctx)
	span.End(xmetrics.Result{Err: err})
	if err != nil {
		g.logger.Error(ctx, "xflake: destroy shared state failed", xlog.Err(err))
		return fmt.Errorf("xflake: destroy shared state: %w", err)
	}
	g.logger.Info(ctx, "xflake: shared state destroyed")
	return nil
}

// Close 释放生成器创建的后端资源。通过 WithStore 传入的后端由调用方关闭。
func (g *Generator) Close() error {
	if err := g.validate(); err != nil {
		return err
	}
	if !g.ownsStore {
		return nil
	}
	return g.store.Close()
}

// =============================================================================
// 生成流程
// =============================================================================

func (g *Generator) generate(v Variant, override int64) (int64, error) {
	if err := g.validate(); err != nil {
		return 0, wrapGeneration(err)
	}
	ctx, span := xmetrics.Start(context.Background(), g.observer, xmetrics.SpanOptions{
		Component: component,
		Operation: "generate",
		Labels:    []xmetrics.Attr{xmetrics.String("variant", v.String())},
	})
	c, err := g.next(ctx, v, override)
	span.End(xmetrics.Result{Err: err})
	if err != nil {
		g.logger.Error(ctx, "xflake: generate failed", xlog.Variant(v.String()), xlog.Err(err))
		return 0, wrapGeneration(err)
	}
	g.logger.Debug(ctx, "xflake: id generated",
		xlog.Variant(v.String()),
		xlog.TimeUnit(c.Time),
		xlog.MachineID(c.Machine),
		xlog.Sequence(c.Sequence),
	)
	return c.ID, nil
}

// next 按 时钟 → 计数器 → 机器 ID → 组装 的顺序生成一个 ID。
// 时钟在后端的互斥区内读取，见 [Store]。
func (g *Generator) next(ctx context.Context, v Variant, override int64) (Components, error) {
	c, err := g.store.Advance(ctx, v, func() (uint64, error) {
		return TimeUnit(v, g.clock())
	})
	if err != nil {
		return Components{}, err
	}
	machine, err := g.resolvers[v.index()].machineID(override)
	if err != nil {
		return Components{}, err
	}
	id, err := Pack(v, c.LastTimeUnit, machine, c.Sequence)
	if err != nil {
		return Components{}, err
	}
	return Components{ID: id, Variant: v, Time: c.LastTimeUnit, Machine: machine, Sequence: c.Sequence}, nil
}

// wrapGeneration 把内部失败包裹为 ErrIDGeneration，保留原因。
func wrapGeneration(err error) error {
	return fmt.Errorf("%w: %w", ErrIDGeneration, err)
}

// onContention 共享锁竞争回调：每次都记录事件，日志按间隔采样。
func (g *Generator) onContention(attempt int) {
	ctx := context.Background()
	xmetrics.RecordEvent(ctx, g.observer, component, "lock_contention")
	if attempt == 1 || attempt%contentionLogEvery == 0 {
		g.logger.Warn(ctx, "xflake: shared lock contention", xlog.Attempt(attempt))
	}
}
