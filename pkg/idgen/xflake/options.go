package xflake

import (
	"fmt"
	"time"

	"github.com/omeyang/xflake/pkg/observability/xlog"
	"github.com/omeyang/xflake/pkg/observability/xmetrics"
)

// =============================================================================
// 配置
// =============================================================================

type options struct {
	store      Store
	clock      func() time.Time
	sources    [2][]Source
	sourcesSet [2]bool // 区分"未传入"与"显式传入空来源"

	// 以下仅作用于默认的共享内存后端，与 WithStore 同时使用时忽略
	sharedDir    string
	tokenKey     string
	lockAttempts uint
	lockInterval time.Duration
	lockSet      bool

	logger   xlog.Logger
	observer xmetrics.Observer

	err error // 第一个无效选项
}

// Option 配置选项函数
type Option func(*options)

func (o *options) fail(format string, args ...any) {
	if o.err == nil {
		o.err = fmt.Errorf("%w: "+format, append([]any{ErrInvalidConfig}, args...)...)
	}
}

// WithStore 使用自定义计数器后端（如 xflaked.Client）。
// 调用方负责关闭传入的 Store，Generator.Close 不会关闭它。
func WithStore(s Store) Option {
	return func(o *options) {
		if s == nil {
			o.fail("nil store")
			return
		}
		o.store = s
	}
}

// WithClock 替换时钟，主要用于测试。
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now == nil {
			o.fail("nil clock")
			return
		}
		o.clock = now
	}
}

// WithMachineSources 替换变体的机器 ID 来源链。
// 传入空列表表示不查询任何来源，机器 ID 恒为 0。
func WithMachineSources(v Variant, sources ...Source) Option {
	return func(o *options) {
		if !v.Valid() {
			o.fail("machine sources for variant %d", int(v))
			return
		}
		o.sources[v.index()] = sources
		o.sourcesSet[v.index()] = true
	}
}

// WithMachineID 为变体指定固定机器 ID，等价于只含一个 StaticSource 的来源链。
func WithMachineID(v Variant, id uint64) Option {
	return WithMachineSources(v, StaticSource{Label: "option", Value: id})
}

// WithSharedDir 设置共享状态目录。未设置时依次使用环境变量 XFLAKE_SHARED_DIR、
// /dev/shm、系统临时目录。
func WithSharedDir(dir string) Option {
	return func(o *options) {
		o.sharedDir = dir
	}
}

// WithTokenKey 设置派生共享状态名的键，默认 DefaultTokenKey。
// 使用不同键的生成器互不影响。
func WithTokenKey(key string) Option {
	return func(o *options) {
		o.tokenKey = key
	}
}

// WithLockRetry 设置跨进程锁的尝试次数（包含首次）与固定间隔。
// 默认 1000 次、1ms。attempts 必须大于 0。
func WithLockRetry(attempts uint, interval time.Duration) Option {
	return func(o *options) {
		if attempts == 0 || interval < 0 {
			o.fail("lock retry attempts=%d interval=%s", attempts, interval)
			return
		}
		o.lockAttempts = attempts
		o.lockInterval = interval
		o.lockSet = true
	}
}

// WithLogger 设置日志器，默认 xlog.Default()。
func WithLogger(l xlog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithObserver 设置观测器，默认不观测。
func WithObserver(obs xmetrics.Observer) Option {
	return func(o *options) {
		if obs != nil {
			o.observer = obs
		}
	}
}
