package xflaked

import (
	"os"
	"path/filepath"
	"time"

	"github.com/omeyang/xflake/pkg/observability/xlog"
	"github.com/omeyang/xflake/pkg/observability/xmetrics"
)

// 默认配置。
const (
	// DefaultSocketName 默认 Socket 文件名。
	DefaultSocketName = "xflaked.sock"

	// DefaultSocketPerm 默认 Socket 文件权限，与共享内存文件一致允许本机所有用户访问。
	DefaultSocketPerm os.FileMode = 0o666

	// DefaultIdleTimeout 连接空闲超时。
	DefaultIdleTimeout = 30 * time.Second

	// DefaultTimeout 客户端单次请求超时（含拨号）。
	DefaultTimeout = time.Second
)

// DefaultSocketPath 返回默认 Socket 路径（系统临时目录下）。
func DefaultSocketPath() string {
	return filepath.Join(os.TempDir(), DefaultSocketName)
}

// =============================================================================
// 服务端选项
// =============================================================================

type serverOptions struct {
	clock       func() time.Time
	perm        os.FileMode
	idleTimeout time.Duration
	logger      xlog.Logger
	observer    xmetrics.Observer
}

// ServerOption 服务端配置选项。
type ServerOption func(*serverOptions)

func defaultServerOptions() serverOptions {
	return serverOptions{
		clock:       time.Now,
		perm:        DefaultSocketPerm,
		idleTimeout: DefaultIdleTimeout,
		observer:    xmetrics.NoopObserver{},
	}
}

// WithServerClock 设置服务端时钟，默认 time.Now。
// advance 在服务端互斥区内读取该时钟，客户端进程的时钟不参与分配。
func WithServerClock(clock func() time.Time) ServerOption {
	return func(o *serverOptions) {
		if clock != nil {
			o.clock = clock
		}
	}
}

// WithSocketPerm 设置 Socket 文件权限。0 保持默认。
func WithSocketPerm(perm os.FileMode) ServerOption {
	return func(o *serverOptions) {
		if perm != 0 {
			o.perm = perm
		}
	}
}

// WithIdleTimeout 设置连接空闲超时。非正值保持默认。
func WithIdleTimeout(d time.Duration) ServerOption {
	return func(o *serverOptions) {
		if d > 0 {
			o.idleTimeout = d
		}
	}
}

// WithServerLogger 设置服务端日志器，默认 xlog.Default()。
func WithServerLogger(l xlog.Logger) ServerOption {
	return func(o *serverOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithServerObserver 设置服务端观测器。
func WithServerObserver(obs xmetrics.Observer) ServerOption {
	return func(o *serverOptions) {
		if obs != nil {
			o.observer = obs
		}
	}
}

// =============================================================================
// 客户端选项
// =============================================================================

type clientOptions struct {
	timeout  time.Duration
	observer xmetrics.Observer
}

// ClientOption 客户端配置选项。
type ClientOption func(*clientOptions)

// WithTimeout 设置单次请求超时（含拨号）。ctx 带截止时间时以较早者为准。非正值保持默认。
func WithTimeout(d time.Duration) ClientOption {
	return func(o *clientOptions) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// WithClientObserver 设置客户端观测器。
func WithClientObserver(obs xmetrics.Observer) ClientOption {
	return func(o *clientOptions) {
		if obs != nil {
			o.observer = obs
		}
	}
}
