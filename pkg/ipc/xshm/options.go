package xshm

import (
	"fmt"
	"os"
	"time"
)

const (
	// DefaultLockAttempts 默认加锁尝试次数（包含首次）
	DefaultLockAttempts uint = 1000

	// DefaultLockInterval 默认加锁重试间隔
	DefaultLockInterval = time.Millisecond

	// DefaultPerm 默认数据文件与锁文件权限。
	// 实际权限受进程 umask 影响。
	DefaultPerm os.FileMode = 0o666
)

// shmDir 内存文件系统挂载点，测试中可替换。
var shmDir = "/dev/shm"

// DefaultDir 返回默认共享目录：/dev/shm 存在时使用它，否则使用 os.TempDir()。
func DefaultDir() string {
	if fi, err := os.Stat(shmDir); err == nil && fi.IsDir() {
		return shmDir
	}
	return os.TempDir()
}

type options struct {
	dir          string
	perm         os.FileMode
	attempts     uint
	interval     time.Duration
	onContention func(attempt int)
}

// Option 配置 [Segment] 的选项函数。
type Option func(*options)

func defaultOptions() options {
	return options{
		perm:     DefaultPerm,
		attempts: DefaultLockAttempts,
		interval: DefaultLockInterval,
	}
}

// WithDir 设置共享目录。空字符串表示使用 [DefaultDir]。
func WithDir(dir string) Option {
	return func(o *options) {
		o.dir = dir
	}
}

// WithPerm 设置新建数据文件与锁文件的权限。
func WithPerm(perm os.FileMode) Option {
	return func(o *options) {
		o.perm = perm
	}
}

// WithLockRetry 设置加锁的尝试次数（包含首次）和固定重试间隔。
// attempts 必须大于 0，interval 不能为负。
func WithLockRetry(attempts uint, interval time.Duration) Option {
	return func(o *options) {
		o.attempts = attempts
		o.interval = interval
	}
}

// WithContentionHook 设置锁竞争回调，每次加锁失败后以 1 起始的尝试序号调用。
// 回调在加锁循环中同步执行，不应阻塞。
func WithContentionHook(fn func(attempt int)) Option {
	return func(o *options) {
		o.onContention = fn
	}
}

func (o *options) validate() error {
	if o.attempts == 0 {
		return fmt.Errorf("%w: lock attempts must be greater than 0", ErrInvalidOption)
	}
	if o.interval < 0 {
		return fmt.Errorf("%w: negative lock interval %s", ErrInvalidOption, o.interval)
	}
	if o.perm&0o600 != 0o600 {
		return fmt.Errorf("%w: perm %#o must grant owner read and write", ErrInvalidOption, o.perm)
	}
	return nil
}
