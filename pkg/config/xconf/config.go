package xconf

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/v2"

	"github.com/omeyang/xflake/pkg/idgen/xflake"
	"github.com/omeyang/xflake/pkg/ipc/xflaked"
	"github.com/omeyang/xflake/pkg/ipc/xshm"
	"github.com/omeyang/xflake/pkg/observability/xlog"
)

// Backend 计数器后端类型。
type Backend string

// 支持的后端。
const (
	// BackendSHM 共享内存后端（默认）。
	BackendSHM Backend = "shm"

	// BackendDaemon 守护进程后端，见 xflaked。
	BackendDaemon Backend = "daemon"
)

// Config xflake 部署配置。
type Config struct {
	// SharedDir 共享状态目录。空值按 xflake 默认规则选择。
	SharedDir string `koanf:"shared_dir"`

	// TokenKey 派生共享状态名的键。空值使用 xflake.DefaultTokenKey。
	TokenKey string `koanf:"token_key"`

	// Backend 计数器后端，默认 shm。
	Backend Backend `koanf:"backend"`

	// Socket 守护进程 Socket 路径，空值使用 xflaked.DefaultSocketPath()。
	Socket string `koanf:"socket"`

	Lock    LockConfig    `koanf:"lock"`
	Machine MachineConfig `koanf:"machine"`
	Log     LogConfig     `koanf:"log"`
}

// LockConfig 跨进程锁重试配置。
type LockConfig struct {
	// Attempts 尝试次数（包含首次），必须大于 0。
	Attempts int `koanf:"attempts"`

	// Interval 两次尝试之间的固定间隔，不能为负。
	Interval time.Duration `koanf:"interval"`
}

// MachineConfig 文件中的机器 ID，优先级低于环境变量。
type MachineConfig struct {
	ID53 *int64 `koanf:"id53"`
	ID63 *int64 `koanf:"id63"`
	ID   *int64 `koanf:"id"`
}

// LogConfig 日志配置。
type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	// File 非空时输出到该文件并按大小轮转。
	File string `koanf:"file"`
}

// Default 返回默认配置。
func Default() *Config {
	return &Config{
		Backend: BackendSHM,
		Lock: LockConfig{
			Attempts: int(xshm.DefaultLockAttempts),
			Interval: xshm.DefaultLockInterval,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// =============================================================================
// 加载
// =============================================================================

// Load 从文件加载配置，格式由扩展名决定（.yaml/.yml 或 .json）。
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, ErrEmptyPath
	}
	format, err := detectFormat(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadFailed, err)
	}
	return LoadBytes(data, format)
}

// LoadBytes 从字节数据加载配置。空数据得到默认配置。
func LoadBytes(data []byte, format Format) (*Config, error) {
	k := koanf.New(".")
	if err := loadData(k, data, format); err != nil {
		return nil, err
	}

	cfg := Default()
	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParseFailed, err)
	}
	cfg.Backend = Backend(strings.ToLower(strings.TrimSpace(string(cfg.Backend))))
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate 校验配置取值。
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendSHM, BackendDaemon:
	default:
		return fmt.Errorf("%w: backend %q", ErrInvalidConfig, c.Backend)
	}
	if c.Lock.Attempts <= 0 {
		return fmt.Errorf("%w: lock.attempts must be positive, got %d", ErrInvalidConfig, c.Lock.Attempts)
	}
	if c.Lock.Interval < 0 {
		return fmt.Errorf("%w: lock.interval must not be negative, got %s", ErrInvalidConfig, c.Lock.Interval)
	}
	for name, id := range map[string]*int64{
		"machine.id53": c.Machine.ID53,
		"machine.id63": c.Machine.ID63,
		"machine.id":   c.Machine.ID,
	} {
		if id != nil && *id < 0 {
			return fmt.Errorf("%w: %s must not be negative, got %d", ErrInvalidConfig, name, *id)
		}
	}
	if c.Log.Level != "" {
		if _, err := xlog.ParseLevel(c.Log.Level); err != nil {
			return fmt.Errorf("%w: log.level: %w", ErrInvalidConfig, err)
		}
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "text", "json":
	default:
		return fmt.Errorf("%w: log.format %q", ErrInvalidConfig, c.Log.Format)
	}
	return nil
}

// =============================================================================
// 转换
// =============================================================================

// MachineSources 返回变体的机器 ID 来源链：先是环境变量链，
// 再是文件中的值，两段都按变体自身、另一变体、通用的次序排列。
func (c *Config) MachineSources(v xflake.Variant) []xflake.Source {
	sources := xflake.DefaultSources(v)

	own, other := c.Machine.ID53, c.Machine.ID63
	ownName, otherName := "machine.id53", "machine.id63"
	if v == xflake.Variant63 {
		own, other = other, own
		ownName, otherName = otherName, ownName
	}
	for _, s := range []struct {
		name string
		id   *int64
	}{
		{ownName, own},
		{otherName, other},
		{"machine.id", c.Machine.ID},
	} {
		if s.id != nil && *s.id >= 0 {
			sources = append(sources, xflake.StaticSource{Label: s.name, Value: uint64(*s.id)})
		}
	}
	return sources
}

// GeneratorOptions 把配置转换为生成器选项。
// backend=daemon 时生成器使用 xflaked.Client，共享目录与锁配置不生效。
func (c *Config) GeneratorOptions() []xflake.Option {
	opts := []xflake.Option{
		xflake.WithSharedDir(c.SharedDir),
		xflake.WithTokenKey(c.TokenKey),
		xflake.WithLockRetry(uint(c.Lock.Attempts), c.Lock.Interval),
		xflake.WithMachineSources(xflake.Variant53, c.MachineSources(xflake.Variant53)...),
		xflake.WithMachineSources(xflake.Variant63, c.MachineSources(xflake.Variant63)...),
	}
	if c.Backend == BackendDaemon {
		opts = append(opts, xflake.WithStore(c.DaemonClient()))
	}
	return opts
}

// DaemonClient 返回配置的守护进程客户端。
func (c *Config) DaemonClient() *xflaked.Client {
	return xflaked.NewClient(c.Socket)
}

// NewLogger 按日志配置构建日志器。返回的清理函数关闭日志文件。
func (c *Config) NewLogger() (xlog.LoggerWithLevel, func() error, error) {
	b := xlog.New().
		SetLevelString(c.Log.Level).
		SetFormat(c.Log.Format)
	if c.Log.File != "" {
		b = b.SetRotation(c.Log.File, xlog.Rotation{})
	}
	return b.Build()
}
