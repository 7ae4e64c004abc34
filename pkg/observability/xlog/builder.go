package xlog

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"sync/atomic"

	"gopkg.in/natefinch/lumberjack.v2"
)

// 轮转默认值。
const (
	// DefaultMaxSizeMB 默认单个日志文件最大大小（MB）
	DefaultMaxSizeMB = 100
	// DefaultMaxBackups 默认保留的备份文件数量
	DefaultMaxBackups = 7
	// DefaultMaxAgeDays 默认保留备份的天数
	DefaultMaxAgeDays = 30
)

// Rotation 日志文件轮转参数。零值字段使用默认值。
type Rotation struct {
	// MaxSizeMB 单个文件最大大小（MB），默认 DefaultMaxSizeMB
	MaxSizeMB int
	// MaxBackups 保留的备份数量，默认 DefaultMaxBackups
	MaxBackups int
	// MaxAgeDays 保留备份的天数，默认 DefaultMaxAgeDays
	MaxAgeDays int
	// Compress 是否 gzip 压缩备份
	Compress bool
}

// Builder 日志配置构建器
type Builder struct {
	output    io.Writer
	levelVar  *slog.LevelVar
	format    string
	addSource bool
	rotator   io.Closer
	onError   func(error)
	err       error
}

// New 创建配置构建器。默认输出到 stderr，Info 级别，text 格式。
func New() *Builder {
	levelVar := new(slog.LevelVar)
	levelVar.Set(slog.LevelInfo)

	return &Builder{
		output:   os.Stderr,
		levelVar: levelVar,
		format:   "text",
	}
}

// SetOutput 设置日志输出目标。nil 被忽略。
func (b *Builder) SetOutput(w io.Writer) *Builder {
	if b.err != nil || w == nil {
		return b
	}
	b.output = w
	return b
}

// SetLevel 设置日志级别
func (b *Builder) SetLevel(level Level) *Builder {
	if b.err != nil {
		return b
	}
	b.levelVar.Set(slog.Level(level))
	return b
}

// SetLevelString 通过字符串设置日志级别。空字符串保持当前级别。
func (b *Builder) SetLevelString(s string) *Builder {
	if b.err != nil || strings.TrimSpace(s) == "" {
		return b
	}
	level, err := ParseLevel(s)
	if err != nil {
		b.err = err
		return b
	}
	return b.SetLevel(level)
}

// SetFormat 设置输出格式：text 或 json。空值视为 text。
func (b *Builder) SetFormat(format string) *Builder {
	if b.err != nil {
		return b
	}
	normalized := strings.ToLower(strings.TrimSpace(format))
	switch normalized {
	case "":
		b.format = "text"
	case "text", "json":
		b.format = normalized
	default:
		b.err = fmt.Errorf("xlog: unknown format %q", format)
	}
	return b
}

// SetAddSource 是否在日志中添加源码位置
func (b *Builder) SetAddSource(enable bool) *Builder {
	b.addSource = enable
	return b
}

// SetRotation 输出到 filename，并按 r 进行大小轮转（lumberjack）。
func (b *Builder) SetRotation(filename string, r Rotation) *Builder {
	if b.err != nil {
		return b
	}
	if strings.TrimSpace(filename) == "" {
		b.err = errors.New("xlog: rotation filename is empty")
		return b
	}
	if r.MaxSizeMB < 0 || r.MaxBackups < 0 || r.MaxAgeDays < 0 {
		b.err = fmt.Errorf("xlog: negative rotation setting %+v", r)
		return b
	}
	lj := &lumberjack.Logger{
		Filename:   filename,
		MaxSize:    orDefault(r.MaxSizeMB, DefaultMaxSizeMB),
		MaxBackups: orDefault(r.MaxBackups, DefaultMaxBackups),
		MaxAge:     orDefault(r.MaxAgeDays, DefaultMaxAgeDays),
		Compress:   r.Compress,
	}
	b.rotator = lj
	b.output = lj
	return b
}

// SetOnError 设置内部错误回调，Handler.Handle 失败时同步调用。
func (b *Builder) SetOnError(fn func(error)) *Builder {
	b.onError = fn
	return b
}

// Build 构建 Logger 实例
//
// 返回值：
//   - LoggerWithLevel: 日志实例，同时支持动态级别控制
//   - func() error: 清理函数，用于关闭轮转文件，可重复调用
//   - error: 配置错误
func (b *Builder) Build() (LoggerWithLevel, func() error, error) {
	if b.err != nil {
		return nil, nil, b.err
	}

	opts := &slog.HandlerOptions{
		Level:     b.levelVar,
		AddSource: b.addSource,
	}
	var handler slog.Handler
	if b.format == "json" {
		handler = slog.NewJSONHandler(b.output, opts)
	} else {
		handler = slog.NewTextHandler(b.output, opts)
	}

	logger := &xlogger{
		handler:    handler,
		levelVar:   b.levelVar,
		onError:    b.onError,
		errorCount: new(atomic.Uint64),
		addSource:  b.addSource,
	}

	var once sync.Once
	rotator := b.rotator
	cleanup := func() error {
		var err error
		once.Do(func() {
			if rotator != nil {
				err = rotator.Close()
			}
		})
		return err
	}
	return logger, cleanup, nil
}

func orDefault(v, def int) int {
	if v == 0 {
		return def
	}
	return v
}
