package xlog

import (
	"log/slog"
	"time"
)

// 常用属性 Key
const (
	KeyError     = "error"
	KeyComponent = "component"
	KeyOperation = "operation"
	KeyDuration  = "duration"

	KeyVariant   = "variant"
	KeyMachineID = "machine_id"
	KeyTimeUnit  = "time_unit"
	KeySequence  = "sequence"
	KeyAttempt   = "attempt"
	KeyToken     = "token"
	KeyPath      = "path"
)

// Err 创建错误属性。err 为 nil 时返回空属性（会被 slog 忽略）。
//
//	if err != nil {
//	    logger.Error(ctx, "generate failed", xlog.Err(err))
//	}
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String(KeyError, err.Error())
}

// Component 创建组件名属性
func Component(name string) slog.Attr {
	return slog.String(KeyComponent, name)
}

// Operation 创建操作名属性
func Operation(name string) slog.Attr {
	return slog.String(KeyOperation, name)
}

// Duration 创建耗时属性，输出人类可读格式（如 "1.5ms"）
func Duration(d time.Duration) slog.Attr {
	return slog.String(KeyDuration, d.String())
}

// Variant 创建 ID 变体属性（"53" 或 "63"）
func Variant(v string) slog.Attr {
	return slog.String(KeyVariant, v)
}

// MachineID 创建机器 ID 属性
func MachineID(id uint64) slog.Attr {
	return slog.Uint64(KeyMachineID, id)
}

// TimeUnit 创建时间单位属性
func TimeUnit(u uint64) slog.Attr {
	return slog.Uint64(KeyTimeUnit, u)
}

// Sequence 创建序列号属性
func Sequence(s uint64) slog.Attr {
	return slog.Uint64(KeySequence, s)
}

// Attempt 创建尝试次数属性
func Attempt(n int) slog.Attr {
	return slog.Int(KeyAttempt, n)
}

// Token 创建共享状态名属性
func Token(t string) slog.Attr {
	return slog.String(KeyToken, t)
}

// Path 创建文件或 socket 路径属性
func Path(p string) slog.Attr {
	return slog.String(KeyPath, p)
}
