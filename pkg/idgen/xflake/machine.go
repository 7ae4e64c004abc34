package xflake

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
)

// 测试注入点：允许测试替换环境变量读取。
var lookupEnv = os.LookupEnv

// =============================================================================
// 环境变量
// =============================================================================

const (
	// EnvMachineID53 53 位变体优先使用的机器 ID 环境变量
	EnvMachineID53 = "SNOWFLAKE53_MACHINE_ID"

	// EnvMachineID63 63 位变体优先使用的机器 ID 环境变量
	EnvMachineID63 = "SNOWFLAKE63_MACHINE_ID"

	// EnvMachineID 两种变体共同的兜底环境变量
	EnvMachineID = "SNOWFLAKE_MACHINE_ID"
)

// =============================================================================
// 机器 ID 来源
// =============================================================================

// Source 机器 ID 来源。
type Source interface {
	// Name 来源名称，用于日志与错误信息
	Name() string
	// Lookup 返回来源的值。ok 为 false 表示来源未提供值，继续尝试下一个来源。
	Lookup() (id uint64, ok bool, err error)
}

// EnvSource 从环境变量读取十进制机器 ID。未设置或为空白时视为未提供。
type EnvSource string

// Name 返回 "env:<变量名>"。
func (e EnvSource) Name() string { return "env:" + string(e) }

// Lookup 读取并解析环境变量。负数与非数字返回 ErrInvalidMachineID。
func (e EnvSource) Lookup() (uint64, bool, error) {
	raw, ok := lookupEnv(string(e))
	if !ok {
		return 0, false, nil
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false, nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("%w: %s value %q: %w", ErrInvalidMachineID, e, raw, err)
	}
	if n < 0 {
		return 0, false, fmt.Errorf("%w: %s value %d is negative", ErrInvalidMachineID, e, n)
	}
	return uint64(n), true, nil
}

// StaticSource 固定值来源，通常来自配置文件。
type StaticSource struct {
	Label string
	Value uint64
}

// Name 返回 "static:<Label>"。
func (s StaticSource) Name() string { return "static:" + s.Label }

// Lookup 总是返回 Value。
func (s StaticSource) Lookup() (uint64, bool, error) { return s.Value, true, nil }

// DefaultSources 返回变体的默认来源链。
//
//	53: SNOWFLAKE53_MACHINE_ID → SNOWFLAKE63_MACHINE_ID → SNOWFLAKE_MACHINE_ID
//	63: SNOWFLAKE63_MACHINE_ID → SNOWFLAKE53_MACHINE_ID → SNOWFLAKE_MACHINE_ID
func DefaultSources(v Variant) []Source {
	if v == Variant63 {
		return []Source{EnvSource(EnvMachineID63), EnvSource(EnvMachineID53), EnvSource(EnvMachineID)}
	}
	return []Source{EnvSource(EnvMachineID53), EnvSource(EnvMachineID63), EnvSource(EnvMachineID)}
}

// ResolveMachineID 依次查询 sources，返回第一个提供值的来源给出的机器 ID（已按变体掩码）。
// 全部未提供时返回 0。不做缓存。
func ResolveMachineID(v Variant, sources ...Source) (uint64, error) {
	if !v.Valid() {
		return 0, fmt.Errorf("%w: %d", ErrInvalidVariant, int(v))
	}
	for _, src := range sources {
		if src == nil {
			continue
		}
		id, ok, err := src.Lookup()
		if err != nil {
			return 0, err
		}
		if ok {
			return id & v.Layout().MachineMask(), nil
		}
	}
	return 0, nil
}

// =============================================================================
// 缓存解析器
// =============================================================================

// machineResolver 首次成功解析后缓存结果，之后不再查询来源。
// 只缓存成功结果，失败后下次调用重新解析。
type machineResolver struct {
	variant Variant
	sources []Source

	mu     sync.Mutex
	cached atomic.Pointer[uint64]
}

func newMachineResolver(v Variant, sources []Source) *machineResolver {
	return &machineResolver{variant: v, sources: sources}
}

// resolve 返回缓存值，未缓存时解析并缓存。
func (r *machineResolver) resolve() (uint64, error) {
	if id := r.cached.Load(); id != nil {
		return *id, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if id := r.cached.Load(); id != nil {
		return *id, nil
	}
	id, err := ResolveMachineID(r.variant, r.sources...)
	if err != nil {
		return 0, err
	}
	r.cached.Store(&id)
	return id, nil
}

// machineID 返回生效的机器 ID：override 非负时直接掩码使用，不触碰缓存。
func (r *machineResolver) machineID(override int64) (uint64, error) {
	if override >= 0 {
		return uint64(override) & r.variant.Layout().MachineMask(), nil
	}
	return r.resolve()
}
