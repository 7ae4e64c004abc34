package xflake

import (
	"errors"

	"github.com/omeyang/xflake/pkg/ipc/xshm"
)

// =============================================================================
// 错误定义
// =============================================================================

var (
	// ErrIDGeneration 生成失败的统一外层错误。
	// Get53/Get63 的所有失败都包裹为此错误，并保留原始原因：
	//
	//	id, err := gen.Get53()
	//	if errors.Is(err, xflake.ErrLockAcquisition) { ... }
	ErrIDGeneration = errors.New("xflake: id generation failed")

	// ErrTimeRange 63 位变体的时间单位超出 [0, 2^41)。
	// 通常意味着主机时钟错误，或时钟早于纪元。
	ErrTimeRange = errors.New("xflake: time unit out of range")

	// ErrRange 组装后的 63 位 ID 超出 int64 表示范围。
	ErrRange = errors.New("xflake: id out of int64 range")

	// ErrInvalidID ID 为负数或超出变体位宽，Unpack/Parse 返回此错误。
	ErrInvalidID = errors.New("xflake: invalid id")

	// ErrInvalidVariant 变体不是 53 或 63。
	ErrInvalidVariant = errors.New("xflake: invalid variant")

	// ErrInvalidMachineID 机器 ID 来源的值无法解析或为负数。
	ErrInvalidMachineID = errors.New("xflake: invalid machine id")

	// ErrInvalidConfig 选项参数无效，NewGenerator/Init 返回此错误。
	ErrInvalidConfig = errors.New("xflake: invalid config")

	// ErrNilGenerator 生成器实例为 nil 或未通过 NewGenerator 创建。
	ErrNilGenerator = errors.New("xflake: nil generator (use NewGenerator to create)")

	// ErrNotInitialized 显式调用 Init 失败后，包级函数返回此错误。
	// 此时自动初始化被禁用，请修复 Init 失败原因后重新调用 Init。
	ErrNotInitialized = errors.New("xflake: generator not initialized (Init was called but failed; call Init again to retry)")

	// ErrAlreadyInitialized 默认生成器已初始化。
	ErrAlreadyInitialized = errors.New("xflake: generator already initialized")

	// ErrUnknownEncoding 不支持的文本编码。
	ErrUnknownEncoding = errors.New("xflake: unknown encoding")

	// ErrUnsupportedStore 当前存储后端不支持该操作（如状态快照）。
	ErrUnsupportedStore = errors.New("xflake: operation not supported by store")
)

// 共享存储层错误，重新导出以便调用方只依赖本包。
var (
	// ErrLockAcquisition 跨进程锁有界重试耗尽。
	ErrLockAcquisition = xshm.ErrLockAcquisition

	// ErrSharedStore 共享计数器的创建、映射、读写失败。
	ErrSharedStore = xshm.ErrSharedStore
)
