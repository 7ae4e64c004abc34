package xflake

import (
	"sync"
	"sync/atomic"
)

// =============================================================================
// 默认生成器
// =============================================================================

var (
	defaultGen atomic.Pointer[Generator]
	initMu     sync.Mutex
	// initCalled 标记用户是否显式调用过 Init。一旦为 true，
	// ensureInitialized 不再自动初始化。受 initMu 保护。
	initCalled bool
)

// Init 使用 opts 初始化默认生成器。只能成功调用一次，
// 之后返回 ErrAlreadyInitialized。未调用 Init 时包级函数按默认选项惰性初始化。
func Init(opts ...Option) error {
	initMu.Lock()
	defer initMu.Unlock()
	if defaultGen.Load() != nil {
		return ErrAlreadyInitialized
	}
	initCalled = true
	gen, err := NewGenerator(opts...)
	if err != nil {
		return err
	}
	defaultGen.Store(gen)
	return nil
}

func ensureInitialized() (*Generator, error) {
	if gen := defaultGen.Load(); gen != nil {
		return gen, nil
	}
	initMu.Lock()
	defer initMu.Unlock()
	if gen := defaultGen.Load(); gen != nil {
		return gen, nil
	}
	// 用户显式调用过 Init 但失败了，不覆盖用户意图
	if initCalled {
		return nil, ErrNotInitialized
	}
	gen, err := NewGenerator()
	if err != nil {
		return nil, err
	}
	defaultGen.Store(gen)
	return gen, nil
}

// Default 返回默认生成器，必要时惰性初始化。
func Default() (*Generator, error) {
	return ensureInitialized()
}

// Get53 使用默认生成器生成 53 位 ID。
func Get53() (int64, error) {
	return Get53WithMachine(-1)
}

// Get53WithMachine 使用默认生成器和指定机器 ID 生成 53 位 ID。负数表示不指定。
func Get53WithMachine(machineID int64) (int64, error) {
	gen, err := ensureInitialized()
	if err != nil {
		return 0, wrapGeneration(err)
	}
	return gen.Get53WithMachine(machineID)
}

// Get63 使用默认生成器生成 63 位 ID。
func Get63() (int64, error) {
	return Get63WithMachine(-1)
}

// Get63WithMachine 使用默认生成器和指定机器 ID 生成 63 位 ID。负数表示不指定。
func Get63WithMachine(machineID int64) (int64, error) {
	gen, err := ensureInitialized()
	if err != nil {
		return 0, wrapGeneration(err)
	}
	return gen.Get63WithMachine(machineID)
}

// MustGet53 同 Get53，失败时 panic。仅用于初始化阶段或测试。
func MustGet53() int64 {
	id, err := Get53()
	if err != nil {
		panic(err)
	}
	return id
}

// MustGet63 同 Get63，失败时 panic。仅用于初始化阶段或测试。
func MustGet63() int64 {
	id, err := Get63()
	if err != nil {
		panic(err)
	}
	return id
}

// DestroySharedState 使用默认生成器移除共享状态。
func DestroySharedState() error {
	gen, err := ensureInitialized()
	if err != nil {
		return err
	}
	return gen.DestroySharedState()
}
