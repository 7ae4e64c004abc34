package xshm

import "errors"

var (
	// ErrLockAcquisition 有界重试耗尽仍未获得锁，或加锁系统调用失败。
	ErrLockAcquisition = errors.New("xshm: lock acquisition failed")

	// ErrSharedStore 共享状态的创建、映射、读写或删除失败。
	ErrSharedStore = errors.New("xshm: shared store failure")

	// ErrUnsupportedPlatform 当前平台不支持共享内存计数器。
	ErrUnsupportedPlatform = errors.New("xshm: unsupported platform")

	// ErrInvalidOption 选项参数无效。
	ErrInvalidOption = errors.New("xshm: invalid option")
)
