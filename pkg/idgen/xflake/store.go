package xflake

import (
	"context"
	"errors"
	"fmt"

	"github.com/omeyang/xflake/pkg/ipc/xshm"
)

// DefaultTokenKey 派生共享状态名的默认键。
// 使用相同键的进程共享同一组计数器。
const DefaultTokenKey = "github.com/omeyang/xflake"

// Store 按变体持有跨进程计数器的后端。
type Store interface {
	// Advance 在互斥区内调用 unit 读取当前时间单位并推进变体的计数器，
	// 返回写入后的计数器：与上次时间单位相同则序列号加一（超过上限回绕为 0），
	// 否则重置为 0。
	//
	// 时间单位必须在互斥区内读取。自带时钟的后端（如 xflaked 客户端）
	// 由后端在其互斥区内读取时钟，不调用 unit。
	Advance(ctx context.Context, v Variant, unit xshm.UnitFunc) (xshm.Counter, error)

	// Destroy 清零并移除所有变体的共享状态。已不存在的状态不视为错误。
	Destroy(ctx context.Context) error

	// Close 释放当前进程持有的资源，共享状态保留。
	Close() error
}

// Inspector 可选接口：在持锁状态下读取计数器，用于诊断。
type Inspector interface {
	Snapshot(ctx context.Context, v Variant) (xshm.Counter, error)
}

// =============================================================================
// 共享内存后端
// =============================================================================

// SharedMemoryStore 基于 xshm 的默认后端，每个变体一个 Segment。
type SharedMemoryStore struct {
	segments [2]*xshm.Segment
}

var (
	_ Store     = (*SharedMemoryStore)(nil)
	_ Inspector = (*SharedMemoryStore)(nil)
)

// NewSharedMemoryStore 创建共享内存后端。key 为空时使用 DefaultTokenKey。
// 不做任何 I/O，共享状态在首次 Advance 时创建。
func NewSharedMemoryStore(key string, opts ...xshm.Option) (*SharedMemoryStore, error) {
	if key == "" {
		key = DefaultTokenKey
	}
	s := &SharedMemoryStore{}
	for _, v := range Variants() {
		seg, err := xshm.New(xshm.Token(key, v.Layout().Discriminator), opts...)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
		s.segments[v.index()] = seg
	}
	return s, nil
}

// Segment 返回变体对应的 Segment。
func (s *SharedMemoryStore) Segment(v Variant) (*xshm.Segment, error) {
	if !v.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidVariant, int(v))
	}
	return s.segments[v.index()], nil
}

// Advance 实现 Store。
func (s *SharedMemoryStore) Advance(ctx context.Context, v Variant, unit xshm.UnitFunc) (xshm.Counter, error) {
	seg, err := s.Segment(v)
	if err != nil {
		return xshm.Counter{}, err
	}
	return seg.Advance(ctx, unit, v.Layout().MaxSequence())
}

// Snapshot 实现 Inspector。
func (s *SharedMemoryStore) Snapshot(ctx context.Context, v Variant) (xshm.Counter, error) {
	seg, err := s.Segment(v)
	if err != nil {
		return xshm.Counter{}, err
	}
	return seg.Snapshot(ctx)
}

// Destroy 实现 Store。所有变体都会尝试销毁，错误合并返回。
func (s *SharedMemoryStore) Destroy(ctx context.Context) error {
	var errs []error
	for _, seg := range s.segments {
		if err := seg.Destroy(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close 实现 Store。
func (s *SharedMemoryStore) Close() error {
	var errs []error
	for _, seg := range s.segments {
		if err := seg.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
