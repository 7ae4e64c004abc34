package xshm

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
)

// =============================================================================
// Segment
// =============================================================================

// Segment 一份带跨进程锁的共享计数器。
//
// New 不做任何 I/O，数据文件与锁文件在首次访问时按需创建。
// Segment 的所有方法都是并发安全的；同一进程内的并发调用与跨进程调用
// 一样通过文件锁串行化。
type Segment struct {
	token    string
	dataPath string
	lockPath string
	opts     options

	// mu 保护 m。加锁顺序固定为先文件锁后 mu。
	mu sync.Mutex
	m  mapping
}

// New 创建名为 token 的共享计数器句柄。
//
// token 通常由 [Token] 生成，不能为空，也不能包含路径分隔符。
func New(token string, opts ...Option) (*Segment, error) {
	if token == "" || token == "." || token == ".." || strings.ContainsAny(token, `/\`) {
		return nil, fmt.Errorf("%w: bad token %q", ErrInvalidOption, token)
	}
	o := defaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	if err := o.validate(); err != nil {
		return nil, err
	}
	if o.dir == "" {
		o.dir = DefaultDir()
	}
	dataPath := filepath.Join(o.dir, token)
	return &Segment{
		token:    token,
		dataPath: dataPath,
		lockPath: dataPath + ".lock",
		opts:     o,
	}, nil
}

// Token 返回共享状态名。
func (s *Segment) Token() string { return s.token }

// Path 返回数据文件路径。
func (s *Segment) Path() string { return s.dataPath }

// LockPath 返回锁文件路径。
func (s *Segment) LockPath() string { return s.lockPath }

// UnitFunc 读取当前时间单位。
type UnitFunc func() (uint64, error)

// Advance 在持锁状态下调用 unit 读取时间单位，按 [Counter.Next] 推进计数器，
// 返回写入后的计数器。
//
// unit 只在持有文件锁时调用，因此所有进程写入的时间单位顺序与各自读取时钟的顺序一致。
// unit 返回错误时计数器保持不变。
func (s *Segment) Advance(ctx context.Context, unit UnitFunc, maxSeq uint64) (Counter, error) {
	var next Counter
	err := s.Update(ctx, func(c Counter) (Counter, error) {
		u, err := unit()
		if err != nil {
			return Counter{}, err
		}
		next = c.Next(u, maxSeq)
		return next, nil
	})
	if err != nil {
		return Counter{}, err
	}
	return next, nil
}
