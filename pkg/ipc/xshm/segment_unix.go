//go:build unix

package xshm

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	retry "github.com/avast/retry-go/v5"
	"golang.org/x/sys/unix"
)

// 系统调用函数变量，支持测试中替换以覆盖错误路径。
// 注意：替换包级变量的测试不可使用 t.Parallel()。
var (
	flock  = unix.Flock
	mmap   = unix.Mmap
	munmap = unix.Munmap
)

// errLockBusy 单次非阻塞加锁失败，触发下一次重试。
var errLockBusy = errors.New("xshm: lock busy")

// mapping 当前进程对数据文件的映射。
// info 记录映射时的文件身份，用于发现文件被其他进程删除或重建。
type mapping struct {
	data []byte
	info os.FileInfo
}

// Update 在持锁状态下读取计数器，调用 fn，并把 fn 的返回值写回。
//
// fn 返回错误时不写回，错误原样返回。锁在任何路径上都会释放。
func (s *Segment) Update(ctx context.Context, fn func(Counter) (Counter, error)) error {
	unlock, err := s.lock(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.attachLocked(true); err != nil {
		return err
	}
	next, err := fn(decodeCounter(s.m.data))
	if err != nil {
		return err
	}
	encodeCounter(s.m.data, next)
	return nil
}

// Snapshot 在持锁状态下读取计数器。数据文件不存在时返回零值，不会创建它。
func (s *Segment) Snapshot(ctx context.Context) (Counter, error) {
	unlock, err := s.lock(ctx)
	if err != nil {
		return Counter{}, err
	}
	defer unlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	attached, err := s.attachLocked(false)
	if err != nil || !attached {
		return Counter{}, err
	}
	return decodeCounter(s.m.data), nil
}

// Destroy 将计数器清零，解除映射并删除数据文件与锁文件。
//
// 已不存在的文件不视为错误，因此可以重复调用。
// Destroy 与其他进程的正常生成并发执行时，对方会在下次访问时
// 发现文件已变化并重新附着到新状态。
func (s *Segment) Destroy(ctx context.Context) error {
	unlock, err := s.lock(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	var errs []error
	attached, err := s.attachLocked(false)
	switch {
	case err != nil:
		errs = append(errs, err)
	case attached:
		encodeCounter(s.m.data, Counter{})
	}
	if err := s.detachLocked(); err != nil {
		errs = append(errs, err)
	}
	for _, path := range []string{s.dataPath, s.lockPath} {
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("%w: destroy %s: %w", ErrSharedStore, s.token, err)
	}
	return nil
}

// Close 解除当前进程的映射。共享状态本身保留，之后的调用会重新附着。
func (s *Segment) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.detachLocked()
}

// =============================================================================
// 锁
// =============================================================================

// lock 以有界重试获取文件锁，返回释放函数。
func (s *Segment) lock(ctx context.Context) (func(), error) {
	if ctx == nil {
		ctx = context.Background()
	}
	var held *os.File
	err := retry.New(
		retry.Context(ctx),
		retry.Attempts(s.opts.attempts),
		retry.Delay(s.opts.interval),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			return errors.Is(err, errLockBusy)
		}),
		retry.OnRetry(func(n uint, _ error) {
			// retry-go v5 的 n 从 0 开始
			if s.opts.onContention != nil {
				s.opts.onContention(int(n) + 1)
			}
		}),
	).Do(func() error {
		f, err := s.tryLock()
		if err != nil {
			return err
		}
		held = f
		return nil
	})
	switch {
	case err == nil:
		return func() { releaseLock(held) }, nil
	case errors.Is(err, ErrSharedStore):
		return nil, err
	case errors.Is(err, errLockBusy):
		return nil, fmt.Errorf("%w: %s still busy after %d attempts", ErrLockAcquisition, s.lockPath, s.opts.attempts)
	default:
		return nil, fmt.Errorf("%w: %s: %w", ErrLockAcquisition, s.lockPath, err)
	}
}

// tryLock 打开新的描述符并尝试非阻塞加锁。
func (s *Segment) tryLock() (*os.File, error) {
	f, err := s.openLockFile()
	if err != nil {
		return nil, err
	}
	if err := flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		_ = f.Close()
		if errors.Is(err, unix.EWOULDBLOCK) || errors.Is(err, unix.EINTR) {
			return nil, errLockBusy
		}
		return nil, fmt.Errorf("flock: %w", err)
	}
	// 等锁期间锁文件可能被 Destroy 删除并由其他进程重建，
	// 此时持有的是孤立 inode 上的锁，必须放弃并重新打开。
	fdInfo, fdErr := f.Stat()
	pathInfo, pathErr := os.Stat(s.lockPath)
	if fdErr != nil || pathErr != nil || !os.SameFile(fdInfo, pathInfo) {
		releaseLock(f)
		return nil, errLockBusy
	}
	return f, nil
}

func (s *Segment) openLockFile() (*os.File, error) {
	f, err := os.OpenFile(s.lockPath, os.O_RDWR|os.O_CREATE, s.opts.perm)
	if errors.Is(err, fs.ErrNotExist) {
		if mkErr := os.MkdirAll(filepath.Dir(s.lockPath), s.opts.perm|0o111); mkErr != nil {
			return nil, fmt.Errorf("%w: create dir: %w", ErrSharedStore, mkErr)
		}
		f, err = os.OpenFile(s.lockPath, os.O_RDWR|os.O_CREATE, s.opts.perm)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: open lock: %w", ErrSharedStore, err)
	}
	return f, nil
}

// releaseLock 显式解锁后关闭描述符。关闭本身也会释放 flock。
func releaseLock(f *os.File) {
	_ = flock(int(f.Fd()), unix.LOCK_UN)
	_ = f.Close()
}

// =============================================================================
// 映射
// =============================================================================

// attachLocked 确保当前映射指向数据文件的现有 inode。
// create 为 false 且文件不存在时返回 (false, nil)。调用方必须持有文件锁和 s.mu。
func (s *Segment) attachLocked(create bool) (bool, error) {
	if s.m.data != nil {
		fi, err := os.Stat(s.dataPath)
		if err == nil && os.SameFile(fi, s.m.info) {
			return true, nil
		}
		if err := s.detachLocked(); err != nil {
			return false, err
		}
	}

	flag := os.O_RDWR
	if create {
		flag |= os.O_CREATE
	}
	f, err := os.OpenFile(s.dataPath, flag, s.opts.perm)
	if err != nil {
		if !create && errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("%w: open %s: %w", ErrSharedStore, s.dataPath, err)
	}
	// 映射建立后描述符即可关闭，映射保持有效。
	defer func() { _ = f.Close() }()

	fi, err := f.Stat()
	if err != nil {
		return false, fmt.Errorf("%w: stat %s: %w", ErrSharedStore, s.dataPath, err)
	}
	if fi.Size() < Size {
		if err := f.Truncate(Size); err != nil {
			return false, fmt.Errorf("%w: truncate %s: %w", ErrSharedStore, s.dataPath, err)
		}
	}
	data, err := mmap(int(f.Fd()), 0, Size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return false, fmt.Errorf("%w: mmap %s: %w", ErrSharedStore, s.dataPath, err)
	}
	s.m = mapping{data: data, info: fi}
	return true, nil
}

func (s *Segment) detachLocked() error {
	if s.m.data == nil {
		return nil
	}
	data := s.m.data
	s.m = mapping{}
	if err := munmap(data); err != nil {
		return fmt.Errorf("%w: munmap %s: %w", ErrSharedStore, s.dataPath, err)
	}
	return nil
}
