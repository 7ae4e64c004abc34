//go:build unix

package xflake

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omeyang/xflake/pkg/observability/xlog"
)

// newSHMGenerator 使用临时目录的共享内存后端。
func newSHMGenerator(t *testing.T, dir string, opts ...Option) *Generator {
	t.Helper()
	base := []Option{
		WithSharedDir(dir),
		WithLogger(xlog.Discard()),
		WithMachineSources(Variant53),
		WithMachineSources(Variant63),
	}
	g, err := NewGenerator(append(base, opts...)...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = g.Close() })
	return g
}

func TestSharedMemory_Scenario(t *testing.T) {
	dir := t.TempDir()
	clock := newFakeClock(time.Minute)
	g := newSHMGenerator(t, dir, WithClock(clock.Now))

	for want := uint64(0); want < 3; want++ {
		id, err := g.Get53WithMachine(7)
		require.NoError(t, err)
		c, err := Unpack(Variant53, id)
		require.NoError(t, err)
		assert.Equal(t, want, c.Sequence)
		assert.Equal(t, uint64(7), c.Machine)
	}

	clock.Advance(100 * time.Millisecond)
	id, err := g.Get53WithMachine(7)
	require.NoError(t, err)
	c, err := Unpack(Variant53, id)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), c.Sequence)

	snap, err := g.Snapshot(context.Background(), Variant53)
	require.NoError(t, err)
	assert.Equal(t, c.Time, snap.LastTimeUnit)
	assert.Equal(t, uint64(0), snap.Sequence)
}

func TestSharedMemory_Unique53FullUnit(t *testing.T) {
	clock := newFakeClock(time.Hour)
	g := newSHMGenerator(t, t.TempDir(), WithClock(clock.Now))

	seen := make(map[int64]struct{}, 1023)
	for i := 0; i < 1023; i++ {
		id, err := g.Get53()
		require.NoError(t, err)
		seen[id] = struct{}{}
	}
	assert.Len(t, seen, 1023)
}

func TestSharedMemory_Unique63RealClock(t *testing.T) {
	g := newSHMGenerator(t, t.TempDir())

	const n = 20000
	seen := make(map[int64]struct{}, n)
	for i := 0; i < n; i++ {
		id, err := g.Get63()
		require.NoError(t, err)
		seen[id] = struct{}{}
	}
	assert.Len(t, seen, n)
}

func TestSharedMemory_SharedAcrossGenerators(t *testing.T) {
	dir := t.TempDir()
	clock := newFakeClock(time.Hour)

	const (
		generators = 4
		perGen     = 200
	)
	var (
		mu   sync.Mutex
		seen = make(map[int64]struct{}, generators*perGen)
		wg   sync.WaitGroup
	)
	for i := 0; i < generators; i++ {
		g := newSHMGenerator(t, dir, WithClock(clock.Now))
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perGen; j++ {
				id, err := g.Get63()
				if !assert.NoError(t, err) {
					return
				}
				mu.Lock()
				seen[id] = struct{}{}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Len(t, seen, generators*perGen)
}

func TestSharedMemory_ConcurrentGeneratorsRealClock(t *testing.T) {
	dir := t.TempDir()

	const (
		generators = 8
		perGen     = 500
	)
	var (
		mu   sync.Mutex
		seen = make(map[int64]struct{}, generators*perGen)
		wg   sync.WaitGroup
	)
	for i := 0; i < generators; i++ {
		g := newSHMGenerator(t, dir)
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perGen; j++ {
				id, err := g.Get63()
				if !assert.NoError(t, err) {
					return
				}
				mu.Lock()
				seen[id] = struct{}{}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Len(t, seen, generators*perGen, "time unit crossings must not reissue ids")
}

func TestSharedMemory_TimestampFidelity(t *testing.T) {
	g := newSHMGenerator(t, t.TempDir())

	before := time.Now()
	id, err := g.Get63()
	require.NoError(t, err)
	after := time.Now()

	c, err := Unpack(Variant63, id)
	require.NoError(t, err)
	assert.False(t, c.Timestamp.Before(before.Truncate(time.Millisecond).Add(-time.Millisecond)))
	assert.False(t, c.Timestamp.After(after.Add(time.Millisecond)))

	id, err = g.Get53()
	require.NoError(t, err)
	c, err = Unpack(Variant53, id)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now(), c.Timestamp, 200*time.Millisecond)
}

func TestSharedMemory_DestroyIdempotent(t *testing.T) {
	dir := t.TempDir()
	clock := newFakeClock(time.Hour)
	g := newSHMGenerator(t, dir, WithClock(clock.Now))

	// 从未生成过也可以销毁
	require.NoError(t, g.DestroySharedState())

	for i := 0; i < 5; i++ {
		_, err := g.Get63()
		require.NoError(t, err)
	}
	_, err := g.Get53()
	require.NoError(t, err)

	require.NoError(t, g.DestroySharedState())
	require.NoError(t, g.DestroySharedState())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "data and lock files are removed")

	// 销毁后同一时间单位重新从 0 开始
	id, err := g.Get63()
	require.NoError(t, err)
	c, err := Unpack(Variant63, id)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), c.Sequence)
}

func TestSharedMemory_TokenKeyIsolation(t *testing.T) {
	dir := t.TempDir()
	clock := newFakeClock(time.Hour)
	a := newSHMGenerator(t, dir, WithClock(clock.Now), WithTokenKey("a"))
	b := newSHMGenerator(t, dir, WithClock(clock.Now), WithTokenKey("b"))

	for i := 0; i < 3; i++ {
		_, err := a.Get53()
		require.NoError(t, err)
	}
	id, err := b.Get53()
	require.NoError(t, err)
	c, err := Unpack(Variant53, id)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), c.Sequence)
}

func TestSharedMemory_EnvMachineID(t *testing.T) {
	clearMachineEnv(t)
	t.Setenv(EnvMachineID, "513")
	g, err := NewGenerator(WithSharedDir(t.TempDir()), WithLogger(xlog.Discard()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = g.Close() })

	id, err := g.Get63()
	require.NoError(t, err)
	c, err := Unpack(Variant63, id)
	require.NoError(t, err)
	assert.Equal(t, uint64(513), c.Machine)

	id, err = g.Get53()
	require.NoError(t, err)
	c, err = Unpack(Variant53, id)
	require.NoError(t, err)
	assert.Equal(t, uint64(513&0xFF), c.Machine)
}

func TestSharedMemory_LockRetryOption(t *testing.T) {
	g := newSHMGenerator(t, t.TempDir(), WithLockRetry(1, 0))
	_, err := g.Get53()
	assert.NoError(t, err)

	store, ok := g.store.(*SharedMemoryStore)
	require.True(t, ok)
	seg, err := store.Segment(Variant63)
	require.NoError(t, err)
	assert.Contains(t, seg.Token(), ".36")
}

func TestLazyInit_UsesEnvSharedDir(t *testing.T) {
	resetGlobal(t)
	clearMachineEnv(t)
	t.Setenv(EnvSharedDir, t.TempDir())

	a, err := Get63()
	require.NoError(t, err)
	b, err := Get63()
	require.NoError(t, err)
	assert.NotEqual(t, a, b)

	gen, err := Default()
	require.NoError(t, err)
	store, ok := gen.store.(*SharedMemoryStore)
	require.True(t, ok)
	seg, err := store.Segment(Variant63)
	require.NoError(t, err)
	assert.Contains(t, seg.Path(), lookupDir(t))

	require.NoError(t, DestroySharedState())
}

func lookupDir(t *testing.T) string {
	t.Helper()
	dir, ok := lookupEnv(EnvSharedDir)
	require.True(t, ok)
	return dir
}
