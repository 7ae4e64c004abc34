//go:build unix

package xflake

import (
	"testing"
	"time"

	"github.com/omeyang/xflake/pkg/observability/xlog"
)

// =============================================================================
// 生成基准测试
// =============================================================================

func benchGenerator(b *testing.B, opts ...Option) *Generator {
	b.Helper()
	base := []Option{
		WithSharedDir(b.TempDir()),
		WithLogger(xlog.Discard()),
		WithMachineSources(Variant53),
		WithMachineSources(Variant63),
	}
	g, err := NewGenerator(append(base, opts...)...)
	if err != nil {
		b.Fatal(err)
	}
	b.Cleanup(func() { _ = g.Close() })
	return g
}

func BenchmarkGenerator_Get63(b *testing.B) {
	g := benchGenerator(b)

	b.ReportAllocs()
	b.ResetTimer()
	for b.Loop() {
		if _, err := g.Get63(); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkGenerator_Get63_Parallel(b *testing.B) {
	g := benchGenerator(b)

	b.ReportAllocs()
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			if _, err := g.Get63(); err != nil {
				b.Error(err)
				return
			}
		}
	})
}

func BenchmarkGenerator_Get53_FixedClock(b *testing.B) {
	clock := newFakeClock(time.Hour)
	g := benchGenerator(b, WithClock(clock.Now))

	b.ReportAllocs()
	b.ResetTimer()
	for b.Loop() {
		if _, err := g.Get53WithMachine(1); err != nil {
			b.Fatal(err)
		}
	}
}

// =============================================================================
// 纯函数基准测试
// =============================================================================

func BenchmarkPack63(b *testing.B) {
	b.ReportAllocs()
	for b.Loop() {
		_, _ = Pack(Variant63, 3600000, 7, 42)
	}
}

func BenchmarkUnpack63(b *testing.B) {
	id, err := Pack(Variant63, 3600000, 7, 42)
	if err != nil {
		b.Fatal(err)
	}

	b.ReportAllocs()
	for b.Loop() {
		_, _ = Unpack(Variant63, id)
	}
}

func BenchmarkEncodeBase58(b *testing.B) {
	b.ReportAllocs()
	for b.Loop() {
		_, _ = Encode(2628608, EncodingBase58)
	}
}
