//go:build unix

package xflake_test

import (
	"fmt"
	"os"
	"time"

	"github.com/omeyang/xflake/pkg/idgen/xflake"
	"github.com/omeyang/xflake/pkg/observability/xlog"
)

func ExampleGenerator_Get53WithMachine() {
	dir, err := os.MkdirTemp("", "xflake-example")
	if err != nil {
		fmt.Println(err)
		return
	}
	defer func() { _ = os.RemoveAll(dir) }()

	// 固定时钟：纪元后 1 秒，即 53 位变体的第 10 个时间单位
	now := xflake.Epoch.Add(time.Second)
	gen, err := xflake.NewGenerator(
		xflake.WithSharedDir(dir),
		xflake.WithClock(func() time.Time { return now }),
		xflake.WithLogger(xlog.Discard()),
	)
	if err != nil {
		fmt.Println(err)
		return
	}
	defer func() { _ = gen.Close() }()

	for range 2 {
		id, err := gen.Get53WithMachine(7)
		if err != nil {
			fmt.Println(err)
			return
		}
		c, _ := xflake.Unpack(xflake.Variant53, id)
		fmt.Println(id, c.Time, c.Machine, c.Sequence)
	}
	_ = gen.DestroySharedState()
	// Output:
	// 2628608 10 7 0
	// 2628609 10 7 1
}

func ExampleUnpack() {
	id, err := xflake.Pack(xflake.Variant63, 1000, 3, 5)
	if err != nil {
		fmt.Println(err)
		return
	}
	c, err := xflake.Unpack(xflake.Variant63, id)
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println(c.Time, c.Machine, c.Sequence)
	fmt.Println(c.Timestamp.Format(time.RFC3339Nano))
	// Output:
	// 1000 3 5
	// 2024-03-01T08:00:01Z
}

func ExampleEncode() {
	for _, enc := range []xflake.Encoding{xflake.EncodingDecimal, xflake.EncodingBase36} {
		s, err := xflake.Encode(2628608, enc)
		if err != nil {
			fmt.Println(err)
			return
		}
		fmt.Println(enc, s)
	}
	// Output:
	// decimal 2628608
	// base36 1kc8w
}
