package xshm

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCounterNext(t *testing.T) {
	tests := []struct {
		name   string
		state  Counter
		unit   uint64
		maxSeq uint64
		want   Counter
	}{
		{"first use at unit 0", Counter{}, 0, 1023, Counter{0, 1}},
		{"first use at later unit", Counter{}, 42, 1023, Counter{42, 0}},
		{"same unit increments", Counter{42, 7}, 42, 1023, Counter{42, 8}},
		{"same unit reaches max", Counter{42, 1022}, 42, 1023, Counter{42, 1023}},
		{"same unit wraps past max", Counter{42, 1023}, 42, 1023, Counter{42, 0}},
		{"new unit resets", Counter{42, 500}, 43, 1023, Counter{43, 0}},
		{"earlier unit resets", Counter{42, 500}, 41, 1023, Counter{41, 0}},
		{"corrupt sequence wraps", Counter{9, 1 << 40}, 9, 4095, Counter{9, 0}},
		{"uint64 overflow wraps", Counter{9, math.MaxUint64}, 9, math.MaxUint64, Counter{9, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.state.Next(tt.unit, tt.maxSeq))
		})
	}
}

func TestCounterCodec(t *testing.T) {
	buf := make([]byte, Size)
	c := Counter{LastTimeUnit: 0x0102030405060708, Sequence: 0x0a0b}
	encodeCounter(buf, c)

	// 小端序布局
	assert.Equal(t, byte(0x08), buf[0])
	assert.Equal(t, byte(0x01), buf[7])
	assert.Equal(t, byte(0x0b), buf[8])
	assert.Equal(t, byte(0x0a), buf[9])
	assert.Equal(t, c, decodeCounter(buf))
}
