package xflake

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLayouts(t *testing.T) {
	tests := []struct {
		v                  Variant
		total, tb, mb, sb  uint
		unit               time.Duration
		disc               byte
		epochUnits         int64
		maxSeq, maxMachine uint64
	}{
		{Variant53, 53, 35, 8, 10, 100 * time.Millisecond, '5', 17092800000, 1023, 255},
		{Variant63, 63, 41, 10, 12, time.Millisecond, '6', 1709280000000, 4095, 1023},
	}
	for _, tt := range tests {
		t.Run(tt.v.String(), func(t *testing.T) {
			l := tt.v.Layout()
			assert.Equal(t, tt.total, l.TotalBits)
			assert.Equal(t, l.TotalBits, l.TimeBits+l.MachineBits+l.SequenceBits)
			assert.Equal(t, tt.tb, l.TimeBits)
			assert.Equal(t, tt.mb, l.MachineBits)
			assert.Equal(t, tt.sb, l.SequenceBits)
			assert.Equal(t, tt.unit, l.Unit)
			assert.Equal(t, tt.disc, l.Discriminator)
			assert.Equal(t, tt.epochUnits, l.epochUnits())
			assert.Equal(t, tt.maxSeq, l.MaxSequence())
			assert.Equal(t, tt.maxMachine, l.MachineMask())
		})
	}
	assert.Equal(t, Layout{}, Variant(7).Layout())
}

func TestParseVariant(t *testing.T) {
	for in, want := range map[string]Variant{"53": Variant53, " 63 ": Variant63, "Snowflake53": Variant53, "snowflake63": Variant63} {
		got, err := ParseVariant(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	for _, in := range []string{"", "64", "abc", "snowflake"} {
		_, err := ParseVariant(in)
		assert.ErrorIs(t, err, ErrInvalidVariant, in)
	}
	assert.Equal(t, "53", Variant53.String())
	assert.Equal(t, "Variant(1)", Variant(1).String())
}

func TestTimeUnit(t *testing.T) {
	at := func(d time.Duration) time.Time { return Epoch.Add(d) }

	tests := []struct {
		name string
		v    Variant
		now  time.Time
		want uint64
	}{
		{"53 at epoch", Variant53, Epoch, 0},
		{"53 floors to unit", Variant53, at(199 * time.Millisecond), 1},
		{"53 one hour", Variant53, at(time.Hour), 36000},
		{"53 before epoch wraps", Variant53, at(-time.Millisecond), 1<<35 - 1},
		{"53 past width wraps", Variant53, at(time.Duration(1<<35) * 100 * time.Millisecond), 0},
		{"63 at epoch", Variant63, Epoch, 0},
		{"63 millis", Variant63, at(1999 * time.Microsecond), 1},
		{"63 last valid unit", Variant63, at(time.Duration(1<<41-1) * time.Millisecond), 1<<41 - 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := TimeUnit(tt.v, tt.now)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := TimeUnit(Variant63, at(-time.Millisecond))
	assert.ErrorIs(t, err, ErrTimeRange, "63 rejects times before epoch")
	_, err = TimeUnit(Variant63, at(time.Duration(1<<41)*time.Millisecond))
	assert.ErrorIs(t, err, ErrTimeRange, "63 rejects times past width")
	_, err = TimeUnit(Variant63, time.Unix(0, 0))
	assert.ErrorIs(t, err, ErrTimeRange)
	_, err = TimeUnit(Variant(0), Epoch)
	assert.ErrorIs(t, err, ErrInvalidVariant)
}

func TestFloorDiv(t *testing.T) {
	assert.Equal(t, int64(1), floorDiv(199, 100))
	assert.Equal(t, int64(-1), floorDiv(-1, 100))
	assert.Equal(t, int64(-1), floorDiv(-100, 100))
	assert.Equal(t, int64(-2), floorDiv(-101, 100))
	assert.Equal(t, int64(0), floorDiv(0, 100))
}

func TestPackUnpack(t *testing.T) {
	tests := []struct {
		name               string
		v                  Variant
		unit, machine, seq uint64
		want               int64
	}{
		{"53 zero", Variant53, 0, 0, 0, 0},
		{"53 fields", Variant53, 10, 7, 2, 10<<18 | 7<<10 | 2},
		{"53 max", Variant53, 1<<35 - 1, 255, 1023, 1<<53 - 1},
		{"63 fields", Variant63, 123456, 1000, 4000, 123456<<22 | 1000<<12 | 4000},
		{"63 max", Variant63, 1<<41 - 1, 1023, 4095, math.MaxInt64},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := Pack(tt.v, tt.unit, tt.machine, tt.seq)
			require.NoError(t, err)
			assert.Equal(t, tt.want, id)

			c, err := Unpack(tt.v, id)
			require.NoError(t, err)
			assert.Equal(t, tt.unit, c.Time)
			assert.Equal(t, tt.machine, c.Machine)
			assert.Equal(t, tt.seq, c.Sequence)
			assert.Equal(t, tt.v, c.Variant)
			assert.Equal(t, tt.v.Layout().TimeOf(tt.unit), c.Timestamp)
		})
	}
}

func TestPack_Masking(t *testing.T) {
	id, err := Pack(Variant53, 5, 0x100, 0)
	require.NoError(t, err)
	c, err := Unpack(Variant53, id)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), c.Machine, "override 0x100 truncates to 0 with 8 machine bits")

	id, err = Pack(Variant63, 5, 0x4FF, 0x1001)
	require.NoError(t, err)
	c, err = Unpack(Variant63, id)
	require.NoError(t, err)
	assert.Equal(t, uint64(0xFF), c.Machine)
	assert.Equal(t, uint64(1), c.Sequence)

	id, err = Pack(Variant53, 1<<35+3, 0, 0)
	require.NoError(t, err)
	c, err = Unpack(Variant53, id)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), c.Time, "53 masks the time field")
}

func TestPack_Errors(t *testing.T) {
	_, err := Pack(Variant63, 1<<41, 0, 0)
	assert.ErrorIs(t, err, ErrRange)
	_, err = Pack(Variant(0), 0, 0, 0)
	assert.ErrorIs(t, err, ErrInvalidVariant)
}

func TestUnpack_Errors(t *testing.T) {
	_, err := Unpack(Variant53, -1)
	assert.ErrorIs(t, err, ErrInvalidID)
	_, err = Unpack(Variant53, 1<<53)
	assert.ErrorIs(t, err, ErrInvalidID)
	_, err = Unpack(Variant63, math.MinInt64)
	assert.ErrorIs(t, err, ErrInvalidID)
	_, err = Unpack(Variant(9), 1)
	assert.ErrorIs(t, err, ErrInvalidVariant)
}
