package xflake

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// =============================================================================
// 变体与位布局
// =============================================================================

// Variant ID 位布局变体。
type Variant int

const (
	// Variant53 53 位变体：100ms 时间单位，35+8+10 位。
	Variant53 Variant = 53
	// Variant63 63 位变体：1ms 时间单位，41+10+12 位。
	Variant63 Variant = 63
)

// Epoch 两种变体共用的纪元。
var Epoch = time.Date(2024, time.March, 1, 8, 0, 0, 0, time.UTC)

// Variants 返回所有支持的变体。
func Variants() []Variant {
	return []Variant{Variant53, Variant63}
}

// ParseVariant 解析 "53"/"63"（可带 "snowflake" 前缀，大小写不敏感）。
func ParseVariant(s string) (Variant, error) {
	trimmed := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), "snowflake")
	n, err := strconv.Atoi(trimmed)
	if err != nil || !Variant(n).Valid() {
		return 0, fmt.Errorf("%w: %q", ErrInvalidVariant, s)
	}
	return Variant(n), nil
}

// Valid 报告 v 是否为支持的变体。
func (v Variant) Valid() bool {
	return v == Variant53 || v == Variant63
}

// String 返回 "53" 或 "63"，无效变体返回 "Variant(n)"。
func (v Variant) String() string {
	if v.Valid() {
		return strconv.Itoa(int(v))
	}
	return "Variant(" + strconv.Itoa(int(v)) + ")"
}

// Layout 返回变体的位布局。无效变体返回零值 Layout，其 TotalBits 为 0。
func (v Variant) Layout() Layout {
	switch v {
	case Variant53:
		return layout53
	case Variant63:
		return layout63
	default:
		return Layout{}
	}
}

// index 变体在定长数组中的下标。调用方保证 v 有效。
func (v Variant) index() int {
	if v == Variant63 {
		return 1
	}
	return 0
}

// Layout 变体的固定位布局。各字段自高位到低位依次为时间、机器、序列。
type Layout struct {
	TotalBits    uint
	TimeBits     uint
	MachineBits  uint
	SequenceBits uint
	// Unit 时间单位粒度
	Unit time.Duration
	// Discriminator 派生共享状态名时使用的区分字节
	Discriminator byte
	// strictTime 为 true 时时间越界返回 ErrTimeRange，否则按掩码回绕
	strictTime bool
}

var (
	layout53 = Layout{
		TotalBits:     53,
		TimeBits:      35,
		MachineBits:   8,
		SequenceBits:  10,
		Unit:          100 * time.Millisecond,
		Discriminator: '5',
	}
	layout63 = Layout{
		TotalBits:     63,
		TimeBits:      41,
		MachineBits:   10,
		SequenceBits:  12,
		Unit:          time.Millisecond,
		Discriminator: '6',
		strictTime:    true,
	}
)

// TimeMask 时间字段掩码。
func (l Layout) TimeMask() uint64 { return 1<<l.TimeBits - 1 }

// MachineMask 机器字段掩码。
func (l Layout) MachineMask() uint64 { return 1<<l.MachineBits - 1 }

// SequenceMask 序列字段掩码。
func (l Layout) SequenceMask() uint64 { return 1<<l.SequenceBits - 1 }

// MaxSequence 单个时间单位内的最大序列号。
func (l Layout) MaxSequence() uint64 { return l.SequenceMask() }

// timeShift 时间字段左移位数。
func (l Layout) timeShift() uint { return l.MachineBits + l.SequenceBits }

// epochUnits 纪元在该布局时间单位下的值。
func (l Layout) epochUnits() int64 {
	return floorDiv(Epoch.UnixMilli(), l.Unit.Milliseconds())
}

// TimeOf 返回时间单位 unit 对应的起始时刻（UTC）。
func (l Layout) TimeOf(unit uint64) time.Time {
	return Epoch.Add(time.Duration(unit) * l.Unit)
}

// =============================================================================
// 时钟
// =============================================================================

// TimeUnit 把 now 转换为变体的纪元相对时间单位。
//
// 53 位变体按 35 位掩码回绕（包括早于纪元的负值）；
// 63 位变体要求结果落在 [0, 2^41)，否则返回 ErrTimeRange。
func TimeUnit(v Variant, now time.Time) (uint64, error) {
	if !v.Valid() {
		return 0, fmt.Errorf("%w: %d", ErrInvalidVariant, int(v))
	}
	l := v.Layout()
	units := floorDiv(now.UnixMilli(), l.Unit.Milliseconds()) - l.epochUnits()
	if !l.strictTime {
		return uint64(units) & l.TimeMask(), nil
	}
	if units < 0 || uint64(units) > l.TimeMask() {
		return 0, fmt.Errorf("%w: %d not in [0, %d)", ErrTimeRange, units, uint64(1)<<l.TimeBits)
	}
	return uint64(units), nil
}

// floorDiv 向负无穷取整的整数除法。
func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// =============================================================================
// 组装与拆解
// =============================================================================

// Components 表示 ID 拆解后的各组成部分。
type Components struct {
	// ID 原始 ID 值
	ID int64
	// Variant ID 所属变体
	Variant Variant
	// Time 纪元相对时间单位
	Time uint64
	// Machine 机器 ID
	Machine uint64
	// Sequence 时间单位内的序列号
	Sequence uint64
	// Timestamp Time 对应的时刻（UTC）
	Timestamp time.Time
}

// Pack 按变体布局组装 ID：
//
//	(timeUnit << (machineBits+sequenceBits)) | (machine&machineMask)<<sequenceBits | (sequence&sequenceMask)
//
// 机器 ID 与序列号超出位宽时按掩码截断。53 位变体的时间同样按掩码截断；
// 63 位变体的时间超出 int64 可表示范围时返回 ErrRange。
func Pack(v Variant, timeUnit, machineID, sequence uint64) (int64, error) {
	if !v.Valid() {
		return 0, fmt.Errorf("%w: %d", ErrInvalidVariant, int(v))
	}
	l := v.Layout()
	if l.strictTime {
		if timeUnit > math.MaxInt64>>l.timeShift() {
			return 0, fmt.Errorf("%w: time unit %d", ErrRange, timeUnit)
		}
	} else {
		timeUnit &= l.TimeMask()
	}
	id := timeUnit<<l.timeShift() |
		(machineID&l.MachineMask())<<l.SequenceBits |
		sequence&l.SequenceMask()
	return int64(id), nil
}

// Unpack 是 Pack 的逆运算。负数或超出变体位宽的 id 返回 ErrInvalidID。
func Unpack(v Variant, id int64) (Components, error) {
	if !v.Valid() {
		return Components{}, fmt.Errorf("%w: %d", ErrInvalidVariant, int(v))
	}
	l := v.Layout()
	if id < 0 || uint64(id)>>l.TotalBits != 0 {
		return Components{}, fmt.Errorf("%w: %d does not fit %d bits", ErrInvalidID, id, l.TotalBits)
	}
	u := uint64(id)
	t := u >> l.timeShift()
	return Components{
		ID:        id,
		Variant:   v,
		Time:      t,
		Machine:   (u >> l.SequenceBits) & l.MachineMask(),
		Sequence:  u & l.SequenceMask(),
		Timestamp: l.TimeOf(t),
	}, nil
}
