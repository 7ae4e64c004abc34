package xshm

import "encoding/binary"

// Size 共享数据区的字节数：两个小端序 uint64。
const Size = 16

// Counter 共享计数器状态。
type Counter struct {
	// LastTimeUnit 最近一次写入的时间单位
	LastTimeUnit uint64
	// Sequence 该时间单位内最近分配的序列号
	Sequence uint64
}

// Next 按时间单位推进计数器，返回新状态。
//
// 时间单位与上次相同时序列号加一，超过 maxSeq 回绕为 0；
// 时间单位不同（包括时钟回拨）时序列号重置为 0。
//
// 设计决策: 溢出回绕而非等待下一个时间单位。吞吐超过单位容量时
// 同一时间单位内可能产生重复 ID，这是已知行为，调用方需自行评估容量。
func (c Counter) Next(timeUnit, maxSeq uint64) Counter {
	if timeUnit != c.LastTimeUnit {
		return Counter{LastTimeUnit: timeUnit}
	}
	seq := c.Sequence + 1
	if seq > maxSeq {
		seq = 0
	}
	return Counter{LastTimeUnit: timeUnit, Sequence: seq}
}

func decodeCounter(b []byte) Counter {
	return Counter{
		LastTimeUnit: binary.LittleEndian.Uint64(b[0:8]),
		Sequence:     binary.LittleEndian.Uint64(b[8:16]),
	}
}

func encodeCounter(b []byte, c Counter) {
	binary.LittleEndian.PutUint64(b[0:8], c.LastTimeUnit)
	binary.LittleEndian.PutUint64(b[8:16], c.Sequence)
}
