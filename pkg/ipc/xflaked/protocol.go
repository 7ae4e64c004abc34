package xflaked

import (
	"fmt"

	"github.com/omeyang/xflake/pkg/idgen/xflake"
)

// 协议常量。
const (
	// ProtocolMagic 协议魔数。
	ProtocolMagic uint16 = 0xF1A7

	// ProtocolVersion 协议版本。
	ProtocolVersion uint8 = 0x02

	// HeaderSize 消息头大小（字节）。
	// Magic(2) + Version(1) + Type(1) + Length(4) = 8 bytes
	HeaderSize = 8

	// RequestPayloadSize 请求 payload 大小。
	// Op(1) + Variant(1) + 保留(6) = 8 bytes
	RequestPayloadSize = 8

	// ResponsePayloadSize 响应 payload 大小。
	// Status(1) + 保留(7) + A(8) + B(8) = 24 bytes
	ResponsePayloadSize = 24
)

// MessageType 消息类型。
type MessageType uint8

const (
	// MessageTypeRequest 请求消息（客户端 -> 服务端）。
	MessageTypeRequest MessageType = 0x01

	// MessageTypeResponse 响应消息（服务端 -> 客户端）。
	MessageTypeResponse MessageType = 0x02
)

// String 返回消息类型的字符串表示。
func (t MessageType) String() string {
	switch t {
	case MessageTypeRequest:
		return "Request"
	case MessageTypeResponse:
		return "Response"
	default:
		return "Unknown"
	}
}

// Op 请求操作。
type Op uint8

const (
	// OpAdvance 读取服务端时钟，推进计数器并分配序列号。
	OpAdvance Op = 0x01

	// OpReset 清零计数器。
	OpReset Op = 0x02

	// OpSnapshot 读取计数器。
	OpSnapshot Op = 0x03
)

// String 返回操作名。
func (o Op) String() string {
	switch o {
	case OpAdvance:
		return "advance"
	case OpReset:
		return "reset"
	case OpSnapshot:
		return "snapshot"
	default:
		return fmt.Sprintf("op(%d)", uint8(o))
	}
}

// Status 响应状态。
type Status uint8

const (
	// StatusOK 成功。
	StatusOK Status = 0x00

	// StatusUnknownOp 未知操作。
	StatusUnknownOp Status = 0x01

	// StatusInvalidVariant 未知变体。
	StatusInvalidVariant Status = 0x02

	// StatusTimeRange 服务端时钟超出变体的时间范围。
	StatusTimeRange Status = 0x03
)

// String 返回状态名。
func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusUnknownOp:
		return "unknown op"
	case StatusInvalidVariant:
		return "invalid variant"
	case StatusTimeRange:
		return "time out of range"
	default:
		return fmt.Sprintf("status(%d)", uint8(s))
	}
}

// Request 请求消息。
type Request struct {
	Op      Op
	Variant xflake.Variant
}

// Response 响应消息。advance 与 snapshot 的 A 为时间单位，B 为序列号。
type Response struct {
	Status Status
	A      uint64
	B      uint64
}

// Err 把非 OK 状态转换为错误。
func (r Response) Err() error {
	switch r.Status {
	case StatusOK:
		return nil
	case StatusTimeRange:
		return fmt.Errorf("%w: %w", ErrRequestRejected, xflake.ErrTimeRange)
	default:
		return fmt.Errorf("%w: %s", ErrRequestRejected, r.Status)
	}
}
