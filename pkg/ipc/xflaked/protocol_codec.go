package xflaked

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/omeyang/xflake/pkg/idgen/xflake"
)

// EncodeRequest 编码请求消息。
func EncodeRequest(req Request) []byte {
	msg := make([]byte, HeaderSize+RequestPayloadSize)
	putHeader(msg, MessageTypeRequest, RequestPayloadSize)

	p := msg[HeaderSize:]
	p[0] = byte(req.Op)
	p[1] = variantByte(req.Variant)
	return msg
}

// EncodeResponse 编码响应消息。
func EncodeResponse(resp Response) []byte {
	msg := make([]byte, HeaderSize+ResponsePayloadSize)
	putHeader(msg, MessageTypeResponse, ResponsePayloadSize)

	p := msg[HeaderSize:]
	p[0] = byte(resp.Status)
	binary.BigEndian.PutUint64(p[8:16], resp.A)
	binary.BigEndian.PutUint64(p[16:24], resp.B)
	return msg
}

// DecodeRequest 从 r 读取并解析请求消息。
func DecodeRequest(r io.Reader) (Request, error) {
	p, err := readMessage(r, MessageTypeRequest, RequestPayloadSize)
	if err != nil {
		return Request{}, err
	}
	return Request{
		Op:      Op(p[0]),
		Variant: xflake.Variant(p[1]),
	}, nil
}

// DecodeResponse 从 r 读取并解析响应消息。
func DecodeResponse(r io.Reader) (Response, error) {
	p, err := readMessage(r, MessageTypeResponse, ResponsePayloadSize)
	if err != nil {
		return Response{}, err
	}
	return Response{
		Status: Status(p[0]),
		A:      binary.BigEndian.Uint64(p[8:16]),
		B:      binary.BigEndian.Uint64(p[16:24]),
	}, nil
}

func putHeader(msg []byte, t MessageType, length uint32) {
	binary.BigEndian.PutUint16(msg[0:2], ProtocolMagic)
	msg[2] = ProtocolVersion
	msg[3] = byte(t)
	binary.BigEndian.PutUint32(msg[4:8], length)
}

// readMessage 读取头部并校验类型与长度，返回 payload。
func readMessage(r io.Reader, want MessageType, size uint32) ([]byte, error) {
	header := make([]byte, HeaderSize)
	if _, err := io.ReadFull(r, header); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrConnectionClosed
		}
		return nil, fmt.Errorf("read header: %w", err)
	}

	if magic := binary.BigEndian.Uint16(header[0:2]); magic != ProtocolMagic {
		return nil, fmt.Errorf("%w: bad magic 0x%04x", ErrInvalidMessage, magic)
	}
	if version := header[2]; version != ProtocolVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrInvalidMessage, version)
	}
	if t := MessageType(header[3]); t != want {
		return nil, fmt.Errorf("%w: expected %s, got %s", ErrInvalidMessage, want, t)
	}
	if length := binary.BigEndian.Uint32(header[4:8]); length != size {
		return nil, fmt.Errorf("%w: payload length %d, want %d", ErrInvalidMessage, length, size)
	}

	payload := make([]byte, size)
	if _, err := io.ReadFull(r, payload); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, ErrConnectionClosed
		}
		return nil, fmt.Errorf("read payload: %w", err)
	}
	return payload, nil
}

// variantByte 变体编码为单字节，超出范围的值编码为 0（服务端拒绝）。
func variantByte(v xflake.Variant) byte {
	if v < 0 || v > math.MaxUint8 {
		return 0
	}
	return byte(v)
}
