package xflaked

import "errors"

// 预定义错误。
var (
	// ErrInvalidMessage 表示消息格式无效。
	ErrInvalidMessage = errors.New("xflaked: invalid message format")

	// ErrConnectionClosed 表示对端在消息完整之前关闭了连接。
	ErrConnectionClosed = errors.New("xflaked: connection closed")

	// ErrServerClosed 表示服务已关闭。
	ErrServerClosed = errors.New("xflaked: server closed")

	// ErrAlreadyServing 表示服务已在运行。
	ErrAlreadyServing = errors.New("xflaked: server is already serving")

	// ErrRequestRejected 表示服务端拒绝了请求（未知操作或变体）。
	ErrRequestRejected = errors.New("xflaked: request rejected")

	// ErrNotSocket 表示路径存在但不是 Unix Socket。
	ErrNotSocket = errors.New("xflaked: path exists but is not a socket")
)
