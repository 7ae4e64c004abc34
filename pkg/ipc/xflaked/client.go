package xflaked

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"syscall"

	"github.com/omeyang/xflake/pkg/idgen/xflake"
	"github.com/omeyang/xflake/pkg/ipc/xshm"
	"github.com/omeyang/xflake/pkg/observability/xmetrics"
)

// Client 守护进程客户端，实现 xflake.Store 与 xflake.Inspector。
//
// 每次调用建立一个新连接，Client 本身不持有连接，可被多个 goroutine 共享。
type Client struct {
	path string
	opts clientOptions
}

var (
	_ xflake.Store     = (*Client)(nil)
	_ xflake.Inspector = (*Client)(nil)
)

// NewClient 创建客户端。path 为空时使用 DefaultSocketPath()。
func NewClient(path string, opts ...ClientOption) *Client {
	if path == "" {
		path = DefaultSocketPath()
	}
	o := clientOptions{timeout: DefaultTimeout, observer: xmetrics.NoopObserver{}}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return &Client{path: path, opts: o}
}

// Addr 返回 Socket 路径。
func (c *Client) Addr() string {
	return c.path
}

// Advance 实现 xflake.Store。时间单位由守护进程在其互斥区内按自身时钟读取，
// unit 不被调用。
func (c *Client) Advance(ctx context.Context, v xflake.Variant, _ xshm.UnitFunc) (xshm.Counter, error) {
	resp, err := c.call(ctx, Request{Op: OpAdvance, Variant: v})
	if err != nil {
		return xshm.Counter{}, err
	}
	return xshm.Counter{LastTimeUnit: resp.A, Sequence: resp.B}, nil
}

// Snapshot 实现 xflake.Inspector。
func (c *Client) Snapshot(ctx context.Context, v xflake.Variant) (xshm.Counter, error) {
	resp, err := c.call(ctx, Request{Op: OpSnapshot, Variant: v})
	if err != nil {
		return xshm.Counter{}, err
	}
	return xshm.Counter{LastTimeUnit: resp.A, Sequence: resp.B}, nil
}

// Destroy 实现 xflake.Store：清零所有变体的计数器。
// 守护进程未运行时没有可销毁的状态，返回 nil。
func (c *Client) Destroy(ctx context.Context) error {
	for _, v := range xflake.Variants() {
		if _, err := c.call(ctx, Request{Op: OpReset, Variant: v}); err != nil {
			if isNotRunning(err) {
				return nil
			}
			return err
		}
	}
	return nil
}

// Close 实现 xflake.Store。Client 不持有连接，总是返回 nil。
func (c *Client) Close() error {
	return nil
}

// Ping 检查守护进程是否可用。
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.call(ctx, Request{Op: OpSnapshot, Variant: xflake.Variant63})
	return err
}

// call 发送一个请求并等待响应。失败包裹为 xflake.ErrSharedStore。
func (c *Client) call(ctx context.Context, req Request) (resp Response, err error) {
	ctx, span := xmetrics.Start(ctx, c.opts.observer, xmetrics.SpanOptions{
		Component: component,
		Operation: req.Op.String(),
		Kind:      xmetrics.KindClient,
		Labels:    []xmetrics.Attr{xmetrics.String("variant", req.Variant.String())},
	})
	defer func() { span.End(xmetrics.Result{Err: err}) }()

	resp, err = c.roundTrip(ctx, req)
	if err != nil {
		return Response{}, fmt.Errorf("%w: %s %s: %w", xflake.ErrSharedStore, c.path, req.Op, err)
	}
	if err = resp.Err(); err != nil {
		return Response{}, fmt.Errorf("%w: %s: %w", xflake.ErrSharedStore, req.Op, err)
	}
	return resp, nil
}

func (c *Client) roundTrip(ctx context.Context, req Request) (Response, error) {
	ctx, cancel := context.WithTimeout(ctx, c.opts.timeout)
	defer cancel()

	var d net.Dialer
	conn, err := d.DialContext(ctx, "unix", c.path)
	if err != nil {
		return Response{}, err
	}
	defer func() { _ = conn.Close() }()

	// WithTimeout 保证 ctx 带截止时间
	deadline, _ := ctx.Deadline()
	if err := conn.SetDeadline(deadline); err != nil {
		return Response{}, err
	}

	if _, err := conn.Write(EncodeRequest(req)); err != nil {
		return Response{}, err
	}
	return DecodeResponse(conn)
}

// isNotRunning 报告错误是否表示 Socket 不存在或无人监听。
func isNotRunning(err error) bool {
	return errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, syscall.ENOENT) ||
		errors.Is(err, syscall.ECONNREFUSED)
}
