package xflaked

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/omeyang/xflake/pkg/idgen/xflake"
	"github.com/omeyang/xflake/pkg/ipc/xshm"
	"github.com/omeyang/xflake/pkg/observability/xlog"
	"github.com/omeyang/xflake/pkg/observability/xmetrics"
)

const component = "xflaked"

// Server 计数器守护进程。在内存中按变体持有计数器，通过 Unix Socket 提供服务。
type Server struct {
	path string
	opts serverOptions

	mu       sync.Mutex
	counters map[xflake.Variant]xshm.Counter

	lnMu     sync.Mutex
	listener net.Listener
	serving  bool
	closed   bool
}

// NewServer 创建服务端，不做任何 I/O。path 为空时使用 DefaultSocketPath()。
func NewServer(path string, opts ...ServerOption) (*Server, error) {
	if path == "" {
		path = DefaultSocketPath()
	}
	o := defaultServerOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	if o.logger == nil {
		o.logger = xlog.Default()
	}
	return &Server{
		path:     path,
		opts:     o,
		counters: make(map[xflake.Variant]xshm.Counter, len(xflake.Variants())),
	}, nil
}

// Addr 返回 Socket 路径。
func (s *Server) Addr() string {
	return s.path
}

// Listen 创建 Socket 并开始监听。残留的 Socket 文件会被清理，
// 路径存在但不是 Socket 时返回 ErrNotSocket。重复调用无副作用。
func (s *Server) Listen() error {
	s.lnMu.Lock()
	defer s.lnMu.Unlock()

	if s.closed {
		return ErrServerClosed
	}
	if s.listener != nil {
		return nil
	}

	info, err := os.Lstat(s.path)
	switch {
	case err == nil:
		if info.Mode()&os.ModeSocket == 0 {
			return fmt.Errorf("%w: %s", ErrNotSocket, s.path)
		}
		if err := os.Remove(s.path); err != nil {
			return fmt.Errorf("xflaked: remove stale socket: %w", err)
		}
	case !errors.Is(err, os.ErrNotExist):
		return fmt.Errorf("xflaked: check socket: %w", err)
	}

	ln, err := net.Listen("unix", s.path)
	if err != nil {
		return fmt.Errorf("xflaked: listen: %w", err)
	}
	if err := os.Chmod(s.path, s.opts.perm); err != nil {
		_ = ln.Close()
		return fmt.Errorf("xflaked: chmod socket: %w", err)
	}
	s.listener = ln
	return nil
}

// Serve 处理连接直到 ctx 取消。未调用 Listen 时先监听。
// 退出时关闭所有连接并删除 Socket 文件；ctx 取消导致的退出返回 nil。
// Server 只能 Serve 一次。
func (s *Server) Serve(ctx context.Context) error {
	if err := s.Listen(); err != nil {
		return err
	}

	s.lnMu.Lock()
	if s.serving {
		s.lnMu.Unlock()
		return ErrAlreadyServing
	}
	s.serving = true
	ln := s.listener
	s.lnMu.Unlock()

	logger := s.opts.logger
	logger.Info(ctx, "xflaked: serving", xlog.Path(s.path))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		<-gctx.Done()
		return s.shutdown()
	})
	g.Go(func() error {
		if !s.waitFreshUnit(gctx) {
			return nil
		}
		for {
			conn, err := ln.Accept()
			if err != nil {
				if gctx.Err() != nil || errors.Is(err, net.ErrClosed) {
					return nil
				}
				return fmt.Errorf("xflaked: accept: %w", err)
			}
			g.Go(func() error {
				s.handle(gctx, conn)
				return nil
			})
		}
	})

	err := g.Wait()
	if err != nil {
		logger.Error(ctx, "xflaked: stopped", xlog.Err(err))
		return err
	}
	logger.Info(ctx, "xflaked: stopped")
	return nil
}

// waitFreshUnit 等待到最粗时间单位（100ms）的下一个边界后再开始接受连接，
// 使本实例分配的时间单位都晚于上一个实例可能用过的时间单位。
// 期间到达的连接在监听队列中等待。ctx 取消时返回 false。
func (s *Server) waitFreshUnit(ctx context.Context) bool {
	unit := xflake.Variant53.Layout().Unit
	wait := unit - s.opts.clock().Sub(xflake.Epoch)%unit
	if wait <= 0 || wait > unit {
		wait = unit
	}
	t := time.NewTimer(wait)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}

// shutdown 关闭监听并删除 Socket 文件。
func (s *Server) shutdown() error {
	s.lnMu.Lock()
	defer s.lnMu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	var err error
	if s.listener != nil {
		if cerr := s.listener.Close(); cerr != nil && !errors.Is(cerr, net.ErrClosed) {
			err = cerr
		}
	}
	if rerr := os.Remove(s.path); rerr != nil && !errors.Is(rerr, os.ErrNotExist) {
		err = errors.Join(err, rerr)
	}
	return err
}

// handle 按顺序处理一个连接上的请求，直到对端关闭、出错、空闲超时或 ctx 取消。
func (s *Server) handle(ctx context.Context, conn net.Conn) {
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer func() {
		stop()
		_ = conn.Close()
	}()

	for {
		if err := conn.SetReadDeadline(time.Now().Add(s.opts.idleTimeout)); err != nil {
			return
		}
		req, err := DecodeRequest(conn)
		if err != nil {
			if !errors.Is(err, ErrConnectionClosed) && ctx.Err() == nil {
				s.opts.logger.Warn(ctx, "xflaked: bad request", xlog.Err(err))
			}
			return
		}
		resp := s.dispatch(ctx, req)
		if _, err := conn.Write(EncodeResponse(resp)); err != nil {
			return
		}
	}
}

// dispatch 执行一个请求。
func (s *Server) dispatch(ctx context.Context, req Request) Response {
	ctx, span := xmetrics.Start(ctx, s.opts.observer, xmetrics.SpanOptions{
		Component: component,
		Operation: req.Op.String(),
		Kind:      xmetrics.KindServer,
		Labels:    []xmetrics.Attr{xmetrics.String("variant", req.Variant.String())},
	})
	resp := s.apply(req)
	span.End(xmetrics.Result{Err: resp.Err()})

	s.opts.logger.Debug(ctx, "xflaked: request",
		xlog.Operation(req.Op.String()),
		xlog.Variant(req.Variant.String()),
		xlog.TimeUnit(resp.A),
		xlog.Sequence(resp.B),
	)
	return resp
}

func (s *Server) apply(req Request) Response {
	if !req.Variant.Valid() {
		return Response{Status: StatusInvalidVariant}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	switch req.Op {
	case OpAdvance:
		// 时钟在 s.mu 内读取，写入顺序与读取顺序一致
		unit, err := xflake.TimeUnit(req.Variant, s.opts.clock())
		if err != nil {
			return Response{Status: StatusTimeRange}
		}
		next := s.counters[req.Variant].Next(unit, req.Variant.Layout().MaxSequence())
		s.counters[req.Variant] = next
		return Response{Status: StatusOK, A: next.LastTimeUnit, B: next.Sequence}
	case OpReset:
		delete(s.counters, req.Variant)
		return Response{Status: StatusOK}
	case OpSnapshot:
		c := s.counters[req.Variant]
		return Response{Status: StatusOK, A: c.LastTimeUnit, B: c.Sequence}
	default:
		return Response{Status: StatusUnknownOp}
	}
}
