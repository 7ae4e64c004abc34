package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/omeyang/xflake/pkg/config/xconf"
	"github.com/omeyang/xflake/pkg/idgen/xflake"
	"github.com/omeyang/xflake/pkg/ipc/xflaked"
)

// maxGenCount gen 单次最多生成的 ID 数量。
const maxGenCount = 1_000_000

// 创建所有子命令。
func createCommands(out io.Writer) []*cli.Command {
	return []*cli.Command{
		createGenCommand(out),
		createDecodeCommand(out),
		createInspectCommand(out),
		createDestroyCommand(out),
		createServeCommand(out),
	}
}

func variantFlag(value string) cli.Flag {
	return &cli.StringFlag{
		Name:  "variant",
		Usage: "ID 变体 (53|63)",
		Value: value,
	}
}

func encodingFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "encoding",
		Aliases: []string{"e"},
		Usage:   "文本编码 (decimal|base2|base32|base36|base58|base64)",
		Value:   string(xflake.EncodingDecimal),
	}
}

// createGenCommand 创建 gen 子命令。
func createGenCommand(out io.Writer) *cli.Command {
	return &cli.Command{
		Name:  "gen",
		Usage: "生成 ID",
		Flags: []cli.Flag{
			variantFlag("63"),
			&cli.IntFlag{
				Name:    "count",
				Aliases: []string{"n"},
				Usage:   "生成数量",
				Value:   1,
			},
			&cli.IntFlag{
				Name:    "machine",
				Aliases: []string{"m"},
				Usage:   "机器 ID，负数表示从环境变量与配置解析",
				Value:   -1,
			},
			encodingFlag(),
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			v, err := parseVariant(cmd.String("variant"))
			if err != nil {
				return err
			}
			enc, err := parseEncoding(cmd.String("encoding"))
			if err != nil {
				return err
			}
			return cmdGen(cmd, out, v, cmd.Int("count"), cmd.Int("machine"), enc)
		},
	}
}

func cmdGen(cmd *cli.Command, out io.Writer, v xflake.Variant, count, machine int, enc xflake.Encoding) error {
	if count <= 0 || count > maxGenCount {
		return usagef("count 必须在 1 到 %d 之间，实际为 %d", maxGenCount, count)
	}
	return withGenerator(cmd, func(gen *xflake.Generator) error {
		for range count {
			id, err := gen.Generate(v, int64(machine))
			if err != nil {
				return err
			}
			s, err := xflake.Encode(id, enc)
			if err != nil {
				return err
			}
			if _, err := fmt.Fprintln(out, s); err != nil {
				return err
			}
		}
		return nil
	})
}

// createDecodeCommand 创建 decode 子命令。
func createDecodeCommand(out io.Writer) *cli.Command {
	return &cli.Command{
		Name:      "decode",
		Usage:     "解析 ID 的时间、机器与序列号",
		ArgsUsage: "<id> [id...]",
		Flags: []cli.Flag{
			variantFlag("63"),
			encodingFlag(),
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			v, err := parseVariant(cmd.String("variant"))
			if err != nil {
				return err
			}
			enc, err := parseEncoding(cmd.String("encoding"))
			if err != nil {
				return err
			}
			return cmdDecode(out, v, enc, cmd.Args().Slice())
		},
	}
}

func cmdDecode(out io.Writer, v xflake.Variant, enc xflake.Encoding, args []string) error {
	if len(args) == 0 {
		return usagef("decode 命令需要至少一个 ID")
	}
	var errs []error
	for _, arg := range args {
		id, err := xflake.Parse(arg, enc)
		if err == nil {
			var c xflake.Components
			if c, err = xflake.Unpack(v, id); err == nil {
				_, err = fmt.Fprintf(out, "id=%d variant=%s time=%d timestamp=%s machine=%d sequence=%d\n",
					c.ID, c.Variant, c.Time, c.Timestamp.Format(time.RFC3339Nano), c.Machine, c.Sequence)
			}
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", arg, err))
		}
	}
	return errors.Join(errs...)
}

// createInspectCommand 创建 inspect 子命令。
func createInspectCommand(out io.Writer) *cli.Command {
	return &cli.Command{
		Name:  "inspect",
		Usage: "在持锁状态下读取计数器",
		Flags: []cli.Flag{
			variantFlag(""),
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			variants := xflake.Variants()
			if s := cmd.String("variant"); s != "" {
				v, err := parseVariant(s)
				if err != nil {
					return err
				}
				variants = []xflake.Variant{v}
			}
			return withGenerator(cmd, func(gen *xflake.Generator) error {
				for _, v := range variants {
					c, err := gen.Snapshot(ctx, v)
					if err != nil {
						return err
					}
					if _, err := fmt.Fprintf(out, "variant=%s last_time_unit=%d sequence=%d\n",
						v, c.LastTimeUnit, c.Sequence); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
}

// createDestroyCommand 创建 destroy 子命令。
func createDestroyCommand(out io.Writer) *cli.Command {
	return &cli.Command{
		Name:  "destroy",
		Usage: "清零并移除共享状态",
		Action: func(_ context.Context, cmd *cli.Command) error {
			return withGenerator(cmd, func(gen *xflake.Generator) error {
				if err := gen.DestroySharedState(); err != nil {
					return err
				}
				_, err := fmt.Fprintln(out, "shared state destroyed")
				return err
			})
		},
	}
}

// createServeCommand 创建 serve 子命令。
func createServeCommand(out io.Writer) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "运行计数器守护进程，直到收到 SIGINT/SIGTERM",
		Flags: []cli.Flag{
			&cli.DurationFlag{
				Name:  "idle-timeout",
				Usage: "连接空闲超时",
				Value: xflaked.DefaultIdleTimeout,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			logger, cleanup, err := cfg.NewLogger()
			if err != nil {
				return usagef("日志配置无效: %v", err)
			}
			defer func() { _ = cleanup() }()

			ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			srv, err := xflaked.NewServer(cfg.Socket,
				xflaked.WithServerLogger(logger),
				xflaked.WithIdleTimeout(cmd.Duration("idle-timeout")),
			)
			if err != nil {
				return err
			}
			if err := srv.Listen(); err != nil {
				return err
			}
			if _, err := fmt.Fprintf(out, "listening on %s\n", srv.Addr()); err != nil {
				return err
			}
			return srv.Serve(ctx)
		},
	}
}

// =============================================================================
// 辅助函数
// =============================================================================

// loadConfig 加载配置文件并应用全局选项覆盖。
func loadConfig(cmd *cli.Command) (*xconf.Config, error) {
	cfg := xconf.Default()
	if path := cmd.String("config"); path != "" {
		loaded, err := xconf.Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if cmd.IsSet("backend") {
		cfg.Backend = xconf.Backend(cmd.String("backend"))
	}
	if cmd.IsSet("shared-dir") {
		cfg.SharedDir = cmd.String("shared-dir")
	}
	if cmd.IsSet("socket") {
		cfg.Socket = cmd.String("socket")
	}
	if err := cfg.Validate(); err != nil {
		return nil, &usageError{msg: err.Error(), err: err}
	}
	return cfg, nil
}

// withGenerator 按配置创建生成器并在 fn 返回后关闭。
func withGenerator(cmd *cli.Command, fn func(*xflake.Generator) error) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger, cleanup, err := cfg.NewLogger()
	if err != nil {
		return usagef("日志配置无效: %v", err)
	}
	defer func() { _ = cleanup() }()

	gen, err := xflake.NewGenerator(append(cfg.GeneratorOptions(), xflake.WithLogger(logger))...)
	if err != nil {
		return err
	}
	defer func() { _ = gen.Close() }()
	return fn(gen)
}

func parseVariant(s string) (xflake.Variant, error) {
	v, err := xflake.ParseVariant(s)
	if err != nil {
		return 0, usagef("无效变体 %q，可选 53 或 63", s)
	}
	return v, nil
}

func parseEncoding(s string) (xflake.Encoding, error) {
	enc, err := xflake.ParseEncoding(s)
	if err != nil {
		return "", usagef("无效编码 %q", s)
	}
	return enc, nil
}
