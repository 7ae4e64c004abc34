// xflakectl 是 xflake 的命令行工具：生成与解析 ID、查看和销毁共享状态、运行计数器守护进程。
//
// 用法:
//
//	xflakectl [全局选项] <命令> [命令参数]
//
// 全局选项:
//
//	-c, --config      配置文件路径（.yaml/.yml/.json）
//	--backend         计数器后端 shm | daemon（覆盖配置文件）
//	--shared-dir      共享状态目录（覆盖配置文件）
//	--socket          守护进程 Socket 路径（覆盖配置文件）
//
// 命令:
//
//	gen               生成 ID
//	decode <id>...    解析 ID 的时间、机器与序列号
//	inspect           在持锁状态下读取计数器
//	destroy           清零并移除共享状态
//	serve             运行计数器守护进程，直到收到 SIGINT/SIGTERM
//
// 退出码:
//
//	0: 成功
//	1: 执行失败
//	2: 参数错误（未知命令、无效变体或编码等）
//
// 示例:
//
//	xflakectl gen --variant 63 -n 5
//	xflakectl gen --variant 53 -m 7 -e base58
//	xflakectl decode --variant 53 2628608
//	xflakectl -c /etc/xflake.yaml inspect
//	xflakectl --socket /run/xflaked.sock serve
//	xflakectl --backend daemon --socket /run/xflaked.sock gen
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"
)

// 版本信息（可通过 -ldflags 注入）。
var (
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
)

func main() {
	os.Exit(run(context.Background(), os.Args, os.Stdout, os.Stderr))
}

// createApp 创建 CLI 应用。命令输出写入 stdout，错误写入 stderr。
func createApp(stdout, stderr io.Writer) *cli.Command {
	commands := createCommands(stdout)
	for _, c := range commands {
		c.OnUsageError = onUsageError
	}
	return &cli.Command{
		Name:      "xflakectl",
		Usage:     "单机多进程唯一 ID 生成工具",
		Version:   fmt.Sprintf("%s (commit: %s)", Version, GitCommit),
		Writer:    stdout,
		ErrWriter: stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "配置文件路径",
			},
			&cli.StringFlag{
				Name:  "backend",
				Usage: "计数器后端 (shm|daemon)",
			},
			&cli.StringFlag{
				Name:  "shared-dir",
				Usage: "共享状态目录",
			},
			&cli.StringFlag{
				Name:  "socket",
				Usage: "守护进程 Socket 路径",
			},
		},
		Commands:     commands,
		Action:       rootAction,
		OnUsageError: onUsageError,
		// 设计决策: 禁止 urfave/cli 直接调用 os.Exit，由 run 统一输出错误并映射退出码。
		ExitErrHandler: func(context.Context, *cli.Command, error) {},
	}
}

// run 执行命令并返回退出码。
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	err := createApp(stdout, stderr).Run(ctx, args)
	code := exitCode(err)
	switch code {
	case 0:
	case 2:
		_, _ = fmt.Fprintf(stderr, "参数错误: %v\n", err)
	default:
		_, _ = fmt.Fprintf(stderr, "错误: %v\n", err)
	}
	return code
}
