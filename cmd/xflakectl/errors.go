package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/urfave/cli/v3"
)

// usageError 表示参数错误，退出码 2。
type usageError struct {
	msg string
	err error
}

func (e *usageError) Error() string { return e.msg }

func (e *usageError) Unwrap() error { return e.err }

func usagef(format string, args ...any) error {
	return &usageError{msg: fmt.Sprintf(format, args...)}
}

// onUsageError 把 urfave/cli 的参数解析错误转换为 usageError。
// 设置后框架不再自行输出 "Incorrect Usage"，由 run 统一输出。
func onUsageError(_ context.Context, _ *cli.Command, err error, _ bool) error {
	return &usageError{msg: err.Error(), err: err}
}

// rootAction 根命令在没有匹配到子命令时执行。
func rootAction(_ context.Context, cmd *cli.Command) error {
	if cmd.Args().Present() {
		return usagef("未知命令 %q", cmd.Args().First())
	}
	return usagef("缺少命令，使用 --help 查看可用命令")
}

// exitCode 把执行结果映射为退出码：usageError 为 2，
// 携带非零退出码的 cli.ExitCoder 沿用其退出码，其余错误为 1。
func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var usageErr *usageError
	if errors.As(err, &usageErr) {
		return 2
	}
	var coder cli.ExitCoder
	if errors.As(err, &coder) && coder.ExitCode() != 0 {
		return coder.ExitCode()
	}
	return 1
}
