// Package xlog 基于 log/slog 的结构化日志。
//
// # 创建 Logger
//
// 使用 Builder 模式（first-error-wins：遇到第一个配置错误后，后续 Set 操作被跳过，
// 错误在 [Builder.Build] 时返回）：
//
//	logger, cleanup, err := xlog.New().
//		SetLevelString("debug").
//		SetFormat("json").
//		SetRotation("/var/log/xflake.log", xlog.Rotation{MaxSizeMB: 50}).
//		Build()
//	defer cleanup()
//
// # 全局 Logger
//
// 适用于命令行等简单场景，库代码通过选项显式注入 Logger。
//
//   - [Default]: 获取全局 Logger（惰性初始化：stderr、Info 级别、text 格式）
//   - [SetDefault]: 替换全局 Logger（nil 会被忽略）
//   - [ResetDefault]: 重置为未初始化状态（仅用于测试）
//   - [Discard]: 丢弃所有输出的 Logger
//
// # 便捷属性
//
// 通用：[Err]、[Component]、[Operation]、[Duration]。
// ID 生成领域：[Variant]、[MachineID]、[TimeUnit]、[Sequence]、[Attempt]、[Token]、[Path]。
package xlog
