// Package xflake 在单机多进程之间生成唯一、趋势递增、可排序的整数 ID。
//
// # 变体
//
// 两种固定位布局，共用纪元 2024-03-01T08:00:00Z：
//
//	变体  时间单位  时间位  机器位  序列位
//	53    100ms     35      8       10
//	63    1ms       41      10      12
//
// 53 位变体的 ID 可被 IEEE-754 双精度精确表示（JavaScript 安全整数），
// 时间字段超出位宽时按掩码回绕；63 位变体对时间越界返回 [ErrTimeRange]。
//
// # 跨进程协调
//
// 每个变体一份共享计数器（上次时间单位、序列号），默认存放在 /dev/shm 下，
// 由文件锁在所有进程与 goroutine 间串行化（见 xshm 包）。同一时间单位内
// 序列号递增，超过上限回绕为 0，时间单位变化时重置为 0。
// 时钟在锁内读取，各进程写入的时间单位顺序与读取时钟的顺序一致。
//
// 另一种部署方式是由 xflaked 守护进程在内存中持有计数器，
// 进程通过 Unix socket 访问，见 [WithStore]。
//
// # 机器 ID
//
// 默认从环境变量解析，按变体使用不同优先级：
//
//	53: SNOWFLAKE53_MACHINE_ID → SNOWFLAKE63_MACHINE_ID → SNOWFLAKE_MACHINE_ID
//	63: SNOWFLAKE63_MACHINE_ID → SNOWFLAKE53_MACHINE_ID → SNOWFLAKE_MACHINE_ID
//
// 都未设置时为 0。解析结果按变体掩码后缓存于生成器实例；
// Get53WithMachine/Get63WithMachine 的显式值不读也不写缓存。
//
// # 使用方式
//
// 实例化：
//
//	gen, err := xflake.NewGenerator()
//	if err != nil { ... }
//	defer gen.Close()
//	id, err := gen.Get63()
//
// 包级函数使用惰性初始化的默认生成器：
//
//	id, err := xflake.Get53()
//
// 所有生成失败都包裹为 [ErrIDGeneration]，原因可通过 errors.Is 判断。
package xflake
