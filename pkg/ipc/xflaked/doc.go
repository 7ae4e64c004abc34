// Package xflaked 提供计数器守护进程后端：由单个进程在内存中持有各变体的
// 计数器，其他进程通过 Unix Socket 请求分配序列号。
//
// 适用于无法使用共享内存的环境（如 /dev/shm 不可写、容器间不共享 IPC 命名空间
// 但共享卷）。Client 实现 xflake.Store，可通过 xflake.WithStore 接入生成器：
//
//	srv, _ := xflaked.NewServer("/run/xflaked.sock")
//	go srv.Serve(ctx)
//
//	client := xflaked.NewClient("/run/xflaked.sock")
//	gen, _ := xflake.NewGenerator(xflake.WithStore(client))
//
// # 协议
//
// 每条消息由 8 字节头部与定长 payload 组成，整数均为大端序：
//
//	Magic(2) + Version(1) + Type(1) + Length(4)
//
// 请求 payload 8 字节：Op(1) + Variant(1) + 保留(6)。
// 响应 payload 24 字节：Status(1) + 保留(7) + A(8) + B(8)。
// advance 与 snapshot 的 A、B 分别为时间单位与序列号。
//
// 请求不携带时间单位与序列号上限：advance 在服务端互斥区内读取服务端时钟，
// 上限由变体的位布局决定。生成器的 xflake.WithClock 对该后端不生效，
// 测试中使用 [WithServerClock]。
//
// 一个连接上可以连续发送多个请求，服务端按顺序应答。
//
// # 状态
//
// 计数器只存在于守护进程内存中，不会跨守护进程重启保留，守护进程退出即丢失。
// 为避免重启后在同一时间单位内再次分配已用过的序列号，Serve 在开始接受连接前
// 等待到下一个 100ms 时间单位边界。该等待依赖主机时钟单调前进，
// 不覆盖时钟回拨。
package xflaked
