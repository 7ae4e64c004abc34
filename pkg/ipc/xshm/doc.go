// Package xshm 提供单机多进程共享的计数器存储。
//
// 每个 [Segment] 对应共享目录下的一对文件：
//
//   - 数据文件：16 字节，小端序存放两个 uint64（上次时间单位、当前序列号），
//     以 MAP_SHARED 方式映射进进程地址空间
//   - 锁文件：数据文件同名加 ".lock" 后缀，通过 flock(LOCK_EX|LOCK_NB) 互斥
//
// 所有读改写都在持锁期间完成，没有不持锁的读取路径。
//
// # 锁语义
//
// 每次加锁都打开新的文件描述符。flock 锁绑定在打开文件描述上，
// 因此同一进程内的不同 goroutine 与不同进程之间的竞争完全一致，
// 不存在进程内捷径。加锁采用有界重试（默认 1000 次，间隔 1ms），
// 重试耗尽返回 [ErrLockAcquisition]，而不是无限阻塞。
//
// # 目录
//
// 默认目录由 [DefaultDir] 决定：存在 /dev/shm 时使用它（内存文件系统，
// 重启后清空），否则回退到 os.TempDir()。状态在进程重启之间保留，
// 直到显式调用 [Segment.Destroy] 或主机重启。
//
// # 平台支持
//
// 仅 Unix 平台可用。非 Unix 平台上所有操作返回 [ErrUnsupportedPlatform]。
package xshm
