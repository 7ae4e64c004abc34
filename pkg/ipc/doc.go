// Package ipc 提供单机进程间协调的子包。
//
// 子包列表：
//   - xshm: 基于共享内存文件与 flock 的跨进程计数器
//   - xflaked: 计数器守护进程（Unix Socket）及其客户端
package ipc
