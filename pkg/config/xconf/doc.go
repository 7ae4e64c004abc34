// Package xconf 加载 xflake 的部署配置，基于 koanf 实现。
//
// # 支持的格式
//
//   - YAML（推荐）：.yaml, .yml
//   - JSON：.json
//
// # 配置项
//
//	shared_dir: /dev/shm          # 共享状态目录，空值按 xflake 默认规则
//	token_key: github.com/omeyang/xflake
//	backend: shm                  # shm | daemon
//	socket: /run/xflaked.sock     # backend=daemon 时的守护进程地址
//	lock:
//	  attempts: 1000
//	  interval: 1ms
//	machine:
//	  id53: 3
//	  id63: 513
//	  id: 1
//	log:
//	  level: info
//	  format: text                # text | json
//	  file: ""                    # 非空时输出到文件并轮转
//
// 未出现的配置项保持 Default 的取值。
//
// # 机器 ID
//
// 文件中的机器 ID 不覆盖环境变量：MachineSources 先查询环境变量链，
// 再按相同的变体次序查询文件中的值。
package xconf
