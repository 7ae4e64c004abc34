package xshm

import (
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// Token 由固定键和区分字节派生稳定的共享状态名。
//
// 使用相同 key 与 discriminator 的进程得到相同的名字，从而附着到同一份状态。
// 结果只含 [0-9a-z.]，可直接用作文件名。
func Token(key string, discriminator byte) string {
	return fmt.Sprintf("xshm.%016x.%02x", xxhash.Sum64String(key), discriminator)
}
