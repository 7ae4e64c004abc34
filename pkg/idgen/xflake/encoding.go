package xflake

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
)

// Encoding ID 的文本编码。
type Encoding string

// 支持的编码，字母表与 bwmarrin/snowflake 一致。
const (
	EncodingDecimal Encoding = "decimal"
	EncodingBase2   Encoding = "base2"
	EncodingBase32  Encoding = "base32"
	EncodingBase36  Encoding = "base36"
	EncodingBase58  Encoding = "base58"
	EncodingBase64  Encoding = "base64"
)

// Encodings 返回所有支持的编码。
func Encodings() []Encoding {
	return []Encoding{EncodingDecimal, EncodingBase2, EncodingBase32, EncodingBase36, EncodingBase58, EncodingBase64}
}

// ParseEncoding 解析编码名（大小写不敏感）。空字符串与 "dec" 视为十进制。
func ParseEncoding(s string) (Encoding, error) {
	switch e := Encoding(strings.ToLower(strings.TrimSpace(s))); e {
	case "", "dec":
		return EncodingDecimal, nil
	case EncodingDecimal, EncodingBase2, EncodingBase32, EncodingBase36, EncodingBase58, EncodingBase64:
		return e, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownEncoding, s)
	}
}

// Encode 把 id 编码为文本。负数 id 返回 ErrInvalidID。
func Encode(id int64, enc Encoding) (string, error) {
	if id < 0 {
		return "", fmt.Errorf("%w: %d", ErrInvalidID, id)
	}
	sid := snowflake.ID(id)
	switch enc {
	case EncodingDecimal, "":
		return sid.String(), nil
	case EncodingBase2:
		return sid.Base2(), nil
	case EncodingBase32:
		return sid.Base32(), nil
	case EncodingBase36:
		return sid.Base36(), nil
	case EncodingBase58:
		return sid.Base58(), nil
	case EncodingBase64:
		return sid.Base64(), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownEncoding, enc)
	}
}

// Parse 是 Encode 的逆运算。无法解析或结果为负数时返回 ErrInvalidID。
func Parse(s string, enc Encoding) (int64, error) {
	var (
		sid snowflake.ID
		err error
	)
	switch enc {
	case EncodingDecimal, "":
		sid, err = snowflake.ParseString(s)
	case EncodingBase2:
		sid, err = snowflake.ParseBase2(s)
	case EncodingBase32:
		sid, err = snowflake.ParseBase32([]byte(s))
	case EncodingBase36:
		sid, err = snowflake.ParseBase36(s)
	case EncodingBase58:
		sid, err = snowflake.ParseBase58([]byte(s))
	case EncodingBase64:
		sid, err = snowflake.ParseBase64(s)
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownEncoding, enc)
	}
	if err != nil {
		return 0, fmt.Errorf("%w: %s %q: %w", ErrInvalidID, enc, s, err)
	}
	if sid.Int64() < 0 {
		return 0, fmt.Errorf("%w: %s %q is negative", ErrInvalidID, enc, s)
	}
	return sid.Int64(), nil
}
