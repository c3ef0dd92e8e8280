// Package locator 在详情页 URL 与 opaque ID 之间做双射转换。
//
// opaque ID 作为记录的外部主键暴露给宿主；编码细节不对外承诺，只保证
// Decode(Encode(u)) == u。
package locator

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrInvalid 表示 opaque ID 无法解码为合法的绝对 URL。
var ErrInvalid = errors.New("locator: invalid id")

var enc = base64.RawURLEncoding

// Encode 把绝对 URL 编码为 opaque ID。
func Encode(u string) string {
	return enc.EncodeToString([]byte(u))
}

// Decode 把 opaque ID 还原为 URL，并校验其为 http/https 绝对地址。
func Decode(id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalid)
	}
	b, err := enc.DecodeString(id)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	s := string(b)
	u, err := url.Parse(s)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return "", fmt.Errorf("%w: not an absolute url: %q", ErrInvalid, s)
	}
	return s, nil
}
