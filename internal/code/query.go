package code

import (
	"strconv"
	"strings"

	"golang.org/x/text/width"

	"github.com/John-Robertt/avmeta/internal/domain"
)

// ParseQuery 从自由文本中派生 Token，并返回实际用于搜索的文本。
//
// 规则（启发式，假设编号形如 "ABC 123"）：
// - 按空白切分；至少两段且第二段是整数时，Token={第一段, 第二段}，effective="第一段-第二段"
// - 否则 effective 为原始输入（不做任何修改），ok=false
//
// 全角字符（例如 "ＡＢＣ　１２３"）先折叠为半角再切分。
func ParseQuery(raw string) (effective string, tok domain.Token, ok bool) {
	fields := strings.Fields(width.Fold.String(raw))
	if len(fields) < 2 {
		return raw, domain.Token{}, false
	}
	if _, err := strconv.Atoi(fields[1]); err != nil {
		return raw, domain.Token{}, false
	}
	tok = domain.Token{Prefix: fields[0], Number: fields[1]}
	return tok.String(), tok, true
}
