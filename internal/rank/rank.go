// Package rank 按编辑距离给候选打分。
package rank

import (
	"strings"

	"github.com/agnivade/levenshtein"
)

// Score 返回 100 - 编辑距离（忽略大小写）。
//
// 完全相同得 100；差异越大分越低，长且差异大的字符串可以是负数。
// 该值只用于相对排序，不做截断。
func Score(reference, candidate string) int {
	return 100 - levenshtein.ComputeDistance(strings.ToLower(reference), strings.ToLower(candidate))
}
