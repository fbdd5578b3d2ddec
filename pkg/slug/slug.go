// Package slug 生成 URL 安全、保留 Unicode 字母的 slug
package slug

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// MaxLength 课程 slug 列宽
const MaxLength = 250

// Make 将任意文本转换为 slug：
// NFKC 归一化 → 小写 → 仅保留字母/数字/下划线/空白/连字符 → 空白与连字符折叠为单个 "-"。
// 非 ASCII 字母保留原样（如 "Привет мир" → "привет-мир"）。
func Make(s string) string {
	s = strings.ToLower(norm.NFKC.String(s))

	var b strings.Builder
	b.Grow(len(s))
	pendingDash := false
	for _, r := range s {
		switch {
		case unicode.IsLetter(r) || unicode.IsNumber(r) || r == '_':
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteRune(r)
		case r == '-' || unicode.IsSpace(r):
			pendingDash = true
		}
	}

	return strings.Trim(b.String(), "-_")
}

// Truncate 按字符数截断，并去掉末尾残留的分隔符
func Truncate(s string, max int) string {
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s
	}
	rs := []rune(s)
	return strings.TrimRight(string(rs[:max]), "-_")
}

// Available 在 taken 之外挑选第一个可用 slug：base、base-2、base-3 …
// 追加后缀时会截断 base，保证结果不超过 max 个字符。
func Available(base string, taken map[string]bool, max int) string {
	base = Truncate(base, max)
	if !taken[base] {
		return base
	}
	for i := 2; ; i++ {
		suffix := "-" + strconv.Itoa(i)
		candidate := Truncate(base, max-len(suffix)) + suffix
		if !taken[candidate] {
			return candidate
		}
	}
}

// Reserved 被站点固定路由占用的 URL 首段
type Reserved map[string]bool

// NewReserved 由路由首段构造保留集合，忽略首尾 "/" 与空段
func NewReserved(segments ...string) Reserved {
	r := make(Reserved, len(segments))
	for _, seg := range segments {
		seg = strings.ToLower(strings.Trim(seg, "/"))
		if seg != "" {
			r[seg] = true
		}
	}
	return r
}

// Avoid base 为保留首段时改用 base-2、base-3 …
func (r Reserved) Avoid(base string, max int) string {
	return Available(base, r, max)
}

// Merge 返回 taken 与保留集合的并集，不修改 taken
func (r Reserved) Merge(taken map[string]bool) map[string]bool {
	out := make(map[string]bool, len(taken)+len(r))
	for k := range taken {
		out[k] = true
	}
	for k := range r {
		out[k] = true
	}
	return out
}
