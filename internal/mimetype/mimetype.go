// Package mimetype 实现内容协商所需的 media type 值类型。
//
// 支持三类通配匹配：
//   - */*            匹配任意类型；
//   - application/*  匹配同主类型下的任意子类型；
//   - application/*+json 匹配任意带 +json 后缀的子类型。
package mimetype

import (
	"mime"
	"sort"
	"strings"

	"github.com/lk2023060901/streamcodec-go/pkg/util/merr"
)

const wildcard = "*"

// MediaType 表示一个不可变的 media type，例如 application/json。
// 类型与子类型在解析时统一转为小写。
type MediaType struct {
	typ     string
	subtype string
	params  map[string]string
}

// Parse 解析形如 "type/subtype; k=v" 的 media type 字符串。
// 解析失败返回 merr.ErrMimeTypeInvalid。
func Parse(s string) (MediaType, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return MediaType{}, merr.WrapErrMimeTypeInvalid(s, "empty input")
	}

	full, params, err := mime.ParseMediaType(s)
	if err != nil {
		return MediaType{}, merr.WrapErrMimeTypeInvalid(s, err.Error())
	}

	typ, subtype, ok := strings.Cut(full, "/")
	if !ok || typ == "" || subtype == "" {
		return MediaType{}, merr.WrapErrMimeTypeInvalid(s, "missing subtype")
	}
	// "*/json" 这类主类型通配、子类型具体的写法没有意义。
	if typ == wildcard && subtype != wildcard {
		return MediaType{}, merr.WrapErrMimeTypeInvalid(s, "wildcard type with concrete subtype")
	}
	if len(params) == 0 {
		params = nil
	}

	return MediaType{typ: typ, subtype: subtype, params: params}, nil
}

// MustParse 与 Parse 相同，解析失败时 panic。
// 仅用于包初始化阶段的常量 media type。
func MustParse(s string) MediaType {
	m, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return m
}

// IsZero 判断是否为未初始化的零值。
func (m MediaType) IsZero() bool {
	return m.typ == "" && m.subtype == ""
}

// Type 返回主类型，例如 "application"。
func (m MediaType) Type() string {
	return m.typ
}

// Subtype 返回子类型，例如 "json"。
func (m MediaType) Subtype() string {
	return m.subtype
}

// Parameter 返回指定参数的值，不存在时返回空字符串。
func (m MediaType) Parameter(name string) string {
	return m.params[strings.ToLower(name)]
}

// IsWildcardType 判断主类型是否为通配符。
func (m MediaType) IsWildcardType() bool {
	return m.typ == wildcard
}

// IsWildcardSubtype 判断子类型是否为通配形式（"*" 或 "*+suffix"）。
func (m MediaType) IsWildcardSubtype() bool {
	return m.subtype == wildcard || strings.HasPrefix(m.subtype, wildcard+"+")
}

// SubtypeSuffix 返回子类型最后一个 '+' 之后的后缀，没有后缀时返回空字符串。
func (m MediaType) SubtypeSuffix() string {
	if idx := strings.LastIndexByte(m.subtype, '+'); idx >= 0 {
		return m.subtype[idx+1:]
	}
	return ""
}

// Matches 判断接收者（可含通配符）是否匹配给定的具体 media type。
// 参数不参与匹配。
func (m MediaType) Matches(other MediaType) bool {
	if m.IsWildcardType() {
		return true
	}
	if m.typ != other.typ {
		return false
	}
	if m.subtype == other.subtype {
		return true
	}
	if !m.IsWildcardSubtype() {
		return false
	}
	if m.subtype == wildcard {
		return true
	}
	// "*+json" 形式：比较后缀。
	suffix := m.SubtypeSuffix()
	return suffix != "" && suffix == other.SubtypeSuffix()
}

// EqualsTypeAndSubtype 判断类型与子类型是否相同，忽略参数。
func (m MediaType) EqualsTypeAndSubtype(other MediaType) bool {
	return m.typ == other.typ && m.subtype == other.subtype
}

// Key 返回不含参数的 "type/subtype" 形式，用作查找表的键。
func (m MediaType) Key() string {
	return m.typ + "/" + m.subtype
}

// String 返回规范化的字符串表示，参数按名称排序。
func (m MediaType) String() string {
	if len(m.params) == 0 {
		return m.Key()
	}

	var sb strings.Builder
	sb.WriteString(m.Key())

	names := make([]string, 0, len(m.params))
	for name := range m.params {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		sb.WriteString("; ")
		sb.WriteString(name)
		sb.WriteString("=")
		sb.WriteString(m.params[name])
	}
	return sb.String()
}
