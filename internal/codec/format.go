package codec

import (
	"github.com/lk2023060901/streamcodec-go/internal/serializer"
	"github.com/lk2023060901/streamcodec-go/pkg/util/merr"
)

// FormatKind 区分文本格式与二进制格式两种编码路径。
type FormatKind uint8

const (
	// FormatText 表示文本格式：对象先编码为字符串，再按 UTF-8 转为字节。
	FormatText FormatKind = iota + 1
	// FormatBinary 表示二进制格式：对象直接编码为字节序列。
	FormatBinary
)

// Format 是一个两分支的和类型，描述编解码器使用的序列化格式。
// 通过 TextFormat 或 BinaryFormat 构造，构造后不可变。
type Format struct {
	name string
	kind FormatKind
	def  serializer.Serializer
}

// TextFormat 构造一个文本格式。
func TextFormat(name string, s serializer.TextSerializer) Format {
	return Format{name: name, kind: FormatText, def: s}
}

// BinaryFormat 构造一个二进制格式。
func BinaryFormat(name string, s serializer.Serializer) Format {
	return Format{name: name, kind: FormatBinary, def: s}
}

// JSONFormat 返回默认的 JSON 文本格式。
func JSONFormat() Format {
	return TextFormat("json", serializer.JSONSerializer{})
}

// Name 返回格式名，用于日志与指标标签。
func (f Format) Name() string {
	return f.name
}

// Kind 返回格式的编码路径类别。
func (f Format) Kind() FormatKind {
	return f.kind
}

// Serializer 返回该格式的默认序列化器，可直接用于注册表填充。
func (f Format) Serializer() serializer.Serializer {
	return f.def
}

func (f Format) valid() bool {
	return (f.kind == FormatText || f.kind == FormatBinary) && f.def != nil
}

// encode 按格式类别将对象编码为字节。
//
// 文本路径先得到字符串，再经 string -> []byte 转换得到
// 固定的 UTF-8 字节序列。
func (f Format) encode(s serializer.Serializer, v any) ([]byte, error) {
	if f.kind == FormatText {
		if ts, ok := s.(serializer.TextSerializer); ok {
			str, err := ts.MarshalToString(v)
			if err != nil {
				return nil, err
			}
			return []byte(str), nil
		}
		return nil, merr.WrapErrSerializerTypeMismatch("serializer.TextSerializer", s, "text format encode")
	}
	return s.Marshal(v)
}

// decode 按格式类别将字节解码到目标对象。
func (f Format) decode(s serializer.Serializer, data []byte, v any) error {
	if f.kind == FormatText {
		if ts, ok := s.(serializer.TextSerializer); ok {
			return ts.UnmarshalFromString(string(data), v)
		}
		return merr.WrapErrSerializerTypeMismatch("serializer.TextSerializer", s, "text format decode")
	}
	return s.Unmarshal(data, v)
}
