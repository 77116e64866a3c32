package log

import (
	"reflect"

	"go.uber.org/zap"
)

const (
	FieldNameModule    = "module"
	FieldNameComponent = "component"
)

// FieldModule 返回一个包含模块名的 zap 字段。
func FieldModule(module string) zap.Field {
	return zap.String(FieldNameModule, module)
}

// FieldComponent 返回一个包含组件名的 zap 字段。
func FieldComponent(component string) zap.Field {
	return zap.String(FieldNameComponent, component)
}

// FieldMimeType 返回一个包含 mime type 的 zap 字段。
func FieldMimeType(mimeType string) zap.Field {
	return zap.String("mimeType", mimeType)
}

// FieldElementType 返回一个包含元素类型名的 zap 字段。
func FieldElementType(t reflect.Type) zap.Field {
	if t == nil {
		return zap.String("elementType", "<nil>")
	}
	return zap.String("elementType", t.String())
}

// FieldFormat 返回一个包含序列化格式名的 zap 字段。
func FieldFormat(format string) zap.Field {
	return zap.String("format", format)
}
