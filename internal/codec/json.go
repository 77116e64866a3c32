package codec

import (
	"github.com/lk2023060901/streamcodec-go/internal/mimetype"
	"github.com/lk2023060901/streamcodec-go/internal/serializer"
)

// 默认 JSON 配置使用的 mime type。
var (
	MimeTypeJSON         = mimetype.MustParse("application/json")
	MimeTypeJSONWildcard = mimetype.MustParse("application/*+json")
	MimeTypeStreamJSON   = mimetype.MustParse("application/stream+json")
	MimeTypeNDJSON       = mimetype.MustParse("application/x-ndjson")
)

// jsonOptions 返回 JSON 编解码器的默认配置：
// 支持 application/json 及其 +json 后缀族，
// application/stream+json 与 application/x-ndjson 按换行分隔流式输出。
func jsonOptions(reg *serializer.Registry) Options {
	return Options{
		Format:   JSONFormat(),
		Registry: reg,
		SupportedMimeTypes: []mimetype.MediaType{
			MimeTypeJSON,
			MimeTypeJSONWildcard,
			MimeTypeStreamJSON,
			MimeTypeNDJSON,
		},
		StreamingMimeTypes: []StreamingMimeType{
			{MediaType: MimeTypeStreamJSON},
			{MediaType: MimeTypeNDJSON},
		},
	}
}

// NewJSONEncoder 创建使用默认 JSON 配置的编码器。
func NewJSONEncoder(reg *serializer.Registry) (*Encoder, error) {
	return NewEncoder(jsonOptions(reg))
}

// NewJSONDecoder 创建使用默认 JSON 配置的解码器。
func NewJSONDecoder(reg *serializer.Registry) (*Decoder, error) {
	return NewDecoder(jsonOptions(reg))
}
