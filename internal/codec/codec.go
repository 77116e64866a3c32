// Package codec 实现“对象流 -> 编码字节缓冲区流”的适配层。
//
// Pipeline（编码 Encode）：
//
//	source --> registry 按元素类型解析 serializer --> format 编码 --> [分隔符?] --> buffer
//
// Pipeline（解码 Decode）：
//
//	buffer 流 --> [按分隔符切分?] --> format 解码 --> 对象流
//
// 调度、背压与取消全部由调用方的迭代驱动，本包不创建任何 goroutine；
// 同一实例可被多个调用并发共享，构造完成后没有可变状态。
package codec

import (
	"reflect"
	"strconv"

	"github.com/cockroachdb/errors"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/lk2023060901/streamcodec-go/internal/mimetype"
	"github.com/lk2023060901/streamcodec-go/internal/serializer"
	"github.com/lk2023060901/streamcodec-go/pkg/log"
	"github.com/lk2023060901/streamcodec-go/pkg/metrics"
	"github.com/lk2023060901/streamcodec-go/pkg/util/merr"
	"github.com/lk2023060901/streamcodec-go/pkg/util/typeutil"
)

// defaultSeparator 是流式输出的默认分隔符。
var defaultSeparator = []byte("\n")

// StreamingMimeType 声明一个支持流式输出的 mime type 及其分隔符。
type StreamingMimeType struct {
	MediaType mimetype.MediaType

	// Separator 在流式输出中追加在每个编码值之后，为空时使用换行符。
	Separator []byte
}

// Options 用于构造 Encoder / Decoder 的依赖注入参数。
type Options struct {
	// Format 为序列化格式，必填。
	Format Format

	// Registry 为类型到序列化器的注册表，必填。
	Registry *serializer.Registry

	// SupportedMimeTypes 为可协商的 mime type 列表，允许包含通配形式，必填。
	SupportedMimeTypes []mimetype.MediaType

	// StreamingMimeTypes 声明哪些 mime type 按流式（逐值 + 分隔符）输出，
	// 可为空；此处出现的 mime type 不要求同时出现在 SupportedMimeTypes 中，
	// 但必须是不含通配符的具体类型。
	StreamingMimeTypes []StreamingMimeType
}

// base 持有 Encoder 与 Decoder 共享的构造期配置。
// 所有字段在构造后只读。
type base struct {
	format     Format
	registry   *serializer.Registry
	supported  []mimetype.MediaType
	streaming  typeutil.Set[string]
	separators map[string][]byte
}

func newBase(opts Options) (base, error) {
	if !opts.Format.valid() {
		return base{}, merr.WrapErrCodecMisconfigured("format is not initialized")
	}
	if opts.Registry == nil {
		return base{}, merr.WrapErrCodecMisconfigured("registry is nil")
	}
	if len(opts.SupportedMimeTypes) == 0 {
		return base{}, merr.WrapErrCodecMisconfigured("no supported mime types")
	}
	for _, m := range opts.SupportedMimeTypes {
		if m.IsZero() {
			return base{}, merr.WrapErrCodecMisconfigured("zero mime type in supported list")
		}
	}

	b := base{
		format:     opts.Format,
		registry:   opts.Registry,
		supported:  append([]mimetype.MediaType(nil), opts.SupportedMimeTypes...),
		streaming:  typeutil.NewSet[string](),
		separators: make(map[string][]byte),
	}

	for _, sm := range opts.StreamingMimeTypes {
		if sm.MediaType.IsZero() || sm.MediaType.IsWildcardType() || sm.MediaType.IsWildcardSubtype() {
			return base{}, merr.WrapErrCodecMisconfigured("streaming mime type must be concrete")
		}
		sep := sm.Separator
		if len(sep) == 0 {
			sep = defaultSeparator
		}
		b.streaming.Insert(sm.MediaType.Key())
		b.separators[sm.MediaType.Key()] = sep
	}

	return b, nil
}

// mimeTypes 返回支持的 mime type 列表拷贝。
func (b *base) mimeTypes() []mimetype.MediaType {
	return append([]mimetype.MediaType(nil), b.supported...)
}

// supportsMimeType 判断给定 mime type 是否可协商。
// mimeType 为 nil 表示调用方未指定，视为支持。
func (b *base) supportsMimeType(mimeType *mimetype.MediaType) bool {
	if mimeType == nil {
		return true
	}
	for _, m := range b.supported {
		if m.Matches(*mimeType) || mimeType.Matches(m) {
			return true
		}
	}
	return false
}

// canHandle 实现能力检查的公共部分：mime type 可协商，且注册表
// 能为元素类型解析出序列化器。解析失败按“无法处理”处理，只记
// debug 日志，不向调用方抛错。
func (b *base) canHandle(elementType reflect.Type, mimeType *mimetype.MediaType, op string) bool {
	if !b.supportsMimeType(mimeType) {
		return false
	}
	if _, err := b.registry.Resolve(elementType); err != nil {
		log.Debug("serializer resolution failed, type not handled",
			log.FieldComponent(op),
			log.FieldFormat(b.format.Name()),
			log.FieldElementType(elementType),
			log.FieldMimeType(b.mimeLabel(mimeType)),
			zap.Strings("supported", b.supportedLabels()))
		return false
	}
	return true
}

// separatorFor 返回流式输出使用的分隔符。
// 第二个返回值为 false 表示该 mime type 不是流式类型。
func (b *base) separatorFor(mimeType *mimetype.MediaType) ([]byte, bool) {
	if mimeType == nil {
		return nil, false
	}
	key := mimeType.Key()
	if !b.streaming.Contain(key) {
		return nil, false
	}
	return b.separators[key], true
}

// mimeLabel 返回用于日志与指标标签的 mime type 字符串。
func (b *base) mimeLabel(mimeType *mimetype.MediaType) string {
	if mimeType == nil {
		return "*/*"
	}
	return mimeType.Key()
}

// supportedLabels 返回支持列表的字符串形式，仅用于日志。
func (b *base) supportedLabels() []string {
	return lo.Map(b.supported, func(m mimetype.MediaType, _ int) string {
		return m.String()
	})
}

// observeError 按错误码上报一次失败操作。
func (b *base) observeError(err error) {
	metrics.ErrorTotal.
		WithLabelValues(b.format.Name(), strconv.FormatInt(int64(merr.Code(err)), 10)).
		Inc()
}

// resolveFor 解析元素类型对应的序列化器，失败时附加操作信息。
func (b *base) resolveFor(elementType reflect.Type, op string) (serializer.Serializer, error) {
	ser, err := b.registry.Resolve(elementType)
	if err != nil {
		return nil, errors.Wrap(err, op)
	}
	return ser, nil
}
