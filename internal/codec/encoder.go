package codec

import (
	"context"
	"iter"
	"reflect"

	"github.com/lk2023060901/streamcodec-go/internal/mimetype"
	"github.com/lk2023060901/streamcodec-go/internal/serializer"
	"github.com/lk2023060901/streamcodec-go/pkg/buffer"
	"github.com/lk2023060901/streamcodec-go/pkg/log"
	"github.com/lk2023060901/streamcodec-go/pkg/metrics"
	"github.com/lk2023060901/streamcodec-go/pkg/util/merr"
)

const componentEncoder = "encoder"

// Encoder 将对象流编码为字节缓冲区流。
//
// 实例可被多个 goroutine 并发使用。Encode 返回的序列是惰性的，
// 直到调用方迭代才会消费输入并产生输出；调用方停止迭代即取消
// 整个编码流程。
type Encoder struct {
	base
	log.Binder
}

// NewEncoder 按给定配置创建编码器。
func NewEncoder(opts Options) (*Encoder, error) {
	b, err := newBase(opts)
	if err != nil {
		return nil, err
	}

	e := &Encoder{base: b}
	e.SetLogger(log.With(
		log.FieldComponent(componentEncoder),
		log.FieldFormat(b.format.Name())))
	return e, nil
}

// CanEncode 判断编码器能否处理给定的元素类型与 mime type 组合。
// mimeType 为 nil 表示调用方不限定输出类型。
// 序列化器解析失败只意味着“不能处理”，不是错误。
func (e *Encoder) CanEncode(elementType reflect.Type, mimeType *mimetype.MediaType) bool {
	return e.canHandle(elementType, mimeType, componentEncoder)
}

// EncodableMimeTypes 返回编码器可协商的 mime type 列表。
func (e *Encoder) EncodableMimeTypes() []mimetype.MediaType {
	return e.mimeTypes()
}

// Encode 将输入编码为缓冲区序列。
//
// 三种输出形态：
//   - 单值输入：恰好产出一个缓冲区，内容为该对象的编码；
//   - 多值输入 + 流式 mime type：每个元素产出一个缓冲区，
//     内容为元素编码加分隔符，元素到达即产出；
//   - 多值输入 + 非流式 mime type：所有元素收集为一个序列后
//     整体编码，产出一个缓冲区。
//
// 序列产出非 nil error 后即终止。上游 Source 的错误原样传递；
// ctx 取消时以 ctx.Err() 终止。产出的缓冲区由调用方负责 Release。
func (e *Encoder) Encode(
	ctx context.Context,
	src Source,
	factory buffer.Factory,
	elementType reflect.Type,
	mimeType *mimetype.MediaType,
	hints Hints,
) iter.Seq2[*buffer.Buffer, error] {
	return func(yield func(*buffer.Buffer, error) bool) {
		ser, err := e.resolveFor(elementType, componentEncoder)
		if err != nil {
			e.observeEncode(mimeType, err)
			yield(nil, err)
			return
		}

		if src.IsSingle() {
			buf, err := e.encodeOne(ser, src.value, factory, mimeType, hints, nil)
			if err != nil {
				yield(nil, err)
				return
			}
			yield(buf, nil)
			return
		}

		if sep, ok := e.separatorFor(mimeType); ok {
			e.encodeStreaming(ctx, src, ser, factory, mimeType, hints, sep, yield)
			return
		}

		e.encodeCollected(ctx, src, factory, elementType, mimeType, hints, yield)
	}
}

// EncodeValue 同步编码单个对象，返回包含编码结果的缓冲区。
func (e *Encoder) EncodeValue(
	v any,
	factory buffer.Factory,
	elementType reflect.Type,
	mimeType *mimetype.MediaType,
	hints Hints,
) (*buffer.Buffer, error) {
	ser, err := e.resolveFor(elementType, componentEncoder)
	if err != nil {
		e.observeEncode(mimeType, err)
		return nil, err
	}
	return e.encodeOne(ser, v, factory, mimeType, hints, nil)
}

// encodeStreaming 逐元素编码并追加分隔符，元素到达即产出。
func (e *Encoder) encodeStreaming(
	ctx context.Context,
	src Source,
	ser serializer.Serializer,
	factory buffer.Factory,
	mimeType *mimetype.MediaType,
	hints Hints,
	sep []byte,
	yield func(*buffer.Buffer, error) bool,
) {
	for v, err := range src.values {
		if err != nil {
			e.observeEncode(mimeType, err)
			yield(nil, err)
			return
		}
		if ctx.Err() != nil {
			e.observeEncode(mimeType, ctx.Err())
			yield(nil, ctx.Err())
			return
		}

		buf, err := e.encodeOne(ser, v, factory, mimeType, hints, sep)
		if err != nil {
			yield(nil, err)
			return
		}
		if !yield(buf, nil) {
			return
		}
	}
}

// encodeCollected 将全部元素收集为一个序列后整体编码。
func (e *Encoder) encodeCollected(
	ctx context.Context,
	src Source,
	factory buffer.Factory,
	elementType reflect.Type,
	mimeType *mimetype.MediaType,
	hints Hints,
	yield func(*buffer.Buffer, error) bool,
) {
	collected, err := e.collect(ctx, src, elementType)
	if err != nil {
		e.observeEncode(mimeType, err)
		yield(nil, err)
		return
	}

	// 序列整体按切片类型解析序列化器，命中注册表的
	// “切片按元素类型查找”策略。
	ser, err := e.resolveFor(reflect.TypeOf(collected), componentEncoder)
	if err != nil {
		e.observeEncode(mimeType, err)
		yield(nil, err)
		return
	}

	buf, err := e.encodeOne(ser, collected, factory, mimeType, hints, nil)
	if err != nil {
		yield(nil, err)
		return
	}
	yield(buf, nil)
}

// collect 将多值输入物化为一个切片。
// elementType 可构造时返回 []T，否则退化为 []any。
func (e *Encoder) collect(ctx context.Context, src Source, elementType reflect.Type) (any, error) {
	if elementType == nil || elementType.Kind() == reflect.Interface {
		out := make([]any, 0)
		for v, err := range src.values {
			if err != nil {
				return nil, err
			}
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			out = append(out, v)
		}
		return out, nil
	}

	out := reflect.MakeSlice(reflect.SliceOf(elementType), 0, 0)
	for v, err := range src.values {
		if err != nil {
			return nil, err
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		rv := reflect.ValueOf(v)
		if !rv.IsValid() || !rv.Type().AssignableTo(elementType) {
			return nil, merr.WrapErrSerializerTypeMismatch(elementType.String(), v, "collect")
		}
		out = reflect.Append(out, rv)
	}
	return out.Interface(), nil
}

// encodeOne 编码单个对象并写入新分配的缓冲区。
// sep 非空时追加在编码结果之后。
func (e *Encoder) encodeOne(
	ser serializer.Serializer,
	v any,
	factory buffer.Factory,
	mimeType *mimetype.MediaType,
	hints Hints,
	sep []byte,
) (*buffer.Buffer, error) {
	data, err := e.format.encode(ser, v)
	if err != nil {
		e.observeEncode(mimeType, err)
		return nil, err
	}

	var buf *buffer.Buffer
	if len(sep) == 0 {
		buf = factory.Wrap(data)
	} else {
		buf = factory.Allocate()
		if _, err := buf.Write(data); err != nil {
			buf.Release()
			e.observeEncode(mimeType, err)
			return nil, err
		}
		if _, err := buf.Write(sep); err != nil {
			buf.Release()
			e.observeEncode(mimeType, err)
			return nil, err
		}
	}

	e.observeEncode(mimeType, nil)
	metrics.EncodeBytes.
		WithLabelValues(e.format.Name(), e.mimeLabel(mimeType)).
		Observe(float64(buf.Len()))
	e.logEncoded(v, mimeType, hints)
	return buf, nil
}

// logEncoded 输出编码调试日志，受 hints 控制。
func (e *Encoder) logEncoded(v any, mimeType *mimetype.MediaType, hints Hints) {
	if hints.LoggingSuppressed() || !log.DebugEnabled() {
		return
	}
	e.Logger().Debug(hints.LogPrefix()+"encoded value",
		log.FieldElementType(reflect.TypeOf(v)),
		log.FieldMimeType(e.mimeLabel(mimeType)))
}

// observeEncode 上报一次编码操作，err 非 nil 时同时按错误码计数。
func (e *Encoder) observeEncode(mimeType *mimetype.MediaType, err error) {
	status := metrics.StatusOK
	if err != nil {
		status = metrics.StatusFail
		e.observeError(err)
	}
	metrics.EncodeTotal.
		WithLabelValues(e.format.Name(), e.mimeLabel(mimeType), status).
		Inc()
}
