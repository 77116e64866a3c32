package codec

import (
	"bytes"
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

const componentDecoder = "decoder"

// Decoder 将字节缓冲区流还原为对象流，是 Encoder 的逆方向。
//
// 流式 mime type 按分隔符切分后逐块解码，块可以跨越任意多个
// 缓冲区边界；非流式 mime type 将全部输入拼接后按序列整体解码，
// 再逐元素产出。
type Decoder struct {
	base
	log.Binder
}

// NewDecoder 按给定配置创建解码器。
func NewDecoder(opts Options) (*Decoder, error) {
	b, err := newBase(opts)
	if err != nil {
		return nil, err
	}

	d := &Decoder{base: b}
	d.SetLogger(log.With(
		log.FieldComponent(componentDecoder),
		log.FieldFormat(b.format.Name())))
	return d, nil
}

// CanDecode 判断解码器能否处理给定的元素类型与 mime type 组合。
func (d *Decoder) CanDecode(elementType reflect.Type, mimeType *mimetype.MediaType) bool {
	return d.canHandle(elementType, mimeType, componentDecoder)
}

// DecodableMimeTypes 返回解码器可协商的 mime type 列表。
func (d *Decoder) DecodableMimeTypes() []mimetype.MediaType {
	return d.mimeTypes()
}

// DecodeValue 同步解码单段字节为一个对象。
func (d *Decoder) DecodeValue(
	data []byte,
	elementType reflect.Type,
	mimeType *mimetype.MediaType,
	hints Hints,
) (any, error) {
	ser, err := d.resolveFor(elementType, componentDecoder)
	if err != nil {
		d.observeDecode(mimeType, err)
		return nil, err
	}
	return d.decodeOne(ser, data, elementType, mimeType, hints)
}

// Decode 将缓冲区序列解码为对象序列。
//
// 输入缓冲区在内容被消费后由本方法调用 Release 归还；
// 序列产出非 nil error 后即终止，上游错误原样传递。
func (d *Decoder) Decode(
	ctx context.Context,
	input iter.Seq2[*buffer.Buffer, error],
	elementType reflect.Type,
	mimeType *mimetype.MediaType,
	hints Hints,
) iter.Seq2[any, error] {
	return func(yield func(any, error) bool) {
		ser, err := d.resolveFor(elementType, componentDecoder)
		if err != nil {
			d.observeDecode(mimeType, err)
			yield(nil, err)
			return
		}

		if sep, ok := d.separatorFor(mimeType); ok {
			d.decodeStreaming(ctx, input, ser, elementType, mimeType, hints, sep, yield)
			return
		}

		d.decodeCollected(ctx, input, elementType, mimeType, hints, yield)
	}
}

// decodeStreaming 按分隔符切分输入并逐块解码。
// 跨缓冲区的残余字节保留在 carry 中，与后续内容拼接；
// 输入结束后若仍有未带分隔符的残余，按最后一块解码。
func (d *Decoder) decodeStreaming(
	ctx context.Context,
	input iter.Seq2[*buffer.Buffer, error],
	ser serializer.Serializer,
	elementType reflect.Type,
	mimeType *mimetype.MediaType,
	hints Hints,
	sep []byte,
	yield func(any, error) bool,
) {
	var carry []byte
	for buf, err := range input {
		if err != nil {
			d.observeDecode(mimeType, err)
			yield(nil, err)
			return
		}
		if ctx.Err() != nil {
			buf.Release()
			d.observeDecode(mimeType, ctx.Err())
			yield(nil, ctx.Err())
			return
		}

		carry = append(carry, buf.Bytes()...)
		buf.Release()

		for {
			idx := bytes.Index(carry, sep)
			if idx < 0 {
				break
			}
			chunk := carry[:idx]
			carry = carry[idx+len(sep):]
			if len(chunk) == 0 {
				continue
			}
			v, err := d.decodeOne(ser, chunk, elementType, mimeType, hints)
			if err != nil {
				yield(nil, err)
				return
			}
			if !yield(v, nil) {
				return
			}
		}
	}

	if len(carry) > 0 {
		v, err := d.decodeOne(ser, carry, elementType, mimeType, hints)
		if err != nil {
			yield(nil, err)
			return
		}
		yield(v, nil)
	}
}

// decodeCollected 拼接全部输入后按“elementType 的切片”整体解码，
// 再逐元素产出。
func (d *Decoder) decodeCollected(
	ctx context.Context,
	input iter.Seq2[*buffer.Buffer, error],
	elementType reflect.Type,
	mimeType *mimetype.MediaType,
	hints Hints,
	yield func(any, error) bool,
) {
	var data []byte
	for buf, err := range input {
		if err != nil {
			d.observeDecode(mimeType, err)
			yield(nil, err)
			return
		}
		if ctx.Err() != nil {
			buf.Release()
			d.observeDecode(mimeType, ctx.Err())
			yield(nil, ctx.Err())
			return
		}
		data = append(data, buf.Bytes()...)
		buf.Release()
	}

	if len(data) == 0 {
		return
	}

	sliceType := reflect.SliceOf(d.targetType(elementType))
	out := reflect.New(sliceType)
	ser, err := d.resolveFor(sliceType, componentDecoder)
	if err != nil {
		d.observeDecode(mimeType, err)
		yield(nil, err)
		return
	}
	if err := d.format.decode(ser, data, out.Interface()); err != nil {
		wrapped := merr.WrapErrStreamMalformed(err.Error(), componentDecoder)
		d.observeDecode(mimeType, wrapped)
		yield(nil, wrapped)
		return
	}

	d.observeDecode(mimeType, nil)
	metrics.DecodeBytes.
		WithLabelValues(d.format.Name(), d.mimeLabel(mimeType)).
		Observe(float64(len(data)))
	d.logDecoded(elementType, mimeType, hints)

	slice := out.Elem()
	for i := 0; i < slice.Len(); i++ {
		if !yield(slice.Index(i).Interface(), nil) {
			return
		}
	}
}

// decodeOne 解码一段完整的编码字节为一个对象。
func (d *Decoder) decodeOne(
	ser serializer.Serializer,
	data []byte,
	elementType reflect.Type,
	mimeType *mimetype.MediaType,
	hints Hints,
) (any, error) {
	target := reflect.New(d.targetType(elementType))
	if err := d.format.decode(ser, data, target.Interface()); err != nil {
		wrapped := merr.WrapErrStreamMalformed(err.Error(), componentDecoder)
		d.observeDecode(mimeType, wrapped)
		return nil, wrapped
	}

	d.observeDecode(mimeType, nil)
	metrics.DecodeBytes.
		WithLabelValues(d.format.Name(), d.mimeLabel(mimeType)).
		Observe(float64(len(data)))
	d.logDecoded(elementType, mimeType, hints)
	return target.Elem().Interface(), nil
}

// targetType 返回解码目标的可寻址类型，剥离指针，nil 退化为 any。
func (d *Decoder) targetType(elementType reflect.Type) reflect.Type {
	if elementType == nil {
		return reflect.TypeOf((*any)(nil)).Elem()
	}
	for elementType.Kind() == reflect.Pointer {
		elementType = elementType.Elem()
	}
	return elementType
}

// logDecoded 输出解码调试日志，受 hints 控制。
func (d *Decoder) logDecoded(elementType reflect.Type, mimeType *mimetype.MediaType, hints Hints) {
	if hints.LoggingSuppressed() || !log.DebugEnabled() {
		return
	}
	d.Logger().Debug(hints.LogPrefix()+"decoded value",
		log.FieldElementType(elementType),
		log.FieldMimeType(d.mimeLabel(mimeType)))
}

// observeDecode 上报一次解码操作，err 非 nil 时同时按错误码计数。
func (d *Decoder) observeDecode(mimeType *mimetype.MediaType, err error) {
	status := metrics.StatusOK
	if err != nil {
		status = metrics.StatusFail
		d.observeError(err)
	}
	metrics.DecodeTotal.
		WithLabelValues(d.format.Name(), d.mimeLabel(mimeType), status).
		Inc()
}
