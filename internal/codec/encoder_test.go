package codec

import (
	"context"
	"io"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/sync/errgroup"

	"github.com/lk2023060901/streamcodec-go/internal/mimetype"
	"github.com/lk2023060901/streamcodec-go/internal/serializer"
	"github.com/lk2023060901/streamcodec-go/pkg/buffer"
	"github.com/lk2023060901/streamcodec-go/pkg/log"
	"github.com/lk2023060901/streamcodec-go/pkg/util/merr"
	"github.com/lk2023060901/streamcodec-go/pkg/util/typeutil"
)

type record struct {
	X int `json:"x"`
}

// drainEncode 迭代编码输出，返回各缓冲区内容的字符串形式。
func drainEncode(seq func(yield func(*buffer.Buffer, error) bool)) ([]string, error) {
	var out []string
	for buf, err := range seq {
		if err != nil {
			return out, err
		}
		out = append(out, buf.String())
		buf.Release()
	}
	return out, nil
}

type EncoderSuite struct {
	suite.Suite

	encoder *Encoder
	factory buffer.Factory
}

func (s *EncoderSuite) SetupTest() {
	reg := serializer.NewRegistry()
	serializer.RegisterType[record](reg, serializer.JSONSerializer{})

	enc, err := NewJSONEncoder(reg)
	s.Require().NoError(err)
	s.encoder = enc
	s.factory = buffer.NewPooledFactory()
}

func (s *EncoderSuite) TestEncodeSingle() {
	seq := s.encoder.Encode(context.Background(), One(record{X: 1}),
		s.factory, typeutil.TypeOf[record](), &MimeTypeJSON, nil)

	out, err := drainEncode(seq)
	s.NoError(err)
	s.Equal([]string{`{"x":1}`}, out)
}

func (s *EncoderSuite) TestEncodeStreaming() {
	seq := s.encoder.Encode(context.Background(),
		FromSlice([]record{{X: 1}, {X: 2}}),
		s.factory, typeutil.TypeOf[record](), &MimeTypeNDJSON, nil)

	out, err := drainEncode(seq)
	s.NoError(err)
	s.Equal([]string{"{\"x\":1}\n", "{\"x\":2}\n"}, out)
}

func (s *EncoderSuite) TestEncodeCollected() {
	seq := s.encoder.Encode(context.Background(),
		FromSlice([]record{{X: 1}, {X: 2}}),
		s.factory, typeutil.TypeOf[record](), &MimeTypeJSON, nil)

	out, err := drainEncode(seq)
	s.NoError(err)
	s.Equal([]string{`[{"x":1},{"x":2}]`}, out)
}

func (s *EncoderSuite) TestSingleVersusOneElementStream() {
	// 单值与“恰好一个元素的多值流”输出不同：前者为对象本身，
	// 后者在非流式 mime type 下为长度 1 的序列。
	single, err := drainEncode(s.encoder.Encode(context.Background(),
		One(record{X: 7}), s.factory, typeutil.TypeOf[record](), &MimeTypeJSON, nil))
	s.NoError(err)
	s.Equal([]string{`{"x":7}`}, single)

	multi, err := drainEncode(s.encoder.Encode(context.Background(),
		FromSlice([]record{{X: 7}}), s.factory, typeutil.TypeOf[record](), &MimeTypeJSON, nil))
	s.NoError(err)
	s.Equal([]string{`[{"x":7}]`}, multi)
}

func (s *EncoderSuite) TestEncodeEmpty() {
	collected, err := drainEncode(s.encoder.Encode(context.Background(),
		FromSlice([]record{}), s.factory, typeutil.TypeOf[record](), &MimeTypeJSON, nil))
	s.NoError(err)
	s.Equal([]string{`[]`}, collected)

	streaming, err := drainEncode(s.encoder.Encode(context.Background(),
		FromSlice([]record{}), s.factory, typeutil.TypeOf[record](), &MimeTypeNDJSON, nil))
	s.NoError(err)
	s.Empty(streaming)
}

func (s *EncoderSuite) TestEncodeNilMimeType() {
	// 未指定 mime type 时按非流式处理。
	out, err := drainEncode(s.encoder.Encode(context.Background(),
		FromSlice([]record{{X: 1}, {X: 2}}), s.factory, typeutil.TypeOf[record](), nil, nil))
	s.NoError(err)
	s.Equal([]string{`[{"x":1},{"x":2}]`}, out)
}

func (s *EncoderSuite) TestEncodeUpstreamError() {
	upstream := errors.New("source failed")
	src := Many(func(yield func(any, error) bool) {
		if !yield(record{X: 1}, nil) {
			return
		}
		yield(nil, upstream)
	})

	out, err := drainEncode(s.encoder.Encode(context.Background(), src,
		s.factory, typeutil.TypeOf[record](), &MimeTypeNDJSON, nil))
	s.ErrorIs(err, upstream)
	s.Equal([]string{"{\"x\":1}\n"}, out)
}

func (s *EncoderSuite) TestEncodeContextCanceled() {
	ctx, cancel := context.WithCancel(context.Background())

	src := Many(func(yield func(any, error) bool) {
		if !yield(record{X: 1}, nil) {
			return
		}
		cancel()
		yield(record{X: 2}, nil)
	})

	_, err := drainEncode(s.encoder.Encode(ctx, src,
		s.factory, typeutil.TypeOf[record](), &MimeTypeNDJSON, nil))
	s.ErrorIs(err, context.Canceled)
}

func (s *EncoderSuite) TestEncodeEarlyStop() {
	produced := 0
	src := Many(func(yield func(any, error) bool) {
		for i := 0; i < 100; i++ {
			produced++
			if !yield(record{X: i}, nil) {
				return
			}
		}
	})

	count := 0
	for buf, err := range s.encoder.Encode(context.Background(), src,
		s.factory, typeutil.TypeOf[record](), &MimeTypeNDJSON, nil) {
		s.NoError(err)
		buf.Release()
		count++
		if count == 3 {
			break
		}
	}
	s.Equal(3, count)
	// 消费方停止迭代后，上游不再被拉取。
	s.Equal(3, produced)
}

func (s *EncoderSuite) TestEncodeUnregisteredType() {
	_, err := drainEncode(s.encoder.Encode(context.Background(), One("plain"),
		s.factory, typeutil.TypeOf[string](), &MimeTypeJSON, nil))
	s.ErrorIs(err, merr.ErrSerializerNotFound)
}

func (s *EncoderSuite) TestEncodeValue() {
	buf, err := s.encoder.EncodeValue(record{X: 3}, s.factory,
		typeutil.TypeOf[record](), &MimeTypeJSON, nil)
	s.NoError(err)
	s.Equal(`{"x":3}`, buf.String())
	buf.Release()
}

func (s *EncoderSuite) TestCustomSeparator() {
	reg := serializer.NewRegistry()
	serializer.RegisterType[record](reg, serializer.JSONSerializer{})

	enc, err := NewEncoder(Options{
		Format:             JSONFormat(),
		Registry:           reg,
		SupportedMimeTypes: []mimetype.MediaType{MimeTypeNDJSON},
		StreamingMimeTypes: []StreamingMimeType{
			{MediaType: MimeTypeNDJSON, Separator: []byte("\x1e")},
		},
	})
	s.Require().NoError(err)

	out, err := drainEncode(enc.Encode(context.Background(),
		FromSlice([]record{{X: 1}}), s.factory, typeutil.TypeOf[record](), &MimeTypeNDJSON, nil))
	s.NoError(err)
	s.Equal([]string{"{\"x\":1}\x1e"}, out)
}

func (s *EncoderSuite) TestCanEncode() {
	jsonSuffix := mimetype.MustParse("application/vnd.api+json")
	textPlain := mimetype.MustParse("text/plain")
	wildcard := mimetype.MustParse("*/*")

	s.True(s.encoder.CanEncode(typeutil.TypeOf[record](), &MimeTypeJSON))
	s.True(s.encoder.CanEncode(typeutil.TypeOf[record](), &jsonSuffix))
	s.True(s.encoder.CanEncode(typeutil.TypeOf[record](), &wildcard))
	s.True(s.encoder.CanEncode(typeutil.TypeOf[record](), nil))
	s.True(s.encoder.CanEncode(typeutil.TypeOf[[]record](), &MimeTypeJSON))

	s.False(s.encoder.CanEncode(typeutil.TypeOf[record](), &textPlain))
	s.False(s.encoder.CanEncode(typeutil.TypeOf[string](), &MimeTypeJSON))
}

func (s *EncoderSuite) TestEncodableMimeTypes() {
	types := s.encoder.EncodableMimeTypes()
	s.Len(types, 4)
	s.Equal(MimeTypeJSON, types[0])
}

func (s *EncoderSuite) TestMisconfigured() {
	reg := serializer.NewRegistry()

	_, err := NewEncoder(Options{})
	s.ErrorIs(err, merr.ErrCodecMisconfigured)

	_, err = NewEncoder(Options{Format: JSONFormat()})
	s.ErrorIs(err, merr.ErrCodecMisconfigured)

	_, err = NewEncoder(Options{Format: JSONFormat(), Registry: reg})
	s.ErrorIs(err, merr.ErrCodecMisconfigured)

	_, err = NewEncoder(Options{
		Format:             JSONFormat(),
		Registry:           reg,
		SupportedMimeTypes: []mimetype.MediaType{MimeTypeJSON},
		StreamingMimeTypes: []StreamingMimeType{
			{MediaType: mimetype.MustParse("application/*")},
		},
	})
	s.ErrorIs(err, merr.ErrCodecMisconfigured)
}

func (s *EncoderSuite) TestEncodeFromChannel() {
	ch := make(chan record, 2)
	ch <- record{X: 1}
	ch <- record{X: 2}
	close(ch)

	out, err := drainEncode(s.encoder.Encode(context.Background(), FromChannel(ch),
		s.factory, typeutil.TypeOf[record](), &MimeTypeNDJSON, nil))
	s.NoError(err)
	s.Equal([]string{"{\"x\":1}\n", "{\"x\":2}\n"}, out)
}

func (s *EncoderSuite) TestConcurrentEncode() {
	// 同一编码器实例被多个 goroutine 并发共享。
	eg := errgroup.Group{}
	for i := 0; i < 8; i++ {
		eg.Go(func() error {
			factory := buffer.NewPooledFactory()
			for j := 0; j < 50; j++ {
				out, err := drainEncode(s.encoder.Encode(context.Background(),
					FromSlice([]record{{X: j}, {X: j + 1}}),
					factory, typeutil.TypeOf[record](), &MimeTypeNDJSON, nil))
				if err != nil {
					return err
				}
				if len(out) != 2 {
					return errors.Newf("expected 2 buffers, got %d", len(out))
				}
			}
			return nil
		})
	}
	s.NoError(eg.Wait())
}

func TestEncoder(t *testing.T) {
	suite.Run(t, new(EncoderSuite))
}

type EncoderLoggingSuite struct {
	suite.Suite

	logs    *observer.ObservedLogs
	encoder *Encoder
	factory buffer.Factory
}

func (s *EncoderLoggingSuite) SetupTest() {
	core, logs := observer.New(zapcore.DebugLevel)
	log.ReplaceGlobals(zap.New(core), &log.ZapProperties{
		Core:   core,
		Syncer: zapcore.AddSync(io.Discard),
		Level:  zap.NewAtomicLevelAt(zapcore.DebugLevel),
	})
	s.logs = logs

	reg := serializer.NewRegistry()
	serializer.RegisterType[record](reg, serializer.JSONSerializer{})
	enc, err := NewJSONEncoder(reg)
	s.Require().NoError(err)
	s.encoder = enc
	s.factory = buffer.NewUnpooledFactory()
}

func (s *EncoderLoggingSuite) TestDebugLogEmitted() {
	_, err := drainEncode(s.encoder.Encode(context.Background(), One(record{X: 1}),
		s.factory, typeutil.TypeOf[record](), &MimeTypeJSON, nil))
	s.NoError(err)
	s.Equal(1, s.logs.FilterMessage("encoded value").Len())
}

func (s *EncoderLoggingSuite) TestSuppressLogging() {
	hints := Hints{HintSuppressLogging: true}
	_, err := drainEncode(s.encoder.Encode(context.Background(), One(record{X: 1}),
		s.factory, typeutil.TypeOf[record](), &MimeTypeJSON, hints))
	s.NoError(err)
	s.Equal(0, s.logs.FilterMessage("encoded value").Len())
}

func (s *EncoderLoggingSuite) TestLogPrefix() {
	hints := Hints{HintLogPrefix: "[request-1] "}
	_, err := drainEncode(s.encoder.Encode(context.Background(), One(record{X: 1}),
		s.factory, typeutil.TypeOf[record](), &MimeTypeJSON, hints))
	s.NoError(err)
	s.Equal(1, s.logs.FilterMessage("[request-1] encoded value").Len())
}

func TestEncoderLogging(t *testing.T) {
	suite.Run(t, new(EncoderLoggingSuite))
}
