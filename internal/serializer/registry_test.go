package serializer

import (
	"testing"

	"github.com/stretchr/testify/suite"
	"golang.org/x/sync/errgroup"

	"github.com/lk2023060901/streamcodec-go/pkg/util/merr"
	"github.com/lk2023060901/streamcodec-go/pkg/util/typeutil"
)

type event struct {
	Seq  int    `json:"seq" msgpack:"seq"`
	Body string `json:"body" msgpack:"body"`
}

type RegistrySuite struct {
	suite.Suite

	registry *Registry
}

func (s *RegistrySuite) SetupTest() {
	s.registry = NewRegistry()
	RegisterType[event](s.registry, JSONSerializer{})
}

func (s *RegistrySuite) TestResolveExact() {
	ser, err := s.registry.Resolve(typeutil.TypeOf[event]())
	s.NoError(err)
	s.IsType(JSONSerializer{}, ser)
}

func (s *RegistrySuite) TestResolveIndirect() {
	// 注册与查找均可使用指针类型，按剥离指针后的类型命中。
	ser, err := s.registry.Resolve(typeutil.TypeOf[*event]())
	s.NoError(err)
	s.IsType(JSONSerializer{}, ser)

	s.registry.Register(typeutil.TypeOf[*event](), MsgpackSerializer{})
	ser, err = s.registry.Resolve(typeutil.TypeOf[event]())
	s.NoError(err)
	s.IsType(MsgpackSerializer{}, ser)
}

func (s *RegistrySuite) TestResolveSlice() {
	ser, err := s.registry.Resolve(typeutil.TypeOf[[]event]())
	s.NoError(err)
	s.IsType(JSONSerializer{}, ser)

	ser, err = s.registry.Resolve(typeutil.TypeOf[[]*event]())
	s.NoError(err)
	s.IsType(JSONSerializer{}, ser)
}

func (s *RegistrySuite) TestResolveNotFound() {
	_, err := s.registry.Resolve(typeutil.TypeOf[int]())
	s.ErrorIs(err, merr.ErrSerializerNotFound)

	_, err = s.registry.Resolve(nil)
	s.ErrorIs(err, merr.ErrSerializerNotFound)
}

func (s *RegistrySuite) TestContains() {
	s.True(s.registry.Contains(typeutil.TypeOf[event]()))
	s.True(s.registry.Contains(typeutil.TypeOf[[]event]()))
	s.False(s.registry.Contains(typeutil.TypeOf[string]()))
}

func (s *RegistrySuite) TestTypes() {
	RegisterType[string](s.registry, JSONSerializer{})
	s.Len(s.registry.Types(), 2)
}

func (s *RegistrySuite) TestConcurrentAccess() {
	eg := errgroup.Group{}
	for i := 0; i < 8; i++ {
		eg.Go(func() error {
			for j := 0; j < 100; j++ {
				s.registry.Register(typeutil.TypeOf[event](), JSONSerializer{})
				if _, err := s.registry.Resolve(typeutil.TypeOf[event]()); err != nil {
					return err
				}
			}
			return nil
		})
	}
	s.NoError(eg.Wait())
}

func TestRegistry(t *testing.T) {
	suite.Run(t, new(RegistrySuite))
}

type SerializerSuite struct {
	suite.Suite
}

func (s *SerializerSuite) TestJSONRoundTrip() {
	in := event{Seq: 1, Body: "hello"}

	str, err := JSONSerializer{}.MarshalToString(in)
	s.NoError(err)
	s.Equal(`{"seq":1,"body":"hello"}`, str)

	var out event
	s.NoError(JSONSerializer{}.UnmarshalFromString(str, &out))
	s.Equal(in, out)
}

func (s *SerializerSuite) TestMsgpackRoundTrip() {
	in := event{Seq: 2, Body: "world"}

	data, err := MsgpackSerializer{}.Marshal(in)
	s.NoError(err)

	var out event
	s.NoError(MsgpackSerializer{}.Unmarshal(data, &out))
	s.Equal(in, out)
}

func (s *SerializerSuite) TestProtoRejectsNonMessage() {
	_, err := ProtoSerializer{}.Marshal(event{})
	s.ErrorIs(err, merr.ErrSerializerTypeMismatch)

	err = ProtoSerializer{}.Unmarshal(nil, &event{})
	s.ErrorIs(err, merr.ErrSerializerTypeMismatch)
}

func TestSerializer(t *testing.T) {
	suite.Run(t, new(SerializerSuite))
}
