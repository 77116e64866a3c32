// Licensed to the LF AI & Data foundation under one
// or more contributor license agreements. See the NOTICE file
// distributed with this work for additional information
// regarding copyright ownership. The ASF licenses this file
// to you under the Apache License, Version 2.0 (the
// "License"); you may not use this file except in compliance
// with the License. You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package merr

import (
	"context"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/suite"
)

type ErrSuite struct {
	suite.Suite
}

func (s *ErrSuite) TestCode() {
	err := WrapErrSerializerNotFound("main.Foo")
	errors.Wrap(err, "failed to resolve serializer")
	s.ErrorIs(err, ErrSerializerNotFound)
	s.Equal(Code(ErrSerializerNotFound), Code(err))
	s.Equal(TimeoutCode, Code(context.DeadlineExceeded))
	s.Equal(CanceledCode, Code(context.Canceled))
	s.Equal(errUnexpected.errCode, Code(errUnexpected))
	s.Equal(int32(0), Code(nil))

	sameCodeErr := newCodecError("new error", ErrSerializerNotFound.errCode, false)
	s.True(sameCodeErr.Is(ErrSerializerNotFound))
}

func (s *ErrSuite) TestWrap() {
	// MimeType 相关错误。
	s.ErrorIs(WrapErrMimeTypeInvalid("not/a/mime", "parse"), ErrMimeTypeInvalid)
	s.ErrorIs(WrapErrMimeTypeUnsupported("text/css"), ErrMimeTypeUnsupported)

	// Serializer 相关错误。
	s.ErrorIs(WrapErrSerializerNotFound("main.Foo", "canEncode"), ErrSerializerNotFound)
	s.ErrorIs(WrapErrSerializerTypeMismatch("proto.Message", 42), ErrSerializerTypeMismatch)

	// Codec 相关错误。
	s.ErrorIs(WrapErrCodecMisconfigured("registry is nil"), ErrCodecMisconfigured)
	s.ErrorIs(WrapErrStreamMalformed("trailing garbage"), ErrStreamMalformed)
}

func (s *ErrSuite) TestErrorType() {
	s.Equal(InputError, GetErrorType(WrapErrMimeTypeInvalid("bad")))
	s.Equal(SystemError, GetErrorType(WrapErrSerializerNotFound("main.Foo")))
	s.Equal(SystemError, GetErrorType(errors.New("other")))
	s.Equal("input_error", InputError.String())
}

func (s *ErrSuite) TestCombine() {
	var (
		errFirst  = errors.New("first")
		errSecond = errors.New("second")
		errThird  = errors.New("third")
	)

	err := Combine(errFirst, errSecond)
	s.True(errors.Is(err, errFirst))
	s.True(errors.Is(err, errSecond))
	s.False(errors.Is(err, errThird))

	s.Equal("second: first", err.Error())
}

func (s *ErrSuite) TestCombineWithNil() {
	err := errors.New("non-nil")

	s.Error(Combine(nil, err))
	s.Error(Combine(err, nil))
	s.NoError(Combine(nil, nil))
}

func (s *ErrSuite) TestCombineOnlyNil() {
	s.NoError(Combine(nil, nil))
}

func (s *ErrSuite) TestDetail() {
	err := newCodecError("msg", 1, false, WithDetail("detail"))
	s.Equal("msg", err.Error())
	s.Equal("detail", err.Detail())
}

func TestErrors(t *testing.T) {
	suite.Run(t, new(ErrSuite))
}
