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
	"strings"

	"github.com/cockroachdb/errors"
)

// Code 返回给定错误对应的错误码。
func Code(err error) int32 {
	if err == nil {
		return 0
	}

	cause := errors.Cause(err)
	switch specificErr := cause.(type) {
	case codecError:
		return specificErr.code()

	default:
		if errors.Is(specificErr, context.Canceled) {
			return CanceledCode
		} else if errors.Is(specificErr, context.DeadlineExceeded) {
			return TimeoutCode
		} else {
			return errUnexpected.code()
		}
	}
}

func IsRetryableErr(err error) bool {
	if err, ok := err.(codecError); ok {
		return err.retriable
	}
	return false
}

func IsCanceledOrTimeout(err error) bool {
	return errors.IsAny(err, context.Canceled, context.DeadlineExceeded)
}

// GetErrorType 返回错误的分类（系统错误或输入错误）。
// 未知错误一律视为系统错误。
func GetErrorType(err error) ErrorType {
	cause := errors.Cause(err)
	if cause, ok := cause.(codecError); ok {
		return cause.errType
	}
	return SystemError
}

// WrapErrAsInputError 将任意 codecError 标记为输入错误。
func WrapErrAsInputError(err error) error {
	cause := errors.Cause(err)
	if codecErr, ok := cause.(codecError); ok {
		WithErrorType(InputError)(&codecErr)
		return errors.Mark(err, codecErr)
	}
	return err
}

func wrapWithField(err error, msg ...string) error {
	if len(msg) > 0 {
		err = errors.Wrap(err, strings.Join(msg, "->"))
	}
	return err
}

// WrapErrMimeTypeInvalid 包装 mime type 解析失败错误。
func WrapErrMimeTypeInvalid(mimeType string, msg ...string) error {
	err := errors.Wrapf(ErrMimeTypeInvalid, "mimeType=%s", mimeType)
	return wrapWithField(err, msg...)
}

// WrapErrMimeTypeUnsupported 包装 mime type 不在支持列表中的错误。
func WrapErrMimeTypeUnsupported(mimeType string, msg ...string) error {
	err := errors.Wrapf(ErrMimeTypeUnsupported, "mimeType=%s", mimeType)
	return wrapWithField(err, msg...)
}

// WrapErrSerializerNotFound 包装指定类型没有注册序列化器的错误。
func WrapErrSerializerNotFound(typeName string, msg ...string) error {
	err := errors.Wrapf(ErrSerializerNotFound, "type=%s", typeName)
	return wrapWithField(err, msg...)
}

// WrapErrSerializerTypeMismatch 包装序列化器与传入值类型不匹配的错误。
func WrapErrSerializerTypeMismatch(expected string, got any, msg ...string) error {
	err := errors.Wrapf(ErrSerializerTypeMismatch, "expected=%s, got=%T", expected, got)
	return wrapWithField(err, msg...)
}

// WrapErrCodecMisconfigured 包装编解码器构造参数非法的错误。
func WrapErrCodecMisconfigured(reason string, msg ...string) error {
	err := errors.Wrapf(ErrCodecMisconfigured, "reason=%s", reason)
	return wrapWithField(err, msg...)
}

// WrapErrStreamMalformed 包装流式输入格式非法的错误。
func WrapErrStreamMalformed(reason string, msg ...string) error {
	err := errors.Wrapf(ErrStreamMalformed, "reason=%s", reason)
	return wrapWithField(err, msg...)
}
