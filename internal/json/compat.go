//go:build !((linux || windows || darwin) && amd64)

package json

import (
	jsoniter "github.com/json-iterator/go"
)

// std 使用与 encoding/json 完全兼容的配置。
var std = jsoniter.ConfigCompatibleWithStandardLibrary

// Marshal 将对象编码为 JSON 字节序列。
func Marshal(v any) ([]byte, error) {
	return std.Marshal(v)
}

// MarshalToString 将对象编码为 JSON 字符串。
func MarshalToString(v any) (string, error) {
	return std.MarshalToString(v)
}

// Unmarshal 将 JSON 字节序列解码到目标对象。
func Unmarshal(data []byte, v any) error {
	return std.Unmarshal(data, v)
}

// UnmarshalFromString 将 JSON 字符串解码到目标对象。
func UnmarshalFromString(data string, v any) error {
	return std.UnmarshalFromString(data, v)
}

// Valid 判断给定字节序列是否为合法 JSON。
func Valid(data []byte) bool {
	return std.Valid(data)
}
