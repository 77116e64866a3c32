package serializer

import (
	"github.com/lk2023060901/streamcodec-go/internal/json"
)

// JSONSerializer 使用 internal/json（基于 bytedance/sonic）实现 JSON 编解码。
type JSONSerializer struct{}

// 编译期断言：确保 JSONSerializer 实现了 TextSerializer 接口。
var _ TextSerializer = (*JSONSerializer)(nil)

func (JSONSerializer) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (JSONSerializer) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

func (JSONSerializer) MarshalToString(v any) (string, error) {
	return json.MarshalToString(v)
}

func (JSONSerializer) UnmarshalFromString(data string, v any) error {
	return json.UnmarshalFromString(data, v)
}
