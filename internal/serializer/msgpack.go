package serializer

import (
	"github.com/vmihailenco/msgpack/v5"
)

// MsgpackSerializer 使用 MessagePack 进行二进制序列化。
type MsgpackSerializer struct{}

// 编译期断言：确保 MsgpackSerializer 实现了 Serializer 接口。
var _ Serializer = (*MsgpackSerializer)(nil)

func (MsgpackSerializer) Marshal(v any) ([]byte, error) {
	return msgpack.Marshal(v)
}

func (MsgpackSerializer) Unmarshal(data []byte, v any) error {
	return msgpack.Unmarshal(data, v)
}
