package serializer

// Serializer 抽象了“对象 <-> 字节流”的序列化能力。
//
// 设计目标：
//   - 既支持 JSON 等文本格式，也支持 Protobuf、MessagePack 等二进制格式。
//   - 调用方通过接口注入具体实现，便于后续扩展其它序列化方案。
type Serializer interface {
	// Marshal 将任意对象编码为字节序列。
	Marshal(v any) ([]byte, error)

	// Unmarshal 将字节序列解码到目标对象。
	//
	// v 通常为指针类型，用于接收解码结果。
	Unmarshal(data []byte, v any) error
}

// TextSerializer 在 Serializer 基础上增加文本形式的编解码。
//
// 文本格式（如 JSON）实现该接口后，编码链路可以走
// “对象 -> 字符串 -> UTF-8 字节”的路径；二进制格式只实现 Serializer。
type TextSerializer interface {
	Serializer

	// MarshalToString 将任意对象编码为字符串。
	MarshalToString(v any) (string, error)

	// UnmarshalFromString 将字符串解码到目标对象。
	UnmarshalFromString(data string, v any) error
}
