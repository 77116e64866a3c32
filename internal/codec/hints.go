package codec

const (
	// HintSuppressLogging 为 true 时，本次编解码调用不输出任何调试日志。
	HintSuppressLogging = "streamcodec.codec.suppressLogging"

	// HintLogPrefix 为调试日志消息添加的前缀，用于区分同一请求内的多个编解码器。
	HintLogPrefix = "streamcodec.codec.logPrefix"
)

// Hints 携带单次编解码调用的附加参数。
// 当前只影响日志行为，不影响输出字节。
type Hints map[string]any

// LoggingSuppressed 判断是否设置了日志抑制提示。
func (h Hints) LoggingSuppressed() bool {
	v, ok := h[HintSuppressLogging].(bool)
	return ok && v
}

// LogPrefix 返回日志前缀提示，未设置时为空字符串。
func (h Hints) LogPrefix() string {
	v, _ := h[HintLogPrefix].(string)
	return v
}

// MergeHints 合并两组提示，后者覆盖前者的同名键。
func MergeHints(a, b Hints) Hints {
	if len(a) == 0 {
		return b
	}
	if len(b) == 0 {
		return a
	}
	merged := make(Hints, len(a)+len(b))
	for k, v := range a {
		merged[k] = v
	}
	for k, v := range b {
		merged[k] = v
	}
	return merged
}
