// Package json 为仓库内部统一的 JSON 编解码入口。
//
// 在支持的平台上使用 bytedance/sonic 以获得更好的性能，
// 其余平台回退到 json-iterator 的标准库兼容实现。
// 两种实现都保持与 encoding/json 一致的行为。
package json
