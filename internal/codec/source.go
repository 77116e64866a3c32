package codec

import (
	"iter"
)

// Source 描述编码输入的生产者形态。
//
// 单值与多值必须显式区分：一个恰好产出一个元素的多值流
// 在非流式 mime type 下编码为长度为 1 的序列，而单值输入
// 编码为对象本身，两者的输出字节不同。
type Source struct {
	single bool
	value  any
	values iter.Seq2[any, error]
}

// One 构造单值生产者。
func One(v any) Source {
	return Source{single: true, value: v}
}

// Many 构造多值生产者。
// 序列产出的 error 表示上游失败，编码流将以该错误终止。
func Many(seq iter.Seq2[any, error]) Source {
	return Source{values: seq}
}

// FromSlice 将切片适配为多值生产者。
func FromSlice[S ~[]E, E any](s S) Source {
	return Many(func(yield func(any, error) bool) {
		for _, v := range s {
			if !yield(v, nil) {
				return
			}
		}
	})
}

// FromChannel 将通道适配为多值生产者。
// 序列在通道关闭时结束；消费方提前终止时停止读取，不关闭通道。
func FromChannel[T any](ch <-chan T) Source {
	return Many(func(yield func(any, error) bool) {
		for v := range ch {
			if !yield(v, nil) {
				return
			}
		}
	})
}

// IsSingle 判断是否为单值生产者。
func (s Source) IsSingle() bool {
	return s.single
}
