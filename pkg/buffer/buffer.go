// Package buffer 定义了编解码输出使用的字节缓冲区抽象。
//
// 设计目标：
//   - 编码器只负责往缓冲区写入内容，不关心缓冲区的分配与回收策略；
//   - 宿主框架通过注入 Factory 决定缓冲区来源（池化或普通堆分配）。
package buffer

import (
	"github.com/valyala/bytebufferpool"
)

// Buffer 表示一段已编码的输出字节。
// 内容写入完成后由消费方读取，池化缓冲区在使用完毕后应调用 Release 归还。
type Buffer struct {
	bb   *bytebufferpool.ByteBuffer
	pool *bytebufferpool.Pool // 为 nil 表示非池化，Release 为空操作。
}

// Write 实现 io.Writer。
func (b *Buffer) Write(p []byte) (int, error) {
	return b.bb.Write(p)
}

// WriteString 将字符串追加到缓冲区。
func (b *Buffer) WriteString(s string) (int, error) {
	return b.bb.WriteString(s)
}

// WriteByte 将单个字节追加到缓冲区。
func (b *Buffer) WriteByte(c byte) error {
	return b.bb.WriteByte(c)
}

// Bytes 返回缓冲区中的内容。
//
// 返回的切片与内部存储共享内存；调用 Release 之后不得继续使用。
func (b *Buffer) Bytes() []byte {
	return b.bb.Bytes()
}

// Len 返回缓冲区中的字节数。
func (b *Buffer) Len() int {
	return b.bb.Len()
}

func (b *Buffer) String() string {
	return b.bb.String()
}

// Release 将缓冲区归还给所属的池。
// 非池化缓冲区调用 Release 为空操作；归还后缓冲区不得再被使用。
func (b *Buffer) Release() {
	if b.pool != nil {
		b.pool.Put(b.bb)
		b.bb = nil
	}
}

// Factory 抽象了缓冲区的分配方式。
type Factory interface {
	// Allocate 返回一个空缓冲区。
	Allocate() *Buffer

	// Wrap 返回一个包含给定内容拷贝的缓冲区。
	Wrap(p []byte) *Buffer
}

// pooledFactory 基于 bytebufferpool 实现缓冲区复用。
type pooledFactory struct {
	pool *bytebufferpool.Pool
}

var _ Factory = (*pooledFactory)(nil)

// NewPooledFactory 创建一个池化的缓冲区工厂。
// 由同一工厂分配的缓冲区在 Release 后会被后续 Allocate 复用。
func NewPooledFactory() Factory {
	return &pooledFactory{pool: &bytebufferpool.Pool{}}
}

func (f *pooledFactory) Allocate() *Buffer {
	return &Buffer{bb: f.pool.Get(), pool: f.pool}
}

func (f *pooledFactory) Wrap(p []byte) *Buffer {
	buf := f.Allocate()
	buf.bb.Set(p)
	return buf
}

// unpooledFactory 每次都分配新的缓冲区，适用于消费方长期持有缓冲区的场景。
type unpooledFactory struct{}

var _ Factory = unpooledFactory{}

// NewUnpooledFactory 创建一个非池化的缓冲区工厂。
func NewUnpooledFactory() Factory {
	return unpooledFactory{}
}

func (unpooledFactory) Allocate() *Buffer {
	return &Buffer{bb: &bytebufferpool.ByteBuffer{}}
}

func (unpooledFactory) Wrap(p []byte) *Buffer {
	buf := &Buffer{bb: &bytebufferpool.ByteBuffer{}}
	buf.bb.Set(p)
	return buf
}
