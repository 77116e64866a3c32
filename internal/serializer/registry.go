package serializer

import (
	"reflect"
	"sync"

	"github.com/lk2023060901/streamcodec-go/pkg/util/merr"
	"github.com/lk2023060901/streamcodec-go/pkg/util/typeutil"
)

// Registry 维护“类型 -> 序列化器”的显式注册表。
//
// 查找策略为一个封闭集合，按顺序尝试：
//  1. 精确类型；
//  2. 剥离指针后的元素类型；
//  3. 切片类型按其元素类型查找（对应“T 序列”的整体编码）。
//
// 所有注册应在启动阶段完成；未注册的类型查找返回
// merr.ErrSerializerNotFound，调用方据此判断“无法处理该类型”。
type Registry struct {
	mu    sync.RWMutex
	types map[reflect.Type]Serializer
}

// NewRegistry 创建一个空的注册表。
func NewRegistry() *Registry {
	return &Registry{
		types: make(map[reflect.Type]Serializer),
	}
}

// Register 将序列化器绑定到指定类型。
// 重复注册同一类型时，后注册的覆盖先注册的。
func (r *Registry) Register(t reflect.Type, s Serializer) {
	if t == nil || s == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.types[typeutil.IndirectType(t)] = s
}

// RegisterType 按类型参数注册序列化器。
func RegisterType[T any](r *Registry, s Serializer) {
	r.Register(typeutil.TypeOf[T](), s)
}

// Resolve 返回给定类型对应的序列化器。
// 未注册时返回 merr.ErrSerializerNotFound。
func (r *Registry) Resolve(t reflect.Type) (Serializer, error) {
	if t == nil {
		return nil, merr.WrapErrSerializerNotFound(typeutil.TypeName(t))
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	// 精确类型与指针剥离。
	if s, ok := r.types[typeutil.IndirectType(t)]; ok {
		return s, nil
	}

	// 切片按元素类型查找。
	if t.Kind() == reflect.Slice {
		if s, ok := r.types[typeutil.IndirectType(t.Elem())]; ok {
			return s, nil
		}
	}

	return nil, merr.WrapErrSerializerNotFound(typeutil.TypeName(t))
}

// Contains 判断指定类型是否可以解析出序列化器。
func (r *Registry) Contains(t reflect.Type) bool {
	_, err := r.Resolve(t)
	return err == nil
}

// Types 返回当前已注册的所有类型，仅用于日志与调试。
func (r *Registry) Types() []reflect.Type {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ret := make([]reflect.Type, 0, len(r.types))
	for t := range r.types {
		ret = append(ret, t)
	}
	return ret
}
