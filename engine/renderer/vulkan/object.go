package vulkan

import (
	"sync/atomic"

	"github.com/spaghettifunk/shaderbind/engine/core"
)

/**
 * @brief Any object that can be bound to a shader resource slot:
 * *VulkanBuffer, *VulkanBufferView, *VulkanTextureView or *VulkanSampler.
 */
type DeviceObject interface {
	ObjectName() string
}

/**
 * @brief Shared ownership. Caches take a reference on every bound object
 * and release it when the slot is rebound or the cache is destroyed.
 */
type RefCounted interface {
	AddRef()
	Release()
	RefCount() int32
}

type refCounter struct {
	refs atomic.Int32
}

func (r *refCounter) AddRef() {
	r.refs.Add(1)
}

func (r *refCounter) Release() {
	n := r.refs.Add(-1)
	core.Verify(n >= 0, "object released more times than referenced")
}

func (r *refCounter) RefCount() int32 {
	return r.refs.Load()
}

func addRef(obj DeviceObject) {
	if rc, ok := obj.(RefCounted); ok {
		rc.AddRef()
	}
}

func release(obj DeviceObject) {
	if rc, ok := obj.(RefCounted); ok {
		rc.Release()
	}
}
