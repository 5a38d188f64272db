package vulkan

import (
	"fmt"

	"github.com/spaghettifunk/shaderbind/engine/core"
)

/**
 * @brief Holds the resources bound to one pipeline layout. Each binding owns
 * exactly one cache, built once from the layout.
 */
type ShaderResourceBinding struct {
	Name string

	layout *ShaderResourceLayout
	cache  *ShaderResourceCache
}

func NewShaderResourceBinding(layout *ShaderResourceLayout, allocator core.MemoryAllocator) (*ShaderResourceBinding, error) {
	if allocator == nil {
		allocator = core.DefaultAllocator()
	}
	srb := &ShaderResourceBinding{
		Name:   core.NewObjectName("srb"),
		layout: layout,
		cache:  NewShaderResourceCache(),
	}
	if err := layout.InitializeCache(srb.cache, allocator); err != nil {
		return nil, fmt.Errorf("failed to initialize resource cache for %s: %w", srb.Name, err)
	}
	return srb, nil
}

/**
 * @brief Binds obj to element arrayIndex of the named resource. A nil object
 * clears the slot.
 */
func (s *ShaderResourceBinding) SetResource(name string, arrayIndex uint32, obj DeviceObject) error {
	if !s.cache.IsInitialized() {
		return core.ErrCacheNotInitialized
	}
	attr, ok := s.layout.Resource(name)
	if !ok {
		return fmt.Errorf("%w: '%s'", core.ErrUnknownResource, name)
	}
	if arrayIndex >= attr.ArraySize {
		return fmt.Errorf("%w: '%s'[%d], array size is %d", core.ErrArrayIndexOutOfRange, name, arrayIndex, attr.ArraySize)
	}
	if !objectMatchesType(obj, attr.Type) {
		return fmt.Errorf("%w: %T cannot be bound to %s '%s'", core.ErrResourceKindMismatch, obj, attr.Type, name)
	}
	s.cache.BindResource(attr.Set, attr.CacheOffset+arrayIndex, obj)
	return nil
}

func (s *ShaderResourceBinding) Cache() *ShaderResourceCache {
	return s.cache
}

func (s *ShaderResourceBinding) Layout() *ShaderResourceLayout {
	return s.layout
}

/** @brief Releases every bound object and the cache memory. */
func (s *ShaderResourceBinding) Release() {
	s.cache.Destroy()
}
