package vulkan

import (
	"github.com/spaghettifunk/shaderbind/engine/core"
	"github.com/spaghettifunk/shaderbind/engine/renderer/metadata"
)

/** @brief The number of slots that take a dynamic offset. */
func (c *ShaderResourceCache) DynamicOffsetCount() int {
	core.Verify(c.initialized, "%s", core.ErrCacheNotInitialized)
	count := 0
	for res := range c.resources {
		if c.resources[res].Type.HasDynamicOffset() {
			count++
		}
	}
	return count
}

/**
 * @brief Gathers the dynamic offsets for the bind call issued by context ctxID.
 *
 * Offsets are ordered set by set: the uniform buffers of a set first, then its
 * storage buffers, which is the order the slots already have in the cache.
 */
func (c *ShaderResourceCache) CollectDynamicOffsets(ctxID uint32) []uint32 {
	return c.AppendDynamicOffsets(make([]uint32, 0, c.DynamicOffsetCount()), ctxID)
}

/** @brief Like CollectDynamicOffsets, but appends to dst. */
func (c *ShaderResourceCache) AppendDynamicOffsets(dst []uint32, ctxID uint32) []uint32 {
	core.Verify(c.initialized, "%s", core.ErrCacheNotInitialized)
	for set := uint32(0); set < c.numSets; set++ {
		resources := c.setResources(set)
		res := 0
		for ; res < len(resources) && resources[res].Type == metadata.ShaderResourceTypeUniformBuffer; res++ {
			r := &resources[res]
			offset := uint32(0)
			if buf, ok := r.Object.(*VulkanBuffer); ok && buf != nil {
				offset = buf.DynamicOffset(ctxID)
			} else {
				core.LogError("no uniform buffer is bound to dynamic slot %d in set %d", res, set)
			}
			dst = append(dst, offset)
		}
		for ; res < len(resources) && resources[res].Type == metadata.ShaderResourceTypeStorageBuffer; res++ {
			r := &resources[res]
			offset := uint32(0)
			if view, ok := r.Object.(*VulkanBufferView); ok && view != nil {
				offset = view.Buffer.DynamicOffset(ctxID)
			} else {
				core.LogError("no storage buffer is bound to dynamic slot %d in set %d", res, set)
			}
			dst = append(dst, offset)
		}
		if core.DebugChecksEnabled {
			for ; res < len(resources); res++ {
				t := resources[res].Type
				core.Verify(!t.HasDynamicOffset(),
					"%s found at slot %d of set %d after the dynamic buffer runs; slots are not in canonical order", t, res, set)
			}
		}
	}
	return dst
}
