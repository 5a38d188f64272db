package vulkan

import (
	"sync/atomic"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/shaderbind/engine/core"
	"github.com/spaghettifunk/shaderbind/engine/renderer/metadata"
)

type VulkanBufferConfig struct {
	Handle    vk.Buffer
	Name      string
	Size      uint64
	BindFlags metadata.BindFlags
	/** @brief The access flags the buffer is in when created. */
	InitialAccess vk.AccessFlags
}

/**
 * @brief A buffer together with the access state the hardware last saw it in.
 *
 * The access state is shared by every cache and context referencing the
 * buffer and is only changed through compare-and-swap.
 */
type VulkanBuffer struct {
	refCounter

	Handle    vk.Buffer
	Name      string
	Size      uint64
	BindFlags metadata.BindFlags

	accessFlags    atomic.Uint32
	dynamicOffsets [VULKAN_MAX_DEVICE_CONTEXTS]atomic.Uint32
}

func NewVulkanBuffer(config VulkanBufferConfig) *VulkanBuffer {
	b := &VulkanBuffer{
		Handle:    config.Handle,
		Name:      core.ObjectNameOrDefault(config.Name, "buffer"),
		Size:      config.Size,
		BindFlags: config.BindFlags,
	}
	b.accessFlags.Store(uint32(config.InitialAccess))
	return b
}

func (b *VulkanBuffer) ObjectName() string {
	return b.Name
}

func (b *VulkanBuffer) AccessFlags() vk.AccessFlags {
	return vk.AccessFlags(b.accessFlags.Load())
}

// SetAccessFlags overwrites the tracked state, e.g. after an explicit barrier
// recorded outside of this package.
func (b *VulkanBuffer) SetAccessFlags(flags vk.AccessFlags) {
	b.accessFlags.Store(uint32(flags))
}

/** @brief Reports whether every bit of required is already granted. */
func (b *VulkanBuffer) CheckAccessFlags(required vk.AccessFlags) bool {
	return b.AccessFlags()&required == required
}

/**
 * @brief Moves the buffer to required unless it already satisfies it.
 * @return The previous flags and true when this call performed the
 * transition. Exactly one of several racing callers wins.
 */
func (b *VulkanBuffer) transitionAccessFlags(required vk.AccessFlags) (vk.AccessFlags, bool) {
	for {
		current := b.accessFlags.Load()
		if vk.AccessFlags(current)&required == required {
			return vk.AccessFlags(current), false
		}
		if b.accessFlags.CompareAndSwap(current, uint32(required)) {
			return vk.AccessFlags(current), true
		}
	}
}

/** @brief The per-draw offset the given context uses for this buffer. */
func (b *VulkanBuffer) DynamicOffset(ctxID uint32) uint32 {
	core.Verify(ctxID < VULKAN_MAX_DEVICE_CONTEXTS, "context id %d out of range", ctxID)
	return b.dynamicOffsets[ctxID].Load()
}

func (b *VulkanBuffer) SetDynamicOffset(ctxID, offset uint32) {
	core.Verify(ctxID < VULKAN_MAX_DEVICE_CONTEXTS, "context id %d out of range", ctxID)
	b.dynamicOffsets[ctxID].Store(offset)
}

type VulkanBufferViewConfig struct {
	Handle   vk.BufferView
	Name     string
	ViewType metadata.BufferViewType
	Buffer   *VulkanBuffer
}

/** @brief A typed view over a buffer. Access state lives on the buffer. */
type VulkanBufferView struct {
	refCounter

	Handle   vk.BufferView
	Name     string
	ViewType metadata.BufferViewType
	Buffer   *VulkanBuffer
}

func NewVulkanBufferView(config VulkanBufferViewConfig) *VulkanBufferView {
	core.Verify(config.Buffer != nil, "buffer view %q has no buffer", config.Name)
	return &VulkanBufferView{
		Handle:   config.Handle,
		Name:     core.ObjectNameOrDefault(config.Name, "buffer-view"),
		ViewType: config.ViewType,
		Buffer:   config.Buffer,
	}
}

func (v *VulkanBufferView) ObjectName() string {
	return v.Name
}
