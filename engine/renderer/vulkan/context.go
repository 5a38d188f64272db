package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/shaderbind/engine/config"
	"github.com/spaghettifunk/shaderbind/engine/containers"
	"github.com/spaghettifunk/shaderbind/engine/core"
)

type CommitShaderResourcesFlags uint8

const (
	COMMIT_SHADER_RESOURCES_FLAG_NONE CommitShaderResourcesFlags = 0x00
	/** @brief Move every bound object into the state its slot requires. */
	COMMIT_SHADER_RESOURCES_FLAG_TRANSITION_RESOURCES CommitShaderResourcesFlags = 0x01
	/** @brief Check object states without changing them. Ignored when transitioning. */
	COMMIT_SHADER_RESOURCES_FLAG_VERIFY_STATES CommitShaderResourcesFlags = 0x02
)

/**
 * @brief Per-thread recording state. Receives the barriers requested by
 * transition passes and records them on its command buffer.
 */
type VulkanContext struct {
	// Index used to pick this context's dynamic offsets. Unique per live context.
	ID uint32
	// The command stream barriers are flushed to. May be nil until recording starts.
	CommandBuffer CommandRecorder

	pendingBuffers *containers.RingQueue[vk.BufferMemoryBarrier]
	pendingImages  *containers.RingQueue[vk.ImageMemoryBarrier]

	bufferScratch []vk.BufferMemoryBarrier
	imageScratch  []vk.ImageMemoryBarrier

	strictValidation bool
	validationErrors int
	transitions      core.RollingAverage
}

func NewVulkanContext(id uint32, cfg *config.Config) (*VulkanContext, error) {
	if id >= VULKAN_MAX_DEVICE_CONTEXTS {
		return nil, fmt.Errorf("context id %d out of range, at most %d contexts are supported", id, VULKAN_MAX_DEVICE_CONTEXTS)
	}
	if cfg == nil {
		cfg = config.Default()
	}
	capacity := max(cfg.Binding.PendingBarrierCapacity, 1)
	return &VulkanContext{
		ID:               id,
		pendingBuffers:   containers.NewRingQueue[vk.BufferMemoryBarrier](capacity),
		pendingImages:    containers.NewRingQueue[vk.ImageMemoryBarrier](capacity),
		strictValidation: cfg.Binding.StrictValidation,
	}, nil
}

/** @brief Picks up a reloaded configuration. */
func (vc *VulkanContext) ApplyConfig(cfg *config.Config) {
	vc.strictValidation = cfg.Binding.StrictValidation
}

func (vc *VulkanContext) RequestBufferBarrier(buffer *VulkanBuffer, oldAccess, requiredAccess vk.AccessFlags) {
	vc.pendingBuffers.Enqueue(vk.BufferMemoryBarrier{
		SType:               vk.StructureTypeBufferMemoryBarrier,
		SrcAccessMask:       oldAccess,
		DstAccessMask:       requiredAccess,
		SrcQueueFamilyIndex: vk.QueueFamilyIgnored,
		DstQueueFamilyIndex: vk.QueueFamilyIgnored,
		Buffer:              buffer.Handle,
		Offset:              0,
		Size:                vk.DeviceSize(vk.WholeSize),
	})
}

func (vc *VulkanContext) RequestImageLayoutTransition(image *VulkanImage, oldLayout, requiredLayout vk.ImageLayout) {
	vc.pendingImages.Enqueue(vk.ImageMemoryBarrier{
		SType:               vk.StructureTypeImageMemoryBarrier,
		SrcAccessMask:       layoutAccessMask(oldLayout),
		DstAccessMask:       layoutAccessMask(requiredLayout),
		OldLayout:           oldLayout,
		NewLayout:           requiredLayout,
		SrcQueueFamilyIndex: vk.QueueFamilyIgnored,
		DstQueueFamilyIndex: vk.QueueFamilyIgnored,
		Image:               image.Handle,
		SubresourceRange: vk.ImageSubresourceRange{
			AspectMask:     image.aspectMask(),
			BaseMipLevel:   0,
			LevelCount:     image.MipLevels,
			BaseArrayLayer: 0,
			LayerCount:     image.ArrayLayers,
		},
	})
}

// layoutAccessMask returns the accesses that touch an image in layout.
func layoutAccessMask(layout vk.ImageLayout) vk.AccessFlags {
	switch layout {
	case vk.ImageLayoutGeneral:
		return vk.AccessFlags(vk.AccessShaderReadBit | vk.AccessShaderWriteBit)
	case vk.ImageLayoutColorAttachmentOptimal:
		return vk.AccessFlags(vk.AccessColorAttachmentWriteBit)
	case vk.ImageLayoutDepthStencilAttachmentOptimal:
		return vk.AccessFlags(vk.AccessDepthStencilAttachmentWriteBit)
	case vk.ImageLayoutDepthStencilReadOnlyOptimal:
		return vk.AccessFlags(vk.AccessDepthStencilAttachmentReadBit | vk.AccessShaderReadBit)
	case vk.ImageLayoutShaderReadOnlyOptimal:
		return vk.AccessFlags(vk.AccessShaderReadBit)
	case vk.ImageLayoutTransferSrcOptimal:
		return vk.AccessFlags(vk.AccessTransferReadBit)
	case vk.ImageLayoutTransferDstOptimal:
		return vk.AccessFlags(vk.AccessTransferWriteBit)
	case vk.ImageLayoutPreinitialized:
		return vk.AccessFlags(vk.AccessHostWriteBit)
	}
	return 0
}

/** @brief Number of barriers requested but not yet recorded. */
func (vc *VulkanContext) PendingBarrierCount() int {
	return vc.pendingBuffers.Len() + vc.pendingImages.Len()
}

/** @brief Number of objects found in the wrong state by verify commits. */
func (vc *VulkanContext) ValidationErrorCount() int {
	return vc.validationErrors
}

/** @brief Mean number of transitions over the recent transitioning commits. */
func (vc *VulkanContext) AverageTransitionsPerCommit() float64 {
	return vc.transitions.Average()
}

/**
 * @brief Records every pending barrier in a single pipeline barrier. On
 * failure the barriers stay pending.
 */
func (vc *VulkanContext) FlushBarriers() error {
	if vc.PendingBarrierCount() == 0 {
		return nil
	}
	if vc.CommandBuffer == nil {
		return fmt.Errorf("%w: context %d has no command buffer", core.ErrCommandBufferNotRecording, vc.ID)
	}

	vc.bufferScratch = vc.pendingBuffers.Drain(vc.bufferScratch[:0])
	vc.imageScratch = vc.pendingImages.Drain(vc.imageScratch[:0])

	allCommands := vk.PipelineStageFlags(vk.PipelineStageAllCommandsBit)
	if err := vc.CommandBuffer.PipelineBarrier(allCommands, allCommands, vc.bufferScratch, vc.imageScratch); err != nil {
		for _, b := range vc.bufferScratch {
			vc.pendingBuffers.Enqueue(b)
		}
		for _, b := range vc.imageScratch {
			vc.pendingImages.Enqueue(b)
		}
		return err
	}
	core.LogDebug("context %d: recorded %d buffer and %d image barriers", vc.ID, len(vc.bufferScratch), len(vc.imageScratch))
	return nil
}

/**
 * @brief Prepares the resources of srb for the next draw or dispatch and
 * returns the dynamic offsets for the bind call.
 *
 * With TRANSITION_RESOURCES every bound object is moved into its required
 * state and the barriers are recorded if a command buffer is attached.
 * Without one the offsets are still returned, together with an error
 * wrapping core.ErrBarriersPending; the barriers stay queued until
 * FlushBarriers runs on a recording command buffer.
 * With VERIFY_STATES alone the states are only checked; mismatches are
 * counted and, in strict mode, returned as an error.
 */
func (vc *VulkanContext) CommitShaderResources(srb *ShaderResourceBinding, flags CommitShaderResourcesFlags) ([]uint32, error) {
	cache := srb.Cache()
	if !cache.IsInitialized() {
		return nil, core.ErrCacheNotInitialized
	}

	switch {
	case flags&COMMIT_SHADER_RESOURCES_FLAG_TRANSITION_RESOURCES != 0:
		result := cache.TransitionResources(ResourceTransitionApply, vc)
		vc.transitions.Add(float64(result.Transitions))
		if vc.CommandBuffer == nil {
			if n := vc.PendingBarrierCount(); n > 0 {
				return cache.CollectDynamicOffsets(vc.ID), fmt.Errorf("commit of %s: %d barriers: %w", srb.Name, n, core.ErrBarriersPending)
			}
			break
		}
		if err := vc.FlushBarriers(); err != nil {
			return nil, err
		}

	case flags&COMMIT_SHADER_RESOURCES_FLAG_VERIFY_STATES != 0:
		result := cache.TransitionResources(ResourceTransitionVerifyOnly, nil)
		vc.validationErrors += len(result.Mismatches)
		if err := result.Err(); err != nil && vc.strictValidation {
			return nil, fmt.Errorf("commit of %s: %w", srb.Name, err)
		}
	}

	return cache.CollectDynamicOffsets(vc.ID), nil
}
