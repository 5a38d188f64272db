package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/shaderbind/engine/core"
	"github.com/spaghettifunk/shaderbind/engine/renderer/metadata"
)

type ResourceTransitionMode int

const (
	/** @brief Move every bound object to the state its slot requires. */
	ResourceTransitionApply ResourceTransitionMode = iota
	/** @brief Only report objects that are not in the required state. */
	ResourceTransitionVerifyOnly
)

func (m ResourceTransitionMode) String() string {
	switch m {
	case ResourceTransitionApply:
		return "Apply"
	case ResourceTransitionVerifyOnly:
		return "VerifyOnly"
	}
	return fmt.Sprintf("ResourceTransitionMode(%d)", int(m))
}

/**
 * @brief Receives the barriers a transition pass decides to record.
 * Implemented by the recording context.
 */
type ResourceStateSink interface {
	RequestBufferBarrier(buffer *VulkanBuffer, oldAccess, requiredAccess vk.AccessFlags)
	RequestImageLayoutTransition(image *VulkanImage, oldLayout, requiredLayout vk.ImageLayout)
}

/** @brief An object found in the wrong state by a verify pass. */
type ResourceStateError struct {
	Kind     string
	Name     string
	Required string
	Actual   string
}

func (e *ResourceStateError) Error() string {
	return fmt.Sprintf("state of %s '%s' is incorrect. Required state: %s. Actual state: %s",
		e.Kind, e.Name, e.Required, e.Actual)
}

func (e *ResourceStateError) Unwrap() error {
	return core.ErrResourceStateMismatch
}

type TransitionResult struct {
	/** @brief Number of requests handed to the sink. */
	Transitions int
	/** @brief Objects found in the wrong state. Only filled in VerifyOnly mode. */
	Mismatches []*ResourceStateError
}

/** @brief The combined mismatch error, or nil when every object was in place. */
func (r TransitionResult) Err() error {
	if len(r.Mismatches) == 0 {
		return nil
	}
	if len(r.Mismatches) == 1 {
		return r.Mismatches[0]
	}
	return fmt.Errorf("%w: %d objects, first: %s", core.ErrResourceStateMismatch, len(r.Mismatches), r.Mismatches[0])
}

const (
	uniformBufferAccess = vk.AccessFlags(vk.AccessUniformReadBit)
	storageBufferAccess = vk.AccessFlags(vk.AccessShaderReadBit | vk.AccessShaderWriteBit)
	texelBufferAccess   = vk.AccessFlags(vk.AccessShaderReadBit)
)

// bufferRequirement is the combined access one Apply pass needs from a buffer.
type bufferRequirement struct {
	buffer   *VulkanBuffer
	required vk.AccessFlags
}

/**
 * @brief Walks every bound slot and brings the referenced object into the
 * state the slot requires. In VerifyOnly mode nothing is mutated and the sink
 * is never called. Unbound slots are skipped.
 *
 * A buffer reached through several slots is moved once, to the union of
 * what those slots require. An image bound with two different required
 * layouts ends the pass in the layout of its last slot.
 */
func (c *ShaderResourceCache) TransitionResources(mode ResourceTransitionMode, sink ResourceStateSink) TransitionResult {
	core.Verify(c.initialized, "%s", core.ErrCacheNotInitialized)
	core.Verify(mode == ResourceTransitionVerifyOnly || sink != nil, "apply transition without a state sink")

	var result TransitionResult
	var buffers []bufferRequirement
	for res := range c.resources {
		r := &c.resources[res]
		if r.Object == nil {
			continue
		}
		switch r.Type {
		case metadata.ShaderResourceTypeUniformBuffer:
			buf := r.Object.(*VulkanBuffer)
			buffers = requireBuffer(&result, mode, buffers, buf, uniformBufferAccess)

		case metadata.ShaderResourceTypeStorageBuffer,
			metadata.ShaderResourceTypeStorageTexelBuffer:
			view := r.Object.(*VulkanBufferView)
			buffers = requireBuffer(&result, mode, buffers, view.Buffer, storageBufferAccess)

		case metadata.ShaderResourceTypeUniformTexelBuffer:
			view := r.Object.(*VulkanBufferView)
			buffers = requireBuffer(&result, mode, buffers, view.Buffer, texelBufferAccess)

		case metadata.ShaderResourceTypeStorageImage:
			view := r.Object.(*VulkanTextureView)
			transitionImage(&result, mode, sink, view.Image, vk.ImageLayoutGeneral)

		case metadata.ShaderResourceTypeSampledImage,
			metadata.ShaderResourceTypeSeparateImage:
			view := r.Object.(*VulkanTextureView)
			transitionImage(&result, mode, sink, view.Image, view.Image.ShaderReadLayout())

		case metadata.ShaderResourceTypeAtomicCounter,
			metadata.ShaderResourceTypeSeparateSampler:
			// No state to track.

		default:
			core.Unexpected("unknown resource type %d", uint8(r.Type))
		}
	}

	for _, req := range buffers {
		if old, won := req.buffer.transitionAccessFlags(req.required); won {
			sink.RequestBufferBarrier(req.buffer, old, req.required)
			result.Transitions++
		}
	}
	return result
}

// requireBuffer checks buf right away in VerifyOnly mode. In Apply mode the
// requirement is merged into buffers and applied after the walk.
func requireBuffer(result *TransitionResult, mode ResourceTransitionMode, buffers []bufferRequirement, buf *VulkanBuffer, required vk.AccessFlags) []bufferRequirement {
	if mode == ResourceTransitionVerifyOnly {
		if actual := buf.AccessFlags(); actual&required != required {
			reportMismatch(result, &ResourceStateError{
				Kind:     "buffer",
				Name:     buf.Name,
				Required: AccessFlagsToString(required),
				Actual:   AccessFlagsToString(actual),
			})
		}
		return buffers
	}
	// Caches hold a handful of buffers, a linear scan beats a map here.
	for i := range buffers {
		if buffers[i].buffer == buf {
			buffers[i].required |= required
			return buffers
		}
	}
	return append(buffers, bufferRequirement{buffer: buf, required: required})
}

func transitionImage(result *TransitionResult, mode ResourceTransitionMode, sink ResourceStateSink, img *VulkanImage, required vk.ImageLayout) {
	if mode == ResourceTransitionVerifyOnly {
		if actual := img.Layout(); actual != required {
			reportMismatch(result, &ResourceStateError{
				Kind:     "texture",
				Name:     img.Name,
				Required: ImageLayoutToString(required),
				Actual:   ImageLayoutToString(actual),
			})
		}
		return
	}
	if old, won := img.transitionLayout(required); won {
		sink.RequestImageLayoutTransition(img, old, required)
		result.Transitions++
	}
}

func reportMismatch(result *TransitionResult, err *ResourceStateError) {
	core.LogError("%s", err)
	result.Mismatches = append(result.Mismatches, err)
}
