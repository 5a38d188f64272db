package vulkan

import (
	"fmt"
	"strings"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/shaderbind/engine/renderer/metadata"
)

// Every switch over metadata.ShaderResourceType in this package is written
// for nine kinds. This line stops compiling when a kind is added or removed.
var _ = [1]struct{}{}[metadata.ShaderResourceTypeCount-9]

var accessFlagNames = []struct {
	bit  vk.AccessFlagBits
	name string
}{
	{vk.AccessIndirectCommandReadBit, "VK_ACCESS_INDIRECT_COMMAND_READ_BIT"},
	{vk.AccessIndexReadBit, "VK_ACCESS_INDEX_READ_BIT"},
	{vk.AccessVertexAttributeReadBit, "VK_ACCESS_VERTEX_ATTRIBUTE_READ_BIT"},
	{vk.AccessUniformReadBit, "VK_ACCESS_UNIFORM_READ_BIT"},
	{vk.AccessInputAttachmentReadBit, "VK_ACCESS_INPUT_ATTACHMENT_READ_BIT"},
	{vk.AccessShaderReadBit, "VK_ACCESS_SHADER_READ_BIT"},
	{vk.AccessShaderWriteBit, "VK_ACCESS_SHADER_WRITE_BIT"},
	{vk.AccessColorAttachmentReadBit, "VK_ACCESS_COLOR_ATTACHMENT_READ_BIT"},
	{vk.AccessColorAttachmentWriteBit, "VK_ACCESS_COLOR_ATTACHMENT_WRITE_BIT"},
	{vk.AccessDepthStencilAttachmentReadBit, "VK_ACCESS_DEPTH_STENCIL_ATTACHMENT_READ_BIT"},
	{vk.AccessDepthStencilAttachmentWriteBit, "VK_ACCESS_DEPTH_STENCIL_ATTACHMENT_WRITE_BIT"},
	{vk.AccessTransferReadBit, "VK_ACCESS_TRANSFER_READ_BIT"},
	{vk.AccessTransferWriteBit, "VK_ACCESS_TRANSFER_WRITE_BIT"},
	{vk.AccessHostReadBit, "VK_ACCESS_HOST_READ_BIT"},
	{vk.AccessHostWriteBit, "VK_ACCESS_HOST_WRITE_BIT"},
	{vk.AccessMemoryReadBit, "VK_ACCESS_MEMORY_READ_BIT"},
	{vk.AccessMemoryWriteBit, "VK_ACCESS_MEMORY_WRITE_BIT"},
}

func AccessFlagsToString(flags vk.AccessFlags) string {
	if flags == 0 {
		return "0"
	}
	var names []string
	remaining := flags
	for _, f := range accessFlagNames {
		if flags&vk.AccessFlags(f.bit) != 0 {
			names = append(names, f.name)
			remaining &^= vk.AccessFlags(f.bit)
		}
	}
	if remaining != 0 {
		names = append(names, fmt.Sprintf("0x%x", uint32(remaining)))
	}
	return strings.Join(names, "|")
}

func ImageLayoutToString(layout vk.ImageLayout) string {
	switch layout {
	case vk.ImageLayoutUndefined:
		return "VK_IMAGE_LAYOUT_UNDEFINED"
	case vk.ImageLayoutGeneral:
		return "VK_IMAGE_LAYOUT_GENERAL"
	case vk.ImageLayoutColorAttachmentOptimal:
		return "VK_IMAGE_LAYOUT_COLOR_ATTACHMENT_OPTIMAL"
	case vk.ImageLayoutDepthStencilAttachmentOptimal:
		return "VK_IMAGE_LAYOUT_DEPTH_STENCIL_ATTACHMENT_OPTIMAL"
	case vk.ImageLayoutDepthStencilReadOnlyOptimal:
		return "VK_IMAGE_LAYOUT_DEPTH_STENCIL_READ_ONLY_OPTIMAL"
	case vk.ImageLayoutShaderReadOnlyOptimal:
		return "VK_IMAGE_LAYOUT_SHADER_READ_ONLY_OPTIMAL"
	case vk.ImageLayoutTransferSrcOptimal:
		return "VK_IMAGE_LAYOUT_TRANSFER_SRC_OPTIMAL"
	case vk.ImageLayoutTransferDstOptimal:
		return "VK_IMAGE_LAYOUT_TRANSFER_DST_OPTIMAL"
	case vk.ImageLayoutPreinitialized:
		return "VK_IMAGE_LAYOUT_PREINITIALIZED"
	case vk.ImageLayoutPresentSrc:
		return "VK_IMAGE_LAYOUT_PRESENT_SRC_KHR"
	}
	return fmt.Sprintf("VkImageLayout(%d)", int32(layout))
}

/**
 * @brief Reports whether obj is the kind of object a slot of type t holds.
 * A nil object matches every type.
 */
func objectMatchesType(obj DeviceObject, t metadata.ShaderResourceType) bool {
	if obj == nil {
		return true
	}
	// A typed nil pointer is neither unbound nor a usable object.
	switch t {
	case metadata.ShaderResourceTypeUniformBuffer:
		buf, ok := obj.(*VulkanBuffer)
		return ok && buf != nil
	case metadata.ShaderResourceTypeStorageBuffer,
		metadata.ShaderResourceTypeUniformTexelBuffer,
		metadata.ShaderResourceTypeStorageTexelBuffer,
		metadata.ShaderResourceTypeAtomicCounter:
		view, ok := obj.(*VulkanBufferView)
		return ok && view != nil
	case metadata.ShaderResourceTypeSampledImage,
		metadata.ShaderResourceTypeStorageImage,
		metadata.ShaderResourceTypeSeparateImage:
		view, ok := obj.(*VulkanTextureView)
		return ok && view != nil
	case metadata.ShaderResourceTypeSeparateSampler:
		smp, ok := obj.(*VulkanSampler)
		return ok && smp != nil
	}
	return false
}

func shaderStageFlags(stages metadata.ShaderStage) vk.ShaderStageFlags {
	var flags vk.ShaderStageFlags
	if stages&metadata.ShaderStageVertex != 0 {
		flags |= vk.ShaderStageFlags(vk.ShaderStageVertexBit)
	}
	if stages&metadata.ShaderStageGeometry != 0 {
		flags |= vk.ShaderStageFlags(vk.ShaderStageGeometryBit)
	}
	if stages&metadata.ShaderStageFragment != 0 {
		flags |= vk.ShaderStageFlags(vk.ShaderStageFragmentBit)
	}
	if stages&metadata.ShaderStageCompute != 0 {
		flags |= vk.ShaderStageFlags(vk.ShaderStageComputeBit)
	}
	return flags
}
