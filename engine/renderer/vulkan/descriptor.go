package vulkan

import (
	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/shaderbind/engine/core"
	"github.com/spaghettifunk/shaderbind/engine/renderer/metadata"
)

/**
 * @brief The descriptor type a slot is written with. Uniform and storage
 * buffers are always dynamic; their per-draw offsets are collected separately.
 */
func descriptorType(t metadata.ShaderResourceType) vk.DescriptorType {
	switch t {
	case metadata.ShaderResourceTypeUniformBuffer:
		return vk.DescriptorTypeUniformBufferDynamic
	case metadata.ShaderResourceTypeStorageBuffer:
		return vk.DescriptorTypeStorageBufferDynamic
	case metadata.ShaderResourceTypeUniformTexelBuffer:
		return vk.DescriptorTypeUniformTexelBuffer
	case metadata.ShaderResourceTypeStorageTexelBuffer:
		return vk.DescriptorTypeStorageTexelBuffer
	case metadata.ShaderResourceTypeSampledImage:
		return vk.DescriptorTypeCombinedImageSampler
	case metadata.ShaderResourceTypeStorageImage:
		return vk.DescriptorTypeStorageImage
	case metadata.ShaderResourceTypeSeparateImage:
		return vk.DescriptorTypeSampledImage
	case metadata.ShaderResourceTypeSeparateSampler:
		return vk.DescriptorTypeSampler
	case metadata.ShaderResourceTypeAtomicCounter:
		return vk.DescriptorTypeStorageBuffer
	}
	core.Unexpected("unknown resource type %d", uint8(t))
	return vk.DescriptorType(0x7FFFFFFF)
}

/** @brief Write info for a uniform buffer slot. The offset is always zero. */
func (r *ShaderResource) UniformBufferWriteInfo() vk.DescriptorBufferInfo {
	core.Verify(r.Type == metadata.ShaderResourceTypeUniformBuffer, "uniform buffer expected, got %s", r.Type)
	buf, _ := r.Object.(*VulkanBuffer)
	core.Verify(buf != nil, "no buffer bound to uniform buffer slot")
	return vk.DescriptorBufferInfo{
		Buffer: buf.Handle,
		Offset: 0,
		Range:  vk.DeviceSize(buf.Size),
	}
}

/** @brief Write info for a storage buffer or atomic counter slot. */
func (r *ShaderResource) StorageBufferWriteInfo() vk.DescriptorBufferInfo {
	core.Verify(r.Type == metadata.ShaderResourceTypeStorageBuffer || r.Type == metadata.ShaderResourceTypeAtomicCounter,
		"storage buffer expected, got %s", r.Type)
	view, _ := r.Object.(*VulkanBufferView)
	core.Verify(view != nil, "no buffer view bound to %s slot", r.Type)
	return vk.DescriptorBufferInfo{
		Buffer: view.Buffer.Handle,
		Offset: 0,
		Range:  vk.DeviceSize(view.Buffer.Size),
	}
}

func (r *ShaderResource) BufferViewWriteInfo() vk.BufferView {
	core.Verify(r.Type == metadata.ShaderResourceTypeUniformTexelBuffer || r.Type == metadata.ShaderResourceTypeStorageTexelBuffer,
		"texel buffer expected, got %s", r.Type)
	view, _ := r.Object.(*VulkanBufferView)
	core.Verify(view != nil, "no buffer view bound to %s slot", r.Type)
	return view.Handle
}

/**
 * @brief Write info for an image slot. The layout is the one the transition
 * pass moves the image to, so it is valid once Apply has run.
 * @param isImmutableSampler The sampler is baked into the set layout and
 * must not be written.
 */
func (r *ShaderResource) ImageWriteInfo(isImmutableSampler bool) vk.DescriptorImageInfo {
	core.Verify(r.Type == metadata.ShaderResourceTypeSampledImage ||
		r.Type == metadata.ShaderResourceTypeSeparateImage ||
		r.Type == metadata.ShaderResourceTypeStorageImage,
		"image expected, got %s", r.Type)
	view, _ := r.Object.(*VulkanTextureView)
	core.Verify(view != nil, "no texture view bound to %s slot", r.Type)

	info := vk.DescriptorImageInfo{
		ImageView: view.Handle,
	}
	if r.Type == metadata.ShaderResourceTypeSampledImage && !isImmutableSampler {
		if view.Sampler != nil {
			info.Sampler = view.Sampler.Handle
		} else {
			core.LogError("No sampler assigned to texture view '%s'", view.Name)
		}
	}
	if r.Type == metadata.ShaderResourceTypeStorageImage {
		info.ImageLayout = vk.ImageLayoutGeneral
	} else {
		info.ImageLayout = view.Image.ShaderReadLayout()
	}
	return info
}

func (r *ShaderResource) SamplerWriteInfo() vk.DescriptorImageInfo {
	core.Verify(r.Type == metadata.ShaderResourceTypeSeparateSampler, "separate sampler expected, got %s", r.Type)
	sampler, _ := r.Object.(*VulkanSampler)
	core.Verify(sampler != nil, "no sampler bound to separate sampler slot")
	return vk.DescriptorImageInfo{
		Sampler:     sampler.Handle,
		ImageView:   vk.NullImageView,
		ImageLayout: vk.ImageLayoutUndefined,
	}
}

/**
 * @brief Builds one descriptor write per bound slot of set. Unbound slots
 * and immutable samplers are skipped.
 */
func (l *ShaderResourceLayout) WriteDescriptorSet(cache *ShaderResourceCache, set uint32, dstSet vk.DescriptorSet) []vk.WriteDescriptorSet {
	var writes []vk.WriteDescriptorSet
	for _, attr := range l.Resources(set) {
		if attr.Type == metadata.ShaderResourceTypeSeparateSampler && attr.ImmutableSampler {
			continue
		}
		for elem := uint32(0); elem < attr.ArraySize; elem++ {
			r := cache.Resource(set, attr.CacheOffset+elem)
			if !r.IsBound() {
				continue
			}
			write := vk.WriteDescriptorSet{
				SType:           vk.StructureTypeWriteDescriptorSet,
				DstSet:          dstSet,
				DstBinding:      attr.Binding,
				DstArrayElement: elem,
				DescriptorCount: 1,
				DescriptorType:  descriptorType(r.Type),
			}
			switch r.Type {
			case metadata.ShaderResourceTypeUniformBuffer:
				write.PBufferInfo = []vk.DescriptorBufferInfo{r.UniformBufferWriteInfo()}
			case metadata.ShaderResourceTypeStorageBuffer,
				metadata.ShaderResourceTypeAtomicCounter:
				write.PBufferInfo = []vk.DescriptorBufferInfo{r.StorageBufferWriteInfo()}
			case metadata.ShaderResourceTypeUniformTexelBuffer,
				metadata.ShaderResourceTypeStorageTexelBuffer:
				write.PTexelBufferView = []vk.BufferView{r.BufferViewWriteInfo()}
			case metadata.ShaderResourceTypeSampledImage,
				metadata.ShaderResourceTypeStorageImage,
				metadata.ShaderResourceTypeSeparateImage:
				write.PImageInfo = []vk.DescriptorImageInfo{r.ImageWriteInfo(attr.ImmutableSampler)}
			case metadata.ShaderResourceTypeSeparateSampler:
				write.PImageInfo = []vk.DescriptorImageInfo{r.SamplerWriteInfo()}
			default:
				core.Unexpected("unknown resource type %d", uint8(r.Type))
				continue
			}
			writes = append(writes, write)
		}
	}
	return writes
}

/**
 * @brief The set layout bindings of set, in binding order of the layout.
 * Used by the caller to create the native descriptor set layout.
 */
func (l *ShaderResourceLayout) DescriptorSetLayoutBindings(set uint32) []vk.DescriptorSetLayoutBinding {
	resources := l.Resources(set)
	bindings := make([]vk.DescriptorSetLayoutBinding, 0, len(resources))
	for _, attr := range resources {
		bindings = append(bindings, vk.DescriptorSetLayoutBinding{
			Binding:         attr.Binding,
			DescriptorType:  descriptorType(attr.Type),
			DescriptorCount: attr.ArraySize,
			StageFlags:      shaderStageFlags(attr.Stages),
		})
	}
	return bindings
}
