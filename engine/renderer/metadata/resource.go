package metadata

import "fmt"

/** @brief The kind of resource a shader slot binds. The set is closed. */
type ShaderResourceType uint8

const (
	/** @brief Uniform (constant) buffer. Bound with a dynamic offset. */
	ShaderResourceTypeUniformBuffer ShaderResourceType = iota
	/** @brief Read-write structured buffer. Bound with a dynamic offset. */
	ShaderResourceTypeStorageBuffer
	/** @brief Read-only formatted buffer view. */
	ShaderResourceTypeUniformTexelBuffer
	/** @brief Read-write formatted buffer view. */
	ShaderResourceTypeStorageTexelBuffer
	/** @brief Texture combined with a sampler. */
	ShaderResourceTypeSampledImage
	/** @brief Read-write image. */
	ShaderResourceTypeStorageImage
	/** @brief Texture without a sampler. */
	ShaderResourceTypeSeparateImage
	/** @brief Sampler without a texture. */
	ShaderResourceTypeSeparateSampler
	/** @brief Atomic counter buffer. */
	ShaderResourceTypeAtomicCounter

	/** @brief The number of resource kinds. Not a valid type. */
	ShaderResourceTypeCount
)

func (t ShaderResourceType) String() string {
	switch t {
	case ShaderResourceTypeUniformBuffer:
		return "UniformBuffer"
	case ShaderResourceTypeStorageBuffer:
		return "StorageBuffer"
	case ShaderResourceTypeUniformTexelBuffer:
		return "UniformTexelBuffer"
	case ShaderResourceTypeStorageTexelBuffer:
		return "StorageTexelBuffer"
	case ShaderResourceTypeSampledImage:
		return "SampledImage"
	case ShaderResourceTypeStorageImage:
		return "StorageImage"
	case ShaderResourceTypeSeparateImage:
		return "SeparateImage"
	case ShaderResourceTypeSeparateSampler:
		return "SeparateSampler"
	case ShaderResourceTypeAtomicCounter:
		return "AtomicCounter"
	}
	return fmt.Sprintf("ShaderResourceType(%d)", uint8(t))
}

/**
 * @brief Rank used by the canonical slot ordering of a descriptor set:
 * uniform buffers, then storage buffers, then everything else.
 */
func (t ShaderResourceType) OrderRank() int {
	switch t {
	case ShaderResourceTypeUniformBuffer:
		return 0
	case ShaderResourceTypeStorageBuffer:
		return 1
	}
	return 2
}

/** @brief Reports whether slots of this type take a per-draw dynamic offset. */
func (t ShaderResourceType) HasDynamicOffset() bool {
	return t == ShaderResourceTypeUniformBuffer || t == ShaderResourceTypeStorageBuffer
}

/** @brief Marks a resource that has no combined sampler. */
const INVALID_SAMPLER_INDEX int32 = -1

/**
 * @brief One reflected shader binding. Immutable once registered with
 * a layout builder.
 */
type ShaderResourceDesc struct {
	/** @brief The variable name in the shader. */
	Name string
	/** @brief The resource kind. */
	Type ShaderResourceType
	/** @brief The descriptor set (bind group) index. */
	Set uint32
	/** @brief The binding index inside the set. */
	Binding uint32
	/** @brief Number of array elements; 1 for scalars. */
	ArraySize uint32
	/** @brief Stages that access the resource. */
	Stages ShaderStage
	/** @brief Name of the combined sampler for sampled images, if any. */
	SamplerName string
	/** @brief Index of the combined sampler among the reported samplers. Set by the builder. */
	SamplerIndex int32
	/** @brief The sampler is baked into the set layout and is never written. */
	ImmutableSampler bool
}

/**
 * @brief Totals announced by a reflection producer before it streams
 * any resource.
 */
type ShaderResourceCounts struct {
	NumUniformBuffers uint32
	/** @brief Sampled and separate images. */
	NumSampledImages uint32
	NumStorageImages uint32
	/** @brief Uniform texel buffers. */
	NumBufferSRVs uint32
	/** @brief Storage buffers, storage texel buffers and atomic counters. */
	NumBufferUAVs uint32
	NumSamplers   uint32
	/** @brief Total bytes of all resource names. */
	NameBytes int
}

/** @brief Adds the category of t to the counts. */
func (c *ShaderResourceCounts) Add(t ShaderResourceType) {
	switch t {
	case ShaderResourceTypeUniformBuffer:
		c.NumUniformBuffers++
	case ShaderResourceTypeSampledImage, ShaderResourceTypeSeparateImage:
		c.NumSampledImages++
	case ShaderResourceTypeStorageImage:
		c.NumStorageImages++
	case ShaderResourceTypeUniformTexelBuffer:
		c.NumBufferSRVs++
	case ShaderResourceTypeStorageBuffer, ShaderResourceTypeStorageTexelBuffer, ShaderResourceTypeAtomicCounter:
		c.NumBufferUAVs++
	case ShaderResourceTypeSeparateSampler:
		c.NumSamplers++
	}
}

func (c ShaderResourceCounts) Total() uint32 {
	return c.NumUniformBuffers + c.NumSampledImages + c.NumStorageImages +
		c.NumBufferSRVs + c.NumBufferUAVs + c.NumSamplers
}

/**
 * @brief Consumer side of the reflection protocol: counts exactly once,
 * then one call per resource. Samplers come before any image.
 */
type ShaderResourceReporter interface {
	ReportCounts(counts ShaderResourceCounts) error
	ReportResource(desc ShaderResourceDesc) error
}
