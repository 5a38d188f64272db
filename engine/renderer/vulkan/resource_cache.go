package vulkan

import (
	"fmt"
	"unsafe"

	"github.com/spaghettifunk/shaderbind/engine/core"
	"github.com/spaghettifunk/shaderbind/engine/renderer/metadata"
)

const cacheMemoryDescription = "memory for shader resource cache data"

/**
 * @brief One binding slot. The type is fixed when the slot is constructed;
 * only the bound object changes afterwards.
 */
type ShaderResource struct {
	Type   metadata.ShaderResourceType
	Object DeviceObject

	initialized bool
}

func (r *ShaderResource) IsBound() bool {
	return r.Object != nil
}

/**
 * @brief A descriptor set: a fixed run of slots inside the cache. Sets
 * address their slots by offset so the storage stays relocatable.
 */
type ShaderResourceSet struct {
	offset uint32
	size   uint32
}

func (s *ShaderResourceSet) Size() uint32 {
	return s.size
}

/**
 * @brief Storage for every resource bound through one shader resource binding.
 *
 * Memory layout:
 *
 *  | Set[0] | ... | Set[Ns-1] | Res[0] ... Res[n-1] | ... | Res[0] ... Res[m-1] |
 *
 * The cache is sized once from the layout and never resized. It is owned by
 * a single binding object and must not be shared between goroutines.
 */
type ShaderResourceCache struct {
	allocator  core.MemoryAllocator
	memorySize uintptr

	sets      []ShaderResourceSet
	resources []ShaderResource

	numSets        uint32
	totalResources uint32
	initialized    bool
}

/**
 * @brief The exact number of bytes a cache with the given shape occupies.
 */
func RequiredMemorySize(numSets uint32, setSizes []uint32) uintptr {
	var totalResources uintptr
	for t := uint32(0); t < numSets; t++ {
		totalResources += uintptr(setSizes[t])
	}
	return uintptr(numSets)*unsafe.Sizeof(ShaderResourceSet{}) + totalResources*unsafe.Sizeof(ShaderResource{})
}

func NewShaderResourceCache() *ShaderResourceCache {
	return &ShaderResourceCache{}
}

/**
 * @brief Carves the set headers and slots out of a single accounted block.
 * A cache can be initialized at most once.
 */
func (c *ShaderResourceCache) InitializeSets(allocator core.MemoryAllocator, numSets uint32, setSizes []uint32) {
	core.Verify(!c.initialized, "%s", core.ErrCacheAlreadyInitialized)
	core.Verify(int(numSets) <= len(setSizes), "%d set sizes given for %d sets", len(setSizes), numSets)

	c.allocator = allocator
	c.numSets = numSets
	c.totalResources = 0
	for t := uint32(0); t < numSets; t++ {
		c.totalResources += setSizes[t]
	}
	c.memorySize = uintptr(c.numSets)*unsafe.Sizeof(ShaderResourceSet{}) + uintptr(c.totalResources)*unsafe.Sizeof(ShaderResource{})
	core.Verify(c.memorySize == RequiredMemorySize(numSets, setSizes), "cache size does not match the required size")
	c.initialized = true

	if c.memorySize == 0 {
		return
	}
	if c.allocator != nil {
		c.allocator.Allocate(cacheMemoryDescription, c.memorySize)
	}
	c.sets = make([]ShaderResourceSet, numSets)
	c.resources = make([]ShaderResource, c.totalResources)

	offset := uint32(0)
	for t := uint32(0); t < numSets; t++ {
		c.sets[t] = ShaderResourceSet{offset: offset, size: setSizes[t]}
		offset += setSizes[t]
	}
	core.Verify(offset == c.totalResources, "set layout does not consume the cache exactly")
	core.LogDebug("shader resource cache: %d sets, %d resources, %s", numSets, c.totalResources, core.FormatMemorySize(c.memorySize, 1, 0))
}

/**
 * @brief Constructs arraySize empty slots of type t starting at offset in set.
 */
func (c *ShaderResourceCache) InitializeResources(set, offset, arraySize uint32, t metadata.ShaderResourceType) {
	s := c.descriptorSet(set)
	core.Verify(offset+arraySize <= s.size, "resources [%d, %d) exceed set %d of size %d", offset, offset+arraySize, set, s.size)
	for res := uint32(0); res < arraySize; res++ {
		r := &c.resources[s.offset+offset+res]
		core.Verify(!r.initialized, "resource %d in set %d is already initialized", offset+res, set)
		*r = ShaderResource{Type: t, initialized: true}
	}
}

/**
 * @brief Replaces the object bound to a slot. The slot keeps its type;
 * binding nil clears it.
 */
func (c *ShaderResourceCache) BindResource(set, index uint32, obj DeviceObject) {
	r := c.Resource(set, index)
	core.Verify(r.initialized, "resource %d in set %d is not initialized", index, set)
	core.Verify(objectMatchesType(obj, r.Type), "object %T cannot be bound to a %s slot", obj, r.Type)
	if r.Object == obj {
		return
	}
	if obj != nil {
		addRef(obj)
	}
	if r.Object != nil {
		release(r.Object)
	}
	r.Object = obj
}

/**
 * @brief Releases every slot, then every set header, then the block.
 * Calling Destroy on a destroyed or never initialized cache does nothing.
 */
func (c *ShaderResourceCache) Destroy() {
	if c.sets == nil && c.resources == nil {
		c.initialized = false
		return
	}
	for res := range c.resources {
		r := &c.resources[res]
		if r.Object != nil {
			release(r.Object)
		}
		*r = ShaderResource{}
	}
	for t := range c.sets {
		c.sets[t] = ShaderResourceSet{}
	}
	if c.allocator != nil {
		c.allocator.Free(cacheMemoryDescription, c.memorySize)
	}
	c.sets = nil
	c.resources = nil
	c.numSets = 0
	c.totalResources = 0
	c.memorySize = 0
	c.initialized = false
}

func (c *ShaderResourceCache) IsInitialized() bool {
	return c.initialized
}

func (c *ShaderResourceCache) NumSets() uint32 {
	return c.numSets
}

func (c *ShaderResourceCache) TotalResources() uint32 {
	return c.totalResources
}

/** @brief The number of bytes accounted for this cache. */
func (c *ShaderResourceCache) MemorySize() uintptr {
	return c.memorySize
}

func (c *ShaderResourceCache) SetSize(set uint32) uint32 {
	return c.descriptorSet(set).size
}

func (c *ShaderResourceCache) Resource(set, index uint32) *ShaderResource {
	s := c.descriptorSet(set)
	core.Verify(index < s.size, "resource index %d out of range for set %d of size %d", index, set, s.size)
	return &c.resources[s.offset+index]
}

// setResources returns the slots of one set as a view into the shared block.
func (c *ShaderResourceCache) setResources(set uint32) []ShaderResource {
	s := c.descriptorSet(set)
	return c.resources[s.offset : s.offset+s.size]
}

func (c *ShaderResourceCache) descriptorSet(set uint32) *ShaderResourceSet {
	core.Verify(c.initialized, "%s", core.ErrCacheNotInitialized)
	core.Verify(set < c.numSets, "set index %d out of range (%d sets)", set, c.numSets)
	return &c.sets[set]
}

/**
 * @brief Checks that every slot was constructed and that each set is in
 * canonical order: uniform buffers, storage buffers, everything else.
 */
func (c *ShaderResourceCache) VerifyCoverage() error {
	if !c.initialized {
		return core.ErrCacheNotInitialized
	}
	for set := uint32(0); set < c.numSets; set++ {
		rank := 0
		for i, r := range c.setResources(set) {
			if !r.initialized {
				return fmt.Errorf("%w: set %d slot %d", core.ErrSetNotCovered, set, i)
			}
			if r.Type.OrderRank() < rank {
				return fmt.Errorf("%w: set %d slot %d (%s)", core.ErrNonCanonicalOrder, set, i, r.Type)
			}
			rank = r.Type.OrderRank()
		}
	}
	return nil
}
