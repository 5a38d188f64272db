package vulkan

import (
	"fmt"

	"github.com/spaghettifunk/shaderbind/engine/core"
	"github.com/spaghettifunk/shaderbind/engine/renderer/metadata"
	"golang.org/x/exp/slices"
)

/**
 * @brief A reflected resource placed in the layout: its description plus the
 * index of its first slot inside the set.
 */
type ShaderResourceAttribs struct {
	metadata.ShaderResourceDesc

	/** @brief Offset of the first array element in the set's slots. */
	CacheOffset uint32
}

/**
 * @brief Consumes a counts-then-resources reflection stream for one shader
 * stage and produces a ShaderResourceLayout.
 *
 * The first violation of the protocol puts the builder in a failed state:
 * the violating call and every later call, Build included, return an error
 * wrapping core.ErrInvariantViolation.
 */
type resourceLocation struct {
	set, binding uint32
}

type ShaderResourceLayoutBuilder struct {
	stage metadata.ShaderStage

	countsReported bool
	declared       metadata.ShaderResourceCounts
	consumed       metadata.ShaderResourceCounts

	resources   []metadata.ShaderResourceDesc
	names       map[string]struct{}
	locations   map[resourceLocation]string
	samplers    map[string]int32
	imagesSeen  bool
	nextSampler int32
	err         error
}

func NewShaderResourceLayoutBuilder(stage metadata.ShaderStage) *ShaderResourceLayoutBuilder {
	return &ShaderResourceLayoutBuilder{
		stage:     stage,
		names:     make(map[string]struct{}),
		locations: make(map[resourceLocation]string),
		samplers:  make(map[string]int32),
	}
}

func (b *ShaderResourceLayoutBuilder) fail(sentinel error, format string, args ...interface{}) error {
	b.err = fmt.Errorf("%w: %w: %s", core.ErrInvariantViolation, sentinel, fmt.Sprintf(format, args...))
	core.LogError("shader resource layout (%s): %s", b.stage, b.err)
	return b.err
}

func (b *ShaderResourceLayoutBuilder) ReportCounts(counts metadata.ShaderResourceCounts) error {
	if b.err != nil {
		return b.err
	}
	if b.countsReported {
		return b.fail(core.ErrCountsAlreadyReported, "counts were already reported")
	}
	b.countsReported = true
	b.declared = counts
	b.resources = make([]metadata.ShaderResourceDesc, 0, counts.Total())
	return nil
}

func (b *ShaderResourceLayoutBuilder) ReportResource(desc metadata.ShaderResourceDesc) error {
	if b.err != nil {
		return b.err
	}
	if !b.countsReported {
		return b.fail(core.ErrCountsNotReported, "resource '%s'", desc.Name)
	}
	if desc.Type >= metadata.ShaderResourceTypeCount {
		return b.fail(core.ErrUnknownResourceType, "resource '%s' has type %d", desc.Name, uint8(desc.Type))
	}
	if _, ok := b.names[desc.Name]; ok {
		return b.fail(core.ErrLayoutConflict, "resource '%s' is reported twice", desc.Name)
	}
	loc := resourceLocation{desc.Set, desc.Binding}
	if other, ok := b.locations[loc]; ok {
		return b.fail(core.ErrLayoutConflict, "resources '%s' and '%s' share set %d binding %d", other, desc.Name, desc.Set, desc.Binding)
	}
	if desc.ArraySize == 0 {
		desc.ArraySize = 1
	}
	if desc.Stages == 0 {
		desc.Stages = b.stage
	}
	desc.SamplerIndex = metadata.INVALID_SAMPLER_INDEX

	switch desc.Type {
	case metadata.ShaderResourceTypeSeparateSampler:
		if b.imagesSeen {
			return b.fail(core.ErrSamplerOrder, "sampler '%s' is reported after an image", desc.Name)
		}
		b.samplers[desc.Name] = b.nextSampler
		b.nextSampler++

	case metadata.ShaderResourceTypeSampledImage, metadata.ShaderResourceTypeSeparateImage:
		b.imagesSeen = true
		if desc.SamplerName != "" {
			idx, ok := b.samplers[desc.SamplerName]
			if !ok {
				return b.fail(core.ErrSamplerNotFound, "image '%s' references sampler '%s'", desc.Name, desc.SamplerName)
			}
			desc.SamplerIndex = idx
			if b.resourceByName(desc.SamplerName).ImmutableSampler {
				desc.ImmutableSampler = true
			}
		}
	}

	b.names[desc.Name] = struct{}{}
	b.locations[loc] = desc.Name
	b.consumed.Add(desc.Type)
	b.consumed.NameBytes += len(desc.Name)
	b.resources = append(b.resources, desc)
	return nil
}

func (b *ShaderResourceLayoutBuilder) resourceByName(name string) *metadata.ShaderResourceDesc {
	for i := range b.resources {
		if b.resources[i].Name == name {
			return &b.resources[i]
		}
	}
	return nil
}

/**
 * @brief Checks that exactly the declared resources were streamed and lays
 * them out.
 */
func (b *ShaderResourceLayoutBuilder) Build() (*ShaderResourceLayout, error) {
	if b.err != nil {
		return nil, b.err
	}
	if !b.countsReported {
		return nil, b.fail(core.ErrCountsNotReported, "no counts before build")
	}
	if b.consumed != b.declared {
		return nil, b.fail(core.ErrCountMismatch, "declared %+v, reported %+v", b.declared, b.consumed)
	}
	layout, err := newShaderResourceLayout(b.stage, b.resources)
	if err != nil {
		b.err = err
		return nil, err
	}
	return layout, nil
}

/**
 * @brief The resources of a pipeline (or a single stage) arranged into sets
 * of slots in canonical order.
 */
type ShaderResourceLayout struct {
	Stages metadata.ShaderStage

	sets     [][]*ShaderResourceAttribs
	setSizes []uint32
	byName   map[string]*ShaderResourceAttribs
}

func newShaderResourceLayout(stages metadata.ShaderStage, resources []metadata.ShaderResourceDesc) (*ShaderResourceLayout, error) {
	l := &ShaderResourceLayout{
		Stages: stages,
		byName: make(map[string]*ShaderResourceAttribs, len(resources)),
	}

	numSets := uint32(0)
	for i := range resources {
		numSets = max(numSets, resources[i].Set+1)
	}
	if numSets > VULKAN_MAX_DESCRIPTOR_SETS {
		return nil, fmt.Errorf("%w: %d descriptor sets, at most %d are supported", core.ErrInvariantViolation, numSets, VULKAN_MAX_DESCRIPTOR_SETS)
	}

	l.sets = make([][]*ShaderResourceAttribs, numSets)
	l.setSizes = make([]uint32, numSets)
	for i := range resources {
		attr := &ShaderResourceAttribs{ShaderResourceDesc: resources[i]}
		l.sets[attr.Set] = append(l.sets[attr.Set], attr)
		l.byName[attr.Name] = attr
		l.Stages |= attr.Stages
	}

	for set, attrs := range l.sets {
		// Reflection order is kept inside each rank.
		slices.SortStableFunc(attrs, func(a, b *ShaderResourceAttribs) int {
			return a.Type.OrderRank() - b.Type.OrderRank()
		})
		offset := uint32(0)
		for _, attr := range attrs {
			attr.CacheOffset = offset
			offset += attr.ArraySize
		}
		l.setSizes[set] = offset
	}
	return l, nil
}

/**
 * @brief Merges stage layouts into the layout of one pipeline. Resources
 * declared by several stages at the same set and binding share their slots;
 * their stage masks are combined.
 */
func NewPipelineResourceLayout(stages ...*ShaderResourceLayout) (*ShaderResourceLayout, error) {
	type location struct {
		set, binding uint32
	}
	var (
		merged    []metadata.ShaderResourceDesc
		index     = make(map[location]int)
		locations = make(map[string]location)
		mask      metadata.ShaderStage
	)

	for _, stage := range stages {
		if stage == nil {
			continue
		}
		mask |= stage.Stages
		for set := range stage.sets {
			for _, attr := range stage.sets[set] {
				loc := location{attr.Set, attr.Binding}
				if prev, ok := locations[attr.Name]; ok && prev != loc {
					return nil, fmt.Errorf("%w: '%s' is bound at set %d binding %d and set %d binding %d",
						core.ErrLayoutConflict, attr.Name, prev.set, prev.binding, loc.set, loc.binding)
				}
				locations[attr.Name] = loc

				i, ok := index[loc]
				if !ok {
					index[loc] = len(merged)
					merged = append(merged, attr.ShaderResourceDesc)
					continue
				}
				existing := &merged[i]
				if existing.Type != attr.Type || existing.ArraySize != attr.ArraySize {
					return nil, fmt.Errorf("%w: set %d binding %d is %s[%d] in one stage and %s[%d] in another",
						core.ErrLayoutConflict, loc.set, loc.binding, existing.Type, existing.ArraySize, attr.Type, attr.ArraySize)
				}
				existing.Stages |= attr.Stages
			}
		}
	}

	layout, err := newShaderResourceLayout(mask, merged)
	if err != nil {
		return nil, err
	}
	// Stages may name a shared binding differently.
	for name, loc := range locations {
		if _, ok := layout.byName[name]; !ok {
			layout.byName[name] = layout.byName[merged[index[loc]].Name]
		}
	}
	return layout, nil
}

func (l *ShaderResourceLayout) NumSets() uint32 {
	return uint32(len(l.sets))
}

/** @brief Slot count per set, indexed by set. */
func (l *ShaderResourceLayout) SetSizes() []uint32 {
	return slices.Clone(l.setSizes)
}

func (l *ShaderResourceLayout) Resource(name string) (*ShaderResourceAttribs, bool) {
	attr, ok := l.byName[name]
	return attr, ok
}

/** @brief The resources of set in slot order. */
func (l *ShaderResourceLayout) Resources(set uint32) []*ShaderResourceAttribs {
	if set >= uint32(len(l.sets)) {
		return nil
	}
	return l.sets[set]
}

/** @brief Bytes a cache built from this layout occupies. */
func (l *ShaderResourceLayout) CacheMemorySize() uintptr {
	return RequiredMemorySize(l.NumSets(), l.setSizes)
}

/**
 * @brief Sizes cache for this layout and constructs every slot with its
 * resource type.
 */
func (l *ShaderResourceLayout) InitializeCache(cache *ShaderResourceCache, allocator core.MemoryAllocator) error {
	if cache.IsInitialized() {
		return core.ErrCacheAlreadyInitialized
	}
	cache.InitializeSets(allocator, l.NumSets(), l.setSizes)
	for set := range l.sets {
		for _, attr := range l.sets[set] {
			cache.InitializeResources(uint32(set), attr.CacheOffset, attr.ArraySize, attr.Type)
		}
	}
	if err := cache.VerifyCoverage(); err != nil {
		cache.Destroy()
		return err
	}
	return nil
}
