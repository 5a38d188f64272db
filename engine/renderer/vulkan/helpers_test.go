package vulkan

import (
	"bytes"
	"io"
	"sync"
	"testing"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/shaderbind/engine/core"
	"github.com/spaghettifunk/shaderbind/engine/renderer/metadata"
	"github.com/stretchr/testify/require"
)

// captureLog redirects the engine logger for the duration of the test.
func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	core.SetLogOutput(&buf)
	t.Cleanup(func() { core.SetLogOutput(io.Discard) })
	return &buf
}

func requireDebugChecks(t *testing.T) {
	t.Helper()
	if !core.DebugChecksEnabled {
		t.Skip("debug checks are compiled out")
	}
}

// newCache builds a cache with one slot per listed type.
func newCache(t *testing.T, allocator core.MemoryAllocator, sets ...[]metadata.ShaderResourceType) *ShaderResourceCache {
	t.Helper()
	sizes := make([]uint32, len(sets))
	for i, set := range sets {
		sizes[i] = uint32(len(set))
	}
	cache := NewShaderResourceCache()
	cache.InitializeSets(allocator, uint32(len(sets)), sizes)
	for s, set := range sets {
		for i, typ := range set {
			cache.InitializeResources(uint32(s), uint32(i), 1, typ)
		}
	}
	require.NoError(t, cache.VerifyCoverage())
	return cache
}

func newBuffer(name string, access vk.AccessFlags) *VulkanBuffer {
	return NewVulkanBuffer(VulkanBufferConfig{
		Name:          name,
		Size:          1024,
		BindFlags:     metadata.BindUniformBuffer | metadata.BindUnorderedAccess,
		InitialAccess: access,
	})
}

func newBufferView(name string, access vk.AccessFlags) *VulkanBufferView {
	return NewVulkanBufferView(VulkanBufferViewConfig{
		Name:     name + "-view",
		ViewType: metadata.BufferViewUnorderedAccess,
		Buffer:   newBuffer(name, access),
	})
}

func newTextureView(name string, flags metadata.BindFlags, layout vk.ImageLayout) *VulkanTextureView {
	return NewVulkanTextureView(VulkanTextureViewConfig{
		Name:     name + "-view",
		ViewType: metadata.TextureViewShaderResource,
		Image: NewVulkanImage(VulkanImageConfig{
			Name:          name,
			Width:         4,
			Height:        4,
			BindFlags:     flags,
			InitialLayout: layout,
		}),
	})
}

type bufferRequest struct {
	buffer   *VulkanBuffer
	old      vk.AccessFlags
	required vk.AccessFlags
}

type imageRequest struct {
	image    *VulkanImage
	old      vk.ImageLayout
	required vk.ImageLayout
}

// recordingSink stores every request it receives.
type recordingSink struct {
	mu      sync.Mutex
	buffers []bufferRequest
	images  []imageRequest
}

func (s *recordingSink) RequestBufferBarrier(buffer *VulkanBuffer, oldAccess, requiredAccess vk.AccessFlags) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.buffers = append(s.buffers, bufferRequest{buffer, oldAccess, requiredAccess})
}

func (s *recordingSink) RequestImageLayoutTransition(image *VulkanImage, oldLayout, requiredLayout vk.ImageLayout) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.images = append(s.images, imageRequest{image, oldLayout, requiredLayout})
}

func (s *recordingSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.buffers) + len(s.images)
}

// fakeRecorder stands in for a recording command buffer.
type fakeRecorder struct {
	err      error
	barriers int
	buffers  []vk.BufferMemoryBarrier
	images   []vk.ImageMemoryBarrier
	offsets  []uint32
}

func (r *fakeRecorder) PipelineBarrier(_, _ vk.PipelineStageFlags, buffers []vk.BufferMemoryBarrier, images []vk.ImageMemoryBarrier) error {
	if r.err != nil {
		return r.err
	}
	r.barriers++
	r.buffers = append(r.buffers, buffers...)
	r.images = append(r.images, images...)
	return nil
}

func (r *fakeRecorder) BindDescriptorSets(_ vk.PipelineBindPoint, _ vk.PipelineLayout, _ uint32, _ []vk.DescriptorSet, dynamicOffsets []uint32) error {
	if r.err != nil {
		return r.err
	}
	r.offsets = append([]uint32(nil), dynamicOffsets...)
	return nil
}

// buildLayout streams descs to a builder in the given order.
func buildLayout(t *testing.T, stage metadata.ShaderStage, descs ...metadata.ShaderResourceDesc) *ShaderResourceLayout {
	t.Helper()
	b := NewShaderResourceLayoutBuilder(stage)
	require.NoError(t, b.ReportCounts(countsOf(descs...)))
	for _, d := range descs {
		require.NoError(t, b.ReportResource(d))
	}
	layout, err := b.Build()
	require.NoError(t, err)
	return layout
}

func countsOf(descs ...metadata.ShaderResourceDesc) metadata.ShaderResourceCounts {
	var counts metadata.ShaderResourceCounts
	for _, d := range descs {
		counts.Add(d.Type)
		counts.NameBytes += len(d.Name)
	}
	return counts
}
