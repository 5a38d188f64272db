package reflect

import (
	"errors"
	"testing"

	"github.com/spaghettifunk/shaderbind/engine/renderer/metadata"
	"github.com/spaghettifunk/shaderbind/engine/renderer/vulkan"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const computeShader = `
struct Params {
    scale: f32,
    count: u32,
}

struct Particle {
    position: vec4<f32>,
}

@group(1) @binding(0) var src: texture_2d<f32>;
@group(1) @binding(1) var smp: sampler;
@group(1) @binding(2) var dst: texture_storage_2d<rgba8unorm, write>;
@group(1) @binding(3) var shadow: texture_depth_2d;
@group(0) @binding(2) var<storage, read_write> counter: atomic<u32>;
@group(0) @binding(1) var<storage, read_write> particles: array<Particle>;
@group(0) @binding(3) var<uniform> params: Params;

var<private> scratch: f32;

@compute @workgroup_size(1)
fn main() {
}
`

const graphicsShader = `
@group(0) @binding(0) var<uniform> transform: mat4x4<f32>;

@vertex
fn vs_main() -> @builtin(position) vec4<f32> {
    return vec4<f32>(0.0, 0.0, 0.0, 1.0);
}

@fragment
fn fs_main() -> @location(0) vec4<f32> {
    return vec4<f32>(1.0, 1.0, 1.0, 1.0);
}
`

// streamRecorder keeps every call it receives.
type streamRecorder struct {
	counts    []metadata.ShaderResourceCounts
	resources []metadata.ShaderResourceDesc
	err       error
}

func (r *streamRecorder) ReportCounts(counts metadata.ShaderResourceCounts) error {
	if r.err != nil {
		return r.err
	}
	r.counts = append(r.counts, counts)
	return nil
}

func (r *streamRecorder) ReportResource(desc metadata.ShaderResourceDesc) error {
	r.resources = append(r.resources, desc)
	return nil
}

func TestReflectWGSLStream(t *testing.T) {
	r := &streamRecorder{}
	require.NoError(t, ReflectWGSL(computeShader, r))

	require.Len(t, r.counts, 1)
	assert.Equal(t, metadata.ShaderResourceCounts{
		NumUniformBuffers: 1,
		NumSampledImages:  2,
		NumStorageImages:  1,
		NumBufferUAVs:     2,
		NumSamplers:       1,
		NameBytes:         len("src") + len("smp") + len("dst") + len("shadow") + len("counter") + len("particles") + len("params"),
	}, r.counts[0])

	type entry struct {
		name    string
		typ     metadata.ShaderResourceType
		set     uint32
		binding uint32
	}
	expected := []entry{
		{"params", metadata.ShaderResourceTypeUniformBuffer, 0, 3},
		{"dst", metadata.ShaderResourceTypeStorageImage, 1, 2},
		{"particles", metadata.ShaderResourceTypeStorageBuffer, 0, 1},
		{"counter", metadata.ShaderResourceTypeAtomicCounter, 0, 2},
		{"smp", metadata.ShaderResourceTypeSeparateSampler, 1, 1},
		{"src", metadata.ShaderResourceTypeSeparateImage, 1, 0},
		{"shadow", metadata.ShaderResourceTypeSeparateImage, 1, 3},
	}
	require.Len(t, r.resources, len(expected))
	for i, e := range expected {
		got := r.resources[i]
		assert.Equal(t, e, entry{got.Name, got.Type, got.Set, got.Binding}, "resource %d", i)
		assert.Equal(t, uint32(1), got.ArraySize)
		assert.Equal(t, metadata.ShaderStageCompute, got.Stages)
		assert.Equal(t, metadata.INVALID_SAMPLER_INDEX, got.SamplerIndex)
	}
}

func TestReflectWGSLStages(t *testing.T) {
	r := &streamRecorder{}
	require.NoError(t, ReflectWGSL(graphicsShader, r))
	require.Len(t, r.resources, 1)
	assert.Equal(t, "transform", r.resources[0].Name)
	assert.Equal(t, metadata.ShaderStageVertex|metadata.ShaderStageFragment, r.resources[0].Stages)
}

func TestReflectWGSLIntoLayout(t *testing.T) {
	compute := vulkan.NewShaderResourceLayoutBuilder(0)
	require.NoError(t, ReflectWGSL(computeShader, compute))
	layout, err := compute.Build()
	require.NoError(t, err)

	assert.Equal(t, metadata.ShaderStageCompute, layout.Stages)
	assert.Equal(t, []uint32{3, 4}, layout.SetSizes())

	var set0 []string
	for _, attr := range layout.Resources(0) {
		set0 = append(set0, attr.Name)
	}
	assert.Equal(t, []string{"params", "particles", "counter"}, set0)
}

func TestReflectWGSLErrors(t *testing.T) {
	err := ReflectWGSL("fn main( {", &streamRecorder{})
	assert.ErrorContains(t, err, "failed to parse shader")

	sentinel := errors.New("rejected")
	r := &streamRecorder{err: sentinel}
	assert.ErrorIs(t, ReflectWGSL(graphicsShader, r), sentinel)
	assert.Empty(t, r.resources)
}
