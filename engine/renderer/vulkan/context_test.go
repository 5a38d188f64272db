package vulkan

import (
	"errors"
	"testing"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/shaderbind/engine/config"
	"github.com/spaghettifunk/shaderbind/engine/core"
	"github.com/spaghettifunk/shaderbind/engine/renderer/metadata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// contextFixture is a binding with a uniform buffer and a texture, both in
// the wrong state.
type contextFixture struct {
	srb   *ShaderResourceBinding
	frame *VulkanBuffer
	tex   *VulkanTextureView
}

func newContextFixture(t *testing.T) *contextFixture {
	t.Helper()
	layout := buildLayout(t, metadata.ShaderStageFragment,
		desc("frame", metadata.ShaderResourceTypeUniformBuffer, 0, 0),
		desc("albedo", metadata.ShaderResourceTypeSeparateImage, 0, 1),
	)
	srb, err := NewShaderResourceBinding(layout, &core.TrackingAllocator{})
	require.NoError(t, err)
	t.Cleanup(srb.Release)

	f := &contextFixture{
		srb:   srb,
		frame: newBuffer("frame", 0),
		tex:   newTextureView("albedo", metadata.BindShaderResource, vk.ImageLayoutTransferDstOptimal),
	}
	f.frame.SetDynamicOffset(3, 128)
	require.NoError(t, srb.SetResource("frame", 0, f.frame))
	require.NoError(t, srb.SetResource("albedo", 0, f.tex))
	return f
}

func newContext(t *testing.T, id uint32, cfg *config.Config) *VulkanContext {
	t.Helper()
	vc, err := NewVulkanContext(id, cfg)
	require.NoError(t, err)
	return vc
}

func TestNewVulkanContext(t *testing.T) {
	vc := newContext(t, 0, nil)
	assert.Equal(t, 0, vc.PendingBarrierCount())
	assert.Equal(t, 0, vc.ValidationErrorCount())
	assert.Zero(t, vc.AverageTransitionsPerCommit())

	_, err := NewVulkanContext(VULKAN_MAX_DEVICE_CONTEXTS, nil)
	assert.Error(t, err)
}

func TestCommitTransitionRecordsBarriers(t *testing.T) {
	f := newContextFixture(t)
	recorder := &fakeRecorder{}
	vc := newContext(t, 3, nil)
	vc.CommandBuffer = recorder

	offsets, err := vc.CommitShaderResources(f.srb, COMMIT_SHADER_RESOURCES_FLAG_TRANSITION_RESOURCES)
	require.NoError(t, err)
	assert.Equal(t, []uint32{128}, offsets)

	assert.Equal(t, 1, recorder.barriers)
	assert.Equal(t, 0, vc.PendingBarrierCount())
	require.Len(t, recorder.buffers, 1)
	require.Len(t, recorder.images, 1)

	b := recorder.buffers[0]
	assert.Equal(t, vk.AccessFlags(0), b.SrcAccessMask)
	assert.Equal(t, uniformBufferAccess, b.DstAccessMask)
	assert.Equal(t, vk.DeviceSize(vk.WholeSize), b.Size)
	assert.Equal(t, uint32(vk.QueueFamilyIgnored), b.SrcQueueFamilyIndex)

	img := recorder.images[0]
	assert.Equal(t, vk.ImageLayoutTransferDstOptimal, img.OldLayout)
	assert.Equal(t, vk.ImageLayoutShaderReadOnlyOptimal, img.NewLayout)
	assert.Equal(t, vk.AccessFlags(vk.AccessTransferWriteBit), img.SrcAccessMask)
	assert.Equal(t, vk.AccessFlags(vk.AccessShaderReadBit), img.DstAccessMask)
	assert.Equal(t, vk.ImageAspectFlags(vk.ImageAspectColorBit), img.SubresourceRange.AspectMask)
	assert.Equal(t, uint32(1), img.SubresourceRange.LevelCount)
	assert.Equal(t, uint32(1), img.SubresourceRange.LayerCount)

	assert.Equal(t, uniformBufferAccess, f.frame.AccessFlags())
	assert.Equal(t, vk.ImageLayoutShaderReadOnlyOptimal, f.tex.Image.Layout())

	// Everything is in place now, so the next commit records nothing.
	_, err = vc.CommitShaderResources(f.srb, COMMIT_SHADER_RESOURCES_FLAG_TRANSITION_RESOURCES)
	require.NoError(t, err)
	assert.Equal(t, 1, recorder.barriers)
	assert.InDelta(t, 1.0, vc.AverageTransitionsPerCommit(), 1e-9)
}

func TestCommitTransitionWithoutCommandBuffer(t *testing.T) {
	f := newContextFixture(t)
	vc := newContext(t, 0, nil)

	offsets, err := vc.CommitShaderResources(f.srb, COMMIT_SHADER_RESOURCES_FLAG_TRANSITION_RESOURCES)
	assert.ErrorIs(t, err, core.ErrBarriersPending)
	assert.Equal(t, []uint32{0}, offsets)
	assert.Equal(t, 2, vc.PendingBarrierCount())

	// The states already match, the first batch is still the only one queued.
	_, err = vc.CommitShaderResources(f.srb, COMMIT_SHADER_RESOURCES_FLAG_TRANSITION_RESOURCES)
	assert.ErrorIs(t, err, core.ErrBarriersPending)
	assert.Equal(t, 2, vc.PendingBarrierCount())

	err = vc.FlushBarriers()
	assert.ErrorIs(t, err, core.ErrCommandBufferNotRecording)
	assert.Equal(t, 2, vc.PendingBarrierCount())

	recorder := &fakeRecorder{}
	vc.CommandBuffer = recorder
	require.NoError(t, vc.FlushBarriers())
	assert.Equal(t, 0, vc.PendingBarrierCount())
	assert.Len(t, recorder.buffers, 1)
	assert.Len(t, recorder.images, 1)

	// Nothing pending, nothing recorded.
	require.NoError(t, vc.FlushBarriers())
	assert.Equal(t, 1, recorder.barriers)
}

func TestFlushFailureKeepsBarriersPending(t *testing.T) {
	f := newContextFixture(t)
	recorder := &fakeRecorder{err: errors.New("device lost")}
	vc := newContext(t, 0, nil)
	vc.CommandBuffer = recorder

	_, err := vc.CommitShaderResources(f.srb, COMMIT_SHADER_RESOURCES_FLAG_TRANSITION_RESOURCES)
	assert.EqualError(t, err, "device lost")
	assert.Equal(t, 2, vc.PendingBarrierCount())

	recorder.err = nil
	require.NoError(t, vc.FlushBarriers())
	assert.Len(t, recorder.buffers, 1)
	assert.Len(t, recorder.images, 1)
}

func TestFlushRequiresRecordingCommandBuffer(t *testing.T) {
	f := newContextFixture(t)
	cmd := WrapVulkanCommandBuffer(nil)
	vc := newContext(t, 0, nil)
	vc.CommandBuffer = cmd

	_, err := vc.CommitShaderResources(f.srb, COMMIT_SHADER_RESOURCES_FLAG_TRANSITION_RESOURCES)
	assert.ErrorIs(t, err, core.ErrCommandBufferNotRecording)
	assert.Equal(t, 2, vc.PendingBarrierCount())

	// Barriers cannot be recorded inside a render pass either.
	cmd.State = COMMAND_BUFFER_STATE_IN_RENDER_PASS
	assert.True(t, cmd.IsRecording())
	assert.ErrorIs(t, vc.FlushBarriers(), core.ErrCommandBufferNotRecording)
}

func TestCommitVerifyStates(t *testing.T) {
	captureLog(t)
	f := newContextFixture(t)
	vc := newContext(t, 3, nil)
	vc.CommandBuffer = &fakeRecorder{}

	offsets, err := vc.CommitShaderResources(f.srb, COMMIT_SHADER_RESOURCES_FLAG_VERIFY_STATES)
	require.NoError(t, err)
	assert.Equal(t, []uint32{128}, offsets)
	assert.Equal(t, 2, vc.ValidationErrorCount())
	assert.Equal(t, 0, vc.PendingBarrierCount())

	// Verification never touches the objects.
	assert.Equal(t, vk.AccessFlags(0), f.frame.AccessFlags())
	assert.Equal(t, vk.ImageLayoutTransferDstOptimal, f.tex.Image.Layout())

	cfg := config.Default()
	cfg.Binding.StrictValidation = true
	vc.ApplyConfig(cfg)
	_, err = vc.CommitShaderResources(f.srb, COMMIT_SHADER_RESOURCES_FLAG_VERIFY_STATES)
	assert.ErrorIs(t, err, core.ErrResourceStateMismatch)
	assert.Contains(t, err.Error(), f.srb.Name)
	assert.Equal(t, 4, vc.ValidationErrorCount())

	// Transitioning takes precedence over verification.
	_, err = vc.CommitShaderResources(f.srb, COMMIT_SHADER_RESOURCES_FLAG_TRANSITION_RESOURCES|COMMIT_SHADER_RESOURCES_FLAG_VERIFY_STATES)
	require.NoError(t, err)
	_, err = vc.CommitShaderResources(f.srb, COMMIT_SHADER_RESOURCES_FLAG_VERIFY_STATES)
	require.NoError(t, err)
	assert.Equal(t, 4, vc.ValidationErrorCount())
}

func TestCommitNoFlags(t *testing.T) {
	f := newContextFixture(t)
	vc := newContext(t, 0, nil)

	offsets, err := vc.CommitShaderResources(f.srb, COMMIT_SHADER_RESOURCES_FLAG_NONE)
	require.NoError(t, err)
	assert.Equal(t, []uint32{0}, offsets)
	assert.Equal(t, 0, vc.PendingBarrierCount())
	assert.Equal(t, vk.AccessFlags(0), f.frame.AccessFlags())

	f.srb.Release()
	_, err = vc.CommitShaderResources(f.srb, COMMIT_SHADER_RESOURCES_FLAG_NONE)
	assert.ErrorIs(t, err, core.ErrCacheNotInitialized)
}

func TestLayoutAccessMask(t *testing.T) {
	assert.Equal(t, vk.AccessFlags(0), layoutAccessMask(vk.ImageLayoutUndefined))
	assert.Equal(t, vk.AccessFlags(vk.AccessShaderReadBit|vk.AccessShaderWriteBit), layoutAccessMask(vk.ImageLayoutGeneral))
	assert.Equal(t, vk.AccessFlags(vk.AccessDepthStencilAttachmentReadBit|vk.AccessShaderReadBit),
		layoutAccessMask(vk.ImageLayoutDepthStencilReadOnlyOptimal))
}

func TestCommandBufferState(t *testing.T) {
	cmd := WrapVulkanCommandBuffer(nil)
	assert.Equal(t, "READY", cmd.State.String())
	assert.False(t, cmd.IsRecording())

	err := cmd.BindDescriptorSets(vk.PipelineBindPointGraphics, nil, 0, nil, nil)
	assert.ErrorIs(t, err, core.ErrCommandBufferNotRecording)

	cmd.UpdateSubmitted()
	assert.Equal(t, COMMAND_BUFFER_STATE_SUBMITTED, cmd.State)
	cmd.Reset()
	assert.Equal(t, COMMAND_BUFFER_STATE_READY, cmd.State)
	assert.Equal(t, "VulkanCommandBufferState(42)", VulkanCommandBufferState(42).String())
}
