package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/shaderbind/engine/core"
)

type VulkanCommandBufferState int

const (
	COMMAND_BUFFER_STATE_READY VulkanCommandBufferState = iota
	COMMAND_BUFFER_STATE_RECORDING
	COMMAND_BUFFER_STATE_IN_RENDER_PASS
	COMMAND_BUFFER_STATE_RECORDING_ENDED
	COMMAND_BUFFER_STATE_SUBMITTED
	COMMAND_BUFFER_STATE_NOT_ALLOCATED
)

func (s VulkanCommandBufferState) String() string {
	switch s {
	case COMMAND_BUFFER_STATE_READY:
		return "READY"
	case COMMAND_BUFFER_STATE_RECORDING:
		return "RECORDING"
	case COMMAND_BUFFER_STATE_IN_RENDER_PASS:
		return "IN_RENDER_PASS"
	case COMMAND_BUFFER_STATE_RECORDING_ENDED:
		return "RECORDING_ENDED"
	case COMMAND_BUFFER_STATE_SUBMITTED:
		return "SUBMITTED"
	case COMMAND_BUFFER_STATE_NOT_ALLOCATED:
		return "NOT_ALLOCATED"
	}
	return fmt.Sprintf("VulkanCommandBufferState(%d)", int(s))
}

/**
 * @brief The commands the recording context issues on a command stream.
 */
type CommandRecorder interface {
	PipelineBarrier(srcStages, dstStages vk.PipelineStageFlags, buffers []vk.BufferMemoryBarrier, images []vk.ImageMemoryBarrier) error
	BindDescriptorSets(bindPoint vk.PipelineBindPoint, layout vk.PipelineLayout, firstSet uint32, sets []vk.DescriptorSet, dynamicOffsets []uint32) error
}

type VulkanCommandBuffer struct {
	Handle vk.CommandBuffer
	// Command buffer state.
	State VulkanCommandBufferState
}

/**
 * @brief Tracks recording state for a command buffer allocated by the caller.
 */
func WrapVulkanCommandBuffer(handle vk.CommandBuffer) *VulkanCommandBuffer {
	return &VulkanCommandBuffer{
		Handle: handle,
		State:  COMMAND_BUFFER_STATE_READY,
	}
}

func (v *VulkanCommandBuffer) Begin(
	is_single_use,
	is_renderpass_continue,
	is_simultaneous_use bool) error {

	vBeginInfo := &vk.CommandBufferBeginInfo{
		SType: vk.StructureTypeCommandBufferBeginInfo,
		Flags: 0,
	}

	if is_single_use {
		vBeginInfo.Flags |= vk.CommandBufferUsageFlags(vk.CommandBufferUsageOneTimeSubmitBit)
	}
	if is_renderpass_continue {
		vBeginInfo.Flags |= vk.CommandBufferUsageFlags(vk.CommandBufferUsageRenderPassContinueBit)
	}
	if is_simultaneous_use {
		vBeginInfo.Flags |= vk.CommandBufferUsageFlags(vk.CommandBufferUsageSimultaneousUseBit)
	}

	if res := vk.BeginCommandBuffer(v.Handle, vBeginInfo); res != vk.Success {
		err := fmt.Errorf("failed to begin command buffer")
		core.LogError("%s", err)
		return err
	}
	v.State = COMMAND_BUFFER_STATE_RECORDING

	return nil
}

func (v *VulkanCommandBuffer) End() error {
	if res := vk.EndCommandBuffer(v.Handle); res != vk.Success {
		err := fmt.Errorf("failed to end command buffer")
		core.LogError("%s", err)
		return err
	}
	v.State = COMMAND_BUFFER_STATE_RECORDING_ENDED
	return nil
}

func (v *VulkanCommandBuffer) UpdateSubmitted() {
	v.State = COMMAND_BUFFER_STATE_SUBMITTED
}

func (v *VulkanCommandBuffer) Reset() {
	v.State = COMMAND_BUFFER_STATE_READY
}

func (v *VulkanCommandBuffer) IsRecording() bool {
	return v.State == COMMAND_BUFFER_STATE_RECORDING || v.State == COMMAND_BUFFER_STATE_IN_RENDER_PASS
}

/**
 * @brief Records one pipeline barrier. Barriers are not allowed inside a
 * render pass.
 */
func (v *VulkanCommandBuffer) PipelineBarrier(srcStages, dstStages vk.PipelineStageFlags, buffers []vk.BufferMemoryBarrier, images []vk.ImageMemoryBarrier) error {
	if v.State != COMMAND_BUFFER_STATE_RECORDING {
		return fmt.Errorf("%w: pipeline barrier in state %s", core.ErrCommandBufferNotRecording, v.State)
	}
	vk.CmdPipelineBarrier(v.Handle, srcStages, dstStages, vk.DependencyFlags(0),
		0, nil,
		uint32(len(buffers)), buffers,
		uint32(len(images)), images)
	return nil
}

func (v *VulkanCommandBuffer) BindDescriptorSets(bindPoint vk.PipelineBindPoint, layout vk.PipelineLayout, firstSet uint32, sets []vk.DescriptorSet, dynamicOffsets []uint32) error {
	if !v.IsRecording() {
		return fmt.Errorf("%w: bind descriptor sets in state %s", core.ErrCommandBufferNotRecording, v.State)
	}
	vk.CmdBindDescriptorSets(v.Handle, bindPoint, layout, firstSet,
		uint32(len(sets)), sets,
		uint32(len(dynamicOffsets)), dynamicOffsets)
	return nil
}
