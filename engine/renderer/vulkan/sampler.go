package vulkan

import (
	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/shaderbind/engine/core"
)

type VulkanSampler struct {
	refCounter

	Handle vk.Sampler
	Name   string
}

func NewVulkanSampler(handle vk.Sampler, name string) *VulkanSampler {
	return &VulkanSampler{
		Handle: handle,
		Name:   core.ObjectNameOrDefault(name, "sampler"),
	}
}

func (s *VulkanSampler) ObjectName() string {
	return s.Name
}
