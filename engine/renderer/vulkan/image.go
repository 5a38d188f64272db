package vulkan

import (
	"sync/atomic"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/shaderbind/engine/core"
	"github.com/spaghettifunk/shaderbind/engine/renderer/metadata"
)

type VulkanImageConfig struct {
	Handle        vk.Image
	Name          string
	Width         uint32
	Height        uint32
	MipLevels     uint32
	ArrayLayers   uint32
	BindFlags     metadata.BindFlags
	InitialLayout vk.ImageLayout
}

/**
 * @brief An image and the layout the hardware last saw it in. The layout is
 * shared by every cache and context that references the image.
 */
type VulkanImage struct {
	Handle      vk.Image
	Name        string
	Width       uint32
	Height      uint32
	MipLevels   uint32
	ArrayLayers uint32
	BindFlags   metadata.BindFlags

	layout atomic.Int32
}

func NewVulkanImage(config VulkanImageConfig) *VulkanImage {
	img := &VulkanImage{
		Handle:      config.Handle,
		Name:        core.ObjectNameOrDefault(config.Name, "image"),
		Width:       config.Width,
		Height:      config.Height,
		MipLevels:   max(config.MipLevels, 1),
		ArrayLayers: max(config.ArrayLayers, 1),
		BindFlags:   config.BindFlags,
	}
	img.layout.Store(int32(config.InitialLayout))
	return img
}

func (i *VulkanImage) Layout() vk.ImageLayout {
	return vk.ImageLayout(i.layout.Load())
}

func (i *VulkanImage) SetLayout(layout vk.ImageLayout) {
	i.layout.Store(int32(layout))
}

func (i *VulkanImage) IsDepthStencil() bool {
	return i.BindFlags&metadata.BindDepthStencil != 0
}

/** @brief The layout a shader read of this image requires. */
func (i *VulkanImage) ShaderReadLayout() vk.ImageLayout {
	if i.IsDepthStencil() {
		return vk.ImageLayoutDepthStencilReadOnlyOptimal
	}
	return vk.ImageLayoutShaderReadOnlyOptimal
}

func (i *VulkanImage) aspectMask() vk.ImageAspectFlags {
	if i.IsDepthStencil() {
		return vk.ImageAspectFlags(vk.ImageAspectDepthBit | vk.ImageAspectStencilBit)
	}
	return vk.ImageAspectFlags(vk.ImageAspectColorBit)
}

/**
 * @brief Moves the image to layout unless it is already there.
 * @return The previous layout and true when this call performed the transition.
 */
func (i *VulkanImage) transitionLayout(layout vk.ImageLayout) (vk.ImageLayout, bool) {
	for {
		current := i.layout.Load()
		if vk.ImageLayout(current) == layout {
			return layout, false
		}
		if i.layout.CompareAndSwap(current, int32(layout)) {
			return vk.ImageLayout(current), true
		}
	}
}

type VulkanTextureViewConfig struct {
	Handle   vk.ImageView
	Name     string
	ViewType metadata.TextureViewType
	Image    *VulkanImage
	Sampler  *VulkanSampler
}

/** @brief A view over an image, optionally paired with a sampler. */
type VulkanTextureView struct {
	refCounter

	Handle   vk.ImageView
	Name     string
	ViewType metadata.TextureViewType
	Image    *VulkanImage
	Sampler  *VulkanSampler
}

func NewVulkanTextureView(config VulkanTextureViewConfig) *VulkanTextureView {
	core.Verify(config.Image != nil, "texture view %q has no image", config.Name)
	return &VulkanTextureView{
		Handle:   config.Handle,
		Name:     core.ObjectNameOrDefault(config.Name, "texture-view"),
		ViewType: config.ViewType,
		Image:    config.Image,
		Sampler:  config.Sampler,
	}
}

func (v *VulkanTextureView) ObjectName() string {
	return v.Name
}

/** @brief Assigns the sampler used when the view fills a combined image-sampler slot. */
func (v *VulkanTextureView) SetSampler(sampler *VulkanSampler) {
	v.Sampler = sampler
}
