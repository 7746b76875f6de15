package renderer

import (
	"errors"
	"fmt"

	as "github.com/vulkan-go/asche"
	vk "github.com/vulkan-go/vulkan"
)

var ErrNoMemoryType = errors.New("no device-local memory type fits the image")

// Attachment is a device-local image backing a render pass attachment that
// is not a swapchain image: the depth buffer or the multisampled color
// target.
type Attachment struct {
	Format  vk.Format
	Samples vk.SampleCountFlagBits
	Image   vk.Image
	Mem     vk.DeviceMemory
	View    vk.ImageView

	device vk.Device
}

func depthAspect(format vk.Format) vk.ImageAspectFlags {
	switch format {
	case vk.FormatD24UnormS8Uint, vk.FormatD32SfloatS8Uint, vk.FormatD16UnormS8Uint:
		return vk.ImageAspectFlags(vk.ImageAspectDepthBit | vk.ImageAspectStencilBit)
	default:
		return vk.ImageAspectFlags(vk.ImageAspectDepthBit)
	}
}

func NewDepth(device *Device, format vk.Format, samples vk.SampleCountFlagBits, extent vk.Extent2D) (*Attachment, error) {
	return newAttachment(device, format, samples,
		vk.ImageUsageFlags(vk.ImageUsageDepthStencilAttachmentBit), depthAspect(format), extent)
}

// NewColorTarget creates the multisampled image a subpass renders into
// before it is resolved to the swapchain image.
func NewColorTarget(device *Device, format vk.Format, samples vk.SampleCountFlagBits, extent vk.Extent2D) (*Attachment, error) {
	return newAttachment(device, format, samples,
		vk.ImageUsageFlags(vk.ImageUsageColorAttachmentBit|vk.ImageUsageTransientAttachmentBit),
		vk.ImageAspectFlags(vk.ImageAspectColorBit), extent)
}

// memoryTypeIndex picks the first device-local memory type allowed by
// typeBits.
func memoryTypeIndex(props vk.PhysicalDeviceMemoryProperties, typeBits uint32) (uint32, error) {
	index, ok := as.FindRequiredMemoryTypeFallback(props,
		vk.MemoryPropertyFlagBits(typeBits), vk.MemoryPropertyDeviceLocalBit)
	if !ok {
		return 0, fmt.Errorf("%w: type bits %032b", ErrNoMemoryType, typeBits)
	}
	return index, nil
}

func newAttachment(device *Device, format vk.Format, samples vk.SampleCountFlagBits,
	usage vk.ImageUsageFlags, aspect vk.ImageAspectFlags, extent vk.Extent2D) (*Attachment, error) {

	a := &Attachment{
		Format:  format,
		Samples: samples,
		device:  device.Logical,
	}
	err := vk.Error(vk.CreateImage(device.Logical, &vk.ImageCreateInfo{
		SType:     vk.StructureTypeImageCreateInfo,
		ImageType: vk.ImageType2d,
		Format:    format,
		Extent: vk.Extent3D{
			Width:  extent.Width,
			Height: extent.Height,
			Depth:  1,
		},
		MipLevels:   1,
		ArrayLayers: 1,
		Samples:     samples,
		Tiling:      vk.ImageTilingOptimal,
		Usage:       usage,
	}, nil, &a.Image))
	if err != nil {
		return nil, fmt.Errorf("vkCreateImage failed with %w", err)
	}

	var memReqs vk.MemoryRequirements
	vk.GetImageMemoryRequirements(device.Logical, a.Image, &memReqs)
	memReqs.Deref()

	var memProps vk.PhysicalDeviceMemoryProperties
	vk.GetPhysicalDeviceMemoryProperties(device.Physical, &memProps)
	memProps.Deref()
	memTypeIndex, err := memoryTypeIndex(memProps, memReqs.MemoryTypeBits)
	if err != nil {
		a.Destroy()
		return nil, err
	}

	err = vk.Error(vk.AllocateMemory(device.Logical, &vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		AllocationSize:  memReqs.Size,
		MemoryTypeIndex: memTypeIndex,
	}, nil, &a.Mem))
	if err != nil {
		a.Destroy()
		return nil, fmt.Errorf("vkAllocateMemory failed with %w", err)
	}
	err = vk.Error(vk.BindImageMemory(device.Logical, a.Image, a.Mem, 0))
	if err != nil {
		a.Destroy()
		return nil, fmt.Errorf("vkBindImageMemory failed with %w", err)
	}

	err = vk.Error(vk.CreateImageView(device.Logical, &vk.ImageViewCreateInfo{
		SType:    vk.StructureTypeImageViewCreateInfo,
		Image:    a.Image,
		ViewType: vk.ImageViewType2d,
		Format:   format,
		SubresourceRange: vk.ImageSubresourceRange{
			AspectMask: aspect,
			LevelCount: 1,
			LayerCount: 1,
		},
	}, nil, &a.View))
	if err != nil {
		a.Destroy()
		return nil, fmt.Errorf("vkCreateImageView failed with %w", err)
	}
	return a, nil
}

// ViewOrNull is the attachment's view, or a null view for a nil attachment.
func (a *Attachment) ViewOrNull() vk.ImageView {
	if a == nil {
		return vk.NullImageView
	}
	return a.View
}

func (a *Attachment) Destroy() {
	if a == nil {
		return
	}
	if a.View != vk.NullImageView {
		vk.DestroyImageView(a.device, a.View, nil)
		a.View = vk.NullImageView
	}
	if a.Image != vk.NullImage {
		vk.DestroyImage(a.device, a.Image, nil)
		a.Image = vk.NullImage
	}
	if a.Mem != vk.NullDeviceMemory {
		vk.FreeMemory(a.device, a.Mem, nil)
		a.Mem = vk.NullDeviceMemory
	}
}
