package renderer

import (
	"fmt"

	vk "github.com/vulkan-go/vulkan"
)

// Framebuffers holds one framebuffer per swapchain image view. The color
// and depth views are shared by all of them and may be null.
type Framebuffers struct {
	Handles []vk.Framebuffer
	Extent  vk.Extent2D

	device     vk.Device
	renderPass vk.RenderPass
	views      []vk.ImageView
	colorView  vk.ImageView
	depthView  vk.ImageView
}

func NewFramebuffers(device *Device, renderPass *RenderPass, views []vk.ImageView,
	colorView, depthView vk.ImageView, extent vk.Extent2D) (*Framebuffers, error) {

	f := &Framebuffers{
		device:     device.Logical,
		renderPass: renderPass.Handle,
		views:      views,
		colorView:  colorView,
		depthView:  depthView,
	}
	if err := f.create(extent); err != nil {
		return nil, err
	}
	return f, nil
}

// framebufferAttachments orders views the way renderPassCreateInfo orders
// attachments: color target, depth, then the swapchain image as resolve
// target. Without a color target the swapchain image is the color
// attachment.
func framebufferAttachments(view, colorView, depthView vk.ImageView) []vk.ImageView {
	attachments := make([]vk.ImageView, 0, 3)
	if colorView != vk.NullImageView {
		attachments = append(attachments, colorView)
	} else {
		attachments = append(attachments, view)
	}
	if depthView != vk.NullImageView {
		attachments = append(attachments, depthView)
	}
	if colorView != vk.NullImageView {
		attachments = append(attachments, view)
	}
	return attachments
}

func framebufferCreateInfo(renderPass vk.RenderPass, attachments []vk.ImageView, extent vk.Extent2D) vk.FramebufferCreateInfo {
	return vk.FramebufferCreateInfo{
		SType:           vk.StructureTypeFramebufferCreateInfo,
		RenderPass:      renderPass,
		AttachmentCount: uint32(len(attachments)),
		PAttachments:    attachments,
		Width:           extent.Width,
		Height:          extent.Height,
		Layers:          1,
	}
}

func (f *Framebuffers) create(extent vk.Extent2D) error {
	f.Extent = extent
	f.Handles = make([]vk.Framebuffer, 0, len(f.views))
	for _, view := range f.views {
		attachments := framebufferAttachments(view, f.colorView, f.depthView)
		createInfo := framebufferCreateInfo(f.renderPass, attachments, extent)
		var fb vk.Framebuffer
		err := vk.Error(vk.CreateFramebuffer(f.device, &createInfo, nil, &fb))
		if err != nil {
			f.destroy()
			return fmt.Errorf("vkCreateFramebuffer failed with %w", err)
		}
		f.Handles = append(f.Handles, fb)
	}
	return nil
}

// Resize recreates the framebuffers for a new extent. The caller recreates
// the swapchain views and the color and depth attachments at the new
// extent first and passes them in. It does nothing when the extent is
// unchanged.
func (f *Framebuffers) Resize(views []vk.ImageView, colorView, depthView vk.ImageView, extent vk.Extent2D) (bool, error) {
	if extent.Width == f.Extent.Width && extent.Height == f.Extent.Height {
		return false, nil
	}
	f.destroy()
	f.views = views
	f.colorView = colorView
	f.depthView = depthView
	if err := f.create(extent); err != nil {
		return true, err
	}
	return true, nil
}

func (f *Framebuffers) destroy() {
	for _, fb := range f.Handles {
		vk.DestroyFramebuffer(f.device, fb, nil)
	}
	f.Handles = nil
}

func (f *Framebuffers) Destroy() {
	if f == nil {
		return
	}
	f.destroy()
}
