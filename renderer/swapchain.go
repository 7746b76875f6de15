package renderer

import (
	"fmt"
	"log/slog"

	vk "github.com/vulkan-go/vulkan"

	"github.com/vulkan-go/tutorial/selection"
)

type Swapchain struct {
	Handle vk.Swapchain
	Params selection.SwapchainParams
	Images []vk.Image
	Views  []vk.ImageView

	device vk.Device
}

// swapchainCreateInfo fills in the create info for negotiated parameters.
// Images are shared between the graphics and present families when those
// differ, otherwise owned exclusively.
func swapchainCreateInfo(surface vk.Surface, params selection.SwapchainParams,
	queues selection.QueueFamilyIndices) vk.SwapchainCreateInfo {

	info := vk.SwapchainCreateInfo{
		SType:            vk.StructureTypeSwapchainCreateInfo,
		Surface:          surface,
		MinImageCount:    params.ImageCount,
		ImageFormat:      params.Format.Format,
		ImageColorSpace:  params.Format.ColorSpace,
		ImageExtent:      params.Extent,
		ImageArrayLayers: 1,
		ImageUsage:       vk.ImageUsageFlags(vk.ImageUsageColorAttachmentBit),
		ImageSharingMode: vk.SharingModeExclusive,
		PreTransform:     params.PreTransform,
		CompositeAlpha:   vk.CompositeAlphaOpaqueBit,
		PresentMode:      params.PresentMode,
		Clipped:          vk.True,
		OldSwapchain:     vk.NullSwapchain,
	}
	if !queues.Shared() {
		families := queues.Unique()
		info.ImageSharingMode = vk.SharingModeConcurrent
		info.QueueFamilyIndexCount = uint32(len(families))
		info.PQueueFamilyIndices = families
	}
	return info
}

// NewSwapchain negotiates parameters against the surface and the window's
// framebuffer size, then creates the swapchain and one view per image.
func NewSwapchain(device *Device, surface *Surface, widthPx, heightPx int, log *slog.Logger) (*Swapchain, error) {
	support, err := querySwapchainSupport(device.Physical, surface.Handle)
	if err != nil {
		return nil, err
	}
	params, err := selection.Negotiate(support, widthPx, heightPx)
	if err != nil {
		return nil, err
	}
	log.Info("swapchain negotiated",
		"dimensions", fmt.Sprintf("%+v", *params.Dimensions()),
		"color_space", params.Format.ColorSpace,
		"present_mode", params.PresentMode,
		"images", params.ImageCount)

	s := &Swapchain{
		Params: params,
		device: device.Logical,
	}
	createInfo := swapchainCreateInfo(surface.Handle, params, device.Queues)
	err = vk.Error(vk.CreateSwapchain(device.Logical, &createInfo, nil, &s.Handle))
	if err != nil {
		err = fmt.Errorf("vkCreateSwapchainKHR failed with %w", err)
		return nil, err
	}

	var imageCount uint32
	err = vk.Error(vk.GetSwapchainImages(device.Logical, s.Handle, &imageCount, nil))
	if err != nil {
		s.Destroy()
		return nil, fmt.Errorf("vkGetSwapchainImagesKHR failed with %w", err)
	}
	s.Images = make([]vk.Image, imageCount)
	err = vk.Error(vk.GetSwapchainImages(device.Logical, s.Handle, &imageCount, s.Images))
	if err != nil {
		s.Destroy()
		return nil, fmt.Errorf("vkGetSwapchainImagesKHR failed with %w", err)
	}
	s.Images = s.Images[:imageCount]

	if err := s.createImageViews(); err != nil {
		s.Destroy()
		return nil, err
	}
	log.Debug("swapchain images ready", "count", len(s.Images))
	return s, nil
}

func (s *Swapchain) createImageViews() error {
	s.Views = make([]vk.ImageView, 0, len(s.Images))
	for _, image := range s.Images {
		viewCreateInfo := vk.ImageViewCreateInfo{
			SType:    vk.StructureTypeImageViewCreateInfo,
			Image:    image,
			ViewType: vk.ImageViewType2d,
			Format:   s.Params.Format.Format,
			Components: vk.ComponentMapping{
				R: vk.ComponentSwizzleIdentity,
				G: vk.ComponentSwizzleIdentity,
				B: vk.ComponentSwizzleIdentity,
				A: vk.ComponentSwizzleIdentity,
			},
			SubresourceRange: vk.ImageSubresourceRange{
				AspectMask: vk.ImageAspectFlags(vk.ImageAspectColorBit),
				LevelCount: 1,
				LayerCount: 1,
			},
		}
		var view vk.ImageView
		err := vk.Error(vk.CreateImageView(s.device, &viewCreateInfo, nil, &view))
		if err != nil {
			return fmt.Errorf("vkCreateImageView failed with %w", err)
		}
		s.Views = append(s.Views, view)
	}
	return nil
}

func (s *Swapchain) Extent() vk.Extent2D {
	return s.Params.Extent
}

func (s *Swapchain) Format() vk.Format {
	return s.Params.Format.Format
}

func (s *Swapchain) Destroy() {
	if s == nil {
		return
	}
	for _, view := range s.Views {
		vk.DestroyImageView(s.device, view, nil)
	}
	s.Views = nil
	s.Images = nil
	if s.Handle != vk.NullSwapchain {
		vk.DestroySwapchain(s.device, s.Handle, nil)
		s.Handle = vk.NullSwapchain
	}
}
