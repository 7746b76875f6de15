package selection

import (
	"errors"

	as "github.com/vulkan-go/asche"
	vk "github.com/vulkan-go/vulkan"
)

var ErrInadequateSupport = errors.New("surface reports no formats or present modes")

type SwapchainSupport struct {
	Capabilities vk.SurfaceCapabilities
	Formats      []vk.SurfaceFormat
	PresentModes []vk.PresentMode
}

func (s SwapchainSupport) IsAdequate() bool {
	return len(s.Formats) > 0 && len(s.PresentModes) > 0
}

// SwapchainParams is the negotiated request handed to vkCreateSwapchainKHR.
type SwapchainParams struct {
	Format       vk.SurfaceFormat
	PresentMode  vk.PresentMode
	Extent       vk.Extent2D
	ImageCount   uint32
	PreTransform vk.SurfaceTransformFlagBits
}

func (p SwapchainParams) Dimensions() *as.SwapchainDimensions {
	return &as.SwapchainDimensions{
		Width:  p.Extent.Width,
		Height: p.Extent.Height,
		Format: p.Format.Format,
	}
}

// ChooseSurfaceFormat prefers 8-bit BGRA sRGB with a nonlinear sRGB color
// space and falls back to the first advertised format. An empty list yields
// the zero format, which Negotiate never lets through.
func ChooseSurfaceFormat(formats []vk.SurfaceFormat) vk.SurfaceFormat {
	if len(formats) == 0 {
		return vk.SurfaceFormat{}
	}
	for _, f := range formats {
		if f.Format == vk.FormatB8g8r8a8Srgb && f.ColorSpace == vk.ColorSpaceSrgbNonlinear {
			return f
		}
	}
	return formats[0]
}

// ChoosePresentMode prefers mailbox. FIFO is always available.
func ChoosePresentMode(modes []vk.PresentMode) vk.PresentMode {
	for _, m := range modes {
		if m == vk.PresentModeMailbox {
			return m
		}
	}
	return vk.PresentModeFifo
}

// ChooseExtent returns the surface's fixed extent, or the framebuffer size
// clamped to the advertised bounds when the surface leaves it to us.
func ChooseExtent(caps vk.SurfaceCapabilities, widthPx, heightPx int) vk.Extent2D {
	if caps.CurrentExtent.Width != vk.MaxUint32 {
		return caps.CurrentExtent
	}
	return vk.Extent2D{
		Width:  clamp(widthPx, caps.MinImageExtent.Width, caps.MaxImageExtent.Width),
		Height: clamp(heightPx, caps.MinImageExtent.Height, caps.MaxImageExtent.Height),
	}
}

// ChooseImageCount asks for one image over the minimum. A maximum of 0
// means no upper bound.
func ChooseImageCount(caps vk.SurfaceCapabilities) uint32 {
	count := caps.MinImageCount + 1
	if caps.MaxImageCount > 0 && count > caps.MaxImageCount {
		count = caps.MaxImageCount
	}
	return count
}

func Negotiate(support SwapchainSupport, widthPx, heightPx int) (SwapchainParams, error) {
	if !support.IsAdequate() {
		return SwapchainParams{}, ErrInadequateSupport
	}
	return SwapchainParams{
		Format:       ChooseSurfaceFormat(support.Formats),
		PresentMode:  ChoosePresentMode(support.PresentModes),
		Extent:       ChooseExtent(support.Capabilities, widthPx, heightPx),
		ImageCount:   ChooseImageCount(support.Capabilities),
		PreTransform: support.Capabilities.CurrentTransform,
	}, nil
}

func clamp(v int, lo, hi uint32) uint32 {
	if v < 0 {
		v = 0
	}
	u := uint64(v)
	if u < uint64(lo) {
		return lo
	}
	if u > uint64(hi) {
		return hi
	}
	return uint32(u)
}
