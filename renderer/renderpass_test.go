package renderer

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	vk "github.com/vulkan-go/vulkan"
)

func TestParseDepthFormat(t *testing.T) {
	for name, want := range map[string]vk.Format{
		"":                   vk.FormatUndefined,
		"d32_sfloat":         vk.FormatD32Sfloat,
		"D24_UNORM_S8_UINT":  vk.FormatD24UnormS8Uint,
		"d16_unorm":          vk.FormatD16Unorm,
		"d32_sfloat_s8_uint": vk.FormatD32SfloatS8Uint,
	} {
		got, err := ParseDepthFormat(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}
	_, err := ParseDepthFormat("r8g8b8a8")
	assert.Error(t, err)
}

func TestRenderPassCreateInfoColorOnly(t *testing.T) {
	info := renderPassCreateInfo(vk.FormatB8g8r8a8Srgb, vk.FormatUndefined, vk.SampleCount1Bit)
	require.Equal(t, uint32(1), info.AttachmentCount)
	color := info.PAttachments[0]
	assert.Equal(t, vk.FormatB8g8r8a8Srgb, color.Format)
	assert.Equal(t, vk.SampleCount1Bit, color.Samples)
	assert.Equal(t, vk.AttachmentLoadOpClear, color.LoadOp)
	assert.Equal(t, vk.AttachmentStoreOpStore, color.StoreOp)
	assert.Equal(t, vk.ImageLayoutUndefined, color.InitialLayout)
	assert.Equal(t, vk.ImageLayoutPresentSrc, color.FinalLayout)

	require.Equal(t, uint32(1), info.SubpassCount)
	subpass := info.PSubpasses[0]
	assert.Equal(t, vk.PipelineBindPointGraphics, subpass.PipelineBindPoint)
	assert.Equal(t, uint32(1), subpass.ColorAttachmentCount)
	assert.Equal(t, vk.ImageLayoutColorAttachmentOptimal, subpass.PColorAttachments[0].Layout)
	assert.Nil(t, subpass.PDepthStencilAttachment)
	assert.Empty(t, subpass.PResolveAttachments)
}

func TestRenderPassCreateInfoWithDepth(t *testing.T) {
	info := renderPassCreateInfo(vk.FormatB8g8r8a8Srgb, vk.FormatD32Sfloat, vk.SampleCount1Bit)
	require.Equal(t, uint32(2), info.AttachmentCount)
	depth := info.PAttachments[1]
	assert.Equal(t, vk.FormatD32Sfloat, depth.Format)
	assert.Equal(t, vk.AttachmentLoadOpClear, depth.LoadOp)
	assert.Equal(t, vk.AttachmentStoreOpDontCare, depth.StoreOp)
	assert.Equal(t, vk.ImageLayoutDepthStencilAttachmentOptimal, depth.FinalLayout)

	ref := info.PSubpasses[0].PDepthStencilAttachment
	require.NotNil(t, ref)
	assert.Equal(t, uint32(1), ref.Attachment)
	assert.Equal(t, vk.ImageLayoutDepthStencilAttachmentOptimal, ref.Layout)

	r := &RenderPass{DepthFormat: vk.FormatD32Sfloat}
	assert.True(t, r.HasDepth())
	assert.False(t, (&RenderPass{}).HasDepth())
}

func TestRenderPassCreateInfoMultisampled(t *testing.T) {
	info := renderPassCreateInfo(vk.FormatB8g8r8a8Srgb, vk.FormatD32Sfloat, vk.SampleCount4Bit)
	require.Equal(t, uint32(3), info.AttachmentCount)

	color := info.PAttachments[0]
	assert.Equal(t, vk.SampleCount4Bit, color.Samples)
	assert.Equal(t, vk.AttachmentStoreOpDontCare, color.StoreOp)
	assert.Equal(t, vk.ImageLayoutColorAttachmentOptimal, color.FinalLayout)
	assert.Equal(t, vk.SampleCount4Bit, info.PAttachments[1].Samples)

	resolve := info.PAttachments[2]
	assert.Equal(t, vk.FormatB8g8r8a8Srgb, resolve.Format)
	assert.Equal(t, vk.SampleCount1Bit, resolve.Samples)
	assert.Equal(t, vk.AttachmentStoreOpStore, resolve.StoreOp)
	assert.Equal(t, vk.ImageLayoutPresentSrc, resolve.FinalLayout)

	subpass := info.PSubpasses[0]
	assert.Equal(t, uint32(1), subpass.PDepthStencilAttachment.Attachment)
	require.Len(t, subpass.PResolveAttachments, 1)
	assert.Equal(t, uint32(2), subpass.PResolveAttachments[0].Attachment)

	assert.True(t, (&RenderPass{Samples: vk.SampleCount4Bit}).Multisampled())
	assert.False(t, (&RenderPass{Samples: vk.SampleCount1Bit}).Multisampled())
}

// Every preset must rasterize with the sample count of the attachments its
// subpass writes, and the presented image must stay single-sampled.
func TestPresetSamplesMatchRenderPass(t *testing.T) {
	for _, name := range Presets() {
		for _, samples := range []int{1, 4, 8} {
			for _, depthFormat := range []vk.Format{vk.FormatUndefined, vk.FormatD32Sfloat} {
				config, err := PresetConfig(name, testExtent, samples)
				require.NoError(t, err)
				info := renderPassCreateInfo(vk.FormatB8g8r8a8Srgb, depthFormat, config.Samples)
				pipeline := config.createInfo((&Shader{}).Stages(), vk.NullPipelineLayout, vk.NullRenderPass)
				rasterSamples := pipeline.PMultisampleState.RasterizationSamples

				subpass := info.PSubpasses[0]
				colorRef := subpass.PColorAttachments[0].Attachment
				assert.Equal(t, rasterSamples, info.PAttachments[colorRef].Samples,
					"%s samples=%d color", name, samples)
				if ref := subpass.PDepthStencilAttachment; ref != nil {
					assert.Equal(t, rasterSamples, info.PAttachments[ref.Attachment].Samples,
						"%s samples=%d depth", name, samples)
				}
				presented := colorRef
				if len(subpass.PResolveAttachments) > 0 {
					presented = subpass.PResolveAttachments[0].Attachment
				}
				assert.Equal(t, vk.SampleCount1Bit, info.PAttachments[presented].Samples)
				assert.Equal(t, vk.ImageLayoutPresentSrc, info.PAttachments[presented].FinalLayout)

				views := framebufferAttachments(fakeView(0), colorTargetFor(config), depthViewFor(depthFormat))
				assert.Len(t, views, int(info.AttachmentCount), "%s samples=%d framebuffer", name, samples)
			}
		}
	}
}

var fakeHandles [3]byte

func fakeView(i int) vk.ImageView {
	return vk.ImageView(unsafe.Pointer(&fakeHandles[i]))
}

func colorTargetFor(config PipelineConfig) vk.ImageView {
	if config.Samples > vk.SampleCount1Bit {
		return fakeView(1)
	}
	return vk.NullImageView
}

func depthViewFor(format vk.Format) vk.ImageView {
	if format != vk.FormatUndefined {
		return fakeView(2)
	}
	return vk.NullImageView
}

func TestDepthAspect(t *testing.T) {
	assert.Equal(t, vk.ImageAspectFlags(vk.ImageAspectDepthBit), depthAspect(vk.FormatD32Sfloat))
	assert.Equal(t, vk.ImageAspectFlags(vk.ImageAspectDepthBit|vk.ImageAspectStencilBit),
		depthAspect(vk.FormatD24UnormS8Uint))
}

func TestMemoryTypeIndex(t *testing.T) {
	var props vk.PhysicalDeviceMemoryProperties
	props.MemoryTypeCount = 3
	props.MemoryTypes[0].PropertyFlags = vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit)
	props.MemoryTypes[1].PropertyFlags = vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit)
	props.MemoryTypes[2].PropertyFlags = vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit)

	index, err := memoryTypeIndex(props, 0b111)
	require.NoError(t, err)
	assert.Equal(t, uint32(1), index)

	index, err = memoryTypeIndex(props, 0b100)
	require.NoError(t, err)
	assert.Equal(t, uint32(2), index)

	_, err = memoryTypeIndex(props, 0b001)
	require.ErrorIs(t, err, ErrNoMemoryType)
	assert.ErrorContains(t, err, "type bits")

	_, err = memoryTypeIndex(props, 0)
	assert.ErrorIs(t, err, ErrNoMemoryType)
}

func TestFramebufferAttachments(t *testing.T) {
	swap, color, depth := fakeView(0), fakeView(1), fakeView(2)
	assert.Equal(t, []vk.ImageView{swap}, framebufferAttachments(swap, vk.NullImageView, vk.NullImageView))
	assert.Equal(t, []vk.ImageView{swap, depth}, framebufferAttachments(swap, vk.NullImageView, depth))
	assert.Equal(t, []vk.ImageView{color, swap}, framebufferAttachments(swap, color, vk.NullImageView))
	assert.Equal(t, []vk.ImageView{color, depth, swap}, framebufferAttachments(swap, color, depth))
}

func TestFramebufferCreateInfo(t *testing.T) {
	extent := vk.Extent2D{Width: 1280, Height: 720}
	info := framebufferCreateInfo(vk.NullRenderPass, framebufferAttachments(fakeView(0), vk.NullImageView, fakeView(2)), extent)
	assert.Equal(t, uint32(2), info.AttachmentCount)
	assert.Equal(t, uint32(1280), info.Width)
	assert.Equal(t, uint32(720), info.Height)
	assert.Equal(t, uint32(1), info.Layers)
}

func TestFramebuffersResizeSameExtent(t *testing.T) {
	f := &Framebuffers{Extent: vk.Extent2D{Width: 640, Height: 480}, depthView: fakeView(2)}
	resized, err := f.Resize(nil, vk.NullImageView, vk.NullImageView, vk.Extent2D{Width: 640, Height: 480})
	require.NoError(t, err)
	assert.False(t, resized)
	assert.Equal(t, vk.Extent2D{Width: 640, Height: 480}, f.Extent)
	assert.Equal(t, fakeView(2), f.depthView)
}

func TestFramebuffersResizeReplacesAttachments(t *testing.T) {
	f := &Framebuffers{Extent: vk.Extent2D{Width: 640, Height: 480}, depthView: fakeView(2)}
	resized, err := f.Resize(nil, fakeView(1), fakeView(0), vk.Extent2D{Width: 1024, Height: 768})
	require.NoError(t, err)
	assert.True(t, resized)
	assert.Equal(t, vk.Extent2D{Width: 1024, Height: 768}, f.Extent)
	assert.Equal(t, fakeView(1), f.colorView)
	assert.Equal(t, fakeView(0), f.depthView)
	assert.Empty(t, f.Handles)
}
