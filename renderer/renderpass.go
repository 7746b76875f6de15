package renderer

import (
	"fmt"
	"strings"

	vk "github.com/vulkan-go/vulkan"
)

var depthFormats = map[string]vk.Format{
	"":                   vk.FormatUndefined,
	"d16_unorm":          vk.FormatD16Unorm,
	"d32_sfloat":         vk.FormatD32Sfloat,
	"d24_unorm_s8_uint":  vk.FormatD24UnormS8Uint,
	"d32_sfloat_s8_uint": vk.FormatD32SfloatS8Uint,
}

// ParseDepthFormat maps a config name onto a depth format. The empty name
// means no depth attachment.
func ParseDepthFormat(name string) (vk.Format, error) {
	f, ok := depthFormats[strings.ToLower(name)]
	if !ok {
		return vk.FormatUndefined, fmt.Errorf("unknown depth format %q", name)
	}
	return f, nil
}

type RenderPass struct {
	Handle      vk.RenderPass
	ColorFormat vk.Format
	DepthFormat vk.Format
	Samples     vk.SampleCountFlagBits

	device vk.Device
}

// HasDepth reports whether the pass carries a depth attachment.
func (r *RenderPass) HasDepth() bool {
	return r.DepthFormat != vk.FormatUndefined
}

// Multisampled reports whether the pass renders into a multisampled color
// target that is resolved into the swapchain image.
func (r *RenderPass) Multisampled() bool {
	return r.Samples > vk.SampleCount1Bit
}

// renderPassCreateInfo describes a single subpass rendering with the given
// sample count. Attachments are ordered color, depth (unless depthFormat is
// undefined), then the single-sampled resolve target when samples > 1. The
// image ending up ready to present is the color attachment when
// single-sampled and the resolve attachment otherwise.
func renderPassCreateInfo(colorFormat, depthFormat vk.Format, samples vk.SampleCountFlagBits) vk.RenderPassCreateInfo {
	if samples == 0 {
		samples = vk.SampleCount1Bit
	}
	multisampled := samples > vk.SampleCount1Bit

	color := vk.AttachmentDescription{
		Format:         colorFormat,
		Samples:        samples,
		LoadOp:         vk.AttachmentLoadOpClear,
		StoreOp:        vk.AttachmentStoreOpStore,
		StencilLoadOp:  vk.AttachmentLoadOpDontCare,
		StencilStoreOp: vk.AttachmentStoreOpDontCare,
		InitialLayout:  vk.ImageLayoutUndefined,
		FinalLayout:    vk.ImageLayoutPresentSrc,
	}
	if multisampled {
		color.StoreOp = vk.AttachmentStoreOpDontCare
		color.FinalLayout = vk.ImageLayoutColorAttachmentOptimal
	}
	attachments := []vk.AttachmentDescription{color}
	subpass := vk.SubpassDescription{
		PipelineBindPoint:    vk.PipelineBindPointGraphics,
		ColorAttachmentCount: 1,
		PColorAttachments: []vk.AttachmentReference{{
			Attachment: 0,
			Layout:     vk.ImageLayoutColorAttachmentOptimal,
		}},
	}
	if depthFormat != vk.FormatUndefined {
		subpass.PDepthStencilAttachment = &vk.AttachmentReference{
			Attachment: uint32(len(attachments)),
			Layout:     vk.ImageLayoutDepthStencilAttachmentOptimal,
		}
		attachments = append(attachments, vk.AttachmentDescription{
			Format:         depthFormat,
			Samples:        samples,
			LoadOp:         vk.AttachmentLoadOpClear,
			StoreOp:        vk.AttachmentStoreOpDontCare,
			StencilLoadOp:  vk.AttachmentLoadOpDontCare,
			StencilStoreOp: vk.AttachmentStoreOpDontCare,
			InitialLayout:  vk.ImageLayoutUndefined,
			FinalLayout:    vk.ImageLayoutDepthStencilAttachmentOptimal,
		})
	}
	if multisampled {
		subpass.PResolveAttachments = []vk.AttachmentReference{{
			Attachment: uint32(len(attachments)),
			Layout:     vk.ImageLayoutColorAttachmentOptimal,
		}}
		attachments = append(attachments, vk.AttachmentDescription{
			Format:         colorFormat,
			Samples:        vk.SampleCount1Bit,
			LoadOp:         vk.AttachmentLoadOpDontCare,
			StoreOp:        vk.AttachmentStoreOpStore,
			StencilLoadOp:  vk.AttachmentLoadOpDontCare,
			StencilStoreOp: vk.AttachmentStoreOpDontCare,
			InitialLayout:  vk.ImageLayoutUndefined,
			FinalLayout:    vk.ImageLayoutPresentSrc,
		})
	}
	return vk.RenderPassCreateInfo{
		SType:           vk.StructureTypeRenderPassCreateInfo,
		AttachmentCount: uint32(len(attachments)),
		PAttachments:    attachments,
		SubpassCount:    1,
		PSubpasses:      []vk.SubpassDescription{subpass},
	}
}

func NewRenderPass(device *Device, colorFormat, depthFormat vk.Format, samples vk.SampleCountFlagBits) (*RenderPass, error) {
	r := &RenderPass{
		ColorFormat: colorFormat,
		DepthFormat: depthFormat,
		Samples:     samples,
		device:      device.Logical,
	}
	createInfo := renderPassCreateInfo(colorFormat, depthFormat, samples)
	err := vk.Error(vk.CreateRenderPass(device.Logical, &createInfo, nil, &r.Handle))
	if err != nil {
		err = fmt.Errorf("vkCreateRenderPass failed with %w", err)
		return nil, err
	}
	return r, nil
}

func (r *RenderPass) Destroy() {
	if r == nil || r.Handle == vk.NullRenderPass {
		return
	}
	vk.DestroyRenderPass(r.device, r.Handle, nil)
	r.Handle = vk.NullRenderPass
}
