package renderer

import (
	"fmt"

	vk "github.com/vulkan-go/vulkan"
	"github.com/xlab/tablewriter"

	"github.com/vulkan-go/tutorial/selection"
)

// Report is what start-up learned about the system: every evaluated device,
// the negotiated swapchain and the enabled extensions and layers.
type Report struct {
	Evaluations        []selection.Evaluation
	Swapchain          selection.SwapchainParams
	InstanceExtensions []string
	InstanceLayers     []string
	DeviceExtensions   []string
	DeviceLayers       []string

	// Selected is the index of the chosen device in Evaluations, -1 when
	// none was chosen.
	Selected int
}

func presentModeName(mode vk.PresentMode) string {
	switch mode {
	case vk.PresentModeImmediate:
		return "Immediate"
	case vk.PresentModeMailbox:
		return "Mailbox"
	case vk.PresentModeFifo:
		return "FIFO"
	case vk.PresentModeFifoRelaxed:
		return "FIFO relaxed"
	default:
		return fmt.Sprintf("%d", mode)
	}
}

// Render draws the report as a box table.
func (r *Report) Render() string {
	table := tablewriter.CreateTable()
	table.UTF8Box()
	table.AddTitle("VULKAN DEVICES AND SWAPCHAIN")
	addList := func(title string, names []string) {
		if len(names) == 0 {
			return
		}
		table.AddSeparator()
		table.AddRow(title, "")
		for i, name := range names {
			table.AddRow(i+1, name)
		}
	}
	for i, e := range r.Evaluations {
		if i > 0 {
			table.AddSeparator()
		}
		name := e.Candidate.Name
		if i == r.Selected {
			name += " (selected)"
		}
		table.AddRow("Physical Device Name", name)
		table.AddRow("Physical Device Type", deviceTypeName(e.Candidate.Type))
		table.AddRow("Max Image Dimension 2D", e.Candidate.MaxImageDimension2D)
		table.AddRow("Score", e.Score)
		if e.Reason != "" {
			table.AddRow("Rejected", e.Reason)
		}
	}

	if r.Swapchain.ImageCount > 0 {
		p := r.Swapchain
		table.AddSeparator()
		table.AddRow("Surface format", fmt.Sprintf("%d / color space %d", p.Format.Format, p.Format.ColorSpace))
		table.AddRow("Present mode", presentModeName(p.PresentMode))
		table.AddRow("Image size", fmt.Sprintf("%dx%d", p.Extent.Width, p.Extent.Height))
		table.AddRow("Image count", p.ImageCount)
		table.AddRow("Pre-transform", fmt.Sprintf("%02x", p.PreTransform))
	}

	addList("INSTANCE EXTENSIONS", r.InstanceExtensions)
	addList("INSTANCE LAYERS", r.InstanceLayers)
	addList("DEVICE EXTENSIONS", r.DeviceExtensions)
	addList("DEVICE LAYERS", r.DeviceLayers)
	return table.Render()
}
