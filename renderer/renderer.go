package renderer

import (
	"fmt"
	"log/slog"

	vk "github.com/vulkan-go/vulkan"

	"github.com/vulkan-go/tutorial/selection"
)

type Options struct {
	AppName          string
	Validation       ValidationOptions
	DeviceExtensions []string
	VertexShader     string
	FragmentShader   string
	Preset           string
	Samples          int
	// DepthFormat names the depth attachment format, empty for none.
	DepthFormat string
}

// Renderer owns every Vulkan object created during start-up. Init builds
// them in dependency order and Destroy releases them in reverse.
type Renderer struct {
	opts Options
	log  *slog.Logger

	instance     *Instance
	debug        *DebugReporter
	surface      *Surface
	device       *Device
	swapchain    *Swapchain
	color        *Attachment
	depth        *Attachment
	renderPass   *RenderPass
	pipeline     *Pipeline
	framebuffers *Framebuffers

	evaluations []selection.Evaluation
	chosen      int
}

func New(opts Options, log *slog.Logger) *Renderer {
	return &Renderer{
		opts:   opts,
		log:    log,
		chosen: -1,
	}
}

// Init brings up Vulkan against the window. On failure everything created so
// far stays owned by r and is released by Destroy.
func (r *Renderer) Init(window Window) error {
	depthFormat, err := ParseDepthFormat(r.opts.DepthFormat)
	if err != nil {
		return err
	}
	// Features and sample count do not depend on the extent, so the preset
	// is built once up front to size the device against it.
	wanted, err := PresetConfig(r.opts.Preset, vk.Extent2D{}, r.opts.Samples)
	if err != nil {
		return err
	}

	r.instance, err = NewInstance(r.opts.AppName, window.RequiredInstanceExtensions(), r.opts.Validation, r.log)
	if err != nil {
		return err
	}
	if r.opts.Validation.Enabled {
		r.debug, err = NewDebugReporter(r.instance, r.log)
		if err != nil {
			return err
		}
	}
	r.surface, err = NewSurface(r.instance, window)
	if err != nil {
		return err
	}

	extensions := DeviceExtensions(r.opts.DeviceExtensions)
	chosen, all, err := PickPhysicalDevice(r.instance, r.surface, extensions, r.log)
	r.evaluations = all
	if err != nil {
		return err
	}
	r.chosen = chosen.Index
	features, err := EnableFeatures(wanted.RequiredFeatures(), chosen.Candidate.Features)
	if err != nil {
		return fmt.Errorf("preset %q on %s: %w", r.opts.Preset, chosen.Candidate.Name, err)
	}
	if err := CheckSampleCount(wanted.Samples, chosen.Candidate.SampleCounts); err != nil {
		return fmt.Errorf("preset %q on %s: %w", r.opts.Preset, chosen.Candidate.Name, err)
	}
	r.device, err = NewDevice(chosen, extensions, r.instance.Layers, features, r.log)
	if err != nil {
		return err
	}

	widthPx, heightPx := window.FramebufferSize()
	r.swapchain, err = NewSwapchain(r.device, r.surface, widthPx, heightPx, r.log)
	if err != nil {
		return err
	}
	extent := r.swapchain.Extent()

	config, err := PresetConfig(r.opts.Preset, extent, r.opts.Samples)
	if err != nil {
		return err
	}
	if config.Samples > vk.SampleCount1Bit {
		r.color, err = NewColorTarget(r.device, r.swapchain.Format(), config.Samples, extent)
		if err != nil {
			return err
		}
	}
	if depthFormat != vk.FormatUndefined {
		r.depth, err = NewDepth(r.device, depthFormat, config.Samples, extent)
		if err != nil {
			return err
		}
	}
	r.renderPass, err = NewRenderPass(r.device, r.swapchain.Format(), depthFormat, config.Samples)
	if err != nil {
		return err
	}

	shader, err := LoadShader(r.device, r.opts.VertexShader, r.opts.FragmentShader)
	if err != nil {
		return err
	}
	r.pipeline, err = NewPipeline(r.device, config, shader, r.renderPass)
	shader.Destroy()
	if err != nil {
		return err
	}
	r.log.Info("graphics pipeline created", "preset", r.opts.Preset, "samples", config.Samples)

	r.framebuffers, err = NewFramebuffers(r.device, r.renderPass, r.swapchain.Views,
		r.color.ViewOrNull(), r.depth.ViewOrNull(), extent)
	if err != nil {
		return err
	}
	r.log.Info("framebuffers created", "count", len(r.framebuffers.Handles),
		"extent", fmt.Sprintf("%dx%d", extent.Width, extent.Height))
	return nil
}

// Report collects what Init found. Fields for stages that did not complete
// are left empty.
func (r *Renderer) Report() *Report {
	rep := &Report{
		Evaluations: r.evaluations,
		Selected:    r.chosen,
	}
	if r.instance != nil {
		rep.InstanceExtensions = r.instance.Extensions
		rep.InstanceLayers = r.instance.Layers
	}
	if r.device != nil {
		rep.DeviceExtensions = r.device.Extensions
		layers, err := getDeviceLayers(r.device.Physical)
		if err != nil {
			r.log.Warn("cannot list device layers", "err", err)
		}
		rep.DeviceLayers = layers
	}
	if r.swapchain != nil {
		rep.Swapchain = r.swapchain.Params
	}
	return rep
}

func (r *Renderer) Destroy() {
	if r.device != nil && r.device.Logical != nil {
		check(r.log, vk.DeviceWaitIdle(r.device.Logical), "vkDeviceWaitIdle")
	}
	r.framebuffers.Destroy()
	r.framebuffers = nil
	r.swapchain.Destroy()
	r.swapchain = nil
	r.pipeline.Destroy()
	r.pipeline = nil
	r.renderPass.Destroy()
	r.renderPass = nil
	r.depth.Destroy()
	r.depth = nil
	r.color.Destroy()
	r.color = nil
	r.device.Destroy()
	r.device = nil
	r.surface.Destroy()
	r.surface = nil
	r.debug.Destroy()
	r.debug = nil
	r.instance.Destroy()
	r.instance = nil
	r.log.Debug("renderer destroyed")
}
