package renderer

import (
	"errors"
	"fmt"
	"log/slog"

	vk "github.com/vulkan-go/vulkan"

	"github.com/vulkan-go/tutorial/selection"
)

var (
	ErrFeatureUnsupported     = errors.New("required device feature not supported")
	ErrSampleCountUnsupported = errors.New("sample count not supported for framebuffer attachments")
)

// DeviceExtensions returns the device extensions to require: the
// configured list plus the portability subset where the platform needs it.
func DeviceExtensions(configured []string) []string {
	return appendUnique(configured, portabilityDeviceExtensions()...)
}

// QueryCandidates gathers what each physical device reports for the given
// surface, in enumeration order.
func QueryCandidates(instance *Instance, surface *Surface) ([]selection.Candidate, error) {
	gpus, err := getPhysicalDevices(instance.Handle)
	if err != nil {
		return nil, err
	}
	candidates := make([]selection.Candidate, 0, len(gpus))
	for _, gpu := range gpus {
		c, err := queryCandidate(gpu, surface.Handle)
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, c)
	}
	return candidates, nil
}

func queryCandidate(gpu vk.PhysicalDevice, surface vk.Surface) (selection.Candidate, error) {
	var props vk.PhysicalDeviceProperties
	vk.GetPhysicalDeviceProperties(gpu, &props)
	props.Deref()
	props.Limits.Deref()

	c := selection.Candidate{
		Handle:              gpu,
		Name:                vk.ToString(props.DeviceName[:]),
		Type:                props.DeviceType,
		MaxImageDimension2D: props.Limits.MaxImageDimension2D,
		SampleCounts:        props.Limits.FramebufferColorSampleCounts & props.Limits.FramebufferDepthSampleCounts,
	}
	vk.GetPhysicalDeviceFeatures(gpu, &c.Features)
	c.Features.Deref()

	families, err := queryQueueFamilies(gpu, surface)
	if err != nil {
		return c, err
	}
	c.QueueFamilies = families

	if c.Extensions, err = getDeviceExtensions(gpu); err != nil {
		return c, err
	}
	if c.Support, err = querySwapchainSupport(gpu, surface); err != nil {
		return c, err
	}
	return c, nil
}

func queryQueueFamilies(gpu vk.PhysicalDevice, surface vk.Surface) ([]selection.QueueFamily, error) {
	var count uint32
	vk.GetPhysicalDeviceQueueFamilyProperties(gpu, &count, nil)
	props := make([]vk.QueueFamilyProperties, count)
	vk.GetPhysicalDeviceQueueFamilyProperties(gpu, &count, props)

	families := make([]selection.QueueFamily, 0, count)
	for i := range props[:count] {
		props[i].Deref()
		var present vk.Bool32
		err := vk.Error(vk.GetPhysicalDeviceSurfaceSupport(gpu, uint32(i), surface, &present))
		if err != nil {
			return nil, fmt.Errorf("vkGetPhysicalDeviceSurfaceSupportKHR failed with %w", err)
		}
		families = append(families, selection.QueueFamily{
			Flags:          props[i].QueueFlags,
			QueueCount:     props[i].QueueCount,
			PresentSupport: present == vk.True,
		})
	}
	return families, nil
}

func querySwapchainSupport(gpu vk.PhysicalDevice, surface vk.Surface) (selection.SwapchainSupport, error) {
	var support selection.SwapchainSupport
	err := vk.Error(vk.GetPhysicalDeviceSurfaceCapabilities(gpu, surface, &support.Capabilities))
	if err != nil {
		return support, fmt.Errorf("vkGetPhysicalDeviceSurfaceCapabilitiesKHR failed with %w", err)
	}
	support.Capabilities.Deref()
	support.Capabilities.CurrentExtent.Deref()
	support.Capabilities.MinImageExtent.Deref()
	support.Capabilities.MaxImageExtent.Deref()

	var formatCount uint32
	vk.GetPhysicalDeviceSurfaceFormats(gpu, surface, &formatCount, nil)
	if formatCount > 0 {
		support.Formats = make([]vk.SurfaceFormat, formatCount)
		vk.GetPhysicalDeviceSurfaceFormats(gpu, surface, &formatCount, support.Formats)
		support.Formats = support.Formats[:formatCount]
		for i := range support.Formats {
			support.Formats[i].Deref()
		}
	}

	var presentCount uint32
	vk.GetPhysicalDeviceSurfacePresentModes(gpu, surface, &presentCount, nil)
	if presentCount > 0 {
		support.PresentModes = make([]vk.PresentMode, presentCount)
		vk.GetPhysicalDeviceSurfacePresentModes(gpu, surface, &presentCount, support.PresentModes)
		support.PresentModes = support.PresentModes[:presentCount]
	}
	return support, nil
}

// Device is the chosen physical device and the logical device made from it.
type Device struct {
	Physical   vk.PhysicalDevice
	Logical    vk.Device
	Name       string
	Queues     selection.QueueFamilyIndices
	Extensions []string

	GraphicsQueue vk.Queue
	PresentQueue  vk.Queue
}

// PickPhysicalDevice queries every device, logs each evaluation and returns
// the best one together with all evaluations.
func PickPhysicalDevice(instance *Instance, surface *Surface, required []string,
	log *slog.Logger) (selection.Evaluation, []selection.Evaluation, error) {

	candidates, err := QueryCandidates(instance, surface)
	if err != nil {
		return selection.Evaluation{}, nil, err
	}
	best, all, err := selection.PickDevice(candidates, required)
	for _, e := range all {
		log.Debug("device evaluated",
			"name", e.Candidate.Name,
			"type", deviceTypeName(e.Candidate.Type),
			"score", e.Score,
			"reason", e.Reason)
	}
	if err != nil {
		return best, all, err
	}
	log.Info("physical device selected", "name", best.Candidate.Name, "score", best.Score)
	return best, all, nil
}

func queueCreateInfos(queues selection.QueueFamilyIndices) []vk.DeviceQueueCreateInfo {
	var infos []vk.DeviceQueueCreateInfo
	for _, family := range queues.Unique() {
		infos = append(infos, vk.DeviceQueueCreateInfo{
			SType:            vk.StructureTypeDeviceQueueCreateInfo,
			QueueFamilyIndex: family,
			QueueCount:       1,
			PQueuePriorities: []float32{1.0},
		})
	}
	return infos
}

// EnableFeatures returns the feature set with exactly the named features
// switched on, failing when the device does not support one of them.
func EnableFeatures(required []Feature, supported vk.PhysicalDeviceFeatures) (vk.PhysicalDeviceFeatures, error) {
	var enabled vk.PhysicalDeviceFeatures
	var missing []Feature
	for _, f := range required {
		var have bool
		switch f {
		case FeatureSampleRateShading:
			have = supported.SampleRateShading == vk.True
			enabled.SampleRateShading = vk.True
		case FeatureFillModeNonSolid:
			have = supported.FillModeNonSolid == vk.True
			enabled.FillModeNonSolid = vk.True
		}
		if !have {
			missing = append(missing, f)
		}
	}
	if len(missing) > 0 {
		return vk.PhysicalDeviceFeatures{}, fmt.Errorf("%w: %v", ErrFeatureUnsupported, missing)
	}
	return enabled, nil
}

// CheckSampleCount fails unless the device can render samples into both
// color and depth attachments.
func CheckSampleCount(samples vk.SampleCountFlagBits, supported vk.SampleCountFlags) error {
	if vk.SampleCountFlags(samples)&supported == 0 {
		return fmt.Errorf("%w: %d samples", ErrSampleCountUnsupported, samples)
	}
	return nil
}

// NewDevice creates the logical device for a chosen physical device.
// Validation layers are repeated at device level for older loaders.
func NewDevice(chosen selection.Evaluation, extensions, layers []string,
	features vk.PhysicalDeviceFeatures, log *slog.Logger) (*Device, error) {
	queueInfos := queueCreateInfos(chosen.Queues)
	deviceCreateInfo := &vk.DeviceCreateInfo{
		SType:                   vk.StructureTypeDeviceCreateInfo,
		QueueCreateInfoCount:    uint32(len(queueInfos)),
		PQueueCreateInfos:       queueInfos,
		EnabledExtensionCount:   uint32(len(extensions)),
		PpEnabledExtensionNames: safeStrings(extensions),
		EnabledLayerCount:       uint32(len(layers)),
		PpEnabledLayerNames:     safeStrings(layers),
		PEnabledFeatures:        []vk.PhysicalDeviceFeatures{features},
	}
	d := &Device{
		Physical:   chosen.Candidate.Handle,
		Name:       chosen.Candidate.Name,
		Queues:     chosen.Queues,
		Extensions: extensions,
	}
	err := vk.Error(vk.CreateDevice(d.Physical, deviceCreateInfo, nil, &d.Logical))
	if err != nil {
		err = fmt.Errorf("vkCreateDevice failed with %w", err)
		return nil, err
	}
	vk.GetDeviceQueue(d.Logical, d.Queues.Graphics, 0, &d.GraphicsQueue)
	vk.GetDeviceQueue(d.Logical, d.Queues.Present, 0, &d.PresentQueue)
	log.Info("logical device created",
		"graphics_family", d.Queues.Graphics,
		"present_family", d.Queues.Present,
		"extensions", extensions)
	return d, nil
}

func (d *Device) Destroy() {
	if d == nil || d.Logical == nil {
		return
	}
	vk.DestroyDevice(d.Logical, nil)
	d.Logical = nil
}
