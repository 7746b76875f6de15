package renderer

import (
	"errors"
	"fmt"
	"log/slog"

	vk "github.com/vulkan-go/vulkan"

	"github.com/vulkan-go/tutorial/selection"
)

var (
	ErrValidationLayersUnavailable = errors.New("validation layers requested, but not available")
	ErrExtensionsUnsupported       = errors.New("required instance extensions not supported")
)

const debugReportExtension = "VK_EXT_debug_report"

type ValidationOptions struct {
	Enabled bool
	Layers  []string
}

// ActiveLayers is the layer list to enable, empty when validation is off.
func (o ValidationOptions) ActiveLayers() []string {
	if !o.Enabled {
		return nil
	}
	return o.Layers
}

type Instance struct {
	Handle     vk.Instance
	Extensions []string
	Layers     []string
}

// RequiredInstanceExtensions combines what the window needs with the
// portability and validation extensions for this platform.
func RequiredInstanceExtensions(windowExtensions []string, validation bool) []string {
	exts := appendUnique(windowExtensions, portabilityInstanceExtensions...)
	if validation {
		exts = appendUnique(exts, debugReportExtension)
		exts = appendUnique(exts, platformSurfaceExtensions...)
	}
	return exts
}

// CheckValidationLayers fails unless every requested layer is available.
func CheckValidationLayers(requested, available []string) error {
	if missing := selection.MissingExtensions(requested, available); len(missing) > 0 {
		return fmt.Errorf("%w: %v", ErrValidationLayersUnavailable, missing)
	}
	return nil
}

func CheckInstanceExtensions(required, available []string) error {
	if missing := selection.MissingExtensions(required, available); len(missing) > 0 {
		return fmt.Errorf("%w: %v", ErrExtensionsUnsupported, missing)
	}
	return nil
}

func NewInstance(appName string, windowExtensions []string, validation ValidationOptions, log *slog.Logger) (*Instance, error) {
	layers := validation.ActiveLayers()
	if len(layers) > 0 {
		available, err := getInstanceLayers()
		if err != nil {
			return nil, err
		}
		if err := CheckValidationLayers(layers, available); err != nil {
			return nil, err
		}
	}

	extensions := RequiredInstanceExtensions(windowExtensions, validation.Enabled)
	available, err := getInstanceExtensions()
	if err != nil {
		return nil, err
	}
	if err := CheckInstanceExtensions(extensions, available); err != nil {
		return nil, err
	}
	log.Debug("instance extensions", "required", extensions, "available", len(available))

	appInfo := &vk.ApplicationInfo{
		SType:              vk.StructureTypeApplicationInfo,
		ApiVersion:         vk.MakeVersion(1, 0, 0),
		ApplicationVersion: vk.MakeVersion(1, 0, 0),
		PApplicationName:   safeString(appName),
		PEngineName:        "No Engine\x00",
		EngineVersion:      vk.MakeVersion(1, 0, 0),
	}
	instanceCreateInfo := &vk.InstanceCreateInfo{
		SType:                   vk.StructureTypeInstanceCreateInfo,
		Flags:                   portabilityCreateFlags,
		PApplicationInfo:        appInfo,
		EnabledExtensionCount:   uint32(len(extensions)),
		PpEnabledExtensionNames: safeStrings(extensions),
		EnabledLayerCount:       uint32(len(layers)),
		PpEnabledLayerNames:     safeStrings(layers),
	}
	v := &Instance{
		Extensions: extensions,
		Layers:     layers,
	}
	err = vk.Error(vk.CreateInstance(instanceCreateInfo, nil, &v.Handle))
	if err != nil {
		err = fmt.Errorf("vkCreateInstance failed with %w", err)
		return nil, err
	}
	if err := vk.InitInstance(v.Handle); err != nil {
		vk.DestroyInstance(v.Handle, nil)
		return nil, fmt.Errorf("vk.InitInstance failed with %w", err)
	}
	log.Info("instance created", "app", appName, "extensions", len(extensions), "layers", layers)
	return v, nil
}

func (v *Instance) Destroy() {
	if v == nil || v.Handle == nil {
		return
	}
	vk.DestroyInstance(v.Handle, nil)
	v.Handle = nil
}
