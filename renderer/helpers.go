package renderer

import (
	"fmt"
	"log/slog"
	"strings"

	vk "github.com/vulkan-go/vulkan"
)

// check logs a failed result as a warning and reports whether it failed.
func check(log *slog.Logger, ret vk.Result, name string) bool {
	if err := vk.Error(ret); err != nil {
		log.Warn(name+" failed", "err", err)
		return true
	}
	return false
}

func vkErr(ret vk.Result, name string) error {
	if err := vk.Error(ret); err != nil {
		return fmt.Errorf("%s failed with %w", name, err)
	}
	return nil
}

// safeStrings returns a copy of list with every entry NUL-terminated, the
// form the binding expects for name arrays.
func safeStrings(list []string) []string {
	out := make([]string, 0, len(list))
	for _, s := range list {
		out = append(out, safeString(s))
	}
	return out
}

func safeString(s string) string {
	if strings.HasSuffix(s, "\x00") {
		return s
	}
	return s + "\x00"
}

// appendUnique appends the names of extra not already in list.
func appendUnique(list []string, extra ...string) []string {
	seen := make(map[string]struct{}, len(list)+len(extra))
	out := make([]string, 0, len(list)+len(extra))
	for _, s := range append(append([]string{}, list...), extra...) {
		s = strings.TrimSuffix(s, "\x00")
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

// enumerate runs the count-then-fill pattern of the vkEnumerate* and
// vkGet*s entry points.
func enumerate[T any](name string, call func(count *uint32, out []T) vk.Result) ([]T, error) {
	var count uint32
	if err := vkErr(call(&count, nil), name); err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, nil
	}
	list := make([]T, count)
	if err := vkErr(call(&count, list), name); err != nil {
		return nil, err
	}
	return list[:count], nil
}

func getPhysicalDevices(instance vk.Instance) ([]vk.PhysicalDevice, error) {
	return enumerate("vkEnumeratePhysicalDevices", func(count *uint32, out []vk.PhysicalDevice) vk.Result {
		return vk.EnumeratePhysicalDevices(instance, count, out)
	})
}

func layerNames(layers []vk.LayerProperties, err error) ([]string, error) {
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(layers))
	for i := range layers {
		layers[i].Deref()
		names = append(names, vk.ToString(layers[i].LayerName[:]))
	}
	return names, nil
}

func extensionNames(exts []vk.ExtensionProperties, err error) ([]string, error) {
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(exts))
	for i := range exts {
		exts[i].Deref()
		names = append(names, vk.ToString(exts[i].ExtensionName[:]))
	}
	return names, nil
}

func getInstanceLayers() ([]string, error) {
	return layerNames(enumerate("vkEnumerateInstanceLayerProperties", vk.EnumerateInstanceLayerProperties))
}

func getDeviceLayers(gpu vk.PhysicalDevice) ([]string, error) {
	return layerNames(enumerate("vkEnumerateDeviceLayerProperties", func(count *uint32, out []vk.LayerProperties) vk.Result {
		return vk.EnumerateDeviceLayerProperties(gpu, count, out)
	}))
}

func getInstanceExtensions() ([]string, error) {
	return extensionNames(enumerate("vkEnumerateInstanceExtensionProperties", func(count *uint32, out []vk.ExtensionProperties) vk.Result {
		return vk.EnumerateInstanceExtensionProperties("", count, out)
	}))
}

func getDeviceExtensions(gpu vk.PhysicalDevice) ([]string, error) {
	return extensionNames(enumerate("vkEnumerateDeviceExtensionProperties", func(count *uint32, out []vk.ExtensionProperties) vk.Result {
		return vk.EnumerateDeviceExtensionProperties(gpu, "", count, out)
	}))
}

var deviceTypeNames = map[vk.PhysicalDeviceType]string{
	vk.PhysicalDeviceTypeOther:         "Other",
	vk.PhysicalDeviceTypeIntegratedGpu: "Integrated GPU",
	vk.PhysicalDeviceTypeDiscreteGpu:   "Discrete GPU",
	vk.PhysicalDeviceTypeVirtualGpu:    "Virtual GPU",
	vk.PhysicalDeviceTypeCpu:           "CPU",
}

func deviceTypeName(t vk.PhysicalDeviceType) string {
	if name, ok := deviceTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("Unknown (%d)", t)
}
