//go:build darwin

package renderer

import (
	"runtime"

	vk "github.com/vulkan-go/vulkan"
)

// VK_INSTANCE_CREATE_ENUMERATE_PORTABILITY_BIT_KHR, newer than the binding.
const instanceCreateEnumeratePortability vk.InstanceCreateFlags = 0x00000001

// MoltenVK is only listed by the loader when the instance opts into
// portability enumeration.
var portabilityInstanceExtensions = []string{
	"VK_KHR_portability_enumeration",
	"VK_KHR_get_physical_device_properties2",
}

const portabilityCreateFlags = instanceCreateEnumeratePortability

// Surface extensions requested alongside validation, matching what GLFW
// asks for on macOS.
var platformSurfaceExtensions = []string{
	"VK_KHR_surface",
	"VK_EXT_metal_surface",
}

func portabilityDeviceExtensions() []string {
	if runtime.GOARCH == "arm64" {
		return []string{"VK_KHR_portability_subset"}
	}
	return nil
}
