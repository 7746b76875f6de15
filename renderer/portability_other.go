//go:build !darwin

package renderer

import vk "github.com/vulkan-go/vulkan"

var portabilityInstanceExtensions []string

const portabilityCreateFlags vk.InstanceCreateFlags = 0

var platformSurfaceExtensions = []string{
	"VK_KHR_surface",
}

func portabilityDeviceExtensions() []string {
	return nil
}
