package renderer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	vk "github.com/vulkan-go/vulkan"
)

func TestSafeStrings(t *testing.T) {
	assert.Equal(t, []string{"a\x00", "b\x00"}, safeStrings([]string{"a", "b\x00"}))
	assert.Empty(t, safeStrings(nil))
	assert.Equal(t, "main\x00", safeString("main"))
}

func TestAppendUnique(t *testing.T) {
	got := appendUnique([]string{"VK_KHR_surface\x00", "VK_EXT_metal_surface"},
		"VK_KHR_surface", "VK_EXT_debug_report", "VK_EXT_debug_report")
	assert.Equal(t, []string{"VK_KHR_surface", "VK_EXT_metal_surface", "VK_EXT_debug_report"}, got)
}

func TestRequiredInstanceExtensions(t *testing.T) {
	window := []string{"VK_KHR_surface", "VK_KHR_xcb_surface"}

	plain := RequiredInstanceExtensions(window, false)
	assert.Subset(t, plain, window)
	assert.Subset(t, plain, portabilityInstanceExtensions)
	assert.NotContains(t, plain, debugReportExtension)

	validated := RequiredInstanceExtensions(window, true)
	assert.Subset(t, validated, plain)
	assert.Contains(t, validated, debugReportExtension)
	assert.Contains(t, validated, "VK_KHR_surface")
	assert.Equal(t, window, validated[:len(window)], "window extensions keep their order")
}

func TestValidationOptionsActiveLayers(t *testing.T) {
	layers := []string{"VK_LAYER_KHRONOS_validation"}
	assert.Equal(t, layers, ValidationOptions{Enabled: true, Layers: layers}.ActiveLayers())
	assert.Nil(t, ValidationOptions{Enabled: false, Layers: layers}.ActiveLayers())
}

func TestCheckValidationLayers(t *testing.T) {
	available := []string{"VK_LAYER_KHRONOS_validation", "VK_LAYER_LUNARG_api_dump"}
	require.NoError(t, CheckValidationLayers([]string{"VK_LAYER_KHRONOS_validation"}, available))
	require.NoError(t, CheckValidationLayers(nil, nil))

	err := CheckValidationLayers([]string{"VK_LAYER_KHRONOS_validation", "VK_LAYER_missing"}, available)
	require.ErrorIs(t, err, ErrValidationLayersUnavailable)
	assert.Contains(t, err.Error(), "VK_LAYER_missing")
}

func TestCheckInstanceExtensions(t *testing.T) {
	available := []string{"VK_KHR_surface", "VK_EXT_metal_surface"}
	require.NoError(t, CheckInstanceExtensions([]string{"VK_EXT_metal_surface"}, available))

	err := CheckInstanceExtensions([]string{"VK_KHR_surface", "VK_EXT_debug_report", "VK_KHR_portability_enumeration"}, available)
	require.ErrorIs(t, err, ErrExtensionsUnsupported)
	assert.Contains(t, err.Error(), "VK_EXT_debug_report")
	assert.Contains(t, err.Error(), "VK_KHR_portability_enumeration")
	assert.NotContains(t, err.Error(), "VK_KHR_surface")
}

func TestDeviceExtensions(t *testing.T) {
	exts := DeviceExtensions([]string{"VK_KHR_swapchain"})
	assert.Equal(t, "VK_KHR_swapchain", exts[0])
	assert.Subset(t, exts, portabilityDeviceExtensions())
}

func TestEnumerate(t *testing.T) {
	devices := []uint32{7, 8, 9}
	var calls int
	list, err := enumerate("vkEnumerateThings", func(count *uint32, out []uint32) vk.Result {
		calls++
		if out == nil {
			*count = uint32(len(devices))
			return vk.Success
		}
		*count = uint32(copy(out, devices))
		return vk.Success
	})
	require.NoError(t, err)
	assert.Equal(t, devices, list)
	assert.Equal(t, 2, calls)

	list, err = enumerate("vkEnumerateThings", func(count *uint32, out []uint32) vk.Result {
		require.Nil(t, out, "no fill call for an empty list")
		*count = 0
		return vk.Success
	})
	require.NoError(t, err)
	assert.Nil(t, list)

	_, err = enumerate("vkEnumerateThings", func(count *uint32, out []uint32) vk.Result {
		return vk.ErrorOutOfDate
	})
	assert.ErrorContains(t, err, "vkEnumerateThings failed with")

	list, err = enumerate("vkEnumerateThings", func(count *uint32, out []uint32) vk.Result {
		if out == nil {
			*count = 3
			return vk.Success
		}
		*count = uint32(copy(out, devices[:2]))
		return vk.Success
	})
	require.NoError(t, err)
	assert.Equal(t, []uint32{7, 8}, list, "the fill call may report fewer entries")
}
