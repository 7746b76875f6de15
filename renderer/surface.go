package renderer

import (
	"fmt"

	vk "github.com/vulkan-go/vulkan"
)

// Window is what the renderer needs from the windowing system.
type Window interface {
	RequiredInstanceExtensions() []string
	// CreateSurface returns a presentation surface for the window; on macOS
	// this is backed by the window's Metal layer.
	CreateSurface(instance vk.Instance) (vk.Surface, error)
	// FramebufferSize is the drawable size in pixels, which can differ from
	// the window size on high-DPI displays.
	FramebufferSize() (width, height int)
}

type Surface struct {
	Handle   vk.Surface
	instance vk.Instance
}

func NewSurface(instance *Instance, window Window) (*Surface, error) {
	surface, err := window.CreateSurface(instance.Handle)
	if err != nil {
		return nil, fmt.Errorf("vkCreateWindowSurface failed with %w", err)
	}
	if surface == vk.NullSurface {
		return nil, fmt.Errorf("vkCreateWindowSurface returned a null surface")
	}
	return &Surface{
		Handle:   surface,
		instance: instance.Handle,
	}, nil
}

func (s *Surface) Destroy() {
	if s == nil || s.Handle == vk.NullSurface {
		return
	}
	vk.DestroySurface(s.instance, s.Handle, nil)
	s.Handle = vk.NullSurface
}
