// Package window bridges a GLFW window to the renderer. GLFW creates the
// presentation surface itself, which on macOS is a Metal surface over the
// window's CAMetalLayer provided through MoltenVK.
package window

import (
	"fmt"

	"github.com/go-gl/glfw/v3.3/glfw"
	vk "github.com/vulkan-go/vulkan"
)

type Options struct {
	Width     int
	Height    int
	Title     string
	Resizable bool
}

// Window wraps a GLFW window created without a client API. glfw.Init must
// have been called on the main thread.
type Window struct {
	handle *glfw.Window
}

func glfwBool(b bool) int {
	if b {
		return glfw.True
	}
	return glfw.False
}

func New(opts Options) (*Window, error) {
	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	glfw.WindowHint(glfw.Resizable, glfwBool(opts.Resizable))
	handle, err := glfw.CreateWindow(opts.Width, opts.Height, opts.Title, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("glfwCreateWindow failed with %w", err)
	}
	return &Window{handle: handle}, nil
}

func (w *Window) VulkanSupported() bool {
	return glfw.VulkanSupported()
}

func (w *Window) RequiredInstanceExtensions() []string {
	return w.handle.GetRequiredInstanceExtensions()
}

func (w *Window) CreateSurface(instance vk.Instance) (vk.Surface, error) {
	surfPtr, err := w.handle.CreateWindowSurface(instance, nil)
	if err != nil {
		return vk.NullSurface, err
	}
	return vk.SurfaceFromPointer(surfPtr), nil
}

// FramebufferSize is in pixels, not screen coordinates.
func (w *Window) FramebufferSize() (int, int) {
	return w.handle.GetFramebufferSize()
}

func (w *Window) ShouldClose() bool {
	return w.handle.ShouldClose()
}

func (w *Window) PollEvents() {
	glfw.PollEvents()
}

func (w *Window) Destroy() {
	if w.handle == nil {
		return
	}
	w.handle.Destroy()
	w.handle = nil
}
