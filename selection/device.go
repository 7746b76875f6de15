// Package selection holds the decisions made while bringing up a Vulkan
// renderer: which physical device to use and which swapchain parameters to
// request from the surface. Nothing here talks to the driver; the renderer
// gathers what the driver reports into the types below.
package selection

import (
	"errors"
	"fmt"

	vk "github.com/vulkan-go/vulkan"
)

var (
	ErrNoDevices        = errors.New("failed to find GPUs with Vulkan support")
	ErrNoSuitableDevice = errors.New("failed to find a suitable GPU")
)

const (
	discreteBonus   = 1000
	integratedBonus = 500
)

type QueueFamily struct {
	Flags          vk.QueueFlags
	QueueCount     uint32
	PresentSupport bool
}

func (f QueueFamily) HasGraphics() bool {
	return f.Flags&vk.QueueFlags(vk.QueueGraphicsBit) != 0
}

// QueueFamilyIndices records the families chosen for graphics and
// presentation work. Both may point at the same family.
type QueueFamilyIndices struct {
	Graphics    uint32
	Present     uint32
	HasGraphics bool
	HasPresent  bool
}

func (q QueueFamilyIndices) IsComplete() bool {
	return q.HasGraphics && q.HasPresent
}

// Unique returns the distinct family indices, graphics first.
func (q QueueFamilyIndices) Unique() []uint32 {
	var families []uint32
	if q.HasGraphics {
		families = append(families, q.Graphics)
	}
	if q.HasPresent && (!q.HasGraphics || q.Present != q.Graphics) {
		families = append(families, q.Present)
	}
	return families
}

// Shared reports whether graphics and presentation use the same family.
func (q QueueFamilyIndices) Shared() bool {
	return q.IsComplete() && q.Graphics == q.Present
}

// Candidate is everything the driver reported about one physical device.
type Candidate struct {
	Handle              vk.PhysicalDevice
	Name                string
	Type                vk.PhysicalDeviceType
	MaxImageDimension2D uint32
	QueueFamilies       []QueueFamily
	Extensions          []string
	Support             SwapchainSupport
	Features            vk.PhysicalDeviceFeatures
	// SampleCounts are the sample counts usable for both color and depth
	// framebuffer attachments.
	SampleCounts vk.SampleCountFlags
}

type Evaluation struct {
	// Index is the candidate's position in enumeration order.
	Index             int
	Candidate         Candidate
	Score             int
	Queues            QueueFamilyIndices
	MissingExtensions []string
	// Reason is empty for suitable devices.
	Reason string
}

func (e Evaluation) Suitable() bool {
	return e.Score > 0
}

// FindQueueFamilies walks the families in order and stops as soon as both a
// graphics and a present family have been seen.
func FindQueueFamilies(families []QueueFamily) QueueFamilyIndices {
	var indices QueueFamilyIndices
	for i, family := range families {
		if family.HasGraphics() {
			indices.Graphics = uint32(i)
			indices.HasGraphics = true
		}
		if family.PresentSupport {
			indices.Present = uint32(i)
			indices.HasPresent = true
		}
		if indices.IsComplete() {
			break
		}
	}
	return indices
}

// MissingExtensions returns the entries of required not present in
// supported, in required order.
func MissingExtensions(required, supported []string) []string {
	have := make(map[string]struct{}, len(supported))
	for _, name := range supported {
		have[name] = struct{}{}
	}
	var missing []string
	for _, name := range required {
		if _, ok := have[name]; !ok {
			missing = append(missing, name)
		}
	}
	return missing
}

// Evaluate scores a candidate. Unsuitable devices score 0 and carry a reason.
func Evaluate(c Candidate, requiredExtensions []string) Evaluation {
	e := Evaluation{
		Candidate: c,
		Queues:    FindQueueFamilies(c.QueueFamilies),
	}
	e.MissingExtensions = MissingExtensions(requiredExtensions, c.Extensions)

	switch {
	case !e.Queues.HasGraphics:
		e.Reason = "no graphics queue family"
		return e
	case !e.Queues.HasPresent:
		e.Reason = "no queue family can present to the surface"
		return e
	case len(e.MissingExtensions) > 0:
		e.Reason = fmt.Sprintf("missing extensions %v", e.MissingExtensions)
		return e
	case !c.Support.IsAdequate():
		e.Reason = "no surface formats or present modes"
		return e
	}

	switch c.Type {
	case vk.PhysicalDeviceTypeDiscreteGpu:
		e.Score += discreteBonus
	case vk.PhysicalDeviceTypeIntegratedGpu:
		e.Score += integratedBonus
	}
	e.Score += int(c.MaxImageDimension2D)
	if e.Score == 0 {
		e.Reason = "zero score"
	}
	return e
}

// PickDevice evaluates every candidate and returns the best one along with
// all evaluations in enumeration order. On equal scores the device
// enumerated first is kept.
func PickDevice(candidates []Candidate, requiredExtensions []string) (Evaluation, []Evaluation, error) {
	if len(candidates) == 0 {
		return Evaluation{}, nil, ErrNoDevices
	}
	evaluations := make([]Evaluation, 0, len(candidates))
	best := -1
	for i, c := range candidates {
		e := Evaluate(c, requiredExtensions)
		e.Index = i
		evaluations = append(evaluations, e)
		if e.Score > 0 && (best < 0 || e.Score > evaluations[best].Score) {
			best = i
		}
	}
	if best < 0 {
		return Evaluation{}, evaluations, ErrNoSuitableDevice
	}
	return evaluations[best], evaluations, nil
}
