package renderer

import (
	"fmt"
	"sort"

	vk "github.com/vulkan-go/vulkan"
)

type BlendState struct {
	Enable    bool
	SrcColor  vk.BlendFactor
	DstColor  vk.BlendFactor
	ColorOp   vk.BlendOp
	SrcAlpha  vk.BlendFactor
	DstAlpha  vk.BlendFactor
	AlphaOp   vk.BlendOp
	WriteMask vk.ColorComponentFlags
}

// PipelineConfig is the fixed-function state of a graphics pipeline. It is
// plain data so presets can be built and compared without a device.
type PipelineConfig struct {
	Topology         vk.PrimitiveTopology
	PrimitiveRestart bool

	Viewport vk.Viewport
	Scissor  vk.Rect2D

	DepthClamp        bool
	RasterizerDiscard bool
	PolygonMode       vk.PolygonMode
	CullMode          vk.CullModeFlagBits
	FrontFace         vk.FrontFace
	LineWidth         float32
	DepthBias         bool

	Samples          vk.SampleCountFlagBits
	SampleShading    bool
	MinSampleShading float32

	DepthTest      bool
	DepthWrite     bool
	DepthCompareOp vk.CompareOp
	DepthBounds    bool
	StencilTest    bool

	Blend          BlendState
	LogicOpEnable  bool
	LogicOp        vk.LogicOp
	BlendConstants [4]float32

	DynamicStates []vk.DynamicState

	// PatchControlPoints enables the tessellation state when non-zero.
	PatchControlPoints uint32
}

// Feature is an optional device feature a pipeline may depend on, named as
// in VkPhysicalDeviceFeatures.
type Feature string

const (
	FeatureSampleRateShading Feature = "sampleRateShading"
	FeatureFillModeNonSolid  Feature = "fillModeNonSolid"
)

// RequiredFeatures lists the device features c cannot be built without.
func (c *PipelineConfig) RequiredFeatures() []Feature {
	var features []Feature
	if c.SampleShading {
		features = append(features, FeatureSampleRateShading)
	}
	if c.PolygonMode != vk.PolygonModeFill {
		features = append(features, FeatureFillModeNonSolid)
	}
	return features
}

const colorWriteRGBA = vk.ColorComponentFlags(vk.ColorComponentRBit |
	vk.ColorComponentGBit | vk.ColorComponentBBit | vk.ColorComponentABit)

// BasicPipelineConfig draws filled, back-face culled triangle lists over the
// whole extent with depth testing and no blending. Every other preset starts
// from it.
func BasicPipelineConfig(extent vk.Extent2D) PipelineConfig {
	return PipelineConfig{
		Topology: vk.PrimitiveTopologyTriangleList,
		Viewport: vk.Viewport{
			Width:    float32(extent.Width),
			Height:   float32(extent.Height),
			MinDepth: 0.0,
			MaxDepth: 1.0,
		},
		Scissor: vk.Rect2D{
			Offset: vk.Offset2D{X: 0, Y: 0},
			Extent: extent,
		},
		PolygonMode:    vk.PolygonModeFill,
		CullMode:       vk.CullModeBackBit,
		FrontFace:      vk.FrontFaceClockwise,
		LineWidth:      1.0,
		Samples:        vk.SampleCount1Bit,
		DepthTest:      true,
		DepthWrite:     true,
		DepthCompareOp: vk.CompareOpLess,
		Blend: BlendState{
			WriteMask: colorWriteRGBA,
		},
		LogicOp:       vk.LogicOpCopy,
		DynamicStates: []vk.DynamicState{vk.DynamicStateViewport, vk.DynamicStateScissor},
	}
}

func (c *PipelineConfig) enableAlphaBlend() {
	c.Blend.Enable = true
	c.Blend.SrcColor = vk.BlendFactorSrcAlpha
	c.Blend.DstColor = vk.BlendFactorOneMinusSrcAlpha
	c.Blend.ColorOp = vk.BlendOpAdd
	c.Blend.SrcAlpha = vk.BlendFactorOne
	c.Blend.DstAlpha = vk.BlendFactorZero
	c.Blend.AlphaOp = vk.BlendOpAdd
}

func AlphaBlendingPipelineConfig(extent vk.Extent2D) PipelineConfig {
	c := BasicPipelineConfig(extent)
	c.enableAlphaBlend()
	return c
}

func WireframePipelineConfig(extent vk.Extent2D) PipelineConfig {
	c := BasicPipelineConfig(extent)
	c.PolygonMode = vk.PolygonModeLine
	return c
}

func MSAAPipelineConfig(extent vk.Extent2D, samples vk.SampleCountFlagBits) PipelineConfig {
	c := BasicPipelineConfig(extent)
	c.Samples = samples
	c.SampleShading = true
	c.MinSampleShading = 0.2
	return c
}

// DeferredShadingPipelineConfig is the G-buffer pass: depth on, no blending.
func DeferredShadingPipelineConfig(extent vk.Extent2D) PipelineConfig {
	c := BasicPipelineConfig(extent)
	c.Blend.Enable = false
	c.DepthTest = true
	c.DepthWrite = true
	return c
}

func DynamicStatePipelineConfig(extent vk.Extent2D) PipelineConfig {
	c := BasicPipelineConfig(extent)
	c.DynamicStates = []vk.DynamicState{
		vk.DynamicStateViewport,
		vk.DynamicStateScissor,
		vk.DynamicStateLineWidth,
	}
	return c
}

func PostProcessingPipelineConfig(extent vk.Extent2D) PipelineConfig {
	c := BasicPipelineConfig(extent)
	c.DepthTest = false
	c.DepthWrite = false
	c.enableAlphaBlend()
	return c
}

// ShadowMappingPipelineConfig renders depth from the light: front faces are
// culled and equal depths pass.
func ShadowMappingPipelineConfig(shadowMapExtent vk.Extent2D) PipelineConfig {
	c := BasicPipelineConfig(shadowMapExtent)
	c.CullMode = vk.CullModeFrontBit
	c.DepthTest = true
	c.DepthWrite = true
	c.DepthCompareOp = vk.CompareOpLessOrEqual
	c.Blend.Enable = false
	return c
}

func HDRPipelineConfig(extent vk.Extent2D) PipelineConfig {
	c := BasicPipelineConfig(extent)
	c.Blend.Enable = true
	c.Blend.SrcColor = vk.BlendFactorSrcAlpha
	c.Blend.DstColor = vk.BlendFactorOneMinusSrcAlpha
	c.Blend.ColorOp = vk.BlendOpAdd
	c.LogicOpEnable = false
	return c
}

// TessellationPipelineConfig uses three control points per patch. The
// shader set must include control and evaluation stages for it to apply.
func TessellationPipelineConfig(extent vk.Extent2D) PipelineConfig {
	c := BasicPipelineConfig(extent)
	c.PatchControlPoints = 3
	c.PolygonMode = vk.PolygonModeFill
	return c
}

func DepthPrePassPipelineConfig(extent vk.Extent2D) PipelineConfig {
	c := BasicPipelineConfig(extent)
	c.CullMode = vk.CullModeNone
	c.Blend.Enable = false
	c.DepthTest = true
	c.DepthWrite = true
	c.DepthCompareOp = vk.CompareOpLess
	return c
}

type presetFunc func(extent vk.Extent2D, samples vk.SampleCountFlagBits) PipelineConfig

func ignoreSamples(fn func(vk.Extent2D) PipelineConfig) presetFunc {
	return func(extent vk.Extent2D, _ vk.SampleCountFlagBits) PipelineConfig {
		return fn(extent)
	}
}

var presets = map[string]presetFunc{
	"basic":            ignoreSamples(BasicPipelineConfig),
	"alpha-blending":   ignoreSamples(AlphaBlendingPipelineConfig),
	"wireframe":        ignoreSamples(WireframePipelineConfig),
	"msaa":             MSAAPipelineConfig,
	"deferred-shading": ignoreSamples(DeferredShadingPipelineConfig),
	"dynamic-state":    ignoreSamples(DynamicStatePipelineConfig),
	"post-processing":  ignoreSamples(PostProcessingPipelineConfig),
	"shadow-mapping":   ignoreSamples(ShadowMappingPipelineConfig),
	"hdr":              ignoreSamples(HDRPipelineConfig),
	"tessellation":     ignoreSamples(TessellationPipelineConfig),
	"depth-pre-pass":   ignoreSamples(DepthPrePassPipelineConfig),
}

// Presets lists the preset names accepted by PresetConfig, sorted.
func Presets() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// PresetConfig builds the named preset. samples is only used by "msaa".
func PresetConfig(name string, extent vk.Extent2D, samples int) (PipelineConfig, error) {
	fn, ok := presets[name]
	if !ok {
		return PipelineConfig{}, fmt.Errorf("unknown pipeline preset %q", name)
	}
	return fn(extent, vk.SampleCountFlagBits(samples)), nil
}
