package renderer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	vk "github.com/vulkan-go/vulkan"
)

var testExtent = vk.Extent2D{Width: 800, Height: 600}

func TestBasicPipelineConfig(t *testing.T) {
	c := BasicPipelineConfig(testExtent)
	assert.Equal(t, vk.PrimitiveTopologyTriangleList, c.Topology)
	assert.Equal(t, float32(800), c.Viewport.Width)
	assert.Equal(t, float32(600), c.Viewport.Height)
	assert.Equal(t, float32(1), c.Viewport.MaxDepth)
	assert.Equal(t, testExtent, c.Scissor.Extent)
	assert.Equal(t, vk.PolygonModeFill, c.PolygonMode)
	assert.Equal(t, vk.CullModeBackBit, c.CullMode)
	assert.Equal(t, vk.FrontFaceClockwise, c.FrontFace)
	assert.Equal(t, float32(1), c.LineWidth)
	assert.Equal(t, vk.SampleCount1Bit, c.Samples)
	assert.True(t, c.DepthTest)
	assert.True(t, c.DepthWrite)
	assert.Equal(t, vk.CompareOpLess, c.DepthCompareOp)
	assert.False(t, c.Blend.Enable)
	assert.Equal(t, colorWriteRGBA, c.Blend.WriteMask)
	assert.Equal(t, []vk.DynamicState{vk.DynamicStateViewport, vk.DynamicStateScissor}, c.DynamicStates)
	assert.Zero(t, c.PatchControlPoints)
}

func TestPresetDeltas(t *testing.T) {
	basic := BasicPipelineConfig(testExtent)
	tests := []struct {
		name   string
		config PipelineConfig
		delta  func(c *PipelineConfig)
	}{
		{"alpha blending", AlphaBlendingPipelineConfig(testExtent), func(c *PipelineConfig) {
			c.enableAlphaBlend()
		}},
		{"wireframe", WireframePipelineConfig(testExtent), func(c *PipelineConfig) {
			c.PolygonMode = vk.PolygonModeLine
		}},
		{"msaa", MSAAPipelineConfig(testExtent, vk.SampleCount4Bit), func(c *PipelineConfig) {
			c.Samples = vk.SampleCount4Bit
			c.SampleShading = true
			c.MinSampleShading = 0.2
		}},
		{"deferred shading", DeferredShadingPipelineConfig(testExtent), func(c *PipelineConfig) {}},
		{"dynamic state", DynamicStatePipelineConfig(testExtent), func(c *PipelineConfig) {
			c.DynamicStates = append(c.DynamicStates, vk.DynamicStateLineWidth)
		}},
		{"post processing", PostProcessingPipelineConfig(testExtent), func(c *PipelineConfig) {
			c.DepthTest = false
			c.DepthWrite = false
			c.enableAlphaBlend()
		}},
		{"shadow mapping", ShadowMappingPipelineConfig(testExtent), func(c *PipelineConfig) {
			c.CullMode = vk.CullModeFrontBit
			c.DepthCompareOp = vk.CompareOpLessOrEqual
		}},
		{"hdr", HDRPipelineConfig(testExtent), func(c *PipelineConfig) {
			c.Blend.Enable = true
			c.Blend.SrcColor = vk.BlendFactorSrcAlpha
			c.Blend.DstColor = vk.BlendFactorOneMinusSrcAlpha
			c.Blend.ColorOp = vk.BlendOpAdd
		}},
		{"tessellation", TessellationPipelineConfig(testExtent), func(c *PipelineConfig) {
			c.PatchControlPoints = 3
		}},
		{"depth pre-pass", DepthPrePassPipelineConfig(testExtent), func(c *PipelineConfig) {
			c.CullMode = vk.CullModeNone
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			want := basic
			want.DynamicStates = append([]vk.DynamicState{}, basic.DynamicStates...)
			tt.delta(&want)
			assert.Equal(t, want, tt.config)
		})
	}
}

func TestPresets(t *testing.T) {
	names := Presets()
	assert.Len(t, names, 11)
	assert.IsNonDecreasing(t, names)
	assert.Contains(t, names, "basic")
	assert.Contains(t, names, "depth-pre-pass")

	for _, name := range names {
		_, err := PresetConfig(name, testExtent, 1)
		assert.NoError(t, err, name)
	}
}

func TestPresetConfig(t *testing.T) {
	c, err := PresetConfig("msaa", testExtent, 8)
	require.NoError(t, err)
	assert.Equal(t, vk.SampleCount8Bit, c.Samples)

	c, err = PresetConfig("wireframe", testExtent, 8)
	require.NoError(t, err)
	assert.Equal(t, vk.SampleCount1Bit, c.Samples, "samples only apply to msaa")

	_, err = PresetConfig("toon", testExtent, 1)
	assert.ErrorContains(t, err, `unknown pipeline preset "toon"`)
}

func TestPipelineCreateInfo(t *testing.T) {
	stages := (&Shader{}).Stages()
	require.Len(t, stages, 2)
	assert.Equal(t, vk.ShaderStageVertexBit, stages[0].Stage)
	assert.Equal(t, vk.ShaderStageFragmentBit, stages[1].Stage)
	assert.Equal(t, "main\x00", stages[0].PName)

	c := BasicPipelineConfig(testExtent)
	info := c.createInfo(stages, vk.NullPipelineLayout, vk.NullRenderPass)
	assert.Equal(t, uint32(2), info.StageCount)
	assert.Equal(t, vk.PrimitiveTopologyTriangleList, info.PInputAssemblyState.Topology)
	assert.Equal(t, vk.CullModeFlags(vk.CullModeBackBit), info.PRasterizationState.CullMode)
	assert.Equal(t, vk.Bool32(vk.True), info.PDepthStencilState.DepthTestEnable)
	assert.Equal(t, vk.Bool32(vk.False), info.PColorBlendState.PAttachments[0].BlendEnable)
	require.NotNil(t, info.PDynamicState)
	assert.Equal(t, uint32(2), info.PDynamicState.DynamicStateCount)
	assert.Nil(t, info.PTessellationState)
	assert.Zero(t, info.Subpass)

	c.DynamicStates = nil
	info = c.createInfo(stages, vk.NullPipelineLayout, vk.NullRenderPass)
	assert.Nil(t, info.PDynamicState)

	tess := TessellationPipelineConfig(testExtent)
	info = tess.createInfo(stages, vk.NullPipelineLayout, vk.NullRenderPass)
	require.NotNil(t, info.PTessellationState)
	assert.Equal(t, uint32(3), info.PTessellationState.PatchControlPoints)

	blend := AlphaBlendingPipelineConfig(testExtent)
	blend.BlendConstants = [4]float32{0.1, 0.2, 0.3, 0.4}
	info = blend.createInfo(stages, vk.NullPipelineLayout, vk.NullRenderPass)
	att := info.PColorBlendState.PAttachments[0]
	assert.Equal(t, vk.Bool32(vk.True), att.BlendEnable)
	assert.Equal(t, vk.BlendFactorSrcAlpha, att.SrcColorBlendFactor)
	assert.Equal(t, [4]float32{0.1, 0.2, 0.3, 0.4}, info.PColorBlendState.BlendConstants)
}

func TestRequiredFeatures(t *testing.T) {
	tests := []struct {
		preset string
		want   []Feature
	}{
		{"basic", nil},
		{"msaa", []Feature{FeatureSampleRateShading}},
		{"wireframe", []Feature{FeatureFillModeNonSolid}},
		{"alpha-blending", nil},
	}
	for _, tt := range tests {
		t.Run(tt.preset, func(t *testing.T) {
			c, err := PresetConfig(tt.preset, testExtent, 4)
			require.NoError(t, err)
			assert.Equal(t, tt.want, c.RequiredFeatures())
		})
	}
}
