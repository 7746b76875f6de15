package renderer

import (
	"fmt"

	vk "github.com/vulkan-go/vulkan"
)

type Pipeline struct {
	Handle vk.Pipeline
	Layout vk.PipelineLayout
	Cache  vk.PipelineCache
	Config PipelineConfig

	device vk.Device
}

func vkBool(b bool) vk.Bool32 {
	if b {
		return vk.True
	}
	return vk.False
}

// createInfo assembles the fixed-function state of c with the given stages.
// The result shares c.DynamicStates.
func (c *PipelineConfig) createInfo(stages []vk.PipelineShaderStageCreateInfo,
	layout vk.PipelineLayout, renderPass vk.RenderPass) vk.GraphicsPipelineCreateInfo {

	info := vk.GraphicsPipelineCreateInfo{
		SType:      vk.StructureTypeGraphicsPipelineCreateInfo,
		StageCount: uint32(len(stages)),
		PStages:    stages,
		PVertexInputState: &vk.PipelineVertexInputStateCreateInfo{
			SType: vk.StructureTypePipelineVertexInputStateCreateInfo,
		},
		PInputAssemblyState: &vk.PipelineInputAssemblyStateCreateInfo{
			SType:                  vk.StructureTypePipelineInputAssemblyStateCreateInfo,
			Topology:               c.Topology,
			PrimitiveRestartEnable: vkBool(c.PrimitiveRestart),
		},
		PViewportState: &vk.PipelineViewportStateCreateInfo{
			SType:         vk.StructureTypePipelineViewportStateCreateInfo,
			ViewportCount: 1,
			PViewports:    []vk.Viewport{c.Viewport},
			ScissorCount:  1,
			PScissors:     []vk.Rect2D{c.Scissor},
		},
		PRasterizationState: &vk.PipelineRasterizationStateCreateInfo{
			SType:                   vk.StructureTypePipelineRasterizationStateCreateInfo,
			DepthClampEnable:        vkBool(c.DepthClamp),
			RasterizerDiscardEnable: vkBool(c.RasterizerDiscard),
			PolygonMode:             c.PolygonMode,
			CullMode:                vk.CullModeFlags(c.CullMode),
			FrontFace:               c.FrontFace,
			DepthBiasEnable:         vkBool(c.DepthBias),
			LineWidth:               c.LineWidth,
		},
		PMultisampleState: &vk.PipelineMultisampleStateCreateInfo{
			SType:                vk.StructureTypePipelineMultisampleStateCreateInfo,
			RasterizationSamples: c.Samples,
			SampleShadingEnable:  vkBool(c.SampleShading),
			MinSampleShading:     c.MinSampleShading,
		},
		PDepthStencilState: &vk.PipelineDepthStencilStateCreateInfo{
			SType:                 vk.StructureTypePipelineDepthStencilStateCreateInfo,
			DepthTestEnable:       vkBool(c.DepthTest),
			DepthWriteEnable:      vkBool(c.DepthWrite),
			DepthCompareOp:        c.DepthCompareOp,
			DepthBoundsTestEnable: vkBool(c.DepthBounds),
			StencilTestEnable:     vkBool(c.StencilTest),
			MaxDepthBounds:        1.0,
		},
		PColorBlendState: &vk.PipelineColorBlendStateCreateInfo{
			SType:           vk.StructureTypePipelineColorBlendStateCreateInfo,
			LogicOpEnable:   vkBool(c.LogicOpEnable),
			LogicOp:         c.LogicOp,
			AttachmentCount: 1,
			PAttachments: []vk.PipelineColorBlendAttachmentState{{
				BlendEnable:         vkBool(c.Blend.Enable),
				SrcColorBlendFactor: c.Blend.SrcColor,
				DstColorBlendFactor: c.Blend.DstColor,
				ColorBlendOp:        c.Blend.ColorOp,
				SrcAlphaBlendFactor: c.Blend.SrcAlpha,
				DstAlphaBlendFactor: c.Blend.DstAlpha,
				AlphaBlendOp:        c.Blend.AlphaOp,
				ColorWriteMask:      c.Blend.WriteMask,
			}},
			BlendConstants: c.BlendConstants,
		},
		Layout:     layout,
		RenderPass: renderPass,
		Subpass:    0,
	}
	if len(c.DynamicStates) > 0 {
		info.PDynamicState = &vk.PipelineDynamicStateCreateInfo{
			SType:             vk.StructureTypePipelineDynamicStateCreateInfo,
			DynamicStateCount: uint32(len(c.DynamicStates)),
			PDynamicStates:    c.DynamicStates,
		}
	}
	if c.PatchControlPoints > 0 {
		info.PTessellationState = &vk.PipelineTessellationStateCreateInfo{
			SType:              vk.StructureTypePipelineTessellationStateCreateInfo,
			PatchControlPoints: c.PatchControlPoints,
		}
	}
	return info
}

// NewPipeline creates an empty pipeline layout, a pipeline cache and a
// graphics pipeline for subpass 0 of renderPass.
func NewPipeline(device *Device, config PipelineConfig, shader *Shader, renderPass *RenderPass) (*Pipeline, error) {
	p := &Pipeline{
		Config: config,
		device: device.Logical,
	}
	pipelineLayoutCreateInfo := vk.PipelineLayoutCreateInfo{
		SType: vk.StructureTypePipelineLayoutCreateInfo,
	}
	err := vk.Error(vk.CreatePipelineLayout(device.Logical, &pipelineLayoutCreateInfo, nil, &p.Layout))
	if err != nil {
		err = fmt.Errorf("vkCreatePipelineLayout failed with %w", err)
		return nil, err
	}

	err = vk.Error(vk.CreatePipelineCache(device.Logical, &vk.PipelineCacheCreateInfo{
		SType: vk.StructureTypePipelineCacheCreateInfo,
	}, nil, &p.Cache))
	if err != nil {
		p.Destroy()
		err = fmt.Errorf("vkCreatePipelineCache failed with %w", err)
		return nil, err
	}

	pipelineCreateInfos := []vk.GraphicsPipelineCreateInfo{
		p.Config.createInfo(shader.Stages(), p.Layout, renderPass.Handle),
	}
	pipelines := make([]vk.Pipeline, 1)
	err = vk.Error(vk.CreateGraphicsPipelines(device.Logical, p.Cache, 1, pipelineCreateInfos, nil, pipelines))
	if err != nil {
		p.Destroy()
		err = fmt.Errorf("vkCreateGraphicsPipelines failed with %w", err)
		return nil, err
	}
	p.Handle = pipelines[0]
	return p, nil
}

func (p *Pipeline) Destroy() {
	if p == nil {
		return
	}
	if p.Handle != vk.NullPipeline {
		vk.DestroyPipeline(p.device, p.Handle, nil)
		p.Handle = vk.NullPipeline
	}
	if p.Cache != vk.PipelineCache(vk.NullHandle) {
		vk.DestroyPipelineCache(p.device, p.Cache, nil)
		p.Cache = vk.PipelineCache(vk.NullHandle)
	}
	if p.Layout != vk.NullPipelineLayout {
		vk.DestroyPipelineLayout(p.device, p.Layout, nil)
		p.Layout = vk.NullPipelineLayout
	}
}
