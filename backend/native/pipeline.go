// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

package native

import (
	_ "embed"
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/fxrender/recording"
)

//go:embed shaders/sprite.wgsl
var spriteShaderSource string

// uniformSize is the size of the transform uniform (mat4x4<f32>).
const uniformSize = 64

// compileSPIRV compiles WGSL source to SPIR-V words.
func compileSPIRV(source string) ([]uint32, error) {
	spirvBytes, err := naga.Compile(source)
	if err != nil {
		return nil, fmt.Errorf("compile shader: %w", err)
	}

	// SPIR-V is little-endian 32-bit words.
	code := make([]uint32, len(spirvBytes)/4)
	for i := range code {
		code[i] = uint32(spirvBytes[i*4]) |
			uint32(spirvBytes[i*4+1])<<8 |
			uint32(spirvBytes[i*4+2])<<16 |
			uint32(spirvBytes[i*4+3])<<24
	}
	return code, nil
}

// spriteVertexLayout describes recording.Vertex: position, texture
// coordinate and unorm8 color.
func spriteVertexLayout() []gputypes.VertexBufferLayout {
	return []gputypes.VertexBufferLayout{
		{
			ArrayStride: recording.VertexSize,
			StepMode:    gputypes.VertexStepModeVertex,
			Attributes: []gputypes.VertexAttribute{
				{Format: gputypes.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 0},
				{Format: gputypes.VertexFormatFloat32x2, Offset: 8, ShaderLocation: 1},
				{Format: gputypes.VertexFormatUnorm8x4, Offset: 16, ShaderLocation: 2},
			},
		},
	}
}

// pipelines owns the shader, layouts and sampler shared by every sprite
// pipeline, and caches one render pipeline per pipelineKey.
type pipelines struct {
	device hal.Device

	shader      hal.ShaderModule
	groupLayout hal.BindGroupLayout
	pipeLayout  hal.PipelineLayout
	sampler     hal.Sampler

	cache map[pipelineKey]hal.RenderPipeline
}

func newPipelines(device hal.Device) (*pipelines, error) {
	p := &pipelines{device: device, cache: make(map[pipelineKey]hal.RenderPipeline)}
	if err := p.init(); err != nil {
		p.destroy()
		return nil, err
	}
	return p, nil
}

func (p *pipelines) init() error {
	code, err := compileSPIRV(spriteShaderSource)
	if err != nil {
		return err
	}
	p.shader, err = p.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  "fxrender_sprite_shader",
		Source: hal.ShaderSource{SPIRV: code},
	})
	if err != nil {
		return fmt.Errorf("create sprite shader: %w", err)
	}

	// Binding 0: transform (vertex)
	// Binding 1: sprite texture (fragment)
	// Binding 2: sampler (fragment)
	p.groupLayout, err = p.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "fxrender_sprite_bind_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: gputypes.ShaderStageVertex,
				Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
			},
			{
				Binding:    1,
				Visibility: gputypes.ShaderStageFragment,
				Texture: &gputypes.TextureBindingLayout{
					SampleType:    gputypes.TextureSampleTypeFloat,
					ViewDimension: gputypes.TextureViewDimension2D,
				},
			},
			{
				Binding:    2,
				Visibility: gputypes.ShaderStageFragment,
				Sampler:    &gputypes.SamplerBindingLayout{Type: gputypes.SamplerBindingTypeFiltering},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("create sprite bind group layout: %w", err)
	}

	p.pipeLayout, err = p.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "fxrender_sprite_pipe_layout",
		BindGroupLayouts: []hal.BindGroupLayout{p.groupLayout},
	})
	if err != nil {
		return fmt.Errorf("create sprite pipeline layout: %w", err)
	}

	p.sampler, err = p.device.CreateSampler(&hal.SamplerDescriptor{
		Label:        "fxrender_sprite_sampler",
		AddressModeU: gputypes.AddressModeClampToEdge,
		AddressModeV: gputypes.AddressModeClampToEdge,
		AddressModeW: gputypes.AddressModeClampToEdge,
		MagFilter:    gputypes.FilterModeLinear,
		MinFilter:    gputypes.FilterModeLinear,
		MipmapFilter: gputypes.FilterModeLinear,
	})
	if err != nil {
		return fmt.Errorf("create sprite sampler: %w", err)
	}
	return nil
}

// get returns the pipeline for k, creating it on first use.
func (p *pipelines) get(k pipelineKey) (hal.RenderPipeline, error) {
	if pl, ok := p.cache[k]; ok {
		return pl, nil
	}

	target := gputypes.ColorTargetState{
		Format:    k.format,
		WriteMask: gputypes.ColorWriteMaskAll,
	}
	if k.blend {
		bs := blendState(k.fn)
		target.Blend = &bs
	}

	pl, err := p.device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  "fxrender_sprite_pipeline",
		Layout: p.pipeLayout,
		Vertex: hal.VertexState{
			Module:     p.shader,
			EntryPoint: "vs_main",
			Buffers:    spriteVertexLayout(),
		},
		Fragment: &hal.FragmentState{
			Module:     p.shader,
			EntryPoint: "fs_main",
			Targets:    []gputypes.ColorTargetState{target},
		},
		Primitive: gputypes.PrimitiveState{
			Topology:  k.topology,
			FrontFace: k.frontFace,
			CullMode:  cullMode(k.cull),
		},
		Multisample: gputypes.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create sprite pipeline: %w", err)
	}
	p.cache[k] = pl
	return pl, nil
}

func (p *pipelines) destroy() {
	for k, pl := range p.cache {
		p.device.DestroyRenderPipeline(pl)
		delete(p.cache, k)
	}
	if p.sampler != nil {
		p.device.DestroySampler(p.sampler)
		p.sampler = nil
	}
	if p.pipeLayout != nil {
		p.device.DestroyPipelineLayout(p.pipeLayout)
		p.pipeLayout = nil
	}
	if p.groupLayout != nil {
		p.device.DestroyBindGroupLayout(p.groupLayout)
		p.groupLayout = nil
	}
	if p.shader != nil {
		p.device.DestroyShaderModule(p.shader)
		p.shader = nil
	}
}
