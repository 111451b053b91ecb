// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

package native

import (
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/fxrender"
	"github.com/gogpu/fxrender/recording"
)

// groupKey identifies a bind group within a frame.
type groupKey struct {
	matrix  recording.Mat4
	texture uint32
}

// frame holds the encoder and the per-frame resources of one replay.
type frame struct {
	device  hal.Device
	encoder hal.CommandEncoder
	pass    hal.RenderPassEncoder

	uniforms map[recording.Mat4]hal.Buffer
	groups   map[groupKey]hal.BindGroup
	passes   int
	draws    int
}

// endPass closes the open render pass, if any.
func (f *frame) endPass() {
	if f.pass != nil {
		f.pass.End()
		f.pass = nil
	}
}

// release destroys the per-frame resources.
func (f *frame) release() {
	for k, bg := range f.groups {
		f.device.DestroyBindGroup(bg)
		delete(f.groups, k)
	}
	for k, buf := range f.uniforms {
		f.device.DestroyBuffer(buf)
		delete(f.uniforms, k)
	}
}

// BeginFrame implements recording.Device. A frame left open by a failed
// replay is discarded first.
func (d *Device) BeginFrame() error {
	if d.frame != nil {
		d.abortFrame()
	}
	encoder, err := d.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "fxrender_frame"})
	if err != nil {
		return err
	}
	if err := encoder.BeginEncoding("fxrender_frame"); err != nil {
		return err
	}
	d.frame = &frame{
		device:   d.device,
		encoder:  encoder,
		uniforms: make(map[recording.Mat4]hal.Buffer),
		groups:   make(map[groupKey]hal.BindGroup),
	}
	return nil
}

// EndFrame implements recording.Device. It submits the frame and waits for
// the GPU to finish it.
func (d *Device) EndFrame() error {
	f := d.frame
	if f == nil {
		return ErrNoFrame
	}
	d.frame = nil
	defer f.release()

	f.endPass()
	if err := d.submit(f.encoder); err != nil {
		return err
	}
	fxrender.Logger().Debug("native: frame submitted", "passes", f.passes, "draws", f.draws)
	return nil
}

func (d *Device) abortFrame() {
	f := d.frame
	d.frame = nil
	f.endPass()
	f.encoder.DiscardEncoding()
	f.release()
}

// renderTarget returns the attachment bound as target and whether it is an
// offscreen target rendered with a y flip.
func (d *Device) renderTarget() (view hal.TextureView, w, h int, format gputypes.TextureFormat, flipped bool) {
	if d.target != 0 {
		t := d.textures[d.targets[d.target]]
		return t.view, t.width, t.height, t.format, true
	}
	if d.surface != nil {
		return d.surface, d.width, d.height, d.format, false
	}
	return d.screen.view, d.width, d.height, d.format, false
}

// beginPass opens a render pass on the bound target.
func (d *Device) beginPass(load gputypes.LoadOp, clear gputypes.Color) {
	f := d.frame
	f.endPass()
	view, _, _, _, _ := d.renderTarget()
	f.pass = f.encoder.BeginRenderPass(&hal.RenderPassDescriptor{
		Label: "fxrender_pass",
		ColorAttachments: []hal.RenderPassColorAttachment{{
			View:       view,
			LoadOp:     load,
			StoreOp:    gputypes.StoreOpStore,
			ClearValue: clear,
		}},
	})
	f.passes++
}

// Clear implements recording.Device. The clear starts a new render pass, so
// it always covers the whole target and ignores the scissor rectangle.
func (d *Device) Clear(c [4]float32, depth bool) {
	if d.frame == nil {
		d.fail(recording.ErrInvalidOperation, "clear outside a frame")
		return
	}
	if d.scissor {
		d.debugOnce("scissorClear", "native: clear ignores the scissor rectangle")
	}
	d.beginPass(gputypes.LoadOpClear, gputypes.Color{
		R: float64(c[0]), G: float64(c[1]), B: float64(c[2]), A: float64(c[3]),
	})
}

// DrawIndexed implements recording.Device.
func (d *Device) DrawIndexed(mode gputypes.PrimitiveTopology, start, count int) {
	if !validTopology(mode) {
		d.fail(recording.ErrInvalidEnum, "draw mode %d", mode)
		return
	}
	if start < 0 || count < 0 || start+count > d.indexCount {
		d.fail(recording.ErrInvalidOperation, "draw [%d,%d) of %d indices", start, start+count, d.indexCount)
		return
	}
	if d.frame == nil {
		d.fail(recording.ErrInvalidOperation, "draw outside a frame")
		return
	}
	if count == 0 || d.viewport.Empty() {
		return
	}

	_, w, h, format, flipped := d.renderTarget()
	vp := d.viewport
	sc := recording.Rect{W: w, H: h}
	if d.scissor {
		sc = d.scissorR
	}
	matrix := d.matrix
	if flipped {
		matrix = flipY.Mul(matrix)
	} else {
		vp = toTopLeft(vp, h)
		sc = toTopLeft(sc, h)
	}
	sx, sy, sw, sh, ok := clipRect(sc, w, h)
	if !ok {
		return
	}

	key := makePipelineKey(d.blend, d.blendFunc, mode, d.cullFace, flipped, format)
	pipeline, err := d.pipes.get(key)
	if err != nil {
		d.fail(recording.ErrOutOfMemory, "%v", err)
		return
	}
	group, err := d.bindGroup(matrix, d.texture)
	if err != nil {
		d.fail(recording.ErrOutOfMemory, "%v", err)
		return
	}

	f := d.frame
	if f.pass == nil {
		d.beginPass(gputypes.LoadOpLoad, gputypes.Color{})
	}
	rp := f.pass
	rp.SetPipeline(pipeline)
	rp.SetBindGroup(0, group, nil)
	rp.SetVertexBuffer(0, d.vertexBuf, 0)
	rp.SetIndexBuffer(d.indexBuf, gputypes.IndexFormatUint32, 0)
	rp.SetViewport(float32(vp.X), float32(vp.Y), float32(vp.W), float32(vp.H), 0, 1)
	rp.SetScissorRect(sx, sy, sw, sh)
	rp.DrawIndexed(uint32(count), 1, uint32(start), 0, 0) //nolint:gosec // range checked above
	f.draws++
}

// bindGroup returns the frame's bind group for (matrix, texture), creating
// the uniform buffer and group on first use.
func (d *Device) bindGroup(matrix recording.Mat4, tex uint32) (hal.BindGroup, error) {
	f := d.frame
	if tex == 0 {
		tex = d.white
	}
	key := groupKey{matrix: matrix, texture: tex}
	if bg, ok := f.groups[key]; ok {
		return bg, nil
	}

	ubuf, ok := f.uniforms[matrix]
	if !ok {
		var err error
		ubuf, err = d.device.CreateBuffer(&hal.BufferDescriptor{
			Label: "fxrender_transform",
			Size:  uniformSize,
			Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
		})
		if err != nil {
			return nil, err
		}
		d.queue.WriteBuffer(ubuf, 0, matrixBytes(matrix))
		f.uniforms[matrix] = ubuf
	}

	t := d.textures[tex]
	bg, err := d.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  "fxrender_sprite_bind",
		Layout: d.pipes.groupLayout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.BufferBinding{
				Buffer: ubuf.NativeHandle(), Offset: 0, Size: uniformSize,
			}},
			{Binding: 1, Resource: gputypes.TextureViewBinding{
				TextureView: t.view.NativeHandle(),
			}},
			{Binding: 2, Resource: gputypes.SamplerBinding{
				Sampler: d.pipes.sampler.NativeHandle(),
			}},
		},
	})
	if err != nil {
		return nil, err
	}
	f.groups[key] = bg
	return bg, nil
}
