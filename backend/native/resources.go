// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

package native

import (
	"errors"
	"fmt"
	"image"
	"time"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/fxrender"
	"github.com/gogpu/fxrender/recording"
)

// ErrSurfaceReadback is returned by Image while a surface is bound.
var ErrSurfaceReadback = errors.New("native: cannot read back a surface")

const (
	textureUsage = gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopyDst
	targetUsage  = gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopySrc
)

// copyPitchAlignment is the BytesPerRow alignment of texture to buffer
// copies.
const copyPitchAlignment = 256

// fenceTimeout bounds the wait for submitted work.
const fenceTimeout = 5 * time.Second

func (d *Device) newTexture(label string, w, h int, format gputypes.TextureFormat, usage gputypes.TextureUsage) (*texture, error) {
	tex, err := d.device.CreateTexture(&hal.TextureDescriptor{
		Label:         label,
		Size:          hal.Extent3D{Width: uint32(w), Height: uint32(h), DepthOrArrayLayers: 1}, //nolint:gosec // sizes validated by callers
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        format,
		Usage:         usage,
	})
	if err != nil {
		return nil, fmt.Errorf("create %s texture: %w", label, err)
	}
	view, err := d.device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:         label + "_view",
		Format:        format,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		d.device.DestroyTexture(tex)
		return nil, fmt.Errorf("create %s view: %w", label, err)
	}
	return &texture{tex: tex, view: view, width: w, height: h, format: format}, nil
}

func (d *Device) writeTexture(t *texture, data []byte) {
	w, h := uint32(t.width), uint32(t.height) //nolint:gosec // texture sizes are positive
	d.queue.WriteTexture(
		&hal.ImageCopyTexture{Texture: t.tex, MipLevel: 0},
		data,
		&hal.ImageDataLayout{Offset: 0, BytesPerRow: w * 4, RowsPerImage: h},
		&hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
	)
}

func (d *Device) destroyTexture(t *texture) {
	if t == nil {
		return
	}
	if t.view != nil {
		d.device.DestroyTextureView(t.view)
		t.view = nil
	}
	if t.tex != nil {
		d.device.DestroyTexture(t.tex)
		t.tex = nil
	}
}

func (d *Device) addTexture(t *texture) uint32 {
	d.nextID++
	d.textures[d.nextID] = t
	return d.nextID
}

// WhiteTexture returns the id of a 1x1 opaque white texture.
func (d *Device) WhiteTexture() uint32 { return d.white }

// CreateTexture uploads img and returns its id. Rows are kept in image
// order, so image row 0 is sampled at v = 0.
func (d *Device) CreateTexture(img *image.RGBA) (uint32, error) {
	if img == nil || img.Bounds().Empty() {
		return 0, fmt.Errorf("native: create texture: %w", recording.ErrInvalidValue)
	}
	b := img.Bounds()
	t, err := d.newTexture("fxrender_sprite", b.Dx(), b.Dy(), targetFormat, textureUsage)
	if err != nil {
		return 0, fmt.Errorf("native: %w", err)
	}
	d.writeTexture(t, pixelBytes(img))
	return d.addTexture(t), nil
}

// DestroyTexture releases a texture created with CreateTexture. The white
// texture and unknown ids are ignored.
func (d *Device) DestroyTexture(id uint32) {
	if id == d.white {
		return
	}
	t, ok := d.textures[id]
	if !ok {
		return
	}
	if d.texture == id {
		d.texture = 0
	}
	d.destroyTexture(t)
	delete(d.textures, id)
}

// CreateTarget implements render.TargetAllocator.
func (d *Device) CreateTarget(width, height int) (framebuffer, texture uint32, err error) {
	if width <= 0 || height <= 0 {
		return 0, 0, fmt.Errorf("native: create target %dx%d: %w", width, height, recording.ErrInvalidValue)
	}
	t, err := d.newTexture("fxrender_target", width, height, targetFormat, targetUsage)
	if err != nil {
		return 0, 0, fmt.Errorf("native: %w", err)
	}
	texture = d.addTexture(t)
	d.nextID++
	framebuffer = d.nextID
	d.targets[framebuffer] = texture

	fxrender.Logger().Debug("native: target created",
		"framebuffer", framebuffer, "texture", texture, "width", width, "height", height)
	return framebuffer, texture, nil
}

// DestroyTarget implements render.TargetAllocator.
func (d *Device) DestroyTarget(framebuffer uint32) {
	tex, ok := d.targets[framebuffer]
	if !ok {
		fxrender.Logger().Warn("native: destroy unknown target", "framebuffer", framebuffer)
		return
	}
	delete(d.targets, framebuffer)
	if d.target == framebuffer {
		if d.frame != nil {
			d.frame.endPass()
		}
		d.target = 0
	}
	if d.texture == tex {
		d.texture = 0
	}
	d.destroyTexture(d.textures[tex])
	delete(d.textures, tex)
}

// Image reads back the offscreen default framebuffer. Rows are top-down as
// in any image.
func (d *Device) Image() (*image.RGBA, error) {
	if d.surface != nil {
		return nil, ErrSurfaceReadback
	}
	w, h := uint32(d.width), uint32(d.height) //nolint:gosec // sizes validated at creation
	bytesPerRow := w * 4
	alignedBytesPerRow := (bytesPerRow + copyPitchAlignment - 1) &^ (copyPitchAlignment - 1)
	size := uint64(alignedBytesPerRow) * uint64(h)

	staging, err := d.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "fxrender_staging",
		Size:  size,
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("native: create staging buffer: %w", err)
	}
	defer d.device.DestroyBuffer(staging)

	encoder, err := d.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "fxrender_readback"})
	if err != nil {
		return nil, fmt.Errorf("native: create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("fxrender_readback"); err != nil {
		return nil, fmt.Errorf("native: begin encoding: %w", err)
	}
	encoder.CopyTextureToBuffer(d.screen.tex, staging, []hal.BufferTextureCopy{{
		BufferLayout: hal.ImageDataLayout{Offset: 0, BytesPerRow: alignedBytesPerRow, RowsPerImage: h},
		TextureBase:  hal.ImageCopyTexture{Texture: d.screen.tex, MipLevel: 0},
		Size:         hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
	}})
	if err := d.submit(encoder); err != nil {
		return nil, err
	}

	readback := make([]byte, size)
	if err := d.queue.ReadBuffer(staging, 0, readback); err != nil {
		return nil, fmt.Errorf("native: readback: %w", err)
	}
	img := image.NewRGBA(image.Rect(0, 0, d.width, d.height))
	for y := 0; y < d.height; y++ {
		src := readback[y*int(alignedBytesPerRow):][:bytesPerRow]
		copy(img.Pix[y*img.Stride:], src)
	}
	if d.format == gputypes.TextureFormatBGRA8Unorm {
		swapRedBlue(img.Pix)
	}
	return img, nil
}

// submit finishes encoding, submits the command buffer and waits for it.
func (d *Device) submit(encoder hal.CommandEncoder) error {
	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("native: end encoding: %w", err)
	}
	defer d.device.FreeCommandBuffer(cmdBuf)

	fence, err := d.device.CreateFence()
	if err != nil {
		return fmt.Errorf("native: create fence: %w", err)
	}
	defer d.device.DestroyFence(fence)

	if err := d.queue.Submit([]hal.CommandBuffer{cmdBuf}, fence, 1); err != nil {
		return fmt.Errorf("native: submit: %w", err)
	}
	ok, err := d.device.Wait(fence, 1, fenceTimeout)
	if err != nil {
		return fmt.Errorf("native: wait for GPU: %w", err)
	}
	if !ok {
		return ErrFrameTimeout
	}
	return nil
}

// swapRedBlue converts BGRA pixels to RGBA in place.
func swapRedBlue(pix []byte) {
	for i := 0; i+3 < len(pix); i += 4 {
		pix[i], pix[i+2] = pix[i+2], pix[i]
	}
}
