// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

package native

import (
	"encoding/binary"
	"image"
	"math"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/fxrender/recording"
)

// flipY mirrors clip space vertically. Offscreen targets are rendered
// through it so that row 0 of their texture is the bottom row, as in GL.
var flipY = recording.Scaling(1, -1, 1)

// pipelineKey identifies a cached render pipeline.
type pipelineKey struct {
	blend     bool
	fn        recording.BlendFunc
	topology  gputypes.PrimitiveTopology
	cull      bool
	frontFace gputypes.FrontFace
	format    gputypes.TextureFormat
}

// makePipelineKey normalizes the blend function away when blending is off
// so that all unblended draws share a pipeline.
func makePipelineKey(blend bool, fn recording.BlendFunc, topology gputypes.PrimitiveTopology,
	cull bool, flipped bool, format gputypes.TextureFormat) pipelineKey {
	k := pipelineKey{
		blend:     blend,
		topology:  topology,
		cull:      cull,
		frontFace: gputypes.FrontFaceCCW,
		format:    format,
	}
	if blend {
		k.fn = fn
	}
	if flipped {
		k.frontFace = gputypes.FrontFaceCW
	}
	return k
}

// blendState converts a GL style blend function to a WebGPU blend state.
func blendState(fn recording.BlendFunc) gputypes.BlendState {
	return gputypes.BlendState{
		Color: gputypes.BlendComponent{
			SrcFactor: fn.SrcRGB,
			DstFactor: fn.DstRGB,
			Operation: gputypes.BlendOperationAdd,
		},
		Alpha: gputypes.BlendComponent{
			SrcFactor: fn.SrcAlpha,
			DstFactor: fn.DstAlpha,
			Operation: gputypes.BlendOperationAdd,
		},
	}
}

func cullMode(on bool) gputypes.CullMode {
	if on {
		return gputypes.CullModeBack
	}
	return gputypes.CullModeNone
}

// validFactor reports whether f is a factor the pipeline accepts.
func validFactor(f gputypes.BlendFactor) bool {
	switch f {
	case gputypes.BlendFactorZero,
		gputypes.BlendFactorOne,
		gputypes.BlendFactorSrc,
		gputypes.BlendFactorOneMinusSrc,
		gputypes.BlendFactorSrcAlpha,
		gputypes.BlendFactorOneMinusSrcAlpha,
		gputypes.BlendFactorDst,
		gputypes.BlendFactorOneMinusDst,
		gputypes.BlendFactorDstAlpha,
		gputypes.BlendFactorOneMinusDstAlpha,
		gputypes.BlendFactorSrcAlphaSaturated:
		return true
	}
	return false
}

func validTopology(t gputypes.PrimitiveTopology) bool {
	switch t {
	case gputypes.PrimitiveTopologyTriangleList,
		gputypes.PrimitiveTopologyTriangleStrip,
		gputypes.PrimitiveTopologyLineList,
		gputypes.PrimitiveTopologyLineStrip,
		gputypes.PrimitiveTopologyPointList:
		return true
	}
	return false
}

// toTopLeft converts a bottom-left origin rectangle to the top-left origin
// used by WebGPU framebuffers of the given height.
func toTopLeft(r recording.Rect, height int) recording.Rect {
	return recording.Rect{X: r.X, Y: height - r.Y - r.H, W: r.W, H: r.H}
}

// clipRect intersects r with a width x height target. ok is false when the
// result is empty.
func clipRect(r recording.Rect, width, height int) (x, y, w, h uint32, ok bool) {
	x0, y0 := max(r.X, 0), max(r.Y, 0)
	x1, y1 := min(r.X+r.W, width), min(r.Y+r.H, height)
	if x1 <= x0 || y1 <= y0 {
		return 0, 0, 0, 0, false
	}
	return uint32(x0), uint32(y0), uint32(x1 - x0), uint32(y1 - y0), true //nolint:gosec // clamped to target size
}

// matrixBytes encodes m as a WGSL mat4x4<f32> uniform (column-major).
func matrixBytes(m recording.Mat4) []byte {
	buf := make([]byte, 0, uniformSize)
	for _, v := range m {
		buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(v))
	}
	return buf
}

// pixelBytes returns the pixels of img as tightly packed rows.
func pixelBytes(img *image.RGBA) []byte {
	b := img.Bounds()
	rowLen := b.Dx() * 4
	if img.Stride == rowLen && len(img.Pix) == rowLen*b.Dy() {
		return img.Pix
	}
	out := make([]byte, 0, rowLen*b.Dy())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		off := img.PixOffset(b.Min.X, y)
		out = append(out, img.Pix[off:off+rowLen]...)
	}
	return out
}

// bufferSize rounds n up to the 4 byte alignment WebGPU requires for
// buffer writes, with a minimum of 4.
func bufferSize(n int) uint64 {
	if n < 4 {
		return 4
	}
	return uint64((n + 3) &^ 3) //nolint:gosec // n is positive
}
