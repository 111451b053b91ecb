package recording

import (
	"encoding/binary"
	"image/color"
	"math"

	"github.com/gogpu/gputypes"
)

// Vec2 is a 2D vector in float32 precision.
type Vec2 struct {
	X, Y float32
}

// Add returns v + o.
func (v Vec2) Add(o Vec2) Vec2 { return Vec2{v.X + o.X, v.Y + o.Y} }

// Sub returns v - o.
func (v Vec2) Sub(o Vec2) Vec2 { return Vec2{v.X - o.X, v.Y - o.Y} }

// Mul returns the component-wise product of v and o.
func (v Vec2) Mul(o Vec2) Vec2 { return Vec2{v.X * o.X, v.Y * o.Y} }

// Scale returns v * s.
func (v Vec2) Scale(s float32) Vec2 { return Vec2{v.X * s, v.Y * s} }

// Vertex is a single vertex as uploaded to the GPU.
type Vertex struct {
	Pos   Vec2
	UV    Vec2
	Color color.RGBA
}

// VertexSize is the size of an encoded vertex in bytes:
// 2 x f32 position, 2 x f32 texture coordinate, 4 x unorm8 color.
const VertexSize = 20

// AppendVertices encodes vertices in little-endian GPU layout.
func AppendVertices(dst []byte, vertices []Vertex) []byte {
	var buf [VertexSize]byte
	for i := range vertices {
		v := &vertices[i]
		binary.LittleEndian.PutUint32(buf[0:], math.Float32bits(v.Pos.X))
		binary.LittleEndian.PutUint32(buf[4:], math.Float32bits(v.Pos.Y))
		binary.LittleEndian.PutUint32(buf[8:], math.Float32bits(v.UV.X))
		binary.LittleEndian.PutUint32(buf[12:], math.Float32bits(v.UV.Y))
		buf[16] = v.Color.R
		buf[17] = v.Color.G
		buf[18] = v.Color.B
		buf[19] = v.Color.A
		dst = append(dst, buf[:]...)
	}
	return dst
}

// AppendIndices encodes 32-bit indices in little-endian order.
func AppendIndices(dst []byte, indices []uint32) []byte {
	for _, i := range indices {
		dst = binary.LittleEndian.AppendUint32(dst, i)
	}
	return dst
}

// Rect is an integer rectangle in window coordinates (origin bottom-left,
// as for glScissor and glViewport).
type Rect struct {
	X, Y, W, H int
}

// Empty reports whether the rectangle has no area.
func (r Rect) Empty() bool { return r.W <= 0 || r.H <= 0 }

// Capability is a pipeline feature that can be switched on and off.
type Capability uint8

const (
	CapBlend Capability = iota
	CapScissor
	CapDepthTest
	CapCullFace

	capCount
)

var capabilityNames = [...]string{
	CapBlend:     "Blend",
	CapScissor:   "Scissor",
	CapDepthTest: "DepthTest",
	CapCullFace:  "CullFace",
}

// String returns the capability name.
func (c Capability) String() string {
	if int(c) < len(capabilityNames) {
		return capabilityNames[c]
	}
	return "Unknown"
}

// BlendFunc holds the source and destination factors for the color and
// alpha channels. A simple blend function uses the same pair for both.
type BlendFunc struct {
	SrcRGB, DstRGB     gputypes.BlendFactor
	SrcAlpha, DstAlpha gputypes.BlendFactor
}

// Blend returns the simple blend function (src, dst) applied to all channels.
func Blend(src, dst gputypes.BlendFactor) BlendFunc {
	return BlendFunc{SrcRGB: src, DstRGB: dst, SrcAlpha: src, DstAlpha: dst}
}

// BlendSeparate returns a blend function with distinct alpha factors.
func BlendSeparate(srcRGB, dstRGB, srcAlpha, dstAlpha gputypes.BlendFactor) BlendFunc {
	return BlendFunc{SrcRGB: srcRGB, DstRGB: dstRGB, SrcAlpha: srcAlpha, DstAlpha: dstAlpha}
}

// Separate reports whether the alpha factors differ from the color factors.
func (f BlendFunc) Separate() bool {
	return f.SrcRGB != f.SrcAlpha || f.DstRGB != f.DstAlpha
}

// Common blend functions.
var (
	// BlendDefault is the initial GL blend function.
	BlendDefault = Blend(gputypes.BlendFactorOne, gputypes.BlendFactorZero)
	// BlendAlpha is straight alpha blending.
	BlendAlpha = Blend(gputypes.BlendFactorSrcAlpha, gputypes.BlendFactorOneMinusSrcAlpha)
	// BlendAdditive adds source to destination.
	BlendAdditive = Blend(gputypes.BlendFactorOne, gputypes.BlendFactorOne)
)
