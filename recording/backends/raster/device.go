// Package raster provides a CPU device for the recording system.
// It replays recorded frames with OpenGL fixed-function semantics into
// in-memory surfaces.
//
// The raster device serves multiple purposes:
//   - Reference implementation for other devices
//   - Pixel-accurate testing of compositing without a GPU
//   - Offline rendering of frame sequences
//
// # Semantics
//
//   - Surfaces store rows bottom-up, like OpenGL textures
//   - Clip space is mapped to window coordinates through the viewport
//   - Textures are sampled nearest with clamp to edge
//   - Fragment color is vertex color times texel
//   - Blending uses independent color and alpha factors
//   - Back faces are culled with counter-clockwise front faces
//
// There is no depth buffer: the depth test is accepted as state only.
//
// # Example
//
//	// Import to register the device
//	import _ "github.com/gogpu/fxrender/recording/backends/raster"
//
//	// Create via registry
//	dev, _ := recording.NewDevice("raster", 640, 480)
//
//	// Or create directly
//	dev, _ := raster.New(640, 480)
//
//	// Replay a frame
//	q.Emit(dev)
//
//	// Get output
//	dev.SavePNG("frame.png")
package raster

import (
	"errors"
	"fmt"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/fxrender/recording"
)

// ErrInvalidSize is returned by New for a non-positive size.
var ErrInvalidSize = errors.New("raster: invalid size")

func init() {
	recording.Register("raster", func(width, height int) (recording.Device, error) {
		d, err := New(width, height)
		if err != nil {
			return nil, err
		}
		return d, nil
	})
}

// Device replays recorded frames on the CPU.
// It implements recording.Device and render.TargetAllocator.
type Device struct {
	screen   *surface
	textures map[uint32]*surface
	targets  map[uint32]uint32 // framebuffer -> color texture
	nextID   uint32
	white    uint32

	// Pipeline state.
	blend     bool
	scissor   bool
	depthTest bool
	cullFace  bool
	blendFunc recording.BlendFunc
	depthFunc gputypes.CompareFunction
	viewport  recording.Rect
	scissorR  recording.Rect
	lineWidth float32
	pointSize float32
	matrix    recording.Mat4
	texture   *surface
	target    *surface

	vertices []recording.Vertex
	indices  []uint32

	err    error
	frames int
}

// Ensure Device implements recording.Device.
var _ recording.Device = (*Device)(nil)

// New creates a device with a width x height default framebuffer cleared
// to transparent black.
func New(width, height int) (*Device, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}
	d := &Device{
		screen:   newSurface(width, height),
		textures: make(map[uint32]*surface),
		targets:  make(map[uint32]uint32),
	}
	d.white = d.addTexture(whiteSurface())
	d.resetState()
	return d, nil
}

// resetState restores the OpenGL defaults.
func (d *Device) resetState() {
	d.blend, d.scissor, d.depthTest, d.cullFace = false, false, false, false
	d.blendFunc = recording.BlendDefault
	d.depthFunc = gputypes.CompareFunctionLess
	d.viewport = recording.Rect{W: d.screen.w, H: d.screen.h}
	d.scissorR = d.viewport
	d.lineWidth, d.pointSize = 1, 1
	d.matrix = recording.Identity()
	d.texture = nil
	d.target = d.screen
}

// Width returns the width of the default framebuffer.
func (d *Device) Width() int { return d.screen.w }

// Height returns the height of the default framebuffer.
func (d *Device) Height() int { return d.screen.h }

// Frames returns the number of frames completed with EndFrame.
func (d *Device) Frames() int { return d.frames }

// fail latches the first error until Err is called.
func (d *Device) fail(code error, format string, args ...any) {
	if d.err == nil {
		d.err = fmt.Errorf("raster: %s: %w", fmt.Sprintf(format, args...), code)
	}
}

// Err implements recording.Device.
func (d *Device) Err() error {
	err := d.err
	d.err = nil
	return err
}

// BeginFrame implements recording.Device.
func (d *Device) BeginFrame() error { return nil }

// EndFrame implements recording.Device.
func (d *Device) EndFrame() error {
	d.frames++
	return nil
}

// UploadVertices implements recording.Device.
func (d *Device) UploadVertices(vertices []recording.Vertex, realloc bool) {
	if realloc || cap(d.vertices) < len(vertices) {
		d.vertices = make([]recording.Vertex, len(vertices))
	}
	d.vertices = d.vertices[:len(vertices)]
	copy(d.vertices, vertices)
}

// UploadIndices implements recording.Device.
func (d *Device) UploadIndices(indices []uint32, realloc bool) {
	if realloc || cap(d.indices) < len(indices) {
		d.indices = make([]uint32, len(indices))
	}
	d.indices = d.indices[:len(indices)]
	copy(d.indices, indices)
}

// Enable implements recording.Device.
func (d *Device) Enable(c recording.Capability, on bool) {
	switch c {
	case recording.CapBlend:
		d.blend = on
	case recording.CapScissor:
		d.scissor = on
	case recording.CapDepthTest:
		d.depthTest = on
	case recording.CapCullFace:
		d.cullFace = on
	default:
		d.fail(recording.ErrInvalidEnum, "enable capability %d", c)
	}
}

// ScissorRect implements recording.Device.
func (d *Device) ScissorRect(r recording.Rect) {
	if r.W < 0 || r.H < 0 {
		d.fail(recording.ErrInvalidValue, "scissor %+v", r)
		return
	}
	d.scissorR = r
}

// Viewport implements recording.Device.
func (d *Device) Viewport(r recording.Rect) {
	if r.W < 0 || r.H < 0 {
		d.fail(recording.ErrInvalidValue, "viewport %+v", r)
		return
	}
	d.viewport = r
}

// DepthFunc implements recording.Device.
func (d *Device) DepthFunc(f gputypes.CompareFunction) { d.depthFunc = f }

// BlendFunc implements recording.Device.
func (d *Device) BlendFunc(f recording.BlendFunc) {
	for _, factor := range []gputypes.BlendFactor{f.SrcRGB, f.DstRGB, f.SrcAlpha, f.DstAlpha} {
		if !blendSupported(factor) {
			d.fail(recording.ErrInvalidEnum, "blend factor %d", factor)
			return
		}
	}
	d.blendFunc = f
}

// LineWidth implements recording.Device. Lines are always one pixel wide.
func (d *Device) LineWidth(w float32) {
	if w <= 0 {
		d.fail(recording.ErrInvalidValue, "line width %v", w)
		return
	}
	d.lineWidth = w
}

// PointSize implements recording.Device. Points are always one pixel.
func (d *Device) PointSize(s float32) {
	if s <= 0 {
		d.fail(recording.ErrInvalidValue, "point size %v", s)
		return
	}
	d.pointSize = s
}

// SetMatrix implements recording.Device.
func (d *Device) SetMatrix(m recording.Mat4) { d.matrix = m }

// BindTexture implements recording.Device. Texture 0 unbinds; geometry
// drawn without a texture samples opaque white.
func (d *Device) BindTexture(id uint32) {
	if id == 0 {
		d.texture = nil
		return
	}
	s, ok := d.textures[id]
	if !ok {
		d.fail(recording.ErrInvalidValue, "unknown texture %d", id)
		return
	}
	d.texture = s
}

// BindTarget implements recording.Device. Target 0 is the default
// framebuffer.
func (d *Device) BindTarget(id uint32) {
	if id == 0 {
		d.target = d.screen
		return
	}
	tex, ok := d.targets[id]
	if !ok {
		d.fail(recording.ErrInvalidTarget, "unknown target %d", id)
		return
	}
	d.target = d.textures[tex]
}

// Clear implements recording.Device. The scissor test applies to clears.
func (d *Device) Clear(color [4]float32, depth bool) {
	c := toColor(color)
	x0, y0, x1, y1 := 0, 0, d.target.w, d.target.h
	if d.scissor {
		x0, y0, x1, y1 = intersect(x0, y0, x1, y1, d.scissorR)
	}
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			d.target.set(x, y, c)
		}
	}
}

// DrawIndexed implements recording.Device.
func (d *Device) DrawIndexed(mode gputypes.PrimitiveTopology, start, count int) {
	if start < 0 || count < 0 || start+count > len(d.indices) {
		d.fail(recording.ErrInvalidOperation, "draw [%d,%d) of %d indices", start, start+count, len(d.indices))
		return
	}
	idx := d.indices[start : start+count]
	for _, i := range idx {
		if int(i) >= len(d.vertices) {
			d.fail(recording.ErrInvalidOperation, "index %d of %d vertices", i, len(d.vertices))
			return
		}
	}
	if d.viewport.Empty() {
		return
	}

	switch mode {
	case gputypes.PrimitiveTopologyTriangleList:
		for n := 0; n+2 < len(idx); n += 3 {
			d.triangle(idx[n], idx[n+1], idx[n+2])
		}
	case gputypes.PrimitiveTopologyTriangleStrip:
		for n := 0; n+2 < len(idx); n++ {
			if n%2 == 0 {
				d.triangle(idx[n], idx[n+1], idx[n+2])
			} else {
				d.triangle(idx[n+1], idx[n], idx[n+2])
			}
		}
	case gputypes.PrimitiveTopologyLineList:
		for n := 0; n+1 < len(idx); n += 2 {
			d.line(idx[n], idx[n+1])
		}
	case gputypes.PrimitiveTopologyLineStrip:
		for n := 0; n+1 < len(idx); n++ {
			d.line(idx[n], idx[n+1])
		}
	case gputypes.PrimitiveTopologyPointList:
		for _, i := range idx {
			d.point(i)
		}
	default:
		d.fail(recording.ErrInvalidEnum, "primitive topology %d", mode)
	}
}
