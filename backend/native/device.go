// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

package native

import (
	"errors"
	"fmt"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/fxrender"
	"github.com/gogpu/fxrender/recording"
)

// Errors returned by the constructors and the frame lifecycle.
var (
	ErrNilDevice    = errors.New("native: nil hal device or queue")
	ErrInvalidSize  = errors.New("native: invalid size")
	ErrNoHAL        = errors.New("native: provider does not expose HAL types")
	ErrNoFrame      = errors.New("native: EndFrame without BeginFrame")
	ErrFrameTimeout = errors.New("native: timed out waiting for GPU")
)

// targetFormat is the color format of offscreen targets and textures.
const targetFormat = gputypes.TextureFormatRGBA8Unorm

// texture is a sampled texture or the color attachment of a target.
type texture struct {
	tex    hal.Texture
	view   hal.TextureView
	width  int
	height int
	format gputypes.TextureFormat
}

// Device replays recorded frames on a wgpu HAL device.
// It implements recording.Device and render.TargetAllocator.
//
// The default framebuffer is either a surface view set with SetSurface or,
// until then, an offscreen texture owned by the device.
type Device struct {
	device hal.Device
	queue  hal.Queue
	format gputypes.TextureFormat
	width  int
	height int

	pipes   *pipelines
	surface hal.TextureView
	screen  *texture

	textures map[uint32]*texture
	targets  map[uint32]uint32 // framebuffer -> color texture
	nextID   uint32
	white    uint32

	vertexBuf  hal.Buffer
	indexBuf   hal.Buffer
	indexCount int

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
	texture   uint32
	target    uint32

	frame  *frame
	err    error
	logged map[string]bool
}

// Ensure Device implements recording.Device.
var _ recording.Device = (*Device)(nil)

// New creates a device on an existing HAL device and queue. The default
// framebuffer is width x height in the given format.
func New(device hal.Device, queue hal.Queue, width, height int, format gputypes.TextureFormat) (*Device, error) {
	if device == nil || queue == nil {
		return nil, ErrNilDevice
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}
	if format == gputypes.TextureFormatUndefined {
		format = gputypes.TextureFormatBGRA8Unorm
	}

	pipes, err := newPipelines(device)
	if err != nil {
		return nil, fmt.Errorf("native: %w", err)
	}
	d := &Device{
		device:   device,
		queue:    queue,
		format:   format,
		width:    width,
		height:   height,
		pipes:    pipes,
		textures: make(map[uint32]*texture),
		targets:  make(map[uint32]uint32),
		logged:   make(map[string]bool),
	}
	if err := d.init(); err != nil {
		d.Close()
		return nil, fmt.Errorf("native: %w", err)
	}
	d.resetState()

	fxrender.Logger().Info("native: device created",
		"width", width, "height", height, "format", format)
	return d, nil
}

// NewFromProvider creates a device sharing the GPU of a host application.
// The provider must also implement HalDevice() any and HalQueue() any
// returning hal.Device and hal.Queue.
func NewFromProvider(provider gpucontext.DeviceProvider, width, height int) (*Device, error) {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	if provider == nil {
		return nil, ErrNoHAL
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return nil, ErrNoHAL
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, fmt.Errorf("%w: HalDevice is not hal.Device", ErrNoHAL)
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, fmt.Errorf("%w: HalQueue is not hal.Queue", ErrNoHAL)
	}
	return New(device, queue, width, height, provider.SurfaceFormat())
}

func (d *Device) init() error {
	white, err := d.newTexture("fxrender_white", 1, 1, targetFormat, textureUsage)
	if err != nil {
		return err
	}
	d.writeTexture(white, []byte{255, 255, 255, 255})
	d.white = d.addTexture(white)

	d.screen, err = d.newTexture("fxrender_screen", d.width, d.height, d.format, targetUsage)
	return err
}

// resetState restores the OpenGL defaults.
func (d *Device) resetState() {
	d.blend, d.scissor, d.depthTest, d.cullFace = false, false, false, false
	d.blendFunc = recording.BlendDefault
	d.depthFunc = gputypes.CompareFunctionLess
	d.viewport = recording.Rect{W: d.width, H: d.height}
	d.scissorR = d.viewport
	d.lineWidth, d.pointSize = 1, 1
	d.matrix = recording.Identity()
	d.texture = 0
	d.target = 0
}

// SetSurface makes view the default framebuffer. A nil view switches back
// to the device's offscreen screen texture. The view must stay valid until
// the next EndFrame.
func (d *Device) SetSurface(view hal.TextureView, width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}
	d.surface = view
	if width != d.width || height != d.height {
		d.width, d.height = width, height
		d.destroyTexture(d.screen)
		var err error
		d.screen, err = d.newTexture("fxrender_screen", width, height, d.format, targetUsage)
		if err != nil {
			return fmt.Errorf("native: %w", err)
		}
	}
	return nil
}

// Width returns the default framebuffer width.
func (d *Device) Width() int { return d.width }

// Height returns the default framebuffer height.
func (d *Device) Height() int { return d.height }

// Format returns the default framebuffer format.
func (d *Device) Format() gputypes.TextureFormat { return d.format }

// fail latches the first error. code is one of the recording error codes.
func (d *Device) fail(code error, format string, args ...any) {
	if d.err == nil {
		d.err = fmt.Errorf("native: %s: %w", fmt.Sprintf(format, args...), code)
	}
}

// Err implements recording.Device.
func (d *Device) Err() error {
	err := d.err
	d.err = nil
	return err
}

// debugOnce logs an unsupported feature the first time it is used.
func (d *Device) debugOnce(key, msg string, args ...any) {
	if d.logged[key] {
		return
	}
	d.logged[key] = true
	fxrender.Logger().Debug(msg, args...)
}

// Close releases every GPU resource owned by the device. The HAL device and
// queue are not destroyed.
func (d *Device) Close() {
	if d.frame != nil {
		d.abortFrame()
	}
	for id, t := range d.textures {
		d.destroyTexture(t)
		delete(d.textures, id)
	}
	clear(d.targets)
	d.destroyTexture(d.screen)
	d.screen = nil
	if d.vertexBuf != nil {
		d.device.DestroyBuffer(d.vertexBuf)
		d.vertexBuf = nil
	}
	if d.indexBuf != nil {
		d.device.DestroyBuffer(d.indexBuf)
		d.indexBuf = nil
	}
	if d.pipes != nil {
		d.pipes.destroy()
		d.pipes = nil
	}
}

// UploadVertices implements recording.Device.
func (d *Device) UploadVertices(vertices []recording.Vertex, realloc bool) {
	data := recording.AppendVertices(make([]byte, 0, len(vertices)*recording.VertexSize), vertices)
	buf, err := d.upload(d.vertexBuf, "fxrender_vertices", data, realloc, gputypes.BufferUsageVertex)
	if err != nil {
		d.fail(recording.ErrOutOfMemory, "upload vertices: %v", err)
		return
	}
	d.vertexBuf = buf
}

// UploadIndices implements recording.Device.
func (d *Device) UploadIndices(indices []uint32, realloc bool) {
	data := recording.AppendIndices(make([]byte, 0, len(indices)*4), indices)
	buf, err := d.upload(d.indexBuf, "fxrender_indices", data, realloc, gputypes.BufferUsageIndex)
	if err != nil {
		d.fail(recording.ErrOutOfMemory, "upload indices: %v", err)
		return
	}
	d.indexBuf = buf
	d.indexCount = len(indices)
}

// upload writes data to buf, replacing buf when realloc is set.
func (d *Device) upload(buf hal.Buffer, label string, data []byte, realloc bool, usage gputypes.BufferUsage) (hal.Buffer, error) {
	if realloc || buf == nil {
		if buf != nil {
			d.device.DestroyBuffer(buf)
		}
		var err error
		buf, err = d.device.CreateBuffer(&hal.BufferDescriptor{
			Label: label,
			Size:  bufferSize(len(data)),
			Usage: usage | gputypes.BufferUsageCopyDst,
		})
		if err != nil {
			return nil, fmt.Errorf("create %s: %w", label, err)
		}
	}
	d.queue.WriteBuffer(buf, 0, data)
	return buf, nil
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
		if on {
			d.debugOnce("depth", "native: depth test has no depth attachment")
		}
	case recording.CapCullFace:
		d.cullFace = on
	default:
		d.fail(recording.ErrInvalidEnum, "enable capability %d", c)
	}
}

// ScissorRect implements recording.Device.
func (d *Device) ScissorRect(r recording.Rect) {
	if r.W < 0 || r.H < 0 {
		d.fail(recording.ErrInvalidValue, "scissor %dx%d", r.W, r.H)
		return
	}
	d.scissorR = r
}

// Viewport implements recording.Device.
func (d *Device) Viewport(r recording.Rect) {
	if r.W < 0 || r.H < 0 {
		d.fail(recording.ErrInvalidValue, "viewport %dx%d", r.W, r.H)
		return
	}
	d.viewport = r
}

// DepthFunc implements recording.Device.
func (d *Device) DepthFunc(f gputypes.CompareFunction) { d.depthFunc = f }

// BlendFunc implements recording.Device.
func (d *Device) BlendFunc(f recording.BlendFunc) {
	for _, factor := range []gputypes.BlendFactor{f.SrcRGB, f.DstRGB, f.SrcAlpha, f.DstAlpha} {
		if !validFactor(factor) {
			d.fail(recording.ErrInvalidEnum, "blend factor %d", factor)
			return
		}
	}
	d.blendFunc = f
}

// LineWidth implements recording.Device. WebGPU rasterizes 1 pixel lines
// only; other widths are accepted and ignored.
func (d *Device) LineWidth(w float32) {
	if w <= 0 {
		d.fail(recording.ErrInvalidValue, "line width %g", w)
		return
	}
	if w != 1 {
		d.debugOnce("lineWidth", "native: line width unsupported", "width", w)
	}
	d.lineWidth = w
}

// PointSize implements recording.Device. WebGPU rasterizes 1 pixel points
// only; other sizes are accepted and ignored.
func (d *Device) PointSize(s float32) {
	if s <= 0 {
		d.fail(recording.ErrInvalidValue, "point size %g", s)
		return
	}
	if s != 1 {
		d.debugOnce("pointSize", "native: point size unsupported", "size", s)
	}
	d.pointSize = s
}

// SetMatrix implements recording.Device.
func (d *Device) SetMatrix(m recording.Mat4) { d.matrix = m }

// BindTexture implements recording.Device. Texture 0 samples white.
func (d *Device) BindTexture(id uint32) {
	if id != 0 {
		if _, ok := d.textures[id]; !ok {
			d.fail(recording.ErrInvalidValue, "bind unknown texture %d", id)
			return
		}
	}
	d.texture = id
}

// BindTarget implements recording.Device. Target 0 is the default
// framebuffer.
func (d *Device) BindTarget(id uint32) {
	if id != 0 {
		if _, ok := d.targets[id]; !ok {
			d.fail(recording.ErrInvalidTarget, "bind unknown target %d", id)
			return
		}
	}
	if id != d.target && d.frame != nil {
		d.frame.endPass()
	}
	d.target = id
}
