package recording

import (
	"image/color"

	"github.com/gogpu/gputypes"
)

// state mirrors the pipeline state the device will have once every recorded
// command has been replayed.
type state struct {
	caps      [capCount]bool
	blendFunc BlendFunc
	depthFunc gputypes.CompareFunction
	lineWidth float32
	pointSize float32
	target    uint32
	mode      gputypes.PrimitiveTopology

	matrix      Mat4
	viewport    Rect
	scissorRect Rect
	texture     uint32 // as passed to BindTexture
	bound       uint32 // texture recorded, with 0 resolved to the fallback

	matrixKnown      bool
	viewportKnown    bool
	scissorRectKnown bool
	textureKnown     bool
}

// defaultState returns the initial OpenGL state.
func defaultState() state {
	return state{
		blendFunc: BlendDefault,
		depthFunc: gputypes.CompareFunctionLess,
		lineWidth: 1,
		pointSize: 1,
		mode:      gputypes.PrimitiveTopologyTriangleList,
	}
}

// Queue records state changes and geometry for one frame.
//
// Every setter compares the request with the cached state. An equal request
// is a no-op. A different request first flushes the pending draw span (all
// indices appended since the last flush become one DrawCommand), then
// records the state command and updates the cache. Geometry appends never
// flush, so consecutive submissions under the same state are batched.
//
// A Queue is not safe for concurrent use.
type Queue struct {
	opts    options
	st      state
	applied state // state after the last successful Emit

	color color.RGBA
	uv    Vec2

	vertices []Vertex
	indices  []uint32
	commands []Command
	flushed  int // index count at the last flush

	// Device-side buffer capacities, in elements.
	uploadDev   Device
	vertexAlloc int
	indexAlloc  int
}

// New creates an empty queue with the default OpenGL state cached.
func New(opts ...Option) *Queue {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Queue{
		opts:     o,
		st:       defaultState(),
		applied:  defaultState(),
		color:    color.RGBA{255, 255, 255, 255},
		vertices: make([]Vertex, 0, o.vertexCapacity),
		indices:  make([]uint32, 0, o.indexCapacity),
	}
}

// flush closes the pending draw span.
func (q *Queue) flush() {
	if n := len(q.indices) - q.flushed; n > 0 {
		q.commands = append(q.commands, DrawCommand{Mode: q.st.mode, Start: q.flushed, Count: n})
		q.flushed = len(q.indices)
	}
}

func (q *Queue) record(c Command) {
	q.flush()
	q.commands = append(q.commands, c)
}

// --------------------------------------------------------------------------
// Toggles
// --------------------------------------------------------------------------

func (q *Queue) enable(c Capability, on bool) {
	if q.st.caps[c] == on {
		return
	}
	q.record(EnableCommand{Cap: c, Enabled: on})
	q.st.caps[c] = on
}

// SetBlend enables or disables blending.
func (q *Queue) SetBlend(on bool) { q.enable(CapBlend, on) }

// Blend reports whether blending is enabled.
func (q *Queue) Blend() bool { return q.st.caps[CapBlend] }

// SetScissor enables or disables the scissor test.
func (q *Queue) SetScissor(on bool) { q.enable(CapScissor, on) }

// Scissor reports whether the scissor test is enabled.
func (q *Queue) Scissor() bool { return q.st.caps[CapScissor] }

// SetDepthTest enables or disables depth testing.
func (q *Queue) SetDepthTest(on bool) { q.enable(CapDepthTest, on) }

// DepthTest reports whether depth testing is enabled.
func (q *Queue) DepthTest() bool { return q.st.caps[CapDepthTest] }

// SetCullFace enables or disables back-face culling.
func (q *Queue) SetCullFace(on bool) { q.enable(CapCullFace, on) }

// CullFace reports whether back-face culling is enabled.
func (q *Queue) CullFace() bool { return q.st.caps[CapCullFace] }

// --------------------------------------------------------------------------
// Pipeline State
// --------------------------------------------------------------------------

// SetScissorRect sets the scissor rectangle in window coordinates.
func (q *Queue) SetScissorRect(r Rect) {
	if q.st.scissorRectKnown && q.st.scissorRect == r {
		return
	}
	q.record(SetScissorRectCommand{Rect: r})
	q.st.scissorRect, q.st.scissorRectKnown = r, true
}

// ScissorRect returns the cached scissor rectangle.
func (q *Queue) ScissorRect() Rect { return q.st.scissorRect }

// SetViewport sets the viewport in window coordinates.
func (q *Queue) SetViewport(r Rect) {
	if q.st.viewportKnown && q.st.viewport == r {
		return
	}
	q.record(SetViewportCommand{Rect: r})
	q.st.viewport, q.st.viewportKnown = r, true
}

// Viewport returns the cached viewport.
func (q *Queue) Viewport() Rect { return q.st.viewport }

// ViewportKnown reports whether a viewport has been recorded since the
// queue was created.
func (q *Queue) ViewportKnown() bool { return q.st.viewportKnown }

// SetDepthFunc sets the depth comparison function.
func (q *Queue) SetDepthFunc(f gputypes.CompareFunction) {
	if q.st.depthFunc == f {
		return
	}
	q.record(SetDepthFuncCommand{Func: f})
	q.st.depthFunc = f
}

// DepthFunc returns the cached depth comparison function.
func (q *Queue) DepthFunc() gputypes.CompareFunction { return q.st.depthFunc }

// SetBlendFunc sets the blend factors for all channels.
func (q *Queue) SetBlendFunc(src, dst gputypes.BlendFactor) {
	f := Blend(src, dst)
	if q.st.blendFunc == f {
		return
	}
	q.record(SetBlendFuncCommand{Src: src, Dst: dst})
	q.st.blendFunc = f
}

// SetBlendFuncSeparate sets distinct color and alpha blend factors.
func (q *Queue) SetBlendFuncSeparate(f BlendFunc) {
	if q.st.blendFunc == f {
		return
	}
	q.record(SetBlendFuncSeparateCommand{Func: f})
	q.st.blendFunc = f
}

// BlendFunc returns the cached blend function.
func (q *Queue) BlendFunc() BlendFunc { return q.st.blendFunc }

// SetLineWidth sets the width of rasterized lines.
func (q *Queue) SetLineWidth(w float32) {
	if q.st.lineWidth == w {
		return
	}
	q.record(SetLineWidthCommand{Width: w})
	q.st.lineWidth = w
}

// LineWidth returns the cached line width.
func (q *Queue) LineWidth() float32 { return q.st.lineWidth }

// SetPointSize sets the size of rasterized points.
func (q *Queue) SetPointSize(s float32) {
	if q.st.pointSize == s {
		return
	}
	q.record(SetPointSizeCommand{Size: s})
	q.st.pointSize = s
}

// PointSize returns the cached point size.
func (q *Queue) PointSize() float32 { return q.st.pointSize }

// SetMatrix sets the vertex transform.
func (q *Queue) SetMatrix(m Mat4) {
	if q.st.matrixKnown && q.st.matrix == m {
		return
	}
	q.record(SetMatrixCommand{Matrix: m})
	q.st.matrix, q.st.matrixKnown = m, true
}

// Matrix returns the cached vertex transform, or the identity if none has
// been set yet.
func (q *Queue) Matrix() Mat4 {
	if !q.st.matrixKnown {
		return Identity()
	}
	return q.st.matrix
}

// SetMode sets the primitive topology for subsequent geometry. Changing it
// flushes the pending span; the mode itself travels with each DrawCommand.
func (q *Queue) SetMode(m gputypes.PrimitiveTopology) {
	if q.st.mode == m {
		return
	}
	q.flush()
	q.st.mode = m
}

// Mode returns the current primitive topology.
func (q *Queue) Mode() gputypes.PrimitiveTopology { return q.st.mode }

// --------------------------------------------------------------------------
// Bindings
// --------------------------------------------------------------------------

// BindTexture binds a texture for subsequent geometry. Texture 0 selects the
// fallback texture.
func (q *Queue) BindTexture(id uint32) {
	resolved := id
	if resolved == 0 {
		resolved = q.opts.fallbackTexture
	}
	q.st.texture = id
	if q.st.textureKnown && q.st.bound == resolved {
		return
	}
	q.record(BindTextureCommand{Texture: resolved})
	q.st.bound, q.st.textureKnown = resolved, true
}

// Texture returns the texture id last passed to BindTexture.
func (q *Queue) Texture() uint32 { return q.st.texture }

// BindTarget binds a render target. Target 0 is the default framebuffer.
func (q *Queue) BindTarget(id uint32) {
	if q.st.target == id {
		return
	}
	q.record(BindTargetCommand{Target: id})
	q.st.target = id
}

// Target returns the bound render target.
func (q *Queue) Target() uint32 { return q.st.target }

// Clear records a clear of the bound target. Clears are actions, not state,
// and are always recorded.
func (q *Queue) Clear(c [4]float32, depth bool) {
	q.record(ClearCommand{Color: c, Depth: depth})
}

// --------------------------------------------------------------------------
// Geometry
// --------------------------------------------------------------------------

// SetColor sets the color of subsequently added vertices.
func (q *Queue) SetColor(c color.RGBA) { q.color = c }

// Color returns the current vertex color.
func (q *Queue) Color() color.RGBA { return q.color }

// SetUV sets the texture coordinate of subsequently added vertices.
func (q *Queue) SetUV(u, v float32) { q.uv = Vec2{u, v} }

// AddVertex appends a vertex with the current color and texture coordinate.
// It does not index the vertex; see IndexBase and AddIndex.
func (q *Queue) AddVertex(x, y float32) {
	q.vertices = append(q.vertices, Vertex{Pos: Vec2{x, y}, UV: q.uv, Color: q.color})
}

// AddQuad appends an axis-aligned quad spanning (x, y)-(ex, ey) as two
// triangles with texture coordinates covering the unit square.
func (q *Queue) AddQuad(x, y, ex, ey float32) {
	base := uint32(len(q.vertices))
	q.vertices = append(q.vertices,
		Vertex{Pos: Vec2{x, ey}, UV: Vec2{0, 0}, Color: q.color},
		Vertex{Pos: Vec2{ex, ey}, UV: Vec2{1, 0}, Color: q.color},
		Vertex{Pos: Vec2{ex, y}, UV: Vec2{1, 1}, Color: q.color},
		Vertex{Pos: Vec2{x, y}, UV: Vec2{0, 1}, Color: q.color},
	)
	q.indices = append(q.indices, base, base+1, base+2, base, base+2, base+3)
}

// AddVertices appends vertices and indexes them sequentially.
func (q *Queue) AddVertices(vs []Vertex) {
	base := uint32(len(q.vertices))
	q.vertices = append(q.vertices, vs...)
	for i := range vs {
		q.indices = append(q.indices, base+uint32(i))
	}
}

// IndexBase returns the index the next appended vertex will have.
func (q *Queue) IndexBase() uint32 { return uint32(len(q.vertices)) }

// AddIndex appends an index.
func (q *Queue) AddIndex(i uint32) { q.indices = append(q.indices, i) }

// --------------------------------------------------------------------------
// Inspection
// --------------------------------------------------------------------------

// Commands returns the recorded commands. The pending draw span is not
// included until a state change or Emit flushes it.
func (q *Queue) Commands() []Command { return q.commands }

// PendingIndices returns the number of indices appended since the last
// flush.
func (q *Queue) PendingIndices() int { return len(q.indices) - q.flushed }

// Vertices returns the accumulated vertices.
func (q *Queue) Vertices() []Vertex { return q.vertices }

// Indices returns the accumulated indices.
func (q *Queue) Indices() []uint32 { return q.indices }

// Reset discards the recorded frame without replaying it. The cached state
// rolls back to what the device had after the last successful Emit.
func (q *Queue) Reset() {
	q.st = q.applied
	q.clearFrame()
}

func (q *Queue) clearFrame() {
	q.vertices = q.vertices[:0]
	q.indices = q.indices[:0]
	clear(q.commands)
	q.commands = q.commands[:0]
	q.flushed = 0
}
