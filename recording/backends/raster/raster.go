package raster

import (
	"github.com/chewxy/math32"
	"github.com/gogpu/gputypes"

	"github.com/gogpu/fxrender/internal/blend"
	"github.com/gogpu/fxrender/recording"
)

// surface is an RGBA8 image stored bottom row first.
type surface struct {
	w, h int
	pix  []byte
}

func newSurface(w, h int) *surface {
	return &surface{w: w, h: h, pix: make([]byte, 4*w*h)}
}

func whiteSurface() *surface {
	s := newSurface(1, 1)
	copy(s.pix, []byte{255, 255, 255, 255})
	return s
}

func (s *surface) at(x, y int) blend.Color {
	i := 4 * (y*s.w + x)
	return blend.Color{s.pix[i], s.pix[i+1], s.pix[i+2], s.pix[i+3]}
}

func (s *surface) set(x, y int, c blend.Color) {
	i := 4 * (y*s.w + x)
	copy(s.pix[i:i+4], c[:])
}

// sample returns the texel nearest to (u, v), clamped to the edges.
func (s *surface) sample(u, v float32) blend.Color {
	x := clampInt(int(math32.Floor(u*float32(s.w))), 0, s.w-1)
	y := clampInt(int(math32.Floor(v*float32(s.h))), 0, s.h-1)
	return s.at(x, y)
}

func clampInt(v, lo, hi int) int {
	return max(lo, min(v, hi))
}

// toColor converts a [0,1] float color to bytes, rounding to nearest.
func toColor(c [4]float32) blend.Color {
	var out blend.Color
	for i, f := range c {
		out[i] = byte(math32.Floor(math32.Max(0, math32.Min(f, 1))*255 + 0.5))
	}
	return out
}

// intersect clips the pixel span [x0,x1) x [y0,y1) to r.
func intersect(x0, y0, x1, y1 int, r recording.Rect) (int, int, int, int) {
	return max(x0, r.X), max(y0, r.Y), min(x1, r.X+r.W), min(y1, r.Y+r.H)
}

func blendSupported(f gputypes.BlendFactor) bool { return blend.Supported(f) }

// fragment is an interpolated vertex attribute set.
type fragment struct {
	uv    recording.Vec2
	color [4]float32
}

func fragmentOf(v recording.Vertex) fragment {
	return fragment{
		uv:    v.UV,
		color: [4]float32{float32(v.Color.R), float32(v.Color.G), float32(v.Color.B), float32(v.Color.A)},
	}
}

// lerp3 interpolates three fragments with barycentric weights.
func lerp3(a, b, c fragment, l0, l1, l2 float32) fragment {
	f := fragment{uv: recording.Vec2{
		X: a.uv.X*l0 + b.uv.X*l1 + c.uv.X*l2,
		Y: a.uv.Y*l0 + b.uv.Y*l1 + c.uv.Y*l2,
	}}
	for i := range f.color {
		f.color[i] = a.color[i]*l0 + b.color[i]*l1 + c.color[i]*l2
	}
	return f
}

// window maps vertex i to window coordinates through the matrix and the
// viewport.
func (d *Device) window(i uint32) recording.Vec2 {
	p := d.vertices[i].Pos
	x, y := d.matrix.Transform(p.X, p.Y)
	vp := d.viewport
	return recording.Vec2{
		X: float32(vp.X) + (x+1)*0.5*float32(vp.W),
		Y: float32(vp.Y) + (y+1)*0.5*float32(vp.H),
	}
}

// bounds returns the pixel span fragments may be written to.
func (d *Device) bounds() (x0, y0, x1, y1 int) {
	x0, y0, x1, y1 = intersect(0, 0, d.target.w, d.target.h, d.viewport)
	if d.scissor {
		x0, y0, x1, y1 = intersect(x0, y0, x1, y1, d.scissorR)
	}
	return x0, y0, x1, y1
}

// shade writes one fragment to the bound target at pixel (x, y).
func (d *Device) shade(x, y int, f fragment) {
	var vc blend.Color
	for i, c := range f.color {
		vc[i] = byte(math32.Floor(math32.Max(0, math32.Min(c, 255)) + 0.5))
	}
	texel := blend.Color{255, 255, 255, 255}
	if d.texture != nil {
		texel = d.texture.sample(f.uv.X, f.uv.Y)
	}
	src := blend.Modulate(vc, texel)
	if d.blend {
		src = blend.Apply(blend.Func{
			SrcRGB:   d.blendFunc.SrcRGB,
			DstRGB:   d.blendFunc.DstRGB,
			SrcAlpha: d.blendFunc.SrcAlpha,
			DstAlpha: d.blendFunc.DstAlpha,
		}, src, d.target.at(x, y))
	}
	d.target.set(x, y, src)
}

// orient returns twice the signed area of (a, b, p), positive when the
// points turn counter-clockwise.
func orient(a, b, p recording.Vec2) float32 {
	return (b.X-a.X)*(p.Y-a.Y) - (b.Y-a.Y)*(p.X-a.X)
}

// topLeft reports whether pixel centers exactly on edge a->b belong to the
// triangle. Opposite directions of a shared edge give opposite answers, so
// the edge is covered once.
func topLeft(a, b recording.Vec2) bool {
	dx, dy := b.X-a.X, b.Y-a.Y
	return dy > 0 || (dy == 0 && dx < 0)
}

func covers(w float32, a, b recording.Vec2) bool {
	return w > 0 || (w == 0 && topLeft(a, b))
}

func (d *Device) triangle(i0, i1, i2 uint32) {
	p0, p1, p2 := d.window(i0), d.window(i1), d.window(i2)
	f0, f1, f2 := fragmentOf(d.vertices[i0]), fragmentOf(d.vertices[i1]), fragmentOf(d.vertices[i2])

	area := orient(p0, p1, p2)
	if area == 0 {
		return
	}
	if area < 0 {
		if d.cullFace {
			return
		}
		p1, p2 = p2, p1
		f1, f2 = f2, f1
		area = -area
	}

	bx0, by0, bx1, by1 := d.bounds()
	x0 := max(bx0, int(math32.Floor(math32.Min(p0.X, math32.Min(p1.X, p2.X)))))
	x1 := min(bx1, int(math32.Ceil(math32.Max(p0.X, math32.Max(p1.X, p2.X))))+1)
	y0 := max(by0, int(math32.Floor(math32.Min(p0.Y, math32.Min(p1.Y, p2.Y)))))
	y1 := min(by1, int(math32.Ceil(math32.Max(p0.Y, math32.Max(p1.Y, p2.Y))))+1)

	inv := 1 / area
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			p := recording.Vec2{X: float32(x) + 0.5, Y: float32(y) + 0.5}
			w0 := orient(p1, p2, p)
			w1 := orient(p2, p0, p)
			w2 := orient(p0, p1, p)
			if !covers(w0, p1, p2) || !covers(w1, p2, p0) || !covers(w2, p0, p1) {
				continue
			}
			d.shade(x, y, lerp3(f0, f1, f2, w0*inv, w1*inv, w2*inv))
		}
	}
}

// line draws a one pixel wide line by stepping along its major axis.
func (d *Device) line(i0, i1 uint32) {
	p0, p1 := d.window(i0), d.window(i1)
	f0, f1 := fragmentOf(d.vertices[i0]), fragmentOf(d.vertices[i1])
	bx0, by0, bx1, by1 := d.bounds()

	steps := int(math32.Ceil(math32.Max(math32.Abs(p1.X-p0.X), math32.Abs(p1.Y-p0.Y))))
	if steps == 0 {
		steps = 1
	}
	// The last pixel is left for the next segment.
	for n := 0; n < steps; n++ {
		t := (float32(n) + 0.5) / float32(steps)
		x := int(math32.Floor(p0.X + (p1.X-p0.X)*t))
		y := int(math32.Floor(p0.Y + (p1.Y-p0.Y)*t))
		if x < bx0 || x >= bx1 || y < by0 || y >= by1 {
			continue
		}
		d.shade(x, y, lerp3(f0, f1, f1, 1-t, t, 0))
	}
}

func (d *Device) point(i uint32) {
	p := d.window(i)
	x, y := int(math32.Floor(p.X)), int(math32.Floor(p.Y))
	bx0, by0, bx1, by1 := d.bounds()
	if x < bx0 || x >= bx1 || y < by0 || y >= by1 {
		return
	}
	d.shade(x, y, fragmentOf(d.vertices[i]))
}
