package fx

import (
	"github.com/chewxy/math32"

	"github.com/gogpu/fxrender/batch"
	"github.com/gogpu/fxrender/recording"
)

// IVec2 is an integer 2D vector.
type IVec2 struct {
	X, Y int
}

// Add returns v + o.
func (v IVec2) Add(o IVec2) IVec2 { return IVec2{v.X + o.X, v.Y + o.Y} }

// Sub returns v - o.
func (v IVec2) Sub(o IVec2) IVec2 { return IVec2{v.X - o.X, v.Y - o.Y} }

// Mul returns v scaled by s.
func (v IVec2) Mul(s int) IVec2 { return IVec2{v.X * s, v.Y * s} }

// Float converts v to a float vector.
func (v IVec2) Float() recording.Vec2 { return recording.Vec2{X: float32(v.X), Y: float32(v.Y)} }

// IRect is an integer rectangle spanning [Min, Max).
type IRect struct {
	Min, Max IVec2
}

// Width returns the horizontal extent.
func (r IRect) Width() int { return r.Max.X - r.Min.X }

// Height returns the vertical extent.
func (r IRect) Height() int { return r.Max.Y - r.Min.Y }

// Size returns the extent of r.
func (r IRect) Size() IVec2 { return r.Max.Sub(r.Min) }

// Empty reports whether r has no area.
func (r IRect) Empty() bool { return r.Max.X <= r.Min.X || r.Max.Y <= r.Min.Y }

// Float converts r to a float rectangle.
func (r IRect) Float() FRect { return FRect{Min: r.Min.Float(), Max: r.Max.Float()} }

// Overlaps reports whether r and o share any area.
func (r IRect) Overlaps(o IRect) bool {
	return r.Min.X < o.Max.X && o.Min.X < r.Max.X &&
		r.Min.Y < o.Max.Y && o.Min.Y < r.Max.Y
}

// FRect is a float rectangle spanning [Min, Max].
type FRect struct {
	Min, Max recording.Vec2
}

// Scale returns r with both corners multiplied by s.
func (r FRect) Scale(s float32) FRect { return FRect{r.Min.Scale(s), r.Max.Scale(s)} }

// Mul returns r with both corners multiplied component-wise by v.
func (r FRect) Mul(v recording.Vec2) FRect { return FRect{r.Min.Mul(v), r.Max.Mul(v)} }

// Translate returns r moved by v.
func (r FRect) Translate(v recording.Vec2) FRect { return FRect{r.Min.Add(v), r.Max.Add(v)} }

// BoundingBox returns the integer rectangle enclosing every corner of the
// particles, padded by one pixel below and two above so that rounding and
// filtering never clip the effect. It returns the zero rectangle when there
// are no particles.
func BoundingBox(particles []batch.Particle) IRect {
	if len(particles) == 0 {
		return IRect{}
	}
	lo := particles[0].Positions[0]
	hi := lo
	for i := range particles {
		for _, p := range particles[i].Positions {
			lo.X, lo.Y = math32.Min(lo.X, p.X), math32.Min(lo.Y, p.Y)
			hi.X, hi.Y = math32.Max(hi.X, p.X), math32.Max(hi.Y, p.Y)
		}
	}
	return IRect{
		Min: IVec2{int(math32.Floor(lo.X)) - 1, int(math32.Floor(lo.Y)) - 1},
		Max: IVec2{int(math32.Ceil(hi.X)) + 2, int(math32.Ceil(hi.Y)) + 2},
	}
}
