// Package batch converts particle quads into triangle-list vertices grouped
// into runs of consecutive quads sharing a texture.
package batch

import (
	"image/color"

	"github.com/gogpu/fxrender/recording"
)

// TextureName identifies a particle texture in the effect definitions.
type TextureName int

// Particle is a textured quad produced by the particle simulation.
// Corners are given in order; the quad is split along the 0-2 diagonal.
type Particle struct {
	Positions [4]recording.Vec2
	TexCoords [4]recording.Vec2
	Color     color.RGBA
	Texture   TextureName
}

// Element is a run of vertices drawn with one texture. NumVertices is always
// a multiple of 6.
type Element struct {
	FirstVertex int
	NumVertices int
	Texture     TextureName
}

// VerticesPerQuad is the number of triangle-list vertices emitted per quad.
const VerticesPerQuad = 6

// quadCorners lists the corners of the two triangles of a quad.
var quadCorners = [VerticesPerQuad]int{0, 1, 2, 2, 0, 3}

// Buffers accumulates particles for one draw pass. Adjacent elements never
// share a texture; particles are kept in submission order.
type Buffers struct {
	Vertices []recording.Vertex
	Elements []Element
}

// Add appends particles. A particle extends the last element when it uses
// the same texture and starts a new element otherwise.
func (b *Buffers) Add(particles []Particle) {
	for i := range particles {
		p := &particles[i]
		if n := len(b.Elements); n == 0 || b.Elements[n-1].Texture != p.Texture {
			b.Elements = append(b.Elements, Element{
				FirstVertex: len(b.Vertices),
				Texture:     p.Texture,
			})
		}
		for _, c := range quadCorners {
			b.Vertices = append(b.Vertices, recording.Vertex{
				Pos:   p.Positions[c],
				UV:    p.TexCoords[c],
				Color: p.Color,
			})
		}
		b.Elements[len(b.Elements)-1].NumVertices += VerticesPerQuad
	}
}

// Clear empties the buffers, keeping their storage.
func (b *Buffers) Clear() {
	b.Vertices = b.Vertices[:0]
	b.Elements = b.Elements[:0]
}

// Empty reports whether nothing has been added since the last Clear.
func (b *Buffers) Empty() bool { return len(b.Elements) == 0 }

// ElementVertices returns the vertices of e.
func (b *Buffers) ElementVertices(e Element) []recording.Vertex {
	return b.Vertices[e.FirstVertex : e.FirstVertex+e.NumVertices]
}
