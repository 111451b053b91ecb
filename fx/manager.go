package fx

import "github.com/gogpu/fxrender/batch"

// Layer selects when unordered effects are drawn relative to world layers.
type Layer int

// BlendMode selects how a particle texture is combined with what is below.
type BlendMode uint8

const (
	// BlendNormal alpha-blends particles.
	BlendNormal BlendMode = iota
	// BlendAdditive adds particle color to the destination.
	BlendAdditive
)

// String returns the blend mode name.
func (m BlendMode) String() string {
	switch m {
	case BlendNormal:
		return "normal"
	case BlendAdditive:
		return "additive"
	}
	return "unknown"
}

// System is the render-relevant view of one effect instance.
type System struct {
	// Dead systems are skipped.
	Dead bool
	// Ordered systems are interleaved with world objects by the caller and
	// rendered through the atlas; unordered ones are drawn per layer.
	Ordered bool
	// Layers holds the layer of each sub-system.
	Layers []Layer
}

// Manager is the particle simulation the renderer draws from.
type Manager interface {
	// Systems returns all effect instances. Indices are stable for a frame
	// and are the ids passed to DrawOrdered.
	Systems() []System

	// GenQuads appends the quads of one sub-system to dst.
	GenQuads(dst []batch.Particle, system, subSystem int) []batch.Particle

	// BlendMode returns the blend mode of a particle texture.
	BlendMode(tex batch.TextureName) BlendMode
}

// Texture is a loaded GPU texture. Size is the logical image size and
// RealSize the allocated size, larger when the image was padded.
type Texture struct {
	ID       uint32
	Size     IVec2
	RealSize IVec2
}

// TextureProvider resolves particle texture names to GPU textures.
type TextureProvider interface {
	Texture(name batch.TextureName) (Texture, bool)
}
