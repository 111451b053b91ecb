package fx

import (
	"github.com/gogpu/fxrender"
	"github.com/gogpu/fxrender/batch"
	"github.com/gogpu/fxrender/recording"
)

type textureEntry struct {
	tex   Texture
	scale recording.Vec2
	ok    bool
}

// TextureTable caches texture lookups and the texture-coordinate scale of
// every particle texture. The scale maps coordinates in [0,1] over the
// logical image to the allocated texture.
type TextureTable struct {
	provider TextureProvider
	entries  map[batch.TextureName]textureEntry
}

// NewTextureTable returns an empty table backed by p.
func NewTextureTable(p TextureProvider) *TextureTable {
	return &TextureTable{provider: p, entries: make(map[batch.TextureName]textureEntry)}
}

func (t *TextureTable) entry(name batch.TextureName) textureEntry {
	if e, ok := t.entries[name]; ok {
		return e
	}
	e := textureEntry{scale: recording.Vec2{X: 1, Y: 1}}
	if t.provider != nil {
		e.tex, e.ok = t.provider.Texture(name)
	}
	if !e.ok {
		fxrender.Logger().Debug("fx: texture not found", "name", int(name))
	} else if e.tex.RealSize.X > 0 && e.tex.RealSize.Y > 0 {
		e.scale = recording.Vec2{
			X: float32(e.tex.Size.X) / float32(e.tex.RealSize.X),
			Y: float32(e.tex.Size.Y) / float32(e.tex.RealSize.Y),
		}
	}
	t.entries[name] = e
	return e
}

// Lookup returns the texture for name.
func (t *TextureTable) Lookup(name batch.TextureName) (Texture, bool) {
	e := t.entry(name)
	return e.tex, e.ok
}

// Scale returns the texture-coordinate scale for name, (1,1) for unpadded
// or unknown textures.
func (t *TextureTable) Scale(name batch.TextureName) recording.Vec2 {
	return t.entry(name).scale
}

// Invalidate drops all cached entries, forcing the provider to be queried
// again.
func (t *TextureTable) Invalidate() {
	clear(t.entries)
}

// applyTexScale rescales the texture coordinates of every element whose
// texture is padded.
func applyTexScale(b *batch.Buffers, t *TextureTable) {
	one := recording.Vec2{X: 1, Y: 1}
	for _, e := range b.Elements {
		s := t.Scale(e.Texture)
		if s == one {
			continue
		}
		vs := b.ElementVertices(e)
		for i := range vs {
			vs[i].UV = vs[i].UV.Mul(s)
		}
	}
}
