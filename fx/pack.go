package fx

import (
	"sort"

	"github.com/gogpu/fxrender"
)

// Atlas size limits for ordered effects.
var (
	DefaultAtlasSize = IVec2{512, 256}
	MaxAtlasSize     = IVec2{2048, 2048}
)

// SystemDrawInfo records where one ordered effect instance is drawn this
// frame. WorldRect is in world pixels at zoom 1; AtlasPos is the top-left
// corner of its slot in the ordered atlas.
type SystemDrawInfo struct {
	WorldRect     IRect
	AtlasPos      IVec2
	FirstParticle int
	NumParticles  int
}

// Empty reports whether there is nothing to draw for the instance.
func (d SystemDrawInfo) Empty() bool { return d.NumParticles == 0 }

// shelf is the packing cursor: rectangles are placed left to right on the
// current row, and a new row starts below the tallest rectangle of the row
// when the width is exhausted.
type shelf struct {
	pos    IVec2
	height int
}

// place returns the slot for a w x h rectangle in an atlas of the given
// size, or false when it does not fit vertically.
func (s *shelf) place(w, h int, size IVec2) (IVec2, bool) {
	if s.pos.X+w > size.X {
		s.pos = IVec2{0, s.pos.Y + s.height}
		s.height = 0
	}
	if s.pos.Y+h > size.Y {
		return IVec2{}, false
	}
	p := s.pos
	s.pos.X += w
	s.height = max(s.height, h)
	return p, true
}

// grow doubles the atlas dimension that lets a rectangle of height h fit:
// the height when h exceeds it or the atlas is not taller than wide, the
// width otherwise.
func grow(size IVec2, h int) IVec2 {
	if h > size.Y || size.X >= size.Y {
		size.Y *= 2
	} else {
		size.X *= 2
	}
	return IVec2{min(size.X, MaxAtlasSize.X), min(size.Y, MaxAtlasSize.Y)}
}

// packAtlas assigns an AtlasPos to every non-empty draw and returns the
// atlas size, starting from size and growing it up to MaxAtlasSize.
// Whenever a rectangle does not fit the atlas grows and packing restarts
// from scratch. Draws that cannot be placed in the largest atlas have
// NumParticles set to zero.
func packAtlas(draws []SystemDrawInfo, size IVec2, byHeight bool) IVec2 {
	log := fxrender.Logger()
	size = IVec2{max(size.X, 1), max(size.Y, 1)}

	ids := make([]int, 0, len(draws))
	for n := range draws {
		d := &draws[n]
		if d.Empty() {
			continue
		}
		w, h := d.WorldRect.Width(), d.WorldRect.Height()
		if w > MaxAtlasSize.X || h > MaxAtlasSize.Y {
			log.Debug("fx: effect larger than atlas dropped", "system", n, "width", w, "height", h)
			d.NumParticles = 0
			continue
		}
		for size.X < w {
			size.X *= 2
		}
		for size.Y < h {
			size.Y *= 2
		}
		ids = append(ids, n)
	}
	size = IVec2{min(size.X, MaxAtlasSize.X), min(size.Y, MaxAtlasSize.Y)}

	if byHeight {
		sort.SliceStable(ids, func(i, j int) bool {
			return draws[ids[i]].WorldRect.Height() > draws[ids[j]].WorldRect.Height()
		})
	}

	for {
		var s shelf
		restart := false
		for _, n := range ids {
			d := &draws[n]
			if d.Empty() {
				continue
			}
			w, h := d.WorldRect.Width(), d.WorldRect.Height()
			p, ok := s.place(w, h, size)
			if !ok {
				if size == MaxAtlasSize {
					log.Debug("fx: atlas full, effect dropped", "system", n, "width", w, "height", h)
					d.NumParticles = 0
					continue
				}
				size = grow(size, h)
				restart = true
				break
			}
			d.AtlasPos = p
		}
		if !restart {
			return size
		}
	}
}
