package fx

import (
	"github.com/gogpu/fxrender/recording"
)

// DrawUnordered draws every live unordered sub-system of the given layer.
// When there is nothing to draw it returns without touching the queue.
func (r *Renderer) DrawUnordered(layer Layer) {
	r.temp = r.temp[:0]
	r.draws.Clear()

	for n, s := range r.mgr.Systems() {
		if s.Dead || s.Ordered {
			continue
		}
		for ss, l := range s.Layers {
			if l == layer {
				r.temp = r.mgr.GenQuads(r.temp, n, ss)
			}
		}
	}
	r.draws.Add(r.temp)
	if r.draws.Empty() {
		return
	}
	r.enter(PhaseCompositeUnordered)
	applyTexScale(&r.draws, r.textures)

	q := r.q
	prevDepth := q.DepthTest()
	prevCull := q.CullFace()
	prevTex := q.Texture()
	prevBlend := q.Blend()
	prevColor := q.Color()
	q.SetDepthTest(false)
	q.SetCullFace(false)
	q.SetBlend(true)

	if r.opts.framebuffers && r.opts.unorderedComposite && r.blend != nil && r.add != nil {
		r.compositeUnordered()
	} else {
		r.drawDirect(r.worldView)
	}

	q.BindTexture(prevTex)
	q.SetCullFace(prevCull)
	q.SetDepthTest(prevDepth)
	q.SetBlendFunc(blendAlphaSrc, blendAlphaDst)
	q.SetBlend(prevBlend)
	q.SetColor(prevColor)
}

// compositeUnordered renders the batch into the tile-aligned pair and draws
// the pair over the visible tiles.
func (r *Renderer) compositeUnordered() {
	tile := r.opts.tileSize
	origin := r.tileView.Min.Mul(tile).Float()
	r.drawToTargets(origin.Scale(-1), r.blend, r.add)

	r.q.SetColor(white)
	zoom := r.worldView.Zoom
	screen := FRect{
		Min: origin.Scale(zoom).Add(r.worldView.Offset),
		Max: r.tileView.Max.Mul(tile).Float().Scale(zoom).Add(r.worldView.Offset),
	}
	full := FRect{Max: recording.Vec2{X: 1, Y: 1}}
	r.composite(r.blend.Texture(), r.add.Texture(), func() {
		r.texturedQuad(screen, full)
	})
}
