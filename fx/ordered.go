package fx

import (
	"image/color"

	"github.com/gogpu/fxrender/recording"
)

// PrepareOrdered generates the quads of all live ordered effects and, with
// framebuffers, packs them into the atlas and renders them into the ordered
// accumulation pair. It must be called once per frame before DrawOrdered.
func (r *Renderer) PrepareOrdered() error {
	r.enter(PhasePrepareOrdered)

	systems := r.mgr.Systems()
	r.systemDraws = append(r.systemDraws[:0], make([]SystemDrawInfo, len(systems))...)
	r.ordered = r.ordered[:0]

	for n, s := range systems {
		if s.Dead || !s.Ordered {
			continue
		}
		first := len(r.ordered)
		for ss := range s.Layers {
			r.ordered = r.mgr.GenQuads(r.ordered, n, ss)
		}
		if count := len(r.ordered) - first; count > 0 {
			r.systemDraws[n] = SystemDrawInfo{
				WorldRect:     BoundingBox(r.ordered[first:]),
				FirstParticle: first,
				NumParticles:  count,
			}
		}
	}

	if !r.opts.framebuffers {
		return nil
	}

	start := r.opts.atlasSize
	if r.orderedBlend != nil {
		start = IVec2{r.orderedBlend.Width(), r.orderedBlend.Height()}
	}
	size := packAtlas(r.systemDraws, start, r.opts.sortByHeight)

	blend, add, err := r.ensurePair(r.orderedBlend, r.orderedAdd, size, "ordered")
	r.orderedBlend, r.orderedAdd = blend, add
	if err != nil {
		return err
	}

	r.draws.Clear()
	for _, d := range r.systemDraws {
		if d.Empty() {
			continue
		}
		offset := d.AtlasPos.Sub(d.WorldRect.Min).Float()
		ps := r.ordered[d.FirstParticle : d.FirstParticle+d.NumParticles]
		for i := range ps {
			for c := range ps[i].Positions {
				ps[i].Positions[c] = ps[i].Positions[c].Add(offset)
			}
		}
		r.draws.Add(ps)
	}
	applyTexScale(&r.draws, r.textures)

	r.drawToTargets(recording.Vec2{}, r.orderedBlend, r.orderedAdd)
	return nil
}

// DrawOrdered draws the ordered effects with the given ids, shifted by
// (offsetX, offsetY) screen pixels and tinted. Ids that are out of range or
// have nothing to draw are skipped.
func (r *Renderer) DrawOrdered(ids []int, offsetX, offsetY float32, tint color.RGBA) {
	r.enter(PhaseCompositeOrderedOverlay)
	q := r.q

	prevDepth := q.DepthTest()
	prevCull := q.CullFace()
	prevTex := q.Texture()
	prevBlend := q.Blend()
	prevColor := q.Color()
	q.SetDepthTest(false)
	q.SetCullFace(false)
	q.SetBlend(true)
	q.SetColor(tint)

	offset := recording.Vec2{X: offsetX, Y: offsetY}
	if r.opts.framebuffers {
		r.compositeOrdered(ids, offset)
	} else {
		r.draws.Clear()
		for _, id := range ids {
			if d, ok := r.systemDraw(id); ok {
				r.draws.Add(r.ordered[d.FirstParticle : d.FirstParticle+d.NumParticles])
			}
		}
		view := r.worldView
		view.Offset = view.Offset.Add(offset)
		applyTexScale(&r.draws, r.textures)
		r.drawDirect(view)
	}

	q.BindTexture(prevTex)
	q.SetCullFace(prevCull)
	q.SetDepthTest(prevDepth)
	q.SetBlendFunc(blendAlphaSrc, blendAlphaDst)
	q.SetBlend(prevBlend)
	q.SetColor(prevColor)
}

func (r *Renderer) systemDraw(id int) (SystemDrawInfo, bool) {
	if id < 0 || id >= len(r.systemDraws) {
		return SystemDrawInfo{}, false
	}
	d := r.systemDraws[id]
	return d, !d.Empty()
}

// compositeOrdered draws the atlas slots of the selected instances at
// their world rectangles.
func (r *Renderer) compositeOrdered(ids []int, offset recording.Vec2) {
	if r.orderedBlend == nil || r.orderedAdd == nil {
		return
	}
	atlas := IVec2{r.orderedBlend.Width(), r.orderedBlend.Height()}.Float()
	inv := recording.Vec2{X: 1 / atlas.X, Y: 1 / atlas.Y}

	r.tempRects = r.tempRects[:0]
	for _, id := range ids {
		d, ok := r.systemDraw(id)
		if !ok {
			continue
		}
		rect := d.WorldRect.Float().Scale(r.worldView.Zoom).Translate(r.worldView.Offset.Add(offset))
		slot := IRect{Min: d.AtlasPos, Max: d.AtlasPos.Add(d.WorldRect.Size())}
		r.tempRects = append(r.tempRects, rect, slot.Float().Mul(inv))
	}
	if len(r.tempRects) == 0 {
		return
	}

	r.composite(r.orderedBlend.Texture(), r.orderedAdd.Texture(), func() {
		for n := 0; n < len(r.tempRects); n += 2 {
			r.texturedQuad(r.tempRects[n], r.tempRects[n+1])
		}
	})
}
