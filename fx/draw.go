package fx

import (
	"github.com/gogpu/gputypes"

	"github.com/gogpu/fxrender/recording"
	"github.com/gogpu/fxrender/render"
)

// Accumulation blend functions for the offscreen pair. The blend target
// starts at alpha 1 and its alpha is multiplied by (1 - a) for every
// particle, so it ends up holding the transmittance of the stack.
var (
	accumulateBlend = recording.BlendSeparate(
		gputypes.BlendFactorSrcAlpha, gputypes.BlendFactorOneMinusSrcAlpha,
		gputypes.BlendFactorZero, gputypes.BlendFactorOneMinusSrcAlpha)
	accumulateAdd = recording.BlendSeparate(
		gputypes.BlendFactorOne, gputypes.BlendFactorOne,
		gputypes.BlendFactorOne, gputypes.BlendFactorOneMinusSrcAlpha)
)

const (
	blendAlphaSrc = gputypes.BlendFactorSrcAlpha
	blendAlphaDst = gputypes.BlendFactorOneMinusSrcAlpha
)

// drawParticles draws the batched elements of one blend mode with the view
// transform applied on top of the current matrix.
func (r *Renderer) drawParticles(view View, mode BlendMode) {
	q := r.q
	prevMatrix := q.Matrix()
	prevTex := q.Texture()

	q.SetMatrix(prevMatrix.
		Mul(recording.Translation(view.Offset.X, view.Offset.Y, 0)).
		Mul(recording.Scaling(view.Zoom, view.Zoom, 1)))
	q.SetMode(gputypes.PrimitiveTopologyTriangleList)

	for _, e := range r.draws.Elements {
		if r.mgr.BlendMode(e.Texture) != mode {
			continue
		}
		tex, ok := r.textures.Lookup(e.Texture)
		if !ok {
			continue
		}
		q.BindTexture(tex.ID)
		q.AddVertices(r.draws.ElementVertices(e))
	}

	q.BindTexture(prevTex)
	q.SetMatrix(prevMatrix)
}

// drawDirect draws the batched elements straight into the bound target:
// normal particles alpha blended, then additive particles added.
func (r *Renderer) drawDirect(view View) {
	r.q.SetBlendFunc(blendAlphaSrc, blendAlphaDst)
	r.drawParticles(view, BlendNormal)
	r.q.SetBlendFunc(gputypes.BlendFactorOne, gputypes.BlendFactorOne)
	r.drawParticles(view, BlendAdditive)
}

// drawToTargets renders the batched elements into an accumulation pair:
// normal particles into blendT, additive ones into addT. viewOffset maps
// particle coordinates to target pixels.
func (r *Renderer) drawToTargets(viewOffset recording.Vec2, blendT, addT *render.Target) {
	q := r.q
	prevViewport := r.screenViewport()
	prevMatrix := q.Matrix()
	prevTarget := q.Target()
	prevScissor := q.Scissor()
	prevTex := q.Texture()
	prevColor := q.Color()
	prevBlend := q.Blend()

	blendT.Bind(q)
	q.SetScissor(false)
	q.SetBlend(true)
	q.SetColor(white)
	recording.SetupView(q, blendT.Width(), blendT.Height(), 1)
	view := View{Zoom: 1, Offset: viewOffset, Size: IVec2{blendT.Width(), blendT.Height()}}

	q.Clear([4]float32{0, 0, 0, 1}, false)
	q.SetBlendFuncSeparate(accumulateBlend)
	r.drawParticles(view, BlendNormal)

	addT.Bind(q)
	q.Clear([4]float32{0, 0, 0, 0}, false)
	q.SetBlendFuncSeparate(accumulateAdd)
	r.drawParticles(view, BlendAdditive)

	q.BindTarget(prevTarget)
	q.BindTexture(prevTex)
	q.SetScissor(prevScissor)
	q.SetBlendFunc(blendAlphaSrc, blendAlphaDst)
	q.SetBlend(prevBlend)
	q.SetMatrix(prevMatrix)
	if !prevViewport.Empty() {
		q.SetViewport(prevViewport)
	}
	q.SetColor(prevColor)
}

// screenViewport returns the viewport to restore after rendering into
// targets. Before any viewport is recorded it is the window of the view set
// by SetView.
func (r *Renderer) screenViewport() recording.Rect {
	if r.q.ViewportKnown() {
		return r.q.Viewport()
	}
	size := r.worldView.Size
	return recording.Rect{W: size.X, H: size.Y}
}

// composite draws an accumulation pair back in three passes. quads emits
// the geometry of one pass and is called once per pass.
//
//  1. blend texture with (One, SrcAlpha): the blended color over the
//     destination scaled by the transmittance
//  2. add texture with (SrcAlpha, OneMinusSrcAlpha): blending where the
//     additive alpha is high
//  3. add texture with (OneMinusSrcAlpha, One): adding where it is low
func (r *Renderer) composite(blendTex, addTex uint32, quads func()) {
	q := r.q
	q.SetMode(gputypes.PrimitiveTopologyTriangleList)

	q.SetBlendFunc(gputypes.BlendFactorOne, gputypes.BlendFactorSrcAlpha)
	q.BindTexture(blendTex)
	quads()

	q.BindTexture(addTex)
	q.SetBlendFunc(gputypes.BlendFactorSrcAlpha, gputypes.BlendFactorOneMinusSrcAlpha)
	quads()

	q.SetBlendFunc(gputypes.BlendFactorOneMinusSrcAlpha, gputypes.BlendFactorOne)
	quads()
}

// texturedQuad adds a quad covering rect sampling trect of a render target.
// Render target rows are stored bottom-up, hence the flipped v.
func (r *Renderer) texturedQuad(rect, trect FRect) {
	q := r.q
	base := q.IndexBase()

	q.SetUV(trect.Min.X, 1-trect.Max.Y)
	q.AddVertex(rect.Min.X, rect.Max.Y)
	q.SetUV(trect.Max.X, 1-trect.Max.Y)
	q.AddVertex(rect.Max.X, rect.Max.Y)
	q.SetUV(trect.Max.X, 1-trect.Min.Y)
	q.AddVertex(rect.Max.X, rect.Min.Y)
	q.SetUV(trect.Min.X, 1-trect.Min.Y)
	q.AddVertex(rect.Min.X, rect.Min.Y)

	q.AddIndex(base + 0)
	q.AddIndex(base + 1)
	q.AddIndex(base + 2)
	q.AddIndex(base + 0)
	q.AddIndex(base + 2)
	q.AddIndex(base + 3)
}
