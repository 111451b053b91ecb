package fx

import (
	"errors"
	"fmt"
	"image/color"

	"github.com/gogpu/fxrender"
	"github.com/gogpu/fxrender/batch"
	"github.com/gogpu/fxrender/recording"
	"github.com/gogpu/fxrender/render"
)

// Errors returned by the renderer.
var (
	ErrNoQueue     = errors.New("fx: nil queue")
	ErrInvalidZoom = errors.New("fx: zoom must be positive")
)

// Phase is the step of the frame the renderer last performed.
type Phase uint8

const (
	PhaseIdle Phase = iota
	PhasePrepareOrdered
	PhaseCompositeUnordered
	PhaseCompositeOrderedOverlay
)

var phaseNames = [...]string{
	PhaseIdle:                    "Idle",
	PhasePrepareOrdered:          "PrepareOrdered",
	PhaseCompositeUnordered:      "CompositeUnordered",
	PhaseCompositeOrderedOverlay: "CompositeOrderedOverlay",
}

// String returns the phase name.
func (p Phase) String() string {
	if int(p) < len(phaseNames) {
		return phaseNames[p]
	}
	return "Unknown"
}

var white = color.RGBA{255, 255, 255, 255}

// Renderer draws particle effects through a recording queue.
//
// A frame looks like this:
//
//	r.SetView(zoom, ox, oy, w, h)
//	r.PrepareOrdered()          // ordered effects into the atlas
//	r.DrawUnordered(layerBelow) // unordered effects of a layer
//	r.DrawOrdered(ids, 0, 0, tint)
//	r.EndFrame()
//
// Every draw method leaves the queue state it touches as it found it,
// except for the blend function, which is left at straight alpha blending.
type Renderer struct {
	mgr      Manager
	textures *TextureTable
	q        *recording.Queue
	alloc    render.TargetAllocator
	opts     options

	draws       batch.Buffers
	systemDraws []SystemDrawInfo
	ordered     []batch.Particle
	temp        []batch.Particle
	tempRects   []FRect

	worldView View
	tileView  IRect

	orderedBlend, orderedAdd *render.Target
	blend, add               *render.Target

	phase Phase
}

// New creates a renderer drawing mgr's effects into q. alloc creates the
// offscreen targets and may be nil when framebuffers are disabled.
func New(mgr Manager, textures TextureProvider, q *recording.Queue, alloc render.TargetAllocator, opts ...Option) (*Renderer, error) {
	if q == nil {
		return nil, ErrNoQueue
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.framebuffers && alloc == nil {
		return nil, fmt.Errorf("fx: framebuffers enabled: %w", render.ErrNilAllocator)
	}
	return &Renderer{
		mgr:       mgr,
		textures:  NewTextureTable(textures),
		q:         q,
		alloc:     alloc,
		opts:      o,
		worldView: View{Zoom: 1},
	}, nil
}

// Textures returns the renderer's texture table.
func (r *Renderer) Textures() *TextureTable { return r.textures }

// Phase returns the step of the frame last performed.
func (r *Renderer) Phase() Phase { return r.phase }

func (r *Renderer) enter(p Phase) {
	if r.phase != p {
		fxrender.Logger().Debug("fx: phase", "from", r.phase.String(), "to", p.String())
	}
	r.phase = p
}

// EndFrame returns the renderer to the idle phase.
func (r *Renderer) EndFrame() { r.enter(PhaseIdle) }

// SetView sets the camera for the frame. With the unordered composite
// enabled it also (re)creates the targets covering the visible tiles. A zoom
// that is not positive is rejected with ErrInvalidZoom.
func (r *Renderer) SetView(zoom, offsetX, offsetY float32, width, height int) error {
	if !(zoom > 0) {
		return fmt.Errorf("%w: %g", ErrInvalidZoom, zoom)
	}
	r.worldView = View{Zoom: zoom, Offset: recording.Vec2{X: offsetX, Y: offsetY}, Size: IVec2{width, height}}
	r.tileView = VisibleTiles(r.worldView, r.opts.tileSize)

	if !r.opts.framebuffers || !r.opts.unorderedComposite {
		return nil
	}
	size := r.tileView.Size().Mul(r.opts.tileSize)
	blend, add, err := r.ensurePair(r.blend, r.add, size, "unordered")
	r.blend, r.add = blend, add
	return err
}

// View returns the camera set by SetView.
func (r *Renderer) View() View { return r.worldView }

// ensurePair returns targets of the given size, recreating the ones whose
// size differs.
func (r *Renderer) ensurePair(blend, add *render.Target, size IVec2, kind string) (*render.Target, *render.Target, error) {
	nb, createdBlend, err := render.EnsureTarget(blend, r.alloc, size.X, size.Y)
	if err != nil {
		add.Destroy()
		return nil, nil, fmt.Errorf("fx: %s blend target: %w", kind, err)
	}
	na, createdAdd, err := render.EnsureTarget(add, r.alloc, size.X, size.Y)
	if err != nil {
		nb.Destroy()
		return nil, nil, fmt.Errorf("fx: %s add target: %w", kind, err)
	}
	if createdBlend || createdAdd {
		fxrender.Logger().Info("fx: offscreen targets created", "kind", kind, "width", size.X, "height", size.Y)
	}
	return nb, na, nil
}

// FboIDs returns the color textures of the blend and additive targets of
// the ordered atlas or of the unordered composite, or zeros when they do
// not exist.
func (r *Renderer) FboIDs(ordered bool) (blend, add uint32) {
	if ordered {
		if r.orderedBlend != nil && r.orderedAdd != nil {
			return r.orderedBlend.Texture(), r.orderedAdd.Texture()
		}
		return 0, 0
	}
	if r.blend != nil && r.add != nil {
		return r.blend.Texture(), r.add.Texture()
	}
	return 0, 0
}

// FboSize returns the size of the unordered composite targets, or zero.
func (r *Renderer) FboSize() IVec2 {
	if r.blend == nil {
		return IVec2{}
	}
	return IVec2{r.blend.Width(), r.blend.Height()}
}

// AtlasSize returns the size of the ordered atlas, or zero before the
// first PrepareOrdered with framebuffers.
func (r *Renderer) AtlasSize() IVec2 {
	if r.orderedBlend == nil {
		return IVec2{}
	}
	return IVec2{r.orderedBlend.Width(), r.orderedBlend.Height()}
}

// SystemDraws returns the per-instance draw records of the current frame,
// indexed like Manager.Systems.
func (r *Renderer) SystemDraws() []SystemDrawInfo { return r.systemDraws }

// LogSystemDraws logs the world rectangle of every non-empty ordered
// instance.
func (r *Renderer) LogSystemDraws() {
	log := fxrender.Logger()
	for n, d := range r.systemDraws {
		if d.Empty() {
			continue
		}
		log.Info("fx: system",
			"id", n,
			"x", d.WorldRect.Min.X, "y", d.WorldRect.Min.Y,
			"ex", d.WorldRect.Max.X, "ey", d.WorldRect.Max.Y,
			"atlasX", d.AtlasPos.X, "atlasY", d.AtlasPos.Y,
			"particles", d.NumParticles)
	}
}

// Close releases all offscreen targets.
func (r *Renderer) Close() {
	r.orderedBlend.Destroy()
	r.orderedAdd.Destroy()
	r.blend.Destroy()
	r.add.Destroy()
	r.orderedBlend, r.orderedAdd, r.blend, r.add = nil, nil, nil, nil
}
