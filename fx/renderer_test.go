package fx

import (
	"bytes"
	"errors"
	"image/color"
	"log/slog"
	"strings"
	"testing"

	"github.com/chewxy/math32"
	"github.com/gogpu/gputypes"

	"github.com/gogpu/fxrender"
	"github.com/gogpu/fxrender/batch"
	"github.com/gogpu/fxrender/recording"
	"github.com/gogpu/fxrender/render"
)

const fallbackTexture = 99

var (
	alphaBlend    = recording.Blend(gputypes.BlendFactorSrcAlpha, gputypes.BlendFactorOneMinusSrcAlpha)
	additiveBlend = recording.Blend(gputypes.BlendFactorOne, gputypes.BlendFactorOne)
	compositePass = []recording.BlendFunc{
		recording.Blend(gputypes.BlendFactorOne, gputypes.BlendFactorSrcAlpha),
		recording.Blend(gputypes.BlendFactorSrcAlpha, gputypes.BlendFactorOneMinusSrcAlpha),
		recording.Blend(gputypes.BlendFactorOneMinusSrcAlpha, gputypes.BlendFactorOne),
	}
)

type fixture struct {
	mgr   *fakeManager
	texs  *fakeTextures
	alloc *fakeAllocator
	q     *recording.Queue
	r     *Renderer
}

// newFixture builds a renderer over two ordered systems (a normal one and an
// additive one), an unordered system in layer 0 and a dead ordered system.
func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	f := &fixture{
		mgr:   newFakeManager(),
		texs:  testTextures(),
		alloc: &fakeAllocator{},
		q:     recording.New(recording.WithFallbackTexture(fallbackTexture)),
	}
	f.mgr.modes[texAdditive] = BlendAdditive

	f.mgr.add(System{Ordered: true, Layers: []Layer{0}},
		[]batch.Particle{quad(10, 10, 20, 20, texNormal)})
	f.mgr.add(System{Ordered: true, Layers: []Layer{0}},
		[]batch.Particle{quad(100, 100, 110, 110, texAdditive)})
	f.mgr.add(System{Layers: []Layer{0, 1}},
		[]batch.Particle{quad(5, 5, 15, 15, texNormal)},
		[]batch.Particle{quad(50, 50, 60, 60, texAdditive)})
	f.mgr.add(System{Dead: true, Ordered: true, Layers: []Layer{0}},
		[]batch.Particle{quad(0, 0, 300, 300, texNormal)})

	r, err := New(f.mgr, f.texs, f.q, f.alloc, opts...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	f.r = r
	return f
}

func TestNew(t *testing.T) {
	q := recording.New()
	if _, err := New(newFakeManager(), nil, nil, &fakeAllocator{}); !errors.Is(err, ErrNoQueue) {
		t.Errorf("New(nil queue) error = %v, want ErrNoQueue", err)
	}
	if _, err := New(newFakeManager(), nil, q, nil); !errors.Is(err, render.ErrNilAllocator) {
		t.Errorf("New(nil alloc) error = %v, want ErrNilAllocator", err)
	}
	if _, err := New(newFakeManager(), nil, q, nil, WithFramebuffers(false)); err != nil {
		t.Errorf("New(nil alloc, no framebuffers) error = %v", err)
	}
}

func TestPrepareOrdered(t *testing.T) {
	f := newFixture(t)
	if err := f.r.SetView(1, 0, 0, 640, 480); err != nil {
		t.Fatalf("SetView() error = %v", err)
	}
	if err := f.r.PrepareOrdered(); err != nil {
		t.Fatalf("PrepareOrdered() error = %v", err)
	}

	if len(f.alloc.created) != 2 || f.alloc.created[0] != DefaultAtlasSize {
		t.Fatalf("created targets = %v, want two of %v", f.alloc.created, DefaultAtlasSize)
	}
	if got := f.r.AtlasSize(); got != DefaultAtlasSize {
		t.Errorf("AtlasSize() = %v, want %v", got, DefaultAtlasSize)
	}

	draws := f.r.SystemDraws()
	if len(draws) != 4 {
		t.Fatalf("len(SystemDraws()) = %d, want 4", len(draws))
	}
	want := []SystemDrawInfo{
		{WorldRect: IRect{IVec2{9, 9}, IVec2{22, 22}}, AtlasPos: IVec2{0, 0}, FirstParticle: 0, NumParticles: 1},
		{WorldRect: IRect{IVec2{99, 99}, IVec2{112, 112}}, AtlasPos: IVec2{13, 0}, FirstParticle: 1, NumParticles: 1},
		{},
		{},
	}
	for n := range want {
		if draws[n] != want[n] {
			t.Errorf("SystemDraws()[%d] = %+v, want %+v", n, draws[n], want[n])
		}
	}

	cmds := f.q.Commands()
	wantBlend := []recording.BlendFunc{accumulateBlend, accumulateAdd, alphaBlend}
	if got := blendFuncs(cmds); !equalBlendFuncs(got, wantBlend) {
		t.Errorf("blend funcs = %v, want %v", got, wantBlend)
	}

	clears := commandsOf[recording.ClearCommand](cmds)
	if len(clears) != 2 || clears[0].Color != [4]float32{0, 0, 0, 1} || clears[1].Color != [4]float32{} {
		t.Errorf("clears = %+v, want opaque black then transparent", clears)
	}

	var targets []uint32
	for _, c := range commandsOf[recording.BindTargetCommand](cmds) {
		targets = append(targets, c.Target)
	}
	if !equalUint32(targets, []uint32{1, 2, 0}) {
		t.Errorf("bound targets = %v, want [1 2 0]", targets)
	}

	if f.q.PendingIndices() != 0 {
		t.Errorf("PendingIndices() = %d, want 0", f.q.PendingIndices())
	}
	for _, d := range commandsOf[recording.DrawCommand](cmds) {
		if d.Count != 6 {
			t.Errorf("draw %+v, want 6 indices", d)
		}
	}

	vs := f.q.Vertices()
	if len(vs) != 12 {
		t.Fatalf("len(Vertices()) = %d, want 12", len(vs))
	}
	if got := vs[0].Pos; got != (recording.Vec2{X: 1, Y: 1}) {
		t.Errorf("normal particle at %v, want (1,1) in the atlas", got)
	}
	if got := vs[6].Pos; got != (recording.Vec2{X: 14, Y: 1}) {
		t.Errorf("additive particle at %v, want (14,1) in the atlas", got)
	}
	if f.r.Phase() != PhasePrepareOrdered {
		t.Errorf("Phase() = %v, want %v", f.r.Phase(), PhasePrepareOrdered)
	}
}

func TestPrepareOrderedKeepsAtlas(t *testing.T) {
	f := newFixture(t)
	for frame := 0; frame < 3; frame++ {
		if err := f.r.PrepareOrdered(); err != nil {
			t.Fatalf("frame %d: PrepareOrdered() error = %v", frame, err)
		}
	}
	if len(f.alloc.created) != 2 {
		t.Errorf("created %d targets over 3 frames, want 2", len(f.alloc.created))
	}

	f.mgr.quads[subKey{0, 0}] = []batch.Particle{quad(0, 0, 700, 20, texNormal)}
	if err := f.r.PrepareOrdered(); err != nil {
		t.Fatalf("PrepareOrdered() error = %v", err)
	}
	if got, want := f.r.AtlasSize(), (IVec2{1024, 256}); got != want {
		t.Errorf("AtlasSize() = %v, want %v", got, want)
	}
	if len(f.alloc.destroyed) != 2 {
		t.Errorf("destroyed = %v, want the old pair", f.alloc.destroyed)
	}

	f.mgr.quads[subKey{0, 0}] = []batch.Particle{quad(0, 0, 10, 10, texNormal)}
	if err := f.r.PrepareOrdered(); err != nil {
		t.Fatalf("PrepareOrdered() error = %v", err)
	}
	if got, want := f.r.AtlasSize(), (IVec2{1024, 256}); got != want {
		t.Errorf("AtlasSize() after shrink = %v, want %v", got, want)
	}
}

func TestPrepareOrderedAllocError(t *testing.T) {
	f := newFixture(t)
	errBoom := errors.New("boom")
	f.alloc.err = errBoom
	if err := f.r.PrepareOrdered(); !errors.Is(err, errBoom) {
		t.Errorf("PrepareOrdered() error = %v, want %v", err, errBoom)
	}
	if a, b := f.r.FboIDs(true); a != 0 || b != 0 {
		t.Errorf("FboIDs(true) = %d, %d, want 0, 0", a, b)
	}
}

func TestDrawOrderedComposite(t *testing.T) {
	f := newFixture(t)
	if err := f.r.SetView(2, 10, 20, 640, 480); err != nil {
		t.Fatalf("SetView() error = %v", err)
	}
	if err := f.r.PrepareOrdered(); err != nil {
		t.Fatalf("PrepareOrdered() error = %v", err)
	}
	start := len(f.q.Commands())
	base := len(f.q.Vertices())

	tint := color.RGBA{200, 100, 50, 255}
	f.r.DrawOrdered([]int{0, 1, 2, 3, 7, -1}, 5, 7, tint)

	cmds := f.q.Commands()[start:]
	wantBlend := append(append([]recording.BlendFunc(nil), compositePass...), alphaBlend)
	if got := blendFuncs(cmds); !equalBlendFuncs(got, wantBlend) {
		t.Errorf("blend funcs = %v, want %v", got, wantBlend)
	}

	var texs []uint32
	for _, c := range commandsOf[recording.BindTextureCommand](cmds) {
		texs = append(texs, c.Texture)
	}
	if !equalUint32(texs, []uint32{101, 102, fallbackTexture}) {
		t.Errorf("bound textures = %v, want [101 102 %d]", texs, fallbackTexture)
	}

	draws := commandsOf[recording.DrawCommand](cmds)
	if len(draws) != 3 {
		t.Fatalf("%d draws, want 3", len(draws))
	}
	for _, d := range draws {
		if d.Count != 12 {
			t.Errorf("draw %+v, want 12 indices", d)
		}
	}

	vs := f.q.Vertices()[base:]
	if len(vs) != 24 {
		t.Fatalf("%d composite vertices, want 24", len(vs))
	}
	// World rect (9,9)-(22,22) at zoom 2, shifted by view and draw offsets.
	if got := vs[0].Pos; got != (recording.Vec2{X: 33, Y: 71}) {
		t.Errorf("first corner = %v, want (33,71)", got)
	}
	if got := vs[2].Pos; got != (recording.Vec2{X: 59, Y: 45}) {
		t.Errorf("third corner = %v, want (59,45)", got)
	}
	if got, want := vs[0].UV, (recording.Vec2{X: 0, Y: 1 - 13.0/256}); got != want {
		t.Errorf("first uv = %v, want %v", got, want)
	}
	if got, want := vs[2].UV, (recording.Vec2{X: 13.0 / 512, Y: 1}); got != want {
		t.Errorf("third uv = %v, want %v", got, want)
	}
	if vs[0].Color != tint {
		t.Errorf("color = %v, want tint %v", vs[0].Color, tint)
	}
	if f.q.Color() != white {
		t.Errorf("Color() = %v, want white restored", f.q.Color())
	}
	if f.r.Phase() != PhaseCompositeOrderedOverlay {
		t.Errorf("Phase() = %v, want %v", f.r.Phase(), PhaseCompositeOrderedOverlay)
	}
}

func TestDrawOrderedNothingSelected(t *testing.T) {
	f := newFixture(t)
	if err := f.r.PrepareOrdered(); err != nil {
		t.Fatalf("PrepareOrdered() error = %v", err)
	}
	base := len(f.q.Vertices())
	f.r.DrawOrdered([]int{2, 3}, 0, 0, white)
	if got := len(f.q.Vertices()) - base; got != 0 {
		t.Errorf("%d vertices added, want 0", got)
	}
}

func TestDrawOrderedDirect(t *testing.T) {
	f := newFixture(t, WithFramebuffers(false))
	if err := f.r.SetView(2, 10, 20, 640, 480); err != nil {
		t.Fatalf("SetView() error = %v", err)
	}
	if err := f.r.PrepareOrdered(); err != nil {
		t.Fatalf("PrepareOrdered() error = %v", err)
	}
	if len(f.alloc.created) != 0 {
		t.Errorf("created %v targets without framebuffers", f.alloc.created)
	}
	if len(f.q.Commands()) != 0 {
		t.Errorf("PrepareOrdered recorded %d commands without framebuffers", len(f.q.Commands()))
	}

	f.r.DrawOrdered([]int{0, 1}, 5, 7, white)
	cmds := f.q.Commands()

	wantBlend := []recording.BlendFunc{alphaBlend, additiveBlend, alphaBlend}
	if got := blendFuncs(cmds); !equalBlendFuncs(got, wantBlend) {
		t.Errorf("blend funcs = %v, want %v", got, wantBlend)
	}

	vs := f.q.Vertices()
	if len(vs) != 12 || vs[0].Pos != (recording.Vec2{X: 10, Y: 10}) {
		t.Fatalf("vertices = %d starting at %v, want 12 at world (10,10)", len(vs), vs[0].Pos)
	}
	ms := commandsOf[recording.SetMatrixCommand](cmds)
	if len(ms) == 0 {
		t.Fatal("no matrix recorded")
	}
	x, y := ms[0].Matrix.Transform(10, 10)
	if x != 35 || y != 47 {
		t.Errorf("world (10,10) maps to (%v,%v), want (35,47)", x, y)
	}
}

func TestDrawUnorderedEmptyLayer(t *testing.T) {
	f := newFixture(t)
	f.q.SetDepthTest(true)
	f.q.BindTexture(7)
	start := len(f.q.Commands())
	before := struct {
		blend, depth, cull bool
		fn                 recording.BlendFunc
		tex                uint32
		matrix             recording.Mat4
	}{f.q.Blend(), f.q.DepthTest(), f.q.CullFace(), f.q.BlendFunc(), f.q.Texture(), f.q.Matrix()}

	f.r.DrawUnordered(5)

	if got := len(f.q.Commands()) - start; got != 0 {
		t.Errorf("recorded %d commands, want 0", got)
	}
	if len(f.q.Vertices()) != 0 || f.q.PendingIndices() != 0 {
		t.Errorf("geometry added: %d vertices, %d indices", len(f.q.Vertices()), f.q.PendingIndices())
	}
	if f.q.Blend() != before.blend || f.q.DepthTest() != before.depth || f.q.CullFace() != before.cull ||
		f.q.BlendFunc() != before.fn || f.q.Texture() != before.tex || f.q.Matrix() != before.matrix {
		t.Error("queue state changed")
	}
	if f.r.Phase() != PhaseIdle {
		t.Errorf("Phase() = %v, want %v", f.r.Phase(), PhaseIdle)
	}
}

func TestDrawUnorderedDirect(t *testing.T) {
	f := newFixture(t)
	f.q.SetDepthTest(true)
	f.q.SetCullFace(true)
	f.q.BindTexture(7)
	prevColor := color.RGBA{1, 2, 3, 4}
	f.q.SetColor(prevColor)
	if err := f.r.SetView(1, 0, 0, 640, 480); err != nil {
		t.Fatalf("SetView() error = %v", err)
	}
	start := len(f.q.Commands())

	f.r.DrawUnordered(1)

	cmds := f.q.Commands()[start:]
	wantBlend := []recording.BlendFunc{alphaBlend, additiveBlend, alphaBlend}
	if got := blendFuncs(cmds); !equalBlendFuncs(got, wantBlend) {
		t.Errorf("blend funcs = %v, want %v", got, wantBlend)
	}
	vs := f.q.Vertices()
	if len(vs) != 6 || vs[0].Pos != (recording.Vec2{X: 50, Y: 50}) {
		t.Errorf("vertices = %v, want the layer 1 quad only", vs)
	}
	draws := commandsOf[recording.DrawCommand](cmds)
	if len(draws) != 1 || draws[0].Count != 6 {
		t.Errorf("draws = %+v, want one of 6 indices", draws)
	}

	if !f.q.DepthTest() || !f.q.CullFace() || f.q.Blend() {
		t.Errorf("toggles depth=%v cull=%v blend=%v, want restored", f.q.DepthTest(), f.q.CullFace(), f.q.Blend())
	}
	if f.q.Texture() != 7 {
		t.Errorf("Texture() = %d, want 7", f.q.Texture())
	}
	if f.q.Color() != prevColor {
		t.Errorf("Color() = %v, want %v", f.q.Color(), prevColor)
	}
	if f.r.Phase() != PhaseCompositeUnordered {
		t.Errorf("Phase() = %v, want %v", f.r.Phase(), PhaseCompositeUnordered)
	}
}

func TestDrawUnorderedComposite(t *testing.T) {
	f := newFixture(t, WithUnorderedComposite(true))
	if err := f.r.SetView(1, 0, 0, 48, 48); err != nil {
		t.Fatalf("SetView() error = %v", err)
	}
	if got := f.r.FboSize(); got != (IVec2{96, 96}) {
		t.Fatalf("FboSize() = %v, want (96,96)", got)
	}
	if a, b := f.r.FboIDs(false); a != 101 || b != 102 {
		t.Errorf("FboIDs(false) = %d, %d, want 101, 102", a, b)
	}
	if a, b := f.r.FboIDs(true); a != 0 || b != 0 {
		t.Errorf("FboIDs(true) = %d, %d before PrepareOrdered, want 0, 0", a, b)
	}

	f.r.DrawUnordered(0)
	cmds := f.q.Commands()

	wantBlend := append([]recording.BlendFunc{accumulateBlend, accumulateAdd, alphaBlend}, compositePass...)
	wantBlend = append(wantBlend, alphaBlend)
	if got := blendFuncs(cmds); !equalBlendFuncs(got, wantBlend) {
		t.Errorf("blend funcs = %v, want %v", got, wantBlend)
	}

	vs := f.q.Vertices()
	if len(vs) != 6+3*4 {
		t.Fatalf("len(Vertices()) = %d, want 18", len(vs))
	}
	// Visible tiles span (-1,-1)-(3,3), so the pair covers (-24,-24)-(72,72).
	if got := vs[6].Pos; got != (recording.Vec2{X: -24, Y: 72}) {
		t.Errorf("composite corner = %v, want (-24,72)", got)
	}
	if got := vs[6].UV; got != (recording.Vec2{X: 0, Y: 0}) {
		t.Errorf("composite uv = %v, want (0,0)", got)
	}

	// The accumulation matrix maps the tile origin to the target's top-left
	// corner.
	ms := commandsOf[recording.SetMatrixCommand](cmds)
	if len(ms) < 2 {
		t.Fatalf("%d matrices recorded, want at least 2", len(ms))
	}
	if x, y := ms[1].Matrix.Transform(-24, -24); math32.Abs(x+1) > 1e-5 || math32.Abs(y-1) > 1e-5 {
		t.Errorf("tile origin maps to (%v,%v), want (-1,1)", x, y)
	}

	if f.q.Target() != 0 {
		t.Errorf("Target() = %d, want 0", f.q.Target())
	}
}

func TestSetViewResizesUnorderedPair(t *testing.T) {
	f := newFixture(t, WithUnorderedComposite(true))
	if err := f.r.SetView(1, 0, 0, 48, 48); err != nil {
		t.Fatal(err)
	}
	if err := f.r.SetView(1, -3, -3, 48, 48); err != nil {
		t.Fatal(err)
	}
	if len(f.alloc.created) != 2 {
		t.Errorf("created = %v, want one pair for an unchanged size", f.alloc.created)
	}
	if err := f.r.SetView(1, 0, 0, 100, 48); err != nil {
		t.Fatal(err)
	}
	if got := f.r.FboSize(); got != (IVec2{168, 96}) {
		t.Errorf("FboSize() = %v, want (168,96)", got)
	}

	f.r.Close()
	if len(f.alloc.destroyed) != 4 {
		t.Errorf("destroyed = %v, want all 4 targets", f.alloc.destroyed)
	}
	if got := f.r.FboSize(); got != (IVec2{}) {
		t.Errorf("FboSize() after Close = %v, want zero", got)
	}
}

func TestSetViewInvalidZoom(t *testing.T) {
	for _, zoom := range []float32{0, -1, math32.NaN()} {
		f := newFixture(t, WithUnorderedComposite(true))
		if err := f.r.SetView(zoom, 0, 0, 48, 48); !errors.Is(err, ErrInvalidZoom) {
			t.Errorf("SetView(%v) err = %v, want %v", zoom, err, ErrInvalidZoom)
		}
		if got := f.r.View(); got.Zoom != 1 {
			t.Errorf("SetView(%v) changed the view to %+v", zoom, got)
		}
		if len(f.alloc.created) != 0 {
			t.Errorf("SetView(%v) created targets %v", zoom, f.alloc.created)
		}
	}
}

func TestPrepareOrderedRestoresWindowViewport(t *testing.T) {
	f := newFixture(t)
	if err := f.r.SetView(1, 0, 0, 640, 480); err != nil {
		t.Fatal(err)
	}
	if err := f.r.PrepareOrdered(); err != nil {
		t.Fatal(err)
	}
	f.r.DrawUnordered(0)

	window := recording.Rect{W: 640, H: 480}
	if got := f.q.Target(); got != 0 {
		t.Errorf("Target() = %d, want 0", got)
	}
	if got := f.q.Viewport(); got != window {
		t.Errorf("Viewport() = %+v, want %+v", got, window)
	}

	// Draws into the default framebuffer run with the window viewport.
	var viewport recording.Rect
	var target uint32
	drawsOnScreen := 0
	for _, c := range f.q.Commands() {
		switch c := c.(type) {
		case recording.SetViewportCommand:
			viewport = c.Rect
		case recording.BindTargetCommand:
			target = c.Target
		case recording.DrawCommand:
			if target != 0 {
				continue
			}
			drawsOnScreen++
			if viewport != window {
				t.Errorf("draw %+v with viewport %+v, want %+v", c, viewport, window)
			}
		}
	}
	if drawsOnScreen == 0 {
		t.Error("no draw recorded on the default framebuffer")
	}
}

func TestPhases(t *testing.T) {
	f := newFixture(t)
	if f.r.Phase() != PhaseIdle {
		t.Fatalf("Phase() = %v, want Idle", f.r.Phase())
	}
	steps := []struct {
		run  func()
		want Phase
	}{
		{func() { f.r.PrepareOrdered() }, PhasePrepareOrdered},
		{func() { f.r.DrawUnordered(0) }, PhaseCompositeUnordered},
		{func() { f.r.DrawOrdered([]int{0}, 0, 0, white) }, PhaseCompositeOrderedOverlay},
		{f.r.EndFrame, PhaseIdle},
	}
	for _, s := range steps {
		s.run()
		if got := f.r.Phase(); got != s.want {
			t.Errorf("Phase() = %v, want %v", got, s.want)
		}
	}
	if got := Phase(42).String(); got != "Unknown" {
		t.Errorf("Phase(42).String() = %q, want Unknown", got)
	}
}

func TestLogSystemDraws(t *testing.T) {
	var buf bytes.Buffer
	fxrender.SetLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { fxrender.SetLogger(nil) })

	f := newFixture(t)
	if err := f.r.PrepareOrdered(); err != nil {
		t.Fatal(err)
	}
	buf.Reset()
	f.r.LogSystemDraws()

	out := buf.String()
	if got := strings.Count(out, "fx: system"); got != 2 {
		t.Errorf("logged %d systems, want 2:\n%s", got, out)
	}
	if !strings.Contains(out, "atlasX=13") {
		t.Errorf("log missing atlas position:\n%s", out)
	}
}

func equalBlendFuncs(a, b []recording.BlendFunc) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func equalUint32(a, b []uint32) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
