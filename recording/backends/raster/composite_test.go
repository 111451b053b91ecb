package raster

import (
	"image/color"
	"testing"

	"github.com/gogpu/fxrender/batch"
	"github.com/gogpu/fxrender/fx"
	"github.com/gogpu/fxrender/recording"
)

// singleEffect is a manager with one ordered effect made of one quad.
type singleEffect struct {
	quad batch.Particle
	mode fx.BlendMode
}

func (m *singleEffect) Systems() []fx.System {
	return []fx.System{{Ordered: true, Layers: []fx.Layer{0}}}
}

func (m *singleEffect) GenQuads(dst []batch.Particle, _, _ int) []batch.Particle {
	return append(dst, m.quad)
}

func (m *singleEffect) BlendMode(batch.TextureName) fx.BlendMode { return m.mode }

type whiteTextures struct{ id uint32 }

func (p whiteTextures) Texture(batch.TextureName) (fx.Texture, bool) {
	return fx.Texture{ID: p.id, Size: fx.IVec2{X: 1, Y: 1}, RealSize: fx.IVec2{X: 1, Y: 1}}, true
}

func square(x, y, ex, ey float32, c color.RGBA) batch.Particle {
	return batch.Particle{
		Positions: [4]recording.Vec2{{X: x, Y: y}, {X: ex, Y: y}, {X: ex, Y: ey}, {X: x, Y: ey}},
		Color:     c,
	}
}

func TestOrderedComposite(t *testing.T) {
	tests := []struct {
		name string
		mode fx.BlendMode
	}{
		{"normal", fx.BlendNormal},
		{"additive", fx.BlendAdditive},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, q := newTest(t, 32, 32)
			mgr := &singleEffect{quad: square(10, 10, 20, 20, green), mode: tt.mode}
			r, err := fx.New(mgr, whiteTextures{d.WhiteTexture()}, q, d)
			if err != nil {
				t.Fatalf("fx.New() error = %v", err)
			}
			defer r.Close()

			q.Clear(rgba(blue), false)
			if err := r.SetView(1, 0, 0, 32, 32); err != nil {
				t.Fatalf("SetView() error = %v", err)
			}
			if err := r.PrepareOrdered(); err != nil {
				t.Fatalf("PrepareOrdered() error = %v", err)
			}
			r.DrawOrdered([]int{0}, 0, 0, color.RGBA{255, 255, 255, 255})
			r.EndFrame()
			emit(t, q, d)

			img := d.Image()
			if got := img.RGBAAt(15, 15); got.R != 0 || got.G != 255 || got.B != 0 {
				t.Errorf("effect pixel = %v, want green", got)
			}
			// Inside the bounding box but outside the particle.
			if got := img.RGBAAt(9, 9); got != blue {
				t.Errorf("margin pixel = %v, want %v", got, blue)
			}
			if got := img.RGBAAt(28, 28); got != blue {
				t.Errorf("background pixel = %v, want %v", got, blue)
			}
		})
	}
}

func TestOrderedCompositeOffset(t *testing.T) {
	d, q := newTest(t, 32, 32)
	mgr := &singleEffect{quad: square(2, 2, 6, 6, red)}
	r, err := fx.New(mgr, whiteTextures{d.WhiteTexture()}, q, d)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	if err := r.SetView(2, 4, 0, 32, 32); err != nil {
		t.Fatal(err)
	}
	if err := r.PrepareOrdered(); err != nil {
		t.Fatal(err)
	}
	r.DrawOrdered([]int{0}, 0, 8, color.RGBA{255, 255, 255, 255})
	emit(t, q, d)

	// World (2,2)-(6,6) at zoom 2 plus offsets (4,0) and (0,8).
	img := d.Image()
	if got := img.RGBAAt(10, 14); got.R != 255 || got.G != 0 || got.B != 0 {
		t.Errorf("effect pixel = %v, want red", got)
	}
	if got := img.RGBAAt(4, 14); got != black {
		t.Errorf("pixel left of effect = %v, want %v", got, black)
	}
}

func TestUnorderedDirect(t *testing.T) {
	d, q := newTest(t, 16, 16)
	mgr := &unorderedEffect{singleEffect{quad: square(4, 4, 8, 8, red), mode: fx.BlendAdditive}}
	r, err := fx.New(mgr, whiteTextures{d.WhiteTexture()}, q, nil, fx.WithFramebuffers(false))
	if err != nil {
		t.Fatal(err)
	}
	if err := r.SetView(1, 0, 0, 16, 16); err != nil {
		t.Fatal(err)
	}
	q.Clear(rgba(color.RGBA{0, 0, 100, 255}), false)
	r.DrawUnordered(0)
	emit(t, q, d)

	if got, want := d.Image().RGBAAt(5, 5), (color.RGBA{255, 0, 100, 255}); got != want {
		t.Errorf("additive pixel = %v, want %v", got, want)
	}
}

type unorderedEffect struct{ singleEffect }

func (m *unorderedEffect) Systems() []fx.System {
	return []fx.System{{Layers: []fx.Layer{0}}}
}
