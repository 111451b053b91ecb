package fx

import (
	"image/color"

	"github.com/gogpu/fxrender/batch"
	"github.com/gogpu/fxrender/recording"
)

// quad returns a particle covering (x,y)-(ex,ey) with corners in
// clockwise screen order starting at the top left.
func quad(x, y, ex, ey float32, tex batch.TextureName) batch.Particle {
	return batch.Particle{
		Positions: [4]recording.Vec2{{X: x, Y: y}, {X: ex, Y: y}, {X: ex, Y: ey}, {X: x, Y: ey}},
		TexCoords: [4]recording.Vec2{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}},
		Color:     color.RGBA{255, 255, 255, 255},
		Texture:   tex,
	}
}

type subKey struct{ system, sub int }

type fakeManager struct {
	systems []System
	quads   map[subKey][]batch.Particle
	modes   map[batch.TextureName]BlendMode
	calls   int
}

func newFakeManager() *fakeManager {
	return &fakeManager{
		quads: make(map[subKey][]batch.Particle),
		modes: make(map[batch.TextureName]BlendMode),
	}
}

// add appends a system whose sub-systems produce the given quads.
func (m *fakeManager) add(sys System, quads ...[]batch.Particle) int {
	n := len(m.systems)
	m.systems = append(m.systems, sys)
	for ss, q := range quads {
		m.quads[subKey{n, ss}] = q
	}
	return n
}

func (m *fakeManager) Systems() []System { return m.systems }

func (m *fakeManager) GenQuads(dst []batch.Particle, system, sub int) []batch.Particle {
	m.calls++
	return append(dst, m.quads[subKey{system, sub}]...)
}

func (m *fakeManager) BlendMode(tex batch.TextureName) BlendMode { return m.modes[tex] }

type fakeTextures struct {
	textures map[batch.TextureName]Texture
	lookups  int
}

func (p *fakeTextures) Texture(name batch.TextureName) (Texture, bool) {
	p.lookups++
	t, ok := p.textures[name]
	return t, ok
}

type fakeAllocator struct {
	next      uint32
	created   []IVec2
	destroyed []uint32
	err       error
}

func (a *fakeAllocator) CreateTarget(w, h int) (uint32, uint32, error) {
	if a.err != nil {
		return 0, 0, a.err
	}
	a.next++
	a.created = append(a.created, IVec2{w, h})
	return a.next, 100 + a.next, nil
}

func (a *fakeAllocator) DestroyTarget(fb uint32) {
	a.destroyed = append(a.destroyed, fb)
}

const (
	texNormal   batch.TextureName = 1
	texAdditive batch.TextureName = 2
	texPadded   batch.TextureName = 3
)

// testTextures knows a normal, an additive and a padded texture.
func testTextures() *fakeTextures {
	return &fakeTextures{textures: map[batch.TextureName]Texture{
		texNormal:   {ID: 11, Size: IVec2{16, 16}, RealSize: IVec2{16, 16}},
		texAdditive: {ID: 12, Size: IVec2{16, 16}, RealSize: IVec2{16, 16}},
		texPadded:   {ID: 13, Size: IVec2{16, 16}, RealSize: IVec2{32, 64}},
	}}
}

func commandsOf[T recording.Command](cmds []recording.Command) []T {
	var out []T
	for _, c := range cmds {
		if v, ok := c.(T); ok {
			out = append(out, v)
		}
	}
	return out
}

// blendFuncs returns every blend function set by cmds.
func blendFuncs(cmds []recording.Command) []recording.BlendFunc {
	var out []recording.BlendFunc
	for _, c := range cmds {
		switch c := c.(type) {
		case recording.SetBlendFuncCommand:
			out = append(out, c.Func())
		case recording.SetBlendFuncSeparateCommand:
			out = append(out, c.Func)
		}
	}
	return out
}
