package scene

import (
	"image/color"
	"math"
	"math/rand/v2"
	"slices"

	"github.com/gogpu/fxrender/batch"
	"github.com/gogpu/fxrender/fx"
	"github.com/gogpu/fxrender/recording"
)

// particle is a particle in polar coordinates around its emitter.
type particle struct {
	dirX, dirY float32
	dist       float32
	scale      float32
}

type emitterState struct {
	Emitter
	color     color.RGBA
	particles []particle
}

// Sim is a deterministic particle simulation. Each emitter is one effect
// instance with a single sub-system, and its index is both the system id
// and the texture name of its particles.
type Sim struct {
	emitters []emitterState
	systems  []fx.System
	modes    []fx.BlendMode
	time     float32
}

// Ensure Sim implements fx.Manager.
var _ fx.Manager = (*Sim)(nil)

// NewSim seeds the particles of every emitter in s.
func NewSim(s *Scene) *Sim {
	sim := &Sim{}
	for i, e := range s.Emitters {
		rng := rand.New(rand.NewPCG(e.Seed, uint64(i)))
		st := emitterState{
			Emitter: e,
			color: color.RGBA{
				R: uint8(e.Color[0]), G: uint8(e.Color[1]), //nolint:gosec // validated to 0..255
				B: uint8(e.Color[2]), A: uint8(e.Color[3]), //nolint:gosec // validated to 0..255
			},
			particles: make([]particle, e.Count),
		}
		for j := range st.particles {
			a := rng.Float64() * 2 * math.Pi
			st.particles[j] = particle{
				dirX:  float32(math.Cos(a)),
				dirY:  float32(math.Sin(a)),
				dist:  rng.Float32() * e.Radius,
				scale: 0.5 + rng.Float32(),
			}
		}
		mode, _ := parseBlend(e.Blend)
		sim.emitters = append(sim.emitters, st)
		sim.modes = append(sim.modes, mode)
		sim.systems = append(sim.systems, fx.System{
			Ordered: e.Ordered,
			Layers:  []fx.Layer{fx.Layer(e.Layer)},
		})
	}
	return sim
}

// Step sets the simulation time in frames.
func (s *Sim) Step(frame int) { s.time = float32(frame) }

// Systems implements fx.Manager.
func (s *Sim) Systems() []fx.System { return s.systems }

// BlendMode implements fx.Manager.
func (s *Sim) BlendMode(tex batch.TextureName) fx.BlendMode {
	if int(tex) < 0 || int(tex) >= len(s.modes) {
		return fx.BlendNormal
	}
	return s.modes[tex]
}

// GenQuads implements fx.Manager. Particles drift outwards at the emitter
// speed, fade with distance and wrap back to the center at the radius.
func (s *Sim) GenQuads(dst []batch.Particle, system, subSystem int) []batch.Particle {
	if system < 0 || system >= len(s.emitters) || subSystem != 0 {
		return dst
	}
	e := &s.emitters[system]
	for _, p := range e.particles {
		d := p.dist
		if e.Radius > 0 {
			d = float32(math.Mod(float64(p.dist+s.time*e.Speed), float64(e.Radius)))
			if d < 0 {
				d += e.Radius
			}
		}
		cx, cy := e.X+p.dirX*d, e.Y+p.dirY*d
		h := e.Size * p.scale / 2

		c := e.color
		if e.Radius > 0 {
			c.A = uint8(float32(c.A) * (1 - d/e.Radius))
		}
		dst = append(dst, batch.Particle{
			Positions: [4]recording.Vec2{
				{X: cx - h, Y: cy - h}, {X: cx + h, Y: cy - h},
				{X: cx + h, Y: cy + h}, {X: cx - h, Y: cy + h},
			},
			TexCoords: [4]recording.Vec2{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}},
			Color:     c,
			Texture:   batch.TextureName(system),
		})
	}
	return dst
}

// OrderedIDs returns the ids of the ordered emitters in scene order.
func (s *Sim) OrderedIDs() []int {
	var ids []int
	for i, sys := range s.systems {
		if sys.Ordered {
			ids = append(ids, i)
		}
	}
	return ids
}

// Layers returns the distinct layers of unordered emitters, ascending.
func (s *Sim) Layers() []fx.Layer {
	var layers []fx.Layer
	for _, sys := range s.systems {
		if sys.Ordered {
			continue
		}
		for _, l := range sys.Layers {
			if !slices.Contains(layers, l) {
				layers = append(layers, l)
			}
		}
	}
	slices.Sort(layers)
	return layers
}
