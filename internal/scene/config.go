// Package scene loads demo scenes and simulates their particle emitters.
//
// A scene file holds a camera and a list of emitters. It is read as TOML or
// YAML depending on the file extension:
//
//	[camera]
//	zoom = 2.0
//
//	[[emitter]]
//	name    = "torch"
//	x       = 120.0
//	y       = 80.0
//	sprite  = "glow"
//	blend   = "additive"
//	ordered = true
//	count   = 64
package scene

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/gogpu/fxrender/fx"
	"github.com/gogpu/fxrender/internal/sprite"
)

// Errors returned by Load and Parse.
var (
	ErrUnknownFormat = errors.New("scene: unknown file format")
	ErrInvalid       = errors.New("scene: invalid scene")
)

// Format is a scene file encoding.
type Format uint8

const (
	FormatTOML Format = iota
	FormatYAML
)

// FormatOf returns the format for a file name by extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownFormat, path)
}

// Camera positions the view over the world.
type Camera struct {
	Zoom float32 `toml:"zoom" yaml:"zoom"`
	X    float32 `toml:"x" yaml:"x"`
	Y    float32 `toml:"y" yaml:"y"`
}

// Emitter spawns one effect instance.
type Emitter struct {
	Name    string  `toml:"name" yaml:"name"`
	X       float32 `toml:"x" yaml:"x"`
	Y       float32 `toml:"y" yaml:"y"`
	Sprite  string  `toml:"sprite" yaml:"sprite"`
	Texture int     `toml:"texture_size" yaml:"texture_size"`
	Blend   string  `toml:"blend" yaml:"blend"`
	Ordered bool    `toml:"ordered" yaml:"ordered"`
	Layer   int     `toml:"layer" yaml:"layer"`
	Count   int     `toml:"count" yaml:"count"`
	Seed    uint64  `toml:"seed" yaml:"seed"`
	Radius  float32 `toml:"radius" yaml:"radius"`
	Size    float32 `toml:"size" yaml:"size"`
	Speed   float32 `toml:"speed" yaml:"speed"`
	Color   []int   `toml:"color" yaml:"color"`
}

// Scene is a parsed scene file.
type Scene struct {
	Camera     Camera    `toml:"camera" yaml:"camera"`
	Background []float32 `toml:"background" yaml:"background"`
	Emitters   []Emitter `toml:"emitter" yaml:"emitters"`
}

// Load reads and validates a scene file.
func Load(path string) (*Scene, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("scene: %w", err)
	}
	s, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("scene: %s: %w", path, err)
	}
	return s, nil
}

// Parse decodes a scene, fills in defaults and validates it.
func Parse(data []byte, format Format) (*Scene, error) {
	var s Scene
	var err error
	switch format {
	case FormatTOML:
		err = toml.Unmarshal(data, &s)
	case FormatYAML:
		err = yaml.Unmarshal(data, &s)
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownFormat, format)
	}
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	s.setDefaults()
	if err := s.validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Emitter defaults.
const (
	defaultTextureSize = 32
	defaultCount       = 32
	defaultRadius      = 24
	defaultSize        = 6
)

func (s *Scene) setDefaults() {
	if s.Camera.Zoom == 0 {
		s.Camera.Zoom = 1
	}
	if len(s.Background) == 0 {
		s.Background = []float32{0, 0, 0, 1}
	}
	for i := range s.Emitters {
		e := &s.Emitters[i]
		if e.Name == "" {
			e.Name = fmt.Sprintf("emitter%d", i)
		}
		if e.Sprite == "" {
			e.Sprite = sprite.Glow.String()
		}
		if e.Blend == "" {
			e.Blend = fx.BlendNormal.String()
		}
		if e.Texture == 0 {
			e.Texture = defaultTextureSize
		}
		if e.Count == 0 {
			e.Count = defaultCount
		}
		if e.Radius == 0 {
			e.Radius = defaultRadius
		}
		if e.Size == 0 {
			e.Size = defaultSize
		}
		if len(e.Color) == 0 {
			e.Color = []int{255, 255, 255, 255}
		}
	}
}

func (s *Scene) validate() error {
	if s.Camera.Zoom < 0 {
		return fmt.Errorf("%w: camera zoom %g", ErrInvalid, s.Camera.Zoom)
	}
	if len(s.Background) != 4 {
		return fmt.Errorf("%w: background needs 4 components, got %d", ErrInvalid, len(s.Background))
	}
	for i := range s.Emitters {
		e := &s.Emitters[i]
		if _, err := sprite.ParseKind(e.Sprite); err != nil {
			return fmt.Errorf("%w: emitter %q: %w", ErrInvalid, e.Name, err)
		}
		if _, err := parseBlend(e.Blend); err != nil {
			return fmt.Errorf("%w: emitter %q: %w", ErrInvalid, e.Name, err)
		}
		if e.Count < 0 || e.Texture < 0 || e.Size < 0 || e.Radius < 0 {
			return fmt.Errorf("%w: emitter %q: negative count or size", ErrInvalid, e.Name)
		}
		if len(e.Color) != 4 {
			return fmt.Errorf("%w: emitter %q: color needs 4 components, got %d", ErrInvalid, e.Name, len(e.Color))
		}
		for _, c := range e.Color {
			if c < 0 || c > 255 {
				return fmt.Errorf("%w: emitter %q: color component %d out of range", ErrInvalid, e.Name, c)
			}
		}
	}
	return nil
}

func parseBlend(name string) (fx.BlendMode, error) {
	switch name {
	case fx.BlendNormal.String():
		return fx.BlendNormal, nil
	case fx.BlendAdditive.String():
		return fx.BlendAdditive, nil
	}
	return 0, fmt.Errorf("unknown blend mode %q", name)
}
