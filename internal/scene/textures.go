package scene

import (
	"fmt"
	"image"

	"github.com/gogpu/fxrender/batch"
	"github.com/gogpu/fxrender/fx"
	"github.com/gogpu/fxrender/internal/sprite"
)

// TextureCreator uploads images to a device. Both the raster and the native
// devices implement it.
type TextureCreator interface {
	CreateTexture(img *image.RGBA) (uint32, error)
}

type spriteKey struct {
	kind sprite.Kind
	size int
}

// Textures holds the sprite texture of every emitter. Emitters with the same
// sprite and size share one device texture.
type Textures struct {
	byName []fx.Texture
}

// Ensure Textures implements fx.TextureProvider.
var _ fx.TextureProvider = (*Textures)(nil)

// LoadTextures draws the sprites of s and uploads them to dev.
func LoadTextures(dev TextureCreator, s *Scene) (*Textures, error) {
	ids := make(map[spriteKey]uint32)
	t := &Textures{byName: make([]fx.Texture, len(s.Emitters))}
	for i, e := range s.Emitters {
		kind, err := sprite.ParseKind(e.Sprite)
		if err != nil {
			return nil, fmt.Errorf("scene: emitter %q: %w", e.Name, err)
		}
		key := spriteKey{kind, e.Texture}
		id, ok := ids[key]
		if !ok {
			img, err := sprite.New(kind, e.Texture)
			if err != nil {
				return nil, fmt.Errorf("scene: emitter %q: %w", e.Name, err)
			}
			id, err = dev.CreateTexture(img)
			if err != nil {
				return nil, fmt.Errorf("scene: upload %v sprite: %w", kind, err)
			}
			ids[key] = id
		}
		size := fx.IVec2{X: e.Texture, Y: e.Texture}
		t.byName[i] = fx.Texture{ID: id, Size: size, RealSize: size}
	}
	return t, nil
}

// Texture implements fx.TextureProvider.
func (t *Textures) Texture(name batch.TextureName) (fx.Texture, bool) {
	if int(name) < 0 || int(name) >= len(t.byName) {
		return fx.Texture{}, false
	}
	return t.byName[name], true
}
