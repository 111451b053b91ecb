package raster

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"os"

	"github.com/gogpu/fxrender"
	"github.com/gogpu/fxrender/recording"
)

func (d *Device) addTexture(s *surface) uint32 {
	d.nextID++
	d.textures[d.nextID] = s
	return d.nextID
}

// WhiteTexture returns the id of a 1x1 opaque white texture owned by the
// device, suitable for recording.WithFallbackTexture.
func (d *Device) WhiteTexture() uint32 { return d.white }

// CreateTexture uploads img as a new texture. Row 0 of img becomes texture
// row 0, sampled at v = 0.
func (d *Device) CreateTexture(img *image.RGBA) (uint32, error) {
	if img == nil || img.Bounds().Empty() {
		return 0, fmt.Errorf("raster: empty texture image: %w", recording.ErrInvalidValue)
	}
	b := img.Bounds()
	s := newSurface(b.Dx(), b.Dy())
	for y := 0; y < s.h; y++ {
		row := img.Pix[img.PixOffset(b.Min.X, b.Min.Y+y):]
		copy(s.pix[4*y*s.w:4*(y+1)*s.w], row[:4*s.w])
	}
	return d.addTexture(s), nil
}

// DestroyTexture releases a texture created with CreateTexture. Unknown ids
// and the white texture are ignored.
func (d *Device) DestroyTexture(id uint32) {
	s, ok := d.textures[id]
	if !ok || id == d.white {
		return
	}
	if d.texture == s {
		d.texture = nil
	}
	delete(d.textures, id)
}

// CreateTarget implements render.TargetAllocator. The target starts
// transparent black.
func (d *Device) CreateTarget(width, height int) (framebuffer, texture uint32, err error) {
	if width <= 0 || height <= 0 {
		return 0, 0, fmt.Errorf("raster: target %dx%d: %w", width, height, recording.ErrInvalidValue)
	}
	texture = d.addTexture(newSurface(width, height))
	d.nextID++
	framebuffer = d.nextID
	d.targets[framebuffer] = texture
	fxrender.Logger().Debug("raster: target created",
		"framebuffer", framebuffer, "texture", texture, "width", width, "height", height)
	return framebuffer, texture, nil
}

// DestroyTarget implements render.TargetAllocator.
func (d *Device) DestroyTarget(framebuffer uint32) {
	tex, ok := d.targets[framebuffer]
	if !ok {
		fxrender.Logger().Warn("raster: destroy of unknown target", "framebuffer", framebuffer)
		return
	}
	s := d.textures[tex]
	if d.target == s {
		d.target = d.screen
	}
	if d.texture == s {
		d.texture = nil
	}
	delete(d.targets, framebuffer)
	delete(d.textures, tex)
}

// toImage converts a bottom-up surface to a top-down image.
func (s *surface) toImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, s.w, s.h))
	for y := 0; y < s.h; y++ {
		src := s.pix[4*(s.h-1-y)*s.w : 4*(s.h-y)*s.w]
		copy(img.Pix[y*img.Stride:], src)
	}
	return img
}

// Image returns a copy of the default framebuffer with the top row first.
func (d *Device) Image() *image.RGBA { return d.screen.toImage() }

// TextureImage returns a copy of a texture with its last row first, which
// is how a render target's texture looks on screen.
func (d *Device) TextureImage(id uint32) (*image.RGBA, bool) {
	s, ok := d.textures[id]
	if !ok {
		return nil, false
	}
	return s.toImage(), true
}

// WritePNG encodes the default framebuffer as PNG to w.
func (d *Device) WritePNG(w io.Writer) error {
	return png.Encode(w, d.Image())
}

// SavePNG writes the default framebuffer to a PNG file.
func (d *Device) SavePNG(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("raster: save png: %w", err)
	}
	if err := d.WritePNG(f); err != nil {
		f.Close()
		return fmt.Errorf("raster: encode png: %w", err)
	}
	return f.Close()
}
