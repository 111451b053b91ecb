// Package sprite draws the procedural particle textures used by the demo.
//
// Sprites are white with straight (non-premultiplied) alpha so that particle
// colors tint them when the device multiplies vertex color and texel.
package sprite

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"

	"golang.org/x/image/vector"
)

// Errors returned by New.
var (
	ErrInvalidSize = errors.New("sprite: invalid size")
	ErrUnknownKind = errors.New("sprite: unknown kind")
)

// Kind selects a sprite shape.
type Kind uint8

const (
	// Disc is a filled circle.
	Disc Kind = iota
	// Glow is a circle fading out towards its edge.
	Glow
	// Spark is an eight point star.
	Spark
)

var kindNames = [...]string{
	Disc:  "disc",
	Glow:  "glow",
	Spark: "spark",
}

// String returns the kind name.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// ParseKind returns the kind with the given name.
func ParseKind(name string) (Kind, error) {
	for k, n := range kindNames {
		if n == name {
			return Kind(k), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownKind, name)
}

// glowRings is the number of concentric discs stacked to build a glow.
const glowRings = 8

// kappa places cubic Bezier control points for a quarter circle.
const kappa = 0.5522847

// New draws a size x size sprite of the given kind.
func New(kind Kind, size int) (*image.RGBA, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSize, size)
	}
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	z := vector.NewRasterizer(size, size)
	c := float32(size) / 2

	switch kind {
	case Disc:
		circle(z, c, c, c)
		z.Draw(img, img.Bounds(), image.White, image.Point{})
	case Glow:
		// Rings are stacked with draw.Over, so opacity rises towards the
		// center.
		a := uint8(255 / glowRings)
		src := image.NewUniform(color.NRGBA{255, 255, 255, a})
		for i := glowRings; i > 0; i-- {
			z.Reset(size, size)
			z.DrawOp = draw.Over
			circle(z, c, c, c*float32(i)/glowRings)
			z.Draw(img, img.Bounds(), src, image.Point{})
		}
	case Spark:
		star(z, c, c, c, c/4, 8)
		z.Draw(img, img.Bounds(), image.White, image.Point{})
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownKind, kind)
	}
	unpremultiply(img)
	return img, nil
}

// circle adds a circle of radius r as four cubic segments.
func circle(z *vector.Rasterizer, cx, cy, r float32) {
	k := r * kappa
	z.MoveTo(cx+r, cy)
	z.CubeTo(cx+r, cy+k, cx+k, cy+r, cx, cy+r)
	z.CubeTo(cx-k, cy+r, cx-r, cy+k, cx-r, cy)
	z.CubeTo(cx-r, cy-k, cx-k, cy-r, cx, cy-r)
	z.CubeTo(cx+k, cy-r, cx+r, cy-k, cx+r, cy)
	z.ClosePath()
}

// star adds a star with n points alternating between the outer and inner
// radius.
func star(z *vector.Rasterizer, cx, cy, outer, inner float32, n int) {
	for i := 0; i < 2*n; i++ {
		r := outer
		if i%2 == 1 {
			r = inner
		}
		a := float64(i) * math.Pi / float64(n)
		x := cx + r*float32(math.Cos(a))
		y := cy + r*float32(math.Sin(a))
		if i == 0 {
			z.MoveTo(x, y)
		} else {
			z.LineTo(x, y)
		}
	}
	z.ClosePath()
}

// unpremultiply turns white premultiplied pixels into straight alpha.
func unpremultiply(img *image.RGBA) {
	for i := 0; i+3 < len(img.Pix); i += 4 {
		if img.Pix[i+3] > 0 {
			img.Pix[i], img.Pix[i+1], img.Pix[i+2] = 255, 255, 255
		}
	}
}
