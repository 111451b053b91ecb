package fx

import (
	"github.com/chewxy/math32"

	"github.com/gogpu/fxrender/recording"
)

// DefaultTileSize is the nominal size of a world tile in pixels at zoom 1.
const DefaultTileSize = 24

// View describes the camera: world pixels are scaled by Zoom and then
// translated by Offset to get screen pixels.
type View struct {
	Zoom   float32
	Offset recording.Vec2
	Size   IVec2
}

// VisibleTiles returns the rectangle of tiles visible through v, expanded
// by one tile on every side.
func VisibleTiles(v View, tileSize int) IRect {
	scale := 1 / (v.Zoom * float32(tileSize))
	topLeft := v.Offset.Scale(-scale)
	size := v.Size.Float().Scale(scale)

	tl := IVec2{int(math32.Floor(topLeft.X)), int(math32.Floor(topLeft.Y))}
	sz := IVec2{int(math32.Ceil(size.X)), int(math32.Ceil(size.Y))}
	return IRect{
		Min: tl.Sub(IVec2{1, 1}),
		Max: tl.Add(sz).Add(IVec2{1, 1}),
	}
}
