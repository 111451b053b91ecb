// Package blend implements fixed-function framebuffer blending on 8-bit
// RGBA colors, as performed by the blend stage of a GPU.
//
// A blend function weights the incoming fragment (source) and the stored
// pixel (destination) with one factor each and adds the products:
//
//	result = src*srcFactor + dst*dstFactor
//
// Color and alpha channels have independent factor pairs. Results are
// clamped to 255, matching unorm8 render targets.
package blend

import "github.com/gogpu/gputypes"

// Color is a straight (non-premultiplied) RGBA color, 0-255 per channel.
type Color [4]byte

// Func holds the factor pairs for the color and alpha channels.
type Func struct {
	SrcRGB, DstRGB     gputypes.BlendFactor
	SrcAlpha, DstAlpha gputypes.BlendFactor
}

// Supported reports whether the factor can be evaluated by Apply.
func Supported(f gputypes.BlendFactor) bool {
	switch f {
	case gputypes.BlendFactorZero,
		gputypes.BlendFactorOne,
		gputypes.BlendFactorSrc,
		gputypes.BlendFactorOneMinusSrc,
		gputypes.BlendFactorSrcAlpha,
		gputypes.BlendFactorOneMinusSrcAlpha,
		gputypes.BlendFactorDst,
		gputypes.BlendFactorOneMinusDst,
		gputypes.BlendFactorDstAlpha,
		gputypes.BlendFactorOneMinusDstAlpha:
		return true
	}
	return false
}

// factor returns the weight of f for channel ch (0-3) as a 0-255 value.
func factor(f gputypes.BlendFactor, src, dst Color, ch int) byte {
	switch f {
	case gputypes.BlendFactorZero:
		return 0
	case gputypes.BlendFactorOne:
		return 255
	case gputypes.BlendFactorSrc:
		return src[ch]
	case gputypes.BlendFactorOneMinusSrc:
		return inv255(src[ch])
	case gputypes.BlendFactorSrcAlpha:
		return src[3]
	case gputypes.BlendFactorOneMinusSrcAlpha:
		return inv255(src[3])
	case gputypes.BlendFactorDst:
		return dst[ch]
	case gputypes.BlendFactorOneMinusDst:
		return inv255(dst[ch])
	case gputypes.BlendFactorDstAlpha:
		return dst[3]
	case gputypes.BlendFactorOneMinusDstAlpha:
		return inv255(dst[3])
	}
	return 255
}

// Apply blends src onto dst with f and returns the new destination value.
func Apply(f Func, src, dst Color) Color {
	var out Color
	for ch := 0; ch < 4; ch++ {
		sf, df := f.SrcRGB, f.DstRGB
		if ch == 3 {
			sf, df = f.SrcAlpha, f.DstAlpha
		}
		s := mulDiv255(src[ch], factor(sf, src, dst, ch))
		d := mulDiv255(dst[ch], factor(df, src, dst, ch))
		out[ch] = addClamp(s, d)
	}
	return out
}

// Modulate multiplies two colors channel by channel, as a fragment shader
// does with vertex color and texel.
func Modulate(a, b Color) Color {
	return Color{
		mulDiv255(a[0], b[0]),
		mulDiv255(a[1], b[1]),
		mulDiv255(a[2], b[2]),
		mulDiv255(a[3], b[3]),
	}
}
