package scene

import (
	"image"

	xdraw "golang.org/x/image/draw"
)

// TextureID is an opaque GPU texture handle.
type TextureID uint32

// NoTexture is returned when no texture could be realized. Callers skip the draw.
const NoTexture TextureID = 0

// Pow2Scale describes how an image must be resampled before the GPU can
// repeat it. The zero value means no scaling is needed.
type Pow2Scale struct {
	scale         bool
	Width, Height int // Target dimensions, valid when NeedsScaling
}

// NoScalingNeeded is the Pow2Scale of an image already power-of-two on both axes.
var NoScalingNeeded = Pow2Scale{}

// ScaleTo returns a Pow2Scale resampling to width x height.
func ScaleTo(width, height int) Pow2Scale {
	return Pow2Scale{scale: true, Width: width, Height: height}
}

// NeedsScaling reports whether the image must be redrawn at a new size.
func (p Pow2Scale) NeedsScaling() bool { return p.scale }

// Pow2ScaleFor computes the repeatable size of a width x height image:
// the smallest power of two >= each dimension.
func Pow2ScaleFor(width, height int) Pow2Scale {
	if isPow2(width) && isPow2(height) {
		return NoScalingNeeded
	}
	return ScaleTo(NextPow2(width), NextPow2(height))
}

// NextPow2 returns the smallest power of two >= n (1 for n <= 1).
func NextPow2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

func isPow2(n int) bool {
	return n > 0 && n&(n-1) == 0
}

// toRGBA converts any decoded image to a zero-origin RGBA bitmap.
func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Rect.Min == (image.Point{}) {
		return rgba
	}
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	xdraw.Draw(dst, dst.Rect, img, b.Min, xdraw.Src)
	return dst
}

// tightPixels returns bmp's pixels without row padding.
func tightPixels(bmp *image.RGBA) []byte {
	w, h := bmp.Rect.Dx(), bmp.Rect.Dy()
	if bmp.Stride == w*4 {
		return bmp.Pix[:w*h*4]
	}
	pix := make([]byte, w*h*4)
	for y := 0; y < h; y++ {
		off := bmp.PixOffset(bmp.Rect.Min.X, bmp.Rect.Min.Y+y)
		copy(pix[y*w*4:(y+1)*w*4], bmp.Pix[off:off+w*4])
	}
	return pix
}
