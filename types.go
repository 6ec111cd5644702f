package scene

import (
	"math"

	"gioui.org/f32"
)

// Transform is a 2D affine transformation.
// The zero value is the identity transform.
type Transform struct {
	a f32.Affine2D
}

// Identity returns the identity transform.
func Identity() Transform {
	return Transform{}
}

// NewTransform creates a transform from its 2x2 matrix and translation.
// (m00, m01) is the first column, (m10, m11) the second, matching the
// a_Matrix vertex attribute.
func NewTransform(m00, m01, m10, m11, tx, ty float32) Transform {
	return Transform{a: f32.NewAffine2D(m00, m10, tx, m01, m11, ty)}
}

// Translation returns a pure translation.
func Translation(x, y float32) Transform {
	return Transform{a: f32.Affine2D{}.Offset(f32.Point{X: x, Y: y})}
}

// Scaling returns a pure scale.
func Scaling(sx, sy float32) Transform {
	return Transform{a: f32.Affine2D{}.Scale(f32.Point{}, f32.Point{X: sx, Y: sy})}
}

// Rotation returns a pure rotation by angle radians.
func Rotation(angle float32) Transform {
	return Transform{a: f32.Affine2D{}.Rotate(f32.Point{}, angle)}
}

// Mul returns t*o: o is applied first, then t.
func (t Transform) Mul(o Transform) Transform {
	return Transform{a: t.a.Mul(o.a)}
}

// Translate returns t with a translation applied before it.
func (t Transform) Translate(x, y float32) Transform {
	return t.Mul(Translation(x, y))
}

// Scale returns t with a scale applied before it.
func (t Transform) Scale(sx, sy float32) Transform {
	return t.Mul(Scaling(sx, sy))
}

// Rotate returns t with a rotation applied before it.
func (t Transform) Rotate(angle float32) Transform {
	return t.Mul(Rotation(angle))
}

// Invert returns the inverse transform.
func (t Transform) Invert() Transform {
	return Transform{a: t.a.Invert()}
}

// Elems returns the matrix in vertex attribute order.
func (t Transform) Elems() (m00, m01, m10, m11, tx, ty float32) {
	sx, hx, ox, hy, sy, oy := t.a.Elems()
	return sx, hy, hx, sy, ox, oy
}

// Apply transforms the point (x, y).
func (t Transform) Apply(x, y float32) (float32, float32) {
	p := t.a.Transform(f32.Point{X: x, Y: y})
	return p.X, p.Y
}

// Rect is an integer rectangle in framebuffer pixels.
type Rect struct {
	X, Y int // Top-left position
	W, H int // Width and height
}

// Intersect returns the overlap of two rectangles, with zero size if disjoint.
func (r Rect) Intersect(o Rect) Rect {
	x0, y0 := max(r.X, o.X), max(r.Y, o.Y)
	x1, y1 := min(r.X+r.W, o.X+o.W), min(r.Y+r.H, o.Y+o.H)
	if x1 < x0 {
		x1 = x0
	}
	if y1 < y0 {
		y1 = y0
	}
	return Rect{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}
}

// Colors are packed as 0xAARRGGBB.
const (
	ColorWhite       uint32 = 0xFFFFFFFF
	ColorBlack       uint32 = 0xFF000000
	ColorRed         uint32 = 0xFFFF0000
	ColorGreen       uint32 = 0xFF00FF00
	ColorBlue        uint32 = 0xFF0000FF
	ColorTransparent uint32 = 0x00000000
)

// ARGB creates a packed color from individual components (0-255).
func ARGB(a, r, g, b uint8) uint32 {
	return uint32(a)<<24 | uint32(r)<<16 | uint32(g)<<8 | uint32(b)
}

// colorComponents unpacks a color into normalized floats.
func colorComponents(c uint32) (a, r, g, b float32) {
	return float32(c>>24&0xFF) / 255, float32(c>>16&0xFF) / 255,
		float32(c>>8&0xFF) / 255, float32(c&0xFF) / 255
}

func clamp01(v float32) float32 {
	return float32(math.Max(0, math.Min(1, float64(v))))
}
