package scene

import (
	"fmt"
	"math"
)

// SurfaceState is the lifecycle state of a Surface's GPU resources.
type SurfaceState int

const (
	SurfaceLive        SurfaceState = iota // framebuffer and texture valid
	SurfacePixelCached                     // GPU resources gone, pixels held in the PixelStore
	SurfaceBlank                           // GPU resources gone, nothing cached; recreated empty
	SurfaceDestroyed
)

func (s SurfaceState) String() string {
	switch s {
	case SurfaceLive:
		return "live"
	case SurfacePixelCached:
		return "pixel-cached"
	case SurfaceBlank:
		return "blank"
	case SurfaceDestroyed:
		return "destroyed"
	default:
		return "unknown"
	}
}

// Surface is an offscreen render target with a transform stack for
// immediate-mode drawing. It survives GPU context loss by snapshotting its
// pixels to a PixelStore and redrawing them into a fresh framebuffer the
// next time it is used.
type Surface struct {
	ctx   *RenderContext
	store PixelStore
	key   string

	width, height int

	tex  TextureID
	fbuf uint32
	gen  uint64

	cached    bool
	destroyed bool

	transforms  []Transform
	fillColor   uint32
	fillPattern *Image
}

func newSurface(ctx *RenderContext, store PixelStore, width, height int) *Surface {
	assertf(width > 0 && height > 0, "surface size %dx%d", width, height)
	s := &Surface{
		ctx:        ctx,
		store:      store,
		width:      width,
		height:     height,
		transforms: []Transform{Identity()},
		fillColor:  ColorBlack,
	}
	s.key = fmt.Sprintf("surface-%d", ctx.registerSurface(s))
	s.ensureLive()
	return s
}

// Width returns the surface width in pixels.
func (s *Surface) Width() int { return s.width }

// Height returns the surface height in pixels.
func (s *Surface) Height() int { return s.height }

// State returns the lifecycle state of the surface.
func (s *Surface) State() SurfaceState {
	switch {
	case s.destroyed:
		return SurfaceDestroyed
	case s.tex != NoTexture && s.gen == s.ctx.Generation():
		return SurfaceLive
	case s.cached:
		return SurfacePixelCached
	default:
		return SurfaceBlank
	}
}

// Texture returns the surface's color texture, recreating it after a
// context loss. It returns NoTexture if the surface cannot be realized.
func (s *Surface) Texture() TextureID {
	if !s.ensureLive() {
		return NoTexture
	}
	return s.tex
}

// Framebuffer returns the surface's framebuffer id, 0 if not live.
func (s *Surface) Framebuffer() uint32 {
	if !s.ensureLive() {
		return 0
	}
	return s.fbuf
}

// ensureLive recreates GPU resources invalidated by a context loss and
// restores any cached pixels into them.
func (s *Surface) ensureLive() bool {
	ctx := s.ctx
	if s.destroyed || ctx.Lost() {
		return false
	}
	if s.tex != NoTexture && s.gen == ctx.Generation() {
		return true
	}
	// ids from an older generation died with their context
	s.tex, s.fbuf = NoTexture, 0

	tex := ctx.CreateSizedTexture(s.width, s.height, false, false)
	if tex == NoTexture {
		return false
	}
	fbuf := ctx.CreateFramebuffer(tex)
	if fbuf == 0 {
		ctx.DestroyTexture(tex)
		return false
	}
	s.tex, s.fbuf, s.gen = tex, fbuf, ctx.Generation()

	ctx.PushFramebuffer(fbuf, s.width, s.height)
	ctx.Clear(0, 0, 0, 0)
	if s.cached {
		s.restore()
	}
	ctx.PopFramebuffer()
	return true
}

// restore redraws cached pixels into the bound (fresh) framebuffer.
// A failed read leaves the surface blank.
func (s *Surface) restore() {
	s.cached = false
	ctx := s.ctx
	pix, err := s.store.Take(s.key)
	if err != nil {
		Logger().Warn("surface pixels lost, starting blank", "surface", s.key, "err", err)
		return
	}
	tmp := ctx.CreateTexture(false, false)
	if tmp == NoTexture {
		return
	}
	ctx.drv.BindTexture(uint32(tmp))
	ctx.drv.TexImage2D(s.width, s.height, pix)
	if err := ctx.allocError("surface.restore"); err != nil {
		ctx.DestroyTexture(tmp)
		return
	}
	w, h := float32(s.width), float32(s.height)
	// pixels were read bottom row first; draw flipped to put them back in place
	ctx.DrawTextureUV(tmp, Identity(), 0, h, w, -h, 0, 0, 1, 1, 1)
	// flushes the restoring draw before the texture goes away
	ctx.DestroyTexture(tmp)
	Logger().Debug("surface restored", "surface", s.key)
}

// snapshot copies the surface's pixels out before its context is lost.
// If readback or the store fails the snapshot is dropped and the surface
// comes back blank.
func (s *Surface) snapshot() {
	ctx := s.ctx
	if s.destroyed || s.tex == NoTexture || s.gen != ctx.Generation() {
		return
	}
	ctx.BindFramebuffer(s.fbuf, s.width, s.height)
	ctx.Flush()
	pix := make([]byte, s.width*s.height*4)
	if err := ctx.drv.ReadPixels(0, 0, s.width, s.height, pix); err != nil {
		Logger().Warn("surface readback failed, dropping pixels", "surface", s.key, "err", err)
	} else if err := s.store.Put(s.key, pix); err != nil {
		Logger().Warn("surface cache write failed, dropping pixels", "surface", s.key, "err", err)
	} else {
		s.cached = true
	}
	ctx.DestroyTexture(s.tex)
	ctx.DeleteFramebuffer(s.fbuf)
	s.tex, s.fbuf = NoTexture, 0
}

// bind makes the surface the current render target.
func (s *Surface) bind() bool {
	if !s.ensureLive() {
		return false
	}
	s.ctx.BindFramebuffer(s.fbuf, s.width, s.height)
	return true
}

func (s *Surface) top() Transform {
	return s.transforms[len(s.transforms)-1]
}

func (s *Surface) setTop(t Transform) {
	s.transforms[len(s.transforms)-1] = t
}

// Depth returns the transform stack depth, never less than 1.
func (s *Surface) Depth() int { return len(s.transforms) }

// CurrentTransform returns the top of the transform stack.
func (s *Surface) CurrentTransform() Transform { return s.top() }

// Save pushes a copy of the current transform.
func (s *Surface) Save() *Surface {
	s.transforms = append(s.transforms, s.top())
	return s
}

// Restore pops the transform pushed by the matching Save. Restoring past
// the base transform panics.
func (s *Surface) Restore() *Surface {
	assertf(len(s.transforms) > 1, "unbalanced surface save/restore")
	s.transforms = s.transforms[:len(s.transforms)-1]
	return s
}

// Translate translates the current transform.
func (s *Surface) Translate(x, y float32) *Surface {
	s.setTop(s.top().Translate(x, y))
	return s
}

// Scale scales the current transform.
func (s *Surface) Scale(sx, sy float32) *Surface {
	s.setTop(s.top().Scale(sx, sy))
	return s
}

// Rotate rotates the current transform by angle radians.
func (s *Surface) Rotate(angle float32) *Surface {
	s.setTop(s.top().Rotate(angle))
	return s
}

// Transform concatenates t onto the current transform.
func (s *Surface) Transform(t Transform) *Surface {
	s.setTop(s.top().Mul(t))
	return s
}

// SetTransform replaces the current transform.
func (s *Surface) SetTransform(t Transform) *Surface {
	s.setTop(t)
	return s
}

// SetFillColor sets the color (0xAARRGGBB) for fills and lines, clearing any pattern.
func (s *Surface) SetFillColor(color uint32) *Surface {
	s.fillColor = color
	s.fillPattern = nil
	return s
}

// SetFillPattern fills subsequent rectangles by repeating img.
func (s *Surface) SetFillPattern(img *Image) *Surface {
	s.fillPattern = img
	return s
}

// Clear erases the surface to transparent.
func (s *Surface) Clear() *Surface {
	if s.bind() {
		s.ctx.Clear(0, 0, 0, 0)
	}
	return s
}

// DrawImage draws img at (x, y) at its natural size.
func (s *Surface) DrawImage(img *Image, x, y float32) *Surface {
	return s.DrawImageScaled(img, x, y, float32(img.Width()), float32(img.Height()))
}

// DrawImageCentered draws img centered on (x, y).
func (s *Surface) DrawImageCentered(img *Image, x, y float32) *Surface {
	return s.DrawImage(img, x-float32(img.Width())/2, y-float32(img.Height())/2)
}

// DrawImageScaled draws img into the rectangle (x, y, w, h).
func (s *Surface) DrawImageScaled(img *Image, x, y, w, h float32) *Surface {
	iw, ih := float32(img.Width()), float32(img.Height())
	return s.DrawImageRegion(img, x, y, w, h, 0, 0, iw, ih)
}

// DrawImageRegion draws the source region (sx, sy, sw, sh) of img into (dx, dy, dw, dh).
func (s *Surface) DrawImageRegion(img *Image, dx, dy, dw, dh, sx, sy, sw, sh float32) *Surface {
	if !s.bind() {
		return s
	}
	tex := img.EnsureTexture(false, false)
	if tex == NoTexture {
		return s
	}
	s.ctx.DrawTexture(tex, float32(img.Width()), float32(img.Height()), s.top(),
		dx, dy, dw, dh, sx, sy, sw, sh, 1)
	return s
}

// DrawLine draws a line of the given width in the fill color.
func (s *Surface) DrawLine(x0, y0, x1, y1, width float32) *Surface {
	dx, dy := x1-x0, y1-y0
	length := float32(math.Hypot(float64(dx), float64(dy)))
	if length == 0 || !s.bind() {
		return s
	}
	dx, dy = dx*(width/2)/length, dy*(width/2)/length
	pos := []float32{
		x0 - dy, y0 + dx,
		x1 - dy, y1 + dx,
		x1 + dy, y1 - dx,
		x0 + dy, y0 - dx,
	}
	s.ctx.FillPoly(s.top(), pos, s.fillColor, 1)
	return s
}

// FillRect fills a rectangle with the fill color or pattern.
func (s *Surface) FillRect(x, y, width, height float32) *Surface {
	if !s.bind() {
		return s
	}
	if p := s.fillPattern; p != nil {
		tex := p.EnsureTexture(true, true)
		s.ctx.FillRectPattern(s.top(), x, y, width, height, tex, float32(p.Width()), float32(p.Height()), 1)
		return s
	}
	s.ctx.FillRect(s.top(), x, y, width, height, s.fillColor, 1)
	return s
}

// FillTriangles fills an indexed triangle list in the fill color.
func (s *Surface) FillTriangles(xys []float32, indices []int) *Surface {
	if s.bind() {
		s.ctx.FillTriangles(s.top(), xys, indices, s.fillColor, 1)
	}
	return s
}

// Destroy releases the surface's framebuffer, texture and any cached pixels.
func (s *Surface) Destroy() {
	if s.destroyed {
		return
	}
	ctx := s.ctx
	ctx.unregisterSurface(s)
	if s.cached {
		s.store.Delete(s.key)
		s.cached = false
	}
	if s.tex != NoTexture && s.gen == ctx.Generation() {
		ctx.DestroyTexture(s.tex)
		ctx.DeleteFramebuffer(s.fbuf)
	}
	s.tex, s.fbuf = NoTexture, 0
	s.destroyed = true
}
