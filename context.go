package scene

import (
	"fmt"
	"image"
)

// noFramebuffer marks the bound framebuffer as unknown, forcing the next bind.
const noFramebuffer = ^uint32(0)

// Stats counts GPU work. Reset with ResetStats.
type Stats struct {
	Frames int

	ShaderCreates      int
	FramebufferCreates int
	TexCreates         int

	ShaderBinds      int
	FramebufferBinds int

	QuadsRendered int
	TrisRendered  int
	ShaderFlushes int
}

type framebufferState struct {
	fbuf          uint32
	width, height int
	scissors      []Rect
}

// RenderContext is the single source of truth for GPU binding state and
// resource allocation. All draw operations funnel through it.
//
// This is NOT context.Context. It must only be used on the render thread;
// one RenderContext (with its shaders and buffers) exists per GPU context.
type RenderContext struct {
	drv  Driver
	conf Config

	// generation advances every time a new GPU context is created.
	// Resources remember the generation they were created in and treat a
	// mismatch as invalid.
	generation uint64
	lost       bool

	colorShader, texShader *ShaderProgram
	curShader              *ShaderProgram

	lastFramebuffer                     uint32
	curFbufWidth, curFbufHeight         int
	defaultFbufWidth, defaultFbufHeight int
	fbStack                             []framebufferState
	scissors                            []Rect

	surfaces    map[*Surface]struct{}
	nextSurface uint64

	stats Stats
}

// NewRenderContext creates a context drawing through drv.
func NewRenderContext(drv Driver, conf Config) *RenderContext {
	ctx := &RenderContext{
		drv:             drv,
		conf:            conf,
		generation:      1,
		lastFramebuffer: noFramebuffer,
		surfaces:        make(map[*Surface]struct{}),
	}
	ctx.colorShader = newShaderProgram(ctx, ColorShader, conf.BatchVertices)
	ctx.texShader = newShaderProgram(ctx, TextureShader, conf.BatchVertices)
	return ctx
}

// Driver returns the underlying GPU driver.
func (ctx *RenderContext) Driver() Driver { return ctx.drv }

// Generation returns the current GPU context generation.
func (ctx *RenderContext) Generation() uint64 { return ctx.generation }

// Lost reports whether the GPU context is currently lost.
func (ctx *RenderContext) Lost() bool { return ctx.lost }

// ColorShader returns the solid fill program.
func (ctx *RenderContext) ColorShader() *ShaderProgram { return ctx.colorShader }

// TextureShader returns the textured quad program.
func (ctx *RenderContext) TextureShader() *ShaderProgram { return ctx.texShader }

// Stats returns a copy of the rendering counters.
func (ctx *RenderContext) Stats() Stats { return ctx.stats }

// ResetStats zeroes the rendering counters.
func (ctx *RenderContext) ResetStats() { ctx.stats = Stats{} }

// SetSize sets the default framebuffer size in pixels.
func (ctx *RenderContext) SetSize(width, height int) {
	ctx.defaultFbufWidth, ctx.defaultFbufHeight = width, height
	if ctx.lastFramebuffer == ctx.drv.DefaultFramebuffer() {
		// force a rebind so the viewport and u_ScreenSize pick up the new size
		ctx.Flush()
		ctx.lastFramebuffer = noFramebuffer
	}
}

// Size returns the default framebuffer size.
func (ctx *RenderContext) Size() (width, height int) {
	return ctx.defaultFbufWidth, ctx.defaultFbufHeight
}

// FramebufferSize returns the size of the bound framebuffer.
func (ctx *RenderContext) FramebufferSize() (width, height int) {
	return ctx.curFbufWidth, ctx.curFbufHeight
}

// textureParams builds sampling parameters from the configured filter.
func (ctx *RenderContext) textureParams(repeatX, repeatY bool) TextureParams {
	return TextureParams{
		Nearest: ctx.conf.TextureFilter == FilterNearest,
		RepeatX: repeatX,
		RepeatY: repeatY,
	}
}

// CreateTexture allocates a texture with the given wrap behavior.
// It returns NoTexture if allocation fails.
func (ctx *RenderContext) CreateTexture(repeatX, repeatY bool) TextureID {
	tex := ctx.drv.GenTexture()
	if tex == 0 {
		Logger().Warn("texture allocation failed", "op", "createTexture")
		return NoTexture
	}
	ctx.drv.BindTexture(tex)
	ctx.drv.TexParameters(tex, ctx.textureParams(repeatX, repeatY))
	if err := ctx.allocError("createTexture"); err != nil {
		ctx.drv.DeleteTexture(tex)
		return NoTexture
	}
	ctx.stats.TexCreates++
	return TextureID(tex)
}

// CreateSizedTexture allocates a texture with empty storage of the given
// size, suitable as a render target. It returns NoTexture on failure.
func (ctx *RenderContext) CreateSizedTexture(width, height int, repeatX, repeatY bool) TextureID {
	tex := ctx.CreateTexture(repeatX, repeatY)
	if tex == NoTexture {
		return NoTexture
	}
	ctx.drv.TexImage2D(width, height, nil)
	if err := ctx.allocError("createSizedTexture"); err != nil {
		ctx.drv.DeleteTexture(uint32(tex))
		return NoTexture
	}
	return tex
}

// SetTextureRepeat changes the wrap behavior of an existing texture.
func (ctx *RenderContext) SetTextureRepeat(tex TextureID, repeatX, repeatY bool) {
	ctx.Flush()
	ctx.drv.BindTexture(uint32(tex))
	ctx.drv.TexParameters(uint32(tex), ctx.textureParams(repeatX, repeatY))
}

// UpdateTexture uploads bmp into tex.
func (ctx *RenderContext) UpdateTexture(tex TextureID, bmp *image.RGBA) error {
	if tex == NoTexture {
		return ErrNoTexture
	}
	ctx.Flush()
	w, h := bmp.Rect.Dx(), bmp.Rect.Dy()
	ctx.drv.BindTexture(uint32(tex))
	ctx.drv.TexImage2D(w, h, tightPixels(bmp))
	return ctx.allocError("updateTexture")
}

// DestroyTexture deletes tex. Pending geometry is flushed first since it
// may still reference the texture.
func (ctx *RenderContext) DestroyTexture(tex TextureID) {
	if tex == NoTexture {
		return
	}
	ctx.Flush()
	ctx.drv.DeleteTexture(uint32(tex))
}

// CreateFramebuffer creates a framebuffer rendering into tex. It returns 0 on failure.
func (ctx *RenderContext) CreateFramebuffer(tex TextureID) uint32 {
	ctx.Flush()
	fbuf := ctx.drv.GenFramebuffer(uint32(tex))
	if err := ctx.allocError("createFramebuffer"); err != nil || fbuf == 0 {
		if fbuf != 0 {
			ctx.drv.DeleteFramebuffer(fbuf)
		}
		return 0
	}
	// GenFramebuffer may leave the new framebuffer bound
	ctx.lastFramebuffer = noFramebuffer
	ctx.stats.FramebufferCreates++
	return fbuf
}

// DeleteFramebuffer deletes fbuf.
func (ctx *RenderContext) DeleteFramebuffer(fbuf uint32) {
	if fbuf == 0 {
		return
	}
	ctx.Flush()
	ctx.drv.DeleteFramebuffer(fbuf)
	if ctx.lastFramebuffer == fbuf {
		ctx.lastFramebuffer = noFramebuffer
	}
}

// BindFramebuffer binds fbuf with the given size. It is a no-op when fbuf
// is already bound; otherwise pending geometry is flushed first.
func (ctx *RenderContext) BindFramebuffer(fbuf uint32, width, height int) {
	if fbuf == ctx.lastFramebuffer {
		return
	}
	ctx.CheckError("bindFramebuffer")
	ctx.Flush()
	ctx.drv.BindFramebuffer(fbuf)
	ctx.drv.Viewport(0, 0, width, height)
	ctx.lastFramebuffer = fbuf
	ctx.curFbufWidth, ctx.curFbufHeight = width, height
	ctx.stats.FramebufferBinds++
}

// BindDefaultFramebuffer binds the screen framebuffer.
func (ctx *RenderContext) BindDefaultFramebuffer() {
	ctx.BindFramebuffer(ctx.drv.DefaultFramebuffer(), ctx.defaultFbufWidth, ctx.defaultFbufHeight)
}

// PushFramebuffer binds fbuf and remembers the previous binding and clip
// stack. Clipping is suspended until the matching PopFramebuffer, since
// scissor boxes of one target are meaningless in another.
func (ctx *RenderContext) PushFramebuffer(fbuf uint32, width, height int) {
	prev := framebufferState{fbuf: ctx.lastFramebuffer, width: ctx.curFbufWidth, height: ctx.curFbufHeight}
	if prev.fbuf == noFramebuffer {
		prev = framebufferState{fbuf: ctx.drv.DefaultFramebuffer(), width: ctx.defaultFbufWidth, height: ctx.defaultFbufHeight}
	}
	if len(ctx.scissors) > 0 {
		ctx.Flush()
		prev.scissors = ctx.scissors
		ctx.scissors = nil
		ctx.drv.SetScissorEnabled(false)
	}
	ctx.fbStack = append(ctx.fbStack, prev)
	ctx.BindFramebuffer(fbuf, width, height)
}

// PopFramebuffer restores the binding and clip stack saved by PushFramebuffer.
func (ctx *RenderContext) PopFramebuffer() {
	n := len(ctx.fbStack)
	assertf(n > 0, "PopFramebuffer without PushFramebuffer")
	prev := ctx.fbStack[n-1]
	ctx.fbStack = ctx.fbStack[:n-1]
	ctx.Flush()
	ctx.BindFramebuffer(prev.fbuf, prev.width, prev.height)
	if len(ctx.scissors) > 0 {
		ctx.drv.SetScissorEnabled(false)
	}
	ctx.scissors = prev.scissors
	if n := len(ctx.scissors); n > 0 {
		ctx.drv.SetScissorEnabled(true)
		ctx.applyScissor(ctx.scissors[n-1])
	}
}

// Clear fills the bound framebuffer with a color.
func (ctx *RenderContext) Clear(r, g, b, a float32) {
	ctx.Flush()
	ctx.drv.Clear(r, g, b, a)
}

// StartClipped clips subsequent drawing to a rectangle in framebuffer
// pixels (origin top-left), intersected with any enclosing clip.
// It must be balanced by EndClipped.
func (ctx *RenderContext) StartClipped(x, y, width, height int) {
	ctx.Flush()
	r := Rect{X: x, Y: y, W: width, H: height}
	if n := len(ctx.scissors); n > 0 {
		r = ctx.scissors[n-1].Intersect(r)
	}
	ctx.scissors = append(ctx.scissors, r)
	ctx.drv.SetScissorEnabled(true)
	ctx.applyScissor(r)
}

// EndClipped pops the clip pushed by the matching StartClipped.
func (ctx *RenderContext) EndClipped() {
	n := len(ctx.scissors)
	assertf(n > 0, "EndClipped without StartClipped")
	ctx.Flush()
	ctx.scissors = ctx.scissors[:n-1]
	if n == 1 {
		ctx.drv.SetScissorEnabled(false)
		return
	}
	ctx.applyScissor(ctx.scissors[n-2])
}

// ClipDepth returns how many clips are active.
func (ctx *RenderContext) ClipDepth() int { return len(ctx.scissors) }

func (ctx *RenderContext) applyScissor(r Rect) {
	// GL scissor boxes have their origin at the bottom-left
	ctx.drv.Scissor(r.X, ctx.curFbufHeight-r.Y-r.H, r.W, r.H)
}

// UseShader makes s the active program, flushing the previous one.
// It returns true if a switch occurred, meaning uniform state must be re-sent.
func (ctx *RenderContext) UseShader(s *ShaderProgram) bool {
	if ctx.curShader == s {
		return false
	}
	ctx.CheckError("useShader")
	ctx.Flush()
	ctx.curShader = s
	ctx.stats.ShaderBinds++
	return true
}

// Flush draws pending geometry of the active program and deactivates it,
// so the next prepare re-sends the framebuffer size.
func (ctx *RenderContext) Flush() {
	if ctx.curShader == nil {
		return
	}
	ctx.curShader.Flush()
	ctx.curShader = nil
}

// CheckError drains the GPU error queue in debug mode, logging each error
// tagged with op. It returns the first error, or nil. In release mode it
// does nothing.
func (ctx *RenderContext) CheckError(op string) error {
	if !ctx.conf.Debug {
		return nil
	}
	return ctx.drainErrors(op)
}

// allocError drains the GPU error queue after an allocation regardless of
// debug mode; allocation failures must never pass silently.
func (ctx *RenderContext) allocError(op string) error {
	return ctx.drainErrors(op)
}

func (ctx *RenderContext) drainErrors(op string) error {
	var first error
	// bounded: a lost context can report errors forever
	for i := 0; i < 16; i++ {
		code := ctx.drv.GetError()
		if code == 0 {
			break
		}
		Logger().Warn("GL error", "op", op, "code", fmt.Sprintf("0x%04x", code))
		if first == nil {
			first = &GLError{Op: op, Code: code}
		}
	}
	return first
}

// DrawTexture draws the region (sx, sy, sw, sh) of a texture of size
// texWidth x texHeight into the destination rectangle (dx, dy, dw, dh).
// A negative dh flips the image vertically.
func (ctx *RenderContext) DrawTexture(tex TextureID, texWidth, texHeight float32, xf Transform,
	dx, dy, dw, dh, sx, sy, sw, sh, alpha float32) {
	ctx.DrawTextureUV(tex, xf, dx, dy, dw, dh,
		sx/texWidth, sy/texHeight, (sx+sw)/texWidth, (sy+sh)/texHeight, alpha)
}

// DrawTextureUV draws tex into (dx, dy, dw, dh) with explicit texture coordinates.
func (ctx *RenderContext) DrawTextureUV(tex TextureID, xf Transform,
	dx, dy, dw, dh, sl, st, sr, sb, alpha float32) {
	if tex == NoTexture {
		return
	}
	if _, err := ctx.texShader.PrepareTexture(tex, alpha); err != nil {
		Logger().Error("skipping textured draw", "err", err)
		return
	}
	ctx.texShader.AddQuad(xf, dx, dy, dx+dw, dy+dh, sl, st, sr, sb)
}

// FillRect fills a rectangle with a solid color.
func (ctx *RenderContext) FillRect(xf Transform, x, y, width, height float32, color uint32, alpha float32) {
	if _, err := ctx.colorShader.PrepareColor(color, alpha); err != nil {
		Logger().Error("skipping fill", "err", err)
		return
	}
	ctx.colorShader.AddQuad(xf, x, y, x+width, y+height, 0, 0, 0, 0)
}

// FillRectPattern fills a rectangle by repeating a patWidth x patHeight
// texture, which must have been created with repeat wrapping.
func (ctx *RenderContext) FillRectPattern(xf Transform, x, y, width, height float32,
	tex TextureID, patWidth, patHeight, alpha float32) {
	ctx.DrawTextureUV(tex, xf, x, y, width, height, 0, 0, width/patWidth, height/patHeight, alpha)
}

// FillTriangles fills an indexed triangle list with a solid color.
func (ctx *RenderContext) FillTriangles(xf Transform, xys []float32, indices []int, color uint32, alpha float32) {
	if _, err := ctx.colorShader.PrepareColor(color, alpha); err != nil {
		Logger().Error("skipping fill", "err", err)
		return
	}
	ctx.colorShader.AddTriangles(xf, xys, nil, indices)
}

// FillPoly fills a convex polygon given as x,y pairs.
func (ctx *RenderContext) FillPoly(xf Transform, xys []float32, color uint32, alpha float32) {
	n := len(xys) / 2
	if n < 3 {
		return
	}
	indices := make([]int, 0, (n-2)*3)
	for i := 1; i < n-1; i++ {
		indices = append(indices, 0, i, i+1)
	}
	ctx.FillTriangles(xf, xys, indices, color, alpha)
}

// ContextLost must be called when the GPU context is about to be lost.
// Every live surface snapshots its pixels before this returns.
func (ctx *RenderContext) ContextLost() {
	if ctx.lost {
		return
	}
	Logger().Info("GPU context lost", "generation", ctx.generation, "surfaces", len(ctx.surfaces))
	for s := range ctx.surfaces {
		s.snapshot()
	}
	ctx.colorShader.batch.Reset()
	ctx.texShader.batch.Reset()
	ctx.curShader = nil
	ctx.lost = true
}

// ContextCreated must be called when a new GPU context of the given size
// exists. Every previously issued handle becomes invalid and is
// regenerated on next use.
func (ctx *RenderContext) ContextCreated(width, height int) {
	ctx.generation++
	ctx.lost = false
	ctx.curShader = nil
	ctx.lastFramebuffer = noFramebuffer
	ctx.fbStack = ctx.fbStack[:0]
	ctx.scissors = ctx.scissors[:0]
	ctx.SetSize(width, height)
	Logger().Info("GPU context created", "generation", ctx.generation, "width", width, "height", height)
}

func (ctx *RenderContext) registerSurface(s *Surface) uint64 {
	ctx.nextSurface++
	ctx.surfaces[s] = struct{}{}
	return ctx.nextSurface
}

func (ctx *RenderContext) unregisterSurface(s *Surface) {
	delete(ctx.surfaces, s)
}

// Release deletes the built-in programs and their buffers.
func (ctx *RenderContext) Release() {
	ctx.Flush()
	ctx.colorShader.release()
	ctx.texShader.release()
}
