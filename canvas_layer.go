package scene

// CanvasFunc redraws a canvas layer's surface.
type CanvasFunc func(s *Surface)

// CanvasLayer is a surface redrawn by a callback. The callback runs during
// paint, with the surface bound as the render target, whenever the layer
// has been invalidated or on every frame when continuous.
type CanvasLayer struct {
	layerBase
	surface    *Surface
	render     CanvasFunc
	dirty      bool
	continuous bool
}

func newCanvasLayer(s *Surface, render CanvasFunc) *CanvasLayer {
	return &CanvasLayer{layerBase: newLayerBase(), surface: s, render: render, dirty: true}
}

// Surface returns the backing surface.
func (l *CanvasLayer) Surface() *Surface { return l.surface }

// Width returns the canvas width.
func (l *CanvasLayer) Width() float32 { return float32(l.surface.Width()) }

// Height returns the canvas height.
func (l *CanvasLayer) Height() float32 { return float32(l.surface.Height()) }

// Invalidate schedules a redraw on the next paint.
func (l *CanvasLayer) Invalidate() { l.dirty = true }

// SetContinuous redraws on every paint when true.
func (l *CanvasLayer) SetContinuous(continuous bool) { l.continuous = continuous }

// Destroy detaches the layer and destroys its surface.
func (l *CanvasLayer) Destroy() {
	if l.destroyed {
		return
	}
	l.surface.Destroy()
	l.destroy()
}

func (l *CanvasLayer) paint(ctx *RenderContext, xf Transform, alpha float32) {
	if (l.dirty || l.continuous) && l.render != nil {
		l.redraw(ctx)
	}
	drawSurface(ctx, l.surface, xf, alpha)
}

func (l *CanvasLayer) redraw(ctx *RenderContext) {
	s := l.surface
	fbuf := s.Framebuffer()
	if fbuf == 0 {
		return
	}
	// restore whatever target the traversal had bound
	ctx.PushFramebuffer(fbuf, s.Width(), s.Height())
	l.render(s)
	ctx.PopFramebuffer()
	l.dirty = false
}
