package scene

// SurfaceLayer displays a Surface. The layer owns the surface and destroys
// it with itself.
type SurfaceLayer struct {
	layerBase
	surface *Surface
}

func newSurfaceLayer(s *Surface) *SurfaceLayer {
	return &SurfaceLayer{layerBase: newLayerBase(), surface: s}
}

// Surface returns the surface to draw into.
func (l *SurfaceLayer) Surface() *Surface { return l.surface }

// Width returns the surface width.
func (l *SurfaceLayer) Width() float32 { return float32(l.surface.Width()) }

// Height returns the surface height.
func (l *SurfaceLayer) Height() float32 { return float32(l.surface.Height()) }

// Destroy detaches the layer and destroys its surface.
func (l *SurfaceLayer) Destroy() {
	if l.destroyed {
		return
	}
	l.surface.Destroy()
	l.destroy()
}

func (l *SurfaceLayer) paint(ctx *RenderContext, xf Transform, alpha float32) {
	drawSurface(ctx, l.surface, xf, alpha)
}

// drawSurface draws a surface's texture as one quad. Render targets are
// stored bottom-up, so the destination height is inverted.
func drawSurface(ctx *RenderContext, s *Surface, xf Transform, alpha float32) {
	tex := s.Texture()
	if tex == NoTexture {
		return
	}
	w, h := float32(s.Width()), float32(s.Height())
	ctx.DrawTextureUV(tex, xf, 0, h, w, -h, 0, 0, 1, 1, alpha)
}
