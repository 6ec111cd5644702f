package scene

// ImageLayer draws an Image as a single textured quad. The layer holds a
// reference on its image; the image's texture is released once no layer
// references it.
type ImageLayer struct {
	layerBase
	img *Image

	// explicit size; zero means the image's size
	width, height float32

	repeatX, repeatY bool
}

func newImageLayer(img *Image) *ImageLayer {
	l := &ImageLayer{layerBase: newLayerBase()}
	l.SetImage(img)
	return l
}

// Image returns the displayed image, or nil.
func (l *ImageLayer) Image() *Image { return l.img }

// SetImage replaces the displayed image. nil displays nothing.
func (l *ImageLayer) SetImage(img *Image) {
	if img == l.img {
		return
	}
	if img != nil {
		img.Reference()
	}
	if l.img != nil {
		l.img.Release()
	}
	l.img = img
}

// SetSize draws the image stretched (or tiled, with SetRepeat) to width x height.
func (l *ImageLayer) SetSize(width, height float32) {
	l.width, l.height = width, height
}

// ClearSize reverts to the image's natural size.
func (l *ImageLayer) ClearSize() {
	l.width, l.height = 0, 0
}

// Width returns the drawn width.
func (l *ImageLayer) Width() float32 {
	if l.width != 0 || l.img == nil {
		return l.width
	}
	return float32(l.img.Width())
}

// Height returns the drawn height.
func (l *ImageLayer) Height() float32 {
	if l.height != 0 || l.img == nil {
		return l.height
	}
	return float32(l.img.Height())
}

// SetRepeat tiles the image on the given axes instead of stretching it.
// Tiling draws from a power-of-two copy of the image's texture.
func (l *ImageLayer) SetRepeat(x, y bool) {
	l.repeatX, l.repeatY = x, y
}

// Repeat returns the tiling axes.
func (l *ImageLayer) Repeat() (x, y bool) { return l.repeatX, l.repeatY }

// Destroy detaches the layer and releases its image reference.
func (l *ImageLayer) Destroy() {
	if l.destroyed {
		return
	}
	l.SetImage(nil)
	l.destroy()
}

func (l *ImageLayer) paint(ctx *RenderContext, xf Transform, alpha float32) {
	img := l.img
	if img == nil {
		return
	}
	tex := img.EnsureTexture(l.repeatX, l.repeatY)
	if tex == NoTexture {
		// pending, evicted or failed; nothing to draw this frame
		return
	}
	w, h := l.Width(), l.Height()
	iw, ih := float32(img.Width()), float32(img.Height())
	sr, sb := float32(1), float32(1)
	if l.repeatX {
		sr = w / iw
	}
	if l.repeatY {
		sb = h / ih
	}
	ctx.DrawTextureUV(tex, xf, 0, 0, w, h, 0, 0, sr, sb, alpha)
}
