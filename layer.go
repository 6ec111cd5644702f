package scene

// Layer is a node in the scene tree. The concrete layers are GroupLayer,
// ImageLayer, SurfaceLayer and CanvasLayer; all embed the same transform,
// alpha, visibility and depth state.
//
// A layer belongs to at most one GroupLayer. Its effective transform is
// recomputed top-down on every paint and never cached across frames.
type Layer interface {
	Parent() *GroupLayer
	Depth() float32
	SetDepth(depth float32)
	Visible() bool
	SetVisible(visible bool)
	Alpha() float32
	SetAlpha(alpha float32)
	Transform() Transform

	// Destroy detaches the layer and releases any GPU resources it owns.
	Destroy()
	Destroyed() bool

	base() *layerBase
	paint(ctx *RenderContext, xf Transform, alpha float32)
}

// layerBase holds the state shared by every layer.
type layerBase struct {
	parent *GroupLayer // back-reference for depth changes only

	tx, ty           float32
	sx, sy           float32
	rotation         float32
	originX, originY float32

	alpha     float32
	visible   bool
	depth     float32
	destroyed bool
}

func newLayerBase() layerBase {
	return layerBase{sx: 1, sy: 1, alpha: 1, visible: true}
}

func (l *layerBase) base() *layerBase { return l }

// Parent returns the group containing this layer, or nil.
func (l *layerBase) Parent() *GroupLayer { return l.parent }

// Depth returns the paint order key among siblings.
func (l *layerBase) Depth() float32 { return l.depth }

// SetDepth changes the paint order among siblings. Lower depths paint
// first; equal depths keep insertion order.
func (l *layerBase) SetDepth(depth float32) {
	if depth == l.depth {
		return
	}
	l.depth = depth
	if l.parent != nil {
		l.parent.depthChanged(l)
	}
}

// Visible reports whether the layer (and its subtree) is painted.
func (l *layerBase) Visible() bool { return l.visible }

// SetVisible shows or hides the layer and its subtree.
func (l *layerBase) SetVisible(visible bool) { l.visible = visible }

// Alpha returns the layer's own alpha.
func (l *layerBase) Alpha() float32 { return l.alpha }

// SetAlpha sets the layer's alpha, clamped to [0, 1]. It multiplies with
// every ancestor's alpha when painted.
func (l *layerBase) SetAlpha(alpha float32) { l.alpha = clamp01(alpha) }

// Translation returns the layer's position in its parent.
func (l *layerBase) Translation() (x, y float32) { return l.tx, l.ty }

// SetTranslation positions the layer in its parent.
func (l *layerBase) SetTranslation(x, y float32) { l.tx, l.ty = x, y }

// Scale returns the layer's scale factors.
func (l *layerBase) Scale() (sx, sy float32) { return l.sx, l.sy }

// SetScale sets a uniform scale. Zero scale panics.
func (l *layerBase) SetScale(s float32) { l.SetScaleXY(s, s) }

// SetScaleXY sets per-axis scale factors. Zero scale panics.
func (l *layerBase) SetScaleXY(sx, sy float32) {
	assertf(sx != 0 && sy != 0, "scale must be non-zero, got %g,%g", sx, sy)
	l.sx, l.sy = sx, sy
}

// Rotation returns the rotation in radians.
func (l *layerBase) Rotation() float32 { return l.rotation }

// SetRotation sets the rotation in radians around the origin.
func (l *layerBase) SetRotation(angle float32) { l.rotation = angle }

// Origin returns the point scaling and rotation are applied around.
func (l *layerBase) Origin() (x, y float32) { return l.originX, l.originY }

// SetOrigin sets the point, in layer coordinates, that sits at the
// layer's translation and around which it scales and rotates.
func (l *layerBase) SetOrigin(x, y float32) { l.originX, l.originY = x, y }

// Transform returns the layer's local transform:
// translation, then rotation, then scale, then the negated origin.
func (l *layerBase) Transform() Transform {
	return Translation(l.tx, l.ty).
		Rotate(l.rotation).
		Scale(l.sx, l.sy).
		Translate(-l.originX, -l.originY)
}

// Destroyed reports whether Destroy has been called.
func (l *layerBase) Destroyed() bool { return l.destroyed }

// destroy detaches the layer from its parent and marks it destroyed.
func (l *layerBase) destroy() {
	if l.parent != nil {
		l.parent.removeBase(l)
	}
	l.destroyed = true
}

// paintLayer composes l's transform and alpha with its parent's and
// paints it. Invisible layers are skipped with their whole subtree.
func paintLayer(ctx *RenderContext, l Layer, parentXf Transform, parentAlpha float32) {
	b := l.base()
	if !b.visible || b.destroyed {
		return
	}
	l.paint(ctx, parentXf.Mul(b.Transform()), parentAlpha*b.alpha)
}
