package scene

import (
	"math"
	"sort"
)

// GroupLayer is an ordered collection of child layers. Children paint in
// ascending depth; children of equal depth paint in insertion order, so
// later-added children draw on top.
//
// Usage:
//
//	group := g.NewGroupLayer()
//	group.AddAt(bg, 0, 0)
//	sprite.SetDepth(1)
//	group.Add(sprite)
//	g.Root().Add(group)
type GroupLayer struct {
	layerBase
	children []Layer

	// clipping, when enabled, limits children to (0, 0, width, height)
	clip          bool
	width, height float32
}

func newGroupLayer() *GroupLayer {
	return &GroupLayer{layerBase: newLayerBase()}
}

func newClippedGroupLayer(width, height float32) *GroupLayer {
	g := newGroupLayer()
	g.clip = true
	g.width, g.height = width, height
	return g
}

// Clipped reports whether children are clipped to the group's size.
func (g *GroupLayer) Clipped() bool { return g.clip }

// Size returns the number of children.
func (g *GroupLayer) Size() int { return len(g.children) }

// Get returns the child at index in paint order.
func (g *GroupLayer) Get(index int) Layer { return g.children[index] }

// ClipSize returns the clipping rectangle size of a clipped group.
func (g *GroupLayer) ClipSize() (width, height float32) { return g.width, g.height }

// SetClipSize changes the clipping rectangle of a clipped group.
func (g *GroupLayer) SetClipSize(width, height float32) {
	assertf(g.clip, "SetClipSize on an unclipped group")
	g.width, g.height = width, height
}

// Add appends child, ordered by its depth. A child already in this group
// moves to the end of its depth band. Adding a child owned by another group
// (or an ancestor of this group) panics.
func (g *GroupLayer) Add(child Layer) {
	b := child.base()
	assertf(!b.destroyed, "adding a destroyed layer")
	assertf(!g.destroyed, "adding to a destroyed group")
	assertf(b.parent == nil || b.parent == g, "layer already belongs to another group")
	for p := g; p != nil; p = p.parent {
		assertf(&p.layerBase != b, "adding a group to its own subtree")
	}
	if b.parent == g {
		g.removeAt(g.indexOf(b))
	}
	g.insert(child)
	b.parent = g
}

// AddAt positions child at (x, y) and adds it.
func (g *GroupLayer) AddAt(child Layer, x, y float32) {
	child.base().SetTranslation(x, y)
	g.Add(child)
}

// Remove detaches child from the group. It does nothing if child is not
// a member.
func (g *GroupLayer) Remove(child Layer) {
	g.removeBase(child.base())
}

// RemoveAll detaches every child without destroying them.
func (g *GroupLayer) RemoveAll() {
	for _, c := range g.children {
		c.base().parent = nil
	}
	clear(g.children)
	g.children = g.children[:0]
}

// DestroyAll detaches and destroys every child, each exactly once.
func (g *GroupLayer) DestroyAll() {
	children := g.children
	g.children = nil
	for _, c := range children {
		c.base().parent = nil
	}
	for _, c := range children {
		c.Destroy()
	}
}

// Clear destroys every child. It is equivalent to DestroyAll.
func (g *GroupLayer) Clear() { g.DestroyAll() }

// Destroy destroys the group and its whole subtree.
func (g *GroupLayer) Destroy() {
	if g.destroyed {
		return
	}
	g.DestroyAll()
	g.destroy()
}

func (g *GroupLayer) removeBase(b *layerBase) {
	i := g.indexOf(b)
	if i < 0 {
		return
	}
	g.removeAt(i)
	b.parent = nil
}

func (g *GroupLayer) indexOf(b *layerBase) int {
	for i, c := range g.children {
		if c.base() == b {
			return i
		}
	}
	return -1
}

func (g *GroupLayer) removeAt(i int) {
	copy(g.children[i:], g.children[i+1:])
	g.children[len(g.children)-1] = nil
	g.children = g.children[:len(g.children)-1]
}

// insert places child after every sibling with depth <= its own.
func (g *GroupLayer) insert(child Layer) {
	d := child.base().depth
	i := sort.Search(len(g.children), func(i int) bool {
		return g.children[i].base().depth > d
	})
	g.children = append(g.children, nil)
	copy(g.children[i+1:], g.children[i:])
	g.children[i] = child
}

func (g *GroupLayer) depthChanged(b *layerBase) {
	i := g.indexOf(b)
	if i < 0 {
		return
	}
	child := g.children[i]
	g.removeAt(i)
	g.insert(child)
}

func (g *GroupLayer) paint(ctx *RenderContext, xf Transform, alpha float32) {
	if !g.clip {
		g.paintChildren(ctx, xf, alpha)
		return
	}
	r, ok := g.clipRect(xf)
	if !ok {
		return
	}
	ctx.StartClipped(r.X, r.Y, r.W, r.H)
	g.paintChildren(ctx, xf, alpha)
	ctx.EndClipped()
}

func (g *GroupLayer) paintChildren(ctx *RenderContext, xf Transform, alpha float32) {
	for _, c := range g.children {
		paintLayer(ctx, c, xf, alpha)
	}
}

// clipRect returns the framebuffer-space bounding box of the group's
// clip rectangle under xf. It reports false when the box is empty.
func (g *GroupLayer) clipRect(xf Transform) (Rect, bool) {
	minX, minY := float32(math.MaxFloat32), float32(math.MaxFloat32)
	maxX, maxY := -minX, -minY
	for _, p := range [4][2]float32{{0, 0}, {g.width, 0}, {0, g.height}, {g.width, g.height}} {
		x, y := xf.Apply(p[0], p[1])
		minX, minY = min(minX, x), min(minY, y)
		maxX, maxY = max(maxX, x), max(maxY, y)
	}
	r := Rect{
		X: int(math.Floor(float64(minX))),
		Y: int(math.Floor(float64(minY))),
	}
	r.W = int(math.Ceil(float64(maxX))) - r.X
	r.H = int(math.Ceil(float64(maxY))) - r.Y
	return r, r.W > 0 && r.H > 0
}
