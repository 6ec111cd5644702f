package scene_test

import (
	"errors"
	"testing"

	"github.com/go-theft-auto/scene"
	"github.com/go-theft-auto/scene/scenetest"
)

func paint(t *testing.T, g *scene.Graphics) {
	t.Helper()
	if err := g.Paint(); err != nil {
		t.Fatalf("Paint() returned error: %v", err)
	}
}

func TestPaint_DepthOrder(t *testing.T) {
	g, drv := newGraphics(t)
	front := g.NewImageLayer(g.NewImage(scenetest.Solid(8, 8, red)))
	back := g.NewImageLayer(g.NewImage(scenetest.Solid(8, 8, blue)))
	front.SetDepth(1)
	g.Root().Add(front)
	g.Root().Add(back)

	paint(t, g)
	draws := drv.TexturedDraws()
	if len(draws) != 2 {
		t.Fatalf("expected 2 textured draws, got %d", len(draws))
	}
	backTex := back.Image().EnsureTexture(false, false)
	frontTex := front.Image().EnsureTexture(false, false)
	if draws[0].Texture != uint32(backTex) || draws[1].Texture != uint32(frontTex) {
		t.Errorf("draw order = %d, %d; want %d, %d", draws[0].Texture, draws[1].Texture, backTex, frontTex)
	}
	for i, d := range draws {
		if d.Quads() != 1 {
			t.Errorf("draw %d has %d quads, want 1", i, d.Quads())
		}
	}
}

func TestPaint_SharedTextureBatches(t *testing.T) {
	g, drv := newGraphics(t)
	img := g.NewImage(scenetest.Solid(8, 8, red))
	g.Root().AddAt(g.NewImageLayer(img), 0, 0)
	g.Root().AddAt(g.NewImageLayer(img), 20, 0)

	paint(t, g)
	if len(drv.Draws) != 1 || drv.Draws[0].Quads() != 2 {
		t.Errorf("expected one draw of 2 quads, got %d draws", len(drv.Draws))
	}
	if n := g.Context().Stats().QuadsRendered; n != 2 {
		t.Errorf("QuadsRendered = %d, want 2", n)
	}
}

func TestPaint_InvisibleSubtree(t *testing.T) {
	g, drv := newGraphics(t)
	group := g.NewGroupLayer()
	group.Add(g.NewImageLayer(g.NewImage(scenetest.Solid(8, 8, red))))
	group.Add(g.NewImageLayer(g.NewImage(scenetest.Solid(8, 8, blue))))
	group.SetVisible(false)
	g.Root().Add(group)

	paint(t, g)
	if len(drv.Draws) != 0 {
		t.Errorf("invisible group drew %d times", len(drv.Draws))
	}
	if len(drv.Uploads) != 0 {
		t.Error("invisible layers should not realize textures")
	}
}

func TestPaint_AlphaAndTransformCompose(t *testing.T) {
	g, drv := newGraphics(t)
	group := g.NewGroupLayer()
	group.SetAlpha(0.5)
	l := g.NewImageLayer(g.NewImage(scenetest.Solid(8, 8, red)))
	l.SetAlpha(0.5)
	group.AddAt(l, 10, 10)
	g.Root().AddAt(group, 100, 50)

	paint(t, g)
	if len(drv.Draws) != 1 {
		t.Fatalf("expected 1 draw, got %d", len(drv.Draws))
	}
	d := drv.Draws[0]
	if !approx(d.Alpha, 0.25) {
		t.Errorf("alpha = %v, want 0.25", d.Alpha)
	}
	v := d.Vertex(0)
	if v[0] != 1 || v[3] != 1 || v[4] != 110 || v[5] != 60 {
		t.Errorf("vertex transform = %v, want identity matrix at (110, 60)", v[:6])
	}
	if v := d.Vertex(3); v[6] != 8 || v[7] != 8 {
		t.Errorf("quad extends to (%v, %v), want (8, 8)", v[6], v[7])
	}
}

func TestPaint_ClippedGroup(t *testing.T) {
	g, drv := newGraphics(t)
	clip := g.NewClippedGroupLayer(100, 50)
	clip.Add(g.NewImageLayer(g.NewImage(scenetest.Solid(400, 400, red))))
	g.Root().AddAt(clip, 10, 20)
	g.Root().AddAt(g.NewImageLayer(g.NewImage(scenetest.Solid(8, 8, blue))), 0, 0)

	paint(t, g)
	if len(drv.Draws) != 2 {
		t.Fatalf("expected 2 draws, got %d", len(drv.Draws))
	}
	s := drv.Draws[0].Scissor
	if s == nil || *s != [4]int{10, screenHeight - 70, 100, 50} {
		t.Errorf("clipped draw scissor = %v", s)
	}
	if drv.Draws[1].Scissor != nil {
		t.Error("sibling after the clipped group should be unclipped")
	}
}

func TestPaint_EmptyClipSkipsChildren(t *testing.T) {
	g, drv := newGraphics(t)
	clip := g.NewClippedGroupLayer(0, 50)
	clip.Add(g.NewImageLayer(g.NewImage(scenetest.Solid(8, 8, red))))
	g.Root().Add(clip)

	paint(t, g)
	if len(drv.Draws) != 0 {
		t.Errorf("empty clip drew %d times", len(drv.Draws))
	}
}

func TestPaint_RepeatedImageLayer(t *testing.T) {
	g, drv := newGraphics(t)
	l := g.NewImageLayer(g.NewImage(scenetest.Solid(24, 20, red)))
	l.SetSize(48, 20)
	l.SetRepeat(true, false)
	g.Root().Add(l)

	paint(t, g)
	screen := drv.DrawsTo(0)
	if len(screen) != 1 {
		t.Fatalf("expected 1 screen draw, got %d", len(screen))
	}
	v := screen[0].Vertex(3)
	if v[6] != 48 || v[7] != 20 || v[8] != 2 || v[9] != 1 {
		t.Errorf("bottom-right vertex = %v, want position (48, 20) uv (2, 1)", v[6:])
	}
	if p := drv.Textures[screen[0].Texture].Params; !p.RepeatX {
		t.Error("tiled draw should sample a repeating texture")
	}
}

func TestPaint_ClearsToPremultipliedColor(t *testing.T) {
	g, drv := newGraphics(t)
	g.SetClearColor(scene.ARGB(128, 255, 0, 0))
	paint(t, g)
	if len(drv.Clears) != 1 {
		t.Fatalf("expected 1 clear, got %d", len(drv.Clears))
	}
	c := drv.Clears[0].Color
	if !approx(c[0], 128.0/255) || c[1] != 0 || !approx(c[3], 128.0/255) {
		t.Errorf("clear color = %v", c)
	}
}

func TestPaint_DrainsQueue(t *testing.T) {
	g, _ := newGraphics(t)
	ran := false
	g.Queue().Post(func() { ran = true })
	paint(t, g)
	if !ran {
		t.Error("Paint should run queued tasks")
	}
	if g.Context().Stats().Frames != 1 {
		t.Error("Paint should count the frame")
	}
}

func TestPaint_ContextLost(t *testing.T) {
	g, drv := newGraphics(t)
	g.Root().Add(g.NewImageLayer(g.NewImage(scenetest.Solid(8, 8, red))))
	g.ContextLost()
	if err := g.Paint(); !errors.Is(err, scene.ErrContextLost) {
		t.Fatalf("Paint() = %v, want ErrContextLost", err)
	}
	if len(drv.Draws) != 0 {
		t.Error("nothing should draw while the context is lost")
	}

	g.ContextCreated(screenWidth, screenHeight)
	paint(t, g)
	if len(drv.Draws) != 1 {
		t.Errorf("expected 1 draw after recreation, got %d", len(drv.Draws))
	}
}

func TestGraphics_InvalidConfig(t *testing.T) {
	conf := scene.DefaultConfig()
	conf.TextureFilter = "bicubic"
	if _, err := scene.New(scenetest.NewDriver(), scene.WithConfig(conf)); err == nil {
		t.Error("expected an error for an unknown filter")
	}
}

func TestGraphics_Close(t *testing.T) {
	g, drv := newGraphics(t)
	l := g.NewImageLayer(g.NewImage(scenetest.Solid(8, 8, red)))
	g.Root().Add(l)
	paint(t, g)

	g.Close()
	if !l.Destroyed() {
		t.Error("Close should destroy the tree")
	}
	if drv.CallCount("DeleteProgram") != 1 {
		t.Errorf("DeleteProgram called %d times, want 1", drv.CallCount("DeleteProgram"))
	}
	g.Close()
	mustPanic(t, "Paint after Close", func() { _ = g.Paint() })
}
