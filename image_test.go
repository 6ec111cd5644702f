package scene_test

import (
	"errors"
	"testing"

	"github.com/go-theft-auto/scene"
	"github.com/go-theft-auto/scene/scenetest"
)

func TestNextPow2(t *testing.T) {
	cases := []struct{ in, want int }{
		{0, 1}, {1, 1}, {2, 2}, {3, 4}, {5, 8}, {24, 32}, {1024, 1024}, {1025, 2048},
	}
	for _, c := range cases {
		if got := scene.NextPow2(c.in); got != c.want {
			t.Errorf("NextPow2(%d) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestPow2ScaleFor(t *testing.T) {
	cases := []struct {
		w, h int
		want scene.Pow2Scale
	}{
		{16, 16, scene.NoScalingNeeded},
		{1, 64, scene.NoScalingNeeded},
		{24, 20, scene.ScaleTo(32, 32)},
		{17, 64, scene.ScaleTo(32, 64)},
		{64, 3, scene.ScaleTo(64, 4)},
	}
	for _, c := range cases {
		if got := scene.Pow2ScaleFor(c.w, c.h); got != c.want {
			t.Errorf("Pow2ScaleFor(%d, %d) = %+v, want %+v", c.w, c.h, got, c.want)
		}
	}
}

func TestImage_EnsureTextureReuses(t *testing.T) {
	g, drv := newGraphics(t)
	img := g.NewImage(scenetest.Solid(8, 4, red))

	tex := img.EnsureTexture(false, false)
	if tex == scene.NoTexture {
		t.Fatal("expected a texture")
	}
	if again := img.EnsureTexture(false, false); again != tex {
		t.Errorf("second EnsureTexture = %d, want %d", again, tex)
	}
	if n := g.Context().Stats().TexCreates; n != 1 {
		t.Errorf("TexCreates = %d, want 1", n)
	}
	up := drv.Uploads[len(drv.Uploads)-1]
	if up.Texture != uint32(tex) || up.Width != 8 || up.Height != 4 || len(up.Pixels) != 8*4*4 {
		t.Errorf("upload = tex %d %dx%d %d bytes", up.Texture, up.Width, up.Height, len(up.Pixels))
	}
}

func TestImage_NewGenerationRecreatesTexture(t *testing.T) {
	g, drv := newGraphics(t)
	img := g.NewImage(scenetest.Solid(8, 8, red))
	old := img.EnsureTexture(false, false)

	g.ContextLost()
	g.ContextCreated(screenWidth, screenHeight)

	tex := img.EnsureTexture(false, false)
	if tex == scene.NoTexture || tex == old {
		t.Errorf("expected a fresh texture, got %d (old %d)", tex, old)
	}
	for _, del := range drv.DeletedTextures {
		if del == uint32(old) {
			t.Error("textures of a lost context must not be deleted")
		}
	}
}

func TestImage_SetBitmapReplacesTexture(t *testing.T) {
	g, drv := newGraphics(t)
	img := g.NewImage(scenetest.Solid(8, 8, red))
	old := img.EnsureTexture(false, false)

	img.SetBitmap(scenetest.Solid(4, 2, blue))
	if img.Width() != 4 || img.Height() != 2 {
		t.Errorf("size = %dx%d, want 4x2", img.Width(), img.Height())
	}
	tex := img.EnsureTexture(false, false)
	if tex == old {
		t.Error("SetBitmap should force a new texture")
	}
	if len(drv.DeletedTextures) != 1 || drv.DeletedTextures[0] != uint32(old) {
		t.Errorf("deleted = %v, want [%d]", drv.DeletedTextures, old)
	}
}

func TestImage_Pow2RepeatSharesTexture(t *testing.T) {
	g, drv := newGraphics(t)
	img := g.NewImage(scenetest.Solid(16, 16, red))

	rep := img.EnsureTexture(true, true)
	if p := drv.Textures[uint32(rep)].Params; !p.RepeatX || !p.RepeatY {
		t.Errorf("params = %+v, want repeat on both axes", p)
	}
	if base := img.EnsureTexture(false, false); base != rep {
		t.Errorf("power-of-two image should repeat its base texture: %d != %d", rep, base)
	}
	if p := drv.Textures[uint32(rep)].Params; p.RepeatX || p.RepeatY {
		t.Errorf("params = %+v, want clamp for an untiled user", p)
	}
	if g.Context().Stats().FramebufferCreates != 0 {
		t.Error("no render target should be needed")
	}
}

func TestImage_RepeatVariantsAreCached(t *testing.T) {
	g, _ := newGraphics(t)
	img := g.NewImage(scenetest.Solid(24, 20, red))
	rows := g.NewImageLayer(img)
	rows.SetSize(96, 20)
	rows.SetRepeat(true, false)
	grid := g.NewImageLayer(img)
	grid.SetSize(96, 80)
	grid.SetRepeat(true, true)
	g.Root().Add(rows)
	g.Root().Add(grid)

	paint(t, g)
	if st := g.Context().Stats(); st.FramebufferCreates != 2 || st.TexCreates != 3 {
		t.Errorf("first frame: framebuffers %d textures %d, want 2 and 3", st.FramebufferCreates, st.TexCreates)
	}
	if img.EnsureTexture(true, false) == img.EnsureTexture(true, true) {
		t.Error("each repeat combination needs its own texture")
	}

	for frame := 0; frame < 3; frame++ {
		g.Context().ResetStats()
		paint(t, g)
		if st := g.Context().Stats(); st.FramebufferCreates != 0 || st.TexCreates != 0 {
			t.Errorf("frame %d: framebuffers %d textures %d, want none", frame, st.FramebufferCreates, st.TexCreates)
		}
	}
}

func TestImage_Pow2WrapFollowsEachLayer(t *testing.T) {
	g, drv := newGraphics(t)
	img := g.NewImage(scenetest.Solid(16, 16, red))
	tiled := g.NewImageLayer(img)
	tiled.SetSize(64, 16)
	tiled.SetRepeat(true, false)
	plain := g.NewImageLayer(img)
	plain.SetDepth(1)
	g.Root().Add(tiled)
	g.Root().Add(plain)

	paint(t, g)
	draws := drv.TexturedDraws()
	if len(draws) != 2 {
		t.Fatalf("expected a draw per wrap mode, got %d", len(draws))
	}
	if draws[0].Texture != draws[1].Texture {
		t.Errorf("both layers should sample texture %d, got %d", draws[0].Texture, draws[1].Texture)
	}
	if p := draws[0].TexParams; !p.RepeatX || p.RepeatY {
		t.Errorf("tiled draw params = %+v, want repeat on x only", p)
	}
	if p := draws[1].TexParams; p.RepeatX || p.RepeatY {
		t.Errorf("plain draw params = %+v, want clamp", p)
	}
}

func TestImage_NonPow2RepeatScales(t *testing.T) {
	g, drv := newGraphics(t)
	img := g.NewImage(scenetest.Solid(24, 20, red))

	base := img.EnsureTexture(false, false)
	rep := img.EnsureTexture(true, false)
	if rep == scene.NoTexture || rep == base {
		t.Fatalf("expected a separate repeat texture, got %d (base %d)", rep, base)
	}
	tx := drv.Textures[uint32(rep)]
	if tx.Width != 32 || tx.Height != 32 {
		t.Errorf("repeat texture is %dx%d, want 32x32", tx.Width, tx.Height)
	}
	if !tx.Params.RepeatX || tx.Params.RepeatY {
		t.Errorf("params = %+v, want repeat on x only", tx.Params)
	}

	draws := drv.TexturedDraws()
	if len(draws) != 1 {
		t.Fatalf("expected one scaling draw, got %d", len(draws))
	}
	d := draws[0]
	if d.Texture != uint32(base) || d.ScreenSize != [2]float32{32, 32} {
		t.Errorf("scaling draw: texture %d size %v", d.Texture, d.ScreenSize)
	}
	// flipped: the first vertex sits at the bottom edge with v = 0
	if v := d.Vertex(0); v[6] != 0 || v[7] != 32 || v[8] != 0 || v[9] != 0 {
		t.Errorf("vertex 0 = %v", v)
	}
	if v := d.Vertex(3); v[6] != 32 || v[7] != 0 || v[8] != 1 || v[9] != 1 {
		t.Errorf("vertex 3 = %v", v)
	}
	if len(drv.Framebuffers) != 0 {
		t.Error("scaling framebuffer should be deleted")
	}
	if again := img.EnsureTexture(true, false); again != rep {
		t.Error("repeat texture should be reused")
	}
}

func TestImage_ReleaseWithLastReference(t *testing.T) {
	g, drv := newGraphics(t)
	img := g.NewImage(scenetest.Solid(8, 8, red))
	a := g.NewImageLayer(img)
	b := g.NewImageLayer(img)
	g.Root().Add(a)
	g.Root().Add(b)
	if err := g.Paint(); err != nil {
		t.Fatal(err)
	}
	tex := img.EnsureTexture(false, false)

	a.Destroy()
	if len(drv.DeletedTextures) != 0 {
		t.Error("texture still referenced by a layer should survive")
	}
	b.Destroy()
	if len(drv.DeletedTextures) != 1 || drv.DeletedTextures[0] != uint32(tex) {
		t.Errorf("deleted = %v, want [%d]", drv.DeletedTextures, tex)
	}
	mustPanic(t, "release without reference", img.Release)
}

func TestImage_AsyncLoad(t *testing.T) {
	dec := scenetest.NewDecoder()
	dec.Set("a.png", scenetest.Solid(10, 6, red))
	g, _ := newGraphics(t, scene.WithDecoder(dec))

	img := g.LoadImage("a.png")
	if img.State() != scene.ImagePending {
		t.Errorf("state = %v, want pending", img.State())
	}
	if img.EnsureTexture(false, false) != scene.NoTexture {
		t.Error("pending image should have no texture")
	}
	var called bool
	img.Ready().OnComplete(func(got *scene.Image, err error) {
		called = err == nil && got == img
	})

	scenetest.AwaitQueue(t, g.Queue(), 1)
	if !called {
		t.Fatal("Ready should complete with the image")
	}
	if img.State() != scene.ImageReady || img.Width() != 10 || img.Height() != 6 {
		t.Errorf("state %v size %dx%d", img.State(), img.Width(), img.Height())
	}
	if img.EnsureTexture(false, false) == scene.NoTexture {
		t.Error("ready image should realize a texture")
	}
}

func TestImage_AsyncLoadFailure(t *testing.T) {
	g, drv := newGraphics(t, scene.WithDecoder(scenetest.NewDecoder()))
	img := g.LoadImage("missing.png")
	layer := g.NewImageLayer(img)
	g.Root().Add(layer)

	scenetest.AwaitQueue(t, g.Queue(), 1)
	if _, err := img.Ready().Result(); err == nil {
		t.Fatal("expected a decode error")
	}
	if img.State() != scene.ImageFailed || img.IsReady() {
		t.Errorf("state = %v, want failed", img.State())
	}
	if err := g.Paint(); err != nil {
		t.Fatal(err)
	}
	if len(drv.Draws) != 0 {
		t.Errorf("failed image should draw nothing, got %d draws", len(drv.Draws))
	}
}

func TestImage_EvictedBitmapRedecodes(t *testing.T) {
	dec := scenetest.NewDecoder()
	dec.Set("a.png", scenetest.Solid(8, 8, red))
	dec.Set("b.png", scenetest.Solid(8, 8, blue))
	conf := scene.DefaultConfig()
	conf.ImageCacheSize = 1
	g, _ := newGraphics(t, scene.WithConfig(conf), scene.WithDecoder(dec))

	a := g.LoadImage("a.png")
	scenetest.AwaitQueue(t, g.Queue(), 1)
	b := g.LoadImage("b.png")
	scenetest.AwaitQueue(t, g.Queue(), 1)

	if a.State() != scene.ImageEvicted || b.State() != scene.ImageReady {
		t.Fatalf("states = %v, %v; want evicted, ready", a.State(), b.State())
	}
	if a.Width() != 8 {
		t.Error("evicted image keeps its size")
	}

	if a.EnsureTexture(false, false) != scene.NoTexture {
		t.Error("evicted image without a texture should skip drawing")
	}
	scenetest.AwaitQueue(t, g.Queue(), 1)
	if n := dec.Calls("a.png"); n != 2 {
		t.Errorf("a.png decoded %d times, want 2", n)
	}
	if a.EnsureTexture(false, false) == scene.NoTexture {
		t.Error("re-decoded image should realize a texture")
	}
}

func TestImage_TextureOutlivesEviction(t *testing.T) {
	dec := scenetest.NewDecoder()
	dec.Set("a.png", scenetest.Solid(8, 8, red))
	g, _ := newGraphics(t, scene.WithDecoder(dec))

	img := g.LoadImage("a.png")
	scenetest.AwaitQueue(t, g.Queue(), 1)
	tex := img.EnsureTexture(false, false)
	g.Images().Purge()

	if got := img.EnsureTexture(false, false); got != tex {
		t.Errorf("texture should survive bitmap eviction: %d != %d", got, tex)
	}
	if dec.Calls("a.png") != 1 {
		t.Error("no re-decode needed while the texture lives")
	}
}

func TestImage_DestroyWhilePending(t *testing.T) {
	dec := scenetest.NewDecoder()
	dec.Set("a.png", scenetest.Solid(8, 8, red))
	g, _ := newGraphics(t, scene.WithDecoder(dec))

	img := g.LoadImage("a.png")
	img.Destroy()
	if _, err := img.Ready().Result(); !errors.Is(err, scene.ErrImageDestroyed) {
		t.Errorf("Ready error = %v, want ErrImageDestroyed", err)
	}

	scenetest.AwaitQueue(t, g.Queue(), 1)
	if img.State() != scene.ImageDestroyed {
		t.Errorf("state = %v, want destroyed", img.State())
	}
	if g.Images().Len() != 0 {
		t.Error("destroyed image must not enter the cache")
	}
}

func TestImage_FailedRedecodeStopsRetrying(t *testing.T) {
	dec := scenetest.NewDecoder()
	dec.Set("a.png", scenetest.Solid(8, 8, red))
	g, drv := newGraphics(t, scene.WithDecoder(dec))
	img := g.LoadImage("a.png")
	g.Root().Add(g.NewImageLayer(img))
	scenetest.AwaitQueue(t, g.Queue(), 1)
	paint(t, g)

	g.Images().Purge()
	dec.Remove("a.png")
	g.ContextLost()
	g.ContextCreated(screenWidth, screenHeight)

	paint(t, g)
	scenetest.AwaitQueue(t, g.Queue(), 1)
	if img.State() != scene.ImageFailed || img.Err() == nil {
		t.Fatalf("state = %v err = %v, want failed", img.State(), img.Err())
	}

	drv.Reset()
	for i := 0; i < 5; i++ {
		paint(t, g)
	}
	if n := dec.Calls("a.png"); n != 2 {
		t.Errorf("a.png decoded %d times, want 2", n)
	}
	if len(drv.Draws) != 0 {
		t.Errorf("failed image should draw nothing, got %d draws", len(drv.Draws))
	}

	dec.Set("a.png", scenetest.Solid(8, 8, blue))
	img.Reload()
	scenetest.AwaitQueue(t, g.Queue(), 1)
	if img.State() != scene.ImageReady {
		t.Fatalf("state after Reload = %v, want ready", img.State())
	}
	paint(t, g)
	if len(drv.TexturedDraws()) != 1 {
		t.Errorf("reloaded image should draw once, got %d draws", len(drv.TexturedDraws()))
	}
}
