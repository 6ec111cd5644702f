// Command gen renders sample scenes in a hidden window, captures framebuffer
// pixels, and saves JPEG screenshots to doc/imgs/.
//
// Usage:
//
//	devbox shell
//	go run ./doc/gen/
package main

import (
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"path/filepath"
	"runtime"

	"github.com/go-theft-auto/scene"
	"github.com/go-theft-auto/scene/backend/opengl"
)

const (
	shotWidth  = 400
	shotHeight = 300
)

func init() {
	runtime.LockOSThread()
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// screenshot defines a single scene screenshot to capture.
type screenshot struct {
	name  string // filename without extension
	build func(g *scene.Graphics, root *scene.GroupLayer)
}

func run() error {
	p, err := opengl.NewPlatform(opengl.WindowConfig{
		Title:  "screenshot-gen",
		Width:  shotWidth,
		Height: shotHeight,
		Hidden: true,
	})
	if err != nil {
		return err
	}
	defer p.Close()

	outDir := filepath.Join("doc", "imgs")
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}

	shots := buildScreenshots()
	for _, s := range shots {
		if err := capture(p.Graphics(), s, outDir); err != nil {
			return fmt.Errorf("capture %s: %w", s.name, err)
		}
		fmt.Printf("  %s.jpg\n", s.name)
	}

	fmt.Printf("\nGenerated %d screenshots in %s/\n", len(shots), outDir)
	return nil
}

func capture(g *scene.Graphics, s screenshot, outDir string) error {
	root := g.Root()
	root.DestroyAll()
	s.build(g, root)

	// the second frame sees canvases and pow2 copies already realized
	for i := 0; i < 2; i++ {
		if err := g.Paint(); err != nil {
			return err
		}
	}

	w, h := g.Context().Size()
	pixels := make([]byte, w*h*4)
	if err := g.Context().Driver().ReadPixels(0, 0, w, h, pixels); err != nil {
		return err
	}

	// GL rows are bottom-up
	rowLen := w * 4
	tmp := make([]byte, rowLen)
	for y := 0; y < h/2; y++ {
		top := y * rowLen
		bot := (h - 1 - y) * rowLen
		copy(tmp, pixels[top:top+rowLen])
		copy(pixels[top:top+rowLen], pixels[bot:bot+rowLen])
		copy(pixels[bot:bot+rowLen], tmp)
	}

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	copy(img.Pix, pixels)

	path := filepath.Join(outDir, s.name+".jpg")
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return jpeg.Encode(f, img, &jpeg.Options{Quality: 90})
}

func solid(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	return img
}

func buildScreenshots() []screenshot {
	red := color.RGBA{R: 220, A: 255}
	blue := color.RGBA{B: 220, A: 255}
	green := color.RGBA{G: 200, A: 255}

	return []screenshot{
		{
			name: "depth_order",
			build: func(g *scene.Graphics, root *scene.GroupLayer) {
				front := g.NewImageLayer(g.NewImage(solid(120, 120, red)))
				back := g.NewImageLayer(g.NewImage(solid(120, 120, blue)))
				front.SetDepth(1)
				root.AddAt(front, 140, 100)
				root.AddAt(back, 80, 60)
			},
		},
		{
			name: "alpha_inheritance",
			build: func(g *scene.Graphics, root *scene.GroupLayer) {
				group := g.NewGroupLayer()
				group.SetAlpha(0.5)
				inner := g.NewImageLayer(g.NewImage(solid(160, 160, green)))
				inner.SetAlpha(0.5)
				group.AddAt(inner, 120, 70)
				root.Add(group)
			},
		},
		{
			name: "tiled",
			build: func(g *scene.Graphics, root *scene.GroupLayer) {
				tile := image.NewRGBA(image.Rect(0, 0, 20, 20))
				for y := 0; y < 20; y++ {
					for x := 0; x < 20; x++ {
						if (x < 10) != (y < 10) {
							tile.SetRGBA(x, y, color.RGBA{R: 200, G: 200, B: 200, A: 255})
						}
					}
				}
				l := g.NewImageLayer(g.NewImage(tile))
				l.SetSize(shotWidth, shotHeight)
				l.SetRepeat(true, true)
				root.Add(l)
			},
		},
		{
			name: "clipped_group",
			build: func(g *scene.Graphics, root *scene.GroupLayer) {
				clip := g.NewClippedGroupLayer(200, 100)
				stripe := g.NewImageLayer(g.NewImage(solid(400, 40, green)))
				stripe.SetRotation(0.3)
				clip.AddAt(stripe, -100, 20)
				root.AddAt(clip, 100, 100)
			},
		},
		{
			name: "canvas",
			build: func(g *scene.Graphics, root *scene.GroupLayer) {
				c := g.NewCanvasLayer(200, 200, func(s *scene.Surface) {
					s.Clear()
					s.SetFillColor(scene.ColorWhite).FillRect(10, 10, 180, 180)
					s.SetFillColor(scene.ColorRed).DrawLine(10, 10, 190, 190, 6)
					s.Save().Translate(100, 100).Rotate(0.5)
					s.SetFillColor(scene.ColorBlue).FillRect(-30, -30, 60, 60)
					s.Restore()
				})
				root.AddAt(c, 100, 50)
			},
		},
	}
}
