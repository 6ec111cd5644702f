// Example builds a small scene graph and renders it in a GLFW window.
//
// Prerequisites:
//
//	Install devbox: https://www.jetify.com/devbox
//	devbox shell              # enter the dev environment (provides Go + OpenGL/X11 headers)
//	go run ./example/         # run this example
//
// The scene holds a tiled background, two overlapping sprites ordered by
// depth, a clipped group and a canvas redrawn every frame. Press F5 to
// simulate a GPU context loss; the canvas and surfaces restore themselves.
package main

import (
	"flag"
	"fmt"
	"image"
	"image/color"
	"math"
	"os"
	"runtime"
	"time"

	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/go-theft-auto/scene"
	"github.com/go-theft-auto/scene/backend/opengl"
)

const (
	windowWidth  = 800
	windowHeight = 600
	windowTitle  = "scene example"
)

func init() {
	// GLFW must run on the main thread.
	runtime.LockOSThread()
}

func main() {
	configPath := flag.String("config", "", "TOML config file")
	imagePath := flag.String("image", "", "image file to display")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Parse()

	scene.SetVerbose(*verbose)
	if err := run(*configPath, *imagePath); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(configPath, imagePath string) error {
	conf := scene.DefaultConfig()
	if configPath != "" {
		var err error
		if conf, err = scene.LoadConfig(configPath); err != nil {
			return err
		}
	}

	p, err := opengl.NewPlatform(opengl.WindowConfig{
		Title:  windowTitle,
		Width:  windowWidth,
		Height: windowHeight,
		VSync:  true,
	}, scene.WithConfig(conf))
	if err != nil {
		return err
	}
	defer p.Close()

	g := p.Graphics()
	g.SetClearColor(scene.ARGB(255, 30, 30, 36))
	root := g.Root()

	// tiled background from a 24x24 checker, not a power of two
	bg := g.NewImageLayer(g.NewImage(checker(24, 24)))
	bg.SetSize(windowWidth, windowHeight)
	bg.SetRepeat(true, true)
	bg.SetAlpha(0.4)
	root.Add(bg)

	sprites := g.NewGroupLayer()
	red := g.NewImageLayer(g.NewImage(solid(120, 120, color.RGBA{R: 220, A: 255})))
	blue := g.NewImageLayer(g.NewImage(solid(120, 120, color.RGBA{B: 220, A: 255})))
	red.SetOrigin(60, 60)
	blue.SetOrigin(60, 60)
	blue.SetDepth(1)
	sprites.AddAt(blue, 200, 200)
	sprites.AddAt(red, 260, 240)
	root.Add(sprites)

	clip := g.NewClippedGroupLayer(200, 120)
	stripe := g.NewImageLayer(g.NewImage(solid(400, 40, color.RGBA{G: 200, A: 255})))
	clip.AddAt(stripe, -100, 40)
	root.AddAt(clip, 450, 60)

	var angle float32
	canvas := g.NewCanvasLayer(256, 256, func(s *scene.Surface) {
		s.Clear()
		s.Save().Translate(128, 128).Rotate(angle)
		s.SetFillColor(scene.ColorWhite)
		for i := 0; i < 12; i++ {
			s.Rotate(math.Pi / 6).DrawLine(20, 0, 110, 0, 4)
		}
		s.Restore()
	})
	canvas.SetContinuous(true)
	root.AddAt(canvas, 480, 300)

	if imagePath != "" {
		img := g.LoadImage(imagePath)
		img.Ready().OnComplete(func(img *scene.Image, err error) {
			if err != nil {
				scene.Logger().Error("image load failed", "path", imagePath, "err", err)
				return
			}
			scene.Logger().Info("image loaded", "path", imagePath, "size", image.Pt(img.Width(), img.Height()))
		})
		layer := g.NewImageLayer(img)
		layer.SetDepth(2)
		root.AddAt(layer, 40, 360)
	}

	p.OnKey = func(key glfw.Key) {
		switch key {
		case glfw.KeyF5:
			p.SimulateContextLoss()
		case glfw.KeyEscape:
			p.Window().SetShouldClose(true)
		}
	}

	return p.Run(func(dt time.Duration) {
		angle += float32(dt.Seconds())
		red.SetRotation(-angle / 2)
		blue.SetRotation(angle / 3)
	})
}

func solid(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func checker(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if (x/(w/2)+y/(h/2))%2 == 0 {
				img.SetRGBA(x, y, color.RGBA{R: 200, G: 200, B: 200, A: 255})
			} else {
				img.SetRGBA(x, y, color.RGBA{R: 80, G: 80, B: 80, A: 255})
			}
		}
	}
	return img
}
