package scene_test

import (
	"errors"
	"image/color"
	"testing"

	"github.com/go-theft-auto/scene"
	"github.com/go-theft-auto/scene/scenetest"
)

const (
	screenWidth  = 800
	screenHeight = 600
)

var (
	errTest = errors.New("injected failure")

	red  = color.RGBA{R: 255, A: 255}
	blue = color.RGBA{B: 255, A: 255}
)

// newGraphics creates a Graphics on a recording driver sized to the test screen.
func newGraphics(t *testing.T, opts ...scene.Option) (*scene.Graphics, *scenetest.Driver) {
	t.Helper()
	drv := scenetest.NewDriver()
	g, err := scene.New(drv, opts...)
	if err != nil {
		t.Fatalf("New() returned error: %v", err)
	}
	g.SetSize(screenWidth, screenHeight)
	return g, drv
}

func mustPanic(t *testing.T, name string, fn func()) {
	t.Helper()
	defer func() {
		if recover() == nil {
			t.Errorf("%s: expected panic", name)
		}
	}()
	fn()
}

func approx(a, b float32) bool {
	d := a - b
	return d < 1e-4 && d > -1e-4
}

// callIndex returns the index of the last call named name, or -1.
func callIndex(drv *scenetest.Driver, name string) int {
	for i := len(drv.Calls) - 1; i >= 0; i-- {
		if drv.Calls[i] == name {
			return i
		}
	}
	return -1
}
