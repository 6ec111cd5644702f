package scenetest

import (
	"fmt"
	"image"
	"image/color"
	"sync"
	"testing"
	"time"

	"github.com/go-theft-auto/scene"
)

// Decoder is a scene.BitmapDecoder serving images from memory. Paths
// without an entry fail to decode. Safe for concurrent use.
type Decoder struct {
	mu     sync.Mutex
	images map[string]image.Image
	calls  map[string]int
}

var _ scene.BitmapDecoder = (*Decoder)(nil)

// NewDecoder creates an empty decoder.
func NewDecoder() *Decoder {
	return &Decoder{images: make(map[string]image.Image), calls: make(map[string]int)}
}

// Set registers img under path.
func (d *Decoder) Set(path string, img image.Image) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.images[path] = img
}

// Remove drops the image registered under path.
func (d *Decoder) Remove(path string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.images, path)
}

// Calls returns how many times path was decoded.
func (d *Decoder) Calls(path string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.calls[path]
}

func (d *Decoder) DecodeBitmap(path string) (image.Image, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls[path]++
	img, ok := d.images[path]
	if !ok {
		return nil, fmt.Errorf("scenetest: no image at %q", path)
	}
	return img, nil
}

// Solid returns a width x height image filled with c.
func Solid(width, height int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	return img
}

// AwaitQueue waits until q has at least n queued tasks, then drains it.
// It fails the test after a few seconds.
func AwaitQueue(t testing.TB, q *scene.RenderQueue, n int) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for q.Len() < n {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %d queued tasks, have %d", n, q.Len())
		}
		time.Sleep(time.Millisecond)
	}
	q.Drain()
}
