package scene

import (
	"fmt"
	"image"
)

// Loader decodes bitmaps on worker goroutines and completes their futures
// on the render thread via a RenderQueue.
type Loader struct {
	decoder BitmapDecoder
	queue   *RenderQueue
	sem     chan struct{}
}

// NewLoader creates a loader running at most workers decodes at a time.
func NewLoader(decoder BitmapDecoder, queue *RenderQueue, workers int) *Loader {
	if workers <= 0 {
		workers = 1
	}
	return &Loader{
		decoder: decoder,
		queue:   queue,
		sem:     make(chan struct{}, workers),
	}
}

// LoadBitmap starts decoding path. The returned future completes on the
// render thread during a later RenderQueue.Drain; it may never complete
// if the decoder hangs, which blocks nothing else.
func (l *Loader) LoadBitmap(path string) *Future[*image.RGBA] {
	f := NewFuture[*image.RGBA]()
	if l.decoder == nil {
		_ = f.Fail(fmt.Errorf("load %s: no bitmap decoder configured", path))
		return f
	}
	go func() {
		l.sem <- struct{}{}
		bmp, err := l.decode(path)
		<-l.sem
		l.queue.Post(func() {
			if err != nil {
				_ = f.Fail(err)
				return
			}
			_ = f.Succeed(bmp)
		})
	}()
	return f
}

func (l *Loader) decode(path string) (*image.RGBA, error) {
	img, err := l.decoder.DecodeBitmap(path)
	if err != nil {
		Logger().Error("bitmap decode failed", "path", path, "err", err)
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return toRGBA(img), nil
}
