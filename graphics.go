package scene

import (
	"fmt"
	"image"
	"log/slog"
)

// Graphics owns one GPU context's worth of rendering state: the
// RenderContext with its shaders and buffers, the scene root, the render
// queue, the evictable image cache, the asset loader and the surface
// pixel store. It replaces any process-wide platform singleton; create
// one per GPU context and pass it where scene objects are built.
type Graphics struct {
	ctx     *RenderContext
	conf    Config
	root    *GroupLayer
	queue   *RenderQueue
	cache   *ImageCache
	loader  *Loader
	store   PixelStore
	decoder BitmapDecoder

	clearColor uint32
	closed     bool
}

// Option configures a Graphics instance.
type Option func(*Graphics)

// WithConfig replaces the default configuration.
func WithConfig(conf Config) Option {
	return func(g *Graphics) { g.conf = conf }
}

// WithPixelStore sets where surfaces keep their pixels across a context
// loss. The default follows Config.SurfaceCacheDir.
func WithPixelStore(store PixelStore) Option {
	return func(g *Graphics) { g.store = store }
}

// WithDecoder sets the bitmap decoder used by LoadImage. The default is a
// FileDecoder rooted at the working directory.
func WithDecoder(d BitmapDecoder) Option {
	return func(g *Graphics) { g.decoder = d }
}

// WithLogger installs l as the package logger (see SetLogger).
func WithLogger(l *slog.Logger) Option {
	return func(*Graphics) { SetLogger(l) }
}

// New creates a Graphics drawing through drv. The GPU context is assumed
// to exist; call SetSize before the first Paint.
func New(drv Driver, opts ...Option) (*Graphics, error) {
	g := &Graphics{
		conf:       DefaultConfig(),
		queue:      NewRenderQueue(),
		clearColor: ColorBlack,
	}
	for _, opt := range opts {
		opt(g)
	}
	if err := g.conf.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	if g.store == nil {
		if g.conf.SurfaceCacheDir != "" {
			g.store = FilePixelStore{Dir: g.conf.SurfaceCacheDir}
		} else {
			g.store = make(MemoryPixelStore)
		}
	}
	if g.decoder == nil {
		g.decoder = FileDecoder{MaxSize: g.conf.MaxTextureSize}
	}

	cache, err := NewImageCache(g.conf.ImageCacheSize)
	if err != nil {
		return nil, err
	}
	g.cache = cache
	g.loader = NewLoader(g.decoder, g.queue, g.conf.DecodeWorkers)
	g.ctx = NewRenderContext(drv, g.conf)
	g.root = newGroupLayer()

	Logger().Debug("graphics created", "filter", g.conf.TextureFilter,
		"batchVertices", g.conf.BatchVertices, "imageCache", g.conf.ImageCacheSize)
	return g, nil
}

// Context returns the render context.
func (g *Graphics) Context() *RenderContext { return g.ctx }

// Config returns the active configuration.
func (g *Graphics) Config() Config { return g.conf }

// Root returns the root of the scene tree.
func (g *Graphics) Root() *GroupLayer { return g.root }

// Queue returns the render-thread task queue.
func (g *Graphics) Queue() *RenderQueue { return g.queue }

// Images returns the cache holding evictable bitmaps.
func (g *Graphics) Images() *ImageCache { return g.cache }

// SetClearColor sets the color (0xAARRGGBB) the screen is cleared to each frame.
func (g *Graphics) SetClearColor(color uint32) { g.clearColor = color }

// NewGroupLayer creates an empty group.
func (g *Graphics) NewGroupLayer() *GroupLayer { return newGroupLayer() }

// NewClippedGroupLayer creates a group whose children are clipped to
// (0, 0, width, height) in its own coordinates.
func (g *Graphics) NewClippedGroupLayer(width, height float32) *GroupLayer {
	return newClippedGroupLayer(width, height)
}

// NewImageLayer creates a layer displaying img, which may be nil.
func (g *Graphics) NewImageLayer(img *Image) *ImageLayer { return newImageLayer(img) }

// NewSurfaceLayer creates a layer displaying a new width x height surface.
func (g *Graphics) NewSurfaceLayer(width, height int) *SurfaceLayer {
	return newSurfaceLayer(g.NewSurface(width, height))
}

// NewCanvasLayer creates a layer whose width x height surface is redrawn
// by render when invalidated.
func (g *Graphics) NewCanvasLayer(width, height int, render CanvasFunc) *CanvasLayer {
	return newCanvasLayer(g.NewSurface(width, height), render)
}

// NewImage creates an image holding a hard reference to src.
func (g *Graphics) NewImage(src image.Image) *Image {
	return newImage(g.ctx, toRGBA(src))
}

// LoadImage creates an image decoded asynchronously from path. Its bitmap
// lives in the image cache and is re-decoded if evicted. The image is
// pending until a later Paint delivers the decode result.
func (g *Graphics) LoadImage(path string) *Image {
	return newEvictableImage(g.ctx, g.loader, g.cache, path)
}

// NewSurface creates an offscreen surface.
func (g *Graphics) NewSurface(width, height int) *Surface {
	return newSurface(g.ctx, g.store, width, height)
}

// SetSize records the screen framebuffer size.
func (g *Graphics) SetSize(width, height int) {
	g.ctx.SetSize(width, height)
}

// ContextLost must be called before the GPU context goes away. Surface
// pixels are snapshotted before it returns.
func (g *Graphics) ContextLost() { g.ctx.ContextLost() }

// ContextCreated must be called once a replacement GPU context of the
// given size exists.
func (g *Graphics) ContextCreated(width, height int) { g.ctx.ContextCreated(width, height) }

// Paint renders one frame: queued tasks run, the screen is cleared and
// the scene tree is painted and flushed. It returns ErrContextLost while
// no GPU context exists.
func (g *Graphics) Paint() error {
	assertf(!g.closed, "Paint after Close")
	g.queue.Drain()

	ctx := g.ctx
	if ctx.Lost() {
		return ErrContextLost
	}
	ctx.BindDefaultFramebuffer()
	a, r, gr, b := colorComponents(g.clearColor)
	ctx.Clear(r*a, gr*a, b*a, a)
	paintLayer(ctx, g.root, Identity(), 1)
	ctx.Flush()
	assertf(len(ctx.fbStack) == 0 && len(ctx.scissors) == 0,
		"unbalanced framebuffer or clip stack after paint")
	ctx.stats.Frames++
	if err := ctx.CheckError("paint"); err != nil {
		Logger().Warn("frame rendered with GPU errors", "err", err)
	}
	return nil
}

// Close destroys the scene tree and releases the built-in GPU programs.
func (g *Graphics) Close() {
	if g.closed {
		return
	}
	g.root.Destroy()
	g.cache.Purge()
	if !g.ctx.Lost() {
		g.ctx.Release()
	}
	g.closed = true
}
