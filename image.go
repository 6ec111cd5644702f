package scene

import (
	"image"
)

// ImageState describes where an image's bitmap currently lives.
type ImageState int

const (
	ImagePending   ImageState = iota // first decode in flight
	ImageReady                       // bitmap resident
	ImageEvicted                     // bitmap evicted, re-decodable from its path
	ImageFailed                      // decode failed
	ImageDestroyed                   // destroyed, renders nothing
)

func (s ImageState) String() string {
	switch s {
	case ImagePending:
		return "pending"
	case ImageReady:
		return "ready"
	case ImageEvicted:
		return "evicted"
	case ImageFailed:
		return "failed"
	case ImageDestroyed:
		return "destroyed"
	default:
		return "unknown"
	}
}

// wrapMode packs a pair of repeat flags.
type wrapMode uint8

const wrapModes = 4

func wrapFor(repeatX, repeatY bool) wrapMode {
	var m wrapMode
	if repeatX {
		m |= 1
	}
	if repeatY {
		m |= 2
	}
	return m
}

// Image is a bitmap realized lazily as a GPU texture. It holds either a
// hard reference to its bitmap or an evictable one kept in an ImageCache
// and re-decoded from its path on demand.
type Image struct {
	ctx    *RenderContext
	loader *Loader
	cache  *ImageCache

	path   string
	bitmap *image.RGBA // hard reference; nil for evictable images

	width, height int
	version       uint64 // bumped whenever the bitmap is replaced
	loaded        bool   // a bitmap has been resident at least once
	loading       bool
	failed        bool // last decode failed; no automatic re-decode
	err           error
	destroyed     bool
	ready         *Future[*Image]

	tex        TextureID
	texGen     uint64
	texVersion uint64
	texWrap    wrapMode             // wrap flags set on tex
	reptex     [wrapModes]TextureID // pow2 copies of a non-pow2 tex

	refs int
}

func newImage(ctx *RenderContext, bmp *image.RGBA) *Image {
	img := &Image{ctx: ctx, ready: NewFuture[*Image]()}
	img.SetBitmap(bmp)
	return img
}

func newEvictableImage(ctx *RenderContext, loader *Loader, cache *ImageCache, path string) *Image {
	img := &Image{ctx: ctx, loader: loader, cache: cache, path: path, ready: NewFuture[*Image]()}
	img.load()
	return img
}

// Path returns the path an evictable image decodes from, or "".
func (img *Image) Path() string { return img.path }

// Width returns the bitmap width in pixels, 0 until first loaded.
func (img *Image) Width() int { return img.width }

// Height returns the bitmap height in pixels, 0 until first loaded.
func (img *Image) Height() int { return img.height }

// Err returns the last decode error.
func (img *Image) Err() error { return img.err }

// Ready returns a future completing when the first bitmap is resident, or
// failing if the first decode fails.
func (img *Image) Ready() *Future[*Image] { return img.ready }

// IsReady reports whether a usable bitmap is currently resident.
func (img *Image) IsReady() bool {
	if img.destroyed {
		return false
	}
	if img.bitmap != nil {
		return true
	}
	return img.cache != nil && img.cache.Contains(img)
}

// State returns the image's current state.
func (img *Image) State() ImageState {
	switch {
	case img.destroyed:
		return ImageDestroyed
	case img.IsReady():
		return ImageReady
	case img.loading && !img.loaded:
		return ImagePending
	case img.failed:
		return ImageFailed
	default:
		return ImageEvicted
	}
}

// SetBitmap replaces the backing bitmap with a hard reference. Any
// existing texture is released and recreated on next use.
func (img *Image) SetBitmap(src image.Image) {
	if img.destroyed {
		return
	}
	bmp := toRGBA(src)
	img.ClearTexture()
	if img.cache != nil {
		img.cache.Remove(img)
	}
	img.bitmap = bmp
	img.setLoaded(bmp)
}

func (img *Image) setLoaded(bmp *image.RGBA) {
	w, h := bmp.Rect.Dx(), bmp.Rect.Dy()
	if !img.loaded || img.bitmap == bmp || w != img.width || h != img.height {
		img.version++
	}
	img.width, img.height = w, h
	img.loaded = true
	img.failed = false
	img.err = nil
	if !img.ready.Done() {
		_ = img.ready.Succeed(img)
	}
}

// load starts an asynchronous decode of the image's path.
func (img *Image) load() {
	if img.loading || img.loader == nil {
		return
	}
	img.loading = true
	img.loader.LoadBitmap(img.path).OnComplete(img.onLoaded)
}

func (img *Image) onLoaded(bmp *image.RGBA, err error) {
	img.loading = false
	if img.destroyed || img.bitmap != nil {
		// destroyed, or replaced by SetBitmap while decoding
		return
	}
	if err != nil {
		img.err = err
		img.failed = true
		Logger().Warn("image has no bitmap, draws are skipped until reloaded", "path", img.path, "err", err)
		if !img.ready.Done() {
			_ = img.ready.Fail(err)
		}
		return
	}
	img.cache.Put(img, bmp)
	img.setLoaded(bmp)
}

// Reload starts a new decode of a failed or evicted image. Images with a
// hard bitmap reference are left alone.
func (img *Image) Reload() {
	if img.destroyed || img.bitmap != nil {
		return
	}
	img.failed = false
	img.load()
}

// bitmapForUpload returns the resident bitmap, starting a re-decode if it
// was evicted.
func (img *Image) bitmapForUpload() *image.RGBA {
	if img.bitmap != nil {
		return img.bitmap
	}
	if img.cache != nil {
		if bmp, ok := img.cache.Get(img); ok {
			return bmp
		}
	}
	if img.loaded && !img.failed {
		Logger().Debug("re-decoding evicted bitmap", "path", img.path)
		img.load()
	}
	return nil
}

// Reference records a user of the image's texture (an ImageLayer).
func (img *Image) Reference() {
	img.refs++
}

// Release drops a reference; the texture is released with the last one.
func (img *Image) Release() {
	assertf(img.refs > 0, "released an image with no references")
	img.refs--
	if img.refs == 0 {
		img.ClearTexture()
	}
}

// EnsureTexture returns the image's texture, creating it if needed. When
// either repeat flag is set, the returned texture is power-of-two sized and
// repeats on the requested axes. Repeated calls reuse the texture unless
// the bitmap or the GPU context generation changed. NoTexture is returned
// if no bitmap is resident; callers skip the draw.
//
// A non-pow2 image keeps one scaled copy per repeat combination. A pow2
// image repeats its base texture, so its wrap mode follows the latest
// call; changing it flushes geometry queued with the previous mode.
func (img *Image) EnsureTexture(repeatX, repeatY bool) TextureID {
	if img.destroyed {
		return NoTexture
	}
	ctx := img.ctx
	if img.tex != NoTexture && (img.texGen != ctx.Generation() || img.texVersion != img.version) {
		img.ClearTexture()
	}

	if img.tex == NoTexture {
		bmp := img.bitmapForUpload()
		if bmp == nil {
			return NoTexture
		}
		tex := ctx.CreateTexture(false, false)
		if tex == NoTexture {
			return NoTexture
		}
		if err := ctx.UpdateTexture(tex, bmp); err != nil {
			Logger().Warn("texture upload failed", "path", img.path, "err", err)
			ctx.DestroyTexture(tex)
			return NoTexture
		}
		img.tex, img.texGen, img.texVersion = tex, ctx.Generation(), img.version
		img.texWrap = 0
	}

	mode := wrapFor(repeatX, repeatY)
	if !Pow2ScaleFor(img.width, img.height).NeedsScaling() {
		if img.texWrap != mode {
			ctx.SetTextureRepeat(img.tex, repeatX, repeatY)
			img.texWrap = mode
		}
		return img.tex
	}
	if mode == 0 {
		return img.tex
	}
	if img.reptex[mode] == NoTexture {
		img.reptex[mode] = img.scaleTexture(repeatX, repeatY)
	}
	return img.reptex[mode]
}

// scaleTexture renders the base texture into a new power-of-two render
// target at the upscaled size.
func (img *Image) scaleTexture(repeatX, repeatY bool) TextureID {
	ctx := img.ctx
	scale := Pow2ScaleFor(img.width, img.height)
	reptex := ctx.CreateSizedTexture(scale.Width, scale.Height, repeatX, repeatY)
	if reptex == NoTexture {
		return NoTexture
	}
	fbuf := ctx.CreateFramebuffer(reptex)
	if fbuf == 0 {
		ctx.DestroyTexture(reptex)
		return NoTexture
	}

	w, h := float32(scale.Width), float32(scale.Height)
	ctx.PushFramebuffer(fbuf, scale.Width, scale.Height)
	ctx.Clear(0, 0, 0, 0)
	// render targets are flipped vertically relative to uploaded bitmaps
	ctx.DrawTextureUV(img.tex, Identity(), 0, h, w, -h, 0, 0, 1, 1, 1)
	ctx.PopFramebuffer()
	ctx.DeleteFramebuffer(fbuf)
	return reptex
}

// ClearTexture releases the image's GPU textures. Textures from a previous
// GPU context are forgotten, not deleted.
func (img *Image) ClearTexture() {
	if img.tex == NoTexture {
		return
	}
	live := img.texGen == img.ctx.Generation()
	for i, rep := range img.reptex {
		if rep != NoTexture && live {
			img.ctx.DestroyTexture(rep)
		}
		img.reptex[i] = NoTexture
	}
	if live {
		img.ctx.DestroyTexture(img.tex)
	}
	img.tex, img.texWrap = NoTexture, 0
}

// Destroy releases the image's textures and bitmap. A pending load
// completes into nothing.
func (img *Image) Destroy() {
	if img.destroyed {
		return
	}
	img.ClearTexture()
	if img.cache != nil {
		img.cache.Remove(img)
	}
	img.bitmap = nil
	img.destroyed = true
	if !img.ready.Done() {
		_ = img.ready.Fail(ErrImageDestroyed)
	}
}
