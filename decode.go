package scene

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"

	xdraw "golang.org/x/image/draw"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// FileDecoder decodes bitmaps from files under Root.
// PNG, JPEG, GIF, BMP, TIFF and WebP are supported.
type FileDecoder struct {
	Root string

	// MaxSize downsizes bitmaps larger than MaxSize on either axis,
	// preserving aspect ratio. Zero disables downsizing.
	MaxSize int
}

// DecodeBitmap implements BitmapDecoder.
func (d FileDecoder) DecodeBitmap(path string) (image.Image, error) {
	f, err := os.Open(filepath.Join(d.Root, path))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	b := img.Bounds()
	if d.MaxSize <= 0 || (b.Dx() <= d.MaxSize && b.Dy() <= d.MaxSize) {
		return img, nil
	}

	w, h := fitWithin(b.Dx(), b.Dy(), d.MaxSize)
	Logger().Debug("downsizing bitmap", "path", path, "format", format,
		"from", b.Size(), "to", image.Pt(w, h))
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.CatmullRom.Scale(dst, dst.Rect, img, b, xdraw.Src, nil)
	return dst, nil
}

// fitWithin scales w x h down so neither side exceeds limit.
func fitWithin(w, h, limit int) (int, int) {
	if w >= h {
		return limit, max(1, h*limit/w)
	}
	return max(1, w*limit/h), limit
}
