package scene

import (
	"fmt"
	"image"

	lru "github.com/hashicorp/golang-lru"
)

// ImageCache holds the bitmaps of evictable images. It is bounded by entry
// count and evicts least recently used bitmaps deterministically; an
// evicted image re-decodes from its path when next needed.
type ImageCache struct {
	cache *lru.Cache
}

// NewImageCache creates a cache retaining at most size bitmaps.
func NewImageCache(size int) (*ImageCache, error) {
	c, err := lru.NewWithEvict(size, func(key, _ interface{}) {
		if img, ok := key.(*Image); ok {
			Logger().Debug("bitmap evicted", "path", img.path)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("create image cache: %w", err)
	}
	return &ImageCache{cache: c}, nil
}

// Put stores img's bitmap, evicting the least recently used one if full.
func (c *ImageCache) Put(img *Image, bmp *image.RGBA) {
	c.cache.Add(img, bmp)
}

// Get returns img's bitmap if resident, marking it recently used.
func (c *ImageCache) Get(img *Image) (*image.RGBA, bool) {
	v, ok := c.cache.Get(img)
	if !ok {
		return nil, false
	}
	return v.(*image.RGBA), true
}

// Contains reports whether img's bitmap is resident without touching recency.
func (c *ImageCache) Contains(img *Image) bool {
	return c.cache.Contains(img)
}

// Remove drops img's bitmap.
func (c *ImageCache) Remove(img *Image) {
	c.cache.Remove(img)
}

// Len returns the number of resident bitmaps.
func (c *ImageCache) Len() int {
	return c.cache.Len()
}

// Purge evicts every bitmap, as under memory pressure.
func (c *ImageCache) Purge() {
	c.cache.Purge()
}
