package scene

import (
	"bytes"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Texture filter names accepted in Config.TextureFilter.
const (
	FilterLinear  = "linear"
	FilterNearest = "nearest"
)

// Config holds the tunables of a Graphics instance.
type Config struct {
	// Debug drains the GPU error queue after every checked operation.
	Debug bool `toml:"debug"`

	// TextureFilter is the min/mag filter for created textures.
	TextureFilter string `toml:"texture_filter"`

	// BatchVertices is the initial vertex capacity of each geometry batch.
	BatchVertices int `toml:"batch_vertices"`

	// ImageCacheSize bounds how many evictable bitmaps stay resident.
	ImageCacheSize int `toml:"image_cache_size"`

	// SurfaceCacheDir stores surface snapshots on context loss.
	// Empty keeps snapshots in memory.
	SurfaceCacheDir string `toml:"surface_cache_dir"`

	// DecodeWorkers bounds concurrent asynchronous bitmap decodes.
	DecodeWorkers int `toml:"decode_workers"`

	// MaxTextureSize downsizes decoded bitmaps larger than this on either axis (0 = unlimited).
	MaxTextureSize int `toml:"max_texture_size"`
}

// DefaultConfig returns the configuration used when none is supplied.
func DefaultConfig() Config {
	return Config{
		TextureFilter:  FilterLinear,
		BatchVertices:  defaultBatchVertices,
		ImageCacheSize: 64,
		DecodeWorkers:  2,
	}
}

// LoadConfig reads a TOML config file. Unset keys keep their defaults.
func LoadConfig(path string) (Config, error) {
	conf := DefaultConfig()
	if _, err := toml.DecodeFile(path, &conf); err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := conf.Validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return conf, nil
}

// Write encodes the config as TOML to path.
func (c Config) Write(path string) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write config %s: %w", path, err)
	}
	return nil
}

// Validate reports the first invalid field.
func (c Config) Validate() error {
	switch c.TextureFilter {
	case FilterLinear, FilterNearest:
	default:
		return fmt.Errorf("texture_filter must be %q or %q, got %q", FilterLinear, FilterNearest, c.TextureFilter)
	}
	if c.BatchVertices <= 0 || c.BatchVertices > maxBatchVertices {
		return fmt.Errorf("batch_vertices must be in 1..%d, got %d", maxBatchVertices, c.BatchVertices)
	}
	if c.ImageCacheSize <= 0 {
		return fmt.Errorf("image_cache_size must be positive, got %d", c.ImageCacheSize)
	}
	if c.DecodeWorkers <= 0 {
		return fmt.Errorf("decode_workers must be positive, got %d", c.DecodeWorkers)
	}
	if c.MaxTextureSize < 0 {
		return fmt.Errorf("max_texture_size must not be negative, got %d", c.MaxTextureSize)
	}
	return nil
}
