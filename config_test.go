package scene_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-theft-auto/scene"
)

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scene.toml")
	data := "debug = true\ntexture_filter = \"nearest\"\nimage_cache_size = 8\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	conf, err := scene.LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if !conf.Debug || conf.TextureFilter != scene.FilterNearest || conf.ImageCacheSize != 8 {
		t.Errorf("conf = %+v", conf)
	}
	if conf.BatchVertices != scene.DefaultConfig().BatchVertices {
		t.Error("unset keys should keep their defaults")
	}
}

func TestLoadConfig_Invalid(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.toml")
	if err := os.WriteFile(bad, []byte("batch_vertices = 0\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := scene.LoadConfig(bad); err == nil {
		t.Error("expected a validation error")
	}

	garbled := filepath.Join(dir, "garbled.toml")
	if err := os.WriteFile(garbled, []byte("debug = = true"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := scene.LoadConfig(garbled); err == nil {
		t.Error("expected a parse error")
	}

	if _, err := scene.LoadConfig(filepath.Join(dir, "missing.toml")); err == nil {
		t.Error("expected an error for a missing file")
	}
}

func TestConfig_WriteRoundTrip(t *testing.T) {
	conf := scene.DefaultConfig()
	conf.Debug = true
	conf.SurfaceCacheDir = "/tmp/surfaces"
	conf.MaxTextureSize = 2048
	path := filepath.Join(t.TempDir(), "out.toml")

	if err := conf.Write(path); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := scene.LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if got != conf {
		t.Errorf("round trip = %+v, want %+v", got, conf)
	}
}

func TestConfig_Validate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*scene.Config)
	}{
		{"filter", func(c *scene.Config) { c.TextureFilter = "" }},
		{"batch too large", func(c *scene.Config) { c.BatchVertices = 1<<16 + 1 }},
		{"cache", func(c *scene.Config) { c.ImageCacheSize = 0 }},
		{"workers", func(c *scene.Config) { c.DecodeWorkers = -1 }},
		{"max texture", func(c *scene.Config) { c.MaxTextureSize = -1 }},
	}
	if err := scene.DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	for _, c := range cases {
		conf := scene.DefaultConfig()
		c.mutate(&conf)
		if conf.Validate() == nil {
			t.Errorf("%s: expected a validation error", c.name)
		}
	}
}
