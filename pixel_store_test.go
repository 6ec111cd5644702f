package scene_test

import (
	"bytes"
	"testing"

	"github.com/go-theft-auto/scene"
)

func TestPixelStores(t *testing.T) {
	stores := map[string]scene.PixelStore{
		"memory": scene.MemoryPixelStore{},
		"file":   scene.FilePixelStore{Dir: t.TempDir()},
	}
	pix := []byte{1, 2, 3, 4, 5, 6, 7, 8}

	for name, store := range stores {
		if err := store.Put("s1", pix); err != nil {
			t.Fatalf("%s: Put: %v", name, err)
		}
		got, err := store.Take("s1")
		if err != nil || !bytes.Equal(got, pix) {
			t.Errorf("%s: Take = %v, %v", name, got, err)
		}
		if _, err := store.Take("s1"); err == nil {
			t.Errorf("%s: Take should remove the entry", name)
		}

		if err := store.Put("s2", pix); err != nil {
			t.Fatalf("%s: Put: %v", name, err)
		}
		store.Delete("s2")
		if _, err := store.Take("s2"); err == nil {
			t.Errorf("%s: Delete should remove the entry", name)
		}
	}
}
