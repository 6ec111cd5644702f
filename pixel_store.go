package scene

import (
	"fmt"
	"os"
	"path/filepath"
)

// PixelStore keeps surface pixels across a GPU context loss.
type PixelStore interface {
	Put(key string, pixels []byte) error
	// Take returns and removes the pixels stored under key.
	Take(key string) ([]byte, error)
	Delete(key string)
}

// MemoryPixelStore is an in-memory PixelStore.
type MemoryPixelStore map[string][]byte

// Put stores pixels under key.
func (m MemoryPixelStore) Put(key string, pixels []byte) error {
	m[key] = pixels
	return nil
}

// Take returns and removes the pixels under key.
func (m MemoryPixelStore) Take(key string) ([]byte, error) {
	pix, ok := m[key]
	if !ok {
		return nil, fmt.Errorf("no cached pixels for %s", key)
	}
	delete(m, key)
	return pix, nil
}

// Delete removes the pixels under key.
func (m MemoryPixelStore) Delete(key string) {
	delete(m, key)
}

// FilePixelStore keeps pixels in files under Dir, off the heap.
type FilePixelStore struct {
	Dir string
}

func (f FilePixelStore) file(key string) string {
	return filepath.Join(f.Dir, key+".pixels")
}

// Put writes pixels to a file named after key.
func (f FilePixelStore) Put(key string, pixels []byte) error {
	if err := os.MkdirAll(f.Dir, 0o700); err != nil {
		return fmt.Errorf("create pixel cache dir: %w", err)
	}
	if err := os.WriteFile(f.file(key), pixels, 0o600); err != nil {
		return fmt.Errorf("write cached pixels: %w", err)
	}
	return nil
}

// Take reads and deletes the file for key.
func (f FilePixelStore) Take(key string) ([]byte, error) {
	name := f.file(key)
	pix, err := os.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("read cached pixels: %w", err)
	}
	_ = os.Remove(name)
	return pix, nil
}

// Delete removes the file for key.
func (f FilePixelStore) Delete(key string) {
	_ = os.Remove(f.file(key))
}
