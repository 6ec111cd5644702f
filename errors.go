package scene

import (
	"errors"
	"fmt"
)

var (
	// ErrNoTexture is returned when a texture could not be realized for an image.
	ErrNoTexture = errors.New("scene: no texture")

	// ErrAlreadyResolved is returned when a Future is completed twice.
	ErrAlreadyResolved = errors.New("scene: future already resolved")

	// ErrImageDestroyed is delivered to load callbacks of images destroyed while pending.
	ErrImageDestroyed = errors.New("scene: image destroyed")

	// ErrContextLost is returned by operations attempted between ContextLost and ContextCreated.
	ErrContextLost = errors.New("scene: GPU context lost")
)

// GLError is a GPU error drained from the driver's error queue.
type GLError struct {
	Op   string // Operation label passed to CheckError
	Code uint32 // Driver error code (e.g. GL_OUT_OF_MEMORY)
}

func (e *GLError) Error() string {
	return fmt.Sprintf("scene: GL error 0x%04x after %s", e.Code, e.Op)
}

// assertf panics with a formatted message when cond is false.
// Used for caller bugs, never for runtime conditions.
func assertf(cond bool, format string, args ...any) {
	if !cond {
		panic(fmt.Sprintf("scene: "+format, args...))
	}
}
