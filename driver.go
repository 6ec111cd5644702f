package scene

import "image"

// BufferTarget selects the vertex or index buffer binding point.
type BufferTarget int

const (
	ArrayBuffer BufferTarget = iota
	ElementArrayBuffer
)

// TextureParams configures sampling of a texture.
type TextureParams struct {
	Nearest bool // NEAREST min/mag filter instead of LINEAR
	RepeatX bool // REPEAT wrap on S instead of CLAMP_TO_EDGE
	RepeatY bool // REPEAT wrap on T instead of CLAMP_TO_EDGE
}

// Driver is the per-platform GPU interface the core is written against.
// Every method is called on the render thread only. Ids of 0 are never
// valid resources.
type Driver interface {
	// Textures. TexImage2D uploads RGBA8 pixels (rows top to bottom) into
	// the bound texture; nil pixels allocates empty storage.
	GenTexture() uint32
	DeleteTexture(tex uint32)
	BindTexture(tex uint32)
	TexParameters(tex uint32, p TextureParams)
	TexImage2D(width, height int, pixels []byte)

	// Framebuffers. GenFramebuffer attaches tex as the color target.
	GenFramebuffer(tex uint32) uint32
	DeleteFramebuffer(fbuf uint32)
	BindFramebuffer(fbuf uint32)
	DefaultFramebuffer() uint32
	Viewport(x, y, width, height int)
	Clear(r, g, b, a float32)
	// ReadPixels reads RGBA8 pixels of the bound framebuffer in GL row order
	// (bottom row first) into dst, which must hold width*height*4 bytes.
	ReadPixels(x, y, width, height int, dst []byte) error

	// Scissor test, in GL window coordinates (origin bottom-left).
	SetScissorEnabled(enabled bool)
	Scissor(x, y, width, height int)

	// Programs.
	CreateProgram(vertexSource, fragmentSource string) (uint32, error)
	DeleteProgram(prog uint32)
	UseProgram(prog uint32)
	UniformLocation(prog uint32, name string) int32
	AttribLocation(prog uint32, name string) int32
	Uniform1i(loc int32, v int32)
	Uniform1f(loc int32, v float32)
	Uniform2f(loc int32, x, y float32)
	Uniform4f(loc int32, x, y, z, w float32)

	// Buffers and vertex attributes. Offsets and strides are in bytes.
	GenBuffer() uint32
	DeleteBuffer(buf uint32)
	BindBuffer(target BufferTarget, buf uint32)
	BufferFloats(target BufferTarget, data []float32)
	BufferShorts(target BufferTarget, data []uint16)
	VertexAttribPointer(loc int32, size, stride, offset int)
	EnableVertexAttribArray(loc int32)

	// DrawElements draws count uint16 indices from the bound element buffer
	// as a triangle list.
	DrawElements(count int)

	// GetError pops one error from the GPU error queue, 0 when empty.
	GetError() uint32
}

// BitmapDecoder decodes bitmaps for images. It may be called from worker
// goroutines.
type BitmapDecoder interface {
	DecodeBitmap(path string) (image.Image, error)
}
