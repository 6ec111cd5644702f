// Package opengl provides the OpenGL 4.1 backend for the scene package: a
// scene.Driver on go-gl and a GLFW window loop that feeds it frames and
// lifecycle signals.
package opengl

import (
	"fmt"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/go-theft-auto/scene"
)

// Driver implements scene.Driver with OpenGL. It must be created and used
// on the thread owning the current GL context.
type Driver struct {
	vao uint32
}

var _ scene.Driver = (*Driver)(nil)

// NewDriver sets up GL state for scene rendering: one shared vertex array
// object, premultiplied alpha blending and no depth or culling.
// gl.Init must have been called.
func NewDriver() *Driver {
	d := &Driver{}
	gl.GenVertexArrays(1, &d.vao)
	gl.BindVertexArray(d.vao)

	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.ONE, gl.ONE_MINUS_SRC_ALPHA)
	gl.Disable(gl.DEPTH_TEST)
	gl.Disable(gl.CULL_FACE)
	gl.ActiveTexture(gl.TEXTURE0)
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	return d
}

// Release deletes the vertex array object.
func (d *Driver) Release() {
	if d.vao != 0 {
		gl.DeleteVertexArrays(1, &d.vao)
		d.vao = 0
	}
}

func (d *Driver) GenTexture() uint32 {
	var tex uint32
	gl.GenTextures(1, &tex)
	return tex
}

func (d *Driver) DeleteTexture(tex uint32) {
	gl.DeleteTextures(1, &tex)
}

func (d *Driver) BindTexture(tex uint32) {
	gl.BindTexture(gl.TEXTURE_2D, tex)
}

// TexParameters configures the bound texture.
func (d *Driver) TexParameters(_ uint32, p scene.TextureParams) {
	filter := int32(gl.LINEAR)
	if p.Nearest {
		filter = gl.NEAREST
	}
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, filter)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, filter)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, wrapMode(p.RepeatX))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, wrapMode(p.RepeatY))
}

func wrapMode(repeat bool) int32 {
	if repeat {
		return gl.REPEAT
	}
	return gl.CLAMP_TO_EDGE
}

func (d *Driver) TexImage2D(width, height int, pixels []byte) {
	var ptr unsafe.Pointer
	if pixels != nil {
		ptr = gl.Ptr(pixels)
	}
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, int32(width), int32(height), 0, gl.RGBA, gl.UNSIGNED_BYTE, ptr)
}

// GenFramebuffer creates a framebuffer with tex as its color attachment.
// It returns 0 if the framebuffer is incomplete.
func (d *Driver) GenFramebuffer(tex uint32) uint32 {
	var fbuf uint32
	gl.GenFramebuffers(1, &fbuf)
	gl.BindFramebuffer(gl.FRAMEBUFFER, fbuf)
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, tex, 0)
	if status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER); status != gl.FRAMEBUFFER_COMPLETE {
		scene.Logger().Warn("incomplete framebuffer", "texture", tex, "status", fmt.Sprintf("0x%04x", status))
		gl.DeleteFramebuffers(1, &fbuf)
		return 0
	}
	return fbuf
}

func (d *Driver) DeleteFramebuffer(fbuf uint32) {
	gl.DeleteFramebuffers(1, &fbuf)
}

func (d *Driver) BindFramebuffer(fbuf uint32) {
	gl.BindFramebuffer(gl.FRAMEBUFFER, fbuf)
}

func (d *Driver) DefaultFramebuffer() uint32 { return 0 }

func (d *Driver) Viewport(x, y, width, height int) {
	gl.Viewport(int32(x), int32(y), int32(width), int32(height))
}

func (d *Driver) Clear(r, g, b, a float32) {
	gl.ClearColor(r, g, b, a)
	gl.Clear(gl.COLOR_BUFFER_BIT)
}

func (d *Driver) ReadPixels(x, y, width, height int, dst []byte) error {
	if len(dst) < width*height*4 {
		return fmt.Errorf("read pixels: buffer holds %d bytes, need %d", len(dst), width*height*4)
	}
	gl.ReadPixels(int32(x), int32(y), int32(width), int32(height), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(dst))
	if code := gl.GetError(); code != gl.NO_ERROR {
		return &scene.GLError{Op: "readPixels", Code: code}
	}
	return nil
}

func (d *Driver) SetScissorEnabled(enabled bool) {
	if enabled {
		gl.Enable(gl.SCISSOR_TEST)
	} else {
		gl.Disable(gl.SCISSOR_TEST)
	}
}

func (d *Driver) Scissor(x, y, width, height int) {
	gl.Scissor(int32(x), int32(y), int32(width), int32(height))
}

func (d *Driver) CreateProgram(vertexSource, fragmentSource string) (uint32, error) {
	return createShaderProgram(vertexSource, fragmentSource)
}

func (d *Driver) DeleteProgram(prog uint32) {
	gl.DeleteProgram(prog)
}

func (d *Driver) UseProgram(prog uint32) {
	gl.UseProgram(prog)
}

func (d *Driver) UniformLocation(prog uint32, name string) int32 {
	return gl.GetUniformLocation(prog, gl.Str(name+"\x00"))
}

func (d *Driver) AttribLocation(prog uint32, name string) int32 {
	return gl.GetAttribLocation(prog, gl.Str(name+"\x00"))
}

func (d *Driver) Uniform1i(loc int32, v int32) { gl.Uniform1i(loc, v) }
func (d *Driver) Uniform1f(loc int32, v float32) { gl.Uniform1f(loc, v) }
func (d *Driver) Uniform2f(loc int32, x, y float32) { gl.Uniform2f(loc, x, y) }
func (d *Driver) Uniform4f(loc int32, x, y, z, w float32) { gl.Uniform4f(loc, x, y, z, w) }

func (d *Driver) GenBuffer() uint32 {
	var buf uint32
	gl.GenBuffers(1, &buf)
	return buf
}

func (d *Driver) DeleteBuffer(buf uint32) {
	gl.DeleteBuffers(1, &buf)
}

func bufferTarget(t scene.BufferTarget) uint32 {
	if t == scene.ElementArrayBuffer {
		return gl.ELEMENT_ARRAY_BUFFER
	}
	return gl.ARRAY_BUFFER
}

func (d *Driver) BindBuffer(target scene.BufferTarget, buf uint32) {
	gl.BindBuffer(bufferTarget(target), buf)
}

func (d *Driver) BufferFloats(target scene.BufferTarget, data []float32) {
	if len(data) == 0 {
		return
	}
	gl.BufferData(bufferTarget(target), len(data)*4, gl.Ptr(data), gl.STREAM_DRAW)
}

func (d *Driver) BufferShorts(target scene.BufferTarget, data []uint16) {
	if len(data) == 0 {
		return
	}
	gl.BufferData(bufferTarget(target), len(data)*2, gl.Ptr(data), gl.STREAM_DRAW)
}

func (d *Driver) VertexAttribPointer(loc int32, size, stride, offset int) {
	if loc < 0 {
		return
	}
	gl.VertexAttribPointer(uint32(loc), int32(size), gl.FLOAT, false, int32(stride), gl.PtrOffset(offset))
}

func (d *Driver) EnableVertexAttribArray(loc int32) {
	if loc < 0 {
		return
	}
	gl.EnableVertexAttribArray(uint32(loc))
}

func (d *Driver) DrawElements(count int) {
	gl.DrawElements(gl.TRIANGLES, int32(count), gl.UNSIGNED_SHORT, nil)
}

func (d *Driver) GetError() uint32 {
	return gl.GetError()
}
