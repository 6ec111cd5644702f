// Package scenetest provides in-memory implementations of the scene
// package's platform interfaces for tests. Driver records every GPU call
// instead of rendering; Decoder serves bitmaps from a map.
package scenetest

import (
	"errors"
	"strings"

	"github.com/go-theft-auto/scene"
)

// Texture is the recorded state of a fake texture.
type Texture struct {
	Width, Height int
	Pixels        []byte // last upload, nil for empty storage
	Params        scene.TextureParams
}

// Upload records one TexImage2D call.
type Upload struct {
	Texture       uint32
	Width, Height int
	Pixels        []byte
}

// Draw records one DrawElements call with the state bound at the time.
type Draw struct {
	Program     uint32
	Textured    bool
	Framebuffer uint32
	Texture     uint32 // bound texture, textured draws only
	TexParams   scene.TextureParams
	Elements    int
	Vertices    []float32
	Indices     []uint16
	ScreenSize  [2]float32
	Alpha       float32
	Color       [4]float32
	Scissor     *[4]int // nil when the scissor test is off
}

// Quads returns the number of quads in the draw, assuming quad geometry.
func (d Draw) Quads() int { return d.Elements / 6 }

// Vertex returns the 10 floats of vertex i.
func (d Draw) Vertex(i int) []float32 {
	return d.Vertices[i*scene.VertexSize : (i+1)*scene.VertexSize]
}

// Clear records one Clear call.
type Clear struct {
	Framebuffer uint32
	Color       [4]float32
}

type program struct {
	textured  bool
	locations map[string]int32
	uniforms  map[int32][]float32
}

func (p *program) value(name string) []float32 {
	loc, ok := p.locations[name]
	if !ok {
		return nil
	}
	return p.uniforms[loc]
}

// Driver is a scene.Driver that records calls. The zero value is not
// usable; create one with NewDriver.
type Driver struct {
	nextID uint32

	Textures     map[uint32]*Texture
	Framebuffers map[uint32]uint32 // framebuffer -> attached texture
	programs     map[uint32]*program

	BoundTexture     uint32
	BoundFramebuffer uint32
	BoundProgram     uint32
	arrayBuf         uint32
	elementBuf       uint32
	arrayData        map[uint32][]float32
	elementData      map[uint32][]uint16

	ViewportBox    [4]int
	ScissorEnabled bool
	ScissorBox     [4]int

	Draws   []Draw
	Clears  []Clear
	Uploads []Upload
	Calls   []string

	// DeletedTextures lists every texture id passed to DeleteTexture.
	DeletedTextures []uint32

	// Failure injection.
	FailTextures bool  // GenTexture returns 0
	ReadErr      error // returned by ReadPixels
	ProgramErr   error // returned by CreateProgram
	errs         []uint32
}

var _ scene.Driver = (*Driver)(nil)

// NewDriver creates an empty recording driver.
func NewDriver() *Driver {
	return &Driver{
		Textures:     make(map[uint32]*Texture),
		Framebuffers: make(map[uint32]uint32),
		programs:     make(map[uint32]*program),
		arrayData:    make(map[uint32][]float32),
		elementData:  make(map[uint32][]uint16),
	}
}

func (d *Driver) id() uint32 {
	d.nextID++
	return d.nextID
}

func (d *Driver) record(call string) {
	d.Calls = append(d.Calls, call)
}

// InjectError queues a GPU error code for GetError.
func (d *Driver) InjectError(code uint32) {
	d.errs = append(d.errs, code)
}

// Reset forgets recorded draws, clears, uploads and calls, keeping resources.
func (d *Driver) Reset() {
	d.Draws, d.Clears, d.Uploads, d.Calls = nil, nil, nil, nil
}

// CallCount returns how many times the named method was called.
func (d *Driver) CallCount(name string) int {
	n := 0
	for _, c := range d.Calls {
		if c == name {
			n++
		}
	}
	return n
}

// FramebufferTexture returns the texture attached to fbuf.
func (d *Driver) FramebufferTexture(fbuf uint32) uint32 { return d.Framebuffers[fbuf] }

// TexturedDraws returns the recorded draws of the texture program.
func (d *Driver) TexturedDraws() []Draw {
	var out []Draw
	for _, dr := range d.Draws {
		if dr.Textured {
			out = append(out, dr)
		}
	}
	return out
}

// DrawsTo returns the draws issued while fbuf was bound.
func (d *Driver) DrawsTo(fbuf uint32) []Draw {
	var out []Draw
	for _, dr := range d.Draws {
		if dr.Framebuffer == fbuf {
			out = append(out, dr)
		}
	}
	return out
}

func (d *Driver) GenTexture() uint32 {
	d.record("GenTexture")
	if d.FailTextures {
		return 0
	}
	tex := d.id()
	d.Textures[tex] = &Texture{}
	return tex
}

func (d *Driver) DeleteTexture(tex uint32) {
	d.record("DeleteTexture")
	delete(d.Textures, tex)
	d.DeletedTextures = append(d.DeletedTextures, tex)
}

func (d *Driver) BindTexture(tex uint32) {
	d.record("BindTexture")
	d.BoundTexture = tex
}

func (d *Driver) TexParameters(tex uint32, p scene.TextureParams) {
	d.record("TexParameters")
	if t, ok := d.Textures[tex]; ok {
		t.Params = p
	}
}

func (d *Driver) TexImage2D(width, height int, pixels []byte) {
	d.record("TexImage2D")
	t, ok := d.Textures[d.BoundTexture]
	if !ok {
		d.errs = append(d.errs, 0x0502) // GL_INVALID_OPERATION
		return
	}
	t.Width, t.Height = width, height
	t.Pixels = nil
	if pixels != nil {
		t.Pixels = append([]byte(nil), pixels...)
	}
	d.Uploads = append(d.Uploads, Upload{Texture: d.BoundTexture, Width: width, Height: height, Pixels: t.Pixels})
}

func (d *Driver) GenFramebuffer(tex uint32) uint32 {
	d.record("GenFramebuffer")
	fbuf := d.id()
	d.Framebuffers[fbuf] = tex
	d.BoundFramebuffer = fbuf
	return fbuf
}

func (d *Driver) DeleteFramebuffer(fbuf uint32) {
	d.record("DeleteFramebuffer")
	delete(d.Framebuffers, fbuf)
}

func (d *Driver) BindFramebuffer(fbuf uint32) {
	d.record("BindFramebuffer")
	d.BoundFramebuffer = fbuf
}

func (d *Driver) DefaultFramebuffer() uint32 { return 0 }

func (d *Driver) Viewport(x, y, width, height int) {
	d.record("Viewport")
	d.ViewportBox = [4]int{x, y, width, height}
}

func (d *Driver) Clear(r, g, b, a float32) {
	d.record("Clear")
	d.Clears = append(d.Clears, Clear{Framebuffer: d.BoundFramebuffer, Color: [4]float32{r, g, b, a}})
}

// ReadPixels returns the attached texture's last upload, or a pattern
// derived from the texture id when it holds none.
func (d *Driver) ReadPixels(x, y, width, height int, dst []byte) error {
	d.record("ReadPixels")
	if d.ReadErr != nil {
		return d.ReadErr
	}
	if len(dst) < width*height*4 {
		return errors.New("scenetest: ReadPixels buffer too small")
	}
	tex := d.Framebuffers[d.BoundFramebuffer]
	if t, ok := d.Textures[tex]; ok && len(t.Pixels) == len(dst) {
		copy(dst, t.Pixels)
		return nil
	}
	for i := range dst[:width*height*4] {
		dst[i] = byte(int(tex)*31 + i*7)
	}
	return nil
}

func (d *Driver) SetScissorEnabled(enabled bool) {
	d.record("SetScissorEnabled")
	d.ScissorEnabled = enabled
}

func (d *Driver) Scissor(x, y, width, height int) {
	d.record("Scissor")
	d.ScissorBox = [4]int{x, y, width, height}
}

func (d *Driver) CreateProgram(vertexSource, fragmentSource string) (uint32, error) {
	d.record("CreateProgram")
	if d.ProgramErr != nil {
		return 0, d.ProgramErr
	}
	prog := d.id()
	d.programs[prog] = &program{
		textured:  strings.Contains(fragmentSource, "u_Texture"),
		locations: make(map[string]int32),
		uniforms:  make(map[int32][]float32),
	}
	return prog, nil
}

func (d *Driver) DeleteProgram(prog uint32) {
	d.record("DeleteProgram")
	delete(d.programs, prog)
}

func (d *Driver) UseProgram(prog uint32) {
	d.record("UseProgram")
	d.BoundProgram = prog
}

func (d *Driver) location(prog uint32, name string) int32 {
	p, ok := d.programs[prog]
	if !ok {
		return -1
	}
	loc, ok := p.locations[name]
	if !ok {
		loc = int32(len(p.locations))
		p.locations[name] = loc
	}
	return loc
}

func (d *Driver) UniformLocation(prog uint32, name string) int32 { return d.location(prog, name) }

func (d *Driver) AttribLocation(prog uint32, name string) int32 { return d.location(prog, name) }

// Uniform returns the last value set for the named uniform of prog.
func (d *Driver) Uniform(prog uint32, name string) []float32 {
	p, ok := d.programs[prog]
	if !ok {
		return nil
	}
	return p.value(name)
}

func (d *Driver) setUniform(loc int32, v ...float32) {
	p, ok := d.programs[d.BoundProgram]
	if !ok || loc < 0 {
		return
	}
	p.uniforms[loc] = v
}

func (d *Driver) Uniform1i(loc int32, v int32) {
	d.record("Uniform1i")
	d.setUniform(loc, float32(v))
}

func (d *Driver) Uniform1f(loc int32, v float32) {
	d.record("Uniform1f")
	d.setUniform(loc, v)
}

func (d *Driver) Uniform2f(loc int32, x, y float32) {
	d.record("Uniform2f")
	d.setUniform(loc, x, y)
}

func (d *Driver) Uniform4f(loc int32, x, y, z, w float32) {
	d.record("Uniform4f")
	d.setUniform(loc, x, y, z, w)
}

func (d *Driver) GenBuffer() uint32 {
	d.record("GenBuffer")
	return d.id()
}

func (d *Driver) DeleteBuffer(buf uint32) {
	d.record("DeleteBuffer")
	delete(d.arrayData, buf)
	delete(d.elementData, buf)
}

func (d *Driver) BindBuffer(target scene.BufferTarget, buf uint32) {
	d.record("BindBuffer")
	if target == scene.ArrayBuffer {
		d.arrayBuf = buf
	} else {
		d.elementBuf = buf
	}
}

func (d *Driver) BufferFloats(_ scene.BufferTarget, data []float32) {
	d.record("BufferFloats")
	d.arrayData[d.arrayBuf] = append([]float32(nil), data...)
}

func (d *Driver) BufferShorts(_ scene.BufferTarget, data []uint16) {
	d.record("BufferShorts")
	d.elementData[d.elementBuf] = append([]uint16(nil), data...)
}

func (d *Driver) VertexAttribPointer(loc int32, size, stride, offset int) {
	d.record("VertexAttribPointer")
}

func (d *Driver) EnableVertexAttribArray(loc int32) {
	d.record("EnableVertexAttribArray")
}

func (d *Driver) DrawElements(count int) {
	d.record("DrawElements")
	dr := Draw{
		Program:     d.BoundProgram,
		Framebuffer: d.BoundFramebuffer,
		Elements:    count,
		Vertices:    d.arrayData[d.arrayBuf],
		Indices:     d.elementData[d.elementBuf],
	}
	if p, ok := d.programs[d.BoundProgram]; ok {
		dr.Textured = p.textured
		if dr.Textured {
			dr.Texture = d.BoundTexture
			if tx, ok := d.Textures[d.BoundTexture]; ok {
				dr.TexParams = tx.Params
			}
		}
		if v := p.value("u_ScreenSize"); len(v) == 2 {
			dr.ScreenSize = [2]float32{v[0], v[1]}
		}
		if v := p.value("u_Alpha"); len(v) == 1 {
			dr.Alpha = v[0]
		}
		if v := p.value("u_Color"); len(v) == 4 {
			dr.Color = [4]float32{v[0], v[1], v[2], v[3]}
		}
	}
	if d.ScissorEnabled {
		box := d.ScissorBox
		dr.Scissor = &box
	}
	d.Draws = append(d.Draws, dr)
}

func (d *Driver) GetError() uint32 {
	if len(d.errs) == 0 {
		return 0
	}
	code := d.errs[0]
	d.errs = d.errs[1:]
	return code
}
