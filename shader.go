package scene

import (
	"fmt"
)

// ShaderKind selects one of the two built-in programs.
type ShaderKind int

const (
	ColorShader ShaderKind = iota
	TextureShader
)

func (k ShaderKind) String() string {
	switch k {
	case ColorShader:
		return "color"
	case TextureShader:
		return "texture"
	default:
		return "unknown"
	}
}

// Vertex shader source. Pixel coordinates are mapped to clip space with
// u_ScreenSize, with the origin at the top-left of the framebuffer.
const vertexShaderSource = `
#version 410 core
uniform vec2 u_ScreenSize;

in vec4 a_Matrix;
in vec2 a_Translation;
in vec2 a_Position;
in vec2 a_TexCoord;

out vec2 v_TexCoord;

void main() {
    mat3 transform = mat3(
        a_Matrix[0], a_Matrix[1], 0,
        a_Matrix[2], a_Matrix[3], 0,
        a_Translation[0], a_Translation[1], 1);
    gl_Position = vec4(transform * vec3(a_Position, 1.0), 1.0);
    gl_Position.xy /= (u_ScreenSize.xy / 2.0);
    gl_Position.x -= 1.0;
    gl_Position.y = 1.0 - gl_Position.y;
    v_TexCoord = a_TexCoord;
}
` + "\x00"

// Fragment shader for solid fills.
const colorFragmentSource = `
#version 410 core
uniform vec4 u_Color;
uniform float u_Alpha;

in vec2 v_TexCoord;
out vec4 FragColor;

void main() {
    FragColor = u_Color * u_Alpha;
}
` + "\x00"

// Fragment shader for textured quads. Textures hold premultiplied alpha.
const textureFragmentSource = `
#version 410 core
uniform sampler2D u_Texture;
uniform float u_Alpha;

in vec2 v_TexCoord;
out vec4 FragColor;

void main() {
    FragColor = texture(u_Texture, v_TexCoord) * u_Alpha;
}
` + "\x00"

// ShaderProgram owns one GPU program and the GeometryBatch feeding it.
// Per-draw uniform changes flush pending geometry first so every batched
// primitive is drawn with the state it was added under.
type ShaderProgram struct {
	ctx   *RenderContext
	kind  ShaderKind
	batch *GeometryBatch

	prog uint32
	gen  uint64 // context generation prog was created in

	uScreenSize, uAlpha, uColor, uTexture     int32
	aMatrix, aTranslation, aPosition, aTexCoord int32

	lastTex   TextureID
	lastColor uint32
	lastAlpha float32
}

func newShaderProgram(ctx *RenderContext, kind ShaderKind, vertexCapacity int) *ShaderProgram {
	return &ShaderProgram{
		ctx:   ctx,
		kind:  kind,
		batch: NewGeometryBatch(vertexCapacity),
	}
}

// Kind returns which built-in program this is.
func (s *ShaderProgram) Kind() ShaderKind { return s.kind }

// Batch returns the program's geometry batch.
func (s *ShaderProgram) Batch() *GeometryBatch { return s.batch }

func (s *ShaderProgram) String() string {
	return fmt.Sprintf("%s/cq=%d", s.kind, s.batch.ElementCapacity()/6)
}

// ensureProgram compiles the program for the current context generation.
// Ids from an older generation died with their context and are dropped, not deleted.
func (s *ShaderProgram) ensureProgram() error {
	gen := s.ctx.Generation()
	if s.prog != 0 && s.gen == gen {
		return nil
	}
	if s.prog != 0 {
		s.prog = 0
		s.batch.forget()
	}

	d := s.ctx.drv
	frag := colorFragmentSource
	if s.kind == TextureShader {
		frag = textureFragmentSource
	}
	prog, err := d.CreateProgram(vertexShaderSource, frag)
	if err != nil {
		return fmt.Errorf("create %s program: %w", s.kind, err)
	}
	s.prog, s.gen = prog, gen
	s.ctx.stats.ShaderCreates++

	s.uScreenSize = d.UniformLocation(prog, "u_ScreenSize")
	s.uAlpha = d.UniformLocation(prog, "u_Alpha")
	s.aMatrix = d.AttribLocation(prog, "a_Matrix")
	s.aTranslation = d.AttribLocation(prog, "a_Translation")
	s.aPosition = d.AttribLocation(prog, "a_Position")
	s.aTexCoord = -1
	s.uColor, s.uTexture = -1, -1
	if s.kind == TextureShader {
		s.uTexture = d.UniformLocation(prog, "u_Texture")
		s.aTexCoord = d.AttribLocation(prog, "a_TexCoord")
	} else {
		s.uColor = d.UniformLocation(prog, "u_Color")
	}
	return s.ctx.allocError("createProgram")
}

// prepare makes this the active program. It returns true when the program
// was not already active, in which case per-draw uniforms must be re-sent.
func (s *ShaderProgram) prepare() (bool, error) {
	if err := s.ensureProgram(); err != nil {
		return false, err
	}
	if !s.ctx.UseShader(s) {
		return false, nil
	}

	d := s.ctx.drv
	d.UseProgram(s.prog)
	s.batch.bind(d)
	d.VertexAttribPointer(s.aMatrix, 4, VertexStride, offsetMatrix)
	d.EnableVertexAttribArray(s.aMatrix)
	d.VertexAttribPointer(s.aTranslation, 2, VertexStride, offsetTranslation)
	d.EnableVertexAttribArray(s.aTranslation)
	d.VertexAttribPointer(s.aPosition, 2, VertexStride, offsetPosition)
	d.EnableVertexAttribArray(s.aPosition)
	if s.aTexCoord >= 0 {
		d.VertexAttribPointer(s.aTexCoord, 2, VertexStride, offsetTexCoord)
		d.EnableVertexAttribArray(s.aTexCoord)
	}
	w, h := s.ctx.FramebufferSize()
	d.Uniform2f(s.uScreenSize, float32(w), float32(h))
	s.ctx.CheckError("shader.prepare")
	return true, nil
}

// PrepareTexture readies the texture program to draw tex at alpha.
func (s *ShaderProgram) PrepareTexture(tex TextureID, alpha float32) (bool, error) {
	assertf(s.kind == TextureShader, "PrepareTexture on %s program", s.kind)
	activated, err := s.prepare()
	if err != nil {
		return false, err
	}
	if activated || tex != s.lastTex || alpha != s.lastAlpha {
		s.Flush()
		s.ctx.drv.Uniform1f(s.uAlpha, alpha)
		s.lastTex, s.lastAlpha = tex, alpha
	}
	if activated {
		s.ctx.drv.Uniform1i(s.uTexture, 0)
	}
	return activated, nil
}

// PrepareColor readies the color program to fill with color (0xAARRGGBB) at alpha.
func (s *ShaderProgram) PrepareColor(color uint32, alpha float32) (bool, error) {
	assertf(s.kind == ColorShader, "PrepareColor on %s program", s.kind)
	activated, err := s.prepare()
	if err != nil {
		return false, err
	}
	if activated || color != s.lastColor || alpha != s.lastAlpha {
		s.Flush()
		a, r, g, b := colorComponents(color)
		s.ctx.drv.Uniform4f(s.uColor, r, g, b, 1)
		s.ctx.drv.Uniform1f(s.uAlpha, alpha*a)
		s.lastColor, s.lastAlpha = color, alpha
	}
	return activated, nil
}

// BeginPrimitive reserves room for a primitive and returns the index of
// its first vertex. When the primitive does not fit, pending geometry is
// flushed first and the buffers grow only if an empty batch is still too small.
func (s *ShaderProgram) BeginPrimitive(vertexCount, elemCount int) int {
	if !s.batch.Fits(vertexCount, elemCount) {
		s.Flush()
		if s.batch.Grow(vertexCount, elemCount) {
			Logger().Debug("geometry batch grew", "shader", s.kind,
				"vertices", s.batch.VertexCapacity(), "elements", s.batch.ElementCapacity())
		}
	}
	return s.batch.VertexOffset()
}

// AddQuad adds an axis-aligned quad from (x1, y1) to (x2, y2) in local
// coordinates, with texture coordinates from (sl, st) to (sr, sb).
func (s *ShaderProgram) AddQuad(xf Transform, x1, y1, x2, y2, sl, st, sr, sb float32) {
	m00, m01, m10, m11, tx, ty := xf.Elems()
	base := s.BeginPrimitive(4, 6)
	b := s.batch
	b.AddVertex(m00, m01, m10, m11, tx, ty, x1, y1, sl, st)
	b.AddVertex(m00, m01, m10, m11, tx, ty, x2, y1, sr, st)
	b.AddVertex(m00, m01, m10, m11, tx, ty, x1, y2, sl, sb)
	b.AddVertex(m00, m01, m10, m11, tx, ty, x2, y2, sr, sb)
	b.AddElement(base + 0)
	b.AddElement(base + 1)
	b.AddElement(base + 2)
	b.AddElement(base + 1)
	b.AddElement(base + 3)
	b.AddElement(base + 2)
	s.ctx.stats.QuadsRendered++
}

// AddTriangles adds an indexed triangle list. xys holds x,y pairs; sxys
// holds matching texture coordinates or is nil for untextured geometry.
func (s *ShaderProgram) AddTriangles(xf Transform, xys, sxys []float32, indices []int) {
	assertf(sxys == nil || len(sxys) == len(xys), "%d tex coords for %d positions", len(sxys), len(xys))
	m00, m01, m10, m11, tx, ty := xf.Elems()
	base := s.BeginPrimitive(len(xys)/2, len(indices))
	b := s.batch
	for i := 0; i+1 < len(xys); i += 2 {
		var u, v float32
		if sxys != nil {
			u, v = sxys[i], sxys[i+1]
		}
		b.AddVertex(m00, m01, m10, m11, tx, ty, xys[i], xys[i+1], u, v)
	}
	for _, idx := range indices {
		b.AddElement(base + idx)
	}
	s.ctx.stats.TrisRendered += len(indices) / 3
}

// Flush draws all pending geometry in one call. It is a no-op when
// nothing is pending.
func (s *ShaderProgram) Flush() {
	if !s.batch.Pending() {
		return
	}
	d := s.ctx.drv
	s.ctx.CheckError("shader.flush")
	if s.kind == TextureShader {
		d.BindTexture(uint32(s.lastTex))
	}
	s.batch.flush(d)
	s.ctx.stats.ShaderFlushes++
	s.ctx.CheckError("shader.flush drawElements")
}

// release deletes the program and its buffers.
func (s *ShaderProgram) release() {
	if s.prog != 0 && s.gen == s.ctx.Generation() {
		s.ctx.drv.DeleteProgram(s.prog)
		s.batch.release(s.ctx.drv)
	} else {
		s.batch.forget()
	}
	s.prog = 0
}
