package scene

// VertexSize is the number of floats per vertex:
// m00, m01, m10, m11 (2x2 transform), tx, ty (translation),
// x, y (local position), u, v (texture coordinate).
const VertexSize = 10

// VertexStride is the byte stride of one vertex.
const VertexStride = VertexSize * 4

// Attribute byte offsets within a vertex.
const (
	offsetMatrix      = 0
	offsetTranslation = 16
	offsetPosition    = 24
	offsetTexCoord    = 32
)

const (
	defaultBatchVertices = 64
	// maxBatchVertices is the most vertices a uint16 index can address.
	maxBatchVertices = 1 << 16
)

// GeometryBatch accumulates vertices and triangle indices on the CPU until
// they are flushed to the GPU in a single indexed draw call.
// Both buffers keep their capacity across flushes.
type GeometryBatch struct {
	vertices []float32 // len == vertex capacity * VertexSize
	elements []uint16  // len == element capacity

	vertexOffset  int // vertices added since the last flush
	elementOffset int // indices added since the last flush

	vbo, ebo uint32
	draws    int // draw calls issued over the batch's lifetime
}

// NewGeometryBatch creates a batch with room for vertexCapacity vertices.
func NewGeometryBatch(vertexCapacity int) *GeometryBatch {
	assertf(vertexCapacity > 0 && vertexCapacity <= maxBatchVertices,
		"batch capacity %d out of range", vertexCapacity)
	return &GeometryBatch{
		vertices: make([]float32, vertexCapacity*VertexSize),
		elements: make([]uint16, vertexCapacity*6/4),
	}
}

// VertexOffset returns the number of vertices pending since the last flush.
func (b *GeometryBatch) VertexOffset() int { return b.vertexOffset }

// ElementOffset returns the number of indices pending since the last flush.
func (b *GeometryBatch) ElementOffset() int { return b.elementOffset }

// VertexCapacity returns how many vertices fit before a flush is forced.
func (b *GeometryBatch) VertexCapacity() int { return len(b.vertices) / VertexSize }

// ElementCapacity returns how many indices fit before a flush is forced.
func (b *GeometryBatch) ElementCapacity() int { return len(b.elements) }

// Draws returns the number of draw calls this batch has issued.
func (b *GeometryBatch) Draws() int { return b.draws }

// Pending reports whether any geometry awaits a flush.
func (b *GeometryBatch) Pending() bool { return b.vertexOffset > 0 }

// Fits reports whether a primitive of the given size fits in the remaining capacity.
func (b *GeometryBatch) Fits(vertexCount, elemCount int) bool {
	return b.vertexOffset+vertexCount <= b.VertexCapacity() &&
		b.elementOffset+elemCount <= b.ElementCapacity()
}

// Grow enlarges the buffers so an empty batch can hold the primitive.
// Capacity doubles until it fits. Grow must only be called on an empty
// batch: growing never moves pending geometry.
func (b *GeometryBatch) Grow(vertexCount, elemCount int) (grew bool) {
	assertf(b.vertexOffset == 0 && b.elementOffset == 0, "grow with %d pending vertices", b.vertexOffset)
	assertf(vertexCount <= maxBatchVertices, "primitive of %d vertices exceeds %d", vertexCount, maxBatchVertices)

	if vertCap := b.VertexCapacity(); vertexCount > vertCap {
		for vertCap < vertexCount {
			vertCap *= 2
		}
		b.vertices = make([]float32, min(vertCap, maxBatchVertices)*VertexSize)
		grew = true
	}
	if elemCap := b.ElementCapacity(); elemCount > elemCap {
		for elemCap < elemCount {
			elemCap *= 2
		}
		b.elements = make([]uint16, elemCap)
		grew = true
	}
	return grew
}

// AddVertex appends one vertex and returns its index relative to the
// start of the pending batch. The caller must have ensured capacity.
func (b *GeometryBatch) AddVertex(m00, m01, m10, m11, tx, ty, x, y, u, v float32) int {
	i := b.vertexOffset * VertexSize
	vs := b.vertices[i : i+VertexSize : i+VertexSize]
	vs[0], vs[1], vs[2], vs[3] = m00, m01, m10, m11
	vs[4], vs[5] = tx, ty
	vs[6], vs[7] = x, y
	vs[8], vs[9] = u, v
	b.vertexOffset++
	return b.vertexOffset - 1
}

// AddElement appends one triangle index. The caller must have ensured capacity.
func (b *GeometryBatch) AddElement(index int) {
	b.elements[b.elementOffset] = uint16(index)
	b.elementOffset++
}

// Reset drops pending geometry without drawing it.
func (b *GeometryBatch) Reset() {
	b.vertexOffset = 0
	b.elementOffset = 0
}

// bind binds the batch's buffer objects, creating them on first use.
func (b *GeometryBatch) bind(d Driver) {
	if b.vbo == 0 {
		b.vbo = d.GenBuffer()
		b.ebo = d.GenBuffer()
	}
	d.BindBuffer(ArrayBuffer, b.vbo)
	d.BindBuffer(ElementArrayBuffer, b.ebo)
}

// flush uploads pending geometry and issues one draw call.
// It is a no-op when nothing is pending.
func (b *GeometryBatch) flush(d Driver) bool {
	if b.vertexOffset == 0 {
		return false
	}
	b.bind(d)
	d.BufferFloats(ArrayBuffer, b.vertices[:b.vertexOffset*VertexSize])
	d.BufferShorts(ElementArrayBuffer, b.elements[:b.elementOffset])
	d.DrawElements(b.elementOffset)
	b.draws++
	b.Reset()
	return true
}

// forget discards buffer ids that died with a lost GPU context.
func (b *GeometryBatch) forget() {
	b.vbo, b.ebo = 0, 0
	b.Reset()
}

// release deletes the batch's buffer objects.
func (b *GeometryBatch) release(d Driver) {
	if b.vbo != 0 {
		d.DeleteBuffer(b.vbo)
		d.DeleteBuffer(b.ebo)
	}
	b.forget()
}
