package scene_test

import (
	"testing"

	"github.com/go-theft-auto/scene"
)

func TestGeometryBatch_AddAndFits(t *testing.T) {
	b := scene.NewGeometryBatch(4)
	if b.VertexCapacity() != 4 || b.ElementCapacity() != 6 {
		t.Fatalf("capacity = %d/%d, want 4/6", b.VertexCapacity(), b.ElementCapacity())
	}
	if !b.Fits(4, 6) {
		t.Error("empty batch should fit a quad")
	}
	for i := 0; i < 4; i++ {
		if got := b.AddVertex(1, 0, 0, 1, 0, 0, float32(i), 0, 0, 0); got != i {
			t.Errorf("AddVertex returned %d, want %d", got, i)
		}
	}
	if b.Fits(1, 0) {
		t.Error("full batch should not fit another vertex")
	}
	if !b.Pending() || b.VertexOffset() != 4 {
		t.Errorf("VertexOffset = %d, want 4", b.VertexOffset())
	}
	b.Reset()
	if b.Pending() || b.VertexOffset() != 0 || b.ElementOffset() != 0 {
		t.Error("Reset should clear offsets")
	}
}

func TestGeometryBatch_GrowRequiresEmpty(t *testing.T) {
	b := scene.NewGeometryBatch(4)
	b.AddVertex(1, 0, 0, 1, 0, 0, 0, 0, 0, 0)
	mustPanic(t, "Grow with pending data", func() { b.Grow(8, 12) })
}

func TestGeometryBatch_GrowDoubles(t *testing.T) {
	b := scene.NewGeometryBatch(4)
	if !b.Grow(9, 7) {
		t.Fatal("Grow should report growth")
	}
	if b.VertexCapacity() != 16 {
		t.Errorf("VertexCapacity = %d, want 16", b.VertexCapacity())
	}
	if b.ElementCapacity() != 12 {
		t.Errorf("ElementCapacity = %d, want 12", b.ElementCapacity())
	}
	if b.Grow(9, 7) {
		t.Error("second Grow for the same primitive should be a no-op")
	}
	mustPanic(t, "primitive over uint16 range", func() { b.Grow(1<<16+1, 3) })
}

func TestShader_SingleFlushCoversBatch(t *testing.T) {
	g, drv := newGraphics(t)
	ctx := g.Context()
	ctx.BindDefaultFramebuffer()

	const quads = 10
	for i := 0; i < quads; i++ {
		ctx.FillRect(scene.Identity(), float32(i*10), 0, 10, 10, scene.ColorRed, 1)
	}
	if len(drv.Draws) != 0 {
		t.Fatalf("expected no draws before flush, got %d", len(drv.Draws))
	}

	ctx.Flush()
	if len(drv.Draws) != 1 {
		t.Fatalf("expected 1 draw, got %d", len(drv.Draws))
	}
	d := drv.Draws[0]
	if d.Elements != quads*6 {
		t.Errorf("draw covers %d indices, want %d", d.Elements, quads*6)
	}
	if len(d.Vertices) != quads*4*scene.VertexSize {
		t.Errorf("uploaded %d floats, want %d", len(d.Vertices), quads*4*scene.VertexSize)
	}
	// second quad's indices are offset by its base vertex
	want := []uint16{4, 5, 6, 5, 7, 6}
	for i, idx := range want {
		if d.Indices[6+i] != idx {
			t.Errorf("index %d = %d, want %d", 6+i, d.Indices[6+i], idx)
		}
	}

	batch := ctx.ColorShader().Batch()
	if batch.VertexOffset() != 0 || batch.ElementOffset() != 0 {
		t.Error("offsets should be zero after flush")
	}

	ctx.Flush()
	if len(drv.Draws) != 1 {
		t.Error("flushing an empty batch should not draw")
	}
}

func TestShader_FlushThenGrow(t *testing.T) {
	g, drv := newGraphics(t)
	ctx := g.Context()
	ctx.BindDefaultFramebuffer()
	batch := ctx.ColorShader().Batch()

	ctx.FillRect(scene.Identity(), 0, 0, 10, 10, scene.ColorRed, 1)

	// a 100-vertex fan does not fit the default 64-vertex batch
	const n = 100
	xys := make([]float32, 0, n*2)
	indices := make([]int, 0, (n-2)*3)
	for i := 0; i < n; i++ {
		xys = append(xys, float32(i), float32(i%2))
	}
	for i := 1; i < n-1; i++ {
		indices = append(indices, 0, i, i+1)
	}
	ctx.FillTriangles(scene.Identity(), xys, indices, scene.ColorRed, 1)

	if len(drv.Draws) != 1 {
		t.Fatalf("expected the pending quad to be flushed before growth, got %d draws", len(drv.Draws))
	}
	if drv.Draws[0].Elements != 6 {
		t.Errorf("flushed draw has %d indices, want 6", drv.Draws[0].Elements)
	}
	if batch.VertexCapacity() != 128 {
		t.Errorf("VertexCapacity = %d, want 128", batch.VertexCapacity())
	}
	if batch.ElementCapacity() != 384 {
		t.Errorf("ElementCapacity = %d, want 384", batch.ElementCapacity())
	}
	if batch.VertexOffset() != n {
		t.Errorf("VertexOffset = %d, want %d", batch.VertexOffset(), n)
	}

	ctx.Flush()
	if len(drv.Draws) != 2 || drv.Draws[1].Elements != len(indices) {
		t.Errorf("expected second draw of %d indices", len(indices))
	}
}
