/*
Package scene provides a retained-mode 2D scene graph rendered through a
batched GPU shader pipeline, designed as idiomatic Go with a dedicated
RenderContext type threaded explicitly through every GPU resource.

# Overview

A tree of layers is painted every frame. Each layer carries a transform,
an alpha, a visibility flag and a depth; painting composes them top-down
and hands textured or solid quads to one of two built-in shader programs.
Geometry accumulates in a GeometryBatch and reaches the GPU in a single
draw call when something forces a flush.

# Quick Start

	drv := opengl.NewDriver()
	g, _ := scene.New(drv, scene.WithConfig(conf))
	g.SetSize(fbWidth, fbHeight)

	sprite := g.NewImageLayer(g.LoadImage("assets/car.png"))
	sprite.SetOrigin(32, 32)
	g.Root().AddAt(sprite, 400, 300)

	for !window.ShouldClose() {
	    sprite.SetRotation(angle)
	    g.Paint()
	    window.SwapBuffers()
	}

The opengl backend package wraps all of this in a Platform with a GLFW
window and frame loop.

# Layers

	GroupLayer    ordered children; optionally clipped to a rectangle
	ImageLayer    one Image as a quad, stretched or tiled
	SurfaceLayer  an offscreen Surface drawn with immediate-mode calls
	CanvasLayer   a Surface redrawn by a callback during paint

Children paint in ascending depth, and in insertion order within equal
depth. An invisible layer skips its whole subtree. A layer's transform is

	translation * rotation * scale * translate(-origin)

and its effective transform and alpha are the products along the path
from the root.

# Flushing

Pending geometry is flushed, in order of precedence, when:

  - Flush is called explicitly
  - a primitive does not fit in the remaining batch capacity
  - the active shader program changes
  - a different framebuffer is bound
  - the bound texture, fill color or alpha changes

When a primitive does not fit, the batch is flushed first and only then
grown, so growth never touches pending geometry.

# Threading

All scene, layer, image and surface calls belong to the render thread.
Bitmaps decode on worker goroutines (bounded by Config.DecodeWorkers) and
complete their futures through the RenderQueue, which Graphics.Paint drains
before painting. A load that never completes blocks nothing.

# Context Loss

Call Graphics.ContextLost before the GPU context goes away and
Graphics.ContextCreated once a new one exists. ContextLost snapshots every
live Surface into the PixelStore. ContextCreated advances the context
generation; textures, framebuffers, programs and buffers from older
generations are treated as invalid and recreated lazily on next use.
Surfaces redraw their snapshot into a fresh framebuffer; a failed snapshot
leaves the surface blank.

# Errors

Draw-time failures (no texture, GPU errors) are logged and the draw is
skipped; a frame is never aborted. Decode failures fail the image's Ready
future. Caller bugs such as unbalanced Surface.Save/Restore or adding a
layer owned by another group panic.

# Configuration

Config is loaded from TOML:

	debug = false              # drain GPU errors after every checked call
	texture_filter = "linear"  # or "nearest"
	batch_vertices = 64        # initial batch capacity, doubles on demand
	image_cache_size = 64      # evictable bitmaps kept resident
	surface_cache_dir = ""     # empty keeps surface snapshots in memory
	decode_workers = 2
	max_texture_size = 0       # downsize larger decoded bitmaps; 0 = off
*/
package scene
