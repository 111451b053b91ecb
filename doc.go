// Package fxrender is the frame-rendering core of a tile-based simulation.
//
// # Overview
//
// fxrender turns a stream of draw-state changes and geometry submissions into
// batched GPU commands, and composites order-dependent particle effects
// through offscreen render targets. The work is split across sub-packages:
//
//   - recording: the command queue. State setters are diffed against a cached
//     copy of the pipeline state so redundant transitions are never recorded.
//     Geometry accumulates in scratch buffers and the whole frame is replayed
//     against a Device by Queue.Emit.
//   - recording/backends/raster: a CPU device with OpenGL semantics, used by
//     tests and the demo.
//   - backend/native: a device on top of the gogpu/wgpu HAL.
//   - batch: converts particle quads into vertices and same-texture runs.
//   - render: offscreen render targets.
//   - fx: the effect compositor. Ordered effects are packed into a shared
//     atlas, rendered into two accumulation targets, and composited back into
//     the world with three blend passes.
//
// # Quick Start
//
//	dev, err := raster.New(640, 480)
//	if err != nil {
//	    return err
//	}
//	q := recording.New(recording.WithFallbackTexture(dev.WhiteTexture()))
//	r, err := fx.New(manager, textures, q, dev)
//	if err != nil {
//	    return err
//	}
//	defer r.Close()
//
//	recording.SetupView(q, 640, 480, 1)
//	q.Clear([4]float32{0, 0, 0, 1}, false)
//	if err := r.SetView(2, 0, 0, 640, 480); err != nil {
//	    return err
//	}
//	if err := r.PrepareOrdered(); err != nil {
//	    return err
//	}
//	r.DrawUnordered(0)
//	r.DrawOrdered(ids, 0, 0, color.RGBA{255, 255, 255, 255})
//	if err := q.Emit(dev); err != nil {
//	    return err // device errors are fatal
//	}
//	r.EndFrame()
//
// # Logging
//
// All packages log through [Logger], silent by default. See [SetLogger].
package fxrender
