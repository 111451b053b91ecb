// Package recording provides the deferred command queue that sits between
// frame rendering code and the GPU.
//
// Rendering code never talks to the device directly. It calls state setters
// and appends geometry on a [Queue]; the queue compares every state request
// with a cached copy of the pipeline state and records a typed command only
// when the value actually changes. Geometry appended between two state
// changes becomes a single indexed draw.
//
// At the end of the frame [Queue.Emit] uploads the accumulated vertex and
// index data to a [Device], replays every command in order and clears the
// queue for the next frame. Devices are registered by name following the
// database/sql driver pattern:
//
//	import _ "github.com/gogpu/fxrender/recording/backends/raster"
//
//	dev, err := recording.NewDevice("raster", 640, 480)
//
// # Architecture
//
// Commands are small structs behind the [Command] interface:
//   - Toggles (EnableCommand for blend, scissor, depth test, face culling)
//   - Pipeline state (scissor rect, viewport, depth func, blend func, line
//     width, point size, matrix)
//   - Bindings (texture, render target)
//   - Actions (Clear, Draw)
//
// A device error during replay is fatal for the frame: Emit stops and
// returns a [*DeviceError] naming the failing command.
package recording
