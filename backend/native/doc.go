// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package native replays recorded frames on a wgpu HAL device.
//
// Each frame is encoded into one command buffer. A render pass is opened
// per bound target, and a Clear starts a fresh pass with a clear load op.
// Render pipelines are cached by blend state, topology, culling and target
// format; transform uniforms and bind groups live for one frame.
//
// # Coordinate System
//
// Recorded rectangles use a bottom-left origin. They are converted to the
// top-left origin of WebGPU for the default framebuffer. Offscreen targets
// are instead rendered through a vertical flip of clip space, which keeps
// their textures in GL row order: a target texture composited with v = 0 at
// the bottom looks the same as on a GL device.
//
// # Limitations
//
//   - Clear ignores the scissor rectangle
//   - Line width and point size other than 1 are ignored
//   - There is no depth attachment; depth state is accepted and unused
//
// # Example
//
//	dev, err := native.NewFromProvider(app.DeviceProvider(), 1280, 720)
//	if err != nil {
//	    return err
//	}
//	defer dev.Close()
//
//	dev.SetSurface(view, 1280, 720)
//	if err := q.Emit(dev); err != nil {
//	    return err
//	}
package native
