package recording

import "github.com/gogpu/gputypes"

// Device executes replayed commands. Methods other than BeginFrame and
// EndFrame do not return errors; like OpenGL, a device latches the first
// failure and reports it from Err. Emit checks Err after every call.
//
// # Implementation Contract
//
// Each device must:
//  1. Treat texture 0 and target 0 as "nothing bound" and the default
//     framebuffer respectively
//  2. Interpret Rect values in window coordinates with a bottom-left origin
//  3. Keep uploaded buffers until the next upload; realloc reports that the
//     buffer must be resized to exactly the uploaded length
//  4. Wrap one of the Err* codes of this package in reported errors
type Device interface {
	// Lifecycle

	// BeginFrame prepares the device for a replay.
	BeginFrame() error

	// EndFrame finishes the replay and submits the work.
	EndFrame() error

	// Buffers

	// UploadVertices replaces the vertex buffer contents.
	UploadVertices(vertices []Vertex, realloc bool)

	// UploadIndices replaces the index buffer contents.
	UploadIndices(indices []uint32, realloc bool)

	// State

	Enable(c Capability, on bool)
	ScissorRect(r Rect)
	Viewport(r Rect)
	DepthFunc(f gputypes.CompareFunction)
	BlendFunc(f BlendFunc)
	LineWidth(w float32)
	PointSize(s float32)
	SetMatrix(m Mat4)
	BindTexture(id uint32)
	BindTarget(id uint32)

	// Actions

	// Clear clears the bound target.
	Clear(color [4]float32, depth bool)

	// DrawIndexed draws count indices starting at start.
	DrawIndexed(mode gputypes.PrimitiveTopology, start, count int)

	// Err returns the first error since the previous call and clears it.
	Err() error
}
