package recording

import (
	"github.com/gogpu/fxrender"
)

// Emit replays the recorded frame on d.
//
// The pending draw span is flushed, vertex and index data are uploaded
// (in place when the device buffers are large enough, reallocated
// otherwise), and every command is executed in order. The queue is empty
// afterwards whether or not replay succeeded.
//
// Device errors are fatal: Emit stops at the first failing call and returns
// a *DeviceError naming it. The device state is then undefined.
func (q *Queue) Emit(d Device) error {
	if d == nil {
		return ErrNilDevice
	}
	q.flush()
	defer q.clearFrame()

	if err := d.BeginFrame(); err != nil {
		return &DeviceError{Op: "BeginFrame", Index: -1, Err: err}
	}
	if err := q.upload(d); err != nil {
		return err
	}
	for i, cmd := range q.commands {
		execute(d, cmd)
		if err := d.Err(); err != nil {
			return &DeviceError{Op: cmd.Type().String(), Index: i, Err: err}
		}
	}
	if err := d.EndFrame(); err != nil {
		return &DeviceError{Op: "EndFrame", Index: -1, Err: err}
	}

	fxrender.Logger().Debug("recording: frame emitted",
		"commands", len(q.commands),
		"vertices", len(q.vertices),
		"indices", len(q.indices))
	q.applied = q.st
	return nil
}

func (q *Queue) upload(d Device) error {
	if q.uploadDev != d {
		q.uploadDev = d
		q.vertexAlloc, q.indexAlloc = 0, 0
	}
	if n := len(q.vertices); n > 0 {
		realloc := n > q.vertexAlloc
		d.UploadVertices(q.vertices, realloc)
		if err := d.Err(); err != nil {
			q.vertexAlloc = 0
			return &DeviceError{Op: "UploadVertices", Index: -1, Err: err}
		}
		if realloc {
			q.vertexAlloc = n
		}
	}
	if n := len(q.indices); n > 0 {
		realloc := n > q.indexAlloc
		d.UploadIndices(q.indices, realloc)
		if err := d.Err(); err != nil {
			q.indexAlloc = 0
			return &DeviceError{Op: "UploadIndices", Index: -1, Err: err}
		}
		if realloc {
			q.indexAlloc = n
		}
	}
	return nil
}

// execute dispatches one command to the device.
func execute(d Device, cmd Command) {
	switch c := cmd.(type) {
	case EnableCommand:
		d.Enable(c.Cap, c.Enabled)
	case SetScissorRectCommand:
		d.ScissorRect(c.Rect)
	case SetViewportCommand:
		d.Viewport(c.Rect)
	case SetDepthFuncCommand:
		d.DepthFunc(c.Func)
	case SetBlendFuncCommand:
		d.BlendFunc(c.Func())
	case SetBlendFuncSeparateCommand:
		d.BlendFunc(c.Func)
	case SetLineWidthCommand:
		d.LineWidth(c.Width)
	case SetPointSizeCommand:
		d.PointSize(c.Size)
	case SetMatrixCommand:
		d.SetMatrix(c.Matrix)
	case BindTextureCommand:
		d.BindTexture(c.Texture)
	case BindTargetCommand:
		d.BindTarget(c.Target)
	case ClearCommand:
		d.Clear(c.Color, c.Depth)
	case DrawCommand:
		d.DrawIndexed(c.Mode, c.Start, c.Count)
	}
}
