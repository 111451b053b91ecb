package recording

import (
	"fmt"

	"github.com/gogpu/gputypes"
)

// fakeDevice logs every call as a string and can be told to fail.
type fakeDevice struct {
	calls   []string
	err     error
	failOn  string // call name that latches failErr
	failErr error

	beginErr error
}

func (d *fakeDevice) log(name, format string, args ...any) {
	d.calls = append(d.calls, name+fmt.Sprintf(format, args...))
	if d.failOn == name && d.err == nil {
		d.err = d.failErr
	}
}

func (d *fakeDevice) BeginFrame() error {
	d.calls = append(d.calls, "BeginFrame")
	return d.beginErr
}

func (d *fakeDevice) EndFrame() error {
	d.calls = append(d.calls, "EndFrame")
	return nil
}

func (d *fakeDevice) UploadVertices(v []Vertex, realloc bool) {
	d.log("UploadVertices", "(%d,%v)", len(v), realloc)
}

func (d *fakeDevice) UploadIndices(i []uint32, realloc bool) {
	d.log("UploadIndices", "(%d,%v)", len(i), realloc)
}

func (d *fakeDevice) Enable(c Capability, on bool)         { d.log("Enable", "(%v,%v)", c, on) }
func (d *fakeDevice) ScissorRect(r Rect)                   { d.log("ScissorRect", "(%v)", r) }
func (d *fakeDevice) Viewport(r Rect)                      { d.log("Viewport", "(%v)", r) }
func (d *fakeDevice) DepthFunc(f gputypes.CompareFunction) { d.log("DepthFunc", "(%v)", f) }
func (d *fakeDevice) BlendFunc(f BlendFunc)                { d.log("BlendFunc", "(%v)", f.Separate()) }
func (d *fakeDevice) LineWidth(w float32)                  { d.log("LineWidth", "(%v)", w) }
func (d *fakeDevice) PointSize(s float32)                  { d.log("PointSize", "(%v)", s) }
func (d *fakeDevice) SetMatrix(Mat4)                       { d.log("SetMatrix", "") }
func (d *fakeDevice) BindTexture(id uint32)                { d.log("BindTexture", "(%d)", id) }
func (d *fakeDevice) BindTarget(id uint32)                 { d.log("BindTarget", "(%d)", id) }
func (d *fakeDevice) Clear(_ [4]float32, depth bool)       { d.log("Clear", "(%v)", depth) }

func (d *fakeDevice) DrawIndexed(_ gputypes.PrimitiveTopology, start, count int) {
	d.log("DrawIndexed", "(%d,%d)", start, count)
}

func (d *fakeDevice) Err() error {
	err := d.err
	d.err = nil
	return err
}

var _ Device = (*fakeDevice)(nil)
