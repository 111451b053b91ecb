package recording

// SetupView records an orthographic projection for a width x height window
// viewed at the given zoom, with the origin at the top-left corner and y
// pointing down, and a viewport covering the whole window.
func SetupView(q *Queue, width, height int, zoom float32) {
	q.SetMatrix(Ortho(0, float32(width)/zoom, float32(height)/zoom, 0, -1, 1))
	q.SetViewport(Rect{X: 0, Y: 0, W: width, H: height})
}
