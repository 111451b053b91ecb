package recording

// Mat4 is a 4x4 float32 matrix stored in column-major order: the element at
// row r and column c is m[r+c*4]. This is the layout expected by GPU uniforms.
type Mat4 [16]float32

// Identity returns the identity matrix.
func Identity() Mat4 {
	return Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// Ortho returns an orthographic projection mapping the box
// [left,right] x [bottom,top] x [-near,-far] to clip space.
func Ortho(left, right, bottom, top, near, far float32) Mat4 {
	m := Identity()
	m[0] = 2 / (right - left)
	m[12] = -(right + left) / (right - left)
	m[5] = 2 / (top - bottom)
	m[13] = -(top + bottom) / (top - bottom)
	m[10] = -2 / (far - near)
	m[14] = -(far + near) / (far - near)
	return m
}

// Translation returns a matrix translating by (x, y, z).
func Translation(x, y, z float32) Mat4 {
	m := Identity()
	m[12] = x
	m[13] = y
	m[14] = z
	return m
}

// Scaling returns a matrix scaling by (x, y, z).
func Scaling(x, y, z float32) Mat4 {
	m := Identity()
	m[0] = x
	m[5] = y
	m[10] = z
	return m
}

// Mul returns m * o. Applied to a point, o transforms first.
func (m Mat4) Mul(o Mat4) Mat4 {
	var r Mat4
	for row := 0; row < 4; row++ {
		for col := 0; col < 4; col++ {
			r[row+col*4] = m[row]*o[col*4] +
				m[row+4]*o[1+col*4] +
				m[row+8]*o[2+col*4] +
				m[row+12]*o[3+col*4]
		}
	}
	return r
}

// Transform applies m to the point (x, y, 0, 1) and returns the clip
// coordinates divided by w.
func (m Mat4) Transform(x, y float32) (float32, float32) {
	cx := m[0]*x + m[4]*y + m[12]
	cy := m[1]*x + m[5]*y + m[13]
	w := m[3]*x + m[7]*y + m[15]
	if w != 0 && w != 1 {
		return cx / w, cy / w
	}
	return cx, cy
}
