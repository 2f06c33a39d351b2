package mplwgpu

import (
	"encoding/binary"
	"math"
)

// Mat4 is a 4x4 matrix in column-major order, matching the WGSL mat4x4
// uniform layout. Element (row r, column c) is at index c*4+r.
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

// Mul returns a * b.
func (a Mat4) Mul(b Mat4) Mat4 {
	var out Mat4
	for c := 0; c < 4; c++ {
		for r := 0; r < 4; r++ {
			var sum float32
			for k := 0; k < 4; k++ {
				sum += a[k*4+r] * b[c*4+k]
			}
			out[c*4+r] = sum
		}
	}
	return out
}

// Orthographic returns an orthographic projection mapping the given box
// to clip space with a [0, 1] depth range.
func Orthographic(left, right, bottom, top, near, far float32) Mat4 {
	rw := 1 / (right - left)
	rh := 1 / (top - bottom)
	rd := 1 / (far - near)
	return Mat4{
		2 * rw, 0, 0, 0,
		0, 2 * rh, 0, 0,
		0, 0, rd, 0,
		-(right + left) * rw, -(top + bottom) * rh, -near * rd, 1,
	}
}

// ScreenOrtho returns the default 2D plot projection: pixel coordinates
// with the origin at the top-left and y growing downward, z in [-1, 1]
// with smaller z closer to the viewer.
func ScreenOrtho(width, height float32) Mat4 {
	return Orthographic(0, width, height, 0, -1, 1)
}

// Perspective returns a perspective projection with a [0, 1] depth range.
// fovy is the vertical field of view in radians.
func Perspective(fovy, aspect, near, far float32) Mat4 {
	f := float32(1 / math.Tan(float64(fovy)/2))
	rd := 1 / (near - far)
	return Mat4{
		f / aspect, 0, 0, 0,
		0, f, 0, 0,
		0, 0, far * rd, -1,
		0, 0, near * far * rd, 0,
	}
}

// LookAt returns a view matrix for a camera at eye looking at center.
func LookAt(eye, center, up [3]float32) Mat4 {
	f := normalize3(sub3(center, eye))
	s := normalize3(cross3(f, up))
	u := cross3(s, f)
	return Mat4{
		s[0], u[0], -f[0], 0,
		s[1], u[1], -f[1], 0,
		s[2], u[2], -f[2], 0,
		-dot3(s, eye), -dot3(u, eye), dot3(f, eye), 1,
	}
}

// UniformSize is the byte size of the shared per-frame uniform block:
// view-projection mat4 (64) + screen size vec2 (8) + padding (8) +
// camera position vec3 (12) + padding (4).
const UniformSize = 96

// PackUniforms serializes the per-frame uniform block in the layout
// primitives.wgsl declares.
func PackUniforms(viewProj Mat4, width, height float32, cameraPos [3]float32) []byte {
	buf := make([]byte, UniformSize)
	off := 0
	for _, v := range viewProj {
		binary.LittleEndian.PutUint32(buf[off:], math.Float32bits(v))
		off += 4
	}
	binary.LittleEndian.PutUint32(buf[off:], math.Float32bits(width))
	binary.LittleEndian.PutUint32(buf[off+4:], math.Float32bits(height))
	off += 16 // skip vec2 padding
	for _, v := range cameraPos {
		binary.LittleEndian.PutUint32(buf[off:], math.Float32bits(v))
		off += 4
	}
	// Trailing pad stays zero.
	return buf
}

func sub3(a, b [3]float32) [3]float32 {
	return [3]float32{a[0] - b[0], a[1] - b[1], a[2] - b[2]}
}

func dot3(a, b [3]float32) float32 {
	return a[0]*b[0] + a[1]*b[1] + a[2]*b[2]
}

func cross3(a, b [3]float32) [3]float32 {
	return [3]float32{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
}

func normalize3(v [3]float32) [3]float32 {
	l := float32(math.Sqrt(float64(dot3(v, v))))
	if l == 0 {
		return v
	}
	return [3]float32{v[0] / l, v[1] / l, v[2] / l}
}
