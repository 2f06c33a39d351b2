package mplwgpu

import (
	"encoding/binary"
	"math"
	"testing"
)

// mulVec4 applies a column-major matrix to a vector.
func mulVec4(m Mat4, v [4]float32) [4]float32 {
	var out [4]float32
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			out[r] += m[c*4+r] * v[c]
		}
	}
	return out
}

func TestIdentityMul(t *testing.T) {
	m := ScreenOrtho(800, 600)
	if got := Identity().Mul(m); got != m {
		t.Error("I * M != M")
	}
	if got := m.Mul(Identity()); got != m {
		t.Error("M * I != M")
	}
}

func TestScreenOrthoCorners(t *testing.T) {
	m := ScreenOrtho(800, 600)

	tests := []struct {
		name string
		in   [4]float32
		want [2]float32
	}{
		{"top-left", [4]float32{0, 0, 0, 1}, [2]float32{-1, 1}},
		{"bottom-right", [4]float32{800, 600, 0, 1}, [2]float32{1, -1}},
		{"center", [4]float32{400, 300, 0, 1}, [2]float32{0, 0}},
	}
	for _, tt := range tests {
		got := mulVec4(m, tt.in)
		if math.Abs(float64(got[0]-tt.want[0])) > 1e-5 || math.Abs(float64(got[1]-tt.want[1])) > 1e-5 {
			t.Errorf("%s: clip = (%v, %v), want (%v, %v)", tt.name, got[0], got[1], tt.want[0], tt.want[1])
		}
	}

	// Smaller z lands closer to the viewer within [0, 1] depth.
	near := mulVec4(m, [4]float32{0, 0, -1, 1})
	far := mulVec4(m, [4]float32{0, 0, 1, 1})
	if !(near[2] < far[2]) {
		t.Errorf("depth order: z=-1 -> %v, z=1 -> %v", near[2], far[2])
	}
}

func TestPerspectiveDepthRange(t *testing.T) {
	m := Perspective(math.Pi/4, 4.0/3.0, 0.1, 100)

	near := mulVec4(m, [4]float32{0, 0, -0.1, 1})
	if math.Abs(float64(near[2]/near[3])) > 1e-4 {
		t.Errorf("near plane depth = %v, want 0", near[2]/near[3])
	}
	far := mulVec4(m, [4]float32{0, 0, -100, 1})
	if math.Abs(float64(far[2]/far[3]-1)) > 1e-4 {
		t.Errorf("far plane depth = %v, want 1", far[2]/far[3])
	}
}

func TestLookAtEyeMapsToOrigin(t *testing.T) {
	eye := [3]float32{2, 3, 4}
	m := LookAt(eye, [3]float32{0, 0, 0}, [3]float32{0, 1, 0})
	got := mulVec4(m, [4]float32{eye[0], eye[1], eye[2], 1})
	for i := 0; i < 3; i++ {
		if math.Abs(float64(got[i])) > 1e-5 {
			t.Errorf("eye in view space = %v, want origin", got)
			break
		}
	}

	// The look target must land on the negative z axis.
	center := mulVec4(m, [4]float32{0, 0, 0, 1})
	if center[2] >= 0 {
		t.Errorf("center z = %v, want negative", center[2])
	}
	if math.Abs(float64(center[0])) > 1e-5 || math.Abs(float64(center[1])) > 1e-5 {
		t.Errorf("center off axis: (%v, %v)", center[0], center[1])
	}
}

func TestPackUniforms(t *testing.T) {
	vp := ScreenOrtho(800, 600)
	buf := PackUniforms(vp, 800, 600, [3]float32{1, 2, 3})
	if len(buf) != UniformSize {
		t.Fatalf("len = %d, want %d", len(buf), UniformSize)
	}

	readF32 := func(off int) float32 {
		return math.Float32frombits(binary.LittleEndian.Uint32(buf[off:]))
	}
	for i, v := range vp {
		if got := readF32(i * 4); got != v {
			t.Errorf("matrix element %d = %v, want %v", i, got, v)
		}
	}
	if readF32(64) != 800 || readF32(68) != 600 {
		t.Errorf("screen size = (%v, %v), want (800, 600)", readF32(64), readF32(68))
	}
	if readF32(72) != 0 || readF32(76) != 0 {
		t.Error("vec2 padding not zero")
	}
	if readF32(80) != 1 || readF32(84) != 2 || readF32(88) != 3 {
		t.Errorf("camera pos = (%v, %v, %v), want (1, 2, 3)", readF32(80), readF32(84), readF32(88))
	}
	if readF32(92) != 0 {
		t.Error("trailing padding not zero")
	}
}
