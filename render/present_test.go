package render

import (
	"errors"
	"testing"
)

func TestPresentToRejectsBadPixels(t *testing.T) {
	tests := []struct {
		name   string
		pixels []byte
		w, h   int
	}{
		{"nil pixels", nil, 4, 4},
		{"short buffer", make([]byte, 10), 4, 4},
		{"zero width", make([]byte, 64), 0, 4},
		{"zero height", make([]byte, 64), 4, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := PresentTo(nil, tt.pixels, tt.w, tt.h, 0, 0)
			if !errors.Is(err, ErrInvalidPixels) {
				t.Errorf("err = %v, want ErrInvalidPixels", err)
			}
		})
	}
}
