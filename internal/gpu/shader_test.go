//go:build !nogpu

package gpu

import (
	"strings"
	"testing"
)

func TestShaderSourcesEmbedded(t *testing.T) {
	tests := []struct {
		name   string
		source string
	}{
		{"primitives", PrimitivesShaderSource()},
		{"text", TextShaderSource()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.source == "" {
				t.Fatal("shader source is empty")
			}
			for _, entry := range []string{"vs_main", "fs_main"} {
				if !strings.Contains(tt.source, entry) {
					t.Errorf("shader missing entry point %s", entry)
				}
			}
		})
	}
}

func TestCompileToSPIRV(t *testing.T) {
	tests := []struct {
		name   string
		source string
	}{
		{"primitives", PrimitivesShaderSource()},
		{"text", TextShaderSource()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			words, err := CompileToSPIRV(tt.source)
			if err != nil {
				t.Fatalf("CompileToSPIRV failed: %v", err)
			}
			if len(words) == 0 {
				t.Fatal("empty SPIR-V output")
			}
			// SPIR-V modules start with the magic number.
			if words[0] != 0x07230203 {
				t.Errorf("magic word = %#x, want 0x07230203", words[0])
			}
		})
	}
}

func TestCompileToSPIRVInvalid(t *testing.T) {
	if _, err := CompileToSPIRV("fn broken("); err == nil {
		t.Error("invalid WGSL should error")
	}
}

func TestCreateShaderModuleSPIRV(t *testing.T) {
	device, _, cleanup := createNoopDevice(t)
	defer cleanup()

	module, err := createShaderModule(device, "test_shader", TextShaderSource(), true)
	if err != nil {
		t.Fatalf("createShaderModule(preferSPIRV) failed: %v", err)
	}
	device.DestroyShaderModule(module)
}

func TestCreateShaderModuleWGSL(t *testing.T) {
	device, _, cleanup := createNoopDevice(t)
	defer cleanup()

	module, err := createShaderModule(device, "test_shader", PrimitivesShaderSource(), false)
	if err != nil {
		t.Fatalf("createShaderModule failed: %v", err)
	}
	device.DestroyShaderModule(module)
}

func TestCreateShaderModuleEmptySource(t *testing.T) {
	device, _, cleanup := createNoopDevice(t)
	defer cleanup()

	if _, err := createShaderModule(device, "empty", "", false); err == nil {
		t.Error("empty source should error")
	}
}
