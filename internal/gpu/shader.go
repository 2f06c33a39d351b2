package gpu

import (
	_ "embed"
	"fmt"

	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"
)

//go:embed shaders/primitives.wgsl
var primitivesShaderSource string

//go:embed shaders/text.wgsl
var textShaderSource string

// PrimitivesShaderSource returns the WGSL source of the instanced
// primitive shader.
func PrimitivesShaderSource() string { return primitivesShaderSource }

// TextShaderSource returns the WGSL source of the glyph quad shader.
func TextShaderSource() string { return textShaderSource }

// CompileToSPIRV compiles WGSL source to a SPIR-V word slice. Used when
// a backend's WGSL frontend is unavailable or a pipeline is configured
// with PreferSPIRV; SPIR-V is little-endian 32-bit words.
func CompileToSPIRV(wgslSource string) ([]uint32, error) {
	spirvBytes, err := naga.Compile(wgslSource)
	if err != nil {
		return nil, fmt.Errorf("gpu: compile shader: %w", err)
	}
	words := make([]uint32, len(spirvBytes)/4)
	for i := range words {
		words[i] = uint32(spirvBytes[i*4]) |
			uint32(spirvBytes[i*4+1])<<8 |
			uint32(spirvBytes[i*4+2])<<16 |
			uint32(spirvBytes[i*4+3])<<24
	}
	return words, nil
}

// createShaderModule builds a hal shader module from WGSL source,
// translating to SPIR-V first when preferSPIRV is set.
func createShaderModule(device hal.Device, label, wgslSource string, preferSPIRV bool) (hal.ShaderModule, error) {
	if wgslSource == "" {
		return nil, fmt.Errorf("gpu: %s shader source is empty", label)
	}
	if preferSPIRV {
		words, err := CompileToSPIRV(wgslSource)
		if err != nil {
			return nil, fmt.Errorf("gpu: %s: %w", label, err)
		}
		return device.CreateShaderModule(&hal.ShaderModuleDescriptor{
			Label:  label,
			Source: hal.ShaderSource{SPIRV: words},
		})
	}
	return device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  label,
		Source: hal.ShaderSource{WGSL: wgslSource},
	})
}
