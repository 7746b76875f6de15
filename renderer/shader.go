package renderer

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"

	as "github.com/vulkan-go/asche"
	vk "github.com/vulkan-go/vulkan"
)

const spirvMagic = 0x07230203

var ErrInvalidSPIRV = errors.New("invalid SPIR-V")

// CheckSPIRV rejects data that cannot be a SPIR-V module: empty, not a whole
// number of 32-bit words, or without the magic number in either byte order.
func CheckSPIRV(data []byte) error {
	if len(data) == 0 {
		return fmt.Errorf("%w: empty", ErrInvalidSPIRV)
	}
	if len(data)%4 != 0 {
		return fmt.Errorf("%w: size %d is not a multiple of 4", ErrInvalidSPIRV, len(data))
	}
	if binary.LittleEndian.Uint32(data) != spirvMagic && binary.BigEndian.Uint32(data) != spirvMagic {
		return fmt.Errorf("%w: bad magic number", ErrInvalidSPIRV)
	}
	return nil
}

func ReadSPIRV(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read shader file: %w", err)
	}
	if err := CheckSPIRV(data); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return data, nil
}

// Shader holds a vertex and fragment module pair.
type Shader struct {
	Vertex   vk.ShaderModule
	Fragment vk.ShaderModule

	device vk.Device
}

func LoadShader(device *Device, vertexPath, fragmentPath string) (*Shader, error) {
	vertCode, err := ReadSPIRV(vertexPath)
	if err != nil {
		return nil, err
	}
	fragCode, err := ReadSPIRV(fragmentPath)
	if err != nil {
		return nil, err
	}
	s := &Shader{device: device.Logical}
	if s.Vertex, err = as.LoadShaderModule(device.Logical, vertCode); err != nil {
		return nil, fmt.Errorf("vkCreateShaderModule (vertex) failed with %w", err)
	}
	if s.Fragment, err = as.LoadShaderModule(device.Logical, fragCode); err != nil {
		s.Destroy()
		return nil, fmt.Errorf("vkCreateShaderModule (fragment) failed with %w", err)
	}
	return s, nil
}

// Stages returns the vertex and fragment stage infos, both entering at main.
func (s *Shader) Stages() []vk.PipelineShaderStageCreateInfo {
	return []vk.PipelineShaderStageCreateInfo{{
		SType:  vk.StructureTypePipelineShaderStageCreateInfo,
		Stage:  vk.ShaderStageVertexBit,
		Module: s.Vertex,
		PName:  "main\x00",
	}, {
		SType:  vk.StructureTypePipelineShaderStageCreateInfo,
		Stage:  vk.ShaderStageFragmentBit,
		Module: s.Fragment,
		PName:  "main\x00",
	}}
}

// Destroy releases the modules. Pipelines built from them stay valid.
func (s *Shader) Destroy() {
	if s == nil {
		return
	}
	if s.Vertex != vk.NullShaderModule {
		vk.DestroyShaderModule(s.device, s.Vertex, nil)
		s.Vertex = vk.NullShaderModule
	}
	if s.Fragment != vk.NullShaderModule {
		vk.DestroyShaderModule(s.device, s.Fragment, nil)
		s.Fragment = vk.NullShaderModule
	}
}
