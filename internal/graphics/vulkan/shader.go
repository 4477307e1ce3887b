package vulkan

import (
	"encoding/binary"
	"fmt"
	"os"

	vk "github.com/vulkan-go/vulkan"
)

const spirvMagic = 0x07230203

// LoadShader reads a compiled SPIR-V file and creates a shader module.
func LoadShader(device vk.Device, path string) (vk.ShaderModule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		var none vk.ShaderModule
		return none, fmt.Errorf("could not read shader %s: %w", path, err)
	}
	module, err := NewShaderModule(device, data)
	if err != nil {
		return module, fmt.Errorf("shader %s: %w", path, err)
	}
	return module, nil
}

// NewShaderModule creates a shader module from a SPIR-V binary in memory.
func NewShaderModule(device vk.Device, data []byte) (vk.ShaderModule, error) {
	var module vk.ShaderModule
	code, err := spirvWords(data)
	if err != nil {
		return module, err
	}
	info := vk.ShaderModuleCreateInfo{
		SType:    vk.StructureTypeShaderModuleCreateInfo,
		CodeSize: uint(len(data)),
		PCode:    code,
	}
	err = Check("vkCreateShaderModule", vk.CreateShaderModule(device, &info, nil, &module))
	return module, err
}

// spirvWords validates a SPIR-V binary and returns it as little-endian words.
func spirvWords(data []byte) ([]uint32, error) {
	if len(data) < 20 || len(data)%4 != 0 {
		return nil, fmt.Errorf("not a SPIR-V binary (%d bytes)", len(data))
	}
	words := make([]uint32, len(data)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(data[i*4:])
	}
	if words[0] != spirvMagic {
		return nil, fmt.Errorf("bad SPIR-V magic %#x", words[0])
	}
	return words, nil
}
