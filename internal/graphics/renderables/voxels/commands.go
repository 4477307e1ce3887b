package voxels

import (
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"
	vk "github.com/vulkan-go/vulkan"
)

// pushConstantSize is one column-major 4x4 float matrix.
const pushConstantSize = 64

// Commands is the slice of command recording the renderer uses.
type Commands interface {
	BindPipeline(p vk.Pipeline)
	PushMatrix(layout vk.PipelineLayout, m mgl32.Mat4)
	BindFaces(buf vk.Buffer)
	Draw(vertices, instances uint32)
}

// Record wraps a command buffer in the render pass being recorded.
func Record(cmd vk.CommandBuffer) Commands {
	return commandBuffer{cmd: cmd}
}

type commandBuffer struct {
	cmd vk.CommandBuffer
}

func (c commandBuffer) BindPipeline(p vk.Pipeline) {
	vk.CmdBindPipeline(c.cmd, vk.PipelineBindPointGraphics, p)
}

func (c commandBuffer) PushMatrix(layout vk.PipelineLayout, m mgl32.Mat4) {
	vk.CmdPushConstants(c.cmd, layout, vk.ShaderStageFlags(vk.ShaderStageVertexBit), 0, pushConstantSize, unsafe.Pointer(&m[0]))
}

func (c commandBuffer) BindFaces(buf vk.Buffer) {
	vk.CmdBindVertexBuffers(c.cmd, 0, 1, []vk.Buffer{buf}, []vk.DeviceSize{0})
}

func (c commandBuffer) Draw(vertices, instances uint32) {
	vk.CmdDraw(c.cmd, vertices, instances, 0, 0)
}
