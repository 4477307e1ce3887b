package surface

import (
	"math"

	vk "github.com/vulkan-go/vulkan"

	"voxel-render/internal/graphics/vulkan"
)

func (r *resources) waitSlot(slot int) error {
	fences := []vk.Fence{r.frames[slot].inFlight}
	return vulkan.Check("vkWaitForFences", vk.WaitForFences(r.device, 1, fences, vk.True, math.MaxUint64))
}

func (r *resources) resetSlot(slot int) error {
	fences := []vk.Fence{r.frames[slot].inFlight}
	return vulkan.Check("vkResetFences", vk.ResetFences(r.device, 1, fences))
}

// acquire keeps a suboptimal image instead of abandoning the frame: the
// image-available semaphore is already pending, so the frame is drawn and
// the following present reports the invalidation.
func (r *resources) acquire(slot int) (uint32, error) {
	var image uint32
	var noFence vk.Fence
	res := vk.AcquireNextImage(r.device, r.swapchain, math.MaxUint64, r.frames[slot].imageAvailable, noFence, &image)
	if err := acquireStatus(res); err != nil {
		return 0, err
	}
	return image, nil
}

func acquireStatus(res vk.Result) error {
	switch res {
	case vk.Success, vk.Suboptimal:
		return nil
	case vk.ErrorOutOfDate:
		return ErrSurfaceInvalid
	}
	return vulkan.Check("vkAcquireNextImageKHR", res)
}

func (r *resources) record(slot int, image uint32, fn func(vk.CommandBuffer)) error {
	cmd := r.frames[slot].cmd
	if err := vulkan.Check("vkResetCommandBuffer", vk.ResetCommandBuffer(cmd, 0)); err != nil {
		return err
	}
	begin := vk.CommandBufferBeginInfo{
		SType: vk.StructureTypeCommandBufferBeginInfo,
		Flags: vk.CommandBufferUsageFlags(vk.CommandBufferUsageOneTimeSubmitBit),
	}
	if err := vulkan.Check("vkBeginCommandBuffer", vk.BeginCommandBuffer(cmd, &begin)); err != nil {
		return err
	}
	pass := vk.RenderPassBeginInfo{
		SType:       vk.StructureTypeRenderPassBeginInfo,
		RenderPass:  r.renderPass,
		Framebuffer: r.framebuffer[image],
		RenderArea: vk.Rect2D{
			Offset: vk.Offset2D{X: 0, Y: 0},
			Extent: r.extent,
		},
		ClearValueCount: uint32(len(r.clear)),
		PClearValues:    r.clear,
	}
	vk.CmdBeginRenderPass(cmd, &pass, vk.SubpassContentsInline)
	fn(cmd)
	vk.CmdEndRenderPass(cmd)
	return vulkan.Check("vkEndCommandBuffer", vk.EndCommandBuffer(cmd))
}

func (r *resources) submit(slot int) error {
	f := r.frames[slot]
	info := vk.SubmitInfo{
		SType:                vk.StructureTypeSubmitInfo,
		WaitSemaphoreCount:   1,
		PWaitSemaphores:      []vk.Semaphore{f.imageAvailable},
		PWaitDstStageMask:    []vk.PipelineStageFlags{vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit)},
		CommandBufferCount:   1,
		PCommandBuffers:      []vk.CommandBuffer{f.cmd},
		SignalSemaphoreCount: 1,
		PSignalSemaphores:    []vk.Semaphore{f.renderFinished},
	}
	return vulkan.Check("vkQueueSubmit", vk.QueueSubmit(r.queues.Graphics, 1, []vk.SubmitInfo{info}, f.inFlight))
}

func (r *resources) present(slot int, image uint32) error {
	info := vk.PresentInfo{
		SType:              vk.StructureTypePresentInfo,
		WaitSemaphoreCount: 1,
		PWaitSemaphores:    []vk.Semaphore{r.frames[slot].renderFinished},
		SwapchainCount:     1,
		PSwapchains:        []vk.Swapchain{r.swapchain},
		PImageIndices:      []uint32{image},
	}
	return presentStatus(vk.QueuePresent(r.queues.Present, &info))
}

func presentStatus(res vk.Result) error {
	switch res {
	case vk.Success:
		return nil
	case vk.Suboptimal, vk.ErrorOutOfDate:
		return ErrSurfaceInvalid
	}
	return vulkan.Check("vkQueuePresentKHR", res)
}
