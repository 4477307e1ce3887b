package surface

import (
	"fmt"

	vk "github.com/vulkan-go/vulkan"

	"voxel-render/internal/graphics/vulkan"
)

// frameSync is one frame-in-flight slot.
type frameSync struct {
	inFlight       vk.Fence
	imageAvailable vk.Semaphore
	renderFinished vk.Semaphore
	cmd            vk.CommandBuffer
}

// resources is everything that depends on the surface size. It is built as a
// unit and destroyed as a unit; Rebuild replaces the whole value.
type resources struct {
	device      vk.Device
	queues      vulkan.Queues
	swapchain   vk.Swapchain
	format      vk.SurfaceFormat
	presentMode vk.PresentMode
	extent      vk.Extent2D
	renderPass  vk.RenderPass
	images      []vk.Image
	framebuffer []vk.Framebuffer
	pool        vk.CommandPool
	frames      []frameSync
	clear       []vk.ClearValue
	rel         vulkan.Releaser
}

func buildResources(dev vulkan.PresentDevice, width, height uint32, old vk.Swapchain, opts Options) (*resources, error) {
	s, err := querySupport(dev.PhysicalDevice(), dev.Surface())
	if err != nil {
		return nil, err
	}
	r := &resources{
		device:      dev.Device(),
		queues:      dev.Queues(),
		format:      chooseFormat(s.formats),
		presentMode: choosePresentMode(s.modes, opts.VSync),
		extent:      chooseExtent(s.caps.MinImageExtent, s.caps.MaxImageExtent, width, height),
		clear: []vk.ClearValue{
			vk.NewClearValue(opts.ClearColor[:]),
			vk.NewClearDepthStencil(1, 0),
		},
	}
	if r.extent.Width == 0 || r.extent.Height == 0 {
		return nil, fmt.Errorf("surface: zero extent %dx%d", r.extent.Width, r.extent.Height)
	}

	steps := []struct {
		name string
		fn   func() error
	}{
		{"render pass", r.createRenderPass},
		{"swapchain", func() error { return r.createSwapchain(dev.Surface(), s.caps, old) }},
		{"framebuffers", func() error { return r.createFramebuffers(dev.PhysicalDevice()) }},
		{"frames", func() error { return r.createFrames(opts.FramesInFlight) }},
	}
	for _, step := range steps {
		if err := step.fn(); err != nil {
			r.rel.Release()
			return nil, fmt.Errorf("surface: %s: %w", step.name, err)
		}
	}
	return r, nil
}

func (r *resources) destroy() {
	r.rel.Release()
}

func (r *resources) createRenderPass() error {
	attachments := []vk.AttachmentDescription{
		{
			Format:         r.format.Format,
			Samples:        vk.SampleCount1Bit,
			LoadOp:         vk.AttachmentLoadOpClear,
			StoreOp:        vk.AttachmentStoreOpStore,
			StencilLoadOp:  vk.AttachmentLoadOpDontCare,
			StencilStoreOp: vk.AttachmentStoreOpDontCare,
			InitialLayout:  vk.ImageLayoutUndefined,
			FinalLayout:    vk.ImageLayoutPresentSrc,
		},
		{
			Format:         DepthFormat,
			Samples:        vk.SampleCount1Bit,
			LoadOp:         vk.AttachmentLoadOpClear,
			StoreOp:        vk.AttachmentStoreOpDontCare,
			StencilLoadOp:  vk.AttachmentLoadOpDontCare,
			StencilStoreOp: vk.AttachmentStoreOpDontCare,
			InitialLayout:  vk.ImageLayoutUndefined,
			FinalLayout:    vk.ImageLayoutDepthStencilAttachmentOptimal,
		},
	}
	colorRef := vk.AttachmentReference{Attachment: 0, Layout: vk.ImageLayoutColorAttachmentOptimal}
	depthRef := vk.AttachmentReference{Attachment: 1, Layout: vk.ImageLayoutDepthStencilAttachmentOptimal}
	subpass := vk.SubpassDescription{
		PipelineBindPoint:       vk.PipelineBindPointGraphics,
		ColorAttachmentCount:    1,
		PColorAttachments:       []vk.AttachmentReference{colorRef},
		PDepthStencilAttachment: &depthRef,
	}
	stages := vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit | vk.PipelineStageEarlyFragmentTestsBit)
	dependency := vk.SubpassDependency{
		SrcSubpass:    vk.SubpassExternal,
		DstSubpass:    0,
		SrcStageMask:  stages,
		DstStageMask:  stages,
		DstAccessMask: vk.AccessFlags(vk.AccessColorAttachmentWriteBit | vk.AccessDepthStencilAttachmentWriteBit),
	}
	info := vk.RenderPassCreateInfo{
		SType:           vk.StructureTypeRenderPassCreateInfo,
		AttachmentCount: uint32(len(attachments)),
		PAttachments:    attachments,
		SubpassCount:    1,
		PSubpasses:      []vk.SubpassDescription{subpass},
		DependencyCount: 1,
		PDependencies:   []vk.SubpassDependency{dependency},
	}
	if err := vulkan.Check("vkCreateRenderPass", vk.CreateRenderPass(r.device, &info, nil, &r.renderPass)); err != nil {
		return err
	}
	rp := r.renderPass
	r.rel.Defer(func() { vk.DestroyRenderPass(r.device, rp, nil) })
	return nil
}

func (r *resources) createSwapchain(surface vk.Surface, caps vk.SurfaceCapabilities, old vk.Swapchain) error {
	info := vk.SwapchainCreateInfo{
		SType:            vk.StructureTypeSwapchainCreateInfo,
		Surface:          surface,
		MinImageCount:    chooseImageCount(caps.MinImageCount, caps.MaxImageCount),
		ImageFormat:      r.format.Format,
		ImageColorSpace:  r.format.ColorSpace,
		ImageExtent:      r.extent,
		ImageArrayLayers: 1,
		ImageUsage:       vk.ImageUsageFlags(vk.ImageUsageColorAttachmentBit),
		ImageSharingMode: vk.SharingModeExclusive,
		PreTransform:     caps.CurrentTransform,
		CompositeAlpha:   chooseCompositeAlpha(caps.SupportedCompositeAlpha),
		PresentMode:      r.presentMode,
		Clipped:          vk.True,
		OldSwapchain:     old,
	}
	if !r.queues.Shared() {
		info.ImageSharingMode = vk.SharingModeConcurrent
		info.QueueFamilyIndexCount = 2
		info.PQueueFamilyIndices = []uint32{r.queues.GraphicsFamily, r.queues.PresentFamily}
	}
	if err := vulkan.Check("vkCreateSwapchainKHR", vk.CreateSwapchain(r.device, &info, nil, &r.swapchain)); err != nil {
		return err
	}
	sc := r.swapchain
	r.rel.Defer(func() { vk.DestroySwapchain(r.device, sc, nil) })

	var n uint32
	if err := vulkan.Check("vkGetSwapchainImagesKHR", vk.GetSwapchainImages(r.device, sc, &n, nil)); err != nil {
		return err
	}
	r.images = make([]vk.Image, n)
	return vulkan.Check("vkGetSwapchainImagesKHR", vk.GetSwapchainImages(r.device, sc, &n, r.images))
}

// createFramebuffers builds the shared depth buffer and one view plus
// framebuffer per swapchain image.
func (r *resources) createFramebuffers(physical vk.PhysicalDevice) error {
	depthView, err := r.createDepth(physical)
	if err != nil {
		return err
	}
	r.framebuffer = make([]vk.Framebuffer, len(r.images))
	for i, img := range r.images {
		view, err := r.createView(img, r.format.Format, vk.ImageAspectColorBit)
		if err != nil {
			return err
		}
		attachments := []vk.ImageView{view, depthView}
		info := vk.FramebufferCreateInfo{
			SType:           vk.StructureTypeFramebufferCreateInfo,
			RenderPass:      r.renderPass,
			AttachmentCount: uint32(len(attachments)),
			PAttachments:    attachments,
			Width:           r.extent.Width,
			Height:          r.extent.Height,
			Layers:          1,
		}
		var fb vk.Framebuffer
		if err := vulkan.Check("vkCreateFramebuffer", vk.CreateFramebuffer(r.device, &info, nil, &fb)); err != nil {
			return err
		}
		r.rel.Defer(func() { vk.DestroyFramebuffer(r.device, fb, nil) })
		r.framebuffer[i] = fb
	}
	return nil
}

func (r *resources) createDepth(physical vk.PhysicalDevice) (vk.ImageView, error) {
	var view vk.ImageView
	info := vk.ImageCreateInfo{
		SType:     vk.StructureTypeImageCreateInfo,
		ImageType: vk.ImageType2d,
		Format:    DepthFormat,
		Extent: vk.Extent3D{
			Width:  r.extent.Width,
			Height: r.extent.Height,
			Depth:  1,
		},
		MipLevels:     1,
		ArrayLayers:   1,
		Samples:       vk.SampleCount1Bit,
		Tiling:        vk.ImageTilingOptimal,
		Usage:         vk.ImageUsageFlags(vk.ImageUsageDepthStencilAttachmentBit),
		SharingMode:   vk.SharingModeExclusive,
		InitialLayout: vk.ImageLayoutUndefined,
	}
	var img vk.Image
	if err := vulkan.Check("vkCreateImage", vk.CreateImage(r.device, &info, nil, &img)); err != nil {
		return view, err
	}
	r.rel.Defer(func() { vk.DestroyImage(r.device, img, nil) })

	var reqs vk.MemoryRequirements
	vk.GetImageMemoryRequirements(r.device, img, &reqs)
	reqs.Deref()
	typeIndex, err := vulkan.FindMemoryType(physical, reqs.MemoryTypeBits, vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit))
	if err != nil {
		return view, err
	}
	alloc := vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		AllocationSize:  reqs.Size,
		MemoryTypeIndex: typeIndex,
	}
	var mem vk.DeviceMemory
	if err := vulkan.Check("vkAllocateMemory", vk.AllocateMemory(r.device, &alloc, nil, &mem)); err != nil {
		return view, err
	}
	r.rel.Defer(func() { vk.FreeMemory(r.device, mem, nil) })
	if err := vulkan.Check("vkBindImageMemory", vk.BindImageMemory(r.device, img, mem, 0)); err != nil {
		return view, err
	}
	return r.createView(img, DepthFormat, vk.ImageAspectDepthBit)
}

func (r *resources) createView(img vk.Image, format vk.Format, aspect vk.ImageAspectFlagBits) (vk.ImageView, error) {
	info := vk.ImageViewCreateInfo{
		SType:    vk.StructureTypeImageViewCreateInfo,
		Image:    img,
		ViewType: vk.ImageViewType2d,
		Format:   format,
		Components: vk.ComponentMapping{
			R: vk.ComponentSwizzleIdentity,
			G: vk.ComponentSwizzleIdentity,
			B: vk.ComponentSwizzleIdentity,
			A: vk.ComponentSwizzleIdentity,
		},
		SubresourceRange: vk.ImageSubresourceRange{
			AspectMask: vk.ImageAspectFlags(aspect),
			LevelCount: 1,
			LayerCount: 1,
		},
	}
	var view vk.ImageView
	if err := vulkan.Check("vkCreateImageView", vk.CreateImageView(r.device, &info, nil, &view)); err != nil {
		return view, err
	}
	r.rel.Defer(func() { vk.DestroyImageView(r.device, view, nil) })
	return view, nil
}

// createFrames builds the command pool and the frame-in-flight ring. Fences
// start signaled so the first wait on each slot returns immediately.
func (r *resources) createFrames(n int) error {
	poolInfo := vk.CommandPoolCreateInfo{
		SType:            vk.StructureTypeCommandPoolCreateInfo,
		Flags:            vk.CommandPoolCreateFlags(vk.CommandPoolCreateResetCommandBufferBit),
		QueueFamilyIndex: r.queues.GraphicsFamily,
	}
	if err := vulkan.Check("vkCreateCommandPool", vk.CreateCommandPool(r.device, &poolInfo, nil, &r.pool)); err != nil {
		return err
	}
	pool := r.pool
	r.rel.Defer(func() { vk.DestroyCommandPool(r.device, pool, nil) })

	cmds := make([]vk.CommandBuffer, n)
	allocInfo := vk.CommandBufferAllocateInfo{
		SType:              vk.StructureTypeCommandBufferAllocateInfo,
		CommandPool:        pool,
		Level:              vk.CommandBufferLevelPrimary,
		CommandBufferCount: uint32(n),
	}
	if err := vulkan.Check("vkAllocateCommandBuffers", vk.AllocateCommandBuffers(r.device, &allocInfo, cmds)); err != nil {
		return err
	}

	r.frames = make([]frameSync, n)
	for i := range r.frames {
		f := &r.frames[i]
		f.cmd = cmds[i]
		fenceInfo := vk.FenceCreateInfo{
			SType: vk.StructureTypeFenceCreateInfo,
			Flags: vk.FenceCreateFlags(vk.FenceCreateSignaledBit),
		}
		if err := vulkan.Check("vkCreateFence", vk.CreateFence(r.device, &fenceInfo, nil, &f.inFlight)); err != nil {
			return err
		}
		fence := f.inFlight
		r.rel.Defer(func() { vk.DestroyFence(r.device, fence, nil) })

		for _, sem := range []*vk.Semaphore{&f.imageAvailable, &f.renderFinished} {
			semInfo := vk.SemaphoreCreateInfo{SType: vk.StructureTypeSemaphoreCreateInfo}
			if err := vulkan.Check("vkCreateSemaphore", vk.CreateSemaphore(r.device, &semInfo, nil, sem)); err != nil {
				return err
			}
			s := *sem
			r.rel.Defer(func() { vk.DestroySemaphore(r.device, s, nil) })
		}
	}
	return nil
}
