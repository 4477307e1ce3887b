package voxels

//go:generate glslc shaders/voxel.vert -o shaders/voxel.vert.spv
//go:generate glslc shaders/voxel.frag -o shaders/voxel.frag.spv

import (
	_ "embed"
	"fmt"
	"path/filepath"

	"github.com/go-gl/mathgl/mgl32"
	vk "github.com/vulkan-go/vulkan"

	"voxel-render/internal/graphics/surface"
	"voxel-render/internal/graphics/vulkan"
	"voxel-render/internal/meshing"
	"voxel-render/internal/profiling"
)

// quadVertices is one face: two triangles, oriented in the vertex shader.
const quadVertices = 6

// NearPlane is the projection's near clip distance.
const NearPlane = 0.1

// Camera supplies the view matrix.
type Camera interface {
	LookMatrix() mgl32.Mat4
}

var (
	//go:embed shaders/voxel.vert.spv
	builtinVertex []byte
	//go:embed shaders/voxel.frag.spv
	builtinFragment []byte
)

// Shaders locates the compiled SPIR-V programs. An empty path selects the
// program built into the binary.
type Shaders struct {
	Vertex   string
	Fragment string
}

// ShadersIn returns the voxel shader paths inside dir, or the built-in
// programs when dir is empty.
func ShadersIn(dir string) Shaders {
	if dir == "" {
		return Shaders{}
	}
	return Shaders{
		Vertex:   filepath.Join(dir, "voxel.vert.spv"),
		Fragment: filepath.Join(dir, "voxel.frag.spv"),
	}
}

// Options configures the pipeline.
type Options struct {
	// FOV is the vertical field of view in degrees.
	FOV       float32
	Wireframe bool
}

// Renderer draws every mesh in a MeshStore with one instanced draw per chunk.
type Renderer struct {
	device   vk.Device
	shaders  Shaders
	opts     Options
	target   surface.Target
	pipeline pipeline
}

type pipeline struct {
	layout vk.PipelineLayout
	handle vk.Pipeline
}

// NewRenderer builds the voxel pipeline for target.
func NewRenderer(dev vulkan.Device, target surface.Target, shaders Shaders, opts Options) (*Renderer, error) {
	if opts.FOV <= 0 {
		opts.FOV = 45
	}
	r := &Renderer{
		device:  dev.Device(),
		shaders: shaders,
		opts:    opts,
		target:  target,
	}
	p, err := r.build(target)
	if err != nil {
		return nil, err
	}
	r.pipeline = p
	return r, nil
}

// Projection returns the current projection matrix.
func (r *Renderer) Projection() mgl32.Mat4 {
	return PerspectiveInfinite(mgl32.DegToRad(r.opts.FOV), r.target.Aspect(), NearPlane)
}

// Render records the draws for every stored mesh. The pipeline is bound
// once; each chunk gets its own projection * view * model push constant.
func (r *Renderer) Render(cmds Commands, store *MeshStore, cam Camera) {
	defer profiling.Track("voxels.Render")()
	cmds.BindPipeline(r.pipeline.handle)
	viewProj := r.Projection().Mul4(cam.LookMatrix())
	store.each(func(m *meshBuffer) {
		if m.faces == 0 {
			return
		}
		cmds.PushMatrix(r.pipeline.layout, viewProj.Mul4(m.transform))
		cmds.BindFaces(m.buf.Handle)
		cmds.Draw(quadVertices, m.faces)
	})
}

// Rebuild recreates the pipeline for a new surface target. The new pipeline
// is built before the old one is destroyed; on error the old one stays.
func (r *Renderer) Rebuild(target surface.Target) error {
	defer profiling.Track("voxels.Rebuild")()
	p, err := r.build(target)
	if err != nil {
		return err
	}
	old := r.pipeline
	r.pipeline = p
	r.target = target
	r.destroyPipeline(old)
	return nil
}

// Destroy releases the pipeline. The device must be idle.
func (r *Renderer) Destroy() {
	r.destroyPipeline(r.pipeline)
	r.pipeline = pipeline{}
}

func (r *Renderer) destroyPipeline(p pipeline) {
	var none pipeline
	if p == none {
		return
	}
	vk.DestroyPipeline(r.device, p.handle, nil)
	vk.DestroyPipelineLayout(r.device, p.layout, nil)
}

func (r *Renderer) build(target surface.Target) (pipeline, error) {
	var p pipeline
	vert, err := loadShader(r.device, r.shaders.Vertex, builtinVertex)
	if err != nil {
		return p, err
	}
	defer vk.DestroyShaderModule(r.device, vert, nil)
	frag, err := loadShader(r.device, r.shaders.Fragment, builtinFragment)
	if err != nil {
		return p, err
	}
	defer vk.DestroyShaderModule(r.device, frag, nil)

	layoutInfo := vk.PipelineLayoutCreateInfo{
		SType:                  vk.StructureTypePipelineLayoutCreateInfo,
		PushConstantRangeCount: 1,
		PPushConstantRanges: []vk.PushConstantRange{{
			StageFlags: vk.ShaderStageFlags(vk.ShaderStageVertexBit),
			Offset:     0,
			Size:       pushConstantSize,
		}},
	}
	if err := vulkan.Check("vkCreatePipelineLayout", vk.CreatePipelineLayout(r.device, &layoutInfo, nil, &p.layout)); err != nil {
		return p, err
	}

	info := r.pipelineInfo(target, p.layout, vert, frag)
	pipelines := make([]vk.Pipeline, 1)
	var cache vk.PipelineCache
	if err := vulkan.Check("vkCreateGraphicsPipelines",
		vk.CreateGraphicsPipelines(r.device, cache, 1, []vk.GraphicsPipelineCreateInfo{info}, nil, pipelines)); err != nil {
		vk.DestroyPipelineLayout(r.device, p.layout, nil)
		return pipeline{}, fmt.Errorf("voxel pipeline: %w", err)
	}
	p.handle = pipelines[0]
	return p, nil
}

func loadShader(device vk.Device, path string, builtin []byte) (vk.ShaderModule, error) {
	if path == "" {
		m, err := vulkan.NewShaderModule(device, builtin)
		if err != nil {
			return m, fmt.Errorf("built-in shader: %w", err)
		}
		return m, nil
	}
	return vulkan.LoadShader(device, path)
}

func (r *Renderer) pipelineInfo(target surface.Target, layout vk.PipelineLayout, vert, frag vk.ShaderModule) vk.GraphicsPipelineCreateInfo {
	stages := []vk.PipelineShaderStageCreateInfo{
		{
			SType:  vk.StructureTypePipelineShaderStageCreateInfo,
			Stage:  vk.ShaderStageVertexBit,
			Module: vert,
			PName:  "main\x00",
		},
		{
			SType:  vk.StructureTypePipelineShaderStageCreateInfo,
			Stage:  vk.ShaderStageFragmentBit,
			Module: frag,
			PName:  "main\x00",
		},
	}

	// One MeshFace per instance: (voxel, location) as two uints.
	vertexInput := vk.PipelineVertexInputStateCreateInfo{
		SType:                         vk.StructureTypePipelineVertexInputStateCreateInfo,
		VertexBindingDescriptionCount: 1,
		PVertexBindingDescriptions: []vk.VertexInputBindingDescription{{
			Binding:   0,
			Stride:    meshing.FaceStride,
			InputRate: vk.VertexInputRateInstance,
		}},
		VertexAttributeDescriptionCount: 1,
		PVertexAttributeDescriptions: []vk.VertexInputAttributeDescription{{
			Location: 0,
			Binding:  0,
			Format:   vk.FormatR32g32Uint,
			Offset:   0,
		}},
	}
	inputAssembly := vk.PipelineInputAssemblyStateCreateInfo{
		SType:                  vk.StructureTypePipelineInputAssemblyStateCreateInfo,
		Topology:               vk.PrimitiveTopologyTriangleList,
		PrimitiveRestartEnable: vk.False,
	}
	viewportState := vk.PipelineViewportStateCreateInfo{
		SType:         vk.StructureTypePipelineViewportStateCreateInfo,
		ViewportCount: 1,
		PViewports: []vk.Viewport{{
			Width:    float32(target.Extent.Width),
			Height:   float32(target.Extent.Height),
			MinDepth: 0,
			MaxDepth: 1,
		}},
		ScissorCount: 1,
		PScissors: []vk.Rect2D{{
			Offset: vk.Offset2D{X: 0, Y: 0},
			Extent: target.Extent,
		}},
	}
	polygonMode := vk.PolygonModeFill
	if r.opts.Wireframe {
		polygonMode = vk.PolygonModeLine
	}
	// The projection flips Y, so outward faces wound counter-clockwise in
	// world space arrive clockwise in framebuffer space.
	rasterizer := vk.PipelineRasterizationStateCreateInfo{
		SType:                   vk.StructureTypePipelineRasterizationStateCreateInfo,
		DepthClampEnable:        vk.False,
		RasterizerDiscardEnable: vk.False,
		PolygonMode:             polygonMode,
		CullMode:                vk.CullModeFlags(vk.CullModeBackBit),
		FrontFace:               vk.FrontFaceClockwise,
		DepthBiasEnable:         vk.False,
		LineWidth:               1,
	}
	multisample := vk.PipelineMultisampleStateCreateInfo{
		SType:                vk.StructureTypePipelineMultisampleStateCreateInfo,
		RasterizationSamples: vk.SampleCount1Bit,
		MinSampleShading:     1,
	}
	depthStencil := vk.PipelineDepthStencilStateCreateInfo{
		SType:            vk.StructureTypePipelineDepthStencilStateCreateInfo,
		DepthTestEnable:  vk.True,
		DepthWriteEnable: vk.True,
		DepthCompareOp:   vk.CompareOpLess,
	}
	colorBlend := vk.PipelineColorBlendStateCreateInfo{
		SType:           vk.StructureTypePipelineColorBlendStateCreateInfo,
		LogicOpEnable:   vk.False,
		AttachmentCount: 1,
		PAttachments: []vk.PipelineColorBlendAttachmentState{{
			BlendEnable:    vk.False,
			ColorWriteMask: vk.ColorComponentFlags(vk.ColorComponentRBit | vk.ColorComponentGBit | vk.ColorComponentBBit | vk.ColorComponentABit),
		}},
	}

	return vk.GraphicsPipelineCreateInfo{
		SType:               vk.StructureTypeGraphicsPipelineCreateInfo,
		StageCount:          uint32(len(stages)),
		PStages:             stages,
		PVertexInputState:   &vertexInput,
		PInputAssemblyState: &inputAssembly,
		PViewportState:      &viewportState,
		PRasterizationState: &rasterizer,
		PMultisampleState:   &multisample,
		PDepthStencilState:  &depthStencil,
		PColorBlendState:    &colorBlend,
		Layout:              layout,
		RenderPass:          target.RenderPass,
		Subpass:             0,
	}
}
