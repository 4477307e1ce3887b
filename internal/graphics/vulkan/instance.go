package vulkan

import (
	"fmt"
	"log"

	"github.com/go-gl/glfw/v3.3/glfw"
	vk "github.com/vulkan-go/vulkan"
)

const validationLayer = "VK_LAYER_KHRONOS_validation"

// Queues identifies the graphics and present queues and their families.
// The two may be the same queue.
type Queues struct {
	Graphics       vk.Queue
	Present        vk.Queue
	GraphicsFamily uint32
	PresentFamily  uint32
}

// Shared reports whether graphics and present use one queue family.
func (q Queues) Shared() bool {
	return q.GraphicsFamily == q.PresentFamily
}

// Device is the read-only capability handed to the mesh store, renderer and
// swapchain: a logical device plus its allocator.
type Device interface {
	Device() vk.Device
	Allocator() Allocator
}

// PresentDevice adds what the swapchain needs to negotiate with a surface.
type PresentDevice interface {
	Device
	PhysicalDevice() vk.PhysicalDevice
	Surface() vk.Surface
	Queues() Queues
}

// Options configures instance and device creation.
type Options struct {
	AppName    string
	Validation bool
	// Debug receives validation messages. Nil uses LogSink with the default logger.
	Debug DebugSink
	// Wireframe requests the fillModeNonSolid feature.
	Wireframe bool
}

// Instance owns the Vulkan instance, window surface, logical device and
// allocator. It implements PresentDevice.
type Instance struct {
	instance  vk.Instance
	physical  vk.PhysicalDevice
	device    vk.Device
	surface   vk.Surface
	queues    Queues
	allocator *deviceAllocator
	name      string
	wireframe bool
	rel       Releaser
}

// Init loads the Vulkan loader through GLFW. Call once after glfw.Init.
func Init() error {
	if !glfw.VulkanSupported() {
		return fmt.Errorf("vulkan: no loader found")
	}
	vk.SetGetInstanceProcAddr(glfw.GetVulkanGetInstanceProcAddress())
	if err := vk.Init(); err != nil {
		return fmt.Errorf("vulkan: init: %w", err)
	}
	return nil
}

// NewInstance creates the instance, a surface for window, and a logical
// device with graphics and present queues.
func NewInstance(window *glfw.Window, opts Options) (*Instance, error) {
	if opts.AppName == "" {
		opts.AppName = "voxel-render"
	}
	if opts.Debug == nil {
		opts.Debug = LogSink{Logger: log.Default()}
	}
	inst := &Instance{name: opts.AppName}

	extensions := window.GetRequiredInstanceExtensions()
	var layers []string
	if opts.Validation {
		extensions = append(extensions, "VK_EXT_debug_report")
		layers = append(layers, validationLayer)
	}

	appInfo := vk.ApplicationInfo{
		SType:              vk.StructureTypeApplicationInfo,
		PApplicationName:   cstr(opts.AppName),
		ApplicationVersion: vk.MakeVersion(0, 1, 0),
		PEngineName:        cstr("voxel-render"),
		EngineVersion:      vk.MakeVersion(0, 1, 0),
		ApiVersion:         vk.MakeVersion(1, 0, 0),
	}
	info := vk.InstanceCreateInfo{
		SType:                   vk.StructureTypeInstanceCreateInfo,
		PApplicationInfo:        &appInfo,
		EnabledExtensionCount:   uint32(len(extensions)),
		PpEnabledExtensionNames: cstrs(extensions),
		EnabledLayerCount:       uint32(len(layers)),
		PpEnabledLayerNames:     cstrs(layers),
	}
	if err := Check("vkCreateInstance", vk.CreateInstance(&info, nil, &inst.instance)); err != nil {
		return nil, err
	}
	inst.rel.Defer(func() { vk.DestroyInstance(inst.instance, nil) })
	if err := vk.InitInstance(inst.instance); err != nil {
		inst.rel.Release()
		return nil, fmt.Errorf("vulkan: init instance: %w", err)
	}

	if opts.Validation {
		cb, err := installDebugReport(inst.instance, opts.Debug)
		if err != nil {
			// Validation is a debugging aid; run without it.
			log.Printf("vulkan: debug report unavailable: %v", err)
		} else {
			inst.rel.Defer(func() { vk.DestroyDebugReportCallback(inst.instance, cb, nil) })
		}
	}

	surfacePtr, err := window.CreateWindowSurface(inst.instance, nil)
	if err != nil {
		inst.rel.Release()
		return nil, fmt.Errorf("vulkan: create window surface: %w", err)
	}
	inst.surface = vk.SurfaceFromPointer(surfacePtr)
	inst.rel.Defer(func() { vk.DestroySurface(inst.instance, inst.surface, nil) })

	if err := inst.pickPhysicalDevice(); err != nil {
		inst.rel.Release()
		return nil, err
	}
	if err := inst.createDevice(opts); err != nil {
		inst.rel.Release()
		return nil, err
	}
	inst.allocator = newDeviceAllocator(inst.device, inst.physical)
	return inst, nil
}

type candidate struct {
	physical vk.PhysicalDevice
	name     string
	discrete bool
	graphics uint32
	present  uint32
}

func (inst *Instance) pickPhysicalDevice() error {
	var count uint32
	if err := Check("vkEnumeratePhysicalDevices", vk.EnumeratePhysicalDevices(inst.instance, &count, nil)); err != nil {
		return err
	}
	if count == 0 {
		return fmt.Errorf("vulkan: no physical devices")
	}
	devices := make([]vk.PhysicalDevice, count)
	if err := Check("vkEnumeratePhysicalDevices", vk.EnumeratePhysicalDevices(inst.instance, &count, devices)); err != nil {
		return err
	}

	var best *candidate
	for _, pd := range devices {
		c, ok := inst.inspect(pd)
		if !ok {
			continue
		}
		if best == nil || (c.discrete && !best.discrete) {
			best = &c
		}
	}
	if best == nil {
		return fmt.Errorf("vulkan: no device with graphics and present support")
	}

	inst.physical = best.physical
	inst.queues.GraphicsFamily = best.graphics
	inst.queues.PresentFamily = best.present
	log.Printf("vulkan: using %s (graphics family %d, present family %d)", best.name, best.graphics, best.present)
	return nil
}

func (inst *Instance) inspect(pd vk.PhysicalDevice) (candidate, bool) {
	var props vk.PhysicalDeviceProperties
	vk.GetPhysicalDeviceProperties(pd, &props)
	props.Deref()

	var n uint32
	vk.GetPhysicalDeviceQueueFamilyProperties(pd, &n, nil)
	families := make([]vk.QueueFamilyProperties, n)
	vk.GetPhysicalDeviceQueueFamilyProperties(pd, &n, families)

	graphics, present := -1, -1
	for i := range families {
		families[i].Deref()
		if graphics < 0 && families[i].QueueFlags&vk.QueueFlags(vk.QueueGraphicsBit) != 0 {
			graphics = i
		}
		var supported vk.Bool32
		vk.GetPhysicalDeviceSurfaceSupport(pd, uint32(i), inst.surface, &supported)
		if supported == vk.True {
			// Prefer a family that does both.
			if present < 0 || i == graphics {
				present = i
			}
		}
	}
	if graphics < 0 || present < 0 {
		return candidate{}, false
	}
	return candidate{
		physical: pd,
		name:     vk.ToString(props.DeviceName[:]),
		discrete: props.DeviceType == vk.PhysicalDeviceTypeDiscreteGpu,
		graphics: uint32(graphics),
		present:  uint32(present),
	}, true
}

func (inst *Instance) createDevice(opts Options) error {
	priorities := []float32{1}
	queueInfos := []vk.DeviceQueueCreateInfo{{
		SType:            vk.StructureTypeDeviceQueueCreateInfo,
		QueueFamilyIndex: inst.queues.GraphicsFamily,
		QueueCount:       1,
		PQueuePriorities: priorities,
	}}
	if !inst.queues.Shared() {
		queueInfos = append(queueInfos, vk.DeviceQueueCreateInfo{
			SType:            vk.StructureTypeDeviceQueueCreateInfo,
			QueueFamilyIndex: inst.queues.PresentFamily,
			QueueCount:       1,
			PQueuePriorities: priorities,
		})
	}

	var available vk.PhysicalDeviceFeatures
	vk.GetPhysicalDeviceFeatures(inst.physical, &available)
	available.Deref()
	var features vk.PhysicalDeviceFeatures
	if opts.Wireframe {
		if available.FillModeNonSolid == vk.True {
			features.FillModeNonSolid = vk.True
			inst.wireframe = true
		} else {
			log.Printf("vulkan: device lacks fillModeNonSolid, wireframe disabled")
		}
	}

	extensions := []string{"VK_KHR_swapchain"}
	info := vk.DeviceCreateInfo{
		SType:                   vk.StructureTypeDeviceCreateInfo,
		QueueCreateInfoCount:    uint32(len(queueInfos)),
		PQueueCreateInfos:       queueInfos,
		EnabledExtensionCount:   uint32(len(extensions)),
		PpEnabledExtensionNames: cstrs(extensions),
		PEnabledFeatures:        []vk.PhysicalDeviceFeatures{features},
	}
	if err := Check("vkCreateDevice", vk.CreateDevice(inst.physical, &info, nil, &inst.device)); err != nil {
		return err
	}
	inst.rel.Defer(func() { vk.DestroyDevice(inst.device, nil) })

	vk.GetDeviceQueue(inst.device, inst.queues.GraphicsFamily, 0, &inst.queues.Graphics)
	vk.GetDeviceQueue(inst.device, inst.queues.PresentFamily, 0, &inst.queues.Present)
	return nil
}

// Device returns the logical device.
func (inst *Instance) Device() vk.Device { return inst.device }

// Allocator returns the buffer allocator bound to the device.
func (inst *Instance) Allocator() Allocator { return inst.allocator }

func (inst *Instance) PhysicalDevice() vk.PhysicalDevice { return inst.physical }
func (inst *Instance) Surface() vk.Surface               { return inst.surface }
func (inst *Instance) Queues() Queues                    { return inst.queues }

// SupportsWireframe reports whether line rasterization was enabled on the device.
func (inst *Instance) SupportsWireframe() bool { return inst.wireframe }

// WaitIdle blocks until the device has finished all submitted work.
func (inst *Instance) WaitIdle() error {
	return Check("vkDeviceWaitIdle", vk.DeviceWaitIdle(inst.device))
}

// Destroy releases the device, surface and instance. Every object created
// from the device must already be gone.
func (inst *Instance) Destroy() {
	if inst.allocator != nil && inst.allocator.Live() > 0 {
		log.Printf("vulkan: destroying device with %d live buffers", inst.allocator.Live())
	}
	inst.rel.Release()
}

func cstr(s string) string {
	return s + "\x00"
}

func cstrs(ss []string) []string {
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = cstr(s)
	}
	return out
}
