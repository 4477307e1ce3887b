package vulkan

import (
	"fmt"
	"sync/atomic"
	"unsafe"

	vk "github.com/vulkan-go/vulkan"
)

// Buffer is a device buffer with its dedicated memory. ID is unique per
// allocation and is what Free checks against the live set.
type Buffer struct {
	ID     uint64
	Handle vk.Buffer
	Memory vk.DeviceMemory
	Size   int
}

// Allocator creates and frees host-visible buffers.
type Allocator interface {
	// CreateBuffer allocates a buffer of at least len(data) bytes (minimum
	// size bytes) with the given usage and copies data into it.
	CreateBuffer(usage vk.BufferUsageFlagBits, size int, data []byte) (Buffer, error)
	// Free releases b. Freeing a buffer that is not live is an error and
	// does not touch the device.
	Free(b Buffer) error
	// Live returns the number of buffers not yet freed.
	Live() int
}

// deviceAllocator gives every buffer its own host-visible, coherent
// allocation. Chunk meshes are few and large, so one allocation per buffer
// stays well inside maxMemoryAllocationCount.
type deviceAllocator struct {
	device   vk.Device
	physical vk.PhysicalDevice
	nextID   atomic.Uint64
	live     map[uint64]struct{}
}

func newDeviceAllocator(device vk.Device, physical vk.PhysicalDevice) *deviceAllocator {
	return &deviceAllocator{
		device:   device,
		physical: physical,
		live:     make(map[uint64]struct{}),
	}
}

func (a *deviceAllocator) CreateBuffer(usage vk.BufferUsageFlagBits, size int, data []byte) (Buffer, error) {
	if len(data) > size {
		size = len(data)
	}
	if size <= 0 {
		return Buffer{}, fmt.Errorf("create buffer: invalid size %d", size)
	}

	var rel Releaser
	info := vk.BufferCreateInfo{
		SType:       vk.StructureTypeBufferCreateInfo,
		Size:        vk.DeviceSize(size),
		Usage:       vk.BufferUsageFlags(usage),
		SharingMode: vk.SharingModeExclusive,
	}
	var buf vk.Buffer
	if err := Check("vkCreateBuffer", vk.CreateBuffer(a.device, &info, nil, &buf)); err != nil {
		return Buffer{}, err
	}
	rel.Defer(func() { vk.DestroyBuffer(a.device, buf, nil) })

	var reqs vk.MemoryRequirements
	vk.GetBufferMemoryRequirements(a.device, buf, &reqs)
	reqs.Deref()

	typeIndex, err := FindMemoryType(a.physical, reqs.MemoryTypeBits,
		vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit|vk.MemoryPropertyHostCoherentBit))
	if err != nil {
		rel.Release()
		return Buffer{}, err
	}

	alloc := vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		AllocationSize:  reqs.Size,
		MemoryTypeIndex: typeIndex,
	}
	var mem vk.DeviceMemory
	if err := Check("vkAllocateMemory", vk.AllocateMemory(a.device, &alloc, nil, &mem)); err != nil {
		rel.Release()
		return Buffer{}, err
	}
	rel.Defer(func() { vk.FreeMemory(a.device, mem, nil) })

	if err := Check("vkBindBufferMemory", vk.BindBufferMemory(a.device, buf, mem, 0)); err != nil {
		rel.Release()
		return Buffer{}, err
	}

	if len(data) > 0 {
		var ptr unsafe.Pointer
		if err := Check("vkMapMemory", vk.MapMemory(a.device, mem, 0, vk.DeviceSize(len(data)), 0, &ptr)); err != nil {
			rel.Release()
			return Buffer{}, err
		}
		vk.Memcopy(ptr, data)
		vk.UnmapMemory(a.device, mem)
	}

	id := a.nextID.Add(1)
	a.live[id] = struct{}{}
	return Buffer{ID: id, Handle: buf, Memory: mem, Size: size}, nil
}

func (a *deviceAllocator) Free(b Buffer) error {
	if _, ok := a.live[b.ID]; !ok {
		return fmt.Errorf("free buffer %d: not live", b.ID)
	}
	delete(a.live, b.ID)
	vk.DestroyBuffer(a.device, b.Handle, nil)
	vk.FreeMemory(a.device, b.Memory, nil)
	return nil
}

func (a *deviceAllocator) Live() int {
	return len(a.live)
}

// FindMemoryType returns the first memory type allowed by typeBits that has
// every property in props.
func FindMemoryType(physical vk.PhysicalDevice, typeBits uint32, props vk.MemoryPropertyFlags) (uint32, error) {
	var mp vk.PhysicalDeviceMemoryProperties
	vk.GetPhysicalDeviceMemoryProperties(physical, &mp)
	mp.Deref()

	for i := uint32(0); i < mp.MemoryTypeCount; i++ {
		mp.MemoryTypes[i].Deref()
		if typeBits&(1<<i) != 0 && mp.MemoryTypes[i].PropertyFlags&props == props {
			return i, nil
		}
	}
	return 0, fmt.Errorf("no memory type for bits %#x with properties %#x", typeBits, props)
}
