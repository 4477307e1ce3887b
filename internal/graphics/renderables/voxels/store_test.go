package voxels

import (
	"fmt"
	"testing"

	vk "github.com/vulkan-go/vulkan"

	"voxel-render/internal/graphics/vulkan"
	"voxel-render/internal/meshing"
	"voxel-render/internal/world"
)

// fakeAllocator tracks live buffers by ID and records every call.
type fakeAllocator struct {
	nextID  uint64
	live    map[uint64]int
	frees   []uint64
	failNew bool
	data    map[uint64][]byte
}

func newFakeAllocator() *fakeAllocator {
	return &fakeAllocator{live: make(map[uint64]int), data: make(map[uint64][]byte)}
}

func (a *fakeAllocator) CreateBuffer(usage vk.BufferUsageFlagBits, size int, data []byte) (vulkan.Buffer, error) {
	if a.failNew {
		return vulkan.Buffer{}, &vulkan.ResultError{Op: "vkAllocateMemory", Result: vk.ErrorOutOfDeviceMemory}
	}
	if len(data) > size {
		size = len(data)
	}
	a.nextID++
	a.live[a.nextID] = size
	a.data[a.nextID] = append([]byte(nil), data...)
	return vulkan.Buffer{ID: a.nextID, Size: size}, nil
}

func (a *fakeAllocator) Free(b vulkan.Buffer) error {
	if _, ok := a.live[b.ID]; !ok {
		return fmt.Errorf("double free of buffer %d", b.ID)
	}
	delete(a.live, b.ID)
	a.frees = append(a.frees, b.ID)
	return nil
}

func (a *fakeAllocator) Live() int { return len(a.live) }

func singleVoxelMesh(coord world.ChunkCoord) *meshing.Mesh {
	o := world.NewObject()
	o.Set(coord.Origin(), world.Stone)
	return meshing.BuildCoord(o, coord)
}

func TestUploadTwiceReplaces(t *testing.T) {
	alloc := newFakeAllocator()
	s := NewMeshStore(alloc)
	coord := world.ChunkCoord{X: -2, Y: 1}

	if err := s.Upload(singleVoxelMesh(coord)); err != nil {
		t.Fatalf("first upload: %v", err)
	}
	if err := s.Upload(singleVoxelMesh(coord)); err != nil {
		t.Fatalf("second upload: %v", err)
	}
	if s.Count() != 1 {
		t.Fatalf("count: got %d, want 1", s.Count())
	}
	if alloc.Live() != 1 {
		t.Fatalf("live buffers: got %d, want 1", alloc.Live())
	}
	if len(alloc.frees) != 1 || alloc.frees[0] != 1 {
		t.Fatalf("frees: got %v, want the first buffer freed", alloc.frees)
	}
	if got := s.meshes[coord].buf.ID; got != 2 {
		t.Fatalf("installed buffer: got %d, want 2", got)
	}
}

func TestUploadCopiesFaces(t *testing.T) {
	alloc := newFakeAllocator()
	s := NewMeshStore(alloc)
	m := singleVoxelMesh(world.ChunkCoord{})
	if err := s.Upload(m); err != nil {
		t.Fatalf("upload: %v", err)
	}
	data := alloc.data[1]
	if len(data) != 6*meshing.FaceStride {
		t.Fatalf("buffer bytes: got %d, want %d", len(data), 6*meshing.FaceStride)
	}
	// Little-endian voxel id of the first face.
	if data[0] != byte(world.Stone) || data[1] != 0 {
		t.Fatalf("first face voxel bytes: got %v", data[:4])
	}
	if s.Faces() != 6 {
		t.Fatalf("faces: got %d, want 6", s.Faces())
	}
}

func TestUploadEmptyMesh(t *testing.T) {
	alloc := newFakeAllocator()
	s := NewMeshStore(alloc)
	if err := s.Upload(&meshing.Mesh{Coord: world.ChunkCoord{Z: 3}}); err != nil {
		t.Fatalf("upload: %v", err)
	}
	if s.Count() != 1 {
		t.Fatalf("count: got %d, want 1", s.Count())
	}
	if alloc.live[1] < meshing.FaceStride {
		t.Fatalf("empty mesh buffer size: got %d, want at least %d", alloc.live[1], meshing.FaceStride)
	}
}

func TestUploadFailureKeepsOldBuffer(t *testing.T) {
	alloc := newFakeAllocator()
	s := NewMeshStore(alloc)
	coord := world.ChunkCoord{}
	if err := s.Upload(singleVoxelMesh(coord)); err != nil {
		t.Fatalf("upload: %v", err)
	}
	alloc.failNew = true
	err := s.Upload(singleVoxelMesh(coord))
	if !vulkan.IsResult(err, vk.ErrorOutOfDeviceMemory) {
		t.Fatalf("upload error: got %v, want out of device memory", err)
	}
	if s.Count() != 1 || s.meshes[coord].buf.ID != 1 || alloc.Live() != 1 {
		t.Fatal("failed upload disturbed the installed buffer")
	}
}

func TestEvict(t *testing.T) {
	alloc := newFakeAllocator()
	s := NewMeshStore(alloc)
	coord := world.ChunkCoord{Y: 4}
	if err := s.Upload(singleVoxelMesh(coord)); err != nil {
		t.Fatalf("upload: %v", err)
	}
	if ok, err := s.Evict(coord); !ok || err != nil {
		t.Fatalf("evict: got (%v, %v)", ok, err)
	}
	if ok, err := s.Evict(coord); ok || err != nil {
		t.Fatalf("second evict: got (%v, %v), want (false, nil)", ok, err)
	}
	if s.Count() != 0 || alloc.Live() != 0 {
		t.Fatalf("after evict: count %d, live %d", s.Count(), alloc.Live())
	}
}

func TestDestroyFreesOnce(t *testing.T) {
	alloc := newFakeAllocator()
	s := NewMeshStore(alloc)
	for x := int32(0); x < 4; x++ {
		if err := s.Upload(singleVoxelMesh(world.ChunkCoord{X: x})); err != nil {
			t.Fatalf("upload %d: %v", x, err)
		}
	}
	if err := s.Destroy(); err != nil {
		t.Fatalf("destroy: %v", err)
	}
	if err := s.Destroy(); err != nil {
		t.Fatalf("second destroy: %v", err)
	}
	if len(alloc.frees) != 4 || alloc.Live() != 0 {
		t.Fatalf("frees: got %v, live %d", alloc.frees, alloc.Live())
	}
	if err := s.Upload(singleVoxelMesh(world.ChunkCoord{})); err == nil {
		t.Fatal("upload after destroy succeeded")
	}
}

func TestFaceBytesLayout(t *testing.T) {
	faces := []meshing.MeshFace{{Voxel: 0x01020304, Location: 0x0a0b0c0d}}
	b := faceBytes(faces)
	want := []byte{0x04, 0x03, 0x02, 0x01, 0x0d, 0x0c, 0x0b, 0x0a}
	if len(b) != len(want) {
		t.Fatalf("len: got %d, want %d", len(b), len(want))
	}
	for i := range want {
		if b[i] != want[i] {
			t.Fatalf("byte %d: got %#x, want %#x", i, b[i], want[i])
		}
	}
	if faceBytes(nil) != nil {
		t.Fatal("empty faces produced bytes")
	}
}

func TestRetiredBuffersOutliveFramesInFlight(t *testing.T) {
	alloc := newFakeAllocator()
	s := NewMeshStore(alloc)
	s.SetFramesInFlight(2)
	coord := world.ChunkCoord{X: 1}

	if err := s.Upload(singleVoxelMesh(coord)); err != nil {
		t.Fatalf("first upload: %v", err)
	}
	if err := s.Upload(singleVoxelMesh(coord)); err != nil {
		t.Fatalf("second upload: %v", err)
	}
	if alloc.Live() != 2 || len(alloc.frees) != 0 {
		t.Fatalf("replaced buffer freed while frames may read it: live %d, frees %v", alloc.Live(), alloc.frees)
	}

	if err := s.EndFrame(); err != nil {
		t.Fatal(err)
	}
	if alloc.Live() != 2 {
		t.Fatalf("after one frame: live %d, want 2", alloc.Live())
	}
	if err := s.EndFrame(); err != nil {
		t.Fatal(err)
	}
	if alloc.Live() != 1 || len(alloc.frees) != 1 || alloc.frees[0] != 1 {
		t.Fatalf("after two frames: live %d, frees %v", alloc.Live(), alloc.frees)
	}
	if s.Count() != 1 {
		t.Fatalf("count: got %d, want 1", s.Count())
	}
}

func TestEvictRetiresAndDestroyFreesRetired(t *testing.T) {
	alloc := newFakeAllocator()
	s := NewMeshStore(alloc)
	s.SetFramesInFlight(3)
	coord := world.ChunkCoord{Z: -1}
	if err := s.Upload(singleVoxelMesh(coord)); err != nil {
		t.Fatalf("upload: %v", err)
	}
	if ok, err := s.Evict(coord); !ok || err != nil {
		t.Fatalf("evict: got (%v, %v)", ok, err)
	}
	if s.Count() != 0 || alloc.Live() != 1 {
		t.Fatalf("after evict: count %d, live %d", s.Count(), alloc.Live())
	}
	if err := s.Destroy(); err != nil {
		t.Fatalf("destroy: %v", err)
	}
	if alloc.Live() != 0 || len(alloc.frees) != 1 {
		t.Fatalf("after destroy: live %d, frees %v", alloc.Live(), alloc.frees)
	}
}
