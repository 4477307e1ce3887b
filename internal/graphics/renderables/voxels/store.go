package voxels

import (
	"fmt"
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"
	vk "github.com/vulkan-go/vulkan"

	"voxel-render/internal/graphics/vulkan"
	"voxel-render/internal/meshing"
	"voxel-render/internal/profiling"
	"voxel-render/internal/world"
)

// meshBuffer is the GPU copy of one chunk's faces.
type meshBuffer struct {
	buf       vulkan.Buffer
	faces     uint32
	transform mgl32.Mat4
}

// retiredBuffer is a replaced buffer that frames still in flight may read.
type retiredBuffer struct {
	buf vulkan.Buffer
	age int
}

// MeshStore owns one vertex buffer per chunk coordinate.
type MeshStore struct {
	alloc     vulkan.Allocator
	meshes    map[world.ChunkCoord]*meshBuffer
	inFlight  int
	retired   []retiredBuffer
	destroyed bool
}

// NewMeshStore creates an empty store allocating through alloc.
func NewMeshStore(alloc vulkan.Allocator) *MeshStore {
	return &MeshStore{
		alloc:  alloc,
		meshes: make(map[world.ChunkCoord]*meshBuffer),
	}
}

// SetFramesInFlight makes replaced and evicted buffers outlive the next n
// calls to EndFrame. With n == 0 (the default) they are freed at once, which
// is only safe while the device is idle.
func (s *MeshStore) SetFramesInFlight(n int) {
	s.inFlight = max(n, 0)
}

// Upload copies mesh into a new buffer and installs it under mesh.Coord.
// A buffer already stored for that coordinate is retired only after the new
// one is in place. Empty meshes still get an entry; they are never drawn.
func (s *MeshStore) Upload(mesh *meshing.Mesh) error {
	defer profiling.Track("voxels.Upload")()
	if s.destroyed {
		return fmt.Errorf("upload chunk %v: store destroyed", mesh.Coord)
	}

	data := faceBytes(mesh.Faces)
	buf, err := s.alloc.CreateBuffer(vk.BufferUsageVertexBufferBit, meshing.FaceStride, data)
	if err != nil {
		return fmt.Errorf("upload chunk %v (%d faces): %w", mesh.Coord, len(mesh.Faces), err)
	}

	prev := s.meshes[mesh.Coord]
	s.meshes[mesh.Coord] = &meshBuffer{
		buf:       buf,
		faces:     uint32(len(mesh.Faces)),
		transform: mesh.Coord.Transform(),
	}
	if prev != nil {
		if err := s.retire(prev.buf); err != nil {
			return fmt.Errorf("upload chunk %v: free replaced buffer: %w", mesh.Coord, err)
		}
	}
	return nil
}

func (s *MeshStore) retire(buf vulkan.Buffer) error {
	if s.inFlight == 0 {
		return s.alloc.Free(buf)
	}
	s.retired = append(s.retired, retiredBuffer{buf: buf})
	return nil
}

// EndFrame ages retired buffers by one submitted frame and frees those no
// frame slot can still reference.
func (s *MeshStore) EndFrame() error {
	var first error
	kept := s.retired[:0]
	for _, r := range s.retired {
		r.age++
		if r.age < s.inFlight {
			kept = append(kept, r)
			continue
		}
		if err := s.alloc.Free(r.buf); err != nil && first == nil {
			first = fmt.Errorf("free retired buffer %d: %w", r.buf.ID, err)
		}
	}
	clear(s.retired[len(kept):])
	s.retired = kept
	return first
}

// ReleaseRetired frees every retired buffer. The device must be idle.
func (s *MeshStore) ReleaseRetired() error {
	var first error
	for _, r := range s.retired {
		if err := s.alloc.Free(r.buf); err != nil && first == nil {
			first = fmt.Errorf("free retired buffer %d: %w", r.buf.ID, err)
		}
	}
	s.retired = nil
	return first
}

// Count returns the number of stored chunk meshes.
func (s *MeshStore) Count() int {
	return len(s.meshes)
}

// Faces returns the total face count across all meshes.
func (s *MeshStore) Faces() int {
	n := 0
	for _, m := range s.meshes {
		n += int(m.faces)
	}
	return n
}

// Evict frees the mesh stored at coord. It reports whether one was stored.
func (s *MeshStore) Evict(coord world.ChunkCoord) (bool, error) {
	m, ok := s.meshes[coord]
	if !ok {
		return false, nil
	}
	delete(s.meshes, coord)
	if err := s.retire(m.buf); err != nil {
		return true, fmt.Errorf("evict chunk %v: %w", coord, err)
	}
	return true, nil
}

// Destroy frees every buffer, retired ones included. The device must be
// idle. Calling it again does nothing.
func (s *MeshStore) Destroy() error {
	if s.destroyed {
		return nil
	}
	s.destroyed = true
	first := s.ReleaseRetired()
	for coord, m := range s.meshes {
		if err := s.alloc.Free(m.buf); err != nil && first == nil {
			first = fmt.Errorf("destroy chunk %v: %w", coord, err)
		}
	}
	clear(s.meshes)
	return first
}

func (s *MeshStore) each(fn func(*meshBuffer)) {
	for _, m := range s.meshes {
		fn(m)
	}
}

// faceBytes views faces as raw bytes in the GPU layout.
func faceBytes(faces []meshing.MeshFace) []byte {
	if len(faces) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&faces[0])), len(faces)*meshing.FaceStride)
}
