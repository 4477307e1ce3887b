package meshing

import (
	"voxel-render/internal/profiling"
	"voxel-render/internal/world"
)

// FaceStride is the size in bytes of one packed MeshFace on the GPU.
const FaceStride = 8

// locationDirShift is where the face direction sits above the 15-bit chunk index.
const locationDirShift = 15

// MeshFace is one exposed side of a solid voxel. It is uploaded verbatim as a
// per-instance vertex attribute (two uint32s): the voxel id and a location
// packing dir<<15 | chunk index.
type MeshFace struct {
	Voxel    uint32
	Location uint32
}

// NewMeshFace packs a face record.
func NewMeshFace(v world.Voxel, idx world.ChunkIndex, dir world.Direction) MeshFace {
	return MeshFace{
		Voxel:    uint32(v),
		Location: uint32(dir)<<locationDirShift | uint32(idx),
	}
}

// Index returns the chunk-local position of the face's voxel.
func (f MeshFace) Index() world.ChunkIndex {
	return world.ChunkIndex(f.Location & (world.ChunkVolume - 1))
}

// Direction returns which side of the voxel the face is on.
func (f MeshFace) Direction() world.Direction {
	return world.Direction(f.Location >> locationDirShift)
}

// Mesh is the face list for one chunk. It lives only until it is uploaded.
type Mesh struct {
	Coord world.ChunkCoord
	Faces []MeshFace
}

// Empty reports whether the mesh has nothing to draw.
func (m *Mesh) Empty() bool {
	return len(m.Faces) == 0
}

// Build emits one face per solid voxel side whose neighbour is void. Faces
// crossing the chunk border consult the neighbouring chunk; an absent
// neighbour counts as void, so world edges are always closed.
func Build(obj *world.Object, chunk *world.Chunk, coord world.ChunkCoord) *Mesh {
	defer profiling.Track("meshing.Build")()

	mesh := &Mesh{Coord: coord}
	if chunk == nil {
		return mesh
	}
	neighbors := obj.Neighbors(coord)

	for i := range world.ChunkVolume {
		idx := world.ChunkIndex(i)
		v := chunk.Get(idx)
		if v.IsVoid() {
			continue
		}
		x, y, z := int32(idx.X()), int32(idx.Y()), int32(idx.Z())
		for _, dir := range world.Directions {
			dx, dy, dz := dir.Offset()
			nx, ny, nz := x+dx, y+dy, z+dz

			var n world.Voxel
			if inside(nx) && inside(ny) && inside(nz) {
				n = chunk.Get(world.ChunkIndexOf(uint32(nx), uint32(ny), uint32(nz)))
			} else if nc := neighbors[dir]; nc != nil {
				// Only one axis can leave the chunk; masking wraps it to the far side.
				n = nc.Get(world.ChunkIndexOf(uint32(nx)&world.ChunkMask, uint32(ny)&world.ChunkMask, uint32(nz)&world.ChunkMask))
			}
			if n.IsVoid() {
				mesh.Faces = append(mesh.Faces, NewMeshFace(v, idx, dir))
			}
		}
	}
	return mesh
}

func inside(a int32) bool {
	return a >= 0 && a < world.ChunkLength
}

// BuildCoord meshes the chunk stored at coord. Absent chunks yield an empty mesh.
func BuildCoord(obj *world.Object, coord world.ChunkCoord) *Mesh {
	c, _ := obj.Chunk(coord)
	return Build(obj, c, coord)
}

// BuildAll meshes every chunk in obj in a stable coordinate order.
func BuildAll(obj *world.Object) []*Mesh {
	coords := obj.Coords()
	out := make([]*Mesh, 0, len(coords))
	for _, c := range coords {
		out = append(out, BuildCoord(obj, c))
	}
	return out
}
