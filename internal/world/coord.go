package world

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// Direction is one of the six axis-aligned face directions. The numeric value
// is what gets packed into mesh faces, so the order is part of the GPU format.
type Direction uint32

const (
	PosX Direction = iota
	NegX
	PosY
	NegY
	PosZ
	NegZ
)

// DirectionCount is the number of face directions.
const DirectionCount = 6

// Directions lists every direction in packing order.
var Directions = [DirectionCount]Direction{PosX, NegX, PosY, NegY, PosZ, NegZ}

var directionOffsets = [DirectionCount][3]int32{
	PosX: {1, 0, 0},
	NegX: {-1, 0, 0},
	PosY: {0, 1, 0},
	NegY: {0, -1, 0},
	PosZ: {0, 0, 1},
	NegZ: {0, 0, -1},
}

// Offset returns the unit step along d.
func (d Direction) Offset() (dx, dy, dz int32) {
	o := directionOffsets[d]
	return o[0], o[1], o[2]
}

func (d Direction) String() string {
	switch d {
	case PosX:
		return "+X"
	case NegX:
		return "-X"
	case PosY:
		return "+Y"
	case NegY:
		return "-Y"
	case PosZ:
		return "+Z"
	case NegZ:
		return "-Z"
	}
	return fmt.Sprintf("Direction(%d)", uint32(d))
}

// VoxelCoord is a global voxel position.
type VoxelCoord struct {
	X, Y, Z int32
}

// ChunkCoord is a chunk position in chunk space. Its world origin is ChunkCoord*32.
type ChunkCoord struct {
	X, Y, Z int32
}

// Chunk returns the chunk containing c. The shift is arithmetic, so negative
// coordinates floor toward -inf (-1 belongs to chunk -1).
func (c VoxelCoord) Chunk() ChunkCoord {
	return ChunkCoord{X: c.X >> ChunkBits, Y: c.Y >> ChunkBits, Z: c.Z >> ChunkBits}
}

// Index returns the position of c inside its chunk. Always in range.
func (c VoxelCoord) Index() ChunkIndex {
	return ChunkIndexOf(uint32(c.X&ChunkMask), uint32(c.Y&ChunkMask), uint32(c.Z&ChunkMask))
}

// Advance steps one voxel along d.
func (c VoxelCoord) Advance(d Direction) VoxelCoord {
	dx, dy, dz := d.Offset()
	return VoxelCoord{X: c.X + dx, Y: c.Y + dy, Z: c.Z + dz}
}

// Vec returns c as a float vector.
func (c VoxelCoord) Vec() mgl32.Vec3 {
	return mgl32.Vec3{float32(c.X), float32(c.Y), float32(c.Z)}
}

// VoxelAt returns the voxel coordinate containing the world-space point p.
func VoxelAt(p mgl32.Vec3) VoxelCoord {
	return VoxelCoord{X: floorToInt32(p.X()), Y: floorToInt32(p.Y()), Z: floorToInt32(p.Z())}
}

func floorToInt32(f float32) int32 {
	i := int32(f)
	if f < 0 && float32(i) != f {
		i--
	}
	return i
}

// Advance steps one chunk along d.
func (c ChunkCoord) Advance(d Direction) ChunkCoord {
	dx, dy, dz := d.Offset()
	return ChunkCoord{X: c.X + dx, Y: c.Y + dy, Z: c.Z + dz}
}

// Origin returns the global coordinate of the chunk's (0,0,0) voxel.
func (c ChunkCoord) Origin() VoxelCoord {
	return VoxelCoord{X: c.X << ChunkBits, Y: c.Y << ChunkBits, Z: c.Z << ChunkBits}
}

// Voxel recombines c with a local index into a global coordinate.
func (c ChunkCoord) Voxel(idx ChunkIndex) VoxelCoord {
	o := c.Origin()
	return VoxelCoord{X: o.X + int32(idx.X()), Y: o.Y + int32(idx.Y()), Z: o.Z + int32(idx.Z())}
}

// Transform returns the chunk's world transform: a translation to its origin.
func (c ChunkCoord) Transform() mgl32.Mat4 {
	o := c.Origin()
	return mgl32.Translate3D(float32(o.X), float32(o.Y), float32(o.Z))
}

// Less orders coordinates by z, then y, then x.
func (c ChunkCoord) Less(o ChunkCoord) bool {
	if c.Z != o.Z {
		return c.Z < o.Z
	}
	if c.Y != o.Y {
		return c.Y < o.Y
	}
	return c.X < o.X
}

// ChunkIndex is a packed local position z<<10 | y<<5 | x in [0, ChunkVolume).
type ChunkIndex uint16

// NewChunkIndex packs a local position, rejecting any axis outside [0, 32).
func NewChunkIndex(x, y, z int) (ChunkIndex, bool) {
	if x < 0 || x >= ChunkLength || y < 0 || y >= ChunkLength || z < 0 || z >= ChunkLength {
		return 0, false
	}
	return ChunkIndexOf(uint32(x), uint32(y), uint32(z)), true
}

// ChunkIndexOf packs a local position without range checks. Out-of-range
// axes alias other positions; callers must already know x, y, z < 32.
func ChunkIndexOf(x, y, z uint32) ChunkIndex {
	return ChunkIndex(z<<(2*ChunkBits) | y<<ChunkBits | x)
}

func (i ChunkIndex) X() uint32 { return uint32(i) & ChunkMask }
func (i ChunkIndex) Y() uint32 { return uint32(i) >> ChunkBits & ChunkMask }
func (i ChunkIndex) Z() uint32 { return uint32(i) >> (2 * ChunkBits) & ChunkMask }

func (i ChunkIndex) String() string {
	return fmt.Sprintf("ChunkIndex{x:%d y:%d z:%d}", i.X(), i.Y(), i.Z())
}
