package world

const (
	// Chunk dimensions
	ChunkBits   = 5
	ChunkLength = 1 << ChunkBits
	ChunkArea   = ChunkLength * ChunkLength
	ChunkVolume = ChunkArea * ChunkLength
	ChunkMask   = ChunkLength - 1
)

// Chunk is a dense 32x32x32 cube of voxels.
type Chunk struct {
	voxels [ChunkVolume]Voxel
}

// NewChunk returns a fully void chunk.
func NewChunk() *Chunk {
	return &Chunk{}
}

// Get returns the voxel at idx.
func (c *Chunk) Get(idx ChunkIndex) Voxel {
	return c.voxels[idx]
}

// Set stores v at idx.
func (c *Chunk) Set(idx ChunkIndex, v Voxel) {
	c.voxels[idx] = v
}

// IsEmpty reports whether every voxel is void.
func (c *Chunk) IsEmpty() bool {
	for _, v := range c.voxels {
		if v != Void {
			return false
		}
	}
	return true
}
