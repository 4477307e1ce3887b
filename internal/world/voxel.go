package world

// Voxel is a 32-bit material identifier. Void (0) is the absence of solid material.
type Voxel uint32

// Void is the empty voxel.
const Void Voxel = 0

// IsVoid reports whether v holds no solid material.
func (v Voxel) IsVoid() bool {
	return v == Void
}
