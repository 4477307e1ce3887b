package physics

import (
	"voxel-render/internal/profiling"
	"voxel-render/internal/world"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	MinReachDistance = 0.1
	MaxReachDistance = 64.0
)

// stepSize is the sampling interval along the ray, in voxels.
const stepSize = float32(0.02)

// RaycastResult stores the result of a raycast operation
type RaycastResult struct {
	HitPosition world.VoxelCoord
	// AdjacentPosition is the last empty voxel sampled before the hit.
	AdjacentPosition world.VoxelCoord
	Distance         float32
	Hit              bool
}

// Raycast samples obj from start along direction and reports the first
// non-void voxel between minDist and maxDist. direction should be normalized.
func Raycast(start mgl32.Vec3, direction mgl32.Vec3, minDist, maxDist float32, obj *world.Object) RaycastResult {
	defer profiling.Track("physics.Raycast")()
	steps := int(maxDist / stepSize)

	lastEmptyPos := world.VoxelAt(start)
	result := RaycastResult{Hit: false}

	for i := 0; i <= steps; i++ {
		dist := float32(i) * stepSize
		if dist < minDist {
			continue
		}

		pos := world.VoxelAt(start.Add(direction.Mul(dist)))
		if pos == lastEmptyPos && i > 0 {
			continue
		}

		if !obj.Get(pos).IsVoid() {
			result.HitPosition = pos
			result.AdjacentPosition = lastEmptyPos
			result.Distance = dist
			result.Hit = true
			return result
		}

		lastEmptyPos = pos
	}

	return result
}
