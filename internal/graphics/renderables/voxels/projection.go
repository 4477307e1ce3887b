package voxels

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// PerspectiveInfinite is a right-handed perspective projection with no far
// plane in Vulkan clip conventions: Y points down and depth runs from 0 at
// near to 1 at infinity. fovy is in radians.
func PerspectiveInfinite(fovy, aspect, near float32) mgl32.Mat4 {
	f := float32(1 / math.Tan(float64(fovy)/2))
	return mgl32.Mat4{
		f / aspect, 0, 0, 0,
		0, -f, 0, 0,
		0, 0, -1, -1,
		0, 0, -near, 0,
	}
}
