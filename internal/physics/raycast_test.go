package physics_test

import (
	"testing"

	"voxel-render/internal/physics"
	"voxel-render/internal/world"

	"github.com/go-gl/mathgl/mgl32"
)

func TestRaycast(t *testing.T) {
	// Create an empty world
	w := world.NewObject()

	// Place a voxel at (5, 0, 0)
	w.Set(world.VoxelCoord{X: 5}, world.Stone)

	// Test 1: Raycast hitting the voxel
	start := mgl32.Vec3{0.5, 0.5, 0.5}
	dir := mgl32.Vec3{1, 0, 0}
	minDist := float32(0.1)
	maxDist := float32(10.0)

	result := physics.Raycast(start, dir, minDist, maxDist, w)

	if !result.Hit {
		t.Fatalf("Expected hit, got miss")
	}
	if result.HitPosition != (world.VoxelCoord{X: 5}) {
		t.Errorf("Expected hit at {5,0,0}, got %v", result.HitPosition)
	}
	if result.AdjacentPosition != (world.VoxelCoord{X: 4}) {
		t.Errorf("Expected adjacent at {4,0,0}, got %v", result.AdjacentPosition)
	}
	// Ray starts at X=0.5 and enters the voxel at X=5.0.
	if result.Distance < 4.47 || result.Distance > 4.53 {
		t.Errorf("Expected distance 4.5, got %f", result.Distance)
	}

	// Test 2: Raycast missing (max dist)
	resultShort := physics.Raycast(start, dir, minDist, 4.0, w)
	if resultShort.Hit {
		t.Errorf("Expected miss due to maxDist, got hit at %v", resultShort.HitPosition)
	}

	// Test 3: Raycast missing (wrong direction)
	resultWrong := physics.Raycast(start, mgl32.Vec3{0, 1, 0}, minDist, maxDist, w)
	if resultWrong.Hit {
		t.Errorf("Expected miss, got hit")
	}
}

func TestRaycastNegativeCoordinates(t *testing.T) {
	w := world.NewObject()
	w.Set(world.VoxelCoord{X: -3, Y: -1, Z: -40}, world.Dirt)

	// x=-1.5 lies in column -2, next to the voxel.
	result := physics.Raycast(mgl32.Vec3{-1.5, -0.5, -30.5}, mgl32.Vec3{0, 0, -1}, physics.MinReachDistance, 20, w)
	if result.Hit {
		t.Fatalf("ray along the wrong column hit %v", result.HitPosition)
	}

	result = physics.Raycast(mgl32.Vec3{-2.5, -0.5, -30.5}, mgl32.Vec3{0, 0, -1}, physics.MinReachDistance, 20, w)
	if !result.Hit || result.HitPosition != (world.VoxelCoord{X: -3, Y: -1, Z: -40}) {
		t.Fatalf("hit: got %v at %v, want -3,-1,-40", result.Hit, result.HitPosition)
	}
	if want := (world.VoxelCoord{X: -3, Y: -1, Z: -39}); result.AdjacentPosition != want {
		t.Fatalf("adjacent: got %v, want %v", result.AdjacentPosition, want)
	}
}

func TestRaycastAcrossChunks(t *testing.T) {
	w := world.NewObject()
	far := world.VoxelCoord{X: world.ChunkLength + 3}
	w.Set(far, world.Sand)

	result := physics.Raycast(mgl32.Vec3{0.5, 0.5, 0.5}, mgl32.Vec3{1, 0, 0}, 0, physics.MaxReachDistance, w)
	if !result.Hit || result.HitPosition != far {
		t.Fatalf("hit: got %v at %v, want %v", result.Hit, result.HitPosition, far)
	}
}
