package game

import (
	"fmt"
	"log"
	"time"

	"voxel-render/internal/config"
	"voxel-render/internal/graphics"
	"voxel-render/internal/input"
	"voxel-render/internal/meshing"
	"voxel-render/internal/physics"
	"voxel-render/internal/profiling"
	"voxel-render/internal/world"
)

// EditReach is how far ahead a voxel is placed when the view ray hits nothing.
const EditReach = 8

// MeshSink receives chunk meshes. *voxels.MeshStore implements it.
type MeshSink interface {
	Upload(mesh *meshing.Mesh) error
	Count() int
	Faces() int
	Destroy() error
}

// Session is the loaded scene: the voxel object, the camera looking at it and
// the GPU copies of its chunk meshes.
type Session struct {
	World  *world.Object
	Camera *graphics.Camera
	Meshes MeshSink

	// Material is what ActionPlaceVoxel writes.
	Material world.Voxel
}

// LoadWorld builds the startup scene selected in config.
func LoadWorld() (*world.Object, error) {
	defer profiling.Track("world.Load")()
	switch kind := config.GetWorldKind(); kind {
	case config.WorldSpheres:
		return world.NewSpheres(), nil
	case config.WorldTerrain:
		return world.NewGenerator(config.GetSeed()).Generate(config.GetTerrainRadius()), nil
	case config.WorldHeightmap:
		path, size, maxHeight := config.GetHeightmap()
		if path == "" {
			return nil, fmt.Errorf("heightmap world needs an image path")
		}
		return world.LoadHeightmap(path, world.HeightmapOptions{Size: size, MaxHeight: maxHeight})
	default:
		return nil, fmt.Errorf("unknown world kind %q", kind)
	}
}

// NewSession meshes every chunk of obj and uploads the results to meshes.
func NewSession(obj *world.Object, meshes MeshSink, cam *graphics.Camera) (*Session, error) {
	s := &Session{
		World:    obj,
		Camera:   cam,
		Meshes:   meshes,
		Material: world.Stone,
	}

	start := time.Now()
	for _, m := range meshing.BuildAll(obj) {
		if err := meshes.Upload(m); err != nil {
			return nil, fmt.Errorf("upload chunk %v: %w", m.Coord, err)
		}
	}
	log.Printf("Uploaded %d chunks (%d faces) in %v", meshes.Count(), meshes.Faces(), time.Since(start))

	return s, nil
}

// Update applies one frame of input to the camera and runs edit actions.
func (s *Session) Update(st input.State, im *input.InputManager) error {
	func() {
		defer profiling.Track("camera.Update")()
		s.Camera.Update(st)
	}()

	if im.Mode() != input.ModeCamera {
		return nil
	}
	if im.JustPressed(input.ActionPlaceVoxel) {
		if err := s.Edit(s.PlaceTarget(), s.Material); err != nil {
			return err
		}
	}
	if im.JustPressed(input.ActionRemoveVoxel) {
		if pos, ok := s.RemoveTarget(); ok {
			if err := s.Edit(pos, world.Void); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *Session) pick() physics.RaycastResult {
	return physics.Raycast(s.Camera.Position, s.Camera.Forward(), physics.MinReachDistance, physics.MaxReachDistance, s.World)
}

// PlaceTarget is the empty voxel in front of the first solid one on the
// view ray, or the voxel EditReach units ahead when the ray hits nothing.
func (s *Session) PlaceTarget() world.VoxelCoord {
	if r := s.pick(); r.Hit {
		return r.AdjacentPosition
	}
	return world.VoxelAt(s.Camera.Target(EditReach))
}

// RemoveTarget is the first solid voxel on the view ray.
func (s *Session) RemoveTarget() (world.VoxelCoord, bool) {
	r := s.pick()
	return r.HitPosition, r.Hit
}

// Edit writes v at pos and re-uploads every chunk whose faces depend on it.
// Writing the value already stored is a no-op.
func (s *Session) Edit(pos world.VoxelCoord, v world.Voxel) error {
	defer profiling.Track("session.Edit")()
	if s.World.Get(pos) == v {
		return nil
	}
	s.World.Set(pos, v)
	for _, coord := range s.World.AffectedChunks(pos) {
		if err := s.Meshes.Upload(meshing.BuildCoord(s.World, coord)); err != nil {
			return fmt.Errorf("re-upload chunk %v: %w", coord, err)
		}
	}
	return nil
}

// Cleanup frees the GPU meshes. The device must be idle.
func (s *Session) Cleanup() error {
	err := s.Meshes.Destroy()
	s.World = nil
	s.Meshes = nil
	return err
}
