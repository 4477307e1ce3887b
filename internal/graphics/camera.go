package graphics

import (
	"math"

	"voxel-render/internal/input"

	"github.com/go-gl/mathgl/mgl32"
)

// DefaultMoveSpeed is the fly speed in voxels per second.
const DefaultMoveSpeed = 30

// Camera is a free-flying, Z-up camera. Yaw turns about +Z starting from +X;
// pitch runs from 0 (straight down) to π (straight up).
type Camera struct {
	Position mgl32.Vec3
	Yaw      float32
	Pitch    float32
	Speed    float32
}

func NewCamera(pos mgl32.Vec3, yaw, pitch float32) *Camera {
	c := &Camera{Position: pos, Speed: DefaultMoveSpeed}
	c.UpdateOrientation(mgl32.Vec2{yaw, pitch})
	return c
}

// DefaultCamera starts outside the demo scenes, looking along +X.
func DefaultCamera() *Camera {
	return NewCamera(mgl32.Vec3{-90, 40, 40}, 0, math.Pi/2)
}

// LookMatrix maps world space into view space.
func (c *Camera) LookMatrix() mgl32.Mat4 {
	return mgl32.HomogRotate3DX(-c.Pitch).
		Mul4(mgl32.HomogRotate3DZ(math.Pi/2 - c.Yaw)).
		Mul4(mgl32.Translate3D(-c.Position.X(), -c.Position.Y(), -c.Position.Z()))
}

// MoveMatrix maps (forward, left, up) onto world axes. It ignores pitch.
func (c *Camera) MoveMatrix() mgl32.Mat3 {
	return mgl32.Rotate3DZ(c.Yaw)
}

// UpdateOrientation adds d to (yaw, pitch). Yaw wraps into [0, 2π); pitch clamps to [0, π].
func (c *Camera) UpdateOrientation(d mgl32.Vec2) {
	yaw := math.Mod(float64(c.Yaw+d.X()), 2*math.Pi)
	if yaw < 0 {
		yaw += 2 * math.Pi
	}
	c.Yaw = float32(yaw)
	c.Pitch = mgl32.Clamp(c.Pitch+d.Y(), 0, math.Pi)
}

// Move translates by a (forward, left, up) vector given in the move basis.
func (c *Camera) Move(v mgl32.Vec3) {
	c.Position = c.Position.Add(c.MoveMatrix().Mul3x1(v))
}

// Update applies one frame of input.
func (c *Camera) Update(s input.State) {
	c.UpdateOrientation(s.MouseRel)
	dt := float32(s.Elapsed.Seconds())
	c.Move(s.Move.Mul(c.Speed * dt))
}

// Forward is the unit view direction in world space.
func (c *Camera) Forward() mgl32.Vec3 {
	sp, cp := math.Sincos(float64(c.Pitch))
	sy, cy := math.Sincos(float64(c.Yaw))
	return mgl32.Vec3{float32(sp * cy), float32(sp * sy), float32(-cp)}
}

// Target returns the voxel-space point dist units in front of the camera.
func (c *Camera) Target(dist float32) mgl32.Vec3 {
	return c.Position.Add(c.Forward().Mul(dist))
}
