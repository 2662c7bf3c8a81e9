package orbview

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	cameraAcceleration = 3.0
	cameraBraking      = 3.0
	velocityCap        = 1.0

	// orbitLimit is the cosine between view direction and world up past
	// which vertical orbiting refuses to continue, to keep the camera
	// from flipping over a pole.
	orbitLimit = 0.9

	nearPlane = 0.1
	farPlane  = 100.0
)

var worldUp = mgl32.Vec3{0, 1, 0}

// Camera maintains the eye/look-at/up state and derives view and
// projection matrices from it. Movement goes through damped velocities
// normalized by the current frame rate, so input feels the same at any
// refresh rate. Decay must run once per frame to bleed the velocities
// back to rest.
type Camera struct {
	eye mgl32.Vec3
	at  mgl32.Vec3
	up  mgl32.Vec3

	fov    float32
	aspect float32
	fps    float32

	veloPan    float32 // forward/backward pan, accelerated
	veloStrafe float32 // sideways pan, accelerated
	veloEyeRot float32 // look-at yaw around the eye
	veloAtRot  float32 // eye orbit around the look-at point
}

// NewCamera places the camera at the default vantage point looking at
// the origin.
func NewCamera() *Camera {
	return NewCameraAt(mgl32.Vec3{10, 5, 0}, mgl32.Vec3{}, worldUp)
}

// NewCameraAt places the camera at an explicit eye/look-at/up state.
// FoV, aspect and FPS start at 1 and are set separately.
func NewCameraAt(eye, at, up mgl32.Vec3) *Camera {
	return &Camera{
		eye:    eye,
		at:     at,
		up:     up,
		fov:    1,
		aspect: 1,
		fps:    1,
	}
}

// SetFPS feeds the current frame rate into the velocity normalization.
// Non-positive values are ignored.
func (c *Camera) SetFPS(fps float32) {
	if fps > 0 {
		c.fps = fps
	}
}

func (c *Camera) SetAspect(aspect float32) { c.aspect = aspect }
func (c *Camera) SetFoV(fov float32)       { c.fov = fov }

// GetView returns the look-at view matrix for the current state.
func (c *Camera) GetView() mgl32.Mat4 {
	return mgl32.LookAtV(c.eye, c.at, c.up)
}

// GetProjection returns the perspective projection for the current field
// of view and aspect ratio.
func (c *Camera) GetProjection() mgl32.Mat4 {
	return mgl32.Perspective(c.fov, c.aspect, nearPlane, farPlane)
}

// GetEyePosition returns the eye as a vec4 with w = 0, the layout the
// shader expects.
func (c *Camera) GetEyePosition() mgl32.Vec4 {
	return c.eye.Vec4(0)
}

// Decay bleeds every velocity toward zero by the braking rate, clamped at
// rest. Call once per frame whether or not input arrived.
func (c *Camera) Decay() {
	step := cameraBraking / c.fps
	c.veloPan = clampZero(c.veloPan - step)
	c.veloStrafe = clampZero(c.veloStrafe - step)
	c.veloEyeRot = clampZero(c.veloEyeRot - step)
	c.veloAtRot = clampZero(c.veloAtRot - step)
}

func clampZero(v float32) float32 {
	if v < 0 {
		return 0
	}
	return v
}

// PanVertical moves eye and look-at point together along the view
// direction projected onto the ground plane. Only the sign of delta
// matters; the step size comes from the accelerated velocity.
func (c *Camera) PanVertical(delta float32) {
	dir := c.at.Sub(c.eye)
	dir[1] = 0
	if dir.Len() == 0 {
		return
	}
	dir = dir.Normalize()

	sign := float32(1)
	if delta < 0 {
		sign = -1
	}
	if c.veloPan < velocityCap {
		c.veloPan += cameraAcceleration / c.fps
	}

	step := dir.Mul(sign * c.veloPan / c.fps)
	c.at = c.at.Add(step)
	c.eye = c.eye.Add(step)
}

// PanHorizontal moves eye and look-at point sideways, along the ground
// plane perpendicular of the view direction.
func (c *Camera) PanHorizontal(delta float32) {
	dir := c.at.Sub(c.eye)
	dir[1] = 0
	if dir.Len() == 0 {
		return
	}
	dir = dir.Normalize().Cross(worldUp)
	if delta < 0 {
		dir = dir.Mul(-1)
	}
	if c.veloStrafe < velocityCap {
		c.veloStrafe += cameraAcceleration / c.fps
	}

	step := dir.Mul(c.veloStrafe / c.fps)
	c.at = c.at.Add(step)
	c.eye = c.eye.Add(step)
}

// OrbitVertical rotates the eye around the look-at point about the
// horizontal axis perpendicular to the view direction, by delta radians.
// The rotation is refused when it would push the view direction within
// the orbit limit of straight up or down, in the direction of travel.
func (c *Camera) OrbitVertical(delta float32) {
	view := c.eye.Sub(c.at)
	if view.Len() == 0 {
		return
	}

	cosine := view.Normalize().Dot(worldUp)
	if (cosine > orbitLimit && delta >= 0) || (cosine < -orbitLimit && delta < 0) {
		return
	}

	flat := view
	flat[1] = 0
	if flat.Len() == 0 {
		return
	}
	axis := flat.Normalize().Cross(worldUp)

	rotated := mgl32.TransformCoordinate(view, mgl32.HomogRotate3D(delta, axis))
	c.eye = c.at.Add(rotated)
}

// OrbitHorizontal rotates the eye around the look-at point about the
// world vertical axis, by delta radians.
func (c *Camera) OrbitHorizontal(delta float32) {
	view := c.eye.Sub(c.at)
	rotated := mgl32.TransformCoordinate(view, mgl32.HomogRotate3DY(delta))
	c.eye = c.at.Add(rotated)
}

// YawLookAt rotates the look-at point around the eye about the world
// vertical axis. The argument is accepted for capability-interface
// uniformity but its value is ignored: the rotation angle comes from the
// internal eye-rotation velocity, normalized by frame rate. Known
// asymmetry versus the orbit methods; kept as observed and pinned by a
// regression test.
func (c *Camera) YawLookAt(_ float32) {
	if c.veloEyeRot < velocityCap {
		c.veloEyeRot += cameraAcceleration / c.fps
	}

	angle := float32(math.Pi) * c.veloEyeRot / c.fps
	dir := c.at.Sub(c.eye)
	rotated := mgl32.TransformCoordinate(dir, mgl32.HomogRotate3DY(angle))
	c.at = c.eye.Add(rotated)
}

// Eye returns the current eye position.
func (c *Camera) Eye() mgl32.Vec3 { return c.eye }

// LookAt returns the current look-at point.
func (c *Camera) LookAt() mgl32.Vec3 { return c.at }

// velocities exposes the four velocity scalars to tests, in the order
// pan, strafe, eye-rotation, look-at-rotation.
func (c *Camera) velocities() [4]float32 {
	return [4]float32{c.veloPan, c.veloStrafe, c.veloEyeRot, c.veloAtRot}
}

// Camera implements Controllable: mouse gestures orbit the eye around
// the look-at point, arrows pan along the ground plane, and the WASD
// left/right gesture yaws the look-at point around the eye.

func (c *Camera) MouseUpDown(delta float64)     { c.OrbitVertical(float32(delta)) }
func (c *Camera) MouseLeftRight(delta float64)  { c.OrbitHorizontal(float32(delta)) }
func (c *Camera) ArrowsUpDown(delta float64)    { c.PanVertical(float32(delta)) }
func (c *Camera) ArrowsLeftRight(delta float64) { c.PanHorizontal(float32(delta)) }
func (c *Camera) WasdLeftRight(delta float64)   { c.YawLookAt(float32(delta)) }
func (c *Camera) WasdUpDown(float64)            {}
func (c *Camera) NumpadNumber(int)              {}
func (c *Camera) NumpadAddSubtract(float64)     {}
