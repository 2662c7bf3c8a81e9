package orbview

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func almostEqualVec3(a, b mgl32.Vec3, eps float32) bool {
	return a.Sub(b).Len() <= eps
}

func TestCameraDecayReachesExactZero(t *testing.T) {
	c := NewCamera()
	c.SetFPS(60)

	c.PanVertical(1)
	c.PanHorizontal(1)
	c.YawLookAt(0)
	if v := c.velocities(); v[0] == 0 || v[1] == 0 || v[2] == 0 {
		t.Fatalf("velocities not accelerated: %v", v)
	}

	// Braking equals acceleration, so one decay per input step returns
	// every velocity to rest, exactly.
	c.Decay()
	if v := c.velocities(); v != [4]float32{} {
		t.Errorf("velocities after decay %v, want all zero", v)
	}

	// Decaying at rest stays at rest, never negative.
	c.Decay()
	if v := c.velocities(); v != [4]float32{} {
		t.Errorf("velocities after redundant decay %v, want all zero", v)
	}
}

func TestCameraVelocityCap(t *testing.T) {
	c := NewCamera()
	c.SetFPS(60)

	for i := 0; i < 1000; i++ {
		c.PanVertical(1)
	}
	if v := c.velocities()[0]; v > velocityCap+cameraAcceleration/60 {
		t.Errorf("pan velocity %v exceeded cap", v)
	}
}

func TestCameraPanMovesEyeAndLookAtTogether(t *testing.T) {
	c := NewCameraAt(mgl32.Vec3{10, 5, 0}, mgl32.Vec3{}, mgl32.Vec3{0, 1, 0})
	c.SetFPS(60)

	sep := c.LookAt().Sub(c.Eye())
	c.PanVertical(1)
	c.PanHorizontal(-1)

	if got := c.LookAt().Sub(c.Eye()); !almostEqualVec3(got, sep, 1e-5) {
		t.Errorf("pan changed the eye/look-at separation: %v vs %v", got, sep)
	}

	// Forward pan must stay on the ground plane: height is untouched.
	if c.Eye().Y() != 5 {
		t.Errorf("pan changed eye height to %v", c.Eye().Y())
	}
}

func TestCameraPanVerticalDirection(t *testing.T) {
	c := NewCameraAt(mgl32.Vec3{10, 5, 0}, mgl32.Vec3{}, mgl32.Vec3{0, 1, 0})
	c.SetFPS(60)

	before := c.Eye()
	c.PanVertical(1)
	moved := c.Eye().Sub(before)

	// Flattened view direction is -x; a positive delta pans toward the
	// look-at point.
	if moved.X() >= 0 {
		t.Errorf("positive pan moved eye by %v, want negative x", moved)
	}
	if moved.Y() != 0 || math.Abs(float64(moved.Z())) > 1e-6 {
		t.Errorf("pan left the ground line: %v", moved)
	}

	before = c.Eye()
	c.PanVertical(-1)
	if c.Eye().Sub(before).X() <= 0 {
		t.Error("negative pan did not reverse direction")
	}
}

func TestCameraOrbitPreservesDistance(t *testing.T) {
	c := NewCameraAt(mgl32.Vec3{10, 5, 0}, mgl32.Vec3{}, mgl32.Vec3{0, 1, 0})
	c.SetFPS(60)

	dist := c.Eye().Sub(c.LookAt()).Len()
	c.OrbitHorizontal(0.3)
	c.OrbitVertical(0.2)
	c.OrbitHorizontal(-1.1)
	c.OrbitVertical(-0.05)

	if got := c.Eye().Sub(c.LookAt()).Len(); math.Abs(float64(got-dist)) > 1e-4 {
		t.Errorf("orbit changed eye distance from %v to %v", dist, got)
	}
	if got := c.LookAt(); got != (mgl32.Vec3{}) {
		t.Errorf("orbit moved the look-at point to %v", got)
	}
}

func TestCameraOrbitVerticalGuard(t *testing.T) {
	// Eye nearly straight above the look-at point: cosine with up is
	// above the limit, so orbiting further up must be refused while
	// orbiting back down still works.
	c := NewCameraAt(mgl32.Vec3{0.1, 10, 0}, mgl32.Vec3{}, mgl32.Vec3{0, 1, 0})

	before := c.Eye()
	c.OrbitVertical(0.1)
	if c.Eye() != before {
		t.Error("orbit toward the top pole was not refused")
	}

	c.OrbitVertical(-0.1)
	if c.Eye() == before {
		t.Error("orbit away from the top pole was refused")
	}

	// Mirror case at the bottom pole.
	c = NewCameraAt(mgl32.Vec3{0.1, -10, 0}, mgl32.Vec3{}, mgl32.Vec3{0, 1, 0})
	before = c.Eye()
	c.OrbitVertical(-0.1)
	if c.Eye() != before {
		t.Error("orbit toward the bottom pole was not refused")
	}
	c.OrbitVertical(0.1)
	if c.Eye() == before {
		t.Error("orbit away from the bottom pole was refused")
	}
}

func TestCameraOrbitHorizontalAngle(t *testing.T) {
	c := NewCameraAt(mgl32.Vec3{10, 0, 0}, mgl32.Vec3{}, mgl32.Vec3{0, 1, 0})

	c.OrbitHorizontal(float32(math.Pi) / 2)
	if !almostEqualVec3(c.Eye(), mgl32.Vec3{0, 0, -10}, 1e-4) {
		t.Errorf("quarter orbit put the eye at %v", c.Eye())
	}
}

// YawLookAt takes its angle from the internal velocity, not from the
// argument. This asymmetry is observable behavior: pin it so a
// well-meaning cleanup does not change how the camera feels.
func TestCameraYawIgnoresArgument(t *testing.T) {
	run := func(delta float32) mgl32.Vec3 {
		c := NewCameraAt(mgl32.Vec3{10, 5, 0}, mgl32.Vec3{}, mgl32.Vec3{0, 1, 0})
		c.SetFPS(60)
		c.YawLookAt(delta)
		return c.LookAt()
	}

	a := run(1)
	b := run(-1)
	z := run(0)
	if a != b || a != z {
		t.Errorf("yaw depends on its argument: %v / %v / %v", a, b, z)
	}

	c := NewCameraAt(mgl32.Vec3{10, 5, 0}, mgl32.Vec3{}, mgl32.Vec3{0, 1, 0})
	c.SetFPS(60)
	c.YawLookAt(0)
	if c.Eye() != (mgl32.Vec3{10, 5, 0}) {
		t.Error("yaw moved the eye")
	}
	if c.LookAt() == (mgl32.Vec3{}) {
		t.Error("yaw did not rotate the look-at point")
	}
	if c.velocities()[2] == 0 {
		t.Error("yaw did not accelerate the eye-rotation velocity")
	}
}

func TestCameraSetFPSIgnoresNonPositive(t *testing.T) {
	c := NewCamera()
	c.SetFPS(120)
	c.SetFPS(0)
	c.SetFPS(-5)

	// A bogus rate would blow up the decay step; velocities must still
	// behave as at 120 fps.
	c.PanVertical(1)
	c.Decay()
	if v := c.velocities(); v != [4]float32{} {
		t.Errorf("velocities %v, want zero after matched decay", v)
	}
}

func TestCameraMatrices(t *testing.T) {
	c := NewCameraAt(mgl32.Vec3{10, 5, 0}, mgl32.Vec3{}, mgl32.Vec3{0, 1, 0})
	c.SetFoV(float32(math.Pi) / 4)
	c.SetAspect(16.0 / 9.0)

	wantView := mgl32.LookAtV(mgl32.Vec3{10, 5, 0}, mgl32.Vec3{}, mgl32.Vec3{0, 1, 0})
	if c.GetView() != wantView {
		t.Error("view matrix does not match LookAtV of the camera state")
	}

	wantProj := mgl32.Perspective(float32(math.Pi)/4, 16.0/9.0, 0.1, 100)
	if c.GetProjection() != wantProj {
		t.Error("projection matrix does not match the configured frustum")
	}

	if got := c.GetEyePosition(); got != (mgl32.Vec4{10, 5, 0, 0}) {
		t.Errorf("eye position %v, want w=0 form", got)
	}
}
