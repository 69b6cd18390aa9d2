package shadowbox

import (
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"
)

func controlsFixture() (*Input, *SceneState, *Time, *WindowState) {
	return &Input{},
		NewSceneState(DefaultConfig()),
		&Time{Dt: 100 * time.Millisecond},
		&WindowState{}
}

func TestControls_ToggleLightKey(t *testing.T) {
	input, scene, tm, ws := controlsFixture()
	before := scene.Light

	input.JustPressed[KeyL] = true
	controlsSystem(input, scene, tm, ws)

	if scene.Light.W == before.W {
		t.Errorf("L should flip the light type")
	}
	if scene.Light.Orbit != before.Orbit {
		t.Errorf("L must not touch the light orbit")
	}
	if scene.Camera != NewSceneState(DefaultConfig()).Camera {
		t.Errorf("L must not touch the camera")
	}
}

func TestControls_LightOrbitKeys(t *testing.T) {
	input, scene, tm, ws := controlsFixture()
	before := scene.Light.Orbit

	input.Pressed[KeyRight] = true
	input.Pressed[KeyUp] = true
	controlsSystem(input, scene, tm, ws)

	if scene.Light.Orbit.Theta <= before.Theta {
		t.Errorf("right arrow should increase light theta")
	}
	if scene.Light.Orbit.Phi <= before.Phi {
		t.Errorf("up arrow should increase light phi")
	}
	if scene.Light.Orbit.Radius != before.Radius {
		t.Errorf("orbit keys must not touch the radius")
	}
	if scene.Camera.Orbit != NewSceneState(DefaultConfig()).Camera.Orbit {
		t.Errorf("without Shift the camera orbit must not move")
	}
}

func TestControls_ShiftRedirectsOrbitToCamera(t *testing.T) {
	input, scene, tm, ws := controlsFixture()
	lightBefore := scene.Light.Orbit
	camBefore := scene.Camera.Orbit

	input.Pressed[KeyShift] = true
	input.Pressed[KeyLeft] = true
	input.Pressed[KeyEqual] = true
	controlsSystem(input, scene, tm, ws)

	if scene.Light.Orbit != lightBefore {
		t.Errorf("with Shift the light orbit must not move")
	}
	if scene.Camera.Orbit.Theta >= camBefore.Theta {
		t.Errorf("Shift+left should decrease camera theta")
	}
	if scene.Camera.Orbit.Radius <= camBefore.Radius {
		t.Errorf("Shift+= should increase camera radius")
	}
}

func TestControls_LightRadiusClamped(t *testing.T) {
	input, scene, tm, ws := controlsFixture()
	scene.Light.Orbit.Radius = lightRadiusMin

	input.Pressed[KeyMinus] = true
	controlsSystem(input, scene, tm, ws)

	if scene.Light.Orbit.Radius < lightRadiusMin {
		t.Errorf("light radius %v below minimum %v", scene.Light.Orbit.Radius, float32(lightRadiusMin))
	}
}

func TestControls_LightPhiClamped(t *testing.T) {
	input, scene, tm, ws := controlsFixture()
	scene.Light.Orbit.Phi = orbitPhiMax

	input.Pressed[KeyUp] = true
	controlsSystem(input, scene, tm, ws)

	if scene.Light.Orbit.Phi > orbitPhiMax {
		t.Errorf("light phi %v above maximum %v", scene.Light.Orbit.Phi, float32(orbitPhiMax))
	}
}

func TestControls_CameraTargetMoves(t *testing.T) {
	input, scene, tm, ws := controlsFixture()

	input.Pressed[KeyW] = true
	controlsSystem(input, scene, tm, ws)

	if scene.Camera.Target.Z() >= 0 {
		t.Errorf("W should move the target toward -Z, got %v", scene.Camera.Target)
	}
	if scene.Camera.Target.X() != 0 || scene.Camera.Target.Y() != 0 {
		t.Errorf("W must only move along Z, got %v", scene.Camera.Target)
	}
	if scene.Camera.Orbit != NewSceneState(DefaultConfig()).Camera.Orbit {
		t.Errorf("target translation must not change the orbit")
	}
}

func TestControls_DiagonalMoveNormalized(t *testing.T) {
	input, scene, tm, ws := controlsFixture()

	input.Pressed[KeyW] = true
	input.Pressed[KeyD] = true
	controlsSystem(input, scene, tm, ws)

	dt := float32(0.1)
	want := float32(cameraMoveRate) * dt
	if got := scene.Camera.Target.Len(); mgl32.Abs(got-want) > tol {
		t.Errorf("diagonal move distance %v, want %v", got, want)
	}
}

func TestControls_FovClamped(t *testing.T) {
	input, scene, tm, ws := controlsFixture()

	scene.Camera.Fov = fovMin
	input.Pressed[KeyZ] = true
	controlsSystem(input, scene, tm, ws)
	if scene.Camera.Fov < fovMin {
		t.Errorf("fov %v below minimum %v", scene.Camera.Fov, float32(fovMin))
	}

	input.Pressed[KeyZ] = false
	scene.Camera.Fov = fovMax
	input.Pressed[KeyX] = true
	controlsSystem(input, scene, tm, ws)
	if scene.Camera.Fov > fovMax {
		t.Errorf("fov %v above maximum %v", scene.Camera.Fov, float32(fovMax))
	}
}

func TestControls_MarkerToggle(t *testing.T) {
	input, scene, tm, ws := controlsFixture()

	input.JustPressed[KeyM] = true
	controlsSystem(input, scene, tm, ws)
	if scene.MarkerVisible {
		t.Errorf("M should hide the marker")
	}

	controlsSystem(input, scene, tm, ws)
	if !scene.MarkerVisible {
		t.Errorf("M again should show the marker")
	}
}

func TestControls_ResetKey(t *testing.T) {
	input, scene, tm, ws := controlsFixture()
	pristine := NewSceneState(DefaultConfig())

	scene.Camera.Orbit.Theta = 200
	scene.Camera.Target = mgl32.Vec3{3, 0, 1}
	scene.Light.Orbit.Radius = 2
	scene.MarkerVisible = false

	input.JustPressed[KeyR] = true
	controlsSystem(input, scene, tm, ws)

	if scene.Camera != pristine.Camera || scene.Light != pristine.Light || !scene.MarkerVisible {
		t.Errorf("R should restore the exact defaults")
	}
}

func TestControls_DtClampIgnoresPauses(t *testing.T) {
	input, scene, tm, ws := controlsFixture()
	tm.Dt = 5 * time.Second // window drag or debugger pause

	input.Pressed[KeyRight] = true
	controlsSystem(input, scene, tm, ws)

	moved := scene.Light.Orbit.Theta - DefaultConfig().Light.Theta
	if moved > orbitRate*0.1+tol {
		t.Errorf("pause produced a %v degree jump", moved)
	}
}
