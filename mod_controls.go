package shadowbox

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Per-second rates for held keys.
const (
	orbitRate       = 90.0 // degrees
	radiusRate      = 4.0
	cameraMoveRate  = 5.0
	fovRate         = 40.0 // degrees
	fovMin          = 15.0
	fovMax          = 90.0
	lightRadiusMin  = 0.5
	cameraRadiusMin = 1.0
	orbitPhiMin     = -85.0
	orbitPhiMax     = 85.0
)

// ControlsModule maps key state to SceneState mutations:
//
//	L            toggle point/directional light
//	arrow keys   orbit the light (theta/phi)
//	=, -         light radius in/out (also keypad +/-)
//	Shift        redirect the orbit and radius keys to the camera
//	W/A/S/D      move the camera target in the ground plane
//	Q/E          move the camera target up/down
//	Z/X          narrow/widen the field of view
//	M            toggle the light marker
//	R            reset everything to the configured defaults
//	Esc          close the window
//
// Controls run in Update; PreRender recomputes the matrices afterwards,
// so every mutation is visible to the same frame's passes.
type ControlsModule struct{}

func (mod ControlsModule) Install(app *App, cmd *Commands) {
	app.UseSystem(
		System(controlsSystem).
			InStage(Update),
	)
}

func controlsSystem(input *Input, scene *SceneState, time *Time, ws *WindowState) {
	dt := float32(time.Dt.Seconds())
	if dt > 0.1 {
		dt = 0.1 // ignore pauses (debugger, window drag)
	}

	if input.JustPressed[KeyEscape] {
		ws.Close()
		return
	}
	if input.JustPressed[KeyL] {
		scene.ToggleLightType()
	}
	if input.JustPressed[KeyM] {
		scene.MarkerVisible = !scene.MarkerVisible
	}
	if input.JustPressed[KeyR] {
		scene.Reset()
	}

	// Shift switches the orbit and radius keys from the light to the
	// camera.
	orbit := &scene.Light.Orbit
	radiusMin := float32(lightRadiusMin)
	if input.Pressed[KeyShift] {
		orbit = &scene.Camera.Orbit
		radiusMin = cameraRadiusMin
	}

	if input.Pressed[KeyLeft] {
		orbit.Theta -= orbitRate * dt
	}
	if input.Pressed[KeyRight] {
		orbit.Theta += orbitRate * dt
	}
	if input.Pressed[KeyDown] {
		orbit.Phi -= orbitRate * dt
	}
	if input.Pressed[KeyUp] {
		orbit.Phi += orbitRate * dt
	}
	orbit.Phi = clamp(orbit.Phi, orbitPhiMin, orbitPhiMax)

	if input.Pressed[KeyEqual] || input.Pressed[KeyKPPlus] {
		orbit.Radius += radiusRate * dt
	}
	if input.Pressed[KeyMinus] || input.Pressed[KeyKPMinus] {
		orbit.Radius -= radiusRate * dt
	}
	if orbit.Radius < radiusMin {
		orbit.Radius = radiusMin
	}

	// Camera target translation along the world axes.
	move := mgl32.Vec3{}
	if input.Pressed[KeyW] {
		move[2] -= 1
	}
	if input.Pressed[KeyS] {
		move[2] += 1
	}
	if input.Pressed[KeyA] {
		move[0] -= 1
	}
	if input.Pressed[KeyD] {
		move[0] += 1
	}
	if input.Pressed[KeyQ] {
		move[1] -= 1
	}
	if input.Pressed[KeyE] {
		move[1] += 1
	}
	if move.Len() > 0 {
		scene.Camera.Target = scene.Camera.Target.Add(move.Normalize().Mul(cameraMoveRate * dt))
	}

	// Field of view.
	if input.Pressed[KeyZ] {
		scene.Camera.Fov -= fovRate * dt
	}
	if input.Pressed[KeyX] {
		scene.Camera.Fov += fovRate * dt
	}
	scene.Camera.Fov = clamp(scene.Camera.Fov, fovMin, fovMax)
}

func clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
