package shadowbox

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Clip volume covered by the light's projection. The demo scene fits in a
// 10-unit box around the origin, so these cover it with margin.
const (
	shadowOrthoExtent = 10.0
	shadowNearPlane   = 0.5
	shadowFarPlane    = 50.0

	cameraNearPlane = 0.1
	cameraFarPlane  = 100.0
)

// clipCorrection remaps OpenGL-convention clip z in [-1,1] to the [0,1]
// range wgpu expects. Applied on top of every projection matrix.
var clipCorrection = mgl32.Mat4{
	1, 0, 0, 0,
	0, 1, 0, 0,
	0, 0, 0.5, 0,
	0, 0, 0.5, 1,
}

// Spherical holds orbit coordinates: Radius in world units, Theta the
// azimuth and Phi the elevation, both in degrees.
type Spherical struct {
	Radius float32
	Theta  float32
	Phi    float32
}

// Cartesian converts to a right-handed Y-up position relative to the
// orbit center.
func (s Spherical) Cartesian() mgl32.Vec3 {
	theta := mgl32.DegToRad(s.Theta)
	phi := mgl32.DegToRad(s.Phi)
	return mgl32.Vec3{
		s.Radius * math32.Cos(phi) * math32.Sin(theta),
		s.Radius * math32.Sin(phi),
		s.Radius * math32.Cos(phi) * math32.Cos(theta),
	}
}

// Camera orbits a target point. Eye position derives from the spherical
// coordinates; Fov is the vertical field of view in degrees.
type Camera struct {
	Orbit  Spherical
	Target mgl32.Vec3
	Fov    float32
}

func (c Camera) Eye() mgl32.Vec3 {
	return c.Target.Add(c.Orbit.Cartesian())
}

// Light orbits the origin. W follows the homogeneous-position convention:
// 1 marks a point light, 0 a directional light whose direction is the
// normalized position vector.
type Light struct {
	Orbit Spherical
	W     float32
	Color [3]float32
}

func (l Light) Position() mgl32.Vec4 {
	return l.Orbit.Cartesian().Vec4(l.W)
}

// Direction returns the unit vector from the surface point toward the
// light. Mirrors the branch the forward shader takes on W: directional
// lights ignore the surface point entirely.
func (l Light) Direction(surface mgl32.Vec3) mgl32.Vec3 {
	pos := l.Orbit.Cartesian()
	if l.W == 1 {
		return pos.Sub(surface).Normalize()
	}
	return pos.Normalize()
}

// Material holds the Phong strengths. Read-only during rendering.
type Material struct {
	Ambient   float32
	Diffuse   float32
	Specular  float32
	Shininess float32
}

// SceneState is the single mutable scene description. The input systems
// mutate the Camera/Light fields during Update; Recompute derives the
// matrices once in PreRender; the render passes only read.
type SceneState struct {
	Camera        Camera
	Light         Light
	Material      Material
	ShadowBias    float32
	MarkerVisible bool

	// Derived per frame by Recompute.
	View       mgl32.Mat4
	Proj       mgl32.Mat4
	LightSpace mgl32.Mat4

	defaults sceneDefaults
}

type sceneDefaults struct {
	camera Camera
	light  Light
}

func NewSceneState(cfg Config) *SceneState {
	cam := Camera{
		Orbit: Spherical{Radius: cfg.Camera.Radius, Theta: cfg.Camera.Theta, Phi: cfg.Camera.Phi},
		Fov:   cfg.Camera.Fov,
	}
	light := Light{
		Orbit: Spherical{Radius: cfg.Light.Radius, Theta: cfg.Light.Theta, Phi: cfg.Light.Phi},
		Color: cfg.Light.Color,
	}
	if cfg.Light.Point {
		light.W = 1
	}

	s := &SceneState{
		Camera:        cam,
		Light:         light,
		Material:      Material{cfg.Material.Ambient, cfg.Material.Diffuse, cfg.Material.Specular, cfg.Material.Shininess},
		ShadowBias:    cfg.Shadow.Bias,
		MarkerVisible: true,
		defaults:      sceneDefaults{camera: cam, light: light},
	}
	s.Recompute()
	return s
}

// Recompute derives the camera and light matrices from the current
// spherical coordinates. The light-space matrix computed here is the one
// value both the shadow pass and the forward pass consume; it is written
// into a single shared uniform buffer so the two passes cannot diverge.
func (s *SceneState) Recompute() {
	eye := s.Camera.Eye()
	s.View = mgl32.LookAtV(eye, s.Camera.Target, mgl32.Vec3{0, 1, 0})
	// The render region is the centered square, so the aspect ratio is 1.
	s.Proj = clipCorrection.Mul4(mgl32.Perspective(mgl32.DegToRad(s.Camera.Fov), 1.0, cameraNearPlane, cameraFarPlane))
	s.LightSpace = lightSpaceMatrix(s.Light)
}

// lightSpaceMatrix builds the view-projection transform as seen from the
// light: orthographic for directional lights, perspective for point
// lights, both looking at the scene origin.
func lightSpaceMatrix(l Light) mgl32.Mat4 {
	pos := l.Orbit.Cartesian()
	view := mgl32.LookAtV(pos, mgl32.Vec3{}, mgl32.Vec3{0, 1, 0})

	var proj mgl32.Mat4
	if l.W == 1 {
		proj = mgl32.Perspective(mgl32.DegToRad(90), 1.0, shadowNearPlane, shadowFarPlane)
	} else {
		proj = mgl32.Ortho(-shadowOrthoExtent, shadowOrthoExtent, -shadowOrthoExtent, shadowOrthoExtent, shadowNearPlane, shadowFarPlane)
	}
	return clipCorrection.Mul4(proj).Mul4(view)
}

// ToggleLightType flips the light between point and directional, touching
// nothing but W.
func (s *SceneState) ToggleLightType() {
	if s.Light.W == 1 {
		s.Light.W = 0
	} else {
		s.Light.W = 1
	}
}

// Reset restores every mutable parameter to its initial configuration.
func (s *SceneState) Reset() {
	s.Camera = s.defaults.camera
	s.Light = s.defaults.light
	s.MarkerVisible = true
	s.Recompute()
}

// NormalMatrix returns the inverse-transpose of the model's upper 3x3
// block, required for normals under non-uniform scale.
func NormalMatrix(model mgl32.Mat4) mgl32.Mat3 {
	return model.Mat3().Inv().Transpose()
}

// SceneModule installs the SceneState resource built from the config.
type SceneModule struct {
	Config Config
}

func (m SceneModule) Install(app *App, cmd *Commands) {
	app.addResources(NewSceneState(m.Config))
}
