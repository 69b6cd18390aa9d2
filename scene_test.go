package shadowbox

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

const tol = 1e-4

func vecNear(a, b mgl32.Vec3, eps float32) bool {
	return a.Sub(b).Len() <= eps
}

func testConfig() Config {
	return DefaultConfig()
}

func TestSphericalCartesian_Axes(t *testing.T) {
	cases := []struct {
		name string
		s    Spherical
		want mgl32.Vec3
	}{
		{"front", Spherical{Radius: 2, Theta: 0, Phi: 0}, mgl32.Vec3{0, 0, 2}},
		{"right", Spherical{Radius: 2, Theta: 90, Phi: 0}, mgl32.Vec3{2, 0, 0}},
		{"back", Spherical{Radius: 2, Theta: 180, Phi: 0}, mgl32.Vec3{0, 0, -2}},
		{"up", Spherical{Radius: 3, Theta: 0, Phi: 90}, mgl32.Vec3{0, 3, 0}},
		{"down", Spherical{Radius: 3, Theta: 0, Phi: -90}, mgl32.Vec3{0, -3, 0}},
	}
	for _, tc := range cases {
		got := tc.s.Cartesian()
		if !vecNear(got, tc.want, tol) {
			t.Errorf("%s: Cartesian() = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestSphericalCartesian_RadiusPreserved(t *testing.T) {
	for _, theta := range []float32{0, 30, 45, 120, 270, 359} {
		for _, phi := range []float32{-80, -45, 0, 45, 80} {
			s := Spherical{Radius: 5, Theta: theta, Phi: phi}
			if r := s.Cartesian().Len(); r < 5-tol || r > 5+tol {
				t.Errorf("theta=%v phi=%v: |Cartesian()| = %v, want 5", theta, phi, r)
			}
		}
	}
}

// The inverse view matrix maps the camera-space origin back to the eye,
// so spherical coords -> eye -> view -> inverse must round-trip.
func TestViewMatrix_RoundTripsEye(t *testing.T) {
	scene := NewSceneState(testConfig())

	for _, radius := range []float32{2, 8, 20} {
		for _, theta := range []float32{0, 33, 90, 200, 355} {
			for _, phi := range []float32{-60, 0, 30, 80} {
				scene.Camera.Orbit = Spherical{Radius: radius, Theta: theta, Phi: phi}
				scene.Recompute()

				eye := scene.Camera.Eye()
				back := scene.View.Inv().Mul4x1(mgl32.Vec4{0, 0, 0, 1}).Vec3()
				if !vecNear(eye, back, 1e-3) {
					t.Errorf("r=%v theta=%v phi=%v: inverse view origin %v, want eye %v",
						radius, theta, phi, back, eye)
				}
			}
		}
	}
}

func TestLightDirection_Branch(t *testing.T) {
	light := Light{Orbit: Spherical{Radius: 6, Theta: 45, Phi: 30}, W: 0}

	// Directional: independent of the surface point.
	d1 := light.Direction(mgl32.Vec3{0, 0, 0})
	d2 := light.Direction(mgl32.Vec3{5, 1, -3})
	if !vecNear(d1, d2, tol) {
		t.Errorf("directional light direction varies with surface: %v vs %v", d1, d2)
	}
	want := light.Orbit.Cartesian().Normalize()
	if !vecNear(d1, want, tol) {
		t.Errorf("directional direction = %v, want normalized position %v", d1, want)
	}

	// Point: varies with the surface point, always unit length.
	light.W = 1
	p1 := light.Direction(mgl32.Vec3{0, 0, 0})
	p2 := light.Direction(mgl32.Vec3{5, 1, -3})
	if vecNear(p1, p2, tol) {
		t.Errorf("point light direction should vary with surface, got %v both times", p1)
	}
	if l := p1.Len(); l < 1-tol || l > 1+tol {
		t.Errorf("point light direction not normalized: |%v| = %v", p1, l)
	}
}

func TestToggleLightType_OnlyW(t *testing.T) {
	scene := NewSceneState(testConfig())
	before := scene.Light

	scene.ToggleLightType()

	if scene.Light.W == before.W {
		t.Errorf("W should flip, still %v", scene.Light.W)
	}
	if scene.Light.Orbit != before.Orbit {
		t.Errorf("orbit changed on toggle: %+v -> %+v", before.Orbit, scene.Light.Orbit)
	}
	if scene.Light.Color != before.Color {
		t.Errorf("color changed on toggle")
	}

	scene.ToggleLightType()
	if scene.Light != before {
		t.Errorf("double toggle should restore the light exactly")
	}
}

func TestReset_RestoresDefaultsExactly(t *testing.T) {
	cfg := testConfig()
	scene := NewSceneState(cfg)
	pristine := NewSceneState(cfg)

	scene.Camera.Orbit = Spherical{Radius: 1, Theta: 123, Phi: -40}
	scene.Camera.Target = mgl32.Vec3{1, 2, 3}
	scene.Camera.Fov = 70
	scene.Light.Orbit = Spherical{Radius: 2, Theta: 11, Phi: 60}
	scene.ToggleLightType()
	scene.MarkerVisible = false
	scene.Recompute()

	scene.Reset()

	if scene.Camera != pristine.Camera {
		t.Errorf("camera after reset %+v, want %+v", scene.Camera, pristine.Camera)
	}
	if scene.Light != pristine.Light {
		t.Errorf("light after reset %+v, want %+v", scene.Light, pristine.Light)
	}
	if !scene.MarkerVisible {
		t.Errorf("marker should be visible after reset")
	}
	if scene.View != pristine.View || scene.Proj != pristine.Proj || scene.LightSpace != pristine.LightSpace {
		t.Errorf("matrices not recomputed to defaults after reset")
	}
}

// For a directional light the projection is orthographic: two points
// separated along the light direction land on the same texel.
func TestLightSpace_DirectionalIsParallel(t *testing.T) {
	light := Light{Orbit: Spherical{Radius: 6, Theta: 45, Phi: 30}, W: 0}
	m := lightSpaceMatrix(light)

	dir := light.Orbit.Cartesian().Normalize()
	p := mgl32.Vec3{1, 0.5, -1}
	q := p.Add(dir.Mul(2))

	u1, v1, _, in1 := ProjectLightSpace(m, p)
	u2, v2, _, in2 := ProjectLightSpace(m, q)
	if !in1 || !in2 {
		t.Fatalf("test points should project inside the frustum")
	}
	if mgl32.Abs(u1-u2) > tol || mgl32.Abs(v1-v2) > tol {
		t.Errorf("directional projection not parallel: (%v,%v) vs (%v,%v)", u1, v1, u2, v2)
	}
}

// For a point light the projection is perspective: the same two points
// must diverge.
func TestLightSpace_PointIsPerspective(t *testing.T) {
	light := Light{Orbit: Spherical{Radius: 6, Theta: 45, Phi: 30}, W: 1}
	m := lightSpaceMatrix(light)

	toLight := light.Orbit.Cartesian().Normalize()
	p := mgl32.Vec3{1, 0.5, -1}
	q := p.Add(toLight.Mul(-2))

	u1, v1, d1, in1 := ProjectLightSpace(m, p)
	u2, v2, d2, in2 := ProjectLightSpace(m, q)
	if !in1 || !in2 {
		t.Fatalf("test points should project inside the frustum")
	}
	if d2 <= d1 {
		t.Errorf("point farther from the light should have larger depth: %v <= %v", d2, d1)
	}
	if mgl32.Abs(u1-u2) <= tol && mgl32.Abs(v1-v2) <= tol {
		t.Errorf("perspective projection should diverge, both at (%v,%v)", u1, v1)
	}
}

func TestNormalMatrix_NonUniformScale(t *testing.T) {
	model := mgl32.Scale3D(2, 1, 1)
	n := NormalMatrix(model)

	// A normal on a slope of the scaled surface must stay perpendicular.
	surface := mgl32.Vec3{1, 1, 0}.Normalize() // direction within the surface, after scale
	normal := n.Mul3x1(mgl32.Vec3{1, -1, 0}.Normalize())
	scaledSurface := model.Mat3().Mul3x1(surface)
	if dot := normal.Dot(scaledSurface); mgl32.Abs(dot) > 1e-3 {
		t.Errorf("transformed normal not perpendicular to transformed surface, dot = %v", dot)
	}
}
