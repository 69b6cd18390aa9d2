package shadowbox

import (
	"github.com/go-gl/mathgl/mgl32"
)

// CPU mirror of the forward shader's shadow lookup. The renderer never
// calls these; they exist so the projection, bias and frustum rules can
// be checked without a GPU.

// ProjectLightSpace transforms a world position into shadow-map texture
// space: u and v in [0,1] with v flipped to texture orientation, depth in
// [0,1]. in reports whether the point lands inside the light's frustum;
// everything outside is treated as lit.
func ProjectLightSpace(lightSpace mgl32.Mat4, world mgl32.Vec3) (u, v, depth float32, in bool) {
	clip := lightSpace.Mul4x1(world.Vec4(1))
	if clip.W() == 0 {
		return 0, 0, 0, false
	}
	u = clip.X()/clip.W()*0.5 + 0.5
	v = 0.5 - clip.Y()/clip.W()*0.5
	depth = clip.Z() / clip.W()
	in = u >= 0 && u <= 1 && v >= 0 && v <= 1 && depth >= 0 && depth <= 1
	return u, v, depth, in
}

// Shadowed is the comparison the sampler performs: a fragment is lit when
// its biased depth passes LessEqual against the stored depth.
func Shadowed(storedDepth, fragmentDepth, bias float32) bool {
	return fragmentDepth-bias > storedDepth
}

// ShadowTerm evaluates the full lookup: 1 when occluded, 0 when lit or
// outside the frustum. lookup returns the stored shadow-map depth at a
// texture coordinate.
func ShadowTerm(lightSpace mgl32.Mat4, world mgl32.Vec3, bias float32, lookup func(u, v float32) float32) float32 {
	u, v, depth, in := ProjectLightSpace(lightSpace, world)
	if !in {
		return 0
	}
	if Shadowed(lookup(u, v), depth, bias) {
		return 1
	}
	return 0
}
