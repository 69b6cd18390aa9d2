package shadowbox

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestMeshRegistry_Contents(t *testing.T) {
	r := NewMeshRegistry()

	cube, ok := r.Lookup("cube")
	if !ok {
		t.Fatalf("cube mesh missing")
	}
	if cube.IndexCount != 36 {
		t.Errorf("cube index count = %d, want 36", cube.IndexCount)
	}

	floor, ok := r.Lookup("floor")
	if !ok {
		t.Fatalf("floor mesh missing")
	}
	if floor.IndexCount != 6 {
		t.Errorf("floor index count = %d, want 6", floor.IndexCount)
	}

	if _, ok := r.Lookup("teapot"); ok {
		t.Errorf("unknown mesh should not resolve")
	}
}

func TestMeshRegistry_IndicesInRange(t *testing.T) {
	r := NewMeshRegistry()

	for _, idx := range r.Indices {
		if int(idx) >= len(r.Vertices) {
			t.Fatalf("index %d out of range, %d vertices", idx, len(r.Vertices))
		}
	}
	for _, name := range r.Names() {
		mesh, _ := r.Lookup(name)
		if int(mesh.IndexOffset+mesh.IndexCount) > len(r.Indices) {
			t.Errorf("%s: index window [%d,%d) exceeds %d indices",
				name, mesh.IndexOffset, mesh.IndexOffset+mesh.IndexCount, len(r.Indices))
		}
	}
}

func TestMeshRegistry_CubeNormals(t *testing.T) {
	r := NewMeshRegistry()
	cube, _ := r.Lookup("cube")

	// The cube is centered at the origin, so every face normal must point
	// away from the center and have unit length.
	seen := map[int]struct{}{}
	for i := cube.IndexOffset; i < cube.IndexOffset+cube.IndexCount; i++ {
		seen[int(r.Indices[i])] = struct{}{}
	}
	for vi := range seen {
		v := r.Vertices[vi]
		n := mgl32.Vec3{v.Normal[0], v.Normal[1], v.Normal[2]}
		p := mgl32.Vec3{v.Pos[0], v.Pos[1], v.Pos[2]}

		if l := n.Len(); l < 1-tol || l > 1+tol {
			t.Errorf("vertex %d: |normal| = %v, want 1", vi, l)
		}
		if n.Dot(p) <= 0 {
			t.Errorf("vertex %d: normal %v points inward at %v", vi, n, p)
		}
	}
}

func TestMeshRegistry_FloorNormalUp(t *testing.T) {
	r := NewMeshRegistry()
	floor, _ := r.Lookup("floor")

	up := mgl32.Vec3{0, 1, 0}
	for i := floor.IndexOffset; i < floor.IndexOffset+floor.IndexCount; i++ {
		v := r.Vertices[r.Indices[i]]
		n := mgl32.Vec3{v.Normal[0], v.Normal[1], v.Normal[2]}
		if !vecNear(n, up, tol) {
			t.Errorf("floor normal %v, want %v", n, up)
		}
		if v.Pos[1] != 0 {
			t.Errorf("floor vertex y = %v, want 0", v.Pos[1])
		}
	}
}

// Winding must agree with the stored normals: the cross product of each
// triangle's edges is the geometric face normal, and it must point the
// same way as the vertex normals for front faces to be counter-clockwise.
func TestMeshRegistry_Winding(t *testing.T) {
	r := NewMeshRegistry()

	for tri := 0; tri+2 < len(r.Indices); tri += 3 {
		a := r.Vertices[r.Indices[tri]]
		b := r.Vertices[r.Indices[tri+1]]
		c := r.Vertices[r.Indices[tri+2]]

		pa := mgl32.Vec3{a.Pos[0], a.Pos[1], a.Pos[2]}
		pb := mgl32.Vec3{b.Pos[0], b.Pos[1], b.Pos[2]}
		pc := mgl32.Vec3{c.Pos[0], c.Pos[1], c.Pos[2]}
		n := mgl32.Vec3{a.Normal[0], a.Normal[1], a.Normal[2]}

		face := pb.Sub(pa).Cross(pc.Sub(pa))
		if face.Dot(n) <= 0 {
			t.Errorf("triangle %d wound against its normal", tri/3)
		}
	}
}

func TestMeshRegistry_FloorUVTiling(t *testing.T) {
	r := NewMeshRegistry()
	floor, _ := r.Lookup("floor")

	maxUV := float32(0)
	for i := floor.IndexOffset; i < floor.IndexOffset+floor.IndexCount; i++ {
		v := r.Vertices[r.Indices[i]]
		if v.UV[0] > maxUV {
			maxUV = v.UV[0]
		}
	}
	if maxUV != floorUVTile {
		t.Errorf("floor max u = %v, want %v for repeat tiling", maxUV, float32(floorUVTile))
	}
}
