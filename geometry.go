package shadowbox

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Vertex matches the WGSL vertex inputs. Layout tags drive the wgpu
// vertex buffer layout, see vertexBufferLayout.
type Vertex struct {
	Pos    [3]float32 `shadowbox:"layout" format:"float3" location:"0"`
	Normal [3]float32 `shadowbox:"layout" format:"float3" location:"1"`
	UV     [2]float32 `shadowbox:"layout" format:"float2" location:"2"`
}

// Mesh is a named window into the registry's shared vertex/index arrays.
// Immutable after construction; draw calls reference it, never copy it.
type Mesh struct {
	Name         string
	VertexOffset uint32
	IndexOffset  uint32
	IndexCount   uint32
}

// MeshRegistry owns one flat vertex slice and one flat index slice for
// every mesh in the scene. Built once at startup; the GPU buffers are
// uploaded from these exact slices.
type MeshRegistry struct {
	Vertices []Vertex
	Indices  []uint16

	meshes map[string]Mesh
}

const (
	floorExtent = 10.0
	floorUVTile = 10.0
)

// NewMeshRegistry builds the unit cube and the floor quad. Normals are
// face normals from the cross product of two edge vectors, duplicated per
// vertex; there is no vertex sharing across faces.
func NewMeshRegistry() *MeshRegistry {
	r := &MeshRegistry{meshes: make(map[string]Mesh)}
	r.buildCube()
	r.buildFloor()
	return r
}

func (r *MeshRegistry) Lookup(name string) (Mesh, bool) {
	m, ok := r.meshes[name]
	return m, ok
}

func (r *MeshRegistry) Names() []string {
	names := make([]string, 0, len(r.meshes))
	for name := range r.meshes {
		names = append(names, name)
	}
	return names
}

// begin/finish bracket the construction of one named mesh.
func (r *MeshRegistry) begin() (vertexOffset, indexOffset uint32) {
	return uint32(len(r.Vertices)), uint32(len(r.Indices))
}

func (r *MeshRegistry) finish(name string, vertexOffset, indexOffset uint32) {
	r.meshes[name] = Mesh{
		Name:         name,
		VertexOffset: vertexOffset,
		IndexOffset:  indexOffset,
		IndexCount:   uint32(len(r.Indices)) - indexOffset,
	}
}

// appendQuad adds one quad given its corners in counter-clockwise order as
// seen from outside. The face normal is the cross product of the two edge
// vectors leaving the first corner.
func (r *MeshRegistry) appendQuad(corners [4]mgl32.Vec3, uvs [4][2]float32) {
	e1 := corners[1].Sub(corners[0])
	e2 := corners[3].Sub(corners[0])
	n := e1.Cross(e2).Normalize()

	base := uint16(len(r.Vertices))
	for i := 0; i < 4; i++ {
		r.Vertices = append(r.Vertices, Vertex{
			Pos:    [3]float32{corners[i].X(), corners[i].Y(), corners[i].Z()},
			Normal: [3]float32{n.X(), n.Y(), n.Z()},
			UV:     uvs[i],
		})
	}
	r.Indices = append(r.Indices,
		base, base+1, base+2,
		base, base+2, base+3,
	)
}

func (r *MeshRegistry) buildCube() {
	vo, io := r.begin()

	const h = float32(0.5)
	uv := [4][2]float32{{0, 0}, {1, 0}, {1, 1}, {0, 1}}

	// +Z
	r.appendQuad([4]mgl32.Vec3{{-h, -h, h}, {h, -h, h}, {h, h, h}, {-h, h, h}}, uv)
	// -Z
	r.appendQuad([4]mgl32.Vec3{{h, -h, -h}, {-h, -h, -h}, {-h, h, -h}, {h, h, -h}}, uv)
	// +X
	r.appendQuad([4]mgl32.Vec3{{h, -h, h}, {h, -h, -h}, {h, h, -h}, {h, h, h}}, uv)
	// -X
	r.appendQuad([4]mgl32.Vec3{{-h, -h, -h}, {-h, -h, h}, {-h, h, h}, {-h, h, -h}}, uv)
	// +Y
	r.appendQuad([4]mgl32.Vec3{{-h, h, h}, {h, h, h}, {h, h, -h}, {-h, h, -h}}, uv)
	// -Y
	r.appendQuad([4]mgl32.Vec3{{-h, -h, -h}, {h, -h, -h}, {h, -h, h}, {-h, -h, h}}, uv)

	r.finish("cube", vo, io)
}

func (r *MeshRegistry) buildFloor() {
	vo, io := r.begin()

	const e = float32(floorExtent)
	const t = float32(floorUVTile)
	r.appendQuad(
		[4]mgl32.Vec3{{-e, 0, e}, {e, 0, e}, {e, 0, -e}, {-e, 0, -e}},
		[4][2]float32{{0, 0}, {t, 0}, {t, t}, {0, t}},
	)

	r.finish("floor", vo, io)
}
