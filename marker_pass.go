package shadowbox

import (
	"github.com/cogentcore/webgpu/wgpu"

	"github.com/shadowbox3d/shadowbox/shaders"
)

// markerPass draws a small unlit cube at the light's position. Purely a
// debugging aid; toggleable at runtime.
type markerPass struct {
	pipeline *wgpu.RenderPipeline
	bind     *wgpu.BindGroup
}

func newMarkerPass(markerBuf *wgpu.Buffer, gpu *GpuState) *markerPass {
	pipeline := createRenderPipeline("Marker Pass", shaders.MarkerWGSL, Vertex{}, gpu, pipelineOptions{
		depthCompare: wgpu.CompareFunctionLess,
		depthWrite:   true,
		cullMode:     wgpu.CullModeBack,
	})

	bind := createBindGroup("Marker", pipeline, 0, []wgpu.BindGroupEntry{
		{Binding: 0, Buffer: markerBuf, Size: wgpu.WholeSize},
	}, gpu.device)

	return &markerPass{pipeline: pipeline, bind: bind}
}

func (p *markerPass) draw(pass *wgpu.RenderPassEncoder, meshes *MeshRegistry, visible bool) {
	if !visible {
		return
	}
	mesh, ok := meshes.Lookup("cube")
	if !ok {
		return
	}
	pass.SetPipeline(p.pipeline)
	pass.SetBindGroup(0, p.bind, nil)
	pass.DrawIndexed(mesh.IndexCount, 1, mesh.IndexOffset, 0, 0)
}
