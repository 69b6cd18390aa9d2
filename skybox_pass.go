package shadowbox

import (
	"github.com/cogentcore/webgpu/wgpu"

	"github.com/shadowbox3d/shadowbox/shaders"
)

// skyboxPass draws the cubemap background. It runs inside the main render
// pass after the lit geometry: the shader forces every fragment onto the
// far plane and the pipeline compares LessEqual without writing depth, so
// sky only appears where nothing else drew.
type skyboxPass struct {
	pipeline  *wgpu.RenderPipeline
	sceneBind *wgpu.BindGroup
	texBind   *wgpu.BindGroup

	cubemap *Cubemap
	sampler *wgpu.Sampler

	texGeneration uint64
}

func newSkyboxPass(skyBuf *wgpu.Buffer, cubemap *Cubemap, gpu *GpuState) *skyboxPass {
	// The box is viewed from inside, so back-face culling would drop
	// every triangle.
	pipeline := createRenderPipeline("Skybox Pass", shaders.SkyboxWGSL, Vertex{}, gpu, pipelineOptions{
		depthCompare: wgpu.CompareFunctionLessEqual,
		depthWrite:   false,
		cullMode:     wgpu.CullModeNone,
	})

	sceneBind := createBindGroup("Skybox Scene", pipeline, 0, []wgpu.BindGroupEntry{
		{Binding: 0, Buffer: skyBuf, Size: wgpu.WholeSize},
	}, gpu.device)

	p := &skyboxPass{
		pipeline:  pipeline,
		sceneBind: sceneBind,
		cubemap:   cubemap,
		sampler:   createCubemapSampler(gpu),
	}
	p.rebuildTextureBind(gpu)
	return p
}

func (p *skyboxPass) rebuildTextureBind(gpu *GpuState) {
	if p.texBind != nil {
		p.texBind.Release()
	}
	p.texBind = createBindGroup("Skybox Cubemap", p.pipeline, 1, []wgpu.BindGroupEntry{
		{Binding: 0, TextureView: p.cubemap.View(), Size: wgpu.WholeSize},
		{Binding: 1, Sampler: p.sampler},
	}, gpu.device)
}

func (p *skyboxPass) refresh(assets *AssetServer, gpu *GpuState) {
	if assets.Generation != p.texGeneration {
		p.rebuildTextureBind(gpu)
		p.texGeneration = assets.Generation
	}
}

func (p *skyboxPass) draw(pass *wgpu.RenderPassEncoder, meshes *MeshRegistry) {
	// Sampling a half-loaded cubemap would show magenta seams; wait for
	// all six faces instead.
	if !p.cubemap.Ready {
		return
	}
	mesh, ok := meshes.Lookup("cube")
	if !ok {
		return
	}
	pass.SetPipeline(p.pipeline)
	pass.SetBindGroup(0, p.sceneBind, nil)
	pass.SetBindGroup(1, p.texBind, nil)
	pass.DrawIndexed(mesh.IndexCount, 1, mesh.IndexOffset, 0, 0)
}
