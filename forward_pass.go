package shadowbox

import (
	"github.com/cogentcore/webgpu/wgpu"

	"github.com/shadowbox3d/shadowbox/shaders"
)

// forwardObject is one lit, textured, shadow-receiving draw.
type forwardObject struct {
	mesh     string
	modelBuf *wgpu.Buffer
	texture  *Texture2D

	modelBind *wgpu.BindGroup
	texBind   *wgpu.BindGroup
}

// forwardPass draws the lit scene into the swapchain. Its texture bind
// groups are rebuilt whenever the asset server uploads something new, so
// a texture that finishes loading mid-run replaces its placeholder on the
// next frame.
type forwardPass struct {
	pipeline  *wgpu.RenderPipeline
	sceneBind *wgpu.BindGroup
	objects   []*forwardObject

	shadowView     *wgpu.TextureView
	diffuseSampler *wgpu.Sampler
	shadowSampler  *wgpu.Sampler

	texGeneration uint64
}

func newForwardPass(sceneBuf, lightSpaceBuf *wgpu.Buffer, objects []*forwardObject, shadowView *wgpu.TextureView, gpu *GpuState) *forwardPass {
	pipeline := createRenderPipeline("Forward Pass", shaders.ForwardWGSL, Vertex{}, gpu, pipelineOptions{
		depthCompare: wgpu.CompareFunctionLess,
		depthWrite:   true,
		cullMode:     wgpu.CullModeBack,
	})

	sceneBind := createBindGroup("Forward Scene", pipeline, 0, []wgpu.BindGroupEntry{
		{Binding: 0, Buffer: sceneBuf, Size: wgpu.WholeSize},
		{Binding: 1, Buffer: lightSpaceBuf, Size: wgpu.WholeSize},
	}, gpu.device)

	p := &forwardPass{
		pipeline:       pipeline,
		sceneBind:      sceneBind,
		objects:        objects,
		shadowView:     shadowView,
		diffuseSampler: createTextureSampler(gpu),
		shadowSampler:  createShadowSampler(gpu),
	}

	for _, obj := range objects {
		obj.modelBind = createBindGroup("Forward Model "+obj.mesh, pipeline, 1, []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: obj.modelBuf, Size: wgpu.WholeSize},
		}, gpu.device)
	}
	p.rebuildTextureBinds(gpu)

	return p
}

// rebuildTextureBinds points every object's texture bind group at its
// texture's current view, which is the placeholder until Ready.
func (p *forwardPass) rebuildTextureBinds(gpu *GpuState) {
	for _, obj := range p.objects {
		if obj.texBind != nil {
			obj.texBind.Release()
		}
		obj.texBind = createBindGroup("Forward Textures "+obj.mesh, p.pipeline, 2, []wgpu.BindGroupEntry{
			{Binding: 1, TextureView: obj.texture.View(), Size: wgpu.WholeSize},
			{Binding: 2, TextureView: p.shadowView, Size: wgpu.WholeSize},
			{Binding: 3, Sampler: p.diffuseSampler},
			{Binding: 4, Sampler: p.shadowSampler},
		}, gpu.device)
	}
}

func (p *forwardPass) refresh(assets *AssetServer, gpu *GpuState) {
	if assets.Generation != p.texGeneration {
		p.rebuildTextureBinds(gpu)
		p.texGeneration = assets.Generation
	}
}

func (p *forwardPass) draw(pass *wgpu.RenderPassEncoder, meshes *MeshRegistry) {
	pass.SetPipeline(p.pipeline)
	pass.SetBindGroup(0, p.sceneBind, nil)

	for _, obj := range p.objects {
		mesh, ok := meshes.Lookup(obj.mesh)
		if !ok {
			continue
		}
		pass.SetBindGroup(1, obj.modelBind, nil)
		pass.SetBindGroup(2, obj.texBind, nil)
		pass.DrawIndexed(mesh.IndexCount, 1, mesh.IndexOffset, 0, 0)
	}
}
