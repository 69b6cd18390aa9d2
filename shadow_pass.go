package shadowbox

import (
	"github.com/cogentcore/webgpu/wgpu"

	"github.com/shadowbox3d/shadowbox/shaders"
)

// shadowPass renders scene depth from the light's point of view into the
// dedicated square depth attachment. The pipeline has no fragment stage
// and the pass no color attachments, so nothing but depth can be written.
type shadowPass struct {
	pipeline  *wgpu.RenderPipeline
	lightBind *wgpu.BindGroup

	depthTexture *wgpu.Texture
	depthView    *wgpu.TextureView
	size         uint32

	casters     []string
	casterBinds []*wgpu.BindGroup
}

// newShadowPass creates the depth attachment, the depth-only pipeline and
// the bind groups. lightSpaceBuf is the uniform buffer shared with the
// forward pass; casters maps mesh names to their model uniform buffers.
func newShadowPass(size uint32, lightSpaceBuf *wgpu.Buffer, casters []string, modelBufs []*wgpu.Buffer, gpu *GpuState) *shadowPass {
	texture, view := createShadowDepthTexture(size, gpu)

	pipeline := createRenderPipeline("Shadow Pass", shaders.ShadowDepthWGSL, Vertex{}, gpu, pipelineOptions{
		depthOnly:      true,
		depthCompare:   wgpu.CompareFunctionLessEqual,
		cullMode:       wgpu.CullModeBack,
		depthBias:      2,
		depthBiasSlope: 2.0,
	})

	lightBind := createBindGroup("Shadow Light Space", pipeline, 0, []wgpu.BindGroupEntry{
		{Binding: 0, Buffer: lightSpaceBuf, Size: wgpu.WholeSize},
	}, gpu.device)

	casterBinds := make([]*wgpu.BindGroup, len(casters))
	for i, buf := range modelBufs {
		casterBinds[i] = createBindGroup("Shadow Caster "+casters[i], pipeline, 1, []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: buf, Size: wgpu.WholeSize},
		}, gpu.device)
	}

	return &shadowPass{
		pipeline:     pipeline,
		lightBind:    lightBind,
		depthTexture: texture,
		depthView:    view,
		size:         size,
		casters:      casters,
		casterBinds:  casterBinds,
	}
}

// encode records the depth pass. The pass viewport is the full shadow
// map; the window viewport is untouched because wgpu viewport state is
// scoped to a single render pass.
func (p *shadowPass) encode(encoder *wgpu.CommandEncoder, meshes *MeshRegistry, vertexBuf, indexBuf *wgpu.Buffer) {
	pass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		Label:            "Shadow Pass",
		ColorAttachments: nil,
		DepthStencilAttachment: &wgpu.RenderPassDepthStencilAttachment{
			View:            p.depthView,
			DepthLoadOp:     wgpu.LoadOpClear,
			DepthStoreOp:    wgpu.StoreOpStore,
			DepthClearValue: 1.0,
		},
	})
	defer pass.Release()

	pass.SetPipeline(p.pipeline)
	pass.SetVertexBuffer(0, vertexBuf, 0, wgpu.WholeSize)
	pass.SetIndexBuffer(indexBuf, wgpu.IndexFormatUint16, 0, wgpu.WholeSize)
	pass.SetBindGroup(0, p.lightBind, nil)

	for i, name := range p.casters {
		mesh, ok := meshes.Lookup(name)
		if !ok {
			continue
		}
		pass.SetBindGroup(1, p.casterBinds[i], nil)
		pass.DrawIndexed(mesh.IndexCount, 1, mesh.IndexOffset, 0, 0)
	}

	if err := pass.End(); err != nil {
		panic(err)
	}
}
