package shadowbox

import (
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
)

const markerScale = 0.2

// sceneUniforms mirrors the forward shader's SceneUniforms block. All
// fields are mat4 or vec4, so the packed little-endian bytes match the
// WGSL layout with no padding.
type sceneUniforms struct {
	View         mgl32.Mat4
	Proj         mgl32.Mat4
	ViewPos      mgl32.Vec4
	LightPos     mgl32.Vec4
	LightColor   mgl32.Vec4
	Material     mgl32.Vec4
	ShadowParams mgl32.Vec4
}

type modelUniforms struct {
	Model  mgl32.Mat4
	Normal mgl32.Mat4
}

type skyUniforms struct {
	ViewRot mgl32.Mat4
	Proj    mgl32.Mat4
}

type markerUniforms struct {
	Mvp   mgl32.Mat4
	Color mgl32.Vec4
}

// RendererState owns every GPU object of the four passes plus the shared
// geometry and uniform buffers.
type RendererState struct {
	meshes    *MeshRegistry
	vertexBuf *wgpu.Buffer
	indexBuf  *wgpu.Buffer

	// lightSpaceBuf is written once per frame and bound by both the
	// shadow and the forward pass, so they read identical bytes.
	lightSpaceBuf *wgpu.Buffer
	sceneBuf      *wgpu.Buffer
	skyBuf        *wgpu.Buffer
	markerBuf     *wgpu.Buffer

	shadow  *shadowPass
	forward *forwardPass
	sky     *skyboxPass
	marker  *markerPass

	windowDepthTexture *wgpu.Texture
	windowDepthView    *wgpu.TextureView
	depthWidth         uint32
	depthHeight        uint32

	logger Logger
}

// RendererModule creates the GPU device, uploads geometry, kicks off the
// texture loads and builds the four passes. Requires PlatformWindowModule,
// SceneModule and AssetServerModule to be installed first.
type RendererModule struct {
	Config Config
}

func (m RendererModule) Install(app *App, cmd *Commands) {
	ws := Resource[WindowState](app)
	if ws == nil {
		panic("RendererModule requires PlatformWindowModule")
	}
	scene := Resource[SceneState](app)
	if scene == nil {
		panic("RendererModule requires SceneModule")
	}
	assets := Resource[AssetServer](app)
	if assets == nil {
		panic("RendererModule requires AssetServerModule")
	}

	gpu := createGpuState(ws)
	app.addResources(gpu)

	meshes := NewMeshRegistry()
	vertexBuf, indexBuf := createVertexIndexBuffers(meshes.Vertices, meshes.Indices, gpu.device)

	diffuseTx := assets.LoadTexture2D(m.Config.Assets.DiffuseMap, gpu)
	floorTx := assets.LoadTexture2D(m.Config.Assets.FloorMap, gpu)
	skyCube := assets.LoadCubemap(m.Config.Assets.CubemapFaces, gpu)

	lightSpaceBuf := createUniformBuffer("Light Space", scene.LightSpace, gpu)
	sceneBuf := createUniformBuffer("Scene Uniforms", buildSceneUniforms(scene), gpu)
	skyBuf := createUniformBuffer("Sky Uniforms", buildSkyUniforms(scene), gpu)
	markerBuf := createUniformBuffer("Marker Uniforms", buildMarkerUniforms(scene), gpu)

	cubeModel := mgl32.Translate3D(0, 0.5, 0)
	cubeModelBuf := createUniformBuffer("Cube Model", modelUniformsFor(cubeModel), gpu)
	floorModelBuf := createUniformBuffer("Floor Model", modelUniformsFor(mgl32.Ident4()), gpu)

	shadow := newShadowPass(
		m.Config.Shadow.MapSize,
		lightSpaceBuf,
		[]string{"cube", "floor"},
		[]*wgpu.Buffer{cubeModelBuf, floorModelBuf},
		gpu,
	)

	forward := newForwardPass(sceneBuf, lightSpaceBuf, []*forwardObject{
		{mesh: "cube", modelBuf: cubeModelBuf, texture: diffuseTx},
		{mesh: "floor", modelBuf: floorModelBuf, texture: floorTx},
	}, shadow.depthView, gpu)

	sky := newSkyboxPass(skyBuf, skyCube, gpu)
	marker := newMarkerPass(markerBuf, gpu)

	depthTexture, depthView := createWindowDepthTexture(uint32(ws.WindowWidth), uint32(ws.WindowHeight), gpu)

	app.addResources(&RendererState{
		meshes:             meshes,
		vertexBuf:          vertexBuf,
		indexBuf:           indexBuf,
		lightSpaceBuf:      lightSpaceBuf,
		sceneBuf:           sceneBuf,
		skyBuf:             skyBuf,
		markerBuf:          markerBuf,
		shadow:             shadow,
		forward:            forward,
		sky:                sky,
		marker:             marker,
		windowDepthTexture: depthTexture,
		windowDepthView:    depthView,
		depthWidth:         uint32(ws.WindowWidth),
		depthHeight:        uint32(ws.WindowHeight),
		logger:             app.Logger(),
	})

	app.UseSystem(
		System(matrixUploadSystem).
			InStage(PreRender),
	)
	app.UseSystem(
		System(renderSystem).
			InStage(Render),
	)

	app.Logger().Infof("renderer ready: %dx%d window, %d shadow map",
		ws.WindowWidth, ws.WindowHeight, m.Config.Shadow.MapSize)
}

func buildSceneUniforms(s *SceneState) sceneUniforms {
	return sceneUniforms{
		View:         s.View,
		Proj:         s.Proj,
		ViewPos:      s.Camera.Eye().Vec4(1),
		LightPos:     s.Light.Position(),
		LightColor:   mgl32.Vec4{s.Light.Color[0], s.Light.Color[1], s.Light.Color[2], 1},
		Material:     mgl32.Vec4{s.Material.Ambient, s.Material.Diffuse, s.Material.Specular, s.Material.Shininess},
		ShadowParams: mgl32.Vec4{s.ShadowBias, 0, 0, 0},
	}
}

func buildSkyUniforms(s *SceneState) skyUniforms {
	// Dropping the translation keeps the box centered on the camera.
	return skyUniforms{
		ViewRot: s.View.Mat3().Mat4(),
		Proj:    s.Proj,
	}
}

func buildMarkerUniforms(s *SceneState) markerUniforms {
	pos := s.Light.Orbit.Cartesian()
	model := mgl32.Translate3D(pos.X(), pos.Y(), pos.Z()).Mul4(mgl32.Scale3D(markerScale, markerScale, markerScale))
	return markerUniforms{
		Mvp:   s.Proj.Mul4(s.View).Mul4(model),
		Color: mgl32.Vec4{s.Light.Color[0], s.Light.Color[1], s.Light.Color[2], 1},
	}
}

func modelUniformsFor(model mgl32.Mat4) modelUniforms {
	return modelUniforms{
		Model:  model,
		Normal: NormalMatrix(model).Mat4(),
	}
}

// matrixUploadSystem recomputes the scene matrices after the frame's
// input mutations and uploads every per-frame uniform. Runs in PreRender
// so both passes of the same frame see the same values.
func matrixUploadSystem(scene *SceneState, rs *RendererState, gpu *GpuState) {
	scene.Recompute()

	writeUniformBuffer(rs.lightSpaceBuf, scene.LightSpace, gpu.queue)
	writeUniformBuffer(rs.sceneBuf, buildSceneUniforms(scene), gpu.queue)
	writeUniformBuffer(rs.skyBuf, buildSkyUniforms(scene), gpu.queue)
	writeUniformBuffer(rs.markerBuf, buildMarkerUniforms(scene), gpu.queue)
}

// renderSystem encodes and submits one frame: shadow depth first, then
// the main pass with forward geometry, skybox and marker sharing one
// color/depth attachment pair.
func renderSystem(rs *RendererState, gpu *GpuState, ws *WindowState, scene *SceneState, assets *AssetServer) {
	if ws.WindowWidth <= 0 || ws.WindowHeight <= 0 {
		return // minimized
	}
	gpu.resizeSurface(ws.WindowWidth, ws.WindowHeight)
	rs.ensureWindowDepth(uint32(ws.WindowWidth), uint32(ws.WindowHeight), gpu)

	rs.forward.refresh(assets, gpu)
	rs.sky.refresh(assets, gpu)

	nextTexture, err := gpu.surface.GetCurrentTexture()
	if err != nil {
		panic(err)
	}
	view, err := nextTexture.CreateView(nil)
	if err != nil {
		panic(err)
	}
	defer view.Release()
	encoder, err := gpu.device.CreateCommandEncoder(nil)
	if err != nil {
		panic(err)
	}
	defer encoder.Release()

	rs.shadow.encode(encoder, rs.meshes, rs.vertexBuf, rs.indexBuf)

	renderPass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		Label: "Main Pass",
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			{
				View:       view,
				LoadOp:     wgpu.LoadOpClear,
				StoreOp:    wgpu.StoreOpStore,
				ClearValue: wgpu.Color{R: 0.02, G: 0.02, B: 0.03, A: 1.0},
			},
		},
		DepthStencilAttachment: &wgpu.RenderPassDepthStencilAttachment{
			View:            rs.windowDepthView,
			DepthLoadOp:     wgpu.LoadOpClear,
			DepthStoreOp:    wgpu.StoreOpStore,
			DepthClearValue: 1.0,
		},
	})
	defer renderPass.Release()

	vx, vy, side := ws.SquareViewport()
	renderPass.SetViewport(vx, vy, side, side, 0, 1)

	renderPass.SetVertexBuffer(0, rs.vertexBuf, 0, wgpu.WholeSize)
	renderPass.SetIndexBuffer(rs.indexBuf, wgpu.IndexFormatUint16, 0, wgpu.WholeSize)

	rs.forward.draw(renderPass, rs.meshes)
	rs.sky.draw(renderPass, rs.meshes)
	rs.marker.draw(renderPass, rs.meshes, scene.MarkerVisible)

	if err := renderPass.End(); err != nil {
		panic(err)
	}

	cmdBuffer, err := encoder.Finish(nil)
	if err != nil {
		panic(err)
	}
	defer cmdBuffer.Release()

	gpu.queue.Submit(cmdBuffer)
	gpu.surface.Present()
}

func (rs *RendererState) ensureWindowDepth(width, height uint32, gpu *GpuState) {
	if rs.depthWidth == width && rs.depthHeight == height {
		return
	}
	rs.windowDepthView.Release()
	rs.windowDepthTexture.Release()
	rs.windowDepthTexture, rs.windowDepthView = createWindowDepthTexture(width, height, gpu)
	rs.depthWidth = width
	rs.depthHeight = height
	rs.logger.Debugf("window depth buffer resized to %dx%d", width, height)
}
