package shadowbox

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/google/uuid"
	xdraw "golang.org/x/image/draw"
)

type AssetId string

func makeAssetId() AssetId {
	return AssetId(uuid.NewString())
}

// Cubemap face order is fixed: +X, -X, +Y, -Y, +Z, -Z
// (right, left, top, bottom, front, back).
const cubemapFaceCount = 6

// Texture2D is a color texture with a full mip chain. View points at the
// placeholder until the decoded image has been uploaded on the frame
// thread; Ready flips exactly then.
type Texture2D struct {
	Id    AssetId
	Ready bool

	texture *wgpu.Texture
	view    *wgpu.TextureView
}

func (t *Texture2D) View() *wgpu.TextureView {
	return t.view
}

// Cubemap becomes Ready only after all six faces have uploaded. Faces
// decode concurrently and may complete in any order.
type Cubemap struct {
	Id    AssetId
	Ready bool

	texture     *wgpu.Texture
	view        *wgpu.TextureView
	size        uint32
	facesLoaded [cubemapFaceCount]bool
}

func (c *Cubemap) View() *wgpu.TextureView {
	return c.view
}

func (c *Cubemap) loadedFaces() int {
	n := 0
	for _, ok := range c.facesLoaded {
		if ok {
			n++
		}
	}
	return n
}

// decodedImage travels from a decoder goroutine to the frame thread.
// face is -1 for 2D textures, which also carry their mip chain; cubemap
// faces are single-level.
type decodedImage struct {
	id     AssetId
	path   string
	face   int
	img    *image.RGBA
	levels []*image.RGBA
	err    error
}

// AssetServer owns texture loading. Decoding runs on goroutines; all GPU
// work happens on the frame thread when assetUploadSystem drains the
// completion queue. Generation increments on every upload so render
// passes know when to rebuild bind groups.
type AssetServer struct {
	Generation uint64

	textures map[AssetId]*Texture2D
	cubemaps map[AssetId]*Cubemap

	completions chan decodedImage
	logger      Logger

	placeholderView *wgpu.TextureView
	placeholderCube *wgpu.TextureView
}

type AssetServerModule struct{}

func (AssetServerModule) Install(app *App, cmd *Commands) {
	app.addResources(&AssetServer{
		textures:    make(map[AssetId]*Texture2D),
		cubemaps:    make(map[AssetId]*Cubemap),
		completions: make(chan decodedImage, 64),
		logger:      app.Logger(),
	})
	app.UseSystem(
		System(assetUploadSystem).
			InStage(PreRender),
	)
}

// LoadTexture2D starts an async load. The returned texture is immediately
// bindable (placeholder) and swaps to the decoded image once uploaded.
func (server *AssetServer) LoadTexture2D(path string, gpu *GpuState) *Texture2D {
	server.ensurePlaceholders(gpu)

	tx := &Texture2D{
		Id:   makeAssetId(),
		view: server.placeholderView,
	}
	server.textures[tx.Id] = tx

	go func() {
		img, err := decodeRGBA(path)
		done := decodedImage{id: tx.Id, path: path, face: -1, img: img, err: err}
		if err == nil {
			done.levels = buildMipChain(img)
		}
		server.completions <- done
	}()
	return tx
}

// LoadCubemap starts six async face loads in the fixed
// right/left/top/bottom/front/back order.
func (server *AssetServer) LoadCubemap(faces [cubemapFaceCount]string, gpu *GpuState) *Cubemap {
	server.ensurePlaceholders(gpu)

	cm := &Cubemap{
		Id:   makeAssetId(),
		view: server.placeholderCube,
	}
	server.cubemaps[cm.Id] = cm

	for i, path := range faces {
		go func(face int, path string) {
			img, err := decodeRGBA(path)
			server.completions <- decodedImage{id: cm.Id, path: path, face: face, img: img, err: err}
		}(i, path)
	}
	return cm
}

func decodeRGBA(path string) (*image.RGBA, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return toRGBA(img), nil
}

func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba
	}
	bounds := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	xdraw.Draw(rgba, rgba.Bounds(), img, bounds.Min, xdraw.Src)
	return rgba
}

// buildMipChain returns the image followed by successively halved levels
// down to 1x1, scaled with bilinear filtering.
func buildMipChain(base *image.RGBA) []*image.RGBA {
	levels := []*image.RGBA{base}
	w, h := base.Bounds().Dx(), base.Bounds().Dy()
	for w > 1 || h > 1 {
		w = max(w/2, 1)
		h = max(h/2, 1)
		level := image.NewRGBA(image.Rect(0, 0, w, h))
		xdraw.BiLinear.Scale(level, level.Bounds(), levels[len(levels)-1], levels[len(levels)-1].Bounds(), xdraw.Src, nil)
		levels = append(levels, level)
	}
	return levels
}

func mipLevelCount(w, h int) uint32 {
	n := uint32(1)
	for w > 1 || h > 1 {
		w = max(w/2, 1)
		h = max(h/2, 1)
		n++
	}
	return n
}

// assetUploadSystem drains finished decodes and uploads them. Runs in
// PreRender so a texture finishing mid-frame is visible the same frame.
func assetUploadSystem(server *AssetServer, gpu *GpuState) {
	for {
		select {
		case done := <-server.completions:
			server.apply(done, gpu)
		default:
			return
		}
	}
}

func (server *AssetServer) apply(done decodedImage, gpu *GpuState) {
	if done.err != nil {
		server.logger.Warnf("texture load failed, keeping placeholder: %v", done.err)
		return
	}
	if done.face < 0 {
		server.applyTexture2D(done, gpu)
	} else {
		server.applyCubemapFace(done, gpu)
	}
	server.Generation++
}

func (server *AssetServer) applyTexture2D(done decodedImage, gpu *GpuState) {
	tx, ok := server.textures[done.id]
	if !ok {
		return
	}
	logger := server.logger

	levels := done.levels
	if len(levels) == 0 {
		levels = buildMipChain(done.img)
	}
	w := uint32(done.img.Bounds().Dx())
	h := uint32(done.img.Bounds().Dy())

	texture, err := gpu.device.CreateTexture(&wgpu.TextureDescriptor{
		Label: done.path,
		Size: wgpu.Extent3D{
			Width:              w,
			Height:             h,
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: uint32(len(levels)),
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        wgpu.TextureFormatRGBA8Unorm,
		Usage:         wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
	})
	if err != nil {
		logger.Warnf("texture %s: create failed, keeping placeholder: %v", done.path, err)
		return
	}

	for level, img := range levels {
		writeTextureLevel(texture, uint32(level), 0, img, gpu)
	}

	view, err := texture.CreateView(nil)
	if err != nil {
		logger.Warnf("texture %s: view failed, keeping placeholder: %v", done.path, err)
		texture.Release()
		return
	}

	tx.texture = texture
	tx.view = view
	tx.Ready = true
	logger.Debugf("texture %s ready (%dx%d, %d mips)", done.path, w, h, len(levels))
}

func (server *AssetServer) applyCubemapFace(done decodedImage, gpu *GpuState) {
	cm, ok := server.cubemaps[done.id]
	if !ok {
		return
	}
	logger := server.logger

	w := done.img.Bounds().Dx()
	h := done.img.Bounds().Dy()
	if w != h {
		logger.Warnf("cubemap face %s: %dx%d is not square, dropping face", done.path, w, h)
		return
	}

	if cm.texture == nil {
		texture, err := gpu.device.CreateTexture(&wgpu.TextureDescriptor{
			Label: done.path,
			Size: wgpu.Extent3D{
				Width:              uint32(w),
				Height:             uint32(h),
				DepthOrArrayLayers: cubemapFaceCount,
			},
			MipLevelCount: 1,
			SampleCount:   1,
			Dimension:     wgpu.TextureDimension2D,
			Format:        wgpu.TextureFormatRGBA8Unorm,
			Usage:         wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
		})
		if err != nil {
			logger.Warnf("cubemap face %s: create failed: %v", done.path, err)
			return
		}
		cm.texture = texture
		cm.size = uint32(w)
	}
	if uint32(w) != cm.size {
		logger.Warnf("cubemap face %s: %dx%d does not match cubemap size %d, dropping face", done.path, w, h, cm.size)
		return
	}

	writeTextureLevel(cm.texture, 0, uint32(done.face), done.img, gpu)
	cm.facesLoaded[done.face] = true

	if cm.loadedFaces() == cubemapFaceCount {
		view, err := cm.texture.CreateView(&wgpu.TextureViewDescriptor{
			Label:           "Cubemap View",
			Format:          wgpu.TextureFormatRGBA8Unorm,
			Dimension:       wgpu.TextureViewDimensionCube,
			BaseMipLevel:    0,
			MipLevelCount:   1,
			BaseArrayLayer:  0,
			ArrayLayerCount: cubemapFaceCount,
		})
		if err != nil {
			logger.Warnf("cubemap view failed, keeping placeholder: %v", err)
			return
		}
		cm.view = view
		cm.Ready = true
		logger.Debugf("cubemap ready (%dx%d per face)", cm.size, cm.size)
	}
}

func writeTextureLevel(texture *wgpu.Texture, mipLevel uint32, arrayLayer uint32, img *image.RGBA, gpu *GpuState) {
	w := uint32(img.Bounds().Dx())
	h := uint32(img.Bounds().Dy())
	err := gpu.queue.WriteTexture(
		&wgpu.ImageCopyTexture{
			Texture:  texture,
			MipLevel: mipLevel,
			Origin:   wgpu.Origin3D{X: 0, Y: 0, Z: arrayLayer},
			Aspect:   wgpu.TextureAspectAll,
		},
		img.Pix,
		&wgpu.TextureDataLayout{
			Offset:       0,
			BytesPerRow:  uint32(img.Stride),
			RowsPerImage: h,
		},
		&wgpu.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
	)
	if err != nil {
		panic(err)
	}
}

// ensurePlaceholders lazily creates the 1x1 opaque magenta textures every
// not-yet-ready binding points at.
func (server *AssetServer) ensurePlaceholders(gpu *GpuState) {
	if server.placeholderView != nil {
		return
	}

	magenta := []byte{0xff, 0x00, 0xff, 0xff}

	tex2d := createPlaceholderTexture(1, gpu)
	err := gpu.queue.WriteTexture(
		tex2d.AsImageCopy(),
		magenta,
		&wgpu.TextureDataLayout{Offset: 0, BytesPerRow: 4, RowsPerImage: 1},
		&wgpu.Extent3D{Width: 1, Height: 1, DepthOrArrayLayers: 1},
	)
	if err != nil {
		panic(err)
	}
	view, err := tex2d.CreateView(nil)
	if err != nil {
		panic(err)
	}
	server.placeholderView = view

	texCube := createPlaceholderTexture(cubemapFaceCount, gpu)
	for face := uint32(0); face < cubemapFaceCount; face++ {
		err := gpu.queue.WriteTexture(
			&wgpu.ImageCopyTexture{
				Texture:  texCube,
				MipLevel: 0,
				Origin:   wgpu.Origin3D{X: 0, Y: 0, Z: face},
				Aspect:   wgpu.TextureAspectAll,
			},
			magenta,
			&wgpu.TextureDataLayout{Offset: 0, BytesPerRow: 4, RowsPerImage: 1},
			&wgpu.Extent3D{Width: 1, Height: 1, DepthOrArrayLayers: 1},
		)
		if err != nil {
			panic(err)
		}
	}
	cubeView, err := texCube.CreateView(&wgpu.TextureViewDescriptor{
		Label:           "Placeholder Cubemap View",
		Format:          wgpu.TextureFormatRGBA8Unorm,
		Dimension:       wgpu.TextureViewDimensionCube,
		BaseMipLevel:    0,
		MipLevelCount:   1,
		BaseArrayLayer:  0,
		ArrayLayerCount: cubemapFaceCount,
	})
	if err != nil {
		panic(err)
	}
	server.placeholderCube = cubeView
}

func createPlaceholderTexture(layers uint32, gpu *GpuState) *wgpu.Texture {
	texture, err := gpu.device.CreateTexture(&wgpu.TextureDescriptor{
		Label: "Placeholder",
		Size: wgpu.Extent3D{
			Width:              1,
			Height:             1,
			DepthOrArrayLayers: layers,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        wgpu.TextureFormatRGBA8Unorm,
		Usage:         wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
	})
	if err != nil {
		panic(err)
	}
	return texture
}
