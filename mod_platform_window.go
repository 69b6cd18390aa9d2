package shadowbox

import (
	"reflect"
	"runtime"

	"github.com/go-gl/glfw/v3.3/glfw"
)

// WindowState wraps the single GLFW window. Created once; every renderer
// and input module shares it as a resource.
type WindowState struct {
	windowGlfw   *glfw.Window
	WindowWidth  int
	WindowHeight int
	windowTitle  string
}

var typeOfWindowState = reflect.TypeOf(WindowState{})

// PlatformWindowModule ensures a single shared GLFW window (WindowState)
// is created and made available as a resource. Install is idempotent: if
// a WindowState resource already exists, it is reused.
type PlatformWindowModule struct {
	Width  int
	Height int
	Title  string
}

func NewPlatformWindow(width, height int, title string) *PlatformWindowModule {
	if width <= 0 {
		width = 1280
	}
	if height <= 0 {
		height = 720
	}
	if title == "" {
		title = "Shadowbox"
	}
	return &PlatformWindowModule{
		Width:  width,
		Height: height,
		Title:  title,
	}
}

func (m PlatformWindowModule) Install(app *App, cmd *Commands) {
	if _, ok := app.resources[typeOfWindowState]; ok {
		// Already created by another module; preserve the single-window invariant.
		return
	}

	ws := createWindowState(m.Width, m.Height, m.Title)
	app.addResources(ws)

	app.UseSystem(
		System(windowEventsSystem).
			InStage(PreUpdate),
	)
}

func createWindowState(windowWidth int, windowHeight int, windowTitle string) *WindowState {
	// GLFW event processing and wgpu surface presentation must stay on
	// one OS thread.
	runtime.LockOSThread()
	if err := glfw.Init(); err != nil {
		panic(err)
	}

	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI) // no OpenGL context, wgpu owns the surface
	glfw.WindowHint(glfw.Resizable, glfw.True)

	win, err := glfw.CreateWindow(windowWidth, windowHeight, windowTitle, nil, nil)
	if err != nil {
		panic(err)
	}

	return &WindowState{
		windowGlfw:   win,
		WindowWidth:  windowWidth,
		WindowHeight: windowHeight,
		windowTitle:  windowTitle,
	}
}

func windowEventsSystem(s *WindowState, cmd *Commands) {
	glfw.PollEvents()
	s.WindowWidth, s.WindowHeight = s.windowGlfw.GetSize()
	if s.windowGlfw.ShouldClose() {
		cmd.Quit()
	}
}

// Close requests window shutdown; the frame loop exits on the next poll.
func (s *WindowState) Close() {
	s.windowGlfw.SetShouldClose(true)
}

// SquareViewport returns the centered square render region inside the
// window: full window height as the side, horizontally centered.
func SquareViewport(windowWidth, windowHeight int) (x, y, side float32) {
	return float32(windowWidth-windowHeight) / 2, 0, float32(windowHeight)
}

func (s *WindowState) SquareViewport() (x, y, side float32) {
	return SquareViewport(s.WindowWidth, s.WindowHeight)
}
