package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/shadowbox3d/shadowbox"
)

func main() {
	configPath := flag.String("config", "shadowbox.toml", "path to TOML config, missing file uses defaults")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	cfg, err := shadowbox.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	app := shadowbox.NewAppBuilder().
		UseModule(
			shadowbox.LoggingModule{Prefix: "shadowbox", Debug: *debug},
			shadowbox.NewPlatformWindow(cfg.Window.Width, cfg.Window.Height, cfg.Window.Title),
			shadowbox.TimeModule{},
			shadowbox.InputModule{},
			shadowbox.SceneModule{Config: cfg},
			shadowbox.AssetServerModule{},
			shadowbox.RendererModule{Config: cfg},
			shadowbox.ControlsModule{},
		).
		Build()

	app.Run()
}
