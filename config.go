package shadowbox

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// Config carries everything the demo scene needs at startup. Zero config
// is valid: DefaultConfig returns the documented initial values, and a
// TOML file only overrides what it names.
type Config struct {
	Window   WindowConfig   `toml:"window"`
	Shadow   ShadowConfig   `toml:"shadow"`
	Camera   CameraConfig   `toml:"camera"`
	Light    LightConfig    `toml:"light"`
	Material MaterialConfig `toml:"material"`
	Assets   AssetConfig    `toml:"assets"`
}

type WindowConfig struct {
	Width  int    `toml:"width"`
	Height int    `toml:"height"`
	Title  string `toml:"title"`
}

type ShadowConfig struct {
	// MapSize is the side length of the square depth attachment,
	// independent of the window size.
	MapSize uint32 `toml:"map_size"`
	// Bias offsets the light-space depth comparison to suppress
	// self-shadowing (shadow acne).
	Bias float32 `toml:"bias"`
}

type CameraConfig struct {
	Radius float32 `toml:"radius"`
	Theta  float32 `toml:"theta"`
	Phi    float32 `toml:"phi"`
	Fov    float32 `toml:"fov"`
}

type LightConfig struct {
	Radius float32    `toml:"radius"`
	Theta  float32    `toml:"theta"`
	Phi    float32    `toml:"phi"`
	Point  bool       `toml:"point"`
	Color  [3]float32 `toml:"color"`
}

type MaterialConfig struct {
	Ambient   float32 `toml:"ambient"`
	Diffuse   float32 `toml:"diffuse"`
	Specular  float32 `toml:"specular"`
	Shininess float32 `toml:"shininess"`
}

type AssetConfig struct {
	// CubemapFaces in fixed order: right, left, top, bottom, front, back.
	CubemapFaces [6]string `toml:"cubemap_faces"`
	DiffuseMap   string    `toml:"diffuse_map"`
	FloorMap     string    `toml:"floor_map"`
}

func DefaultConfig() Config {
	return Config{
		Window: WindowConfig{
			Width:  1280,
			Height: 720,
			Title:  "Shadowbox",
		},
		Shadow: ShadowConfig{
			MapSize: 1024,
			Bias:    0.005,
		},
		Camera: CameraConfig{
			Radius: 8,
			Theta:  60,
			Phi:    45,
			Fov:    45,
		},
		Light: LightConfig{
			Radius: 6,
			Theta:  45,
			Phi:    30,
			Point:  true,
			Color:  [3]float32{1, 1, 1},
		},
		Material: MaterialConfig{
			Ambient:   0.15,
			Diffuse:   0.8,
			Specular:  0.5,
			Shininess: 32,
		},
		Assets: AssetConfig{
			CubemapFaces: [6]string{
				"assets/skybox/right.png",
				"assets/skybox/left.png",
				"assets/skybox/top.png",
				"assets/skybox/bottom.png",
				"assets/skybox/front.png",
				"assets/skybox/back.png",
			},
			DiffuseMap: "assets/container.png",
			FloorMap:   "assets/wood.png",
		},
	}
}

// LoadConfig reads a TOML file over the defaults. A missing path is not
// an error; a present but malformed file is.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("window size must be positive, got %dx%d", c.Window.Width, c.Window.Height)
	}
	if c.Shadow.MapSize == 0 {
		return fmt.Errorf("shadow map size must be positive")
	}
	if c.Camera.Radius <= 0 {
		return fmt.Errorf("camera radius must be positive, got %v", c.Camera.Radius)
	}
	if c.Light.Radius <= 0 {
		return fmt.Errorf("light radius must be positive, got %v", c.Light.Radius)
	}
	return nil
}
