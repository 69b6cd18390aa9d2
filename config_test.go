package shadowbox

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.Shadow.MapSize != 1024 {
		t.Errorf("default shadow map size = %d, want 1024", cfg.Shadow.MapSize)
	}
}

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("missing file should not error: %v", err)
	}
	if cfg != DefaultConfig() {
		t.Errorf("missing file should yield defaults")
	}
}

func TestLoadConfig_EmptyPathUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("empty path should not error: %v", err)
	}
	if cfg != DefaultConfig() {
		t.Errorf("empty path should yield defaults")
	}
}

func TestLoadConfig_OverridesOnlyNamedFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shadowbox.toml")
	body := `
[shadow]
map_size = 2048
bias = 0.01

[light]
point = false
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Shadow.MapSize != 2048 {
		t.Errorf("map_size = %d, want 2048", cfg.Shadow.MapSize)
	}
	if cfg.Shadow.Bias != 0.01 {
		t.Errorf("bias = %v, want 0.01", cfg.Shadow.Bias)
	}
	if cfg.Light.Point {
		t.Errorf("light.point should be overridden to false")
	}

	// Untouched sections keep their defaults.
	def := DefaultConfig()
	if cfg.Camera != def.Camera {
		t.Errorf("camera should keep defaults, got %+v", cfg.Camera)
	}
	if cfg.Window != def.Window {
		t.Errorf("window should keep defaults, got %+v", cfg.Window)
	}
}

func TestLoadConfig_MalformedFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	if err := os.WriteFile(path, []byte("shadow = {{"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadConfig(path); err == nil {
		t.Errorf("malformed TOML should error")
	}
}

func TestLoadConfig_ValidationFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "invalid.toml")
	body := `
[camera]
radius = -1.0
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadConfig(path); err == nil {
		t.Errorf("negative camera radius should fail validation")
	}
}
