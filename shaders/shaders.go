package shaders

import (
	_ "embed"
)

//go:embed forward.wgsl
var ForwardWGSL string

//go:embed shadow_depth.wgsl
var ShadowDepthWGSL string

//go:embed skybox.wgsl
var SkyboxWGSL string

//go:embed marker.wgsl
var MarkerWGSL string
