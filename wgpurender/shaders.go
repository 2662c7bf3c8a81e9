package wgpurender

import (
	_ "embed"

	"github.com/orbview/orbview"
)

//go:embed forward.wgsl
var forwardWGSL string

// Compile-time checks that the backend satisfies the engine contracts.
var (
	_ orbview.Renderer      = (*SceneRenderer)(nil)
	_ orbview.ShaderBridge  = (*ShaderState)(nil)
	_ orbview.Technique     = (*Technique)(nil)
	_ orbview.BufferHandle  = (*Buffer)(nil)
	_ orbview.TextureHandle = (*Texture)(nil)
)
