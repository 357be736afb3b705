// Package shaders embeds the WGSL sources of the render pipelines.
package shaders

import (
	_ "embed"
)

//go:embed phong.wgsl
var PhongWGSL string

//go:embed text.wgsl
var TextWGSL string
