// Package shaders provides embedded GLSL shader sources.
package shaders

import _ "embed"

// GeometryVertexShader transforms mesh vertices into view and clip space.
//
//go:embed geometry.vert
var GeometryVertexShader string

// GeometryFragmentShader writes the G-buffer.
//
//go:embed geometry.frag
var GeometryFragmentShader string

// FullscreenVertexShader emits a screen-covering triangle from gl_VertexID.
//
//go:embed fullscreen.vert
var FullscreenVertexShader string

// OcclusionFragmentShader estimates hemisphere occlusion per pixel.
//
//go:embed ssao.frag
var OcclusionFragmentShader string

// BlurFragmentShader box-filters raw occlusion.
//
//go:embed blur.frag
var BlurFragmentShader string

// CompositeFragmentShader modulates albedo by occlusion.
//
//go:embed composite.frag
var CompositeFragmentShader string
