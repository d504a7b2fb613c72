// Package shaders provides embedded GLSL compute shader sources.
package shaders

import _ "embed"

// TerrainCompute is the compute shader for device-parallel mesh builds.
//
//go:embed terrain.comp
var TerrainCompute string
