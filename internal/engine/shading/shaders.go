package shading

import _ "embed"

// Version is the GLSL dialect the terrain programs are written for.
const Version = "410 core"

// TerrainVertexShader displaces the grid by the heightfield and estimates normals.
//
//go:embed shaders/terrain.vert
var TerrainVertexShader string

// TerrainFragmentShader applies the height gradient, tri-planar detail and lighting.
//
//go:embed shaders/terrain.frag
var TerrainFragmentShader string
