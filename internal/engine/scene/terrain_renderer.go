package scene

import (
	"errors"
	"fmt"
	"image/color"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/terrainview/internal/engine/shader"
	"github.com/Faultbox/terrainview/internal/engine/shading"
	"github.com/Faultbox/terrainview/internal/engine/terrain"
	"github.com/Faultbox/terrainview/internal/engine/texture"
	"github.com/Faultbox/terrainview/internal/logger"
)

// ModelTilt is the fixed rotation of the terrain plane about X, in radians.
const ModelTilt = -3.14 / 4

// TerrainRenderer draws the displaced terrain grid.
type TerrainRenderer struct {
	program *shader.Program

	// Terrain mesh
	vao        uint32
	vbo        uint32
	ebo        uint32
	indexCount int32

	material    Material
	placeholder uint32
	model       mgl32.Mat4
}

// NewTerrainRenderer compiles the terrain program and uploads the grid and
// gradient. Until a heightfield is bound the terrain renders flat.
func NewTerrainRenderer(mesh *terrain.Mesh, gradient *shading.Gradient, texOffset float32) (*TerrainRenderer, error) {
	if mesh == nil || len(mesh.Vertices) == 0 || len(mesh.Indices) == 0 {
		return nil, errors.New("terrain mesh is empty")
	}

	program, err := shader.NewProgram(shading.TerrainVertexShader, shading.TerrainFragmentShader)
	if err != nil {
		return nil, fmt.Errorf("terrain shader: %w", err)
	}

	tr := &TerrainRenderer{
		program: program,
		model:   mgl32.HomogRotate3DX(ModelTilt),
	}

	tr.uploadTerrainMesh(mesh.Vertices, mesh.Indices)

	// 1x1 zero texel: elevation 0 everywhere.
	tr.placeholder = uploadTexture(texture.Fill(1, 1, color.RGBA{}), tileTexture)
	tr.material = Material{
		HeightMap: tr.placeholder,
		Gradient:  uploadTexture(gradient.Image(), tileTexture),
		TexOffset: texOffset,
	}

	logger.Debug("terrain renderer created",
		zap.Int("vertices", len(mesh.Vertices)),
		zap.Int("triangles", mesh.TriangleCount()),
		zap.Float32("tex_offset", texOffset),
	)
	return tr, nil
}

func (tr *TerrainRenderer) uploadTerrainMesh(vertices []terrain.Vertex, indices []uint32) {
	gl.GenVertexArrays(1, &tr.vao)
	gl.BindVertexArray(tr.vao)

	gl.GenBuffers(1, &tr.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, tr.vbo)
	vertexSize := int(unsafe.Sizeof(terrain.Vertex{}))
	gl.BufferData(gl.ARRAY_BUFFER, len(vertices)*vertexSize, unsafe.Pointer(&vertices[0]), gl.STATIC_DRAW)

	// Position (location 0)
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, int32(vertexSize), 0)
	gl.EnableVertexAttribArray(0)

	// UV (location 1)
	gl.VertexAttribPointerWithOffset(1, 2, gl.FLOAT, false, int32(vertexSize), 3*4)
	gl.EnableVertexAttribArray(1)

	gl.GenBuffers(1, &tr.ebo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, tr.ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(indices)*4, unsafe.Pointer(&indices[0]), gl.STATIC_DRAW)

	gl.BindVertexArray(0)
	tr.indexCount = int32(len(indices))
}

// BindHeightField uploads hf and swaps it in as the current heightmap.
// The previous heightmap texture is released after the swap. A nil field
// restores the flat placeholder.
func (tr *TerrainRenderer) BindHeightField(hf *terrain.HeightField) error {
	next := tr.placeholder
	if hf != nil {
		if hf.Width == 0 || hf.Height == 0 || len(hf.Pix) < hf.Width*hf.Height*4 {
			return fmt.Errorf("invalid heightfield %dx%d", hf.Width, hf.Height)
		}
		next = uploadTexture(hf.Image(), tileTexture)
		if err := glError("upload heightfield"); err != nil {
			deleteTexture(next)
			return err
		}
	}

	prev := tr.material.HeightMap
	tr.material.HeightMap = next
	if prev != tr.placeholder && prev != next {
		deleteTexture(prev)
	}
	return nil
}

// Render draws the terrain with the given camera matrices.
func (tr *TerrainRenderer) Render(view, projection mgl32.Mat4) error {
	if tr.vao == 0 {
		return nil
	}

	tr.program.Use()
	tr.program.SetMat4("uModel", tr.model)
	tr.program.SetMat4("uView", view)
	tr.program.SetMat4("uProjection", projection)
	tr.program.SetFloat("uTexOffset", tr.material.TexOffset)

	gl.ActiveTexture(gl.TEXTURE0 + heightMapUnit)
	gl.BindTexture(gl.TEXTURE_2D, tr.material.HeightMap)
	tr.program.SetSampler("uHeightMap", heightMapUnit)

	gl.ActiveTexture(gl.TEXTURE0 + gradientUnit)
	gl.BindTexture(gl.TEXTURE_2D, tr.material.Gradient)
	tr.program.SetSampler("uGradient", gradientUnit)

	gl.BindVertexArray(tr.vao)
	gl.DrawElements(gl.TRIANGLES, tr.indexCount, gl.UNSIGNED_INT, nil)
	gl.BindVertexArray(0)

	return glError("draw terrain")
}

func (tr *TerrainRenderer) clearTerrain() {
	if tr.vao != 0 {
		gl.DeleteVertexArrays(1, &tr.vao)
		tr.vao = 0
	}
	if tr.vbo != 0 {
		gl.DeleteBuffers(1, &tr.vbo)
		tr.vbo = 0
	}
	if tr.ebo != 0 {
		gl.DeleteBuffers(1, &tr.ebo)
		tr.ebo = 0
	}
	if tr.material.HeightMap != tr.placeholder {
		deleteTexture(tr.material.HeightMap)
	}
	deleteTexture(tr.placeholder)
	deleteTexture(tr.material.Gradient)
	tr.material = Material{}
	tr.placeholder = 0
}

// Destroy releases all resources.
func (tr *TerrainRenderer) Destroy() {
	tr.clearTerrain()
	if tr.program != nil {
		tr.program.Delete()
		tr.program = nil
	}
}

func glError(op string) error {
	if code := gl.GetError(); code != gl.NO_ERROR {
		return fmt.Errorf("%s: GL error 0x%04x", op, code)
	}
	return nil
}
