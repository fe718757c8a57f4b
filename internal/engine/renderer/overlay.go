package renderer

import (
	"fmt"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/terrainview/internal/engine/shader"
	"github.com/Faultbox/terrainview/internal/engine/ui2d"
)

const overlayVertexShader = `#version 410 core
layout(location = 0) in vec2 aPos;
layout(location = 1) in vec2 aUV;
layout(location = 2) in vec4 aColor;

uniform mat4 uProjection;

out vec2 vUV;
out vec4 vColor;

void main() {
    vUV = aUV;
    vColor = aColor;
    gl_Position = uProjection * vec4(aPos, 0.0, 1.0);
}
`

const overlayFragmentShader = `#version 410 core
in vec2 vUV;
in vec4 vColor;

uniform sampler2D uFont;

out vec4 FragColor;

void main() {
    FragColor = vec4(vColor.rgb, vColor.a * texture(uFont, vUV).r);
}
`

// floats per vertex: pos2 + uv2 + color4
const overlayStride = 8

// Overlay draws ui2d primitives over the scene in one batched draw call.
// Solid quads sample the opaque cell of the font atlas, so rectangles and
// text keep their submission order.
type Overlay struct {
	program  *shader.Program
	vao      uint32
	vbo      uint32
	fontTex  uint32
	font     *ui2d.Font
	vertices []float32
	width    float32
	height   float32
}

// NewOverlay compiles the overlay program and uploads the font atlas.
func NewOverlay() (*Overlay, error) {
	program, err := shader.NewProgram(overlayVertexShader, overlayFragmentShader)
	if err != nil {
		return nil, fmt.Errorf("overlay shader: %w", err)
	}

	o := &Overlay{
		program:  program,
		font:     ui2d.NewFont(),
		vertices: make([]float32, 0, 4096),
	}

	gl.GenVertexArrays(1, &o.vao)
	gl.GenBuffers(1, &o.vbo)
	gl.BindVertexArray(o.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, o.vbo)
	stride := int32(overlayStride * 4)
	gl.VertexAttribPointerWithOffset(0, 2, gl.FLOAT, false, stride, 0)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointerWithOffset(1, 2, gl.FLOAT, false, stride, 2*4)
	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointerWithOffset(2, 4, gl.FLOAT, false, stride, 4*4)
	gl.EnableVertexAttribArray(2)
	gl.BindVertexArray(0)

	atlas := o.font.Atlas()
	gl.GenTextures(1, &o.fontTex)
	gl.BindTexture(gl.TEXTURE_2D, o.fontTex)
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.R8, int32(atlas.Rect.Dx()), int32(atlas.Rect.Dy()), 0,
		gl.RED, gl.UNSIGNED_BYTE, gl.Ptr(atlas.Pix))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.BindTexture(gl.TEXTURE_2D, 0)

	return o, nil
}

// Begin starts a batch for a window of width x height points.
func (o *Overlay) Begin(width, height int) {
	o.vertices = o.vertices[:0]
	o.width, o.height = float32(width), float32(height)
}

// DrawRect queues a filled rectangle.
func (o *Overlay) DrawRect(x, y, w, h float32, c ui2d.Color) {
	u, v := o.font.SolidUV()
	o.quad(x, y, w, h, u, v, u, v, c)
}

// DrawText queues a single line of text with its top-left corner at (x, y).
func (o *Overlay) DrawText(x, y float32, text string, c ui2d.Color) {
	gw, gh := o.font.GlyphSize()
	for _, r := range text {
		u0, v0, u1, v1 := o.font.GlyphUV(r)
		o.quad(x, y, float32(gw), float32(gh), u0, v0, u1, v1, c)
		x += float32(gw)
	}
}

// MeasureText returns the size of a single line of text in points.
func (o *Overlay) MeasureText(text string) (float32, float32) {
	return o.font.MeasureText(text, 1)
}

func (o *Overlay) quad(x, y, w, h, u0, v0, u1, v1 float32, c ui2d.Color) {
	o.vertices = append(o.vertices,
		x, y, u0, v0, c.R, c.G, c.B, c.A,
		x+w, y, u1, v0, c.R, c.G, c.B, c.A,
		x+w, y+h, u1, v1, c.R, c.G, c.B, c.A,

		x, y, u0, v0, c.R, c.G, c.B, c.A,
		x+w, y+h, u1, v1, c.R, c.G, c.B, c.A,
		x, y+h, u0, v1, c.R, c.G, c.B, c.A,
	)
}

// End draws the queued primitives with depth testing off and alpha
// blending on, then restores that state.
func (o *Overlay) End() {
	if len(o.vertices) == 0 || o.width <= 0 || o.height <= 0 {
		return
	}

	depth := gl.IsEnabled(gl.DEPTH_TEST)
	blend := gl.IsEnabled(gl.BLEND)
	gl.Disable(gl.DEPTH_TEST)
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)

	o.program.Use()
	o.program.SetMat4("uProjection", mgl32.Ortho2D(0, o.width, o.height, 0))
	o.program.SetSampler("uFont", 0)
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, o.fontTex)

	gl.BindVertexArray(o.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, o.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(o.vertices)*4, unsafe.Pointer(&o.vertices[0]), gl.STREAM_DRAW)
	gl.DrawArrays(gl.TRIANGLES, 0, int32(len(o.vertices)/overlayStride))

	gl.BindVertexArray(0)
	gl.BindTexture(gl.TEXTURE_2D, 0)
	gl.UseProgram(0)

	if depth {
		gl.Enable(gl.DEPTH_TEST)
	}
	if !blend {
		gl.Disable(gl.BLEND)
	}
}

// Close releases GL resources.
func (o *Overlay) Close() {
	if o.vao != 0 {
		gl.DeleteVertexArrays(1, &o.vao)
	}
	if o.vbo != 0 {
		gl.DeleteBuffers(1, &o.vbo)
	}
	if o.fontTex != 0 {
		gl.DeleteTextures(1, &o.fontTex)
	}
	o.program.Delete()
}
