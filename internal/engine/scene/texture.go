package scene

import (
	"image"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/Faultbox/terrainview/internal/engine/texture"
)

// TextureOptions control sampling of an uploaded texture.
type TextureOptions struct {
	Filter int32 // gl.LINEAR or gl.NEAREST
	Wrap   int32 // gl.CLAMP_TO_EDGE or gl.REPEAT
	FlipY  bool  // upload rows bottom-up so v=1 maps to the image's first row
}

// tileTexture samples heightfield and gradient textures: linear filtering,
// edge texels repeat outward, image top at v=1.
var tileTexture = TextureOptions{Filter: gl.LINEAR, Wrap: gl.CLAMP_TO_EDGE, FlipY: true}

func uploadTexture(img *image.RGBA, opts TextureOptions) uint32 {
	if opts.FlipY {
		img = texture.FlipVertical(img)
	}

	var texID uint32
	gl.GenTextures(1, &texID)
	gl.BindTexture(gl.TEXTURE_2D, texID)
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)

	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8,
		int32(img.Bounds().Dx()), int32(img.Bounds().Dy()),
		0, gl.RGBA, gl.UNSIGNED_BYTE, unsafe.Pointer(&img.Pix[0]))

	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, opts.Filter)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, opts.Filter)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, opts.Wrap)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, opts.Wrap)

	gl.BindTexture(gl.TEXTURE_2D, 0)
	return texID
}

func deleteTexture(texID uint32) {
	if texID != 0 {
		gl.DeleteTextures(1, &texID)
	}
}
