// Package texture provides image decoding and RGBA conversion for tile images.
package texture

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/jpeg" // JPEG decoder registration
	_ "image/png"  // PNG decoder registration

	_ "golang.org/x/image/webp" // WebP decoder registration
)

// Decode decodes an encoded tile image (PNG, WebP or JPEG) into RGBA.
// Color channels are copied without premultiplication so encoded
// elevation values survive unchanged.
func Decode(data []byte) (*image.RGBA, string, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("decode image: %w", err)
	}
	return ImageToRGBA(img), format, nil
}

// ImageToRGBA converts any image.Image to *image.RGBA with origin (0, 0).
func ImageToRGBA(img image.Image) *image.RGBA {
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))

	switch src := img.(type) {
	case *image.RGBA:
		for y := 0; y < b.Dy(); y++ {
			copy(dst.Pix[y*dst.Stride:y*dst.Stride+b.Dx()*4], src.Pix[src.PixOffset(b.Min.X, b.Min.Y+y):])
		}
	case *image.NRGBA:
		// Raw copy: treating NRGBA as premultiplied would scale RGB by alpha.
		for y := 0; y < b.Dy(); y++ {
			copy(dst.Pix[y*dst.Stride:y*dst.Stride+b.Dx()*4], src.Pix[src.PixOffset(b.Min.X, b.Min.Y+y):])
		}
	default:
		for y := 0; y < b.Dy(); y++ {
			for x := 0; x < b.Dx(); x++ {
				c := color.NRGBAModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
				dst.SetRGBA(x, y, color.RGBA{R: c.R, G: c.G, B: c.B, A: c.A})
			}
		}
	}

	return dst
}

// FlipVertical returns a copy of img with rows in reverse order.
// GL expects the first row to be the bottom of the texture.
func FlipVertical(img *image.RGBA) *image.RGBA {
	b := img.Bounds()
	out := image.NewRGBA(b)
	rowSize := b.Dx() * 4
	for y := 0; y < b.Dy(); y++ {
		src := img.PixOffset(b.Min.X, b.Max.Y-1-y)
		dst := out.PixOffset(b.Min.X, b.Min.Y+y)
		copy(out.Pix[dst:dst+rowSize], img.Pix[src:src+rowSize])
	}
	return out
}

// Fill returns a w×h image filled with c.
func Fill(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: c}, image.Point{}, draw.Src)
	return img
}
