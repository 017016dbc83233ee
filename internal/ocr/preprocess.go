package ocr

import (
	"image"

	"golang.org/x/image/draw"
)

// Recognition quality drops sharply below ~300px glyph rows; small captures
// from phone crops get scaled up before they reach the engine.
const minWidth = 600

// upscale doubles the image until it reaches minWidth, leaving larger images
// untouched.
func upscale(img image.Image) image.Image {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w >= minWidth || w == 0 || h == 0 {
		return img
	}

	scale := 1
	for w*scale < minWidth {
		scale *= 2
	}

	dst := image.NewRGBA(image.Rect(0, 0, w*scale, h*scale))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return dst
}
