package imaging

import (
	"image"
	"image/color"
	"image/draw"
)

// MergeMasks alpha-composites masks in order over an opaque white canvas of
// the given size. Later masks are layered over earlier ones, so in overlapping
// regions the later slot wins.
func MergeMasks(size image.Rectangle, masks []image.Image) *image.RGBA {
	canvas := image.NewRGBA(image.Rect(0, 0, size.Dx(), size.Dy()))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	for _, m := range masks {
		if m == nil {
			continue
		}
		draw.Draw(canvas, canvas.Bounds(), m, m.Bounds().Min, draw.Over)
	}
	return canvas
}
