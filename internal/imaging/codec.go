// Package imaging holds the raster helpers shared by the vendor adapters and
// the meme compositor: PNG normalization, upload normalization, mask merging
// and text rendering.
package imaging

import (
	"bytes"
	"image"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"

	_ "golang.org/x/image/webp"
)

// ToPNG re-encodes data as a PNG with an alpha channel. When data cannot be
// decoded or encoded the original bytes are returned unchanged; callers stream
// them as-is and leave interpretation to the client.
func ToPNG(data []byte) []byte {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return data
	}
	out, err := EncodePNG(ToNRGBA(img))
	if err != nil {
		return data
	}
	return out
}

// Decode decodes any registered raster format (png, jpeg, gif, webp).
func Decode(data []byte) (image.Image, string, error) {
	return image.Decode(bytes.NewReader(data))
}

// EncodePNG encodes img as PNG.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ToNRGBA copies img into a non-premultiplied RGBA image anchored at the origin.
func ToNRGBA(img image.Image) *image.NRGBA {
	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}

// ToRGBA copies img into an RGBA working canvas anchored at the origin.
func ToRGBA(img image.Image) *image.RGBA {
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}
