package imaging

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// blockFace draws every rune as a solid size x size square, standing in for a
// font with full Hangul coverage.
type blockFace struct{ size int }

func (f blockFace) Close() error { return nil }

func (f blockFace) Glyph(dot fixed.Point26_6, _ rune) (image.Rectangle, image.Image, image.Point, fixed.Int26_6, bool) {
	x, y := dot.X.Round(), dot.Y.Round()
	return image.Rect(x, y-f.size, x+f.size, y), image.Opaque, image.Point{}, fixed.I(f.size), true
}

func (f blockFace) GlyphBounds(rune) (fixed.Rectangle26_6, fixed.Int26_6, bool) {
	return fixed.R(0, -f.size, f.size, 0), fixed.I(f.size), true
}

func (f blockFace) GlyphAdvance(rune) (fixed.Int26_6, bool) { return fixed.I(f.size), true }

func (f blockFace) Kern(rune, rune) fixed.Int26_6 { return 0 }

func (f blockFace) Metrics() font.Metrics {
	return font.Metrics{Height: fixed.I(f.size), Ascent: fixed.I(f.size)}
}

// inkBounds returns the smallest rectangle holding every non-white pixel.
func inkBounds(img *image.RGBA) image.Rectangle {
	var ink image.Rectangle
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if img.RGBAAt(x, y) != (color.RGBA{255, 255, 255, 255}) {
				ink = ink.Union(image.Rect(x, y, x+1, y+1))
			}
		}
	}
	return ink
}

func TestBundledFaceCannotDrawHangul(t *testing.T) {
	face, err := LoadFace("", 72)
	require.NoError(t, err)
	defer face.Close()

	assert.Equal(t, []rune("갈테야"), MissingGlyphs(face, "갈테야 갈테야"))
	assert.Empty(t, MissingGlyphs(face, "see you"))
}

func TestMissingGlyphsSkipsCoveredRunes(t *testing.T) {
	assert.Empty(t, MissingGlyphs(blockFace{size: 10}, "갈테야 ㅋㅋ"))
}

func TestDrawTextRendersHangulInsideBox(t *testing.T) {
	img := solidImage(120, 60, color.White)
	box := image.Rect(10, 10, 110, 50)
	DrawText(img, "갈테야", box, TextStyle{Face: blockFace{size: 10}, Color: color.Black, Align: AlignCenter})

	ink := inkBounds(img)
	require.False(t, ink.Empty(), "hangul text should leave ink")
	assert.True(t, ink.In(box), "ink %v escapes box %v", ink, box)
	assert.Equal(t, 30, ink.Dx(), "three syllables")
	assert.Equal(t, 45, ink.Min.X)
}

func TestDrawTextComposesDecomposedHangul(t *testing.T) {
	img := solidImage(100, 40, color.White)
	// ㄱ + ㅏ + ㄴ as conjoining jamo, as some keyboards emit them.
	DrawText(img, "\u1100\u1161\u11ab", img.Bounds(), TextStyle{Face: blockFace{size: 10}})

	ink := inkBounds(img)
	assert.Equal(t, 10, ink.Dx(), "jamo should compose into one syllable")
}
