package imaging

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"os"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
	"golang.org/x/text/unicode/norm"
)

const (
	AlignLeft   = "left"
	AlignCenter = "center"
)

// TextStyle controls how DrawText renders a block of text.
type TextStyle struct {
	Face        font.Face
	Color       color.Color
	StrokeColor color.Color
	StrokeWidth int
	Align       string
}

// LoadFace opens the TrueType/OpenType font at path at the given point size.
// An empty path selects the bundled Go Regular face, which covers Latin
// scripts only; Hangul needs a font file such as NanumGothic.
func LoadFace(path string, size float64) (font.Face, error) {
	if size <= 0 {
		return nil, fmt.Errorf("font size must be positive, got %v", size)
	}
	data := goregular.TTF
	if strings.TrimSpace(path) != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read font %s: %w", path, err)
		}
		data = raw
	}
	parsed, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	return opentype.NewFace(parsed, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
}

// DrawText renders text inside box. Lines are wrapped to the box width, the
// block is always centred vertically and centred horizontally only when
// style.Align is AlignCenter. Text is NFC-normalized first so decomposed
// Hangul from mobile keyboards renders as composed syllables.
func DrawText(dst draw.Image, text string, box image.Rectangle, style TextStyle) {
	if style.Face == nil || box.Empty() {
		return
	}
	text = norm.NFC.String(text)
	fill := style.Color
	if fill == nil {
		fill = color.Black
	}

	d := &font.Drawer{Dst: dst, Face: style.Face}
	lines := layoutLines(d, text, fixed.I(box.Dx()))
	if len(lines) == 0 {
		return
	}

	metrics := style.Face.Metrics()
	lineHeight := metrics.Height
	if lineHeight <= 0 {
		lineHeight = metrics.Ascent + metrics.Descent
	}
	total := lineHeight.Mul(fixed.I(len(lines)))
	top := fixed.I(box.Min.Y) + (fixed.I(box.Dy())-total)/2

	for i, line := range lines {
		x := fixed.I(box.Min.X)
		if style.Align == AlignCenter {
			x += (fixed.I(box.Dx()) - d.MeasureString(line)) / 2
		}
		dot := fixed.Point26_6{X: x, Y: top + metrics.Ascent + lineHeight.Mul(fixed.I(i))}

		if style.StrokeWidth > 0 && style.StrokeColor != nil {
			d.Src = image.NewUniform(style.StrokeColor)
			w := style.StrokeWidth
			for dy := -w; dy <= w; dy++ {
				for dx := -w; dx <= w; dx++ {
					if dx*dx+dy*dy > w*w || (dx == 0 && dy == 0) {
						continue
					}
					d.Dot = fixed.Point26_6{X: dot.X + fixed.I(dx), Y: dot.Y + fixed.I(dy)}
					d.DrawString(line)
				}
			}
		}
		d.Src = image.NewUniform(fill)
		d.Dot = dot
		d.DrawString(line)
	}
}

// MissingGlyphs returns the distinct runes of text, after NFC normalization,
// that face cannot draw. Whitespace is ignored.
func MissingGlyphs(face font.Face, text string) []rune {
	var missing []rune
	seen := make(map[rune]bool)
	for _, r := range norm.NFC.String(text) {
		if unicode.IsSpace(r) || seen[r] {
			continue
		}
		seen[r] = true
		if _, ok := face.GlyphAdvance(r); !ok {
			missing = append(missing, r)
		}
	}
	return missing
}

func layoutLines(d *font.Drawer, text string, maxWidth fixed.Int26_6) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	var lines []string
	for _, para := range strings.Split(text, "\n") {
		lines = append(lines, wrapParagraph(d, para, maxWidth)...)
	}
	return lines
}

func wrapParagraph(d *font.Drawer, para string, maxWidth fixed.Int26_6) []string {
	words := strings.Fields(para)
	if len(words) == 0 {
		return []string{""}
	}
	var lines []string
	current := ""
	for _, word := range words {
		candidate := word
		if current != "" {
			candidate = current + " " + word
		}
		if d.MeasureString(candidate) <= maxWidth {
			current = candidate
			continue
		}
		if current != "" {
			lines = append(lines, current)
			current = ""
		}
		// A single word wider than the box (common for CJK text without
		// spaces) is broken at rune boundaries.
		for word != "" && d.MeasureString(word) > maxWidth {
			cut := fitRunes(d, word, maxWidth)
			lines = append(lines, word[:cut])
			word = word[cut:]
		}
		current = word
	}
	if current != "" {
		lines = append(lines, current)
	}
	return lines
}

// fitRunes returns the byte length of the longest rune prefix of s that fits
// in maxWidth, and at least one rune.
func fitRunes(d *font.Drawer, s string, maxWidth fixed.Int26_6) int {
	end := 0
	for i, r := range s {
		next := i + utf8.RuneLen(r)
		if d.MeasureString(s[:next]) > maxWidth {
			break
		}
		end = next
	}
	if end == 0 {
		_, size := utf8.DecodeRuneInString(s)
		end = size
	}
	return end
}

// ParseHexColor parses #RGB, #RRGGBB or #RRGGBBAA. An empty string yields fallback.
func ParseHexColor(s string, fallback color.Color) (color.Color, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if s == "" {
		return fallback, nil
	}
	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	if len(s) == 6 {
		s += "ff"
	}
	if len(s) != 8 {
		return nil, fmt.Errorf("invalid color %q", s)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return nil, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return color.NRGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
}
