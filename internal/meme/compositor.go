package meme

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"io"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/image/font"

	"github.com/Jinius36/JJalBox-JJalKeyboard/internal/domain"
	"github.com/Jinius36/JJalBox-JJalKeyboard/internal/imaging"
	"github.com/Jinius36/JJalBox-JJalKeyboard/internal/infra"
)

// Inpainter performs a masked image edit.
type Inpainter interface {
	ImageEdit(ctx context.Context, prompt, size string, base imaging.Upload, mask *imaging.Upload) ([]byte, error)
}

// FaceLoader opens a font face; imaging.LoadFace is the default.
type FaceLoader func(path string, size float64) (font.Face, error)

// hangulSample is what every text slot font must be able to draw.
const hangulSample = "가나다갈테야힣"

// CompositorOptions configures a Compositor.
type CompositorOptions struct {
	// FontDir resolves relative FontSpec paths.
	FontDir  string
	LoadFace FaceLoader
	Logger   *infra.Logger
}

// Compositor turns a template plus caller values into a PNG.
type Compositor struct {
	fetcher   AssetFetcher
	inpainter Inpainter
	fontDir   string
	loadFace  FaceLoader
	logger    *infra.Logger
}

// NewCompositor wires the asset fetcher and the inpainting backend.
func NewCompositor(fetcher AssetFetcher, inpainter Inpainter, opts CompositorOptions) *Compositor {
	logger := opts.Logger
	if logger == nil {
		discard := zerolog.New(io.Discard)
		l := infra.Logger(discard)
		logger = &l
	}
	loadFace := opts.LoadFace
	if loadFace == nil {
		loadFace = imaging.LoadFace
	}
	return &Compositor{
		fetcher:   fetcher,
		inpainter: inpainter,
		fontDir:   opts.FontDir,
		loadFace:  loadFace,
		logger:    logger,
	}
}

// CheckFonts opens the font of every server-rendered text slot of tpl and
// verifies it can draw Hangul.
func (c *Compositor) CheckFonts(tpl *Template) error {
	for _, slot := range tpl.Slots {
		if !slot.DrawsText() {
			continue
		}
		face, err := c.openFace(slot)
		if err != nil {
			return fmt.Errorf("template %s: %w", tpl.ID, err)
		}
		missing := imaging.MissingGlyphs(face, hangulSample)
		face.Close()
		if len(missing) > 0 {
			return fmt.Errorf("%w: template %s slot %s font %q lacks %q",
				domain.ErrFontMissingGlyphs, tpl.ID, slot.ID, c.fontPath(slot), string(missing))
		}
	}
	return nil
}

// Compose fetches the base image, draws text slots in slot order, and when
// the template has inpaint slots merges their masks and issues a single edit
// call. Without inpaint slots no backend is contacted.
func (c *Compositor) Compose(ctx context.Context, tpl *Template, values map[string]string) ([]byte, error) {
	baseImg, err := c.fetchImage(ctx, tpl.BaseURL)
	if err != nil {
		return nil, err
	}
	canvas := imaging.ToRGBA(baseImg)

	for _, slot := range tpl.Slots {
		value := values[slot.ID]
		if !slot.DrawsText() || strings.TrimSpace(value) == "" {
			continue
		}
		if err := c.drawSlot(canvas, slot, value); err != nil {
			return nil, err
		}
	}

	var (
		masks     []image.Image
		fragments []string
	)
	for _, slot := range tpl.Slots {
		if !slot.IsInpaint() {
			continue
		}
		mask, err := c.fetchImage(ctx, slot.MaskURL)
		if err != nil {
			return nil, err
		}
		masks = append(masks, mask)
		fragments = append(fragments, slot.Fragment(values[slot.ID]))
	}

	composed, err := imaging.EncodePNG(canvas)
	if err != nil {
		return nil, fmt.Errorf("meme: encode canvas: %w", err)
	}
	if len(masks) == 0 {
		return composed, nil
	}

	merged, err := imaging.EncodePNG(imaging.MergeMasks(canvas.Bounds(), masks))
	if err != nil {
		return nil, fmt.Errorf("meme: encode mask: %w", err)
	}
	prompt := BuildPrompt(tpl.PromptGlobal, fragments)
	c.logger.Debug().
		Str("template", tpl.ID).
		Int("masks", len(masks)).
		Str("prompt", prompt).
		Msg("meme: inpainting")

	base := imaging.Upload{Data: composed, MIME: imaging.MIMEPNG, Filename: "base.png"}
	mask := imaging.Upload{Data: merged, MIME: imaging.MIMEPNG, Filename: "mask.png"}
	return c.inpainter.ImageEdit(ctx, prompt, tpl.Size, base, &mask)
}

// BuildPrompt joins the global prompt and the slot fragments with single
// spaces, preserving slot order.
func BuildPrompt(global string, fragments []string) string {
	return strings.Join(append([]string{global}, fragments...), " ")
}

func (c *Compositor) fetchImage(ctx context.Context, url string) (image.Image, error) {
	data, err := c.fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	img, _, err := imaging.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: decode: %v", domain.ErrTemplateFetch, url, err)
	}
	return img, nil
}

func (c *Compositor) fontPath(slot Slot) string {
	if slot.Font == nil {
		return ""
	}
	path := slot.Font.Path
	if path != "" && !filepath.IsAbs(path) && c.fontDir != "" {
		path = filepath.Join(c.fontDir, path)
	}
	return path
}

func (c *Compositor) openFace(slot Slot) (font.Face, error) {
	if slot.Font == nil {
		return nil, fmt.Errorf("%w: slot %s: missing font", domain.ErrInvalidTemplate, slot.ID)
	}
	face, err := c.loadFace(c.fontPath(slot), slot.Font.Size)
	if err != nil {
		return nil, fmt.Errorf("meme: slot %s: %w", slot.ID, err)
	}
	return face, nil
}

func (c *Compositor) drawSlot(canvas *image.RGBA, slot Slot, value string) error {
	face, err := c.openFace(slot)
	if err != nil {
		return err
	}
	defer face.Close()
	if missing := imaging.MissingGlyphs(face, value); len(missing) > 0 {
		c.logger.Warn().
			Str("slot", slot.ID).
			Str("font", c.fontPath(slot)).
			Str("missing", string(missing)).
			Msg("meme: font cannot draw every character")
	}

	fontSpec := slot.Font
	fill, err := imaging.ParseHexColor(fontSpec.Color, color.Black)
	if err != nil {
		return fmt.Errorf("%w: slot %s: %v", domain.ErrInvalidTemplate, slot.ID, err)
	}
	stroke, err := imaging.ParseHexColor(fontSpec.StrokeColor, nil)
	if err != nil {
		return fmt.Errorf("%w: slot %s: %v", domain.ErrInvalidTemplate, slot.ID, err)
	}
	box := image.Rect(slot.BBox[0], slot.BBox[1], slot.BBox[2], slot.BBox[3])
	imaging.DrawText(canvas, value, box, imaging.TextStyle{
		Face:        face,
		Color:       fill,
		StrokeColor: stroke,
		StrokeWidth: fontSpec.StrokeWidth,
		Align:       slot.Align,
	})
	c.logger.Debug().Str("slot", slot.ID).Msg("meme: text slot drawn")
	return nil
}
