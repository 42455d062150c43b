// Package meme renders template-driven memes: text slots are drawn locally,
// inpaint slots are merged into one masked edit call.
package meme

import (
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Jinius36/JJalBox-JJalKeyboard/internal/domain"
)

// Slot types.
const (
	SlotText  = "text"
	SlotImage = "image"
)

// PromptPlaceholder is replaced by the caller's value in Slot.PromptSlot.
const PromptPlaceholder = "{{text}}"

// FontSpec describes how a text slot is rendered.
type FontSpec struct {
	Path        string  `json:"path,omitempty" yaml:"path,omitempty"`
	Size        float64 `json:"size" yaml:"size"`
	Color       string  `json:"color,omitempty" yaml:"color,omitempty"`
	StrokeColor string  `json:"stroke_color,omitempty" yaml:"stroke_color,omitempty"`
	StrokeWidth int     `json:"stroke_width,omitempty" yaml:"stroke_width,omitempty"`
}

// Slot is either a text slot (BBox + Font) or an inpaint slot (MaskURL +
// PromptSlot).
type Slot struct {
	ID                 string    `json:"id" yaml:"id"`
	Type               string    `json:"type,omitempty" yaml:"type,omitempty"`
	BBox               []int     `json:"bbox,omitempty" yaml:"bbox,omitempty"`
	Font               *FontSpec `json:"font,omitempty" yaml:"font,omitempty"`
	Align              string    `json:"align,omitempty" yaml:"align,omitempty"`
	RenderTextOnServer bool      `json:"render_text_on_server,omitempty" yaml:"render_text_on_server,omitempty"`
	Inpaint            bool      `json:"inpaint,omitempty" yaml:"inpaint,omitempty"`
	MaskURL            string    `json:"mask_url,omitempty" yaml:"mask_url,omitempty"`
	PromptSlot         string    `json:"prompt_slot,omitempty" yaml:"prompt_slot,omitempty"`
}

// IsInpaint reports whether the slot contributes a mask and a prompt fragment.
func (s Slot) IsInpaint() bool {
	return s.Inpaint || s.Type == SlotImage
}

// DrawsText reports whether the slot is rendered onto the base image locally.
func (s Slot) DrawsText() bool {
	return s.RenderTextOnServer && len(s.BBox) == 4
}

// Fragment substitutes value into the slot's prompt template.
func (s Slot) Fragment(value string) string {
	return strings.ReplaceAll(s.PromptSlot, PromptPlaceholder, value)
}

// Template is an immutable meme definition loaded at startup.
type Template struct {
	ID           string `json:"id" yaml:"id"`
	BaseURL      string `json:"base_url" yaml:"base_url"`
	Size         string `json:"size,omitempty" yaml:"size,omitempty"`
	PromptGlobal string `json:"prompt_global,omitempty" yaml:"prompt_global,omitempty"`
	Slots        []Slot `json:"slots" yaml:"slots"`
}

// HasInpaintSlots reports whether composing needs a backend call.
func (t *Template) HasInpaintSlots() bool {
	for _, s := range t.Slots {
		if s.IsInpaint() {
			return true
		}
	}
	return false
}

// ParseTemplate decodes a JSON or YAML document. format is "json" or "yaml".
func ParseTemplate(data []byte, format string) (*Template, error) {
	var tpl Template
	switch format {
	case "json":
		if err := json.Unmarshal(data, &tpl); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrInvalidTemplate, err)
		}
	case "yaml":
		if err := yaml.Unmarshal(data, &tpl); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrInvalidTemplate, err)
		}
	default:
		return nil, fmt.Errorf("%w: unsupported format %q", domain.ErrInvalidTemplate, format)
	}
	return &tpl, nil
}

// Validate checks the geometric and font invariants of every slot.
func (t *Template) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return fmt.Errorf("%w: id is required", domain.ErrInvalidTemplate)
	}
	if strings.TrimSpace(t.BaseURL) == "" {
		return fmt.Errorf("%w: %s: base_url is required", domain.ErrInvalidTemplate, t.ID)
	}
	seen := make(map[string]struct{}, len(t.Slots))
	for i, s := range t.Slots {
		if strings.TrimSpace(s.ID) == "" {
			return fmt.Errorf("%w: %s: slot %d has no id", domain.ErrInvalidTemplate, t.ID, i)
		}
		if _, dup := seen[s.ID]; dup {
			return fmt.Errorf("%w: %s: duplicate slot %q", domain.ErrInvalidTemplate, t.ID, s.ID)
		}
		seen[s.ID] = struct{}{}

		if len(s.BBox) != 0 {
			if len(s.BBox) != 4 {
				return fmt.Errorf("%w: %s/%s: bbox needs 4 values", domain.ErrInvalidTemplate, t.ID, s.ID)
			}
			if s.BBox[2] <= s.BBox[0] || s.BBox[3] <= s.BBox[1] {
				return fmt.Errorf("%w: %s/%s: bbox must satisfy x2>x1 and y2>y1", domain.ErrInvalidTemplate, t.ID, s.ID)
			}
		}
		if s.RenderTextOnServer {
			if len(s.BBox) != 4 {
				return fmt.Errorf("%w: %s/%s: text slot needs a bbox", domain.ErrInvalidTemplate, t.ID, s.ID)
			}
			if s.Font == nil || s.Font.Size <= 0 {
				return fmt.Errorf("%w: %s/%s: font size must be positive", domain.ErrInvalidTemplate, t.ID, s.ID)
			}
		}
		if s.IsInpaint() && strings.TrimSpace(s.MaskURL) == "" {
			return fmt.Errorf("%w: %s/%s: mask_url is required", domain.ErrInvalidTemplate, t.ID, s.ID)
		}
	}
	return nil
}

// Summary is the listing view of a template.
type Summary struct {
	ID        string `json:"id"`
	Size      string `json:"size"`
	SlotCount int    `json:"slot_count"`
}
