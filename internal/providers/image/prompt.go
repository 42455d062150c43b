package image

import "strings"

// StylePreset wraps a user prompt with a fixed style description. The order of
// the two halves is part of each preset and must not change.
type StylePreset struct {
	Name        string
	Description string
	StyleFirst  bool
}

// Apply joins the description and the prompt in the preset's order.
func (s StylePreset) Apply(prompt string) string {
	prompt = strings.TrimSpace(prompt)
	if s.StyleFirst {
		return s.Description + " " + prompt
	}
	return prompt + " " + s.Description
}

var (
	MemeGalteyaStyle = StylePreset{
		Name:        string(ProviderMemeGalteya),
		Description: "Korean internet meme illustration in the 'galteya' style: bold thick outlines, an exaggerated expressive face, flat saturated colors and a plain background. Scene:",
		StyleFirst:  true,
	}
	SnowNightStyle = StylePreset{
		Name:        string(ProviderSnowNight),
		Description: "Render this as a quiet snowy night illustration with a deep navy sky, softly falling snow and warm glowing street lights, in a gentle painterly texture.",
		StyleFirst:  false,
	}
	PixelArtStyle = StylePreset{
		Name:        string(ProviderPixelArt),
		Description: "16-bit retro game pixel art with a limited palette, crisp square pixels and no anti-aliasing. Subject:",
		StyleFirst:  true,
	}
	ACStyle = StylePreset{
		Name:        string(ProviderACStyle),
		Description: "Redraw it as a cozy cartoon animal village scene: round chibi animal villagers, soft pastel colors and a cheerful island atmosphere.",
		StyleFirst:  false,
	}
)
