package image

import (
	"fmt"
	"strings"

	"github.com/Jinius36/JJalBox-JJalKeyboard/internal/domain"
	"github.com/Jinius36/JJalBox-JJalKeyboard/internal/imaging"
)

// Provider selects a backend and, for the style presets, a prompt wrapper.
type Provider string

const (
	ProviderGPT         Provider = "gpt"
	ProviderGemini      Provider = "gemini"
	ProviderMemeGalteya Provider = "meme_galteya"
	ProviderSnowNight   Provider = "snow_night"
	ProviderPixelArt    Provider = "pixel_art"
	ProviderACStyle     Provider = "ac_style"
)

// Providers lists every accepted provider in a stable order.
var Providers = []Provider{
	ProviderGPT,
	ProviderGemini,
	ProviderMemeGalteya,
	ProviderSnowNight,
	ProviderPixelArt,
	ProviderACStyle,
}

// Mode is the requested operation.
type Mode string

const (
	ModeText2Image Mode = "text2image"
	ModeEdit       Mode = "edit"
)

// Modes lists every accepted mode.
var Modes = []Mode{ModeText2Image, ModeEdit}

// DefaultSize is used when a request leaves size empty.
const DefaultSize = "1024x1024"

// Request is one generation call as accepted by the gateway.
type Request struct {
	Provider Provider
	Mode     Mode
	Prompt   string
	Size     string
	Images   []imaging.Upload
}

// ParseProvider maps a wire value onto a known provider.
func ParseProvider(s string) (Provider, error) {
	p := Provider(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Providers {
		if p == known {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: %q", domain.ErrUnknownProvider, s)
}

// ParseMode maps a wire value onto a known mode. Empty input is rejected.
func ParseMode(s string) (Mode, error) {
	m := Mode(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Modes {
		if m == known {
			return m, nil
		}
	}
	return "", fmt.Errorf("%w: %q", domain.ErrUnknownMode, s)
}
