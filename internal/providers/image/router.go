package image

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/Jinius36/JJalBox-JJalKeyboard/internal/domain"
	"github.com/Jinius36/JJalBox-JJalKeyboard/internal/imaging"
	"github.com/Jinius36/JJalBox-JJalKeyboard/internal/infra"
)

// GPTBackend is the OpenAI-style adapter.
type GPTBackend interface {
	TextToImage(ctx context.Context, prompt, size string) ([]byte, error)
	TextWithReferences(ctx context.Context, prompt, size string, images []imaging.Upload) ([]byte, error)
	ImageEdit(ctx context.Context, prompt, size string, base imaging.Upload, mask *imaging.Upload) ([]byte, error)
}

// GeminiBackend is the Gemini-style adapter.
type GeminiBackend interface {
	TextToImage(ctx context.Context, prompt string, refs []imaging.Upload) ([]byte, error)
	ImageToImage(ctx context.Context, prompt string, images []imaging.Upload) ([]byte, error)
}

type dispatchFunc func(ctx context.Context, r *Router, req Request) ([]byte, error)

// route is one provider's row of the dispatch table.
type route struct {
	style *StylePreset
	// imageRequired reports whether mode needs at least one image.
	imageRequired func(Mode) bool
	dispatch      dispatchFunc
}

func editOnly(m Mode) bool { return m == ModeEdit }
func always(Mode) bool     { return true }

var routes = map[Provider]route{
	ProviderGPT:         {imageRequired: editOnly, dispatch: dispatchGPT},
	ProviderGemini:      {imageRequired: editOnly, dispatch: dispatchGemini},
	ProviderMemeGalteya: {style: &MemeGalteyaStyle, imageRequired: editOnly, dispatch: dispatchGPT},
	ProviderSnowNight:   {style: &SnowNightStyle, imageRequired: always, dispatch: dispatchGeminiImageToImage},
	ProviderPixelArt:    {style: &PixelArtStyle, imageRequired: always, dispatch: dispatchGPTReferences},
	ProviderACStyle:     {style: &ACStyle, imageRequired: always, dispatch: dispatchGPTReferences},
}

// Router validates a Request and dispatches it to the adapter operation its
// provider and mode select. It holds no per-request state.
type Router struct {
	gpt    GPTBackend
	gemini GeminiBackend
	logger *infra.Logger
}

// NewRouter wires the two adapters into a Router.
func NewRouter(gpt GPTBackend, gemini GeminiBackend, logger *infra.Logger) *Router {
	if logger == nil {
		discard := zerolog.New(io.Discard)
		l := infra.Logger(discard)
		logger = &l
	}
	return &Router{gpt: gpt, gemini: gemini, logger: logger}
}

// Generate checks provider, mode and the image requirement, in that order,
// before any backend is called.
func (r *Router) Generate(ctx context.Context, req Request) ([]byte, error) {
	rt, ok := routes[req.Provider]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownProvider, req.Provider)
	}
	if req.Mode != ModeText2Image && req.Mode != ModeEdit {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownMode, req.Mode)
	}
	if rt.imageRequired(req.Mode) && len(req.Images) == 0 {
		return nil, fmt.Errorf("%w: provider %s, mode %s", domain.ErrMissingRequiredImage, req.Provider, req.Mode)
	}
	if req.Size == "" {
		req.Size = DefaultSize
	}
	if rt.style != nil {
		req.Prompt = rt.style.Apply(req.Prompt)
	}
	r.logger.Debug().
		Str("provider", string(req.Provider)).
		Str("mode", string(req.Mode)).
		Int("images", len(req.Images)).
		Msg("image router dispatch")
	return rt.dispatch(ctx, r, req)
}

func dispatchGPT(ctx context.Context, r *Router, req Request) ([]byte, error) {
	if req.Mode == ModeEdit {
		return r.gpt.ImageEdit(ctx, req.Prompt, req.Size, req.Images[0], nil)
	}
	if len(req.Images) == 0 {
		return r.gpt.TextToImage(ctx, req.Prompt, req.Size)
	}
	return r.gpt.TextWithReferences(ctx, req.Prompt, req.Size, req.Images)
}

func dispatchGemini(ctx context.Context, r *Router, req Request) ([]byte, error) {
	if req.Mode == ModeEdit {
		return r.gemini.ImageToImage(ctx, req.Prompt, req.Images[:1])
	}
	return r.gemini.TextToImage(ctx, req.Prompt, req.Images)
}

func dispatchGeminiImageToImage(ctx context.Context, r *Router, req Request) ([]byte, error) {
	return r.gemini.ImageToImage(ctx, req.Prompt, req.Images)
}

func dispatchGPTReferences(ctx context.Context, r *Router, req Request) ([]byte, error) {
	return r.gpt.TextWithReferences(ctx, req.Prompt, req.Size, req.Images)
}
