// Package gemini wraps the Gemini generateContent API for image output.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/genai"

	"github.com/Jinius36/JJalBox-JJalKeyboard/internal/domain"
	"github.com/Jinius36/JJalBox-JJalKeyboard/internal/imaging"
	"github.com/Jinius36/JJalBox-JJalKeyboard/internal/infra"
)

const vendorName = "gemini"

// inlineImageMIME labels every inlined reference image, whatever its source
// format.
const inlineImageMIME = "image/png"

// ContentGenerator is the subset of *genai.Models the client needs.
type ContentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Options controls how the Gemini client is configured.
type Options struct {
	APIKey         string
	BaseURL        string
	Model          string
	HTTPClient     *http.Client
	Logger         *infra.Logger
	RequestTimeout time.Duration
	// Generator replaces the SDK client; used by tests.
	Generator ContentGenerator
}

// Client issues generateContent calls and returns the first inline image.
type Client struct {
	model     string
	generator ContentGenerator
	logger    *infra.Logger
}

// NewClient builds the SDK client when both an API key and a model are
// configured. Otherwise the returned client answers every call with
// domain.ErrBackendNotConfigured.
func NewClient(ctx context.Context, opts Options) (*Client, error) {
	var logger *infra.Logger
	if opts.Logger != nil {
		logger = opts.Logger
	} else {
		discard := zerolog.New(io.Discard)
		l := infra.Logger(discard)
		logger = &l
	}
	c := &Client{
		model:     strings.TrimSpace(opts.Model),
		generator: opts.Generator,
		logger:    logger,
	}
	apiKey := strings.TrimSpace(opts.APIKey)
	if c.generator != nil || apiKey == "" || c.model == "" {
		return c, nil
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.RequestTimeout
		if timeout <= 0 {
			timeout = 90 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	cfg := &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: httpClient,
	}
	if base := strings.TrimSpace(opts.BaseURL); base != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: base}
	}
	sdk, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}
	c.generator = sdk.Models
	return c, nil
}

// Model returns the configured model identifier.
func (c *Client) Model() string {
	return c.model
}

// HasCredentials reports whether the client can perform remote calls.
func (c *Client) HasCredentials() bool {
	return c.generator != nil && c.model != ""
}

// TextToImage sends the prompt followed by any reference images.
func (c *Client) TextToImage(ctx context.Context, prompt string, refs []imaging.Upload) ([]byte, error) {
	return c.generate(ctx, prompt, refs)
}

// ImageToImage is TextToImage with at least one image required.
func (c *Client) ImageToImage(ctx context.Context, prompt string, images []imaging.Upload) ([]byte, error) {
	if len(images) == 0 {
		return nil, domain.ErrMissingRequiredImage
	}
	return c.generate(ctx, prompt, images)
}

func (c *Client) generate(ctx context.Context, prompt string, images []imaging.Upload) ([]byte, error) {
	if !c.HasCredentials() {
		return nil, fmt.Errorf("%w: %s", domain.ErrBackendNotConfigured, vendorName)
	}
	contents := []*genai.Content{{Role: "user", Parts: buildParts(prompt, images)}}
	started := time.Now()
	resp, err := c.generator.GenerateContent(ctx, c.model, contents, nil)
	if err != nil {
		return nil, mapError(err)
	}
	data, err := c.firstInlineImage(resp)
	if err != nil {
		return nil, err
	}
	c.logger.Debug().
		Str("model", c.model).
		Int("reference_images", len(images)).
		Int("image_bytes", len(data)).
		Dur("elapsed", time.Since(started)).
		Msg("gemini: image generated")
	return data, nil
}

// buildParts puts the text part first and then one inline part per image.
// Images are inlined as-is under the image/png label.
func buildParts(prompt string, images []imaging.Upload) []*genai.Part {
	parts := make([]*genai.Part, 0, len(images)+1)
	parts = append(parts, genai.NewPartFromText(prompt))
	for _, img := range images {
		parts = append(parts, genai.NewPartFromBytes(img.Data, inlineImageMIME))
	}
	return parts
}

func (c *Client) firstInlineImage(resp *genai.GenerateContentResponse) ([]byte, error) {
	if resp != nil {
		for _, cand := range resp.Candidates {
			if cand == nil || cand.Content == nil {
				continue
			}
			for _, part := range cand.Content.Parts {
				if part == nil {
					continue
				}
				if part.InlineData != nil && len(part.InlineData.Data) > 0 {
					return part.InlineData.Data, nil
				}
				if text := strings.TrimSpace(part.Text); text != "" {
					c.logger.Debug().Str("model", c.model).Str("text", text).Msg("gemini: text part ignored")
				}
			}
		}
	}
	return nil, fmt.Errorf("%w: gemini: no inline image data", domain.ErrVendorResponseMalformed)
}

func mapError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) && apiErr.Code > 0 {
		return domain.NewVendorError(vendorName, apiErr.Code, []byte(apiErr.Message))
	}
	return fmt.Errorf("gemini: generate content: %w", err)
}
