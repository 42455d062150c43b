// Package gpt talks to the OpenAI-style image API: JSON text-to-image,
// multipart generation with reference images and multipart edits.
package gpt

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"

	"github.com/Jinius36/JJalBox-JJalKeyboard/internal/domain"
	"github.com/Jinius36/JJalBox-JJalKeyboard/internal/imaging"
	"github.com/Jinius36/JJalBox-JJalKeyboard/internal/infra"
)

const (
	vendorName     = "gpt"
	defaultBaseURL = "https://api.openai.com/v1"
	defaultSize    = "1024x1024"
)

// Options configures the OpenAI-style image client.
type Options struct {
	APIKey         string
	BaseURL        string
	Model          string
	HTTPClient     *http.Client
	Logger         *infra.Logger
	RequestTimeout time.Duration
}

// Client performs HTTP calls to /images/generations and /images/edits.
type Client struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
	logger     *infra.Logger
}

// NewClient constructs a client with sane defaults and injected dependencies.
// Missing credentials are not an error here; calls report
// domain.ErrBackendNotConfigured instead.
func NewClient(opts Options) (*Client, error) {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.RequestTimeout
		if timeout <= 0 {
			timeout = 90 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	var logger *infra.Logger
	if opts.Logger != nil {
		logger = opts.Logger
	} else {
		discard := zerolog.New(io.Discard)
		l := infra.Logger(discard)
		logger = &l
	}
	return &Client{
		apiKey:     strings.TrimSpace(opts.APIKey),
		baseURL:    baseURL,
		model:      strings.TrimSpace(opts.Model),
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

// Model returns the configured model identifier.
func (c *Client) Model() string {
	return c.model
}

// HasCredentials reports whether the client can perform remote calls.
func (c *Client) HasCredentials() bool {
	return c.apiKey != "" && c.model != ""
}

// TextToImage sends a JSON generation request without reference images.
func (c *Client) TextToImage(ctx context.Context, prompt, size string) ([]byte, error) {
	if !c.HasCredentials() {
		return nil, fmt.Errorf("%w: %s", domain.ErrBackendNotConfigured, vendorName)
	}
	payload := openai.ImageRequest{
		Prompt: prompt,
		Model:  c.model,
		N:      1,
		Size:   sizeOrDefault(size),
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("gpt: encode request: %w", err)
	}
	return c.post(ctx, "/images/generations", "application/json", body)
}

// TextWithReferences sends a multipart generation request with every image
// normalized and attached as a repeated image[] field.
func (c *Client) TextWithReferences(ctx context.Context, prompt, size string, images []imaging.Upload) ([]byte, error) {
	if !c.HasCredentials() {
		return nil, fmt.Errorf("%w: %s", domain.ErrBackendNotConfigured, vendorName)
	}
	if len(images) == 0 {
		return c.TextToImage(ctx, prompt, size)
	}
	form := newForm()
	form.field("model", c.model)
	form.field("prompt", prompt)
	form.field("size", sizeOrDefault(size))
	form.field("n", "1")
	for _, img := range images {
		normalized, err := imaging.NormalizeUpload(img)
		if err != nil {
			return nil, err
		}
		form.file("image[]", normalized)
	}
	body, contentType, err := form.finish()
	if err != nil {
		return nil, err
	}
	return c.post(ctx, "/images/generations", contentType, body)
}

// ImageEdit sends a multipart edit request. A nil mask asks the backend to
// edit the whole image.
func (c *Client) ImageEdit(ctx context.Context, prompt, size string, base imaging.Upload, mask *imaging.Upload) ([]byte, error) {
	if !c.HasCredentials() {
		return nil, fmt.Errorf("%w: %s", domain.ErrBackendNotConfigured, vendorName)
	}
	normalizedBase, err := imaging.NormalizeUpload(base)
	if err != nil {
		return nil, err
	}
	form := newForm()
	form.file("image", normalizedBase)
	if mask != nil {
		normalizedMask, err := imaging.NormalizeUpload(*mask)
		if err != nil {
			return nil, err
		}
		normalizedMask.Filename = "mask" + strings.TrimPrefix(normalizedMask.Filename, "input")
		form.file("mask", normalizedMask)
	}
	form.field("prompt", prompt)
	form.field("model", c.model)
	form.field("size", sizeOrDefault(size))
	form.field("n", "1")
	body, contentType, err := form.finish()
	if err != nil {
		return nil, err
	}
	return c.post(ctx, "/images/edits", contentType, body)
}

func (c *Client) post(ctx context.Context, path, contentType string, body []byte) ([]byte, error) {
	endpoint := c.baseURL + path
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("gpt: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", contentType)
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	started := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("gpt: http request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("gpt: read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, domain.NewVendorError(vendorName, resp.StatusCode, raw)
	}

	var decoded openai.ImageResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, fmt.Errorf("%w: gpt: %v", domain.ErrVendorResponseMalformed, err)
	}
	data, err := DecodeImageResponse(ctx, c.httpClient, decoded)
	if err != nil {
		return nil, err
	}
	c.logger.Debug().
		Str("model", c.model).
		Str("path", path).
		Int("request_bytes", len(body)).
		Int("image_bytes", len(data)).
		Dur("elapsed", time.Since(started)).
		Msg("gpt: image generated")
	return data, nil
}

func sizeOrDefault(size string) string {
	if s := strings.TrimSpace(size); s != "" {
		return s
	}
	return defaultSize
}

// form accumulates a multipart body, remembering the first write error.
type form struct {
	buf    bytes.Buffer
	writer *multipart.Writer
	err    error
}

func newForm() *form {
	f := &form{}
	f.writer = multipart.NewWriter(&f.buf)
	return f
}

func (f *form) field(name, value string) {
	if f.err != nil {
		return
	}
	f.err = f.writer.WriteField(name, value)
}

func (f *form) file(name string, img imaging.NormalizedImage) {
	if f.err != nil {
		return
	}
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, name, img.Filename))
	header.Set("Content-Type", img.MIME)
	part, err := f.writer.CreatePart(header)
	if err != nil {
		f.err = err
		return
	}
	_, f.err = part.Write(img.Data)
}

func (f *form) finish() ([]byte, string, error) {
	if f.err != nil {
		return nil, "", fmt.Errorf("gpt: encode multipart: %w", f.err)
	}
	if err := f.writer.Close(); err != nil {
		return nil, "", fmt.Errorf("gpt: encode multipart: %w", err)
	}
	return f.buf.Bytes(), f.writer.FormDataContentType(), nil
}
