package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Jinius36/JJalBox-JJalKeyboard/internal/domain"
	"github.com/Jinius36/JJalBox-JJalKeyboard/internal/imaging"
	"github.com/Jinius36/JJalBox-JJalKeyboard/internal/meme"
	imagegen "github.com/Jinius36/JJalBox-JJalKeyboard/internal/providers/image"
)

type formFile struct {
	field, name, mime string
	data              []byte
}

func multipartRequest(t *testing.T, target string, fields map[string]string, files ...formFile) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	for _, f := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, f.field, f.name))
		h.Set("Content-Type", f.mime)
		part, err := mw.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(f.data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func samplePNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.NRGBA{R: 200, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

type fakeGenerator struct {
	got *imagegen.Request
	out []byte
	err error
}

func (f *fakeGenerator) Generate(_ context.Context, req imagegen.Request) ([]byte, error) {
	f.got = &req
	return f.out, f.err
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var body errorBody
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
	return body
}

func TestGenerateImageStreamsPNG(t *testing.T) {
	want := samplePNG(t)
	gen := &fakeGenerator{out: want}
	app := &App{Images: gen}

	req := multipartRequest(t, "/v1/images/generate",
		map[string]string{"provider": "gpt", "mode": "text2image", "prompt": " a cat ", "size": "512x512"},
		formFile{field: "images", name: "ref.jpg", mime: "image/jpeg", data: []byte("jpeg")},
	)
	rr := httptest.NewRecorder()
	app.GenerateImage(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "image/png", rr.Header().Get("Content-Type"))
	require.NotNil(t, gen.got)
	assert.Equal(t, imagegen.ProviderGPT, gen.got.Provider)
	assert.Equal(t, "a cat", gen.got.Prompt)
	assert.Equal(t, "512x512", gen.got.Size)
	require.Len(t, gen.got.Images, 1)
	assert.Equal(t, "image/jpeg", gen.got.Images[0].MIME)

	decoded, err := png.Decode(bytes.NewReader(rr.Body.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 2, 2), decoded.Bounds())
}

func TestGenerateImagePassesThroughUndecodableBytes(t *testing.T) {
	gen := &fakeGenerator{out: []byte("not an image")}
	app := &App{Images: gen}
	req := multipartRequest(t, "/v1/images/generate", map[string]string{"provider": "gemini", "mode": "text2image", "prompt": "x"})
	rr := httptest.NewRecorder()
	app.GenerateImage(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "not an image", rr.Body.String())
}

func TestGenerateImageValidation(t *testing.T) {
	cases := []struct {
		name   string
		fields map[string]string
		code   string
	}{
		{"unknown provider", map[string]string{"provider": "dalle", "mode": "nope", "prompt": "x"}, "unknown_provider"},
		{"unknown mode", map[string]string{"provider": "gpt", "mode": "nope", "prompt": "x"}, "unknown_mode"},
		{"empty mode", map[string]string{"provider": "gpt", "prompt": "x"}, "unknown_mode"},
		{"missing prompt", map[string]string{"provider": "gpt", "mode": "edit"}, "invalid_request"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			gen := &fakeGenerator{}
			app := &App{Images: gen}
			rr := httptest.NewRecorder()
			app.GenerateImage(rr, multipartRequest(t, "/v1/images/generate", tc.fields))

			require.Equal(t, http.StatusBadRequest, rr.Code)
			body := decodeError(t, rr)
			assert.Equal(t, http.StatusBadRequest, body.Status)
			assert.Equal(t, tc.code, body.Error)
			assert.Nil(t, gen.got, "generator must not be called")
		})
	}
}

func TestGenerateImageMapsBackendErrors(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{domain.ErrMissingRequiredImage, http.StatusBadRequest, "missing_required_image"},
		{domain.NewVendorError("gpt", http.StatusTooManyRequests, []byte("slow down")), http.StatusTooManyRequests, "vendor_error"},
		{domain.NewVendorError("gpt", http.StatusFound, nil), http.StatusBadGateway, "vendor_error"},
		{fmt.Errorf("%w: gpt", domain.ErrBackendNotConfigured), http.StatusServiceUnavailable, "backend_not_configured"},
		{fmt.Errorf("%w: empty", domain.ErrVendorResponseMalformed), http.StatusBadGateway, "vendor_response_malformed"},
		{fmt.Errorf("%w: bad bytes", domain.ErrUnsupportedImageFormat), http.StatusBadRequest, "unsupported_image_format"},
		{context.DeadlineExceeded, http.StatusGatewayTimeout, "upstream_timeout"},
		{context.Canceled, statusClientClosedRequest, "client_closed_request"},
		{errors.New("boom"), http.StatusInternalServerError, "internal"},
	}
	for _, tc := range cases {
		app := &App{Images: &fakeGenerator{err: tc.err}}
		rr := httptest.NewRecorder()
		app.GenerateImage(rr, multipartRequest(t, "/v1/images/generate", map[string]string{"provider": "gpt", "mode": "text2image", "prompt": "x"}))

		assert.Equal(t, tc.status, rr.Code, tc.err.Error())
		body := decodeError(t, rr)
		assert.Equal(t, tc.code, body.Error, tc.err.Error())
		assert.Equal(t, tc.err.Error(), body.Message)
	}
}

// cancellingGenerator drops the client connection while the vendor call is
// in flight.
type cancellingGenerator struct {
	cancel context.CancelFunc
	out    []byte
}

func (g *cancellingGenerator) Generate(ctx context.Context, _ imagegen.Request) ([]byte, error) {
	g.cancel()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return g.out, nil
}

func TestGenerateImageOutlivesClientDisconnect(t *testing.T) {
	want := samplePNG(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	app := &App{Images: &cancellingGenerator{cancel: cancel, out: want}}

	req := multipartRequest(t, "/v1/images/generate", map[string]string{"provider": "gpt", "mode": "text2image", "prompt": "x"})
	rr := httptest.NewRecorder()
	app.GenerateImage(rr, req.WithContext(ctx))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, imaging.ToPNG(want), rr.Body.Bytes())
}

type cancellingComposer struct {
	cancel context.CancelFunc
	out    []byte
}

func (c *cancellingComposer) Compose(ctx context.Context, _ *meme.Template, _ map[string]string) ([]byte, error) {
	c.cancel()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return c.out, nil
}

func TestGenerateMemeOutlivesClientDisconnect(t *testing.T) {
	tpl := &meme.Template{ID: "galteya", BaseURL: "https://x/base.png"}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	app := &App{Templates: fakeTemplates{tpl: tpl}, Memes: &cancellingComposer{cancel: cancel, out: samplePNG(t)}}

	req := multipartRequest(t, "/v1/memes/galteya/generate", map[string]string{"inputs": `{}`})
	rr := httptest.NewRecorder()
	app.GenerateMeme(rr, withURLParam(req.WithContext(ctx), "tid", "galteya"))

	assert.Equal(t, http.StatusOK, rr.Code)
}

type fakeEditor struct {
	prompt     string
	base, mask imaging.Upload
	out        []byte
}

func (f *fakeEditor) ImageEdit(_ context.Context, prompt, _ string, base imaging.Upload, mask *imaging.Upload) ([]byte, error) {
	f.prompt, f.base = prompt, base
	if mask != nil {
		f.mask = *mask
	}
	return f.out, nil
}

func TestMemeEdit(t *testing.T) {
	editor := &fakeEditor{out: samplePNG(t)}
	app := &App{Editor: editor}

	req := multipartRequest(t, "/api/meme_edit", map[string]string{"prompt": "replace the sign"},
		formFile{field: "base_image", name: "base.png", mime: "image/png", data: []byte("base")},
		formFile{field: "mask_image", name: "mask.png", mime: "image/png", data: []byte("mask")},
	)
	rr := httptest.NewRecorder()
	app.MemeEdit(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "replace the sign", editor.prompt)
	assert.Equal(t, []byte("base"), editor.base.Data)
	assert.Equal(t, []byte("mask"), editor.mask.Data)

	rr = httptest.NewRecorder()
	app.MemeEdit(rr, multipartRequest(t, "/api/meme_edit", map[string]string{"prompt": "p"},
		formFile{field: "base_image", name: "base.png", mime: "image/png", data: []byte("base")},
	))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

type fakeTemplates struct {
	tpl *meme.Template
}

func (f fakeTemplates) Get(id string) (*meme.Template, error) {
	if f.tpl == nil || id != f.tpl.ID {
		return nil, fmt.Errorf("%w: %q", domain.ErrTemplateNotFound, id)
	}
	return f.tpl, nil
}

func (f fakeTemplates) List() []meme.Summary {
	return []meme.Summary{{ID: f.tpl.ID, Size: f.tpl.Size, SlotCount: len(f.tpl.Slots)}}
}

type fakeComposer struct {
	values map[string]string
	out    []byte
}

func (f *fakeComposer) Compose(_ context.Context, _ *meme.Template, values map[string]string) ([]byte, error) {
	f.values = values
	return f.out, nil
}

func withURLParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestTemplatesEndpoints(t *testing.T) {
	tpl := &meme.Template{ID: "galteya", BaseURL: "https://x/base.png", Size: "1024x1024", Slots: []meme.Slot{{ID: "a"}}}
	app := &App{Templates: fakeTemplates{tpl: tpl}}

	rr := httptest.NewRecorder()
	app.ListTemplates(rr, httptest.NewRequest(http.MethodGet, "/v1/templates", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"items":[{"id":"galteya","size":"1024x1024","slot_count":1}]}`, rr.Body.String())

	rr = httptest.NewRecorder()
	app.GetTemplate(rr, withURLParam(httptest.NewRequest(http.MethodGet, "/v1/templates/galteya", nil), "tid", "galteya"))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"base_url":"https://x/base.png"`)

	rr = httptest.NewRecorder()
	app.GetTemplate(rr, withURLParam(httptest.NewRequest(http.MethodGet, "/v1/templates/nope", nil), "tid", "nope"))
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "template_not_found", decodeError(t, rr).Error)
}

func TestGenerateMeme(t *testing.T) {
	tpl := &meme.Template{ID: "galteya", BaseURL: "https://x/base.png"}
	composer := &fakeComposer{out: samplePNG(t)}
	app := &App{Templates: fakeTemplates{tpl: tpl}, Memes: composer}

	req := multipartRequest(t, "/v1/memes/galteya/generate", map[string]string{"inputs": `{"top":"안녕"}`})
	rr := httptest.NewRecorder()
	app.GenerateMeme(rr, withURLParam(req, "tid", "galteya"))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, map[string]string{"top": "안녕"}, composer.values)

	for _, inputs := range []string{"", "[1,2]", `{"a":1}`} {
		req := multipartRequest(t, "/v1/memes/galteya/generate", map[string]string{"inputs": inputs})
		rr := httptest.NewRecorder()
		app.GenerateMeme(rr, withURLParam(req, "tid", "galteya"))
		assert.Equal(t, http.StatusBadRequest, rr.Code, inputs)
	}

	req = multipartRequest(t, "/v1/memes/other/generate", map[string]string{"inputs": `{}`})
	rr = httptest.NewRecorder()
	app.GenerateMeme(rr, withURLParam(req, "tid", "other"))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestHealth(t *testing.T) {
	rr := httptest.NewRecorder()
	(&App{}).Health(rr, httptest.NewRequest(http.MethodGet, "/v1/healthz", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())
}

func TestOpenAPIDocumentIsValidJSON(t *testing.T) {
	rr := httptest.NewRecorder()
	(&App{}).OpenAPIJSON(rr, httptest.NewRequest(http.MethodGet, "/v1/openapi.json", nil))
	var doc map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &doc))
	assert.Contains(t, doc["paths"], "/v1/images/generate")
	servers, ok := doc["servers"].([]any)
	require.True(t, ok)
	assert.Len(t, servers, 1)
}

func TestDocsPageDescribesGateway(t *testing.T) {
	rr := httptest.NewRecorder()
	(&App{}).OpenAPIDocs(rr, httptest.NewRequest(http.MethodGet, "/v1/docs", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, `<meta name="description" content="JJalBox keyboard gateway`)
	assert.Contains(t, body, `Redoc.init("/v1/openapi.json"`)
	assert.Contains(t, body, "/v1/memes/{tid}/generate")
}
