package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/Jinius36/JJalBox-JJalKeyboard/internal/domain"
	"github.com/Jinius36/JJalBox-JJalKeyboard/internal/imaging"
	imagegen "github.com/Jinius36/JJalBox-JJalKeyboard/internal/providers/image"
)

// multipartMemory is the part of a multipart body kept in memory before
// spilling to temporary files.
const multipartMemory = 32 << 20

// GenerateImage handles POST /v1/images/generate.
// Form fields: provider, mode, prompt, size (optional), images (0..N files).
func (a *App) GenerateImage(w http.ResponseWriter, r *http.Request) {
	if err := a.parseForm(w, r); err != nil {
		a.fail(w, r, err)
		return
	}

	provider, err := imagegen.ParseProvider(r.FormValue("provider"))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	mode, err := imagegen.ParseMode(r.FormValue("mode"))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	prompt := strings.TrimSpace(r.FormValue("prompt"))
	if prompt == "" {
		a.fail(w, r, fmt.Errorf("%w: prompt is required", domain.ErrInvalidInput))
		return
	}
	images, err := readUploads(r, "images")
	if err != nil {
		a.fail(w, r, err)
		return
	}

	out, err := a.Images.Generate(vendorContext(r), imagegen.Request{
		Provider: provider,
		Mode:     mode,
		Prompt:   prompt,
		Size:     strings.TrimSpace(r.FormValue("size")),
		Images:   images,
	})
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.image(w, imaging.ToPNG(out))
}

// MemeEdit handles POST /api/meme_edit: one base image and one mask sent
// straight to the edit backend.
func (a *App) MemeEdit(w http.ResponseWriter, r *http.Request) {
	if err := a.parseForm(w, r); err != nil {
		a.fail(w, r, err)
		return
	}
	prompt := strings.TrimSpace(r.FormValue("prompt"))
	if prompt == "" {
		a.fail(w, r, fmt.Errorf("%w: prompt is required", domain.ErrInvalidInput))
		return
	}
	base, err := readSingleUpload(r, "base_image")
	if err != nil {
		a.fail(w, r, err)
		return
	}
	mask, err := readSingleUpload(r, "mask_image")
	if err != nil {
		a.fail(w, r, err)
		return
	}

	out, err := a.Editor.ImageEdit(vendorContext(r), prompt, strings.TrimSpace(r.FormValue("size")), base, &mask)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.image(w, imaging.ToPNG(out))
}

// vendorContext detaches vendor calls from the client connection. A call
// started for a request runs to completion or to its own timeout; request
// scoped values such as the logger are kept.
func vendorContext(r *http.Request) context.Context {
	return context.WithoutCancel(r.Context())
}

// parseForm bounds the body and parses multipart or urlencoded forms.
func (a *App) parseForm(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, a.maxUploadBytes())
	err := r.ParseMultipartForm(multipartMemory)
	if err == nil || errors.Is(err, http.ErrNotMultipart) {
		return nil
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return err
	}
	return fmt.Errorf("%w: malformed form: %v", domain.ErrInvalidInput, err)
}

func readUploads(r *http.Request, field string) ([]imaging.Upload, error) {
	if r.MultipartForm == nil {
		return nil, nil
	}
	headers := r.MultipartForm.File[field]
	uploads := make([]imaging.Upload, 0, len(headers))
	for _, fh := range headers {
		u, err := readFileHeader(fh)
		if err != nil {
			return nil, err
		}
		uploads = append(uploads, u)
	}
	return uploads, nil
}

func readSingleUpload(r *http.Request, field string) (imaging.Upload, error) {
	uploads, err := readUploads(r, field)
	if err != nil {
		return imaging.Upload{}, err
	}
	if len(uploads) == 0 {
		return imaging.Upload{}, fmt.Errorf("%w: %s is required", domain.ErrInvalidInput, field)
	}
	return uploads[0], nil
}

func readFileHeader(fh *multipart.FileHeader) (imaging.Upload, error) {
	f, err := fh.Open()
	if err != nil {
		return imaging.Upload{}, fmt.Errorf("open upload %s: %w", fh.Filename, err)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return imaging.Upload{}, fmt.Errorf("read upload %s: %w", fh.Filename, err)
	}
	mime := fh.Header.Get("Content-Type")
	if mime == "" || mime == "application/octet-stream" {
		mime = http.DetectContentType(data)
	}
	return imaging.Upload{Data: data, MIME: mime, Filename: fh.Filename}, nil
}
