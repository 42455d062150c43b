package domain

import (
	"errors"
	"fmt"
)

// ErrValidation is the parent of every client-caused rejection. No backend is
// contacted once one of these is returned.
var ErrValidation = errors.New("validation error")

var (
	ErrUnknownProvider      = fmt.Errorf("%w: unknown provider", ErrValidation)
	ErrUnknownMode          = fmt.Errorf("%w: unknown mode", ErrValidation)
	ErrMissingRequiredImage = fmt.Errorf("%w: at least one image is required", ErrValidation)
	ErrInvalidInput         = fmt.Errorf("%w: invalid input", ErrValidation)
)

var (
	ErrBackendNotConfigured    = errors.New("backend not configured")
	ErrVendorResponseMalformed = errors.New("vendor response malformed")
	ErrTemplateFetch           = errors.New("template asset fetch failed")
	ErrTemplateNotFound        = errors.New("template not found")
	ErrInvalidTemplate         = errors.New("invalid template")
	ErrUnsupportedImageFormat  = errors.New("unsupported image format")
	ErrCatalogUnavailable      = errors.New("catalog unavailable")
	ErrFontMissingGlyphs       = errors.New("font has no glyphs for text")
)

// vendorBodyLimit bounds the diagnostic excerpt kept from a failed vendor call.
const vendorBodyLimit = 512

// VendorError reports a non-2xx answer from an image backend or from the
// follow-up download of a hosted result.
type VendorError struct {
	Vendor string
	Status int
	Body   string
}

// NewVendorError builds a VendorError, truncating body to a short excerpt.
func NewVendorError(vendor string, status int, body []byte) *VendorError {
	excerpt := body
	if len(excerpt) > vendorBodyLimit {
		excerpt = excerpt[:vendorBodyLimit]
	}
	return &VendorError{Vendor: vendor, Status: status, Body: string(excerpt)}
}

func (e *VendorError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s: status %d", e.Vendor, e.Status)
	}
	return fmt.Sprintf("%s: status %d: %s", e.Vendor, e.Status, e.Body)
}
