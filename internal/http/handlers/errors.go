package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/Jinius36/JJalBox-JJalKeyboard/internal/adapter/repo"
	"github.com/Jinius36/JJalBox-JJalKeyboard/internal/domain"
)

// statusClientClosedRequest is the nginx convention for a request abandoned
// by its client.
const statusClientClosedRequest = 499

// classify returns the HTTP status and machine-readable code for err.
func classify(err error) (int, string) {
	var vendorErr *domain.VendorError
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge, "payload_too_large"
	case errors.Is(err, domain.ErrUnknownProvider):
		return http.StatusBadRequest, "unknown_provider"
	case errors.Is(err, domain.ErrUnknownMode):
		return http.StatusBadRequest, "unknown_mode"
	case errors.Is(err, domain.ErrMissingRequiredImage):
		return http.StatusBadRequest, "missing_required_image"
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest, "invalid_request"
	case errors.Is(err, domain.ErrUnsupportedImageFormat):
		return http.StatusBadRequest, "unsupported_image_format"
	case errors.Is(err, domain.ErrTemplateNotFound):
		return http.StatusNotFound, "template_not_found"
	case errors.Is(err, repo.ErrDuplicateURL):
		return http.StatusConflict, "duplicate_url"
	case errors.As(err, &vendorErr):
		if vendorErr.Status >= http.StatusBadRequest {
			return vendorErr.Status, "vendor_error"
		}
		return http.StatusBadGateway, "vendor_error"
	case errors.Is(err, domain.ErrVendorResponseMalformed):
		return http.StatusBadGateway, "vendor_response_malformed"
	case errors.Is(err, domain.ErrTemplateFetch):
		return http.StatusBadGateway, "template_fetch_failed"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "upstream_timeout"
	case errors.Is(err, context.Canceled):
		return statusClientClosedRequest, "client_closed_request"
	case errors.Is(err, domain.ErrBackendNotConfigured):
		return http.StatusServiceUnavailable, "backend_not_configured"
	case errors.Is(err, domain.ErrCatalogUnavailable):
		return http.StatusServiceUnavailable, "catalog_unavailable"
	case errors.Is(err, domain.ErrInvalidTemplate):
		return http.StatusInternalServerError, "invalid_template"
	default:
		return http.StatusInternalServerError, "internal"
	}
}
