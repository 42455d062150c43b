package gpt

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/Jinius36/JJalBox-JJalKeyboard/internal/domain"
)

// DecodeImageResponse extracts the image bytes of the first data item. A
// hosted URL takes precedence over an inline b64_json payload and is fetched
// with hc; a non-2xx fetch surfaces as a *domain.VendorError.
func DecodeImageResponse(ctx context.Context, hc *http.Client, resp openai.ImageResponse) ([]byte, error) {
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("%w: gpt: empty data", domain.ErrVendorResponseMalformed)
	}
	item := resp.Data[0]
	if u := strings.TrimSpace(item.URL); u != "" {
		return download(ctx, hc, u)
	}
	if payload := strings.TrimSpace(item.B64JSON); payload != "" {
		data, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return nil, fmt.Errorf("%w: gpt: b64_json: %v", domain.ErrVendorResponseMalformed, err)
		}
		return data, nil
	}
	return nil, fmt.Errorf("%w: gpt: neither url nor b64_json present", domain.ErrVendorResponseMalformed)
}

func download(ctx context.Context, hc *http.Client, imageURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: gpt: invalid image url %q", domain.ErrVendorResponseMalformed, imageURL)
	}
	resp, err := hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gpt: download image: %w", err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("gpt: read image: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, domain.NewVendorError(vendorName, resp.StatusCode, data)
	}
	return data, nil
}
