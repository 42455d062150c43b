package gpt

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	openai "github.com/sashabaranov/go-openai"

	"github.com/Jinius36/JJalBox-JJalKeyboard/internal/domain"
)

func TestDecodeImageResponsePrefersURL(t *testing.T) {
	hosted := []byte("hosted image")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(hosted)
	}))
	defer srv.Close()

	resp := openai.ImageResponse{Data: []openai.ImageResponseDataInner{{
		URL:     srv.URL + "/result.png",
		B64JSON: base64.StdEncoding.EncodeToString([]byte("inline image")),
	}}}
	data, err := DecodeImageResponse(context.Background(), srv.Client(), resp)
	if err != nil {
		t.Fatalf("DecodeImageResponse: %v", err)
	}
	if !bytes.Equal(data, hosted) {
		t.Fatalf("data = %q, want hosted bytes", data)
	}
}

func TestDecodeImageResponseInlinePayload(t *testing.T) {
	want := []byte{0x89, 'P', 'N', 'G', 0x00, 0xff}
	resp := openai.ImageResponse{Data: []openai.ImageResponseDataInner{{
		B64JSON: base64.StdEncoding.EncodeToString(want),
	}}}
	data, err := DecodeImageResponse(context.Background(), http.DefaultClient, resp)
	if err != nil {
		t.Fatalf("DecodeImageResponse: %v", err)
	}
	if !bytes.Equal(data, want) {
		t.Fatalf("data = %v, want %v", data, want)
	}
}

func TestDecodeImageResponseMalformed(t *testing.T) {
	cases := map[string]openai.ImageResponse{
		"empty data": {},
		"empty item": {Data: []openai.ImageResponseDataInner{{}}},
		"bad base64": {Data: []openai.ImageResponseDataInner{{B64JSON: "!!!"}}},
	}
	for name, resp := range cases {
		if _, err := DecodeImageResponse(context.Background(), http.DefaultClient, resp); !errors.Is(err, domain.ErrVendorResponseMalformed) {
			t.Fatalf("%s: err = %v, want ErrVendorResponseMalformed", name, err)
		}
	}
}

func TestDecodeImageResponseDownloadFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	resp := openai.ImageResponse{Data: []openai.ImageResponseDataInner{{URL: srv.URL}}}
	_, err := DecodeImageResponse(context.Background(), srv.Client(), resp)
	var vendorErr *domain.VendorError
	if !errors.As(err, &vendorErr) || vendorErr.Status != http.StatusNotFound {
		t.Fatalf("err = %v, want 404 VendorError", err)
	}
}
