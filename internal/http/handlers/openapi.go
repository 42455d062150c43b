package handlers

import (
	_ "embed"
	"net/http"
)

//go:embed openapi.json
var openAPISpec []byte

const redocHTML = `<!DOCTYPE html>
<html lang="ko">
  <head>
    <meta charset="utf-8" />
    <title>JJalBox Gateway API</title>
    <meta name="description" content="JJalBox keyboard gateway: text-to-image, image edit, meme templates and the jjal catalog." />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <style>
      body { margin: 0; }
      header { padding: 12px 24px; font-family: sans-serif; border-bottom: 1px solid #ddd; }
      header small { color: #666; }
    </style>
  </head>
  <body>
    <header>
      <strong>JJalBox Gateway</strong>
      <small>/v1/images/generate (provider gpt or gemini), /api/meme_edit, /v1/templates, /v1/memes/{tid}/generate, /images</small>
    </header>
    <div id="docs"></div>
    <script src="https://cdn.jsdelivr.net/npm/redoc@2.2.0/bundles/redoc.standalone.js"></script>
    <script>
      Redoc.init("/v1/openapi.json", { hideDownloadButton: true, expandResponses: "200", theme: { colors: { primary: { main: "#f5a623" } } } }, document.getElementById("docs"));
    </script>
  </body>
</html>`

// OpenAPIJSON serves the embedded OpenAPI document.
func (a *App) OpenAPIJSON(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(openAPISpec)
}

// OpenAPIDocs serves a Redoc page for the document.
func (a *App) OpenAPIDocs(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(redocHTML))
}
