package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/Jinius36/JJalBox-JJalKeyboard/internal/domain"
)

type catalogInsertRequest struct {
	URL  string   `json:"url"`
	Tags []string `json:"tag"`
	Text string   `json:"text"`
}

// CatalogList handles GET /images.
func (a *App) CatalogList(w http.ResponseWriter, r *http.Request) {
	if a.Catalog == nil {
		a.fail(w, r, domain.ErrCatalogUnavailable)
		return
	}
	entries, err := a.Catalog.List(r.Context())
	if err != nil {
		a.fail(w, r, fmt.Errorf("%w: %v", domain.ErrCatalogUnavailable, err))
		return
	}
	a.json(w, http.StatusOK, entries)
}

// CatalogSearch handles GET /images/search?query=.
func (a *App) CatalogSearch(w http.ResponseWriter, r *http.Request) {
	if a.Catalog == nil {
		a.fail(w, r, domain.ErrCatalogUnavailable)
		return
	}
	keyword := strings.TrimSpace(r.URL.Query().Get("query"))
	if keyword == "" {
		a.error(w, http.StatusBadRequest, "invalid_request", "query is required")
		return
	}
	entries, err := a.Catalog.Search(r.Context(), keyword)
	if err != nil {
		a.fail(w, r, fmt.Errorf("%w: %v", domain.ErrCatalogUnavailable, err))
		return
	}
	a.json(w, http.StatusOK, entries)
}

// CatalogInsert handles POST /images.
func (a *App) CatalogInsert(w http.ResponseWriter, r *http.Request) {
	if a.Catalog == nil {
		a.fail(w, r, domain.ErrCatalogUnavailable)
		return
	}
	var req catalogInsertRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "invalid_request", "invalid payload")
		return
	}
	req.URL = strings.TrimSpace(req.URL)
	if req.URL == "" {
		a.error(w, http.StatusBadRequest, "invalid_request", "url is required")
		return
	}
	if _, err := a.Catalog.Insert(r.Context(), domain.CatalogEntry{URL: req.URL, Tags: req.Tags, Text: req.Text}); err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusCreated, map[string]string{"message": "Metadata inserted"})
}
