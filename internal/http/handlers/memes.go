package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Jinius36/JJalBox-JJalKeyboard/internal/domain"
	"github.com/Jinius36/JJalBox-JJalKeyboard/internal/imaging"
)

// ListTemplates handles GET /v1/templates.
func (a *App) ListTemplates(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, map[string]any{"items": a.Templates.List()})
}

// GetTemplate handles GET /v1/templates/{tid}.
func (a *App) GetTemplate(w http.ResponseWriter, r *http.Request) {
	tpl, err := a.Templates.Get(chi.URLParam(r, "tid"))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, tpl)
}

// GenerateMeme handles POST /v1/memes/{tid}/generate.
// Form fields: inputs (JSON object of slot id to text), files (optional).
func (a *App) GenerateMeme(w http.ResponseWriter, r *http.Request) {
	tpl, err := a.Templates.Get(chi.URLParam(r, "tid"))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	if err := a.parseForm(w, r); err != nil {
		a.fail(w, r, err)
		return
	}
	values, err := parseInputs(r.FormValue("inputs"))
	if err != nil {
		a.fail(w, r, err)
		return
	}

	// Files are accepted for forward compatibility; image slots are driven by
	// their mask and prompt only.
	files, err := readUploads(r, "files")
	if err != nil {
		a.fail(w, r, err)
		return
	}
	for _, f := range files {
		if _, err := imaging.NormalizeUpload(f); err != nil {
			a.fail(w, r, err)
			return
		}
	}

	out, err := a.Memes.Compose(vendorContext(r), tpl, values)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.image(w, imaging.ToPNG(out))
}

func parseInputs(raw string) (map[string]string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("%w: inputs is required", domain.ErrInvalidInput)
	}
	var values map[string]string
	if err := json.Unmarshal([]byte(raw), &values); err != nil {
		return nil, fmt.Errorf("%w: inputs must be a JSON object of strings: %v", domain.ErrInvalidInput, err)
	}
	if values == nil {
		values = map[string]string{}
	}
	return values, nil
}
