package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/Jinius36/JJalBox-JJalKeyboard/internal/domain"
	"github.com/Jinius36/JJalBox-JJalKeyboard/internal/imaging"
	"github.com/Jinius36/JJalBox-JJalKeyboard/internal/infra"
	"github.com/Jinius36/JJalBox-JJalKeyboard/internal/meme"
	imagegen "github.com/Jinius36/JJalBox-JJalKeyboard/internal/providers/image"
)

// ImageGenerator dispatches a generation request to a backend.
type ImageGenerator interface {
	Generate(ctx context.Context, req imagegen.Request) ([]byte, error)
}

// ImageEditor performs a masked edit directly against the edit backend.
type ImageEditor interface {
	ImageEdit(ctx context.Context, prompt, size string, base imaging.Upload, mask *imaging.Upload) ([]byte, error)
}

// TemplateCatalog exposes the templates loaded at startup.
type TemplateCatalog interface {
	Get(id string) (*meme.Template, error)
	List() []meme.Summary
}

// MemeComposer renders a template with caller values.
type MemeComposer interface {
	Compose(ctx context.Context, tpl *meme.Template, values map[string]string) ([]byte, error)
}

// CatalogStore is the jjal metadata catalog.
type CatalogStore interface {
	List(ctx context.Context) ([]domain.CatalogEntry, error)
	Search(ctx context.Context, keyword string) ([]domain.CatalogEntry, error)
	Insert(ctx context.Context, entry domain.CatalogEntry) (int64, error)
}

// App carries the dependencies shared by every handler. All fields are set
// once at startup.
type App struct {
	Config    *infra.Config
	Logger    *infra.Logger
	Images    ImageGenerator
	Editor    ImageEditor
	Templates TemplateCatalog
	Memes     MemeComposer
	Catalog   CatalogStore
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

type errorBody struct {
	Status  int    `json:"status"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (a *App) error(w http.ResponseWriter, code int, codeStr, msg string) {
	a.json(w, code, errorBody{Status: code, Error: codeStr, Message: msg})
}

// fail maps err onto the gateway's error taxonomy and writes the error body.
func (a *App) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, code := classify(err)
	event := a.logger(r).Warn()
	if status >= http.StatusInternalServerError {
		event = a.logger(r).Error()
	}
	event.Err(err).Int("status", status).Str("code", code).Msg("request failed")
	a.error(w, status, code, err.Error())
}

// image writes raw image bytes with a sniffed content type.
func (a *App) image(w http.ResponseWriter, data []byte) {
	w.Header().Set("Content-Type", http.DetectContentType(data))
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// logger prefers the request-scoped logger installed by the logging middleware.
func (a *App) logger(r *http.Request) *zerolog.Logger {
	if l := zerolog.Ctx(r.Context()); l != nil && l.GetLevel() != zerolog.Disabled {
		return l
	}
	if a.Logger != nil {
		return a.Logger
	}
	return infra.NopLogger()
}

func (a *App) maxUploadBytes() int64 {
	if a.Config != nil && a.Config.MaxUploadBytes > 0 {
		return a.Config.MaxUploadBytes
	}
	return 20 << 20
}
