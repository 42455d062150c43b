package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/Jinius36/JJalBox-JJalKeyboard/internal/http/handlers"
	"github.com/Jinius36/JJalBox-JJalKeyboard/internal/infra"
	"github.com/Jinius36/JJalBox-JJalKeyboard/internal/middleware"
)

// NewRouter mounts every route. Catalog routes exist only when app.Catalog is
// configured.
func NewRouter(app *handlers.App) http.Handler {
	logger := app.Logger
	if logger == nil {
		logger = infra.NopLogger()
	}
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		middleware.Logger(*logger),
		chimw.Recoverer,
	)
	if app.Config != nil {
		r.Use(middleware.CORS(app.Config.CORSAllowedOrigins))
	}

	r.Get("/v1/healthz", app.Health)
	r.Get("/v1/openapi.json", app.OpenAPIJSON)
	r.Get("/v1/docs", app.OpenAPIDocs)

	r.Post("/v1/images/generate", app.GenerateImage)
	r.Post("/api/meme_edit", app.MemeEdit)

	r.Route("/v1/templates", func(r chi.Router) {
		r.Get("/", app.ListTemplates)
		r.Get("/{tid}", app.GetTemplate)
	})
	r.Post("/v1/memes/{tid}/generate", app.GenerateMeme)

	if app.Catalog != nil {
		r.Route("/images", func(r chi.Router) {
			r.Get("/", app.CatalogList)
			r.Post("/", app.CatalogInsert)
			r.Get("/search", app.CatalogSearch)
		})
	}

	return r
}
