package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/Jinius36/JJalBox-JJalKeyboard/internal/adapter/repo"
	"github.com/Jinius36/JJalBox-JJalKeyboard/internal/http/handlers"
	httpapi "github.com/Jinius36/JJalBox-JJalKeyboard/internal/http/httpapi"
	"github.com/Jinius36/JJalBox-JJalKeyboard/internal/infra"
	"github.com/Jinius36/JJalBox-JJalKeyboard/internal/meme"
	"github.com/Jinius36/JJalBox-JJalKeyboard/internal/providers/gemini"
	"github.com/Jinius36/JJalBox-JJalKeyboard/internal/providers/gpt"
	imagegen "github.com/Jinius36/JJalBox-JJalKeyboard/internal/providers/image"
	"github.com/Jinius36/JJalBox-JJalKeyboard/internal/storage"
)

func main() {
	// .env is optional
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv, cfg.LogLevel)
	ctx := context.Background()

	gptClient, err := gpt.NewClient(gpt.Options{
		APIKey:         cfg.OpenAIAPIKey,
		BaseURL:        cfg.OpenAIBaseURL,
		Model:          cfg.OpenAIImageModel,
		Logger:         &logger,
		RequestTimeout: cfg.VendorTimeout,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build gpt client")
	}
	geminiClient, err := gemini.NewClient(ctx, gemini.Options{
		APIKey:         cfg.GeminiAPIKey,
		BaseURL:        cfg.GeminiBaseURL,
		Model:          cfg.GeminiImageModel,
		Logger:         &logger,
		RequestTimeout: cfg.VendorTimeout,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build gemini client")
	}
	if !gptClient.HasCredentials() {
		logger.Warn().Msg("gpt backend not configured; its routes will answer 503")
	}
	if !geminiClient.HasCredentials() {
		logger.Warn().Msg("gemini backend not configured; its routes will answer 503")
	}
	logger.Info().
		Str("gpt_model", gptClient.Model()).
		Str("gemini_model", geminiClient.Model()).
		Msg("image backends ready")

	templates := loadTemplates(ctx, cfg.TemplateDir, &logger)
	compositor := meme.NewCompositor(
		meme.NewHTTPFetcher(nil, cfg.AssetTimeout),
		gptClient,
		meme.CompositorOptions{FontDir: cfg.FontDir, Logger: &logger},
	)
	for _, summary := range templates.List() {
		tpl, err := templates.Get(summary.ID)
		if err == nil {
			err = compositor.CheckFonts(tpl)
		}
		if err != nil {
			logger.Fatal().Err(err).Str("font_dir", cfg.FontDir).Msg("template font unusable")
		}
	}

	app := &handlers.App{
		Config:    cfg,
		Logger:    &logger,
		Images:    imagegen.NewRouter(gptClient, geminiClient, &logger),
		Editor:    gptClient,
		Templates: templates,
		Memes:     compositor,
	}

	if cfg.CatalogEnabled() {
		dbpool, err := infra.NewDBPool(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect catalog database")
		}
		defer dbpool.Close()

		catalog := repo.NewCatalogRepository(infra.NewSQLRunner(dbpool, &logger))
		if err := catalog.EnsureSchema(ctx); err != nil {
			logger.Fatal().Err(err).Msg("failed to prepare catalog schema")
		}
		app.Catalog = catalog
	} else {
		logger.Info().Msg("DATABASE_URL not set; catalog routes disabled")
	}

	server := infra.NewHTTPServer(cfg, httpapi.NewRouter(app))

	go func() {
		logger.Info().Str("addr", server.Addr()).Int("templates", len(templates.List())).Msg("gateway listening")
		if err := server.Start(); err != nil {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}

// loadTemplates reads every template document under dir. A missing directory
// leaves the catalog empty; a malformed template stops startup.
func loadTemplates(ctx context.Context, dir string, logger *infra.Logger) *meme.Store {
	src, err := storage.NewFileStore(dir)
	if errors.Is(err, os.ErrNotExist) {
		logger.Warn().Str("dir", dir).Msg("template directory missing; no templates loaded")
		empty, _ := meme.NewStore()
		return empty
	}
	if err != nil {
		logger.Fatal().Err(err).Str("dir", dir).Msg("failed to open template directory")
	}
	store, err := meme.LoadStore(ctx, src)
	if err != nil {
		logger.Fatal().Err(err).Str("dir", src.BasePath()).Msg("failed to load templates")
	}
	inpaint := 0
	for _, summary := range store.List() {
		if tpl, err := store.Get(summary.ID); err == nil && tpl.HasInpaintSlots() {
			inpaint++
		}
	}
	logger.Info().
		Str("dir", src.BasePath()).
		Int("templates", len(store.List())).
		Int("inpaint_templates", inpaint).
		Msg("templates loaded")
	return store
}
