package main

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/sandevgo/recall/internal/acquire"
	"github.com/sandevgo/recall/internal/acquire/strategy"
	"github.com/sandevgo/recall/internal/config"
	"github.com/sandevgo/recall/internal/providers/llm"
	"github.com/sandevgo/recall/internal/providers/metadata"
	"github.com/sandevgo/recall/internal/providers/ocr"
	"github.com/sandevgo/recall/internal/providers/transcribe"
	"github.com/sandevgo/recall/internal/providers/vision"
	"github.com/sandevgo/recall/internal/retrieval"
	"github.com/sandevgo/recall/internal/service/notebook"
	"github.com/sandevgo/recall/internal/storage/sqlite"
	"github.com/sandevgo/recall/internal/transport/httpapi"
	"github.com/sandevgo/recall/internal/transport/mcpsrv"
	"github.com/sandevgo/recall/pkg/log"
	"github.com/sandevgo/recall/pkg/srv"
)

// app holds the wired application for one command invocation.
type app struct {
	cfg   *config.AppConfig
	db    *sql.DB
	store *sqlite.NotesRepo
	nb    *notebook.Notebook
}

func newApp(ctx context.Context) *app {
	logger := log.FromCtx(ctx)

	// init env
	if err := initEnv(ctx, config.GetRuntimePath()); err != nil {
		logger.Fatal().Err(err).Msg("failed to init env")
	}

	// 1. Configuration
	appCfg := config.NewAppConfig(ctx)
	acqCfg := config.NewAcquireConfig(ctx)
	ctxCfg := config.NewContextConfig(ctx)

	// 2. Storage
	db, err := sqlite.NewDB(ctx, appCfg.GetDatabasePath())
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize storage")
	}
	store := sqlite.NewNotesRepo(db)

	// 3. Extraction providers and strategy chains
	chains := acquire.DefaultChains(
		strategy.NewTextLayer(acqCfg.MinTextLength),
		strategy.NewVisionOCR(vision.NewClient(config.NewVisionConfig(ctx))),
		strategy.NewBasicOCR(ocr.NewClient(config.NewOCRConfig(ctx))),
		strategy.NewCaptionRead(),
		strategy.NewPageScrape(),
		strategy.NewAudioTranscription(transcribe.NewClient(config.NewTranscribeConfig(ctx))),
	)
	fetcher := acquire.NewMetadataFetcher(metadata.NewClient(), acqCfg.MetadataTimeout)
	orchestrator := acquire.NewOrchestrator(acqCfg, chains, fetcher)

	// 4. Retrieval
	cache := retrieval.NewContextCache(ctxCfg.CacheTTL, ctxCfg.CacheMaxEntries)
	processor := retrieval.NewProcessor(ctxCfg, cache)

	// 5. Chat provider
	chat, err := llm.NewProvider(ctx, config.NewLLMConfig(ctx))
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize LLM provider")
	}

	return &app{
		cfg:   appCfg,
		db:    db,
		store: store,
		nb:    notebook.New(orchestrator, store, processor, chat, cache),
	}
}

func (a *app) Close() error {
	return a.db.Close()
}

// NewServices wires the long-running surfaces for the serve command.
func NewServices(ctx context.Context) []srv.Service {
	a := newApp(ctx)

	services := []srv.Service{srv.NewCleanup(a.Close)}

	if a.cfg.EnableHTTP {
		handler := httpapi.NewHandler(a.nb, a.store)
		services = append(services, httpapi.NewServer(a.cfg.HTTPAddr, handler))
	}
	if a.cfg.EnableMCP {
		services = append(services, mcpsrv.NewServer(a.nb))
	}

	return services
}

func initEnv(ctx context.Context, runtimePath string) error {
	logger := log.FromCtx(ctx)
	envFile := filepath.Join(runtimePath, ".env")

	if _, err := os.Stat(envFile); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	if err := godotenv.Load(envFile); err != nil {
		logger.Warn().Err(err).Str("path", envFile).Msg("failed to load .env file")
		return err
	}

	logger.Debug().Str("path", envFile).Msg("loaded .env file")
	return nil
}
