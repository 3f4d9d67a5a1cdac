// Package server bootstraps the HTTP API: database, migrations, message
// queue, AI embedder, source adapters, the query orchestrator, and the
// echo router.
package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator"
	"github.com/golang-migrate/migrate/v4"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	pgxvec "github.com/pgvector/pgvector-go/pgx"

	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/whjyxl/cost-rag/backend/internal/history"
	"github.com/whjyxl/cost-rag/backend/internal/queue"
	mid "github.com/whjyxl/cost-rag/backend/internal/server/middleware"
	"github.com/whjyxl/cost-rag/backend/internal/util"
	"github.com/whjyxl/cost-rag/backend/pkg/ai"
	oai "github.com/whjyxl/cost-rag/backend/pkg/ai/ollama"
	gai "github.com/whjyxl/cost-rag/backend/pkg/ai/openai"
	"github.com/whjyxl/cost-rag/backend/pkg/common"
	"github.com/whjyxl/cost-rag/backend/pkg/logger"
	"github.com/whjyxl/cost-rag/backend/pkg/query"
	"github.com/whjyxl/cost-rag/backend/pkg/source"
	sourcepgx "github.com/whjyxl/cost-rag/backend/pkg/source/pgx"
)

type CustomValidator struct {
	validator *validator.Validate
}

func (cv *CustomValidator) Validate(i any) error {
	if err := cv.validator.Struct(i); err != nil {
		return err
	}
	return nil
}

func Init() {
	e := echo.New()
	e.Validator = &CustomValidator{validator: validator.New()}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runMigrations()

	conn, err := pgxpool.New(ctx, util.GetEnv("DATABASE_URL"))
	if err != nil {
		logger.Fatal("Failed to connect to database", "err", err)
	}
	defer conn.Close()
	conn.Config().AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return pgxvec.RegisterTypes(ctx, conn)
	}

	que := queue.Init()
	defer que.Close()
	ch, err := que.Channel()
	if err != nil {
		logger.Fatal("Failed to open channel", "err", err)
	}
	if err := queue.SetupQueues(ch); err != nil {
		logger.Fatal("Failed to setup queues", "err", err)
	}

	embedder := NewEmbedder()
	historyStore := history.NewStore(conn)
	orchestrator := query.NewOrchestrator(query.OrchestratorParams{
		Registry:             NewSourceRegistry(conn, embedder),
		SourceTimeout:        time.Duration(util.GetEnvNumeric("QUERY_SOURCE_TIMEOUT_S", 30)) * time.Second,
		MaxConcurrentQueries: int64(util.GetEnvNumeric("QUERY_MAX_CONCURRENT", 5)),
		History:              historyStore,
	})

	app := &mid.App{
		DBConn:       conn,
		Queue:        ch,
		Orchestrator: orchestrator,
		History:      historyStore,
	}
	e.Use(mid.AppContextMiddleware(app))
	e.Use(middleware.CORS())
	e.Use(middleware.RequestLogger())
	e.Use(middleware.Recover())

	RegisterRoutes(e)

	go func() {
		port := util.GetEnv("PORT")
		if port == "" {
			port = "8080"
		}
		logger.Info("Starting server", "port", port)
		if err := e.Start(":" + port); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed shutting down server", "err", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("Failed to shutdown server", "err", err)
	}
}

// NewEmbedder builds the configured embedding client. AI_ADAPTER selects
// ollama; anything else uses the OpenAI-compatible client.
func NewEmbedder() ai.Embedder {
	adapter := util.GetEnv("AI_ADAPTER")
	if adapter == "ollama" {
		embedder, err := oai.NewOllamaEmbedder(oai.NewOllamaEmbedderParams{
			EmbeddingModel: util.GetEnv("AI_EMBED_MODEL"),
			BaseURL:        util.GetEnv("AI_EMBED_URL"),
		})
		if err != nil {
			logger.Fatal("Failed to create Ollama embedder", "err", err)
		}
		return embedder
	}
	return gai.NewOpenAIEmbedder(gai.NewOpenAIEmbedderParams{
		EmbeddingModel: util.GetEnv("AI_EMBED_MODEL"),
		BaseURL:        util.GetEnv("AI_EMBED_URL"),
		APIKey:         util.GetEnv("AI_EMBED_KEY"),

		MaxParallel: int64(util.GetEnvNumeric("AI_PARALLEL_REQ", 15)),
	})
}

// NewSourceRegistry binds the pgvector adapters to their source types.
func NewSourceRegistry(conn *pgxpool.Pool, embedder ai.Embedder) *source.Registry {
	registry := source.NewRegistry()
	registry.Register(common.SourceDocuments, sourcepgx.NewDocumentAdapter(sourcepgx.DocumentAdapterParams{
		Conn:     conn,
		Embedder: embedder,
	}))
	registry.Register(common.SourceKnowledgeGraph, sourcepgx.NewKnowledgeGraphAdapter(sourcepgx.KnowledgeGraphAdapterParams{
		Conn:     conn,
		Embedder: embedder,
	}))
	registry.Register(common.SourceHistoricalData, sourcepgx.NewHistoricalDataAdapter(sourcepgx.HistoricalDataAdapterParams{
		Conn: conn,
	}))
	return registry
}

func runMigrations() {
	m, err := migrate.New("file://migrations", util.GetEnv("DATABASE_URL"))
	if err != nil {
		logger.Fatal("Failed to initialize migrations", "err", err)
	}
	defer m.Close()
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		logger.Fatal("Failed to run migrations", "err", err)
	}
}
