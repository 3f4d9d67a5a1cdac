package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgxvec "github.com/pgvector/pgvector-go/pgx"

	"github.com/whjyxl/cost-rag/backend/internal/history"
	"github.com/whjyxl/cost-rag/backend/internal/queue"
	"github.com/whjyxl/cost-rag/backend/internal/server"
	"github.com/whjyxl/cost-rag/backend/internal/util"
	"github.com/whjyxl/cost-rag/backend/pkg/logger"
	"github.com/whjyxl/cost-rag/backend/pkg/logger/console"
	"github.com/whjyxl/cost-rag/backend/pkg/query"
)

func main() {
	util.LoadEnv()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	debug := util.GetEnvBool("DEBUG", false)
	consoleLogger := console.NewConsoleLogger(console.ConsoleLoggerParams{
		Debug: debug,
	})
	logger.Init(consoleLogger)

	pgConn, err := pgxpool.New(ctx, util.GetEnv("DATABASE_URL"))
	if err != nil {
		logger.Fatal("Unable to connect to database", "err", err)
	}
	defer pgConn.Close()
	pgConn.Config().AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return pgxvec.RegisterTypes(ctx, conn)
	}

	conn := queue.Init()
	defer conn.Close()
	ch, err := conn.Channel()
	if err != nil {
		logger.Fatal("Failed to open channel", "err", err)
	}
	defer ch.Close()
	if err := queue.SetupQueues(ch); err != nil {
		logger.Fatal("Failed to setup queues", "err", err)
	}

	embedder := server.NewEmbedder()
	orchestrator := query.NewOrchestrator(query.OrchestratorParams{
		Registry:             server.NewSourceRegistry(pgConn, embedder),
		SourceTimeout:        time.Duration(util.GetEnvNumeric("QUERY_SOURCE_TIMEOUT_S", 30)) * time.Second,
		MaxConcurrentQueries: int64(util.GetEnvNumeric("QUERY_MAX_CONCURRENT", 5)),
		History:              history.NewStore(pgConn),
	})

	if err := queue.ConsumeBatches(ctx, ch, orchestrator); err != nil && err != context.Canceled {
		logger.Fatal("Batch consumer stopped", "err", err)
	}
	logger.Info("Worker shut down")
}
