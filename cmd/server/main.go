package main

import (
	"github.com/whjyxl/cost-rag/backend/internal/server"
	"github.com/whjyxl/cost-rag/backend/internal/util"
	"github.com/whjyxl/cost-rag/backend/pkg/logger"
	"github.com/whjyxl/cost-rag/backend/pkg/logger/console"
)

func main() {
	util.LoadEnv()

	debug := util.GetEnvBool("DEBUG", false)

	consoleLogger := console.NewConsoleLogger(console.ConsoleLoggerParams{
		Debug: debug,
	})
	logger.Init(consoleLogger)

	server.Init()
}
